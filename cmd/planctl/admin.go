package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ManuelReschke/CopyFox/internal/pkg/billing"
	"github.com/ManuelReschke/CopyFox/internal/pkg/database"
	"github.com/ManuelReschke/CopyFox/internal/pkg/env"
	"github.com/ManuelReschke/CopyFox/internal/pkg/logger"
)

// serviceFactory opens the billing service the admin commands write through.
type serviceFactory func() (*billing.Service, error)

// databaseService connects with the same DB_* variables as the server.
func databaseService() (*billing.Service, error) {
	env.SetupEnvFile()
	logger.SetupLogger()
	if err := database.SetupDatabase(); err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	return billing.NewService(billing.NewRepository(database.GetDB()), nil, nil), nil
}

func parseUserID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid user id %q", raw)
	}
	return uint(id), nil
}

func newKeysCommand(open serviceFactory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Issue or revoke user API keys",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "issue <user-id>",
		Short: "Issue a new API key, replacing any existing one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := parseUserID(args[0])
			if err != nil {
				return err
			}
			svc, err := open()
			if err != nil {
				return err
			}
			key, err := svc.IssueAPIKey(cmd.Context(), userID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderIssuedKey(userID, key))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "revoke <user-id>",
		Short: "Revoke the user's API key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := parseUserID(args[0])
			if err != nil {
				return err
			}
			svc, err := open()
			if err != nil {
				return err
			}
			if err := svc.RevokeAPIKey(cmd.Context(), userID); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render(fmt.Sprintf("API key of user %d revoked", userID)))
			return nil
		},
	})

	return cmd
}

func newMappingsCommand(open serviceFactory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mappings",
		Short: "Manage provider plan mappings",
	}

	var inactive bool
	set := &cobra.Command{
		Use:   "set <provider> <plan-ref> <interval> <plan>",
		Short: "Map a provider price reference to a plan",
		Long: `Map a provider price reference to a plan.

interval is month, year or unknown. Webhooks match the exact interval
first and fall back to the unknown mapping.

Examples:
  planctl mappings set stripe price_123 month pro
  planctl mappings set manual team unknown enterprise
  planctl mappings set stripe price_old month pro --inactive`,
		Args: cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := open()
			if err != nil {
				return err
			}
			m, err := svc.UpsertPlanMapping(cmd.Context(), args[0], args[1], args[2], args[3], !inactive)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderMapping(m))
			return nil
		},
	}
	set.Flags().BoolVar(&inactive, "inactive", false, "Store the mapping disabled")
	cmd.AddCommand(set)

	return cmd
}
