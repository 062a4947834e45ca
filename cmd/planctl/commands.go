package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ManuelReschke/CopyFox/internal/pkg/billing"
	"github.com/ManuelReschke/CopyFox/internal/pkg/entitlements"
	"github.com/ManuelReschke/CopyFox/internal/pkg/generation"
)

func newPlansCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "plans",
		Short: "List every plan with its monthly generation limit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), renderPlans(entitlements.Catalog()))
			return nil
		},
	}
}

func newLimitsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "limits <plan>",
		Short: "Show the numeric bounds and feature flags of a plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, ok := entitlements.ParsePlan(args[0])
			if !ok {
				return fmt.Errorf("unknown plan %q", args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderLimits(entitlements.Info(plan), entitlements.LimitsFor(plan)))
			return nil
		},
	}
}

// ValidateFlags holds command-line flags for the validate command
type ValidateFlags struct {
	Plan        string
	ContentType string
	Batch       int
	Modules     int
	Advanced    bool
	Image       bool
	SEO         bool
	Personas    bool
	Style       string
	Mood        string
}

func newValidateCommand() *cobra.Command {
	flags := &ValidateFlags{}

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a generation request against a plan",
		Long: `Validate a generation request the same way the API does.

Only flags that are set become part of the request.

Examples:
  planctl validate --plan free --batch 10
  planctl validate --plan pro --modules 6 --image`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req := requestFromFlags(cmd, flags)
			info := billing.BillingInfo{Subscription: &billing.SubscriptionInfo{PlanID: flags.Plan}}
			res := generation.Validate(info, req)
			fmt.Fprintln(cmd.OutOrStdout(), renderValidation(entitlements.NormalizePlan(flags.Plan), res))
			return nil
		},
	}

	cmd.Flags().StringVar(&flags.Plan, "plan", string(entitlements.PlanFree), "Plan to validate against")
	cmd.Flags().StringVar(&flags.ContentType, "content-type", "blog", "Content type of the request")
	cmd.Flags().IntVar(&flags.Batch, "batch", 1, "Requested batch variations")
	cmd.Flags().IntVar(&flags.Modules, "modules", 3, "Requested course modules")
	cmd.Flags().BoolVar(&flags.Advanced, "advanced", false, "Request advanced options")
	cmd.Flags().BoolVar(&flags.Image, "image", false, "Request image generation")
	cmd.Flags().BoolVar(&flags.SEO, "seo", false, "Request SEO optimization")
	cmd.Flags().BoolVar(&flags.Personas, "personas", false, "Request custom personas")
	cmd.Flags().StringVar(&flags.Style, "style", "", "Writing style")
	cmd.Flags().StringVar(&flags.Mood, "mood", "", "Writing mood")

	return cmd
}

func requestFromFlags(cmd *cobra.Command, flags *ValidateFlags) generation.Request {
	req := generation.Request{
		ContentType: flags.ContentType,
		Style:       flags.Style,
		Mood:        flags.Mood,
	}
	set := cmd.Flags().Changed
	if set("batch") {
		req.BatchVariations = generation.Int(flags.Batch)
	}
	if set("modules") {
		req.CourseModules = generation.Int(flags.Modules)
	}
	if set("advanced") {
		req.UseAdvancedOptions = generation.Bool(flags.Advanced)
	}
	if set("image") {
		req.UseImageGeneration = generation.Bool(flags.Image)
	}
	if set("seo") {
		req.UseSeoOptimization = generation.Bool(flags.SEO)
	}
	if set("personas") {
		req.UseCustomPersonas = generation.Bool(flags.Personas)
	}
	return req
}

func newSuggestCommand() *cobra.Command {
	var plan string

	cmd := &cobra.Command{
		Use:   "suggest <feature>...",
		Short: "Suggest an upgrade that unlocks the given features",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			features := make([]string, 0, len(args))
			for _, a := range args {
				for _, f := range strings.Split(a, ",") {
					if f = strings.TrimSpace(f); f != "" {
						features = append(features, f)
					}
				}
			}
			s := generation.UpgradeSuggestion(entitlements.LimitsFor(entitlements.NormalizePlan(plan)), features)
			fmt.Fprintln(cmd.OutOrStdout(), renderSuggestion(s))
			return nil
		},
	}
	cmd.Flags().StringVar(&plan, "plan", string(entitlements.PlanFree), "Current plan")

	return cmd
}
