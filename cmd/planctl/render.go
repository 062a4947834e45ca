package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ManuelReschke/CopyFox/app/models"
	"github.com/ManuelReschke/CopyFox/internal/pkg/entitlements"
	"github.com/ManuelReschke/CopyFox/internal/pkg/generation"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Width(22)
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	boxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

func formatLimit(n int64) string {
	if n == entitlements.Unlimited {
		return "unlimited"
	}
	return strconv.FormatInt(n, 10)
}

func row(label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(label), value)
}

func renderPlans(plans []entitlements.PlanInfo) string {
	lines := []string{titleStyle.Render("Plans")}
	for _, p := range plans {
		lines = append(lines, row(string(p.ID), fmt.Sprintf("%-20s %-6s %s/month", p.Name, p.Interval, formatLimit(p.MonthlyGenerations))))
	}
	return boxStyle.Render(strings.Join(lines, "\n"))
}

func renderLimits(info entitlements.PlanInfo, limits entitlements.FeatureLimits) string {
	bv, cm := limits.BatchVariations, limits.CourseModules
	lines := []string{
		titleStyle.Render(info.Name),
		row("generations", formatLimit(info.MonthlyGenerations)+"/month"),
		row("batch variations", fmt.Sprintf("%d-%d (default %d)", bv.Min, bv.Max, bv.Default)),
		row("course modules", fmt.Sprintf("%s (default %d)", joinInts(cm.Options), cm.Default)),
	}
	for _, f := range entitlements.Features {
		enabled, _ := limits.Flag(f)
		mark := errStyle.Render("no")
		if enabled {
			mark = okStyle.Render("yes")
		}
		lines = append(lines, row(string(f), mark))
	}
	return boxStyle.Render(strings.Join(lines, "\n"))
}

func renderValidation(plan entitlements.Plan, res generation.ValidationResult) string {
	status := okStyle.Render("valid")
	if !res.IsValid {
		status = errStyle.Render("invalid")
	}
	lines := []string{
		titleStyle.Render("Validation"),
		row("plan", string(plan)),
		row("result", status),
	}
	for _, e := range res.Errors {
		lines = append(lines, errStyle.Render("✗ "+e))
	}
	for _, w := range res.Warnings {
		lines = append(lines, warnStyle.Render("! "+w))
	}
	for _, l := range res.PlanLimitations {
		lines = append(lines, "  "+l)
	}
	msg := generation.FormatValidationErrors(res)
	lines = append(lines, "", msg.Title+": "+msg.Message)
	return boxStyle.Render(strings.Join(lines, "\n"))
}

func renderSuggestion(s generation.Suggestion) string {
	if !s.ShouldUpgrade {
		return okStyle.Render("Current plan already includes every requested feature")
	}
	return boxStyle.Render(strings.Join([]string{
		titleStyle.Render("Upgrade suggested"),
		row("recommended plan", s.RecommendedPlan),
		row("missing features", strings.Join(s.MissingFeatures, ", ")),
	}, "\n"))
}

func renderIssuedKey(userID uint, key string) string {
	return boxStyle.Render(strings.Join([]string{
		titleStyle.Render("API key issued"),
		row("user", strconv.FormatUint(uint64(userID), 10)),
		row("key", key),
		warnStyle.Render("Store the key now, it cannot be shown again"),
	}, "\n"))
}

func renderMapping(m *models.BillingPlanMapping) string {
	state := okStyle.Render("active")
	if !m.IsActive {
		state = warnStyle.Render("inactive")
	}
	return boxStyle.Render(strings.Join([]string{
		titleStyle.Render("Plan mapping saved"),
		row("provider", m.Provider),
		row("plan ref", m.ProviderPlanRef),
		row("interval", m.BillingInterval),
		row("plan", m.InternalPlan),
		row("state", state),
	}, "\n"))
}

func joinInts(vals []int) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ", ")
}
