package billing

import (
	"testing"
	"time"

	"github.com/ManuelReschke/CopyFox/internal/pkg/entitlements"
)

func TestNormalizePlan(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "free", want: "free"},
		{in: "pro", want: "pro"},
		{in: "Business_Yearly", want: "business_yearly"},
		{in: "ENTERPRISE", want: "enterprise"},
		{in: "premium_max", want: "free"},
		{in: "", want: "free"},
	}

	for _, tt := range tests {
		if got := normalizePlan(tt.in); got != tt.want {
			t.Fatalf("normalizePlan(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPlanRank(t *testing.T) {
	if planRank("free") >= planRank("pro") {
		t.Fatalf("expected pro to outrank free")
	}
	if planRank("pro_yearly") >= planRank("business") {
		t.Fatalf("expected business to outrank pro_yearly")
	}
	if planRank("business_yearly") >= planRank("enterprise") {
		t.Fatalf("expected enterprise to outrank business_yearly")
	}
	if planRank("pro") != planRank("pro_yearly") {
		t.Fatalf("expected intervals of one tier to rank equal")
	}
}

func TestNormalizeInterval(t *testing.T) {
	tests := map[string]string{
		"month":   "month",
		"Monthly": "month",
		"year":    "year",
		"annual":  "year",
		"weekly":  "unknown",
		"":        "unknown",
	}
	for in, want := range tests {
		if got := normalizeInterval(in); got != want {
			t.Fatalf("normalizeInterval(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestIsEntitlingStatus(t *testing.T) {
	for _, status := range []string{"active", "trialing", "past_due", " ACTIVE "} {
		if !isEntitlingStatus(status) {
			t.Fatalf("expected status %q to be entitling", status)
		}
	}
	for _, status := range []string{"canceled", "incomplete", "expired", "paused"} {
		if isEntitlingStatus(status) {
			t.Fatalf("expected status %q to be non-entitling", status)
		}
	}
}

func TestPeriodKey(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	ts := time.Date(2026, 11, 1, 1, 0, 0, 0, loc)
	if got := PeriodKey(ts); got != "2026-10" {
		t.Fatalf("PeriodKey = %q, want 2026-10", got)
	}
}

func TestMonthlyLimit(t *testing.T) {
	if got := MonthlyLimit("pro_yearly"); got != 100 {
		t.Fatalf("MonthlyLimit(pro_yearly) = %d", got)
	}
	if got := MonthlyLimit("enterprise"); got != entitlements.Unlimited {
		t.Fatalf("MonthlyLimit(enterprise) = %d", got)
	}
	if got := MonthlyLimit("nope"); got != 10 {
		t.Fatalf("MonthlyLimit(nope) = %d", got)
	}
}
