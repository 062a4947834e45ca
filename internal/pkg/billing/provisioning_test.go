package billing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/CopyFox/app/models"
)

func TestService_UpsertPlanMapping(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	m, err := svc.UpsertPlanMapping(ctx, " Stripe ", "price_biz", "yearly", "Business_Yearly", true)
	require.NoError(t, err)
	assert.Equal(t, "stripe", m.Provider)
	assert.Equal(t, models.BillingIntervalYear, m.BillingInterval)
	assert.Equal(t, "business_yearly", m.InternalPlan)

	plan, err := svc.ResolveMappedPlan(ctx, "stripe", "price_biz", "annual")
	require.NoError(t, err)
	assert.Equal(t, "business_yearly", plan)

	// Re-saving the same triple updates the row in place.
	again, err := svc.UpsertPlanMapping(ctx, "stripe", "price_biz", "year", "pro_yearly", true)
	require.NoError(t, err)
	assert.Equal(t, m.ID, again.ID)
	plan, err = svc.ResolveMappedPlan(ctx, "stripe", "price_biz", "year")
	require.NoError(t, err)
	assert.Equal(t, "pro_yearly", plan)

	_, err = svc.UpsertPlanMapping(ctx, "stripe", "price_biz", "year", "pro", false)
	require.NoError(t, err)
	plan, err = svc.ResolveMappedPlan(ctx, "stripe", "price_biz", "year")
	assert.Error(t, err, "inactive mappings are not resolved")
	assert.Equal(t, "free", plan)
}

func TestService_UpsertPlanMapping_Rejects(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.UpsertPlanMapping(ctx, "stripe", "price_x", "month", "platinum", true)
	assert.ErrorIs(t, err, ErrUnknownPlan)
	_, err = svc.UpsertPlanMapping(ctx, "", "price_x", "month", "pro", true)
	assert.Error(t, err)
	_, err = svc.UpsertPlanMapping(ctx, "paypal", "price_x", "month", "pro", true)
	assert.ErrorIs(t, err, ErrUnknownProvider)
}

func TestService_IssueAndRevokeAPIKey(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	first, err := svc.IssueAPIKey(ctx, 9)
	require.NoError(t, err)
	owner, err := repo.FindByAPIKeyHash(models.HashAPIKey(first))
	require.NoError(t, err)
	assert.Equal(t, uint(9), owner.UserID)

	second, err := svc.IssueAPIKey(ctx, 9)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
	_, err = repo.FindByAPIKeyHash(models.HashAPIKey(first))
	assert.Error(t, err, "reissuing replaces the previous key")

	require.NoError(t, svc.RevokeAPIKey(ctx, 9))
	_, err = repo.FindByAPIKeyHash(models.HashAPIKey(second))
	assert.Error(t, err)
	require.NoError(t, svc.RevokeAPIKey(ctx, 9), "revoking twice is a no-op")

	_, err = svc.IssueAPIKey(ctx, 0)
	assert.Error(t, err)
}
