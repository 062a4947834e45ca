package billing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/CopyFox/app/models"
)

const testSecret = "whsec_test"

func TestVerifyWebhookSignature(t *testing.T) {
	payload := []byte(`{"foo":"bar"}`)
	sig := SignWebhookPayload(payload, testSecret)

	assert.True(t, VerifyWebhookSignature(payload, sig, testSecret))
	assert.True(t, VerifyWebhookSignature(payload, "sha256="+sig, testSecret))
	assert.False(t, VerifyWebhookSignature(payload, "deadbeef", testSecret))
	assert.False(t, VerifyWebhookSignature(payload, "not-hex", testSecret))
	assert.False(t, VerifyWebhookSignature(payload, sig, ""))
	assert.False(t, VerifyWebhookSignature([]byte(`{"foo":"baz"}`), sig, testSecret))
}

func TestParseWebhookPayload(t *testing.T) {
	_, err := ParseWebhookPayload([]byte(`{`))
	assert.ErrorIs(t, err, ErrInvalidPayload)

	_, err = ParseWebhookPayload([]byte(`{"type":"subscription.created","subscription":{"id":"sub_1"}}`))
	assert.ErrorIs(t, err, ErrInvalidPayload, "plan_ref is required")

	p, err := ParseWebhookPayload([]byte(`{"id":"evt_1","type":"subscription.created","subscription":{"id":"sub_1","plan_ref":"price_pro","user_id":4}}`))
	require.NoError(t, err)
	assert.Equal(t, uint(4), p.Subscription.UserID)
}

func TestProcessWebhook_LinksAccountAndSyncsPlan(t *testing.T) {
	svc, repo := newTestService(t)
	repo.AddPlanMapping("stripe", "price_pro", models.BillingIntervalMonth, "pro")
	ctx := context.Background()

	body := []byte(`{"id":"evt_1","type":"subscription.created","account_id":"cus_1","email":"a@example.com",` +
		`"subscription":{"id":"sub_1","user_id":11,"plan_ref":"price_pro","interval":"month","status":"active"}}`)
	out, err := svc.ProcessWebhook(ctx, "stripe", body, SignWebhookPayload(body, testSecret), testSecret)
	require.NoError(t, err)
	assert.Equal(t, "pro", out.Plan)
	assert.False(t, out.Duplicate)

	account, err := svc.GetBillingAccountByProviderAccountID(ctx, "stripe", "cus_1")
	require.NoError(t, err)
	assert.Equal(t, uint(11), account.UserID)

	out, err = svc.ProcessWebhook(ctx, "stripe", body, SignWebhookPayload(body, testSecret), testSecret)
	require.NoError(t, err)
	assert.True(t, out.Duplicate)

	// Later events only carry the customer id.
	cancel := []byte(`{"id":"evt_2","type":"subscription.deleted","account_id":"cus_1",` +
		`"subscription":{"id":"sub_1","plan_ref":"price_pro","interval":"month","status":"active"}}`)
	out, err = svc.ProcessWebhook(ctx, "stripe", cancel, SignWebhookPayload(cancel, testSecret), testSecret)
	require.NoError(t, err)
	assert.Equal(t, "free", out.Plan)
}

func TestProcessWebhook_InvalidSignature(t *testing.T) {
	svc, repo := newTestService(t)
	body := []byte(`{"id":"evt_bad","type":"subscription.created","subscription":{"id":"s","user_id":1,"plan_ref":"p"}}`)

	_, err := svc.ProcessWebhook(context.Background(), "stripe", body, "00", testSecret)
	assert.ErrorIs(t, err, ErrInvalidSignature)
	assert.Empty(t, repo.events, "unsigned events are not stored")
}

func TestProcessWebhook_UnknownProvider(t *testing.T) {
	svc, repo := newTestService(t)
	body := []byte(`{"id":"evt_x","type":"subscription.created","subscription":{"id":"s","user_id":1,"plan_ref":"p"}}`)

	_, err := svc.ProcessWebhook(context.Background(), "paypal", body, SignWebhookPayload(body, testSecret), testSecret)
	assert.ErrorIs(t, err, ErrUnknownProvider)
	assert.Empty(t, repo.events)

	assert.True(t, IsKnownProvider(" Stripe "))
	assert.True(t, IsKnownProvider("manual"))
	assert.False(t, IsKnownProvider(""))
}

func TestProcessWebhook_IgnoresOtherEventsAndUnknownAccounts(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	other := []byte(`{"id":"evt_3","type":"invoice.paid"}`)
	out, err := svc.ProcessWebhook(ctx, "stripe", other, SignWebhookPayload(other, testSecret), testSecret)
	require.NoError(t, err)
	assert.True(t, out.Ignored)

	orphan := []byte(`{"id":"evt_4","type":"subscription.updated","account_id":"cus_404","subscription":{"id":"s","plan_ref":"p"}}`)
	out, err = svc.ProcessWebhook(ctx, "stripe", orphan, SignWebhookPayload(orphan, testSecret), testSecret)
	require.NoError(t, err)
	assert.True(t, out.Ignored)
}
