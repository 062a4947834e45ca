package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserSettingsIssueAPIKey(t *testing.T) {
	us := &UserSettings{UserID: 1}

	key, err := us.IssueAPIKey()
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(key, "cfx_"))

	assert.Len(t, us.APIKeyPrefix, 16)
	assert.NotNil(t, us.APIKeyCreatedAt)
	assert.Nil(t, us.APIKeyLastUsedAt)
	assert.True(t, us.HasActiveAPIKey())
	assert.Equal(t, HashAPIKey(key), us.APIKeyHash)
	assert.Equal(t, HashAPIKey(key), HashAPIKey("  "+key+"\n"))
}

func TestUserSettingsRevokeAPIKey(t *testing.T) {
	us := &UserSettings{UserID: 99}
	_, err := us.IssueAPIKey()
	require.NoError(t, err)

	us.RevokeAPIKey()

	assert.False(t, us.HasActiveAPIKey())
	assert.Equal(t, "", us.APIKeyHash)
	assert.Equal(t, "", us.APIKeyPrefix)
	assert.NotNil(t, us.APIKeyRevokedAt)
}

func TestBillingSubscriptionIsEntitling(t *testing.T) {
	for _, status := range []string{BillingStatusActive, BillingStatusTrialing, BillingStatusPastDue} {
		assert.True(t, (&BillingSubscription{Status: status}).IsEntitling(), status)
	}
	for _, status := range []string{BillingStatusCanceled, BillingStatusIncomplete, BillingStatusExpired, BillingStatusPaused} {
		assert.False(t, (&BillingSubscription{Status: status}).IsEntitling(), status)
	}
}
