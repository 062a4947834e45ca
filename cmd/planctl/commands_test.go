package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/CopyFox/internal/pkg/billing"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand("test", func() (*billing.Service, error) {
		t.Fatal("offline commands must not open the database")
		return nil, nil
	})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestPlansCommand(t *testing.T) {
	out, err := run(t, "plans")
	require.NoError(t, err)
	assert.Contains(t, out, "business_yearly")
	assert.Contains(t, out, "unlimited")
}

func TestLimitsCommand(t *testing.T) {
	out, err := run(t, "limits", "free")
	require.NoError(t, err)
	assert.Contains(t, out, "1-2 (default 1)")
	assert.Contains(t, out, "3, 5")

	_, err = run(t, "limits", "platinum")
	assert.EqualError(t, err, `unknown plan "platinum"`)
}

func TestValidateCommand(t *testing.T) {
	out, err := run(t, "validate", "--plan", "free", "--batch", "10")
	require.NoError(t, err)
	assert.Contains(t, out, "valid")
	assert.Contains(t, out, "Batch variations reduced from 10 to 2 (plan limit: 2)")

	out, err = run(t, "validate", "--plan", "free", "--image")
	require.NoError(t, err)
	assert.Contains(t, out, "invalid")
	assert.Contains(t, out, "Image generation is not available for your plan")
}

func TestValidateCommand_UnsetFlagsAreNotRequested(t *testing.T) {
	out, err := run(t, "validate", "--plan", "free")
	require.NoError(t, err)
	assert.Contains(t, out, "Ready to generate")
}

func TestSuggestCommand(t *testing.T) {
	out, err := run(t, "suggest", "--plan", "pro", "apiAccess,seoOptimization")
	require.NoError(t, err)
	assert.Contains(t, out, "enterprise")
	assert.Contains(t, out, "apiAccess")
	assert.NotContains(t, out, "seoOptimization")

	out, err = run(t, "suggest", "--plan", "enterprise", "apiAccess")
	require.NoError(t, err)
	assert.Contains(t, out, "already includes")
}
