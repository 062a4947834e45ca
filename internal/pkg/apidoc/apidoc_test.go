package apidoc

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadPublicDocument(t *testing.T) {
	path, err := Find("../../..")
	require.NoError(t, err)

	doc, err := Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "CopyFox Entitlements API", doc.Info.Title)

	ops := Operations(doc)
	assert.Contains(t, ops, "GET /plans/:plan")
	assert.Contains(t, ops, "POST /billing/webhooks/:provider")
	assert.Contains(t, ops, "POST /generations")
}

func TestFindMissing(t *testing.T) {
	_, err := Find(t.TempDir())
	assert.Error(t, err)
}
