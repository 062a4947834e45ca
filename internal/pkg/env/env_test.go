package env

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetEnvPrefersLoadedFile(t *testing.T) {
	Env = map[string]string{"APP_PORT": "4100"}
	t.Cleanup(func() { Env = nil })
	t.Setenv("APP_PORT", "5000")

	assert.Equal(t, "4100", GetEnv("APP_PORT", "4000"))
	assert.Equal(t, "fallback", GetEnv("NOT_SET_ANYWHERE", "fallback"))
}

func TestGetEnvInt(t *testing.T) {
	Env = map[string]string{"API_RATE_LIMIT": "120", "BROKEN": "12x"}
	t.Cleanup(func() { Env = nil })

	assert.Equal(t, 120, GetEnvInt("API_RATE_LIMIT", 60))
	assert.Equal(t, 60, GetEnvInt("BROKEN", 60))
	assert.Equal(t, 7, GetEnvInt("MISSING", 7))
}

func TestGetEnvDuration(t *testing.T) {
	Env = map[string]string{"USAGE_FLUSH_INTERVAL": "45s", "BAD": "soon"}
	t.Cleanup(func() { Env = nil })

	assert.Equal(t, 45*time.Second, GetEnvDuration("USAGE_FLUSH_INTERVAL", time.Minute))
	assert.Equal(t, time.Minute, GetEnvDuration("BAD", time.Minute))
}

func TestIsDev(t *testing.T) {
	Env = map[string]string{"APP_ENV": "dev"}
	t.Cleanup(func() { Env = nil })
	assert.True(t, IsDev())

	Env = map[string]string{}
	t.Setenv("APP_ENV", "")
	assert.False(t, IsDev())
}
