package mcpserver

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// clearJSONREFEnv clears all JSONREF_* env vars to isolate tests from the ambient environment.
func clearJSONREFEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"JSONREF_ALLOW_HTTP", "JSONREF_ALLOW_PRIVATE_IPS", "JSONREF_FETCH_TIMEOUT",
		"JSONREF_MAX_INLINE_SIZE", "JSONREF_MAX_FILE_SIZE", "JSONREF_MAX_REF_DEPTH",
		"JSONREF_REFS_LIMIT", "JSONREF_MAX_LIMIT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearJSONREFEnv(t)

	c := loadConfig()

	assert.True(t, c.AllowHTTPRefs)
	assert.False(t, c.AllowPrivateIPs)
	assert.Equal(t, 30*time.Second, c.FetchTimeout)
	assert.Equal(t, int64(10*1024*1024), c.MaxInlineSize)
	assert.Equal(t, int64(10*1024*1024), c.MaxFileSize)
	assert.Equal(t, 100, c.MaxRefDepth)
	assert.Equal(t, 100, c.RefsLimit)
	assert.Equal(t, 1000, c.MaxLimit)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	clearJSONREFEnv(t)
	t.Setenv("JSONREF_ALLOW_HTTP", "false")
	t.Setenv("JSONREF_ALLOW_PRIVATE_IPS", "true")
	t.Setenv("JSONREF_FETCH_TIMEOUT", "5s")
	t.Setenv("JSONREF_MAX_INLINE_SIZE", "2048")
	t.Setenv("JSONREF_MAX_FILE_SIZE", "4096")
	t.Setenv("JSONREF_MAX_REF_DEPTH", "20")
	t.Setenv("JSONREF_REFS_LIMIT", "50")
	t.Setenv("JSONREF_MAX_LIMIT", "500")

	c := loadConfig()

	assert.False(t, c.AllowHTTPRefs)
	assert.True(t, c.AllowPrivateIPs)
	assert.Equal(t, 5*time.Second, c.FetchTimeout)
	assert.Equal(t, int64(2048), c.MaxInlineSize)
	assert.Equal(t, int64(4096), c.MaxFileSize)
	assert.Equal(t, 20, c.MaxRefDepth)
	assert.Equal(t, 50, c.RefsLimit)
	assert.Equal(t, 500, c.MaxLimit)
}

func TestLoadConfig_InvalidValuesFallBack(t *testing.T) {
	clearJSONREFEnv(t)
	t.Setenv("JSONREF_ALLOW_HTTP", "maybe")
	t.Setenv("JSONREF_FETCH_TIMEOUT", "soon")
	t.Setenv("JSONREF_MAX_FILE_SIZE", "-1")
	t.Setenv("JSONREF_MAX_REF_DEPTH", "0")
	t.Setenv("JSONREF_REFS_LIMIT", "lots")

	c := loadConfig()

	assert.True(t, c.AllowHTTPRefs)
	assert.Equal(t, 30*time.Second, c.FetchTimeout)
	assert.Equal(t, int64(10*1024*1024), c.MaxFileSize)
	assert.Equal(t, 100, c.MaxRefDepth)
	assert.Equal(t, 100, c.RefsLimit)
}

// withConfig replaces the active configuration for the duration of a test.
func withConfig(t *testing.T, modify func(c *serverConfig)) {
	t.Helper()
	saved := cfg
	c := *saved
	modify(&c)
	cfg = &c
	t.Cleanup(func() { cfg = saved })
}
