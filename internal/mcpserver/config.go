package mcpserver

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/mdhitche/jsonref/resolver"
)

// serverConfig holds all configurable MCP server defaults.
// Loaded once at startup from environment variables via loadConfig().
type serverConfig struct {
	// Fetch settings.
	AllowHTTPRefs   bool
	AllowPrivateIPs bool
	FetchTimeout    time.Duration

	// Resource limits.
	MaxInlineSize int64
	MaxFileSize   int64
	MaxRefDepth   int

	// refs tool defaults.
	RefsLimit int
	MaxLimit  int
}

// cfg is the active server configuration, initialized at package load time.
var cfg = loadConfig()

// loadConfig reads configuration from JSONREF_* environment variables.
// Invalid values log a warning and fall back to the hardcoded default.
func loadConfig() *serverConfig {
	return &serverConfig{
		AllowHTTPRefs:   envBool("JSONREF_ALLOW_HTTP", true),
		AllowPrivateIPs: envBool("JSONREF_ALLOW_PRIVATE_IPS", false),
		FetchTimeout:    envDuration("JSONREF_FETCH_TIMEOUT", 30*time.Second),
		MaxInlineSize:   envInt64("JSONREF_MAX_INLINE_SIZE", resolver.DefaultMaxFileSize),
		MaxFileSize:     envInt64("JSONREF_MAX_FILE_SIZE", resolver.DefaultMaxFileSize),
		MaxRefDepth:     envInt("JSONREF_MAX_REF_DEPTH", resolver.DefaultMaxRefDepth),
		RefsLimit:       envInt("JSONREF_REFS_LIMIT", 100),
		MaxLimit:        envInt("JSONREF_MAX_LIMIT", 1000),
	}
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("invalid bool env var, using default", "key", key, "value", v, "default", fallback) //nolint:gosec // G706: values are structured log fields, not format strings
		return fallback
	}
	return b
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		slog.Warn("invalid int env var, using default", "key", key, "value", v, "default", fallback) //nolint:gosec // G706: values are structured log fields, not format strings
		return fallback
	}
	return n
}

func envInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		slog.Warn("invalid int env var, using default", "key", key, "value", v, "default", fallback) //nolint:gosec // G706: values are structured log fields, not format strings
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		slog.Warn("invalid duration env var, using default", "key", key, "value", v, "default", fallback) //nolint:gosec // G706: values are structured log fields, not format strings
		return fallback
	}
	return d
}
