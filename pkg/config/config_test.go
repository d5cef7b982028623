package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig()
	require.NoError(t, c.Validate())
	assert.Equal(t, 8, c.Engine.MaxSuggestions)
	assert.Equal(t, 0.75, c.Engine.IntentThreshold)
	assert.Equal(t, 5*time.Minute, c.CacheTTL())
	assert.Equal(t, 3*time.Second, c.FallbackTimeout())
	assert.Equal(t, BackendMemory, c.Cache.Backend)
}

func TestLoadConfig(t *testing.T) {
	path := writeFile(t, "config.toml", `
[engine]
max_suggestions = 5
intent_threshold = 0.8

[cache]
backend = "redis"
redis_addr = "cache:6379"

[http]
allowed_origins = ["http://localhost:3000"]
`)

	c, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 5, c.Engine.MaxSuggestions)
	assert.Equal(t, 0.8, c.Engine.IntentThreshold)
	assert.Equal(t, BackendRedis, c.Cache.Backend)
	assert.Equal(t, "cache:6379", c.Cache.RedisAddr)
	assert.Equal(t, []string{"http://localhost:3000"}, c.HTTP.AllowedOrigins)

	// untouched keys keep their defaults
	assert.True(t, c.Engine.EnableCache)
	assert.Equal(t, 300, c.Engine.CacheTTLSeconds)
	assert.Equal(t, "tripserve:query:", c.Cache.KeyPrefix)
}

func TestLoadConfigPartialRecovery(t *testing.T) {
	path := writeFile(t, "config.toml", `
[engine]
max_suggestions = "ten"
intent_threshold = 0.6
enable_cache = false

[lookup]
places_file = "places.yaml"

[cli]
default_limit = 4
`)

	c, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 8, c.Engine.MaxSuggestions, "bad value keeps the default")
	assert.Equal(t, 0.6, c.Engine.IntentThreshold)
	assert.False(t, c.Engine.EnableCache)
	assert.Equal(t, "places.yaml", c.Lookup.PlacesFile)
	assert.Equal(t, 4, c.CLI.DefaultLimit)
}

func TestLoadConfigUnparsable(t *testing.T) {
	path := writeFile(t, "config.toml", "[engine\nmax_suggestions = ")

	c, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), c)
}

func TestInitConfigCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	c, err := InitConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), c)
	assert.FileExists(t, path)

	again, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, c, again)
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	c := DefaultConfig()
	c.Engine.MaxSuggestions = 12
	c.HTTP.FallbackURL = "http://nlu:9000/suggest"
	require.NoError(t, SaveConfig(c, path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, c, loaded)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"limit", func(c *Config) { c.Engine.MaxSuggestions = 0 }, "max_suggestions"},
		{"threshold", func(c *Config) { c.Engine.IntentThreshold = 1.5 }, "intent_threshold"},
		{"ttl", func(c *Config) { c.Engine.CacheTTLSeconds = 0 }, "cache_ttl_seconds"},
		{"max entries", func(c *Config) { c.Engine.CacheMaxEntries = -1 }, "cache_max_entries"},
		{"backend", func(c *Config) { c.Cache.Backend = "memcached" }, "cache.backend"},
		{"redis addr", func(c *Config) { c.Cache.Backend = BackendRedis; c.Cache.RedisAddr = "" }, "redis_addr"},
		{"fallback timeout", func(c *Config) { c.HTTP.FallbackTimeoutMS = 0 }, "fallback_timeout_ms"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultConfig()
			tt.mutate(c)
			err := c.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("TRIPSERVE_MAX_SUGGESTIONS", "3")
	t.Setenv("TRIPSERVE_INTENT_THRESHOLD", "0.9")
	t.Setenv("TRIPSERVE_ENABLE_CACHE", "false")
	t.Setenv("TRIPSERVE_CACHE_BACKEND", "redis")
	t.Setenv("TRIPSERVE_REDIS_DB", "2")
	t.Setenv("TRIPSERVE_ALLOWED_ORIGINS", "http://a.test, http://b.test,")
	t.Setenv("TRIPSERVE_FALLBACK_URL", "http://nlu/suggest")

	c := DefaultConfig()
	ApplyEnv(c)
	assert.Equal(t, 3, c.Engine.MaxSuggestions)
	assert.Equal(t, 0.9, c.Engine.IntentThreshold)
	assert.False(t, c.Engine.EnableCache)
	assert.Equal(t, BackendRedis, c.Cache.Backend)
	assert.Equal(t, 2, c.Cache.RedisDB)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, c.HTTP.AllowedOrigins)
	assert.Equal(t, "http://nlu/suggest", c.HTTP.FallbackURL)
}

func TestApplyEnvIgnoresBadValues(t *testing.T) {
	t.Setenv("TRIPSERVE_MAX_SUGGESTIONS", "many")
	t.Setenv("TRIPSERVE_INTENT_THRESHOLD", "high")
	t.Setenv("TRIPSERVE_ENABLE_CACHE", "maybe")

	c := DefaultConfig()
	ApplyEnv(c)
	assert.Equal(t, DefaultConfig(), c)
}

func TestLoadConfigWithPriority(t *testing.T) {
	path := writeFile(t, "custom.toml", "[engine]\nmax_suggestions = 6\n")
	t.Setenv("TRIPSERVE_HTTP_ADDR", ":9090")

	c, used, err := LoadConfigWithPriority(path)
	require.NoError(t, err)
	assert.Equal(t, path, used)
	assert.Equal(t, 6, c.Engine.MaxSuggestions)
	assert.Equal(t, ":9090", c.HTTP.Addr)

	t.Setenv("TRIPSERVE_CACHE_BACKEND", "memcached")
	_, _, err = LoadConfigWithPriority(path)
	assert.Error(t, err)
}
