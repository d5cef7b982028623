package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

// EnvPrefix starts every environment override.
const EnvPrefix = "TRIPSERVE_"

// ApplyEnv loads a .env file from the working directory when present, then
// overrides config values from TRIPSERVE_* variables. Variables already set
// in the environment win over the file.
func ApplyEnv(c *Config) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warnf("Failed to load .env: %v", err)
	}

	c.Engine.MaxSuggestions = getEnvAsInt("MAX_SUGGESTIONS", c.Engine.MaxSuggestions)
	c.Engine.IntentThreshold = getEnvAsFloat("INTENT_THRESHOLD", c.Engine.IntentThreshold)
	c.Engine.EnableCache = getEnvAsBool("ENABLE_CACHE", c.Engine.EnableCache)
	c.Engine.CacheTTLSeconds = getEnvAsInt("CACHE_TTL_SECONDS", c.Engine.CacheTTLSeconds)
	c.Engine.CacheMaxEntries = getEnvAsInt("CACHE_MAX_ENTRIES", c.Engine.CacheMaxEntries)

	c.Cache.Backend = getEnv("CACHE_BACKEND", c.Cache.Backend)
	c.Cache.RedisAddr = getEnv("REDIS_ADDR", c.Cache.RedisAddr)
	c.Cache.RedisPassword = getEnv("REDIS_PASSWORD", c.Cache.RedisPassword)
	c.Cache.RedisDB = getEnvAsInt("REDIS_DB", c.Cache.RedisDB)
	c.Cache.KeyPrefix = getEnv("CACHE_KEY_PREFIX", c.Cache.KeyPrefix)

	c.Lookup.PlacesFile = getEnv("PLACES_FILE", c.Lookup.PlacesFile)
	c.Lookup.RulesFile = getEnv("RULES_FILE", c.Lookup.RulesFile)

	c.HTTP.Addr = getEnv("HTTP_ADDR", c.HTTP.Addr)
	if origins := getEnv("ALLOWED_ORIGINS", ""); origins != "" {
		c.HTTP.AllowedOrigins = splitList(origins)
	}
	c.HTTP.FallbackURL = getEnv("FALLBACK_URL", c.HTTP.FallbackURL)
	c.HTTP.FallbackTimeoutMS = getEnvAsInt("FALLBACK_TIMEOUT_MS", c.HTTP.FallbackTimeoutMS)
	c.HTTP.GinMode = getEnv("GIN_MODE", c.HTTP.GinMode)
}

func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(EnvPrefix + key); ok {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		log.Warnf("Ignoring %s%s=%q: not an integer", EnvPrefix, key, raw)
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		log.Warnf("Ignoring %s%s=%q: not a number", EnvPrefix, key, raw)
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		log.Warnf("Ignoring %s%s=%q: not a boolean", EnvPrefix, key, raw)
		return defaultValue
	}
	return value
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
