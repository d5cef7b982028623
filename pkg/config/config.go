/*
Package config manages TOML config for TripServe.
*/
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bastiangx/tripserve/internal/utils"
	"github.com/charmbracelet/log"
)

// Cache backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Config holds the entire config structure
type Config struct {
	Engine EngineConfig `toml:"engine"`
	Cache  CacheConfig  `toml:"cache"`
	Lookup LookupConfig `toml:"lookup"`
	HTTP   HTTPConfig   `toml:"http"`
	CLI    CliConfig    `toml:"cli"`
}

// EngineConfig has pipeline options.
type EngineConfig struct {
	MaxSuggestions  int     `toml:"max_suggestions"`
	IntentThreshold float64 `toml:"intent_threshold"`
	EnableCache     bool    `toml:"enable_cache"`
	CacheTTLSeconds int     `toml:"cache_ttl_seconds"`
	CacheMaxEntries int     `toml:"cache_max_entries"`
}

// CacheConfig selects and dials the result cache store.
type CacheConfig struct {
	Backend       string `toml:"backend"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	KeyPrefix     string `toml:"key_prefix"`
}

// LookupConfig points at optional data files. Empty paths use the builtin
// tables.
type LookupConfig struct {
	PlacesFile string `toml:"places_file"`
	RulesFile  string `toml:"rules_file"`
}

// HTTPConfig holds HTTP transport options.
type HTTPConfig struct {
	Addr              string   `toml:"addr"`
	AllowedOrigins    []string `toml:"allowed_origins"`
	FallbackURL       string   `toml:"fallback_url"`
	FallbackTimeoutMS int      `toml:"fallback_timeout_ms"`
	GinMode           string   `toml:"gin_mode"`
}

// CliConfig holds cli interface options.
type CliConfig struct {
	DefaultLimit int `toml:"default_limit"`
}

// CacheTTL returns the configured entry lifetime.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Engine.CacheTTLSeconds) * time.Second
}

// FallbackTimeout returns the fallback call budget.
func (c *Config) FallbackTimeout() time.Duration {
	return time.Duration(c.HTTP.FallbackTimeoutMS) * time.Millisecond
}

// Validate reports every value that cannot be used.
func (c *Config) Validate() error {
	var errs []error
	if c.Engine.MaxSuggestions < 1 {
		errs = append(errs, fmt.Errorf("engine.max_suggestions must be positive, got %d", c.Engine.MaxSuggestions))
	}
	if c.Engine.IntentThreshold <= 0 || c.Engine.IntentThreshold > 1 {
		errs = append(errs, fmt.Errorf("engine.intent_threshold must be in (0, 1], got %g", c.Engine.IntentThreshold))
	}
	if c.Engine.CacheTTLSeconds < 1 {
		errs = append(errs, fmt.Errorf("engine.cache_ttl_seconds must be positive, got %d", c.Engine.CacheTTLSeconds))
	}
	if c.Engine.CacheMaxEntries < 0 {
		errs = append(errs, fmt.Errorf("engine.cache_max_entries must not be negative, got %d", c.Engine.CacheMaxEntries))
	}
	switch c.Cache.Backend {
	case BackendMemory:
	case BackendRedis:
		if c.Cache.RedisAddr == "" {
			errs = append(errs, errors.New("cache.redis_addr is required for the redis backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("cache.backend must be %q or %q, got %q", BackendMemory, BackendRedis, c.Cache.Backend))
	}
	if c.HTTP.FallbackTimeoutMS < 1 {
		errs = append(errs, fmt.Errorf("http.fallback_timeout_ms must be positive, got %d", c.HTTP.FallbackTimeoutMS))
	}
	return errors.Join(errs...)
}

// GetConfigDir returns the config directory with fallback priority:
// 1. ~/.config/
// 2. ~/Library/Application Support/ (macOS)
// 3. Current executable dir
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Errorf("Failed to get home directory: %v", err)
		return utils.GetExecutableDir()
	}
	primaryPath := filepath.Join(homeDir, ".config", "tripserve")
	if result := utils.CheckDirStatus(primaryPath); result.Writable {
		return primaryPath, nil
	}
	macOSPath := filepath.Join(homeDir, "Library", "Application Support", "tripserve")
	if result := utils.CheckDirStatus(macOSPath); result.Writable {
		return macOSPath, nil
	}
	execDir, err := utils.GetExecutableDir()
	if err != nil {
		log.Errorf("Failed to get executable directory: %v", err)
		return "", err
	}
	return execDir, nil
}

// GetDefaultConfigPath returns the default path for config.toml
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.toml"), nil
}

// LoadConfigWithPriority loads config with priority:
// 1. Custom path from --config flag
// 2. Default path: [UserConfigDir]/tripserve/config.toml
// 3. Builtin defaults
//
// Environment overrides are applied on top in every case.
func LoadConfigWithPriority(customConfigPath string) (*Config, string, error) {
	config, path := loadFile(customConfigPath)
	ApplyEnv(config)
	if err := config.Validate(); err != nil {
		return nil, path, err
	}
	return config, path, nil
}

func loadFile(customConfigPath string) (*Config, string) {
	if customConfigPath != "" {
		if _, statErr := os.Stat(customConfigPath); statErr == nil {
			config, err := LoadConfig(customConfigPath)
			if err != nil {
				log.Warnf("Failed to load custom config from %s: %v. Trying default path...", customConfigPath, err)
			} else {
				log.Debugf("Loaded config from custom path: %s", customConfigPath)
				return config, customConfigPath
			}
		} else {
			log.Warnf("Custom config file not found at %s: %v. Trying default path...", customConfigPath, statErr)
		}
	}
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		log.Warnf("Failed to determine default config path: %v. Using built-in defaults...", err)
		return DefaultConfig(), ""
	}

	config, err := InitConfig(defaultPath)
	if err != nil {
		log.Warnf("Failed to load/create config at default path %s: %v. Using builtin defaults...", defaultPath, err)
		return DefaultConfig(), ""
	}
	log.Debugf("Loaded config from default path: %s", defaultPath)
	return config, defaultPath
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Engine: EngineConfig{
			MaxSuggestions:  8,
			IntentThreshold: 0.75,
			EnableCache:     true,
			CacheTTLSeconds: 300,
			CacheMaxEntries: 10000,
		},
		Cache: CacheConfig{
			Backend:   BackendMemory,
			RedisAddr: "localhost:6379",
			KeyPrefix: "tripserve:query:",
		},
		HTTP: HTTPConfig{
			Addr:              ":8080",
			AllowedOrigins:    []string{"*"},
			FallbackTimeoutMS: 3000,
			GinMode:           "release",
		},
		CLI: CliConfig{
			DefaultLimit: 8,
		},
	}
}

// InitConfig loads config from file or creates default if missing
func InitConfig(configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)

	if err := utils.EnsureDir(configDir); err != nil {
		log.Warnf("Failed to create config directory %s: %v. Using built-in defaults...", configDir, err)
		return DefaultConfig(), nil
	}

	if !utils.FileExists(configPath) {
		config := DefaultConfig()
		if err := SaveConfig(config, configPath); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", configPath, err)
			return DefaultConfig(), nil
		}
		log.Debugf("Created default config file at: %s", configPath)
		return config, nil
	}

	return LoadConfig(configPath)
}

// LoadConfig loads from a TOML file. Keys missing from the file keep their
// defaults; a file with syntax errors is recovered section by section.
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if err := utils.LoadTOMLFile(configPath, config); err != nil {
		return tryPartialParse(configPath)
	}
	return config, nil
}

// tryPartialParse keeps whatever typed values it can read from the file.
func tryPartialParse(configPath string) (*Config, error) {
	config := DefaultConfig()

	tempConfig, err := utils.ParseTOMLWithRecovery(configPath)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return config, nil
	}

	if section, ok := utils.ExtractSection(tempConfig, "engine"); ok {
		extractEngineConfig(section, &config.Engine)
	}
	if section, ok := utils.ExtractSection(tempConfig, "cache"); ok {
		extractCacheConfig(section, &config.Cache)
	}
	if section, ok := utils.ExtractSection(tempConfig, "lookup"); ok {
		extractLookupConfig(section, &config.Lookup)
	}
	if section, ok := utils.ExtractSection(tempConfig, "http"); ok {
		extractHTTPConfig(section, &config.HTTP)
	}
	if section, ok := utils.ExtractSection(tempConfig, "cli"); ok {
		extractCliConfig(section, &config.CLI)
	}
	return config, nil
}

func extractEngineConfig(data map[string]any, engine *EngineConfig) {
	if val, ok := utils.ExtractInt64(data, "max_suggestions"); ok {
		engine.MaxSuggestions = val
	}
	if val, ok := utils.ExtractFloat64(data, "intent_threshold"); ok {
		engine.IntentThreshold = val
	}
	if val, ok := utils.ExtractBool(data, "enable_cache"); ok {
		engine.EnableCache = val
	}
	if val, ok := utils.ExtractInt64(data, "cache_ttl_seconds"); ok {
		engine.CacheTTLSeconds = val
	}
	if val, ok := utils.ExtractInt64(data, "cache_max_entries"); ok {
		engine.CacheMaxEntries = val
	}
}

func extractCacheConfig(data map[string]any, cache *CacheConfig) {
	if val, ok := utils.ExtractString(data, "backend"); ok {
		cache.Backend = val
	}
	if val, ok := utils.ExtractString(data, "redis_addr"); ok {
		cache.RedisAddr = val
	}
	if val, ok := utils.ExtractString(data, "redis_password"); ok {
		cache.RedisPassword = val
	}
	if val, ok := utils.ExtractInt64(data, "redis_db"); ok {
		cache.RedisDB = val
	}
	if val, ok := utils.ExtractString(data, "key_prefix"); ok {
		cache.KeyPrefix = val
	}
}

func extractLookupConfig(data map[string]any, lookup *LookupConfig) {
	if val, ok := utils.ExtractString(data, "places_file"); ok {
		lookup.PlacesFile = val
	}
	if val, ok := utils.ExtractString(data, "rules_file"); ok {
		lookup.RulesFile = val
	}
}

func extractHTTPConfig(data map[string]any, http *HTTPConfig) {
	if val, ok := utils.ExtractString(data, "addr"); ok {
		http.Addr = val
	}
	if val, ok := utils.ExtractStringSlice(data, "allowed_origins"); ok {
		http.AllowedOrigins = val
	}
	if val, ok := utils.ExtractString(data, "fallback_url"); ok {
		http.FallbackURL = val
	}
	if val, ok := utils.ExtractInt64(data, "fallback_timeout_ms"); ok {
		http.FallbackTimeoutMS = val
	}
	if val, ok := utils.ExtractString(data, "gin_mode"); ok {
		http.GinMode = val
	}
}

func extractCliConfig(data map[string]any, cli *CliConfig) {
	if val, ok := utils.ExtractInt64(data, "default_limit"); ok {
		cli.DefaultLimit = val
	}
}

// GetActiveConfigPath returns the absolute path of loaded config file
func GetActiveConfigPath(configPath string) string {
	if configPath == "" {
		return "builtin defaults"
	}
	return utils.GetAbsolutePath(configPath)
}

// SaveConfig saves into a TOML file
func SaveConfig(config *Config, configPath string) error {
	return utils.SaveTOMLFile(config, configPath)
}
