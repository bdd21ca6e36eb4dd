package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Store    StoreConfig
	Identity IdentityConfig
	Relay    RelayConfig
	Cache    CacheConfig
}

// AppConfig holds application configuration
type AppConfig struct {
	Port     int
	Env      string
	LogLevel string
}

// StoreConfig holds the local record store configuration
type StoreConfig struct {
	// Path is the SQLite database file. ":memory:" is allowed.
	Path string
}

// IdentityConfig holds the defaults used to bootstrap the device profile
// on first run.
type IdentityConfig struct {
	DefaultUserID   string
	DefaultUserName string
}

// RelayConfig holds the remote logging endpoint configuration.
// An empty or placeholder Endpoint means the relay runs local-only.
type RelayConfig struct {
	Endpoint string
	Timeout  time.Duration
}

// CacheConfig holds the asset cache configuration
type CacheConfig struct {
	Root            string
	NamePrefix      string
	Version         string
	Upstream        string
	AppRoot         string
	OfflineFallback string
	Manifest        []string
	BypassHosts     []string
}

func Load() (*Config, error) {
	// .env is optional; environment variables and defaults apply without it
	_ = godotenv.Load()

	config := &Config{}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:     appPort,
		Env:      getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	// Store configuration
	config.Store = StoreConfig{
		Path: getEnv("STORE_PATH", "dakoku.db"),
	}

	// Identity bootstrap defaults
	config.Identity = IdentityConfig{
		DefaultUserID:   getEnv("DEFAULT_USER_ID", "user01"),
		DefaultUserName: getEnv("DEFAULT_USER_NAME", "あなたの名前"),
	}

	// Relay configuration
	relayTimeout, err := time.ParseDuration(getEnv("RELAY_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid RELAY_TIMEOUT: %w", err)
	}

	config.Relay = RelayConfig{
		Endpoint: getEnv("RELAY_ENDPOINT", ""),
		Timeout:  relayTimeout,
	}

	// Asset cache configuration
	appRoot := getEnv("CACHE_APP_ROOT", "/attendance-app")
	manifest := getEnvSlice("CACHE_MANIFEST")
	if len(manifest) == 0 {
		manifest = []string{
			appRoot + "/",
			appRoot + "/index.html",
			appRoot + "/styles.css",
			appRoot + "/app.js",
			appRoot + "/manifest.json",
		}
	}

	bypassHosts := getEnvSlice("CACHE_BYPASS_HOSTS")
	if len(bypassHosts) == 0 {
		bypassHosts = []string{"script.google.com"}
	}
	// The relay endpoint is always live, never cached
	if host := endpointHost(config.Relay.Endpoint); host != "" {
		bypassHosts = append(bypassHosts, host)
	}

	config.Cache = CacheConfig{
		Root:            getEnv("CACHE_ROOT", "./cache"),
		NamePrefix:      getEnv("CACHE_NAME_PREFIX", "attendance-app-"),
		Version:         getEnv("CACHE_VERSION", "v1.0.0"),
		Upstream:        getEnv("CACHE_UPSTREAM", ""),
		AppRoot:         appRoot,
		OfflineFallback: getEnv("CACHE_OFFLINE_FALLBACK", appRoot+"/index.html"),
		Manifest:        manifest,
		BypassHosts:     bypassHosts,
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.App.Port <= 0 {
		return fmt.Errorf("APP_PORT must be positive")
	}
	if c.Store.Path == "" {
		return fmt.Errorf("STORE_PATH is required")
	}
	if c.Identity.DefaultUserID == "" {
		return fmt.Errorf("DEFAULT_USER_ID is required")
	}
	if c.Relay.Timeout <= 0 {
		return fmt.Errorf("RELAY_TIMEOUT must be positive")
	}
	if c.Cache.Version == "" {
		return fmt.Errorf("CACHE_VERSION is required")
	}
	if c.Cache.Upstream != "" {
		if _, err := url.Parse(c.Cache.Upstream); err != nil {
			return fmt.Errorf("invalid CACHE_UPSTREAM: %w", err)
		}
	}
	return nil
}

// CacheName returns the current cache generation name, e.g. "attendance-app-v1.0.0".
func (c *Config) CacheName() string {
	return c.Cache.NamePrefix + c.Cache.Version
}

func endpointHost(endpoint string) string {
	if endpoint == "" {
		return ""
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return ""
	}
	return u.Host
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(env string) []string {
	value := getEnv(env, "")
	if value == "" {
		return []string{}
	}
	var result []string = strings.Split(value, ",")
	return result
}
