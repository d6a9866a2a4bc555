// Package config provides configuration management for the storefront server.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/vyrodovalexey/storefront/internal/auth"
)

// Default configuration values.
const (
	DefaultServerPort       = 8080
	DefaultLogLevel         = "info"
	DefaultShutdownTimeout  = 30 * time.Second
	DefaultMetricsEnabled   = true
	DefaultAdminID          = auth.DefaultAdminID
	DefaultResponseMode     = "legacy"
	DefaultConsistencyMode  = "legacy"
	DefaultCartCheck        = "legacy"
	DefaultCartTotal        = "legacy"
	DefaultStoreBackend     = "memory"
	DefaultMongoURI         = "mongodb://localhost:27017"
	DefaultMongoDatabase    = "ShopifyStore"
	DefaultMongoMaxPoolSize = 50
	DefaultLockBackend      = "memory"
	DefaultRedisAddr        = "localhost:6379"
	DefaultLockTTL          = 5 * time.Second
	DefaultCORSOrigins      = "*"
	DefaultCORSMaxAge       = 24 * time.Hour
)

// Environment variable names.
const (
	EnvServerPort       = "APP_SERVER_PORT"
	EnvLogLevel         = "APP_LOG_LEVEL"
	EnvShutdownTimeout  = "APP_SHUTDOWN_TIMEOUT"
	EnvMetricsEnabled   = "APP_METRICS_ENABLED"
	EnvAdminID          = "APP_ADMIN_ID"
	EnvResponseMode     = "APP_RESPONSE_MODE"
	EnvConsistencyMode  = "APP_CONSISTENCY_MODE"
	EnvCartCheck        = "APP_CART_CHECK"
	EnvCartTotal        = "APP_CART_TOTAL"
	EnvStoreBackend     = "APP_STORE_BACKEND"
	EnvMongoURI         = "APP_MONGO_URI"
	EnvMongoDatabase    = "APP_MONGO_DATABASE"
	EnvMongoMaxPoolSize = "APP_MONGO_MAX_POOL_SIZE"
	EnvLockBackend      = "APP_LOCK_BACKEND"
	EnvRedisAddr        = "APP_REDIS_ADDR"
	EnvLockTTL          = "APP_LOCK_TTL"
	EnvCORSOrigins      = "APP_CORS_ALLOWED_ORIGINS"
	EnvCORSMaxAge       = "APP_CORS_MAX_AGE"
)

// Config holds the application configuration.
type Config struct {
	// Server settings.
	ServerPort      int
	LogLevel        string
	ShutdownTimeout time.Duration
	MetricsEnabled  bool

	// CORS settings. "*" in CORSOrigins allows any origin.
	CORSOrigins []string
	CORSMaxAge  time.Duration

	// AdminID is the only caller allowed to add or update items.
	AdminID string

	// Behaviour switches: legacy reproduces the historical service.
	ResponseMode    string // legacy, status
	ConsistencyMode string // legacy, atomic, locked
	CartCheck       string // legacy, strict
	CartTotal       string // legacy, corrected

	// Storage settings.
	StoreBackend     string // memory, mongo
	MongoURI         string
	MongoDatabase    string
	MongoMaxPoolSize int

	// Lock settings, used in locked consistency mode.
	LockBackend string // memory, redis
	RedisAddr   string
	LockTTL     time.Duration
}

// Validation errors.
var (
	ErrInvalidServerPort      = errors.New("server port must be between 1 and 65535")
	ErrInvalidLogLevel        = errors.New("log level must be one of: debug, info, warn, error")
	ErrInvalidShutdownTimeout = errors.New("shutdown timeout must be positive")
	ErrEmptyAdminID           = errors.New("admin id must not be empty")
	ErrInvalidResponseMode    = errors.New("response mode must be one of: legacy, status")
	ErrInvalidConsistencyMode = errors.New("consistency mode must be one of: legacy, atomic, locked")
	ErrInvalidCartCheck       = errors.New("cart check must be one of: legacy, strict")
	ErrInvalidCartTotal       = errors.New("cart total must be one of: legacy, corrected")
	ErrInvalidStoreBackend    = errors.New("store backend must be one of: memory, mongo")
	ErrInvalidMongoConfig     = errors.New("mongo URI and database must be set when store backend is mongo")
	ErrInvalidMongoPoolSize   = errors.New("mongo max pool size must be positive")
	ErrInvalidLockBackend     = errors.New("lock backend must be one of: memory, redis")
	ErrInvalidRedisConfig     = errors.New("redis address must be set when lock backend is redis")
	ErrInvalidLockTTL         = errors.New("lock TTL must be positive")
	ErrEmptyCORSOrigins       = errors.New("at least one CORS origin must be allowed")
	ErrInvalidCORSMaxAge      = errors.New("CORS max age must not be negative")
)

// Load reads configuration from environment variables with defaults.
// Environment variables have priority over default values.
func Load() (*Config, error) {
	cfg := &Config{
		ServerPort:       DefaultServerPort,
		LogLevel:         DefaultLogLevel,
		ShutdownTimeout:  DefaultShutdownTimeout,
		MetricsEnabled:   DefaultMetricsEnabled,
		CORSOrigins:      []string{DefaultCORSOrigins},
		CORSMaxAge:       DefaultCORSMaxAge,
		AdminID:          DefaultAdminID,
		ResponseMode:     DefaultResponseMode,
		ConsistencyMode:  DefaultConsistencyMode,
		CartCheck:        DefaultCartCheck,
		CartTotal:        DefaultCartTotal,
		StoreBackend:     DefaultStoreBackend,
		MongoURI:         DefaultMongoURI,
		MongoDatabase:    DefaultMongoDatabase,
		MongoMaxPoolSize: DefaultMongoMaxPoolSize,
		LockBackend:      DefaultLockBackend,
		RedisAddr:        DefaultRedisAddr,
		LockTTL:          DefaultLockTTL,
	}

	if err := cfg.loadFromEnv(); err != nil {
		return nil, fmt.Errorf("loading config from environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// loadFromEnv loads configuration values from environment variables.
func (c *Config) loadFromEnv() error {
	if err := c.loadServerEnv(); err != nil {
		return err
	}

	c.loadBehaviourEnv()

	if err := c.loadBackendEnv(); err != nil {
		return err
	}

	return nil
}

// loadServerEnv loads server-related environment variables.
func (c *Config) loadServerEnv() error {
	if val := os.Getenv(EnvServerPort); val != "" {
		port, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", EnvServerPort, err)
		}
		c.ServerPort = port
	}

	if val := os.Getenv(EnvLogLevel); val != "" {
		c.LogLevel = val
	}

	if val := os.Getenv(EnvShutdownTimeout); val != "" {
		timeout, err := time.ParseDuration(val)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", EnvShutdownTimeout, err)
		}
		c.ShutdownTimeout = timeout
	}

	if val := os.Getenv(EnvMetricsEnabled); val != "" {
		enabled, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", EnvMetricsEnabled, err)
		}
		c.MetricsEnabled = enabled
	}

	if val := os.Getenv(EnvCORSOrigins); val != "" {
		c.CORSOrigins = splitList(val)
	}

	if val := os.Getenv(EnvCORSMaxAge); val != "" {
		maxAge, err := time.ParseDuration(val)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", EnvCORSMaxAge, err)
		}
		c.CORSMaxAge = maxAge
	}

	return nil
}

// splitList splits a comma-separated value, dropping blank elements.
func splitList(val string) []string {
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// loadBehaviourEnv loads the admin identity and the behaviour switches.
func (c *Config) loadBehaviourEnv() {
	if val, ok := os.LookupEnv(EnvAdminID); ok {
		c.AdminID = val
	}

	if val := os.Getenv(EnvResponseMode); val != "" {
		c.ResponseMode = val
	}

	if val := os.Getenv(EnvConsistencyMode); val != "" {
		c.ConsistencyMode = val
	}

	if val := os.Getenv(EnvCartCheck); val != "" {
		c.CartCheck = val
	}

	if val := os.Getenv(EnvCartTotal); val != "" {
		c.CartTotal = val
	}
}

// loadBackendEnv loads storage and lock environment variables.
func (c *Config) loadBackendEnv() error {
	if val := os.Getenv(EnvStoreBackend); val != "" {
		c.StoreBackend = val
	}

	if val := os.Getenv(EnvMongoURI); val != "" {
		c.MongoURI = val
	}

	if val := os.Getenv(EnvMongoDatabase); val != "" {
		c.MongoDatabase = val
	}

	if val := os.Getenv(EnvMongoMaxPoolSize); val != "" {
		size, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", EnvMongoMaxPoolSize, err)
		}
		c.MongoMaxPoolSize = size
	}

	if val := os.Getenv(EnvLockBackend); val != "" {
		c.LockBackend = val
	}

	if val := os.Getenv(EnvRedisAddr); val != "" {
		c.RedisAddr = val
	}

	if val := os.Getenv(EnvLockTTL); val != "" {
		ttl, err := time.ParseDuration(val)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", EnvLockTTL, err)
		}
		c.LockTTL = ttl
	}

	return nil
}

// Validate checks if the configuration values are valid.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateBehaviour(); err != nil {
		return err
	}

	if err := c.validateBackends(); err != nil {
		return err
	}

	return nil
}

// validateServer validates server-related configuration.
func (c *Config) validateServer() error {
	if c.ServerPort < 1 || c.ServerPort > 65535 {
		return ErrInvalidServerPort
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return ErrInvalidLogLevel
	}

	if c.ShutdownTimeout <= 0 {
		return ErrInvalidShutdownTimeout
	}

	if len(c.CORSOrigins) == 0 {
		return ErrEmptyCORSOrigins
	}

	if c.CORSMaxAge < 0 {
		return ErrInvalidCORSMaxAge
	}

	return nil
}

// validateBehaviour validates the admin identity and behaviour switches.
func (c *Config) validateBehaviour() error {
	if c.AdminID == "" {
		return ErrEmptyAdminID
	}

	switch c.ResponseMode {
	case "legacy", "status":
	default:
		return ErrInvalidResponseMode
	}

	switch c.ConsistencyMode {
	case "legacy", "atomic", "locked":
	default:
		return ErrInvalidConsistencyMode
	}

	switch c.CartCheck {
	case "legacy", "strict":
	default:
		return ErrInvalidCartCheck
	}

	switch c.CartTotal {
	case "legacy", "corrected":
	default:
		return ErrInvalidCartTotal
	}

	return nil
}

// validateBackends validates storage and lock configuration.
func (c *Config) validateBackends() error {
	switch c.StoreBackend {
	case "memory":
	case "mongo":
		if c.MongoURI == "" || c.MongoDatabase == "" {
			return ErrInvalidMongoConfig
		}
		if c.MongoMaxPoolSize <= 0 {
			return ErrInvalidMongoPoolSize
		}
	default:
		return ErrInvalidStoreBackend
	}

	switch c.LockBackend {
	case "memory":
	case "redis":
		if c.RedisAddr == "" {
			return ErrInvalidRedisConfig
		}
		if c.LockTTL <= 0 {
			return ErrInvalidLockTTL
		}
	default:
		return ErrInvalidLockBackend
	}

	return nil
}

// UsesRedisLock reports whether a Redis lock is needed.
func (c *Config) UsesRedisLock() bool {
	return c.ConsistencyMode == "locked" && c.LockBackend == "redis"
}

// Address returns the server address in host:port format.
func (c *Config) Address() string {
	return fmt.Sprintf(":%d", c.ServerPort)
}
