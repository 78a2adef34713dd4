package config

import (
	"errors"
	"fmt"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

// Storage drivers accepted in DB_DRIVER
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// AI provider types
const (
	ProviderAnthropic        = "anthropic"
	ProviderOpenAI           = "openai"
	ProviderOpenAICompatible = "openai-compatible"
)

const devJWTSecret = "dev_jwt_secret_change_me"

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	App      AppConfig
	Admin    AdminConfig
	AI       AIConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	AllowedOrigins  []string

	// X-Forwarded-For and X-Real-IP are only read from these peers (IPs or CIDRs)
	TrustedProxies []string
}

// DatabaseConfig selects and configures the storage backend
type DatabaseConfig struct {
	Driver string

	// postgres
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxConns        int
	MinConns        int
	ConnMaxLifetime time.Duration

	// sqlite: a file path, file: URI or libsql:// URL
	SQLitePath string
}

// RedisConfig holds Redis connection settings; Redis is optional
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
	CacheTTL time.Duration
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Environment             string
	LogLevel                string
	LogFormat               string
	PublicBaseURL           string
	SlugLength              int
	SlugAttempts            int
	SlugWidenEvery          int
	RateLimitEnabled        bool
	RateLimitPerMinute      int
	LoginRateLimitPerMinute int
	EnableMetrics           bool
	LegacyClickCounting     bool
}

// AdminConfig holds the single admin credential and session settings
type AdminConfig struct {
	PasswordHash string
	Password     string
	JWTSecret    string
	SessionTTL   time.Duration
	CookieSecure bool
}

// AIConfig lists text-generation providers in fallback order
type AIConfig struct {
	ProvidersFile string
	Providers     []AIProvider
	Timeout       time.Duration // one provider attempt
	TotalTimeout  time.Duration // a whole generation request, article and SEO together
	MaxTokens     int
}

// AIProvider is one entry of the fallback chain
type AIProvider struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type"` // anthropic | openai | openai-compatible
	APIKey   string `yaml:"api_key"`
	Endpoint string `yaml:"endpoint,omitempty"`
	Model    string `yaml:"model,omitempty"`
	Disabled bool   `yaml:"disabled,omitempty"`
}

type providersFile struct {
	Providers []AIProvider `yaml:"providers"`
}

// Load reads configuration from a .env file (when present) and environment variables
func Load() (*Config, error) {
	_ = godotenv.Load() // a missing .env is normal outside development

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("SERVER_PORT", "8080"),
			ReadTimeout:     parseDuration("SERVER_READ_TIMEOUT", "10s"),
			WriteTimeout:    parseDuration("SERVER_WRITE_TIMEOUT", "90s"),
			IdleTimeout:     parseDuration("SERVER_IDLE_TIMEOUT", "120s"),
			ShutdownTimeout: parseDuration("SERVER_SHUTDOWN_TIMEOUT", "30s"),
			AllowedOrigins:  parseList("CORS_ALLOWED_ORIGINS", "*"),
			TrustedProxies:  parseList("TRUSTED_PROXIES", ""),
		},
		Database: DatabaseConfig{
			Driver:          strings.ToLower(getEnv("DB_DRIVER", DriverPostgres)),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "walink"),
			Password:        getEnv("DB_PASSWORD", "dev_password_123"),
			DBName:          getEnv("DB_NAME", "walink"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			MaxConns:        parseInt("DB_MAX_CONNS", 25),
			MinConns:        parseInt("DB_MIN_CONNS", 2),
			ConnMaxLifetime: parseDuration("DB_CONN_MAX_LIFETIME", "5m"),
			SQLitePath:      getEnv("SQLITE_PATH", "walink.db"),
		},
		Redis: RedisConfig{
			Enabled:  parseBool("REDIS_ENABLED", true),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       parseInt("REDIS_DB", 0),
			CacheTTL: parseDuration("REDIS_CACHE_TTL", "1h"),
		},
		App: AppConfig{
			Environment:             getEnv("APP_ENV", "development"),
			LogLevel:                getEnv("LOG_LEVEL", "info"),
			LogFormat:               getEnv("LOG_FORMAT", "json"),
			PublicBaseURL:           strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:8080"), "/"),
			SlugLength:              parseInt("SLUG_LENGTH", 6),
			SlugAttempts:            parseInt("SLUG_MAX_ATTEMPTS", 10),
			SlugWidenEvery:          parseInt("SLUG_WIDEN_EVERY", 3),
			RateLimitEnabled:        parseBool("RATE_LIMIT_ENABLED", true),
			RateLimitPerMinute:      parseInt("RATE_LIMIT_REQUESTS_PER_MINUTE", 30),
			LoginRateLimitPerMinute: parseInt("LOGIN_RATE_LIMIT_PER_MINUTE", 5),
			EnableMetrics:           parseBool("ENABLE_METRICS", true),
			LegacyClickCounting:     parseBool("LEGACY_CLICK_COUNTING", false),
		},
		Admin: AdminConfig{
			PasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
			Password:     getEnv("ADMIN_PASSWORD", ""),
			JWTSecret:    getEnv("JWT_SECRET", devJWTSecret),
			SessionTTL:   parseDuration("ADMIN_SESSION_TTL", "24h"),
			CookieSecure: parseBool("ADMIN_COOKIE_SECURE", false),
		},
		AI: AIConfig{
			ProvidersFile: getEnv("AI_PROVIDERS_FILE", ""),
			Timeout:       parseDuration("AI_PROVIDER_TIMEOUT", "10s"),
			TotalTimeout:  parseDuration("AI_TOTAL_TIMEOUT", "60s"),
			MaxTokens:     parseInt("AI_MAX_TOKENS", 2048),
		},
	}

	providers, err := loadProviders(cfg.AI.ProvidersFile)
	if err != nil {
		return nil, err
	}
	cfg.AI.Providers = providers

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadProviders reads the YAML provider list when a file is configured,
// otherwise builds the list from well-known API key variables
func loadProviders(path string) ([]AIProvider, error) {
	var providers []AIProvider

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read AI providers file: %w", err)
		}
		var file providersFile
		if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(raw))), &file); err != nil {
			return nil, fmt.Errorf("failed to parse AI providers file: %w", err)
		}
		providers = file.Providers
	} else {
		providers = providersFromEnv()
	}

	providers = lo.Filter(providers, func(p AIProvider, _ int) bool {
		return !p.Disabled && strings.TrimSpace(p.APIKey) != ""
	})
	for i := range providers {
		providers[i].Type = NormalizeProviderType(providers[i].Type)
		if providers[i].Name == "" {
			providers[i].Name = providers[i].Type
		}
	}
	return providers, nil
}

func providersFromEnv() []AIProvider {
	return []AIProvider{
		{
			Name:   "openai",
			Type:   ProviderOpenAI,
			APIKey: getEnv("OPENAI_API_KEY", ""),
			Model:  getEnv("OPENAI_MODEL", ""),
		},
		{
			Name:   "anthropic",
			Type:   ProviderAnthropic,
			APIKey: getEnv("ANTHROPIC_API_KEY", ""),
			Model:  getEnv("ANTHROPIC_MODEL", ""),
		},
		{
			Name:     getEnv("AI_COMPAT_NAME", "openai-compatible"),
			Type:     ProviderOpenAICompatible,
			APIKey:   getEnv("AI_COMPAT_API_KEY", ""),
			Endpoint: getEnv("AI_COMPAT_ENDPOINT", ""),
			Model:    getEnv("AI_COMPAT_MODEL", ""),
		},
	}
}

// NormalizeProviderType accepts "OpenAI_Compatible", "openai compatible" and similar spellings
func NormalizeProviderType(raw string) string {
	t := strings.ToLower(strings.TrimSpace(raw))
	t = strings.ReplaceAll(t, "_", "-")
	t = strings.ReplaceAll(t, " ", "-")
	if t == "openaicompatible" {
		return ProviderOpenAICompatible
	}
	return t
}

// Validate rejects configurations the server cannot run with
func (c *Config) Validate() error {
	var errs []error

	if c.Database.Driver != DriverPostgres && c.Database.Driver != DriverSQLite {
		errs = append(errs, fmt.Errorf("DB_DRIVER must be %q or %q, got %q", DriverPostgres, DriverSQLite, c.Database.Driver))
	}
	if c.Database.Driver == DriverSQLite && strings.TrimSpace(c.Database.SQLitePath) == "" {
		errs = append(errs, errors.New("SQLITE_PATH is required for the sqlite driver"))
	}
	if c.App.SlugLength < 4 || c.App.SlugLength > 16 {
		errs = append(errs, fmt.Errorf("SLUG_LENGTH must be between 4 and 16, got %d", c.App.SlugLength))
	}
	if c.App.SlugAttempts < 1 {
		errs = append(errs, errors.New("SLUG_MAX_ATTEMPTS must be positive"))
	}
	if c.App.SlugWidenEvery < 1 {
		errs = append(errs, errors.New("SLUG_WIDEN_EVERY must be positive"))
	}
	if c.AI.Timeout <= 0 {
		errs = append(errs, errors.New("AI_PROVIDER_TIMEOUT must be positive"))
	}
	if c.AI.TotalTimeout <= 0 {
		errs = append(errs, errors.New("AI_TOTAL_TIMEOUT must be positive"))
	} else if c.Server.WriteTimeout > 0 && c.AI.TotalTimeout >= c.Server.WriteTimeout {
		errs = append(errs, fmt.Errorf("AI_TOTAL_TIMEOUT (%s) must be shorter than SERVER_WRITE_TIMEOUT (%s)", c.AI.TotalTimeout, c.Server.WriteTimeout))
	}
	for _, proxy := range c.Server.TrustedProxies {
		if !validProxy(proxy) {
			errs = append(errs, fmt.Errorf("TRUSTED_PROXIES entry %q is not an IP or CIDR", proxy))
		}
	}
	if c.Admin.SessionTTL <= 0 {
		errs = append(errs, errors.New("ADMIN_SESSION_TTL must be positive"))
	}
	if c.IsProduction() && (c.Admin.JWTSecret == devJWTSecret || len(c.Admin.JWTSecret) < 32) {
		errs = append(errs, errors.New("JWT_SECRET must be set to at least 32 characters in production"))
	}

	for _, p := range c.AI.Providers {
		switch p.Type {
		case ProviderAnthropic, ProviderOpenAI:
		case ProviderOpenAICompatible:
			if strings.TrimSpace(p.Endpoint) == "" {
				errs = append(errs, fmt.Errorf("AI provider %q needs an endpoint", p.Name))
			}
		default:
			errs = append(errs, fmt.Errorf("AI provider %q has unknown type %q", p.Name, p.Type))
		}
	}

	return errors.Join(errs...)
}

func validProxy(entry string) bool {
	if _, err := netip.ParsePrefix(entry); err == nil {
		return true
	}
	_, err := netip.ParseAddr(entry)
	return err == nil
}

// IsProduction reports whether APP_ENV is production
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// RedisAddr returns the Redis address in host:port format
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func parseBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func parseDuration(key string, defaultValue string) time.Duration {
	value := getEnv(key, defaultValue)
	duration, err := time.ParseDuration(value)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}
	return duration
}

func parseList(key, defaultValue string) []string {
	parts := strings.Split(getEnv(key, defaultValue), ",")
	return lo.Compact(lo.Map(parts, func(p string, _ int) string {
		return strings.TrimSpace(p)
	}))
}
