package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Supabase SupabaseConfig
	Tenancy  TenancyConfig
	AI       AIConfig
}

type ServerConfig struct {
	Host           string
	Port           int
	Environment    string // APP_ENV: development, preview, production
	AllowedOrigins []string
	AdminToken     string // platform operator token for tenant onboarding

	// TrustProxyHeaders takes the client address from X-Forwarded-For and
	// X-Real-IP. Enable only behind a proxy that overwrites them.
	TrustProxyHeaders bool
}

type DatabaseConfig struct {
	URL            string
	MaxConns       int
	MinConns       int
	MigrationsPath string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type SupabaseConfig struct {
	URL            string
	AnonKey        string
	ServiceRoleKey string // server only, never sent to browsers
	JWTSecret      string
	LogoBucket     string
}

type TenancyConfig struct {
	RootDomain string
}

type AIConfig struct {
	AnthropicKey string
}

// Load reads the process environment once. The returned warnings describe
// optional settings that are absent; callers log them and keep running.
func Load() (*Config, []string, error) {
	port, err := getEnvInt("SERVER_PORT", 8080)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	maxConns, err := getEnvInt("DB_MAX_CONNS", 20)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}

	minConns, err := getEnvInt("DB_MIN_CONNS", 2)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid DB_MIN_CONNS: %w", err)
	}

	redisDB, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	trustProxy, err := getEnvBool("TRUST_PROXY_HEADERS", false)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid TRUST_PROXY_HEADERS: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			Port:           port,
			Environment:    getEnv("APP_ENV", "development"),
			AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
			AdminToken:     getEnv("PLATFORM_ADMIN_TOKEN", ""),

			TrustProxyHeaders: trustProxy,
		},
		Database: DatabaseConfig{
			URL:            getEnv("DATABASE_URL", ""),
			MaxConns:       maxConns,
			MinConns:       minConns,
			MigrationsPath: getEnv("MIGRATIONS_PATH", ""), // empty: embedded schema
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Supabase: SupabaseConfig{
			URL:            strings.TrimRight(getEnv("SUPABASE_URL", ""), "/"),
			AnonKey:        getEnv("SUPABASE_ANON_KEY", ""),
			ServiceRoleKey: getEnv("SUPABASE_SERVICE_ROLE_KEY", ""),
			JWTSecret:      getEnv("SUPABASE_JWT_SECRET", ""),
			LogoBucket:     getEnv("SUPABASE_LOGO_BUCKET", "school-logos"),
		},
		Tenancy: TenancyConfig{
			RootDomain: strings.ToLower(getEnv("ROOT_DOMAIN", "localhost")),
		},
		AI: AIConfig{
			AnthropicKey: getEnv("ANTHROPIC_API_KEY", ""),
		},
	}

	return cfg, cfg.Warnings(), nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// Warnings lists optional variables that are not set.
func (c *Config) Warnings() []string {
	var warnings []string
	if c.Database.URL == "" {
		warnings = append(warnings, "DATABASE_URL is not set, using the in-memory store")
	}
	if c.AI.AnthropicKey == "" {
		warnings = append(warnings, "ANTHROPIC_API_KEY is not set, AI features are disabled")
	}
	if c.Supabase.ServiceRoleKey == "" {
		warnings = append(warnings, "SUPABASE_SERVICE_ROLE_KEY is not set, elevated operations will fail")
	}
	return warnings
}

func (c *Config) Validate() error {
	var missing []string
	if c.Supabase.URL == "" {
		missing = append(missing, "SUPABASE_URL")
	}
	if c.Supabase.JWTSecret == "" {
		missing = append(missing, "SUPABASE_JWT_SECRET")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required env vars: %s", strings.Join(missing, ", "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}

func getEnvBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.ParseBool(v)
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
