package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	AuthModeDev           = "dev"
	AuthModeJWT           = "jwt"
	AuthModeIntrospection = "introspection"
)

type Config struct {
	Port      string `mapstructure:"PORT"`
	Env       string `mapstructure:"ENV"`
	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`
	AppName   string `mapstructure:"APP_NAME"`

	// Empty DatabaseURL means the in-memory store.
	DatabaseURL    string `mapstructure:"DATABASE_URL"`
	DBMaxOpenConns int    `mapstructure:"DB_MAX_OPEN_CONNS"`
	DBMaxIdleConns int    `mapstructure:"DB_MAX_IDLE_CONNS"`

	AuthMode                string `mapstructure:"AUTH_MODE"`
	AuthJWTSecret           string `mapstructure:"AUTH_JWT_SECRET"`
	AuthJWTIssuer           string `mapstructure:"AUTH_JWT_ISSUER"`
	AuthIntrospectionURL    string `mapstructure:"AUTH_INTROSPECTION_URL"`
	AuthIntrospectionAPIKey string `mapstructure:"AUTH_INTROSPECTION_API_KEY"`
	AllowAllCapabilities    bool   `mapstructure:"ALLOW_ALL_CAPABILITIES"`

	TimeZone            string `mapstructure:"TIME_ZONE"`
	AuditExcludedFields string `mapstructure:"AUDIT_EXCLUDED_FIELDS"`
	SeedSystemUpdateID  string `mapstructure:"SEED_SYSTEM_UPDATE_ID"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("APP_NAME", "manage-breast-screening")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("AUTH_MODE", AuthModeDev)
	v.SetDefault("ALLOW_ALL_CAPABILITIES", false)
	v.SetDefault("TIME_ZONE", "Europe/London")
	v.SetDefault("AUDIT_EXCLUDED_FIELDS", "id,created_at,updated_at")
	v.SetDefault("SEED_SYSTEM_UPDATE_ID", "seed")

	for _, key := range []string{
		"PORT", "ENV", "LOG_LEVEL", "LOG_FORMAT", "APP_NAME",
		"DATABASE_URL", "DB_MAX_OPEN_CONNS", "DB_MAX_IDLE_CONNS",
		"AUTH_MODE", "AUTH_JWT_SECRET", "AUTH_JWT_ISSUER",
		"AUTH_INTROSPECTION_URL", "AUTH_INTROSPECTION_API_KEY", "ALLOW_ALL_CAPABILITIES",
		"TIME_ZONE", "AUDIT_EXCLUDED_FIELDS", "SEED_SYSTEM_UPDATE_ID",
	} {
		_ = v.BindEnv(key)
	}

	// .env is optional
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// Validate refuses configurations that would run without real authentication
// outside development, or that point at an unknown time zone.
func (c *Config) Validate() error {
	switch c.AuthMode {
	case AuthModeDev:
		if !c.IsDev() {
			return fmt.Errorf("AUTH_MODE=dev is only allowed when ENV=development (ENV=%q)", c.Env)
		}
	case AuthModeJWT:
		if strings.TrimSpace(c.AuthJWTSecret) == "" {
			return fmt.Errorf("AUTH_JWT_SECRET is required when AUTH_MODE=jwt")
		}
	case AuthModeIntrospection:
		if strings.TrimSpace(c.AuthIntrospectionURL) == "" || strings.TrimSpace(c.AuthIntrospectionAPIKey) == "" {
			return fmt.Errorf("AUTH_INTROSPECTION_URL and AUTH_INTROSPECTION_API_KEY are required when AUTH_MODE=introspection")
		}
	default:
		return fmt.Errorf("AUTH_MODE must be %q, %q or %q, got %q", AuthModeDev, AuthModeJWT, AuthModeIntrospection, c.AuthMode)
	}

	if _, err := time.LoadLocation(c.TimeZone); err != nil {
		return fmt.Errorf("TIME_ZONE %q: %w", c.TimeZone, err)
	}
	return nil
}

// Location returns the configured time zone; Validate has already checked it.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// ExcludedAuditFields splits AUDIT_EXCLUDED_FIELDS into field names.
func (c *Config) ExcludedAuditFields() []string {
	out := make([]string, 0)
	for _, f := range strings.Split(c.AuditExcludedFields, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
