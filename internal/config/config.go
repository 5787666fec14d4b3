package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port               string        `mapstructure:"PORT"`
	Env                string        `mapstructure:"ENV"`
	MasterDatabaseURL  string        `mapstructure:"MASTER_DATABASE_URL"`
	DBMaxConns         int32         `mapstructure:"DB_MAX_CONNS"`
	DBMinConns         int32         `mapstructure:"DB_MIN_CONNS"`
	TenantSchemaPrefix string        `mapstructure:"TENANT_SCHEMA_PREFIX"`
	JWTAccessSecret    string        `mapstructure:"JWT_ACCESS_SECRET"`
	JWTRefreshSecret   string        `mapstructure:"JWT_REFRESH_SECRET"`
	AccessTokenTTL     time.Duration `mapstructure:"ACCESS_TOKEN_TTL"`
	RefreshTokenTTL    time.Duration `mapstructure:"REFRESH_TOKEN_TTL"`
	CORSOrigins        []string      `mapstructure:"CORS_ORIGINS"`
	FrontendURL        string        `mapstructure:"FRONTEND_URL"`
	SMTPHost           string        `mapstructure:"SMTP_HOST"`
	SMTPPort           int           `mapstructure:"SMTP_PORT"`
	SMTPFrom           string        `mapstructure:"SMTP_FROM"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 2)
	v.SetDefault("TENANT_SCHEMA_PREFIX", "hms_tenant_")
	v.SetDefault("ACCESS_TOKEN_TTL", "15m")
	v.SetDefault("REFRESH_TOKEN_TTL", "168h")
	v.SetDefault("CORS_ORIGINS", "http://localhost:5173")
	v.SetDefault("FRONTEND_URL", "http://localhost:5173")
	v.SetDefault("SMTP_PORT", 587)

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("MASTER_DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("TENANT_SCHEMA_PREFIX")
	v.BindEnv("JWT_ACCESS_SECRET")
	v.BindEnv("JWT_REFRESH_SECRET")
	v.BindEnv("ACCESS_TOKEN_TTL")
	v.BindEnv("REFRESH_TOKEN_TTL")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("FRONTEND_URL")
	v.BindEnv("SMTP_HOST")
	v.BindEnv("SMTP_PORT")
	v.BindEnv("SMTP_FROM")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if cfg.MasterDatabaseURL == "" {
		return nil, fmt.Errorf("MASTER_DATABASE_URL is required")
	}

	// Development runs without configured secrets; generate a distinct
	// random one per token class so a refresh token can never pass
	// access verification. Tokens do not survive a restart in this mode.
	if cfg.IsDev() {
		if cfg.JWTAccessSecret == "" {
			secret, err := randomSecret()
			if err != nil {
				return nil, fmt.Errorf("generate dev access secret: %w", err)
			}
			cfg.JWTAccessSecret = secret
		}
		if cfg.JWTRefreshSecret == "" {
			secret, err := randomSecret()
			if err != nil {
				return nil, fmt.Errorf("generate dev refresh secret: %w", err)
			}
			cfg.JWTRefreshSecret = secret
		}
	}

	return cfg, nil
}

func randomSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate checks that the configuration is safe to run. Outside development
// the JWT secrets must be explicitly set; shipping with empty or mirrored
// secrets would let refresh tokens pass access verification.
func (c *Config) Validate() error {
	if !c.IsDev() {
		if c.JWTAccessSecret == "" || c.JWTRefreshSecret == "" {
			return fmt.Errorf("JWT_ACCESS_SECRET and JWT_REFRESH_SECRET are required when ENV=%q", c.Env)
		}
	}
	if c.JWTAccessSecret == c.JWTRefreshSecret {
		return fmt.Errorf("JWT_ACCESS_SECRET and JWT_REFRESH_SECRET must differ")
	}
	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 {
		return fmt.Errorf("token TTLs must be positive")
	}
	if c.AccessTokenTTL >= c.RefreshTokenTTL {
		return fmt.Errorf("ACCESS_TOKEN_TTL must be shorter than REFRESH_TOKEN_TTL")
	}
	return nil
}
