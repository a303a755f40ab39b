// Package config loads server configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/goliatone/go-intake/pkg/i18n"
)

type Config struct {
	Port            string   `mapstructure:"PORT"`
	Env             string   `mapstructure:"ENV"`
	DatabaseURL     string   `mapstructure:"DATABASE_URL"`
	DBMaxConns      int32    `mapstructure:"DB_MAX_CONNS"`
	DBMinConns      int32    `mapstructure:"DB_MIN_CONNS"`
	CORSOrigins     []string `mapstructure:"CORS_ORIGINS"`
	DefaultLanguage string   `mapstructure:"DEFAULT_LANGUAGE"`
	DocumentDir     string   `mapstructure:"DOCUMENT_DIR"`
	SeedDir         string   `mapstructure:"SEED_DIR"`
	ThemeManifest   string   `mapstructure:"THEME_MANIFEST"`
	ThemeVariant    string   `mapstructure:"THEME_VARIANT"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_MIN_CONNS", 2)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("DEFAULT_LANGUAGE", "en")
	v.SetDefault("DOCUMENT_DIR", "./documents")

	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("DEFAULT_LANGUAGE")
	v.BindEnv("DOCUMENT_DIR")
	v.BindEnv("SEED_DIR")
	v.BindEnv("THEME_MANIFEST")
	v.BindEnv("THEME_VARIANT")

	// .env is optional
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

	if !i18n.IsSupported(cfg.DefaultLanguage) {
		return nil, fmt.Errorf("DEFAULT_LANGUAGE %q is not a supported language", cfg.DefaultLanguage)
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// UsesPostgres reports whether DATABASE_URL is configured. Without it the
// server runs on in-memory stores, which suits demos and tests only.
func (c *Config) UsesPostgres() bool {
	return c.DatabaseURL != ""
}
