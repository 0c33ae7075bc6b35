package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Load reads configuration from the environment. DATABASE_URL and
// JWT_SECRET have no usable defaults and must be set.
func Load() (App, error) {
	v := viper.New()

	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("JWT_TTL_HOURS", 1)
	v.SetDefault("UPLOAD_DIR", "uploads")
	v.SetDefault("STORAGE_TIMEOUT", 5*time.Second)
	v.SetDefault("APP_ENV", "dev")

	v.AutomaticEnv()
	for _, key := range []string{"APP_PORT", "DATABASE_URL", "JWT_SECRET", "JWT_TTL_HOURS", "UPLOAD_DIR", "STORAGE_TIMEOUT", "APP_ENV"} {
		if err := v.BindEnv(key); err != nil {
			return App{}, err
		}
	}

	var cfg App
	if err := v.Unmarshal(&cfg); err != nil {
		return App{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.DatabaseURL == "" {
		return App{}, fmt.Errorf("required env missing: DATABASE_URL")
	}
	if cfg.JWTSecret == "" {
		return App{}, fmt.Errorf("required env missing: JWT_SECRET")
	}
	return cfg, nil
}
