package config

import "time"

type App struct {
	Port           string        `mapstructure:"APP_PORT"`
	DatabaseURL    string        `mapstructure:"DATABASE_URL"`
	JWTSecret      string        `mapstructure:"JWT_SECRET"`
	JWTTTLHours    int           `mapstructure:"JWT_TTL_HOURS"`
	UploadDir      string        `mapstructure:"UPLOAD_DIR"`
	StorageTimeout time.Duration `mapstructure:"STORAGE_TIMEOUT"`
	Env            string        `mapstructure:"APP_ENV"`
}
