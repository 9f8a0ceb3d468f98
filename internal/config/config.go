package config

import (
	"log/slog"
	"os"

	"github.com/Buggy1111/tlacenka/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const devJWTSecret = "dev-only-secret"

func MustInit() {
	_ = godotenv.Load("./.env")

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("/etc/tlacenka")
	viper.AddConfigPath(".")
	if err := viper.ReadInConfig(); err != nil {
		panic("error while reading config file: " + err.Error())
	}

	SetupLogger()

	if IsProduction() && os.Getenv("JWT_SECRET") == "" {
		panic("JWT_SECRET must be set when APP_ENV=production")
	}
}

func SetupLogger() {
	handler := logger.NewHandler(nil)
	log := slog.New(handler)
	slog.SetDefault(log)
}

// IsProduction reports whether the service runs in production mode. It
// controls the secure flag on the auth cookie and secret enforcement.
func IsProduction() bool {
	return os.Getenv("APP_ENV") == "production"
}

// JWTSecret returns the token signing secret. In development an unset secret
// falls back to a well-known value and is loudly logged; in production the
// absence of a secret is already a startup failure.
func JWTSecret() string {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		slog.Warn("JWT_SECRET is not set, using development secret")

		return devJWTSecret
	}

	return secret
}
