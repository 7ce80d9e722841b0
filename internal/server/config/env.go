package config

import (
	"errors"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/dmitrijs2005/gophprofile/internal/flagx"
	"github.com/joho/godotenv"
)

const defaultEnvFile = ".env"

// legacyEnv holds the integer-unit TTL variables used by earlier deployments.
// They are applied only when the duration variables are not set.
type legacyEnv struct {
	AccessTokenExpireMinutes *int           `env:"ACCESS_TOKEN_EXPIRE_MINUTES"`
	RefreshTokenExpireDays   *int           `env:"REFRESH_TOKEN_EXPIRE_DAYS"`
	AccessTokenTTL           *time.Duration `env:"ACCESS_TOKEN_TTL"`
	RefreshTokenTTL          *time.Duration `env:"REFRESH_TOKEN_TTL"`
}

// loadDotenv seeds the process environment from a dotenv file. Variables
// already present in the environment are not overridden. A missing default
// .env is fine; a missing file named by -env-file is an error.
func loadDotenv() error {
	path := flagx.EnvFileFlag()
	explicit := path != ""
	if !explicit {
		path = defaultEnvFile
	}

	err := godotenv.Load(path)
	if err != nil && !explicit && errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// parseEnv overlays environment variables onto config. Unset variables leave
// fields untouched.
func parseEnv(config *Config) error {
	if err := loadDotenv(); err != nil {
		return err
	}

	if err := env.Parse(config); err != nil {
		return err
	}

	var legacy legacyEnv
	if err := env.Parse(&legacy); err != nil {
		return err
	}
	if legacy.AccessTokenTTL == nil && legacy.AccessTokenExpireMinutes != nil {
		config.AccessTokenValidityDuration = time.Duration(*legacy.AccessTokenExpireMinutes) * time.Minute
	}
	if legacy.RefreshTokenTTL == nil && legacy.RefreshTokenExpireDays != nil {
		config.RefreshTokenValidityDuration = time.Duration(*legacy.RefreshTokenExpireDays) * 24 * time.Hour
	}

	return nil
}
