package app

import (
	"fmt"
	"time"

	"github.com/healthconnect/portal/internal/config"
	jwtpkg "github.com/healthconnect/portal/internal/pkg/jwt"
	"go.uber.org/zap"
)

// applyRuntimeSettings installs the token secret and the process timezone.
// The timezone also decides what "today" means for the appointment refresh.
func applyRuntimeSettings(cfg *config.AppConfig, logger *zap.Logger) error {
	if cfg.JWTSecret != "" {
		jwtpkg.SetSecret(cfg.JWTSecret)
	} else {
		logger.Warn("jwt_secret is empty, signing tokens with the built-in development secret")
	}
	if cfg.Timezone == "" {
		return nil
	}
	loc, err := loadLocation(cfg.Timezone)
	if err != nil {
		return err
	}
	time.Local = loc
	return nil
}

// loadLocation accepts an IANA zone name or a fixed offset such as "+07:00".
func loadLocation(name string) (*time.Location, error) {
	if loc, err := time.LoadLocation(name); err == nil {
		return loc, nil
	}
	if t, err := time.Parse("-07:00", name); err == nil {
		_, offset := t.Zone()
		return time.FixedZone(name, offset), nil
	}
	return nil, fmt.Errorf("timezone %q is neither an IANA zone nor a UTC offset", name)
}
