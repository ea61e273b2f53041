// Package location provides the server's notion of "current position".
package location

import (
	"context"
	"errors"

	"alcyxob/workout-tracker/internal/config"
	"alcyxob/workout-tracker/internal/domain"
)

// ErrPositionUnavailable is returned when no position is configured.
var ErrPositionUnavailable = errors.New("current position is unavailable")

// StaticLocator reports a fixed, configured position.
type StaticLocator struct {
	coords  domain.Coords
	enabled bool
}

// NewStaticLocator builds a locator from cfg. Invalid coordinates disable it.
func NewStaticLocator(cfg config.LocationConfig) *StaticLocator {
	c := domain.Coords{Lat: cfg.Latitude, Lon: cfg.Longitude}
	return &StaticLocator{coords: c, enabled: cfg.Enabled && c.Valid()}
}

func (l *StaticLocator) CurrentPosition(ctx context.Context) (domain.Coords, error) {
	if err := ctx.Err(); err != nil {
		return domain.Coords{}, err
	}
	if !l.enabled {
		return domain.Coords{}, ErrPositionUnavailable
	}
	return l.coords, nil
}
