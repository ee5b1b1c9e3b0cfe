// Package static estimates walking routes from straight-line distance. It is
// the default PathProvider; a street-graph service can replace it without
// touching the activity layer.
package static

import (
	"context"
	"math"
	"time"

	"rialto/internal/app/ports"
	"rialto/internal/domain/economy"
)

const (
	earthRadiusMeters  = 6371000.0
	walkMetersPerMin   = 80.0
	defaultComputeWait = 200 * time.Millisecond
)

type Provider struct {
	// MetersPerMinute overrides the walking speed when > 0.
	MetersPerMinute float64
	// Timeout bounds a single Route call when > 0.
	Timeout time.Duration
}

func New() Provider {
	return Provider{}
}

func (p Provider) Route(ctx context.Context, from, to economy.Position) (ports.Route, error) {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = defaultComputeWait
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := ctx.Err(); err != nil {
		return ports.Route{}, ports.ErrRouteUnavailable
	}

	speed := p.MetersPerMinute
	if speed <= 0 {
		speed = walkMetersPerMin
	}
	distance := haversineMeters(from, to)
	minutes := distance / speed
	if minutes < 1 {
		minutes = 1
	}
	return ports.Route{
		Duration: time.Duration(minutes * float64(time.Minute)),
		Distance: distance,
	}, nil
}

func haversineMeters(from, to economy.Position) float64 {
	lat1 := from.Lat * math.Pi / 180
	lat2 := to.Lat * math.Pi / 180
	dLat := (to.Lat - from.Lat) * math.Pi / 180
	dLng := (to.Lng - from.Lng) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusMeters * c
}
