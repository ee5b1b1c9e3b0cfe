package ports

import (
	"context"
	"errors"
	"time"

	"rialto/internal/domain/economy"
)

// ErrRouteUnavailable signals that no path could be computed in time; the
// caller degrades to a default travel duration rather than failing.
var ErrRouteUnavailable = errors.New("route unavailable")

type Route struct {
	Duration time.Duration
	Distance float64
}

// PathProvider is the external routing collaborator. Implementations must
// bound their own latency and return ErrRouteUnavailable on timeout.
type PathProvider interface {
	Route(ctx context.Context, from, to economy.Position) (Route, error)
}
