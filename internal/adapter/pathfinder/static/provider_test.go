package static

import (
	"context"
	"errors"
	"testing"
	"time"

	"rialto/internal/app/ports"
	"rialto/internal/domain/economy"
)

// Rialto bridge to Piazza San Marco, roughly 500m apart.
var (
	rialto    = economy.Position{Lat: 45.4380, Lng: 12.3359}
	sanMarco  = economy.Position{Lat: 45.4341, Lng: 12.3388}
	samePlace = economy.Position{Lat: 45.4380, Lng: 12.3359}
)

func TestRoute_WalkingEstimate(t *testing.T) {
	p := New()

	route, err := p.Route(context.Background(), rialto, sanMarco)
	if err != nil {
		t.Fatalf("route: %v", err)
	}
	if route.Distance < 300 || route.Distance > 700 {
		t.Fatalf("distance out of range: %.0fm", route.Distance)
	}
	want := time.Duration(route.Distance / walkMetersPerMin * float64(time.Minute))
	if route.Duration != want {
		t.Fatalf("duration: got=%s want=%s", route.Duration, want)
	}
}

func TestRoute_MinimumOneMinute(t *testing.T) {
	p := New()

	route, err := p.Route(context.Background(), rialto, samePlace)
	if err != nil {
		t.Fatalf("route: %v", err)
	}
	if route.Duration != time.Minute {
		t.Fatalf("zero-length route must cost one minute: %s", route.Duration)
	}
}

func TestRoute_FasterSpeedShortensTravel(t *testing.T) {
	slow := Provider{MetersPerMinute: 40}
	fast := Provider{MetersPerMinute: 160}

	slowRoute, err := slow.Route(context.Background(), rialto, sanMarco)
	if err != nil {
		t.Fatalf("slow route: %v", err)
	}
	fastRoute, err := fast.Route(context.Background(), rialto, sanMarco)
	if err != nil {
		t.Fatalf("fast route: %v", err)
	}
	if fastRoute.Duration >= slowRoute.Duration {
		t.Fatalf("speed ignored: fast=%s slow=%s", fastRoute.Duration, slowRoute.Duration)
	}
}

func TestRoute_CancelledContextUnavailable(t *testing.T) {
	p := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Route(ctx, rialto, sanMarco)
	if !errors.Is(err, ports.ErrRouteUnavailable) {
		t.Fatalf("got %v, want ErrRouteUnavailable", err)
	}
}
