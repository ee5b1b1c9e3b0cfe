package activity

import (
	"context"
	"time"

	"rialto/internal/domain/economy"
)

// travelLeg builds the goto_location link toward a destination building, or
// returns nil when the citizen is already there. A routing failure or
// timeout degrades to the default travel duration instead of rejecting the
// intent.
func (u CreateUseCase) travelLeg(ctx context.Context, citizen economy.Citizen, dest economy.Building, start time.Time) *economy.Activity {
	if citizen.InBuilding == dest.ID {
		return nil
	}

	minutes := u.Tuning.DefaultTravelMinutes
	defaulted := true
	if u.Path != nil {
		if route, err := u.Path.Route(ctx, citizen.Position, dest.Position); err == nil && route.Duration > 0 {
			minutes = int(route.Duration.Round(time.Minute) / time.Minute)
			if minutes < 1 {
				minutes = 1
			}
			defaulted = false
		}
	}

	return &economy.Activity{
		Type:       economy.ActivityGotoLocation,
		ToBuilding: dest.ID,
		Payload: economy.ActivityPayload{Travel: &economy.TravelPayload{
			Destination:     dest.ID,
			DestinationPos:  dest.Position,
			DurationMinutes: minutes,
			DefaultedRoute:  defaulted,
		}},
		StartDate: start,
		EndDate:   start.Add(time.Duration(minutes) * time.Minute),
	}
}

// chainAfterTravel assembles [travel?, terminal], dating the terminal link
// so its StartDate equals the travel EndDate, or start when no travel is
// needed.
func chainAfterTravel(travel *economy.Activity, terminal economy.Activity, minutes int, start time.Time) []economy.Activity {
	terminalStart := start
	chain := make([]economy.Activity, 0, 2)
	if travel != nil {
		chain = append(chain, *travel)
		terminalStart = travel.EndDate
	}
	terminal.StartDate = terminalStart
	terminal.EndDate = terminalStart.Add(time.Duration(minutes) * time.Minute)
	return append(chain, terminal)
}
