package activity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"rialto/internal/app/ports"
	"rialto/internal/domain/economy"
)

type giftCreator struct{}

func (giftCreator) Create(ctx context.Context, uc CreateUseCase, citizen economy.Citizen, p Params) ([]economy.Activity, error) {
	if strings.TrimSpace(p.Recipient) == "" || p.Amount <= 0 {
		return nil, ErrInvalidParams
	}
	if p.Recipient == citizen.Username {
		return nil, ErrInvalidParams
	}
	recipient, err := uc.Citizens.GetByUsername(ctx, p.Recipient)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, preconditionf("recipient %s does not exist", p.Recipient)
		}
		return nil, fmt.Errorf("load recipient %s: %w", p.Recipient, err)
	}
	if !recipient.Active {
		return nil, preconditionf("recipient %s is deactivated", recipient.Username)
	}
	if citizen.Ducats < p.Amount {
		return nil, preconditionf("%s has %.2f ducats, gift is %.2f", citizen.Username, citizen.Ducats, p.Amount)
	}

	now := uc.now()
	return []economy.Activity{{
		Type: economy.ActivitySendDucats,
		Payload: economy.ActivityPayload{DucatGift: &economy.DucatGiftPayload{
			Recipient: recipient.Username,
			Amount:    p.Amount,
			Note:      p.Note,
		}},
		StartDate: now,
		EndDate:   now.Add(time.Duration(uc.Tuning.PaperworkMinutes) * time.Minute),
	}}, nil
}

type giftProcessor struct{}

func (giftProcessor) Process(ctx context.Context, uc ProcessUseCase, a economy.Activity) error {
	g := a.Payload.DucatGift
	if g == nil {
		return errors.New("missing ducat gift payload")
	}
	if err := uc.Ledger.TransferDucats(ctx, a.Citizen, g.Recipient, g.Amount, "gift "+a.ID); err != nil {
		return err
	}
	body := fmt.Sprintf("%s sent you %.2f ducats", a.Citizen, g.Amount)
	if g.Note != "" {
		body += ": " + g.Note
	}
	uc.notify(ctx, g.Recipient, "ducats_received", body)
	return nil
}
