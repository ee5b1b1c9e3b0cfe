package stratagem

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"rialto/internal/app/ledger"
	"rialto/internal/app/ports"
	"rialto/internal/domain/economy"
)

type ProcessUseCase struct {
	TxManager     ports.TxManager
	Citizens      ports.CitizenRepository
	Activities    ports.ActivityRepository
	Stratagems    ports.StratagemRepository
	Notifications ports.NotificationRepository
	Ledger        ledger.Service
	Tuning        economy.Tuning
	Now           func() time.Time
}

func (u ProcessUseCase) now() time.Time {
	if u.Now != nil {
		return u.Now()
	}
	return time.Now().UTC()
}

// Tick advances one stratagem. Expiry is checked first and pays nothing
// further; otherwise the processor runs, conclusion conditions are applied
// and residual escrow of a finished stratagem flows back to the executor.
// Progress, payouts and status commit in one transaction, guarded by the
// stratagem version.
func (u ProcessUseCase) Tick(ctx context.Context, stratagemID string) (economy.StratagemStatus, error) {
	s, err := u.Stratagems.GetByID(ctx, stratagemID)
	if err != nil {
		return "", fmt.Errorf("load stratagem %s: %w", stratagemID, err)
	}
	if s.Status != economy.StratagemActive {
		return s.Status, nil
	}
	now := u.now()
	expectedVersion := s.Version

	err = u.TxManager.RunInTx(ctx, func(txCtx context.Context) error {
		if s.ExpiredBy(now) {
			s.Status = economy.StratagemExpired
			if err := u.refundResidual(txCtx, &s); err != nil {
				return err
			}
			s.Version++
			return u.Stratagems.SaveWithVersion(txCtx, s, expectedVersion)
		}

		spec, ok := registry()[s.Type]
		if !ok {
			s.Status = economy.StratagemFailed
			s.Version++
			return u.Stratagems.SaveWithVersion(txCtx, s, expectedVersion)
		}
		if err := spec.Processor.Tick(txCtx, u, &s, now); err != nil {
			return err
		}
		if s.Status == economy.StratagemConcluded {
			if err := u.refundResidual(txCtx, &s); err != nil {
				return err
			}
		}
		s.Version++
		return u.Stratagems.SaveWithVersion(txCtx, s, expectedVersion)
	})
	if err != nil {
		return "", err
	}
	return s.Status, nil
}

// Cancel administratively stops an active stratagem, refunding unspent
// escrow.
func (u ProcessUseCase) Cancel(ctx context.Context, stratagemID string) error {
	s, err := u.Stratagems.GetByID(ctx, stratagemID)
	if err != nil {
		return fmt.Errorf("load stratagem %s: %w", stratagemID, err)
	}
	if s.Status != economy.StratagemActive {
		return nil
	}
	expectedVersion := s.Version
	return u.TxManager.RunInTx(ctx, func(txCtx context.Context) error {
		s.Status = economy.StratagemFailed
		if err := u.refundResidual(txCtx, &s); err != nil {
			return err
		}
		s.Version++
		return u.Stratagems.SaveWithVersion(txCtx, s, expectedVersion)
	})
}

func (u ProcessUseCase) refundResidual(ctx context.Context, s *economy.Stratagem) error {
	residual := s.Progress.RemainingEscrow()
	if residual <= 0 {
		return nil
	}
	if err := u.Ledger.InjectDucats(ctx, s.ExecutedBy, residual, economy.TxEscrowRefund, "escrow refund "+s.ID); err != nil {
		return err
	}
	s.Progress.RefundedDucats += residual
	return nil
}

// payReward releases reward ducats from the held escrow to a participant.
func (u ProcessUseCase) payReward(ctx context.Context, s *economy.Stratagem, citizen string, reward float64) error {
	if reward <= 0 {
		return nil
	}
	return u.Ledger.InjectDucats(ctx, citizen, reward, economy.TxEscrowPayout, "stratagem "+s.ID)
}

func (u ProcessUseCase) notify(ctx context.Context, citizen, kind, body string) {
	if u.Notifications == nil {
		return
	}
	_ = u.Notifications.Append(ctx, economy.Notification{
		ID:      uuid.NewString(),
		Citizen: citizen,
		Kind:    kind,
		Body:    body,
		At:      u.now(),
	})
}
