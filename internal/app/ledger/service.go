package ledger

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"rialto/internal/app/ports"
	"rialto/internal/domain/economy"
)

var (
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrSameAccount       = errors.New("same account")
)

// Service is the only component allowed to mutate ducat balances and
// resource stacks. Every mutation emits a Transaction for auditing.
// All methods expect to run inside a TxManager transaction.
type Service struct {
	Citizens     ports.CitizenRepository
	Resources    ports.ResourceRepository
	Transactions ports.TransactionRepository
	Now          func() time.Time
}

func (s Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

// TransferDucats moves amount from one account to another. The treasury
// account is not backed by a citizen record; a transfer touching it becomes
// the modeled issuance/sink but is still audited.
func (s Service) TransferDucats(ctx context.Context, from, to string, amount float64, reference string) error {
	return s.transfer(ctx, from, to, amount, economy.TxDucatTransfer, reference)
}

// PayFee is a ducat transfer audited as a contract fee.
func (s Service) PayFee(ctx context.Context, from, to string, amount float64, reference string) error {
	return s.transfer(ctx, from, to, amount, economy.TxContractFee, reference)
}

// Balance reports an account's spendable ducats. The unbacked treasury can
// always pay.
func (s Service) Balance(ctx context.Context, account string) (float64, error) {
	if account == economy.TreasuryAccount {
		return math.Inf(1), nil
	}
	c, err := s.Citizens.GetByUsername(ctx, account)
	if err != nil {
		return 0, fmt.Errorf("load account %s: %w", account, err)
	}
	return c.Ducats, nil
}

// AvailableResource totals a holder's stacks of one resource type. Callers
// with a multi-leg mutation check both legs through this before moving
// anything.
func (s Service) AvailableResource(ctx context.Context, assetID string, kind economy.AssetKind, resourceType string) (float64, error) {
	stacks, err := s.Resources.ListByHolder(ctx, assetID, kind, resourceType)
	if err != nil {
		return 0, fmt.Errorf("list stacks at %s: %w", assetID, err)
	}
	return available(stacks), nil
}

func (s Service) transfer(ctx context.Context, from, to string, amount float64, kind economy.TransactionKind, reference string) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if from == to {
		return ErrSameAccount
	}

	if from != economy.TreasuryAccount {
		sender, err := s.Citizens.GetByUsername(ctx, from)
		if err != nil {
			return fmt.Errorf("load sender %s: %w", from, err)
		}
		if sender.Ducats < amount {
			return fmt.Errorf("%w: %s has %.2f, needs %.2f", ErrInsufficientFunds, from, sender.Ducats, amount)
		}
		sender.Ducats -= amount
		if err := s.Citizens.SaveWithVersion(ctx, bump(sender), sender.Version); err != nil {
			return fmt.Errorf("debit %s: %w", from, err)
		}
	}

	if to != economy.TreasuryAccount {
		receiver, err := s.Citizens.GetByUsername(ctx, to)
		if err != nil {
			return fmt.Errorf("load receiver %s: %w", to, err)
		}
		receiver.Ducats += amount
		if err := s.Citizens.SaveWithVersion(ctx, bump(receiver), receiver.Version); err != nil {
			return fmt.Errorf("credit %s: %w", to, err)
		}
	}

	return s.record(ctx, economy.Transaction{
		Kind:        kind,
		FromAccount: from,
		ToAccount:   to,
		Amount:      amount,
		Reference:   reference,
	})
}

// InjectDucats credits an account from outside the modeled economy.
func (s Service) InjectDucats(ctx context.Context, to string, amount float64, kind economy.TransactionKind, reference string) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	receiver, err := s.Citizens.GetByUsername(ctx, to)
	if err != nil {
		return fmt.Errorf("load receiver %s: %w", to, err)
	}
	receiver.Ducats += amount
	if err := s.Citizens.SaveWithVersion(ctx, bump(receiver), receiver.Version); err != nil {
		return fmt.Errorf("credit %s: %w", to, err)
	}
	if kind == "" {
		kind = economy.TxDucatInjection
	}
	return s.record(ctx, economy.Transaction{
		Kind:      kind,
		ToAccount: to,
		Amount:    amount,
		Reference: reference,
	})
}

// SinkDucats debits an account without a receiving citizen, e.g. funding a
// stratagem escrow.
func (s Service) SinkDucats(ctx context.Context, from string, amount float64, kind economy.TransactionKind, reference string) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	sender, err := s.Citizens.GetByUsername(ctx, from)
	if err != nil {
		return fmt.Errorf("load sender %s: %w", from, err)
	}
	if sender.Ducats < amount {
		return fmt.Errorf("%w: %s has %.2f, needs %.2f", ErrInsufficientFunds, from, sender.Ducats, amount)
	}
	sender.Ducats -= amount
	if err := s.Citizens.SaveWithVersion(ctx, bump(sender), sender.Version); err != nil {
		return fmt.Errorf("debit %s: %w", from, err)
	}
	if kind == "" {
		kind = economy.TxDucatSink
	}
	return s.record(ctx, economy.Transaction{
		Kind:        kind,
		FromAccount: from,
		Amount:      amount,
		Reference:   reference,
	})
}

// AddResource creates or merges a stack at a holder. A nil decayAt leaves an
// existing stack's decay timestamp untouched.
func (s Service) AddResource(ctx context.Context, resourceType string, amount float64, owner, assetID string, kind economy.AssetKind, decayAt *time.Time, reference string) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	stacks, err := s.Resources.ListByHolder(ctx, assetID, kind, resourceType)
	if err != nil {
		return fmt.Errorf("list stacks at %s: %w", assetID, err)
	}

	var target *economy.ResourceStack
	for i := range stacks {
		if stacks[i].Owner == owner {
			target = &stacks[i]
			break
		}
	}
	if target == nil {
		target = &economy.ResourceStack{
			ID:        uuid.NewString(),
			Type:      resourceType,
			Owner:     owner,
			AssetID:   assetID,
			AssetKind: kind,
			DecayAt:   decayAt,
		}
	}
	target.Quantity += amount
	if decayAt != nil {
		target.DecayAt = earliest(target.DecayAt, decayAt)
	}
	if err := s.Resources.Save(ctx, *target); err != nil {
		return fmt.Errorf("save stack: %w", err)
	}
	return s.record(ctx, economy.Transaction{
		Kind:      economy.TxResourceAdd,
		ToAccount: owner,
		Resource:  resourceType,
		Amount:    amount,
		Reference: reference,
	})
}

// ConsumeResource draws amount of a resource from a holder, deleting stacks
// that reach zero. Stacks closest to decay are consumed first.
func (s Service) ConsumeResource(ctx context.Context, resourceType string, amount float64, assetID string, kind economy.AssetKind, reference string) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	stacks, err := s.Resources.ListByHolder(ctx, assetID, kind, resourceType)
	if err != nil {
		return fmt.Errorf("list stacks at %s: %w", assetID, err)
	}
	if available(stacks) < amount {
		return fmt.Errorf("%w: %s at %s has %.2f, needs %.2f", ErrInsufficientStock, resourceType, assetID, available(stacks), amount)
	}

	sortByDecay(stacks)
	remaining := amount
	for _, stack := range stacks {
		if remaining <= 0 {
			break
		}
		take := stack.Quantity
		if take > remaining {
			take = remaining
		}
		stack.Quantity -= take
		remaining -= take
		if stack.Quantity <= 0 {
			if err := s.Resources.Delete(ctx, stack.ID); err != nil {
				return fmt.Errorf("delete emptied stack %s: %w", stack.ID, err)
			}
		} else if err := s.Resources.Save(ctx, stack); err != nil {
			return fmt.Errorf("save stack %s: %w", stack.ID, err)
		}
	}
	return s.record(ctx, economy.Transaction{
		Kind:        economy.TxResourceConsume,
		FromAccount: assetID,
		Resource:    resourceType,
		Amount:      amount,
		Reference:   reference,
	})
}

// TransferResource moves amount between holders, carrying the earliest decay
// timestamp among the consumed stacks.
func (s Service) TransferResource(ctx context.Context, resourceType string, amount float64, fromAsset string, fromKind economy.AssetKind, toOwner, toAsset string, toKind economy.AssetKind, reference string) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	stacks, err := s.Resources.ListByHolder(ctx, fromAsset, fromKind, resourceType)
	if err != nil {
		return fmt.Errorf("list stacks at %s: %w", fromAsset, err)
	}
	if available(stacks) < amount {
		return fmt.Errorf("%w: %s at %s has %.2f, needs %.2f", ErrInsufficientStock, resourceType, fromAsset, available(stacks), amount)
	}

	var decay *time.Time
	sortByDecay(stacks)
	remaining := amount
	for _, stack := range stacks {
		if remaining <= 0 {
			break
		}
		take := stack.Quantity
		if take > remaining {
			take = remaining
		}
		decay = earliest(decay, stack.DecayAt)
		stack.Quantity -= take
		remaining -= take
		if stack.Quantity <= 0 {
			if err := s.Resources.Delete(ctx, stack.ID); err != nil {
				return fmt.Errorf("delete emptied stack %s: %w", stack.ID, err)
			}
		} else if err := s.Resources.Save(ctx, stack); err != nil {
			return fmt.Errorf("save stack %s: %w", stack.ID, err)
		}
	}

	if err := s.addMerged(ctx, resourceType, amount, toOwner, toAsset, toKind, decay); err != nil {
		return err
	}
	return s.record(ctx, economy.Transaction{
		Kind:        economy.TxResourceTransfer,
		FromAccount: fromAsset,
		ToAccount:   toAsset,
		Resource:    resourceType,
		Amount:      amount,
		Reference:   reference,
	})
}

// SweepDecayed removes stacks past their lifetime. Returns how many were
// removed.
func (s Service) SweepDecayed(ctx context.Context, now time.Time) (int, error) {
	stacks, err := s.Resources.ListDecayedBefore(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("list decayed: %w", err)
	}
	removed := 0
	for _, stack := range stacks {
		if err := s.Resources.Delete(ctx, stack.ID); err != nil {
			return removed, fmt.Errorf("delete decayed stack %s: %w", stack.ID, err)
		}
		removed++
		if err := s.record(ctx, economy.Transaction{
			Kind:        economy.TxResourceDecay,
			FromAccount: stack.AssetID,
			Resource:    stack.Type,
			Amount:      stack.Quantity,
			Reference:   stack.ID,
		}); err != nil {
			return removed, err
		}
	}
	return removed, nil
}

// addMerged is AddResource without its own transaction record, for compound
// mutations that audit as a single transfer.
func (s Service) addMerged(ctx context.Context, resourceType string, amount float64, owner, assetID string, kind economy.AssetKind, decayAt *time.Time) error {
	stacks, err := s.Resources.ListByHolder(ctx, assetID, kind, resourceType)
	if err != nil {
		return fmt.Errorf("list stacks at %s: %w", assetID, err)
	}
	var target *economy.ResourceStack
	for i := range stacks {
		if stacks[i].Owner == owner {
			target = &stacks[i]
			break
		}
	}
	if target == nil {
		target = &economy.ResourceStack{
			ID:        uuid.NewString(),
			Type:      resourceType,
			Owner:     owner,
			AssetID:   assetID,
			AssetKind: kind,
		}
	}
	target.Quantity += amount
	target.DecayAt = earliest(target.DecayAt, decayAt)
	if err := s.Resources.Save(ctx, *target); err != nil {
		return fmt.Errorf("save stack: %w", err)
	}
	return nil
}

func (s Service) record(ctx context.Context, tx economy.Transaction) error {
	tx.ID = uuid.NewString()
	tx.At = s.now()
	if err := s.Transactions.Append(ctx, tx); err != nil {
		return fmt.Errorf("append transaction: %w", err)
	}
	return nil
}

func bump(c economy.Citizen) economy.Citizen {
	c.Version++
	return c
}

func available(stacks []economy.ResourceStack) float64 {
	total := 0.0
	for _, s := range stacks {
		total += s.Quantity
	}
	return total
}

// sortByDecay orders stacks closest to decay first; stacks without a decay
// timestamp sort last.
func sortByDecay(stacks []economy.ResourceStack) {
	sort.SliceStable(stacks, func(i, j int) bool {
		a, b := stacks[i].DecayAt, stacks[j].DecayAt
		if a == nil {
			return false
		}
		if b == nil {
			return true
		}
		return a.Before(*b)
	})
}

func earliest(a, b *time.Time) *time.Time {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	if b.Before(*a) {
		return b
	}
	return a
}
