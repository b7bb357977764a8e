package usecase

import (
	"context"
	"time"

	"taxtoken/domain"
)

// LedgerRepository is the host side of an invocation. Commit must store the
// record and stage the legs atomically, and must fail with a StaleState error
// when the stored version no longer equals record.Version.
type LedgerRepository interface {
	Find(ctx context.Context, address string) (*domain.LedgerRecord, error)
	Create(ctx context.Context, record *domain.LedgerRecord) error
	Commit(ctx context.Context, record *domain.LedgerRecord, legs []domain.TransferLeg) error
}

type LegRepository interface {
	FindAllTriable(ctx context.Context, maxRetry int) ([]domain.TransferLeg, error)
	SetRetrying(ctx context.Context, id int64, timestamp time.Time) error
	SetSent(ctx context.Context, id int64, timestamp time.Time) error
	SetState(ctx context.Context, id int64, state string) error
}

// EntropySource provides the value a draw is derived from in two steps.
// Commit picks a target of the source whose value nobody can know or steer
// yet. Reveal reads the value at a committed target and fails with
// domain.ErrorEntropyPending until it exists.
type EntropySource interface {
	Commit(ctx context.Context) (uint64, error)
	Reveal(ctx context.Context, target uint64) (domain.Entropy, error)
}

// LegSender performs the actual token movement of a staged leg.
type LegSender interface {
	SendLeg(ctx context.Context, leg domain.TransferLeg) error
}
