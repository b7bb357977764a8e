package usecase

import (
	"context"
	"encoding/binary"
	"fmt"
	"sync"
	"testing"

	"taxtoken/domain"
	"taxtoken/infrastructure/entropy"
	"taxtoken/infrastructure/memstore"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testLedger = "test-ledger"

func testIdentity(n uint32) domain.Identity {
	var id domain.Identity
	binary.BigEndian.PutUint32(id.Address[:4], n)
	id.Address[31] = 0xbb
	return id
}

var (
	authority = testIdentity(100)
	taxWallet = testIdentity(101)
	devWallet = testIdentity(102)
)

func transferFrom(user domain.Identity, amount uint64) domain.TransferRequest {
	return domain.TransferRequest{
		Signer:     user,
		Amount:     amount,
		TaxWallet:  taxWallet,
		DevWallet:  devWallet,
		UserWallet: user,
	}
}

// countingEntropy counts reveals and can hold them back as if the committed
// target did not exist yet.
type countingEntropy struct {
	commits  int
	calls    int
	pending  bool
	err      error
	sequence *entropy.Sequence
}

func newCountingEntropy() *countingEntropy {
	return &countingEntropy{sequence: entropy.NewSequence("usecase")}
}

func (e *countingEntropy) Commit(ctx context.Context) (uint64, error) {
	e.commits++
	if e.err != nil {
		return 0, e.err
	}
	return e.sequence.Commit(ctx)
}

func (e *countingEntropy) Reveal(ctx context.Context, target uint64) (domain.Entropy, error) {
	e.calls++
	if e.err != nil {
		return domain.Entropy{}, e.err
	}
	if e.pending {
		return domain.Entropy{}, fmt.Errorf("%w: target %v", domain.ErrorEntropyPending, target)
	}
	return e.sequence.Reveal(ctx, target)
}

type fixture struct {
	store      *memstore.Store
	entropy    *countingEntropy
	interactor *LedgerInteractor
}

func newFixture(t *testing.T) *fixture {
	f := &fixture{
		store:   memstore.New(),
		entropy: newCountingEntropy(),
	}
	f.interactor = NewLedgerInteractor(testLedger, f.store, f.entropy, zap.NewNop().Sugar())
	return f
}

// drawNow commits a draw and runs it right away.
func (f *fixture) drawNow(ctx context.Context, payout domain.PrizePayout) (*domain.SelectionResult, error) {
	commitment, err := f.interactor.CommitDraw(ctx)
	if err != nil {
		return nil, err
	}
	if commitment == nil {
		return f.interactor.SelectRandomWallet(ctx, domain.EntropyCommitment{}, payout)
	}
	return f.interactor.SelectRandomWallet(ctx, *commitment, payout)
}

func newInitializedFixture(t *testing.T, taxPercentage int) *fixture {
	f := newFixture(t)
	_, err := f.interactor.Initialize(context.Background(), authority, taxPercentage)
	require.NoError(t, err)
	return f
}

// fakeSender fails every leg sent to one of the failing destinations and
// refuses every leg paid by a foreign source.
type fakeSender struct {
	mu      sync.Mutex
	failing map[domain.Identity]bool
	foreign map[domain.Identity]bool
	sent    []domain.TransferLeg
}

func newFakeSender(failing ...domain.Identity) *fakeSender {
	s := &fakeSender{
		failing: make(map[domain.Identity]bool),
		foreign: make(map[domain.Identity]bool),
	}
	for _, id := range failing {
		s.failing[id] = true
	}
	return s
}

func (s *fakeSender) SendLeg(ctx context.Context, leg domain.TransferLeg) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.foreign[leg.Source] {
		return fmt.Errorf("%w: paid by %v", domain.ErrorLegNotSettleable, leg.Source.ToRaw())
	}
	if s.failing[leg.Destination] {
		return fmt.Errorf("destination %v rejected", leg.Destination.ToRaw())
	}
	s.sent = append(s.sent, leg)
	return nil
}
