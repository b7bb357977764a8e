package usecase

import (
	"context"
	"errors"
	"fmt"

	"taxtoken/domain"
	"taxtoken/domain/util"
	"taxtoken/interface/exporter"

	"go.uber.org/zap"
)

// LedgerInteractor runs each ledger operation as one invocation: load the
// record, apply the operation to a copy, then commit the copy together with
// the legs it produced. A failure at any step leaves the stored record as it
// was.
type LedgerInteractor struct {
	address          string
	ledgerRepository LedgerRepository
	entropySource    EntropySource
	logger           *zap.SugaredLogger
}

func NewLedgerInteractor(address string,
	ledgerRepository LedgerRepository,
	entropySource EntropySource,
	logger *zap.SugaredLogger) *LedgerInteractor {
	interactor := &LedgerInteractor{
		address:          address,
		ledgerRepository: ledgerRepository,
		entropySource:    entropySource,
		logger:           logger,
	}
	return interactor
}

func (interactor *LedgerInteractor) Address() string {
	return interactor.address
}

func (interactor *LedgerInteractor) Initialize(ctx context.Context, caller domain.Identity, taxPercentage int) (*domain.LedgerState, error) {
	record, err := interactor.ledgerRepository.Find(ctx, interactor.address)
	if err != nil {
		return nil, interactor.fail("loading ledger", err)
	}

	var existing *domain.LedgerState
	if record != nil {
		existing = record.State
	}

	state, err := domain.Initialize(existing, caller, taxPercentage)
	if err != nil {
		return nil, interactor.fail("initializing ledger", err)
	}

	err = interactor.ledgerRepository.Create(ctx, &domain.LedgerRecord{
		Address: interactor.address,
		State:   state,
	})
	if err != nil {
		return nil, interactor.fail("creating ledger", err)
	}

	exporter.SetLedgerGauges(state.TotalTokens, len(state.Holders))
	interactor.logger.Infof("ledger %v initialized [authority: %v, tax: %v, supply: %v]",
		interactor.address, caller.ToRaw(), util.PercentString(state.TaxPercentage), util.TokenString(state.TotalTokens))

	return state, nil
}

func (interactor *LedgerInteractor) ProcessTransaction(ctx context.Context, request domain.TransferRequest) (*domain.TransferReceipt, error) {
	record, err := interactor.load(ctx)
	if err != nil {
		return nil, interactor.fail("loading ledger", err)
	}

	next := record.State.Clone()
	receipt, err := domain.ProcessTransaction(next, request)
	if err != nil {
		return nil, interactor.fail("processing transaction", err)
	}

	err = interactor.commit(ctx, record, next, receipt.Legs)
	if err != nil {
		return nil, interactor.fail("committing transaction", err)
	}

	exporter.ObserveTransaction(receipt.TaxAmount, receipt.DevFee)
	exporter.SetLedgerGauges(next.TotalTokens, len(next.Holders))
	interactor.logger.Infof("transaction processed [payer: %v, amount: %v, tax: %v, dev fee: %v, remaining supply: %v]",
		request.UserWallet.ToRaw(),
		util.TokenString(receipt.Amount),
		util.TokenString(receipt.TaxAmount),
		util.TokenString(receipt.DevFee),
		util.TokenString(receipt.TotalTokens))
	if receipt.NewHolder {
		interactor.logger.Infof("new holder registered [wallet: %v, holders: %v]", request.UserWallet.ToRaw(), len(next.Holders))
	}

	return receipt, nil
}

// CommitDraw fixes the next draw to an entropy target and to the holders
// registered so far. It returns nil when there is no holder, in which case the
// entropy source is not consulted.
func (interactor *LedgerInteractor) CommitDraw(ctx context.Context) (*domain.EntropyCommitment, error) {
	record, err := interactor.load(ctx)
	if err != nil {
		return nil, interactor.fail("loading ledger", err)
	}

	if len(record.State.Holders) == 0 {
		exporter.IncDrawCount(false)
		interactor.logger.Infof("🔵 no holders to draw from, selection skipped")
		return nil, nil
	}

	target, err := interactor.entropySource.Commit(ctx)
	if err != nil {
		return nil, interactor.fail("committing entropy", err)
	}

	commitment := &domain.EntropyCommitment{
		Target:  target,
		Holders: len(record.State.Holders),
	}
	interactor.logger.Infof("draw committed [target: %v, holders: %v]", commitment.Target, commitment.Holders)
	return commitment, nil
}

// SelectRandomWallet runs a committed draw. It fails with
// domain.ErrorEntropyPending, leaving everything as it was, while the
// committed entropy does not exist yet.
func (interactor *LedgerInteractor) SelectRandomWallet(ctx context.Context, commitment domain.EntropyCommitment, payout domain.PrizePayout) (*domain.SelectionResult, error) {
	record, err := interactor.load(ctx)
	if err != nil {
		return nil, interactor.fail("loading ledger", err)
	}

	// Nothing to draw from, so the entropy source is not consulted.
	if len(record.State.Holders) == 0 {
		exporter.IncDrawCount(false)
		interactor.logger.Infof("🔵 no holders to draw from, selection skipped")
		return &domain.SelectionResult{Drawn: false}, nil
	}

	entropy, err := interactor.entropySource.Reveal(ctx, commitment.Target)
	if errors.Is(err, domain.ErrorEntropyPending) {
		interactor.logger.Debugf("draw is waiting for entropy - %v", err.Error())
		return nil, err
	}
	if err != nil {
		return nil, interactor.fail("getting entropy", err)
	}

	next := record.State.Clone()
	result, err := domain.SelectAmongFirst(next, entropy, commitment.Holders, payout)
	if err != nil {
		return nil, interactor.fail("selecting wallet", err)
	}

	err = interactor.commit(ctx, record, next, result.Legs)
	if err != nil {
		return nil, interactor.fail("committing selection", err)
	}

	exporter.IncDrawCount(result.Drawn)
	interactor.logger.Infof("selected wallet: %v [index: %v of %v, entropy: %v]",
		result.Winner.ToRaw(), result.Index, result.HolderCount, entropy.Hex())

	return result, nil
}

// State returns a copy of the stored state.
func (interactor *LedgerInteractor) State(ctx context.Context) (*domain.LedgerState, error) {
	record, err := interactor.load(ctx)
	if err != nil {
		return nil, err
	}
	return record.State.Clone(), nil
}

func (interactor *LedgerInteractor) load(ctx context.Context) (*domain.LedgerRecord, error) {
	record, err := interactor.ledgerRepository.Find(ctx, interactor.address)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, domain.NewLedgerError(domain.KindNotInitialized, "ledger %v does not exist", interactor.address)
	}
	return record, nil
}

func (interactor *LedgerInteractor) commit(ctx context.Context, loaded *domain.LedgerRecord, next *domain.LedgerState, legs []domain.TransferLeg) error {
	staged := domain.StageableLegs(legs)
	for i := range staged {
		staged[i].Ledger = interactor.address
		staged[i].State = domain.LegStateNew
	}

	return interactor.ledgerRepository.Commit(ctx, &domain.LedgerRecord{
		Address: interactor.address,
		State:   next,
		Version: loaded.Version,
	}, staged)
}

func (interactor *LedgerInteractor) fail(action string, err error) error {
	exporter.IncErrorCount()
	if kind := domain.KindOf(err); kind != "" {
		interactor.logger.Warnf("🟡 %v - %v", action, err.Error())
		return err
	}
	interactor.logger.Errorf("🔴 %v - %v", action, err.Error())
	return fmt.Errorf("%v: %w", action, err)
}
