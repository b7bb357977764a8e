package usecase

import (
	"context"
	"errors"
	"time"

	"taxtoken/domain"

	"go.uber.org/zap"
)

// DrawInteractor runs prize draws on a schedule. A due draw is first committed
// to an entropy target and run once that entropy exists. The commitment and
// the time of the last draw are kept as a memo, so restarting the service
// neither draws early nor commits a draw twice.
type DrawInteractor struct {
	ledgerInteractor *LedgerInteractor
	memoInteractor   *MemoInteractor
	interval         time.Duration
	payout           domain.PrizePayout
	logger           *zap.SugaredLogger
}

func NewDrawInteractor(ledgerInteractor *LedgerInteractor,
	memoInteractor *MemoInteractor,
	interval time.Duration,
	payout domain.PrizePayout,
	logger *zap.SugaredLogger) *DrawInteractor {
	interactor := &DrawInteractor{
		ledgerInteractor: ledgerInteractor,
		memoInteractor:   memoInteractor,
		interval:         interval,
		payout:           payout,
		logger:           logger,
	}
	return interactor
}

// RunDueDraw draws when the interval since the last draw has passed. It
// returns nil and no error when nothing was due or the committed draw is
// still waiting for its entropy.
func (interactor *DrawInteractor) RunDueDraw(ctx context.Context, now time.Time) (*domain.SelectionResult, error) {
	return interactor.run(ctx, now, false)
}

// RunDraw is RunDueDraw without the interval check. A draw already committed
// is carried on rather than committed again.
func (interactor *DrawInteractor) RunDraw(ctx context.Context, now time.Time) (*domain.SelectionResult, error) {
	return interactor.run(ctx, now, true)
}

func (interactor *DrawInteractor) run(ctx context.Context, now time.Time, force bool) (*domain.SelectionResult, error) {
	ledger := interactor.ledgerInteractor.Address()

	memo, err := interactor.memoInteractor.GetDrawMemo(ctx, ledger)
	if err != nil {
		interactor.logger.Errorf("🔴 loading draw memo - %v", err.Error())
		return nil, err
	}

	if memo.Pending == nil {
		next := memo.NextDrawTime(interactor.interval)
		if !force && now.Before(next) {
			interactor.logger.Debugf("next draw at %v", next.Local().Format(time.RFC1123))
			return nil, nil
		}

		commitment, err := interactor.ledgerInteractor.CommitDraw(ctx)
		if err != nil {
			return nil, err
		}
		if commitment == nil {
			memo.LastDrawTime = now
			if err := interactor.store(ctx, ledger, memo); err != nil {
				return nil, err
			}
			return &domain.SelectionResult{Drawn: false}, nil
		}

		// Stored before anything is revealed, so the draw can not be committed
		// again to another target.
		memo.Pending = commitment
		memo.CommitTime = now
		if err := interactor.store(ctx, ledger, memo); err != nil {
			return nil, err
		}
	}

	result, err := interactor.ledgerInteractor.SelectRandomWallet(ctx, *memo.Pending, interactor.payout)
	if errors.Is(err, domain.ErrorEntropyPending) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	memo.Pending = nil
	memo.LastDrawTime = now
	if result.Drawn {
		memo.LastWinner = result.Winner.ToRaw()
	}
	if err := interactor.store(ctx, ledger, memo); err != nil {
		// The selection is already committed; the memo still names its
		// commitment, so the next run draws again with the same entropy.
		return result, err
	}

	return result, nil
}

func (interactor *DrawInteractor) store(ctx context.Context, ledger string, memo *domain.DrawMemo) error {
	err := interactor.memoInteractor.SetDrawMemo(ctx, ledger, memo)
	if err != nil {
		interactor.logger.Errorf("🔴 storing draw memo - %v", err.Error())
	}
	return err
}
