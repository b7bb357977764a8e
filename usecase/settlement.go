package usecase

import (
	"context"
	"errors"
	"time"

	"taxtoken/domain"
	"taxtoken/domain/util"
	"taxtoken/interface/exporter"

	"go.uber.org/zap"
)

// SettlementInteractor moves the tokens of committed legs. A leg that fails is
// retriable until it has been tried maxRetry times, then it is left in error.
// A leg the sender can never move is rejected at once.
type SettlementInteractor struct {
	legRepository LegRepository
	sender        LegSender
	maxRetry      int
	logger        *zap.SugaredLogger
}

func NewSettlementInteractor(legRepository LegRepository,
	sender LegSender,
	maxRetry int,
	logger *zap.SugaredLogger) *SettlementInteractor {
	interactor := &SettlementInteractor{
		legRepository: legRepository,
		sender:        sender,
		maxRetry:      maxRetry,
		logger:        logger,
	}
	return interactor
}

func (interactor *SettlementInteractor) LoadTriable(ctx context.Context) ([]domain.TransferLeg, error) {
	legs, err := interactor.legRepository.FindAllTriable(ctx, interactor.maxRetry)
	if err != nil {
		exporter.IncErrorCount()
		interactor.logger.Errorf("🔴 loading legs - %v", err.Error())
		return nil, err
	}
	return legs, nil
}

// Settle sends every given leg and returns how many were sent.
func (interactor *SettlementInteractor) Settle(ctx context.Context, legs []domain.TransferLeg) int {
	sent := 0
	for _, leg := range legs {
		if ctx.Err() != nil {
			break
		}

		err := interactor.legRepository.SetRetrying(ctx, leg.Id, time.Now())
		if err != nil {
			exporter.IncErrorCount()
			interactor.logger.Errorf("🔴 marking leg %v as ongoing - %v", leg.Id, err.Error())
			continue
		}

		err = interactor.sender.SendLeg(ctx, leg)
		if err != nil {
			exporter.IncErrorCount()
			interactor.logger.Errorf("🔴 sending %v leg %v [to: %v] - %v", leg.Kind, leg.Id, leg.Destination.ToRaw(), err.Error())
			state := domain.LegStateRetriable
			switch {
			case errors.Is(err, domain.ErrorLegNotSettleable):
				state = domain.LegStateRejected
			case leg.Retried+1 >= interactor.maxRetry:
				state = domain.LegStateError
			}
			if err := interactor.legRepository.SetState(ctx, leg.Id, state); err != nil {
				interactor.logger.Errorf("🔴 marking leg %v as failed - %v", leg.Id, err.Error())
			}
			continue
		}

		if err := interactor.legRepository.SetSent(ctx, leg.Id, time.Now()); err != nil {
			exporter.IncErrorCount()
			interactor.logger.Errorf("🔴 marking leg %v as sent - %v", leg.Id, err.Error())
			continue
		}

		sent++
		exporter.IncLegsSent(string(leg.Kind))
		interactor.logger.Infof("%v leg sent [id: %v, to: %v, amount: %v]", leg.Kind, leg.Id, leg.Destination.ToRaw(), util.TokenString(leg.Amount))
	}

	return sent
}

// SettlePending loads the triable legs and settles them.
func (interactor *SettlementInteractor) SettlePending(ctx context.Context) (int, error) {
	legs, err := interactor.LoadTriable(ctx)
	if err != nil {
		return 0, err
	}
	if len(legs) == 0 {
		interactor.logger.Debugf("no leg to settle")
		return 0, nil
	}

	return interactor.Settle(ctx, legs), nil
}
