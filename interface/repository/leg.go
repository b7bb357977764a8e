package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"taxtoken/domain"

	"github.com/behrang/sqlbatch"
)

const (
	// TODO: legs left 'ongoing' by a crash between send and SetSent are never
	// picked up again; they need a chain lookup before being retried.
	sqlLegFindAllTriable = `
	select
		id, ledger, kind, source, destination, amount::text, state, retried, create_time, retry_time, sent_time
	from transfer_legs
	where state in ('new', 'retriable') and retried < $1
	order by id
`

	sqlLegSetState = `
	update transfer_legs
		set state = $2
	where id = $1
`

	sqlLegSetRetrying = `
	update transfer_legs
		set retried = retried + 1, retry_time = $2, state = 'ongoing'
	where id = $1
`

	sqlLegSetSent = `
	update transfer_legs
		set sent_time = $2, state = 'sent'
	where id = $1
`
)

type LegRepository struct {
	batchHandler BatchHandler
}

func NewLegRepository(db BatchHandler) *LegRepository {
	return &LegRepository{batchHandler: db}
}

func readAllLegs(memo interface{}, scan func(...interface{}) error) (interface{}, error) {
	r := domain.TransferLeg{}
	var kind, source, destination, amount string
	err := scan(
		&r.Id, &r.Ledger, &kind, &source, &destination, &amount, &r.State, &r.Retried, &r.CreateTime, &r.RetryTime, &r.SentTime,
	)
	if err == nil {
		err = fillLeg(&r, kind, source, destination, amount)
	}

	list := memo.([]domain.TransferLeg)
	list = append(list, r)
	return list, err
}

func fillLeg(r *domain.TransferLeg, kind, source, destination, amount string) error {
	var err error

	r.Kind = domain.LegKind(kind)
	r.Source, err = domain.ParseIdentity(source)
	if err != nil {
		return fmt.Errorf("leg %v source: %w", r.Id, err)
	}
	r.Destination, err = domain.ParseIdentity(destination)
	if err != nil {
		return fmt.Errorf("leg %v destination: %w", r.Id, err)
	}
	r.Amount, err = strconv.ParseUint(amount, 10, 64)
	if err != nil {
		return fmt.Errorf("leg %v amount: %w", r.Id, err)
	}
	return nil
}

func (repo *LegRepository) FindAllTriable(ctx context.Context, maxRetry int) ([]domain.TransferLeg, error) {
	results, err := repo.batchHandler.Batch(ctx, &BatchOptionNormalReadOnly, []sqlbatch.Command{
		{
			Query:   sqlLegFindAllTriable,
			Args:    []interface{}{maxRetry},
			Init:    make([]domain.TransferLeg, 0),
			ReadAll: readAllLegs,
		},
	})
	if err != nil {
		return nil, err
	}
	result, _ := results[0].([]domain.TransferLeg)
	return result, nil
}

func (repo *LegRepository) SetState(ctx context.Context, id int64, state string) error {
	_, err := repo.batchHandler.Batch(ctx, &BatchOptionNormal, []sqlbatch.Command{
		{
			Query:  sqlLegSetState,
			Args:   []interface{}{id, state},
			Affect: 1,
		},
	})
	return err
}

func (repo *LegRepository) SetRetrying(ctx context.Context, id int64, timestamp time.Time) error {
	_, err := repo.batchHandler.Batch(ctx, &BatchOptionNormal, []sqlbatch.Command{
		{
			Query:  sqlLegSetRetrying,
			Args:   []interface{}{id, timestamp},
			Affect: 1,
		},
	})
	return err
}

func (repo *LegRepository) SetSent(ctx context.Context, id int64, timestamp time.Time) error {
	_, err := repo.batchHandler.Batch(ctx, &BatchOptionNormal, []sqlbatch.Command{
		{
			Query:  sqlLegSetSent,
			Args:   []interface{}{id, timestamp},
			Affect: 1,
		},
	})
	return err
}
