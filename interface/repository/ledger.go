package repository

import (
	"context"
	"fmt"
	"strconv"

	"taxtoken/domain"
	"taxtoken/infrastructure/dbhandler"

	"github.com/behrang/sqlbatch"
)

const (
	sqlLedgerInsert = `
	insert into ledgers (
			address, state, version, create_time, update_time
		)
		values (
			$1, $2, 0, now(), now()
		)
`

	sqlLedgerFind = `
	select
		address, state, version
	from ledgers
	where address = $1
`

	sqlLedgerUpdate = `
	update ledgers
		set state = $3, version = version + 1, update_time = now()
	where address = $1 and version = $2
`

	sqlLegInsert = `
	insert into transfer_legs (
			ledger, kind, source, destination, amount, state, retried, create_time, retry_time, sent_time
		)
		values (
			$1, $2, $3, $4, $5::numeric, 'new', 0, now(), null, null
		)
`
)

type LedgerRepository struct {
	batchHandler BatchHandler
}

func NewLedgerRepository(db BatchHandler) *LedgerRepository {
	return &LedgerRepository{batchHandler: db}
}

type ledgerRow struct {
	address string
	state   []byte
	version int64
}

func readAllLedgers(memo interface{}, scan func(...interface{}) error) (interface{}, error) {
	r := ledgerRow{}
	err := scan(
		&r.address, &r.state, &r.version,
	)
	list := memo.([]ledgerRow)
	list = append(list, r)
	return list, err
}

// Find returns nil and no error when the ledger does not exist.
func (repo *LedgerRepository) Find(ctx context.Context, address string) (*domain.LedgerRecord, error) {
	results, err := repo.batchHandler.Batch(ctx, &BatchOptionNormalReadOnly, []sqlbatch.Command{
		{
			Query:   sqlLedgerFind,
			Args:    []interface{}{address},
			Init:    make([]ledgerRow, 0, 1),
			ReadAll: readAllLedgers,
		},
	})
	if err != nil {
		return nil, err
	}

	rows, _ := results[0].([]ledgerRow)
	if len(rows) == 0 {
		return nil, nil
	}

	state, err := domain.DecodeState(rows[0].state)
	if err != nil {
		return nil, fmt.Errorf("decoding ledger %v: %w", address, err)
	}

	return &domain.LedgerRecord{
		Address: rows[0].address,
		State:   state,
		Version: rows[0].version,
	}, nil
}

func (repo *LedgerRepository) Create(ctx context.Context, record *domain.LedgerRecord) error {
	data, err := domain.EncodeState(record.State)
	if err != nil {
		return err
	}

	_, err = repo.batchHandler.Batch(ctx, &BatchOptionSerializable, []sqlbatch.Command{
		{
			Query:  sqlLedgerInsert,
			Args:   []interface{}{record.Address, data},
			Affect: 1,
		},
	})
	if dbhandler.IsUniqueViolation(err) {
		return domain.NewLedgerError(domain.KindAlreadyInitialized, "ledger %v already exists", record.Address)
	}
	if err != nil {
		return err
	}

	record.Version = 0
	return nil
}

// Commit stores the record and inserts its legs in one transaction. The update
// only matches while the stored version equals record.Version.
func (repo *LedgerRepository) Commit(ctx context.Context, record *domain.LedgerRecord, legs []domain.TransferLeg) error {
	data, err := domain.EncodeState(record.State)
	if err != nil {
		return err
	}

	commands := make([]sqlbatch.Command, 0, len(legs)+1)
	commands = append(commands, sqlbatch.Command{
		Query:  sqlLedgerUpdate,
		Args:   []interface{}{record.Address, record.Version, data},
		Affect: 1,
	})
	for _, leg := range legs {
		commands = append(commands, sqlbatch.Command{
			Query: sqlLegInsert,
			Args: []interface{}{
				record.Address, string(leg.Kind), leg.Source.ToRaw(), leg.Destination.ToRaw(), strconv.FormatUint(leg.Amount, 10),
			},
			Affect: 1,
		})
	}

	_, err = repo.batchHandler.Batch(ctx, &BatchOptionSerializable, commands)
	if err != nil {
		// A lost race shows up as an update that matched no row.
		current, findErr := repo.Find(ctx, record.Address)
		if findErr == nil && current != nil && current.Version != record.Version {
			return domain.NewLedgerError(domain.KindStaleState, "ledger %v moved from version %v to %v", record.Address, record.Version, current.Version)
		}
		return err
	}

	record.Version++
	return nil
}
