package dbhandler

import (
	"context"
	"errors"

	"database/sql"

	"github.com/behrang/sqlbatch"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

const (
	codeSerializationFailure = "40001"
	maxSerializationRetries  = 10
)

// DBHandler contains a connection to database.
type DBHandler struct {
	DB     *sql.DB
	Logger *zap.SugaredLogger
}

// Batch creates a transaction and executes the batch of commands in that transaction.
// If a retryable error is received, the batch is retried.
func (handler DBHandler) Batch(ctx context.Context, opts *sql.TxOptions, commands []sqlbatch.Command) ([]interface{}, error) {

	for attempt := 1; ; attempt++ {
		results, err := handler.tryBatch(ctx, opts, commands)
		if IsSerializationFailure(err) && attempt < maxSerializationRetries && ctx.Err() == nil {
			if handler.Logger != nil {
				handler.Logger.Warnf("🟡 Retryable Postgres error, retrying: %v", err)
			}
			continue
		}
		return results, err
	}
}

func (handler DBHandler) tryBatch(ctx context.Context, opts *sql.TxOptions, commands []sqlbatch.Command) (results []interface{}, err error) {

	results = make([]interface{}, len(commands))

	tx, err := handler.DB.BeginTx(ctx, opts)
	if err != nil {
		return
	}
	defer tx.Rollback()

	results, err = sqlbatch.Batch(tx, commands)

	if err == nil {
		err = tx.Commit()
	}

	return
}

func IsSerializationFailure(err error) bool {
	return hasCode(err, codeSerializationFailure)
}

func IsUniqueViolation(err error) bool {
	return hasCode(err, "23505")
}

func hasCode(err error, code pq.ErrorCode) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == code
}
