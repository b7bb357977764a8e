package repository

import (
	"context"

	"github.com/behrang/sqlbatch"
)

var schemaStatements = []string{
	`create table if not exists ledgers (
		address     text primary key,
		state       bytea not null,
		version     bigint not null,
		create_time timestamptz not null,
		update_time timestamptz not null
	)`,
	`create table if not exists transfer_legs (
		id          bigserial primary key,
		ledger      text not null references ledgers (address),
		kind        text not null,
		source      text not null,
		destination text not null,
		amount      numeric(20, 0) not null check (amount >= 0),
		state       text not null,
		retried     integer not null,
		create_time timestamptz not null,
		retry_time  timestamptz,
		sent_time   timestamptz
	)`,
	`create index if not exists transfer_legs_state_idx on transfer_legs (state, retried)`,
	`create table if not exists memos (
		key  text primary key,
		memo jsonb not null
	)`,
}

// CreateSchema creates the tables used by the repositories if they are
// missing.
func CreateSchema(ctx context.Context, db BatchHandler) error {
	commands := make([]sqlbatch.Command, 0, len(schemaStatements))
	for _, stmt := range schemaStatements {
		commands = append(commands, sqlbatch.Command{Query: stmt})
	}

	_, err := db.Batch(ctx, &BatchOptionNormal, commands)
	return err
}
