package kv

import (
	"context"
	"fmt"

	"homedesign/internal/infra"
	"homedesign/internal/sqlinline"
)

// PostgresStore keeps the key-value state in the client_preferences table.
type PostgresStore struct {
	sql infra.SQLExecutor
}

func NewPostgresStore(sql infra.SQLExecutor) *PostgresStore {
	return &PostgresStore{sql: sql}
}

// EnsureSchema creates the backing table when it does not exist.
func (p *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := p.sql.Exec(ctx, sqlinline.QCreatePreferencesTable); err != nil {
		return fmt.Errorf("kv: create table: %w", err)
	}
	return nil
}

func (p *PostgresStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	if err := p.sql.QueryRow(ctx, sqlinline.QSelectPreference, key).Scan(&value); err != nil {
		if infra.IsNoRows(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("kv: select %s: %w", key, err)
	}
	return value, true, nil
}

func (p *PostgresStore) Set(ctx context.Context, key, value string) error {
	if _, err := p.sql.Exec(ctx, sqlinline.QUpsertPreference, key, value); err != nil {
		return fmt.Errorf("kv: upsert %s: %w", key, err)
	}
	return nil
}

var _ Store = (*PostgresStore)(nil)
