package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"
)

// KVModel is the Bun model backing the SQLite store.
type KVModel struct {
	bun.BaseModel `bun:"table:session_kv"`

	Key   string `bun:"key,pk"`
	Value string `bun:"value,notnull"`
}

// Bun persists keys in a session_kv table. Clients that already ship a Bun
// database (the desktop builds do) reuse it instead of a loose JSON file.
type Bun struct {
	db *bun.DB
}

// NewBun creates the backing table when missing and returns the store.
func NewBun(ctx context.Context, db *bun.DB) (*Bun, error) {
	_, err := db.NewCreateTable().
		Model((*KVModel)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("store: create session_kv: %w", err)
	}
	return &Bun{db: db}, nil
}

func (b *Bun) Get(key string) (string, error) {
	var model KVModel
	err := b.db.NewSelect().
		Model(&model).
		Where("key = ?", key).
		Scan(context.Background())
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("store: select %q: %w", key, err)
	}
	return model.Value, nil
}

func (b *Bun) Set(key, value string) error {
	model := &KVModel{Key: key, Value: value}
	_, err := b.db.NewInsert().
		Model(model).
		On("CONFLICT (key) DO UPDATE").
		Set("value = EXCLUDED.value").
		Exec(context.Background())
	if err != nil {
		return fmt.Errorf("store: upsert %q: %w", key, err)
	}
	return nil
}

func (b *Bun) Delete(key string) error {
	_, err := b.db.NewDelete().
		Model((*KVModel)(nil)).
		Where("key = ?", key).
		Exec(context.Background())
	if err != nil {
		return fmt.Errorf("store: delete %q: %w", key, err)
	}
	return nil
}
