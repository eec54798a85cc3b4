package store

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// PostgresBackend keeps one row per slot in report_slots.
type PostgresBackend struct {
	db     *sql.DB
	schema setupGate
}

func NewPostgresBackend(ctx context.Context, dsn string) (*PostgresBackend, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, errors.WithHint(errors.New("postgres dsn is required"), "set REPORT_STORE_PG_DSN")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open postgres")
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "ping postgres")
	}
	return NewPostgresBackendFromDB(db), nil
}

func NewPostgresBackendFromDB(db *sql.DB) *PostgresBackend {
	return &PostgresBackend{db: db}
}

func (b *PostgresBackend) Name() string { return string(BackendPostgres) }

func (b *PostgresBackend) ensureSchema(ctx context.Context) error {
	if b == nil || b.db == nil {
		return errors.New("db is nil")
	}
	return b.schema.run(func() error {
		_, err := b.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS report_slots (
    slot TEXT PRIMARY KEY,
    content BYTEA NOT NULL,
    size BIGINT NOT NULL,
    updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
);
`)
		return err
	})
}

func (b *PostgresBackend) Load(ctx context.Context, slot string) ([]byte, error) {
	slot, err := normalizeSlot(slot)
	if err != nil {
		return nil, err
	}
	if err := b.ensureSchema(ctx); err != nil {
		return nil, errors.Wrap(err, "ensure schema")
	}
	var content []byte
	err = b.db.QueryRowContext(ctx, `SELECT content FROM report_slots WHERE slot=$1`, slot).Scan(&content)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSlotNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "load slot %s", slot)
	}
	return content, nil
}

func (b *PostgresBackend) Save(ctx context.Context, slot string, raw []byte) error {
	slot, err := normalizeSlot(slot)
	if err != nil {
		return err
	}
	if err := b.ensureSchema(ctx); err != nil {
		return errors.Wrap(err, "ensure schema")
	}
	if raw == nil {
		raw = []byte{}
	}
	_, err = b.db.ExecContext(ctx, `
INSERT INTO report_slots (slot, content, size, updated_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (slot)
DO UPDATE SET content=EXCLUDED.content, size=EXCLUDED.size, updated_at=EXCLUDED.updated_at
`, slot, raw, int64(len(raw)), time.Now())
	return errors.Wrapf(err, "save slot %s", slot)
}

func (b *PostgresBackend) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}
