package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/rustyeddy/dunkbonds/internal/retry"
)

// SQLite is the ledger's persistent store. All writes go through InTx.
type SQLite struct {
	db      *sql.DB
	retrier *retry.Policy
	log     *zap.Logger
}

type storeConfig struct {
	busyTimeout time.Duration
	maxRetries  int
	log         *zap.Logger
}

// StoreOption configures NewSQLite.
type StoreOption func(*storeConfig)

// WithBusyTimeout sets how long SQLite waits on a locked database before
// reporting SQLITE_BUSY.
func WithBusyTimeout(d time.Duration) StoreOption {
	return func(c *storeConfig) { c.busyTimeout = d }
}

// WithMaxRetries sets how often a busy transaction is retried.
func WithMaxRetries(n int) StoreOption {
	return func(c *storeConfig) { c.maxRetries = n }
}

// WithStoreLogger sets the logger used for retry warnings.
func WithStoreLogger(l *zap.Logger) StoreOption {
	return func(c *storeConfig) { c.log = l }
}

// NewSQLite opens (creating if needed) the ledger database at path.
//
// Transactions start with BEGIN IMMEDIATE so a read-modify-write holds the
// write lock from its first statement, and a single pooled connection
// serialises writers within the process.
func NewSQLite(path string, opts ...StoreOption) (*SQLite, error) {
	cfg := storeConfig{
		busyTimeout: 5 * time.Second,
		maxRetries:  5,
		log:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	dsn := fmt.Sprintf("file:%s?_txlock=immediate&_busy_timeout=%d&_foreign_keys=on",
		path, cfg.busyTimeout.Milliseconds())
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(Schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	log := cfg.log
	r := retry.New(
		retry.WithRetries(cfg.maxRetries),
		retry.WithTransient(isBusy),
		retry.WithNotify(func(attempt int, err error) {
			log.Warn("retrying busy transaction", zap.Int("attempt", attempt), zap.Error(err))
		}),
	)

	return &SQLite{db: db, retrier: r, log: log}, nil
}

// InTx runs fn in a transaction, committing if it returns nil and rolling
// back otherwise. Busy or locked failures rerun fn from the start.
func (s *SQLite) InTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	return s.retrier.Do(ctx, func(ctx context.Context) error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		if err := fn(tx); err != nil {
			_ = tx.Rollback()
			return err
		}
		return tx.Commit()
	})
}

// DB exposes the handle for read-only queries.
func (s *SQLite) DB() *sql.DB {
	return s.db
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func isBusy(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.Code == sqlite3.ErrBusy || se.Code == sqlite3.ErrLocked
	}
	return false
}

func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}
