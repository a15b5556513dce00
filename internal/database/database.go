package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/morikuni/failure"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"github.com/saltyorg/microblog/internal/apperr"
)

// Connector opens connections to the SQLite database at a fixed location.
// It holds no open handle itself.
type Connector struct {
	path string
}

// NewConnector creates a connector for the database file at path
func NewConnector(path string) *Connector {
	return &Connector{path: path}
}

// Path returns the database file path
func (c *Connector) Path() string {
	return c.path
}

func (c *Connector) dsn() string {
	return fmt.Sprintf("%s?_pragma=busy_timeout(5000)", c.path)
}

// Open opens a dedicated connection. The caller owns it and must Close it.
// Failures are reported as apperr.StorageUnavailable.
func (c *Connector) Open(ctx context.Context) (*Conn, error) {
	db, err := sqlx.Open("sqlite", c.dsn())
	if err != nil {
		return nil, failure.Translate(err, apperr.StorageUnavailable,
			failure.Context{"path": c.path},
			failure.Message("failed to open database"),
		)
	}

	// One physical connection per Conn, never shared between requests
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, failure.Translate(err, apperr.StorageUnavailable,
			failure.Context{"path": c.path},
			failure.Message("failed to ping database"),
		)
	}

	log.Trace().Str("path", c.path).Msg("Database connection opened")

	return &Conn{db: db, path: c.path}, nil
}

// Conn is a single open database connection
type Conn struct {
	db   *sqlx.DB
	path string
}

// Close closes the connection
func (c *Conn) Close() error {
	if err := c.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	log.Trace().Str("path", c.path).Msg("Database connection closed")
	return nil
}

// transaction runs fn in a transaction and commits it
func (c *Conn) transaction(ctx context.Context, fn func(*sqlx.Tx) error) error {
	tx, err := c.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Error().Err(rbErr).Msg("Failed to rollback transaction")
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
