package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

// Entry is a single blog post
type Entry struct {
	ID       int64  `db:"id"`
	Title    string `db:"title"`
	Text     string `db:"text"`
	Category string `db:"category"`
}

// ListEntries returns all entries, newest first
func (c *Conn) ListEntries(ctx context.Context) ([]*Entry, error) {
	entries := []*Entry{}
	err := c.db.SelectContext(ctx, &entries, `
		SELECT id, title, text, category
		FROM entries
		ORDER BY id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	return entries, nil
}

// ListEntriesByCategory returns the entries whose category matches exactly, newest first
func (c *Conn) ListEntriesByCategory(ctx context.Context, category string) ([]*Entry, error) {
	entries := []*Entry{}
	err := c.db.SelectContext(ctx, &entries, `
		SELECT id, title, text, category
		FROM entries
		WHERE category = ?
		ORDER BY id DESC
	`, category)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries for category %q: %w", category, err)
	}
	return entries, nil
}

// ListCategories returns the distinct categories in use, sorted
func (c *Conn) ListCategories(ctx context.Context) ([]string, error) {
	categories := []string{}
	err := c.db.SelectContext(ctx, &categories, "SELECT DISTINCT category FROM entries ORDER BY category")
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// InsertEntry stores a new entry and returns its id
func (c *Conn) InsertEntry(ctx context.Context, title, text, category string) (int64, error) {
	var id int64
	err := c.transaction(ctx, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx,
			"INSERT INTO entries (title, text, category) VALUES (?, ?, ?)",
			title, text, category)
		if err != nil {
			return fmt.Errorf("failed to insert entry: %w", err)
		}
		id, err = result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get entry id: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	log.Debug().Int64("id", id).Str("category", category).Msg("Entry inserted")
	return id, nil
}

// DeleteEntry removes an entry. Deleting an unknown id is not an error.
func (c *Conn) DeleteEntry(ctx context.Context, id int64) error {
	return c.transaction(ctx, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, "DELETE FROM entries WHERE id = ?", id)
		if err != nil {
			return fmt.Errorf("failed to delete entry %d: %w", id, err)
		}
		logAffected(result, id, "Entry deleted")
		return nil
	})
}

// UpdateEntry overwrites title, text and category of an entry.
// Updating an unknown id is not an error.
func (c *Conn) UpdateEntry(ctx context.Context, id int64, title, text, category string) error {
	return c.transaction(ctx, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx,
			"UPDATE entries SET title = ?, text = ?, category = ? WHERE id = ?",
			title, text, category, id)
		if err != nil {
			return fmt.Errorf("failed to update entry %d: %w", id, err)
		}
		logAffected(result, id, "Entry updated")
		return nil
	})
}

type rowsAffecter interface {
	RowsAffected() (int64, error)
}

func logAffected(result rowsAffecter, id int64, msg string) {
	n, err := result.RowsAffected()
	if err != nil {
		return
	}
	if n == 0 {
		log.Debug().Int64("id", id).Msg("No entry matched id")
		return
	}
	log.Debug().Int64("id", id).Msg(msg)
}
