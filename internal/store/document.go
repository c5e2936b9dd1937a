package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNotFound is returned when no document exists at the requested path.
var ErrNotFound = errors.New("document not found")

// txRetries is how many times a transaction body is re-run on lock
// contention before giving up.
const txRetries = 3

// Tx is the handle passed to a transaction body. All reads see the state
// as of transaction start; writes become visible atomically on commit.
type Tx struct {
	ctx context.Context
	tx  *sql.Tx
}

// Get reads the document at path into v. Returns ErrNotFound if absent.
func (t *Tx) Get(path string, v any) error {
	return scanDocument(t.tx.QueryRowContext(t.ctx, `SELECT data FROM documents WHERE path = ?`, path), path, v)
}

// Set writes v as the full document at path, inserting or replacing.
// Callers read the document first and mutate the decoded value, so a Set
// always reflects the freshly read state rather than a blind overwrite.
func (t *Tx) Set(path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal document %s: %w", path, err)
	}
	_, err = t.tx.ExecContext(t.ctx, `
INSERT INTO documents (path, data, updated_at) VALUES (?, ?, ?)
ON CONFLICT(path) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		path, string(data), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("write document %s: %w", path, err)
	}
	return nil
}

// Get reads the document at path into v outside any transaction.
func (s *Store) Get(ctx context.Context, path string, v any) error {
	return scanDocument(s.db.QueryRowContext(ctx, `SELECT data FROM documents WHERE path = ?`, path), path, v)
}

// RunTransaction executes fn atomically. The body must be a pure function
// of the documents it reads plus its input: on lock contention the whole
// body is re-run against fresh state, so side effects other than tx writes
// must stay outside.
func (s *Store) RunTransaction(ctx context.Context, fn func(tx *Tx) error) error {
	var lastErr error
	for attempt := 0; attempt < txRetries; attempt++ {
		err := s.runOnce(ctx, fn)
		if err == nil {
			return nil
		}
		if !isBusy(err) {
			return err
		}
		lastErr = err
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt+1) * 50 * time.Millisecond):
		}
	}
	return fmt.Errorf("transaction failed after %d attempts: %w", txRetries, lastErr)
}

func (s *Store) runOnce(ctx context.Context, fn func(tx *Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(&Tx{ctx: ctx, tx: tx}); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// QueryResult is one row of an ordered multi-document read.
type QueryResult struct {
	Path string
	Data json.RawMessage
}

// QueryTop returns up to limit documents under prefix ordered by the given
// JSON field, highest first. field is a JSON path like "$.stats.xp".
func (s *Store) QueryTop(ctx context.Context, prefix, field string, limit int) ([]QueryResult, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT path, data FROM documents
WHERE path LIKE ? || '%'
ORDER BY CAST(json_extract(data, ?) AS INTEGER) DESC
LIMIT ?`, prefix, field, limit)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	var results []QueryResult
	for rows.Next() {
		var r QueryResult
		var data string
		if err := rows.Scan(&r.Path, &data); err != nil {
			return nil, fmt.Errorf("scan document row: %w", err)
		}
		r.Data = json.RawMessage(data)
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return results, nil
}

func scanDocument(row *sql.Row, path string, v any) error {
	var data string
	if err := row.Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return fmt.Errorf("read document %s: %w", path, err)
	}
	if err := json.Unmarshal([]byte(data), v); err != nil {
		return fmt.Errorf("unmarshal document %s: %w", path, err)
	}
	return nil
}

func isBusy(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}
