package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// DefaultHistoryLimit is how many past revisions PutDocument keeps per key.
const DefaultHistoryLimit = 20

// StoredDocument is one revision of an encoded roadmap document.
type StoredDocument struct {
	Key       string
	Body      []byte
	Revision  int64
	UpdatedAt time.Time
}

// GetDocument returns the latest revision for key, or ErrNotFound.
func (d *Database) GetDocument(ctx context.Context, key string) (StoredDocument, error) {
	ctx, cancel := d.withTimeout(ctx, defaultDBTimeout)
	defer cancel()
	doc := StoredDocument{Key: key}
	var updated int64
	err := d.DB.QueryRowContext(ctx,
		"SELECT body, revision, updated_at FROM documents WHERE key = ?", key,
	).Scan(&doc.Body, &doc.Revision, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return StoredDocument{}, wrapDocumentErr("get", key, ErrNotFound)
	}
	if err != nil {
		return StoredDocument{}, wrapDocumentErr("get", key, err)
	}
	doc.UpdatedAt = time.UnixMilli(updated).UTC()
	return doc, nil
}

// Revision returns the current revision for key, zero when it was never
// written.
func (d *Database) Revision(ctx context.Context, key string) (int64, error) {
	ctx, cancel := d.withTimeout(ctx, defaultDBTimeout)
	defer cancel()
	var rev int64
	err := d.DB.QueryRowContext(ctx, "SELECT revision FROM documents WHERE key = ?", key).Scan(&rev)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, wrapDocumentErr("revision", key, err)
	}
	return rev, nil
}

// PutDocument stores body as the next revision of key and records it in the
// history, pruning revisions beyond DefaultHistoryLimit.
func (d *Database) PutDocument(ctx context.Context, key string, body []byte) (int64, error) {
	ctx, cancel := d.withTimeout(ctx, defaultDBTimeout)
	defer cancel()
	now := time.Now().UnixMilli()
	var rev int64
	err := d.WithTx(ctx, func(tx *sql.Tx) error {
		if err := tx.QueryRowContext(ctx,
			"SELECT COALESCE(MAX(revision), 0) FROM documents WHERE key = ?", key,
		).Scan(&rev); err != nil {
			return err
		}
		rev++
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO documents (key, body, revision, updated_at) VALUES (?, ?, ?, ?)
			ON CONFLICT(key) DO UPDATE SET body = excluded.body, revision = excluded.revision, updated_at = excluded.updated_at`,
			key, body, rev, now,
		); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO document_history (key, revision, body, saved_at) VALUES (?, ?, ?, ?)",
			key, rev, body, now,
		); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			"DELETE FROM document_history WHERE key = ? AND revision <= ?",
			key, rev-DefaultHistoryLimit,
		)
		return err
	})
	if err != nil {
		return 0, wrapDocumentErr("put", key, err)
	}
	return rev, nil
}

// DeleteDocument removes key and its history.
func (d *Database) DeleteDocument(ctx context.Context, key string) error {
	ctx, cancel := d.withTimeout(ctx, defaultDBTimeout)
	defer cancel()
	err := d.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM documents WHERE key = ?", key); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, "DELETE FROM document_history WHERE key = ?", key)
		return err
	})
	return wrapDocumentErr("delete", key, err)
}

// History lists the retained revisions of key, newest first, without
// bodies.
func (d *Database) History(ctx context.Context, key string) ([]StoredDocument, error) {
	ctx, cancel := d.withTimeout(ctx, defaultDBTimeout)
	defer cancel()
	rows, err := d.DB.QueryContext(ctx,
		"SELECT revision, saved_at FROM document_history WHERE key = ? ORDER BY revision DESC", key)
	if err != nil {
		return nil, wrapDocumentErr("history", key, err)
	}
	defer rows.Close()

	var out []StoredDocument
	for rows.Next() {
		doc := StoredDocument{Key: key}
		var saved int64
		if err := rows.Scan(&doc.Revision, &saved); err != nil {
			return nil, wrapDocumentErr("history", key, err)
		}
		doc.UpdatedAt = time.UnixMilli(saved).UTC()
		out = append(out, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDocumentErr("history", key, err)
	}
	return out, nil
}

// GetRevision returns a retained past revision of key.
func (d *Database) GetRevision(ctx context.Context, key string, revision int64) (StoredDocument, error) {
	ctx, cancel := d.withTimeout(ctx, defaultDBTimeout)
	defer cancel()
	doc := StoredDocument{Key: key, Revision: revision}
	var saved int64
	err := d.DB.QueryRowContext(ctx,
		"SELECT body, saved_at FROM document_history WHERE key = ? AND revision = ?", key, revision,
	).Scan(&doc.Body, &saved)
	if errors.Is(err, sql.ErrNoRows) {
		return StoredDocument{}, wrapDocumentErr("get revision", key, fmt.Errorf("revision %d: %w", revision, ErrNotFound))
	}
	if err != nil {
		return StoredDocument{}, wrapDocumentErr("get revision", key, err)
	}
	doc.UpdatedAt = time.UnixMilli(saved).UTC()
	return doc, nil
}
