package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func setupTestDB(t *testing.T, ctx context.Context) *Database {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")
	db, err := Open(ctx, dbPath)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("db close failed: %v", err)
		}
	})
	return db
}

func TestOpen_MigrationsIdempotent(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t, ctx)
	if err := db.migrate(ctx); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("db close failed: %v", err)
	}
	again, err := Open(ctx, db.Path())
	if err != nil {
		t.Fatalf("Open second run failed: %v", err)
	}
	defer again.Close()
}

func TestOpenCreatesDirectory(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "dir", "roadmap.db")
	db, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer db.Close()
	if db.Path() != path {
		t.Fatalf("expected path %q, got %q", path, db.Path())
	}
}

func TestWithTxRollback(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t, ctx)
	err := db.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "INSERT INTO settings (key, value) VALUES (?, ?)", "tx", "rollback"); err != nil {
			return err
		}
		return fmt.Errorf("force rollback")
	})
	if err == nil {
		t.Fatalf("expected error from WithTx")
	}
	if _, ok := db.GetSetting(ctx, "tx"); ok {
		t.Fatalf("expected rollback to discard setting")
	}
}

func TestDocumentLifecycle(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t, ctx)

	if _, err := db.GetDocument(ctx, "roadmap"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	rev, err := db.Revision(ctx, "roadmap")
	if err != nil || rev != 0 {
		t.Fatalf("expected revision 0, got %d (%v)", rev, err)
	}

	first, err := db.PutDocument(ctx, "roadmap", []byte(`{"v":1}`))
	if err != nil {
		t.Fatalf("PutDocument failed: %v", err)
	}
	second, err := db.PutDocument(ctx, "roadmap", []byte(`{"v":2}`))
	if err != nil {
		t.Fatalf("PutDocument failed: %v", err)
	}
	if first != 1 || second != 2 {
		t.Fatalf("expected revisions 1 and 2, got %d and %d", first, second)
	}

	doc, err := db.GetDocument(ctx, "roadmap")
	if err != nil {
		t.Fatalf("GetDocument failed: %v", err)
	}
	if string(doc.Body) != `{"v":2}` || doc.Revision != 2 || doc.UpdatedAt.IsZero() {
		t.Fatalf("unexpected document %+v", doc)
	}

	old, err := db.GetRevision(ctx, "roadmap", 1)
	if err != nil {
		t.Fatalf("GetRevision failed: %v", err)
	}
	if string(old.Body) != `{"v":1}` {
		t.Fatalf("unexpected revision body %q", old.Body)
	}

	if err := db.DeleteDocument(ctx, "roadmap"); err != nil {
		t.Fatalf("DeleteDocument failed: %v", err)
	}
	if _, err := db.GetDocument(ctx, "roadmap"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	history, err := db.History(ctx, "roadmap")
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(history) != 0 {
		t.Fatalf("expected history cleared, got %d", len(history))
	}
}

func TestDocumentHistoryPruned(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t, ctx)
	total := DefaultHistoryLimit + 5
	for i := 0; i < total; i++ {
		if _, err := db.PutDocument(ctx, "roadmap", []byte(fmt.Sprintf("%d", i))); err != nil {
			t.Fatalf("PutDocument failed: %v", err)
		}
	}
	history, err := db.History(ctx, "roadmap")
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(history) != DefaultHistoryLimit {
		t.Fatalf("expected %d revisions, got %d", DefaultHistoryLimit, len(history))
	}
	if history[0].Revision != int64(total) {
		t.Fatalf("expected newest revision first, got %d", history[0].Revision)
	}
	if _, err := db.GetRevision(ctx, "roadmap", 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected pruned revision to be gone, got %v", err)
	}
}

func TestDocumentKeysAreIndependent(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t, ctx)
	if _, err := db.PutDocument(ctx, "a", []byte("a")); err != nil {
		t.Fatalf("PutDocument failed: %v", err)
	}
	rev, err := db.PutDocument(ctx, "b", []byte("b"))
	if err != nil {
		t.Fatalf("PutDocument failed: %v", err)
	}
	if rev != 1 {
		t.Fatalf("expected independent revision counter, got %d", rev)
	}
}

func TestOpErrorFormatting(t *testing.T) {
	err := wrapDocumentErr("get", "roadmap", ErrNotFound)
	if err.Error() != `get document "roadmap": not found` {
		t.Fatalf("unexpected message %q", err.Error())
	}
	var opErr *OpError
	if !errors.As(err, &opErr) || opErr.Resource != "document" {
		t.Fatalf("expected OpError, got %T", err)
	}
	if wrapSettingErr("set", "k", nil) != nil {
		t.Fatalf("expected nil for nil error")
	}
}

func TestSettings(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t, ctx)
	if _, ok := db.GetSetting(ctx, "theme"); ok {
		t.Fatalf("expected unset setting")
	}
	if err := db.SetSetting(ctx, "theme", "dark"); err != nil {
		t.Fatalf("SetSetting failed: %v", err)
	}
	if err := db.SetSetting(ctx, "theme", "light"); err != nil {
		t.Fatalf("SetSetting failed: %v", err)
	}
	if v, ok := db.GetSetting(ctx, "theme"); !ok || v != "light" {
		t.Fatalf("expected light, got %q", v)
	}
	if err := db.DeleteSetting(ctx, "theme"); err != nil {
		t.Fatalf("DeleteSetting failed: %v", err)
	}
	if _, ok := db.GetSetting(ctx, "theme"); ok {
		t.Fatalf("expected setting removed")
	}
}

func TestOpenRejectsNonDatabaseFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "roadmap.db")
	junk := make([]byte, 4096)
	for i := range junk {
		junk[i] = byte('a' + i%26)
	}
	if err := os.WriteFile(path, junk, 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if _, err := Open(ctx, path); !errors.Is(err, ErrDatabaseCorrupted) {
		t.Fatalf("expected ErrDatabaseCorrupted, got %v", err)
	}
}
