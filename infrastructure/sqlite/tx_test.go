package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/uptrace/bun"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenDB(filepath.Join(t.TempDir(), "nested", "logistica.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	if err := ApplyEmbeddedMigrations(context.Background(), db); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	return db
}

func countImportRuns(t *testing.T, db *DB, kind string) int {
	t.Helper()
	var n int
	err := db.WithReadTx(context.Background(), func(ctx context.Context, tx bun.Tx) error {
		return tx.NewRaw(`SELECT COUNT(*) FROM import_runs WHERE kind = ?`, kind).Scan(ctx, &n)
	})
	if err != nil {
		t.Fatalf("count import runs: %v", err)
	}
	return n
}

func insertImportRun(ctx context.Context, tx bun.Tx, kind string) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO import_runs (user_id, kind, unit, file_name, record_count) VALUES (0, ?, 'ITJ', 'Cad_ITJ.csv', 3)`, kind)
	return err
}

func TestWriteTxCommitAndRollback(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if err := db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return insertImportRun(ctx, tx, "products")
	}); err != nil {
		t.Fatalf("commit: %v", err)
	}

	failure := errors.New("parse failed")
	err := db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		if err := insertImportRun(ctx, tx, "schedules"); err != nil {
			return err
		}
		return failure
	})
	if !errors.Is(err, failure) {
		t.Fatalf("expected fn error back, got %v", err)
	}

	if n := countImportRuns(t, db, "products"); n != 1 {
		t.Fatalf("expected committed run, got %d", n)
	}
	if n := countImportRuns(t, db, "schedules"); n != 0 {
		t.Fatalf("expected rolled back run, got %d", n)
	}
}

func TestReadTxIsQueryOnly(t *testing.T) {
	db := openTestDB(t)

	err := db.WithReadTx(context.Background(), func(ctx context.Context, tx bun.Tx) error {
		return insertImportRun(ctx, tx, "products")
	})
	if err == nil {
		t.Fatalf("expected write through the read pool to fail")
	}
	if n := countImportRuns(t, db, "products"); n != 0 {
		t.Fatalf("read tx wrote %d rows", n)
	}
}

func TestNilDBNotInitialized(t *testing.T) {
	var db *DB
	noop := func(context.Context, bun.Tx) error { return nil }
	if err := db.WithWriteTx(context.Background(), noop); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("write: expected ErrNotInitialized, got %v", err)
	}
	if err := db.WithReadTx(context.Background(), noop); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("read: expected ErrNotInitialized, got %v", err)
	}
}
