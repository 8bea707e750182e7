package auditlogs

import (
	"context"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/uptrace/bun"

	"logistica/infrastructure/sqlite"
)

func openAuditLogsTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "audit-logs-test.db")
	db, err := sqlite.OpenDB(dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})

	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatalf("runtime caller unavailable")
	}
	migrationsDir := filepath.Join(filepath.Dir(file), "..", "..", "infrastructure", "sqlite", "migrations")
	if err := sqlite.ApplyMigrations(context.Background(), db, migrationsDir); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}

	err = db.WithWriteTx(context.Background(), func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO users (id, username, password_hash, role, created_at, updated_at)
VALUES (1, 'admin', 'hash', 'admin', CURRENT_TIMESTAMP, CURRENT_TIMESTAMP),
       (2, 'ana', 'hash', 'user', CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
INSERT INTO audit_logs (user_id, action, entity_type, entity_id, before_json, after_json, created_at)
VALUES
(1, 'schedule.create', 'schedules', 's1', '', '{"nfd":"1001"}', DATETIME('now', '-5 minutes')),
(2, 'schedule.status', 'schedules', 's1', '{"status":"Agendado"}', '{"status":"Recebido"}', DATETIME('now', '-4 minutes')),
(2, 'conference.create', 'conference', 'c1', '', '{"nfd":"1001"}', DATETIME('now', '-3 minutes')),
(0, 'products.import', 'products', 'ITJ', '', '{"count":3}', DATETIME('now', '-2 minutes'))`); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
INSERT INTO import_runs (user_id, kind, unit, file_name, record_count) VALUES (0, 'products', 'ITJ', 'Cad_ITJ.csv', 3)`); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `INSERT INTO export_runs (user_id, export_type) VALUES (2, 'schedules_xlsx')`)
		return err
	})
	if err != nil {
		t.Fatalf("seed data: %v", err)
	}
	return db
}

func TestLoadPageData_NewestFirstWithActors(t *testing.T) {
	db := openAuditLogsTestDB(t)

	data, err := LoadPageData(context.Background(), db, Filter{})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if data.Total != 4 || len(data.Rows) != 4 {
		t.Fatalf("expected 4 rows, got total=%d rows=%d", data.Total, len(data.Rows))
	}
	if data.Rows[0].Action != "products.import" || data.Rows[0].Actor != "sistema" {
		t.Fatalf("expected CLI import first, got %+v", data.Rows[0])
	}
	if data.Rows[3].Actor != "admin" {
		t.Fatalf("expected oldest row by admin, got %+v", data.Rows[3])
	}
	if len(data.EntityTypes) != 3 {
		t.Fatalf("expected 3 entity types, got %v", data.EntityTypes)
	}
	if len(data.Imports) != 1 || data.Imports[0].FileName != "Cad_ITJ.csv" {
		t.Fatalf("unexpected imports %+v", data.Imports)
	}
	if len(data.Exports) != 1 || data.Exports[0].Actor != "ana" || data.Exports[0].Kind != "schedules_xlsx" {
		t.Fatalf("unexpected exports %+v", data.Exports)
	}
	if data.Pages != 1 {
		t.Fatalf("expected one page, got %d", data.Pages)
	}
}

func TestLoadPageData_Filters(t *testing.T) {
	db := openAuditLogsTestDB(t)

	data, err := LoadPageData(context.Background(), db, Filter{Action: "schedule."})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if data.Total != 2 {
		t.Fatalf("expected 2 schedule rows, got %d", data.Total)
	}
	for _, r := range data.Rows {
		if !strings.HasPrefix(r.Action, "schedule.") {
			t.Fatalf("unexpected row %+v", r)
		}
	}

	data, err = LoadPageData(context.Background(), db, Filter{Username: "ANA", EntityType: "conference"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if data.Total != 1 || data.Rows[0].EntityID != "c1" {
		t.Fatalf("unexpected filtered rows %+v", data.Rows)
	}
}

func TestPageURLKeepsFilters(t *testing.T) {
	d := PageData{Filter: Filter{Action: "schedule.", Username: "ana"}}
	got := d.PageURL(2)
	if !strings.Contains(got, "action=schedule.") || !strings.Contains(got, "user=ana") || !strings.Contains(got, "page=2") {
		t.Fatalf("unexpected url %s", got)
	}
}
