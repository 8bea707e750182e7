package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/uptrace/bun"

	"logistica/infrastructure/sqlite"
	"logistica/models"
)

// SystemUserID attributes entries written by the CLI.
const SystemUserID int64 = 0

// Entry is one audited change.
type Entry struct {
	UserID     int64
	Action     string
	EntityType string
	EntityID   string
	Before     any
	After      any
}

// Service writes audit records, either inside the caller transaction or in
// one of its own.
type Service struct {
	db *sqlite.DB
}

func NewService(db *sqlite.DB) *Service {
	return &Service{db: db}
}

// Write inserts e inside tx. A nil Service writes nothing.
func (s *Service) Write(ctx context.Context, tx bun.Tx, e Entry) error {
	if s == nil {
		return nil
	}
	beforeJSON, err := marshal(e.Before)
	if err != nil {
		return err
	}
	afterJSON, err := marshal(e.After)
	if err != nil {
		return err
	}
	_, err = tx.NewInsert().Model(&models.AuditLog{
		UserID:     e.UserID,
		Action:     e.Action,
		EntityType: e.EntityType,
		EntityID:   e.EntityID,
		BeforeJSON: beforeJSON,
		AfterJSON:  afterJSON,
	}).Exec(ctx)
	return err
}

// Record writes e in its own transaction. Used by flows whose data lives in
// the JSON collections rather than sqlite.
func (s *Service) Record(ctx context.Context, e Entry) error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return s.Write(ctx, tx, e)
	})
}

// RecordImport stores an import run and its audit entry together.
func (s *Service) RecordImport(ctx context.Context, run models.ImportRun) error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(&run).Exec(ctx); err != nil {
			return fmt.Errorf("insert import run: %w", err)
		}
		return s.Write(ctx, tx, Entry{
			UserID:     run.UserID,
			Action:     run.Kind + ".import",
			EntityType: "import_runs",
			EntityID:   fmt.Sprintf("%d", run.ID),
			After:      run,
		})
	})
}

// RecordExport stores an export run.
func (s *Service) RecordExport(ctx context.Context, userID int64, exportType string) error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewInsert().Model(&models.ExportRun{UserID: userID, ExportType: exportType}).Exec(ctx)
		return err
	})
}

func marshal(v any) (string, error) {
	if v == nil {
		return "", nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
