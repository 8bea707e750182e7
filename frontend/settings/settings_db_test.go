package settings

import (
	"context"
	"errors"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/uptrace/bun"

	"logistica/frontend/login"
	"logistica/infrastructure/apperr"
	"logistica/infrastructure/argon"
	"logistica/infrastructure/audit"
	"logistica/infrastructure/rbac"
	"logistica/infrastructure/sqlite"
	"logistica/models"
)

func openSettingsTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "settings-test.db")
	db, err := sqlite.OpenDB(dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatalf("runtime caller unavailable")
	}
	migrationsDir := filepath.Join(filepath.Dir(file), "..", "..", "infrastructure", "sqlite", "migrations")
	if err := sqlite.ApplyMigrations(context.Background(), db, migrationsDir); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	if err := login.UpsertUserPasswordHash(context.Background(), db, "ana", rbac.RoleUser, "Senha12345"); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return db
}

func loadUser(t *testing.T, db *sqlite.DB) models.User {
	t.Helper()
	var u models.User
	if err := db.WithReadTx(context.Background(), func(ctx context.Context, tx bun.Tx) error {
		return tx.NewSelect().Model(&u).Where("username = ?", "ana").Limit(1).Scan(ctx)
	}); err != nil {
		t.Fatalf("load user: %v", err)
	}
	return u
}

func TestSaveProfile(t *testing.T) {
	db := openSettingsTestDB(t)
	user := loadUser(t, db)

	if err := SaveProfile(context.Background(), db, audit.NewService(db), user.ID, " Ana Souza ", "ana@example.com"); err != nil {
		t.Fatalf("save profile: %v", err)
	}
	got := loadUser(t, db)
	if got.Name != "Ana Souza" || got.Email != "ana@example.com" {
		t.Fatalf("profile not saved: %+v", got)
	}
	if err := SaveProfile(context.Background(), db, nil, user.ID, "Ana", "invalido"); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestChangePassword(t *testing.T) {
	db := openSettingsTestDB(t)
	user := loadUser(t, db)
	ctx := context.Background()

	for _, id := range []string{"current", "other"} {
		if err := db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
			_, err := tx.NewInsert().Model(&models.Session{ID: id, UserID: user.ID, ExpiresAt: time.Now().Add(time.Hour)}).Exec(ctx)
			return err
		}); err != nil {
			t.Fatalf("seed session: %v", err)
		}
	}

	if err := ChangePassword(ctx, db, nil, user.ID, "current", "errada123", "NovaSenha1", "NovaSenha1"); !errors.Is(err, ErrWrongPassword) {
		t.Fatalf("expected ErrWrongPassword, got %v", err)
	}
	if err := ChangePassword(ctx, db, nil, user.ID, "current", "Senha12345", "NovaSenha1", "Outra1234"); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected confirmation mismatch, got %v", err)
	}
	if err := ChangePassword(ctx, db, nil, user.ID, "current", "Senha12345", "NovaSenha1", "NovaSenha1"); err != nil {
		t.Fatalf("change password: %v", err)
	}

	ok, err := argon.ComparePasswordAndHash("NovaSenha1", loadUser(t, db).PasswordHash)
	if err != nil || !ok {
		t.Fatalf("new password not stored (%v)", err)
	}

	var ids []string
	_ = db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return tx.NewSelect().Model((*models.Session)(nil)).Column("id").Where("user_id = ?", user.ID).Scan(ctx, &ids)
	})
	if len(ids) != 1 || ids[0] != "current" {
		t.Fatalf("expected only the current session to survive, got %v", ids)
	}
}
