package settings

import (
	"context"
	"database/sql"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/uptrace/bun"

	"logistica/frontend/login"
	"logistica/infrastructure/apperr"
	"logistica/infrastructure/argon"
	"logistica/infrastructure/audit"
	"logistica/infrastructure/sqlite"
	"logistica/models"
)

var ErrWrongPassword = apperr.Validation("senha atual incorreta")

// SaveProfile updates the signed-in user's own name and e-mail.
func SaveProfile(ctx context.Context, db *sqlite.DB, auditSvc *audit.Service, userID int64, name, email string) error {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			return apperr.Validation("e-mail inválido")
		}
	}
	return db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		var before models.User
		if err := tx.NewSelect().Model(&before).Where("id = ?", userID).Limit(1).Scan(ctx); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apperr.NotFound("usuário não encontrado")
			}
			return err
		}
		_, err := tx.NewUpdate().
			Model((*models.User)(nil)).
			Set("name = ?", name).
			Set("email = ?", email).
			Set("updated_at = ?", time.Now()).
			Where("id = ?", userID).
			Exec(ctx)
		if err != nil {
			return err
		}
		return auditSvc.Write(ctx, tx, audit.Entry{
			UserID:     userID,
			Action:     "account.profile",
			EntityType: "users",
			EntityID:   before.Username,
			Before:     map[string]string{"name": before.Name, "email": before.Email},
			After:      map[string]string{"name": name, "email": email},
		})
	})
}

// ChangePassword verifies current and stores next. Every other session of
// the user is revoked; keepSession survives.
func ChangePassword(ctx context.Context, db *sqlite.DB, auditSvc *audit.Service, userID int64, keepSession, current, next, confirm string) error {
	if next != confirm {
		return apperr.Validation("a confirmação não confere com a nova senha")
	}
	if err := login.ValidatePasswordPolicy(next); err != nil {
		return err
	}
	hash, err := argon.CreateHash(next, argon.DefaultParams)
	if err != nil {
		return err
	}

	var user models.User
	err = db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return tx.NewSelect().Model(&user).Where("id = ?", userID).Limit(1).Scan(ctx)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.NotFound("usuário não encontrado")
	}
	if err != nil {
		return err
	}
	ok, err := argon.ComparePasswordAndHash(current, user.PasswordHash)
	if err != nil {
		return err
	}
	if !ok {
		return ErrWrongPassword
	}

	return db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewUpdate().
			Model((*models.User)(nil)).
			Set("password_hash = ?", hash).
			Set("updated_at = ?", time.Now()).
			Where("id = ?", userID).
			Exec(ctx)
		if err != nil {
			return err
		}
		if _, err := tx.NewDelete().
			Model((*models.Session)(nil)).
			Where("user_id = ?", userID).
			Where("id <> ?", keepSession).
			Exec(ctx); err != nil {
			return err
		}
		return auditSvc.Write(ctx, tx, audit.Entry{
			UserID:     userID,
			Action:     "account.password",
			EntityType: "users",
			EntityID:   user.Username,
		})
	})
}
