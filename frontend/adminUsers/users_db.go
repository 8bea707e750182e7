package adminusers

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
	"logistica/infrastructure/cache"
	"logistica/infrastructure/rbac"
	"logistica/infrastructure/sqlite"
	"logistica/models"
)

var (
	ErrUsernameRequired = apperr.Validation("usuário é obrigatório")
	ErrInvalidRole      = apperr.Validation("perfil inválido")
	ErrInvalidEmail     = apperr.Validation("e-mail inválido")
	ErrUsernameExists   = apperr.Conflict("usuário já existe")
	ErrProtectedUser    = apperr.Validation("o administrador padrão não pode ser removido nem ter o perfil alterado")
	ErrSelfDelete       = apperr.Validation("não é possível remover o próprio usuário")
	ErrUserNotFound     = apperr.NotFound("usuário não encontrado")
)

// Service manages users and their module permissions. The protected
// username is the seeded administrator.
type Service struct {
	db        *sqlite.DB
	audit     *audit.Service
	sessions  *cache.UserSessionCache
	users     *cache.UserCache
	protected string
}

func NewService(db *sqlite.DB, auditSvc *audit.Service, sessions *cache.UserSessionCache, users *cache.UserCache, protectedUsername string) *Service {
	return &Service{db: db, audit: auditSvc, sessions: sessions, users: users, protected: protectedUsername}
}

// Input is the editable part of a user. An empty Password on update keeps
// the current one.
type Input struct {
	Username string
	Name     string
	Email    string
	Role     string
	Password string
	Modules  []string
}

func (s *Service) isProtected(username string) bool {
	return s.protected != "" && strings.EqualFold(username, s.protected)
}

func (s *Service) List(ctx context.Context) ([]UserView, error) {
	users := make([]models.User, 0)
	perms := make([]models.UserPermission, 0)
	err := s.db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		if err := tx.NewSelect().Model(&users).Order("username ASC").Scan(ctx); err != nil {
			return err
		}
		return tx.NewSelect().Model(&perms).Scan(ctx)
	})
	if err != nil {
		return nil, err
	}

	granted := make(map[int64][]string)
	for _, p := range perms {
		granted[p.UserID] = append(granted[p.UserID], p.Module)
	}
	out := make([]UserView, 0, len(users))
	for _, u := range users {
		out = append(out, s.view(u, granted[u.ID]))
	}
	return out, nil
}

func (s *Service) Find(ctx context.Context, id int64) (UserView, error) {
	var (
		user    models.User
		granted []string
	)
	err := s.db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		if err := tx.NewSelect().Model(&user).Where("id = ?", id).Limit(1).Scan(ctx); err != nil {
			return err
		}
		var err error
		granted, err = login.GrantedModules(ctx, tx, id)
		return err
	})
	if errors.Is(err, sql.ErrNoRows) {
		return UserView{}, ErrUserNotFound
	}
	if err != nil {
		return UserView{}, err
	}
	return s.view(user, granted), nil
}

func (s *Service) view(u models.User, granted []string) UserView {
	return UserView{
		ID:          u.ID,
		Username:    u.Username,
		Name:        u.Name,
		Email:       u.Email,
		Role:        u.Role,
		Permissions: rbac.EffectivePermissions(u.Role, granted),
		Protected:   s.isProtected(u.Username),
		CreatedAt:   u.CreatedAt,
	}
}

func normalize(in Input) (Input, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Role = strings.TrimSpace(in.Role)
	if in.Username == "" {
		return in, ErrUsernameRequired
	}
	if !rbac.ValidRole(in.Role) {
		return in, ErrInvalidRole
	}
	if in.Email != "" {
		if _, err := mail.ParseAddress(in.Email); err != nil {
			return in, ErrInvalidEmail
		}
	}
	modules := make([]string, 0, len(in.Modules))
	seen := make(map[string]bool)
	for _, m := range in.Modules {
		if rbac.IsGrantable(m) && !seen[m] {
			seen[m] = true
			modules = append(modules, m)
		}
	}
	// Admins hold every permission implicitly.
	if in.Role == rbac.RoleAdmin {
		modules = nil
	}
	in.Modules = modules
	return in, nil
}

// CreateUser validates in, hashes the password and stores the user with its
// permissions in one transaction.
func (s *Service) CreateUser(ctx context.Context, actorID int64, in Input) (models.User, error) {
	in, err := normalize(in)
	if err != nil {
		return models.User{}, err
	}
	if err := login.ValidatePasswordPolicy(in.Password); err != nil {
		return models.User{}, err
	}
	hash, err := argon.CreateHash(in.Password, argon.DefaultParams)
	if err != nil {
		return models.User{}, err
	}

	user := models.User{
		Username:     in.Username,
		PasswordHash: hash,
		Name:         in.Name,
		Email:        in.Email,
		Role:         in.Role,
	}
	err = s.db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		exists, err := tx.NewSelect().Model((*models.User)(nil)).Where("LOWER(username) = ?", strings.ToLower(in.Username)).Exists(ctx)
		if err != nil {
			return err
		}
		if exists {
			return ErrUsernameExists
		}
		if _, err := tx.NewInsert().Model(&user).Exec(ctx); err != nil {
			return err
		}
		if err := replacePermissions(ctx, tx, user.ID, in.Modules); err != nil {
			return err
		}
		return s.audit.Write(ctx, tx, audit.Entry{
			UserID:     actorID,
			Action:     "user.create",
			EntityType: "users",
			EntityID:   user.Username,
			After:      auditView(user, in.Modules),
		})
	})
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

// UpdateUser changes profile, role and permissions. The protected admin
// keeps its role.
func (s *Service) UpdateUser(ctx context.Context, actorID, id int64, in Input) error {
	current, err := s.Find(ctx, id)
	if err != nil {
		return err
	}
	in.Username = current.Username
	in, err = normalize(in)
	if err != nil {
		return err
	}
	if current.Protected && in.Role != current.Role {
		return ErrProtectedUser
	}
	var hash string
	if in.Password != "" {
		if err := login.ValidatePasswordPolicy(in.Password); err != nil {
			return err
		}
		if hash, err = argon.CreateHash(in.Password, argon.DefaultParams); err != nil {
			return err
		}
	}

	err = s.db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		q := tx.NewUpdate().
			Model((*models.User)(nil)).
			Set("name = ?", in.Name).
			Set("email = ?", in.Email).
			Set("role = ?", in.Role).
			Set("updated_at = ?", time.Now()).
			Where("id = ?", id)
		if hash != "" {
			q = q.Set("password_hash = ?", hash)
		}
		if _, err := q.Exec(ctx); err != nil {
			return err
		}
		if err := replacePermissions(ctx, tx, id, in.Modules); err != nil {
			return err
		}
		if hash != "" {
			if _, err := tx.NewDelete().Model((*models.Session)(nil)).Where("user_id = ?", id).Exec(ctx); err != nil {
				return err
			}
		}
		return s.audit.Write(ctx, tx, audit.Entry{
			UserID:     actorID,
			Action:     "user.update",
			EntityType: "users",
			EntityID:   current.Username,
			Before:     current,
			After:      auditView(models.User{Username: current.Username, Name: in.Name, Email: in.Email, Role: in.Role}, in.Modules),
		})
	})
	if err != nil {
		return err
	}
	s.evict(id, current.Username)
	return nil
}

// DeleteUser removes a user. Sessions and permissions cascade.
func (s *Service) DeleteUser(ctx context.Context, actorID, id int64) error {
	current, err := s.Find(ctx, id)
	if err != nil {
		return err
	}
	if current.Protected {
		return ErrProtectedUser
	}
	if id == actorID {
		return ErrSelfDelete
	}
	err = s.db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*models.User)(nil)).Where("id = ?", id).Exec(ctx); err != nil {
			return err
		}
		return s.audit.Write(ctx, tx, audit.Entry{
			UserID:     actorID,
			Action:     "user.delete",
			EntityType: "users",
			EntityID:   current.Username,
			Before:     current,
		})
	})
	if err != nil {
		return err
	}
	s.evict(id, current.Username)
	return nil
}

func (s *Service) evict(id int64, username string) {
	if s.sessions != nil {
		s.sessions.DeleteSessionsByUserID(id)
	}
	if s.users != nil {
		s.users.Delete(username)
	}
}

func replacePermissions(ctx context.Context, tx bun.Tx, userID int64, modules []string) error {
	if _, err := tx.NewDelete().Model((*models.UserPermission)(nil)).Where("user_id = ?", userID).Exec(ctx); err != nil {
		return err
	}
	if len(modules) == 0 {
		return nil
	}
	rows := make([]models.UserPermission, 0, len(modules))
	for _, m := range modules {
		rows = append(rows, models.UserPermission{UserID: userID, Module: m})
	}
	_, err := tx.NewInsert().Model(&rows).Exec(ctx)
	return err
}

func auditView(u models.User, modules []string) map[string]any {
	return map[string]any{
		"username": u.Username,
		"name":     u.Name,
		"email":    u.Email,
		"role":     u.Role,
		"modules":  modules,
	}
}
