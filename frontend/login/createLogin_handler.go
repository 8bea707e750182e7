package login

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"logistica/frontend/shared/nav"
	"logistica/infrastructure/cache"
	sessioncookie "logistica/infrastructure/session"
	"logistica/infrastructure/sqlite"
)

// Options tunes the issued session cookie.
type Options struct {
	TTL    time.Duration
	Secure bool
}

// CreateLoginHandler authenticates the user and issues a session cookie.
func CreateLoginHandler(db *sqlite.DB, sessionCache *cache.UserSessionCache, userCache *cache.UserCache, opts Options) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Redirect(w, r, "/login?error="+url.QueryEscape("formulário inválido"), http.StatusSeeOther)
			return
		}

		username := strings.TrimSpace(r.FormValue("username"))
		password := r.FormValue("password")
		if username == "" || strings.TrimSpace(password) == "" {
			http.Redirect(w, r, "/login?error="+url.QueryEscape("usuário e senha são obrigatórios"), http.StatusSeeOther)
			return
		}

		user, err := authenticateUser(r.Context(), db, username, password)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				slog.Warn("login failed", slog.String("username", username))
				http.Redirect(w, r, "/login?error="+url.QueryEscape("usuário ou senha inválidos"), http.StatusSeeOther)
				return
			}
			slog.Error("login: authenticate failed", slog.Any("err", err))
			http.Redirect(w, r, "/login?error="+url.QueryEscape("falha na autenticação"), http.StatusSeeOther)
			return
		}

		granted, err := grantedModules(r, db, user.ID)
		if err != nil {
			slog.Error("login: load permissions failed", slog.Int64("user_id", user.ID), slog.Any("err", err))
			http.Redirect(w, r, "/login?error="+url.QueryEscape("falha na autenticação"), http.StatusSeeOther)
			return
		}

		session := newSession(user, granted, opts.TTL)
		if err := persistSession(r.Context(), db, session); err != nil {
			slog.Error("login: persist session failed", slog.Any("err", err))
			http.Redirect(w, r, "/login?error="+url.QueryEscape("falha ao criar sessão"), http.StatusSeeOther)
			return
		}

		sessionCache.AddSession(session)
		userCache.Add(user)
		slog.Info("login", slog.String("username", user.Username), slog.String("role", user.Role))

		http.SetCookie(w, sessioncookie.Cookie(session.ID, int(ttlOrDefault(opts.TTL).Seconds()), opts.Secure))
		http.Redirect(w, r, nav.Home(session), http.StatusSeeOther)
	}
}
