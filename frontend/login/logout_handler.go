package login

import (
	"log/slog"
	"net/http"

	"logistica/infrastructure/cache"
	sessioncookie "logistica/infrastructure/session"
	"logistica/infrastructure/sqlite"
)

// LogoutHandler removes session state and clears cookie.
func LogoutHandler(db *sqlite.DB, sessionCache *cache.UserSessionCache, secure bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessioncookie.CookieName)
		if err == nil && cookie.Value != "" {
			sessionCache.DeleteSessionBySessionToken(cookie.Value)
			if err := DeleteSessionByToken(r.Context(), db, cookie.Value); err != nil {
				slog.Error("logout: delete session failed", slog.Any("err", err))
			}
		}
		http.SetCookie(w, sessioncookie.Clear(secure))
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	}
}
