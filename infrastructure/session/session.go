package session

import (
	"net/http"
	"time"
)

const CookieName = "logistica_session"

// DefaultTTL is used when no session lifetime is configured.
const DefaultTTL = 12 * time.Hour

// Cookie builds the session cookie. A negative maxAge clears it.
func Cookie(value string, maxAge int, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   secure,
	}
}

// Clear expires the session cookie on the client.
func Clear(secure bool) *http.Cookie {
	return Cookie("", -1, secure)
}

// Expiry returns the absolute expiry for a session issued now.
func Expiry(ttl time.Duration) time.Time {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return time.Now().Add(ttl)
}
