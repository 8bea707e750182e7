package login

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"logistica/infrastructure/rbac"
	sessioncookie "logistica/infrastructure/session"
	"logistica/models"
)

// sessionTokenBytes is the entropy behind every session cookie value.
const sessionTokenBytes = 32

// newSession issues a session for user with the modules granted to it.
// Permissions are resolved once here and travel with the session.
func newSession(user models.User, granted []string, ttl time.Duration) models.Session {
	return models.Session{
		ID:          sessionToken(),
		UserID:      user.ID,
		User:        user,
		UserRoles:   []string{user.Role},
		Permissions: rbac.EffectivePermissions(user.Role, granted),
		ExpiresAt:   sessioncookie.Expiry(ttl),
	}
}

// sessionToken is URL-safe so it can be stored in the cookie as is.
func sessionToken() string {
	buf := make([]byte, sessionTokenBytes)
	_, _ = rand.Read(buf)
	return base64.RawURLEncoding.EncodeToString(buf)
}

func ttlOrDefault(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return sessioncookie.DefaultTTL
	}
	return ttl
}
