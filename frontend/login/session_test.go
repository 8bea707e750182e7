package login

import (
	"encoding/base64"
	"testing"
	"time"

	"logistica/infrastructure/rbac"
	sessioncookie "logistica/infrastructure/session"
	"logistica/models"
)

func TestNewSession(t *testing.T) {
	user := models.User{ID: 7, Username: "conferente", Role: rbac.RoleUser}
	before := time.Now()

	first := newSession(user, []string{rbac.ModuleConference, "unknown"}, time.Hour)
	second := newSession(user, nil, 0)

	if first.ID == "" || first.ID == second.ID {
		t.Fatalf("expected distinct tokens, got %q and %q", first.ID, second.ID)
	}
	raw, err := base64.RawURLEncoding.DecodeString(first.ID)
	if err != nil || len(raw) != sessionTokenBytes {
		t.Fatalf("token %q is not %d url-safe bytes: %v", first.ID, sessionTokenBytes, err)
	}
	if first.UserID != 7 || first.User.Username != "conferente" {
		t.Fatalf("unexpected owner %+v", first)
	}
	if !first.Permissions[rbac.ModuleConference] || first.Permissions[rbac.ModuleReports] || first.Permissions["unknown"] {
		t.Fatalf("unexpected permissions %v", first.Permissions)
	}
	if first.ExpiresAt.Before(before.Add(time.Hour)) || first.ExpiresAt.After(time.Now().Add(time.Hour)) {
		t.Fatalf("expiry %v not one hour out", first.ExpiresAt)
	}
	if got := second.ExpiresAt.Sub(before); got < sessioncookie.DefaultTTL-time.Minute {
		t.Fatalf("zero ttl should fall back to the default, got %v", got)
	}
	if ttlOrDefault(0) != sessioncookie.DefaultTTL || ttlOrDefault(time.Minute) != time.Minute {
		t.Fatalf("unexpected ttlOrDefault")
	}
}
