package nav

import (
	"testing"

	"logistica/infrastructure/rbac"
	"logistica/models"
)

func TestBuildTopNavDataFiltersByPermission(t *testing.T) {
	session := models.Session{
		User:        models.User{Username: "joao", Role: rbac.RoleUser},
		Permissions: rbac.EffectivePermissions(rbac.RoleUser, []string{rbac.ModuleSchedules}),
	}

	data := BuildTopNavData(session, "/app/agendamentos/novo")
	hrefs := map[string]bool{}
	for _, l := range data.Links {
		hrefs[l.Href] = l.Active
	}

	if _, ok := hrefs["/app/produtos"]; ok {
		t.Fatalf("products link must be hidden without permission")
	}
	if _, ok := hrefs["/app/admin/usuarios"]; ok {
		t.Fatalf("admin link must be hidden for users")
	}
	if active, ok := hrefs["/app/agendamentos"]; !ok || !active {
		t.Fatalf("expected active schedules link, got %+v", data.Links)
	}
	if _, ok := hrefs["/app/conta"]; !ok {
		t.Fatalf("account link must always be present")
	}
	if Home(session) != "/app/agendamentos" {
		t.Fatalf("unexpected home %q", Home(session))
	}
}

func TestBuildTopNavDataAdminSeesEverything(t *testing.T) {
	session := models.Session{User: models.User{Username: "admin", Role: rbac.RoleAdmin}}

	data := BuildTopNavData(session, "/app/produtos")
	if len(data.Links) != len(entries) {
		t.Fatalf("expected %d links, got %d", len(entries), len(data.Links))
	}
	if Home(session) != "/app/produtos" {
		t.Fatalf("unexpected admin home %q", Home(session))
	}
}
