package rbac

import (
	"net/http"
	"testing"

	"logistica/infrastructure/cache"
	"logistica/models"
)

func TestMatchPathWildcardSegments(t *testing.T) {
	cases := []struct {
		pattern string
		path    string
		ok      bool
	}{
		{pattern: "/app/agendamentos/*/status", path: "/app/agendamentos/1700000000000-0/status", ok: true},
		{pattern: "/app/etiquetas/nfd/*", path: "/app/etiquetas/nfd/abc.pdf", ok: true},
		{pattern: "/app/produtos/*/*/editar", path: "/app/produtos/ITJ/X1/editar", ok: true},
		{pattern: "/app/admin/usuarios", path: "/app/admin/usuarios", ok: true},
		{pattern: "/app/admin/usuarios", path: "/app/admin/usuarios/joao", ok: false},
		{pattern: "/app/agendamentos/*/status", path: "/app/agendamentos/1/excluir", ok: false},
		{pattern: "/app/relatorios/*", path: "/app/relatorios/a/b", ok: true},
	}

	for _, tc := range cases {
		if got := matchPath(tc.pattern, tc.path); got != tc.ok {
			t.Fatalf("pattern=%s path=%s expected=%v got=%v", tc.pattern, tc.path, tc.ok, got)
		}
	}
}

func TestEffectivePermissionsAdminImpliesAll(t *testing.T) {
	perms := EffectivePermissions(RoleAdmin, nil)
	for _, m := range GrantableModules {
		if !perms[m.Code] {
			t.Fatalf("expected admin to have %s", m.Code)
		}
	}

	perms = EffectivePermissions(RoleUser, []string{ModuleProducts, "bogus", ModuleAdmin})
	if !perms[ModuleProducts] || perms[ModuleSchedules] {
		t.Fatalf("unexpected user permissions: %+v", perms)
	}
	if _, ok := perms["bogus"]; ok {
		t.Fatalf("unknown module must not be granted")
	}
	if perms[ModuleAdmin] {
		t.Fatalf("admin module must never be granted")
	}
}

func TestAllowed(t *testing.T) {
	r := New(cache.NewResourceCache())
	r.Add(ModuleProducts, "PRODUCTS_VIEW", http.MethodGet, "/app/produtos")
	r.Add(ModuleAdmin, "ADMIN_USERS_VIEW", http.MethodGet, "/app/admin/usuarios")
	r.Add(ModuleAccount, "ACCOUNT_VIEW", http.MethodGet, "/app/conta")

	user := models.Session{
		User:        models.User{Role: RoleUser},
		Permissions: EffectivePermissions(RoleUser, []string{ModuleProducts}),
	}
	admin := models.Session{User: models.User{Role: RoleAdmin}}

	cases := []struct {
		name    string
		session models.Session
		path    string
		method  string
		ok      bool
	}{
		{name: "granted module", session: user, path: "/app/produtos", method: http.MethodGet, ok: true},
		{name: "wrong method", session: user, path: "/app/produtos", method: http.MethodPost, ok: false},
		{name: "admin module", session: user, path: "/app/admin/usuarios", method: http.MethodGet, ok: false},
		{name: "account open", session: user, path: "/app/conta", method: http.MethodGet, ok: true},
		{name: "unregistered", session: user, path: "/app/desconhecido", method: http.MethodGet, ok: false},
		{name: "admin bypass", session: admin, path: "/app/admin/usuarios", method: http.MethodGet, ok: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := r.Allowed(tc.session, tc.path, tc.method); got != tc.ok {
				t.Fatalf("expected %v, got %v", tc.ok, got)
			}
		})
	}
}
