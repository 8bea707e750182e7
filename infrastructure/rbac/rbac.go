package rbac

import (
	"strings"

	"logistica/infrastructure/cache"
	"logistica/models"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Modules gate groups of routes. A non-admin user reaches a route only when
// the module that registered it is granted. ModuleAdmin is never granted,
// only implied by RoleAdmin. ModuleAccount is open to every signed-in user.
const (
	ModuleProducts   = "products"
	ModuleSchedules  = "schedules"
	ModuleConference = "conference"
	ModuleAllocation = "allocation"
	ModuleReports    = "reports"
	ModuleUploads    = "uploads"
	ModuleAdmin      = "admin"
	ModuleAccount    = "account"
)

// Module describes a grantable module for forms and navigation.
type Module struct {
	Code  string
	Label string
}

// GrantableModules are the per-user permission flags, in display order.
var GrantableModules = []Module{
	{Code: ModuleProducts, Label: "Produtos"},
	{Code: ModuleSchedules, Label: "Agendamentos"},
	{Code: ModuleConference, Label: "Conferência"},
	{Code: ModuleAllocation, Label: "Rua 08"},
	{Code: ModuleReports, Label: "Relatórios"},
	{Code: ModuleUploads, Label: "Uploads"},
}

func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleUser
}

func IsGrantable(module string) bool {
	for _, m := range GrantableModules {
		if m.Code == module {
			return true
		}
	}
	return false
}

// EffectivePermissions expands granted modules into the full flag map. Admin
// implies every flag.
func EffectivePermissions(role string, granted []string) map[string]bool {
	perms := make(map[string]bool, len(GrantableModules))
	for _, m := range GrantableModules {
		perms[m.Code] = role == RoleAdmin
	}
	for _, g := range granted {
		if IsGrantable(g) {
			perms[g] = true
		}
	}
	return perms
}

// Rbac registers route resources and answers access checks.
type Rbac struct {
	cache *cache.ResourceCache
}

func New(c *cache.ResourceCache) *Rbac {
	return &Rbac{cache: c}
}

func (r *Rbac) Add(module, code, method, path string) {
	if r == nil || r.cache == nil {
		return
	}
	r.cache.Add(cache.Resource{
		Code:   code,
		Module: module,
		Method: strings.ToUpper(method),
		Path:   path,
	})
}

// Allowed reports whether the session may call method on urlPath. Routes
// that were never registered are denied to everyone but admins.
func (r *Rbac) Allowed(session models.Session, urlPath, method string) bool {
	if session.User.Role == RoleAdmin {
		return true
	}
	if r == nil || r.cache == nil {
		return false
	}
	for _, res := range MatchResources(r.cache.All(), urlPath, method) {
		switch res.Module {
		case ModuleAccount:
			return true
		case ModuleAdmin:
			continue
		default:
			if session.Permissions[res.Module] {
				return true
			}
		}
	}
	return false
}

// MatchResources returns every resource whose method and path pattern match.
func MatchResources(resources []cache.Resource, urlPath, method string) []cache.Resource {
	method = strings.ToUpper(method)
	out := make([]cache.Resource, 0, 1)
	for _, res := range resources {
		if res.Method == method && matchPath(res.Path, urlPath) {
			out = append(out, res)
		}
	}
	return out
}

// matchPath supports "*" as a single-segment wildcard and a trailing "*" as
// a prefix wildcard.
func matchPath(pattern, path string) bool {
	if pattern == path {
		return true
	}

	patternSeg := strings.Split(strings.Trim(pattern, "/"), "/")
	pathSeg := strings.Split(strings.Trim(path, "/"), "/")

	if len(patternSeg) == len(pathSeg) {
		for i := range patternSeg {
			if patternSeg[i] != "*" && patternSeg[i] != pathSeg[i] {
				return false
			}
		}
		return true
	}

	last := len(patternSeg) - 1
	if last >= 0 && patternSeg[last] == "*" && len(pathSeg) > last {
		for i := 0; i < last; i++ {
			if patternSeg[i] != "*" && patternSeg[i] != pathSeg[i] {
				return false
			}
		}
		return true
	}
	return false
}
