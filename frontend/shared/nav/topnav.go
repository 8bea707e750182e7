package nav

import (
	"strings"

	"logistica/infrastructure/rbac"
	"logistica/models"
)

// Link is one top navigation entry.
type Link struct {
	Label  string
	Href   string
	Active bool
}

// TopNavData is shared with page renderers.
type TopNavData struct {
	Username string
	Name     string
	IsAdmin  bool
	Links    []Link
}

type entry struct {
	module string
	label  string
	href   string
}

var entries = []entry{
	{module: rbac.ModuleProducts, label: "Produtos", href: "/app/produtos"},
	{module: rbac.ModuleSchedules, label: "Agendamentos", href: "/app/agendamentos"},
	{module: rbac.ModuleConference, label: "Conferência", href: "/app/conferencia"},
	{module: rbac.ModuleAllocation, label: "Rua 08", href: "/app/rua08"},
	{module: rbac.ModuleReports, label: "Relatórios", href: "/app/relatorios"},
	{module: rbac.ModuleAdmin, label: "Usuários", href: "/app/admin/usuarios"},
	{module: rbac.ModuleAdmin, label: "Auditoria", href: "/app/admin/auditoria"},
	{module: rbac.ModuleAccount, label: "Minha conta", href: "/app/conta"},
	{module: rbac.ModuleAccount, label: "Ajuda", href: "/app/ajuda"},
}

// BuildTopNavData lists the links the session may open and marks the one
// owning currentPath.
func BuildTopNavData(session models.Session, currentPath string) TopNavData {
	isAdmin := session.User.Role == rbac.RoleAdmin
	data := TopNavData{
		Username: session.User.Username,
		Name:     session.User.Name,
		IsAdmin:  isAdmin,
	}
	for _, e := range entries {
		switch e.module {
		case rbac.ModuleAccount:
		case rbac.ModuleAdmin:
			if !isAdmin {
				continue
			}
		default:
			if !isAdmin && !session.Permissions[e.module] {
				continue
			}
		}
		data.Links = append(data.Links, Link{
			Label:  e.label,
			Href:   e.href,
			Active: currentPath == e.href || strings.HasPrefix(currentPath, e.href+"/"),
		})
	}
	return data
}

// Home is where a signed-in user lands: the first module they can open.
func Home(session models.Session) string {
	links := BuildTopNavData(session, "").Links
	if len(links) == 0 {
		return "/app/conta"
	}
	return links[0].Href
}
