package adminusers

import (
	"time"

	"logistica/frontend/shared/html"
	"logistica/infrastructure/rbac"
)

type UserView struct {
	ID          int64
	Username    string
	Name        string
	Email       string
	Role        string
	Permissions map[string]bool
	Protected   bool
	CreatedAt   time.Time
}

func (u UserView) IsAdmin() bool {
	return u.Role == rbac.RoleAdmin
}

type PageData struct {
	Meta    html.Meta
	Users   []UserView
	Modules []rbac.Module
	Self    int64
}

type EditPageData struct {
	Meta    html.Meta
	User    UserView
	Modules []rbac.Module
}
