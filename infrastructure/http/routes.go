package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	adminusers "logistica/frontend/adminUsers"
	"logistica/frontend/allocation"
	auditlogs "logistica/frontend/auditLogs"
	"logistica/frontend/conference"
	"logistica/frontend/help"
	"logistica/frontend/labels"
	"logistica/frontend/login"
	"logistica/frontend/products"
	"logistica/frontend/reports"
	"logistica/frontend/schedules"
	"logistica/frontend/settings"
	"logistica/infrastructure/rbac"
)

// RegisterLoginRoutes registers login/logout routes.
func (s *Server) RegisterLoginRoutes() {
	s.router.Get("/login", login.GetLoginScreenHandler)
	s.router.Post("/login", login.CreateLoginHandler(s.DB, s.SessionCache, s.UserCache, login.Options{
		TTL:    s.Config.Session.TTL,
		Secure: s.secure(),
	}))
	s.router.Post("/logout", login.LogoutHandler(s.DB, s.SessionCache, s.secure()))
}

func (s *Server) RegisterProductRoutes(r chi.Router) {
	svc := s.Services.Products

	s.Rbac.Add(rbac.ModuleProducts, "PRODUCTS_LIST_VIEW", http.MethodGet, "/app/produtos")
	r.Get("/produtos", products.ProductsPageQueryHandler(svc))

	s.Rbac.Add(rbac.ModuleUploads, "PRODUCTS_IMPORT", http.MethodPost, "/app/produtos/importar")
	r.Post("/produtos/importar", products.ProductsImportCommandHandler(svc, s.Config.Server.UploadMaxBytes))

	s.Rbac.Add(rbac.ModuleProducts, "PRODUCTS_NEW_VIEW", http.MethodGet, "/app/produtos/novo")
	r.Get("/produtos/novo", products.ProductNewPageQueryHandler())

	s.Rbac.Add(rbac.ModuleProducts, "PRODUCTS_CREATE", http.MethodPost, "/app/produtos")
	r.Post("/produtos", products.ProductCreateCommandHandler(svc))

	s.Rbac.Add(rbac.ModuleProducts, "PRODUCTS_EDIT_VIEW", http.MethodGet, "/app/produtos/*/*")
	r.Get("/produtos/{unit}/{sku}", products.ProductEditPageQueryHandler(svc))

	s.Rbac.Add(rbac.ModuleProducts, "PRODUCTS_EDIT", http.MethodPost, "/app/produtos/*/*")
	r.Post("/produtos/{unit}/{sku}", products.ProductUpdateCommandHandler(svc))

	s.Rbac.Add(rbac.ModuleProducts, "PRODUCTS_DELETE", http.MethodPost, "/app/produtos/*/*/excluir")
	r.Post("/produtos/{unit}/{sku}/excluir", products.ProductDeleteCommandHandler(svc))
}

func (s *Server) RegisterScheduleRoutes(r chi.Router) {
	svc := s.Services.Schedules

	s.Rbac.Add(rbac.ModuleSchedules, "SCHEDULES_LIST_VIEW", http.MethodGet, "/app/agendamentos")
	r.Get("/agendamentos", schedules.SchedulesPageQueryHandler(svc))

	s.Rbac.Add(rbac.ModuleSchedules, "SCHEDULES_CREATE", http.MethodPost, "/app/agendamentos")
	r.Post("/agendamentos", schedules.ScheduleCreateCommandHandler(svc))

	s.Rbac.Add(rbac.ModuleUploads, "SCHEDULES_IMPORT", http.MethodPost, "/app/agendamentos/importar")
	r.Post("/agendamentos/importar", schedules.SchedulesImportCommandHandler(svc, s.Config.Server.UploadMaxBytes))

	s.Rbac.Add(rbac.ModuleSchedules, "SCHEDULES_STATUS_EDIT", http.MethodPost, "/app/agendamentos/*/status")
	r.Post("/agendamentos/{id}/status", schedules.ScheduleStatusCommandHandler(svc))

	s.Rbac.Add(rbac.ModuleSchedules, "SCHEDULES_DELETE", http.MethodPost, "/app/agendamentos/*/excluir")
	r.Post("/agendamentos/{id}/excluir", schedules.ScheduleDeleteCommandHandler(svc))
}

func (s *Server) RegisterConferenceRoutes(r chi.Router) {
	svc := s.Services.Conference

	s.Rbac.Add(rbac.ModuleConference, "CONFERENCE_VIEW", http.MethodGet, "/app/conferencia")
	r.Get("/conferencia", conference.ConferencePageQueryHandler(svc))

	s.Rbac.Add(rbac.ModuleConference, "CONFERENCE_RECEIVE", http.MethodPost, "/app/conferencia/*")
	r.Post("/conferencia/{id}", conference.ConferenceCommandHandler(svc))

	s.Rbac.Add(rbac.ModuleConference, "CONFERENCE_ITEMS_VIEW", http.MethodGet, "/app/conferencia/nfd/*")
	r.Get("/conferencia/nfd/{nfd}", conference.ItemsPageQueryHandler(svc))

	s.Rbac.Add(rbac.ModuleConference, "CONFERENCE_ITEMS_CREATE", http.MethodPost, "/app/conferencia/nfd/*/itens")
	r.Post("/conferencia/nfd/{nfd}/itens", conference.AddItemCommandHandler(svc))

	s.Rbac.Add(rbac.ModuleConference, "CONFERENCE_ITEMS_DELETE", http.MethodPost, "/app/conferencia/itens/*/excluir")
	r.Post("/conferencia/itens/{id}/excluir", conference.DeleteItemCommandHandler(svc))

	s.Rbac.Add(rbac.ModuleConference, "LABEL_NFD_VIEW", http.MethodGet, "/app/etiquetas/nfd/*")
	r.Get("/etiquetas/nfd/{nfd}", labels.NFDLabelQueryHandler(s.Services.Labels))
}

func (s *Server) RegisterAllocationRoutes(r chi.Router) {
	svc := s.Services.Allocation

	s.Rbac.Add(rbac.ModuleAllocation, "RUA08_VIEW", http.MethodGet, "/app/rua08")
	r.Get("/rua08", allocation.Rua08PageQueryHandler(svc))

	s.Rbac.Add(rbac.ModuleAllocation, "RUA08_ALLOCATE", http.MethodPost, "/app/rua08/alocar")
	r.Post("/rua08/alocar", allocation.AllocateCommandHandler(svc))

	s.Rbac.Add(rbac.ModuleAllocation, "RUA08_RELEASE", http.MethodPost, "/app/rua08/alocacoes/*/liberar")
	r.Post("/rua08/alocacoes/{id}/liberar", allocation.ReleaseCommandHandler(svc))

	s.Rbac.Add(rbac.ModuleAllocation, "LABEL_POSITIONS_VIEW", http.MethodGet, "/app/etiquetas/rua08")
	r.Get("/etiquetas/rua08", labels.PositionLabelQueryHandler(s.Services.Labels))

	s.Rbac.Add(rbac.ModuleAllocation, "LABEL_POSITION_VIEW", http.MethodGet, "/app/etiquetas/rua08/*/*")
	r.Get("/etiquetas/rua08/{building}/{level}", labels.PositionLabelQueryHandler(s.Services.Labels))
}

func (s *Server) RegisterReportRoutes(r chi.Router) {
	h := reports.Handlers{
		Products:    s.Services.Products,
		Schedules:   s.Services.Schedules,
		Allocations: s.Services.Allocation,
		Audit:       s.Audit,
	}

	s.Rbac.Add(rbac.ModuleReports, "REPORTS_VIEW", http.MethodGet, "/app/relatorios")
	r.Get("/relatorios", h.ReportsPageQueryHandler())

	s.Rbac.Add(rbac.ModuleReports, "REPORT_PRODUCTS", http.MethodGet, "/app/relatorios/produtos.csv")
	r.Get("/relatorios/produtos.csv", h.ProductsCSVHandler())

	s.Rbac.Add(rbac.ModuleReports, "REPORT_SCHEDULES_CSV", http.MethodGet, "/app/relatorios/agendamentos.csv")
	r.Get("/relatorios/agendamentos.csv", h.SchedulesCSVHandler())

	s.Rbac.Add(rbac.ModuleReports, "REPORT_SCHEDULES_XLSX", http.MethodGet, "/app/relatorios/agendamentos.xlsx")
	r.Get("/relatorios/agendamentos.xlsx", h.SchedulesXLSXHandler())

	s.Rbac.Add(rbac.ModuleReports, "REPORT_ALLOCATIONS", http.MethodGet, "/app/relatorios/rua08.csv")
	r.Get("/relatorios/rua08.csv", h.AllocationsCSVHandler())
}

// RegisterAdminRoutes registers admin-only routes.
func (s *Server) RegisterAdminRoutes(r chi.Router) {
	svc := s.Services.Users

	s.Rbac.Add(rbac.ModuleAdmin, "ADMIN_USERS_LIST_VIEW", http.MethodGet, "/app/admin/usuarios")
	r.Get("/admin/usuarios", adminusers.UsersPageQueryHandler(svc))

	s.Rbac.Add(rbac.ModuleAdmin, "ADMIN_USERS_CREATE", http.MethodPost, "/app/admin/usuarios")
	r.Post("/admin/usuarios", adminusers.CreateUserCommandHandler(svc))

	s.Rbac.Add(rbac.ModuleAdmin, "ADMIN_USERS_EDIT_VIEW", http.MethodGet, "/app/admin/usuarios/*")
	r.Get("/admin/usuarios/{id}", adminusers.UserEditPageQueryHandler(svc))

	s.Rbac.Add(rbac.ModuleAdmin, "ADMIN_USERS_EDIT", http.MethodPost, "/app/admin/usuarios/*")
	r.Post("/admin/usuarios/{id}", adminusers.UpdateUserCommandHandler(svc))

	s.Rbac.Add(rbac.ModuleAdmin, "ADMIN_USERS_DELETE", http.MethodPost, "/app/admin/usuarios/*/excluir")
	r.Post("/admin/usuarios/{id}/excluir", adminusers.DeleteUserCommandHandler(svc))

	s.Rbac.Add(rbac.ModuleAdmin, "ADMIN_AUDIT_VIEW", http.MethodGet, "/app/admin/auditoria")
	r.Get("/admin/auditoria", auditlogs.AuditLogsPageQueryHandler(s.DB))
}

// RegisterAccountRoutes registers the pages every signed-in user may open.
func (s *Server) RegisterAccountRoutes(r chi.Router) {
	s.Rbac.Add(rbac.ModuleAccount, "ACCOUNT_VIEW", http.MethodGet, "/app/conta")
	r.Get("/conta", settings.AccountPageQueryHandler())

	s.Rbac.Add(rbac.ModuleAccount, "ACCOUNT_PROFILE_EDIT", http.MethodPost, "/app/conta")
	r.Post("/conta", settings.ProfileUpdateHandler(s.DB, s.Audit, s.SessionCache))

	s.Rbac.Add(rbac.ModuleAccount, "ACCOUNT_PASSWORD_EDIT", http.MethodPost, "/app/conta/senha")
	r.Post("/conta/senha", settings.PasswordUpdateHandler(s.DB, s.Audit, s.SessionCache))

	s.Rbac.Add(rbac.ModuleAccount, "HELP_VIEW", http.MethodGet, "/app/ajuda")
	r.Get("/ajuda", help.HelpPageQueryHandler())
}
