package adminusers

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	sessioncontext "logistica/frontend/shared/context"
	"logistica/frontend/shared/html"
	"logistica/infrastructure/rbac"
)

const basePath = "/app/admin/usuarios"

// UsersPageQueryHandler renders the admin users list page.
func UsersPageQueryHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := svc.List(r.Context())
		if err != nil {
			slog.Error("admin users: failed to load data", slog.Any("err", err))
			http.Error(w, "falha ao carregar usuários", http.StatusInternalServerError)
			return
		}
		self, _ := sessioncontext.Actor(r.Context())

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := UsersListPage(PageData{
			Meta:    html.MetaFor(r, "Usuários"),
			Users:   users,
			Modules: rbac.GrantableModules,
			Self:    self,
		}).Render(r.Context(), w); err != nil {
			http.Error(w, "falha ao renderizar página", http.StatusInternalServerError)
			return
		}
	}
}

func UserEditPageQueryHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := userID(r)
		if !ok {
			html.RedirectError(w, r, basePath, "usuário inválido")
			return
		}
		user, err := svc.Find(r.Context(), id)
		if err != nil {
			html.RedirectErr(w, r, basePath, err)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := UserEditPage(EditPageData{
			Meta:    html.MetaFor(r, "Editar usuário"),
			User:    user,
			Modules: rbac.GrantableModules,
		}).Render(r.Context(), w); err != nil {
			http.Error(w, "falha ao renderizar página", http.StatusInternalServerError)
			return
		}
	}
}

func CreateUserCommandHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			html.RedirectError(w, r, basePath, "formulário inválido")
			return
		}
		actorID, _ := sessioncontext.Actor(r.Context())
		user, err := svc.CreateUser(r.Context(), actorID, inputFromForm(r))
		if err != nil {
			html.RedirectErr(w, r, basePath, err)
			return
		}
		html.RedirectStatus(w, r, basePath, "Usuário "+user.Username+" criado")
	}
}

func UpdateUserCommandHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := userID(r)
		if !ok {
			html.RedirectError(w, r, basePath, "usuário inválido")
			return
		}
		if err := r.ParseForm(); err != nil {
			html.RedirectError(w, r, basePath, "formulário inválido")
			return
		}
		actorID, _ := sessioncontext.Actor(r.Context())
		if err := svc.UpdateUser(r.Context(), actorID, id, inputFromForm(r)); err != nil {
			html.RedirectErr(w, r, basePath+"/"+strconv.FormatInt(id, 10), err)
			return
		}
		html.RedirectStatus(w, r, basePath, "Usuário atualizado")
	}
}

func DeleteUserCommandHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := userID(r)
		if !ok {
			html.RedirectError(w, r, basePath, "usuário inválido")
			return
		}
		actorID, _ := sessioncontext.Actor(r.Context())
		if err := svc.DeleteUser(r.Context(), actorID, id); err != nil {
			html.RedirectErr(w, r, basePath, err)
			return
		}
		html.RedirectStatus(w, r, basePath, "Usuário removido")
	}
}

func inputFromForm(r *http.Request) Input {
	return Input{
		Username: r.PostFormValue("username"),
		Name:     r.PostFormValue("name"),
		Email:    r.PostFormValue("email"),
		Role:     r.PostFormValue("role"),
		Password: r.PostFormValue("password"),
		Modules:  r.PostForm["modules"],
	}
}

func userID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(chi.URLParam(r, "id")), 10, 64)
	return id, err == nil && id > 0
}
