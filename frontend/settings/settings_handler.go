package settings

import (
	"net/http"

	"github.com/a-h/templ"

	sessioncontext "logistica/frontend/shared/context"
	"logistica/frontend/shared/html"
	"logistica/infrastructure/audit"
	"logistica/infrastructure/cache"
	"logistica/infrastructure/sqlite"
)

const basePath = "/app/conta"

type PageData struct {
	Meta     html.Meta
	Username string
	Name     string
	Email    string
	Role     string
}

func AccountPage(data PageData) templ.Component {
	return html.Page(data.Meta, accountTmpl, data)
}

func AccountPageQueryHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, _ := sessioncontext.GetSessionFromContext(r.Context())
		data := PageData{
			Meta:     html.MetaFor(r, "Minha conta"),
			Username: session.User.Username,
			Name:     session.User.Name,
			Email:    session.User.Email,
			Role:     session.User.Role,
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := AccountPage(data).Render(r.Context(), w); err != nil {
			http.Error(w, "falha ao renderizar página", http.StatusInternalServerError)
			return
		}
	}
}

// ProfileUpdateHandler saves name and e-mail. Cached sessions of the user
// are dropped so the next request reloads the profile.
func ProfileUpdateHandler(db *sqlite.DB, auditSvc *audit.Service, sessions *cache.UserSessionCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, _ := sessioncontext.GetSessionFromContext(r.Context())
		if err := r.ParseForm(); err != nil {
			html.RedirectError(w, r, basePath, "formulário inválido")
			return
		}
		if err := SaveProfile(r.Context(), db, auditSvc, session.UserID, r.PostFormValue("name"), r.PostFormValue("email")); err != nil {
			html.RedirectErr(w, r, basePath, err)
			return
		}
		sessions.DeleteSessionsByUserID(session.UserID)
		html.RedirectStatus(w, r, basePath, "Dados atualizados")
	}
}

func PasswordUpdateHandler(db *sqlite.DB, auditSvc *audit.Service, sessions *cache.UserSessionCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, _ := sessioncontext.GetSessionFromContext(r.Context())
		if err := r.ParseForm(); err != nil {
			html.RedirectError(w, r, basePath, "formulário inválido")
			return
		}
		err := ChangePassword(r.Context(), db, auditSvc, session.UserID, session.ID,
			r.PostFormValue("current_password"),
			r.PostFormValue("new_password"),
			r.PostFormValue("confirm_password"),
		)
		if err != nil {
			html.RedirectErr(w, r, basePath, err)
			return
		}
		sessions.DeleteSessionsByUserID(session.UserID)
		html.RedirectStatus(w, r, basePath, "Senha alterada")
	}
}

var accountTmpl = html.MustParse("account", `
<section class="card">
  <h2>Dados</h2>
  <form method="post" action="/app/conta" class="form-grid">
    <label>Usuário <input value="{{.Username}}" disabled></label>
    <label>Nome <input name="name" value="{{.Name}}"></label>
    <label>E-mail <input name="email" type="email" value="{{.Email}}"></label>
    <button type="submit">Salvar</button>
  </form>
</section>

<section class="card">
  <h2>Alterar senha</h2>
  <form method="post" action="/app/conta/senha" class="form-grid">
    <label>Senha atual <input name="current_password" type="password" autocomplete="current-password" required></label>
    <label>Nova senha <input name="new_password" type="password" autocomplete="new-password" required></label>
    <label>Confirmação <input name="confirm_password" type="password" autocomplete="new-password" required></label>
    <button type="submit">Alterar</button>
  </form>
  <p class="hint">Mínimo de 8 caracteres, com letras e números.</p>
</section>
`)
