package login

import (
	"context"
	"io"
	"net/http"

	"github.com/a-h/templ"
	"github.com/uptrace/bun"

	"logistica/frontend/shared/html"
	"logistica/infrastructure/sqlite"
)

// GetLoginScreenHandler renders the login screen.
func GetLoginScreenHandler(w http.ResponseWriter, r *http.Request) {
	errorMessage := r.URL.Query().Get("error")
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := GetLoginScreen(errorMessage).Render(r.Context(), w); err != nil {
		http.Error(w, "falha ao renderizar login", http.StatusInternalServerError)
		return
	}
}

func GetLoginScreen(errorMessage string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return loginTmpl.Execute(w, struct{ Error string }{Error: errorMessage})
	})
}

func grantedModules(r *http.Request, db *sqlite.DB, userID int64) ([]string, error) {
	var granted []string
	err := db.WithReadTx(r.Context(), func(ctx context.Context, tx bun.Tx) error {
		var err error
		granted, err = GrantedModules(ctx, tx, userID)
		return err
	})
	return granted, err
}

var loginTmpl = html.MustParse("login", `<!doctype html>
<html lang="pt-BR">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Entrar · Logística</title>
<link rel="stylesheet" href="/assets/app.css">
</head>
<body class="login">
<main>
<section class="card narrow">
  <h1>Logística</h1>
  {{if .Error}}<p class="flash error">{{.Error}}</p>{{end}}
  <form method="post" action="/login">
    <label>Usuário <input name="username" autocomplete="username" required autofocus></label>
    <label>Senha <input name="password" type="password" autocomplete="current-password" required></label>
    <button type="submit">Entrar</button>
  </form>
</section>
</main>
{{csrfScript}}
</body>
</html>`)
