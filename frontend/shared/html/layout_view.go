package html

import (
	"bytes"
	"context"
	"html/template"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/a-h/templ"

	sessioncontext "logistica/frontend/shared/context"
	"logistica/frontend/shared/nav"
	"logistica/infrastructure/ingest"
)

// Meta carries the page chrome rendered around every body.
type Meta struct {
	Title  string
	Nav    nav.TopNavData
	Status string
	Error  string
}

// MetaFor builds the chrome for r: navigation from the request session and
// the flash pair from the query string.
func MetaFor(r *http.Request, title string) Meta {
	status, errMsg := FlashFromQuery(r)
	meta := Meta{Title: title, Status: status, Error: errMsg}
	if session, ok := sessioncontext.GetSessionFromContext(r.Context()); ok {
		meta.Nav = nav.BuildTopNavData(session, r.URL.Path)
	}
	return meta
}

// Funcs are available to every page template.
var Funcs = template.FuncMap{
	"decimal": ingest.FormatDecimalComma,
	"date": func(t time.Time) string {
		if t.IsZero() {
			return "-"
		}
		return t.Local().Format("02/01/2006 15:04")
	},
	"itoa":  strconv.Itoa,
	"lower": strings.ToLower,
	"add":   func(a, b int) int { return a + b },
	"sub":   func(a, b int) int { return a - b },
	"pct": func(part, total int) int {
		if total <= 0 {
			return 0
		}
		return part * 100 / total
	},
	"csrfScript": func() template.HTML { return template.HTML(CSRFFormScript()) },
}

// MustParse parses a page body template with the shared funcs, plus any
// page specific ones.
func MustParse(name, src string, extra ...template.FuncMap) *template.Template {
	t := template.New(name).Funcs(Funcs)
	for _, fm := range extra {
		t = t.Funcs(fm)
	}
	return template.Must(t.Parse(src))
}

var layoutTmpl = MustParse("layout", `<!doctype html>
<html lang="pt-BR">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Meta.Title}} · Logística</title>
<link rel="stylesheet" href="/assets/app.css">
</head>
<body>
{{if .Meta.Nav.Username}}
<header class="topnav">
  <span class="brand">Logística</span>
  <nav>{{range .Meta.Nav.Links}}<a href="{{.Href}}"{{if .Active}} class="active"{{end}}>{{.Label}}</a>{{end}}</nav>
  <form method="post" action="/logout" class="logout"><span>{{if .Meta.Nav.Name}}{{.Meta.Nav.Name}}{{else}}{{.Meta.Nav.Username}}{{end}}</span><button type="submit">Sair</button></form>
</header>
{{end}}
<main>
<h1>{{.Meta.Title}}</h1>
{{if .Meta.Status}}<p class="flash ok">{{.Meta.Status}}</p>{{end}}
{{if .Meta.Error}}<p class="flash error">{{.Meta.Error}}</p>{{end}}
{{.Body}}
</main>
{{csrfScript}}
</body>
</html>`)

// Page renders body with data inside the shared layout.
func Page(meta Meta, body *template.Template, data any) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		if err := body.Execute(&buf, data); err != nil {
			return err
		}
		return layoutTmpl.Execute(w, struct {
			Meta Meta
			Body template.HTML
		}{Meta: meta, Body: template.HTML(buf.String())})
	})
}
