package auditlogs

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/a-h/templ"

	"logistica/frontend/shared/html"
	"logistica/infrastructure/sqlite"
)

func AuditLogsPageQueryHandler(db *sqlite.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		page, _ := strconv.Atoi(q.Get("page"))
		data, err := LoadPageData(r.Context(), db, Filter{
			Action:     q.Get("action"),
			EntityType: q.Get("entity"),
			Username:   q.Get("user"),
			Page:       page,
		})
		if err != nil {
			slog.Error("audit logs: load failed", slog.Any("err", err))
			http.Error(w, "falha ao carregar auditoria", http.StatusInternalServerError)
			return
		}
		data.Meta = html.MetaFor(r, "Auditoria")

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := AuditLogsPage(data).Render(r.Context(), w); err != nil {
			http.Error(w, "falha ao renderizar auditoria", http.StatusInternalServerError)
			return
		}
	}
}

func AuditLogsPage(data PageData) templ.Component {
	return html.Page(data.Meta, auditTmpl, data)
}

var auditTmpl = html.MustParse("audit", `
<section class="card">
  <form method="get" action="/app/admin/auditoria" class="form-grid">
    <label>Ação <input name="action" value="{{.Filter.Action}}" placeholder="ex.: schedule."></label>
    <label>Entidade <select name="entity"><option value="">Todas</option>{{range .EntityTypes}}<option value="{{.}}"{{if eq . $.Filter.EntityType}} selected{{end}}>{{.}}</option>{{end}}</select></label>
    <label>Usuário <input name="user" value="{{.Filter.Username}}"></label>
    <button type="submit">Filtrar</button>
  </form>
</section>

<section class="card">
  <p class="hint">{{.Total}} registros</p>
  <table>
    <thead><tr><th>Quando</th><th>Usuário</th><th>Ação</th><th>Entidade</th><th>ID</th><th>Antes</th><th>Depois</th></tr></thead>
    <tbody>
    {{range .Rows}}
      <tr><td>{{.CreatedAt}}</td><td>{{.Actor}}</td><td>{{.Action}}</td><td>{{.EntityType}}</td><td>{{.EntityID}}</td>
      <td><code class="json">{{.BeforeJSON}}</code></td><td><code class="json">{{.AfterJSON}}</code></td></tr>
    {{else}}
      <tr><td colspan="7">Nenhum registro.</td></tr>
    {{end}}
    </tbody>
  </table>
  {{if gt .Pages 1}}
  <nav class="pager">
    {{if gt .Filter.Page 1}}<a href="{{.PageURL (sub .Filter.Page 1)}}">Anterior</a>{{end}}
    <span>Página {{.Filter.Page}} de {{.Pages}}</span>
    {{if lt .Filter.Page .Pages}}<a href="{{.PageURL (add .Filter.Page 1)}}">Próxima</a>{{end}}
  </nav>
  {{end}}
</section>

<section class="card">
  <h2>Importações recentes</h2>
  <table>
    <thead><tr><th>Quando</th><th>Usuário</th><th>Tipo</th><th>Unidade</th><th>Arquivo</th><th>Registros</th></tr></thead>
    <tbody>
    {{range .Imports}}<tr><td>{{.CreatedAt}}</td><td>{{.Actor}}</td><td>{{.Kind}}</td><td>{{.Unit}}</td><td>{{.FileName}}</td><td>{{.Records}}</td></tr>
    {{else}}<tr><td colspan="6">Nenhuma importação.</td></tr>{{end}}
    </tbody>
  </table>
</section>

<section class="card">
  <h2>Exportações recentes</h2>
  <table>
    <thead><tr><th>Quando</th><th>Usuário</th><th>Relatório</th></tr></thead>
    <tbody>
    {{range .Exports}}<tr><td>{{.CreatedAt}}</td><td>{{.Actor}}</td><td>{{.Kind}}</td></tr>
    {{else}}<tr><td colspan="3">Nenhuma exportação.</td></tr>{{end}}
    </tbody>
  </table>
</section>
`)
