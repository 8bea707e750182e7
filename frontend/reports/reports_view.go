package reports

import (
	"github.com/a-h/templ"

	"logistica/frontend/shared/html"
)

type PageData struct {
	Meta     html.Meta
	Units    []string
	Statuses []string
}

func ReportsPage(data PageData) templ.Component {
	return html.Page(data.Meta, reportsTmpl, data)
}

var reportsTmpl = html.MustParse("reports", `
<section class="card">
  <h2>Produtos</h2>
  <p class="hint">Mesmo layout aceito pela importação (separador ";" e decimais com vírgula).</p>
  <p>
    <a class="button" href="/app/relatorios/produtos.csv">Todos</a>
    {{range .Units}}<a class="button" href="/app/relatorios/produtos.csv?unit={{.}}">{{.}}</a> {{end}}
  </p>
</section>

<section class="card">
  <h2>Agendamentos</h2>
  <form method="get" action="/app/relatorios/agendamentos.csv" class="form-grid">
    <label>Busca <input name="q"></label>
    <label>Status <select name="status"><option value="">Todos</option>{{range .Statuses}}<option value="{{.}}">{{.}}</option>{{end}}</select></label>
    <label>Data <input name="date" placeholder="dd/mm/aaaa"></label>
    <button type="submit">CSV</button>
    <button type="submit" formaction="/app/relatorios/agendamentos.xlsx">Excel</button>
  </form>
</section>

<section class="card">
  <h2>Rua 08</h2>
  <p><a class="button" href="/app/relatorios/rua08.csv">Alocações (CSV)</a></p>
</section>
`)
