package allocation

import (
	"html/template"

	"github.com/a-h/templ"

	"logistica/frontend/shared/html"
	"logistica/models"
)

type PageData struct {
	Meta      html.Meta
	Rows      [][]Cell
	Buildings []int
	Levels    []int
	Pending   []Pending
	Entries   []models.AllocationEntry
	Selected  string
}

func Rua08Page(data PageData) templ.Component {
	return html.Page(data.Meta, rua08Tmpl, data)
}

var rua08Tmpl = html.MustParse("rua08", `
<section class="card">
  <h2>Alocar</h2>
  {{if .Pending}}
  <form method="post" action="/app/rua08/alocar" class="form-grid">
    <label>NFD <select name="nfd" required>{{range .Pending}}<option value="{{.NFD}}"{{if eq .NFD $.Selected}} selected{{end}}>{{.NFD}} · {{.Client}} · restante {{.Remaining}}</option>{{end}}</select></label>
    <label>SKU <input name="sku"></label>
    <label>Prédio <select name="building">{{range .Buildings}}<option value="{{.}}">{{.}}</option>{{end}}</select></label>
    <label>Nível <select name="level">{{range .Levels}}<option value="{{.}}">{{.}}</option>{{end}}</select></label>
    <label>Volume <input name="volume" type="number" min="1" required></label>
    <button type="submit">Alocar</button>
  </form>
  {{else}}
  <p class="hint">Nenhuma NFD conferida aguardando alocação.</p>
  {{end}}
</section>

<section class="card">
  <h2>Ocupação</h2>
  <table class="grid">
    <tbody>
    {{range .Rows}}
      <tr>
      {{range .}}
        <td class="{{if .Occupied}}occupied{{else}}free{{end}}" title="{{.Code}}">
          <strong>{{.Code}}</strong>
          {{if .Occupied}}<br>{{.Volume}} vol.{{range .Entries}}<br><small>NFD {{.NFD}}{{if .SKU}} · {{.SKU}}{{end}}</small>{{end}}{{end}}
          <br><a href="/app/etiquetas/rua08/{{.Building}}/{{.Level}}">etiqueta</a>
        </td>
      {{end}}
      </tr>
    {{end}}
    </tbody>
  </table>
</section>

<section class="card">
  <h2>Alocações</h2>
  <table>
    <thead><tr><th>Quando</th><th>NFD</th><th>SKU</th><th>Posição</th><th>Volume</th><th>Por</th><th></th></tr></thead>
    <tbody>
    {{range .Entries}}
      <tr>
        <td>{{date .CreatedAt}}</td><td>{{.NFD}}</td><td>{{.SKU}}</td><td>{{position .Building .Level}}</td><td>{{.AllocatedVolume}}</td><td>{{.AllocatedBy}}</td>
        <td class="actions"><form method="post" action="/app/rua08/alocacoes/{{.ID}}/liberar" data-confirm="Liberar esta posição?"><button type="submit">Liberar</button></form></td>
      </tr>
    {{else}}
      <tr><td colspan="7">Nenhuma alocação.</td></tr>
    {{end}}
    </tbody>
  </table>
</section>
`, template.FuncMap{"position": Code})
