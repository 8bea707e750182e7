package conference

import (
	"github.com/a-h/templ"

	"logistica/frontend/shared/html"
)

func ConferencePage(data PageData) templ.Component {
	return html.Page(data.Meta, conferenceTmpl, data)
}

func ItemsPage(data ItemsPageData) templ.Component {
	return html.Page(data.Meta, itemsTmpl, data)
}

var conferenceTmpl = html.MustParse("conference", `
<section class="card">
  <h2>Aguardando conferência</h2>
  <table>
    <thead><tr><th>Data</th><th>NFD</th><th>Cliente</th><th>Transportadora</th><th>Volume NF</th><th>Conferir</th></tr></thead>
    <tbody>
    {{range .Pending}}
      <tr{{if and $.Prompted (eq .ID $.Prompt.ScheduleID)}} class="highlight"{{end}}>
        <td>{{.Date}}</td><td>{{.NFD}}</td><td>{{.Client}}</td><td>{{.Carrier}}</td><td>{{.NFVolume}}</td>
        <td>
          <form method="post" action="/app/conferencia/{{.ID}}" class="inline">
            {{if and $.Prompted (eq .ID $.Prompt.ScheduleID)}}
              <input type="hidden" name="confirm" value="1">
              <input name="receivedVolume" type="number" min="0" value="{{$.Prompt.ReceivedVolume}}" required>
              <input name="productState" value="{{$.Prompt.ProductState}}" placeholder="Estado">
              <input name="notes" value="{{$.Prompt.Notes}}" placeholder="Observações">
              <button type="submit">Confirmar divergência</button>
            {{else}}
              <input name="receivedVolume" type="number" min="0" value="{{.NFVolume}}" required>
              <input name="productState" placeholder="Estado">
              <input name="notes" placeholder="Observações">
              <button type="submit">Conferir</button>
            {{end}}
          </form>
        </td>
      </tr>
    {{else}}
      <tr><td colspan="6">Nenhum agendamento pendente.</td></tr>
    {{end}}
    </tbody>
  </table>
</section>

<section class="card">
  <h2>Conferências recentes</h2>
  <table>
    <thead><tr><th>Quando</th><th>NFD</th><th>Cliente</th><th>Recebido</th><th>Estado</th><th>Observações</th><th>Por</th><th></th></tr></thead>
    <tbody>
    {{range .Recent}}
      <tr>
        <td>{{date .CreatedAt}}</td><td>{{.NFD}}</td><td>{{.Client}}</td><td>{{.ReceivedVolume}}</td>
        <td>{{.ProductState}}</td><td>{{.Notes}}</td><td>{{.ConferencedBy}}</td>
        <td class="actions"><a href="/app/conferencia/nfd/{{.NFD}}">Itens</a> <a href="/app/etiquetas/nfd/{{.NFD}}">Etiqueta</a></td>
      </tr>
    {{else}}
      <tr><td colspan="8">Nenhuma conferência registrada.</td></tr>
    {{end}}
    </tbody>
  </table>
</section>
`)

var itemsTmpl = html.MustParse("conferenceItems", `
<p>NFD <strong>{{.NFD}}</strong> · recebido {{.Received}} · armazenado {{.Stored}} · restante {{.Remaining}}</p>
<progress max="{{.Received}}" value="{{.Stored}}">{{pct .Stored .Received}}%</progress>

{{if gt .Remaining 0}}
<form method="post" action="/app/conferencia/nfd/{{.NFD}}/itens" class="card form-grid">
  <label>SKU <input name="sku" required></label>
  <label>Descrição <input name="description" placeholder="do cadastro, se vazio"></label>
  <label>Quantidade <input name="quantity" type="number" min="1" max="{{.Remaining}}" required></label>
  <label>Estado <input name="productState"></label>
  <button type="submit">Adicionar</button>
</form>
{{end}}

<table>
  <thead><tr><th>SKU</th><th>Descrição</th><th>Quantidade</th><th>Estado</th><th>Quando</th><th></th></tr></thead>
  <tbody>
  {{range .Items}}
    <tr>
      <td>{{.SKU}}</td><td>{{.Description}}</td><td>{{.Quantity}}</td><td>{{.ProductState}}</td><td>{{date .CreatedAt}}</td>
      <td class="actions"><form method="post" action="/app/conferencia/itens/{{.ID}}/excluir" data-confirm="Excluir o item {{.SKU}}?"><button type="submit">Excluir</button></form></td>
    </tr>
  {{else}}
    <tr><td colspan="6">Nenhum item registrado.</td></tr>
  {{end}}
  </tbody>
</table>
<p><a href="/app/conferencia">Voltar</a></p>
`)
