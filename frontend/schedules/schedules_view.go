package schedules

import (
	"github.com/a-h/templ"

	"logistica/frontend/shared/html"
)

func SchedulesPage(data PageData) templ.Component {
	return html.Page(data.Meta, schedulesTmpl, data)
}

var schedulesTmpl = html.MustParse("schedules", `
{{if .CanImport}}
<section class="card">
  <h2>Importar agendamentos</h2>
  <p class="hint">As linhas do arquivo são adicionadas aos agendamentos existentes.</p>
  <form method="post" action="/app/agendamentos/importar" enctype="multipart/form-data">
    <input type="file" name="fileAgendamento" accept=".csv,text/csv" required>
    <button type="submit">Importar</button>
  </form>
</section>
{{end}}

<section class="card">
  <h2>Novo agendamento</h2>
  {{if .Confirm}}<p class="flash warn">Uma ou mais NFDs já estão agendadas. Envie novamente para confirmar.</p>{{end}}
  <form method="post" action="/app/agendamentos" class="form-grid">
    {{if .Confirm}}<input type="hidden" name="confirm" value="1">{{end}}
    <label>Data <input name="date" value="{{.Draft.Date}}" placeholder="dd/mm/aaaa" required></label>
    <label>Cliente <input name="client" value="{{.Draft.Client}}" required></label>
    <label>Transportadora <input name="carrier" value="{{.Draft.Carrier}}"></label>
    <label>NFDs (uma por linha ou separadas por vírgula) <textarea name="nfds" rows="3" required>{{.Draft.NFDs}}</textarea></label>
    <label>Remessa saída <input name="outboundShipment" value="{{.Draft.OutboundShipment}}"></label>
    <label>Nota venda <input name="salesNote" value="{{.Draft.SalesNote}}"></label>
    <label>BDV <input name="bdv" value="{{.Draft.BDV}}"></label>
    <label>OV <input name="ov" value="{{.Draft.OV}}"></label>
    <label>Motivo <input name="returnReason" value="{{.Draft.ReturnReason}}"></label>
    <label>Estado do produto <input name="productState" value="{{.Draft.ProductState}}"></label>
    <label>Volume NF <input name="nfVolume" type="number" min="0" value="{{.Draft.NFVolume}}"></label>
    <label>Destino <input name="storageDest" value="{{.Draft.StorageDest}}"></label>
    <button type="submit">{{if .Confirm}}Confirmar agendamento{{else}}Agendar{{end}}</button>
  </form>
</section>

<form method="get" action="/app/agendamentos" class="filters">
  <input type="search" name="q" value="{{.Filter.Query}}" placeholder="NFD, cliente, transportadora ou BDV">
  <input name="date" value="{{.Filter.Date}}" placeholder="dd/mm/aaaa">
  <select name="status"><option value="">Status</option>{{range .Statuses}}<option{{if eq . $.Filter.Status}} selected{{end}}>{{.}}</option>{{end}}</select>
  <button type="submit">Filtrar</button>
</form>

<table>
  <thead><tr><th>Data</th><th>NFD</th><th>Cliente</th><th>Transportadora</th><th>BDV</th><th>Motivo</th><th>Volume NF</th><th>Recebido</th><th>Status / destino</th><th></th></tr></thead>
  <tbody>
  {{range .Schedules}}
    <tr>
      <td>{{.Date}}</td>
      <td>{{.NFD}}{{if index $.Duplicates .NFD}} <span class="badge warn" title="NFD repetida">duplicada</span>{{end}}</td>
      <td>{{.Client}}</td><td>{{.Carrier}}</td><td>{{.BDV}}</td><td>{{.ReturnReason}}</td>
      <td>{{.NFVolume}}</td>
      <td>{{if .Received}}Sim{{if .ReceivedState}} ({{.ReceivedState}}){{end}}{{else}}Não{{end}}</td>
      <td>
        <form method="post" action="/app/agendamentos/{{.ID}}/status" class="inline">
          <select name="status">{{$cur := .Status}}{{range $.Statuses}}<option{{if eq . $cur}} selected{{end}}>{{.}}</option>{{end}}</select>
          <input name="storageDest" value="{{.StorageDest}}" placeholder="Destino">
          <button type="submit">Salvar</button>
        </form>
      </td>
      <td class="actions">
        <form method="post" action="/app/agendamentos/{{.ID}}/excluir" data-confirm="Excluir o agendamento da NFD {{.NFD}}?"><button type="submit">Excluir</button></form>
      </td>
    </tr>
  {{else}}
    <tr><td colspan="10">Nenhum agendamento.</td></tr>
  {{end}}
  </tbody>
</table>
`)
