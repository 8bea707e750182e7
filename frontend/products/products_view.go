package products

import (
	"net/url"
	"strconv"

	"github.com/a-h/templ"

	"logistica/frontend/shared/html"
)

// PageURL links to page n keeping the active filters.
func (d PageData) PageURL(n int) string {
	q := url.Values{}
	set := func(k, v string) {
		if v != "" {
			q.Set(k, v)
		}
	}
	set("query", d.Filter.Query)
	set("unit", d.Filter.Unit)
	set("classification", d.Filter.Classification)
	set("packaging", d.Filter.Packaging)
	set("category", d.Filter.Category)
	q.Set("page", strconv.Itoa(n))
	return "/app/produtos?" + q.Encode()
}

func ProductsPage(data PageData) templ.Component {
	return html.Page(data.Meta, productsTmpl, data)
}

func ProductEditPage(data EditPageData) templ.Component {
	return html.Page(data.Meta, productEditTmpl, data)
}

var productsTmpl = html.MustParse("products", `
{{if .CanImport}}
<section class="card">
  <h2>Importar cadastro</h2>
  <p class="hint">Cada arquivo substitui todo o cadastro da unidade. SKUs ausentes do arquivo são removidos.</p>
  <form method="post" action="/app/produtos/importar" enctype="multipart/form-data" data-confirm="Substituir o cadastro das unidades enviadas?">
    <label>ITJ <input type="file" name="fileITJ" accept=".csv,text/csv"></label>
    <label>JVL <input type="file" name="fileJVL" accept=".csv,text/csv"></label>
    <button type="submit">Importar</button>
  </form>
</section>
{{end}}

<form method="get" action="/app/produtos" class="filters">
  <input type="search" name="query" value="{{.Filter.Query}}" placeholder="SKU, descrição ou EAN">
  <select name="unit"><option value="">Unidade</option>{{range .Result.Options.Units}}<option{{if eq . $.Filter.Unit}} selected{{end}}>{{.}}</option>{{end}}</select>
  <select name="classification"><option value="">Classificação</option>{{range .Result.Options.Classifications}}<option{{if eq . $.Filter.Classification}} selected{{end}}>{{.}}</option>{{end}}</select>
  <select name="packaging"><option value="">Embalagem</option>{{range .Result.Options.Packagings}}<option{{if eq . $.Filter.Packaging}} selected{{end}}>{{.}}</option>{{end}}</select>
  <select name="category"><option value="">Categoria</option>{{range .Result.Options.Categories}}<option{{if eq . $.Filter.Category}} selected{{end}}>{{.}}</option>{{end}}</select>
  <button type="submit">Filtrar</button>
  {{if .IsAdmin}}<a class="button" href="/app/produtos/novo">Novo produto</a>{{end}}
</form>

<p class="hint">{{.Result.Total}} produtos</p>
<table>
  <thead><tr><th>Unidade</th><th>SKU</th><th>Descrição</th><th>Categoria</th><th>Peso bruto</th><th>Dimensões</th><th>Lastro</th><th>EAN</th><th>Embalagem</th><th>Classificação</th><th></th></tr></thead>
  <tbody>
  {{range .Result.Items}}
    <tr>
      <td>{{.Unit}}</td><td>{{.SKU}}</td><td>{{.Description}}</td><td>{{.Category}}</td>
      <td>{{decimal .GrossWeight}}</td><td>{{.Dimensions}}</td><td>{{.Palletization.Height}}x{{.Palletization.Base}}</td>
      <td>{{.Barcode}}</td><td>{{.Packaging}}</td><td>{{.Classification}}</td>
      <td class="actions">
        <a href="/app/produtos/{{.Unit}}/{{.SKU}}">Editar</a>
        <form method="post" action="/app/produtos/{{.Unit}}/{{.SKU}}/excluir" data-confirm="Excluir o produto {{.SKU}}?"><button type="submit">Excluir</button></form>
      </td>
    </tr>
  {{else}}
    <tr><td colspan="11">Nenhum produto encontrado.</td></tr>
  {{end}}
  </tbody>
</table>

<nav class="pager">
  {{if gt .Result.Page 1}}<a href="{{.PageURL (sub .Result.Page 1)}}">Anterior</a>{{end}}
  <span>Página {{.Result.Page}} de {{.Result.Pages}}</span>
  {{if lt .Result.Page .Result.Pages}}<a href="{{.PageURL (add .Result.Page 1)}}">Próxima</a>{{end}}
</nav>
`)

var productEditTmpl = html.MustParse("productEdit", `
<form method="post" action="{{if .New}}/app/produtos{{else}}/app/produtos/{{.Product.Unit}}/{{.Product.SKU}}{{end}}" class="card form-grid">
  {{if .New}}
  <label>Unidade <select name="unit">{{range .Units}}<option{{if eq . $.Product.Unit}} selected{{end}}>{{.}}</option>{{end}}</select></label>
  <label>SKU <input name="sku" value="{{.Product.SKU}}" required></label>
  {{else}}
  <p><strong>{{.Product.Unit}}</strong> · SKU <strong>{{.Product.SKU}}</strong></p>
  {{end}}
  <label>Item <input name="item" value="{{.Product.Item}}"></label>
  <label>Descrição <input name="description" value="{{.Product.Description}}" required></label>
  <label>Categoria <input name="category" value="{{.Product.Category}}"></label>
  <label>Peso líquido <input name="netWeight" value="{{decimal .Product.NetWeight}}"></label>
  <label>Peso bruto <input name="grossWeight" value="{{decimal .Product.GrossWeight}}"></label>
  <label>Volume <input name="volume" value="{{decimal .Product.Volume}}"></label>
  <label>Dimensões (AxLxC) <input name="dimensions" value="{{.Product.Dimensions}}"></label>
  <label>Lastro altura <input name="palletHeight" value="{{.Product.Palletization.Height}}"></label>
  <label>Lastro base <input name="palletBase" value="{{.Product.Palletization.Base}}"></label>
  <label>EAN <input name="barcode" value="{{.Product.Barcode}}"></label>
  <label>Embalagem <input name="packaging" value="{{.Product.Packaging}}"></label>
  <label>Unidade de medida <input name="measurementUnit" value="{{.Product.MeasurementUnit}}"></label>
  <label>Quantidade <input name="quantity" value="{{.Product.Quantity}}"></label>
  <label>Classificação <input name="classification" value="{{.Product.Classification}}"></label>
  <button type="submit">Salvar</button>
  <a href="/app/produtos">Voltar</a>
</form>
`)
