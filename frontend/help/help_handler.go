package help

import (
	"net/http"

	"github.com/a-h/templ"

	sessioncontext "logistica/frontend/shared/context"
	"logistica/frontend/shared/html"
	"logistica/infrastructure/rbac"
)

type PageData struct {
	Meta        html.Meta
	IsAdmin     bool
	Permissions map[string]bool
}

// Can reports whether the help section for module should be shown.
func (d PageData) Can(module string) bool {
	return d.IsAdmin || d.Permissions[module]
}

func HelpPage(data PageData) templ.Component {
	return html.Page(data.Meta, helpTmpl, data)
}

func HelpPageQueryHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := sessioncontext.GetSessionFromContext(r.Context())
		if !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		data := PageData{
			Meta:        html.MetaFor(r, "Ajuda"),
			IsAdmin:     session.User.Role == rbac.RoleAdmin,
			Permissions: session.Permissions,
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := HelpPage(data).Render(r.Context(), w); err != nil {
			http.Error(w, "falha ao renderizar ajuda", http.StatusInternalServerError)
			return
		}
	}
}

var helpTmpl = html.MustParse("help", `
{{if .Can "products"}}
<section class="card">
  <h2>Produtos</h2>
  <p>Importe o cadastro de cada unidade (ITJ ou JVL) em CSV. O separador (";", "," ou tabulação) é detectado automaticamente.
  Colunas obrigatórias: <strong>SKU</strong>, <strong>Descrição</strong> e <strong>Categoria</strong>.
  A importação substitui apenas os produtos da unidade enviada.</p>
  {{if .Can "uploads"}}<p>Arquivos com acentos salvos pelo Excel (Windows-1252) são aceitos.</p>{{end}}
</section>
{{end}}
{{if .Can "schedules"}}
<section class="card">
  <h2>Agendamentos</h2>
  <p>A planilha de agendamentos é acrescentada à lista existente; colunas obrigatórias: <strong>Data</strong> e <strong>Cliente</strong>.
  NFDs repetidas são destacadas, mas não bloqueiam a importação. No cadastro manual, informe várias NFDs separadas por vírgula
  ou quebra de linha para criar um agendamento por NFD.</p>
</section>
{{end}}
{{if .Can "conference"}}
<section class="card">
  <h2>Conferência</h2>
  <p>Informe o volume recebido de cada agendamento. Quando o volume difere do volume da NF, o sistema pede confirmação.
  Depois da conferência, registre os itens (SKU e quantidade) da NFD; o total de itens não pode passar do volume recebido.</p>
</section>
{{end}}
{{if .Can "allocation"}}
<section class="card">
  <h2>Rua 08</h2>
  <p>Aloque os volumes conferidos nas posições R08-Pxx-Ny (prédio e nível). Quando todo o volume recebido de uma NFD
  estiver alocado, os agendamentos passam para <em>Armazenado</em>. Cada posição tem etiqueta com código de barras.</p>
</section>
{{end}}
{{if .Can "reports"}}
<section class="card">
  <h2>Relatórios</h2>
  <p>Exporte produtos no mesmo formato aceito pela importação, agendamentos em CSV ou Excel e as alocações da Rua 08.</p>
</section>
{{end}}
{{if .IsAdmin}}
<section class="card">
  <h2>Administração</h2>
  <p>Cadastre usuários e marque os módulos liberados para cada um. Administradores têm acesso a tudo.
  O administrador padrão não pode ser removido. A auditoria lista todas as alterações feitas no sistema.</p>
</section>
{{end}}
<section class="card">
  <h2>Minha conta</h2>
  <p>Altere seu nome, e-mail e senha em <a href="/app/conta">Minha conta</a>. A senha precisa ter pelo menos 8 caracteres, com letras e números.</p>
</section>
`)
