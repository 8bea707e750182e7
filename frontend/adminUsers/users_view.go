package adminusers

import (
	"github.com/a-h/templ"

	"logistica/frontend/shared/html"
)

func UsersListPage(data PageData) templ.Component {
	return html.Page(data.Meta, usersTmpl, data)
}

func UserEditPage(data EditPageData) templ.Component {
	return html.Page(data.Meta, userEditTmpl, data)
}

var usersTmpl = html.MustParse("users", `
<section class="card">
  <h2>Novo usuário</h2>
  <form method="post" action="/app/admin/usuarios" class="form-grid">
    <label>Usuário <input name="username" required></label>
    <label>Nome <input name="name"></label>
    <label>E-mail <input name="email" type="email"></label>
    <label>Senha <input name="password" type="password" required></label>
    <label>Perfil <select name="role"><option value="user">Usuário</option><option value="admin">Administrador</option></select></label>
    <fieldset><legend>Permissões</legend>
      {{range .Modules}}<label class="inline"><input type="checkbox" name="modules" value="{{.Code}}"> {{.Label}}</label>{{end}}
    </fieldset>
    <button type="submit">Criar</button>
  </form>
</section>

<section class="card">
  <table>
    <thead><tr><th>Usuário</th><th>Nome</th><th>E-mail</th><th>Perfil</th>{{range .Modules}}<th>{{.Label}}</th>{{end}}<th></th></tr></thead>
    <tbody>
    {{range $u := .Users}}
      <tr>
        <td>{{$u.Username}}</td><td>{{$u.Name}}</td><td>{{$u.Email}}</td>
        <td>{{if $u.IsAdmin}}Administrador{{else}}Usuário{{end}}</td>
        {{range $.Modules}}<td>{{if index $u.Permissions .Code}}✓{{end}}</td>{{end}}
        <td class="actions">
          <a href="/app/admin/usuarios/{{$u.ID}}">Editar</a>
          {{if and (not $u.Protected) (ne $u.ID $.Self)}}
          <form method="post" action="/app/admin/usuarios/{{$u.ID}}/excluir" data-confirm="Remover o usuário {{$u.Username}}?"><button type="submit">Excluir</button></form>
          {{end}}
        </td>
      </tr>
    {{end}}
    </tbody>
  </table>
</section>
`)

var userEditTmpl = html.MustParse("user-edit", `
<section class="card">
  <form method="post" action="/app/admin/usuarios/{{.User.ID}}" class="form-grid">
    <label>Usuário <input value="{{.User.Username}}" disabled></label>
    <label>Nome <input name="name" value="{{.User.Name}}"></label>
    <label>E-mail <input name="email" type="email" value="{{.User.Email}}"></label>
    <label>Nova senha <input name="password" type="password" placeholder="deixe em branco para manter"></label>
    <label>Perfil
      {{if .User.Protected}}
      <input type="hidden" name="role" value="{{.User.Role}}"><input value="Administrador" disabled>
      {{else}}
      <select name="role">
        <option value="user"{{if not .User.IsAdmin}} selected{{end}}>Usuário</option>
        <option value="admin"{{if .User.IsAdmin}} selected{{end}}>Administrador</option>
      </select>
      {{end}}
    </label>
    <fieldset><legend>Permissões</legend>
      {{range .Modules}}<label class="inline"><input type="checkbox" name="modules" value="{{.Code}}"{{if index $.User.Permissions .Code}} checked{{end}}> {{.Label}}</label>{{end}}
    </fieldset>
    <button type="submit">Salvar</button>
    <a href="/app/admin/usuarios">Voltar</a>
  </form>
</section>
`)
