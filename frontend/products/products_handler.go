package products

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	sessioncontext "logistica/frontend/shared/context"
	"logistica/frontend/shared/html"
	"logistica/infrastructure/ingest"
	"logistica/infrastructure/rbac"
	"logistica/models"
)

const basePath = "/app/produtos"

func ProductsPageQueryHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		page, _ := strconv.Atoi(q.Get("page"))
		filter := Filter{
			Query:          strings.TrimSpace(q.Get("query")),
			Unit:           q.Get("unit"),
			Classification: q.Get("classification"),
			Packaging:      q.Get("packaging"),
			Category:       q.Get("category"),
			Page:           page,
		}

		result, err := svc.List(r.Context(), filter)
		if err != nil {
			slog.Error("products: list failed", slog.Any("err", err))
			http.Error(w, "falha ao carregar produtos", http.StatusInternalServerError)
			return
		}

		session, _ := sessioncontext.GetSessionFromContext(r.Context())
		isAdmin := session.User.Role == rbac.RoleAdmin
		data := PageData{
			Meta:      html.MetaFor(r, "Produtos"),
			Filter:    filter,
			Result:    result,
			IsAdmin:   isAdmin,
			CanImport: isAdmin || session.Permissions[rbac.ModuleUploads],
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := ProductsPage(data).Render(r.Context(), w); err != nil {
			http.Error(w, "falha ao renderizar página", http.StatusInternalServerError)
			return
		}
	}
}

// ProductsImportCommandHandler accepts fileITJ and fileJVL, or a single
// file with a unit field.
func ProductsImportCommandHandler(svc *Service, maxBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
		if err := r.ParseMultipartForm(maxBytes); err != nil {
			html.RedirectError(w, r, basePath, "upload inválido ou maior que o limite permitido")
			return
		}

		uploads, err := readUploads(r)
		if err != nil {
			html.RedirectErr(w, r, basePath, err)
			return
		}

		userID, _ := sessioncontext.Actor(r.Context())
		results, err := svc.Import(r.Context(), userID, uploads)
		if err != nil {
			html.RedirectErr(w, r, basePath, err)
			return
		}

		parts := make([]string, 0, len(results))
		for _, res := range results {
			parts = append(parts, fmt.Sprintf("%s: %d produtos (%d substituídos)", res.Unit, res.Imported, res.Replaced))
		}
		html.RedirectStatus(w, r, basePath, "Importação concluída. "+strings.Join(parts, "; "))
	}
}

func readUploads(r *http.Request) ([]Upload, error) {
	var uploads []Upload
	for _, unit := range models.Units {
		up, ok, err := formUpload(r, "file"+unit, unit)
		if err != nil {
			return nil, err
		}
		if ok {
			uploads = append(uploads, up)
		}
	}
	up, ok, err := formUpload(r, "file", r.FormValue("unit"))
	if err != nil {
		return nil, err
	}
	if ok {
		uploads = append(uploads, up)
	}
	return uploads, nil
}

func formUpload(r *http.Request, field, unit string) (Upload, bool, error) {
	file, header, err := r.FormFile(field)
	if err == http.ErrMissingFile {
		return Upload{}, false, nil
	}
	if err != nil {
		return Upload{}, false, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return Upload{}, false, err
	}
	if len(data) == 0 {
		return Upload{}, false, nil
	}
	return Upload{Unit: unit, FileName: header.Filename, Data: data}, true, nil
}

func ProductNewPageQueryHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := EditPageData{
			Meta:    html.MetaFor(r, "Novo produto"),
			Product: models.Product{Unit: models.UnitITJ},
			New:     true,
			Units:   models.Units,
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := ProductEditPage(data).Render(r.Context(), w); err != nil {
			http.Error(w, "falha ao renderizar página", http.StatusInternalServerError)
			return
		}
	}
}

func ProductEditPageQueryHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		product, err := svc.Find(r.Context(), chi.URLParam(r, "unit"), chi.URLParam(r, "sku"))
		if err != nil {
			html.RedirectErr(w, r, basePath, err)
			return
		}
		data := EditPageData{
			Meta:    html.MetaFor(r, "Editar produto"),
			Product: product,
			Units:   models.Units,
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := ProductEditPage(data).Render(r.Context(), w); err != nil {
			http.Error(w, "falha ao renderizar página", http.StatusInternalServerError)
			return
		}
	}
}

func ProductCreateCommandHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			html.RedirectError(w, r, basePath+"/novo", "formulário inválido")
			return
		}
		p := productFromForm(r)
		p.SKU = strings.TrimSpace(r.PostFormValue("sku"))
		p.Unit = NormalizeUnit(r.PostFormValue("unit"))

		userID, _ := sessioncontext.Actor(r.Context())
		if err := svc.Create(r.Context(), userID, p); err != nil {
			html.RedirectErr(w, r, basePath+"/novo", err)
			return
		}
		html.RedirectStatus(w, r, basePath, "Produto "+p.SKU+" cadastrado")
	}
}

func ProductUpdateCommandHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		unit, sku := chi.URLParam(r, "unit"), chi.URLParam(r, "sku")
		back := basePath + "/" + unit + "/" + sku
		if err := r.ParseForm(); err != nil {
			html.RedirectError(w, r, back, "formulário inválido")
			return
		}

		userID, _ := sessioncontext.Actor(r.Context())
		if err := svc.Update(r.Context(), userID, unit, sku, productFromForm(r)); err != nil {
			html.RedirectErr(w, r, back, err)
			return
		}
		html.RedirectStatus(w, r, basePath, "Produto "+sku+" atualizado")
	}
}

func ProductDeleteCommandHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		unit, sku := chi.URLParam(r, "unit"), chi.URLParam(r, "sku")
		userID, _ := sessioncontext.Actor(r.Context())
		if err := svc.Delete(r.Context(), userID, unit, sku); err != nil {
			html.RedirectErr(w, r, basePath, err)
			return
		}
		html.RedirectStatus(w, r, basePath, "Produto "+sku+" excluído")
	}
}

// productFromForm reads the editable fields with the importer's coercion
// rules, so "12,5" and "12.5" are both accepted.
func productFromForm(r *http.Request) models.Product {
	v := func(k string) string { return strings.TrimSpace(r.PostFormValue(k)) }
	return models.Product{
		Item:        v("item"),
		Description: v("description"),
		Category:    v("category"),
		NetWeight:   ingest.Float(v("netWeight")),
		GrossWeight: ingest.Float(v("grossWeight")),
		Volume:      ingest.Float(v("volume")),
		Dimensions:  v("dimensions"),
		Palletization: models.Palletization{
			Height: ingest.Int(v("palletHeight")),
			Base:   ingest.Int(v("palletBase")),
		},
		Barcode:         v("barcode"),
		Packaging:       v("packaging"),
		MeasurementUnit: v("measurementUnit"),
		Quantity:        ingest.Int(v("quantity")),
		Classification:  v("classification"),
	}
}
