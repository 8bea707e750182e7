package schedules

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	sessioncontext "logistica/frontend/shared/context"
	"logistica/frontend/shared/html"
	"logistica/infrastructure/apperr"
	"logistica/infrastructure/rbac"
	"logistica/models"
)

const basePath = "/app/agendamentos"

func SchedulesPageQueryHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		filter := Filter{
			Query:  strings.TrimSpace(q.Get("q")),
			Status: q.Get("status"),
			Date:   normalizeDate(q.Get("date")),
		}
		data, err := buildPage(r, svc, filter)
		if err != nil {
			slog.Error("schedules: list failed", slog.Any("err", err))
			http.Error(w, "falha ao carregar agendamentos", http.StatusInternalServerError)
			return
		}
		render(w, r, data, http.StatusOK)
	}
}

func buildPage(r *http.Request, svc *Service, filter Filter) (PageData, error) {
	all, err := svc.All(r.Context())
	if err != nil {
		return PageData{}, err
	}
	dups := make(map[string]bool)
	for _, nfd := range DuplicateNFDs(all) {
		dups[nfd] = true
	}
	session, _ := sessioncontext.GetSessionFromContext(r.Context())
	return PageData{
		Meta:       html.MetaFor(r, "Agendamentos"),
		Filter:     filter,
		Schedules:  FilterSchedules(all, filter),
		Duplicates: dups,
		Statuses:   models.ScheduleStatuses,
		CanImport:  session.User.Role == rbac.RoleAdmin || session.Permissions[rbac.ModuleUploads],
	}, nil
}

func render(w http.ResponseWriter, r *http.Request, data PageData, code int) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	if err := SchedulesPage(data).Render(r.Context(), w); err != nil {
		slog.Error("schedules: render failed", slog.Any("err", err))
	}
}

func SchedulesImportCommandHandler(svc *Service, maxBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
		if err := r.ParseMultipartForm(maxBytes); err != nil {
			html.RedirectError(w, r, basePath, "upload inválido ou maior que o limite permitido")
			return
		}
		file, header, err := r.FormFile("fileAgendamento")
		if err != nil {
			file, header, err = r.FormFile("file")
		}
		if err != nil {
			html.RedirectError(w, r, basePath, "nenhum arquivo enviado")
			return
		}
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			html.RedirectErr(w, r, basePath, apperr.IO("falha ao ler o arquivo", err))
			return
		}

		userID, _ := sessioncontext.Actor(r.Context())
		result, err := svc.Import(r.Context(), userID, header.Filename, data)
		if err != nil {
			html.RedirectErr(w, r, basePath, err)
			return
		}

		status := fmt.Sprintf("%d agendamentos importados (total %d)", result.Imported, result.Total)
		if len(result.Duplicates) > 0 {
			status += fmt.Sprintf(". Atenção: %d NFDs duplicadas", len(result.Duplicates))
		}
		html.RedirectStatus(w, r, basePath, status)
	}
}

func ScheduleCreateCommandHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			html.RedirectError(w, r, basePath, "formulário inválido")
			return
		}
		v := func(k string) string { return strings.TrimSpace(r.PostFormValue(k)) }
		volume, _ := strconv.Atoi(v("nfVolume"))
		draft := Draft{
			Date:             v("date"),
			Carrier:          v("carrier"),
			OutboundShipment: v("outboundShipment"),
			SalesNote:        v("salesNote"),
			NFDs:             r.PostFormValue("nfds"),
			Client:           v("client"),
			BDV:              v("bdv"),
			OV:               v("ov"),
			ReturnReason:     v("returnReason"),
			ProductState:     v("productState"),
			NFVolume:         volume,
			StorageDest:      v("storageDest"),
		}

		userID, _ := sessioncontext.Actor(r.Context())
		created, err := svc.Create(r.Context(), userID, draft, v("confirm") == "1")
		if errors.Is(err, apperr.ErrConflict) {
			data, loadErr := buildPage(r, svc, Filter{})
			if loadErr != nil {
				html.RedirectErr(w, r, basePath, loadErr)
				return
			}
			data.Meta.Error = apperr.UserMessage(err)
			data.Draft = draft
			data.Confirm = true
			render(w, r, data, http.StatusConflict)
			return
		}
		if err != nil {
			html.RedirectErr(w, r, basePath, err)
			return
		}
		html.RedirectStatus(w, r, basePath, fmt.Sprintf("%d agendamentos criados", len(created)))
	}
}

func ScheduleStatusCommandHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			html.RedirectError(w, r, basePath, "formulário inválido")
			return
		}
		id := chi.URLParam(r, "id")
		userID, _ := sessioncontext.Actor(r.Context())
		if err := svc.UpdateStatus(r.Context(), userID, id, r.PostFormValue("status"), r.PostFormValue("storageDest")); err != nil {
			html.RedirectErr(w, r, basePath, err)
			return
		}
		html.RedirectStatus(w, r, basePath, "Agendamento atualizado")
	}
}

func ScheduleDeleteCommandHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		userID, _ := sessioncontext.Actor(r.Context())
		if err := svc.Delete(r.Context(), userID, id); err != nil {
			html.RedirectErr(w, r, basePath, err)
			return
		}
		html.RedirectStatus(w, r, basePath, "Agendamento excluído")
	}
}
