package conference

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	sessioncontext "logistica/frontend/shared/context"
	"logistica/frontend/shared/html"
	"logistica/infrastructure/apperr"
)

const (
	basePath      = "/app/conferencia"
	recentEntries = 50
)

func ConferencePageQueryHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := buildPage(r, svc)
		if err != nil {
			slog.Error("conference: load failed", slog.Any("err", err))
			http.Error(w, "falha ao carregar conferência", http.StatusInternalServerError)
			return
		}
		renderPage(w, r, data, http.StatusOK)
	}
}

func buildPage(r *http.Request, svc *Service) (PageData, error) {
	pending, err := svc.Pending(r.Context())
	if err != nil {
		return PageData{}, err
	}
	recent, err := svc.Entries(r.Context())
	if err != nil {
		return PageData{}, err
	}
	if len(recent) > recentEntries {
		recent = recent[:recentEntries]
	}
	return PageData{Meta: html.MetaFor(r, "Conferência"), Pending: pending, Recent: recent}, nil
}

func renderPage(w http.ResponseWriter, r *http.Request, data PageData, code int) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	if err := ConferencePage(data).Render(r.Context(), w); err != nil {
		slog.Error("conference: render failed", slog.Any("err", err))
	}
}

func ConferenceCommandHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			html.RedirectError(w, r, basePath, "formulário inválido")
			return
		}
		volume, err := strconv.Atoi(strings.TrimSpace(r.PostFormValue("receivedVolume")))
		if err != nil {
			html.RedirectError(w, r, basePath, "volume recebido inválido")
			return
		}
		check := Check{
			ScheduleID:     chi.URLParam(r, "id"),
			ReceivedVolume: volume,
			ProductState:   r.PostFormValue("productState"),
			Notes:          r.PostFormValue("notes"),
			Confirm:        r.PostFormValue("confirm") == "1",
		}

		userID, username := sessioncontext.Actor(r.Context())
		entry, err := svc.Conference(r.Context(), userID, username, check)
		if errors.Is(err, apperr.ErrConflict) {
			data, loadErr := buildPage(r, svc)
			if loadErr != nil {
				html.RedirectErr(w, r, basePath, loadErr)
				return
			}
			data.Meta.Error = apperr.UserMessage(err)
			data.Prompt = check
			data.Prompted = true
			renderPage(w, r, data, http.StatusConflict)
			return
		}
		if err != nil {
			html.RedirectErr(w, r, basePath, err)
			return
		}
		html.RedirectStatus(w, r, itemsPath(entry.NFD), "NFD "+entry.NFD+" conferida")
	}
}

func ItemsPageQueryHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		nfd := chi.URLParam(r, "nfd")
		received, err := svc.Received(r.Context(), nfd)
		if err != nil {
			http.Error(w, "falha ao carregar conferência", http.StatusInternalServerError)
			return
		}
		items, err := svc.StorageItems(r.Context(), nfd)
		if err != nil {
			http.Error(w, "falha ao carregar itens", http.StatusInternalServerError)
			return
		}

		data := ItemsPageData{
			Meta:     html.MetaFor(r, "Itens da NFD "+nfd),
			NFD:      nfd,
			Received: received,
			Stored:   StoredQuantity(items, nfd),
			Items:    items,
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := ItemsPage(data).Render(r.Context(), w); err != nil {
			http.Error(w, "falha ao renderizar página", http.StatusInternalServerError)
			return
		}
	}
}

func AddItemCommandHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		nfd := chi.URLParam(r, "nfd")
		back := itemsPath(nfd)
		if err := r.ParseForm(); err != nil {
			html.RedirectError(w, r, back, "formulário inválido")
			return
		}
		qty, _ := strconv.Atoi(strings.TrimSpace(r.PostFormValue("quantity")))
		item := Item{
			NFD:          nfd,
			SKU:          r.PostFormValue("sku"),
			Description:  r.PostFormValue("description"),
			Quantity:     qty,
			ProductState: r.PostFormValue("productState"),
		}

		userID, _ := sessioncontext.Actor(r.Context())
		entry, err := svc.AddStorageItem(r.Context(), userID, item)
		if err != nil {
			html.RedirectErr(w, r, back, err)
			return
		}
		html.RedirectStatus(w, r, back, "Item "+entry.SKU+" adicionado")
	}
}

func DeleteItemCommandHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _ := sessioncontext.Actor(r.Context())
		removed, err := svc.DeleteStorageItem(r.Context(), userID, chi.URLParam(r, "id"))
		if err != nil {
			html.RedirectErr(w, r, basePath, err)
			return
		}
		html.RedirectStatus(w, r, itemsPath(removed.NFD), "Item "+removed.SKU+" excluído")
	}
}

func itemsPath(nfd string) string {
	return basePath + "/nfd/" + url.PathEscape(nfd)
}
