package allocation

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	sessioncontext "logistica/frontend/shared/context"
	"logistica/frontend/shared/html"
)

const basePath = "/app/rua08"

func Rua08PageQueryHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := svc.Entries(r.Context())
		if err != nil {
			slog.Error("allocation: load entries failed", slog.Any("err", err))
			http.Error(w, "falha ao carregar alocações", http.StatusInternalServerError)
			return
		}
		pending, err := svc.PendingNFDs(r.Context())
		if err != nil {
			slog.Error("allocation: load pending failed", slog.Any("err", err))
			http.Error(w, "falha ao carregar alocações", http.StatusInternalServerError)
			return
		}

		grid := svc.Grid()
		data := PageData{
			Meta:      html.MetaFor(r, "Rua 08"),
			Rows:      grid.Occupancy(entries),
			Buildings: seq(grid.Buildings),
			Levels:    seq(grid.Levels),
			Pending:   pending,
			Entries:   entries,
			Selected:  r.URL.Query().Get("nfd"),
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := Rua08Page(data).Render(r.Context(), w); err != nil {
			http.Error(w, "falha ao renderizar página", http.StatusInternalServerError)
			return
		}
	}
}

func AllocateCommandHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			html.RedirectError(w, r, basePath, "formulário inválido")
			return
		}
		atoi := func(k string) int {
			v, _ := strconv.Atoi(strings.TrimSpace(r.PostFormValue(k)))
			return v
		}
		req := Request{
			NFD:      r.PostFormValue("nfd"),
			SKU:      r.PostFormValue("sku"),
			Building: atoi("building"),
			Level:    atoi("level"),
			Volume:   atoi("volume"),
		}

		userID, username := sessioncontext.Actor(r.Context())
		res, err := svc.Allocate(r.Context(), userID, username, req)
		if err != nil {
			html.RedirectErr(w, r, basePath, err)
			return
		}
		status := fmt.Sprintf("%d volumes da NFD %s alocados em %s (%d de %d)",
			req.Volume, res.Entry.NFD, Code(req.Building, req.Level), res.Allocated, res.Received)
		if res.Completed {
			status += ". NFD armazenada"
		}
		html.RedirectStatus(w, r, basePath, status)
	}
}

func ReleaseCommandHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _ := sessioncontext.Actor(r.Context())
		removed, err := svc.Release(r.Context(), userID, chi.URLParam(r, "id"))
		if err != nil {
			html.RedirectErr(w, r, basePath, err)
			return
		}
		html.RedirectStatus(w, r, basePath, "Posição "+Code(removed.Building, removed.Level)+" liberada")
	}
}

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i + 1
	}
	return out
}
