package reports

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"logistica/frontend/products"
	"logistica/frontend/schedules"
	sessioncontext "logistica/frontend/shared/context"
	"logistica/frontend/shared/html"
	"logistica/infrastructure/audit"
	"logistica/models"
)

type ProductSource interface {
	All(ctx context.Context) ([]models.Product, error)
}

type ScheduleSource interface {
	List(ctx context.Context, f schedules.Filter) ([]models.ReturnSchedule, error)
}

type AllocationSource interface {
	Entries(ctx context.Context) ([]models.AllocationEntry, error)
}

// Handlers serves the report downloads. Every download is recorded as an
// export run.
type Handlers struct {
	Products    ProductSource
	Schedules   ScheduleSource
	Allocations AllocationSource
	Audit       *audit.Service
}

func (h Handlers) ReportsPageQueryHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := PageData{
			Meta:     html.MetaFor(r, "Relatórios"),
			Units:    models.Units,
			Statuses: models.ScheduleStatuses,
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := ReportsPage(data).Render(r.Context(), w); err != nil {
			http.Error(w, "falha ao renderizar página", http.StatusInternalServerError)
			return
		}
	}
}

// ProductsCSVHandler exports the catalog, optionally one unit via ?unit=.
func (h Handlers) ProductsCSVHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		all, err := h.Products.All(r.Context())
		if err != nil {
			slog.Error("reports: load products failed", slog.Any("err", err))
			http.Error(w, "falha ao carregar produtos", http.StatusInternalServerError)
			return
		}
		unit := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("unit")))
		exportType := "products_csv"
		name := "produtos.csv"
		if unit != "" {
			filtered := make([]models.Product, 0, len(all))
			for _, p := range all {
				if p.Unit == unit {
					filtered = append(filtered, p)
				}
			}
			all = filtered
			exportType += ":" + unit
			name = "Cad_" + unit + ".csv"
		}
		h.serve(w, r, exportType, "text/csv; charset=utf-8", name, func(w io.Writer) error {
			return products.WriteCSV(w, all)
		})
	}
}

// SchedulesCSVHandler and SchedulesXLSXHandler honour the list filters
// (q, status, date).
func (h Handlers) SchedulesCSVHandler() http.HandlerFunc {
	return h.schedulesHandler("schedules_csv", "text/csv; charset=utf-8", "agendamentos.csv", writeSchedulesCSV)
}

func (h Handlers) SchedulesXLSXHandler() http.HandlerFunc {
	return h.schedulesHandler("schedules_xlsx",
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		"agendamentos.xlsx", writeSchedulesXLSX)
}

func (h Handlers) schedulesHandler(exportType, contentType, name string, write func(io.Writer, []models.ReturnSchedule) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		items, err := h.Schedules.List(r.Context(), schedules.Filter{
			Query:  q.Get("q"),
			Status: q.Get("status"),
			Date:   q.Get("date"),
		})
		if err != nil {
			slog.Error("reports: load schedules failed", slog.Any("err", err))
			http.Error(w, "falha ao carregar agendamentos", http.StatusInternalServerError)
			return
		}
		h.serve(w, r, exportType, contentType, name, func(w io.Writer) error {
			return write(w, items)
		})
	}
}

func (h Handlers) AllocationsCSVHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := h.Allocations.Entries(r.Context())
		if err != nil {
			slog.Error("reports: load allocations failed", slog.Any("err", err))
			http.Error(w, "falha ao carregar alocações", http.StatusInternalServerError)
			return
		}
		h.serve(w, r, "allocations_csv", "text/csv; charset=utf-8", "rua08.csv", func(w io.Writer) error {
			return writeAllocationsCSV(w, entries)
		})
	}
}

func (h Handlers) serve(w http.ResponseWriter, r *http.Request, exportType, contentType, name string, write func(io.Writer) error) {
	stamp := time.Now().Format("20060102-1504")
	dot := strings.LastIndex(name, ".")
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s-%s%s", name[:dot], stamp, name[dot:]))
	if err := write(w); err != nil {
		slog.Error("reports: export failed", slog.String("type", exportType), slog.Any("err", err))
		http.Error(w, "falha ao exportar", http.StatusInternalServerError)
		return
	}
	userID, _ := sessioncontext.Actor(r.Context())
	if err := h.Audit.RecordExport(r.Context(), userID, exportType); err != nil {
		slog.Error("record export run failed", slog.String("type", exportType), slog.Any("err", err))
	}
}
