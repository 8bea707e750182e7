package labels

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"logistica/infrastructure/apperr"
)

// NFDLabelQueryHandler serves the PDF label of one NFD, a page per volume.
func NFDLabelQueryHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		nfd := chi.URLParam(r, "nfd")
		label, err := svc.NFDLabel(r.Context(), nfd)
		if err != nil {
			labelError(w, err)
			return
		}
		pdfBytes, err := renderNFDLabelsPDF([]NFDLabelData{label}, time.Now())
		if err != nil {
			slog.Error("labels: render nfd label failed", slog.String("nfd", nfd), slog.Any("err", err))
			http.Error(w, "falha ao gerar etiqueta", http.StatusInternalServerError)
			return
		}
		writePDF(w, "nfd-"+sanitizeFileName(label.NFD)+"-etiqueta.pdf", pdfBytes)
	}
}

// PositionLabelQueryHandler serves one Rua 08 position label, or every
// position when the route carries no building and level.
func PositionLabelQueryHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		building, level := 0, 0
		if b := chi.URLParam(r, "building"); b != "" {
			var err error
			if building, err = strconv.Atoi(b); err != nil || building <= 0 {
				http.Error(w, "prédio inválido", http.StatusBadRequest)
				return
			}
			if level, err = strconv.Atoi(chi.URLParam(r, "level")); err != nil || level <= 0 {
				http.Error(w, "nível inválido", http.StatusBadRequest)
				return
			}
		}
		labels, err := svc.PositionLabels(building, level)
		if err != nil {
			labelError(w, err)
			return
		}
		pdfBytes, err := renderPositionLabelsPDF(labels)
		if err != nil {
			slog.Error("labels: render position labels failed", slog.Any("err", err))
			http.Error(w, "falha ao gerar etiqueta", http.StatusInternalServerError)
			return
		}
		name := "rua08-etiquetas.pdf"
		if len(labels) == 1 {
			name = labels[0].Code + ".pdf"
		}
		writePDF(w, name, pdfBytes)
	}
}

func writePDF(w http.ResponseWriter, name string, body []byte) {
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%s", name))
	_, _ = w.Write(body)
}

func labelError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		http.Error(w, apperr.UserMessage(err), http.StatusNotFound)
	case errors.Is(err, apperr.ErrValidation):
		http.Error(w, apperr.UserMessage(err), http.StatusBadRequest)
	default:
		slog.Error("labels: load failed", slog.Any("err", err))
		http.Error(w, "falha ao carregar dados da etiqueta", http.StatusInternalServerError)
	}
}

func sanitizeFileName(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '-', r == '_':
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}
