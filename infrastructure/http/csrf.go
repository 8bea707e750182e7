package http

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"logistica/frontend/shared/html"
)

const (
	csrfHeaderName = "X-CSRF-Token"
	csrfFormField  = "_csrf"
	// multipartMemory caps the in-memory part of a parsed upload; the rest
	// spills to temp files.
	multipartMemory = 8 << 20
)

// CSRFMiddleware implements the double-submit cookie check for every unsafe
// method. Multipart bodies are bounded by the configured upload limit before
// the token field is read.
func (s *Server) CSRFMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := s.ensureCSRFToken(w, r)
		if isSafeMethod(r.Method) {
			next.ServeHTTP(w, r)
			return
		}

		provided := strings.TrimSpace(r.Header.Get(csrfHeaderName))
		if provided == "" {
			if isMultipart(r) {
				if limit := s.Config.Server.UploadMaxBytes; limit > 0 {
					r.Body = http.MaxBytesReader(w, r.Body, limit)
				}
				if err := r.ParseMultipartForm(multipartMemory); err != nil {
					var tooLarge *http.MaxBytesError
					if errors.As(err, &tooLarge) {
						slog.Warn("upload rejected: body too large", slog.String("path", r.URL.Path), slog.Int64("limit", tooLarge.Limit))
						http.Error(w, "arquivo maior que o limite permitido", http.StatusRequestEntityTooLarge)
						return
					}
					http.Error(w, "formulário inválido", http.StatusBadRequest)
					return
				}
			}
			provided = strings.TrimSpace(r.FormValue(csrfFormField))
		}

		if provided == "" || subtle.ConstantTimeCompare([]byte(token), []byte(provided)) != 1 {
			http.Error(w, "invalid csrf token", http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	default:
		return false
	}
}

func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "multipart/form-data"
}

func (s *Server) ensureCSRFToken(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(html.CSRFCookieName); err == nil && strings.TrimSpace(c.Value) != "" {
		return c.Value
	}
	token := randomToken(32)
	http.SetCookie(w, &http.Cookie{
		Name:     html.CSRFCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: false,
		Secure:   s.secure(),
		SameSite: http.SameSiteLaxMode,
	})
	return token
}

func randomToken(n int) string {
	buf := make([]byte, n)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}
