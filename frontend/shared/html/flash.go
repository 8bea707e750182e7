package html

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"logistica/infrastructure/apperr"
)

// Redirect helpers carry flash messages through the query string, the way
// every form action reports its outcome.

func RedirectStatus(w http.ResponseWriter, r *http.Request, path, status string) {
	http.Redirect(w, r, withQuery(path, "status", status), http.StatusSeeOther)
}

func RedirectError(w http.ResponseWriter, r *http.Request, path, message string) {
	http.Redirect(w, r, withQuery(path, "error", message), http.StatusSeeOther)
}

// RedirectErr maps err to its user message. Conflict errors also set
// conflict=1 so the page re-offers the action with an override.
func RedirectErr(w http.ResponseWriter, r *http.Request, path string, err error) {
	target := withQuery(path, "error", apperr.UserMessage(err))
	if errors.Is(err, apperr.ErrConflict) {
		target = withQuery(target, "conflict", "1")
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// FlashFromQuery reads the flash pair set by the redirect helpers.
func FlashFromQuery(r *http.Request) (status, errMsg string) {
	q := r.URL.Query()
	return q.Get("status"), q.Get("error")
}

func withQuery(path, key, value string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + key + "=" + url.QueryEscape(value)
}
