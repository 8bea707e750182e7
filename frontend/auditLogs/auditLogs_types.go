package auditlogs

import (
	"net/url"
	"strconv"

	"logistica/frontend/shared/html"
)

const PageSize = 50

// Filter narrows the audit listing. Action matches as a prefix, so
// "schedule." lists every schedule change.
type Filter struct {
	Action     string
	EntityType string
	Username   string
	Page       int
}

type LogRow struct {
	CreatedAt  string
	Actor      string
	Action     string
	EntityType string
	EntityID   string
	BeforeJSON string
	AfterJSON  string
}

type RunRow struct {
	CreatedAt string
	Actor     string
	Kind      string
	Unit      string
	FileName  string
	Records   int
}

type PageData struct {
	Meta        html.Meta
	Filter      Filter
	Rows        []LogRow
	Total       int
	Pages       int
	EntityTypes []string
	Imports     []RunRow
	Exports     []RunRow
}

func (d PageData) PageURL(n int) string {
	q := url.Values{}
	if d.Filter.Action != "" {
		q.Set("action", d.Filter.Action)
	}
	if d.Filter.EntityType != "" {
		q.Set("entity", d.Filter.EntityType)
	}
	if d.Filter.Username != "" {
		q.Set("user", d.Filter.Username)
	}
	q.Set("page", strconv.Itoa(n))
	return "/app/admin/auditoria?" + q.Encode()
}
