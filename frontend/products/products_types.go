package products

import (
	"logistica/frontend/shared/html"
	"logistica/models"
)

// PageData drives the catalog page.
type PageData struct {
	Meta      html.Meta
	Filter    Filter
	Result    ListResult
	IsAdmin   bool
	CanImport bool
}

// EditPageData drives the single product form.
type EditPageData struct {
	Meta    html.Meta
	Product models.Product
	New     bool
	Units   []string
}
