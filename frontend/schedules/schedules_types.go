package schedules

import (
	"logistica/frontend/shared/html"
	"logistica/models"
)

type PageData struct {
	Meta       html.Meta
	Filter     Filter
	Schedules  []models.ReturnSchedule
	Duplicates map[string]bool
	Statuses   []string
	CanImport  bool

	// Draft refills the manual form after a duplicate NFD prompt.
	Draft   Draft
	Confirm bool
}
