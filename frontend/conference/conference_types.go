package conference

import (
	"logistica/frontend/shared/html"
	"logistica/models"
)

type PageData struct {
	Meta    html.Meta
	Pending []models.ReturnSchedule
	Recent  []models.ConferenceEntry

	// Prompt holds a submission awaiting confirmation of a divergent volume.
	Prompt   Check
	Prompted bool
}

type ItemsPageData struct {
	Meta     html.Meta
	NFD      string
	Received int
	Stored   int
	Items    []models.StorageEntry
}

// Remaining is the quantity that can still be stored.
func (d ItemsPageData) Remaining() int {
	if d.Stored >= d.Received {
		return 0
	}
	return d.Received - d.Stored
}
