package labels

import (
	"context"
	"strings"

	"logistica/frontend/allocation"
	"logistica/frontend/conference"
	"logistica/infrastructure/apperr"
	"logistica/infrastructure/jsonstore"
	"logistica/models"
)

// Service assembles label data from the stored collections.
type Service struct {
	store *jsonstore.Store
	grid  allocation.Grid
}

func NewService(store *jsonstore.Store, grid allocation.Grid) *Service {
	return &Service{store: store, grid: grid}
}

// NFDLabel builds the label of a conferenced NFD. Volumes is the received
// volume when the NFD was conferenced and the scheduled NF volume otherwise.
func (s *Service) NFDLabel(ctx context.Context, nfd string) (NFDLabelData, error) {
	nfd = strings.TrimSpace(nfd)
	if nfd == "" {
		return NFDLabelData{}, apperr.Validation("NFD é obrigatória")
	}
	schedules, err := jsonstore.Load[models.ReturnSchedule](ctx, s.store, jsonstore.Schedules)
	if err != nil {
		return NFDLabelData{}, err
	}
	entries, err := jsonstore.Load[models.ConferenceEntry](ctx, s.store, jsonstore.Conference)
	if err != nil {
		return NFDLabelData{}, err
	}

	label := NFDLabelData{NFD: nfd}
	found := false
	scheduled := 0
	for _, sc := range schedules {
		if sc.NFD != nfd {
			continue
		}
		found = true
		scheduled += sc.NFVolume
		if label.Client == "" {
			label.Client = sc.Client
		}
		if sc.StorageDest != "" {
			label.Destination = sc.StorageDest
		}
		if sc.ReceivedState != "" {
			label.State = sc.ReceivedState
		} else if label.State == "" {
			label.State = sc.ProductState
		}
	}
	for _, e := range entries {
		if e.NFD != nfd {
			continue
		}
		found = true
		if label.Client == "" {
			label.Client = e.Client
		}
		if e.CreatedAt.After(label.ReceivedAt) {
			label.ReceivedAt = e.CreatedAt
		}
	}
	if !found {
		return NFDLabelData{}, apperr.NotFound("NFD " + nfd + " não encontrada")
	}

	label.Volumes = conference.ReceivedVolume(entries, nfd)
	if label.Volumes == 0 {
		label.Volumes = scheduled
	}
	return label, nil
}

// PositionLabels returns the label of one position, or of the whole grid
// when building and level are both zero.
func (s *Service) PositionLabels(building, level int) ([]PositionLabelData, error) {
	if building == 0 && level == 0 {
		out := make([]PositionLabelData, 0, s.grid.Buildings*s.grid.Levels)
		for b := 1; b <= s.grid.Buildings; b++ {
			for l := 1; l <= s.grid.Levels; l++ {
				out = append(out, PositionLabelData{Code: allocation.Code(b, l), Building: b, Level: l})
			}
		}
		return out, nil
	}
	if !s.grid.Contains(building, level) {
		return nil, apperr.NotFound("posição não encontrada")
	}
	return []PositionLabelData{{Code: allocation.Code(building, level), Building: building, Level: level}}, nil
}
