package conference

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"logistica/infrastructure/apperr"
	"logistica/infrastructure/audit"
	"logistica/infrastructure/jsonstore"
	"logistica/models"
)

// Catalog resolves product descriptions for storage items.
type Catalog interface {
	All(ctx context.Context) ([]models.Product, error)
}

// Service runs the receiving check and records the SKU lines of each NFD.
type Service struct {
	store   *jsonstore.Store
	catalog Catalog
	audit   *audit.Service
	now     func() time.Time
}

func NewService(store *jsonstore.Store, catalog Catalog, auditSvc *audit.Service) *Service {
	return &Service{store: store, catalog: catalog, audit: auditSvc, now: time.Now}
}

// Check is one conference submission.
type Check struct {
	ScheduleID     string
	ReceivedVolume int
	ProductState   string
	Notes          string
	Confirm        bool
}

// Conference records the physical check of a schedule. A received volume
// different from the note volume is a Conflict until confirmed. On success
// the schedule is marked received.
func (s *Service) Conference(ctx context.Context, userID int64, username string, c Check) (models.ConferenceEntry, error) {
	if c.ReceivedVolume < 0 {
		return models.ConferenceEntry{}, apperr.Validation("volume recebido não pode ser negativo")
	}
	c.ProductState = strings.TrimSpace(c.ProductState)
	c.Notes = strings.TrimSpace(c.Notes)

	var (
		entry         models.ConferenceEntry
		before, after models.ReturnSchedule
	)
	err := jsonstore.Update(ctx, s.store, jsonstore.Schedules, func(schedules []models.ReturnSchedule) ([]models.ReturnSchedule, error) {
		i := indexOfSchedule(schedules, c.ScheduleID)
		if i < 0 {
			return nil, apperr.NotFound("agendamento não encontrado")
		}
		sc := schedules[i]
		switch {
		case sc.Received:
			return nil, apperr.Validation("NFD " + sc.NFD + " já foi conferida")
		case sc.Status == models.StatusCancelled:
			return nil, apperr.Validation("agendamento cancelado não pode ser conferido")
		}
		if c.ReceivedVolume != sc.NFVolume && !c.Confirm {
			return nil, apperr.Conflict(fmt.Sprintf("volume recebido (%d) diverge do volume da NF (%d). Confirme para registrar a divergência", c.ReceivedVolume, sc.NFVolume))
		}

		entry = models.ConferenceEntry{
			ID:             uuid.NewString(),
			ScheduleID:     sc.ID,
			NFD:            sc.NFD,
			Client:         sc.Client,
			ReceivedVolume: c.ReceivedVolume,
			ProductState:   c.ProductState,
			Notes:          c.Notes,
			ConferencedBy:  username,
			CreatedAt:      s.now(),
		}
		err := jsonstore.Update(ctx, s.store, jsonstore.Conference, func(entries []models.ConferenceEntry) ([]models.ConferenceEntry, error) {
			return append(entries, entry), nil
		})
		if err != nil {
			return nil, err
		}

		before = sc
		sc.Received = true
		sc.ReceivedState = c.ProductState
		sc.ReceiptNotes = c.Notes
		sc.Status = models.StatusReceived
		schedules[i] = sc
		after = sc
		return schedules, nil
	})
	if err != nil {
		return models.ConferenceEntry{}, err
	}

	s.record(ctx, audit.Entry{UserID: userID, Action: "conference.create", EntityType: "conference", EntityID: entry.ID, After: entry})
	s.record(ctx, audit.Entry{UserID: userID, Action: "schedule.received", EntityType: "schedules", EntityID: after.ID, Before: before, After: after})
	slog.Info("conference recorded",
		slog.String("nfd", entry.NFD),
		slog.Int("received", entry.ReceivedVolume),
		slog.Bool("divergent", entry.ReceivedVolume != before.NFVolume),
	)
	return entry, nil
}

// Pending lists schedules still waiting to be conferenced, oldest first.
func (s *Service) Pending(ctx context.Context) ([]models.ReturnSchedule, error) {
	all, err := jsonstore.Load[models.ReturnSchedule](ctx, s.store, jsonstore.Schedules)
	if err != nil {
		return nil, err
	}
	out := make([]models.ReturnSchedule, 0)
	for _, sc := range all {
		if !sc.Received && sc.Status != models.StatusCancelled {
			out = append(out, sc)
		}
	}
	return out, nil
}

// Entries lists conference entries, newest first.
func (s *Service) Entries(ctx context.Context) ([]models.ConferenceEntry, error) {
	all, err := jsonstore.Load[models.ConferenceEntry](ctx, s.store, jsonstore.Conference)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	return all, nil
}

// Received returns the conferenced volume of nfd.
func (s *Service) Received(ctx context.Context, nfd string) (int, error) {
	entries, err := jsonstore.Load[models.ConferenceEntry](ctx, s.store, jsonstore.Conference)
	if err != nil {
		return 0, err
	}
	return ReceivedVolume(entries, nfd), nil
}

// ReceivedVolume sums the conferenced volume of nfd.
func ReceivedVolume(entries []models.ConferenceEntry, nfd string) int {
	total := 0
	for _, e := range entries {
		if e.NFD == nfd {
			total += e.ReceivedVolume
		}
	}
	return total
}

// StoredQuantity sums the storage item quantities of nfd.
func StoredQuantity(items []models.StorageEntry, nfd string) int {
	total := 0
	for _, it := range items {
		if it.NFD == nfd {
			total += it.Quantity
		}
	}
	return total
}

// Item is one SKU line to store for an NFD.
type Item struct {
	NFD          string
	SKU          string
	Description  string
	Quantity     int
	ProductState string
}

// AddStorageItem records a SKU line of a conferenced NFD. The stored total of
// the NFD may not exceed its received volume.
func (s *Service) AddStorageItem(ctx context.Context, userID int64, it Item) (models.StorageEntry, error) {
	it.NFD = strings.TrimSpace(it.NFD)
	it.SKU = strings.TrimSpace(it.SKU)
	if it.NFD == "" || it.SKU == "" {
		return models.StorageEntry{}, apperr.Validation("NFD e SKU são obrigatórios")
	}
	if it.Quantity <= 0 {
		return models.StorageEntry{}, apperr.Validation("quantidade deve ser maior que zero")
	}
	if strings.TrimSpace(it.Description) == "" {
		it.Description = s.describe(ctx, it.SKU)
	}

	var entry models.StorageEntry
	err := jsonstore.View(ctx, s.store, jsonstore.Conference, func(entries []models.ConferenceEntry) error {
		received := ReceivedVolume(entries, it.NFD)
		if received == 0 {
			return apperr.Validation("NFD " + it.NFD + " ainda não foi conferida")
		}
		return jsonstore.Update(ctx, s.store, jsonstore.Storage, func(items []models.StorageEntry) ([]models.StorageEntry, error) {
			stored := StoredQuantity(items, it.NFD)
			if stored+it.Quantity > received {
				return nil, apperr.Validation(fmt.Sprintf("quantidade excede o recebido da NFD %s: recebido %d, já armazenado %d", it.NFD, received, stored))
			}
			entry = models.StorageEntry{
				ID:           uuid.NewString(),
				NFD:          it.NFD,
				SKU:          it.SKU,
				Description:  strings.TrimSpace(it.Description),
				Quantity:     it.Quantity,
				ProductState: strings.TrimSpace(it.ProductState),
				CreatedAt:    s.now(),
			}
			return append(items, entry), nil
		})
	})
	if err != nil {
		return models.StorageEntry{}, err
	}

	s.record(ctx, audit.Entry{UserID: userID, Action: "storage.create", EntityType: "storage", EntityID: entry.ID, After: entry})
	return entry, nil
}

// StorageItems lists the storage lines of nfd; all lines when nfd is empty.
func (s *Service) StorageItems(ctx context.Context, nfd string) ([]models.StorageEntry, error) {
	all, err := jsonstore.Load[models.StorageEntry](ctx, s.store, jsonstore.Storage)
	if err != nil {
		return nil, err
	}
	if nfd == "" {
		return all, nil
	}
	out := make([]models.StorageEntry, 0)
	for _, it := range all {
		if it.NFD == nfd {
			out = append(out, it)
		}
	}
	return out, nil
}

// DeleteStorageItem removes one storage line and returns it.
func (s *Service) DeleteStorageItem(ctx context.Context, userID int64, id string) (models.StorageEntry, error) {
	var removed models.StorageEntry
	err := jsonstore.Update(ctx, s.store, jsonstore.Storage, func(items []models.StorageEntry) ([]models.StorageEntry, error) {
		for i := range items {
			if items[i].ID == id {
				removed = items[i]
				return append(items[:i], items[i+1:]...), nil
			}
		}
		return nil, apperr.NotFound("item não encontrado")
	})
	if err != nil {
		return models.StorageEntry{}, err
	}
	s.record(ctx, audit.Entry{UserID: userID, Action: "storage.delete", EntityType: "storage", EntityID: id, Before: removed})
	return removed, nil
}

func (s *Service) describe(ctx context.Context, sku string) string {
	if s.catalog == nil {
		return ""
	}
	products, err := s.catalog.All(ctx)
	if err != nil {
		slog.Warn("conference: catalog lookup failed", slog.Any("err", err))
		return ""
	}
	for _, p := range products {
		if p.SKU == sku {
			return p.Description
		}
	}
	return ""
}

func (s *Service) record(ctx context.Context, e audit.Entry) {
	if err := s.audit.Record(ctx, e); err != nil {
		slog.Error("conference: audit failed", slog.String("action", e.Action), slog.Any("err", err))
	}
}

func indexOfSchedule(items []models.ReturnSchedule, id string) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}
