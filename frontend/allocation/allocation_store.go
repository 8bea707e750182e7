package allocation

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"logistica/frontend/conference"
	"logistica/infrastructure/apperr"
	"logistica/infrastructure/audit"
	"logistica/infrastructure/jsonstore"
	"logistica/models"
)

// Service places conferenced volumes on the Rua 08 grid.
type Service struct {
	store *jsonstore.Store
	grid  Grid
	audit *audit.Service
	now   func() time.Time
}

func NewService(store *jsonstore.Store, grid Grid, auditSvc *audit.Service) *Service {
	return &Service{store: store, grid: grid, audit: auditSvc, now: time.Now}
}

func (s *Service) Grid() Grid {
	return s.grid
}

// Request asks to place volume units of an NFD at one position.
type Request struct {
	NFD      string
	SKU      string
	Building int
	Level    int
	Volume   int
}

// Result reports an allocation and whether it completed its NFD.
type Result struct {
	Entry     models.AllocationEntry
	Allocated int
	Received  int
	Completed bool
}

// Allocate records r. The NFD's allocated total may never exceed its received
// volume. The allocation that reaches the received volume moves the NFD's
// schedules to Armazenado with destination Rua 08.
func (s *Service) Allocate(ctx context.Context, userID int64, username string, r Request) (Result, error) {
	r.NFD = strings.TrimSpace(r.NFD)
	r.SKU = strings.TrimSpace(r.SKU)
	if r.NFD == "" {
		return Result{}, apperr.Validation("NFD é obrigatória")
	}
	if !s.grid.Contains(r.Building, r.Level) {
		return Result{}, apperr.Validation(fmt.Sprintf("posição inválida: prédio %d, nível %d", r.Building, r.Level))
	}
	if r.Volume <= 0 {
		return Result{}, apperr.Validation("volume deve ser maior que zero")
	}

	var (
		res     Result
		changed []models.ReturnSchedule
	)
	err := jsonstore.Update(ctx, s.store, jsonstore.Schedules, func(schedules []models.ReturnSchedule) ([]models.ReturnSchedule, error) {
		err := jsonstore.View(ctx, s.store, jsonstore.Conference, func(entries []models.ConferenceEntry) error {
			received := conference.ReceivedVolume(entries, r.NFD)
			if received == 0 {
				return apperr.Validation("NFD " + r.NFD + " ainda não foi conferida")
			}
			return jsonstore.Update(ctx, s.store, jsonstore.Allocations, func(allocs []models.AllocationEntry) ([]models.AllocationEntry, error) {
				allocated := AllocatedVolume(allocs, r.NFD)
				if allocated+r.Volume > received {
					return nil, apperr.Validation(fmt.Sprintf("alocação excede o recebido da NFD %s: recebido %d, já alocado %d", r.NFD, received, allocated))
				}
				entry := models.AllocationEntry{
					ID:              uuid.NewString(),
					NFD:             r.NFD,
					SKU:             r.SKU,
					Building:        r.Building,
					Level:           r.Level,
					AllocatedVolume: r.Volume,
					AllocatedBy:     username,
					CreatedAt:       s.now(),
				}
				res = Result{
					Entry:     entry,
					Allocated: allocated + r.Volume,
					Received:  received,
					Completed: allocated+r.Volume == received,
				}
				return append(allocs, entry), nil
			})
		})
		if err != nil {
			return nil, err
		}
		if res.Completed {
			for i := range schedules {
				if schedules[i].NFD == r.NFD && schedules[i].Received {
					schedules[i].Status = models.StatusStored
					schedules[i].StorageDest = StorageDest
					changed = append(changed, schedules[i])
				}
			}
		}
		return schedules, nil
	})
	if err != nil {
		return Result{}, err
	}

	s.record(ctx, audit.Entry{UserID: userID, Action: "allocation.create", EntityType: "allocations", EntityID: res.Entry.ID, After: res.Entry})
	for _, sc := range changed {
		s.record(ctx, audit.Entry{UserID: userID, Action: "schedule.stored", EntityType: "schedules", EntityID: sc.ID, After: sc})
	}
	slog.Info("allocation recorded",
		slog.String("nfd", r.NFD),
		slog.String("position", Code(r.Building, r.Level)),
		slog.Int("volume", r.Volume),
		slog.Bool("completed", res.Completed),
	)
	return res, nil
}

// Release removes one allocation. Schedules of an NFD that was fully stored
// go back to Recebido.
func (s *Service) Release(ctx context.Context, userID int64, id string) (models.AllocationEntry, error) {
	var removed models.AllocationEntry
	err := jsonstore.Update(ctx, s.store, jsonstore.Schedules, func(schedules []models.ReturnSchedule) ([]models.ReturnSchedule, error) {
		err := jsonstore.Update(ctx, s.store, jsonstore.Allocations, func(allocs []models.AllocationEntry) ([]models.AllocationEntry, error) {
			for i := range allocs {
				if allocs[i].ID == id {
					removed = allocs[i]
					return append(allocs[:i], allocs[i+1:]...), nil
				}
			}
			return nil, apperr.NotFound("alocação não encontrada")
		})
		if err != nil {
			return nil, err
		}
		for i := range schedules {
			sc := &schedules[i]
			if sc.NFD == removed.NFD && sc.Status == models.StatusStored && sc.StorageDest == StorageDest {
				sc.Status = models.StatusReceived
			}
		}
		return schedules, nil
	})
	if err != nil {
		return models.AllocationEntry{}, err
	}
	s.record(ctx, audit.Entry{UserID: userID, Action: "allocation.release", EntityType: "allocations", EntityID: id, Before: removed})
	return removed, nil
}

// Entries lists every allocation, newest first.
func (s *Service) Entries(ctx context.Context) ([]models.AllocationEntry, error) {
	all, err := jsonstore.Load[models.AllocationEntry](ctx, s.store, jsonstore.Allocations)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	return all, nil
}

// Pending summarises an NFD with received volume still to allocate.
type Pending struct {
	NFD       string
	Client    string
	Received  int
	Allocated int
}

func (p Pending) Remaining() int {
	return p.Received - p.Allocated
}

// PendingNFDs lists conferenced NFDs not yet fully allocated, in
// conference order.
func (s *Service) PendingNFDs(ctx context.Context) ([]Pending, error) {
	entries, err := jsonstore.Load[models.ConferenceEntry](ctx, s.store, jsonstore.Conference)
	if err != nil {
		return nil, err
	}
	allocs, err := jsonstore.Load[models.AllocationEntry](ctx, s.store, jsonstore.Allocations)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	out := make([]Pending, 0)
	for _, e := range entries {
		if seen[e.NFD] {
			continue
		}
		seen[e.NFD] = true
		p := Pending{
			NFD:       e.NFD,
			Client:    e.Client,
			Received:  conference.ReceivedVolume(entries, e.NFD),
			Allocated: AllocatedVolume(allocs, e.NFD),
		}
		if p.Remaining() > 0 {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *Service) record(ctx context.Context, e audit.Entry) {
	if err := s.audit.Record(ctx, e); err != nil {
		slog.Error("allocation: audit failed", slog.String("action", e.Action), slog.Any("err", err))
	}
}
