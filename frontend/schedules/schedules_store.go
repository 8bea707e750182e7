package schedules

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"logistica/infrastructure/apperr"
	"logistica/infrastructure/audit"
	"logistica/infrastructure/jsonstore"
	"logistica/models"
)

// Service owns the schedules collection.
type Service struct {
	store *jsonstore.Store
	audit *audit.Service
	now   func() time.Time
}

func NewService(store *jsonstore.Store, auditSvc *audit.Service) *Service {
	return &Service{store: store, audit: auditSvc, now: time.Now}
}

// ImportResult summarises one schedule upload.
type ImportResult struct {
	Imported   int
	Total      int
	Duplicates []string
}

// Import appends every valid row of data to the collection.
func (s *Service) Import(ctx context.Context, userID int64, fileName string, data []byte) (ImportResult, error) {
	if len(data) == 0 {
		return ImportResult{}, apperr.Validation("nenhum arquivo enviado")
	}
	now := s.now()
	batch, err := ParseSchedules(data, now)
	if err != nil {
		return ImportResult{}, err
	}

	var result ImportResult
	err = jsonstore.Update(ctx, s.store, jsonstore.Schedules, func(items []models.ReturnSchedule) ([]models.ReturnSchedule, error) {
		assignIDs(items, batch, now)
		items = AppendSchedules(items, batch)
		result = ImportResult{Imported: len(batch), Total: len(items), Duplicates: DuplicateNFDs(items)}
		return items, nil
	})
	if err != nil {
		return ImportResult{}, err
	}

	run := models.ImportRun{UserID: userID, Kind: "schedules", FileName: fileName, RecordCount: len(batch)}
	if err := s.audit.RecordImport(ctx, run); err != nil {
		slog.Error("schedules: record import run failed", slog.Any("err", err))
	}
	slog.Info("schedules imported", slog.Int("rows", len(batch)), slog.Int("total", result.Total), slog.Int64("user_id", userID))
	return result, nil
}

// Filter selects schedules for the listing page.
type Filter struct {
	Query  string
	Status string
	Date   string
}

// All returns the whole collection in file order.
func (s *Service) All(ctx context.Context) ([]models.ReturnSchedule, error) {
	return jsonstore.Load[models.ReturnSchedule](ctx, s.store, jsonstore.Schedules)
}

// List returns matching schedules, newest first.
func (s *Service) List(ctx context.Context, f Filter) ([]models.ReturnSchedule, error) {
	all, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	return FilterSchedules(all, f), nil
}

// FilterSchedules keeps schedules matching every non-empty filter. Query
// matches NFD, client, carrier or BDV.
func FilterSchedules(items []models.ReturnSchedule, f Filter) []models.ReturnSchedule {
	q := strings.ToLower(strings.TrimSpace(f.Query))
	date := normalizeDate(f.Date)
	out := make([]models.ReturnSchedule, 0, len(items))
	for _, s := range items {
		if q != "" &&
			!strings.Contains(strings.ToLower(s.NFD), q) &&
			!strings.Contains(strings.ToLower(s.Client), q) &&
			!strings.Contains(strings.ToLower(s.Carrier), q) &&
			!strings.Contains(strings.ToLower(s.BDV), q) {
			continue
		}
		if f.Status != "" && s.Status != f.Status {
			continue
		}
		if date != "" && s.Date != date {
			continue
		}
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// Find returns the schedule with id.
func (s *Service) Find(ctx context.Context, id string) (models.ReturnSchedule, error) {
	all, err := s.All(ctx)
	if err != nil {
		return models.ReturnSchedule{}, err
	}
	for _, item := range all {
		if item.ID == id {
			return item, nil
		}
	}
	return models.ReturnSchedule{}, apperr.NotFound("agendamento não encontrado")
}

// Draft is a manual schedule entry. NFDs may hold several notes, each
// producing its own schedule.
type Draft struct {
	Date             string
	Carrier          string
	OutboundShipment string
	SalesNote        string
	NFDs             string
	Client           string
	BDV              string
	OV               string
	ReturnReason     string
	ProductState     string
	NFVolume         int
	StorageDest      string
}

// Create fans d out into one schedule per NFD. When any NFD is already
// scheduled the call fails with a Conflict error unless confirm is set.
func (s *Service) Create(ctx context.Context, userID int64, d Draft, confirm bool) ([]models.ReturnSchedule, error) {
	d.Date = normalizeDate(d.Date)
	d.Client = strings.TrimSpace(d.Client)
	if d.Date == "" {
		return nil, apperr.Validation("data é obrigatória")
	}
	if d.Client == "" {
		return nil, apperr.Validation("cliente é obrigatório")
	}
	if d.NFVolume < 0 {
		return nil, apperr.Validation("volume da NF não pode ser negativo")
	}
	nfds := SplitNFDs(d.NFDs)
	if len(nfds) == 0 {
		return nil, apperr.Validation("informe ao menos uma NFD")
	}

	now := s.now()
	created := make([]models.ReturnSchedule, 0, len(nfds))
	for i, nfd := range nfds {
		created = append(created, models.ReturnSchedule{
			ID:               NewID(now, i),
			Date:             d.Date,
			Carrier:          strings.TrimSpace(d.Carrier),
			OutboundShipment: strings.TrimSpace(d.OutboundShipment),
			SalesNote:        strings.TrimSpace(d.SalesNote),
			NFD:              nfd,
			Client:           d.Client,
			BDV:              strings.TrimSpace(d.BDV),
			OV:               strings.TrimSpace(d.OV),
			ReturnReason:     strings.TrimSpace(d.ReturnReason),
			ProductState:     strings.TrimSpace(d.ProductState),
			NFVolume:         d.NFVolume,
			Status:           models.StatusScheduled,
			StorageDest:      strings.TrimSpace(d.StorageDest),
			CreatedAt:        now,
		})
	}

	err := jsonstore.Update(ctx, s.store, jsonstore.Schedules, func(items []models.ReturnSchedule) ([]models.ReturnSchedule, error) {
		if !confirm {
			if dup := existingNFDs(items, nfds); len(dup) > 0 {
				return nil, apperr.Conflict("NFD já agendada: " + strings.Join(dup, ", ") + ". Confirme para agendar novamente")
			}
		}
		assignIDs(items, created, now)
		return AppendSchedules(items, created), nil
	})
	if err != nil {
		return nil, err
	}

	for _, sc := range created {
		s.record(ctx, userID, "schedule.create", sc.ID, nil, sc)
	}
	return created, nil
}

// assignIDs renumbers batch so no id repeats one already in existing, which
// happens when two writes share a millisecond.
func assignIDs(existing, batch []models.ReturnSchedule, now time.Time) {
	taken := make(map[string]struct{}, len(existing))
	for _, s := range existing {
		taken[s.ID] = struct{}{}
	}
	next := 0
	for i := range batch {
		for {
			id := NewID(now, next)
			next++
			if _, ok := taken[id]; !ok {
				batch[i].ID = id
				break
			}
		}
	}
}

func existingNFDs(items []models.ReturnSchedule, nfds []string) []string {
	have := make(map[string]struct{}, len(items))
	for _, s := range items {
		have[s.NFD] = struct{}{}
	}
	var dup []string
	for _, nfd := range nfds {
		if _, ok := have[nfd]; ok {
			dup = append(dup, nfd)
		}
	}
	return dup
}

// UpdateStatus sets the status and storage destination of one schedule.
func (s *Service) UpdateStatus(ctx context.Context, userID int64, id, status, storageDest string) error {
	if !ValidStatus(status) {
		return apperr.Validation("status inválido: " + status)
	}
	var before, after models.ReturnSchedule
	err := jsonstore.Update(ctx, s.store, jsonstore.Schedules, func(items []models.ReturnSchedule) ([]models.ReturnSchedule, error) {
		for i := range items {
			if items[i].ID != id {
				continue
			}
			before = items[i]
			items[i].Status = status
			items[i].StorageDest = strings.TrimSpace(storageDest)
			after = items[i]
			return items, nil
		}
		return nil, apperr.NotFound("agendamento não encontrado")
	})
	if err != nil {
		return err
	}
	s.record(ctx, userID, "schedule.status", id, before, after)
	return nil
}

// Delete removes the schedule with id.
func (s *Service) Delete(ctx context.Context, userID int64, id string) error {
	var before models.ReturnSchedule
	err := jsonstore.Update(ctx, s.store, jsonstore.Schedules, func(items []models.ReturnSchedule) ([]models.ReturnSchedule, error) {
		for i := range items {
			if items[i].ID == id {
				before = items[i]
				return append(items[:i], items[i+1:]...), nil
			}
		}
		return nil, apperr.NotFound("agendamento não encontrado")
	})
	if err != nil {
		return err
	}
	s.record(ctx, userID, "schedule.delete", id, before, nil)
	return nil
}

func (s *Service) record(ctx context.Context, userID int64, action, id string, before, after any) {
	entry := audit.Entry{UserID: userID, Action: action, EntityType: "schedules", EntityID: id}
	if before != nil {
		entry.Before = before
	}
	if after != nil {
		entry.After = after
	}
	if err := s.audit.Record(ctx, entry); err != nil {
		slog.Error("schedules: audit failed", slog.String("action", action), slog.Any("err", err))
	}
}

// normalizeDate converts the yyyy-mm-dd value of a date input to the
// dd/mm/yyyy form used by the uploaded sheets. Other values pass trimmed.
func normalizeDate(v string) string {
	v = strings.TrimSpace(v)
	if t, err := time.Parse("2006-01-02", v); err == nil {
		return t.Format("02/01/2006")
	}
	return v
}
