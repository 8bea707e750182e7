package products

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"logistica/infrastructure/apperr"
	"logistica/infrastructure/audit"
	"logistica/infrastructure/cache"
	"logistica/infrastructure/jsonstore"
	"logistica/models"
)

// PageSize is the number of products per listing page.
const PageSize = 20

// Upload is one product file destined for a unit.
type Upload struct {
	Unit     string
	FileName string
	Data     []byte
}

// UnitResult summarises an import for one unit.
type UnitResult struct {
	Unit     string
	Imported int
	Replaced int
}

// Service owns the product collection and its in-memory cache.
type Service struct {
	store *jsonstore.Store
	cache *cache.ProductCache
	audit *audit.Service
}

func NewService(store *jsonstore.Store, auditSvc *audit.Service) *Service {
	s := &Service{store: store, audit: auditSvc}
	s.cache = cache.NewProductCache(s.load)
	return s
}

// All returns the whole catalog through the cache.
func (s *Service) All(ctx context.Context) ([]models.Product, error) {
	return s.cache.All(ctx)
}

func (s *Service) load(ctx context.Context) ([]models.Product, error) {
	if !s.store.Exists(jsonstore.Products) {
		return bootstrap(s.store.Dir()), nil
	}
	return jsonstore.Load[models.Product](ctx, s.store, jsonstore.Products)
}

// bootstrapFile names the legacy per-unit catalog read when products.json
// has never been written.
func bootstrapFile(unit string) string {
	return "Cad_" + unit + ".csv"
}

func bootstrap(dir string) []models.Product {
	out := make([]models.Product, 0)
	for _, unit := range models.Units {
		path := filepath.Join(dir, bootstrapFile(unit))
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			slog.Warn("products: bootstrap file unreadable", slog.String("path", path), slog.Any("err", err))
			continue
		}
		batch, err := ParseProducts(data, unit)
		if err != nil {
			slog.Warn("products: bootstrap file skipped", slog.String("path", path), slog.Any("err", err))
			continue
		}
		out = append(out, batch...)
	}
	return out
}

// Import parses every upload first, so one bad header aborts the whole
// request with nothing persisted, then replaces each uploaded unit and
// rewrites the collection once.
func (s *Service) Import(ctx context.Context, userID int64, uploads []Upload) ([]UnitResult, error) {
	if len(uploads) == 0 {
		return nil, apperr.Validation("nenhum arquivo enviado")
	}

	batches := make(map[string][]models.Product, len(uploads))
	order := make([]string, 0, len(uploads))
	for _, up := range uploads {
		unit := NormalizeUnit(up.Unit)
		if _, dup := batches[unit]; dup {
			return nil, apperr.Validation("mais de um arquivo para a unidade " + unit)
		}
		batch, err := ParseProducts(up.Data, unit)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", unit, err)
		}
		batches[unit] = batch
		order = append(order, unit)
	}

	results := make([]UnitResult, 0, len(order))
	err := jsonstore.Update(ctx, s.store, jsonstore.Products, func(items []models.Product) ([]models.Product, error) {
		if len(items) == 0 && !s.store.Exists(jsonstore.Products) {
			items = bootstrap(s.store.Dir())
		}
		for _, unit := range order {
			replaced := 0
			for _, p := range items {
				if p.Unit == unit {
					replaced++
				}
			}
			items = ReconcileUnit(items, batches[unit], unit)
			results = append(results, UnitResult{Unit: unit, Imported: len(batches[unit]), Replaced: replaced})
		}
		return items, nil
	})
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate()

	for i, unit := range order {
		run := models.ImportRun{
			UserID:      userID,
			Kind:        "products",
			Unit:        unit,
			FileName:    uploads[i].FileName,
			RecordCount: len(batches[unit]),
		}
		if err := s.audit.RecordImport(ctx, run); err != nil {
			slog.Error("products: record import run failed", slog.String("unit", unit), slog.Any("err", err))
		}
	}
	slog.Info("products imported", slog.Any("results", results), slog.Int64("user_id", userID))
	return results, nil
}

// Filter selects products for the listing page.
type Filter struct {
	Query          string
	Unit           string
	Classification string
	Packaging      string
	Category       string
	Page           int
}

// Options are the distinct values offered by the listing filters.
type Options struct {
	Units           []string
	Classifications []string
	Packagings      []string
	Categories      []string
}

// ListResult is one page of filtered products.
type ListResult struct {
	Items   []models.Product
	Total   int
	Page    int
	Pages   int
	Options Options
}

func (s *Service) List(ctx context.Context, f Filter) (ListResult, error) {
	all, err := s.All(ctx)
	if err != nil {
		return ListResult{}, err
	}
	return Paginate(FilterProducts(all, f), f.Page, all), nil
}

// FilterProducts keeps products matching every non-empty filter. Query
// matches SKU, description or barcode, case-insensitive.
func FilterProducts(products []models.Product, f Filter) []models.Product {
	q := strings.ToLower(strings.TrimSpace(f.Query))
	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if q != "" &&
			!strings.Contains(strings.ToLower(p.SKU), q) &&
			!strings.Contains(strings.ToLower(p.Description), q) &&
			!strings.Contains(strings.ToLower(p.Barcode), q) {
			continue
		}
		if f.Unit != "" && p.Unit != f.Unit {
			continue
		}
		if f.Classification != "" && p.Classification != f.Classification {
			continue
		}
		if f.Packaging != "" && p.Packaging != f.Packaging {
			continue
		}
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Paginate cuts filtered into PageSize pages, clamping page into range.
// Filter options are computed over all products.
func Paginate(filtered []models.Product, page int, all []models.Product) ListResult {
	pages := (len(filtered) + PageSize - 1) / PageSize
	if pages == 0 {
		pages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > pages {
		page = pages
	}
	start := (page - 1) * PageSize
	end := start + PageSize
	if end > len(filtered) {
		end = len(filtered)
	}
	return ListResult{
		Items:   filtered[start:end],
		Total:   len(filtered),
		Page:    page,
		Pages:   pages,
		Options: buildOptions(all),
	}
}

func buildOptions(products []models.Product) Options {
	units := map[string]struct{}{}
	classes := map[string]struct{}{}
	packs := map[string]struct{}{}
	cats := map[string]struct{}{}
	for _, p := range products {
		units[p.Unit] = struct{}{}
		classes[p.Classification] = struct{}{}
		packs[p.Packaging] = struct{}{}
		cats[p.Category] = struct{}{}
	}
	return Options{
		Units:           sortedKeys(units),
		Classifications: sortedKeys(classes),
		Packagings:      sortedKeys(packs),
		Categories:      sortedKeys(cats),
	}
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		if k != "" {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// Find returns the product identified by (unit, sku).
func (s *Service) Find(ctx context.Context, unit, sku string) (models.Product, error) {
	all, err := s.All(ctx)
	if err != nil {
		return models.Product{}, err
	}
	for _, p := range all {
		if p.Unit == unit && p.SKU == sku {
			return p, nil
		}
	}
	return models.Product{}, apperr.NotFound("produto não encontrado: " + sku + " (" + unit + ")")
}

// Create adds a product entered by hand. (SKU, unit) must be new.
func (s *Service) Create(ctx context.Context, userID int64, p models.Product) error {
	if err := validate(p); err != nil {
		return err
	}
	err := s.mutate(ctx, func(items []models.Product) ([]models.Product, error) {
		if indexOf(items, p.Unit, p.SKU) >= 0 {
			return nil, apperr.Conflict("SKU " + p.SKU + " já cadastrado na unidade " + p.Unit)
		}
		return append(items, p), nil
	})
	if err != nil {
		return err
	}
	s.record(ctx, userID, "product.create", p.Unit+"/"+p.SKU, nil, p)
	return nil
}

// Update replaces the editable fields of (unit, sku). The key never changes.
func (s *Service) Update(ctx context.Context, userID int64, unit, sku string, p models.Product) error {
	p.Unit, p.SKU = unit, sku
	if err := validate(p); err != nil {
		return err
	}
	var before models.Product
	err := s.mutate(ctx, func(items []models.Product) ([]models.Product, error) {
		i := indexOf(items, unit, sku)
		if i < 0 {
			return nil, apperr.NotFound("produto não encontrado: " + sku + " (" + unit + ")")
		}
		before = items[i]
		items[i] = p
		return items, nil
	})
	if err != nil {
		return err
	}
	s.record(ctx, userID, "product.update", unit+"/"+sku, before, p)
	return nil
}

// Delete removes (unit, sku).
func (s *Service) Delete(ctx context.Context, userID int64, unit, sku string) error {
	var before models.Product
	err := s.mutate(ctx, func(items []models.Product) ([]models.Product, error) {
		i := indexOf(items, unit, sku)
		if i < 0 {
			return nil, apperr.NotFound("produto não encontrado: " + sku + " (" + unit + ")")
		}
		before = items[i]
		return append(items[:i], items[i+1:]...), nil
	})
	if err != nil {
		return err
	}
	s.record(ctx, userID, "product.delete", unit+"/"+sku, before, nil)
	return nil
}

// mutate applies fn to the collection, seeding from the bootstrap files on
// the first write, and drops the cache afterwards.
func (s *Service) mutate(ctx context.Context, fn func([]models.Product) ([]models.Product, error)) error {
	err := jsonstore.Update(ctx, s.store, jsonstore.Products, func(items []models.Product) ([]models.Product, error) {
		if len(items) == 0 && !s.store.Exists(jsonstore.Products) {
			items = bootstrap(s.store.Dir())
		}
		return fn(items)
	})
	if err != nil {
		return err
	}
	s.cache.Invalidate()
	return nil
}

func (s *Service) record(ctx context.Context, userID int64, action, id string, before, after any) {
	entry := audit.Entry{UserID: userID, Action: action, EntityType: "products", EntityID: id}
	if before != nil {
		entry.Before = before
	}
	if after != nil {
		entry.After = after
	}
	if err := s.audit.Record(ctx, entry); err != nil {
		slog.Error("products: audit failed", slog.String("action", action), slog.Any("err", err))
	}
}

func validate(p models.Product) error {
	if strings.TrimSpace(p.SKU) == "" {
		return apperr.Validation("SKU é obrigatório")
	}
	if strings.TrimSpace(p.Description) == "" {
		return apperr.Validation("descrição é obrigatória")
	}
	if !ValidUnit(p.Unit) {
		return apperr.Validation("unidade inválida: " + p.Unit)
	}
	return nil
}

func indexOf(items []models.Product, unit, sku string) int {
	for i, p := range items {
		if p.Unit == unit && p.SKU == sku {
			return i
		}
	}
	return -1
}
