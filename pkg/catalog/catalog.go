// Package catalog exposes menu reads and the item resolution used by the
// cart and order components. Items may be referenced by their Mongo
// document id or by a numeric legacy id; Resolve accepts either form and
// normalizes to one canonical item at the component boundary.
package catalog

import (
	"context"
	"sort"
	"strconv"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/example/sunrisecafe/pkg/apperr"
	"github.com/example/sunrisecafe/pkg/models"
)

// Store is the read dependency injected into cart and order logic. Finders
// return (nil, nil) on a clean miss.
type Store interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.MenuItem, error)
	FindByNumericID(ctx context.Context, n int64) (*models.MenuItem, error)
	FindManyByRefs(ctx context.Context, refs []string) ([]models.MenuItem, error)
}

// Resolve looks up a menu item by either id representation: exact document
// id first, then the numeric legacy id.
func Resolve(ctx context.Context, store Store, ref string) (*models.MenuItem, error) {
	if ref == "" {
		return nil, apperr.Validationf("menuItemId is required")
	}

	if oid, err := primitive.ObjectIDFromHex(ref); err == nil {
		item, err := store.FindByID(ctx, oid)
		if err != nil {
			return nil, err
		}
		if item != nil {
			return item, nil
		}
	}

	if n, err := strconv.ParseInt(ref, 10, 64); err == nil {
		item, err := store.FindByNumericID(ctx, n)
		if err != nil {
			return nil, err
		}
		if item != nil {
			return item, nil
		}
	}

	return nil, apperr.NotFound("menu item", ref)
}

// MatchesRef reports whether a line reference in either id form points at
// the given item: document-id match first, then numeric coercion, then a
// plain string comparison against the legacy id.
func MatchesRef(item *models.MenuItem, ref string) bool {
	if item.ID.Hex() == ref {
		return true
	}
	if n, err := strconv.ParseInt(ref, 10, 64); err == nil {
		return item.NumericID == n
	}
	return strconv.FormatInt(item.NumericID, 10) == ref
}

// UnitPrice computes the options-inclusive per-unit price: basePrice plus
// the delta of every selected label declared on the item. Unmatched labels
// contribute nothing.
func UnitPrice(item *models.MenuItem, selectedOptions []string) int64 {
	price := item.BasePrice
	for _, label := range selectedOptions {
		for _, opt := range item.Options {
			if opt.Label == label {
				price += opt.PriceDelta
				break
			}
		}
	}
	return price
}

// FullStore adds the catalog reads and writes used by the HTTP layer on top
// of the resolution Store.
type FullStore interface {
	Store
	FindBySlug(ctx context.Context, slug string) (*models.MenuItem, error)
	ListAvailable(ctx context.Context) ([]models.MenuItem, error)
	FindVariantGroups(ctx context.Context, groupIDs []string) ([]models.VariantGroup, error)
	InsertItem(ctx context.Context, item *models.MenuItem) error
	UpdateItem(ctx context.Context, slug string, item *models.MenuItem) (bool, error)
	DeleteItem(ctx context.Context, slug string) (bool, error)
	SetAvailability(ctx context.Context, slug string, available bool) (bool, error)
	UpsertVariantGroup(ctx context.Context, group *models.VariantGroup) error
	DeleteVariantGroup(ctx context.Context, groupID string) (bool, error)
}

// MenuCache caches the public menu listing. A miss is (nil, nil); cache
// failures are soft, the service falls back to Mongo.
type MenuCache interface {
	GetMenu(ctx context.Context) ([]models.MenuItem, error)
	SetMenu(ctx context.Context, items []models.MenuItem) error
	InvalidateMenu(ctx context.Context) error
}

type Service struct {
	store  FullStore
	cache  MenuCache
	logger *zap.Logger
}

func NewService(store FullStore, cache MenuCache, logger *zap.Logger) *Service {
	return &Service{store: store, cache: cache, logger: logger}
}

// ItemDetail is a menu item with its variant groups resolved. Only active
// variant options are included, sorted by their display order.
type ItemDetail struct {
	models.MenuItem
	VariantGroups []models.VariantGroup `json:"variantGroups,omitempty"`
}

// ListMenu returns available items, optionally filtered by category or
// featured flag. The unfiltered listing is served from Redis when warm.
func (s *Service) ListMenu(ctx context.Context, category string, featuredOnly bool) ([]models.MenuItem, error) {
	items, err := s.cachedListing(ctx)
	if err != nil {
		return nil, err
	}

	if category == "" && !featuredOnly {
		return items, nil
	}

	filtered := make([]models.MenuItem, 0, len(items))
	for _, item := range items {
		if category != "" && item.Category != category {
			continue
		}
		if featuredOnly && !item.IsFeatured {
			continue
		}
		filtered = append(filtered, item)
	}
	return filtered, nil
}

func (s *Service) cachedListing(ctx context.Context) ([]models.MenuItem, error) {
	if s.cache != nil {
		items, err := s.cache.GetMenu(ctx)
		if err != nil {
			s.logger.Warn("menu cache read failed", zap.Error(err))
		} else if items != nil {
			return items, nil
		}
	}

	items, err := s.store.ListAvailable(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetMenu(ctx, items); err != nil {
			s.logger.Warn("menu cache write failed", zap.Error(err))
		}
	}
	return items, nil
}

// GetBySlug returns one item with its variant groups resolved at read time.
// Dangling group references are skipped, not errors.
func (s *Service) GetBySlug(ctx context.Context, slug string) (*ItemDetail, error) {
	item, err := s.store.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, apperr.NotFound("menu item", slug)
	}

	detail := &ItemDetail{MenuItem: *item}
	if len(item.VariantGroupRefs) > 0 {
		groups, err := s.store.FindVariantGroups(ctx, item.VariantGroupRefs)
		if err != nil {
			return nil, err
		}
		for i := range groups {
			groups[i].Options = activeSorted(groups[i].Options)
		}
		detail.VariantGroups = groups
	}
	return detail, nil
}

func activeSorted(opts []models.VariantOption) []models.VariantOption {
	active := make([]models.VariantOption, 0, len(opts))
	for _, o := range opts {
		if o.IsActive {
			active = append(active, o)
		}
	}
	sort.SliceStable(active, func(i, j int) bool { return active[i].Order < active[j].Order })
	return active
}

// CreateItem validates catalog invariants and inserts a new menu item.
func (s *Service) CreateItem(ctx context.Context, item *models.MenuItem) error {
	if err := validateItem(item); err != nil {
		return err
	}
	existing, err := s.store.FindBySlug(ctx, item.Slug)
	if err != nil {
		return err
	}
	if existing != nil {
		return apperr.Validationf("slug already in use: %s", item.Slug)
	}
	if err := s.store.InsertItem(ctx, item); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *Service) UpdateItem(ctx context.Context, slug string, item *models.MenuItem) error {
	if err := validateItem(item); err != nil {
		return err
	}
	updated, err := s.store.UpdateItem(ctx, slug, item)
	if err != nil {
		return err
	}
	if !updated {
		return apperr.NotFound("menu item", slug)
	}
	s.invalidate(ctx)
	return nil
}

func (s *Service) DeleteItem(ctx context.Context, slug string) error {
	deleted, err := s.store.DeleteItem(ctx, slug)
	if err != nil {
		return err
	}
	if !deleted {
		return apperr.NotFound("menu item", slug)
	}
	s.invalidate(ctx)
	return nil
}

func (s *Service) SetAvailability(ctx context.Context, slug string, available bool) error {
	updated, err := s.store.SetAvailability(ctx, slug, available)
	if err != nil {
		return err
	}
	if !updated {
		return apperr.NotFound("menu item", slug)
	}
	s.invalidate(ctx)
	return nil
}

func (s *Service) SaveVariantGroup(ctx context.Context, group *models.VariantGroup) error {
	if group.GroupID == "" {
		return apperr.Validationf("groupId is required")
	}
	if group.Name == "" {
		return apperr.Validationf("group name is required")
	}
	if err := s.store.UpsertVariantGroup(ctx, group); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *Service) DeleteVariantGroup(ctx context.Context, groupID string) error {
	deleted, err := s.store.DeleteVariantGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if !deleted {
		return apperr.NotFound("variant group", groupID)
	}
	s.invalidate(ctx)
	return nil
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateMenu(ctx); err != nil {
		s.logger.Warn("menu cache invalidation failed", zap.Error(err))
	}
}

func validateItem(item *models.MenuItem) error {
	if item.Slug == "" {
		return apperr.Validationf("slug is required")
	}
	if item.Name == "" {
		return apperr.Validationf("name is required")
	}
	if item.BasePrice < 0 {
		return apperr.Validationf("basePrice must not be negative")
	}
	seen := make(map[string]struct{}, len(item.Options))
	for _, opt := range item.Options {
		if opt.Label == "" {
			return apperr.Validationf("option label is required")
		}
		if _, dup := seen[opt.Label]; dup {
			return apperr.Validationf("duplicate option label: %s", opt.Label)
		}
		seen[opt.Label] = struct{}{}
	}
	return nil
}
