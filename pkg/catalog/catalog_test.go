package catalog

import (
	"context"
	"strconv"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/example/sunrisecafe/pkg/apperr"
	"github.com/example/sunrisecafe/pkg/models"
)

type fakeStore struct {
	items      []models.MenuItem
	groups     []models.VariantGroup
	listCalls  int
	idLookups  int
	numLookups int
}

func (f *fakeStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.MenuItem, error) {
	f.idLookups++
	for i := range f.items {
		if f.items[i].ID == id {
			return &f.items[i], nil
		}
	}
	return nil, nil
}

func (f *fakeStore) FindByNumericID(_ context.Context, n int64) (*models.MenuItem, error) {
	f.numLookups++
	for i := range f.items {
		if f.items[i].NumericID == n {
			return &f.items[i], nil
		}
	}
	return nil, nil
}

func (f *fakeStore) FindManyByRefs(_ context.Context, refs []string) ([]models.MenuItem, error) {
	var out []models.MenuItem
	for _, item := range f.items {
		for _, ref := range refs {
			if item.ID.Hex() == ref || strconv.FormatInt(item.NumericID, 10) == ref {
				out = append(out, item)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeStore) FindBySlug(_ context.Context, slug string) (*models.MenuItem, error) {
	for i := range f.items {
		if f.items[i].Slug == slug {
			return &f.items[i], nil
		}
	}
	return nil, nil
}

func (f *fakeStore) ListAvailable(_ context.Context) ([]models.MenuItem, error) {
	f.listCalls++
	var out []models.MenuItem
	for _, item := range f.items {
		if item.IsAvailable {
			out = append(out, item)
		}
	}
	return out, nil
}

func (f *fakeStore) FindVariantGroups(_ context.Context, groupIDs []string) ([]models.VariantGroup, error) {
	var out []models.VariantGroup
	for _, g := range f.groups {
		for _, id := range groupIDs {
			if g.GroupID == id {
				out = append(out, g)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeStore) InsertItem(_ context.Context, item *models.MenuItem) error {
	item.ID = primitive.NewObjectID()
	f.items = append(f.items, *item)
	return nil
}

func (f *fakeStore) UpdateItem(_ context.Context, slug string, item *models.MenuItem) (bool, error) {
	for i := range f.items {
		if f.items[i].Slug == slug {
			updated := *item
			updated.ID = f.items[i].ID
			updated.Slug = slug
			f.items[i] = updated
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) DeleteItem(_ context.Context, slug string) (bool, error) {
	for i := range f.items {
		if f.items[i].Slug == slug {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) SetAvailability(_ context.Context, slug string, available bool) (bool, error) {
	for i := range f.items {
		if f.items[i].Slug == slug {
			f.items[i].IsAvailable = available
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) UpsertVariantGroup(_ context.Context, group *models.VariantGroup) error {
	for i := range f.groups {
		if f.groups[i].GroupID == group.GroupID {
			f.groups[i] = *group
			return nil
		}
	}
	f.groups = append(f.groups, *group)
	return nil
}

func (f *fakeStore) DeleteVariantGroup(_ context.Context, groupID string) (bool, error) {
	for i := range f.groups {
		if f.groups[i].GroupID == groupID {
			f.groups = append(f.groups[:i], f.groups[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

type fakeCache struct {
	menu   []models.MenuItem
	sets   int
	clears int
}

func (f *fakeCache) GetMenu(_ context.Context) ([]models.MenuItem, error) {
	return f.menu, nil
}

func (f *fakeCache) SetMenu(_ context.Context, items []models.MenuItem) error {
	f.sets++
	f.menu = items
	return nil
}

func (f *fakeCache) InvalidateMenu(_ context.Context) error {
	f.clears++
	f.menu = nil
	return nil
}

func flatWhite() models.MenuItem {
	return models.MenuItem{
		ID:          primitive.NewObjectID(),
		NumericID:   12,
		Slug:        "flat-white",
		Name:        "Flat White",
		BasePrice:   100,
		Category:    "coffee",
		IsAvailable: true,
		Options: []models.ItemOption{
			{Label: "Large", PriceDelta: 50},
			{Label: "Decaf", PriceDelta: 0},
		},
	}
}

func TestResolveDocumentIDFirst(t *testing.T) {
	item := flatWhite()
	store := &fakeStore{items: []models.MenuItem{item}}

	got, err := Resolve(context.Background(), store, item.ID.Hex())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.Slug != "flat-white" {
		t.Errorf("resolved %q, want flat-white", got.Slug)
	}
	if store.numLookups != 0 {
		t.Errorf("numeric lookup ran %d times for a document-id ref", store.numLookups)
	}
}

func TestResolveNumericFallback(t *testing.T) {
	item := flatWhite()
	store := &fakeStore{items: []models.MenuItem{item}}

	got, err := Resolve(context.Background(), store, "12")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.NumericID != 12 {
		t.Errorf("resolved numeric id %d, want 12", got.NumericID)
	}
}

func TestResolveUnknownRef(t *testing.T) {
	store := &fakeStore{}

	if _, err := Resolve(context.Background(), store, "999"); !apperr.IsNotFound(err) {
		t.Errorf("got %v, want not-found error", err)
	}
}

func TestResolveEmptyRef(t *testing.T) {
	if _, err := Resolve(context.Background(), &fakeStore{}, ""); !apperr.IsValidation(err) {
		t.Errorf("got %v, want validation error", err)
	}
}

func TestMatchesRef(t *testing.T) {
	item := flatWhite()

	if !MatchesRef(&item, item.ID.Hex()) {
		t.Error("document-id ref did not match")
	}
	if !MatchesRef(&item, "12") {
		t.Error("numeric ref did not match")
	}
	if MatchesRef(&item, "13") {
		t.Error("wrong numeric ref matched")
	}
	if MatchesRef(&item, primitive.NewObjectID().Hex()) {
		t.Error("foreign document-id ref matched")
	}
}

func TestUnitPrice(t *testing.T) {
	item := flatWhite()

	if got := UnitPrice(&item, nil); got != 100 {
		t.Errorf("base unit price = %d, want 100", got)
	}
	if got := UnitPrice(&item, []string{"Large"}); got != 150 {
		t.Errorf("unit price with Large = %d, want 150", got)
	}
	if got := UnitPrice(&item, []string{"Large", "Sparkles"}); got != 150 {
		t.Errorf("undeclared label changed price: got %d, want 150", got)
	}
}

func TestListMenuUsesCache(t *testing.T) {
	store := &fakeStore{items: []models.MenuItem{flatWhite()}}
	cache := &fakeCache{}
	svc := NewService(store, cache, zap.NewNop())
	ctx := context.Background()

	if _, err := svc.ListMenu(ctx, "", false); err != nil {
		t.Fatalf("ListMenu: %v", err)
	}
	if _, err := svc.ListMenu(ctx, "", false); err != nil {
		t.Fatalf("ListMenu: %v", err)
	}

	if store.listCalls != 1 {
		t.Errorf("store listed %d times, want 1 (second read should hit cache)", store.listCalls)
	}
	if cache.sets != 1 {
		t.Errorf("cache written %d times, want 1", cache.sets)
	}
}

func TestListMenuFilters(t *testing.T) {
	coffee := flatWhite()
	pastry := flatWhite()
	pastry.ID = primitive.NewObjectID()
	pastry.NumericID = 13
	pastry.Slug = "croissant"
	pastry.Category = "bakery"
	pastry.IsFeatured = true

	svc := NewService(&fakeStore{items: []models.MenuItem{coffee, pastry}}, nil, zap.NewNop())
	ctx := context.Background()

	bakery, err := svc.ListMenu(ctx, "bakery", false)
	if err != nil {
		t.Fatalf("ListMenu: %v", err)
	}
	if len(bakery) != 1 || bakery[0].Slug != "croissant" {
		t.Errorf("bakery filter returned %+v", bakery)
	}

	featured, err := svc.ListMenu(ctx, "", true)
	if err != nil {
		t.Fatalf("ListMenu: %v", err)
	}
	if len(featured) != 1 || !featured[0].IsFeatured {
		t.Errorf("featured filter returned %+v", featured)
	}
}

func TestGetBySlugResolvesVariantGroups(t *testing.T) {
	item := flatWhite()
	item.VariantGroupRefs = []string{"milk"}
	store := &fakeStore{
		items: []models.MenuItem{item},
		groups: []models.VariantGroup{{
			GroupID: "milk",
			Name:    "Milk",
			Options: []models.VariantOption{
				{Name: "Oat", AdditionalPrice: 20, IsActive: true, Order: 2},
				{Name: "Whole", IsActive: true, Order: 1},
				{Name: "Soy", IsActive: false, Order: 3},
			},
		}},
	}
	svc := NewService(store, nil, zap.NewNop())

	detail, err := svc.GetBySlug(context.Background(), "flat-white")
	if err != nil {
		t.Fatalf("GetBySlug: %v", err)
	}
	if len(detail.VariantGroups) != 1 {
		t.Fatalf("got %d variant groups, want 1", len(detail.VariantGroups))
	}

	opts := detail.VariantGroups[0].Options
	if len(opts) != 2 {
		t.Fatalf("got %d options, want 2 (inactive dropped)", len(opts))
	}
	if opts[0].Name != "Whole" || opts[1].Name != "Oat" {
		t.Errorf("options out of display order: %+v", opts)
	}
}

func TestGetBySlugUnknown(t *testing.T) {
	svc := NewService(&fakeStore{}, nil, zap.NewNop())

	if _, err := svc.GetBySlug(context.Background(), "nope"); !apperr.IsNotFound(err) {
		t.Errorf("got %v, want not-found error", err)
	}
}

func TestCreateItemValidation(t *testing.T) {
	svc := NewService(&fakeStore{}, nil, zap.NewNop())
	ctx := context.Background()

	bad := []models.MenuItem{
		{Name: "No slug", BasePrice: 10},
		{Slug: "no-name", BasePrice: 10},
		{Slug: "neg", Name: "Negative", BasePrice: -1},
		{Slug: "dup", Name: "Dup labels", BasePrice: 10, Options: []models.ItemOption{{Label: "L"}, {Label: "L"}}},
	}
	for _, item := range bad {
		if err := svc.CreateItem(ctx, &item); !apperr.IsValidation(err) {
			t.Errorf("CreateItem(%q) = %v, want validation error", item.Slug, err)
		}
	}
}

func TestCreateItemRejectsDuplicateSlug(t *testing.T) {
	store := &fakeStore{items: []models.MenuItem{flatWhite()}}
	svc := NewService(store, nil, zap.NewNop())

	dup := models.MenuItem{Slug: "flat-white", Name: "Imposter", BasePrice: 10}
	if err := svc.CreateItem(context.Background(), &dup); !apperr.IsValidation(err) {
		t.Errorf("got %v, want validation error", err)
	}
}

func TestAdminWritesInvalidateMenuCache(t *testing.T) {
	store := &fakeStore{items: []models.MenuItem{flatWhite()}}
	cache := &fakeCache{}
	svc := NewService(store, cache, zap.NewNop())
	ctx := context.Background()

	if err := svc.SetAvailability(ctx, "flat-white", false); err != nil {
		t.Fatalf("SetAvailability: %v", err)
	}
	if err := svc.DeleteItem(ctx, "flat-white"); err != nil {
		t.Fatalf("DeleteItem: %v", err)
	}
	if cache.clears != 2 {
		t.Errorf("cache invalidated %d times, want 2", cache.clears)
	}
}

func TestSetAvailabilityUnknownItem(t *testing.T) {
	svc := NewService(&fakeStore{}, nil, zap.NewNop())

	if err := svc.SetAvailability(context.Background(), "ghost", true); !apperr.IsNotFound(err) {
		t.Errorf("got %v, want not-found error", err)
	}
}
