// Package cart implements the cart aggregator: raw line storage plus the
// read-side join that prices lines against the live catalog on every read.
package cart

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/sunrisecafe/pkg/apperr"
	"github.com/example/sunrisecafe/pkg/catalog"
	"github.com/example/sunrisecafe/pkg/models"
)

// Store persists carts. FindByCartID returns (nil, nil) on a clean miss.
type Store interface {
	FindByCartID(ctx context.Context, cartID string) (*models.Cart, error)
	Insert(ctx context.Context, cart *models.Cart) error
	SaveLines(ctx context.Context, cartID string, lines []models.CartLine) error
}

type Aggregator struct {
	carts   Store
	catalog catalog.Store
	logger  *zap.Logger
}

func NewAggregator(carts Store, cat catalog.Store, logger *zap.Logger) *Aggregator {
	return &Aggregator{carts: carts, catalog: cat, logger: logger}
}

// GetOrCreate mints a new cart id when none is given, and lazily creates an
// empty cart for unknown ids. It never errors on an unknown id.
func (a *Aggregator) GetOrCreate(ctx context.Context, cartID string) (*models.Cart, error) {
	if cartID != "" {
		cart, err := a.carts.FindByCartID(ctx, cartID)
		if err != nil {
			return nil, err
		}
		if cart != nil {
			return cart, nil
		}
	} else {
		cartID = uuid.NewString()
	}

	now := time.Now().UTC()
	cart := &models.Cart{CartID: cartID, Lines: []models.CartLine{}, CreatedAt: now, UpdatedAt: now}
	if err := a.carts.Insert(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

type AddLineInput struct {
	MenuItemID      string   `json:"menuItemId"`
	Qty             int      `json:"qty"`
	SelectedOptions []string `json:"selectedOptions"`
	Instructions    string   `json:"instructions"`
}

// AddLine resolves the item, normalizes the input, and either merges into an
// existing identical line or appends a new one. The returned view is priced
// against the current catalog.
func (a *Aggregator) AddLine(ctx context.Context, cartID string, in AddLineInput) (*models.PricedCart, error) {
	if in.Qty < 1 {
		return nil, apperr.Validationf("qty must be at least 1")
	}

	item, err := catalog.Resolve(ctx, a.catalog, in.MenuItemID)
	if err != nil {
		return nil, err
	}
	if !item.IsAvailable {
		return nil, apperr.Unavailable(item.Name)
	}

	cart, err := a.GetOrCreate(ctx, cartID)
	if err != nil {
		return nil, err
	}

	// New lines always store the canonical document id; legacy numeric
	// references on old lines keep resolving through the priced view.
	canonical := item.ID.Hex()
	options := normalizeOptions(in.SelectedOptions)
	instructions := strings.TrimSpace(in.Instructions)

	merged := false
	for i := range cart.Lines {
		line := &cart.Lines[i]
		if line.MenuItemID == canonical && sameOptions(line.SelectedOptions, options) && line.Instructions == instructions {
			line.Qty += in.Qty
			merged = true
			break
		}
	}
	if !merged {
		cart.Lines = append(cart.Lines, models.CartLine{
			LineID:          uuid.NewString(),
			MenuItemID:      canonical,
			Qty:             in.Qty,
			SelectedOptions: options,
			Instructions:    instructions,
		})
	}

	if err := a.carts.SaveLines(ctx, cart.CartID, cart.Lines); err != nil {
		return nil, err
	}
	return a.PriceView(ctx, cart)
}

// UpdateLine sets a line's quantity; a quantity of zero or less removes the
// line. Unknown line ids are an error here, unlike RemoveLine.
func (a *Aggregator) UpdateLine(ctx context.Context, cartID, lineID string, qty int) (*models.PricedCart, error) {
	cart, err := a.GetOrCreate(ctx, cartID)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i := range cart.Lines {
		if cart.Lines[i].LineID == lineID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, apperr.NotFound("cart line", lineID)
	}

	if qty <= 0 {
		cart.Lines = append(cart.Lines[:idx], cart.Lines[idx+1:]...)
	} else {
		cart.Lines[idx].Qty = qty
	}

	if err := a.carts.SaveLines(ctx, cart.CartID, cart.Lines); err != nil {
		return nil, err
	}
	return a.PriceView(ctx, cart)
}

// RemoveLine deletes a line if present. Removing an unknown line is a
// success no-op so deletes stay idempotent.
func (a *Aggregator) RemoveLine(ctx context.Context, cartID, lineID string) (*models.PricedCart, error) {
	cart, err := a.GetOrCreate(ctx, cartID)
	if err != nil {
		return nil, err
	}

	for i := range cart.Lines {
		if cart.Lines[i].LineID == lineID {
			cart.Lines = append(cart.Lines[:i], cart.Lines[i+1:]...)
			if err := a.carts.SaveLines(ctx, cart.CartID, cart.Lines); err != nil {
				return nil, err
			}
			break
		}
	}
	return a.PriceView(ctx, cart)
}

// Clear replaces the line set with an empty one.
func (a *Aggregator) Clear(ctx context.Context, cartID string) (*models.PricedCart, error) {
	cart, err := a.GetOrCreate(ctx, cartID)
	if err != nil {
		return nil, err
	}
	cart.Lines = []models.CartLine{}
	if err := a.carts.SaveLines(ctx, cart.CartID, cart.Lines); err != nil {
		return nil, err
	}
	return a.PriceView(ctx, cart)
}

// Get returns the priced view of a cart, creating it when unknown.
func (a *Aggregator) Get(ctx context.Context, cartID string) (*models.PricedCart, error) {
	cart, err := a.GetOrCreate(ctx, cartID)
	if err != nil {
		return nil, err
	}
	return a.PriceView(ctx, cart)
}

// PriceView joins the raw lines against the current catalog. Prices are
// never stored on the cart, so catalog changes propagate to open carts
// immediately. Lines whose item has disappeared price at zero instead of
// failing the whole render.
func (a *Aggregator) PriceView(ctx context.Context, cart *models.Cart) (*models.PricedCart, error) {
	view := &models.PricedCart{CartID: cart.CartID, Lines: []models.PricedLine{}}
	if len(cart.Lines) == 0 {
		return view, nil
	}

	refs := make([]string, 0, len(cart.Lines))
	seen := make(map[string]struct{}, len(cart.Lines))
	for _, line := range cart.Lines {
		if _, ok := seen[line.MenuItemID]; ok {
			continue
		}
		seen[line.MenuItemID] = struct{}{}
		refs = append(refs, line.MenuItemID)
	}

	items, err := a.catalog.FindManyByRefs(ctx, refs)
	if err != nil {
		return nil, err
	}

	for _, line := range cart.Lines {
		priced := models.PricedLine{
			LineID:          line.LineID,
			MenuItemID:      line.MenuItemID,
			Name:            "Unknown item",
			Qty:             line.Qty,
			SelectedOptions: line.SelectedOptions,
			Instructions:    line.Instructions,
		}
		resolved := false
		for i := range items {
			if catalog.MatchesRef(&items[i], line.MenuItemID) {
				priced.Name = items[i].Name
				priced.Image = items[i].Image
				priced.Price = catalog.UnitPrice(&items[i], line.SelectedOptions)
				priced.IsAvailable = items[i].IsAvailable
				resolved = true
				break
			}
		}
		if !resolved {
			a.logger.Warn("cart line references unknown item",
				zap.String("cart_id", cart.CartID),
				zap.String("menu_item_id", line.MenuItemID))
		}
		view.Lines = append(view.Lines, priced)
		view.Count += line.Qty
		view.Subtotal += priced.Price * int64(line.Qty)
	}
	return view, nil
}

func normalizeOptions(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	sort.Strings(out)
	return out
}

func sameOptions(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
