// Package order builds immutable order snapshots at checkout. Prices and
// availability are always re-derived from the catalog; anything the client
// sent along is ignored.
package order

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/example/sunrisecafe/pkg/apperr"
	"github.com/example/sunrisecafe/pkg/catalog"
	"github.com/example/sunrisecafe/pkg/models"
)

const (
	numberAttempts   = 3
	defaultListLimit = 50
	maxListLimit     = 100
)

// Store persists orders. Finders return (nil, nil) on a clean miss.
type Store interface {
	Insert(ctx context.Context, order *models.Order) error
	ExistsByNumber(ctx context.Context, number string) (bool, error)
	FindByNumber(ctx context.Context, number string) (*models.Order, error)
	ListRecent(ctx context.Context, limit int64) ([]models.Order, error)
	UpdateStatus(ctx context.Context, number string, status models.OrderStatus) (*models.Order, error)
}

type Builder struct {
	orders  Store
	catalog catalog.Store
	logger  *zap.Logger
}

func NewBuilder(orders Store, cat catalog.Store, logger *zap.Logger) *Builder {
	return &Builder{orders: orders, catalog: cat, logger: logger}
}

type LineInput struct {
	MenuItemID      string   `json:"menuItemId"`
	Qty             int      `json:"qty"`
	SelectedOptions []string `json:"selectedOptions"`
	Instructions    string   `json:"instructions"`
}

type CreateInput struct {
	OrderType models.OrderType `json:"orderType"`
	Customer  models.Customer  `json:"customer"`
	Lines     []LineInput      `json:"lines"`
	Notes     string           `json:"notes"`
}

type CreateResult struct {
	OrderID     string             `json:"orderId"`
	OrderNumber string             `json:"orderNumber"`
	Status      models.OrderStatus `json:"status"`
	Total       int64              `json:"total"`
}

// Create validates the request, re-resolves every line against the catalog,
// and persists a denormalized snapshot. Any missing or unavailable item
// rejects the whole order; there are no partial orders.
func (b *Builder) Create(ctx context.Context, in CreateInput) (*CreateResult, error) {
	if !in.OrderType.Valid() {
		return nil, apperr.Validationf("invalid orderType: %s", in.OrderType)
	}
	if strings.TrimSpace(in.Customer.Name) == "" {
		return nil, apperr.Validationf("customer name is required")
	}
	if strings.TrimSpace(in.Customer.Phone) == "" {
		return nil, apperr.Validationf("customer phone is required")
	}
	if in.OrderType == models.OrderTypeDelivery && strings.TrimSpace(in.Customer.Address) == "" {
		return nil, apperr.Validationf("delivery orders require an address")
	}
	if len(in.Lines) == 0 {
		return nil, apperr.Validationf("order must have at least one line")
	}
	for _, line := range in.Lines {
		if line.MenuItemID == "" {
			return nil, apperr.Validationf("menuItemId is required on every line")
		}
		if line.Qty < 1 {
			return nil, apperr.Validationf("qty must be at least 1")
		}
	}

	var subtotal int64
	lines := make([]models.OrderLine, 0, len(in.Lines))
	for _, line := range in.Lines {
		item, err := catalog.Resolve(ctx, b.catalog, line.MenuItemID)
		if err != nil {
			return nil, err
		}
		if !item.IsAvailable {
			return nil, apperr.Unavailable(item.Name)
		}

		options := sortedCopy(line.SelectedOptions)
		unitPrice := catalog.UnitPrice(item, options)
		lineTotal := unitPrice * int64(line.Qty)
		subtotal += lineTotal

		lines = append(lines, models.OrderLine{
			MenuItemID:      item.ID.Hex(),
			Name:            item.Name,
			Qty:             line.Qty,
			UnitPrice:       unitPrice,
			SelectedOptions: options,
			LineTotal:       lineTotal,
		})
	}

	now := time.Now().UTC()
	number, err := b.nextNumber(ctx, now)
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		OrderNumber: number,
		Status:      models.OrderStatusReceived,
		OrderType:   in.OrderType,
		Customer: models.Customer{
			Name:    strings.TrimSpace(in.Customer.Name),
			Phone:   strings.TrimSpace(in.Customer.Phone),
			Address: strings.TrimSpace(in.Customer.Address),
		},
		Lines:     lines,
		Subtotal:  subtotal,
		Total:     subtotal,
		Notes:     strings.TrimSpace(in.Notes),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := b.orders.Insert(ctx, order); err != nil {
		return nil, err
	}

	b.logger.Info("order created",
		zap.String("order_number", order.OrderNumber),
		zap.String("order_type", string(order.OrderType)),
		zap.Int64("total", order.Total))

	return &CreateResult{
		OrderID:     order.ID.Hex(),
		OrderNumber: order.OrderNumber,
		Status:      order.Status,
		Total:       order.Total,
	}, nil
}

// nextNumber generates SC-YYYYMMDD-NNNNN, retrying a bounded number of times
// on collision. After the last attempt the candidate is used regardless; the
// residual collision risk is accepted and the unique index has the final say.
func (b *Builder) nextNumber(ctx context.Context, now time.Time) (string, error) {
	var number string
	for i := 0; i < numberAttempts; i++ {
		number = fmt.Sprintf("SC-%s-%05d", now.Format("20060102"), rand.Intn(100000))
		exists, err := b.orders.ExistsByNumber(ctx, number)
		if err != nil {
			return "", err
		}
		if !exists {
			return number, nil
		}
		b.logger.Warn("order number collision", zap.String("order_number", number))
	}
	return number, nil
}

// GetByNumber returns one order snapshot.
func (b *Builder) GetByNumber(ctx context.Context, number string) (*models.Order, error) {
	order, err := b.orders.FindByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, apperr.NotFound("order", number)
	}
	return order, nil
}

// ListRecent returns the newest orders, bounded.
func (b *Builder) ListRecent(ctx context.Context, limit int64) ([]models.Order, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	return b.orders.ListRecent(ctx, limit)
}

// UpdateStatus moves an order to a new status. The snapshot itself stays
// immutable; only the status and updatedAt change.
func (b *Builder) UpdateStatus(ctx context.Context, number string, status models.OrderStatus) (*models.Order, error) {
	if !status.Valid() {
		return nil, apperr.Validationf("invalid status: %s", status)
	}
	order, err := b.orders.UpdateStatus(ctx, number, status)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, apperr.NotFound("order", number)
	}
	return order, nil
}

func sortedCopy(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	sort.Strings(out)
	return out
}
