package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	contractx "github.com/saveurlabs/saveur-agent/agent/contract"
)

type PostgresConfig struct {
	DSN     string        `envconfig:"DSN" split_words:"true" required:"true"`
	Timeout time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"10s"`
}

type orderRow struct {
	bun.BaseModel `bun:"table:orders,alias:o"`

	ID           string    `bun:"id,pk"`
	BusinessID   string    `bun:"business_id"`
	SessionID    string    `bun:"session_id,nullzero"`
	CustomerName string    `bun:"customer_name,nullzero"`
	Phone        string    `bun:"phone,nullzero"`
	Notes        string    `bun:"notes,nullzero"`
	Total        float64   `bun:"total"`
	Status       string    `bun:"status"`
	CreatedAt    time.Time `bun:"created_at"`
}

type orderItemRow struct {
	bun.BaseModel `bun:"table:order_items,alias:oi"`

	ID         string  `bun:"id,pk"`
	OrderID    string  `bun:"order_id"`
	MenuItemID string  `bun:"menu_item_id,nullzero"`
	Name       string  `bun:"name"`
	Quantity   int     `bun:"quantity"`
	UnitPrice  float64 `bun:"unit_price"`
}

// PostgresPlacer writes confirmed orders to Postgres. Unlike menu reads,
// placement is not fail-open: a lost order is worse than a retried one, so
// errors propagate to the caller.
type PostgresPlacer struct {
	db      *bun.DB
	timeout time.Duration
	now     func() time.Time
}

func NewPostgresPlacer(cfg PostgresConfig) (*PostgresPlacer, error) {
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return nil, errors.New("postgres dsn is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())

	return &PostgresPlacer{db: db, timeout: timeout, now: time.Now}, nil
}

// NewPlacerWithDB wraps an existing bun.DB, for tests and shared pools.
func NewPlacerWithDB(db *bun.DB) *PostgresPlacer {
	return &PostgresPlacer{db: db, timeout: 10 * time.Second, now: time.Now}
}

func (p *PostgresPlacer) CreateOrder(ctx context.Context, order contractx.Order) (string, error) {
	if strings.TrimSpace(order.BusinessID) == "" {
		return "", fmt.Errorf("%w: order business id is required", contractx.ErrValidation)
	}
	if len(order.Items) == 0 {
		return "", fmt.Errorf("%w: order has no items", contractx.ErrValidation)
	}
	for _, item := range order.Items {
		if strings.TrimSpace(item.Name) == "" {
			return "", fmt.Errorf("%w: order item name is required", contractx.ErrValidation)
		}
		if item.Quantity <= 0 {
			return "", fmt.Errorf("%w: order item quantity must be positive", contractx.ErrValidation)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	orderID := uuid.NewString()
	row := orderRow{
		ID:           orderID,
		BusinessID:   order.BusinessID,
		SessionID:    order.SessionID,
		CustomerName: order.Customer.Name,
		Phone:        order.Customer.Phone,
		Notes:        order.Customer.Notes,
		Total:        orderTotal(order.Items),
		Status:       "pending",
		CreatedAt:    p.now().UTC(),
	}

	itemRows := make([]orderItemRow, 0, len(order.Items))
	for _, item := range order.Items {
		itemRows = append(itemRows, orderItemRow{
			ID:         uuid.NewString(),
			OrderID:    orderID,
			MenuItemID: item.MenuItemID,
			Name:       item.Name,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice,
		})
	}

	err := p.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(&row).Exec(ctx); err != nil {
			return fmt.Errorf("insert order: %w", err)
		}
		if _, err := tx.NewInsert().Model(&itemRows).Exec(ctx); err != nil {
			return fmt.Errorf("insert order items: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	log.Info().
		Str("order_id", orderID).
		Str("business_id", order.BusinessID).
		Int("items", len(order.Items)).
		Float64("total", row.Total).
		Msg("order placed")
	return orderID, nil
}

func orderTotal(items []contractx.OrderItem) float64 {
	var total float64
	for _, item := range items {
		total += item.UnitPrice * float64(item.Quantity)
	}
	return total
}
