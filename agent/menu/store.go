package menu

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

type PostgresConfig struct {
	DSN     string        `envconfig:"DSN" split_words:"true" required:"true"`
	Timeout time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"10s"`
}

type menuItemRow struct {
	bun.BaseModel `bun:"table:menu_items,alias:mi"`

	ID          string   `bun:"id,pk"`
	BusinessID  string   `bun:"business_id"`
	Name        string   `bun:"name"`
	Price       float64  `bun:"price"`
	Description string   `bun:"description"`
	Category    string   `bun:"category"`
	Available   bool     `bun:"available"`
	Allergens   []string `bun:"allergens,array"`
	DietaryInfo string   `bun:"dietary_info"`
}

type businessRow struct {
	bun.BaseModel `bun:"table:businesses,alias:b"`

	ID          string `bun:"id,pk"`
	Name        string `bun:"name"`
	Description string `bun:"description"`
	CuisineType string `bun:"cuisine_type"`
}

// PostgresCatalog reads the authoritative menu from Postgres. Per the
// fail-open policy, every read error degrades to an empty snapshot instead
// of propagating, so transient DB trouble never blocks conversation.
type PostgresCatalog struct {
	db      *bun.DB
	timeout time.Duration
}

func NewPostgresCatalog(cfg PostgresConfig) (*PostgresCatalog, error) {
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

	return &PostgresCatalog{db: db, timeout: timeout}, nil
}

// NewCatalogWithDB wraps an existing bun.DB, for tests and shared pools.
func NewCatalogWithDB(db *bun.DB) *PostgresCatalog {
	return &PostgresCatalog{db: db, timeout: 10 * time.Second}
}

func (c *PostgresCatalog) GetMenu(ctx context.Context, businessID string) (*Snapshot, error) {
	snap := &Snapshot{BusinessID: businessID}
	if strings.TrimSpace(businessID) == "" {
		return snap, nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var rows []menuItemRow
	err := c.db.NewSelect().
		Model(&rows).
		Where("mi.business_id = ?", businessID).
		Where("mi.available = TRUE").
		Order("mi.category ASC", "mi.name ASC").
		Scan(ctx)
	if err != nil {
		log.Warn().Err(err).Str("business_id", businessID).
			Msg("menu fetch failed, returning empty snapshot")
		return snap, nil
	}

	snap.Categories = groupByCategory(rows)
	snap.Business = c.businessInfo(ctx, businessID)
	return snap, nil
}

func (c *PostgresCatalog) businessInfo(ctx context.Context, businessID string) BusinessInfo {
	info := BusinessInfo{
		Name:        "Unknown",
		CuisineType: "Various",
		Description: "No description available",
	}

	var row businessRow
	err := c.db.NewSelect().
		Model(&row).
		Where("b.id = ?", businessID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		log.Warn().Err(err).Str("business_id", businessID).Msg("business info fetch failed")
		return info
	}

	if strings.TrimSpace(row.Name) != "" {
		info.Name = row.Name
	}
	if strings.TrimSpace(row.CuisineType) != "" {
		info.CuisineType = row.CuisineType
	}
	if strings.TrimSpace(row.Description) != "" {
		info.Description = row.Description
	}
	return info
}

func groupByCategory(rows []menuItemRow) []Category {
	byCategory := make(map[string][]Item)
	var order []string
	for _, r := range rows {
		category := strings.TrimSpace(r.Category)
		if category == "" {
			category = "Other"
		}
		if _, seen := byCategory[category]; !seen {
			order = append(order, category)
		}
		description := r.Description
		if strings.TrimSpace(description) == "" {
			description = "No description available"
		}
		byCategory[category] = append(byCategory[category], Item{
			ID:          r.ID,
			Name:        r.Name,
			Price:       r.Price,
			Description: description,
			Available:   r.Available,
			Allergens:   r.Allergens,
			DietaryInfo: r.DietaryInfo,
		})
	}

	sort.Strings(order)

	categories := make([]Category, 0, len(order))
	for _, name := range order {
		categories = append(categories, Category{Name: name, Items: byCategory[name]})
	}
	return categories
}
