package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kiwari-pos/cafe/internal/auth"
	"github.com/kiwari-pos/cafe/internal/config"
	"github.com/kiwari-pos/cafe/internal/database"
	"github.com/kiwari-pos/cafe/internal/enum"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// seedFile is the catalog file layout. Discounts are referenced by name.
type seedFile struct {
	Outlet struct {
		Name    string `yaml:"name"`
		Address string `yaml:"address"`
		Phone   string `yaml:"phone"`
	} `yaml:"outlet"`
	Tax       *seedRate      `yaml:"tax"`
	Gratuity  *seedRate      `yaml:"gratuity"`
	Discounts []seedDiscount `yaml:"discounts"`
	Modifiers []string       `yaml:"modifier_categories"`
	Menu      []seedMenuItem `yaml:"menu"`
}

type seedRate struct {
	Name       string          `yaml:"name"`
	Percentage decimal.Decimal `yaml:"percentage"`
}

type seedDiscount struct {
	Name  string          `yaml:"name"`
	Kind  string          `yaml:"kind"`
	Scope string          `yaml:"scope"`
	Value decimal.Decimal `yaml:"value"`
}

type seedMenuItem struct {
	Name      string          `yaml:"name"`
	Category  string          `yaml:"category"`
	Price     decimal.Decimal `yaml:"price"`
	Discount  string          `yaml:"discount"`
	Modifiers []seedModifier  `yaml:"modifiers"`
}

type seedModifier struct {
	Category string          `yaml:"category"`
	Name     string          `yaml:"name"`
	Price    decimal.Decimal `yaml:"price"`
}

func main() {
	file := flag.String("file", "cmd/seed/catalog.yaml", "Catalog YAML file")
	tokenTTL := flag.Duration("token-ttl", 24*time.Hour, "Lifetime of the printed dev token")
	flag.Parse()

	cfg := config.Load()

	data, err := os.ReadFile(*file)
	if err != nil {
		log.Fatalf("Failed to read %s: %v", *file, err)
	}

	var seed seedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		log.Fatalf("Failed to parse %s: %v", *file, err)
	}

	// Connect to database
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("Unable to ping database: %v", err)
	}
	log.Println("Connected to database")

	// Seed in a transaction: the whole catalog or nothing
	tx, err := pool.Begin(ctx)
	if err != nil {
		log.Fatalf("Failed to begin transaction: %v", err)
	}
	defer tx.Rollback(ctx)

	outletID, err := seedCatalog(ctx, database.New(tx), &seed)
	if err != nil {
		log.Fatalf("Failed to seed catalog: %v", err)
	}

	if err := tx.Commit(ctx); err != nil {
		log.Fatalf("Failed to commit: %v", err)
	}

	token, err := auth.GenerateToken(cfg.JWTSecret, uuid.New(), outletID, enum.UserRoleOwner, *tokenTTL)
	if err != nil {
		log.Fatalf("Failed to sign dev token: %v", err)
	}

	log.Println("Seed completed successfully")
	log.Printf("Outlet ID: %s", outletID)
	fmt.Println(token)
}

func seedCatalog(ctx context.Context, q *database.Queries, seed *seedFile) (uuid.UUID, error) {
	outlet, err := q.CreateOutlet(ctx, database.CreateOutletParams{
		Name:    seed.Outlet.Name,
		Address: optionalText(seed.Outlet.Address),
		Phone:   optionalText(seed.Outlet.Phone),
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert outlet: %w", err)
	}
	log.Printf("Created outlet '%s' (ID: %s)", outlet.Name, outlet.ID)

	discounts := make(map[string]uuid.UUID, len(seed.Discounts))
	for _, d := range seed.Discounts {
		row, err := q.CreateDiscount(ctx, database.CreateDiscountParams{
			OutletID: outlet.ID,
			Name:     d.Name,
			Kind:     d.Kind,
			Scope:    d.Scope,
			Value:    database.ToNumeric(d.Value),
			IsActive: true,
		})
		if err != nil {
			return uuid.Nil, fmt.Errorf("insert discount %s: %w", d.Name, err)
		}
		discounts[d.Name] = row.ID
	}

	categories := make(map[string]uuid.UUID, len(seed.Modifiers))
	for i, name := range seed.Modifiers {
		row, err := q.CreateModifierCategory(ctx, database.CreateModifierCategoryParams{
			OutletID:  outlet.ID,
			Name:      name,
			SortOrder: int32(i),
		})
		if err != nil {
			return uuid.Nil, fmt.Errorf("insert modifier category %s: %w", name, err)
		}
		categories[name] = row.ID
	}

	for i, it := range seed.Menu {
		var discountID pgtype.UUID
		if it.Discount != "" {
			id, ok := discounts[it.Discount]
			if !ok {
				return uuid.Nil, fmt.Errorf("menu item %s: unknown discount %q", it.Name, it.Discount)
			}
			discountID = pgtype.UUID{Bytes: id, Valid: true}
		}

		item, err := q.CreateMenuItem(ctx, database.CreateMenuItemParams{
			OutletID:   outlet.ID,
			Name:       it.Name,
			Category:   it.Category,
			Price:      database.ToNumeric(it.Price),
			DiscountID: discountID,
			SortOrder:  int32(i),
		})
		if err != nil {
			return uuid.Nil, fmt.Errorf("insert menu item %s: %w", it.Name, err)
		}

		for _, m := range it.Modifiers {
			categoryID, ok := categories[m.Category]
			if !ok {
				return uuid.Nil, fmt.Errorf("modifier %s: unknown category %q", m.Name, m.Category)
			}
			if _, err := q.CreateModifier(ctx, database.CreateModifierParams{
				MenuItemID: item.ID,
				CategoryID: categoryID,
				Name:       m.Name,
				Price:      database.ToNumeric(m.Price),
			}); err != nil {
				return uuid.Nil, fmt.Errorf("insert modifier %s: %w", m.Name, err)
			}
		}
	}
	log.Printf("Created %d menu items", len(seed.Menu))

	if err := createSeedRate(ctx, q, outlet.ID, enum.RateKindTax, seed.Tax); err != nil {
		return uuid.Nil, err
	}
	if err := createSeedRate(ctx, q, outlet.ID, enum.RateKindGratuity, seed.Gratuity); err != nil {
		return uuid.Nil, err
	}

	return outlet.ID, nil
}

// createSeedRate creates the rate as the active one of its kind. A nil rate is skipped.
func createSeedRate(ctx context.Context, q *database.Queries, outletID uuid.UUID, kind string, r *seedRate) error {
	if r == nil {
		return nil
	}

	if _, err := q.CreateRate(ctx, database.CreateRateParams{
		OutletID:   outletID,
		Kind:       kind,
		Name:       r.Name,
		Percentage: database.ToNumeric(r.Percentage),
		IsActive:   true,
	}); err != nil {
		return fmt.Errorf("insert %s rate: %w", kind, err)
	}
	return nil
}

func optionalText(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: s != ""}
}
