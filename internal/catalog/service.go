package catalog

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/kiwari-pos/cafe/internal/database"
	"github.com/kiwari-pos/cafe/internal/enum"
	"github.com/shopspring/decimal"
)

// Errors returned by the catalog service.
var (
	ErrNotFound             = errors.New("catalog entry not found")
	ErrNameRequired         = errors.New("name is required")
	ErrCategoryRequired     = errors.New("category is required")
	ErrInvalidPrice         = errors.New("price must be >= 0")
	ErrInvalidDiscountKind  = errors.New("kind must be PERCENTAGE or FIXED")
	ErrInvalidDiscountScope = errors.New("scope must be MENU or TOTAL")
	ErrInvalidDiscountValue = errors.New("invalid discount value")
	ErrNotMenuDiscount      = errors.New("menu items only take MENU discounts")
	ErrInvalidPercentage    = errors.New("percentage must be between 0 and 100")
	ErrRateAlreadyActive    = errors.New("another rate of this kind is already active")
)

var hundred = decimal.NewFromInt(100)

// Store defines the DB methods the catalog needs.
// Satisfied by *database.Queries.
type Store interface {
	ListMenuItems(ctx context.Context, outletID uuid.UUID) ([]database.MenuItem, error)
	GetMenuItem(ctx context.Context, arg database.GetMenuItemParams) (database.MenuItem, error)
	CreateMenuItem(ctx context.Context, arg database.CreateMenuItemParams) (database.MenuItem, error)
	UpdateMenuItem(ctx context.Context, arg database.UpdateMenuItemParams) (database.MenuItem, error)
	DeactivateMenuItem(ctx context.Context, arg database.DeactivateMenuItemParams) (uuid.UUID, error)
	ListModifierCategories(ctx context.Context, outletID uuid.UUID) ([]database.ModifierCategory, error)
	GetModifierCategory(ctx context.Context, arg database.GetModifierCategoryParams) (database.ModifierCategory, error)
	CreateModifierCategory(ctx context.Context, arg database.CreateModifierCategoryParams) (database.ModifierCategory, error)
	ListModifiersByOutlet(ctx context.Context, outletID uuid.UUID) ([]database.Modifier, error)
	CreateModifier(ctx context.Context, arg database.CreateModifierParams) (database.Modifier, error)
	ListActiveDiscounts(ctx context.Context, outletID uuid.UUID) ([]database.Discount, error)
	GetDiscount(ctx context.Context, arg database.GetDiscountParams) (database.Discount, error)
	CreateDiscount(ctx context.Context, arg database.CreateDiscountParams) (database.Discount, error)
	SetDiscountActive(ctx context.Context, arg database.SetDiscountActiveParams) (database.Discount, error)
	ListActiveRates(ctx context.Context, outletID uuid.UUID) ([]database.Rate, error)
	GetActiveRate(ctx context.Context, arg database.GetActiveRateParams) (database.Rate, error)
	CreateRate(ctx context.Context, arg database.CreateRateParams) (database.Rate, error)
	SetRateActive(ctx context.Context, arg database.SetRateActiveParams) (database.Rate, error)
}

// Service reads snapshots through the cache and invalidates it on writes.
type Service struct {
	store Store
	cache Cache // nil disables caching
}

// NewService creates a catalog Service. cache may be nil.
func NewService(store Store, cache Cache) *Service {
	return &Service{store: store, cache: cache}
}

// Snapshot returns the outlet's current catalog. Cache failures fall back to
// the database.
func (s *Service) Snapshot(ctx context.Context, outletID uuid.UUID) (*Snapshot, error) {
	if s.cache != nil {
		snap, err := s.cache.Get(ctx, outletID)
		if err != nil {
			log.Printf("WARN: catalog cache get %s: %v", outletID, err)
		} else if snap != nil {
			return snap, nil
		}
	}

	snap, err := s.load(ctx, outletID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, snap); err != nil {
			log.Printf("WARN: catalog cache set %s: %v", outletID, err)
		}
	}
	return snap, nil
}

func (s *Service) load(ctx context.Context, outletID uuid.UUID) (*Snapshot, error) {
	items, err := s.store.ListMenuItems(ctx, outletID)
	if err != nil {
		return nil, fmt.Errorf("list menu items: %w", err)
	}
	mods, err := s.store.ListModifiersByOutlet(ctx, outletID)
	if err != nil {
		return nil, fmt.Errorf("list modifiers: %w", err)
	}
	cats, err := s.store.ListModifierCategories(ctx, outletID)
	if err != nil {
		return nil, fmt.Errorf("list modifier categories: %w", err)
	}
	discounts, err := s.store.ListActiveDiscounts(ctx, outletID)
	if err != nil {
		return nil, fmt.Errorf("list discounts: %w", err)
	}
	rates, err := s.store.ListActiveRates(ctx, outletID)
	if err != nil {
		return nil, fmt.Errorf("list rates: %w", err)
	}
	return Assemble(outletID, items, mods, cats, discounts, rates), nil
}

func (s *Service) invalidate(ctx context.Context, outletID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, outletID); err != nil {
		log.Printf("WARN: catalog cache delete %s: %v", outletID, err)
	}
}

// --- Menu items ---

// MenuItemInput is the writable part of a menu item.
type MenuItemInput struct {
	Name       string
	Category   string
	Price      decimal.Decimal
	DiscountID *uuid.UUID
	SortOrder  int32
}

func (s *Service) validateMenuItem(ctx context.Context, outletID uuid.UUID, in MenuItemInput) (pgtype.UUID, error) {
	if strings.TrimSpace(in.Name) == "" {
		return pgtype.UUID{}, ErrNameRequired
	}
	if strings.TrimSpace(in.Category) == "" {
		return pgtype.UUID{}, ErrCategoryRequired
	}
	if in.Price.IsNegative() {
		return pgtype.UUID{}, ErrInvalidPrice
	}
	if in.DiscountID == nil {
		return pgtype.UUID{}, nil
	}

	d, err := s.store.GetDiscount(ctx, database.GetDiscountParams{ID: *in.DiscountID, OutletID: outletID})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return pgtype.UUID{}, ErrNotFound
		}
		return pgtype.UUID{}, fmt.Errorf("get discount: %w", err)
	}
	if d.Scope != enum.DiscountScopeMenu {
		return pgtype.UUID{}, ErrNotMenuDiscount
	}
	return pgtype.UUID{Bytes: d.ID, Valid: true}, nil
}

// CreateMenuItem adds a menu item. An attached discount must be a MENU
// discount of the same outlet.
func (s *Service) CreateMenuItem(ctx context.Context, outletID uuid.UUID, in MenuItemInput) (database.MenuItem, error) {
	discountID, err := s.validateMenuItem(ctx, outletID, in)
	if err != nil {
		return database.MenuItem{}, err
	}

	item, err := s.store.CreateMenuItem(ctx, database.CreateMenuItemParams{
		OutletID:   outletID,
		Name:       strings.TrimSpace(in.Name),
		Category:   strings.TrimSpace(in.Category),
		Price:      database.ToNumeric(in.Price),
		DiscountID: discountID,
		SortOrder:  in.SortOrder,
	})
	if err != nil {
		return database.MenuItem{}, fmt.Errorf("create menu item: %w", err)
	}
	s.invalidate(ctx, outletID)
	return item, nil
}

// UpdateMenuItem replaces a menu item's writable fields.
func (s *Service) UpdateMenuItem(ctx context.Context, outletID, id uuid.UUID, in MenuItemInput) (database.MenuItem, error) {
	discountID, err := s.validateMenuItem(ctx, outletID, in)
	if err != nil {
		return database.MenuItem{}, err
	}

	item, err := s.store.UpdateMenuItem(ctx, database.UpdateMenuItemParams{
		ID:         id,
		OutletID:   outletID,
		Name:       strings.TrimSpace(in.Name),
		Category:   strings.TrimSpace(in.Category),
		Price:      database.ToNumeric(in.Price),
		DiscountID: discountID,
		SortOrder:  in.SortOrder,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.MenuItem{}, ErrNotFound
		}
		return database.MenuItem{}, fmt.Errorf("update menu item: %w", err)
	}
	s.invalidate(ctx, outletID)
	return item, nil
}

// DeactivateMenuItem hides a menu item. Placed orders keep their own copy of
// its price.
func (s *Service) DeactivateMenuItem(ctx context.Context, outletID, id uuid.UUID) error {
	_, err := s.store.DeactivateMenuItem(ctx, database.DeactivateMenuItemParams{ID: id, OutletID: outletID})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("deactivate menu item: %w", err)
	}
	s.invalidate(ctx, outletID)
	return nil
}

// --- Modifiers ---

// CreateModifierCategory adds a modifier category such as "Size" or "Sugar".
func (s *Service) CreateModifierCategory(ctx context.Context, outletID uuid.UUID, name string, sortOrder int32) (database.ModifierCategory, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return database.ModifierCategory{}, ErrNameRequired
	}
	cat, err := s.store.CreateModifierCategory(ctx, database.CreateModifierCategoryParams{
		OutletID:  outletID,
		Name:      name,
		SortOrder: sortOrder,
	})
	if err != nil {
		return database.ModifierCategory{}, fmt.Errorf("create modifier category: %w", err)
	}
	s.invalidate(ctx, outletID)
	return cat, nil
}

// ModifierInput is the writable part of a modifier.
type ModifierInput struct {
	CategoryID uuid.UUID
	Name       string
	Price      decimal.Decimal
}

// CreateModifier offers a paid add-on on a menu item. The item and the
// category must both belong to the outlet.
func (s *Service) CreateModifier(ctx context.Context, outletID, menuItemID uuid.UUID, in ModifierInput) (database.Modifier, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return database.Modifier{}, ErrNameRequired
	}
	if in.Price.IsNegative() {
		return database.Modifier{}, ErrInvalidPrice
	}

	if _, err := s.store.GetMenuItem(ctx, database.GetMenuItemParams{ID: menuItemID, OutletID: outletID}); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Modifier{}, ErrNotFound
		}
		return database.Modifier{}, fmt.Errorf("get menu item: %w", err)
	}
	if _, err := s.store.GetModifierCategory(ctx, database.GetModifierCategoryParams{ID: in.CategoryID, OutletID: outletID}); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Modifier{}, ErrNotFound
		}
		return database.Modifier{}, fmt.Errorf("get modifier category: %w", err)
	}

	mod, err := s.store.CreateModifier(ctx, database.CreateModifierParams{
		MenuItemID: menuItemID,
		CategoryID: in.CategoryID,
		Name:       name,
		Price:      database.ToNumeric(in.Price),
	})
	if err != nil {
		return database.Modifier{}, fmt.Errorf("create modifier: %w", err)
	}
	s.invalidate(ctx, outletID)
	return mod, nil
}

// --- Discounts ---

// DiscountInput is a new discount.
type DiscountInput struct {
	Name   string
	Kind   string
	Scope  string
	Value  decimal.Decimal
	Active bool
}

// CreateDiscount adds a MENU or TOTAL discount. Percentages are limited to
// 0..100; fixed amounts to >= 0.
func (s *Service) CreateDiscount(ctx context.Context, outletID uuid.UUID, in DiscountInput) (database.Discount, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return database.Discount{}, ErrNameRequired
	}
	switch in.Kind {
	case enum.DiscountKindPercentage:
		if in.Value.IsNegative() || in.Value.GreaterThan(hundred) {
			return database.Discount{}, ErrInvalidDiscountValue
		}
	case enum.DiscountKindFixed:
		if in.Value.IsNegative() {
			return database.Discount{}, ErrInvalidDiscountValue
		}
	default:
		return database.Discount{}, ErrInvalidDiscountKind
	}
	if in.Scope != enum.DiscountScopeMenu && in.Scope != enum.DiscountScopeTotal {
		return database.Discount{}, ErrInvalidDiscountScope
	}

	d, err := s.store.CreateDiscount(ctx, database.CreateDiscountParams{
		OutletID: outletID,
		Name:     name,
		Kind:     in.Kind,
		Scope:    in.Scope,
		Value:    database.ToNumeric(in.Value),
		IsActive: in.Active,
	})
	if err != nil {
		return database.Discount{}, fmt.Errorf("create discount: %w", err)
	}
	s.invalidate(ctx, outletID)
	return d, nil
}

// SetDiscountActive toggles a discount. Any number of discounts may be active.
func (s *Service) SetDiscountActive(ctx context.Context, outletID, id uuid.UUID, active bool) (database.Discount, error) {
	d, err := s.store.SetDiscountActive(ctx, database.SetDiscountActiveParams{
		ID:       id,
		OutletID: outletID,
		IsActive: active,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Discount{}, ErrNotFound
		}
		return database.Discount{}, fmt.Errorf("set discount active: %w", err)
	}
	s.invalidate(ctx, outletID)
	return d, nil
}

// --- Tax and gratuity ---

// RateInput is a new tax or gratuity.
type RateInput struct {
	Name       string
	Percentage decimal.Decimal
	Active     bool
}

// CreateRate adds a tax or gratuity. An active rate is rejected with
// ErrRateAlreadyActive while another rate of the same kind is active, and
// nothing is stored.
func (s *Service) CreateRate(ctx context.Context, outletID uuid.UUID, kind string, in RateInput) (database.Rate, error) {
	if kind != enum.RateKindTax && kind != enum.RateKindGratuity {
		return database.Rate{}, fmt.Errorf("unknown rate kind %q", kind)
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return database.Rate{}, ErrNameRequired
	}
	if in.Percentage.IsNegative() || in.Percentage.GreaterThan(hundred) {
		return database.Rate{}, ErrInvalidPercentage
	}

	if in.Active {
		if err := s.checkNoActiveRate(ctx, outletID, kind, uuid.Nil); err != nil {
			return database.Rate{}, err
		}
	}

	rate, err := s.store.CreateRate(ctx, database.CreateRateParams{
		OutletID:   outletID,
		Kind:       kind,
		Name:       name,
		Percentage: database.ToNumeric(in.Percentage),
		IsActive:   in.Active,
	})
	if err != nil {
		if isActiveRateConflict(err) {
			return database.Rate{}, ErrRateAlreadyActive
		}
		return database.Rate{}, fmt.Errorf("create rate: %w", err)
	}
	if rate.IsActive {
		s.invalidate(ctx, outletID)
	}
	return rate, nil
}

// SetRateActive toggles a tax or gratuity. At most one rate of each kind is
// active per outlet: activating a second one fails with ErrRateAlreadyActive
// until the first is deactivated.
func (s *Service) SetRateActive(ctx context.Context, outletID uuid.UUID, kind string, id uuid.UUID, active bool) (database.Rate, error) {
	if active {
		if err := s.checkNoActiveRate(ctx, outletID, kind, id); err != nil {
			return database.Rate{}, err
		}
	}

	rate, err := s.store.SetRateActive(ctx, database.SetRateActiveParams{
		ID:       id,
		OutletID: outletID,
		Kind:     kind,
		IsActive: active,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Rate{}, ErrNotFound
		}
		if isActiveRateConflict(err) {
			return database.Rate{}, ErrRateAlreadyActive
		}
		return database.Rate{}, fmt.Errorf("set rate active: %w", err)
	}
	s.invalidate(ctx, outletID)
	return rate, nil
}

// checkNoActiveRate fails with ErrRateAlreadyActive when a rate of kind other
// than id is active.
func (s *Service) checkNoActiveRate(ctx context.Context, outletID uuid.UUID, kind string, id uuid.UUID) error {
	current, err := s.store.GetActiveRate(ctx, database.GetActiveRateParams{OutletID: outletID, Kind: kind})
	switch {
	case err == nil && current.ID != id:
		return ErrRateAlreadyActive
	case err != nil && !errors.Is(err, pgx.ErrNoRows):
		return fmt.Errorf("get active rate: %w", err)
	}
	return nil
}

// isActiveRateConflict reports a race lost against another activation,
// caught by the partial unique index on active rates.
func isActiveRateConflict(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && pgErr.ConstraintName == "rates_one_active_per_kind"
	}
	return false
}
