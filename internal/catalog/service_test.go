package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/kiwari-pos/cafe/internal/database"
	"github.com/kiwari-pos/cafe/internal/enum"
	"github.com/shopspring/decimal"
)

// --- Mocks ---

// mockStore embeds Store so calls to methods a test did not set up panic.
type mockStore struct {
	Store

	listMenuItemsFn      func(ctx context.Context, outletID uuid.UUID) ([]database.MenuItem, error)
	createMenuItemFn     func(ctx context.Context, arg database.CreateMenuItemParams) (database.MenuItem, error)
	getDiscountFn        func(ctx context.Context, arg database.GetDiscountParams) (database.Discount, error)
	createDiscountFn     func(ctx context.Context, arg database.CreateDiscountParams) (database.Discount, error)
	getActiveRateFn      func(ctx context.Context, arg database.GetActiveRateParams) (database.Rate, error)
	createRateFn         func(ctx context.Context, arg database.CreateRateParams) (database.Rate, error)
	setRateActiveFn      func(ctx context.Context, arg database.SetRateActiveParams) (database.Rate, error)
	deactivateMenuItemFn func(ctx context.Context, arg database.DeactivateMenuItemParams) (uuid.UUID, error)

	modifiers  []database.Modifier
	categories []database.ModifierCategory
	discounts  []database.Discount
	rates      []database.Rate
}

func (m *mockStore) ListMenuItems(ctx context.Context, outletID uuid.UUID) ([]database.MenuItem, error) {
	return m.listMenuItemsFn(ctx, outletID)
}
func (m *mockStore) ListModifiersByOutlet(ctx context.Context, outletID uuid.UUID) ([]database.Modifier, error) {
	return m.modifiers, nil
}
func (m *mockStore) ListModifierCategories(ctx context.Context, outletID uuid.UUID) ([]database.ModifierCategory, error) {
	return m.categories, nil
}
func (m *mockStore) ListActiveDiscounts(ctx context.Context, outletID uuid.UUID) ([]database.Discount, error) {
	return m.discounts, nil
}
func (m *mockStore) ListActiveRates(ctx context.Context, outletID uuid.UUID) ([]database.Rate, error) {
	return m.rates, nil
}
func (m *mockStore) CreateMenuItem(ctx context.Context, arg database.CreateMenuItemParams) (database.MenuItem, error) {
	return m.createMenuItemFn(ctx, arg)
}
func (m *mockStore) DeactivateMenuItem(ctx context.Context, arg database.DeactivateMenuItemParams) (uuid.UUID, error) {
	return m.deactivateMenuItemFn(ctx, arg)
}
func (m *mockStore) GetDiscount(ctx context.Context, arg database.GetDiscountParams) (database.Discount, error) {
	return m.getDiscountFn(ctx, arg)
}
func (m *mockStore) CreateDiscount(ctx context.Context, arg database.CreateDiscountParams) (database.Discount, error) {
	return m.createDiscountFn(ctx, arg)
}
func (m *mockStore) GetActiveRate(ctx context.Context, arg database.GetActiveRateParams) (database.Rate, error) {
	return m.getActiveRateFn(ctx, arg)
}
func (m *mockStore) CreateRate(ctx context.Context, arg database.CreateRateParams) (database.Rate, error) {
	return m.createRateFn(ctx, arg)
}
func (m *mockStore) SetRateActive(ctx context.Context, arg database.SetRateActiveParams) (database.Rate, error) {
	return m.setRateActiveFn(ctx, arg)
}

// mockCache is an in-memory Cache that counts calls.
type mockCache struct {
	snaps   map[uuid.UUID]*Snapshot
	getErr  error
	gets    int
	sets    int
	deletes int
}

func newMockCache() *mockCache {
	return &mockCache{snaps: make(map[uuid.UUID]*Snapshot)}
}

func (c *mockCache) Get(ctx context.Context, outletID uuid.UUID) (*Snapshot, error) {
	c.gets++
	if c.getErr != nil {
		return nil, c.getErr
	}
	return c.snaps[outletID], nil
}

func (c *mockCache) Set(ctx context.Context, snap *Snapshot) error {
	c.sets++
	c.snaps[snap.OutletID] = snap
	return nil
}

func (c *mockCache) Delete(ctx context.Context, outletID uuid.UUID) error {
	c.deletes++
	delete(c.snaps, outletID)
	return nil
}

// --- Helpers ---

func num(s string) pgtype.Numeric {
	return database.ToNumeric(decimal.RequireFromString(s))
}

func menuItemRow(outletID uuid.UUID, name, price string, discountID *uuid.UUID) database.MenuItem {
	item := database.MenuItem{
		ID:       uuid.New(),
		OutletID: outletID,
		Name:     name,
		Category: "Coffee",
		Price:    num(price),
		IsActive: true,
	}
	if discountID != nil {
		item.DiscountID = pgtype.UUID{Bytes: *discountID, Valid: true}
	}
	return item
}

// --- Snapshot ---

func TestAssemble(t *testing.T) {
	outletID := uuid.New()
	menuDisc := database.Discount{ID: uuid.New(), Name: "Promo 10%", Kind: enum.DiscountKindPercentage, Scope: enum.DiscountScopeMenu, Value: num("10"), IsActive: true}
	totalDisc := database.Discount{ID: uuid.New(), Name: "Member", Kind: enum.DiscountKindFixed, Scope: enum.DiscountScopeTotal, Value: num("5000"), IsActive: true}

	latte := menuItemRow(outletID, "Latte", "20000", &menuDisc.ID)
	tea := menuItemRow(outletID, "Tea", "12000", nil)
	size := database.ModifierCategory{ID: uuid.New(), Name: "Size"}
	large := database.Modifier{ID: uuid.New(), MenuItemID: latte.ID, CategoryID: size.ID, Name: "Large", Price: num("5000"), IsActive: true}
	tax := database.Rate{ID: uuid.New(), Kind: enum.RateKindTax, Name: "PB1", Percentage: num("10"), IsActive: true}

	snap := Assemble(outletID,
		[]database.MenuItem{latte, tea},
		[]database.Modifier{large},
		[]database.ModifierCategory{size},
		[]database.Discount{menuDisc, totalDisc},
		[]database.Rate{tax},
	)

	got, ok := snap.Item(latte.ID)
	if !ok {
		t.Fatal("latte missing from snapshot")
	}
	if got.Discount == nil || got.Discount.ID != menuDisc.ID {
		t.Errorf("latte discount: got %+v", got.Discount)
	}
	if got, _ := snap.Item(tea.ID); got.Discount != nil {
		t.Errorf("tea should have no discount, got %+v", got.Discount)
	}

	if _, ok := snap.Modifier(latte.ID, large.ID); !ok {
		t.Error("large modifier missing on latte")
	}
	if _, ok := snap.Modifier(tea.ID, large.ID); ok {
		t.Error("large modifier should not be offered on tea")
	}

	if _, ok := snap.OrderDiscount(totalDisc.ID); !ok {
		t.Error("TOTAL discount missing")
	}
	if _, ok := snap.OrderDiscount(menuDisc.ID); ok {
		t.Error("MENU discount listed as an order discount")
	}

	rates := snap.Rates()
	if !rates.Tax.Equal(decimal.NewFromInt(10)) || !rates.Gratuity.IsZero() {
		t.Errorf("rates: got tax=%s gratuity=%s", rates.Tax, rates.Gratuity)
	}
}

func TestAssemble_InactiveMenuDiscountNotAttached(t *testing.T) {
	outletID := uuid.New()
	inactive := database.Discount{ID: uuid.New(), Kind: enum.DiscountKindFixed, Scope: enum.DiscountScopeMenu, Value: num("1000"), IsActive: false}
	item := menuItemRow(outletID, "Latte", "20000", &inactive.ID)

	snap := Assemble(outletID, []database.MenuItem{item}, nil, nil, []database.Discount{inactive}, nil)

	if got, _ := snap.Item(item.ID); got.Discount != nil {
		t.Errorf("inactive discount attached: %+v", got.Discount)
	}
}

// --- Service ---

func TestSnapshot_UsesCache(t *testing.T) {
	outletID := uuid.New()
	loads := 0
	store := &mockStore{
		listMenuItemsFn: func(ctx context.Context, oid uuid.UUID) ([]database.MenuItem, error) {
			loads++
			return []database.MenuItem{menuItemRow(oid, "Latte", "20000", nil)}, nil
		},
	}
	cache := newMockCache()
	svc := NewService(store, cache)

	for i := 0; i < 3; i++ {
		snap, err := svc.Snapshot(context.Background(), outletID)
		if err != nil {
			t.Fatalf("snapshot: %v", err)
		}
		if len(snap.Items) != 1 {
			t.Fatalf("items: got %d, want 1", len(snap.Items))
		}
	}
	if loads != 1 {
		t.Errorf("database loads: got %d, want 1", loads)
	}
	if cache.sets != 1 {
		t.Errorf("cache sets: got %d, want 1", cache.sets)
	}
}

func TestSnapshot_CacheErrorFallsBackToStore(t *testing.T) {
	outletID := uuid.New()
	store := &mockStore{
		listMenuItemsFn: func(ctx context.Context, oid uuid.UUID) ([]database.MenuItem, error) {
			return []database.MenuItem{menuItemRow(oid, "Latte", "20000", nil)}, nil
		},
	}
	cache := newMockCache()
	cache.getErr = errors.New("connection refused")

	snap, err := NewService(store, cache).Snapshot(context.Background(), outletID)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if len(snap.Items) != 1 {
		t.Errorf("items: got %d, want 1", len(snap.Items))
	}
}

func TestSnapshot_NilCache(t *testing.T) {
	store := &mockStore{
		listMenuItemsFn: func(ctx context.Context, oid uuid.UUID) ([]database.MenuItem, error) {
			return nil, nil
		},
	}
	if _, err := NewService(store, nil).Snapshot(context.Background(), uuid.New()); err != nil {
		t.Fatalf("snapshot: %v", err)
	}
}

func TestCreateMenuItem_RejectsTotalDiscount(t *testing.T) {
	outletID := uuid.New()
	discountID := uuid.New()
	store := &mockStore{
		getDiscountFn: func(ctx context.Context, arg database.GetDiscountParams) (database.Discount, error) {
			return database.Discount{ID: arg.ID, OutletID: arg.OutletID, Scope: enum.DiscountScopeTotal}, nil
		},
	}

	_, err := NewService(store, nil).CreateMenuItem(context.Background(), outletID, MenuItemInput{
		Name:       "Latte",
		Category:   "Coffee",
		Price:      decimal.NewFromInt(20000),
		DiscountID: &discountID,
	})
	if !errors.Is(err, ErrNotMenuDiscount) {
		t.Errorf("got %v, want ErrNotMenuDiscount", err)
	}
}

func TestCreateMenuItem_InvalidatesCache(t *testing.T) {
	outletID := uuid.New()
	store := &mockStore{
		createMenuItemFn: func(ctx context.Context, arg database.CreateMenuItemParams) (database.MenuItem, error) {
			if arg.DiscountID.Valid {
				t.Error("discount should be NULL")
			}
			return database.MenuItem{ID: uuid.New(), OutletID: arg.OutletID, Name: arg.Name, Price: arg.Price}, nil
		},
	}
	cache := newMockCache()
	cache.snaps[outletID] = &Snapshot{OutletID: outletID}

	item, err := NewService(store, cache).CreateMenuItem(context.Background(), outletID, MenuItemInput{
		Name:     "  Latte ",
		Category: "Coffee",
		Price:    decimal.NewFromInt(20000),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if item.Name != "Latte" {
		t.Errorf("name: got %q, want trimmed", item.Name)
	}
	if _, ok := cache.snaps[outletID]; ok {
		t.Error("cached snapshot not invalidated")
	}
}

func TestCreateMenuItem_Validation(t *testing.T) {
	svc := NewService(&mockStore{}, nil)
	tests := []struct {
		name string
		in   MenuItemInput
		want error
	}{
		{"missing name", MenuItemInput{Category: "Coffee"}, ErrNameRequired},
		{"missing category", MenuItemInput{Name: "Latte"}, ErrCategoryRequired},
		{"negative price", MenuItemInput{Name: "Latte", Category: "Coffee", Price: decimal.NewFromInt(-1)}, ErrInvalidPrice},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.CreateMenuItem(context.Background(), uuid.New(), tt.in); !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDeactivateMenuItem_NotFound(t *testing.T) {
	store := &mockStore{
		deactivateMenuItemFn: func(ctx context.Context, arg database.DeactivateMenuItemParams) (uuid.UUID, error) {
			return uuid.Nil, pgx.ErrNoRows
		},
	}
	if err := NewService(store, nil).DeactivateMenuItem(context.Background(), uuid.New(), uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestCreateDiscount_Validation(t *testing.T) {
	svc := NewService(&mockStore{}, nil)
	tests := []struct {
		name string
		in   DiscountInput
		want error
	}{
		{"bad kind", DiscountInput{Name: "x", Kind: "BOGO", Scope: enum.DiscountScopeTotal}, ErrInvalidDiscountKind},
		{"bad scope", DiscountInput{Name: "x", Kind: enum.DiscountKindFixed, Scope: "ITEM"}, ErrInvalidDiscountScope},
		{"percentage over 100", DiscountInput{Name: "x", Kind: enum.DiscountKindPercentage, Scope: enum.DiscountScopeMenu, Value: decimal.NewFromInt(101)}, ErrInvalidDiscountValue},
		{"negative fixed", DiscountInput{Name: "x", Kind: enum.DiscountKindFixed, Scope: enum.DiscountScopeMenu, Value: decimal.NewFromInt(-1)}, ErrInvalidDiscountValue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.CreateDiscount(context.Background(), uuid.New(), tt.in); !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSetRateActive_SecondActiveRejected(t *testing.T) {
	outletID := uuid.New()
	current := uuid.New()
	store := &mockStore{
		getActiveRateFn: func(ctx context.Context, arg database.GetActiveRateParams) (database.Rate, error) {
			if arg.Kind != enum.RateKindTax {
				t.Errorf("kind: got %s", arg.Kind)
			}
			return database.Rate{ID: current, Kind: arg.Kind, IsActive: true}, nil
		},
		setRateActiveFn: func(ctx context.Context, arg database.SetRateActiveParams) (database.Rate, error) {
			t.Fatal("SetRateActive should not be called")
			return database.Rate{}, nil
		},
	}

	_, err := NewService(store, nil).SetRateActive(context.Background(), outletID, enum.RateKindTax, uuid.New(), true)
	if !errors.Is(err, ErrRateAlreadyActive) {
		t.Errorf("got %v, want ErrRateAlreadyActive", err)
	}
}

func TestSetRateActive_ReactivatingCurrentIsAllowed(t *testing.T) {
	id := uuid.New()
	store := &mockStore{
		getActiveRateFn: func(ctx context.Context, arg database.GetActiveRateParams) (database.Rate, error) {
			return database.Rate{ID: id, IsActive: true}, nil
		},
		setRateActiveFn: func(ctx context.Context, arg database.SetRateActiveParams) (database.Rate, error) {
			return database.Rate{ID: arg.ID, Kind: arg.Kind, IsActive: arg.IsActive}, nil
		},
	}

	rate, err := NewService(store, nil).SetRateActive(context.Background(), uuid.New(), enum.RateKindGratuity, id, true)
	if err != nil {
		t.Fatalf("set active: %v", err)
	}
	if !rate.IsActive {
		t.Error("rate not active")
	}
}

func TestSetRateActive_RaceCaughtByIndex(t *testing.T) {
	store := &mockStore{
		getActiveRateFn: func(ctx context.Context, arg database.GetActiveRateParams) (database.Rate, error) {
			return database.Rate{}, pgx.ErrNoRows
		},
		setRateActiveFn: func(ctx context.Context, arg database.SetRateActiveParams) (database.Rate, error) {
			return database.Rate{}, &pgconn.PgError{Code: "23505", ConstraintName: "rates_one_active_per_kind"}
		},
	}

	_, err := NewService(store, nil).SetRateActive(context.Background(), uuid.New(), enum.RateKindTax, uuid.New(), true)
	if !errors.Is(err, ErrRateAlreadyActive) {
		t.Errorf("got %v, want ErrRateAlreadyActive", err)
	}
}

func TestSetRateActive_DeactivateSkipsCheck(t *testing.T) {
	store := &mockStore{
		setRateActiveFn: func(ctx context.Context, arg database.SetRateActiveParams) (database.Rate, error) {
			return database.Rate{ID: arg.ID, IsActive: arg.IsActive}, nil
		},
	}
	rate, err := NewService(store, nil).SetRateActive(context.Background(), uuid.New(), enum.RateKindTax, uuid.New(), false)
	if err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if rate.IsActive {
		t.Error("rate still active")
	}
}

func TestCreateRate_SecondActiveStoresNothing(t *testing.T) {
	store := &mockStore{
		createRateFn: func(ctx context.Context, arg database.CreateRateParams) (database.Rate, error) {
			t.Fatal("CreateRate should not be called")
			return database.Rate{}, nil
		},
		getActiveRateFn: func(ctx context.Context, arg database.GetActiveRateParams) (database.Rate, error) {
			return database.Rate{ID: uuid.New(), IsActive: true}, nil
		},
	}

	_, err := NewService(store, nil).CreateRate(context.Background(), uuid.New(), enum.RateKindTax, RateInput{
		Name:       "PB1",
		Percentage: decimal.NewFromInt(10),
		Active:     true,
	})
	if !errors.Is(err, ErrRateAlreadyActive) {
		t.Errorf("got %v, want ErrRateAlreadyActive", err)
	}
}

func TestCreateRate_ActiveInsertedInOneStatement(t *testing.T) {
	var got database.CreateRateParams
	store := &mockStore{
		getActiveRateFn: func(ctx context.Context, arg database.GetActiveRateParams) (database.Rate, error) {
			return database.Rate{}, pgx.ErrNoRows
		},
		createRateFn: func(ctx context.Context, arg database.CreateRateParams) (database.Rate, error) {
			got = arg
			return database.Rate{ID: uuid.New(), Kind: arg.Kind, IsActive: arg.IsActive}, nil
		},
		setRateActiveFn: func(ctx context.Context, arg database.SetRateActiveParams) (database.Rate, error) {
			t.Fatal("SetRateActive should not be called")
			return database.Rate{}, nil
		},
	}
	cache := newMockCache()

	rate, err := NewService(store, cache).CreateRate(context.Background(), uuid.New(), enum.RateKindGratuity, RateInput{
		Name:       " Service ",
		Percentage: decimal.NewFromInt(5),
		Active:     true,
	})
	if err != nil {
		t.Fatalf("create rate: %v", err)
	}
	if !got.IsActive || got.Name != "Service" || !rate.IsActive {
		t.Errorf("insert params: %+v", got)
	}
	if cache.deletes != 1 {
		t.Errorf("cache deletes: got %d, want 1", cache.deletes)
	}
}

func TestCreateRate_InsertRaceCaughtByIndex(t *testing.T) {
	store := &mockStore{
		getActiveRateFn: func(ctx context.Context, arg database.GetActiveRateParams) (database.Rate, error) {
			return database.Rate{}, pgx.ErrNoRows
		},
		createRateFn: func(ctx context.Context, arg database.CreateRateParams) (database.Rate, error) {
			return database.Rate{}, &pgconn.PgError{Code: "23505", ConstraintName: "rates_one_active_per_kind"}
		},
	}

	_, err := NewService(store, nil).CreateRate(context.Background(), uuid.New(), enum.RateKindTax, RateInput{
		Name:       "PB1",
		Percentage: decimal.NewFromInt(10),
		Active:     true,
	})
	if !errors.Is(err, ErrRateAlreadyActive) {
		t.Errorf("got %v, want ErrRateAlreadyActive", err)
	}
}

func TestCreateRate_InvalidPercentage(t *testing.T) {
	_, err := NewService(&mockStore{}, nil).CreateRate(context.Background(), uuid.New(), enum.RateKindGratuity, RateInput{
		Name:       "Service",
		Percentage: decimal.NewFromInt(120),
	})
	if !errors.Is(err, ErrInvalidPercentage) {
		t.Errorf("got %v, want ErrInvalidPercentage", err)
	}
}
