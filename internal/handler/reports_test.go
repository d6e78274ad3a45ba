package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/kiwari-pos/cafe/internal/database"
	"github.com/kiwari-pos/cafe/internal/enum"
	"github.com/kiwari-pos/cafe/internal/handler"
	"github.com/kiwari-pos/cafe/internal/middleware"
)

// --- Mock Store ---

type mockReportsStore struct {
	dailySales        []database.GetDailySalesRow
	menuSales         []database.GetMenuSalesRow
	paymentSummary    []database.GetPaymentSummaryRow
	hourlySales       []database.GetHourlySalesRow
	outletComparison  []database.GetOutletComparisonRow
	dailySalesErr     error
	menuSalesErr      error
	paymentSummaryErr error
	hourlySalesErr    error

	lastDaily      database.GetDailySalesParams
	lastHourly     database.GetHourlySalesParams
	lastComparison database.GetOutletComparisonParams
}

func (m *mockReportsStore) GetDailySales(ctx context.Context, arg database.GetDailySalesParams) ([]database.GetDailySalesRow, error) {
	m.lastDaily = arg
	if m.dailySalesErr != nil {
		return nil, m.dailySalesErr
	}
	return m.dailySales, nil
}

func (m *mockReportsStore) GetMenuSales(ctx context.Context, arg database.GetMenuSalesParams) ([]database.GetMenuSalesRow, error) {
	if m.menuSalesErr != nil {
		return nil, m.menuSalesErr
	}
	return m.menuSales, nil
}

func (m *mockReportsStore) GetPaymentSummary(ctx context.Context, arg database.GetPaymentSummaryParams) ([]database.GetPaymentSummaryRow, error) {
	if m.paymentSummaryErr != nil {
		return nil, m.paymentSummaryErr
	}
	return m.paymentSummary, nil
}

func (m *mockReportsStore) GetHourlySales(ctx context.Context, arg database.GetHourlySalesParams) ([]database.GetHourlySalesRow, error) {
	m.lastHourly = arg
	if m.hourlySalesErr != nil {
		return nil, m.hourlySalesErr
	}
	return m.hourlySales, nil
}

func (m *mockReportsStore) GetOutletComparison(ctx context.Context, arg database.GetOutletComparisonParams) ([]database.GetOutletComparisonRow, error) {
	m.lastComparison = arg
	return m.outletComparison, nil
}

// --- Test Helpers ---

func toDate(s string) pgtype.Date {
	t, _ := time.Parse("2006-01-02", s)
	var date pgtype.Date
	date.Scan(t)
	return date
}

func setupReportsRouter(store handler.ReportsStore) http.Handler {
	h := handler.NewReportsHandler(store)
	r := chi.NewRouter()
	r.Route("/outlets/{oid}/reports", h.RegisterRoutes)
	return r
}

func setupOwnerReportsRouter(store handler.ReportsStore) http.Handler {
	h := handler.NewReportsHandler(store)
	r := chi.NewRouter()
	r.Use(middleware.Authenticate(testJWTSecret))
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireRole(enum.UserRoleOwner))
		r.Route("/reports", h.RegisterOwnerRoutes)
	})
	return r
}

// --- Daily Sales Tests ---

func TestDailySales(t *testing.T) {
	outletID := uuid.New()
	store := &mockReportsStore{
		dailySales: []database.GetDailySalesRow{
			{
				SaleDate:       toDate("2026-10-01"),
				OrderCount:     12,
				GrossSales:     num("780000"),
				TotalDiscount:  num("42000"),
				TaxAmount:      num("73800"),
				GratuityAmount: num("36900"),
				NetSales:       num("848700"),
			},
			{
				SaleDate:   toDate("2026-10-02"),
				OrderCount: 3,
				GrossSales: num("95000"),
				NetSales:   num("104500"),
			},
		},
	}

	router := setupReportsRouter(store)

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/outlets/%s/reports/daily-sales?start_date=2026-10-01&end_date=2026-10-02", outletID), nil)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d; body: %s", rr.Code, rr.Body.String())
	}

	var resp []map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(resp))
	}
	if resp[0]["date"] != "2026-10-01" || resp[0]["net_sales"] != "848700.00" || resp[0]["gratuity_amount"] != "36900.00" {
		t.Errorf("row 0: %v", resp[0])
	}
	if resp[1]["tax_amount"] != "0.00" {
		t.Errorf("NULL tax should render as 0.00, got %v", resp[1]["tax_amount"])
	}

	if store.lastDaily.OutletID != outletID {
		t.Errorf("outlet: got %s, want %s", store.lastDaily.OutletID, outletID)
	}
	if got := store.lastDaily.EndDate.Sub(store.lastDaily.StartDate); got != 48*time.Hour {
		t.Errorf("range: got %v, want 48h (end date inclusive)", got)
	}
}

func TestDailySales_BadDateRange(t *testing.T) {
	router := setupReportsRouter(&mockReportsStore{})

	for _, q := range []string{"start_date=01-10-2026", "start_date=2026-10-05&end_date=2026-10-01"} {
		req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/outlets/%s/reports/daily-sales?%s", uuid.New(), q), nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		if rr.Code != http.StatusBadRequest {
			t.Errorf("%s: expected status 400, got %d", q, rr.Code)
		}
	}
}

func TestDailySales_StoreError(t *testing.T) {
	router := setupReportsRouter(&mockReportsStore{dailySalesErr: errors.New("db down")})

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/outlets/%s/reports/daily-sales", uuid.New()), nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", rr.Code)
	}
}

// --- Menu Sales Tests ---

func TestMenuSales(t *testing.T) {
	kopiID := uuid.New()
	store := &mockReportsStore{
		menuSales: []database.GetMenuSalesRow{
			{MenuItemID: kopiID, Name: "Kopi Susu", QuantitySold: 40, Revenue: num("1000000")},
			{MenuItemID: uuid.New(), Name: "Teh Tarik", QuantitySold: 25, Revenue: num("300000")},
		},
	}

	router := setupReportsRouter(store)

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/outlets/%s/reports/menu-sales", uuid.New()), nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	var resp []map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(resp))
	}
	if resp[0]["menu_item_id"] != kopiID.String() || resp[0]["quantity_sold"] != float64(40) || resp[0]["revenue"] != "1000000.00" {
		t.Errorf("row 0: %v", resp[0])
	}
}

func TestMenuSales_Empty(t *testing.T) {
	router := setupReportsRouter(&mockReportsStore{})

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/outlets/%s/reports/menu-sales", uuid.New()), nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if body := rr.Body.String(); body != "[]\n" {
		t.Errorf("expected empty array, got %q", body)
	}
}

// --- Payment Summary Tests ---

func TestPaymentSummary(t *testing.T) {
	store := &mockReportsStore{
		paymentSummary: []database.GetPaymentSummaryRow{
			{PaymentMethod: "CASH", OrderCount: 8, TotalAmount: num("512000")},
			{PaymentMethod: "QRIS", OrderCount: 4, TotalAmount: num("336700")},
		},
	}

	router := setupReportsRouter(store)

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/outlets/%s/reports/payment-summary?start_date=2026-10-01", uuid.New()), nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	var resp []map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp) != 2 || resp[1]["payment_method"] != "QRIS" || resp[1]["total_amount"] != "336700.00" {
		t.Errorf("response: %v", resp)
	}
}

func TestPaymentSummary_InvalidOutlet(t *testing.T) {
	router := setupReportsRouter(&mockReportsStore{})

	req := httptest.NewRequest(http.MethodGet, "/outlets/not-a-uuid/reports/payment-summary", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rr.Code)
	}
}

// --- Hourly Sales Tests ---

func TestHourlySales(t *testing.T) {
	outletID := uuid.New()
	store := &mockReportsStore{
		hourlySales: []database.GetHourlySalesRow{
			{Hour: 8, OrderCount: 5, TotalRevenue: num("185000")},
			{Hour: 12, OrderCount: 11, TotalRevenue: num("462000")},
		},
	}

	router := setupReportsRouter(store)

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/outlets/%s/reports/hourly-sales?start_date=2026-10-01&end_date=2026-10-01", outletID), nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d; body: %s", rr.Code, rr.Body.String())
	}

	var resp []map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp) != 2 || resp[1]["hour"] != float64(12) || resp[1]["total_revenue"] != "462000.00" {
		t.Errorf("response: %v", resp)
	}

	if store.lastHourly.OutletID != outletID {
		t.Errorf("outlet: got %s", store.lastHourly.OutletID)
	}
	if d := store.lastHourly.EndDate.Sub(store.lastHourly.StartDate); d != 24*time.Hour {
		t.Errorf("range: got %s, want 24h", d)
	}
}

func TestHourlySales_StoreError(t *testing.T) {
	router := setupReportsRouter(&mockReportsStore{hourlySalesErr: errors.New("db down")})

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/outlets/%s/reports/hourly-sales", uuid.New()), nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", rr.Code)
	}
}

// --- Outlet Comparison Tests ---

func TestOutletComparison(t *testing.T) {
	pusat, cabang := uuid.New(), uuid.New()
	store := &mockReportsStore{
		outletComparison: []database.GetOutletComparisonRow{
			{OutletID: pusat, OutletName: "Kiwari Pusat", OrderCount: 40, TotalRevenue: num("2150000")},
			{OutletID: cabang, OutletName: "Kiwari Cabang", TotalRevenue: num("0")},
		},
	}

	rr := doAuthRequest(t, setupOwnerReportsRouter(store), http.MethodGet,
		"/reports/outlet-comparison?start_date=2026-10-01&end_date=2026-10-07", nil, testClaims(uuid.Nil, enum.UserRoleOwner))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d; body: %s", rr.Code, rr.Body.String())
	}

	var resp []map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp) != 2 || resp[0]["outlet_id"] != pusat.String() || resp[0]["total_revenue"] != "2150000.00" {
		t.Errorf("row 0: %v", resp)
	}
	if resp[1]["order_count"] != float64(0) || resp[1]["total_revenue"] != "0.00" {
		t.Errorf("outlet without sales: %v", resp[1])
	}

	if d := store.lastComparison.EndDate.Sub(store.lastComparison.StartDate); d != 7*24*time.Hour {
		t.Errorf("range: got %s, want 7 days", d)
	}
}

func TestOutletComparison_OwnerOnly(t *testing.T) {
	router := setupOwnerReportsRouter(&mockReportsStore{})

	for _, role := range []string{enum.UserRoleManager, enum.UserRoleCashier} {
		rr := doAuthRequest(t, router, http.MethodGet, "/reports/outlet-comparison", nil, testClaims(uuid.New(), role))
		if rr.Code != http.StatusForbidden {
			t.Errorf("%s: expected status 403, got %d", role, rr.Code)
		}
	}
}
