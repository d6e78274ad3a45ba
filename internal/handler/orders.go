package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/kiwari-pos/cafe/internal/database"
	"github.com/kiwari-pos/cafe/internal/enum"
	"github.com/kiwari-pos/cafe/internal/middleware"
	"github.com/kiwari-pos/cafe/internal/pricing"
	"github.com/kiwari-pos/cafe/internal/service"
)

// OrderServicer defines the service methods needed by order handlers.
// Satisfied by *service.OrderService; narrow interface for testability.
type OrderServicer interface {
	Quote(ctx context.Context, req service.OrderRequest) (*service.Quote, error)
	PlaceOrder(ctx context.Context, req service.OrderRequest) (*service.OrderDetail, error)
	GetOrder(ctx context.Context, outletID, orderID uuid.UUID) (*service.OrderDetail, error)
	ListOrders(ctx context.Context, outletID uuid.UUID, f service.ListFilter) ([]database.Order, error)
	UpdateStatus(ctx context.Context, outletID, orderID uuid.UUID, target string) (*service.OrderDetail, error)
	DeleteOrder(ctx context.Context, outletID, orderID uuid.UUID) error
	ConfirmPayment(ctx context.Context, req service.PaymentRequest) (*service.OrderDetail, error)
	CombineOrders(ctx context.Context, outletID uuid.UUID, orderIDs []uuid.UUID) (*service.CombinedOrder, error)
	ConfirmCombinedPayment(ctx context.Context, req service.CombinedPaymentRequest) (*service.CombinedPaymentResult, error)
}

// OrderHandler handles order endpoints.
type OrderHandler struct {
	svc OrderServicer
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(svc OrderServicer) *OrderHandler {
	return &OrderHandler{svc: svc}
}

// RegisterRoutes registers order endpoints on the given Chi router.
// Expected to be mounted inside an outlet-scoped subrouter: /outlets/{oid}/orders
//
// Kiosks may quote, place and read orders. Everything that moves money or
// status is limited to staff.
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Post("/quote", h.Quote)
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireRole(enum.UserRoleOwner, enum.UserRoleManager, enum.UserRoleCashier))
		r.Patch("/{id}/status", h.UpdateStatus)
		r.Delete("/{id}", h.Delete)
		r.Post("/{id}/payment", h.Pay)
		r.Post("/combined", h.Combine)
		r.Post("/combined/payment", h.PayCombined)
	})
}

// --- Request / Response types ---

type orderRequest struct {
	Source       string             `json:"source"`
	CustomerName string             `json:"customer_name"`
	TableNumber  string             `json:"table_number"`
	Notes        string             `json:"notes"`
	DiscountID   string             `json:"discount_id"`
	Items        []orderItemRequest `json:"items"`
}

type orderItemRequest struct {
	MenuItemID  string   `json:"menu_item_id"`
	Quantity    int32    `json:"quantity"`
	Notes       string   `json:"notes"`
	ModifierIDs []string `json:"modifier_ids"`
}

type orderResponse struct {
	ID                uuid.UUID           `json:"id"`
	OutletID          uuid.UUID           `json:"outlet_id"`
	OrderNumber       string              `json:"order_number"`
	CustomerName      string              `json:"customer_name"`
	TableNumber       string              `json:"table_number"`
	Source            string              `json:"source"`
	Status            string              `json:"status"`
	Notes             *string             `json:"notes"`
	DiscountID        *string             `json:"discount_id"`
	DiscountName      *string             `json:"discount_name"`
	TaxRate           string              `json:"tax_rate"`
	GratuityRate      string              `json:"gratuity_rate"`
	Subtotal          string              `json:"subtotal"`
	MenuDiscountTotal string              `json:"menu_discount_total"`
	ModifierTotal     string              `json:"modifier_total"`
	TotalDiscount     string              `json:"total_discount"`
	TaxAmount         string              `json:"tax_amount"`
	GratuityAmount    string              `json:"gratuity_amount"`
	FinalTotal        string              `json:"final_total"`
	PaymentMethod     *string             `json:"payment_method"`
	PaymentID         *string             `json:"payment_id"`
	AmountTendered    *string             `json:"amount_tendered"`
	ChangeAmount      *string             `json:"change_amount"`
	PaidAt            *time.Time          `json:"paid_at"`
	CompletedAt       *time.Time          `json:"completed_at"`
	CreatedAt         time.Time           `json:"created_at"`
	Items             []orderItemResponse `json:"items,omitempty"`
}

type orderItemResponse struct {
	ID             uuid.UUID                   `json:"id"`
	MenuItemID     uuid.UUID                   `json:"menu_item_id"`
	Name           string                      `json:"name"`
	Quantity       int32                       `json:"quantity"`
	MenuPrice      string                      `json:"menu_price"`
	MenuDiscount   string                      `json:"menu_discount"`
	UnitPrice      string                      `json:"unit_price"`
	DiscountAmount string                      `json:"discount_amount"`
	Subtotal       string                      `json:"subtotal"`
	Notes          *string                     `json:"notes"`
	Modifiers      []orderItemModifierResponse `json:"modifiers"`
}

type orderItemModifierResponse struct {
	ModifierID uuid.UUID `json:"modifier_id"`
	Name       string    `json:"name"`
	Price      string    `json:"price"`
}

// orderListResponse wraps a list of orders with pagination metadata.
type orderListResponse struct {
	Orders []orderResponse `json:"orders"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
}

type totalsResponse struct {
	Subtotal          string `json:"subtotal"`
	MenuDiscountTotal string `json:"menu_discount_total"`
	ModifierTotal     string `json:"modifier_total"`
	OrderDiscount     string `json:"order_discount"`
	TotalDiscount     string `json:"total_discount"`
	TaxAmount         string `json:"tax_amount"`
	GratuityAmount    string `json:"gratuity_amount"`
	FinalTotal        string `json:"final_total"`
}

type quoteLineResponse struct {
	MenuItemID    uuid.UUID `json:"menu_item_id"`
	Name          string    `json:"name"`
	Quantity      int32     `json:"quantity"`
	Modifiers     []string  `json:"modifiers"`
	UnitPrice     string    `json:"unit_price"`
	MenuDiscount  string    `json:"menu_discount"`
	ModifierTotal string    `json:"modifier_total"`
	Subtotal      string    `json:"subtotal"`
}

type quoteResponse struct {
	Lines        []quoteLineResponse `json:"lines"`
	DiscountID   *uuid.UUID          `json:"discount_id"`
	DiscountName *string             `json:"discount_name"`
	TaxRate      string              `json:"tax_rate"`
	GratuityRate string              `json:"gratuity_rate"`
	Totals       totalsResponse      `json:"totals"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// --- Handlers ---

// Quote handles POST /outlets/{oid}/orders/quote.
func (h *OrderHandler) Quote(w http.ResponseWriter, r *http.Request) {
	outletID, err := uuid.Parse(chi.URLParam(r, "oid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid outlet ID"})
		return
	}

	var req orderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	q, err := h.svc.Quote(r.Context(), toServiceRequest(outletID, uuid.Nil, req))
	if err != nil {
		writeServiceError(w, "quote order", err)
		return
	}

	writeJSON(w, http.StatusOK, toQuoteResponse(q))
}

// Create handles POST /outlets/{oid}/orders.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	outletID, err := uuid.Parse(chi.URLParam(r, "oid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid outlet ID"})
		return
	}

	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	var req orderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	// Kiosks always place customer orders.
	switch {
	case claims.Role == enum.UserRoleKiosk:
		req.Source = enum.OrderSourceCustomer
	case req.Source == "":
		req.Source = enum.OrderSourceCashier
	}

	detail, err := h.svc.PlaceOrder(r.Context(), toServiceRequest(outletID, claims.UserID, req))
	if err != nil {
		writeServiceError(w, "create order", err)
		return
	}

	writeJSON(w, http.StatusCreated, toOrderResponse(detail))
}

// List handles GET /outlets/{oid}/orders.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	outletID, err := uuid.Parse(chi.URLParam(r, "oid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid outlet ID"})
		return
	}

	limit, offset := parsePagination(r)
	filter := service.ListFilter{
		Status:      r.URL.Query().Get("status"),
		TableNumber: r.URL.Query().Get("table"),
		Limit:       int32(limit),
		Offset:      int32(offset),
	}

	if r.URL.Query().Get("start_date") != "" || r.URL.Query().Get("end_date") != "" {
		start, end, err := parseDateRange(r)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		filter.StartDate = pgtype.Timestamptz{Time: start, Valid: true}
		filter.EndDate = pgtype.Timestamptz{Time: end, Valid: true}
	}

	orders, err := h.svc.ListOrders(r.Context(), outletID, filter)
	if err != nil {
		writeServiceError(w, "list orders", err)
		return
	}

	resp := make([]orderResponse, len(orders))
	for i, o := range orders {
		resp[i] = dbOrderToResponse(o)
	}

	writeJSON(w, http.StatusOK, orderListResponse{
		Orders: resp,
		Limit:  limit,
		Offset: offset,
	})
}

// Get handles GET /outlets/{oid}/orders/{id}.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	outletID, err := uuid.Parse(chi.URLParam(r, "oid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid outlet ID"})
		return
	}

	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	detail, err := h.svc.GetOrder(r.Context(), outletID, orderID)
	if err != nil {
		writeServiceError(w, "get order", err)
		return
	}

	writeJSON(w, http.StatusOK, toOrderResponse(detail))
}

// UpdateStatus handles PATCH /outlets/{oid}/orders/{id}/status.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	outletID, err := uuid.Parse(chi.URLParam(r, "oid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid outlet ID"})
		return
	}

	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Status == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "status is required"})
		return
	}

	detail, err := h.svc.UpdateStatus(r.Context(), outletID, orderID, req.Status)
	if err != nil {
		writeServiceError(w, "update order status", err)
		return
	}

	writeJSON(w, http.StatusOK, toOrderResponse(detail))
}

// Delete handles DELETE /outlets/{oid}/orders/{id}.
func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	outletID, err := uuid.Parse(chi.URLParam(r, "oid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid outlet ID"})
		return
	}

	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	if err := h.svc.DeleteOrder(r.Context(), outletID, orderID); err != nil {
		writeServiceError(w, "delete order", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// --- Helpers ---

func toServiceRequest(outletID, userID uuid.UUID, req orderRequest) service.OrderRequest {
	items := make([]service.OrderItemRequest, len(req.Items))
	for i, it := range req.Items {
		items[i] = service.OrderItemRequest{
			MenuItemID:  it.MenuItemID,
			Quantity:    it.Quantity,
			Notes:       it.Notes,
			ModifierIDs: it.ModifierIDs,
		}
	}
	return service.OrderRequest{
		OutletID:     outletID,
		CreatedBy:    userID,
		Source:       req.Source,
		CustomerName: req.CustomerName,
		TableNumber:  req.TableNumber,
		Notes:        req.Notes,
		DiscountID:   req.DiscountID,
		Items:        items,
	}
}

func toTotalsResponse(t pricing.Totals) totalsResponse {
	return totalsResponse{
		Subtotal:          decimalToString(t.Subtotal),
		MenuDiscountTotal: decimalToString(t.MenuDiscountTotal),
		ModifierTotal:     decimalToString(t.ModifierTotal),
		OrderDiscount:     decimalToString(t.OrderDiscountAmount()),
		TotalDiscount:     decimalToString(t.TotalDiscount),
		TaxAmount:         decimalToString(t.TaxAmount),
		GratuityAmount:    decimalToString(t.GratuityAmount),
		FinalTotal:        decimalToString(t.FinalTotal),
	}
}

func toQuoteResponse(q *service.Quote) quoteResponse {
	lines := q.Draft.Lines()
	resp := quoteResponse{
		Lines:        make([]quoteLineResponse, len(lines)),
		TaxRate:      decimalToString(q.Rates.Tax),
		GratuityRate: decimalToString(q.Rates.Gratuity),
		Totals:       toTotalsResponse(q.Totals),
	}
	for i, l := range lines {
		lt := q.Totals.Lines[i]
		mods := make([]string, len(l.Modifiers))
		for j, m := range l.Modifiers {
			mods[j] = m.Name
		}
		resp.Lines[i] = quoteLineResponse{
			MenuItemID:    l.Item.ID,
			Name:          l.Item.Name,
			Quantity:      l.Quantity,
			Modifiers:     mods,
			UnitPrice:     decimalToString(lt.Price.UnitPrice),
			MenuDiscount:  decimalToString(lt.Discount),
			ModifierTotal: decimalToString(lt.ModifierTotal),
			Subtotal:      decimalToString(lt.Subtotal),
		}
	}
	if q.Discount != nil {
		resp.DiscountID = &q.Discount.ID
		resp.DiscountName = &q.Discount.Name
	}
	return resp
}

// dbOrderToResponse converts a database.Order without its items.
func dbOrderToResponse(o database.Order) orderResponse {
	resp := orderResponse{
		ID:                o.ID,
		OutletID:          o.OutletID,
		OrderNumber:       o.OrderNumber,
		CustomerName:      o.CustomerName,
		TableNumber:       o.TableNumber,
		Source:            o.Source,
		Status:            o.Status,
		Notes:             optionalString(o.Notes),
		DiscountName:      optionalString(o.DiscountName),
		TaxRate:           numericToString(o.TaxRate),
		GratuityRate:      numericToString(o.GratuityRate),
		Subtotal:          numericToString(o.Subtotal),
		MenuDiscountTotal: numericToString(o.MenuDiscountTotal),
		ModifierTotal:     numericToString(o.ModifierTotal),
		TotalDiscount:     numericToString(o.TotalDiscount),
		TaxAmount:         numericToString(o.TaxAmount),
		GratuityAmount:    numericToString(o.GratuityAmount),
		FinalTotal:        numericToString(o.FinalTotal),
		PaymentMethod:     optionalString(o.PaymentMethod),
		PaymentID:         optionalString(o.PaymentID),
		AmountTendered:    optionalNumeric(o.AmountTendered),
		ChangeAmount:      optionalNumeric(o.ChangeAmount),
		CreatedAt:         o.CreatedAt.Time,
	}
	if o.DiscountID.Valid {
		s := uuid.UUID(o.DiscountID.Bytes).String()
		resp.DiscountID = &s
	}
	if o.PaidAt.Valid {
		resp.PaidAt = &o.PaidAt.Time
	}
	if o.CompletedAt.Valid {
		resp.CompletedAt = &o.CompletedAt.Time
	}
	return resp
}

func toOrderResponse(d *service.OrderDetail) orderResponse {
	resp := dbOrderToResponse(d.Order)
	resp.Items = make([]orderItemResponse, len(d.Items))
	for i, it := range d.Items {
		resp.Items[i] = toOrderItemResponse(it)
	}
	return resp
}

func toOrderItemResponse(it service.OrderItemDetail) orderItemResponse {
	item := orderItemResponse{
		ID:             it.Item.ID,
		MenuItemID:     it.Item.MenuItemID,
		Name:           it.Item.Name,
		Quantity:       it.Item.Quantity,
		MenuPrice:      numericToString(it.Item.MenuPrice),
		MenuDiscount:   numericToString(it.Item.MenuDiscount),
		UnitPrice:      numericToString(it.Item.UnitPrice),
		DiscountAmount: numericToString(it.Item.DiscountAmount),
		Subtotal:       numericToString(it.Item.Subtotal),
		Notes:          optionalString(it.Item.Notes),
		Modifiers:      make([]orderItemModifierResponse, len(it.Modifiers)),
	}
	for j, m := range it.Modifiers {
		item.Modifiers[j] = orderItemModifierResponse{
			ModifierID: m.ModifierID,
			Name:       m.Name,
			Price:      numericToString(m.Price),
		}
	}
	return item
}
