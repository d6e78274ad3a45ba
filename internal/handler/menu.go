package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/kiwari-pos/cafe/internal/catalog"
	"github.com/kiwari-pos/cafe/internal/database"
	"github.com/kiwari-pos/cafe/internal/enum"
	"github.com/kiwari-pos/cafe/internal/middleware"
	"github.com/kiwari-pos/cafe/internal/pricing"
	"github.com/shopspring/decimal"
)

// CatalogServicer defines the catalog methods needed by menu handlers.
// Satisfied by *catalog.Service.
type CatalogServicer interface {
	Snapshot(ctx context.Context, outletID uuid.UUID) (*catalog.Snapshot, error)
	CreateMenuItem(ctx context.Context, outletID uuid.UUID, in catalog.MenuItemInput) (database.MenuItem, error)
	UpdateMenuItem(ctx context.Context, outletID, id uuid.UUID, in catalog.MenuItemInput) (database.MenuItem, error)
	DeactivateMenuItem(ctx context.Context, outletID, id uuid.UUID) error
	CreateModifierCategory(ctx context.Context, outletID uuid.UUID, name string, sortOrder int32) (database.ModifierCategory, error)
	CreateModifier(ctx context.Context, outletID, menuItemID uuid.UUID, in catalog.ModifierInput) (database.Modifier, error)
	CreateDiscount(ctx context.Context, outletID uuid.UUID, in catalog.DiscountInput) (database.Discount, error)
	SetDiscountActive(ctx context.Context, outletID, id uuid.UUID, active bool) (database.Discount, error)
	CreateRate(ctx context.Context, outletID uuid.UUID, kind string, in catalog.RateInput) (database.Rate, error)
	SetRateActive(ctx context.Context, outletID uuid.UUID, kind string, id uuid.UUID, active bool) (database.Rate, error)
}

// MenuHandler handles the outlet catalog: menu items, modifiers, discounts,
// tax and gratuity.
type MenuHandler struct {
	svc CatalogServicer
}

// NewMenuHandler creates a new MenuHandler.
func NewMenuHandler(svc CatalogServicer) *MenuHandler {
	return &MenuHandler{svc: svc}
}

// RegisterRoutes registers catalog endpoints inside an outlet-scoped
// subrouter. Reading the menu is open to every role; changes need a manager.
func (h *MenuHandler) RegisterRoutes(r chi.Router) {
	r.Get("/menu", h.Menu)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireRole(enum.UserRoleOwner, enum.UserRoleManager))

		r.Post("/menu-items", h.CreateMenuItem)
		r.Put("/menu-items/{id}", h.UpdateMenuItem)
		r.Delete("/menu-items/{id}", h.DeactivateMenuItem)
		r.Post("/menu-items/{id}/modifiers", h.CreateModifier)
		r.Post("/modifier-categories", h.CreateModifierCategory)

		r.Post("/discounts", h.CreateDiscount)
		r.Patch("/discounts/{id}/active", h.SetDiscountActive)

		r.Post("/taxes", h.createRate(enum.RateKindTax))
		r.Patch("/taxes/{id}/active", h.setRateActive(enum.RateKindTax))
		r.Post("/gratuities", h.createRate(enum.RateKindGratuity))
		r.Patch("/gratuities/{id}/active", h.setRateActive(enum.RateKindGratuity))
	})
}

// --- Request / Response types ---

type menuItemRequest struct {
	Name       string `json:"name"`
	Category   string `json:"category"`
	Price      string `json:"price"`
	DiscountID string `json:"discount_id"`
	SortOrder  int32  `json:"sort_order"`
}

type modifierCategoryRequest struct {
	Name      string `json:"name"`
	SortOrder int32  `json:"sort_order"`
}

type modifierRequest struct {
	CategoryID string `json:"category_id"`
	Name       string `json:"name"`
	Price      string `json:"price"`
}

type discountRequest struct {
	Name     string `json:"name"`
	Kind     string `json:"kind"`
	Scope    string `json:"scope"`
	Value    string `json:"value"`
	IsActive bool   `json:"is_active"`
}

type rateRequest struct {
	Name       string `json:"name"`
	Percentage string `json:"percentage"`
	IsActive   bool   `json:"is_active"`
}

type activeRequest struct {
	IsActive *bool `json:"is_active"`
}

type discountResponse struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Kind  string    `json:"kind"`
	Scope string    `json:"scope"`
	Value string    `json:"value"`
}

type modifierResponse struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Price string    `json:"price"`
}

type modifierGroupResponse struct {
	CategoryID uuid.UUID          `json:"category_id"`
	Name       string             `json:"name"`
	Modifiers  []modifierResponse `json:"modifiers"`
}

type menuItemResponse struct {
	ID             uuid.UUID               `json:"id"`
	Name           string                  `json:"name"`
	Category       string                  `json:"category"`
	Price          string                  `json:"price"`
	EffectivePrice string                  `json:"effective_price"`
	Discount       *discountResponse       `json:"discount"`
	ModifierGroups []modifierGroupResponse `json:"modifier_groups"`
}

type rateResponse struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Percentage string    `json:"percentage"`
}

type menuResponse struct {
	Items     []menuItemResponse `json:"items"`
	Discounts []discountResponse `json:"discounts"`
	Tax       *rateResponse      `json:"tax"`
	Gratuity  *rateResponse      `json:"gratuity"`
}

// --- Handlers ---

// Menu handles GET /outlets/{oid}/menu.
func (h *MenuHandler) Menu(w http.ResponseWriter, r *http.Request) {
	outletID, err := uuid.Parse(chi.URLParam(r, "oid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid outlet ID"})
		return
	}

	snap, err := h.svc.Snapshot(r.Context(), outletID)
	if err != nil {
		log.Printf("ERROR: load catalog: %v", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "service temporarily unavailable"})
		return
	}

	writeJSON(w, http.StatusOK, toMenuResponse(snap))
}

// CreateMenuItem handles POST /outlets/{oid}/menu-items.
func (h *MenuHandler) CreateMenuItem(w http.ResponseWriter, r *http.Request) {
	outletID, err := uuid.Parse(chi.URLParam(r, "oid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid outlet ID"})
		return
	}

	in, ok := decodeMenuItem(w, r)
	if !ok {
		return
	}

	item, err := h.svc.CreateMenuItem(r.Context(), outletID, in)
	if err != nil {
		writeCatalogError(w, "create menu item", err)
		return
	}

	writeJSON(w, http.StatusCreated, item)
}

// UpdateMenuItem handles PUT /outlets/{oid}/menu-items/{id}.
func (h *MenuHandler) UpdateMenuItem(w http.ResponseWriter, r *http.Request) {
	outletID, err := uuid.Parse(chi.URLParam(r, "oid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid outlet ID"})
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid menu item ID"})
		return
	}

	in, ok := decodeMenuItem(w, r)
	if !ok {
		return
	}

	item, err := h.svc.UpdateMenuItem(r.Context(), outletID, id, in)
	if err != nil {
		writeCatalogError(w, "update menu item", err)
		return
	}

	writeJSON(w, http.StatusOK, item)
}

// DeactivateMenuItem handles DELETE /outlets/{oid}/menu-items/{id}.
// Items are deactivated, not removed, so past orders keep their lines.
func (h *MenuHandler) DeactivateMenuItem(w http.ResponseWriter, r *http.Request) {
	outletID, err := uuid.Parse(chi.URLParam(r, "oid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid outlet ID"})
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid menu item ID"})
		return
	}

	if err := h.svc.DeactivateMenuItem(r.Context(), outletID, id); err != nil {
		writeCatalogError(w, "deactivate menu item", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// CreateModifierCategory handles POST /outlets/{oid}/modifier-categories.
func (h *MenuHandler) CreateModifierCategory(w http.ResponseWriter, r *http.Request) {
	outletID, err := uuid.Parse(chi.URLParam(r, "oid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid outlet ID"})
		return
	}

	var req modifierCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	cat, err := h.svc.CreateModifierCategory(r.Context(), outletID, req.Name, req.SortOrder)
	if err != nil {
		writeCatalogError(w, "create modifier category", err)
		return
	}

	writeJSON(w, http.StatusCreated, cat)
}

// CreateModifier handles POST /outlets/{oid}/menu-items/{id}/modifiers.
func (h *MenuHandler) CreateModifier(w http.ResponseWriter, r *http.Request) {
	outletID, err := uuid.Parse(chi.URLParam(r, "oid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid outlet ID"})
		return
	}

	menuItemID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid menu item ID"})
		return
	}

	var req modifierRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid category_id"})
		return
	}

	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid price"})
		return
	}

	mod, err := h.svc.CreateModifier(r.Context(), outletID, menuItemID, catalog.ModifierInput{
		CategoryID: categoryID,
		Name:       req.Name,
		Price:      price,
	})
	if err != nil {
		writeCatalogError(w, "create modifier", err)
		return
	}

	writeJSON(w, http.StatusCreated, mod)
}

// CreateDiscount handles POST /outlets/{oid}/discounts.
func (h *MenuHandler) CreateDiscount(w http.ResponseWriter, r *http.Request) {
	outletID, err := uuid.Parse(chi.URLParam(r, "oid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid outlet ID"})
		return
	}

	var req discountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	value, err := decimal.NewFromString(req.Value)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid value"})
		return
	}

	d, err := h.svc.CreateDiscount(r.Context(), outletID, catalog.DiscountInput{
		Name:   req.Name,
		Kind:   req.Kind,
		Scope:  req.Scope,
		Value:  value,
		Active: req.IsActive,
	})
	if err != nil {
		writeCatalogError(w, "create discount", err)
		return
	}

	writeJSON(w, http.StatusCreated, d)
}

// SetDiscountActive handles PATCH /outlets/{oid}/discounts/{id}/active.
func (h *MenuHandler) SetDiscountActive(w http.ResponseWriter, r *http.Request) {
	outletID, err := uuid.Parse(chi.URLParam(r, "oid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid outlet ID"})
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid discount ID"})
		return
	}

	active, ok := decodeActive(w, r)
	if !ok {
		return
	}

	d, err := h.svc.SetDiscountActive(r.Context(), outletID, id, active)
	if err != nil {
		writeCatalogError(w, "set discount active", err)
		return
	}

	writeJSON(w, http.StatusOK, d)
}

// createRate handles POST /outlets/{oid}/taxes and /gratuities.
func (h *MenuHandler) createRate(kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		outletID, err := uuid.Parse(chi.URLParam(r, "oid"))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid outlet ID"})
			return
		}

		var req rateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}

		pct, err := decimal.NewFromString(req.Percentage)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid percentage"})
			return
		}

		rate, err := h.svc.CreateRate(r.Context(), outletID, kind, catalog.RateInput{
			Name:       req.Name,
			Percentage: pct,
			Active:     req.IsActive,
		})
		if err != nil {
			writeCatalogError(w, "create rate", err)
			return
		}

		writeJSON(w, http.StatusCreated, rate)
	}
}

// setRateActive handles PATCH /outlets/{oid}/taxes/{id}/active and the
// gratuity equivalent.
func (h *MenuHandler) setRateActive(kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		outletID, err := uuid.Parse(chi.URLParam(r, "oid"))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid outlet ID"})
			return
		}

		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid rate ID"})
			return
		}

		active, ok := decodeActive(w, r)
		if !ok {
			return
		}

		rate, err := h.svc.SetRateActive(r.Context(), outletID, kind, id, active)
		if err != nil {
			writeCatalogError(w, "set rate active", err)
			return
		}

		writeJSON(w, http.StatusOK, rate)
	}
}

// --- Helpers ---

func decodeMenuItem(w http.ResponseWriter, r *http.Request) (catalog.MenuItemInput, bool) {
	var req menuItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return catalog.MenuItemInput{}, false
	}

	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid price"})
		return catalog.MenuItemInput{}, false
	}

	in := catalog.MenuItemInput{
		Name:      req.Name,
		Category:  req.Category,
		Price:     price,
		SortOrder: req.SortOrder,
	}
	if req.DiscountID != "" {
		id, err := uuid.Parse(req.DiscountID)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid discount_id"})
			return catalog.MenuItemInput{}, false
		}
		in.DiscountID = &id
	}
	return in, true
}

func decodeActive(w http.ResponseWriter, r *http.Request) (bool, bool) {
	var req activeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return false, false
	}
	if req.IsActive == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "is_active is required"})
		return false, false
	}
	return *req.IsActive, true
}

func writeCatalogError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, catalog.ErrRateAlreadyActive):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, catalog.ErrNameRequired),
		errors.Is(err, catalog.ErrCategoryRequired),
		errors.Is(err, catalog.ErrInvalidPrice),
		errors.Is(err, catalog.ErrInvalidDiscountKind),
		errors.Is(err, catalog.ErrInvalidDiscountScope),
		errors.Is(err, catalog.ErrInvalidDiscountValue),
		errors.Is(err, catalog.ErrNotMenuDiscount),
		errors.Is(err, catalog.ErrInvalidPercentage):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		log.Printf("ERROR: %s: %v", op, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}

func toDiscountResponse(d pricing.Discount) discountResponse {
	return discountResponse{
		ID:    d.ID,
		Name:  d.Name,
		Kind:  d.Kind,
		Scope: d.Scope,
		Value: decimalToString(d.Value),
	}
}

func toRateResponse(r *catalog.Rate) *rateResponse {
	if r == nil {
		return nil
	}
	return &rateResponse{ID: r.ID, Name: r.Name, Percentage: decimalToString(r.Percentage)}
}

// toMenuResponse groups each item's modifiers by category, in category order.
func toMenuResponse(s *catalog.Snapshot) menuResponse {
	resp := menuResponse{
		Items:     make([]menuItemResponse, len(s.Items)),
		Discounts: make([]discountResponse, len(s.OrderDiscounts)),
		Tax:       toRateResponse(s.Tax),
		Gratuity:  toRateResponse(s.Gratuity),
	}

	for i, item := range s.Items {
		price := pricing.ResolveItem(item, nil)
		ir := menuItemResponse{
			ID:             item.ID,
			Name:           item.Name,
			Category:       item.Category,
			Price:          decimalToString(price.MenuPrice),
			EffectivePrice: decimalToString(price.EffectiveMenuPrice),
			ModifierGroups: []modifierGroupResponse{},
		}
		if item.Discount != nil {
			d := toDiscountResponse(*item.Discount)
			ir.Discount = &d
		}

		mods := s.Modifiers[item.ID]
		for _, cat := range s.Categories {
			group := modifierGroupResponse{CategoryID: cat.ID, Name: cat.Name}
			for _, m := range mods {
				if m.CategoryID == cat.ID {
					group.Modifiers = append(group.Modifiers, modifierResponse{
						ID:    m.ID,
						Name:  m.Name,
						Price: decimalToString(m.Price),
					})
				}
			}
			if len(group.Modifiers) > 0 {
				ir.ModifierGroups = append(ir.ModifierGroups, group)
			}
		}
		resp.Items[i] = ir
	}

	for i, d := range s.OrderDiscounts {
		resp.Discounts[i] = toDiscountResponse(d)
	}
	return resp
}
