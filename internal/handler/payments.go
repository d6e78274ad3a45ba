package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/kiwari-pos/cafe/internal/service"
)

// --- Request / Response types ---

type paymentRequest struct {
	PaymentMethod  string  `json:"payment_method"`
	PaymentID      string  `json:"payment_id"`
	DiscountID     *string `json:"discount_id"`
	AmountTendered string  `json:"amount_tendered"`
}

type combinedRequest struct {
	OrderIDs []string `json:"order_ids"`
}

type combinedPaymentRequest struct {
	OrderIDs       []string `json:"order_ids"`
	PaymentMethod  string   `json:"payment_method"`
	PaymentID      string   `json:"payment_id"`
	AmountTendered string   `json:"amount_tendered"`
}

type combinedResponse struct {
	Label       string              `json:"label"`
	TableNumber string              `json:"table_number"`
	Orders      []orderResponse     `json:"orders"`
	Items       []orderItemResponse `json:"items"`
	Totals      totalsResponse      `json:"totals"`
}

type combinedPaymentResponse struct {
	Label     string          `json:"label"`
	Confirmed []orderResponse `json:"confirmed"`
	Change    string          `json:"change"`
	Error     string          `json:"error,omitempty"`
}

// --- Handlers ---

// Pay handles POST /outlets/{oid}/orders/{id}/payment.
func (h *OrderHandler) Pay(w http.ResponseWriter, r *http.Request) {
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

	var req paymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.PaymentMethod == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "payment_method is required"})
		return
	}

	tendered, err := parseAmount(req.AmountTendered)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid amount_tendered"})
		return
	}

	detail, err := h.svc.ConfirmPayment(r.Context(), service.PaymentRequest{
		OutletID:       outletID,
		OrderID:        orderID,
		Method:         req.PaymentMethod,
		PaymentID:      req.PaymentID,
		DiscountID:     req.DiscountID,
		AmountTendered: tendered,
	})
	if err != nil {
		writeServiceError(w, "confirm payment", err)
		return
	}

	writeJSON(w, http.StatusOK, toOrderResponse(detail))
}

// Combine handles POST /outlets/{oid}/orders/combined.
func (h *OrderHandler) Combine(w http.ResponseWriter, r *http.Request) {
	outletID, err := uuid.Parse(chi.URLParam(r, "oid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid outlet ID"})
		return
	}

	var req combinedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	ids, err := parseOrderIDs(req.OrderIDs)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	combined, err := h.svc.CombineOrders(r.Context(), outletID, ids)
	if err != nil {
		writeServiceError(w, "combine orders", err)
		return
	}

	writeJSON(w, http.StatusOK, toCombinedResponse(combined))
}

// PayCombined handles POST /outlets/{oid}/orders/combined/payment.
//
// A failure part way leaves the earlier orders paid. The response then
// carries the confirmed orders next to the error.
func (h *OrderHandler) PayCombined(w http.ResponseWriter, r *http.Request) {
	outletID, err := uuid.Parse(chi.URLParam(r, "oid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid outlet ID"})
		return
	}

	var req combinedPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.PaymentMethod == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "payment_method is required"})
		return
	}

	ids, err := parseOrderIDs(req.OrderIDs)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	tendered, err := parseAmount(req.AmountTendered)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid amount_tendered"})
		return
	}

	result, err := h.svc.ConfirmCombinedPayment(r.Context(), service.CombinedPaymentRequest{
		OutletID:       outletID,
		OrderIDs:       ids,
		Method:         req.PaymentMethod,
		PaymentID:      req.PaymentID,
		AmountTendered: tendered,
	})
	if err != nil {
		if result == nil || len(result.Confirmed) == 0 {
			writeServiceError(w, "confirm combined payment", err)
			return
		}
		log.Printf("ERROR: combined payment stopped after %d of %d orders: %v",
			len(result.Confirmed), len(result.Combined.Orders), err)
		resp := toCombinedPaymentResponse(result)
		resp.Error = err.Error()
		writeJSON(w, http.StatusMultiStatus, resp)
		return
	}

	writeJSON(w, http.StatusOK, toCombinedPaymentResponse(result))
}

// --- Helpers ---

func parseOrderIDs(raw []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, errors.New("invalid order ID: " + s)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func toCombinedResponse(c *service.CombinedOrder) combinedResponse {
	resp := combinedResponse{
		Label:       c.Label,
		TableNumber: c.TableNumber,
		Orders:      make([]orderResponse, len(c.Orders)),
		Items:       make([]orderItemResponse, len(c.Items)),
		Totals:      toTotalsResponse(c.Totals),
	}
	for i, o := range c.Orders {
		resp.Orders[i] = toOrderResponse(o)
	}
	for i, it := range c.Items {
		resp.Items[i] = toOrderItemResponse(it)
	}
	return resp
}

func toCombinedPaymentResponse(res *service.CombinedPaymentResult) combinedPaymentResponse {
	resp := combinedPaymentResponse{
		Label:     res.Combined.Label,
		Confirmed: make([]orderResponse, len(res.Confirmed)),
		Change:    decimalToString(res.Change),
	}
	for i, o := range res.Confirmed {
		resp.Confirmed[i] = toOrderResponse(o)
	}
	return resp
}
