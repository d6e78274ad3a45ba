// Package catalog reads and maintains an outlet's menu: items, modifiers,
// discounts, and the active tax and gratuity.
//
// Pricing never reads the database directly. Callers take a Snapshot and
// hand its items, discounts and rates to the pricing package.
package catalog

import (
	"github.com/google/uuid"
	"github.com/kiwari-pos/cafe/internal/database"
	"github.com/kiwari-pos/cafe/internal/enum"
	"github.com/kiwari-pos/cafe/internal/pricing"
	"github.com/shopspring/decimal"
)

// ModifierCategory groups modifiers; a cart line picks at most one per category.
type ModifierCategory struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// Rate is an active tax or gratuity percentage.
type Rate struct {
	ID         uuid.UUID       `json:"id"`
	Name       string          `json:"name"`
	Percentage decimal.Decimal `json:"percentage"`
}

// Snapshot is the read view of one outlet's catalog.
type Snapshot struct {
	OutletID       uuid.UUID                        `json:"outlet_id"`
	Items          []pricing.MenuItem               `json:"items"`
	Modifiers      map[uuid.UUID][]pricing.Modifier `json:"modifiers"`
	Categories     []ModifierCategory               `json:"categories"`
	OrderDiscounts []pricing.Discount               `json:"order_discounts"`
	Tax            *Rate                            `json:"tax,omitempty"`
	Gratuity       *Rate                            `json:"gratuity,omitempty"`
}

// Rates returns the percentages the pricing pipeline should use. Missing
// rates are zero.
func (s *Snapshot) Rates() pricing.Rates {
	r := pricing.Rates{Tax: decimal.Zero, Gratuity: decimal.Zero}
	if s.Tax != nil {
		r.Tax = s.Tax.Percentage
	}
	if s.Gratuity != nil {
		r.Gratuity = s.Gratuity.Percentage
	}
	return r
}

// Item looks up an active menu item.
func (s *Snapshot) Item(id uuid.UUID) (pricing.MenuItem, bool) {
	for _, it := range s.Items {
		if it.ID == id {
			return it, true
		}
	}
	return pricing.MenuItem{}, false
}

// Modifier looks up a modifier offered on the given menu item.
func (s *Snapshot) Modifier(menuItemID, modifierID uuid.UUID) (pricing.Modifier, bool) {
	for _, m := range s.Modifiers[menuItemID] {
		if m.ID == modifierID {
			return m, true
		}
	}
	return pricing.Modifier{}, false
}

// OrderDiscount looks up an active TOTAL discount.
func (s *Snapshot) OrderDiscount(id uuid.UUID) (*pricing.Discount, bool) {
	for i := range s.OrderDiscounts {
		if s.OrderDiscounts[i].ID == id {
			d := s.OrderDiscounts[i]
			return &d, true
		}
	}
	return nil, false
}

// Assemble builds a Snapshot from catalog rows. Only active discounts and
// rates are expected; a MENU discount is attached to the items referencing
// it and TOTAL discounts are listed for order-level selection.
func Assemble(
	outletID uuid.UUID,
	items []database.MenuItem,
	modifiers []database.Modifier,
	categories []database.ModifierCategory,
	discounts []database.Discount,
	rates []database.Rate,
) *Snapshot {
	snap := &Snapshot{
		OutletID:       outletID,
		Items:          make([]pricing.MenuItem, 0, len(items)),
		Modifiers:      make(map[uuid.UUID][]pricing.Modifier),
		Categories:     make([]ModifierCategory, 0, len(categories)),
		OrderDiscounts: []pricing.Discount{},
	}

	menuDiscounts := make(map[uuid.UUID]pricing.Discount)
	for _, d := range discounts {
		if !d.IsActive {
			continue
		}
		pd := toDiscount(d)
		switch d.Scope {
		case enum.DiscountScopeMenu:
			menuDiscounts[d.ID] = pd
		case enum.DiscountScopeTotal:
			snap.OrderDiscounts = append(snap.OrderDiscounts, pd)
		}
	}

	for _, it := range items {
		mi := pricing.MenuItem{
			ID:       it.ID,
			Name:     it.Name,
			Category: it.Category,
			Price:    database.ToDecimal(it.Price),
		}
		if it.DiscountID.Valid {
			if d, ok := menuDiscounts[uuid.UUID(it.DiscountID.Bytes)]; ok {
				mi.Discount = &d
			}
		}
		snap.Items = append(snap.Items, mi)
	}

	for _, m := range modifiers {
		if !m.IsActive {
			continue
		}
		snap.Modifiers[m.MenuItemID] = append(snap.Modifiers[m.MenuItemID], pricing.Modifier{
			ID:         m.ID,
			CategoryID: m.CategoryID,
			Name:       m.Name,
			Price:      database.ToDecimal(m.Price),
		})
	}

	for _, c := range categories {
		snap.Categories = append(snap.Categories, ModifierCategory{ID: c.ID, Name: c.Name})
	}

	for _, r := range rates {
		if !r.IsActive {
			continue
		}
		rate := &Rate{ID: r.ID, Name: r.Name, Percentage: database.ToDecimal(r.Percentage)}
		switch r.Kind {
		case enum.RateKindTax:
			snap.Tax = rate
		case enum.RateKindGratuity:
			snap.Gratuity = rate
		}
	}

	return snap
}

func toDiscount(d database.Discount) pricing.Discount {
	return pricing.Discount{
		ID:     d.ID,
		Name:   d.Name,
		Kind:   d.Kind,
		Scope:  d.Scope,
		Value:  database.ToDecimal(d.Value),
		Active: d.IsActive,
	}
}
