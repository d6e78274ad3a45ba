// Package service holds the order workflows: placing and quoting orders,
// confirming payment, the status machine and combined dine-in payments.
// Amounts always come from the pricing package.
package service

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
	"github.com/kiwari-pos/cafe/internal/cart"
	"github.com/kiwari-pos/cafe/internal/catalog"
	"github.com/kiwari-pos/cafe/internal/database"
	"github.com/kiwari-pos/cafe/internal/enum"
	"github.com/kiwari-pos/cafe/internal/events"
	"github.com/kiwari-pos/cafe/internal/pricing"
	"github.com/shopspring/decimal"
)

const maxOrderNumberRetries = 3

// TxBeginner starts a new database transaction.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Pool is satisfied by *pgxpool.Pool.
type Pool interface {
	TxBeginner
	database.DBTX
}

// OrderStore defines the DB methods the order workflows need.
// Satisfied by *database.Queries (and its WithTx variant).
type OrderStore interface {
	GetNextOrderNumber(ctx context.Context, outletID uuid.UUID) (int32, error)
	CreateOrder(ctx context.Context, arg database.CreateOrderParams) (database.Order, error)
	CreateOrderItem(ctx context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error)
	CreateOrderItemModifier(ctx context.Context, arg database.CreateOrderItemModifierParams) (database.OrderItemModifier, error)
	GetOrder(ctx context.Context, arg database.GetOrderParams) (database.Order, error)
	ListOrders(ctx context.Context, arg database.ListOrdersParams) ([]database.Order, error)
	ListOrdersByIDs(ctx context.Context, arg database.ListOrdersByIDsParams) ([]database.Order, error)
	ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]database.OrderItem, error)
	ListOrderItemModifiersByOrder(ctx context.Context, orderID uuid.UUID) ([]database.OrderItemModifier, error)
	ConfirmOrderPayment(ctx context.Context, arg database.ConfirmOrderPaymentParams) (database.Order, error)
	UpdateOrderStatus(ctx context.Context, arg database.UpdateOrderStatusParams) (database.Order, error)
	DeleteOrder(ctx context.Context, arg database.DeleteOrderParams) (uuid.UUID, error)
}

// NewOrderStore creates an OrderStore from a DBTX (pool or tx).
type NewOrderStore func(db database.DBTX) OrderStore

// CatalogReader returns the current catalog of an outlet.
// Satisfied by *catalog.Service.
type CatalogReader interface {
	Snapshot(ctx context.Context, outletID uuid.UUID) (*catalog.Snapshot, error)
}

// Recorder receives business metrics. Satisfied by *metrics.Metrics.
type Recorder interface {
	OrderPlaced(source string)
	PaymentConfirmed(method string, finalTotal decimal.Decimal)
}

type nopRecorder struct{}

func (nopRecorder) OrderPlaced(string)                       {}
func (nopRecorder) PaymentConfirmed(string, decimal.Decimal) {}

// OrderRequest is a cart submitted by the customer screen or the cashier.
type OrderRequest struct {
	OutletID     uuid.UUID
	CreatedBy    uuid.UUID
	Source       string
	CustomerName string
	TableNumber  string
	Notes        string
	DiscountID   string // optional TOTAL discount
	Items        []OrderItemRequest
}

// OrderItemRequest is one requested line.
type OrderItemRequest struct {
	MenuItemID  string
	Quantity    int32
	Notes       string
	ModifierIDs []string
}

// Quote is a priced draft that has not been stored.
type Quote struct {
	Draft    *cart.Draft
	Totals   pricing.Totals
	Discount *pricing.Discount
	Rates    pricing.Rates
}

// OrderDetail is an order with its items.
type OrderDetail struct {
	Order database.Order
	Items []OrderItemDetail
}

// OrderItemDetail is an item with its modifiers.
type OrderItemDetail struct {
	Item      database.OrderItem
	Modifiers []database.OrderItemModifier
}

// OrderService handles order business logic.
type OrderService struct {
	pool     Pool
	newStore NewOrderStore
	catalog  CatalogReader
	events   events.Publisher
	metrics  Recorder
}

// NewOrderService creates an OrderService. publisher and recorder may be nil.
func NewOrderService(pool Pool, newStore NewOrderStore, catalog CatalogReader, publisher events.Publisher, recorder Recorder) *OrderService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &OrderService{
		pool:     pool,
		newStore: newStore,
		catalog:  catalog,
		events:   publisher,
		metrics:  recorder,
	}
}

// Quote prices a cart without storing it. Customer name and table are not
// required yet; an empty cart quotes to zero.
func (s *OrderService) Quote(ctx context.Context, req OrderRequest) (*Quote, error) {
	snap, err := s.catalog.Snapshot(ctx, req.OutletID)
	if err != nil {
		return nil, upstream("load catalog", err)
	}
	return buildQuote(snap, req)
}

// PlaceOrder validates the cart, prices it with the current catalog and
// stores the order as pending. Retries on order number races.
func (s *OrderService) PlaceOrder(ctx context.Context, req OrderRequest) (*OrderDetail, error) {
	if strings.TrimSpace(req.CustomerName) == "" {
		return nil, ErrCustomerNameRequired
	}
	if strings.TrimSpace(req.TableNumber) == "" {
		return nil, ErrTableRequired
	}
	if req.Source != enum.OrderSourceCustomer && req.Source != enum.OrderSourceCashier {
		return nil, ErrInvalidSource
	}
	if len(req.Items) == 0 {
		return nil, ErrEmptyItems
	}

	snap, err := s.catalog.Snapshot(ctx, req.OutletID)
	if err != nil {
		return nil, upstream("load catalog", err)
	}
	q, err := buildQuote(snap, req)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt < maxOrderNumberRetries; attempt++ {
		detail, err := s.placeOrderTx(ctx, req, q)
		if err == nil {
			s.metrics.OrderPlaced(req.Source)
			s.publish(ctx, orderEvent(events.OrderCreated, detail))
			return detail, nil
		}
		if isOrderNumberConflict(err) {
			lastErr = err
			continue
		}
		return nil, err
	}
	return nil, upstream("create order", lastErr)
}

// isOrderNumberConflict checks for a unique violation on the order number,
// which happens when concurrent placements read the same MAX.
func isOrderNumberConflict(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && pgErr.ConstraintName == "orders_outlet_id_order_number_key"
	}
	return false
}

func (s *OrderService) placeOrderTx(ctx context.Context, req OrderRequest, q *Quote) (*OrderDetail, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, upstream("begin tx", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	nextNum, err := store.GetNextOrderNumber(ctx, req.OutletID)
	if err != nil {
		return nil, upstream("get next order number", err)
	}

	discount := discountColumns(q.Discount)
	t := q.Totals
	order, err := store.CreateOrder(ctx, database.CreateOrderParams{
		OutletID:          req.OutletID,
		OrderNumber:       fmt.Sprintf("KWR-%03d", nextNum),
		CustomerName:      strings.TrimSpace(req.CustomerName),
		TableNumber:       strings.TrimSpace(req.TableNumber),
		Source:            req.Source,
		Notes:             optionalText(req.Notes),
		DiscountID:        discount.id,
		DiscountName:      discount.name,
		DiscountKind:      discount.kind,
		DiscountValue:     discount.value,
		TaxRate:           database.ToNumeric(q.Rates.Tax),
		GratuityRate:      database.ToNumeric(q.Rates.Gratuity),
		Subtotal:          database.ToNumeric(t.Subtotal),
		MenuDiscountTotal: database.ToNumeric(t.MenuDiscountTotal),
		ModifierTotal:     database.ToNumeric(t.ModifierTotal),
		TotalDiscount:     database.ToNumeric(t.TotalDiscount),
		TaxAmount:         database.ToNumeric(t.TaxAmount),
		GratuityAmount:    database.ToNumeric(t.GratuityAmount),
		FinalTotal:        database.ToNumeric(t.FinalTotal),
		CreatedBy:         optionalUUID(req.CreatedBy),
	})
	if err != nil {
		return nil, upstream("create order", err)
	}

	lines := q.Draft.Lines()
	items := make([]OrderItemDetail, 0, len(lines))
	for i, line := range lines {
		lt := t.Lines[i]
		item, err := store.CreateOrderItem(ctx, database.CreateOrderItemParams{
			OrderID:        order.ID,
			Position:       int32(i),
			MenuItemID:     line.Item.ID,
			Name:           line.Item.Name,
			Quantity:       lt.Quantity,
			MenuPrice:      database.ToNumeric(lt.Price.MenuPrice),
			MenuDiscount:   database.ToNumeric(lt.Price.MenuDiscount),
			UnitPrice:      database.ToNumeric(lt.Price.UnitPrice),
			DiscountAmount: database.ToNumeric(lt.Discount),
			Subtotal:       database.ToNumeric(lt.Subtotal),
			Notes:          optionalText(line.Notes),
		})
		if err != nil {
			return nil, upstream("create order item", err)
		}

		mods := make([]database.OrderItemModifier, 0, len(line.Modifiers))
		for _, m := range line.Modifiers {
			oim, err := store.CreateOrderItemModifier(ctx, database.CreateOrderItemModifierParams{
				OrderItemID: item.ID,
				ModifierID:  m.ID,
				CategoryID:  m.CategoryID,
				Name:        m.Name,
				Price:       database.ToNumeric(m.Price),
			})
			if err != nil {
				return nil, upstream("create order item modifier", err)
			}
			mods = append(mods, oim)
		}
		items = append(items, OrderItemDetail{Item: item, Modifiers: mods})
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, upstream("commit tx", err)
	}
	return &OrderDetail{Order: order, Items: items}, nil
}

// GetOrder returns one order with its items.
func (s *OrderService) GetOrder(ctx context.Context, outletID, orderID uuid.UUID) (*OrderDetail, error) {
	return loadDetail(ctx, s.newStore(s.pool), outletID, orderID)
}

// ListFilter narrows ListOrders. Zero values mean no filter.
type ListFilter struct {
	Status      string
	TableNumber string
	StartDate   pgtype.Timestamptz
	EndDate     pgtype.Timestamptz
	Limit       int32
	Offset      int32
}

// ListOrders returns orders newest first, without items.
func (s *OrderService) ListOrders(ctx context.Context, outletID uuid.UUID, f ListFilter) ([]database.Order, error) {
	orders, err := s.newStore(s.pool).ListOrders(ctx, database.ListOrdersParams{
		OutletID:    outletID,
		Status:      optionalText(f.Status),
		TableNumber: optionalText(f.TableNumber),
		StartDate:   f.StartDate,
		EndDate:     f.EndDate,
		Limit:       f.Limit,
		Offset:      f.Offset,
	})
	if err != nil {
		return nil, upstream("list orders", err)
	}
	return orders, nil
}

func loadDetail(ctx context.Context, store OrderStore, outletID, orderID uuid.UUID) (*OrderDetail, error) {
	order, err := store.GetOrder(ctx, database.GetOrderParams{ID: orderID, OutletID: outletID})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, upstream("get order", err)
	}
	return loadItems(ctx, store, order)
}

func loadItems(ctx context.Context, store OrderStore, order database.Order) (*OrderDetail, error) {
	items, err := store.ListOrderItemsByOrder(ctx, order.ID)
	if err != nil {
		return nil, upstream("list order items", err)
	}
	mods, err := store.ListOrderItemModifiersByOrder(ctx, order.ID)
	if err != nil {
		return nil, upstream("list order item modifiers", err)
	}

	byItem := make(map[uuid.UUID][]database.OrderItemModifier, len(items))
	for _, m := range mods {
		byItem[m.OrderItemID] = append(byItem[m.OrderItemID], m)
	}

	detail := &OrderDetail{Order: order, Items: make([]OrderItemDetail, 0, len(items))}
	for _, it := range items {
		detail.Items = append(detail.Items, OrderItemDetail{Item: it, Modifiers: byItem[it.ID]})
	}
	return detail, nil
}

// buildQuote resolves the request against the catalog into a draft and
// prices it. Identical lines are merged by the draft.
func buildQuote(snap *catalog.Snapshot, req OrderRequest) (*Quote, error) {
	draft := &cart.Draft{
		CustomerName: strings.TrimSpace(req.CustomerName),
		TableNumber:  strings.TrimSpace(req.TableNumber),
		Notes:        req.Notes,
	}

	for i, it := range req.Items {
		if it.Quantity <= 0 {
			return nil, fmt.Errorf("item[%d]: %w", i, ErrInvalidQuantity)
		}
		itemID, err := uuid.Parse(it.MenuItemID)
		if err != nil {
			return nil, fmt.Errorf("item[%d]: %w", i, ErrInvalidMenuItemID)
		}
		item, ok := snap.Item(itemID)
		if !ok {
			return nil, fmt.Errorf("item[%d]: %w", i, ErrMenuItemNotFound)
		}

		mods := make([]pricing.Modifier, 0, len(it.ModifierIDs))
		for j, raw := range it.ModifierIDs {
			modID, err := uuid.Parse(raw)
			if err != nil {
				return nil, fmt.Errorf("item[%d].modifiers[%d]: %w", i, j, ErrInvalidModifierID)
			}
			mod, ok := snap.Modifier(itemID, modID)
			if !ok {
				return nil, fmt.Errorf("item[%d].modifiers[%d]: %w", i, j, ErrModifierNotFound)
			}
			mods = append(mods, mod)
		}

		if _, err := draft.Add(item, it.Quantity, it.Notes, mods); err != nil {
			if errors.Is(err, cart.ErrDuplicateModifierCategory) {
				return nil, fmt.Errorf("item[%d]: %w", i, ErrDuplicateModifier)
			}
			return nil, fmt.Errorf("item[%d]: %w", i, ErrInvalidQuantity)
		}
	}

	if req.DiscountID != "" {
		discountID, err := uuid.Parse(req.DiscountID)
		if err != nil {
			return nil, ErrInvalidDiscountID
		}
		d, ok := snap.OrderDiscount(discountID)
		if !ok {
			return nil, ErrDiscountNotFound
		}
		draft.SetDiscount(d)
	}

	rates := snap.Rates()
	return &Quote{
		Draft:    draft,
		Totals:   draft.Totals(rates),
		Discount: draft.Discount(),
		Rates:    rates,
	}, nil
}

// --- Helpers ---

type discountCols struct {
	id    pgtype.UUID
	name  pgtype.Text
	kind  pgtype.Text
	value pgtype.Numeric
}

func discountColumns(d *pricing.Discount) discountCols {
	if d == nil {
		return discountCols{}
	}
	return discountCols{
		id:    pgtype.UUID{Bytes: d.ID, Valid: true},
		name:  pgtype.Text{String: d.Name, Valid: true},
		kind:  pgtype.Text{String: d.Kind, Valid: true},
		value: database.ToNumeric(d.Value),
	}
}

func optionalText(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}

func optionalUUID(id uuid.UUID) pgtype.UUID {
	if id == uuid.Nil {
		return pgtype.UUID{}
	}
	return pgtype.UUID{Bytes: id, Valid: true}
}

func (s *OrderService) publish(ctx context.Context, e events.Event) {
	if err := s.events.Publish(ctx, e); err != nil {
		log.Printf("ERROR: publish %s for order %s: %v", e.Type, e.OrderNumber, err)
	}
}

func orderEvent(t events.Type, d *OrderDetail) events.Event {
	o := d.Order
	e := events.New(t, o.OutletID, o.ID)
	e.OrderNumber = o.OrderNumber
	e.TableNumber = o.TableNumber
	e.CustomerName = o.CustomerName
	e.Status = o.Status
	e.FinalTotal = database.ToDecimal(o.FinalTotal).StringFixed(0)
	if o.PaymentMethod.Valid {
		e.PaymentMethod = o.PaymentMethod.String
	}
	for _, it := range d.Items {
		item := events.Item{Name: it.Item.Name, Quantity: it.Item.Quantity}
		if it.Item.Notes.Valid {
			item.Notes = it.Item.Notes.String
		}
		for _, m := range it.Modifiers {
			item.Modifiers = append(item.Modifiers, m.Name)
		}
		e.Items = append(e.Items, item)
	}
	return e
}
