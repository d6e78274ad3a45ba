package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const orderColumns = `id, outlet_id, order_number, customer_name, table_number, source, status, notes,
    discount_id, discount_name, discount_kind, discount_value, tax_rate, gratuity_rate,
    subtotal, menu_discount_total, modifier_total, total_discount, tax_amount, gratuity_amount, final_total,
    payment_method, payment_id, amount_tendered, change_amount, paid_at, completed_at,
    created_by, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(row rowScanner) (Order, error) {
	var i Order
	err := row.Scan(
		&i.ID,
		&i.OutletID,
		&i.OrderNumber,
		&i.CustomerName,
		&i.TableNumber,
		&i.Source,
		&i.Status,
		&i.Notes,
		&i.DiscountID,
		&i.DiscountName,
		&i.DiscountKind,
		&i.DiscountValue,
		&i.TaxRate,
		&i.GratuityRate,
		&i.Subtotal,
		&i.MenuDiscountTotal,
		&i.ModifierTotal,
		&i.TotalDiscount,
		&i.TaxAmount,
		&i.GratuityAmount,
		&i.FinalTotal,
		&i.PaymentMethod,
		&i.PaymentID,
		&i.AmountTendered,
		&i.ChangeAmount,
		&i.PaidAt,
		&i.CompletedAt,
		&i.CreatedBy,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getNextOrderNumber = `-- name: GetNextOrderNumber :one
SELECT (COALESCE(MAX(CAST(SUBSTRING(order_number FROM 5) AS INTEGER)), 0) + 1)::int4
FROM orders
WHERE outlet_id = $1
`

func (q *Queries) GetNextOrderNumber(ctx context.Context, outletID uuid.UUID) (int32, error) {
	row := q.db.QueryRow(ctx, getNextOrderNumber, outletID)
	var n int32
	err := row.Scan(&n)
	return n, err
}

const createOrder = `-- name: CreateOrder :one
INSERT INTO orders (
    outlet_id, order_number, customer_name, table_number, source, notes,
    discount_id, discount_name, discount_kind, discount_value, tax_rate, gratuity_rate,
    subtotal, menu_discount_total, modifier_total, total_discount, tax_amount, gratuity_amount, final_total,
    created_by
) VALUES (
    $1, $2, $3, $4, $5, $6,
    $7, $8, $9, $10, $11, $12,
    $13, $14, $15, $16, $17, $18, $19,
    $20
)
RETURNING ` + orderColumns

type CreateOrderParams struct {
	OutletID          uuid.UUID      `json:"outlet_id"`
	OrderNumber       string         `json:"order_number"`
	CustomerName      string         `json:"customer_name"`
	TableNumber       string         `json:"table_number"`
	Source            string         `json:"source"`
	Notes             pgtype.Text    `json:"notes"`
	DiscountID        pgtype.UUID    `json:"discount_id"`
	DiscountName      pgtype.Text    `json:"discount_name"`
	DiscountKind      pgtype.Text    `json:"discount_kind"`
	DiscountValue     pgtype.Numeric `json:"discount_value"`
	TaxRate           pgtype.Numeric `json:"tax_rate"`
	GratuityRate      pgtype.Numeric `json:"gratuity_rate"`
	Subtotal          pgtype.Numeric `json:"subtotal"`
	MenuDiscountTotal pgtype.Numeric `json:"menu_discount_total"`
	ModifierTotal     pgtype.Numeric `json:"modifier_total"`
	TotalDiscount     pgtype.Numeric `json:"total_discount"`
	TaxAmount         pgtype.Numeric `json:"tax_amount"`
	GratuityAmount    pgtype.Numeric `json:"gratuity_amount"`
	FinalTotal        pgtype.Numeric `json:"final_total"`
	CreatedBy         pgtype.UUID    `json:"created_by"`
}

func (q *Queries) CreateOrder(ctx context.Context, arg CreateOrderParams) (Order, error) {
	row := q.db.QueryRow(ctx, createOrder,
		arg.OutletID,
		arg.OrderNumber,
		arg.CustomerName,
		arg.TableNumber,
		arg.Source,
		arg.Notes,
		arg.DiscountID,
		arg.DiscountName,
		arg.DiscountKind,
		arg.DiscountValue,
		arg.TaxRate,
		arg.GratuityRate,
		arg.Subtotal,
		arg.MenuDiscountTotal,
		arg.ModifierTotal,
		arg.TotalDiscount,
		arg.TaxAmount,
		arg.GratuityAmount,
		arg.FinalTotal,
		arg.CreatedBy,
	)
	return scanOrder(row)
}

const createOrderItem = `-- name: CreateOrderItem :one
INSERT INTO order_items (
    order_id, position, menu_item_id, name, quantity, menu_price, menu_discount,
    unit_price, discount_amount, subtotal, notes
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
RETURNING id, order_id, position, menu_item_id, name, quantity, menu_price, menu_discount, unit_price, discount_amount, subtotal, notes
`

type CreateOrderItemParams struct {
	OrderID        uuid.UUID      `json:"order_id"`
	Position       int32          `json:"position"`
	MenuItemID     uuid.UUID      `json:"menu_item_id"`
	Name           string         `json:"name"`
	Quantity       int32          `json:"quantity"`
	MenuPrice      pgtype.Numeric `json:"menu_price"`
	MenuDiscount   pgtype.Numeric `json:"menu_discount"`
	UnitPrice      pgtype.Numeric `json:"unit_price"`
	DiscountAmount pgtype.Numeric `json:"discount_amount"`
	Subtotal       pgtype.Numeric `json:"subtotal"`
	Notes          pgtype.Text    `json:"notes"`
}

func (q *Queries) CreateOrderItem(ctx context.Context, arg CreateOrderItemParams) (OrderItem, error) {
	row := q.db.QueryRow(ctx, createOrderItem,
		arg.OrderID,
		arg.Position,
		arg.MenuItemID,
		arg.Name,
		arg.Quantity,
		arg.MenuPrice,
		arg.MenuDiscount,
		arg.UnitPrice,
		arg.DiscountAmount,
		arg.Subtotal,
		arg.Notes,
	)
	var i OrderItem
	err := row.Scan(
		&i.ID,
		&i.OrderID,
		&i.Position,
		&i.MenuItemID,
		&i.Name,
		&i.Quantity,
		&i.MenuPrice,
		&i.MenuDiscount,
		&i.UnitPrice,
		&i.DiscountAmount,
		&i.Subtotal,
		&i.Notes,
	)
	return i, err
}

const createOrderItemModifier = `-- name: CreateOrderItemModifier :one
INSERT INTO order_item_modifiers (order_item_id, modifier_id, category_id, name, price)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, order_item_id, modifier_id, category_id, name, price
`

type CreateOrderItemModifierParams struct {
	OrderItemID uuid.UUID      `json:"order_item_id"`
	ModifierID  uuid.UUID      `json:"modifier_id"`
	CategoryID  uuid.UUID      `json:"category_id"`
	Name        string         `json:"name"`
	Price       pgtype.Numeric `json:"price"`
}

func (q *Queries) CreateOrderItemModifier(ctx context.Context, arg CreateOrderItemModifierParams) (OrderItemModifier, error) {
	row := q.db.QueryRow(ctx, createOrderItemModifier,
		arg.OrderItemID,
		arg.ModifierID,
		arg.CategoryID,
		arg.Name,
		arg.Price,
	)
	var i OrderItemModifier
	err := row.Scan(
		&i.ID,
		&i.OrderItemID,
		&i.ModifierID,
		&i.CategoryID,
		&i.Name,
		&i.Price,
	)
	return i, err
}

const getOrder = `-- name: GetOrder :one
SELECT ` + orderColumns + `
FROM orders
WHERE id = $1 AND outlet_id = $2
`

type GetOrderParams struct {
	ID       uuid.UUID `json:"id"`
	OutletID uuid.UUID `json:"outlet_id"`
}

func (q *Queries) GetOrder(ctx context.Context, arg GetOrderParams) (Order, error) {
	row := q.db.QueryRow(ctx, getOrder, arg.ID, arg.OutletID)
	return scanOrder(row)
}

const listOrders = `-- name: ListOrders :many
SELECT ` + orderColumns + `
FROM orders
WHERE outlet_id = $1
  AND ($2::text IS NULL OR status = $2)
  AND ($3::text IS NULL OR table_number = $3)
  AND ($4::timestamptz IS NULL OR created_at >= $4)
  AND ($5::timestamptz IS NULL OR created_at < $5)
ORDER BY created_at DESC
LIMIT $6 OFFSET $7
`

type ListOrdersParams struct {
	OutletID    uuid.UUID          `json:"outlet_id"`
	Status      pgtype.Text        `json:"status"`
	TableNumber pgtype.Text        `json:"table_number"`
	StartDate   pgtype.Timestamptz `json:"start_date"`
	EndDate     pgtype.Timestamptz `json:"end_date"`
	Limit       int32              `json:"limit"`
	Offset      int32              `json:"offset"`
}

func (q *Queries) ListOrders(ctx context.Context, arg ListOrdersParams) ([]Order, error) {
	rows, err := q.db.Query(ctx, listOrders,
		arg.OutletID,
		arg.Status,
		arg.TableNumber,
		arg.StartDate,
		arg.EndDate,
		arg.Limit,
		arg.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Order{}
	for rows.Next() {
		i, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listOrdersByIDs = `-- name: ListOrdersByIDs :many
SELECT ` + orderColumns + `
FROM orders
WHERE outlet_id = $1 AND id = ANY($2::uuid[])
ORDER BY created_at, order_number
`

type ListOrdersByIDsParams struct {
	OutletID uuid.UUID   `json:"outlet_id"`
	Ids      []uuid.UUID `json:"ids"`
}

func (q *Queries) ListOrdersByIDs(ctx context.Context, arg ListOrdersByIDsParams) ([]Order, error) {
	rows, err := q.db.Query(ctx, listOrdersByIDs, arg.OutletID, arg.Ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Order{}
	for rows.Next() {
		i, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listOrderItemsByOrder = `-- name: ListOrderItemsByOrder :many
SELECT id, order_id, position, menu_item_id, name, quantity, menu_price, menu_discount, unit_price, discount_amount, subtotal, notes
FROM order_items
WHERE order_id = $1
ORDER BY position
`

func (q *Queries) ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]OrderItem, error) {
	rows, err := q.db.Query(ctx, listOrderItemsByOrder, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []OrderItem{}
	for rows.Next() {
		var i OrderItem
		if err := rows.Scan(
			&i.ID,
			&i.OrderID,
			&i.Position,
			&i.MenuItemID,
			&i.Name,
			&i.Quantity,
			&i.MenuPrice,
			&i.MenuDiscount,
			&i.UnitPrice,
			&i.DiscountAmount,
			&i.Subtotal,
			&i.Notes,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listOrderItemModifiersByOrder = `-- name: ListOrderItemModifiersByOrder :many
SELECT m.id, m.order_item_id, m.modifier_id, m.category_id, m.name, m.price
FROM order_item_modifiers m
JOIN order_items oi ON oi.id = m.order_item_id
WHERE oi.order_id = $1
ORDER BY oi.position, m.id
`

func (q *Queries) ListOrderItemModifiersByOrder(ctx context.Context, orderID uuid.UUID) ([]OrderItemModifier, error) {
	rows, err := q.db.Query(ctx, listOrderItemModifiersByOrder, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []OrderItemModifier{}
	for rows.Next() {
		var i OrderItemModifier
		if err := rows.Scan(
			&i.ID,
			&i.OrderItemID,
			&i.ModifierID,
			&i.CategoryID,
			&i.Name,
			&i.Price,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const confirmOrderPayment = `-- name: ConfirmOrderPayment :one
UPDATE orders SET
    status = 'sedang_diproses',
    discount_id = $3, discount_name = $4, discount_kind = $5, discount_value = $6,
    subtotal = $7, menu_discount_total = $8, modifier_total = $9, total_discount = $10,
    tax_amount = $11, gratuity_amount = $12, final_total = $13,
    payment_method = $14, payment_id = $15, amount_tendered = $16, change_amount = $17,
    paid_at = now(), updated_at = now()
WHERE id = $1 AND outlet_id = $2 AND status = 'pending'
RETURNING ` + orderColumns

type ConfirmOrderPaymentParams struct {
	ID                uuid.UUID      `json:"id"`
	OutletID          uuid.UUID      `json:"outlet_id"`
	DiscountID        pgtype.UUID    `json:"discount_id"`
	DiscountName      pgtype.Text    `json:"discount_name"`
	DiscountKind      pgtype.Text    `json:"discount_kind"`
	DiscountValue     pgtype.Numeric `json:"discount_value"`
	Subtotal          pgtype.Numeric `json:"subtotal"`
	MenuDiscountTotal pgtype.Numeric `json:"menu_discount_total"`
	ModifierTotal     pgtype.Numeric `json:"modifier_total"`
	TotalDiscount     pgtype.Numeric `json:"total_discount"`
	TaxAmount         pgtype.Numeric `json:"tax_amount"`
	GratuityAmount    pgtype.Numeric `json:"gratuity_amount"`
	FinalTotal        pgtype.Numeric `json:"final_total"`
	PaymentMethod     pgtype.Text    `json:"payment_method"`
	PaymentID         pgtype.Text    `json:"payment_id"`
	AmountTendered    pgtype.Numeric `json:"amount_tendered"`
	ChangeAmount      pgtype.Numeric `json:"change_amount"`
}

func (q *Queries) ConfirmOrderPayment(ctx context.Context, arg ConfirmOrderPaymentParams) (Order, error) {
	row := q.db.QueryRow(ctx, confirmOrderPayment,
		arg.ID,
		arg.OutletID,
		arg.DiscountID,
		arg.DiscountName,
		arg.DiscountKind,
		arg.DiscountValue,
		arg.Subtotal,
		arg.MenuDiscountTotal,
		arg.ModifierTotal,
		arg.TotalDiscount,
		arg.TaxAmount,
		arg.GratuityAmount,
		arg.FinalTotal,
		arg.PaymentMethod,
		arg.PaymentID,
		arg.AmountTendered,
		arg.ChangeAmount,
	)
	return scanOrder(row)
}

const updateOrderStatus = `-- name: UpdateOrderStatus :one
UPDATE orders SET
    status = $3,
    completed_at = CASE WHEN $3 = 'selesai' THEN now() ELSE completed_at END,
    updated_at = now()
WHERE id = $1 AND outlet_id = $2 AND status = $4
RETURNING ` + orderColumns

type UpdateOrderStatusParams struct {
	ID         uuid.UUID `json:"id"`
	OutletID   uuid.UUID `json:"outlet_id"`
	Status     string    `json:"status"`
	FromStatus string    `json:"from_status"`
}

func (q *Queries) UpdateOrderStatus(ctx context.Context, arg UpdateOrderStatusParams) (Order, error) {
	row := q.db.QueryRow(ctx, updateOrderStatus,
		arg.ID,
		arg.OutletID,
		arg.Status,
		arg.FromStatus,
	)
	return scanOrder(row)
}

const deleteOrder = `-- name: DeleteOrder :one
DELETE FROM orders
WHERE id = $1 AND outlet_id = $2 AND status IN ('pending', 'dibatalkan')
RETURNING id
`

type DeleteOrderParams struct {
	ID       uuid.UUID `json:"id"`
	OutletID uuid.UUID `json:"outlet_id"`
}

func (q *Queries) DeleteOrder(ctx context.Context, arg DeleteOrderParams) (uuid.UUID, error) {
	row := q.db.QueryRow(ctx, deleteOrder, arg.ID, arg.OutletID)
	var id uuid.UUID
	err := row.Scan(&id)
	return id, err
}
