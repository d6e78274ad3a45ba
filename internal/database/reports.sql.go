package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// Paid orders are those in sedang_diproses or selesai.

const getDailySales = `-- name: GetDailySales :many
SELECT
    DATE(created_at AT TIME ZONE 'Asia/Jakarta')::date AS sale_date,
    COUNT(*)::bigint AS order_count,
    COALESCE(SUM(subtotal + modifier_total), 0)::numeric AS gross_sales,
    COALESCE(SUM(total_discount), 0)::numeric AS total_discount,
    COALESCE(SUM(tax_amount), 0)::numeric AS tax_amount,
    COALESCE(SUM(gratuity_amount), 0)::numeric AS gratuity_amount,
    COALESCE(SUM(final_total), 0)::numeric AS net_sales
FROM orders
WHERE outlet_id = $1
  AND status IN ('sedang_diproses', 'selesai')
  AND created_at >= $2 AND created_at < $3
GROUP BY sale_date
ORDER BY sale_date
`

type GetDailySalesParams struct {
	OutletID  uuid.UUID `json:"outlet_id"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

type GetDailySalesRow struct {
	SaleDate       pgtype.Date    `json:"sale_date"`
	OrderCount     int64          `json:"order_count"`
	GrossSales     pgtype.Numeric `json:"gross_sales"`
	TotalDiscount  pgtype.Numeric `json:"total_discount"`
	TaxAmount      pgtype.Numeric `json:"tax_amount"`
	GratuityAmount pgtype.Numeric `json:"gratuity_amount"`
	NetSales       pgtype.Numeric `json:"net_sales"`
}

func (q *Queries) GetDailySales(ctx context.Context, arg GetDailySalesParams) ([]GetDailySalesRow, error) {
	rows, err := q.db.Query(ctx, getDailySales, arg.OutletID, arg.StartDate, arg.EndDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []GetDailySalesRow{}
	for rows.Next() {
		var i GetDailySalesRow
		if err := rows.Scan(
			&i.SaleDate,
			&i.OrderCount,
			&i.GrossSales,
			&i.TotalDiscount,
			&i.TaxAmount,
			&i.GratuityAmount,
			&i.NetSales,
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

const getMenuSales = `-- name: GetMenuSales :many
SELECT
    oi.menu_item_id,
    oi.name,
    SUM(oi.quantity)::bigint AS quantity_sold,
    COALESCE(SUM(oi.subtotal), 0)::numeric AS revenue
FROM order_items oi
JOIN orders o ON o.id = oi.order_id
WHERE o.outlet_id = $1
  AND o.status IN ('sedang_diproses', 'selesai')
  AND o.created_at >= $2 AND o.created_at < $3
GROUP BY oi.menu_item_id, oi.name
ORDER BY revenue DESC
`

type GetMenuSalesParams struct {
	OutletID  uuid.UUID `json:"outlet_id"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

type GetMenuSalesRow struct {
	MenuItemID   uuid.UUID      `json:"menu_item_id"`
	Name         string         `json:"name"`
	QuantitySold int64          `json:"quantity_sold"`
	Revenue      pgtype.Numeric `json:"revenue"`
}

func (q *Queries) GetMenuSales(ctx context.Context, arg GetMenuSalesParams) ([]GetMenuSalesRow, error) {
	rows, err := q.db.Query(ctx, getMenuSales, arg.OutletID, arg.StartDate, arg.EndDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []GetMenuSalesRow{}
	for rows.Next() {
		var i GetMenuSalesRow
		if err := rows.Scan(
			&i.MenuItemID,
			&i.Name,
			&i.QuantitySold,
			&i.Revenue,
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

const getPaymentSummary = `-- name: GetPaymentSummary :many
SELECT
    payment_method::text AS payment_method,
    COUNT(*)::bigint AS order_count,
    COALESCE(SUM(final_total), 0)::numeric AS total_amount
FROM orders
WHERE outlet_id = $1
  AND status IN ('sedang_diproses', 'selesai')
  AND payment_method IS NOT NULL
  AND created_at >= $2 AND created_at < $3
GROUP BY payment_method
ORDER BY total_amount DESC
`

type GetPaymentSummaryParams struct {
	OutletID  uuid.UUID `json:"outlet_id"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

type GetPaymentSummaryRow struct {
	PaymentMethod string         `json:"payment_method"`
	OrderCount    int64          `json:"order_count"`
	TotalAmount   pgtype.Numeric `json:"total_amount"`
}

func (q *Queries) GetPaymentSummary(ctx context.Context, arg GetPaymentSummaryParams) ([]GetPaymentSummaryRow, error) {
	rows, err := q.db.Query(ctx, getPaymentSummary, arg.OutletID, arg.StartDate, arg.EndDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []GetPaymentSummaryRow{}
	for rows.Next() {
		var i GetPaymentSummaryRow
		if err := rows.Scan(&i.PaymentMethod, &i.OrderCount, &i.TotalAmount); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getHourlySales = `-- name: GetHourlySales :many
SELECT
    EXTRACT(HOUR FROM created_at AT TIME ZONE 'Asia/Jakarta')::int AS hour,
    COUNT(*)::bigint AS order_count,
    COALESCE(SUM(final_total), 0)::numeric AS total_revenue
FROM orders
WHERE outlet_id = $1
  AND status IN ('sedang_diproses', 'selesai')
  AND created_at >= $2 AND created_at < $3
GROUP BY hour
ORDER BY hour
`

type GetHourlySalesParams struct {
	OutletID  uuid.UUID `json:"outlet_id"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

type GetHourlySalesRow struct {
	Hour         int32          `json:"hour"`
	OrderCount   int64          `json:"order_count"`
	TotalRevenue pgtype.Numeric `json:"total_revenue"`
}

func (q *Queries) GetHourlySales(ctx context.Context, arg GetHourlySalesParams) ([]GetHourlySalesRow, error) {
	rows, err := q.db.Query(ctx, getHourlySales, arg.OutletID, arg.StartDate, arg.EndDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []GetHourlySalesRow{}
	for rows.Next() {
		var i GetHourlySalesRow
		if err := rows.Scan(&i.Hour, &i.OrderCount, &i.TotalRevenue); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getOutletComparison = `-- name: GetOutletComparison :many
SELECT
    ou.id AS outlet_id,
    ou.name AS outlet_name,
    COUNT(o.id)::bigint AS order_count,
    COALESCE(SUM(o.final_total), 0)::numeric AS total_revenue
FROM outlets ou
LEFT JOIN orders o ON o.outlet_id = ou.id
  AND o.status IN ('sedang_diproses', 'selesai')
  AND o.created_at >= $1 AND o.created_at < $2
WHERE ou.is_active = true
GROUP BY ou.id, ou.name
ORDER BY total_revenue DESC, ou.name
`

type GetOutletComparisonParams struct {
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

type GetOutletComparisonRow struct {
	OutletID     uuid.UUID      `json:"outlet_id"`
	OutletName   string         `json:"outlet_name"`
	OrderCount   int64          `json:"order_count"`
	TotalRevenue pgtype.Numeric `json:"total_revenue"`
}

func (q *Queries) GetOutletComparison(ctx context.Context, arg GetOutletComparisonParams) ([]GetOutletComparisonRow, error) {
	rows, err := q.db.Query(ctx, getOutletComparison, arg.StartDate, arg.EndDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []GetOutletComparisonRow{}
	for rows.Next() {
		var i GetOutletComparisonRow
		if err := rows.Scan(&i.OutletID, &i.OutletName, &i.OrderCount, &i.TotalRevenue); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
