package database

import (
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type Outlet struct {
	ID        uuid.UUID          `json:"id"`
	Name      string             `json:"name"`
	Address   pgtype.Text        `json:"address"`
	Phone     pgtype.Text        `json:"phone"`
	IsActive  bool               `json:"is_active"`
	CreatedAt pgtype.Timestamptz `json:"created_at"`
}

type Discount struct {
	ID        uuid.UUID          `json:"id"`
	OutletID  uuid.UUID          `json:"outlet_id"`
	Name      string             `json:"name"`
	Kind      string             `json:"kind"`
	Scope     string             `json:"scope"`
	Value     pgtype.Numeric     `json:"value"`
	IsActive  bool               `json:"is_active"`
	CreatedAt pgtype.Timestamptz `json:"created_at"`
	UpdatedAt pgtype.Timestamptz `json:"updated_at"`
}

type MenuItem struct {
	ID         uuid.UUID          `json:"id"`
	OutletID   uuid.UUID          `json:"outlet_id"`
	Name       string             `json:"name"`
	Category   string             `json:"category"`
	Price      pgtype.Numeric     `json:"price"`
	DiscountID pgtype.UUID        `json:"discount_id"`
	IsActive   bool               `json:"is_active"`
	SortOrder  int32              `json:"sort_order"`
	CreatedAt  pgtype.Timestamptz `json:"created_at"`
	UpdatedAt  pgtype.Timestamptz `json:"updated_at"`
}

type ModifierCategory struct {
	ID        uuid.UUID          `json:"id"`
	OutletID  uuid.UUID          `json:"outlet_id"`
	Name      string             `json:"name"`
	SortOrder int32              `json:"sort_order"`
	CreatedAt pgtype.Timestamptz `json:"created_at"`
}

type Modifier struct {
	ID         uuid.UUID          `json:"id"`
	MenuItemID uuid.UUID          `json:"menu_item_id"`
	CategoryID uuid.UUID          `json:"category_id"`
	Name       string             `json:"name"`
	Price      pgtype.Numeric     `json:"price"`
	IsActive   bool               `json:"is_active"`
	CreatedAt  pgtype.Timestamptz `json:"created_at"`
}

type Rate struct {
	ID         uuid.UUID          `json:"id"`
	OutletID   uuid.UUID          `json:"outlet_id"`
	Kind       string             `json:"kind"`
	Name       string             `json:"name"`
	Percentage pgtype.Numeric     `json:"percentage"`
	IsActive   bool               `json:"is_active"`
	CreatedAt  pgtype.Timestamptz `json:"created_at"`
	UpdatedAt  pgtype.Timestamptz `json:"updated_at"`
}

type Order struct {
	ID                uuid.UUID          `json:"id"`
	OutletID          uuid.UUID          `json:"outlet_id"`
	OrderNumber       string             `json:"order_number"`
	CustomerName      string             `json:"customer_name"`
	TableNumber       string             `json:"table_number"`
	Source            string             `json:"source"`
	Status            string             `json:"status"`
	Notes             pgtype.Text        `json:"notes"`
	DiscountID        pgtype.UUID        `json:"discount_id"`
	DiscountName      pgtype.Text        `json:"discount_name"`
	DiscountKind      pgtype.Text        `json:"discount_kind"`
	DiscountValue     pgtype.Numeric     `json:"discount_value"`
	TaxRate           pgtype.Numeric     `json:"tax_rate"`
	GratuityRate      pgtype.Numeric     `json:"gratuity_rate"`
	Subtotal          pgtype.Numeric     `json:"subtotal"`
	MenuDiscountTotal pgtype.Numeric     `json:"menu_discount_total"`
	ModifierTotal     pgtype.Numeric     `json:"modifier_total"`
	TotalDiscount     pgtype.Numeric     `json:"total_discount"`
	TaxAmount         pgtype.Numeric     `json:"tax_amount"`
	GratuityAmount    pgtype.Numeric     `json:"gratuity_amount"`
	FinalTotal        pgtype.Numeric     `json:"final_total"`
	PaymentMethod     pgtype.Text        `json:"payment_method"`
	PaymentID         pgtype.Text        `json:"payment_id"`
	AmountTendered    pgtype.Numeric     `json:"amount_tendered"`
	ChangeAmount      pgtype.Numeric     `json:"change_amount"`
	PaidAt            pgtype.Timestamptz `json:"paid_at"`
	CompletedAt       pgtype.Timestamptz `json:"completed_at"`
	CreatedBy         pgtype.UUID        `json:"created_by"`
	CreatedAt         pgtype.Timestamptz `json:"created_at"`
	UpdatedAt         pgtype.Timestamptz `json:"updated_at"`
}

type OrderItem struct {
	ID             uuid.UUID      `json:"id"`
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

type OrderItemModifier struct {
	ID          uuid.UUID      `json:"id"`
	OrderItemID uuid.UUID      `json:"order_item_id"`
	ModifierID  uuid.UUID      `json:"modifier_id"`
	CategoryID  uuid.UUID      `json:"category_id"`
	Name        string         `json:"name"`
	Price       pgtype.Numeric `json:"price"`
}
