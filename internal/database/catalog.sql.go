package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const listMenuItems = `-- name: ListMenuItems :many
SELECT id, outlet_id, name, category, price, discount_id, is_active, sort_order, created_at, updated_at
FROM menu_items
WHERE outlet_id = $1 AND is_active = true
ORDER BY category, sort_order, name
`

func (q *Queries) ListMenuItems(ctx context.Context, outletID uuid.UUID) ([]MenuItem, error) {
	rows, err := q.db.Query(ctx, listMenuItems, outletID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []MenuItem{}
	for rows.Next() {
		var i MenuItem
		if err := rows.Scan(
			&i.ID,
			&i.OutletID,
			&i.Name,
			&i.Category,
			&i.Price,
			&i.DiscountID,
			&i.IsActive,
			&i.SortOrder,
			&i.CreatedAt,
			&i.UpdatedAt,
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

const getMenuItem = `-- name: GetMenuItem :one
SELECT id, outlet_id, name, category, price, discount_id, is_active, sort_order, created_at, updated_at
FROM menu_items
WHERE id = $1 AND outlet_id = $2 AND is_active = true
`

type GetMenuItemParams struct {
	ID       uuid.UUID `json:"id"`
	OutletID uuid.UUID `json:"outlet_id"`
}

func (q *Queries) GetMenuItem(ctx context.Context, arg GetMenuItemParams) (MenuItem, error) {
	row := q.db.QueryRow(ctx, getMenuItem, arg.ID, arg.OutletID)
	var i MenuItem
	err := row.Scan(
		&i.ID,
		&i.OutletID,
		&i.Name,
		&i.Category,
		&i.Price,
		&i.DiscountID,
		&i.IsActive,
		&i.SortOrder,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const createMenuItem = `-- name: CreateMenuItem :one
INSERT INTO menu_items (outlet_id, name, category, price, discount_id, sort_order)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, outlet_id, name, category, price, discount_id, is_active, sort_order, created_at, updated_at
`

type CreateMenuItemParams struct {
	OutletID   uuid.UUID      `json:"outlet_id"`
	Name       string         `json:"name"`
	Category   string         `json:"category"`
	Price      pgtype.Numeric `json:"price"`
	DiscountID pgtype.UUID    `json:"discount_id"`
	SortOrder  int32          `json:"sort_order"`
}

func (q *Queries) CreateMenuItem(ctx context.Context, arg CreateMenuItemParams) (MenuItem, error) {
	row := q.db.QueryRow(ctx, createMenuItem,
		arg.OutletID,
		arg.Name,
		arg.Category,
		arg.Price,
		arg.DiscountID,
		arg.SortOrder,
	)
	var i MenuItem
	err := row.Scan(
		&i.ID,
		&i.OutletID,
		&i.Name,
		&i.Category,
		&i.Price,
		&i.DiscountID,
		&i.IsActive,
		&i.SortOrder,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const updateMenuItem = `-- name: UpdateMenuItem :one
UPDATE menu_items
SET name = $3, category = $4, price = $5, discount_id = $6, sort_order = $7, updated_at = now()
WHERE id = $1 AND outlet_id = $2 AND is_active = true
RETURNING id, outlet_id, name, category, price, discount_id, is_active, sort_order, created_at, updated_at
`

type UpdateMenuItemParams struct {
	ID         uuid.UUID      `json:"id"`
	OutletID   uuid.UUID      `json:"outlet_id"`
	Name       string         `json:"name"`
	Category   string         `json:"category"`
	Price      pgtype.Numeric `json:"price"`
	DiscountID pgtype.UUID    `json:"discount_id"`
	SortOrder  int32          `json:"sort_order"`
}

func (q *Queries) UpdateMenuItem(ctx context.Context, arg UpdateMenuItemParams) (MenuItem, error) {
	row := q.db.QueryRow(ctx, updateMenuItem,
		arg.ID,
		arg.OutletID,
		arg.Name,
		arg.Category,
		arg.Price,
		arg.DiscountID,
		arg.SortOrder,
	)
	var i MenuItem
	err := row.Scan(
		&i.ID,
		&i.OutletID,
		&i.Name,
		&i.Category,
		&i.Price,
		&i.DiscountID,
		&i.IsActive,
		&i.SortOrder,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const deactivateMenuItem = `-- name: DeactivateMenuItem :one
UPDATE menu_items SET is_active = false, updated_at = now()
WHERE id = $1 AND outlet_id = $2 AND is_active = true
RETURNING id
`

type DeactivateMenuItemParams struct {
	ID       uuid.UUID `json:"id"`
	OutletID uuid.UUID `json:"outlet_id"`
}

func (q *Queries) DeactivateMenuItem(ctx context.Context, arg DeactivateMenuItemParams) (uuid.UUID, error) {
	row := q.db.QueryRow(ctx, deactivateMenuItem, arg.ID, arg.OutletID)
	var id uuid.UUID
	err := row.Scan(&id)
	return id, err
}

const listModifierCategories = `-- name: ListModifierCategories :many
SELECT id, outlet_id, name, sort_order, created_at
FROM modifier_categories
WHERE outlet_id = $1
ORDER BY sort_order, name
`

func (q *Queries) ListModifierCategories(ctx context.Context, outletID uuid.UUID) ([]ModifierCategory, error) {
	rows, err := q.db.Query(ctx, listModifierCategories, outletID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []ModifierCategory{}
	for rows.Next() {
		var i ModifierCategory
		if err := rows.Scan(
			&i.ID,
			&i.OutletID,
			&i.Name,
			&i.SortOrder,
			&i.CreatedAt,
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

const getModifierCategory = `-- name: GetModifierCategory :one
SELECT id, outlet_id, name, sort_order, created_at
FROM modifier_categories
WHERE id = $1 AND outlet_id = $2
`

type GetModifierCategoryParams struct {
	ID       uuid.UUID `json:"id"`
	OutletID uuid.UUID `json:"outlet_id"`
}

func (q *Queries) GetModifierCategory(ctx context.Context, arg GetModifierCategoryParams) (ModifierCategory, error) {
	row := q.db.QueryRow(ctx, getModifierCategory, arg.ID, arg.OutletID)
	var i ModifierCategory
	err := row.Scan(
		&i.ID,
		&i.OutletID,
		&i.Name,
		&i.SortOrder,
		&i.CreatedAt,
	)
	return i, err
}

const createModifierCategory = `-- name: CreateModifierCategory :one
INSERT INTO modifier_categories (outlet_id, name, sort_order)
VALUES ($1, $2, $3)
RETURNING id, outlet_id, name, sort_order, created_at
`

type CreateModifierCategoryParams struct {
	OutletID  uuid.UUID `json:"outlet_id"`
	Name      string    `json:"name"`
	SortOrder int32     `json:"sort_order"`
}

func (q *Queries) CreateModifierCategory(ctx context.Context, arg CreateModifierCategoryParams) (ModifierCategory, error) {
	row := q.db.QueryRow(ctx, createModifierCategory, arg.OutletID, arg.Name, arg.SortOrder)
	var i ModifierCategory
	err := row.Scan(
		&i.ID,
		&i.OutletID,
		&i.Name,
		&i.SortOrder,
		&i.CreatedAt,
	)
	return i, err
}

const listModifiersByOutlet = `-- name: ListModifiersByOutlet :many
SELECT m.id, m.menu_item_id, m.category_id, m.name, m.price, m.is_active, m.created_at
FROM modifiers m
JOIN menu_items mi ON mi.id = m.menu_item_id
WHERE mi.outlet_id = $1 AND mi.is_active = true AND m.is_active = true
ORDER BY m.menu_item_id, m.category_id, m.name
`

func (q *Queries) ListModifiersByOutlet(ctx context.Context, outletID uuid.UUID) ([]Modifier, error) {
	rows, err := q.db.Query(ctx, listModifiersByOutlet, outletID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Modifier{}
	for rows.Next() {
		var i Modifier
		if err := rows.Scan(
			&i.ID,
			&i.MenuItemID,
			&i.CategoryID,
			&i.Name,
			&i.Price,
			&i.IsActive,
			&i.CreatedAt,
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

const createModifier = `-- name: CreateModifier :one
INSERT INTO modifiers (menu_item_id, category_id, name, price)
VALUES ($1, $2, $3, $4)
RETURNING id, menu_item_id, category_id, name, price, is_active, created_at
`

type CreateModifierParams struct {
	MenuItemID uuid.UUID      `json:"menu_item_id"`
	CategoryID uuid.UUID      `json:"category_id"`
	Name       string         `json:"name"`
	Price      pgtype.Numeric `json:"price"`
}

func (q *Queries) CreateModifier(ctx context.Context, arg CreateModifierParams) (Modifier, error) {
	row := q.db.QueryRow(ctx, createModifier,
		arg.MenuItemID,
		arg.CategoryID,
		arg.Name,
		arg.Price,
	)
	var i Modifier
	err := row.Scan(
		&i.ID,
		&i.MenuItemID,
		&i.CategoryID,
		&i.Name,
		&i.Price,
		&i.IsActive,
		&i.CreatedAt,
	)
	return i, err
}

const listActiveDiscounts = `-- name: ListActiveDiscounts :many
SELECT id, outlet_id, name, kind, scope, value, is_active, created_at, updated_at
FROM discounts
WHERE outlet_id = $1 AND is_active = true
ORDER BY scope, name
`

func (q *Queries) ListActiveDiscounts(ctx context.Context, outletID uuid.UUID) ([]Discount, error) {
	rows, err := q.db.Query(ctx, listActiveDiscounts, outletID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Discount{}
	for rows.Next() {
		var i Discount
		if err := rows.Scan(
			&i.ID,
			&i.OutletID,
			&i.Name,
			&i.Kind,
			&i.Scope,
			&i.Value,
			&i.IsActive,
			&i.CreatedAt,
			&i.UpdatedAt,
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

const getDiscount = `-- name: GetDiscount :one
SELECT id, outlet_id, name, kind, scope, value, is_active, created_at, updated_at
FROM discounts
WHERE id = $1 AND outlet_id = $2
`

type GetDiscountParams struct {
	ID       uuid.UUID `json:"id"`
	OutletID uuid.UUID `json:"outlet_id"`
}

func (q *Queries) GetDiscount(ctx context.Context, arg GetDiscountParams) (Discount, error) {
	row := q.db.QueryRow(ctx, getDiscount, arg.ID, arg.OutletID)
	var i Discount
	err := row.Scan(
		&i.ID,
		&i.OutletID,
		&i.Name,
		&i.Kind,
		&i.Scope,
		&i.Value,
		&i.IsActive,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const createDiscount = `-- name: CreateDiscount :one
INSERT INTO discounts (outlet_id, name, kind, scope, value, is_active)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, outlet_id, name, kind, scope, value, is_active, created_at, updated_at
`

type CreateDiscountParams struct {
	OutletID uuid.UUID      `json:"outlet_id"`
	Name     string         `json:"name"`
	Kind     string         `json:"kind"`
	Scope    string         `json:"scope"`
	Value    pgtype.Numeric `json:"value"`
	IsActive bool           `json:"is_active"`
}

func (q *Queries) CreateDiscount(ctx context.Context, arg CreateDiscountParams) (Discount, error) {
	row := q.db.QueryRow(ctx, createDiscount,
		arg.OutletID,
		arg.Name,
		arg.Kind,
		arg.Scope,
		arg.Value,
		arg.IsActive,
	)
	var i Discount
	err := row.Scan(
		&i.ID,
		&i.OutletID,
		&i.Name,
		&i.Kind,
		&i.Scope,
		&i.Value,
		&i.IsActive,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const setDiscountActive = `-- name: SetDiscountActive :one
UPDATE discounts SET is_active = $3, updated_at = now()
WHERE id = $1 AND outlet_id = $2
RETURNING id, outlet_id, name, kind, scope, value, is_active, created_at, updated_at
`

type SetDiscountActiveParams struct {
	ID       uuid.UUID `json:"id"`
	OutletID uuid.UUID `json:"outlet_id"`
	IsActive bool      `json:"is_active"`
}

func (q *Queries) SetDiscountActive(ctx context.Context, arg SetDiscountActiveParams) (Discount, error) {
	row := q.db.QueryRow(ctx, setDiscountActive, arg.ID, arg.OutletID, arg.IsActive)
	var i Discount
	err := row.Scan(
		&i.ID,
		&i.OutletID,
		&i.Name,
		&i.Kind,
		&i.Scope,
		&i.Value,
		&i.IsActive,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const listActiveRates = `-- name: ListActiveRates :many
SELECT id, outlet_id, kind, name, percentage, is_active, created_at, updated_at
FROM rates
WHERE outlet_id = $1 AND is_active = true
ORDER BY kind
`

func (q *Queries) ListActiveRates(ctx context.Context, outletID uuid.UUID) ([]Rate, error) {
	rows, err := q.db.Query(ctx, listActiveRates, outletID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Rate{}
	for rows.Next() {
		var i Rate
		if err := rows.Scan(
			&i.ID,
			&i.OutletID,
			&i.Kind,
			&i.Name,
			&i.Percentage,
			&i.IsActive,
			&i.CreatedAt,
			&i.UpdatedAt,
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

const getActiveRate = `-- name: GetActiveRate :one
SELECT id, outlet_id, kind, name, percentage, is_active, created_at, updated_at
FROM rates
WHERE outlet_id = $1 AND kind = $2 AND is_active = true
`

type GetActiveRateParams struct {
	OutletID uuid.UUID `json:"outlet_id"`
	Kind     string    `json:"kind"`
}

func (q *Queries) GetActiveRate(ctx context.Context, arg GetActiveRateParams) (Rate, error) {
	row := q.db.QueryRow(ctx, getActiveRate, arg.OutletID, arg.Kind)
	var i Rate
	err := row.Scan(
		&i.ID,
		&i.OutletID,
		&i.Kind,
		&i.Name,
		&i.Percentage,
		&i.IsActive,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const createRate = `-- name: CreateRate :one
INSERT INTO rates (outlet_id, kind, name, percentage, is_active)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, outlet_id, kind, name, percentage, is_active, created_at, updated_at
`

type CreateRateParams struct {
	OutletID   uuid.UUID      `json:"outlet_id"`
	Kind       string         `json:"kind"`
	Name       string         `json:"name"`
	Percentage pgtype.Numeric `json:"percentage"`
	IsActive   bool           `json:"is_active"`
}

func (q *Queries) CreateRate(ctx context.Context, arg CreateRateParams) (Rate, error) {
	row := q.db.QueryRow(ctx, createRate,
		arg.OutletID,
		arg.Kind,
		arg.Name,
		arg.Percentage,
		arg.IsActive,
	)
	var i Rate
	err := row.Scan(
		&i.ID,
		&i.OutletID,
		&i.Kind,
		&i.Name,
		&i.Percentage,
		&i.IsActive,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const setRateActive = `-- name: SetRateActive :one
UPDATE rates SET is_active = $4, updated_at = now()
WHERE id = $1 AND outlet_id = $2 AND kind = $3
RETURNING id, outlet_id, kind, name, percentage, is_active, created_at, updated_at
`

type SetRateActiveParams struct {
	ID       uuid.UUID `json:"id"`
	OutletID uuid.UUID `json:"outlet_id"`
	Kind     string    `json:"kind"`
	IsActive bool      `json:"is_active"`
}

func (q *Queries) SetRateActive(ctx context.Context, arg SetRateActiveParams) (Rate, error) {
	row := q.db.QueryRow(ctx, setRateActive,
		arg.ID,
		arg.OutletID,
		arg.Kind,
		arg.IsActive,
	)
	var i Rate
	err := row.Scan(
		&i.ID,
		&i.OutletID,
		&i.Kind,
		&i.Name,
		&i.Percentage,
		&i.IsActive,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}
