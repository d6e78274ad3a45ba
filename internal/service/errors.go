package service

import "errors"

// Error kinds. Every error returned by this package matches exactly one of
// them with errors.Is, or is an unexpected internal failure.
var (
	ErrValidation      = errors.New("validation failed")
	ErrStateTransition = errors.New("invalid state transition")
	ErrNotFound        = errors.New("not found")
	ErrUpstream        = errors.New("upstream unavailable")
)

// Error is a classified service error. Msg is safe to show to the caller.
type Error struct {
	Kind error
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

func validation(msg string) *Error { return &Error{Kind: ErrValidation, Msg: msg} }
func transition(msg string) *Error { return &Error{Kind: ErrStateTransition, Msg: msg} }

// upstream classifies a store or catalog failure.
func upstream(op string, err error) error {
	return &Error{Kind: ErrUpstream, Msg: op, Err: err}
}

// Errors returned by the order service.
var (
	ErrEmptyItems           = validation("items are required")
	ErrCustomerNameRequired = validation("customer_name is required")
	ErrTableRequired        = validation("table_number is required")
	ErrInvalidSource        = validation("invalid source")
	ErrInvalidQuantity      = validation("quantity must be > 0")
	ErrInvalidMenuItemID    = validation("invalid menu_item_id")
	ErrMenuItemNotFound     = validation("menu item not found in outlet")
	ErrInvalidModifierID    = validation("invalid modifier_id")
	ErrModifierNotFound     = validation("modifier not offered on this menu item")
	ErrDuplicateModifier    = validation("only one modifier per modifier category")
	ErrInvalidDiscountID    = validation("invalid discount_id")
	ErrDiscountNotFound     = validation("discount not found or inactive")
	ErrInvalidPaymentMethod = validation("invalid payment_method")
	ErrInsufficientPayment  = validation("insufficient payment")
	ErrTooFewOrders         = validation("at least two orders are required")
	ErrTableMismatch        = validation("orders belong to different tables")

	ErrInvalidTransition = transition("invalid status transition")
	ErrPaymentRequired   = transition("orders move to sedang_diproses only through payment confirmation")
	ErrNotDeletable      = transition("only pending or cancelled orders can be deleted")

	ErrOrderNotFound = &Error{Kind: ErrNotFound, Msg: "order not found"}
)
