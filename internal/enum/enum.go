package enum

// ── Group A: State machines (CHECK constrained in DB) ──

const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "sedang_diproses"
	OrderStatusCompleted  = "selesai"
	OrderStatusCancelled  = "dibatalkan"
)

// ── Group B: Pricing vocabulary (CHECK constrained in DB) ──

const (
	DiscountKindPercentage = "PERCENTAGE"
	DiscountKindFixed      = "FIXED"
)

const (
	DiscountScopeMenu  = "MENU"
	DiscountScopeTotal = "TOTAL"
)

const (
	RateKindTax      = "TAX"
	RateKindGratuity = "GRATUITY"
)

// ── Group C: Borderline (CHECK constrained in DB) ──

const (
	UserRoleOwner   = "OWNER"
	UserRoleManager = "MANAGER"
	UserRoleCashier = "CASHIER"
	UserRoleKiosk   = "KIOSK"
)

const (
	OrderSourceCustomer = "CUSTOMER"
	OrderSourceCashier  = "CASHIER"
)

// ── Group D: Configurable labels (no DB constraint) ──

const (
	PaymentMethodCash     = "CASH"
	PaymentMethodQRIS     = "QRIS"
	PaymentMethodTransfer = "TRANSFER"
	PaymentMethodCard     = "CARD"
)
