package models

// Роли пользователей
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Статусы подарочных карт
const (
	GiftCardStatusAvailable = "available"
	GiftCardStatusPending   = "pending"
	GiftCardStatusSold      = "sold"
	GiftCardStatusDisputed  = "disputed"
)

// Виды заказов
const (
	OrderKindPhoneNumber = "phone_number"
	OrderKindESim        = "esim"
	OrderKindGiftCard    = "gift_card"
	OrderKindSMM         = "smm"
)

// Статусы заказов
const (
	OrderStatusPending   = "pending"
	OrderStatusCompleted = "completed"
	OrderStatusFailed    = "failed"
)

// Типы транзакций
const (
	TransactionTypeDeposit       = "deposit"
	TransactionTypeWithdrawal    = "withdrawal"
	TransactionTypePurchase      = "purchase"
	TransactionTypeEscrowHold    = "escrow_hold"
	TransactionTypeEscrowRelease = "escrow_release"
	TransactionTypeEscrowRefund  = "escrow_refund"
)

// Статусы транзакций
const (
	TransactionStatusPending   = "pending"
	TransactionStatusCompleted = "completed"
	TransactionStatusFailed    = "failed"
)

// Статусы тикетов поддержки
const (
	TicketStatusOpen       = "open"
	TicketStatusInProgress = "in_progress"
	TicketStatusClosed     = "closed"
)

// Статусы eSIM
const (
	ESimStatusAvailable = "available"
	ESimStatusSold      = "sold"
)

// Исходы разрешения спора
const (
	DisputeOutcomeRelease = "release"
	DisputeOutcomeRefund  = "refund"
)
