package models

import "time"

type DepositStatus string

const (
	DepositStatusPending  DepositStatus = "pending"
	DepositStatusApproved DepositStatus = "approved"
)

// ConfirmedPaymentStatuses are the provider statuses accepted as a final
// payment confirmation. Everything else reported by the webhook is ignored.
var ConfirmedPaymentStatuses = map[string]bool{
	"confirmed": true,
	"finished":  true,
}

type User struct {
	TelegramID   int64  `gorm:"primaryKey" json:"telegram_id"`
	FirstName    string `json:"first_name"`
	Username     string `json:"username"`
	BalanceCents int64  `gorm:"not null;default:0" json:"balance_cents"`

	CreatedAt time.Time `json:"created_at"`
}

type Deposit struct {
	ID             uint          `gorm:"primaryKey" json:"id"`
	UserID         int64         `json:"user_id" gorm:"index"`
	AmountEURCents int64         `json:"amount_eur_cents"`
	TxID           string        `json:"tx_id"`
	Ref            string        `gorm:"uniqueIndex" json:"ref"`
	Status         DepositStatus `gorm:"default:pending" json:"status"`
	CreatedAt      time.Time     `json:"created_at"`
	ApprovedAt     *time.Time    `json:"approved_at"`
	AdminNote      string        `json:"admin_note"`
}

// A Product with PriceEURCents == 0 is a custom-spend placeholder category,
// not a purchasable fixed-price item.
type Product struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	Title         string `gorm:"uniqueIndex" json:"title"`
	PriceEURCents int64  `json:"price_eur_cents"`
	FilePath      string `json:"file_path"`
	DeliveryText  string `json:"delivery_text"`
}

func (p *Product) IsCustomPlaceholder() bool {
	return p.PriceEURCents == 0
}

// Purchase rows are append-only; the row is written in the same database
// transaction as the balance debit it accounts for.
type Purchase struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       int64     `json:"user_id" gorm:"index"`
	ProductID    uint      `json:"product_id"`
	Product      Product   `gorm:"foreignKey:ProductID" json:"product"`
	PaidEURCents int64     `json:"paid_eur_cents"`
	CreatedAt    time.Time `json:"created_at"`
}
