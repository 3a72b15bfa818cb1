package models

import "time"

// Ledger entry types.
const (
	LedgerTypePurchase = "purchase"
	LedgerTypeGift     = "gift"
	LedgerTypeDebit    = "debit"
	LedgerTypeRefund   = "refund"
)

// CreditLedgerEntry is one immutable row in the append-only credit ledger.
// Positive amounts are credit batches, negative amounts are debits. A debit
// carries the expiry of the batch it consumed, so that summing rows with
// expires_at > now nets consumed credit out before its batch expires.
// Rows are never updated or deleted.
type CreditLedgerEntry struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	PhotographerID uint      `gorm:"index:idx_ledger_photographer_expiry,priority:1;not null" json:"photographer_id"`
	Amount         int64     `gorm:"not null" json:"amount"`
	Type           string    `gorm:"type:varchar(20);not null" json:"type"`
	ExpiresAt      time.Time `gorm:"type:datetime;not null;index:idx_ledger_photographer_expiry,priority:2" json:"expires_at"`
	// Nullable so rows without a reference (debits) never collide; the
	// unique index makes concurrent webhook replays of one order race on
	// the insert instead of double-crediting.
	ExternalReference *string   `gorm:"type:varchar(191);uniqueIndex" json:"external_reference,omitempty"`
	CreatedAt         time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName keeps the audit-trail naming explicit.
func (CreditLedgerEntry) TableName() string {
	return "credit_ledger_entries"
}
