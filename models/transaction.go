package models

import "time"

// TxnType is either income or expense.
type TxnType string

const (
	TxnIncome  TxnType = "income"
	TxnExpense TxnType = "expense"
)

// Valid reports whether t is a known type.
func (t TxnType) Valid() bool { return t == TxnIncome || t == TxnExpense }

// Transaction is one income or expense entry. AmountMinor is in paise.
type Transaction struct {
	ID          uint `gorm:"primaryKey"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	UserID      uint      `gorm:"index;not null"`
	Type        TxnType   `gorm:"size:16;not null;index"`
	Date        time.Time `gorm:"type:date;not null;index"`
	CategoryID  *uint     `gorm:"index"`
	Category    *Category `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
	Description *string   `gorm:"size:512"`
	AmountMinor int64     `gorm:"not null"`
}
