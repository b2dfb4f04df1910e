package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SpendingRecord is an immutable ledger entry.
type SpendingRecord struct {
	ID                   string          `json:"id"`
	UserID               string          `json:"userId"`
	Amount               decimal.Decimal `json:"amount"`
	Description          string          `json:"description"`
	TransactionTimestamp time.Time       `json:"transactionTimestamp"`
}

// Usage is the spend already recorded for the current day and month.
type Usage struct {
	Daily   decimal.Decimal `json:"daily"`
	Monthly decimal.Decimal `json:"monthly"`
}
