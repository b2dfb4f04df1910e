package models

import "time"

// AccountStatus is the purchasing switch flipped by parental consent.
type AccountStatus struct {
	UserID            string    `json:"userId"`
	PurchasingEnabled bool      `json:"purchasingEnabled"`
	UpdatedAt         time.Time `json:"updatedAt"`
}
