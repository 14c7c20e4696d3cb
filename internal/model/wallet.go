package model

import (
	"time"
)

// Wallet is the per-owner running balance. The owner is a user row,
// regardless of role (sellers fund requests, reviewers receive payouts).
//
// All amounts in the system are integer paise. Balance must never go
// negative; every mutation happens inside a transaction that also appends
// a PaymentTransaction row.
type Wallet struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	OwnerID    int64     `gorm:"uniqueIndex;not null" json:"owner_id"`
	Balance    int64     `gorm:"not null;default:0" json:"balance"`
	TotalSpent int64     `gorm:"not null;default:0" json:"total_spent"`
	Version    int       `gorm:"not null;default:0" json:"version"` // optimistic lock
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Wallet) TableName() string {
	return "wallet"
}
