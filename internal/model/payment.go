package model

import (
	"time"
)

const (
	TxnTypeRecharge   = "RECHARGE"    // wallet top-up
	TxnTypeWalletPay  = "WALLET_PAY"  // seller pays a request from the wallet
	TxnTypeGatewayPay = "GATEWAY_PAY" // seller pays through the gateway
	TxnTypeRefund     = "REFUND"      // reviewer's purchase refund on step 4
	TxnTypeCommission = "COMMISSION"  // reviewer's commission on step 4
)

const (
	TxnStatusSuccess = "SUCCESS"
	TxnStatusFailed  = "FAILED"
)

// PaymentTransaction is the append-only audit log: one row per money
// movement, never updated, never deleted. Balance before/after snapshots
// make reconciliation a pure scan.
type PaymentTransaction struct {
	ID              int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	TxnNo           string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"txn_no"`
	OwnerID         int64     `gorm:"index;not null" json:"owner_id"`
	ReviewRequestID *int64    `gorm:"index" json:"review_request_id"`
	TaskID          *int64    `gorm:"index" json:"task_id"`
	Amount          int64     `gorm:"not null" json:"amount"` // signed: credit > 0, debit < 0
	Type            string    `gorm:"type:varchar(20);index;not null" json:"type"`
	Gateway         string    `gorm:"type:varchar(32)" json:"gateway"` // wallet, razorpay, ...
	GatewayRef      string    `gorm:"type:varchar(128)" json:"gateway_ref"`
	BalanceBefore   int64     `gorm:"not null" json:"balance_before"`
	BalanceAfter    int64     `gorm:"not null" json:"balance_after"`
	Status          string    `gorm:"type:varchar(20);not null;default:SUCCESS" json:"status"`
	Remark          string    `gorm:"type:varchar(256)" json:"remark"`
	CreatedAt       time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (PaymentTransaction) TableName() string {
	return "payment_transaction"
}
