package model

import (
	"time"
)

const (
	PaymentStatusPending  = "PENDING"
	PaymentStatusPaid     = "PAID"
	PaymentStatusFailed   = "FAILED"
	PaymentStatusRefunded = "REFUNDED"
)

const (
	AdminStatusPending   = "PENDING"
	AdminStatusApproved  = "APPROVED"
	AdminStatusCompleted = "COMPLETED"
	AdminStatusRejected  = "REJECTED"
)

// ValidPaymentTransitions restricts payment_status changes.
// PAID is terminal except for the refund flow.
var ValidPaymentTransitions = map[string][]string{
	PaymentStatusPending: {PaymentStatusPaid, PaymentStatusFailed},
	PaymentStatusPaid:    {PaymentStatusRefunded},
}

func CanTransitionPayment(from, to string) bool {
	allowed, ok := ValidPaymentTransitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

var ValidAdminTransitions = map[string][]string{
	AdminStatusPending:  {AdminStatusApproved, AdminStatusRejected},
	AdminStatusApproved: {AdminStatusCompleted},
}

func CanTransitionAdmin(from, to string) bool {
	allowed, ok := ValidAdminTransitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// ReviewRequest is a seller's order for N reviews of one product.
// Commercial terms are frozen once payment_status leaves PENDING.
type ReviewRequest struct {
	ID               int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	RequestNo        string     `gorm:"type:varchar(64);uniqueIndex;not null" json:"request_no"`
	SellerID         int64      `gorm:"index;not null" json:"seller_id"`
	ProductName      string     `gorm:"type:varchar(256);not null" json:"product_name"`
	ProductLink      string     `gorm:"type:varchar(512);index;not null" json:"product_link"`
	Price            int64      `gorm:"not null" json:"price"`      // per review, paise
	Commission       int64      `gorm:"not null" json:"commission"` // per review, paise
	ReviewsNeeded    int        `gorm:"not null" json:"reviews_needed"`
	ReviewsCompleted int        `gorm:"not null;default:0" json:"reviews_completed"`
	Subtotal         int64      `gorm:"not null" json:"subtotal"`
	GSTRatePercent   int        `gorm:"not null" json:"gst_rate_percent"`
	GSTAmount        int64      `gorm:"not null" json:"gst_amount"`
	GrandTotal       int64      `gorm:"not null" json:"grand_total"`
	IntraState       bool       `gorm:"not null;default:false" json:"intra_state"` // CGST+SGST vs IGST
	PaymentStatus    string     `gorm:"type:varchar(20);index;not null;default:PENDING" json:"payment_status"`
	AdminStatus      string     `gorm:"type:varchar(20);index;not null;default:PENDING" json:"admin_status"`
	PaidAt           *time.Time `json:"paid_at"`
	CreatedAt        time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (ReviewRequest) TableName() string {
	return "review_request"
}
