package model

import (
	"time"
)

// TaxInvoice is generated exactly once per successful payment.
// Intra-state supplies split GST into CGST+SGST, inter-state uses IGST.
type TaxInvoice struct {
	ID              int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	InvoiceNo       string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"invoice_no"`
	ReviewRequestID int64     `gorm:"uniqueIndex;not null" json:"review_request_id"`
	SellerID        int64     `gorm:"index;not null" json:"seller_id"`
	Subtotal        int64     `gorm:"not null" json:"subtotal"`
	CGST            int64     `gorm:"not null;default:0" json:"cgst"`
	SGST            int64     `gorm:"not null;default:0" json:"sgst"`
	IGST            int64     `gorm:"not null;default:0" json:"igst"`
	GrandTotal      int64     `gorm:"not null" json:"grand_total"`
	PlaceOfSupply   string    `gorm:"type:varchar(64)" json:"place_of_supply"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (TaxInvoice) TableName() string {
	return "tax_invoice"
}
