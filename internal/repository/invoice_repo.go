package repository

import (
	"context"
	"errors"

	"reviewflow/internal/model"

	"gorm.io/gorm"
)

var ErrInvoiceNotFound = errors.New("tax invoice not found")

type InvoiceRepository struct {
	db *gorm.DB
}

func NewInvoiceRepository(db *gorm.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

func (r *InvoiceRepository) Create(ctx context.Context, tx *gorm.DB, invoice *model.TaxInvoice) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Create(invoice).Error
}

func (r *InvoiceRepository) GetByReviewRequestID(ctx context.Context, reviewRequestID int64) (*model.TaxInvoice, error) {
	var invoice model.TaxInvoice
	err := r.db.WithContext(ctx).Where("review_request_id = ?", reviewRequestID).First(&invoice).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvoiceNotFound
		}
		return nil, err
	}
	return &invoice, nil
}

func (r *InvoiceRepository) ListBySellerID(ctx context.Context, sellerID int64, page, pageSize int) ([]*model.TaxInvoice, int64, error) {
	var invoices []*model.TaxInvoice
	var total int64

	query := r.db.WithContext(ctx).Model(&model.TaxInvoice{}).Where("seller_id = ?", sellerID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&invoices).Error

	return invoices, total, err
}
