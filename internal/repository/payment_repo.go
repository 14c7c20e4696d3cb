package repository

import (
	"context"
	"errors"

	"reviewflow/internal/model"

	"gorm.io/gorm"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Create appends one transaction row. The table is append-only: there is
// deliberately no update or delete method here.
func (r *PaymentRepository) Create(ctx context.Context, tx *gorm.DB, txn *model.PaymentTransaction) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Create(txn).Error
}

func (r *PaymentRepository) GetByTxnNo(ctx context.Context, txnNo string) (*model.PaymentTransaction, error) {
	var txn model.PaymentTransaction
	err := r.db.WithContext(ctx).Where("txn_no = ?", txnNo).First(&txn).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &txn, nil
}

// GetByTaskIDAndType looks up an existing payout row; the payout handler
// uses this to stay idempotent under at-least-once job delivery.
func (r *PaymentRepository) GetByTaskIDAndType(ctx context.Context, taskID int64, txnType string) (*model.PaymentTransaction, error) {
	var txn model.PaymentTransaction
	err := r.db.WithContext(ctx).
		Where("task_id = ? AND type = ?", taskID, txnType).
		First(&txn).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &txn, nil
}

func (r *PaymentRepository) ListByOwnerID(ctx context.Context, ownerID int64, page, pageSize int) ([]*model.PaymentTransaction, int64, error) {
	var txns []*model.PaymentTransaction
	var total int64

	query := r.db.WithContext(ctx).Model(&model.PaymentTransaction{}).Where("owner_id = ?", ownerID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&txns).Error

	return txns, total, err
}
