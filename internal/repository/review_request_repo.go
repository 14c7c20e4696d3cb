package repository

import (
	"context"
	"errors"
	"time"

	"reviewflow/internal/model"

	"gorm.io/gorm"
)

var (
	ErrRequestNotFound     = errors.New("review request not found")
	ErrRequestStatusChange = errors.New("invalid review request status change")
)

type ReviewRequestRepository struct {
	db *gorm.DB
}

func NewReviewRequestRepository(db *gorm.DB) *ReviewRequestRepository {
	return &ReviewRequestRepository{db: db}
}

func (r *ReviewRequestRepository) Create(ctx context.Context, tx *gorm.DB, req *model.ReviewRequest) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Create(req).Error
}

func (r *ReviewRequestRepository) GetByID(ctx context.Context, id int64) (*model.ReviewRequest, error) {
	var req model.ReviewRequest
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&req).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}
	return &req, nil
}

// UpdatePaymentStatus performs a guarded transition. The WHERE clause on
// the current status is what makes double payment impossible: the second
// caller matches zero rows.
func (r *ReviewRequestRepository) UpdatePaymentStatus(ctx context.Context, tx *gorm.DB, id int64, fromStatus, toStatus string) error {
	if !model.CanTransitionPayment(fromStatus, toStatus) {
		return ErrRequestStatusChange
	}

	if tx == nil {
		tx = r.db
	}

	updates := map[string]interface{}{
		"payment_status": toStatus,
	}
	if toStatus == model.PaymentStatusPaid {
		now := time.Now()
		updates["paid_at"] = &now
	}

	result := tx.WithContext(ctx).
		Model(&model.ReviewRequest{}).
		Where("id = ? AND payment_status = ?", id, fromStatus).
		Updates(updates)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRequestStatusChange
	}
	return nil
}

func (r *ReviewRequestRepository) UpdateAdminStatus(ctx context.Context, tx *gorm.DB, id int64, fromStatus, toStatus string) error {
	if !model.CanTransitionAdmin(fromStatus, toStatus) {
		return ErrRequestStatusChange
	}

	if tx == nil {
		tx = r.db
	}

	result := tx.WithContext(ctx).
		Model(&model.ReviewRequest{}).
		Where("id = ? AND admin_status = ?", id, fromStatus).
		Updates(map[string]interface{}{"admin_status": toStatus})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRequestStatusChange
	}
	return nil
}

func (r *ReviewRequestRepository) SetReviewsCompleted(ctx context.Context, tx *gorm.DB, id int64, completed int) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).
		Model(&model.ReviewRequest{}).
		Where("id = ?", id).
		Update("reviews_completed", completed).Error
}

func (r *ReviewRequestRepository) ListBySellerID(ctx context.Context, sellerID int64, page, pageSize int) ([]*model.ReviewRequest, int64, error) {
	var requests []*model.ReviewRequest
	var total int64

	query := r.db.WithContext(ctx).Model(&model.ReviewRequest{}).Where("seller_id = ?", sellerID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&requests).Error

	return requests, total, err
}

// ListByAdminStatus feeds the admin approval queue.
func (r *ReviewRequestRepository) ListByAdminStatus(ctx context.Context, adminStatus string, page, pageSize int) ([]*model.ReviewRequest, int64, error) {
	var requests []*model.ReviewRequest
	var total int64

	query := r.db.WithContext(ctx).Model(&model.ReviewRequest{}).
		Where("admin_status = ? AND payment_status = ?", adminStatus, model.PaymentStatusPaid)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order("created_at ASC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&requests).Error

	return requests, total, err
}

// ListApprovedProductLinks returns distinct product links of approved
// requests; the sitemap builder consumes this.
func (r *ReviewRequestRepository) ListApprovedProductLinks(ctx context.Context, limit int) ([]string, error) {
	var links []string
	err := r.db.WithContext(ctx).
		Model(&model.ReviewRequest{}).
		Where("admin_status IN ?", []string{model.AdminStatusApproved, model.AdminStatusCompleted}).
		Distinct("product_link").
		Limit(limit).
		Pluck("product_link", &links).Error
	return links, err
}
