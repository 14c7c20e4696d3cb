package service

import (
	"context"
	"fmt"

	"reviewflow/internal/config"
	"reviewflow/internal/model"
	"reviewflow/internal/repository"
	"reviewflow/pkg/idgen"

	"gorm.io/gorm"
)

type ReviewRequestService struct {
	requestRepo *repository.ReviewRequestRepository
	db          *gorm.DB
	cfg         *config.Config
}

func NewReviewRequestService(db *gorm.DB, cfg *config.Config) *ReviewRequestService {
	return &ReviewRequestService{
		requestRepo: repository.NewReviewRequestRepository(db),
		db:          db,
		cfg:         cfg,
	}
}

type SubmitRequestInput struct {
	SellerID      int64
	ProductName   string
	ProductLink   string
	Price         int64 // per review, paise
	Commission    int64 // per review, paise
	ReviewsNeeded int
	IntraState    bool
}

// Submit persists a pending review request with its totals frozen at
// submission time. Payment happens in a separate step.
func (s *ReviewRequestService) Submit(ctx context.Context, in *SubmitRequestInput) (*model.ReviewRequest, error) {
	rate := s.cfg.Business.GSTRatePercent
	totals, err := ComputeTotals(in.Price, in.Commission, in.ReviewsNeeded, rate, in.IntraState)
	if err != nil {
		return nil, err
	}

	req := &model.ReviewRequest{
		RequestNo:      idgen.GenerateRequestNo(),
		SellerID:       in.SellerID,
		ProductName:    in.ProductName,
		ProductLink:    in.ProductLink,
		Price:          in.Price,
		Commission:     in.Commission,
		ReviewsNeeded:  in.ReviewsNeeded,
		Subtotal:       totals.Subtotal,
		GSTRatePercent: rate,
		GSTAmount:      totals.GSTAmount,
		GrandTotal:     totals.GrandTotal,
		IntraState:     in.IntraState,
		PaymentStatus:  model.PaymentStatusPending,
		AdminStatus:    model.AdminStatusPending,
	}

	if err := s.requestRepo.Create(ctx, nil, req); err != nil {
		return nil, fmt.Errorf("failed to create review request: %w", err)
	}

	return req, nil
}

func (s *ReviewRequestService) Get(ctx context.Context, id int64) (*model.ReviewRequest, error) {
	return s.requestRepo.GetByID(ctx, id)
}

func (s *ReviewRequestService) ListBySeller(ctx context.Context, sellerID int64, page, pageSize int) ([]*model.ReviewRequest, int64, error) {
	return s.requestRepo.ListBySellerID(ctx, sellerID, page, pageSize)
}

func (s *ReviewRequestService) ListPendingApproval(ctx context.Context, page, pageSize int) ([]*model.ReviewRequest, int64, error) {
	return s.requestRepo.ListByAdminStatus(ctx, model.AdminStatusPending, page, pageSize)
}

// Decide applies the admin's approval decision on a paid request.
func (s *ReviewRequestService) Decide(ctx context.Context, id int64, approve bool) error {
	req, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if req.PaymentStatus != model.PaymentStatusPaid {
		return fmt.Errorf("review request %d is not paid", id)
	}

	target := model.AdminStatusApproved
	if !approve {
		target = model.AdminStatusRejected
	}
	return s.requestRepo.UpdateAdminStatus(ctx, nil, id, req.AdminStatus, target)
}
