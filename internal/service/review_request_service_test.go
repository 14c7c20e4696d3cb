package service

import (
	"context"
	"testing"

	"reviewflow/internal/model"
	"reviewflow/internal/testutil"

	"github.com/stretchr/testify/require"
)

func TestSubmitFreezesTotals(t *testing.T) {
	db := testutil.NewTestDB(t, &model.ReviewRequest{})
	svc := NewReviewRequestService(db, testConfig())
	ctx := context.Background()

	req, err := svc.Submit(ctx, &SubmitRequestInput{
		SellerID:      1,
		ProductName:   "Widget",
		ProductLink:   "https://shop.example/widget",
		Price:         10000,
		Commission:    5000,
		ReviewsNeeded: 2,
		IntraState:    true,
	})
	require.NoError(t, err)
	require.NotEmpty(t, req.RequestNo)
	require.Equal(t, int64(30000), req.Subtotal)
	require.Equal(t, 18, req.GSTRatePercent)
	require.Equal(t, int64(5400), req.GSTAmount)
	require.Equal(t, int64(35400), req.GrandTotal)
	require.True(t, req.IntraState)
	require.Equal(t, model.PaymentStatusPending, req.PaymentStatus)
	require.Equal(t, model.AdminStatusPending, req.AdminStatus)
}

func TestSubmitRejectsBadTerms(t *testing.T) {
	db := testutil.NewTestDB(t, &model.ReviewRequest{})
	svc := NewReviewRequestService(db, testConfig())

	_, err := svc.Submit(context.Background(), &SubmitRequestInput{
		SellerID:      1,
		ProductName:   "Widget",
		ProductLink:   "https://shop.example/widget",
		Price:         0,
		ReviewsNeeded: 1,
	})
	require.ErrorIs(t, err, ErrInvalidTerms)
}

func TestDecideRequiresPaid(t *testing.T) {
	db := testutil.NewTestDB(t, &model.ReviewRequest{})
	svc := NewReviewRequestService(db, testConfig())
	ctx := context.Background()

	req, err := svc.Submit(ctx, &SubmitRequestInput{
		SellerID:      1,
		ProductName:   "Widget",
		ProductLink:   "https://shop.example/widget",
		Price:         10000,
		Commission:    5000,
		ReviewsNeeded: 1,
	})
	require.NoError(t, err)

	err = svc.Decide(ctx, req.ID, true)
	require.Error(t, err)

	require.NoError(t, db.Model(&model.ReviewRequest{}).Where("id = ?", req.ID).
		Update("payment_status", model.PaymentStatusPaid).Error)

	require.NoError(t, svc.Decide(ctx, req.ID, true))

	after, err := svc.Get(ctx, req.ID)
	require.NoError(t, err)
	require.Equal(t, model.AdminStatusApproved, after.AdminStatus)
}
