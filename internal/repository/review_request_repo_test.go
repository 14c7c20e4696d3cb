package repository

import (
	"context"
	"errors"
	"testing"

	"reviewflow/internal/model"
	"reviewflow/internal/testutil"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedRequest(t *testing.T, db *gorm.DB, requestNo string) *model.ReviewRequest {
	t.Helper()
	req := &model.ReviewRequest{
		RequestNo:      requestNo,
		SellerID:       1,
		ProductName:    "Widget",
		ProductLink:    "https://shop.example/widget",
		Price:          10000,
		Commission:     5000,
		ReviewsNeeded:  2,
		Subtotal:       30000,
		GSTRatePercent: 18,
		GSTAmount:      5400,
		GrandTotal:     35400,
		PaymentStatus:  model.PaymentStatusPending,
		AdminStatus:    model.AdminStatusPending,
	}
	require.NoError(t, db.Create(req).Error)
	return req
}

func TestUpdatePaymentStatusDoublePay(t *testing.T) {
	db := testutil.NewTestDB(t, &model.ReviewRequest{})
	repo := NewReviewRequestRepository(db)
	ctx := context.Background()

	req := seedRequest(t, db, "REQ1001")

	err := repo.UpdatePaymentStatus(ctx, nil, req.ID, model.PaymentStatusPending, model.PaymentStatusPaid)
	require.NoError(t, err)

	paid, err := repo.GetByID(ctx, req.ID)
	require.NoError(t, err)
	require.Equal(t, model.PaymentStatusPaid, paid.PaymentStatus)
	require.NotNil(t, paid.PaidAt)

	// the second capture matches zero rows
	err = repo.UpdatePaymentStatus(ctx, nil, req.ID, model.PaymentStatusPending, model.PaymentStatusPaid)
	require.ErrorIs(t, err, ErrRequestStatusChange)
}

func TestUpdatePaymentStatusInvalidTransition(t *testing.T) {
	db := testutil.NewTestDB(t, &model.ReviewRequest{})
	repo := NewReviewRequestRepository(db)
	ctx := context.Background()

	req := seedRequest(t, db, "REQ1002")

	err := repo.UpdatePaymentStatus(ctx, nil, req.ID, model.PaymentStatusPaid, model.PaymentStatusPending)
	require.ErrorIs(t, err, ErrRequestStatusChange)
}

// A failing statement later in the transaction must roll back the status
// change; the request stays payable and no partial state survives.
func TestPaymentCaptureRollsBack(t *testing.T) {
	db := testutil.NewTestDB(t, &model.ReviewRequest{}, &model.Wallet{}, &model.PaymentTransaction{})
	requestRepo := NewReviewRequestRepository(db)
	walletRepo := NewWalletRepository(db)
	paymentRepo := NewPaymentRepository(db)
	ctx := context.Background()

	req := seedRequest(t, db, "REQ1003")

	wallet, err := walletRepo.GetOrCreate(ctx, req.SellerID)
	require.NoError(t, err)
	require.NoError(t, walletRepo.Credit(ctx, nil, req.SellerID, 100))
	wallet, err = walletRepo.GetByOwnerID(ctx, req.SellerID)
	require.NoError(t, err)

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := requestRepo.UpdatePaymentStatus(ctx, tx, req.ID, model.PaymentStatusPending, model.PaymentStatusPaid); err != nil {
			return err
		}
		txn := &model.PaymentTransaction{
			TxnNo:         "TXN1003",
			OwnerID:       req.SellerID,
			Amount:        -req.GrandTotal,
			Type:          model.TxnTypeWalletPay,
			BalanceBefore: wallet.Balance,
			BalanceAfter:  wallet.Balance - req.GrandTotal,
			Status:        model.TxnStatusSuccess,
		}
		if err := paymentRepo.Create(ctx, tx, txn); err != nil {
			return err
		}
		// balance 100 < grand total 35400
		return walletRepo.Debit(ctx, tx, req.SellerID, req.GrandTotal, wallet.Version)
	})
	require.ErrorIs(t, err, ErrInsufficientBalance)

	after, err := requestRepo.GetByID(ctx, req.ID)
	require.NoError(t, err)
	require.Equal(t, model.PaymentStatusPending, after.PaymentStatus)

	walletAfter, err := walletRepo.GetByOwnerID(ctx, req.SellerID)
	require.NoError(t, err)
	require.Equal(t, int64(100), walletAfter.Balance)

	txn, err := paymentRepo.GetByTxnNo(ctx, "TXN1003")
	require.NoError(t, err)
	require.Nil(t, txn)
}

func TestGetByIDNotFound(t *testing.T) {
	db := testutil.NewTestDB(t, &model.ReviewRequest{})
	repo := NewReviewRequestRepository(db)

	_, err := repo.GetByID(context.Background(), 12345)
	require.True(t, errors.Is(err, ErrRequestNotFound))
}

func TestListApprovedProductLinks(t *testing.T) {
	db := testutil.NewTestDB(t, &model.ReviewRequest{})
	repo := NewReviewRequestRepository(db)
	ctx := context.Background()

	approved := seedRequest(t, db, "REQ2001")
	require.NoError(t, db.Model(approved).Update("admin_status", model.AdminStatusApproved).Error)

	pending := seedRequest(t, db, "REQ2002")
	require.NoError(t, db.Model(pending).Update("product_link", "https://shop.example/other").Error)

	links, err := repo.ListApprovedProductLinks(ctx, 10)
	require.NoError(t, err)
	require.Equal(t, []string{"https://shop.example/widget"}, links)
}
