package service

import (
	"context"
	"testing"

	"reviewflow/internal/model"
	"reviewflow/internal/testutil"

	"github.com/stretchr/testify/require"
)

func TestWalletRecharge(t *testing.T) {
	db := testutil.NewTestDB(t, &model.Wallet{}, &model.PaymentTransaction{})
	svc := NewWalletService(db)
	ctx := context.Background()

	require.NoError(t, svc.Recharge(ctx, 1, 50000, "pay_ref_001"))

	wallet, err := svc.GetWallet(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, int64(50000), wallet.Balance)

	txns, total, err := svc.ListTransactions(ctx, 1, 1, 10)
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Equal(t, model.TxnTypeRecharge, txns[0].Type)
	require.Equal(t, int64(50000), txns[0].Amount)
	require.Equal(t, int64(0), txns[0].BalanceBefore)
	require.Equal(t, int64(50000), txns[0].BalanceAfter)
	require.Equal(t, "pay_ref_001", txns[0].GatewayRef)
}

func TestWalletRechargeRejectsNonPositive(t *testing.T) {
	db := testutil.NewTestDB(t, &model.Wallet{}, &model.PaymentTransaction{})
	svc := NewWalletService(db)
	ctx := context.Background()

	require.Error(t, svc.Recharge(ctx, 1, 0, ""))
	require.Error(t, svc.Recharge(ctx, 1, -100, ""))

	var count int64
	require.NoError(t, db.Model(&model.PaymentTransaction{}).Count(&count).Error)
	require.Equal(t, int64(0), count)
}

func TestWalletGetCreatesOnFirstTouch(t *testing.T) {
	db := testutil.NewTestDB(t, &model.Wallet{}, &model.PaymentTransaction{})
	svc := NewWalletService(db)

	wallet, err := svc.GetWallet(context.Background(), 42)
	require.NoError(t, err)
	require.Equal(t, int64(42), wallet.OwnerID)
	require.Equal(t, int64(0), wallet.Balance)
}
