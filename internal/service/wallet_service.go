package service

import (
	"context"
	"errors"
	"fmt"

	"reviewflow/internal/model"
	"reviewflow/internal/repository"
	"reviewflow/pkg/idgen"

	"gorm.io/gorm"
)

type WalletService struct {
	walletRepo  *repository.WalletRepository
	paymentRepo *repository.PaymentRepository
	db          *gorm.DB
}

func NewWalletService(db *gorm.DB) *WalletService {
	return &WalletService{
		walletRepo:  repository.NewWalletRepository(db),
		paymentRepo: repository.NewPaymentRepository(db),
		db:          db,
	}
}

func (s *WalletService) GetWallet(ctx context.Context, ownerID int64) (*model.Wallet, error) {
	return s.walletRepo.GetOrCreate(ctx, ownerID)
}

// Recharge credits the wallet and appends the matching transaction row in
// one transaction.
func (s *WalletService) Recharge(ctx context.Context, ownerID, amount int64, gatewayRef string) error {
	if amount <= 0 {
		return errors.New("recharge amount must be positive")
	}

	wallet, err := s.walletRepo.GetOrCreate(ctx, ownerID)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.walletRepo.Credit(ctx, tx, ownerID, amount); err != nil {
			return err
		}

		txn := &model.PaymentTransaction{
			TxnNo:         idgen.GenerateTxnNo(),
			OwnerID:       ownerID,
			Amount:        amount,
			Type:          model.TxnTypeRecharge,
			GatewayRef:    gatewayRef,
			BalanceBefore: wallet.Balance,
			BalanceAfter:  wallet.Balance + amount,
			Status:        model.TxnStatusSuccess,
			Remark:        "wallet recharge",
		}
		if err := s.paymentRepo.Create(ctx, tx, txn); err != nil {
			return fmt.Errorf("failed to record transaction: %w", err)
		}
		return nil
	})
}

func (s *WalletService) ListTransactions(ctx context.Context, ownerID int64, page, pageSize int) ([]*model.PaymentTransaction, int64, error) {
	return s.paymentRepo.ListByOwnerID(ctx, ownerID, page, pageSize)
}
