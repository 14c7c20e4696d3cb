package repository

import (
	"context"
	"errors"

	"reviewflow/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrWalletNotFound      = errors.New("wallet not found")
	ErrInsufficientBalance = errors.New("insufficient wallet balance")
	ErrOptimisticLock      = errors.New("wallet version conflict, retry")
)

type WalletRepository struct {
	db *gorm.DB
}

func NewWalletRepository(db *gorm.DB) *WalletRepository {
	return &WalletRepository{db: db}
}

func (r *WalletRepository) GetByOwnerID(ctx context.Context, ownerID int64) (*model.Wallet, error) {
	var wallet model.Wallet
	err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).First(&wallet).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWalletNotFound
		}
		return nil, err
	}
	return &wallet, nil
}

// GetOrCreate returns the owner's wallet, creating an empty one on first
// touch. The ON CONFLICT DO NOTHING absorbs concurrent first touches.
func (r *WalletRepository) GetOrCreate(ctx context.Context, ownerID int64) (*model.Wallet, error) {
	wallet, err := r.GetByOwnerID(ctx, ownerID)
	if err == nil {
		return wallet, nil
	}
	if !errors.Is(err, ErrWalletNotFound) {
		return nil, err
	}

	newWallet := &model.Wallet{OwnerID: ownerID}
	err = r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "owner_id"}},
			DoNothing: true,
		}).
		Create(newWallet).Error
	if err != nil {
		return nil, err
	}

	return r.GetByOwnerID(ctx, ownerID)
}

// Debit subtracts amount and adds it to total_spent in one guarded
// update. The balance >= amount condition makes a negative balance
// impossible; the version condition rejects concurrent writers.
func (r *WalletRepository) Debit(ctx context.Context, tx *gorm.DB, ownerID, amount int64, version int) error {
	if tx == nil {
		tx = r.db
	}

	result := tx.WithContext(ctx).
		Model(&model.Wallet{}).
		Where("owner_id = ? AND balance >= ? AND version = ?", ownerID, amount, version).
		Updates(map[string]interface{}{
			"balance":     gorm.Expr("balance - ?", amount),
			"total_spent": gorm.Expr("total_spent + ?", amount),
			"version":     gorm.Expr("version + 1"),
		})

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		// diagnose on the same connection as the failed update
		var wallet model.Wallet
		err := tx.WithContext(ctx).Where("owner_id = ?", ownerID).First(&wallet).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrWalletNotFound
			}
			return err
		}
		if wallet.Balance < amount {
			return ErrInsufficientBalance
		}
		return ErrOptimisticLock
	}

	return nil
}

// Credit adds amount to the balance.
func (r *WalletRepository) Credit(ctx context.Context, tx *gorm.DB, ownerID, amount int64) error {
	if tx == nil {
		tx = r.db
	}

	result := tx.WithContext(ctx).
		Model(&model.Wallet{}).
		Where("owner_id = ?", ownerID).
		Updates(map[string]interface{}{
			"balance": gorm.Expr("balance + ?", amount),
			"version": gorm.Expr("version + 1"),
		})

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrWalletNotFound
	}

	return nil
}
