package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"reviewflow/internal/model"
	"reviewflow/internal/repository"
	"reviewflow/pkg/idgen"

	"gorm.io/gorm"
)

var ErrPayoutNotReady = errors.New("task has not reached the payout step")

// PayoutService releases the reviewer's purchase refund and commission
// once step 4 (review live) is approved. Invoked by the queue worker, so
// it must tolerate re-delivery.
type PayoutService struct {
	db          *gorm.DB
	taskRepo    *repository.TaskRepository
	requestRepo *repository.ReviewRequestRepository
	walletRepo  *repository.WalletRepository
	paymentRepo *repository.PaymentRepository
}

func NewPayoutService(db *gorm.DB) *PayoutService {
	return &PayoutService{
		db:          db,
		taskRepo:    repository.NewTaskRepository(db),
		requestRepo: repository.NewReviewRequestRepository(db),
		walletRepo:  repository.NewWalletRepository(db),
		paymentRepo: repository.NewPaymentRepository(db),
	}
}

// Release credits refund + commission to the reviewer's wallet with the
// matching transaction rows, all in one transaction. The existing-payout
// check makes redelivered jobs a no-op.
func (s *PayoutService) Release(ctx context.Context, taskID int64) error {
	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return err
	}

	step, err := s.taskRepo.GetStep(ctx, taskID, model.StepReviewLive)
	if err != nil {
		return err
	}
	if step.Status != model.StepStatusCompleted {
		return ErrPayoutNotReady
	}

	existing, err := s.paymentRepo.GetByTaskIDAndType(ctx, taskID, model.TxnTypeRefund)
	if err != nil {
		return err
	}
	if existing != nil {
		log.Printf("[Payout] already released: task=%s txn=%s", task.TaskNo, existing.TxnNo)
		return nil
	}

	refund, commission, err := s.payoutAmounts(ctx, task)
	if err != nil {
		return err
	}

	wallet, err := s.walletRepo.GetOrCreate(ctx, task.UserID)
	if err != nil {
		return fmt.Errorf("failed to load reviewer wallet: %w", err)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.walletRepo.Credit(ctx, tx, task.UserID, refund+commission); err != nil {
			return err
		}

		refundTxn := &model.PaymentTransaction{
			TxnNo:           idgen.GenerateTxnNo(),
			OwnerID:         task.UserID,
			ReviewRequestID: task.ReviewRequestID,
			TaskID:          &task.ID,
			Amount:          refund,
			Type:            model.TxnTypeRefund,
			BalanceBefore:   wallet.Balance,
			BalanceAfter:    wallet.Balance + refund,
			Status:          model.TxnStatusSuccess,
			Remark:          fmt.Sprintf("purchase refund for %s", task.TaskNo),
		}
		if err := s.paymentRepo.Create(ctx, tx, refundTxn); err != nil {
			return fmt.Errorf("failed to record refund: %w", err)
		}

		commissionTxn := &model.PaymentTransaction{
			TxnNo:           idgen.GenerateTxnNo(),
			OwnerID:         task.UserID,
			ReviewRequestID: task.ReviewRequestID,
			TaskID:          &task.ID,
			Amount:          commission,
			Type:            model.TxnTypeCommission,
			BalanceBefore:   wallet.Balance + refund,
			BalanceAfter:    wallet.Balance + refund + commission,
			Status:          model.TxnStatusSuccess,
			Remark:          fmt.Sprintf("commission for %s", task.TaskNo),
		}
		if err := s.paymentRepo.Create(ctx, tx, commissionTxn); err != nil {
			return fmt.Errorf("failed to record commission: %w", err)
		}

		log.Printf("[Payout] released: task=%s user=%d refund=%d commission=%d",
			task.TaskNo, task.UserID, refund, commission)
		return nil
	})
}

// payoutAmounts reads the per-review terms off the funding request.
// Legacy tasks without a FK fall back to zero commission and need manual
// settlement; logged loudly instead of guessed.
func (s *PayoutService) payoutAmounts(ctx context.Context, task *model.Task) (refund, commission int64, err error) {
	if task.ReviewRequestID == nil {
		log.Printf("[Payout] legacy task without review request, manual settlement needed: task=%s", task.TaskNo)
		return 0, 0, fmt.Errorf("task %s has no linked review request", task.TaskNo)
	}

	req, err := s.requestRepo.GetByID(ctx, *task.ReviewRequestID)
	if err != nil {
		return 0, 0, err
	}
	return req.Price, req.Commission, nil
}
