package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"reviewflow/internal/config"
	"reviewflow/internal/gateway"
	"reviewflow/internal/infrastructure/lock"
	"reviewflow/internal/model"
	"reviewflow/internal/repository"
	"reviewflow/pkg/idgen"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

var (
	ErrAlreadyPaid   = errors.New("review request already paid")
	ErrNotPayable    = errors.New("review request is not payable")
	ErrNotOwnRequest = errors.New("review request belongs to another seller")
)

// PaymentService captures payment for review requests, through the wallet
// or through the gateway callback. Either path runs one transaction that
// moves the request to PAID, appends the PaymentTransaction, writes the
// TaxInvoice and queues the outbox event; nothing survives a partial
// failure.
type PaymentService struct {
	db          *gorm.DB
	redisClient *redis.Client
	cfg         *config.Config
	orderStore  *gateway.OrderStore
	requestRepo *repository.ReviewRequestRepository
	walletRepo  *repository.WalletRepository
	paymentRepo *repository.PaymentRepository
	invoiceRepo *repository.InvoiceRepository
	outboxRepo  *repository.OutboxRepository
}

func NewPaymentService(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *PaymentService {
	return &PaymentService{
		db:          db,
		redisClient: redisClient,
		cfg:         cfg,
		orderStore:  gateway.NewOrderStore(redisClient, time.Duration(cfg.Gateway.OrderTTLMinutes)*time.Minute),
		requestRepo: repository.NewReviewRequestRepository(db),
		walletRepo:  repository.NewWalletRepository(db),
		paymentRepo: repository.NewPaymentRepository(db),
		invoiceRepo: repository.NewInvoiceRepository(db),
		outboxRepo:  repository.NewOutboxRepository(db),
	}
}

type PaymentResult struct {
	ReviewRequestID int64  `json:"review_request_id"`
	TxnNo           string `json:"txn_no"`
	InvoiceNo       string `json:"invoice_no"`
	Amount          int64  `json:"amount"`
	Status          string `json:"status"`
}

// PayFromWallet debits the seller's wallet for the request's grand total.
//
// The redis lock serializes captures per seller; inside the transaction
// the guarded payment_status update and the guarded wallet debit make the
// operation atomic and unrepeatable.
func (s *PaymentService) PayFromWallet(ctx context.Context, sellerID, reviewRequestID int64) (*PaymentResult, error) {
	req, err := s.requestRepo.GetByID(ctx, reviewRequestID)
	if err != nil {
		return nil, err
	}
	if req.SellerID != sellerID {
		return nil, ErrNotOwnRequest
	}
	if req.PaymentStatus == model.PaymentStatusPaid {
		return nil, ErrAlreadyPaid
	}
	if req.PaymentStatus != model.PaymentStatusPending {
		return nil, ErrNotPayable
	}

	lockTTL := time.Duration(s.cfg.Business.PaymentLockSecond) * time.Second
	payLock := lock.NewPaymentLock(s.redisClient, sellerID, req.RequestNo, lockTTL)
	if err := payLock.Lock(ctx, 100*time.Millisecond, 30); err != nil {
		return nil, fmt.Errorf("payment busy, retry later: %w", err)
	}
	defer payLock.Unlock(ctx)

	// re-check under the lock
	req, err = s.requestRepo.GetByID(ctx, reviewRequestID)
	if err != nil {
		return nil, err
	}
	if req.PaymentStatus == model.PaymentStatusPaid {
		return nil, ErrAlreadyPaid
	}

	wallet, err := s.walletRepo.GetOrCreate(ctx, sellerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load wallet: %w", err)
	}
	if wallet.Balance < req.GrandTotal {
		return nil, repository.ErrInsufficientBalance
	}

	txnNo := idgen.GenerateTxnNo()
	invoiceNo := idgen.GenerateInvoiceNo()

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.requestRepo.UpdatePaymentStatus(ctx, tx, req.ID, model.PaymentStatusPending, model.PaymentStatusPaid); err != nil {
			return err
		}

		if err := s.walletRepo.Debit(ctx, tx, sellerID, req.GrandTotal, wallet.Version); err != nil {
			return err
		}

		txn := &model.PaymentTransaction{
			TxnNo:           txnNo,
			OwnerID:         sellerID,
			ReviewRequestID: &req.ID,
			Amount:          -req.GrandTotal,
			Type:            model.TxnTypeWalletPay,
			Gateway:         "wallet",
			BalanceBefore:   wallet.Balance,
			BalanceAfter:    wallet.Balance - req.GrandTotal,
			Status:          model.TxnStatusSuccess,
			Remark:          fmt.Sprintf("payment for %s", req.RequestNo),
		}
		if err := s.paymentRepo.Create(ctx, tx, txn); err != nil {
			return fmt.Errorf("failed to record transaction: %w", err)
		}

		if err := s.createInvoice(ctx, tx, req, invoiceNo); err != nil {
			return err
		}

		return s.writePaymentEvent(ctx, tx, req, txnNo, "wallet")
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[Payment] wallet capture: request=%s seller=%d amount=%d", req.RequestNo, sellerID, req.GrandTotal)

	return &PaymentResult{
		ReviewRequestID: req.ID,
		TxnNo:           txnNo,
		InvoiceNo:       invoiceNo,
		Amount:          req.GrandTotal,
		Status:          model.PaymentStatusPaid,
	}, nil
}

// InitiateGatewayPayment creates a gateway order for the request and
// persists the binding so the callback can be verified on any instance.
func (s *PaymentService) InitiateGatewayPayment(ctx context.Context, sellerID, reviewRequestID int64) (string, int64, error) {
	req, err := s.requestRepo.GetByID(ctx, reviewRequestID)
	if err != nil {
		return "", 0, err
	}
	if req.SellerID != sellerID {
		return "", 0, ErrNotOwnRequest
	}
	if req.PaymentStatus != model.PaymentStatusPending {
		return "", 0, ErrNotPayable
	}

	orderID, err := s.orderStore.CreateOrder(ctx, req.ID)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create gateway order: %w", err)
	}
	return orderID, req.GrandTotal, nil
}

type GatewayCallback struct {
	OrderID   string
	PaymentID string
	Signature string
}

// ConfirmGatewayPayment verifies the callback signature against the stored
// order binding, then captures. Invalid signature or unknown order id
// aborts with zero mutation; a callback for an already paid request fails
// on the guarded status update and rolls back.
func (s *PaymentService) ConfirmGatewayPayment(ctx context.Context, cb *GatewayCallback) (*PaymentResult, error) {
	reviewRequestID, err := s.orderStore.LookupOrder(ctx, cb.OrderID)
	if err != nil {
		return nil, err
	}

	if err := gateway.VerifySignature(s.cfg.Gateway.KeySecret, cb.OrderID, cb.PaymentID, cb.Signature); err != nil {
		return nil, err
	}

	req, err := s.requestRepo.GetByID(ctx, reviewRequestID)
	if err != nil {
		return nil, err
	}
	if req.PaymentStatus == model.PaymentStatusPaid {
		return nil, ErrAlreadyPaid
	}

	// money moved at the gateway, not in the wallet; balances unchanged
	wallet, err := s.walletRepo.GetOrCreate(ctx, req.SellerID)
	if err != nil {
		return nil, err
	}

	txnNo := idgen.GenerateTxnNo()
	invoiceNo := idgen.GenerateInvoiceNo()

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.requestRepo.UpdatePaymentStatus(ctx, tx, req.ID, model.PaymentStatusPending, model.PaymentStatusPaid); err != nil {
			return err
		}

		txn := &model.PaymentTransaction{
			TxnNo:           txnNo,
			OwnerID:         req.SellerID,
			ReviewRequestID: &req.ID,
			Amount:          -req.GrandTotal,
			Type:            model.TxnTypeGatewayPay,
			Gateway:         s.cfg.Gateway.Provider,
			GatewayRef:      cb.PaymentID,
			BalanceBefore:   wallet.Balance,
			BalanceAfter:    wallet.Balance,
			Status:          model.TxnStatusSuccess,
			Remark:          fmt.Sprintf("gateway payment for %s", req.RequestNo),
		}
		if err := s.paymentRepo.Create(ctx, tx, txn); err != nil {
			return fmt.Errorf("failed to record transaction: %w", err)
		}

		if err := s.createInvoice(ctx, tx, req, invoiceNo); err != nil {
			return err
		}

		return s.writePaymentEvent(ctx, tx, req, txnNo, s.cfg.Gateway.Provider)
	})
	if err != nil {
		return nil, err
	}

	// consumed binding; replayed callbacks now fail the lookup
	if err := s.orderStore.DeleteOrder(ctx, cb.OrderID); err != nil {
		log.Printf("[Payment] failed to delete gateway order %s: %v", cb.OrderID, err)
	}

	log.Printf("[Payment] gateway capture: request=%s payment=%s amount=%d", req.RequestNo, cb.PaymentID, req.GrandTotal)

	return &PaymentResult{
		ReviewRequestID: req.ID,
		TxnNo:           txnNo,
		InvoiceNo:       invoiceNo,
		Amount:          req.GrandTotal,
		Status:          model.PaymentStatusPaid,
	}, nil
}

func (s *PaymentService) createInvoice(ctx context.Context, tx *gorm.DB, req *model.ReviewRequest, invoiceNo string) error {
	invoice := &model.TaxInvoice{
		InvoiceNo:       invoiceNo,
		ReviewRequestID: req.ID,
		SellerID:        req.SellerID,
		Subtotal:        req.Subtotal,
		GrandTotal:      req.GrandTotal,
	}
	if req.IntraState {
		invoice.CGST = req.GSTAmount / 2
		invoice.SGST = req.GSTAmount - invoice.CGST
	} else {
		invoice.IGST = req.GSTAmount
	}
	if err := s.invoiceRepo.Create(ctx, tx, invoice); err != nil {
		return fmt.Errorf("failed to create tax invoice: %w", err)
	}
	return nil
}

func (s *PaymentService) writePaymentEvent(ctx context.Context, tx *gorm.DB, req *model.ReviewRequest, txnNo, via string) error {
	payload, _ := json.Marshal(map[string]interface{}{
		"event":             "payment.captured",
		"review_request_id": req.ID,
		"request_no":        req.RequestNo,
		"seller_id":         req.SellerID,
		"amount":            req.GrandTotal,
		"via":               via,
		"txn_no":            txnNo,
		"paid_at":           time.Now().Format(time.RFC3339),
	})

	msg := &model.OutboxMessage{
		MessageKey: req.RequestNo,
		Topic:      s.cfg.Kafka.Topic.PaymentEvents,
		Payload:    string(payload),
		Status:     model.OutboxStatusPending,
	}
	if err := s.outboxRepo.Create(ctx, tx, msg); err != nil {
		return fmt.Errorf("failed to write outbox message: %w", err)
	}
	return nil
}
