package handler

import (
	"errors"
	"strconv"

	"reviewflow/internal/config"
	"reviewflow/internal/gateway"
	"reviewflow/internal/repository"
	"reviewflow/internal/service"
	"reviewflow/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// Handler bundles all service dependencies behind the HTTP surface.
type Handler struct {
	cfg            *config.Config
	authService    *service.AuthService
	walletService  *service.WalletService
	requestService *service.ReviewRequestService
	paymentService *service.PaymentService
	taskService    *service.TaskService
	sitemap        *SitemapBuilder
}

func NewHandler(db *gorm.DB, rdb *redis.Client, cfg *config.Config) *Handler {
	return &Handler{
		cfg:            cfg,
		authService:    service.NewAuthService(db, cfg),
		walletService:  service.NewWalletService(db),
		requestService: service.NewReviewRequestService(db, cfg),
		paymentService: service.NewPaymentService(db, rdb, cfg),
		taskService:    service.NewTaskService(db, cfg),
		sitemap:        NewSitemapBuilder(db, rdb, cfg),
	}
}

func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}
	return page, pageSize
}

// ============================================================
// Auth
// ============================================================

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"required,oneof=user seller"`
}

// Register creates a reviewer or seller account.
// POST /api/v1/auth/register
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "invalid request: "+err.Error())
		return
	}

	user, err := h.authService.Register(c.Request.Context(), &service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			response.ParamError(c, "email already registered")
			return
		}
		response.ServerError(c, "registration failed")
		return
	}

	response.Success(c, gin.H{
		"id":    user.ID,
		"email": user.Email,
		"role":  user.Role,
	})
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login exchanges credentials for a bearer token.
// POST /api/v1/auth/login
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "invalid request: "+err.Error())
		return
	}

	token, user, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Error(c, response.CodeUnauthorized, "invalid email or password")
			return
		}
		response.ServerError(c, "login failed")
		return
	}

	response.Success(c, gin.H{
		"token": token,
		"role":  user.Role,
		"name":  user.Name,
	})
}

// ============================================================
// Wallet
// ============================================================

// GetWallet returns the caller's balance.
// GET /api/v1/wallet
func (h *Handler) GetWallet(c *gin.Context) {
	wallet, err := h.walletService.GetWallet(c.Request.Context(), GetUserID(c))
	if err != nil {
		response.ServerError(c, "failed to load wallet")
		return
	}

	response.Success(c, gin.H{
		"owner_id":    wallet.OwnerID,
		"balance":     wallet.Balance,
		"total_spent": wallet.TotalSpent,
	})
}

type RechargeRequest struct {
	Amount     int64  `json:"amount" binding:"required,gt=0"`
	GatewayRef string `json:"gateway_ref"`
}

// Recharge tops up the caller's wallet.
// POST /api/v1/wallet/recharge
func (h *Handler) Recharge(c *gin.Context) {
	var req RechargeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "invalid request: "+err.Error())
		return
	}

	if err := h.walletService.Recharge(c.Request.Context(), GetUserID(c), req.Amount, req.GatewayRef); err != nil {
		response.ServerError(c, "recharge failed")
		return
	}

	response.Success(c, gin.H{"message": "recharge successful"})
}

// ListTransactions returns the caller's wallet statement.
// GET /api/v1/wallet/transactions
func (h *Handler) ListTransactions(c *gin.Context) {
	page, pageSize := pageParams(c)

	txns, total, err := h.walletService.ListTransactions(c.Request.Context(), GetUserID(c), page, pageSize)
	if err != nil {
		response.ServerError(c, "failed to list transactions")
		return
	}

	response.Success(c, gin.H{
		"list":      txns,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// ============================================================
// Seller: review requests & payment
// ============================================================

type SubmitReviewRequest struct {
	ProductName   string `json:"product_name" binding:"required"`
	ProductLink   string `json:"product_link" binding:"required,url"`
	Price         int64  `json:"price" binding:"required,gt=0"`
	Commission    int64  `json:"commission" binding:"gte=0"`
	ReviewsNeeded int    `json:"reviews_needed" binding:"required,gt=0"`
	IntraState    bool   `json:"intra_state"`
}

// SubmitRequest creates a pending review request with computed totals.
// POST /api/v1/seller/review-request
func (h *Handler) SubmitRequest(c *gin.Context) {
	var req SubmitReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "invalid request: "+err.Error())
		return
	}

	created, err := h.requestService.Submit(c.Request.Context(), &service.SubmitRequestInput{
		SellerID:      GetUserID(c),
		ProductName:   req.ProductName,
		ProductLink:   req.ProductLink,
		Price:         req.Price,
		Commission:    req.Commission,
		ReviewsNeeded: req.ReviewsNeeded,
		IntraState:    req.IntraState,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidTerms) {
			response.ParamError(c, "invalid commercial terms")
			return
		}
		response.ServerError(c, "failed to create review request")
		return
	}

	response.Success(c, gin.H{
		"id":          created.ID,
		"request_no":  created.RequestNo,
		"subtotal":    created.Subtotal,
		"gst_amount":  created.GSTAmount,
		"grand_total": created.GrandTotal,
	})
}

// ListSellerRequests lists the caller's review requests with progress.
// GET /api/v1/seller/review-request/list
func (h *Handler) ListSellerRequests(c *gin.Context) {
	page, pageSize := pageParams(c)

	requests, total, err := h.requestService.ListBySeller(c.Request.Context(), GetUserID(c), page, pageSize)
	if err != nil {
		response.ServerError(c, "failed to list review requests")
		return
	}

	response.Success(c, gin.H{
		"list":      requests,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

type PayRequest struct {
	ReviewRequestID int64 `json:"review_request_id" binding:"required"`
}

// PayFromWallet captures payment from the seller's wallet.
// POST /api/v1/seller/review-request/pay/wallet
func (h *Handler) PayFromWallet(c *gin.Context) {
	var req PayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "invalid request: "+err.Error())
		return
	}

	result, err := h.paymentService.PayFromWallet(c.Request.Context(), GetUserID(c), req.ReviewRequestID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRequestNotFound):
			response.BusinessError(c, response.CodeRequestNotFound, "review request not found")
		case errors.Is(err, service.ErrAlreadyPaid):
			response.BusinessError(c, response.CodeDuplicatePayment, "review request already paid")
		case errors.Is(err, repository.ErrInsufficientBalance):
			response.BusinessError(c, response.CodeInsufficientBalance, "insufficient wallet balance")
		case errors.Is(err, service.ErrNotOwnRequest):
			response.Error(c, response.CodeForbidden, "not your review request")
		default:
			response.BusinessError(c, response.CodePaymentFailed, "payment failed")
		}
		return
	}

	response.Success(c, result)
}

// InitiateGatewayPayment creates a gateway order for a pending request.
// POST /api/v1/payment/gateway/initiate
func (h *Handler) InitiateGatewayPayment(c *gin.Context) {
	var req PayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "invalid request: "+err.Error())
		return
	}

	orderID, amount, err := h.paymentService.InitiateGatewayPayment(c.Request.Context(), GetUserID(c), req.ReviewRequestID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRequestNotFound):
			response.BusinessError(c, response.CodeRequestNotFound, "review request not found")
		case errors.Is(err, service.ErrNotOwnRequest):
			response.Error(c, response.CodeForbidden, "not your review request")
		default:
			response.BusinessError(c, response.CodePaymentFailed, "failed to initiate payment")
		}
		return
	}

	response.Success(c, gin.H{
		"order_id": orderID,
		"amount":   amount,
		"key_id":   h.cfg.Gateway.KeyID,
	})
}

type GatewayCallbackRequest struct {
	OrderID   string `json:"razorpay_order_id" form:"razorpay_order_id" binding:"required"`
	PaymentID string `json:"razorpay_payment_id" form:"razorpay_payment_id" binding:"required"`
	Signature string `json:"razorpay_signature" form:"razorpay_signature" binding:"required"`
}

// GatewayCallback verifies and captures a gateway payment. Unauthenticated
// by design; the HMAC signature is the authentication.
// POST /api/v1/payment/gateway/callback
func (h *Handler) GatewayCallback(c *gin.Context) {
	var req GatewayCallbackRequest
	if err := c.ShouldBind(&req); err != nil {
		response.ParamError(c, "invalid callback: "+err.Error())
		return
	}

	result, err := h.paymentService.ConfirmGatewayPayment(c.Request.Context(), &service.GatewayCallback{
		OrderID:   req.OrderID,
		PaymentID: req.PaymentID,
		Signature: req.Signature,
	})
	if err != nil {
		switch {
		case errors.Is(err, gateway.ErrSignatureMismatch):
			response.BusinessError(c, response.CodeSignatureInvalid, "signature verification failed")
		case errors.Is(err, gateway.ErrOrderNotFound):
			response.BusinessError(c, response.CodeRequestNotFound, "unknown or expired gateway order")
		case errors.Is(err, service.ErrAlreadyPaid):
			response.BusinessError(c, response.CodeDuplicatePayment, "review request already paid")
		default:
			response.BusinessError(c, response.CodePaymentFailed, "payment confirmation failed")
		}
		return
	}

	response.Success(c, result)
}

// ============================================================
// Reviewer: tasks
// ============================================================

// ListMyTasks returns the caller's tasks with derived status labels.
// GET /api/v1/user/tasks
func (h *Handler) ListMyTasks(c *gin.Context) {
	page, pageSize := pageParams(c)

	tasks, total, err := h.taskService.ListByUser(c.Request.Context(), GetUserID(c), page, pageSize)
	if err != nil {
		response.ServerError(c, "failed to list tasks")
		return
	}

	response.Success(c, gin.H{
		"list":      tasks,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

type SubmitStepRequest struct {
	TaskID      int64  `json:"task_id" binding:"required"`
	StepNumber  int    `json:"step_number" binding:"required,min=1,max=4"`
	OrderNumber string `json:"order_number"`
	Screenshot  string `json:"screenshot" binding:"required"`
}

// SubmitStepProof records the reviewer's proof for one step.
// POST /api/v1/user/task/step/submit
func (h *Handler) SubmitStepProof(c *gin.Context) {
	var req SubmitStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "invalid request: "+err.Error())
		return
	}

	err := h.taskService.SubmitStepProof(c.Request.Context(), GetUserID(c), req.TaskID, req.StepNumber, req.OrderNumber, req.Screenshot)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrTaskNotFound):
			response.BusinessError(c, response.CodeTaskNotFound, "task not found")
		case errors.Is(err, service.ErrNotOwnTask):
			response.Error(c, response.CodeForbidden, "not your task")
		case errors.Is(err, repository.ErrStepOrder):
			response.BusinessError(c, response.CodeStepOrderViolation, "previous step not completed")
		case errors.Is(err, repository.ErrStepAlreadyDone):
			response.BusinessError(c, response.CodeStepOrderViolation, "step already completed")
		default:
			response.ServerError(c, "failed to submit proof")
		}
		return
	}

	response.Success(c, gin.H{"message": "proof submitted"})
}

// ============================================================
// Admin
// ============================================================

// ListPendingRequests feeds the admin approval queue.
// GET /api/v1/admin/review-request/pending
func (h *Handler) ListPendingRequests(c *gin.Context) {
	page, pageSize := pageParams(c)

	requests, total, err := h.requestService.ListPendingApproval(c.Request.Context(), page, pageSize)
	if err != nil {
		response.ServerError(c, "failed to list pending requests")
		return
	}

	response.Success(c, gin.H{
		"list":      requests,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

type DecideRequest struct {
	ReviewRequestID int64 `json:"review_request_id" binding:"required"`
	Approve         *bool `json:"approve" binding:"required"`
}

// DecideRequest applies the admin approval decision on a paid request.
// POST /api/v1/admin/review-request/decide
func (h *Handler) DecideRequest(c *gin.Context) {
	var req DecideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "invalid request: "+err.Error())
		return
	}

	if err := h.requestService.Decide(c.Request.Context(), req.ReviewRequestID, *req.Approve); err != nil {
		switch {
		case errors.Is(err, repository.ErrRequestNotFound):
			response.BusinessError(c, response.CodeRequestNotFound, "review request not found")
		case errors.Is(err, repository.ErrRequestStatusChange):
			response.BusinessError(c, response.CodeRequestStatusError, "invalid status change")
		default:
			response.ServerError(c, "decision failed")
		}
		return
	}

	response.Success(c, gin.H{"message": "decision recorded"})
}

type AssignTaskRequest struct {
	ReviewRequestID int64 `json:"review_request_id" binding:"required"`
	UserID          int64 `json:"user_id" binding:"required"`
}

// AssignTask assigns a reviewer to an approved request.
// POST /api/v1/admin/task/assign
func (h *Handler) AssignTask(c *gin.Context) {
	var req AssignTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "invalid request: "+err.Error())
		return
	}

	task, err := h.taskService.Assign(c.Request.Context(), req.ReviewRequestID, req.UserID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRequestNotFound):
			response.BusinessError(c, response.CodeRequestNotFound, "review request not found")
		case errors.Is(err, service.ErrNotAssignable):
			response.BusinessError(c, response.CodeRequestStatusError, "review request not open for assignment")
		default:
			response.ServerError(c, "assignment failed")
		}
		return
	}

	response.Success(c, gin.H{
		"task_id": task.ID,
		"task_no": task.TaskNo,
	})
}

type CompleteStepRequest struct {
	TaskID     int64 `json:"task_id" binding:"required"`
	StepNumber int   `json:"step_number" binding:"required,min=1,max=4"`
}

// CompleteStep approves one checkpoint of a task.
// POST /api/v1/admin/task/step/complete
func (h *Handler) CompleteStep(c *gin.Context) {
	var req CompleteStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "invalid request: "+err.Error())
		return
	}

	if err := h.taskService.CompleteStep(c.Request.Context(), req.TaskID, req.StepNumber); err != nil {
		switch {
		case errors.Is(err, repository.ErrTaskNotFound):
			response.BusinessError(c, response.CodeTaskNotFound, "task not found")
		case errors.Is(err, repository.ErrStepOrder):
			response.BusinessError(c, response.CodeStepOrderViolation, "previous step not completed")
		case errors.Is(err, repository.ErrStepAlreadyDone):
			response.BusinessError(c, response.CodeStepOrderViolation, "step already completed")
		default:
			response.ServerError(c, "step completion failed")
		}
		return
	}

	response.Success(c, gin.H{"message": "step completed"})
}
