package service

import (
	"context"
	"encoding/json"
	"testing"

	"reviewflow/internal/config"
	"reviewflow/internal/model"
	"reviewflow/internal/repository"
	"reviewflow/internal/testutil"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func testConfig() *config.Config {
	return &config.Config{
		Kafka: config.KafkaConfig{
			Topic: config.KafkaTopicConfig{
				PaymentEvents: "reviewflow.payment.events",
				TaskEvents:    "reviewflow.task.events",
			},
		},
		Business: config.BusinessConfig{
			GSTRatePercent:   18,
			WorkerMaxJobs:    10,
			JobRetentionDays: 7,
		},
	}
}

func newTaskServiceDB(t *testing.T) *gorm.DB {
	return testutil.NewTestDB(t,
		&model.ReviewRequest{}, &model.Task{}, &model.TaskStep{},
		&model.Job{}, &model.OutboxMessage{})
}

func seedPaidApprovedRequest(t *testing.T, db *gorm.DB, reviewsNeeded int) *model.ReviewRequest {
	t.Helper()
	req := &model.ReviewRequest{
		RequestNo:      "REQ5001",
		SellerID:       1,
		ProductName:    "Widget",
		ProductLink:    "https://shop.example/widget",
		Price:          10000,
		Commission:     5000,
		ReviewsNeeded:  reviewsNeeded,
		Subtotal:       int64(reviewsNeeded) * 15000,
		GSTRatePercent: 18,
		PaymentStatus:  model.PaymentStatusPaid,
		AdminStatus:    model.AdminStatusApproved,
	}
	require.NoError(t, db.Create(req).Error)
	return req
}

func TestAssignRequiresPaidAndApproved(t *testing.T) {
	db := newTaskServiceDB(t)
	svc := NewTaskService(db, testConfig())
	ctx := context.Background()

	req := &model.ReviewRequest{
		RequestNo:     "REQ5000",
		SellerID:      1,
		ProductName:   "Widget",
		ProductLink:   "https://shop.example/widget",
		Price:         10000,
		Commission:    5000,
		ReviewsNeeded: 1,
		PaymentStatus: model.PaymentStatusPending,
		AdminStatus:   model.AdminStatusPending,
	}
	require.NoError(t, db.Create(req).Error)

	_, err := svc.Assign(ctx, req.ID, 7)
	require.ErrorIs(t, err, ErrNotAssignable)
}

func TestAssignCreatesTaskWithSteps(t *testing.T) {
	db := newTaskServiceDB(t)
	svc := NewTaskService(db, testConfig())
	ctx := context.Background()

	req := seedPaidApprovedRequest(t, db, 1)

	task, err := svc.Assign(ctx, req.ID, 7)
	require.NoError(t, err)
	require.NotEmpty(t, task.TaskNo)

	loaded, err := svc.Get(ctx, task.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Steps, 4)
	require.Equal(t, model.TaskLabelPending, loaded.Label())
}

func TestCompleteStepEnforcesOrder(t *testing.T) {
	db := newTaskServiceDB(t)
	svc := NewTaskService(db, testConfig())
	ctx := context.Background()

	req := seedPaidApprovedRequest(t, db, 1)
	task, err := svc.Assign(ctx, req.ID, 7)
	require.NoError(t, err)

	err = svc.CompleteStep(ctx, task.ID, model.StepDelivered)
	require.ErrorIs(t, err, repository.ErrStepOrder)

	require.NoError(t, svc.CompleteStep(ctx, task.ID, model.StepOrderPlaced))
	require.NoError(t, svc.CompleteStep(ctx, task.ID, model.StepDelivered))

	err = svc.CompleteStep(ctx, task.ID, 5)
	require.Error(t, err)
}

func TestSubmitStepProofOwnership(t *testing.T) {
	db := newTaskServiceDB(t)
	svc := NewTaskService(db, testConfig())
	ctx := context.Background()

	req := seedPaidApprovedRequest(t, db, 1)
	task, err := svc.Assign(ctx, req.ID, 7)
	require.NoError(t, err)

	err = svc.SubmitStepProof(ctx, 99, task.ID, model.StepOrderPlaced, "AMZ-1", "proof.png")
	require.ErrorIs(t, err, ErrNotOwnTask)

	require.NoError(t, svc.SubmitStepProof(ctx, 7, task.ID, model.StepOrderPlaced, "AMZ-1", "proof.png"))

	// step 2 needs step 1 completed first, submission included
	err = svc.SubmitStepProof(ctx, 7, task.ID, model.StepDelivered, "", "proof2.png")
	require.ErrorIs(t, err, repository.ErrStepOrder)
}

func TestCompleteStepThreeClosesRequest(t *testing.T) {
	db := newTaskServiceDB(t)
	svc := NewTaskService(db, testConfig())
	requestRepo := repository.NewReviewRequestRepository(db)
	ctx := context.Background()

	req := seedPaidApprovedRequest(t, db, 1)
	task, err := svc.Assign(ctx, req.ID, 7)
	require.NoError(t, err)

	require.NoError(t, svc.CompleteStep(ctx, task.ID, model.StepOrderPlaced))
	require.NoError(t, svc.CompleteStep(ctx, task.ID, model.StepDelivered))
	require.NoError(t, svc.CompleteStep(ctx, task.ID, model.StepReviewSubmitted))

	after, err := requestRepo.GetByID(ctx, req.ID)
	require.NoError(t, err)
	require.Equal(t, 1, after.ReviewsCompleted)
	require.Equal(t, model.AdminStatusCompleted, after.AdminStatus)
}

func TestCompleteStepFourEnqueuesPayout(t *testing.T) {
	db := newTaskServiceDB(t)
	svc := NewTaskService(db, testConfig())
	ctx := context.Background()

	req := seedPaidApprovedRequest(t, db, 2)
	task, err := svc.Assign(ctx, req.ID, 7)
	require.NoError(t, err)

	for n := model.StepOrderPlaced; n <= model.StepReviewLive; n++ {
		require.NoError(t, svc.CompleteStep(ctx, task.ID, n))
	}

	var jobs []model.Job
	require.NoError(t, db.Where("job_type = ?", model.JobTypePayout).Find(&jobs).Error)
	require.Len(t, jobs, 1)
	require.Equal(t, model.JobStatusPending, jobs[0].Status)

	var payload model.PayoutPayload
	require.NoError(t, json.Unmarshal([]byte(jobs[0].Payload), &payload))
	require.Equal(t, task.ID, payload.TaskID)

	var messages []model.OutboxMessage
	require.NoError(t, db.Where("topic = ?", "reviewflow.task.events").Find(&messages).Error)
	require.Len(t, messages, 1)
	require.Equal(t, task.TaskNo, messages[0].MessageKey)
}

func TestListByUserDerivesLabels(t *testing.T) {
	db := newTaskServiceDB(t)
	svc := NewTaskService(db, testConfig())
	ctx := context.Background()

	req := seedPaidApprovedRequest(t, db, 1)
	task, err := svc.Assign(ctx, req.ID, 7)
	require.NoError(t, err)

	require.NoError(t, svc.CompleteStep(ctx, task.ID, model.StepOrderPlaced))
	require.NoError(t, svc.CompleteStep(ctx, task.ID, model.StepDelivered))

	views, total, err := svc.ListByUser(ctx, 7, 1, 10)
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Len(t, views, 1)
	require.Equal(t, model.TaskLabelDelivered, views[0].Label)
}
