package job

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"reviewflow/internal/config"
	"reviewflow/internal/infrastructure/cache"
	"reviewflow/internal/model"
	"reviewflow/internal/repository"
	"reviewflow/internal/service"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// Handler processes one job payload.
type Handler func(ctx context.Context, payload string) error

// QueueWorker polls the jobs table and dispatches by job type. Each
// invocation processes at most maxJobs jobs; a failing handler marks its
// own job FAILED and the batch moves on (per-job isolation). Delivery is
// at-least-once, so every handler is idempotent.
type QueueWorker struct {
	db          *gorm.DB
	redisClient *redis.Client
	cfg         *config.Config
	jobRepo     *repository.JobRepository
	handlers    map[string]Handler
	stopCh      chan struct{}
	interval    time.Duration
	maxJobs     int
}

func NewQueueWorker(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *QueueWorker {
	w := &QueueWorker{
		db:          db,
		redisClient: redisClient,
		cfg:         cfg,
		jobRepo:     repository.NewJobRepository(db),
		handlers:    make(map[string]Handler),
		stopCh:      make(chan struct{}),
		interval:    10 * time.Second,
		maxJobs:     cfg.Business.WorkerMaxJobs,
	}

	payoutService := service.NewPayoutService(db)

	w.Register(model.JobTypePayout, func(ctx context.Context, payload string) error {
		var p model.PayoutPayload
		if err := json.Unmarshal([]byte(payload), &p); err != nil {
			return fmt.Errorf("bad payout payload: %w", err)
		}
		return payoutService.Release(ctx, p.TaskID)
	})

	w.Register(model.JobTypeCacheCleanup, func(ctx context.Context, payload string) error {
		removed, err := cache.CleanupOrphanedKeys(ctx, redisClient, "sitemap:")
		if err != nil {
			return err
		}
		if removed > 0 {
			log.Printf("[QueueWorker] removed %d orphaned cache keys", removed)
		}
		return nil
	})

	return w
}

// Register binds a handler to a job type. Unknown job types fail their
// jobs instead of blocking the queue.
func (w *QueueWorker) Register(jobType string, h Handler) {
	w.handlers[jobType] = h
}

// Start runs RunOnce on a ticker until the context is cancelled. Used by
// the server process; cron deployments call RunOnce directly instead.
func (w *QueueWorker) Start(ctx context.Context) {
	log.Println("[QueueWorker] started")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("[QueueWorker] context cancelled, exiting")
			return
		case <-w.stopCh:
			log.Println("[QueueWorker] stopped")
			return
		case <-ticker.C:
			if _, err := w.RunOnce(ctx); err != nil {
				log.Printf("[QueueWorker] batch error: %v", err)
			}
		}
	}
}

func (w *QueueWorker) Stop() {
	close(w.stopCh)
}

// RunOnce processes one batch and then performs best-effort cleanup of
// old finished jobs. Returns the number of jobs processed.
func (w *QueueWorker) RunOnce(ctx context.Context) (int, error) {
	jobs, err := w.jobRepo.GetPendingJobs(ctx, w.maxJobs)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch pending jobs: %w", err)
	}

	processed := 0
	for _, j := range jobs {
		if ctx.Err() != nil {
			break
		}
		w.processJob(ctx, j)
		processed++
	}

	w.cleanupOldJobs(ctx)

	return processed, nil
}

func (w *QueueWorker) processJob(ctx context.Context, j *model.Job) {
	claimed, err := w.jobRepo.MarkProcessing(ctx, j.ID)
	if err != nil {
		log.Printf("[QueueWorker] failed to claim job %d: %v", j.ID, err)
		return
	}
	if !claimed {
		// another worker got there first
		return
	}

	handler, ok := w.handlers[j.JobType]
	if !ok {
		log.Printf("[QueueWorker] no handler for job type %q, job %d failed", j.JobType, j.ID)
		_ = w.jobRepo.MarkFailed(ctx, j.ID, fmt.Errorf("unknown job type %q", j.JobType))
		return
	}

	if err := w.runHandler(ctx, handler, j.Payload); err != nil {
		log.Printf("[QueueWorker] job %d (%s) failed: %v", j.ID, j.JobType, err)
		if markErr := w.jobRepo.MarkFailed(ctx, j.ID, err); markErr != nil {
			log.Printf("[QueueWorker] failed to mark job %d failed: %v", j.ID, markErr)
		}
		return
	}

	if err := w.jobRepo.MarkCompleted(ctx, j.ID); err != nil {
		log.Printf("[QueueWorker] failed to mark job %d completed: %v", j.ID, err)
		return
	}
	log.Printf("[QueueWorker] job %d (%s) completed", j.ID, j.JobType)
}

// runHandler converts a handler panic into an error so one bad job cannot
// take down the batch.
func (w *QueueWorker) runHandler(ctx context.Context, h Handler, payload string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return h(ctx, payload)
}

func (w *QueueWorker) cleanupOldJobs(ctx context.Context) {
	cutoff := time.Now().AddDate(0, 0, -w.cfg.Business.JobRetentionDays)
	deleted, err := w.jobRepo.DeleteFinishedBefore(ctx, cutoff)
	if err != nil {
		log.Printf("[QueueWorker] job cleanup failed: %v", err)
		return
	}
	if deleted > 0 {
		log.Printf("[QueueWorker] purged %d finished jobs", deleted)
	}
}
