package main

import (
	"context"
	"log"
	"time"

	"reviewflow/internal/config"
	"reviewflow/internal/infrastructure/cache"
	"reviewflow/internal/infrastructure/database"
	"reviewflow/internal/job"
	"reviewflow/pkg/idgen"
)

// One-shot queue-worker pass, intended for cron (* * * * *) or a shell
// loop. The context deadline is the hard execution ceiling: a stuck
// handler cannot outlive it.
func main() {
	cfg := config.LoadConfig("config/config.yaml")

	idgen.Init(2)

	db := database.InitMySQL(&cfg.MySQL)
	redisClient := cache.InitRedis(&cfg.Redis)

	timeout := time.Duration(cfg.Business.WorkerTimeoutMin) * time.Minute
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	worker := job.NewQueueWorker(db, redisClient, cfg)

	processed, err := worker.RunOnce(ctx)
	if err != nil {
		log.Fatalf("[Worker] run failed: %v", err)
	}

	log.Printf("[Worker] run finished, %d jobs processed", processed)
}
