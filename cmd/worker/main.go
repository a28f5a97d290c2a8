package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fyugp/internal/backup"
	"fyugp/internal/config"
	"fyugp/internal/queue"
	"fyugp/internal/store"
)

// Worker consumes change notifications and writes a workbook snapshot of
// every table after each one.
func main() {
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("shutdown signal received")
		cancel()
	}()

	st, err := store.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("store open failed: %v", err)
	}
	defer st.Close()

	var q queue.Queue
	if cfg.QueueBackend == "redis" {
		redisClient := store.NewRedis(cfg.RedisAddr, cfg.RedisPassword, 0)
		defer redisClient.Close()
		q = queue.NewRedisQueue(redisClient.Client, "fyugp:changes")
	} else {
		log.Println("warning: in-memory queue receives nothing from the api process; only the startup snapshot is taken")
		q = queue.NewInMemory(64)
	}

	if cfg.BackupOnStart {
		snapshot(ctx, st, cfg)
	}

	messages, err := q.Consume(ctx)
	if err != nil {
		log.Fatalf("queue consume init failed: %v", err)
	}

	log.Println("worker started, waiting for messages...")
	for msg := range messages {
		switch msg.Type {
		case queue.TypeAttendanceSaved, queue.TypeLeaveAdded, queue.TypeLeaveDeleted:
		default:
			log.Printf("skipping message %s of type %q", msg.ID, msg.Type)
			continue
		}
		log.Printf("processing %s %s: %s", msg.Type, msg.ID, msg.Body)
		snapshot(ctx, st, cfg)
		time.Sleep(10 * time.Millisecond)
	}

	log.Println("worker stopped")
}

func snapshot(ctx context.Context, st store.Store, cfg config.App) {
	tables, err := st.Load(ctx)
	if err != nil {
		log.Printf("load tables failed: %v", err)
		return
	}
	path, err := backup.Snapshot(tables, cfg.BackupDir, time.Now())
	if err != nil {
		log.Printf("snapshot failed: %v", err)
		return
	}
	log.Printf("snapshot written to %s", path)
	if cfg.BackupKeep > 0 {
		if err := backup.Prune(cfg.BackupDir, cfg.BackupKeep); err != nil {
			log.Printf("prune snapshots failed: %v", err)
		}
	}
}
