package outbox

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

type WorkerConfig struct {
	PollInterval time.Duration
	BatchSize    int32
}

func DefaultWorkerConfig() WorkerConfig {
	return WorkerConfig{
		PollInterval: 5 * time.Second,
		BatchSize:    100,
	}
}

// Worker is a pure polling relay, for deployments where LISTEN/NOTIFY is
// unavailable (e.g. a connection pooler in transaction mode).
type Worker struct {
	repo      OutboxRepository
	publisher EventPublisher
	config    WorkerConfig
	logger    *slog.Logger

	mu       sync.Mutex
	running  bool
	stopChan chan struct{}
	wg       sync.WaitGroup
}

func NewWorker(repo OutboxRepository, publisher EventPublisher, cfg WorkerConfig, logger *slog.Logger) *Worker {
	return &Worker{
		repo:      repo,
		publisher: publisher,
		config:    cfg,
		logger:    logger,
		stopChan:  make(chan struct{}),
	}
}

func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("outbox worker already running")
	}
	w.running = true
	w.mu.Unlock()

	w.wg.Add(1)
	go w.run(ctx)

	w.logger.Info("outbox worker started",
		slog.Duration("poll_interval", w.config.PollInterval),
		slog.Int("batch_size", int(w.config.BatchSize)))
	return nil
}

func (w *Worker) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return fmt.Errorf("outbox worker not running")
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopChan)
	w.wg.Wait()

	w.logger.Info("outbox worker stopped")
	return nil
}

func (w *Worker) run(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.config.PollInterval)
	defer ticker.Stop()

	// Process immediately on start
	w.processOutbox(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopChan:
			return
		case <-ticker.C:
			w.processOutbox(ctx)
		}
	}
}

func (w *Worker) processOutbox(ctx context.Context) {
	events, err := w.repo.FetchUnsentOutbox(ctx, w.config.BatchSize)
	if err != nil {
		w.logger.Error("failed to fetch unsent outbox events", slog.String("error", err.Error()))
		return
	}

	for _, event := range events {
		if err := w.publisher.Publish(ctx, event); err != nil {
			w.logger.Error("failed to publish outbox event",
				slog.String("event_id", event.ID.String()),
				slog.String("error", err.Error()))
			continue
		}
		if err := w.repo.MarkOutboxSent(ctx, event.ID); err != nil {
			w.logger.Error("failed to mark outbox event as sent",
				slog.String("event_id", event.ID.String()),
				slog.String("error", err.Error()))
		}
	}

	if len(events) > 0 {
		w.logger.Debug("processed outbox batch", slog.Int("count", len(events)))
	}
}
