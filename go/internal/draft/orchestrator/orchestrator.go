package orchestrator

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/draftforge/cubeleague/go/internal/draft/session"
	"github.com/draftforge/cubeleague/go/internal/models"
)

// SessionTimer defines what the scheduler needs from the session controller
type SessionTimer interface {
	NextDeadline(ctx context.Context) (*time.Time, error)
	ListDueSessions(ctx context.Context, now time.Time) ([]models.DraftSession, error)
	CheckDraftTimer(ctx context.Context, sessionID uuid.UUID) (*session.TimerResult, error)
}

const (
	defaultNumWorkers = 4
	idlePollDuration  = 30 * time.Second
	maxFetchRetries   = 3
)

// Orchestrator is the durable replacement for client-side timer polling: it
// sleeps until the earliest session deadline and fires the idempotent timer
// check for every due session through a small worker pool.
type Orchestrator struct {
	sessions   SessionTimer
	clock      clockwork.Clock
	wakeCh     chan struct{}
	instanceID string

	numWorkers int
	workCh     chan uuid.UUID

	// Track in-flight work to prevent double-firing a session's timer
	inFlight   map[uuid.UUID]bool
	inFlightMu sync.Mutex
}

// NewOrchestrator creates an orchestrator on the real clock.
func NewOrchestrator(sessions SessionTimer) *Orchestrator {
	return NewOrchestratorWithClock(sessions, clockwork.NewRealClock())
}

// NewOrchestratorWithClock creates an orchestrator on the given clock so
// tests can drive it with a fake.
func NewOrchestratorWithClock(sessions SessionTimer, clock clockwork.Clock) *Orchestrator {
	return &Orchestrator{
		sessions:   sessions,
		clock:      clock,
		wakeCh:     make(chan struct{}, 1),
		instanceID: uuid.New().String()[:8],
		numWorkers: defaultNumWorkers,
		workCh:     make(chan uuid.UUID, defaultNumWorkers*2),
		inFlight:   make(map[uuid.UUID]bool),
	}
}

// Wake signals the scheduler that a sooner deadline may exist, e.g. after a
// pick rolls a session's deadline forward or a new session is scheduled.
func (o *Orchestrator) Wake() {
	select {
	case o.wakeCh <- struct{}{}:
	default:
	}
}

// RunScheduler loops until the context is cancelled, sleeping until the next
// session deadline and firing timer checks for due sessions.
func (o *Orchestrator) RunScheduler(ctx context.Context) error {
	log.Info().Str("instance", o.instanceID).Int("workers", o.numWorkers).Msg("draft scheduler started")

	var wg sync.WaitGroup
	workerCtx, cancelWorkers := context.WithCancel(ctx)
	defer cancelWorkers()

	for i := 0; i < o.numWorkers; i++ {
		wg.Add(1)
		go o.worker(workerCtx, &wg, i)
	}
	defer func() {
		cancelWorkers()
		close(o.workCh)
		wg.Wait()
		log.Info().Str("instance", o.instanceID).Msg("draft scheduler stopped")
	}()

	timer := o.clock.NewTimer(0)
	defer timer.Stop()

	retries := 0
	for {
		// Drain any stale wake signal before computing the next sleep.
		select {
		case <-o.wakeCh:
		default:
		}

		deadline, err := o.sessions.NextDeadline(ctx)
		if err != nil {
			retries++
			if retries > maxFetchRetries {
				log.Error().Err(err).Str("instance", o.instanceID).Msg("failed to fetch next deadline after retries")
				return err
			}
			log.Error().Err(err).Int("retry", retries).Str("instance", o.instanceID).Msg("failed to fetch next deadline, retrying")
			if !o.sleep(ctx, timer, time.Second*time.Duration(retries)) {
				return nil
			}
			continue
		}
		retries = 0

		if deadline == nil {
			// Nothing scheduled; idle until something wakes us.
			if !o.sleep(ctx, timer, idlePollDuration) {
				return nil
			}
			continue
		}

		if wait := deadline.Sub(o.clock.Now()); wait > 0 {
			if !o.sleep(ctx, timer, wait) {
				return nil
			}
			continue
		}

		due, err := o.sessions.ListDueSessions(ctx, o.clock.Now())
		if err != nil {
			log.Error().Err(err).Str("instance", o.instanceID).Msg("failed to list due sessions")
			if !o.sleep(ctx, timer, time.Second) {
				return nil
			}
			continue
		}

		for _, s := range due {
			if !o.enqueue(ctx, s.ID) {
				return nil
			}
		}

		// Recompute the deadline; the checks just queued will move it.
		if !o.sleep(ctx, timer, time.Second) {
			return nil
		}
	}
}

// sleep waits for the duration, a wake signal, or cancellation. Returns
// false when the context is done.
func (o *Orchestrator) sleep(ctx context.Context, timer clockwork.Timer, d time.Duration) bool {
	timer.Reset(d)
	select {
	case <-timer.Chan():
		return true
	case <-o.wakeCh:
		return true
	case <-ctx.Done():
		return false
	}
}

// enqueue hands a session to the worker pool unless its check is already in
// flight. Returns false when the context is done.
func (o *Orchestrator) enqueue(ctx context.Context, sessionID uuid.UUID) bool {
	o.inFlightMu.Lock()
	if o.inFlight[sessionID] {
		o.inFlightMu.Unlock()
		return true
	}
	o.inFlight[sessionID] = true
	o.inFlightMu.Unlock()

	select {
	case o.workCh <- sessionID:
		return true
	case <-ctx.Done():
		o.inFlightMu.Lock()
		delete(o.inFlight, sessionID)
		o.inFlightMu.Unlock()
		return false
	}
}

// worker drains the work channel, firing timer checks.
func (o *Orchestrator) worker(ctx context.Context, wg *sync.WaitGroup, workerID int) {
	defer wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case sessionID, ok := <-o.workCh:
			if !ok {
				return
			}

			result, err := o.sessions.CheckDraftTimer(ctx, sessionID)
			if err != nil {
				log.Error().
					Err(err).
					Str("session_id", sessionID.String()).
					Int("worker_id", workerID).
					Msg("draft timer check failed")
			} else if result.Action != session.ActionNone {
				log.Info().
					Str("session_id", sessionID.String()).
					Str("action", string(result.Action)).
					Str("message", result.Message).
					Int("worker_id", workerID).
					Msg("draft timer fired")
			}

			o.inFlightMu.Lock()
			delete(o.inFlight, sessionID)
			o.inFlightMu.Unlock()
		}
	}
}
