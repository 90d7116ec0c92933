package summary

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/healthconnect/portal/internal/pkg/fanout"
	"go.uber.org/zap"
)

type Status string

const (
	StatusIdle      Status = "idle"
	StatusPending   Status = "pending"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// State is a snapshot of one surface's request lifecycle.
type State struct {
	Status    Status    `json:"status"`
	Summary   string    `json:"summary,omitempty"`
	Error     string    `json:"error,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

var (
	ErrAttemptInFlight = errors.New("a summary is already being generated")
	ErrSurfaceClosed   = errors.New("summary surface is closed")
)

// Summarizer is the adapter the orchestrator drives.
type Summarizer interface {
	Summarize(ctx context.Context, recordText string) (Result, error)
}

// Orchestrator owns the request lifecycle of one UI surface:
// idle/succeeded/failed -> pending -> succeeded|failed, one attempt at a time.
type Orchestrator struct {
	summarizer Summarizer
	logger     *zap.Logger
	hub        *fanout.Hub[State]
	now        func() time.Time

	mu         sync.Mutex
	state      State
	closed     bool
	cancelRun  context.CancelFunc
	lastActive time.Time
}

func NewOrchestrator(summarizer Summarizer, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	now := time.Now()
	return &Orchestrator{
		summarizer: summarizer,
		logger:     logger,
		hub:        fanout.New[State](),
		now:        time.Now,
		state:      State{Status: StatusIdle, UpdatedAt: now},
		lastActive: now,
	}
}

// Start begins a new attempt. It fails with ErrAttemptInFlight while one is
// pending and with ErrSurfaceClosed after Close. The prior result is cleared
// before Start returns. The attempt keeps ctx's values but not its
// cancellation; only Close cancels it. done is closed once the attempt has
// settled.
func (o *Orchestrator) Start(ctx context.Context, recordText string) (done <-chan struct{}, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.lastActive = o.now()
	switch {
	case o.closed:
		return nil, ErrSurfaceClosed
	case o.state.Status == StatusPending:
		return nil, ErrAttemptInFlight
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	o.cancelRun = cancel
	o.transition(State{Status: StatusPending})

	finished := make(chan struct{})
	go o.run(runCtx, cancel, recordText, finished)
	return finished, nil
}

func (o *Orchestrator) run(ctx context.Context, cancel context.CancelFunc, recordText string, finished chan struct{}) {
	defer close(finished)
	defer cancel()

	result, err := o.summarizer.Summarize(ctx, recordText)

	o.mu.Lock()
	defer o.mu.Unlock()
	o.cancelRun = nil
	if o.closed {
		return
	}
	if err != nil {
		o.logger.Warn("summary attempt failed", zap.String("kind", errorKind(err)), zap.Error(err))
		o.transition(State{Status: StatusFailed, Error: GenericFailureMessage})
		return
	}
	o.transition(State{Status: StatusSucceeded, Summary: result.Summary})
}

// transition must be called with o.mu held.
func (o *Orchestrator) transition(next State) {
	next.UpdatedAt = o.now()
	o.state = next
	o.lastActive = next.UpdatedAt
	o.hub.Publish(next)
}

// Snapshot returns the current state. Reading counts as activity.
func (o *Orchestrator) Snapshot() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.lastActive = o.now()
	return o.state
}

// Subscribe streams every later transition. Call the returned func to stop;
// the idle clock restarts from that moment.
func (o *Orchestrator) Subscribe(buffer int) (<-chan State, func()) {
	id, ch := o.hub.Subscribe(buffer)
	o.touch()
	return ch, func() {
		o.hub.Unsubscribe(id)
		o.touch()
	}
}

func (o *Orchestrator) touch() {
	o.mu.Lock()
	o.lastActive = o.now()
	o.mu.Unlock()
}

// Idle reports whether the surface has no attempt in flight, nobody watching
// and no activity since cutoff.
func (o *Orchestrator) Idle(cutoff time.Time) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state.Status != StatusPending && o.hub.Len() == 0 && o.lastActive.Before(cutoff)
}

// Close cancels any in-flight attempt and ends all subscriptions. Later
// results are dropped and Start is refused.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	o.closed = true
	if o.cancelRun != nil {
		o.cancelRun()
		o.cancelRun = nil
	}
	o.mu.Unlock()
	o.hub.Close()
}
