package summary

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/healthconnect/portal/internal/pkg/metrics"
	"go.uber.org/zap"
)

// SurfaceKey identifies the record view a doctor has open.
func SurfaceKey(doctorID, patientID string) string {
	return doctorID + ":" + patientID
}

// Registry holds one orchestrator per open surface.
type Registry struct {
	summarizer Summarizer
	logger     *zap.Logger
	metrics    *metrics.Metrics

	mu       sync.Mutex
	surfaces map[string]*Orchestrator
}

func NewRegistry(summarizer Summarizer, logger *zap.Logger, m *metrics.Metrics) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		summarizer: summarizer,
		logger:     logger.Named("SummarySurfaces"),
		metrics:    m,
		surfaces:   make(map[string]*Orchestrator),
	}
}

func (r *Registry) Get(key string) (*Orchestrator, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.surfaces[key]
	return o, ok
}

func (r *Registry) GetOrCreate(key string) *Orchestrator {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o, ok := r.surfaces[key]; ok {
		return o
	}
	o := NewOrchestrator(r.summarizer, r.logger.With(zap.String("surface", key)))
	r.surfaces[key] = o
	r.metrics.SetActiveSurfaces(len(r.surfaces))
	return o
}

// Start begins an attempt on key's surface. A surface closed between lookup
// and Start is dropped and replaced once.
func (r *Registry) Start(ctx context.Context, key, recordText string) (*Orchestrator, error) {
	var err error
	for range 2 {
		o := r.GetOrCreate(key)
		if _, err = o.Start(ctx, recordText); !errors.Is(err, ErrSurfaceClosed) {
			return o, err
		}
		r.forget(key, o)
	}
	return nil, err
}

// forget drops key only while it still maps to o.
func (r *Registry) forget(key string, o *Orchestrator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.surfaces[key] == o {
		delete(r.surfaces, key)
		r.metrics.SetActiveSurfaces(len(r.surfaces))
	}
}

// Remove closes and forgets a surface. It reports whether the surface existed.
func (r *Registry) Remove(key string) bool {
	r.mu.Lock()
	o, ok := r.surfaces[key]
	if ok {
		delete(r.surfaces, key)
		r.metrics.SetActiveSurfaces(len(r.surfaces))
	}
	r.mu.Unlock()

	if ok {
		o.Close()
	}
	return ok
}

// EvictIdle closes surfaces that are not pending and untouched for ttl.
func (r *Registry) EvictIdle(now time.Time, ttl time.Duration) int {
	cutoff := now.Add(-ttl)

	r.mu.Lock()
	var evicted []*Orchestrator
	for key, o := range r.surfaces {
		if o.Idle(cutoff) {
			delete(r.surfaces, key)
			evicted = append(evicted, o)
		}
	}
	r.metrics.SetActiveSurfaces(len(r.surfaces))
	r.mu.Unlock()

	for _, o := range evicted {
		o.Close()
	}
	return len(evicted)
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.surfaces)
}

// CloseAll closes every surface, cancelling in-flight attempts.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	surfaces := r.surfaces
	r.surfaces = make(map[string]*Orchestrator)
	r.metrics.SetActiveSurfaces(0)
	r.mu.Unlock()

	for _, o := range surfaces {
		o.Close()
	}
}
