package registry

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/ingredient-intel/iie/internal/capability"
	"github.com/ingredient-intel/iie/internal/domain/ingredient"
	"github.com/ingredient-intel/iie/internal/domain/safety"
	apperrors "github.com/ingredient-intel/iie/pkg/errors"
)

// Result is one Fetcher's outcome for a single ingredient lookup.
type Result struct {
	RegistryID safety.RegistryID
	Fragment   *safety.RegistryFragment
	Err        error
}

// DefaultQueueDepthMultiple sizes the backpressure queue relative to the
// global concurrency cap when no explicit queue depth is configured.
const DefaultQueueDepthMultiple = 4

// SchedulerMetrics reports the scheduler's live backpressure state. Callers
// that don't care about observability can omit it; Scheduler falls back to
// a no-op implementation.
type SchedulerMetrics interface {
	// SetQueueDepth reports how many fetches are currently queued waiting
	// for a global concurrency slot.
	SetQueueDepth(waiting int)
	// IncOverloaded counts one request rejected because the queue was
	// already at capacity.
	IncOverloaded()
}

type noopSchedulerMetrics struct{}

func (noopSchedulerMetrics) SetQueueDepth(int) {}
func (noopSchedulerMetrics) IncOverloaded()    {}

// SchedulerOption configures optional Scheduler behavior.
type SchedulerOption func(*Scheduler)

// WithQueueDepth bounds how many fetches may wait for a free global slot
// before FetchAll starts failing fast with errors.Overloaded. A depth of 0
// means no waiting room at all: every call that finds the global cap
// saturated is rejected immediately.
func WithQueueDepth(depth int) SchedulerOption {
	return func(s *Scheduler) { s.queueDepth = int64(depth) }
}

// WithMetrics wires a SchedulerMetrics sink for queue-depth and overload
// reporting.
func WithMetrics(m SchedulerMetrics) SchedulerOption {
	return func(s *Scheduler) {
		if m != nil {
			s.metrics = m
		}
	}
}

// Scheduler bounds concurrency across registry calls: a buffered-channel
// semaphore per registry plus a shared global one, fronted by a bounded
// backpressure queue so a saturated cap fails fast with Overloaded instead
// of blocking callers indefinitely.
type Scheduler struct {
	global chan struct{}
	perReg map[safety.RegistryID]chan struct{}
	mu     sync.Mutex

	queueDepth int64
	waiting    int64
	metrics    SchedulerMetrics
}

// NewScheduler builds a Scheduler with globalCap total in-flight registry
// calls and, for any registry named in perRegistryCap, that many
// concurrent calls to it specifically (registries absent from the map
// are only bounded by the global cap). Without WithQueueDepth, the queue
// defaults to DefaultQueueDepthMultiple times globalCap.
func NewScheduler(globalCap int, perRegistryCap map[safety.RegistryID]int, opts ...SchedulerOption) *Scheduler {
	if globalCap <= 0 {
		globalCap = 8
	}
	s := &Scheduler{
		global:     make(chan struct{}, globalCap),
		perReg:     make(map[safety.RegistryID]chan struct{}, len(perRegistryCap)),
		queueDepth: int64(globalCap * DefaultQueueDepthMultiple),
		metrics:    noopSchedulerMetrics{},
	}
	for id, n := range perRegistryCap {
		if n <= 0 {
			n = 1
		}
		s.perReg[id] = make(chan struct{}, n)
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Scheduler) regSem(id safety.RegistryID) chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ch, ok := s.perReg[id]; ok {
		return ch
	}
	return nil
}

// acquireGlobal reserves one global concurrency slot. A slot already free
// is taken immediately. Otherwise, when the queue still has room, the
// caller joins the wait line and blocks until a slot frees or ctx is done;
// once the queue is itself full, acquireGlobal fails fast with
// errors.Overloaded rather than growing the wait line further.
func (s *Scheduler) acquireGlobal(ctx context.Context) error {
	select {
	case s.global <- struct{}{}:
		return nil
	default:
	}

	n := atomic.AddInt64(&s.waiting, 1)
	if n > s.queueDepth {
		atomic.AddInt64(&s.waiting, -1)
		s.metrics.IncOverloaded()
		return apperrors.Overloaded("registry scheduler queue is full")
	}
	s.metrics.SetQueueDepth(int(n))
	defer func() {
		s.metrics.SetQueueDepth(int(atomic.AddInt64(&s.waiting, -1)))
	}()

	select {
	case s.global <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// FetchAll calls every fetcher for name concurrently, respecting both
// caps, and returns one Result per fetcher (order matches fetchers).
// A single registry's failure never blocks or cancels the others —
// callers (the Aggregator) decide how to treat partial results. A fetcher
// that can't get a global slot because the backpressure queue is already
// full gets an Overloaded Result instead of waiting.
func (s *Scheduler) FetchAll(ctx context.Context, name ingredient.CanonicalName, fetchers []capability.RegistryFetcher) []Result {
	results := make([]Result, len(fetchers))
	var wg sync.WaitGroup

	for i, f := range fetchers {
		wg.Add(1)
		go func(idx int, f capability.RegistryFetcher) {
			defer wg.Done()

			if err := s.acquireGlobal(ctx); err != nil {
				results[idx] = Result{RegistryID: f.RegistryID(), Err: err}
				return
			}
			defer func() { <-s.global }()

			if sem := s.regSem(f.RegistryID()); sem != nil {
				select {
				case sem <- struct{}{}:
					defer func() { <-sem }()
				case <-ctx.Done():
					results[idx] = Result{RegistryID: f.RegistryID(), Err: ctx.Err()}
					return
				}
			}

			fragment, err := f.Fetch(ctx, name)
			results[idx] = Result{RegistryID: f.RegistryID(), Fragment: fragment, Err: err}
		}(i, f)
	}

	wg.Wait()
	return results
}
