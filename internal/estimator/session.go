package estimator

import (
	"context"
	"sync"
	"time"
)

// State is the lifecycle position of a Session.
type State int

const (
	StateIdle State = iota
	StateValidating
	StateComputing
	StateReady
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateComputing:
		return "computing"
	case StateReady:
		return "ready"
	default:
		return "unknown"
	}
}

// Gate runs between validation and computation. A non-nil error aborts the request and the
// session falls back to idle.
type Gate func(ctx context.Context) error

// Session orders estimation requests coming from one caller (one user adjusting one recipe).
// Requests carry increasing sequence numbers and only the newest accepted request may publish
// its result; anything older is discarded with ErrSuperseded regardless of completion order.
type Session struct {
	estimator *Estimator
	gate      Gate
	now       func() time.Time

	mu         sync.Mutex
	state      State
	latest     uint64
	generation uint64
	result     *Result
	resultSeq  uint64
	updatedAt  time.Time
}

// SessionOption customises a Session.
type SessionOption func(*Session)

// WithGate installs a hook executed in the computing state.
func WithGate(gate Gate) SessionOption {
	return func(s *Session) {
		s.gate = gate
	}
}

// WithSessionClock overrides the clock used for UpdatedAt.
func WithSessionClock(now func() time.Time) SessionOption {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// NewSession creates an idle session bound to est.
func NewSession(est *Estimator, opts ...SessionOption) *Session {
	s := &Session{
		estimator: est,
		now:       time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	s.updatedAt = s.now()
	return s
}

// Submit runs req under sequence number seq and returns the sequence it ran under. A zero seq
// is assigned the next number. It returns ErrSuperseded when seq is not newer than the last
// accepted request, or when a newer request or Invalidate arrived while this one was running.
func (s *Session) Submit(ctx context.Context, seq uint64, req Request) (Result, uint64, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	s.mu.Lock()
	if seq == 0 {
		seq = s.latest + 1
	}
	if seq <= s.latest {
		s.mu.Unlock()
		return Result{}, seq, ErrSuperseded
	}
	s.latest = seq
	generation := s.generation
	s.transitionLocked(StateValidating)
	s.mu.Unlock()

	if err := s.estimator.Validate(req); err != nil {
		s.abort(seq, generation)
		return Result{}, seq, err
	}

	if !s.advance(seq, generation, StateComputing) {
		return Result{}, seq, ErrSuperseded
	}

	if s.gate != nil {
		if err := s.gate(ctx); err != nil {
			s.abort(seq, generation)
			return Result{}, seq, err
		}
	}
	if err := ctx.Err(); err != nil {
		s.abort(seq, generation)
		return Result{}, seq, err
	}

	result, err := s.estimator.Estimate(req)
	if err != nil {
		s.abort(seq, generation)
		return Result{}, seq, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.currentLocked(seq, generation) {
		return Result{}, seq, ErrSuperseded
	}
	stored := result.Clone()
	s.result = &stored
	s.resultSeq = seq
	s.transitionLocked(StateReady)
	return result, seq, nil
}

// Invalidate drops the current result and any in-flight request and returns to idle. The
// sequence high-water mark is kept, so requests older than the last accepted one stay stale.
func (s *Session) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.result = nil
	s.resultSeq = 0
	s.transitionLocked(StateIdle)
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Result returns the published result and the sequence number that produced it.
func (s *Session) Result() (Result, uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return Result{}, 0, false
	}
	return s.result.Clone(), s.resultSeq, true
}

// LatestSequence returns the highest sequence number accepted so far.
func (s *Session) LatestSequence() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest
}

// UpdatedAt reports when the session last changed state.
func (s *Session) UpdatedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updatedAt
}

func (s *Session) advance(seq, generation uint64, next State) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.currentLocked(seq, generation) {
		return false
	}
	s.transitionLocked(next)
	return true
}

// abort returns to idle only if seq still owns the session; stale failures leave newer work alone.
func (s *Session) abort(seq, generation uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.currentLocked(seq, generation) {
		return
	}
	s.result = nil
	s.resultSeq = 0
	s.transitionLocked(StateIdle)
}

func (s *Session) currentLocked(seq, generation uint64) bool {
	return s.latest == seq && s.generation == generation
}

func (s *Session) transitionLocked(next State) {
	s.state = next
	s.updatedAt = s.now()
}
