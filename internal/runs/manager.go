// Package runs tracks design generation runs started through the studio
// server: one active run per session, bounded concurrency, status
// snapshots and explicit reset. A session keeps only its latest run; starting
// a new one discards the previous package and its video.
package runs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"homedesign/internal/domain"
	"homedesign/internal/infra"
	"homedesign/internal/orchestrator"
	"homedesign/internal/status"
)

type State string

const (
	StateQueued    State = "queued"
	StateRunning   State = "running"
	StateSucceeded State = "succeeded"
	StateFailed    State = "failed"
)

// Run is a point-in-time view of one generation.
type Run struct {
	ID         string                  `json:"id"`
	SessionID  string                  `json:"-"`
	State      State                   `json:"state"`
	Status     domain.GenerationStatus `json:"status"`
	Spec       domain.HouseSpec        `json:"spec"`
	Package    *domain.DesignPackage   `json:"package,omitempty"`
	Error      string                  `json:"error,omitempty"`
	StartedAt  time.Time               `json:"startedAt"`
	FinishedAt *time.Time              `json:"finishedAt,omitempty"`
}

func (r Run) Finished() bool {
	return r.State == StateSucceeded || r.State == StateFailed
}

// Generator runs one design generation.
type Generator interface {
	Generate(ctx context.Context, spec domain.HouseSpec, sink status.Sink) (*domain.DesignPackage, error)
}

// Releaser frees object references held by a finished package.
type Releaser interface {
	Release(ref string) bool
}

type Options struct {
	MaxConcurrent int
	Logger        *infra.Logger
}

type entry struct {
	mu       sync.Mutex
	run      Run
	reporter *status.Reporter
	done     chan struct{}
}

func (e *entry) snapshot() Run {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := e.run
	out.Status = e.reporter.Snapshot()
	return out
}

type Manager struct {
	gen     Generator
	objects Releaser
	slots   chan struct{}
	logger  *infra.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.RWMutex
	runs   map[string]*entry
	active map[string]string
	latest map[string]string
}

func NewManager(gen Generator, objects Releaser, opts Options) *Manager {
	limit := opts.MaxConcurrent
	if limit <= 0 {
		limit = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		gen:     gen,
		objects: objects,
		slots:   make(chan struct{}, limit),
		logger:  infra.OrNop(opts.Logger),
		ctx:     ctx,
		cancel:  cancel,
		runs:    map[string]*entry{},
		active:  map[string]string{},
		latest:  map[string]string{},
	}
}

// Start validates spec and launches a run in the background. A session may
// hold only one unfinished run at a time.
func (m *Manager) Start(sessionID string, spec domain.HouseSpec) (Run, error) {
	spec = spec.Clone()
	spec.Normalize()
	if err := spec.Validate(); err != nil {
		return Run{}, err
	}

	m.mu.Lock()
	if id, ok := m.active[sessionID]; ok {
		m.mu.Unlock()
		return Run{}, fmt.Errorf("%w: %s", domain.ErrRunInProgress, id)
	}
	e := &entry{
		run: Run{
			ID:        uuid.NewString(),
			SessionID: sessionID,
			State:     StateQueued,
			Spec:      spec,
			StartedAt: time.Now().UTC(),
		},
		reporter: status.NewReporter(),
		done:     make(chan struct{}),
	}
	evicted := m.evictLocked(sessionID)
	m.runs[e.run.ID] = e
	m.active[sessionID] = e.run.ID
	m.latest[sessionID] = e.run.ID
	m.mu.Unlock()

	if evicted != nil {
		m.release(evicted)
	}

	m.wg.Add(1)
	go m.execute(e)
	return e.snapshot(), nil
}

func (m *Manager) execute(e *entry) {
	defer m.wg.Done()
	defer close(e.done)

	log := m.logger.With().Str("run_id", e.run.ID).Logger()

	var (
		pkg *domain.DesignPackage
		err error
	)
	select {
	case m.slots <- struct{}{}:
		e.mu.Lock()
		e.run.State = StateRunning
		spec := e.run.Spec
		e.mu.Unlock()
		log.Info().Msg("runs: started")
		pkg, err = m.gen.Generate(m.ctx, spec, e.reporter)
		<-m.slots
	case <-m.ctx.Done():
		err = m.ctx.Err()
	}

	finished := time.Now().UTC()
	e.mu.Lock()
	e.run.FinishedAt = &finished
	if err != nil {
		e.run.State = StateFailed
		e.run.Error = orchestrator.UserMessage(err)
	} else {
		e.run.State = StateSucceeded
		e.run.Package = pkg
	}
	sessionID := e.run.SessionID
	e.mu.Unlock()

	m.mu.Lock()
	if m.active[sessionID] == e.run.ID {
		delete(m.active, sessionID)
	}
	m.mu.Unlock()

	if err != nil {
		log.Error().Err(err).Msg("runs: failed")
		return
	}
	log.Info().Dur("elapsed", finished.Sub(e.run.StartedAt)).Msg("runs: succeeded")
}

func (m *Manager) lookup(id string) (*entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.runs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return e, nil
}

func (m *Manager) Get(id string) (Run, error) {
	e, err := m.lookup(id)
	if err != nil {
		return Run{}, err
	}
	return e.snapshot(), nil
}

// Wait blocks until the run finishes or ctx is done.
func (m *Manager) Wait(ctx context.Context, id string) (Run, error) {
	e, err := m.lookup(id)
	if err != nil {
		return Run{}, err
	}
	select {
	case <-e.done:
		return e.snapshot(), nil
	case <-ctx.Done():
		return e.snapshot(), ctx.Err()
	}
}

// Reset discards a finished run and releases its video object.
func (m *Manager) Reset(id string) error {
	e, err := m.lookup(id)
	if err != nil {
		return err
	}
	run := e.snapshot()
	if !run.Finished() {
		return fmt.Errorf("%w: %s", domain.ErrRunInProgress, id)
	}
	m.mu.Lock()
	delete(m.runs, id)
	if m.latest[run.SessionID] == id {
		delete(m.latest, run.SessionID)
	}
	m.mu.Unlock()

	m.release(e)
	m.logger.Info().Str("run_id", id).Msg("runs: reset")
	return nil
}

// evictLocked drops the finished run a session kept from its previous
// generation. Only the most recent run per session is retained.
func (m *Manager) evictLocked(sessionID string) *entry {
	id, ok := m.latest[sessionID]
	if !ok {
		return nil
	}
	delete(m.latest, sessionID)
	e, ok := m.runs[id]
	if !ok {
		return nil
	}
	delete(m.runs, id)
	return e
}

func (m *Manager) release(e *entry) {
	run := e.snapshot()
	if run.Package.HasVideo() && m.objects != nil {
		m.objects.Release(run.Package.VideoURL)
	}
	e.reporter.Reset()
}

// Close cancels unfinished runs and waits for them to stop.
func (m *Manager) Close(ctx context.Context) error {
	m.cancel()
	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return errors.Join(errors.New("runs: shutdown timed out"), ctx.Err())
	}
}
