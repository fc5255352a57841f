package runs

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"homedesign/internal/domain"
	"homedesign/internal/status"
)

type blockingGenerator struct {
	release chan struct{}
	err     error
	pkg     *domain.DesignPackage

	mu      sync.Mutex
	running int
	peak    int
}

func (g *blockingGenerator) Generate(ctx context.Context, spec domain.HouseSpec, sink status.Sink) (*domain.DesignPackage, error) {
	g.mu.Lock()
	g.running++
	if g.running > g.peak {
		g.peak = g.running
	}
	g.mu.Unlock()
	defer func() {
		g.mu.Lock()
		g.running--
		g.mu.Unlock()
	}()

	sink.Report(status.StageInitialization, "Crafting the perfect design brief...")
	select {
	case <-g.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if g.err != nil {
		return nil, g.err
	}
	return g.pkg, nil
}

type releaseRecorder struct {
	mu   sync.Mutex
	refs []string
}

func (r *releaseRecorder) Release(ref string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refs = append(r.refs, ref)
	return true
}

func waitCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestManagerRunLifecycle(t *testing.T) {
	gen := &blockingGenerator{release: make(chan struct{}), pkg: &domain.DesignPackage{VideoURL: "object:abc"}}
	objects := &releaseRecorder{}
	m := NewManager(gen, objects, Options{MaxConcurrent: 2})
	defer m.Close(context.Background())

	run, err := m.Start("alice", domain.DefaultHouseSpec())
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if run.Finished() {
		t.Fatalf("new run already finished: %+v", run)
	}

	if _, err := m.Start("alice", domain.DefaultHouseSpec()); !errors.Is(err, domain.ErrRunInProgress) {
		t.Fatalf("second Start error = %v, want ErrRunInProgress", err)
	}
	if err := m.Reset(run.ID); !errors.Is(err, domain.ErrRunInProgress) {
		t.Fatalf("Reset while running error = %v, want ErrRunInProgress", err)
	}

	close(gen.release)
	done, err := m.Wait(waitCtx(t), run.ID)
	if err != nil {
		t.Fatalf("Wait returned error: %v", err)
	}
	if done.State != StateSucceeded || done.Package == nil || done.FinishedAt == nil {
		t.Fatalf("finished run = %+v", done)
	}
	if len(done.Status.Messages) != 1 || done.Status.Stage != status.StageInitialization {
		t.Fatalf("status = %+v", done.Status)
	}

	if err := m.Reset(run.ID); err != nil {
		t.Fatalf("Reset returned error: %v", err)
	}
	if len(objects.refs) != 1 || objects.refs[0] != "object:abc" {
		t.Fatalf("released = %v", objects.refs)
	}
	if _, err := m.Get(run.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Get after reset error = %v, want ErrNotFound", err)
	}
}

func TestManagerKeepsLatestRunPerSession(t *testing.T) {
	gen := &blockingGenerator{release: make(chan struct{}), pkg: &domain.DesignPackage{VideoURL: "object:first"}}
	close(gen.release)
	objects := &releaseRecorder{}
	m := NewManager(gen, objects, Options{MaxConcurrent: 2})
	defer m.Close(context.Background())

	first, err := m.Start("alice", domain.DefaultHouseSpec())
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if _, err := m.Wait(waitCtx(t), first.ID); err != nil {
		t.Fatalf("Wait returned error: %v", err)
	}
	other, err := m.Start("bob", domain.DefaultHouseSpec())
	if err != nil {
		t.Fatalf("Start(bob) returned error: %v", err)
	}
	if _, err := m.Wait(waitCtx(t), other.ID); err != nil {
		t.Fatalf("Wait(bob) returned error: %v", err)
	}

	second, err := m.Start("alice", domain.DefaultHouseSpec())
	if err != nil {
		t.Fatalf("second Start returned error: %v", err)
	}
	if _, err := m.Get(first.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Get(first) error = %v, want ErrNotFound", err)
	}
	if _, err := m.Get(other.ID); err != nil {
		t.Fatalf("another session's run was evicted: %v", err)
	}
	objects.mu.Lock()
	released := append([]string(nil), objects.refs...)
	objects.mu.Unlock()
	if len(released) != 1 || released[0] != "object:first" {
		t.Fatalf("released = %v, want [object:first]", released)
	}
	if _, err := m.Wait(waitCtx(t), second.ID); err != nil {
		t.Fatalf("Wait(second) returned error: %v", err)
	}
}

func TestManagerRecordsUserFacingError(t *testing.T) {
	gen := &blockingGenerator{release: make(chan struct{}), err: domain.ErrProviderFailure}
	close(gen.release)
	m := NewManager(gen, nil, Options{})
	defer m.Close(context.Background())

	run, err := m.Start("bob", domain.DefaultHouseSpec())
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	done, err := m.Wait(waitCtx(t), run.ID)
	if err != nil {
		t.Fatalf("Wait returned error: %v", err)
	}
	if done.State != StateFailed || !strings.HasPrefix(done.Error, "Failed to generate design.") || done.Package != nil {
		t.Fatalf("failed run = %+v", done)
	}
}

func TestManagerBoundsConcurrency(t *testing.T) {
	gen := &blockingGenerator{release: make(chan struct{}), pkg: &domain.DesignPackage{}}
	m := NewManager(gen, nil, Options{MaxConcurrent: 1})
	defer m.Close(context.Background())

	var ids []string
	for _, session := range []string{"a", "b", "c"} {
		run, err := m.Start(session, domain.DefaultHouseSpec())
		if err != nil {
			t.Fatalf("Start(%s) returned error: %v", session, err)
		}
		ids = append(ids, run.ID)
	}
	close(gen.release)
	for _, id := range ids {
		if _, err := m.Wait(waitCtx(t), id); err != nil {
			t.Fatalf("Wait(%s) returned error: %v", id, err)
		}
	}
	if gen.peak != 1 {
		t.Fatalf("peak concurrency = %d, want 1", gen.peak)
	}
}

func TestManagerRejectsInvalidSpec(t *testing.T) {
	m := NewManager(&blockingGenerator{}, nil, Options{})
	defer m.Close(context.Background())
	spec := domain.DefaultHouseSpec()
	spec.Style = "Gothic"
	if _, err := m.Start("local", spec); !errors.Is(err, domain.ErrInvalidHouseSpec) {
		t.Fatalf("error = %v, want ErrInvalidHouseSpec", err)
	}
}

func TestManagerCloseCancelsRuns(t *testing.T) {
	gen := &blockingGenerator{release: make(chan struct{})}
	m := NewManager(gen, nil, Options{})
	run, err := m.Start("local", domain.DefaultHouseSpec())
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if err := m.Close(waitCtx(t)); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
	got, _ := m.Get(run.ID)
	if got.State != StateFailed {
		t.Fatalf("state = %q, want failed", got.State)
	}
}
