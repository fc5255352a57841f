package status

import (
	"sync"

	"homedesign/internal/domain"
)

// MaxMessages bounds the progress window; older messages are evicted first.
const MaxMessages = 5

// Stage labels reported during a run.
const (
	StageInitialization = "Initialization"
	StageContent        = "Content Generation"
	StageImages         = "Image Generation"
	StageFloorPlans     = "Floor Plan Generation"
	StageVideo          = "Video Generation"
	StageFinalizing     = "Finalizing"
)

// Sink receives stage transitions and progress messages.
type Sink interface {
	Report(stage, message string)
}

// Observer is notified with a snapshot after every Report.
type Observer func(domain.GenerationStatus)

// Reporter keeps the current stage and a sliding window of the most recent
// messages. Observers run synchronously while the reporter lock is held, so
// they must not call back into the reporter.
type Reporter struct {
	mu        sync.Mutex
	stage     string
	messages  []string
	observers []Observer
}

func NewReporter(observers ...Observer) *Reporter {
	return &Reporter{observers: observers}
}

func (r *Reporter) Report(stage, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stage = stage
	r.messages = append(r.messages, message)
	if over := len(r.messages) - MaxMessages; over > 0 {
		r.messages = append(r.messages[:0:0], r.messages[over:]...)
	}
	if len(r.observers) == 0 {
		return
	}
	snap := r.snapshotLocked()
	for _, obs := range r.observers {
		obs(snap)
	}
}

// Snapshot returns a copy of the current status.
func (r *Reporter) Snapshot() domain.GenerationStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

// Reset clears the stage and message window.
func (r *Reporter) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stage = ""
	r.messages = nil
}

func (r *Reporter) snapshotLocked() domain.GenerationStatus {
	return domain.GenerationStatus{
		Stage:    r.stage,
		Messages: append([]string{}, r.messages...),
	}
}

// Discard drops every report.
var Discard Sink = discard{}

type discard struct{}

func (discard) Report(string, string) {}

var _ Sink = (*Reporter)(nil)
