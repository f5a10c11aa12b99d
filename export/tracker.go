package export

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

type Phase int

const (
	PhaseLoad Phase = iota
	PhaseInline
	PhaseRender
	PhaseCompose
	PhaseTOC
	PhaseOutline
	PhaseQuiz
)

var phaseWeights = [...]float64{
	PhaseLoad:    5,
	PhaseInline:  10,
	PhaseRender:  50,
	PhaseCompose: 10,
	PhaseTOC:     10,
	PhaseOutline: 5,
	PhaseQuiz:    10,
}

// Failed is the progress reported for a job that ended with an error.
const Failed = -1

// notifyStep is the percentage granularity forwarded to the notifier.
const notifyStep = 5

type Notifier interface {
	Notify(ctx context.Context, jobId string, percent int) error
}

type jobState struct {
	percent float64
	done    bool
	result  []byte
	err     string
}

// Status is a snapshot of one job.
type Status struct {
	Percent int    `json:"percent"`
	Done    bool   `json:"done"`
	Error   string `json:"error,omitempty"`
}

// Tracker keeps job progress and finished documents for a while. A nil
// Tracker ignores every call.
type Tracker struct {
	mu       sync.Mutex
	jobs     *cache.Cache
	notifier Notifier
	l        *slog.Logger
}

func NewTracker(ttl time.Duration, n Notifier, l *slog.Logger) *Tracker {
	if l == nil {
		l = slog.Default()
	}
	return &Tracker{
		jobs:     cache.New(ttl, ttl/2+time.Minute),
		notifier: n,
		l:        l,
	}
}

func (t *Tracker) Start(jobId string) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.jobs.Set(jobId, &jobState{}, cache.DefaultExpiration)
}

func (t *Tracker) state(jobId string) (*jobState, bool) {
	v, ok := t.jobs.Get(jobId)
	if !ok {
		return nil, false
	}
	return v.(*jobState), true
}

// Advance records that fraction of phase is finished. Progress never goes
// backwards, and finished or failed jobs are left alone.
func (t *Tracker) Advance(ctx context.Context, jobId string, phase Phase, fraction float64) {
	if t == nil {
		return
	}
	fraction = min(max(fraction, 0), 1)

	var total float64
	for p := PhaseLoad; p < phase; p++ {
		total += phaseWeights[p]
	}
	total += phaseWeights[phase] * fraction

	t.mu.Lock()
	s, ok := t.state(jobId)
	if !ok || s.done || s.percent < 0 || total <= s.percent {
		t.mu.Unlock()
		return
	}
	prev := int(s.percent)
	s.percent = total
	t.mu.Unlock()

	if int(total)/notifyStep > prev/notifyStep {
		t.notify(ctx, jobId, int(total))
	}
}

// Done marks the job finished and keeps its document for download.
func (t *Tracker) Done(ctx context.Context, jobId string, result []byte) {
	if t == nil {
		return
	}
	t.mu.Lock()
	t.jobs.Set(jobId, &jobState{percent: 100, done: true, result: result}, cache.DefaultExpiration)
	t.mu.Unlock()

	t.notify(ctx, jobId, 100)
}

// FailureMessage is the only error text reported for a failed job; the cause
// stays in the log.
const FailureMessage = "export failed"

// Fail resets the job's progress to Failed.
func (t *Tracker) Fail(ctx context.Context, jobId string, err error) {
	if t == nil {
		return
	}
	t.l.DebugContext(ctx, "job marked failed", "job", jobId, "err", err)

	t.mu.Lock()
	t.jobs.Set(jobId, &jobState{percent: Failed, done: true, err: FailureMessage}, cache.DefaultExpiration)
	t.mu.Unlock()

	t.notify(ctx, jobId, Failed)
}

func (t *Tracker) Progress(jobId string) (Status, bool) {
	if t == nil {
		return Status{}, false
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.state(jobId)
	if !ok {
		return Status{}, false
	}
	return Status{Percent: int(s.percent), Done: s.done, Error: s.err}, true
}

// Result returns the document of a finished job.
func (t *Tracker) Result(jobId string) ([]byte, bool) {
	if t == nil {
		return nil, false
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.state(jobId)
	if !ok || s.result == nil {
		return nil, false
	}
	return s.result, true
}

func (t *Tracker) notify(ctx context.Context, jobId string, percent int) {
	if t.notifier == nil {
		return
	}
	if err := t.notifier.Notify(ctx, jobId, percent); err != nil {
		t.l.DebugContext(ctx, "progress notification failed", "percent", percent, "err", err)
	}
}
