package export

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type recordingNotifier struct {
	mu   sync.Mutex
	seen []int
}

func (n *recordingNotifier) Notify(_ context.Context, _ string, percent int) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.seen = append(n.seen, percent)
	return nil
}

func TestTrackerAdvance(t *testing.T) {
	ctx := context.Background()
	tr := NewTracker(time.Minute, nil, discard)
	tr.Start("j")

	steps := []struct {
		phase    Phase
		fraction float64
		want     int
	}{
		{PhaseLoad, 1, 5},
		{PhaseInline, 0.5, 10},
		{PhaseRender, 0.5, 40},
		// stale update from an earlier phase is ignored
		{PhaseInline, 1, 40},
		{PhaseRender, 1, 65},
		{PhaseCompose, 1, 75},
		{PhaseQuiz, 1, 100},
		{PhaseQuiz, 2, 100},
	}
	for _, s := range steps {
		tr.Advance(ctx, "j", s.phase, s.fraction)
		st, ok := tr.Progress("j")
		if !ok || st.Percent != s.want {
			t.Fatalf("after phase %d at %.1f: percent = %d, want %d", s.phase, s.fraction, st.Percent, s.want)
		}
	}
}

func TestTrackerFailAndDone(t *testing.T) {
	ctx := context.Background()
	n := &recordingNotifier{}
	tr := NewTracker(time.Minute, n, discard)

	tr.Start("a")
	tr.Advance(ctx, "a", PhaseRender, 0.2)
	tr.Fail(ctx, "a", errors.New("boom"))
	tr.Advance(ctx, "a", PhaseRender, 1)

	st, _ := tr.Progress("a")
	if st.Percent != Failed || st.Error != FailureMessage || !st.Done {
		t.Errorf("failed job status = %+v", st)
	}
	if _, ok := tr.Result("a"); ok {
		t.Error("failed job has a result")
	}

	tr.Start("b")
	tr.Done(ctx, "b", []byte("%PDF-"))
	if doc, ok := tr.Result("b"); !ok || string(doc) != "%PDF-" {
		t.Error("finished job lost its document")
	}

	if _, ok := tr.Progress("unknown"); ok {
		t.Error("unknown job reported")
	}

	want := []int{25, Failed, 100}
	if len(n.seen) != len(want) {
		t.Fatalf("notified %v, want %v", n.seen, want)
	}
	for i := range want {
		if n.seen[i] != want[i] {
			t.Errorf("notification %d = %d, want %d", i, n.seen[i], want[i])
		}
	}
}

func TestNilTracker(t *testing.T) {
	var tr *Tracker
	tr.Start("x")
	tr.Advance(context.Background(), "x", PhaseLoad, 1)
	tr.Done(context.Background(), "x", nil)
	if _, ok := tr.Progress("x"); ok {
		t.Error("nil tracker reported progress")
	}
}
