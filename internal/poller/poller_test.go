package poller

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/avelis/go-accountability-sync/internal/domain"
)

// fakeSource serves a mutable commitment and counts reads.
type fakeSource struct {
	mu         sync.Mutex
	commitment domain.Commitment
	stats      domain.Stats
	todayErr   error
	todayCalls int
}

func (f *fakeSource) Today(_ context.Context, _ string) (*domain.Commitment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.todayCalls++
	if f.todayErr != nil {
		return nil, f.todayErr
	}
	c := f.commitment
	return &c, nil
}

func (f *fakeSource) Stats(_ context.Context, _ string, _ int) (*domain.Stats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	st := f.stats
	return &st, nil
}

func (f *fakeSource) set(c domain.Commitment) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.commitment = c
}

func (f *fakeSource) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.todayCalls
}

// promptCounter is a thread-safe OnPrompt recorder.
type promptCounter struct {
	mu      sync.Mutex
	prompts []domain.Commitment
}

func (pc *promptCounter) record(c domain.Commitment) {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	pc.prompts = append(pc.prompts, c)
}

func (pc *promptCounter) count() int {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	return len(pc.prompts)
}

func pendingReview(hours float64) domain.Commitment {
	return domain.Commitment{
		HasCommitment: true,
		CheckinID:     7,
		Text:          "ship the exporter",
		HoursSince:    hours,
	}
}

func newTestPoller(src *fakeSource, pc *promptCounter) *Poller {
	return New(Options{
		Source:   src,
		User:     "alice",
		OnPrompt: pc.record,
		Logger:   zerolog.Nop(),
	})
}

func TestRefresh_PromptFiresOnceWhileOpen(t *testing.T) {
	src := &fakeSource{commitment: pendingReview(9)}
	pc := &promptCounter{}
	p := newTestPoller(src, pc)

	p.Refresh(context.Background())
	p.Refresh(context.Background())
	p.Refresh(context.Background())

	if got := pc.count(); got != 1 {
		t.Fatalf("prompts = %d, want 1 while the prompt stays open", got)
	}
	if pc.prompts[0].CheckinID != 7 {
		t.Fatalf("prompt carried checkin %d, want 7", pc.prompts[0].CheckinID)
	}
	if st := p.Snapshot().State; st != domain.StatePendingReview {
		t.Fatalf("state = %v, want PendingReview", st)
	}
}

func TestRefresh_RePromptsAfterClose(t *testing.T) {
	src := &fakeSource{commitment: pendingReview(9)}
	pc := &promptCounter{}
	p := newTestPoller(src, pc)

	p.Refresh(context.Background())
	p.PromptClosed()
	p.Refresh(context.Background())

	if got := pc.count(); got != 2 {
		t.Fatalf("prompts = %d, want 2 after the first was dismissed", got)
	}
}

func TestRefresh_FeedbackPendingSuppressesPrompt(t *testing.T) {
	src := &fakeSource{commitment: pendingReview(9)}
	pc := &promptCounter{}
	p := newTestPoller(src, pc)

	p.FeedbackShown()
	p.Refresh(context.Background())
	if got := pc.count(); got != 0 {
		t.Fatalf("prompts = %d, want 0 while feedback is on screen", got)
	}

	p.FeedbackCleared()
	p.Refresh(context.Background())
	if got := pc.count(); got != 1 {
		t.Fatalf("prompts = %d, want 1 after feedback cleared", got)
	}
}

// A 09:00 check-in is not due at 16:59 and is due at 17:01 with the default
// eight hour threshold.
func TestRefresh_ThresholdBoundary(t *testing.T) {
	src := &fakeSource{commitment: pendingReview(7.98)}
	pc := &promptCounter{}
	p := newTestPoller(src, pc)

	p.Refresh(context.Background())
	if got := pc.count(); got != 0 {
		t.Fatalf("prompts = %d, want 0 before the threshold", got)
	}
	if st := p.Snapshot().State; st != domain.StatePending {
		t.Fatalf("state = %v, want Pending", st)
	}

	src.set(pendingReview(8.02))
	p.Refresh(context.Background())
	if got := pc.count(); got != 1 {
		t.Fatalf("prompts = %d, want 1 past the threshold", got)
	}
}

func TestRefresh_TerminalStateNeverPrompts(t *testing.T) {
	shipped := true
	c := pendingReview(12)
	c.Shipped = &shipped

	src := &fakeSource{commitment: c}
	pc := &promptCounter{}
	p := newTestPoller(src, pc)

	p.Refresh(context.Background())
	if got := pc.count(); got != 0 {
		t.Fatalf("prompts = %d, want 0 for a reviewed commitment", got)
	}
	if st := p.Snapshot().State; st != domain.StateShipped {
		t.Fatalf("state = %v, want Shipped", st)
	}
}

func TestRefresh_ErrorKeepsLastGoodState(t *testing.T) {
	src := &fakeSource{commitment: pendingReview(3)}
	p := newTestPoller(src, &promptCounter{})

	p.Refresh(context.Background())

	src.mu.Lock()
	src.todayErr = errors.New("unreachable")
	src.mu.Unlock()

	p.Refresh(context.Background())

	snap := p.Snapshot()
	if snap.LastErr == nil {
		t.Fatal("LastErr = nil, want refresh error recorded")
	}
	if snap.Commitment == nil || snap.Commitment.CheckinID != 7 {
		t.Fatal("last good commitment was dropped on refresh error")
	}
	if snap.State != domain.StatePending {
		t.Fatalf("state = %v, want Pending retained", snap.State)
	}
}

func TestStartStop_NoRefreshAfterStop(t *testing.T) {
	src := &fakeSource{commitment: pendingReview(1)}
	p := New(Options{
		Source:   src,
		User:     "alice",
		Interval: 5 * time.Millisecond,
		Logger:   zerolog.Nop(),
	})

	p.Start(context.Background())

	deadline := time.Now().Add(time.Second)
	for src.calls() < 2 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if src.calls() < 2 {
		t.Fatal("ticker never fired")
	}

	p.Stop()
	after := src.calls()
	time.Sleep(25 * time.Millisecond)
	if got := src.calls(); got != after {
		t.Fatalf("refreshes continued after Stop: %d -> %d", after, got)
	}

	// Second Stop is a no-op.
	p.Stop()
}

func TestStart_SecondStartIsNoOp(t *testing.T) {
	src := &fakeSource{commitment: pendingReview(1)}
	p := New(Options{
		Source:   src,
		User:     "alice",
		Interval: time.Hour,
		Logger:   zerolog.Nop(),
	})

	p.Start(context.Background())
	p.Start(context.Background())
	defer p.Stop()

	deadline := time.Now().Add(time.Second)
	for src.calls() < 1 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	time.Sleep(10 * time.Millisecond)
	if got := src.calls(); got != 1 {
		t.Fatalf("initial refreshes = %d, want 1", got)
	}
}
