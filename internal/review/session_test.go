package review

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/avelis/go-accountability-sync/internal/domain"
	"github.com/avelis/go-accountability-sync/internal/services"
)

// fakeReviewer applies the same pre-network validation as the real
// CommitmentService and records whether the network was reached.
type fakeReviewer struct {
	mu       sync.Mutex
	calls    int
	lastID   int64
	feedback string
	err      error
}

func (f *fakeReviewer) Review(_ context.Context, checkinID int64, shipped *bool, excuse string) (*domain.ReviewFeedback, error) {
	if shipped == nil {
		return nil, services.ErrShippedNotChosen
	}
	if !*shipped && excuse == "" {
		return nil, services.ErrExcuseRequired
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.calls++
	f.lastID = checkinID
	return &domain.ReviewFeedback{Feedback: f.feedback}, nil
}

func (f *fakeReviewer) networkCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// spyCoordinator records the guard callbacks.
type spyCoordinator struct {
	mu       sync.Mutex
	opened   int
	closed   int
	shown    int
	cleared  int
	refreshs int
}

func (c *spyCoordinator) PromptOpened()             { c.bump(&c.opened) }
func (c *spyCoordinator) PromptClosed()             { c.bump(&c.closed) }
func (c *spyCoordinator) FeedbackShown()            { c.bump(&c.shown) }
func (c *spyCoordinator) FeedbackCleared()          { c.bump(&c.cleared) }
func (c *spyCoordinator) Refresh(_ context.Context) { c.bump(&c.refreshs) }

func (c *spyCoordinator) bump(field *int) {
	c.mu.Lock()
	*field++
	c.mu.Unlock()
}

func (c *spyCoordinator) get(field *int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return *field
}

func reviewable() *domain.Commitment {
	return &domain.Commitment{HasCommitment: true, CheckinID: 7, Text: "ship it", HoursSince: 9}
}

func TestNewSession_RejectsNonReviewable(t *testing.T) {
	shipped := true
	tests := []struct {
		name string
		c    domain.Commitment
	}{
		{name: "no commitment", c: domain.Commitment{}},
		{name: "already reviewed", c: domain.Commitment{HasCommitment: true, CheckinID: 7, Shipped: &shipped}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			coord := &spyCoordinator{}
			_, err := NewSession(&tt.c, &fakeReviewer{}, coord)
			if !errors.Is(err, services.ErrNotReviewable) {
				t.Fatalf("NewSession() error = %v, want ErrNotReviewable", err)
			}
			if coord.get(&coord.opened) != 0 {
				t.Fatal("coordinator saw a prompt for a non-reviewable commitment")
			}
		})
	}
}

func TestSubmit_ValidationNeverReachesNetwork(t *testing.T) {
	api := &fakeReviewer{feedback: "ok"}
	coord := &spyCoordinator{}
	s, err := NewSession(reviewable(), api, coord)
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}

	if _, err := s.Submit(context.Background()); !errors.Is(err, services.ErrShippedNotChosen) {
		t.Fatalf("Submit() error = %v, want ErrShippedNotChosen", err)
	}

	if err := s.Choose(false); err != nil {
		t.Fatalf("Choose() error = %v", err)
	}
	if _, err := s.Submit(context.Background()); !errors.Is(err, services.ErrExcuseRequired) {
		t.Fatalf("Submit() error = %v, want ErrExcuseRequired", err)
	}

	if api.networkCalls() != 0 {
		t.Fatalf("network calls = %d, want 0 for invalid submissions", api.networkCalls())
	}
	if coord.get(&coord.shown) != 0 {
		t.Fatal("feedback guard set without a successful submit")
	}
}

func TestSubmit_ShippedSuccess(t *testing.T) {
	api := &fakeReviewer{feedback: "Good. Same again tomorrow."}
	coord := &spyCoordinator{}
	s, _ := NewSession(reviewable(), api, coord)

	if err := s.Choose(true); err != nil {
		t.Fatalf("Choose() error = %v", err)
	}
	fb, err := s.Submit(context.Background())
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if fb.Feedback != "Good. Same again tomorrow." {
		t.Fatalf("feedback = %q", fb.Feedback)
	}
	if s.Feedback() != fb.Feedback {
		t.Fatal("session did not retain feedback")
	}
	if api.lastID != 7 {
		t.Fatalf("reviewed checkin %d, want 7", api.lastID)
	}

	if coord.get(&coord.shown) != 1 {
		t.Fatalf("FeedbackShown calls = %d, want 1", coord.get(&coord.shown))
	}
	if coord.get(&coord.refreshs) != 1 {
		t.Fatalf("Refresh calls = %d, want 1", coord.get(&coord.refreshs))
	}

	delay, ok := s.AutoDismissAfter()
	if !ok || delay != 5*time.Second {
		t.Fatalf("AutoDismissAfter() = %v, %v; want 5s, true", delay, ok)
	}
}

func TestSubmit_FailedReviewDoesNotAutoDismiss(t *testing.T) {
	api := &fakeReviewer{feedback: "Excuses noted."}
	s, _ := NewSession(reviewable(), api, &spyCoordinator{})

	if err := s.Choose(false); err != nil {
		t.Fatalf("Choose() error = %v", err)
	}
	if err := s.SetExcuse("prod incident ate the day"); err != nil {
		t.Fatalf("SetExcuse() error = %v", err)
	}
	if _, err := s.Submit(context.Background()); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	if _, ok := s.AutoDismissAfter(); ok {
		t.Fatal("failed review must not auto-dismiss")
	}
}

func TestSubmit_SecondSubmitRejected(t *testing.T) {
	api := &fakeReviewer{feedback: "ok"}
	s, _ := NewSession(reviewable(), api, &spyCoordinator{})

	_ = s.Choose(true)
	if _, err := s.Submit(context.Background()); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if _, err := s.Submit(context.Background()); !errors.Is(err, ErrAlreadySubmitted) {
		t.Fatalf("second Submit() error = %v, want ErrAlreadySubmitted", err)
	}
	if api.networkCalls() != 1 {
		t.Fatalf("network calls = %d, want 1", api.networkCalls())
	}
}

func TestSubmit_TransportErrorLeavesSessionEditable(t *testing.T) {
	api := &fakeReviewer{err: errors.New("server error")}
	coord := &spyCoordinator{}
	s, _ := NewSession(reviewable(), api, coord)

	_ = s.Choose(true)
	if _, err := s.Submit(context.Background()); err == nil {
		t.Fatal("Submit() error = nil, want transport error")
	}
	if s.Submitted() {
		t.Fatal("session marked submitted after a failed write")
	}

	// Retry succeeds once the backend recovers.
	api.mu.Lock()
	api.err = nil
	api.feedback = "ok"
	api.mu.Unlock()
	if _, err := s.Submit(context.Background()); err != nil {
		t.Fatalf("retry Submit() error = %v", err)
	}
}

func TestClose_ClearsGuards(t *testing.T) {
	api := &fakeReviewer{feedback: "ok"}
	coord := &spyCoordinator{}
	s, _ := NewSession(reviewable(), api, coord)

	_ = s.Choose(true)
	if _, err := s.Submit(context.Background()); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	s.Close()
	s.Close() // idempotent

	if coord.get(&coord.closed) != 1 {
		t.Fatalf("PromptClosed calls = %d, want 1", coord.get(&coord.closed))
	}
	if coord.get(&coord.cleared) != 1 {
		t.Fatalf("FeedbackCleared calls = %d, want 1", coord.get(&coord.cleared))
	}

	if err := s.Choose(true); !errors.Is(err, ErrSessionClosed) {
		t.Fatalf("Choose() after Close error = %v, want ErrSessionClosed", err)
	}
}

func TestClose_WithoutSubmitOnlyClosesPrompt(t *testing.T) {
	coord := &spyCoordinator{}
	s, _ := NewSession(reviewable(), &fakeReviewer{}, coord)

	s.Close()

	if coord.get(&coord.closed) != 1 {
		t.Fatalf("PromptClosed calls = %d, want 1", coord.get(&coord.closed))
	}
	if coord.get(&coord.cleared) != 0 {
		t.Fatal("FeedbackCleared fired without feedback on screen")
	}
}
