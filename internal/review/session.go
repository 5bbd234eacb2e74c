// Package review models the transient review prompt: the shipped/failed
// choice and the excuse text live only while the prompt is open, the review
// write is validated before any network call, and the server's feedback
// text is held for display after a successful submit.
package review

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/avelis/go-accountability-sync/internal/domain"
	"github.com/avelis/go-accountability-sync/internal/services"
)

// autoDismissDelay is how long a shipped review's feedback stays on screen
// before the session may close itself. Failed reviews dismiss manually.
const autoDismissDelay = 5 * time.Second

var (
	// ErrSessionClosed is returned by mutations after Close.
	ErrSessionClosed = errors.New("review session is closed")

	// ErrAlreadySubmitted is returned by a second Submit. A commitment is
	// reviewed once.
	ErrAlreadySubmitted = errors.New("review already submitted")
)

// Reviewer submits the review write. Implemented by
// *services.CommitmentService.
type Reviewer interface {
	Review(ctx context.Context, checkinID int64, shipped *bool, excuse string) (*domain.ReviewFeedback, error)
}

// Coordinator is the prompt guard the session reports to. Implemented by
// *poller.Poller.
type Coordinator interface {
	PromptOpened()
	PromptClosed()
	FeedbackShown()
	FeedbackCleared()
	Refresh(ctx context.Context)
}

// Session is one open review prompt for one commitment.
type Session struct {
	checkinID int64
	svc       Reviewer
	coord     Coordinator

	mu        sync.Mutex
	shipped   *bool
	excuse    string
	feedback  string
	submitted bool
	closed    bool
}

// NewSession opens a review session for the given commitment. The
// commitment must be reviewable: it exists and has no recorded outcome yet.
// The coordinator is told the prompt is open.
func NewSession(c *domain.Commitment, svc Reviewer, coord Coordinator) (*Session, error) {
	if !c.Reviewable() {
		return nil, services.ErrNotReviewable
	}
	coord.PromptOpened()
	return &Session{checkinID: c.CheckinID, svc: svc, coord: coord}, nil
}

// Choose records the shipped/failed answer. It may be changed any number of
// times before Submit.
func (s *Session) Choose(shipped bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	if s.submitted {
		return ErrAlreadySubmitted
	}
	v := shipped
	s.shipped = &v
	return nil
}

// SetExcuse records the excuse text typed so far.
func (s *Session) SetExcuse(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	if s.submitted {
		return ErrAlreadySubmitted
	}
	s.excuse = text
	return nil
}

// Submit sends the review. Validation (an answer must be chosen; a failed
// review needs a non-empty excuse) happens in the service layer before the
// network is touched, so an invalid submit leaves the session open and
// editable. On success the server feedback is retained and the coordinator
// is refreshed so the terminal state is observed immediately.
func (s *Session) Submit(ctx context.Context) (*domain.ReviewFeedback, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrSessionClosed
	}
	if s.submitted {
		s.mu.Unlock()
		return nil, ErrAlreadySubmitted
	}
	shipped, excuse := s.shipped, s.excuse
	s.mu.Unlock()

	fb, err := s.svc.Review(ctx, s.checkinID, shipped, excuse)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.submitted = true
	s.feedback = fb.Feedback
	s.mu.Unlock()

	s.coord.FeedbackShown()
	s.coord.Refresh(ctx)
	return fb, nil
}

// Feedback returns the server's feedback text, empty until a successful
// Submit.
func (s *Session) Feedback() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.feedback
}

// Submitted reports whether the review write succeeded.
func (s *Session) Submitted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submitted
}

// AutoDismissAfter returns the auto-dismiss delay and whether it applies.
// Only a submitted shipped review dismisses itself; a failed review's
// feedback waits for the user.
func (s *Session) AutoDismissAfter() (time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.submitted && s.shipped != nil && *s.shipped {
		return autoDismissDelay, true
	}
	return 0, false
}

// Close dismisses the prompt and, if feedback was showing, clears the
// feedback guard so future review windows can prompt again. Idempotent.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	submitted := s.submitted
	s.mu.Unlock()

	if submitted {
		s.coord.FeedbackCleared()
	}
	s.coord.PromptClosed()
}
