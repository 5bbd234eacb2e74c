// Package poller drives the review prompt. It refreshes the commitment and
// the stats aggregate on start and on a fixed interval, derives the
// lifecycle state from the server's response, and fires the prompt callback
// at most once per eligible window: never while a prompt is already open,
// and never while submitted feedback is still on screen.
package poller

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/avelis/go-accountability-sync/internal/domain"
)

// CommitmentSource supplies the views the poller refreshes. Implemented by
// *services.CommitmentService.
type CommitmentSource interface {
	Today(ctx context.Context, user string) (*domain.Commitment, error)
	Stats(ctx context.Context, user string, days int) (*domain.Stats, error)
}

// Options configures a Poller.
type Options struct {
	// Source supplies commitment and stats reads.
	Source CommitmentSource

	// User is the GitHub username the poller tracks.
	User string

	// Interval between refreshes. Defaults to 5 minutes.
	Interval time.Duration

	// ReviewThresholdHours is how long a pending commitment ages before it
	// needs review. Defaults to 8.
	ReviewThresholdHours float64

	// StatsWindowDays selects the stats window. Defaults to 30.
	StatsWindowDays int

	// OnPrompt is invoked, outside the poller's lock, when a review prompt
	// should open. At most one invocation per eligible window.
	OnPrompt func(domain.Commitment)

	Logger zerolog.Logger
}

// Snapshot is the poller's last observed state, returned by value so
// callers never share the poller's internals.
type Snapshot struct {
	Commitment *domain.Commitment
	Stats      *domain.Stats
	State      domain.State
	LastErr    error
}

// Poller owns the refresh goroutine and the prompt guard state.
type Poller struct {
	src       CommitmentSource
	user      string
	interval  time.Duration
	threshold float64
	statsDays int
	onPrompt  func(domain.Commitment)
	log       zerolog.Logger

	mu              sync.Mutex
	commitment      *domain.Commitment
	stats           *domain.Stats
	state           domain.State
	lastErr         error
	promptOpen      bool
	feedbackPending bool

	cancel context.CancelFunc
	done   chan struct{}
}

// New builds a Poller. It does not start polling; call Start.
func New(opts Options) *Poller {
	if opts.Interval <= 0 {
		opts.Interval = 5 * time.Minute
	}
	if opts.ReviewThresholdHours <= 0 {
		opts.ReviewThresholdHours = 8
	}
	if opts.StatsWindowDays <= 0 {
		opts.StatsWindowDays = 30
	}
	return &Poller{
		src:       opts.Source,
		user:      opts.User,
		interval:  opts.Interval,
		threshold: opts.ReviewThresholdHours,
		statsDays: opts.StatsWindowDays,
		onPrompt:  opts.OnPrompt,
		log:       opts.Logger,
		state:     domain.StateNoCommitment,
	}
}

// Start refreshes once immediately, then on every interval tick until Stop
// is called or ctx is cancelled. Calling Start on a running poller is a
// no-op.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	if p.cancel != nil {
		p.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	done := p.done
	p.mu.Unlock()

	go func() {
		defer close(done)
		p.Refresh(ctx)

		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				p.Refresh(ctx)
			}
		}
	}()
}

// Stop cancels the refresh loop and waits for the goroutine to exit. Safe
// to call more than once.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Refresh fetches the commitment and stats once and re-derives the state.
// It is also called directly after a review submission so the prompt state
// reflects the terminal outcome without waiting for the next tick.
func (p *Poller) Refresh(ctx context.Context) {
	commitment, err := p.src.Today(ctx, p.user)
	if err != nil {
		p.mu.Lock()
		p.lastErr = err
		p.mu.Unlock()
		p.log.Warn().Err(err).Msg("commitment refresh failed")
		return
	}

	stats, err := p.src.Stats(ctx, p.user, p.statsDays)
	if err != nil {
		// Stats are decorative; keep the commitment update.
		p.log.Warn().Err(err).Msg("stats refresh failed")
	}

	state := domain.StateOf(commitment, p.threshold)

	p.mu.Lock()
	p.commitment = commitment
	if stats != nil {
		p.stats = stats
	}
	p.state = state
	p.lastErr = nil

	fire := state == domain.StatePendingReview && !p.promptOpen && !p.feedbackPending && p.onPrompt != nil
	if fire {
		// Marked open before the callback runs so a concurrent or
		// immediately following refresh cannot fire a second prompt.
		p.promptOpen = true
	}
	snapshot := *commitment
	p.mu.Unlock()

	if fire {
		p.log.Info().
			Int64("checkin_id", snapshot.CheckinID).
			Float64("hours_since", snapshot.HoursSince).
			Msg("review prompt due")
		p.onPrompt(snapshot)
	}
}

// Snapshot returns the last observed commitment, stats, and derived state.
func (p *Poller) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Snapshot{Commitment: p.commitment, Stats: p.stats, State: p.state, LastErr: p.lastErr}
}

// PromptOpened records that a review prompt is on screen, suppressing
// further prompts. Used when the prompt is opened manually rather than by
// the poller.
func (p *Poller) PromptOpened() {
	p.mu.Lock()
	p.promptOpen = true
	p.mu.Unlock()
}

// PromptClosed records that the prompt was dismissed.
func (p *Poller) PromptClosed() {
	p.mu.Lock()
	p.promptOpen = false
	p.mu.Unlock()
}

// FeedbackShown records that review feedback is on screen; no new prompt
// fires until FeedbackCleared.
func (p *Poller) FeedbackShown() {
	p.mu.Lock()
	p.feedbackPending = true
	p.mu.Unlock()
}

// FeedbackCleared re-arms the prompt after the feedback panel is dismissed.
func (p *Poller) FeedbackCleared() {
	p.mu.Lock()
	p.feedbackPending = false
	p.mu.Unlock()
}
