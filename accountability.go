// Package accountability is the client-side data synchronization layer for
// the personal accountability dashboard. It wires the cache, the classified
// transport client, the typed endpoint services, and the commitment poller
// behind a single Client so host applications configure one thing.
package accountability

import (
	"context"
	"os"

	"github.com/rs/zerolog"

	"github.com/avelis/go-accountability-sync/internal/cache"
	"github.com/avelis/go-accountability-sync/internal/config"
	"github.com/avelis/go-accountability-sync/internal/domain"
	"github.com/avelis/go-accountability-sync/internal/notify"
	"github.com/avelis/go-accountability-sync/internal/observability"
	"github.com/avelis/go-accountability-sync/internal/poller"
	"github.com/avelis/go-accountability-sync/internal/review"
	"github.com/avelis/go-accountability-sync/internal/services"
	"github.com/avelis/go-accountability-sync/internal/sysutil"
	"github.com/avelis/go-accountability-sync/internal/transport"
)

// Version is reported as the service version on exported traces.
const Version = "0.1.0"

// Aliases so host applications can name the core types without reaching
// into internal packages.
type (
	Commitment       = domain.Commitment
	Stats            = domain.Stats
	DashboardSummary = domain.DashboardSummary
	ReviewFeedback   = domain.ReviewFeedback
	State            = domain.State
	Snapshot         = poller.Snapshot
	ReviewSession    = review.Session
	Notifier         = notify.Notifier
	TokenSource      = transport.TokenSource
	SessionHandler   = transport.SessionHandler
)

// Lifecycle states, re-exported for callers of Poll snapshots.
const (
	StateNoCommitment  = domain.StateNoCommitment
	StatePending       = domain.StatePending
	StatePendingReview = domain.StatePendingReview
	StateShipped       = domain.StateShipped
	StateFailed        = domain.StateFailed
)

// Deps are the host-provided collaborators. Tokens is required when the
// backend expects authentication; everything else has a working default.
type Deps struct {
	// Tokens supplies the bearer token for outbound requests. May be nil
	// for unauthenticated backends.
	Tokens TokenSource

	// Session is told when the backend rejects the credentials; the host
	// clears its stored identity and routes to sign-in. May be nil.
	Session SessionHandler

	// Notifier receives the one user-facing notification per classified
	// failure. Defaults to a zerolog-backed notifier.
	Notifier Notifier

	// OnPrompt fires, at most once per eligible window, when a commitment
	// is due for review.
	OnPrompt func(Commitment)

	// Logger overrides the default stderr logger.
	Logger *zerolog.Logger
}

// Client is the assembled synchronization layer. The typed services share
// one transport client and one cache, so poller refreshes and user actions
// observe each other's invalidations.
type Client struct {
	Commitments *services.CommitmentService
	Checkins    *services.CheckinService
	Goals       *services.GoalService
	Decisions   *services.DecisionService
	Dashboard   *services.DashboardService
	Users       *services.UserService

	api    *transport.Client
	poller *poller.Poller
	log    zerolog.Logger

	shutdownTracing func(context.Context) error
}

// New loads configuration from the environment (and .env) and assembles a
// Client for the given user.
func New(ctx context.Context, user string, deps Deps) (*Client, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return NewWithConfig(ctx, cfg, user, deps)
}

// NewWithConfig assembles a Client from an explicit configuration.
func NewWithConfig(ctx context.Context, cfg config.Config, user string, deps Deps) (*Client, error) {
	sysutil.SetLogLevel(cfg.LogLevel)

	var logger zerolog.Logger
	if deps.Logger != nil {
		logger = *deps.Logger
	} else {
		out := zerolog.New(os.Stderr)
		if cfg.LogPretty {
			out = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
		}
		logger = out.With().Timestamp().Str("component", "accountability-sync").Logger()
	}

	shutdown, err := observability.SetupTracing(ctx, cfg.OTEL, Version)
	if err != nil {
		return nil, err
	}

	notifier := deps.Notifier
	if notifier == nil {
		notifier = notify.NewLogNotifier(logger)
	}

	store := cache.New(cfg.CacheTTL)
	api := transport.New(transport.Options{
		BaseURL:     cfg.APIBaseURL,
		Timeout:     cfg.RequestTimeout,
		RetryDelay:  cfg.RetryDelay,
		GeneralTTL:  cfg.CacheTTL,
		VolatileTTL: cfg.VolatileCacheTTL,
		RPS:         cfg.OutboundRPS,
		Burst:       cfg.OutboundBurst,
		Logger:      logger,
	}, store, notifier, deps.Tokens, deps.Session)

	commitments := services.NewCommitmentService(api)

	p := poller.New(poller.Options{
		Source:               commitments,
		User:                 user,
		Interval:             cfg.PollInterval,
		ReviewThresholdHours: cfg.ReviewThreshold.Hours(),
		StatsWindowDays:      cfg.StatsWindowDays,
		OnPrompt:             deps.OnPrompt,
		Logger:               logger,
	})

	return &Client{
		Commitments:     commitments,
		Checkins:        services.NewCheckinService(api),
		Goals:           services.NewGoalService(api),
		Decisions:       services.NewDecisionService(api),
		Dashboard:       services.NewDashboardService(api),
		Users:           services.NewUserService(api),
		api:             api,
		poller:          p,
		log:             logger,
		shutdownTracing: shutdown,
	}, nil
}

// StartPolling begins the review-prompt refresh loop.
func (c *Client) StartPolling(ctx context.Context) { c.poller.Start(ctx) }

// StopPolling halts the refresh loop and waits for it to exit.
func (c *Client) StopPolling() { c.poller.Stop() }

// Poll returns the poller's last observed commitment, stats, and state.
func (c *Client) Poll() Snapshot { return c.poller.Snapshot() }

// OpenReview starts a review session for the given commitment. The poller's
// prompt guard is engaged for the session's lifetime, so the refresh loop
// will not fire a second prompt while the user is answering.
func (c *Client) OpenReview(commitment *Commitment) (*ReviewSession, error) {
	return review.NewSession(commitment, c.Commitments, c.poller)
}

// SignOut drops every cached response. The host clears its own stored
// identity separately.
func (c *Client) SignOut() {
	c.api.ClearCache()
	c.log.Info().Msg("cache cleared on sign-out")
}

// Close stops polling and flushes any pending trace spans.
func (c *Client) Close(ctx context.Context) error {
	c.poller.Stop()
	return c.shutdownTracing(ctx)
}
