// Client implementation: read-through cache, write invalidation, bearer
// injection, single bounded rate-limit retry, uniform classification, and
// exactly one notification per classified failure.

package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/avelis/go-accountability-sync/internal/cache"
	"github.com/avelis/go-accountability-sync/internal/notify"
)

// maxErrorDetailLen caps how much server-provided error text is carried into
// notifications and logs.
const maxErrorDetailLen = 512

// TokenSource supplies the bearer credential attached to outbound requests.
// The identity collaborator owns the credential's lifecycle; a missing token
// (ok == false) is not an error at this layer; the request is simply sent
// unauthenticated and may fail downstream.
type TokenSource interface {
	Token() (token string, ok bool)
}

// SessionHandler owns session teardown when the server answers 401: clearing
// identity state and redirecting to re-authentication. The client clears its
// own cache before invoking it.
type SessionHandler interface {
	SessionExpired()
}

// Options configures a Client.
type Options struct {
	// BaseURL is the root of the remote API, without a trailing slash.
	BaseURL string
	// Timeout bounds each request; expiry classifies as KindUnreachable.
	Timeout time.Duration
	// RetryDelay is the fixed pause before the single rate-limit retry.
	RetryDelay time.Duration
	// GeneralTTL and VolatileTTL are the cache TTL classes for reads.
	GeneralTTL  time.Duration
	VolatileTTL time.Duration
	// RPS and Burst shape the outbound token bucket. RPS <= 0 disables
	// client-side throttling.
	RPS   float64
	Burst int
	// Logger receives structured request logs.
	Logger zerolog.Logger
	// HTTPClient overrides the underlying *http.Client (tests).
	HTTPClient *http.Client
}

// Client is the single choke point for every request to the remote API.
// It owns the cache: no other component writes to the store directly.
//
// All methods are safe for concurrent use; the poller and user-initiated
// actions share one Client so cached and invalidated state stay consistent.
type Client struct {
	base     string
	http     *http.Client
	store    *cache.Store
	notifier notify.Notifier
	tokens   TokenSource
	session  SessionHandler
	limiter  *rate.Limiter
	tracer   trace.Tracer
	log      zerolog.Logger

	timeout     time.Duration
	retryDelay  time.Duration
	generalTTL  time.Duration
	volatileTTL time.Duration

	// sleep is the retry pause, a seam so tests don't wait out real delays.
	sleep func(ctx context.Context, d time.Duration) error
}

// New constructs a Client. store and notifier are required collaborators;
// tokens and session may be nil when the embedding app has no identity layer
// (requests then go out unauthenticated and 401 teardown is a no-op).
func New(opts Options, store *cache.Store, notifier notify.Notifier, tokens TokenSource, session SessionHandler) *Client {
	httpc := opts.HTTPClient
	if httpc == nil {
		httpc = &http.Client{}
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	retryDelay := opts.RetryDelay
	if retryDelay <= 0 {
		retryDelay = 2 * time.Second
	}
	generalTTL := opts.GeneralTTL
	if generalTTL <= 0 {
		generalTTL = 5 * time.Minute
	}
	volatileTTL := opts.VolatileTTL
	if volatileTTL <= 0 {
		volatileTTL = time.Minute
	}

	var limiter *rate.Limiter
	if opts.RPS > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RPS), burst)
	}

	return &Client{
		base:        strings.TrimRight(opts.BaseURL, "/"),
		http:        httpc,
		store:       store,
		notifier:    notifier,
		tokens:      tokens,
		session:     session,
		limiter:     limiter,
		tracer:      otel.Tracer("go-accountability-sync/transport"),
		log:         opts.Logger,
		timeout:     timeout,
		retryDelay:  retryDelay,
		generalTTL:  generalTTL,
		volatileTTL: volatileTTL,
		sleep:       sleepCtx,
	}
}

// Get issues a cached read. On a cache hit the remote API is not contacted
// at all; on a miss the response is decoded into out and cached with the
// TTL class of the endpoint.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out interface{}) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

// Post issues a create/command write. On success every cache prefix related
// to the mutated resource is invalidated before Post returns, so a read
// started afterwards observes fresh data.
func (c *Client) Post(ctx context.Context, path string, body, out interface{}) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

// Patch issues a partial-update write with the same invalidation contract
// as Post.
func (c *Client) Patch(ctx context.Context, path string, body, out interface{}) error {
	return c.do(ctx, http.MethodPatch, path, nil, body, out)
}

// Delete issues a delete write with the same invalidation contract as Post.
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}

// ClearCache drops every cached read. Invoked on sign-out alongside the
// identity collaborator's own teardown.
func (c *Client) ClearCache() {
	c.store.Clear()
}

// do runs one logical request: cache consult, at most two network attempts
// (the second only after a 429), classification, notification, cache fill
// or invalidation.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	desc := RequestDescriptor{
		Method:    method,
		Path:      strings.Trim(path, "/"),
		Query:     query.Encode(),
		RequestID: uuid.NewString(),
	}
	resource := resourceOf(path)
	isRead := method == http.MethodGet
	key := cacheKey(method, path, query)

	if isRead {
		if raw, ok := c.store.Get(key); ok {
			c.log.Debug().Str("key", key).Msg("cache hit")
			return decodeInto(raw.([]byte), out)
		}
	}

	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return &Error{Kind: KindUnknown, Message: "encode request body: " + err.Error(), Request: desc}
		}
	}

	ctx, span := c.tracer.Start(ctx, method+" /"+resource,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("url.path", desc.Path),
		),
	)
	defer span.End()

	start := time.Now()
	raw, terr := c.roundTrip(ctx, desc, payload)
	apiLatency.WithLabelValues(method, resource).Observe(time.Since(start).Seconds())

	if terr != nil {
		apiRequests.WithLabelValues(method, resource, terr.Kind.String()).Inc()
		span.SetStatus(codes.Error, terr.Kind.String())
		if terr.Status > 0 {
			span.SetAttributes(attribute.Int("http.response.status_code", terr.Status))
		}
		c.report(terr)
		return terr
	}

	apiRequests.WithLabelValues(method, resource, "ok").Inc()
	span.SetStatus(codes.Ok, "")

	if isRead {
		c.store.Set(key, raw, c.ttlFor(path))
	} else {
		// Purge before returning so a read issued after this write's
		// completion never observes its own stale data.
		for _, prefix := range prefixesFor(resource) {
			c.store.Invalidate(prefix)
		}
	}

	return decodeInto(raw, out)
}

// roundTrip performs the network attempts for one logical request: the
// original call plus, after a 429, exactly one retry following a fixed
// delay. A second 429 surfaces as KindRateLimited; there is no third attempt.
func (c *Client) roundTrip(ctx context.Context, desc RequestDescriptor, payload []byte) ([]byte, *Error) {
	for attempt := 0; ; attempt++ {
		raw, terr := c.send(ctx, desc, payload)
		if terr == nil {
			return raw, nil
		}
		if terr.Kind == KindRateLimited && attempt == 0 {
			c.log.Warn().Str("request", desc.String()).Msg("rate limited, retrying once")
			apiRetries.Inc()
			if err := c.sleep(ctx, c.retryDelay); err != nil {
				return nil, &Error{Kind: KindUnreachable, Message: "canceled during retry delay", Request: desc, Err: err}
			}
			continue
		}
		return nil, terr
	}
}

// send performs a single HTTP attempt and classifies its outcome.
func (c *Client) send(ctx context.Context, desc RequestDescriptor, payload []byte) ([]byte, *Error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &Error{Kind: KindUnreachable, Message: "canceled while throttled", Request: desc, Err: err}
		}
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	u := c.base + "/" + desc.Path
	if desc.Query != "" {
		u += "?" + desc.Query
	}

	var rdr io.Reader
	if payload != nil {
		rdr = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(reqCtx, desc.Method, u, rdr)
	if err != nil {
		return nil, &Error{Kind: KindUnknown, Message: err.Error(), Request: desc}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", desc.RequestID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if tok, ok := c.tokens.Token(); ok {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		// No response received: network failure or timeout.
		return nil, &Error{Kind: KindUnreachable, Request: desc, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Kind: KindUnreachable, Message: "reading response body", Request: desc, Err: err}
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return raw, nil
	}
	return nil, classify(desc, resp.StatusCode, raw)
}

// classify maps a non-2xx status to the failure taxonomy.
func classify(desc RequestDescriptor, status int, body []byte) *Error {
	e := &Error{Status: status, Request: desc, Message: serverDetail(body)}
	switch {
	case status == http.StatusUnauthorized:
		e.Kind = KindUnauthenticated
	case status == http.StatusForbidden:
		e.Kind = KindForbidden
	case status == http.StatusNotFound:
		e.Kind = KindNotFound
	case status == http.StatusTooManyRequests:
		e.Kind = KindRateLimited
	case status >= 500:
		e.Kind = KindServerError
	default:
		e.Kind = KindUnknown
	}
	return e
}

// report surfaces a classified failure exactly once: one structured log
// line, one notification. 401 additionally tears down local session state
// before the notification goes out.
func (c *Client) report(e *Error) {
	c.log.Error().
		Str("kind", e.Kind.String()).
		Int("status", e.Status).
		Str("request", e.Request.String()).
		Msg("request failed")

	if e.Kind == KindUnauthenticated {
		c.store.Clear()
		if c.session != nil {
			c.session.SessionExpired()
		}
	}

	if c.notifier == nil {
		return
	}
	switch e.Kind {
	case KindUnreachable:
		c.notifier.Notify(notify.SeverityError, "Network Error", "Please check your internet connection")
	case KindUnauthenticated:
		c.notifier.Notify(notify.SeverityError, "Session Expired", "Please sign in again")
	case KindForbidden:
		c.notifier.Notify(notify.SeverityError, "Access Denied", "You don't have permission for this action")
	case KindNotFound:
		c.notifier.Notify(notify.SeverityError, "Not Found", "The requested resource was not found")
	case KindRateLimited:
		c.notifier.Notify(notify.SeverityError, "Too Many Requests", "Please slow down and try again")
	case KindServerError:
		c.notifier.Notify(notify.SeverityError, "Server Error", "Something went wrong on our end. Please try again")
	default:
		detail := e.Message
		if detail == "" {
			detail = "An error occurred"
		}
		c.notifier.Notify(notify.SeverityError, "Error", detail)
	}
}

// serverDetail extracts the human-readable message from an error body. The
// backend wraps messages as {"detail": "..."}; anything else is carried as
// trimmed raw text.
func serverDetail(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var envelope struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Detail != "" {
		return truncate(envelope.Detail, maxErrorDetailLen)
	}
	return truncate(strings.TrimSpace(string(body)), maxErrorDetailLen)
}

// decodeInto unmarshals raw into out, tolerating callers that do not care
// about the response payload.
func decodeInto(raw []byte, out interface{}) error {
	if out == nil || len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, out)
}

// sleepCtx pauses for d or until ctx is done, whichever comes first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// truncate caps s at max bytes, appending an ellipsis when clipped.
func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max] + "…"
}
