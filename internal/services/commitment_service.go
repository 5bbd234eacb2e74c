// Package services – CommitmentService
//
// This file implements the CommitmentService, which covers today's
// commitment, the review write, and the rolling-window statistics. Review
// submissions are validated locally (explicit answer, mandatory excuse on
// failure) so an invalid review never reaches the network.
package services

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/avelis/go-accountability-sync/internal/domain"
)

// CommitmentService provides the commitment-related endpoint surface.
type CommitmentService struct {
	// API is the transport client all calls go through.
	API Doer
}

// NewCommitmentService constructs a CommitmentService.
func NewCommitmentService(api Doer) *CommitmentService {
	return &CommitmentService{API: api}
}

// Today fetches the commitment for the server's "today". The server owns
// the day boundary; a response with HasCommitment=false means the day has
// rolled over (or no check-in happened yet).
func (s *CommitmentService) Today(ctx context.Context, user string) (*domain.Commitment, error) {
	var c domain.Commitment
	if err := s.API.Get(ctx, fmt.Sprintf("/commitments/%s/today", user), nil, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Pending fetches commitments still awaiting review.
func (s *CommitmentService) Pending(ctx context.Context, user string) (*domain.Commitment, error) {
	var c domain.Commitment
	if err := s.API.Get(ctx, fmt.Sprintf("/commitments/%s/pending", user), nil, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Stats fetches the rolling-window statistics aggregate. days selects the
// window length (the dashboard uses 30).
func (s *CommitmentService) Stats(ctx context.Context, user string, days int) (*domain.Stats, error) {
	q := url.Values{"days": {strconv.Itoa(days)}}
	var st domain.Stats
	if err := s.API.Get(ctx, fmt.Sprintf("/commitments/%s/stats", user), q, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// ReminderNeeded asks whether the server wants a commitment nudge shown.
func (s *CommitmentService) ReminderNeeded(ctx context.Context, user string) (*domain.Reminder, error) {
	var r domain.Reminder
	if err := s.API.Get(ctx, fmt.Sprintf("/commitments/%s/reminder-needed", user), nil, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// reviewRequest is the review write payload. Excuse is null when shipped:
// the server must not record an excuse for a success.
type reviewRequest struct {
	Shipped bool    `json:"shipped"`
	Excuse  *string `json:"excuse"`
}

// Review submits the shipped/not-shipped outcome for a commitment.
//
// Validation, applied before any network call:
//   - shipped must be non-nil: the answer is an explicit choice, never a
//     default (ErrShippedNotChosen).
//   - when shipped is false, excuse must be non-empty (ErrExcuseRequired).
//
// On success the server's feedback text is returned. The write invalidates
// the commitment (and aggregate) cache prefixes via the transport client,
// so the next poll observes the terminal state.
func (s *CommitmentService) Review(ctx context.Context, checkinID int64, shipped *bool, excuse string) (*domain.ReviewFeedback, error) {
	if shipped == nil {
		return nil, ErrShippedNotChosen
	}
	excuse = strings.TrimSpace(excuse)
	if !*shipped && excuse == "" {
		return nil, ErrExcuseRequired
	}

	req := reviewRequest{Shipped: *shipped}
	if !*shipped {
		req.Excuse = &excuse
	}

	var fb domain.ReviewFeedback
	if err := s.API.Post(ctx, fmt.Sprintf("/commitments/%d/review", checkinID), req, &fb); err != nil {
		return nil, err
	}
	return &fb, nil
}
