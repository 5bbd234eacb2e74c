// Package services – DecisionService (life decisions).
package services

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/avelis/go-accountability-sync/internal/domain"
	"github.com/avelis/go-accountability-sync/internal/utils"
)

// DecisionInput is the payload for recording a life decision.
type DecisionInput struct {
	Question string `json:"question"`
	Context  string `json:"context,omitempty"`
}

// DecisionService provides the life-decision endpoint surface.
type DecisionService struct {
	API Doer
}

// NewDecisionService constructs a DecisionService.
func NewDecisionService(api Doer) *DecisionService {
	return &DecisionService{API: api}
}

// Create records a decision for backend analysis. The question is required.
func (s *DecisionService) Create(ctx context.Context, user string, in DecisionInput) (*domain.LifeDecision, error) {
	if strings.TrimSpace(in.Question) == "" {
		return nil, ErrEmptyQuestion
	}
	var d domain.LifeDecision
	if err := s.API.Post(ctx, fmt.Sprintf("/life-decisions/%s", user), in, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// List returns recent decisions, newest first, capped at limit. A
// non-positive limit falls back to the default page size.
func (s *DecisionService) List(ctx context.Context, user string, limit int) ([]domain.LifeDecision, error) {
	q := url.Values{"limit": {strconv.Itoa(utils.ClampLimit(limit, 20, maxListLimit))}}
	var out []domain.LifeDecision
	if err := s.API.Get(ctx, fmt.Sprintf("/life-decisions/%s", user), q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Detail fetches one decision with its analysis.
func (s *DecisionService) Detail(ctx context.Context, user string, decisionID int64) (*domain.LifeDecision, error) {
	var d domain.LifeDecision
	if err := s.API.Get(ctx, fmt.Sprintf("/life-decisions/%s/%d", user, decisionID), nil, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// Reanalyze asks the backend to rerun its analysis of a decision.
func (s *DecisionService) Reanalyze(ctx context.Context, user string, decisionID int64) (*domain.LifeDecision, error) {
	var d domain.LifeDecision
	if err := s.API.Post(ctx, fmt.Sprintf("/life-decisions/%s/%d/reanalyze", user, decisionID), nil, &d); err != nil {
		return nil, err
	}
	return &d, nil
}
