// Package services – GoalService
//
// Goals follow the same cache-invalidation contract as commitments: every
// successful write purges the goal (and dashboard aggregate) cache prefixes
// through the transport client before returning.
package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/avelis/go-accountability-sync/internal/domain"
)

// GoalInput is the payload for creating or updating a goal.
type GoalInput struct {
	Title    string `json:"title,omitempty"`
	GoalType string `json:"goal_type,omitempty"`
	Status   string `json:"status,omitempty"`
	TargetAt string `json:"target_at,omitempty"`
}

// GoalListFilter narrows the goal list by status and/or type. Zero values
// mean no filtering.
type GoalListFilter struct {
	Status   string
	GoalType string
}

// GoalService provides the goal endpoint surface.
type GoalService struct {
	API Doer
}

// NewGoalService constructs a GoalService.
func NewGoalService(api Doer) *GoalService {
	return &GoalService{API: api}
}

// Create registers a new goal. The title is required.
func (s *GoalService) Create(ctx context.Context, user string, in GoalInput) (*domain.Goal, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, ErrEmptyTitle
	}
	var g domain.Goal
	if err := s.API.Post(ctx, fmt.Sprintf("/goals/%s", user), in, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

// List returns the user's goals, optionally filtered.
func (s *GoalService) List(ctx context.Context, user string, filter GoalListFilter) ([]domain.Goal, error) {
	q := url.Values{}
	if filter.Status != "" {
		q.Set("status", filter.Status)
	}
	if filter.GoalType != "" {
		q.Set("goal_type", filter.GoalType)
	}
	var out []domain.Goal
	if err := s.API.Get(ctx, fmt.Sprintf("/goals/%s", user), q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Detail fetches one goal with its tasks and progress log.
func (s *GoalService) Detail(ctx context.Context, user string, goalID int64) (*domain.Goal, error) {
	var g domain.Goal
	if err := s.API.Get(ctx, fmt.Sprintf("/goals/%s/%d", user, goalID), nil, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

// Update patches goal fields.
func (s *GoalService) Update(ctx context.Context, user string, goalID int64, in GoalInput) (*domain.Goal, error) {
	var g domain.Goal
	if err := s.API.Patch(ctx, fmt.Sprintf("/goals/%s/%d", user, goalID), in, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

// LogProgress appends a progress note to a goal.
func (s *GoalService) LogProgress(ctx context.Context, user string, goalID int64, progress domain.GoalProgress) error {
	return s.API.Post(ctx, fmt.Sprintf("/goals/%s/%d/progress", user, goalID), progress, nil)
}

// UpdateTaskStatus moves a goal task between states ("pending", "done", ...).
func (s *GoalService) UpdateTaskStatus(ctx context.Context, user string, goalID, taskID int64, status string) error {
	body := map[string]string{"status": status}
	return s.API.Patch(ctx, fmt.Sprintf("/goals/%s/%d/tasks/%d", user, goalID, taskID), body, nil)
}

// Dashboard fetches the goal-centric aggregate view. It is a volatile
// aggregate endpoint, so it is cached with the short TTL class.
func (s *GoalService) Dashboard(ctx context.Context, user string) (*domain.DashboardSummary, error) {
	var d domain.DashboardSummary
	if err := s.API.Get(ctx, fmt.Sprintf("/goals/%s/dashboard", user), nil, &d); err != nil {
		return nil, err
	}
	return &d, nil
}
