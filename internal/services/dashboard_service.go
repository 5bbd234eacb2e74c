// Package services – DashboardService, advice history, chat, and the user
// account surface. These are thin wrappers; everything interesting (cache,
// classification, retry) happens in the transport client.
package services

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/avelis/go-accountability-sync/internal/domain"
	"github.com/avelis/go-accountability-sync/internal/utils"
)

// DashboardService provides the aggregate, advice, and chat surfaces.
type DashboardService struct {
	API Doer
}

// NewDashboardService constructs a DashboardService.
func NewDashboardService(api Doer) *DashboardService {
	return &DashboardService{API: api}
}

// Summary fetches the dashboard aggregate. Volatile endpoint, short TTL.
func (s *DashboardService) Summary(ctx context.Context, user string) (*domain.DashboardSummary, error) {
	var d domain.DashboardSummary
	if err := s.API.Get(ctx, fmt.Sprintf("/dashboard/%s", user), nil, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// Advice returns the multi-agent advice history, capped at limit. A
// non-positive limit falls back to the default page size.
func (s *DashboardService) Advice(ctx context.Context, user string, limit int) ([]domain.Advice, error) {
	q := url.Values{"limit": {strconv.Itoa(utils.ClampLimit(limit, 50, maxListLimit))}}
	var out []domain.Advice
	if err := s.API.Get(ctx, fmt.Sprintf("/advice/%s", user), q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// chatRequest is the chat write payload; context carries optional
// dashboard state the agents may use.
type chatRequest struct {
	Message string      `json:"message"`
	Context interface{} `json:"context,omitempty"`
}

// chatResponse is the backend's reply envelope.
type chatResponse struct {
	Response string `json:"response"`
}

// Chat sends a message to the advice agents and returns their reply. Chat
// writes invalidate the advice history cache so the next history read is
// fresh.
func (s *DashboardService) Chat(ctx context.Context, user, message string, extra interface{}) (string, error) {
	var resp chatResponse
	if err := s.API.Post(ctx, fmt.Sprintf("/chat/%s", user), chatRequest{Message: message, Context: extra}, &resp); err != nil {
		return "", err
	}
	return resp.Response, nil
}

// UserService provides the account surface.
type UserService struct {
	API Doer
}

// NewUserService constructs a UserService.
func NewUserService(api Doer) *UserService {
	return &UserService{API: api}
}

// Create registers an account keyed by GitHub username.
func (s *UserService) Create(ctx context.Context, githubUsername, email string) (*domain.User, error) {
	body := map[string]string{"github_username": githubUsername}
	if email != "" {
		body["email"] = email
	}
	var u domain.User
	if err := s.API.Post(ctx, "/users", body, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Get fetches the account record.
func (s *UserService) Get(ctx context.Context, githubUsername string) (*domain.User, error) {
	var u domain.User
	if err := s.API.Get(ctx, fmt.Sprintf("/users/%s", githubUsername), nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// CompleteOnboarding marks onboarding as done.
func (s *UserService) CompleteOnboarding(ctx context.Context, githubUsername string) error {
	return s.API.Patch(ctx, fmt.Sprintf("/users/%s/complete-onboarding", githubUsername), nil, nil)
}
