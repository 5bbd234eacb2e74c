// Package services – CheckinService
//
// A check-in establishes the day's Commitment. The quick-add path fills in
// the defaults the dashboard's one-line commit box uses.
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

// Quick-add defaults for a commitment entered without the full check-in form.
const (
	quickAddEnergyLevel  = 7
	quickAddAvoidingWhat = "Quick commitment - no details"
	quickAddMood         = "focused"
)

// CheckinInput is the payload for creating a check-in.
type CheckinInput struct {
	EnergyLevel  int    `json:"energy_level"`
	AvoidingWhat string `json:"avoiding_what"`
	Commitment   string `json:"commitment"`
	Mood         string `json:"mood,omitempty"`
}

// CheckinService provides the check-in endpoint surface.
type CheckinService struct {
	API Doer
}

// NewCheckinService constructs a CheckinService.
func NewCheckinService(api Doer) *CheckinService {
	return &CheckinService{API: api}
}

// Create submits a full check-in, establishing today's commitment. The
// commitment text must be non-empty and the energy level within 1–10; both
// are rejected before any network call.
func (s *CheckinService) Create(ctx context.Context, user string, in CheckinInput) error {
	if strings.TrimSpace(in.Commitment) == "" {
		return ErrEmptyCommitment
	}
	if in.EnergyLevel < 1 || in.EnergyLevel > 10 {
		return ErrInvalidEnergyLevel
	}
	return s.API.Post(ctx, fmt.Sprintf("/checkins/%s", user), in, nil)
}

// QuickCreate submits a commitment with the quick-add defaults: only the
// statement itself is user-provided.
func (s *CheckinService) QuickCreate(ctx context.Context, user, commitment string) error {
	return s.Create(ctx, user, CheckinInput{
		EnergyLevel:  quickAddEnergyLevel,
		AvoidingWhat: quickAddAvoidingWhat,
		Commitment:   commitment,
		Mood:         quickAddMood,
	})
}

// List returns the most recent check-ins, newest first. A non-positive
// limit falls back to the default page size.
func (s *CheckinService) List(ctx context.Context, user string, limit int) ([]domain.Checkin, error) {
	q := url.Values{"limit": {strconv.Itoa(utils.ClampLimit(limit, defaultListLimit, maxListLimit))}}
	var out []domain.Checkin
	if err := s.API.Get(ctx, fmt.Sprintf("/checkins/%s", user), q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateEvening records the evening outcome directly on a check-in. It is
// the legacy write path kept alongside Review; the same excuse rule applies.
func (s *CheckinService) UpdateEvening(ctx context.Context, checkinID int64, shipped bool, excuse string) error {
	excuse = strings.TrimSpace(excuse)
	if !shipped && excuse == "" {
		return ErrExcuseRequired
	}
	body := reviewRequest{Shipped: shipped}
	if !shipped {
		body.Excuse = &excuse
	}
	return s.API.Patch(ctx, fmt.Sprintf("/checkins/%d/evening", checkinID), body, nil)
}
