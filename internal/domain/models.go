// Package domain defines the wire models exchanged with the remote
// accountability API and the pure lifecycle rules derived from them.
// These types carry no behavior beyond derivation; transport and caching
// concerns live elsewhere.
package domain

import "time"

// Commitment is the user's single stated daily deliverable, as returned by
// the "today's commitment" endpoint. The server owns the notion of "today";
// the client never computes day rollover itself.
//
// Fields:
//   - HasCommitment: whether a commitment exists for the server's "today".
//   - CheckinID: identifier of the check-in that established the commitment.
//   - Text: the free-form commitment statement.
//   - EnergyLevel: self-reported energy at check-in time (1–10).
//   - AvoidingWhat: what the user admitted to avoiding.
//   - CreatedAt / HoursSince: creation time and server-computed age in hours.
//   - Shipped: tri-state review outcome; nil while the review is pending.
//   - Excuse: present only when Shipped is false.
//   - NeedsReview / CanReview: server-side hints; the client recomputes both
//     from the data above (see lifecycle.go) rather than trusting them blindly.
type Commitment struct {
	HasCommitment bool       `json:"has_commitment"`
	CheckinID     int64      `json:"checkin_id,omitempty"`
	Text          string     `json:"commitment,omitempty"`
	EnergyLevel   int        `json:"energy_level,omitempty"`
	AvoidingWhat  string     `json:"avoiding_what,omitempty"`
	CreatedAt     *time.Time `json:"created_at,omitempty"`
	HoursSince    float64    `json:"hours_since,omitempty"`
	Shipped       *bool      `json:"shipped,omitempty"`
	Excuse        string     `json:"excuse,omitempty"`
	NeedsReview   bool       `json:"needs_review,omitempty"`
	CanReview     bool       `json:"can_review,omitempty"`
}

// ExcuseCount pairs a recurring excuse with how many times it was used.
type ExcuseCount struct {
	Excuse string `json:"excuse"`
	Count  int    `json:"count"`
}

// WeeklyBreakdown is one week's shipped/failed split within the stats window.
type WeeklyBreakdown struct {
	WeekStart string  `json:"week_start"`
	Shipped   int     `json:"shipped"`
	Failed    int     `json:"failed"`
	Rate      float64 `json:"rate"`
}

// Stats is the rolling-window commitment statistics aggregate.
type Stats struct {
	PeriodDays       int               `json:"period_days"`
	TotalCommitments int               `json:"total_commitments"`
	Shipped          int               `json:"shipped"`
	Failed           int               `json:"failed"`
	SuccessRate      float64           `json:"success_rate"`
	CurrentStreak    int               `json:"current_streak"`
	BestStreak       int               `json:"best_streak"`
	CommonExcuses    []ExcuseCount     `json:"common_excuses"`
	WeeklyBreakdown  []WeeklyBreakdown `json:"weekly_breakdown,omitempty"`
}

// ReviewFeedback is the server's response to a submitted review: the
// AI-generated feedback text shown to the user.
type ReviewFeedback struct {
	Feedback string `json:"feedback"`
}

// Reminder says whether the server wants a "you haven't committed yet"
// nudge shown, with the nudge text.
type Reminder struct {
	ReminderNeeded bool   `json:"reminder_needed"`
	Message        string `json:"message,omitempty"`
}

// Checkin is a persisted daily check-in row, as returned by the check-in
// list endpoint.
type Checkin struct {
	ID           int64      `json:"id"`
	EnergyLevel  int        `json:"energy_level"`
	AvoidingWhat string     `json:"avoiding_what"`
	Commitment   string     `json:"commitment"`
	Mood         string     `json:"mood,omitempty"`
	Shipped      *bool      `json:"shipped,omitempty"`
	Excuse       string     `json:"excuse,omitempty"`
	CreatedAt    *time.Time `json:"created_at,omitempty"`
}

// GoalTask is a single actionable item inside a goal's plan.
type GoalTask struct {
	ID     int64  `json:"id"`
	Title  string `json:"title"`
	Status string `json:"status"`
}

// GoalProgress is one logged progress note against a goal.
type GoalProgress struct {
	Note      string     `json:"note"`
	Value     float64    `json:"value,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// Goal is a tracked longer-term objective with optional tasks and progress.
type Goal struct {
	ID        int64          `json:"id"`
	Title     string         `json:"title"`
	GoalType  string         `json:"goal_type,omitempty"`
	Status    string         `json:"status,omitempty"`
	TargetAt  *time.Time     `json:"target_at,omitempty"`
	Tasks     []GoalTask     `json:"tasks,omitempty"`
	Progress  []GoalProgress `json:"progress,omitempty"`
	CreatedAt *time.Time     `json:"created_at,omitempty"`
}

// LifeDecision is a recorded decision together with the backend's analysis.
type LifeDecision struct {
	ID        int64      `json:"id"`
	Question  string     `json:"question"`
	Context   string     `json:"context,omitempty"`
	Analysis  string     `json:"analysis,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// Advice is one entry of the multi-agent advice history.
type Advice struct {
	ID        int64      `json:"id"`
	Agent     string     `json:"agent,omitempty"`
	Message   string     `json:"message"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// User is the account record keyed by GitHub username.
type User struct {
	GithubUsername      string `json:"github_username"`
	Email               string `json:"email,omitempty"`
	OnboardingCompleted bool   `json:"onboarding_completed,omitempty"`
}

// DashboardSummary is the volatile aggregate backing the dashboard view.
// The backend shapes this freely; sections the client does not model are
// left to the Extra map rather than chasing the server's schema.
type DashboardSummary struct {
	User        *User                  `json:"user,omitempty"`
	Commitment  *Commitment            `json:"commitment,omitempty"`
	Stats       *Stats                 `json:"stats,omitempty"`
	RecentGoals []Goal                 `json:"recent_goals,omitempty"`
	Extra       map[string]interface{} `json:"extra,omitempty"`
}
