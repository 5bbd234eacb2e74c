// Commitment lifecycle derivation.
//
// The rules in this file are pure functions over a freshly fetched
// Commitment; they are recomputed on every poll and never cached. The
// review-eligibility threshold models "enough of the day has passed that
// it's reasonable to ask" and is a configured constant, not user-adjustable.
//
// State machine:
//
//	NoCommitment ──(check-in write succeeds)──▶ Pending
//	Pending ──(age passes threshold)──▶ PendingReview
//	Pending|PendingReview ──(review, shipped=true)──▶ Shipped   (terminal)
//	Pending|PendingReview ──(review, shipped=false)──▶ Failed   (terminal)
//
// All states fall back to NoCommitment when the server's "today" response
// no longer carries a commitment; the client does not compute day rollover.
package domain

// State is the derived position of today's commitment in its lifecycle.
type State int

const (
	// StateNoCommitment means no commitment exists for the server's "today".
	StateNoCommitment State = iota
	// StatePending means a commitment exists and has not been reviewed, but
	// is not yet old enough to demand a review.
	StatePending
	// StatePendingReview means the unreviewed commitment has aged past the
	// eligibility threshold and the user should be asked "did you ship it?".
	StatePendingReview
	// StateShipped means the review recorded success. Terminal for the day.
	StateShipped
	// StateFailed means the review recorded failure. Terminal for the day.
	StateFailed
)

// String returns a short human-readable name for logging.
func (s State) String() string {
	switch s {
	case StateNoCommitment:
		return "no_commitment"
	case StatePending:
		return "pending"
	case StatePendingReview:
		return "pending_review"
	case StateShipped:
		return "shipped"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further review is possible for the day.
func (s State) Terminal() bool {
	return s == StateShipped || s == StateFailed
}

// Reviewable reports whether the commitment exists and its review outcome is
// still unset. Once Shipped is recorded (true or false) this is permanently
// false for the commitment.
func (c *Commitment) Reviewable() bool {
	return c != nil && c.HasCommitment && c.Shipped == nil
}

// ReviewDue reports whether the commitment is reviewable and old enough,
// given the eligibility threshold in hours. Age comes from the
// server-computed HoursSince field, so no local calendar math is involved.
func (c *Commitment) ReviewDue(thresholdHours float64) bool {
	return c.Reviewable() && c.HoursSince >= thresholdHours
}

// StateOf derives the lifecycle state from a fetched commitment.
func StateOf(c *Commitment, thresholdHours float64) State {
	if c == nil || !c.HasCommitment {
		return StateNoCommitment
	}
	if c.Shipped != nil {
		if *c.Shipped {
			return StateShipped
		}
		return StateFailed
	}
	if c.HoursSince >= thresholdHours {
		return StatePendingReview
	}
	return StatePending
}
