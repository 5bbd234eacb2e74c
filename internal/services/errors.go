// Package services implements the typed endpoint surface of the remote
// accountability API on top of the transport client. This file centralizes
// common service-level error values so that they can be consistently
// returned by service methods and checked by callers.
//
// These errors cover client-side validation failures that are rejected
// before any network call is made. Transport failures keep their own typed
// classification (see internal/transport).
package services

import "errors"

var (
	// ErrShippedNotChosen is returned when a review is submitted without an
	// explicit shipped/not-shipped answer. There is no default.
	ErrShippedNotChosen = errors.New("shipped must be explicitly chosen")

	// ErrExcuseRequired is returned when a review reports shipped=false
	// without a non-empty excuse.
	ErrExcuseRequired = errors.New("excuse is required when the commitment was not shipped")

	// ErrNotReviewable is returned when a review is attempted against a
	// commitment that does not exist or whose outcome is already recorded.
	ErrNotReviewable = errors.New("commitment cannot be reviewed")

	// ErrEmptyCommitment is returned when a check-in carries an empty
	// commitment statement.
	ErrEmptyCommitment = errors.New("commitment text is empty")

	// ErrInvalidEnergyLevel is returned when a check-in's energy level is
	// outside the 1–10 scale.
	ErrInvalidEnergyLevel = errors.New("energy level must be between 1 and 10")

	// ErrEmptyQuestion is returned when a life decision is created without
	// a question.
	ErrEmptyQuestion = errors.New("decision question is empty")

	// ErrEmptyTitle is returned when a goal is created without a title.
	ErrEmptyTitle = errors.New("goal title is empty")
)
