package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors are pure — no infrastructure dependency. Expected, UI-driven
// conditions (no lives left, no freezes, double claim) are reported as
// negative results rather than errors; only genuine faults live here.

var (
	// Profile errors
	ErrProfileNotFound = errors.New("profile not found")

	// Action errors
	ErrUnknownAction = errors.New("unknown action kind")

	// League errors
	ErrLeagueNotFound = errors.New("league not found")
	ErrNoLeagues      = errors.New("no leagues configured")

	// Challenge errors
	ErrChallengeNotFound = errors.New("challenge not found")
)
