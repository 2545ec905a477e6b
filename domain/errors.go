package domain

import "errors"

// Sentinel errors for the economy core. Handlers and the HTTP error mapper
// match on these with errors.Is; services wrap them with context via %w.
var (
	// ErrInvalidInput: malformed or missing command fields, caller's fault.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized: no or bad credentials.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden: an authorization policy rejected the command.
	ErrForbidden = errors.New("forbidden")

	// ErrInsufficientPoints: balance below redemption cost. Kept distinct from
	// ErrForbidden so callers can render a specific message.
	ErrInsufficientPoints = errors.New("insufficient points")

	// ErrRankRequirementNotMet: product requires a rank the user does not hold.
	ErrRankRequirementNotMet = errors.New("rank requirement not met")

	// ErrNotFound: user, product, or definition absent.
	ErrNotFound = errors.New("not found")

	// ErrCodeInvalidOrUsed deliberately merges "code does not exist" and
	// "code already used" so callers cannot probe which codes exist.
	ErrCodeInvalidOrUsed = errors.New("code invalid or already used")

	// ErrConflict: lost a race on a conditional write, safe to retry.
	ErrConflict = errors.New("conflict")

	// ErrUnroutable: no handler bound for a command type. Configuration bug,
	// never surfaced to callers as-is.
	ErrUnroutable = errors.New("unroutable command")
)
