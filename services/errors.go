package services

import "errors"

// The error taxonomy shared by all services. Hooks map these onto HTTP
// status codes; everything else surfaces as a generic 500.
var (
	// ErrUnauthorized means the caller lacks the role required for the
	// action. Never retried; no side effects were performed.
	ErrUnauthorized = errors.New("not authorized to perform this action")

	// ErrNotFound means the target account or content does not exist
	ErrNotFound = errors.New("record not found")

	// ErrConflict means the requested transition is not valid from the
	// account's current state, or a concurrent write won the race
	ErrConflict = errors.New("conflicting state change")

	// ErrPolicyUnavailable means the policy configuration could not be
	// read. It is recovered internally by the policy service and never
	// surfaced to end users.
	ErrPolicyUnavailable = errors.New("policy configuration unavailable")
)
