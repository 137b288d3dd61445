package service

import "errors"

// Typed failures the route layer maps onto HTTP statuses. Each kind is
// distinguishable so a client can tell "wrong password" from "no session"
// from "verify first".
var (
	// ErrUserSuspended gates every mutating operation; nothing else runs
	// once it fires.
	ErrUserSuspended = errors.New("account: user suspended")

	// ErrSessionNotFound means the request carried no parsable session
	// identifier on a step-up-gated operation.
	ErrSessionNotFound = errors.New("account: no active session")

	// ErrVerificationRequired means a password change was attempted
	// without a live verification status for the (user, session) pair.
	ErrVerificationRequired = errors.New("account: password verification required")

	// ErrUsernameTaken and ErrEmailTaken report identifier collisions on
	// profile updates. They surface as conflicts, never retried here.
	ErrUsernameTaken = errors.New("account: username already in use")
	ErrEmailTaken    = errors.New("account: email already in use")
)
