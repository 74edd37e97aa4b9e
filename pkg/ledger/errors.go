package ledger

import "errors"

var (
	// ErrUnreachable is returned when the chain's gateway peer cannot be
	// reached over gRPC.
	ErrUnreachable = errors.New("ledger unreachable")

	// ErrAuthFailed is returned when the chain's identity or signing
	// material is missing or invalid.
	ErrAuthFailed = errors.New("ledger identity unavailable")

	// ErrSubmitFailed is returned when a write transaction is rejected or
	// times out during endorsement, submission, or commit.
	ErrSubmitFailed = errors.New("ledger submit failed")

	// ErrNotFound is returned when a queried evidence id does not exist on
	// the selected chain.
	ErrNotFound = errors.New("evidence not found on ledger")

	// ErrQueryFailed is returned for any other evaluate failure.
	ErrQueryFailed = errors.New("ledger query failed")
)
