package ipfs

import "errors"

var (
	// ErrUnavailable is returned when the IPFS daemon cannot be reached.
	ErrUnavailable = errors.New("content store unreachable")

	// ErrWriteFailed is returned when an upload is rejected by the daemon.
	ErrWriteFailed = errors.New("content store write failed")

	// ErrNotFound is returned when a content address is unknown to the store.
	ErrNotFound = errors.New("content not found in store")

	// ErrReadFailed is returned for any other retrieval failure.
	ErrReadFailed = errors.New("content store read failed")
)
