package evidence

import (
	"errors"

	"github.com/coc-platform/evidence-service/pkg/ipfs"
	"github.com/coc-platform/evidence-service/pkg/ledger"
)

// Errors originating in this package.
var (
	// ErrValidation is returned when a request is rejected before any
	// store or ledger call is attempted.
	ErrValidation = errors.New("invalid request")

	// ErrDigest is returned when the uploaded payload cannot be read while
	// computing its digest.
	ErrDigest = errors.New("digest computation failed")

	// ErrIntegrityMismatch is returned when retrieved bytes do not match
	// the digest recorded at upload time. Always fatal to the request; the
	// corrupted bytes are never released.
	ErrIntegrityMismatch = errors.New("file integrity verification failed")
)

// Errors re-exported from the content store client.
var (
	// ErrStoreUnavailable is returned when the store endpoint cannot be reached.
	ErrStoreUnavailable = ipfs.ErrUnavailable

	// ErrStoreWriteFailed is returned for any other upload error.
	ErrStoreWriteFailed = ipfs.ErrWriteFailed

	// ErrStoreNotFound is returned when a content address is unknown to the store.
	ErrStoreNotFound = ipfs.ErrNotFound

	// ErrStoreReadFailed is returned for any other retrieval error.
	ErrStoreReadFailed = ipfs.ErrReadFailed
)

// Errors re-exported from the ledger gateway client.
var (
	// ErrLedgerUnreachable is returned when a chain's gateway peer cannot be reached.
	ErrLedgerUnreachable = ledger.ErrUnreachable

	// ErrLedgerAuthFailed is returned when identity or signing material is missing or invalid.
	ErrLedgerAuthFailed = ledger.ErrAuthFailed

	// ErrLedgerSubmitFailed is returned when a write transaction is rejected or times out.
	ErrLedgerSubmitFailed = ledger.ErrSubmitFailed

	// ErrLedgerNotFound is returned when an evidence id does not exist on the queried chain.
	ErrLedgerNotFound = ledger.ErrNotFound

	// ErrLedgerQueryFailed is returned for any other query failure.
	ErrLedgerQueryFailed = ledger.ErrQueryFailed
)
