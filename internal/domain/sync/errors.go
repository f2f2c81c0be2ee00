package sync

import "errors"

var (
	// ErrAuthenticationFailed indicates the CMS rejected the configured
	// credentials or was unreachable during login
	ErrAuthenticationFailed = errors.New("sync: cms authentication failed")

	// ErrRemoteWriteFailed indicates a create/update/delete against the CMS
	// failed after the single re-authentication retry
	ErrRemoteWriteFailed = errors.New("sync: remote write failed")

	// ErrLookupFailed indicates an existence check failed for a reason other
	// than "not found"; callers must not treat this as a missing entry
	ErrLookupFailed = errors.New("sync: remote lookup failed")

	// ErrEntryNotFound indicates the targeted CMS entry does not exist;
	// update callers fall back to the create path on this error
	ErrEntryNotFound = errors.New("sync: remote entry not found")

	// ErrDomainRetrievalFailed indicates the commerce-side entity fetch
	// failed; propagation aborts before any remote call
	ErrDomainRetrievalFailed = errors.New("sync: commerce entity retrieval failed")

	// ErrMappingNotFound indicates no remote id is recorded for a
	// (entity type, commerce id) pair
	ErrMappingNotFound = errors.New("sync: entry mapping not found")

	// ErrUnknownEntityType indicates an entity type outside the synced set
	ErrUnknownEntityType = errors.New("sync: unknown entity type")
)
