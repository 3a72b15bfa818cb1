package admission

import "errors"

// Stage-tagged admission failures. Expected conditions are values the
// controller branches on, not exceptions. Insufficient-credit and
// normalization failures carry their own types from the credits and
// normalize packages and pass through unchanged.
var (
	ErrEventNotFound = errors.New("event not found")
	ErrEventExpired  = errors.New("event expired")
	ErrPhotoNotFound = errors.New("photo not found")

	// ErrStorageWrite means the normalized bytes never became durable. No
	// credit was spent; the request can simply be retried.
	ErrStorageWrite = errors.New("storage write failed")

	// ErrSettlement means the storage write succeeded but the debit
	// transaction failed. The stored object is unreferenced and uncharged;
	// reconciliation sweeps such orphans.
	ErrSettlement = errors.New("credit settlement failed")

	// ErrQueueEnqueue means credit was spent and the photo persisted, but
	// the face-index job could not be published. Deliberately not rolled
	// back: the invariant is "never charge without a stored artifact", and
	// a stored, charged photo is recoverable by re-enqueueing.
	ErrQueueEnqueue = errors.New("face-index enqueue failed")
)
