package availability

import "errors"

// Sentinel errors for the availability engine. Everything else the engine
// hits is degraded in place: a failed read turns into an "assumed busy"
// verdict at the smallest enclosing unit instead of propagating.
var (
	// ErrInvalidSlotFormat marks a malformed date/time label, rejected
	// before any I/O.
	ErrInvalidSlotFormat = errors.New("invalid slot format")
	// ErrDataFetch marks a failed store read that had no smaller unit to
	// degrade into (e.g. the batch offerings query itself).
	ErrDataFetch = errors.New("data fetch failed")
)
