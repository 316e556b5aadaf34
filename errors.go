package avoid

import "fmt"

// assertf panics with a formatted message. The router has no recoverable
// runtime errors for precondition violations (spec §7): an unknown shape
// id, a router built with neither routing mode, a polygon-size mismatch on
// SetNewPolygon, or a duplicate id are all programmer errors.
func assertf(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Errorf("avoid: "+format, args...))
	}
}

// errf builds an invariant-violation error for checkInvariants-style
// validators, which return an error rather than panicking so tests can
// assert on the specific violation.
func errf(format string, args ...any) error {
	return fmt.Errorf("avoid: invariant violated: "+format, args...)
}
