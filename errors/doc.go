// Package errors provides structured error types for the coroutine runtime.
//
// Errors carry a Phase (where in the coroutine lifecycle the failure
// happened) and a Kind (what category of failure it is), so callers can
// match on either with errors.Is without parsing messages:
//
//	_, err := eng.NewOn(stk, entry)
//	if errors.Is(err, &errors.Error{Phase: errors.PhaseCreate, Kind: errors.KindStackTooSmall}) {
//	    // retry with a bigger stack
//	}
//
// Creation errors are recoverable and returned as values. Switch-time
// failures and contract violations are raised as panics carrying the same
// structured type, since no safe recovery exists at that point.
package errors
