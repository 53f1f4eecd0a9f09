package order

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by the store and the transition engine. Callers use
// errors.Is against these; the wrapped variants carry the offending ids.
var (
	// ErrIllegalTransition marks a request whose target is not adjacent to
	// the order's current stage. Always a local caller bug, never a server
	// problem, and never worth a network call.
	ErrIllegalTransition = errors.New("order: illegal transition")

	// ErrTransitionInProgress marks a duplicate request while a transition
	// for the same order is still waiting on the gateway.
	ErrTransitionInProgress = errors.New("order: transition already in flight")

	// ErrNotFoundInSource marks an order missing from the bucket it was
	// expected in. Indicates stale state; the recovery is a reload of the
	// affected stage, not a retry.
	ErrNotFoundInSource = errors.New("order: not found in source bucket")
)

// FetchError reports a failed stage load. The bucket keeps its previous
// contents; the notice is scoped to the one stage.
type FetchError struct {
	Stage Stage
	Err   error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("order: fetch %s: %v", e.Stage, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// TransitionFailedError reports a transition the gateway rejected or that
// failed in transit. The order stays in its original bucket; the operator may
// re-trigger the same action.
type TransitionFailedError struct {
	OrderID string
	Target  Stage
	Reason  string
	Err     error
}

func (e *TransitionFailedError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("order: transition %s to %s failed: %s", e.OrderID, e.Target, e.Reason)
	}
	return fmt.Sprintf("order: transition %s to %s failed: %v", e.OrderID, e.Target, e.Err)
}

func (e *TransitionFailedError) Unwrap() error { return e.Err }
