// Package activate splices environment profiles into the process
// environment and restores it exactly afterwards.
//
// # Slots
//
// An [Activator] has two independent slots, [SlotBuild] and [SlotRun]. Each
// slot is either inactive or active. [Activator.Activate] applies a profile's
// operations in declared order and records, for every variable it touches,
// the value the variable had immediately before the first operation that
// touched it (first touch wins). [Activator.Deactivate] restores every
// recorded variable, removing the ones that were absent, and discards the
// record.
//
// Activating an active slot first deactivates it, so the baseline is always
// the environment captured by the earliest activation still in effect, never
// an intermediate state:
//
//	a := activate.New(activate.OSEnviron{})
//	tok, err := a.Activate(activate.SlotBuild, profile)
//	if err != nil {
//	    return err
//	}
//	defer tok.Release()
//
// # Partial failure
//
// Operations are validated one at a time as they are applied. If an operation
// is invalid, activation stops: operations applied earlier stay applied, the
// slot stays active with the partial record, and the returned error carries
// code INVALID_OPERATION. Deactivating the slot restores the baseline.
// Callers that need all-or-nothing semantics should call
// [envprofile.Profile.Validate] first.
//
// # Concurrency
//
// The process environment is a single global resource. An Activator does no
// locking and must only be used from one goroutine, and no other code may
// read or spawn processes from the environment while an activation or
// deactivation is in progress. Serialize externally if several execution
// units need it.
//
// Slots are independent: deactivating one slot restores the variables it
// recorded even if the other slot changed them since. Use
// [Activator.DeactivateAll] to unwind both slots in reverse activation order.
package activate
