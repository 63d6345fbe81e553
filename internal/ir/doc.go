// Package ir defines the value model shared by concepts and the sync runtime.
//
// Action inputs, action outputs, and query rows are all IRObject maps whose
// values are drawn from a small sealed set of types. Keeping the set closed
// makes structural equality, canonical serialization, and content-addressed
// identity total functions: there is no value a concept can hand the runtime
// that the matching engine cannot compare or the trace store cannot persist.
//
// Unlike event-log systems that forbid floating point for replay determinism,
// this runtime admits IRFloat: the concepts it composes are physics
// simulations and their state is irreducibly floating point. Determinism is
// preserved by formatting floats with shortest round-trip notation at the
// canonical boundary, so identical bits always serialize identically. NaN and
// infinities are rejected.
package ir
