// Package harness runs YAML scenario files against a real runtime.
//
// A scenario names a directory of CUE rule files, a list of action
// invocations, and assertions over the resulting trace. The harness
// builds a fresh runtime with the demo concepts, compiles and registers
// the rules, invokes each step, and records every ledger event through
// an in-memory sink. Deterministic clock and flow tokens make traces
// byte-stable, so golden files can pin the exact event stream.
package harness
