// Package engine is the synchronization runtime core.
//
// A Runtime owns the action ledger, the registered rules, and the cycle
// guard. Every concept action goes through Runtime.Invoke: the call is
// recorded as a pending ledger entry, executed, completed, and then the
// rules whose when clauses mention the action are evaluated against the
// flow's history. Surviving frames fire their then actions synchronously,
// so a firing settles fully (including everything it transitively
// triggers) before the next frame is considered.
//
// The model is single-threaded and cooperative. External Invoke calls are
// serialized by the runtime mutex; recursive then-invocations run inside
// the same critical section.
package engine
