package engine

import "github.com/lukehollis/sync-physics/internal/ir"

// CycleGuard suppresses refires: once a rule has fired for a particular
// cause list within a flow, the same (rule, cause list) never fires again
// in that flow.
//
// Cycles arise from self-referential or mutually recursive rules:
//
//	Ping.send completes -> echo-pong fires -> Pong.send completes
//	-> echo-ping fires -> Ping.send completes (again)
//	-> echo-pong finds the same frame... suppressed here
//
// The guard only catches exact refires. Runaway flows that keep producing
// fresh causes are bounded by the max-steps quota instead.
//
// Not safe for concurrent use; the runtime serializes access.
type CycleGuard struct {
	history map[string]map[string]bool // flow -> firing key
}

// NewCycleGuard returns an empty guard.
func NewCycleGuard() *CycleGuard {
	return &CycleGuard{history: make(map[string]map[string]bool)}
}

// FiringKey identifies one rule firing: the rule name plus the hash of
// the ordered cause-record-id list. Clause order matters, so the same
// records satisfying different when positions produce different keys.
func FiringKey(rule string, causeIDs []string) (string, error) {
	key, err := ir.CauseKey(causeIDs)
	if err != nil {
		return "", err
	}
	return rule + ":" + key, nil
}

// WouldCycle reports whether the firing key has already fired in the flow.
func (g *CycleGuard) WouldCycle(flow, key string) bool {
	return g.history[flow][key]
}

// Record marks a firing key as fired. Called immediately after WouldCycle
// returns false, before the firing's then actions run, so re-entrant
// matching during the firing sees it.
func (g *CycleGuard) Record(flow, key string) {
	if g.history[flow] == nil {
		g.history[flow] = make(map[string]bool)
	}
	g.history[flow][key] = true
}

// Clear drops all history for a flow. Suppression state must survive for
// the flow's whole lifetime, so this is only called by host-driven flow
// cleanup.
func (g *CycleGuard) Clear(flow string) {
	delete(g.history, flow)
}

// FlowHistorySize returns the number of firings recorded for a flow.
// Used for tests and introspection.
func (g *CycleGuard) FlowHistorySize(flow string) int {
	return len(g.history[flow])
}
