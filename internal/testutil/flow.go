package testutil

import "sync"

// FixedFlowGenerator always returns the same flow token. Useful when a
// whole test shares one flow and the trace must be byte-identical across
// runs.
type FixedFlowGenerator struct {
	token string
}

// NewFixedFlowGenerator creates a generator for the given token. An
// empty token defaults to "test-flow-default".
func NewFixedFlowGenerator(token string) *FixedFlowGenerator {
	if token == "" {
		token = "test-flow-default"
	}
	return &FixedFlowGenerator{token: token}
}

// Generate implements engine.FlowTokenGenerator.
func (g *FixedFlowGenerator) Generate() string {
	return g.token
}

// SequenceFlowGenerator returns predetermined tokens in order. Tests that
// start several flows use it to know each flow's token up front.
//
// Generate panics once the sequence is exhausted, which fails fast when a
// test starts more flows than it declared.
type SequenceFlowGenerator struct {
	mu     sync.Mutex
	tokens []string
	idx    int
}

// NewSequenceFlowGenerator creates a generator returning tokens in order.
func NewSequenceFlowGenerator(tokens ...string) *SequenceFlowGenerator {
	return &SequenceFlowGenerator{tokens: tokens}
}

// Generate implements engine.FlowTokenGenerator.
func (g *SequenceFlowGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.idx >= len(g.tokens) {
		panic("SequenceFlowGenerator: all tokens exhausted")
	}
	token := g.tokens[g.idx]
	g.idx++
	return token
}
