// Package demo provides small fixture concepts used by the harness, the
// CLI examples, and the engine tests. They are deliberately trivial: the
// point is exercising the runtime, not the concepts.
package demo
