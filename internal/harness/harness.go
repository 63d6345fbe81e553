package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/lukehollis/sync-physics/internal/concept"
	"github.com/lukehollis/sync-physics/internal/demo"
	"github.com/lukehollis/sync-physics/internal/engine"
	"github.com/lukehollis/sync-physics/internal/ir"
	"github.com/lukehollis/sync-physics/internal/ruledef"
	"github.com/lukehollis/sync-physics/internal/testutil"
)

// Result is the outcome of one scenario run.
type Result struct {
	// Pass is true when every assertion held.
	Pass bool

	// Trace is the full recorded event stream, in emission order.
	Trace []TraceEvent

	// Outputs holds the external invocations' outputs, one per step.
	Outputs []ir.IRObject

	// Errors lists assertion failures. Empty when Pass is true.
	Errors []string
}

// Env carries the fixtures a scenario runs against. Tests can inspect
// the concepts directly after a run.
type Env struct {
	Counter *demo.Counter
	Logger  *demo.Logger
	Body    *demo.Body
}

// newEnv builds fresh demo fixtures and their registry.
func newEnv() (*Env, *concept.Registry, error) {
	env := &Env{
		Counter: demo.NewCounter(),
		Logger:  demo.NewLogger(),
		Body:    demo.NewBody(1.0),
	}

	reg := concept.NewRegistry()
	for _, c := range []*concept.Concept{
		env.Counter.Concept(),
		env.Logger.Concept(),
		env.Body.Concept(),
	} {
		if err := reg.Register(c); err != nil {
			return nil, nil, err
		}
	}
	return env, reg, nil
}

// multiSink fans ledger events out to several sinks.
type multiSink []engine.Sink

func (m multiSink) RecordInvocation(ctx context.Context, rec *ir.ActionRecord) error {
	for _, s := range m {
		if err := s.RecordInvocation(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}

func (m multiSink) RecordCompletion(ctx context.Context, rec *ir.ActionRecord) error {
	for _, s := range m {
		if err := s.RecordCompletion(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}

// Run executes a scenario against a fresh runtime and evaluates its
// assertions. Each run gets its own demo fixtures, a deterministic
// clock, and a fixed flow generator, so repeated runs produce identical
// traces. Extra sinks receive the same events as the harness recorder;
// the CLI passes the SQLite trace store here.
func Run(scenario *Scenario, extraSinks ...engine.Sink) (*Result, *Env, error) {
	env, reg, err := newEnv()
	if err != nil {
		return nil, nil, err
	}

	recorder := NewRecorder()
	sink := engine.Sink(recorder)
	if len(extraSinks) > 0 {
		sink = append(multiSink{recorder}, extraSinks...)
	}

	opts := []engine.Option{
		engine.WithClock(testutil.NewDeterministicClock()),
		engine.WithFlowGenerator(testutil.NewFixedFlowGenerator(scenario.FlowToken)),
		engine.WithSink(sink),
		engine.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}
	if scenario.MaxSteps > 0 {
		opts = append(opts, engine.WithMaxSteps(scenario.MaxSteps))
	}
	rt := engine.NewRuntime(reg, opts...)

	if scenario.Rules != "" {
		defs, err := ruledef.LoadDir(scenario.Rules)
		if err != nil {
			return nil, nil, fmt.Errorf("compile rules: %w", err)
		}
		if err := ruledef.RegisterAll(rt, defs); err != nil {
			return nil, nil, fmt.Errorf("register rules: %w", err)
		}
	}

	ctx := context.Background()
	result := &Result{Pass: true}

	for i, step := range scenario.Steps {
		input, err := ir.ObjectFromGo(step.Args)
		if err != nil {
			return nil, nil, fmt.Errorf("steps[%d] args: %w", i, err)
		}

		var invokeOpts []engine.InvokeOption
		if step.Flow != "" {
			invokeOpts = append(invokeOpts, engine.WithFlow(step.Flow))
		}

		out, err := rt.Invoke(ctx, ir.ActionRef(step.Invoke), input, invokeOpts...)
		if err != nil {
			return nil, nil, fmt.Errorf("steps[%d] %s: %w", i, step.Invoke, err)
		}
		result.Outputs = append(result.Outputs, out)
	}

	result.Trace = recorder.Events()
	result.Errors = EvaluateAssertions(result.Trace, scenario.Assertions)
	result.Pass = len(result.Errors) == 0
	return result, env, nil
}
