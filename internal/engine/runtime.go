package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/lukehollis/sync-physics/internal/concept"
	"github.com/lukehollis/sync-physics/internal/ir"
	"github.com/lukehollis/sync-physics/internal/ledger"
)

const defaultMaxSteps = 1000

// Runtime wires the registry, ledger, rules, cycle guard, clock, and
// trace sink into the synchronization engine. All collaborators are
// injected at construction; there are no package-level globals.
type Runtime struct {
	mu sync.Mutex

	registry *concept.Registry
	ledger   *ledger.Ledger
	guard    *CycleGuard
	clock    LogicalClock
	flows    FlowTokenGenerator

	rules    []*Rule
	byAction map[ir.ActionRef][]*Rule

	sink     Sink
	logger   *slog.Logger
	level    TraceLevel
	maxSteps int
	quotas   map[string]*QuotaEnforcer
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithMaxSteps sets the per-flow invocation quota.
func WithMaxSteps(n int) Option {
	return func(r *Runtime) { r.maxSteps = n }
}

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(r *Runtime) { r.logger = l }
}

// WithSink attaches a trace sink receiving every invocation and
// completion.
func WithSink(s Sink) Option {
	return func(r *Runtime) { r.sink = s }
}

// WithTraceLevel sets how much the runtime logs.
func WithTraceLevel(l TraceLevel) Option {
	return func(r *Runtime) { r.level = l }
}

// WithFlowGenerator replaces the flow token source. Tests use a fixed
// sequence for deterministic traces.
func WithFlowGenerator(g FlowTokenGenerator) Option {
	return func(r *Runtime) { r.flows = g }
}

// WithClock replaces the logical clock. Used by replay to resume from a
// stored position and by tests that reset the clock between runs.
func WithClock(c LogicalClock) Option {
	return func(r *Runtime) { r.clock = c }
}

// NewRuntime creates a runtime over a concept registry.
func NewRuntime(reg *concept.Registry, opts ...Option) *Runtime {
	r := &Runtime{
		registry: reg,
		ledger:   ledger.New(),
		guard:    NewCycleGuard(),
		clock:    NewClock(),
		flows:    UUIDv7Generator{},
		byAction: make(map[ir.ActionRef][]*Rule),
		logger:   slog.Default(),
		maxSteps: defaultMaxSteps,
		quotas:   make(map[string]*QuotaEnforcer),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register compiles and indexes a rule. Rules are registered once at
// startup, before any Invoke; names must be unique and every rule needs
// at least one when clause.
func (r *Runtime) Register(name string, fn RuleFunc) error {
	if name == "" {
		return fmt.Errorf("register rule: empty name")
	}
	for _, existing := range r.rules {
		if existing.Name == name {
			return fmt.Errorf("register rule %q: name already registered", name)
		}
	}

	vars := NewVars()
	rule := fn(vars)
	rule.Name = name
	rule.Vars = vars

	if len(rule.When) == 0 {
		return fmt.Errorf("register rule %q: no when clauses", name)
	}

	r.rules = append(r.rules, &rule)
	for _, wp := range rule.When {
		if !containsRule(r.byAction[wp.Action], &rule) {
			r.byAction[wp.Action] = append(r.byAction[wp.Action], &rule)
		}
	}
	return nil
}

func containsRule(rules []*Rule, rule *Rule) bool {
	for _, existing := range rules {
		if existing == rule {
			return true
		}
	}
	return false
}

// InvokeOption controls a single invocation.
type InvokeOption func(*invokeConfig)

type invokeConfig struct {
	flow string
	id   string
}

// WithFlow pins the invocation to an existing flow token instead of
// generating a fresh one.
func WithFlow(flow string) InvokeOption {
	return func(c *invokeConfig) { c.flow = flow }
}

// WithID supplies an explicit record id instead of the content-addressed
// default. Reusing an id is a caller error.
func WithID(id string) InvokeOption {
	return func(c *invokeConfig) { c.id = id }
}

// Invoke runs a concept action through the runtime: the call is recorded
// in the ledger, executed, completed, and every rule firing it triggers
// settles before Invoke returns. The bare action output is returned.
//
// An action error propagates unchanged; the record stays pending forever
// and nothing is dispatched for it.
//
// Cycle-guard state is held by the runtime and keyed by flow, so refire
// suppression carries implicitly across invocations sharing a flow token
// (WithFlow); there is no per-call option for it.
//
// External calls are serialized; concurrent callers block here.
func (r *Runtime) Invoke(ctx context.Context, action ir.ActionRef, input ir.IRObject, opts ...InvokeOption) (ir.IRObject, error) {
	var cfg invokeConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.invoke(ctx, action, input, cfg)
}

// invoke is the re-entrant core shared by external calls and then-action
// dispatch. Callers must hold r.mu.
func (r *Runtime) invoke(ctx context.Context, action ir.ActionRef, input ir.IRObject, cfg invokeConfig) (ir.IRObject, error) {
	fn, err := r.registry.Action(action)
	if err != nil {
		return nil, err
	}
	if input == nil {
		input = ir.IRObject{}
	}

	flow := cfg.flow
	if flow == "" {
		flow = r.flows.Generate()
	}

	quota := r.quotas[flow]
	if quota == nil {
		quota = NewQuotaEnforcer(r.maxSteps)
		r.quotas[flow] = quota
	}
	if err := quota.Check(flow); err != nil {
		return nil, err
	}

	seq := r.clock.Next()
	id := cfg.id
	if id == "" {
		id, err = ir.RecordID(flow, action, input, seq)
		if err != nil {
			return nil, fmt.Errorf("invoke %s: %w", action, err)
		}
	}

	rec := &ir.ActionRecord{
		ID:     id,
		Action: action,
		Input:  input,
		Flow:   flow,
		Seq:    seq,
	}
	if err := r.ledger.Append(rec); err != nil {
		return nil, fmt.Errorf("invoke %s: %w", action, err)
	}
	r.emitInvocation(ctx, rec)

	output, err := fn(ctx, input)
	if err != nil {
		// The record stays pending; its dispatch subtree is aborted.
		return nil, err
	}
	if output == nil {
		output = ir.IRObject{}
	}

	if err := r.ledger.MarkCompleted(rec.ID, output, r.clock.Next()); err != nil {
		// The ledger no longer agrees with the runtime's own bookkeeping.
		return nil, fmt.Errorf("invoke %s: ledger desync: %w", action, err)
	}
	r.emitCompletion(ctx, rec)

	r.dispatch(ctx, rec)

	return rec.Output, nil
}

func (r *Runtime) emitInvocation(ctx context.Context, rec *ir.ActionRecord) {
	if r.level >= TraceActions {
		r.logger.Info("action invoked",
			"flow", rec.Flow,
			"action", string(rec.Action),
			"input", renderPayload(rec.Input),
			"id", rec.ID,
			"seq", rec.Seq,
		)
	}
	if r.sink != nil {
		if err := r.sink.RecordInvocation(ctx, rec); err != nil {
			r.logger.Error("trace sink failed on invocation",
				"flow", rec.Flow, "id", rec.ID, "error", err)
		}
	}
}

func (r *Runtime) emitCompletion(ctx context.Context, rec *ir.ActionRecord) {
	if r.level >= TraceActions {
		r.logger.Info("action completed",
			"flow", rec.Flow,
			"action", string(rec.Action),
			"input", renderPayload(rec.Input),
			"output", renderPayload(rec.Output),
			"id", rec.ID,
			"seq", rec.CompletedSeq,
		)
	}
	if r.sink != nil {
		if err := r.sink.RecordCompletion(ctx, rec); err != nil {
			r.logger.Error("trace sink failed on completion",
				"flow", rec.Flow, "id", rec.ID, "error", err)
		}
	}
}

// Ledger exposes the action ledger for read access.
func (r *Runtime) Ledger() *ledger.Ledger {
	return r.ledger
}

// Guard exposes the cycle guard for introspection.
func (r *Runtime) Guard() *CycleGuard {
	return r.guard
}

// CleanupFlow drops all runtime state for a finished flow: ledger
// records, cycle guard history, and the quota counter. Refire
// suppression does not survive cleanup, so only call this once the flow
// will receive no further invocations.
func (r *Runtime) CleanupFlow(flow string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.ledger.DropFlow(flow)
	r.guard.Clear(flow)
	delete(r.quotas, flow)
}
