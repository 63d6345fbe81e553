package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lukehollis/sync-physics/internal/engine"
	"github.com/lukehollis/sync-physics/internal/harness"
	"github.com/lukehollis/sync-physics/internal/store"
)

// RunCmdOptions holds flags for the run command.
type RunCmdOptions struct {
	*RootOptions
	Database string
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunCmdOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <scenario.yaml>",
		Short: "Run a scenario and evaluate its assertions",
		Long: `Run a YAML scenario against a fresh runtime with the demo
concepts. With --db the trace is also persisted to SQLite, where the
trace and replay commands can inspect it.

Exit codes: 0 all assertions held, 1 assertion failures, 2 the scenario
could not be run.

Examples:
  syncphysics run scenario.yaml
  syncphysics run scenario.yaml --db trace.db
  syncphysics run scenario.yaml --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenario(opts, cmd, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "persist the trace to this SQLite database")

	return cmd
}

func runScenario(opts *RunCmdOptions, cmd *cobra.Command, path string) error {
	scenario, err := harness.LoadScenario(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load scenario", err)
	}

	var sinks []engine.Sink
	if opts.Database != "" {
		st, err := store.Open(opts.Database)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer st.Close()
		sinks = append(sinks, st)
	}

	result, _, err := harness.Run(scenario, sinks...)
	if err != nil {
		return WrapExitError(ExitCommandError, fmt.Sprintf("failed to run scenario %s", scenario.Name), err)
	}

	w := cmd.OutOrStdout()
	if opts.Format == "json" {
		if err := writeJSON(w, runReport(scenario, result)); err != nil {
			return err
		}
	} else {
		printRunText(opts, cmd, scenario, result)
	}

	if !result.Pass {
		return NewExitError(ExitFailure, fmt.Sprintf("scenario %s failed", scenario.Name))
	}
	return nil
}

func runReport(scenario *harness.Scenario, result *harness.Result) map[string]any {
	events := make([]map[string]any, len(result.Trace))
	for i, ev := range result.Trace {
		event := map[string]any{
			"kind":   ev.Kind,
			"action": string(ev.Action),
			"flow":   ev.Flow,
			"seq":    ev.Seq,
			"input":  irObjectToMap(ev.Input),
		}
		if ev.Output != nil {
			event["output"] = irObjectToMap(ev.Output)
		}
		events[i] = event
	}

	return map[string]any{
		"scenario": scenario.Name,
		"pass":     result.Pass,
		"trace":    events,
		"errors":   result.Errors,
	}
}

func printRunText(opts *RunCmdOptions, cmd *cobra.Command, scenario *harness.Scenario, result *harness.Result) {
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "Scenario: %s\n", scenario.Name)
	if scenario.Description != "" {
		fmt.Fprintf(w, "  %s\n", scenario.Description)
	}

	if opts.Verbose {
		fmt.Fprintln(w, "Trace:")
		for _, ev := range result.Trace {
			switch ev.Kind {
			case harness.EventInvoke:
				fmt.Fprintf(w, "  [%d] -> %s %s\n", ev.Seq, ev.Action, formatObject(ev.Input))
			case harness.EventComplete:
				fmt.Fprintf(w, "  [%d] <- %s %s\n", ev.Seq, ev.Action, formatObject(ev.Output))
			}
		}
	}

	if result.Pass {
		fmt.Fprintf(w, "PASS (%d events)\n", len(result.Trace))
		return
	}
	fmt.Fprintf(w, "FAIL (%d events)\n", len(result.Trace))
	for _, msg := range result.Errors {
		fmt.Fprintln(cmd.ErrOrStderr(), msg)
	}
}
