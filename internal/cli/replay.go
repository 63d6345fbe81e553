package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lukehollis/sync-physics/internal/engine"
	"github.com/lukehollis/sync-physics/internal/ruledef"
	"github.com/lukehollis/sync-physics/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
	Flow     string
	Rules    string
}

// ReplayFrame is one matching frame in replay output.
type ReplayFrame struct {
	Rule     string         `json:"rule"`
	Causes   []string       `json:"causes"`
	Bindings map[string]any `json:"bindings"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Re-match rules against a persisted flow",
		Long: `Load a flow's ledger records from a trace database and run the
when-clause matcher for every rule in a directory, without invoking
anything. Each matching frame is reported with its cause record ids and
variable bindings.

The live runtime suppresses frames whose causes already fired; that
history is not persisted, so replay reports every match.

Examples:
  syncphysics replay --db trace.db --flow test-flow-default --rules ./rules`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to the trace database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Flow, "flow", "", "flow token to replay (required)")
	_ = cmd.MarkFlagRequired("flow")
	cmd.Flags().StringVar(&opts.Rules, "rules", "", "directory of CUE rule files (required)")
	_ = cmd.MarkFlagRequired("rules")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	ctx := context.Background()

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	recs, err := st.ReadFlow(ctx, opts.Flow)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read flow", err)
	}
	if len(recs) == 0 {
		return NewExitError(ExitCommandError, fmt.Sprintf("no records for flow %s", opts.Flow))
	}

	lastSeq, err := st.LastSeq(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read last seq", err)
	}

	defs, err := ruledef.LoadDir(opts.Rules)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to compile rules", err)
	}

	var frames []ReplayFrame
	for _, def := range defs {
		vars := engine.NewVars()
		rule := ruledef.Bind(def)(vars)
		rule.Name = def.Name
		rule.Vars = vars

		for _, f := range engine.MatchFlow(&rule, recs, opts.Flow) {
			frames = append(frames, ReplayFrame{
				Rule:     def.Name,
				Causes:   f.CauseIDs(),
				Bindings: frameBindings(vars, f),
			})
		}
	}

	w := cmd.OutOrStdout()
	if opts.Format == "json" {
		return writeJSON(w, map[string]any{
			"flow":     opts.Flow,
			"records":  len(recs),
			"last_seq": lastSeq,
			"frames":   frames,
		})
	}

	fmt.Fprintf(w, "Flow: %s (%d records, last seq %d)\n", opts.Flow, len(recs), lastSeq)
	if len(frames) == 0 {
		fmt.Fprintln(w, "No rule matches")
		return nil
	}
	for _, f := range frames {
		fmt.Fprintf(w, "  %s %s\n", f.Rule, formatAnyMap(f.Bindings))
		if opts.Verbose {
			for _, cause := range f.Causes {
				fmt.Fprintf(w, "    cause: %s\n", truncateID(cause))
			}
		}
	}
	return nil
}

func frameBindings(vars *engine.Vars, f *engine.Frame) map[string]any {
	bindings := make(map[string]any)
	for i := 0; i < vars.Len(); i++ {
		v, ok := f.Lookup(engine.Var(i))
		if !ok {
			continue
		}
		bindings[vars.Name(engine.Var(i))] = irValueToAny(v)
	}
	return bindings
}
