package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lukehollis/sync-physics/internal/ir"
	"github.com/lukehollis/sync-physics/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	Flow     string
	Action   string
}

// TraceRow is one ledger record in trace output.
type TraceRow struct {
	ID           string         `json:"id"`
	Action       string         `json:"action"`
	Input        map[string]any `json:"input"`
	Output       map[string]any `json:"output,omitempty"`
	Seq          int64          `json:"seq"`
	CompletedSeq int64          `json:"completed_seq,omitempty"`
	Pending      bool           `json:"pending,omitempty"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Inspect a persisted flow trace",
		Long: `Read a flow's ledger records from a trace database, in seq
order. Without --flow, lists the flows the database holds.

Examples:
  syncphysics trace --db trace.db
  syncphysics trace --db trace.db --flow test-flow-default
  syncphysics trace --db trace.db --flow test-flow-default --action Logger.record`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to the trace database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Flow, "flow", "", "flow token to trace; omit to list flows")
	cmd.Flags().StringVar(&opts.Action, "action", "", "only show records of this action")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	ctx := context.Background()

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	if opts.Flow == "" {
		return listFlows(ctx, opts, cmd, st)
	}

	recs, err := st.ReadFlow(ctx, opts.Flow)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read flow", err)
	}

	rows := make([]TraceRow, 0, len(recs))
	for _, rec := range recs {
		if opts.Action != "" && string(rec.Action) != opts.Action {
			continue
		}
		rows = append(rows, traceRow(rec))
	}

	w := cmd.OutOrStdout()
	if opts.Format == "json" {
		return writeJSON(w, map[string]any{
			"flow":    opts.Flow,
			"records": rows,
		})
	}

	if len(rows) == 0 {
		fmt.Fprintf(w, "No records for flow %s\n", opts.Flow)
		return nil
	}

	fmt.Fprintf(w, "Flow: %s\n", opts.Flow)
	for _, row := range rows {
		fmt.Fprintf(w, "  [%d] %s %s\n", row.Seq, row.Action, formatAnyMap(row.Input))
		if row.Pending {
			fmt.Fprintf(w, "       (pending)\n")
		} else {
			fmt.Fprintf(w, "       [%d] -> %s\n", row.CompletedSeq, formatAnyMap(row.Output))
		}
		if opts.Verbose {
			fmt.Fprintf(w, "       id: %s\n", truncateID(row.ID))
		}
	}
	return nil
}

func listFlows(ctx context.Context, opts *TraceOptions, cmd *cobra.Command, st *store.Store) error {
	flows, err := st.Flows(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list flows", err)
	}

	w := cmd.OutOrStdout()
	if opts.Format == "json" {
		return writeJSON(w, map[string]any{"flows": flows})
	}

	if len(flows) == 0 {
		fmt.Fprintln(w, "No flows recorded")
		return nil
	}
	for _, flow := range flows {
		fmt.Fprintln(w, flow)
	}
	return nil
}

func traceRow(rec *ir.ActionRecord) TraceRow {
	row := TraceRow{
		ID:           rec.ID,
		Action:       string(rec.Action),
		Input:        irObjectToMap(rec.Input),
		Seq:          rec.Seq,
		CompletedSeq: rec.CompletedSeq,
		Pending:      !rec.Completed(),
	}
	if rec.Completed() {
		row.Output = irObjectToMap(rec.Output)
	}
	return row
}

// formatAnyMap renders a plain map the same way formatObject renders ir
// objects.
func formatAnyMap(m map[string]any) string {
	obj, err := ir.ObjectFromGo(m)
	if err != nil {
		return fmt.Sprintf("%v", m)
	}
	return formatObject(obj)
}
