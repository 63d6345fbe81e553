package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lukehollis/sync-physics/internal/ruledef"
)

// RuleSummary describes one compiled rule for validate output.
type RuleSummary struct {
	Name  string `json:"name"`
	When  int    `json:"when"`
	Where int    `json:"where"`
	Then  int    `json:"then"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <rules-dir>",
		Short: "Compile a directory of rule files and report errors",
		Long: `Compile every CUE rule file in a directory without running
anything. Compile errors are reported with file positions.

Examples:
  syncphysics validate ./rules
  syncphysics validate ./rules --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, cmd, args[0])
		},
	}
}

func runValidate(opts *RootOptions, cmd *cobra.Command, dir string) error {
	defs, err := ruledef.LoadDir(dir)
	if err != nil {
		return WrapExitError(ExitCommandError, fmt.Sprintf("validation failed for %s", dir), err)
	}

	summaries := make([]RuleSummary, len(defs))
	for i, def := range defs {
		summaries[i] = RuleSummary{
			Name:  def.Name,
			When:  len(def.When),
			Where: len(def.Where),
			Then:  len(def.Then),
		}
	}

	w := cmd.OutOrStdout()
	if opts.Format == "json" {
		return writeJSON(w, map[string]any{
			"rules_dir": dir,
			"rules":     summaries,
		})
	}

	fmt.Fprintf(w, "OK: %d rule(s) in %s\n", len(summaries), dir)
	for _, s := range summaries {
		fmt.Fprintf(w, "  %s (when=%d where=%d then=%d)\n", s.Name, s.When, s.Where, s.Then)
	}
	return nil
}
