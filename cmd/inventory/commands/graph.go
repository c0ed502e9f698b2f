package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/openfroyo/inventory/pkg/catalog"
	"github.com/openfroyo/inventory/pkg/engine"
)

// graphReport is the JSON output of the graph command.
type graphReport struct {
	DOT         string                  `json:"dot"`
	Cycles      [][]engine.ResourceType `json:"cycles,omitempty"`
	Unreachable []engine.ResourceType   `json:"unreachable,omitempty"`
}

func newGraphCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph [TYPE...]",
		Short: "Print the dependency graph of the universe",
		Long: `Print the dependency graph of the universe in DOT format.

Cycles and the types they make unreachable are reported as comments after the
graph; such types are skipped by a run.`,
		Example: `  # Render with graphviz
  inventory graph | dot -Tsvg > graph.svg`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			env, cleanup, err := setup(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			universe, err := universeFor(ctx, env, args)
			if err != nil {
				return fmt.Errorf("failed to list resource types: %w", err)
			}

			cat := catalog.Merge(catalog.Default(), env.cfg.Overrides())
			graph := engine.BuildGraph(universe, cat.Dependencies)

			report := graphReport{
				DOT:         graph.ToDOT(),
				Cycles:      graph.Cycles(),
				Unreachable: graph.Unreachable(),
			}

			out := newPrinter(cmd.OutOrStdout(), jsonOutput)
			out.line("%s", strings.TrimSuffix(report.DOT, "\n"))
			for _, cycle := range report.Cycles {
				env.logger.Warn().Str("cycle", joinTypes(cycle, " -> ")).Msg("Dependency cycle")
				out.line("// cycle: %s", joinTypes(cycle, " -> "))
			}
			if len(report.Unreachable) > 0 {
				out.line("// unreachable: %s", joinTypes(report.Unreachable, ", "))
			}
			return out.document(report)
		},
	}

	return cmd
}

func joinTypes(types []engine.ResourceType, sep string) string {
	parts := make([]string, len(types))
	for i, t := range types {
		parts[i] = string(t)
	}
	return strings.Join(parts, sep)
}
