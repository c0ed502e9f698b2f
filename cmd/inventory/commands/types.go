package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openfroyo/inventory/pkg/catalog"
	"github.com/openfroyo/inventory/pkg/engine"
)

// typeInfo describes one type of the universe.
type typeInfo struct {
	Type       engine.ResourceType   `json:"type"`
	Dependency engine.DependencyKind `json:"dependency"`
	Parent     engine.ResourceType   `json:"parent,omitempty"`
	Excluded   bool                  `json:"excluded,omitempty"`
	ExcludeGet bool                  `json:"exclude_get,omitempty"`
}

func newTypesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "types [TYPE...]",
		Short: "List the resource type universe",
		Long: `List the resource types a run would consider, with how each is enumerated.

Excluded types are prefixed with "// ".`,
		Example: `  # Every type of the CloudFormation registry
  inventory types

  # Machine readable
  inventory types --json`,
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
			infos := describeTypes(cat, universe)

			out := newPrinter(cmd.OutOrStdout(), jsonOutput)
			for _, info := range infos {
				switch {
				case info.Excluded:
					out.line("// %s", info.Type)
				case info.Parent != "":
					out.line("%s (child of %s)", info.Type, info.Parent)
				case info.Dependency != engine.DependencyNone:
					out.line("%s (%s)", info.Type, info.Dependency)
				default:
					out.line("%s", info.Type)
				}
			}
			return out.document(infos)
		},
	}

	return cmd
}

// describeTypes annotates the sorted universe with the catalog entries.
func describeTypes(cat engine.Catalog, universe []engine.ResourceType) []typeInfo {
	sorted := engine.SortTypes(append([]engine.ResourceType(nil), universe...))
	infos := make([]typeInfo, 0, len(sorted))
	for _, t := range sorted {
		dep := cat.DependencyOf(t)
		info := typeInfo{
			Type:       t,
			Dependency: dep.Kind(),
			Excluded:   cat.Exclusions.IsExcluded(t),
			ExcludeGet: cat.Exclusions.IsGetExcluded(t),
		}
		if p, ok := dep.(engine.ParentDependency); ok {
			info.Parent = p.Parent
		}
		infos = append(infos, info)
	}
	return infos
}
