package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/BitWorks/xbrlstudio/internal/filing"
	"github.com/BitWorks/xbrlstudio/internal/store"
)

// NewEntitiesCommand creates the entities command, printing the entity
// forest with children indented under their parents.
func NewEntitiesCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "entities",
		Short: "List the entity tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, closeStore, err := openManager(cmd, opts)
			if err != nil {
				return err
			}
			defer closeStore()

			entities, err := m.EntityTree(cmd.Context())
			if err != nil {
				return err
			}
			if len(entities) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no entities")
				return nil
			}

			printEntityForest(cmd, entities)
			return nil
		},
	}
	return cmd
}

// printEntityForest renders the parent/child forest. Entities whose
// parent is unknown (dangling parent_cik) are shown as roots rather
// than dropped.
func printEntityForest(cmd *cobra.Command, entities []store.Entity) {
	known := make(map[int]bool, len(entities))
	for _, e := range entities {
		known[e.CIK] = true
	}

	children := make(map[int][]store.Entity)
	var roots []store.Entity
	for _, e := range entities {
		if e.ParentCIK == nil || !known[*e.ParentCIK] {
			roots = append(roots, e)
			continue
		}
		children[*e.ParentCIK] = append(children[*e.ParentCIK], e)
	}

	var walk func(e store.Entity, depth int, seen map[int]bool)
	walk = func(e store.Entity, depth int, seen map[int]bool) {
		if seen[e.CIK] {
			return
		}
		seen[e.CIK] = true
		for i := 0; i < depth; i++ {
			fmt.Fprint(cmd.OutOrStdout(), "  ")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", filing.FormatCIK(e.CIK), e.Name)
		kids := children[e.CIK]
		sort.Slice(kids, func(i, j int) bool { return kids[i].CIK < kids[j].CIK })
		for _, kid := range kids {
			walk(kid, depth+1, seen)
		}
	}

	seen := make(map[int]bool)
	sort.Slice(roots, func(i, j int) bool { return roots[i].CIK < roots[j].CIK })
	for _, root := range roots {
		walk(root, 0, seen)
	}
}

// NewRenameCommand creates the rename command.
func NewRenameCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rename <cik> <new-name>",
		Short: "Rename an entity",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cik, ok := filing.ParseCIK(args[0])
			if !ok {
				return fmt.Errorf("invalid cik %q", args[0])
			}

			m, closeStore, err := openManager(cmd, opts)
			if err != nil {
				return err
			}
			defer closeStore()

			return m.RenameEntity(cmd.Context(), cik, args[1])
		},
	}
	return cmd
}

// NewReparentCommand creates the reparent command, rewiring an entity
// under a new parent or making it a root.
func NewReparentCommand(opts *RootOptions) *cobra.Command {
	var root bool

	cmd := &cobra.Command{
		Use:   "reparent <child-cik> [parent-cik]",
		Short: "Move an entity under a new parent (--root detaches it)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			child, ok := filing.ParseCIK(args[0])
			if !ok {
				return fmt.Errorf("invalid cik %q", args[0])
			}

			var parent *int
			switch {
			case root:
				if len(args) == 2 {
					return fmt.Errorf("--root and a parent cik are mutually exclusive")
				}
			case len(args) == 2:
				p, ok := filing.ParseCIK(args[1])
				if !ok {
					return fmt.Errorf("invalid parent cik %q", args[1])
				}
				parent = &p
			default:
				return fmt.Errorf("supply a parent cik or --root")
			}

			m, closeStore, err := openManager(cmd, opts)
			if err != nil {
				return err
			}
			defer closeStore()

			updated, err := m.UpdateParent(cmd.Context(), child, parent)
			if err != nil {
				return err
			}
			if !updated {
				return fmt.Errorf("unknown cik %d", child)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&root, "root", false, "make the entity a root")
	return cmd
}
