package main

import (
	"context"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/nexus-kg/nexus/internal/graph"
)

func newMergeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "merge",
		Short: "physically merge alias entities into their canonical entity",
	}
	cmd.AddCommand(newMergeOneCmd())
	cmd.AddCommand(newMergeAllCmd())
	return cmd
}

func newMergeOneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "one <canonical> <alias>",
		Short: "merge a single alias into its canonical entity",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			idx, h, err := openIndex()
			if err != nil {
				fail(err)
			}
			defer h.Close()

			if err := idx.MergeAlias(context.Background(), args[0], args[1]); err != nil {
				fail(err)
			}
			if jsonOutput {
				printJSON(map[string]bool{"merged": true})
				return
			}
			fmt.Printf("merged %q into %q\n", args[1], args[0])
		},
	}
}

func newMergeAllCmd() *cobra.Command {
	var interactive bool
	cmd := &cobra.Command{
		Use:   "all <canonical>",
		Short: "merge every alias of an entity",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			idx, h, err := openIndex()
			if err != nil {
				fail(err)
			}
			defer h.Close()

			ctx := context.Background()
			result, err := idx.MergeAllAliases(ctx, args[0], graph.SkipOnConflict)
			if err != nil {
				fail(err)
			}

			if interactive && len(result.Skipped) > 0 {
				resolveSkippedInteractively(ctx, idx, args[0], result)
			}

			if jsonOutput {
				printJSON(result)
				return
			}
			fmt.Printf("merged %d aliases\n", len(result.Merged))
			for _, s := range result.Skipped {
				fmt.Printf("skipped %q: %s\n", s.Alias, s.Reason)
			}
		},
	}
	cmd.Flags().BoolVar(&interactive, "interactive", false, "prompt per skipped alias for how to resolve it")
	return cmd
}

// resolveSkippedInteractively offers an operator a per-alias choice for each
// merge MergeAllAliases skipped, letting them retry (surfacing the error),
// skip permanently, or abort the whole operation.
func resolveSkippedInteractively(ctx context.Context, idx *graph.Index, canonical string, result *graph.MergeAllResult) {
	for _, skipped := range result.Skipped {
		var choice string
		form := huh.NewForm(huh.NewGroup(
			huh.NewSelect[string]().
				Title(fmt.Sprintf("alias %q failed to merge: %s", skipped.Alias, skipped.Reason)).
				Options(
					huh.NewOption("skip (leave unmerged)", "skip"),
					huh.NewOption("retry and surface the error", "retry-as-error"),
					huh.NewOption("abort remaining merges", "abort"),
				).
				Value(&choice),
		))
		if err := form.Run(); err != nil {
			fail(err)
		}

		switch choice {
		case "retry-as-error":
			if err := idx.MergeAlias(ctx, canonical, skipped.Alias); err != nil {
				fail(err)
			}
		case "abort":
			return
		}
	}
}
