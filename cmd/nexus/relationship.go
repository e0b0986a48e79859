package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

func newRelationshipCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "relationship",
		Aliases: []string{"rel"},
		Short:   "manage relationships between entities",
	}
	cmd.AddCommand(newRelationshipUpsertCmd())
	cmd.AddCommand(newRelationshipListCmd())
	return cmd
}

func newRelationshipUpsertCmd() *cobra.Command {
	var strength float64
	var directed bool
	cmd := &cobra.Command{
		Use:   "upsert <source> <target>",
		Short: "create or update an edge between two entities",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			idx, h, err := openIndex()
			if err != nil {
				fail(err)
			}
			defer h.Close()

			id, err := idx.UpsertRelationship(context.Background(), args[0], args[1], strength, directed)
			if err != nil {
				fail(err)
			}
			if jsonOutput {
				printJSON(map[string]any{"id": id})
				return
			}
			fmt.Printf("upserted relationship %s-%s (id=%d, strength=%s, directed=%t)\n",
				args[0], args[1], id, strconv.FormatFloat(strength, 'f', -1, 64), directed)
		},
	}
	cmd.Flags().Float64Var(&strength, "strength", 1.0, "edge strength")
	cmd.Flags().BoolVar(&directed, "directed", false, "whether the edge is directed source->target")
	return cmd
}

func newRelationshipListCmd() *cobra.Command {
	var minStrength float64
	var hasMin bool
	cmd := &cobra.Command{
		Use:   "list <entity>",
		Short: "list relationships incident on an entity",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			idx, h, err := openIndex()
			if err != nil {
				fail(err)
			}
			defer h.Close()

			var minPtr *float64
			if hasMin {
				minPtr = &minStrength
			}
			recs, err := idx.LoadRelationships(context.Background(), args[0], minPtr, nil)
			if err != nil {
				fail(err)
			}
			if jsonOutput {
				printJSON(recs)
				return
			}

			t := table.New().Headers("source", "target", "strength", "directed")
			for _, r := range recs {
				t.Row(r.SourceName, r.TargetName, strconv.FormatFloat(r.Strength, 'f', -1, 64), strconv.FormatBool(r.Directed))
			}
			fmt.Println(t)
		},
	}
	cmd.Flags().Float64Var(&minStrength, "min-strength", 0, "only relationships at or above this strength")
	cmd.Flags().BoolVar(&hasMin, "filter-strength", false, "apply the --min-strength filter")
	return cmd
}
