package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

func newDumpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "bulk-export the graph",
	}
	cmd.AddCommand(newDumpRelationshipsCmd())
	cmd.AddCommand(newDumpClaimsCmd())
	return cmd
}

func newDumpRelationshipsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "relationships",
		Short: "dump every relationship with resolved endpoint names",
		Run: func(cmd *cobra.Command, args []string) {
			idx, h, err := openIndex()
			if err != nil {
				fail(err)
			}
			defer h.Close()

			recs, err := idx.DumpAllRelationships(context.Background())
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
}

func newDumpClaimsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "claims",
		Short: "dump every claim in the graph",
		Run: func(cmd *cobra.Command, args []string) {
			idx, h, err := openIndex()
			if err != nil {
				fail(err)
			}
			defer h.Close()

			claims, err := idx.DumpAllClaims(context.Background())
			if err != nil {
				fail(err)
			}
			if jsonOutput {
				printJSON(claims)
				return
			}
			t := table.New().Headers("id", "content", "source")
			for _, c := range claims {
				src := ""
				if c.Source != nil {
					src = *c.Source
				}
				t.Row(fmt.Sprintf("%d", c.ID), c.Content, src)
			}
			fmt.Println(t)
		},
	}
}
