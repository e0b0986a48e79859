package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nexus-kg/nexus/internal/graph"
)

func newDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "delete entities, relationships, aliases, or claims",
	}
	cmd.AddCommand(newDeleteEntityCmd())
	cmd.AddCommand(newDeleteRelationshipCmd())
	cmd.AddCommand(newDeleteAliasCmd())
	cmd.AddCommand(newDeleteClaimCmd())
	cmd.AddCommand(newDropCmd())
	return cmd
}

func newDeleteEntityCmd() *cobra.Command {
	var cascade bool
	cmd := &cobra.Command{
		Use:   "entity <name>",
		Short: "delete a canonical entity",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			idx, h, err := openIndex()
			if err != nil {
				fail(err)
			}
			defer h.Close()

			if err := idx.DeleteEntity(context.Background(), args[0], cascade); err != nil {
				fail(err)
			}
			fmt.Printf("deleted entity %q\n", args[0])
		},
	}
	cmd.Flags().BoolVar(&cascade, "cascade", true, "delete dependent relationships and claims too")
	return cmd
}

func newDeleteRelationshipCmd() *cobra.Command {
	var cascade, directed, hasDirected bool
	cmd := &cobra.Command{
		Use:   "relationship <source> <target>",
		Short: "delete relationships between two entities",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			idx, h, err := openIndex()
			if err != nil {
				fail(err)
			}
			defer h.Close()

			var directedPtr *bool
			if hasDirected {
				directedPtr = &directed
			}
			if err := idx.DeleteRelationship(context.Background(), args[0], args[1], directedPtr, cascade); err != nil {
				fail(err)
			}
			fmt.Printf("deleted relationship(s) between %q and %q\n", args[0], args[1])
		},
	}
	cmd.Flags().BoolVar(&cascade, "cascade", true, "delete dependent claims too")
	cmd.Flags().BoolVar(&directed, "directed", false, "restrict to directed (or undirected) edges only")
	cmd.Flags().BoolVar(&hasDirected, "filter-directed", false, "apply the --directed filter")
	return cmd
}

func newDeleteAliasCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "alias <entity> <alias>",
		Short: "delete an alias mapping",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			idx, h, err := openIndex()
			if err != nil {
				fail(err)
			}
			defer h.Close()

			if err := idx.DeleteAlias(context.Background(), args[0], args[1]); err != nil {
				fail(err)
			}
			fmt.Printf("deleted alias %q\n", args[1])
		},
	}
}

func newDeleteClaimCmd() *cobra.Command {
	var entity, relSource, relTarget, source, content, dateFrom, dateTo string
	cmd := &cobra.Command{
		Use:   "claim",
		Short: "delete claims matching a filter",
		Run: func(cmd *cobra.Command, args []string) {
			idx, h, err := openIndex()
			if err != nil {
				fail(err)
			}
			defer h.Close()

			filter := graph.ClaimFilter{
				Mode:               graph.FilterExact,
				EntityName:         entity,
				RelationshipSource: relSource,
				RelationshipTarget: relTarget,
				Source:             source,
				Content:            content,
				DateFrom:           dateFrom,
				DateTo:             dateTo,
			}
			if err := idx.DeleteClaim(context.Background(), filter); err != nil {
				fail(err)
			}
			fmt.Println("deleted matching claims")
		},
	}
	cmd.Flags().StringVar(&entity, "entity", "", "filter by entity")
	cmd.Flags().StringVar(&relSource, "source", "", "filter by relationship source")
	cmd.Flags().StringVar(&relTarget, "target", "", "filter by relationship target")
	cmd.Flags().StringVar(&source, "claim-source", "", "filter by claim provenance")
	cmd.Flags().StringVar(&content, "content", "", "filter by exact content")
	cmd.Flags().StringVar(&dateFrom, "date-from", "", "filter: date_added range start")
	cmd.Flags().StringVar(&dateTo, "date-to", "", "filter: date_added range end")
	return cmd
}

func newDropCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "all",
		Short: "wipe the entire graph",
		Run: func(cmd *cobra.Command, args []string) {
			idx, h, err := openIndex()
			if err != nil {
				fail(err)
			}
			defer h.Close()

			if err := idx.Drop(context.Background()); err != nil {
				fail(err)
			}
			fmt.Println("graph dropped")
		},
	}
}
