package main

import (
	"context"
	"fmt"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/nexus-kg/nexus/internal/graph"
)

func newClaimCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "claim",
		Short: "attach and inspect claims on entities and relationships",
	}
	cmd.AddCommand(newClaimAddCmd())
	cmd.AddCommand(newClaimListCmd())
	return cmd
}

func newClaimAddCmd() *cobra.Command {
	var entity, relSource, relTarget, source, claimDate string
	var strength float64
	var directed bool

	cmd := &cobra.Command{
		Use:   "add <content>",
		Short: "attach a claim to an entity or a relationship",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			idx, h, err := openIndex()
			if err != nil {
				fail(err)
			}
			defer h.Close()

			var owner graph.ClaimOwner
			switch {
			case entity != "":
				owner = graph.EntityOwner(entity)
			case relSource != "" && relTarget != "":
				owner = graph.RelationshipOwner(relSource, relTarget, strength, directed)
			default:
				fail(fmt.Errorf("must specify --entity or both --source and --target"))
			}

			var sourcePtr, datePtr *string
			if source != "" {
				sourcePtr = &source
			}
			if claimDate != "" {
				datePtr = &claimDate
			}

			id, err := idx.UpsertClaim(context.Background(), args[0], sourcePtr, owner, datePtr)
			if err != nil {
				fail(err)
			}
			if jsonOutput {
				printJSON(map[string]any{"id": id})
				return
			}
			fmt.Printf("added claim (id=%d)\n", id)
		},
	}
	cmd.Flags().StringVar(&entity, "entity", "", "attach to this entity")
	cmd.Flags().StringVar(&relSource, "source", "", "relationship source entity")
	cmd.Flags().StringVar(&relTarget, "target", "", "relationship target entity")
	cmd.Flags().Float64Var(&strength, "strength", 1.0, "relationship strength, if attaching to a relationship")
	cmd.Flags().BoolVar(&directed, "directed", false, "relationship directedness, if attaching to a relationship")
	cmd.Flags().StringVar(&source, "claim-source", "", "provenance of the claim")
	cmd.Flags().StringVar(&claimDate, "date", "", "claim date (ISO-8601 or natural language)")
	return cmd
}

func newClaimListCmd() *cobra.Command {
	var relTarget string
	var render bool
	cmd := &cobra.Command{
		Use:   "list <entity>",
		Short: "list claims for an entity, or pass --target for a relationship's claims",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			idx, h, err := openIndex()
			if err != nil {
				fail(err)
			}
			defer h.Close()

			ctx := context.Background()
			var claims []graph.Claim
			if relTarget != "" {
				claims, err = idx.LoadRelationshipClaims(ctx, args[0], relTarget, nil)
			} else {
				claims, err = idx.LoadEntityClaims(ctx, args[0])
			}
			if err != nil {
				fail(err)
			}

			if jsonOutput {
				printJSON(claims)
				return
			}

			if render {
				for _, c := range claims {
					rendered, err := glamour.Render(c.Content, "dark")
					if err != nil {
						fmt.Println(c.Content)
						continue
					}
					fmt.Println(rendered)
				}
				return
			}

			t := table.New().Headers("id", "content", "source", "claim_date")
			for _, c := range claims {
				src, date := "", ""
				if c.Source != nil {
					src = *c.Source
				}
				if c.ClaimDate != nil {
					date = *c.ClaimDate
				}
				t.Row(fmt.Sprintf("%d", c.ID), c.Content, src, date)
			}
			fmt.Println(t)
		},
	}
	cmd.Flags().StringVar(&relTarget, "target", "", "list claims on the relationship between <entity> and this target instead")
	cmd.Flags().BoolVar(&render, "render", false, "render markdown-flavored claim content")
	return cmd
}
