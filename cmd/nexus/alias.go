package main

import (
	"context"
	"fmt"

	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

func newAliasCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alias",
		Short: "manage entity aliases",
	}
	cmd.AddCommand(newAliasAddCmd())
	cmd.AddCommand(newAliasListCmd())
	cmd.AddCommand(newAliasResolveCmd())
	cmd.AddCommand(newAliasShowCmd())
	return cmd
}

func newAliasAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <entity> <alias>",
		Short: "map alias to entity",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			idx, h, err := openIndex()
			if err != nil {
				fail(err)
			}
			defer h.Close()

			id, err := idx.UpsertAlias(context.Background(), args[0], args[1])
			if err != nil {
				fail(err)
			}
			if jsonOutput {
				printJSON(map[string]any{"id": id})
				return
			}
			fmt.Printf("mapped alias %q -> %q\n", args[1], args[0])
		},
	}
}

func newAliasListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <entity>",
		Short: "list aliases for an entity",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			idx, h, err := openIndex()
			if err != nil {
				fail(err)
			}
			defer h.Close()

			aliases, err := idx.LoadAliases(context.Background(), args[0])
			if err != nil {
				fail(err)
			}
			if jsonOutput {
				printJSON(aliases)
				return
			}
			t := table.New().Headers("alias")
			for _, a := range aliases {
				t.Row(a)
			}
			fmt.Println(t)
		},
	}
}

func newAliasShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <alias>",
		Short: "print the full alias record (id, owning entity id, date mapped)",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			idx, h, err := openIndex()
			if err != nil {
				fail(err)
			}
			defer h.Close()

			a, err := idx.GetAliasRecord(context.Background(), args[0])
			if err != nil {
				fail(err)
			}
			if jsonOutput {
				printJSON(a)
				return
			}
			t := table.New().Headers("id", "entity_id", "alias", "date_added")
			t.Row(fmt.Sprint(a.ID), fmt.Sprint(a.EntityID), a.Alias, a.DateAdded)
			fmt.Println(t)
		},
	}
}

func newAliasResolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <name>",
		Short: "resolve a name to its canonical entity",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			idx, h, err := openIndex()
			if err != nil {
				fail(err)
			}
			defer h.Close()

			canonical, err := idx.ResolveAlias(context.Background(), args[0])
			if err != nil {
				fail(err)
			}
			if jsonOutput {
				printJSON(map[string]string{"canonical": canonical})
				return
			}
			fmt.Println(canonical)
		},
	}
}
