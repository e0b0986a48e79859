package main

import (
	"context"
	"fmt"

	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

func newEntityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "entity",
		Short: "manage canonical entities",
	}
	cmd.AddCommand(newEntityUpsertCmd())
	cmd.AddCommand(newEntityListCmd())
	cmd.AddCommand(newEntityExistsCmd())
	cmd.AddCommand(newEntityShowCmd())
	return cmd
}

func newEntityUpsertCmd() *cobra.Command {
	var entityType string
	cmd := &cobra.Command{
		Use:   "upsert <name>",
		Short: "create or update an entity",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			idx, h, err := openIndex()
			if err != nil {
				fail(err)
			}
			defer h.Close()

			var typePtr *string
			if entityType != "" {
				typePtr = &entityType
			}
			id, err := idx.UpsertEntity(context.Background(), args[0], typePtr)
			if err != nil {
				fail(err)
			}
			if jsonOutput {
				printJSON(map[string]any{"id": id, "name": args[0]})
				return
			}
			fmt.Printf("upserted entity %q (id=%d)\n", args[0], id)
		},
	}
	cmd.Flags().StringVar(&entityType, "type", "", "entity type")
	return cmd
}

func newEntityListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "list all canonical entity names",
		Run: func(cmd *cobra.Command, args []string) {
			idx, h, err := openIndex()
			if err != nil {
				fail(err)
			}
			defer h.Close()

			names, err := idx.ListAllEntities(context.Background())
			if err != nil {
				fail(err)
			}
			if jsonOutput {
				printJSON(names)
				return
			}

			t := table.New().Headers("entity")
			for _, n := range names {
				t.Row(n)
			}
			fmt.Println(t)
		},
	}
}

func newEntityShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "print the full entity record (exact match, no alias resolution)",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			idx, h, err := openIndex()
			if err != nil {
				fail(err)
			}
			defer h.Close()

			e, err := idx.GetEntity(context.Background(), args[0])
			if err != nil {
				fail(err)
			}
			if jsonOutput {
				printJSON(e)
				return
			}

			entityType := "-"
			if e.EntityType != nil {
				entityType = *e.EntityType
			}
			t := table.New().Headers("id", "name", "type", "date_added")
			t.Row(fmt.Sprint(e.ID), e.Name, entityType, e.DateAdded)
			fmt.Println(t)
		},
	}
}

func newEntityExistsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "exists <name>",
		Short: "check whether an entity exists (exact match, no alias resolution)",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			idx, h, err := openIndex()
			if err != nil {
				fail(err)
			}
			defer h.Close()

			exists, err := idx.EntityExists(context.Background(), args[0])
			if err != nil {
				fail(err)
			}
			if jsonOutput {
				printJSON(map[string]bool{"exists": exists})
				return
			}
			fmt.Println(exists)
		},
	}
}
