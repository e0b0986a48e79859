// Command nexus is a CLI over the knowledge-graph index: entities, aliases,
// relationships, and claims, plus traversal and merge tooling.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/nexus-kg/nexus/internal/db"
	"github.com/nexus-kg/nexus/internal/graph"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"

	dbPath     string
	jsonOutput bool

	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "nexus",
		Short: "Knowledge-graph store: entities, aliases, relationships, claims",
	}

	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "path to the graph database (defaults to the configured data directory)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output structured JSON instead of tables")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "print version info",
		Run: func(cmd *cobra.Command, args []string) {
			if jsonOutput {
				printJSON(map[string]string{"version": version, "commit": commit, "date": buildDate})
				return
			}
			fmt.Printf("nexus %s (%s, %s)\n", version, commit, buildDate)
		},
	})

	rootCmd.AddCommand(newEntityCmd())
	rootCmd.AddCommand(newAliasCmd())
	rootCmd.AddCommand(newRelationshipCmd())
	rootCmd.AddCommand(newClaimCmd())
	rootCmd.AddCommand(newMergeCmd())
	rootCmd.AddCommand(newDeleteCmd())
	rootCmd.AddCommand(newDumpCmd())
	rootCmd.AddCommand(newTraverseCmd())
	rootCmd.AddCommand(newWatchCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func openIndex() (*graph.Index, *db.Handle, error) {
	var h *db.Handle
	var err error
	if dbPath != "" {
		h, err = db.Open(dbPath)
	} else {
		h, err = db.OpenDefault()
	}
	if err != nil {
		return nil, nil, err
	}
	return graph.New(h), h, nil
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(v)
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, errorStyle.Render("error: "+err.Error()))
	os.Exit(1)
}

func section(title string) {
	fmt.Println(headerStyle.Render(title))
}
