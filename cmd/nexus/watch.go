package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/nexus-kg/nexus/internal/extract"
)

// tupleFile is the on-disk shape watch expects: a JSON array of extracted
// tuples dropped into the watched directory by some upstream producer.
type tupleFile struct {
	Source   string          `json:"source"`
	Relation string          `json:"relation"`
	Target   string          `json:"target"`
	Strength float64         `json:"strength"`
	Directed bool            `json:"directed"`
	Claim    *tupleFileClaim `json:"claim,omitempty"`
}

type tupleFileClaim struct {
	Content   string  `json:"content"`
	Source    *string `json:"source,omitempty"`
	ClaimDate *string `json:"claim_date,omitempty"`
}

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch <directory>",
		Short: "watch a directory for extracted-tuple JSON files and ingest them as they land",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			idx, h, err := openIndex()
			if err != nil {
				fail(err)
			}
			defer h.Close()

			watcher, err := fsnotify.NewWatcher()
			if err != nil {
				fail(err)
			}
			defer watcher.Close()

			if err := watcher.Add(args[0]); err != nil {
				fail(err)
			}

			builder := extract.NewBuilder(idx)
			fmt.Printf("watching %s for extracted-tuple files (ctrl-c to stop)\n", args[0])

			for {
				select {
				case event, ok := <-watcher.Events:
					if !ok {
						return
					}
					if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
						continue
					}
					if err := ingestTupleFile(context.Background(), builder, event.Name); err != nil {
						fmt.Fprintf(os.Stderr, "ingest %s: %v\n", event.Name, err)
					}
				case err, ok := <-watcher.Errors:
					if !ok {
						return
					}
					fmt.Fprintf(os.Stderr, "watch error: %v\n", err)
				}
			}
		},
	}
}

func ingestTupleFile(ctx context.Context, builder *extract.Builder, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var files []tupleFile
	if err := json.Unmarshal(data, &files); err != nil {
		return err
	}

	tuples := make(chan extract.Tuple, len(files))
	for _, f := range files {
		t := extract.Tuple{
			Source:   f.Source,
			Relation: f.Relation,
			Target:   f.Target,
			Strength: f.Strength,
			Directed: f.Directed,
		}
		if f.Claim != nil {
			t.Claim = &extract.ClaimInput{
				Content:   f.Claim.Content,
				Source:    f.Claim.Source,
				ClaimDate: f.Claim.ClaimDate,
			}
		}
		tuples <- t
	}
	close(tuples)

	stats, err := builder.Ingest(ctx, tuples)
	if err != nil {
		return err
	}
	fmt.Printf("%s: ingested %d tuples (%d rerouted)\n", path, stats.Ingested, stats.Rerouted)
	return nil
}
