package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nexus-kg/nexus/internal/traverse"
)

func newTraverseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "traverse",
		Short: "walk the graph in memory (BFS/DFS/weighted reach/shortest path)",
	}
	cmd.AddCommand(newTraverseBFSCmd())
	cmd.AddCommand(newTraverseWalkCmd())
	cmd.AddCommand(newTraversePathCmd())
	return cmd
}

func newTraverseBFSCmd() *cobra.Command {
	var depth int
	cmd := &cobra.Command{
		Use:   "bfs <start>",
		Short: "breadth-first reachable set within --depth hops",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			idx, h, err := openIndex()
			if err != nil {
				fail(err)
			}
			defer h.Close()

			ctx := context.Background()
			eng, err := traverse.NewEngine(ctx, idx)
			if err != nil {
				fail(err)
			}
			nodes := eng.BFS(args[0], depth)
			if jsonOutput {
				printJSON(nodes)
				return
			}
			for _, n := range nodes {
				fmt.Println(n)
			}
		},
	}
	cmd.Flags().IntVar(&depth, "depth", 2, "maximum hop count")
	return cmd
}

func newTraverseWalkCmd() *cobra.Command {
	var depth int
	cmd := &cobra.Command{
		Use:   "walk <start>",
		Short: "weighted multi-hop reachability (max product of edge strengths)",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			idx, h, err := openIndex()
			if err != nil {
				fail(err)
			}
			defer h.Close()

			ctx := context.Background()
			eng, err := traverse.NewEngine(ctx, idx)
			if err != nil {
				fail(err)
			}
			scores := eng.Walk(args[0], depth)
			if jsonOutput {
				printJSON(scores)
				return
			}
			for node, score := range scores {
				fmt.Printf("%s\t%.4f\n", node, score)
			}
		},
	}
	cmd.Flags().IntVar(&depth, "depth", 3, "maximum hop count")
	return cmd
}

func newTraversePathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path <start> <end>",
		Short: "shortest path by edge strength-as-cost",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			idx, h, err := openIndex()
			if err != nil {
				fail(err)
			}
			defer h.Close()

			ctx := context.Background()
			eng, err := traverse.NewEngine(ctx, idx)
			if err != nil {
				fail(err)
			}
			path, cost, err := eng.ShortestPath(args[0], args[1])
			if err != nil {
				fail(err)
			}
			if jsonOutput {
				printJSON(map[string]any{"path": path, "cost": cost})
				return
			}
			fmt.Println(path)
			fmt.Printf("cost: %.4f\n", cost)
		},
	}
}
