// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Command graphdemo drives the frame graph core through the two named
// scenarios from spec.md §8 — a trivial pass-through and a feedback
// accumulator with a delay-1 self-loop — against the in-memory fakehal
// backend, for manual inspection of build/run behavior without a real GPU.
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/gogpu/framegraph/graph"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)
	graph.SetLogger(logger)

	root := &cobra.Command{
		Use:   "graphdemo",
		Short: "Runs frame graph core demo scenarios against the fake hal backend",
	}
	root.AddCommand(passthroughCommand())
	root.AddCommand(feedbackCommand())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func passthroughCommand() *cobra.Command {
	var iterations int
	var ringSize uint32
	cmd := &cobra.Command{
		Use:   "passthrough",
		Short: "Runs a two-node source->sink graph for a number of iterations",
		RunE: func(cmd *cobra.Command, args []string) error {
			env := newDemoEnv()
			env.registry.Register("source", func(map[string]any) (graph.Node, error) { return &sourceNode{}, nil })
			env.registry.Register("sink", func(map[string]any) (graph.Node, error) { return &sinkNode{}, nil })

			desc := graph.NewGraphDescription()
			if _, err := desc.AddNode(graph.NodeDesc{Identifier: "src", TypeTag: "source", LinearizationOrder: 0}); err != nil {
				return err
			}
			if _, err := desc.AddNode(graph.NodeDesc{Identifier: "dst", TypeTag: "sink", LinearizationOrder: 1}); err != nil {
				return err
			}
			if err := desc.AddConnection(graph.EdgeDesc{SrcNode: "src", SrcOutput: "frame", DstNode: "dst", DstInput: "frame"}); err != nil {
				return err
			}

			return runScenario(env, desc, ringSize, iterations)
		},
	}
	cmd.Flags().IntVar(&iterations, "iterations", 5, "number of RunOnce iterations to drive")
	cmd.Flags().Uint32Var(&ringSize, "ring-size", 2, "number of in-flight ring slots")
	return cmd
}

func feedbackCommand() *cobra.Command {
	var iterations int
	var ringSize uint32
	cmd := &cobra.Command{
		Use:   "feedback",
		Short: "Runs a single self-loop accumulator node for a number of iterations",
		RunE: func(cmd *cobra.Command, args []string) error {
			env := newDemoEnv()
			env.registry.Register("accumulator", func(map[string]any) (graph.Node, error) { return &accumulatorNode{}, nil })

			desc := graph.NewGraphDescription()
			if _, err := desc.AddNode(graph.NodeDesc{Identifier: "acc", TypeTag: "accumulator"}); err != nil {
				return err
			}
			if err := desc.AddConnection(graph.EdgeDesc{SrcNode: "acc", SrcOutput: "total", DstNode: "acc", DstInput: "prev", Delay: 1}); err != nil {
				return err
			}

			return runScenario(env, desc, ringSize, iterations)
		},
	}
	cmd.Flags().IntVar(&iterations, "iterations", 5, "number of RunOnce iterations to drive")
	cmd.Flags().Uint32Var(&ringSize, "ring-size", 2, "number of in-flight ring slots (must exceed the feedback delay)")
	return cmd
}
