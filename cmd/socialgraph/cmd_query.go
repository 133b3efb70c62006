// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/mbirochan/Social-Network-Graph/services/socialgraph/graph"
	"github.com/mbirochan/Social-Network-Graph/services/socialgraph/ingest"
	"github.com/spf13/cobra"
)

// =============================================================================
// COMMAND DEFINITIONS
// =============================================================================

func newStatsCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "stats FILE",
		Short: "Print vertex, edge and community counts",
		Long: `Build the graph from FILE and print its counts.

"Edge insertions" counts every accepted line, so duplicate and reciprocal
lines count again. "Distinct edges" counts each undirected pair once.

Examples:
  socialgraph stats dataset/facebook_combined.txt
  socialgraph stats dataset/facebook_combined.txt --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runStats(cmd, args[0], asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON for scripting")
	return cmd
}

func newNeighborsCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "neighbors FILE ID",
		Short: "List the friends of a user",
		Long: `List the direct neighbors of ID in ascending order.

An unknown ID has no neighbors; this is not an error.

Examples:
  socialgraph neighbors dataset/facebook_combined.txt 0`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[1])
			if err != nil {
				return err
			}
			return a.runNeighbors(cmd, args[0], id, asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON for scripting")
	return cmd
}

func newPathCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "path FILE FROM TO",
		Short: "Find a shortest friendship chain between two users",
		Long: `Find a minimal-hop path from FROM to TO using breadth-first search.

Among equally short paths, the one found first when neighbors are visited
in ascending ID order is printed.

Examples:
  socialgraph path dataset/facebook_combined.txt 0 4038
  socialgraph path dataset/facebook_combined.txt 0 4038 --json`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := parseID(args[1])
			if err != nil {
				return err
			}
			to, err := parseID(args[2])
			if err != nil {
				return err
			}
			return a.runPath(cmd, args[0], from, to, asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON for scripting")
	return cmd
}

func newRecommendCmd(a *app) *cobra.Command {
	var (
		asJSON   bool
		limit    int
		detailed bool
	)
	cmd := &cobra.Command{
		Use:   "recommend FILE ID",
		Short: "Suggest friends by mutual-friend count",
		Long: `Rank friends-of-friends of ID by how many friends they share with ID.

Ties are broken by ascending user ID.

Examples:
  socialgraph recommend dataset/facebook_combined.txt 0
  socialgraph recommend dataset/facebook_combined.txt 0 --limit 10 --detailed`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[1])
			if err != nil {
				return err
			}
			return a.runRecommend(cmd, args[0], id, limit, detailed, asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON for scripting")
	cmd.Flags().IntVar(&limit, "limit", graph.DefaultRecommendationLimit, "Maximum suggestions")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "Show the mutual friends of each suggestion")
	return cmd
}

func newCommunitiesCmd(a *app) *cobra.Command {
	var (
		asJSON  bool
		minSize int
	)
	cmd := &cobra.Command{
		Use:   "communities FILE",
		Short: "List connected components",
		Long: `Partition users into connected components.

Communities are listed in order of their smallest member; members are listed
in breadth-first discovery order.

Examples:
  socialgraph communities dataset/facebook_combined.txt
  socialgraph communities dataset/facebook_combined.txt --min-size 3 --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCommunities(cmd, args[0], minSize, asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON for scripting")
	cmd.Flags().IntVar(&minSize, "min-size", 1, "Hide communities smaller than this")
	return cmd
}

// =============================================================================
// COMMAND IMPLEMENTATIONS
// =============================================================================

func (a *app) load(ctx context.Context, path string) (*ingest.LoadResult, error) {
	return ingest.LoadFile(ctx, path, ingest.WithLogger(a.logger))
}

func (a *app) runStats(cmd *cobra.Command, path string, asJSON bool) error {
	result, err := a.load(cmd.Context(), path)
	if err != nil {
		return err
	}
	g := result.Graph
	communities := len(g.DetectCommunities())

	p := newPrinter(cmd.OutOrStdout(), asJSON)
	if p.json {
		return p.writeJSON(struct {
			graph.Stats
			Communities  int `json:"num_communities"`
			SkippedLines int `json:"skipped_lines"`
		}{g.Stats(), communities, result.Skipped})
	}

	p.title("Graph " + path)
	p.field("Vertices", count(g.VertexCount()))
	p.field("Edge insertions", count(g.EdgeInsertionCount()))
	p.field("Distinct edges", count(g.DistinctEdgeCount()))
	p.field("Communities", count(communities))
	p.field("Skipped lines", count(result.Skipped))
	return nil
}

func (a *app) runNeighbors(cmd *cobra.Command, path string, id graph.VertexID, asJSON bool) error {
	result, err := a.load(cmd.Context(), path)
	if err != nil {
		return err
	}
	neighbors := result.Graph.Neighbors(id)

	p := newPrinter(cmd.OutOrStdout(), asJSON)
	if p.json {
		return p.writeJSON(map[string]any{"user_id": id, "neighbors": neighbors})
	}

	p.title(fmt.Sprintf("Neighbors of %d", id))
	p.field("Count", count(len(neighbors)))
	p.field("IDs", idList(neighbors))
	return nil
}

func (a *app) runPath(cmd *cobra.Command, path string, from, to graph.VertexID, asJSON bool) error {
	result, err := a.load(cmd.Context(), path)
	if err != nil {
		return err
	}
	pr := result.Graph.PathBetween(from, to)

	p := newPrinter(cmd.OutOrStdout(), asJSON)
	if p.json {
		return p.writeJSON(pr)
	}

	p.title(fmt.Sprintf("Path %d → %d", from, to))
	if !pr.Found() {
		p.note("  no path")
		return nil
	}
	p.field("Hops", strconv.Itoa(pr.Length))
	p.field("Path", p.render(highlightStyle, pathString(pr.Path)))
	return nil
}

func (a *app) runRecommend(cmd *cobra.Command, path string, id graph.VertexID, limit int, detailed, asJSON bool) error {
	result, err := a.load(cmd.Context(), path)
	if err != nil {
		return err
	}
	recs := result.Graph.RecommendDetailed(id, limit)

	p := newPrinter(cmd.OutOrStdout(), asJSON)
	if p.json {
		return p.writeJSON(map[string]any{"user_id": id, "recommendations": recs})
	}

	p.title(fmt.Sprintf("Friend suggestions for %d", id))
	if len(recs) == 0 {
		p.note("  no suggestions")
		return nil
	}
	for i, rec := range recs {
		line := fmt.Sprintf("%2d. %d", i+1, rec.ID)
		fmt.Fprintf(p.w, "  %s %s\n", p.render(highlightStyle, line),
			p.render(mutedStyle, fmt.Sprintf("(%s mutual)", count(rec.Score))))
		if detailed {
			fmt.Fprintf(p.w, "      %s\n", idList(rec.MutualFriends))
		}
	}
	return nil
}

func (a *app) runCommunities(cmd *cobra.Command, path string, minSize int, asJSON bool) error {
	result, err := a.load(cmd.Context(), path)
	if err != nil {
		return err
	}
	all := result.Graph.DetectCommunities()
	shown := make([][]graph.VertexID, 0, len(all))
	for _, c := range all {
		if len(c) >= minSize {
			shown = append(shown, c)
		}
	}

	p := newPrinter(cmd.OutOrStdout(), asJSON)
	if p.json {
		return p.writeJSON(map[string]any{"communities": shown, "count": len(shown)})
	}

	p.title(fmt.Sprintf("%s communities", count(len(shown))))
	if hidden := len(all) - len(shown); hidden > 0 {
		p.note(fmt.Sprintf("  %s smaller than %d hidden", count(hidden), minSize))
	}
	for i, c := range shown {
		p.field(fmt.Sprintf("#%d (%s members)", i+1, count(len(c))), idList(c))
	}
	return nil
}

func parseID(raw string) (graph.VertexID, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid user ID %q: must be an integer", raw)
	}
	return graph.VertexID(id), nil
}
