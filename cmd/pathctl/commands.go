package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/vanshika/graphpath/internal/config"
	"github.com/vanshika/graphpath/internal/domain"
	"github.com/vanshika/graphpath/internal/generator"
	"github.com/vanshika/graphpath/internal/graph"
	"github.com/vanshika/graphpath/internal/logging"
	"github.com/vanshika/graphpath/internal/memstore"
	"github.com/vanshika/graphpath/internal/repository"
	"github.com/vanshika/graphpath/internal/service"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "pathctl",
		Short:         "Inspect and run segmented shortest-path resolutions",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newPlanCmd(), newResolveCmd())
	return root
}

func newPlanCmd() *cobra.Command {
	var (
		length int
		maxHop int
	)
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Print the chunk plan for a path length",
		Long: `Split a total path length into chunks no longer than the hop cap.

Examples:
  pathctl plan --length 47
  pathctl plan --length 47 --max-hop 10`,
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := service.PlanChunks(length, maxHop, 0)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, chunk := range plan {
				fmt.Fprintf(out, "segment %d: %d hops\n", chunk.Index, chunk.HopCount)
			}
			fmt.Fprintf(out, "total: %d hops in %d segments\n", plan.TotalHops(), len(plan))
			return nil
		},
	}
	cmd.Flags().IntVar(&length, "length", 0, "total path length in hops")
	cmd.Flags().IntVar(&maxHop, "max-hop", 20, "largest hop count per segment")
	_ = cmd.MarkFlagRequired("length")
	return cmd
}

type resolveOutput struct {
	ID         string        `json:"id"`
	StartNode  int64         `json:"startNode"`
	EndNode    int64         `json:"endNode"`
	PathLength int           `json:"pathLength"`
	ChunkSizes []int         `json:"chunkSizes"`
	NoPath     bool          `json:"noPath"`
	Edges      []domain.Edge `json:"edges"`
	Query      string        `json:"query,omitempty"`
}

func newResolveCmd() *cobra.Command {
	var (
		start     int64
		end       int64
		dataset   string
		maxHop    int
		showQuery bool
		timeout   time.Duration
	)
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve the shortest path between two nodes",
		Long: `Resolve the shortest path between two nodes and print it as JSON.

Without --dataset the configured graph backend is queried (GRAPH_BACKEND and
related environment variables). With --dataset a generated dataset directory
is loaded and resolved in memory.

Examples:
  pathctl resolve --start 1 --end 121 --dataset ./seed-data
  pathctl resolve --start 1 --end 500 --query`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			var (
				store  service.GraphStore
				opts   service.Options
				closer func()
			)
			if dataset != "" {
				ds, err := generator.LoadDataset(dataset)
				if err != nil {
					return err
				}
				store = memstore.New(ds.Nodes, ds.Segments)
				opts = service.Options{MaxHop: maxHop, Timeout: timeout, Logger: logging.Discard()}
			} else {
				cfg, err := config.Load()
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				logger := logging.NewWithWriter(cfg.Logging, cmd.ErrOrStderr())
				client, dialect, err := buildGraphClient(ctx, logger, cfg)
				if err != nil {
					return err
				}
				closer = func() { _ = client.Close(context.Background()) }
				store = repository.New(client, dialect)
				opts = service.Options{
					MaxHop:    cfg.Path.MaxHop,
					LengthCap: cfg.Path.LengthCap,
					Timeout:   cfg.Path.ResolveTimeout,
					Logger:    logger,
				}
				if cmd.Flags().Changed("max-hop") {
					opts.MaxHop = maxHop
				}
				if cmd.Flags().Changed("timeout") {
					opts.Timeout = timeout
				}
			}
			if closer != nil {
				defer closer()
			}

			res, err := service.NewPathService(store, opts).ResolvePath(ctx, start, end)
			if err != nil {
				return err
			}
			return writeResolveOutput(cmd.OutOrStdout(), start, end, res, showQuery)
		},
	}
	cmd.Flags().Int64Var(&start, "start", 0, "start node id")
	cmd.Flags().Int64Var(&end, "end", 0, "end node id")
	cmd.Flags().StringVar(&dataset, "dataset", "", "resolve against a generated dataset directory instead of the graph backend")
	cmd.Flags().IntVar(&maxHop, "max-hop", 20, "largest hop count per store query")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "deadline for the whole resolution")
	cmd.Flags().BoolVar(&showQuery, "query", false, "include the issued queries in the output")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	return cmd
}

func writeResolveOutput(w io.Writer, start, end int64, res service.PathResult, showQuery bool) error {
	out := resolveOutput{
		ID:         res.ID,
		StartNode:  start,
		EndNode:    end,
		PathLength: res.Length,
		ChunkSizes: res.ChunkSizes,
		NoPath:     res.NoPath,
		Edges:      []domain.Edge(res.Edges),
	}
	if out.Edges == nil {
		out.Edges = []domain.Edge{}
	}
	if out.ChunkSizes == nil {
		out.ChunkSizes = []int{}
	}
	if showQuery {
		out.Query = res.QueryText
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func buildGraphClient(ctx context.Context, logger *slog.Logger, cfg config.Config) (graph.Client, repository.Dialect, error) {
	if cfg.Graph.Backend == "spanner" {
		dialect, err := repository.SpannerGraph(cfg.Graph.Spanner.GraphName)
		if err != nil {
			return nil, repository.Dialect{}, err
		}
		client, err := graph.NewSpannerClient(ctx, graph.SpannerOptions{
			Database:    cfg.Graph.Spanner.DatabasePath(),
			MaxSessions: cfg.Graph.MaxConnections,
		})
		if err != nil {
			return nil, repository.Dialect{}, err
		}
		logger.Debug("connected to graph", "backend", "spanner", "database", cfg.Graph.Spanner.DatabasePath())
		return client, dialect, nil
	}

	client, err := graph.NewNeo4jClient(ctx, graph.Options{
		URI:            cfg.Graph.URI,
		Database:       cfg.Graph.Database,
		Username:       cfg.Graph.Username,
		Password:       cfg.Graph.Password,
		MaxConnections: cfg.Graph.MaxConnections,
	})
	if err != nil {
		return nil, repository.Dialect{}, err
	}
	logger.Debug("connected to graph", "backend", "neo4j", "uri", cfg.Graph.URI)
	return client, repository.Cypher(), nil
}
