// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/poiesic/ivesna"
	"github.com/poiesic/ivesna/ai"
	"github.com/poiesic/ivesna/ingestion"
	"github.com/poiesic/ivesna/reembed"
	"github.com/poiesic/ivesna/retrieval"
)

func main() {
	// Optional .env for local development; env vars win over file values.
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "ivesna",
		Usage: "Hybrid retrieval engine for crawled site content",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "ingest",
				Usage:  "Ingest crawled pages from a JSON file",
				Action: ingestCommand,
				Flags: append(commonFlags(),
					&cli.StringFlag{
						Name:     "pages",
						Aliases:  []string{"p"},
						Usage:    "Path to a JSON file holding an array of pages",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Number of concurrent ingestion workers",
					},
				),
			},
			{
				Name:      "search",
				Usage:     "Rank indexed content against a query",
				ArgsUsage: "<query words...>",
				Action:    searchCommand,
				Flags: append(commonFlags(),
					&cli.IntFlag{
						Name:    "top",
						Aliases: []string{"k"},
						Usage:   "Number of results to return",
						Value:   retrieval.DefaultTopK,
					},
					&cli.StringFlag{
						Name:  "rules",
						Usage: "Path to a YAML prior rule table (defaults to built-in rules)",
					},
				),
			},
			{
				Name:   "reembed",
				Usage:  "Regenerate embeddings for all indexed chunks of a tenant",
				Action: reembedCommand,
				Flags: append(commonFlags(),
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of chunks to process in each batch",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N chunks",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed embedding calls",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				),
			},
			{
				Name:   "stats",
				Usage:  "Print index statistics for a tenant",
				Action: statsCommand,
				Flags: []cli.Flag{
					dbFlag(),
					tenantFlag(),
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func dbFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "db",
		Aliases:  []string{"d"},
		Usage:    "Path to BadgerDB database directory",
		Required: true,
	}
}

func tenantFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "tenant",
		Aliases:  []string{"t"},
		Usage:    "Tenant whose index to operate on",
		Required: true,
	}
}

func commonFlags() []cli.Flag {
	return []cli.Flag{
		dbFlag(),
		tenantFlag(),
		&cli.StringFlag{
			Name:    "embedding-host",
			Usage:   "Embedding service host URL",
			EnvVars: []string{"IVESNA_EMBEDDING_HOST"},
		},
		&cli.StringFlag{
			Name:    "embedding-model",
			Usage:   "Embedding model name",
			EnvVars: []string{"IVESNA_EMBEDDING_MODEL"},
		},
		&cli.StringFlag{
			Name:    "api-key",
			Usage:   "API key for the embedding service",
			EnvVars: []string{"IVESNA_API_KEY", "OPENAI_API_KEY"},
		},
	}
}

func openDatabase(c *cli.Context) (*ivesna.Database, error) {
	opts := []ai.ConfigOption{}
	if host := c.String("embedding-host"); host != "" {
		opts = append(opts, ai.WithEmbeddingHost(host))
	}
	if model := c.String("embedding-model"); model != "" {
		opts = append(opts, ai.WithEmbeddingModel(model))
	}
	if key := c.String("api-key"); key != "" {
		opts = append(opts, ai.WithAPIKey(key))
	}

	config := ai.NewConfig(opts...)
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid embedding configuration: %w", err)
	}

	db, err := ivesna.NewDatabase(c.String("db"), ivesna.WithAIConfig(config))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

func ingestCommand(c *cli.Context) error {
	ctx := context.Background()

	data, err := os.ReadFile(c.String("pages"))
	if err != nil {
		return fmt.Errorf("failed to read pages file: %w", err)
	}
	var pages []ingestion.Page
	if err := json.Unmarshal(data, &pages); err != nil {
		return fmt.Errorf("failed to parse pages file: %w", err)
	}
	if len(pages) == 0 {
		return fmt.Errorf("pages file contains no pages")
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	var pipelineOpts []ingestion.Option
	if workers := c.Int("workers"); workers > 0 {
		pipelineOpts = append(pipelineOpts, ingestion.WithPoolSize(workers))
	}
	pipeline, err := db.NewIngestionPipeline(pipelineOpts...)
	if err != nil {
		return fmt.Errorf("failed to create ingestion pipeline: %w", err)
	}
	defer pipeline.Release()

	report, err := pipeline.IngestPages(ctx, c.String("tenant"), pages)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	fmt.Printf("Ingested %d pages (%d chunks), skipped %d unchanged, %d failed\n",
		report.Ingested, report.Chunks, report.Skipped, report.Failed)
	if report.Failed > 0 {
		return fmt.Errorf("%d pages failed to ingest", report.Failed)
	}
	return nil
}

func searchCommand(c *cli.Context) error {
	ctx := context.Background()

	query := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("query is required")
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	var retrieverOpts []retrieval.Option
	if rulesPath := c.String("rules"); rulesPath != "" {
		ruleSet, err := retrieval.LoadRuleSet(rulesPath)
		if err != nil {
			return fmt.Errorf("failed to load prior rules: %w", err)
		}
		retrieverOpts = append(retrieverOpts, retrieval.WithRuleSet(ruleSet))
	}

	retriever, err := db.NewRetriever(retrieverOpts...)
	if err != nil {
		return fmt.Errorf("failed to create retriever: %w", err)
	}

	results, err := retriever.Retrieve(ctx, c.String("tenant"), query, c.Int("top"))
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	fmt.Printf("Found %d hits\n", len(results))
	for i, hit := range results {
		title := hit.Title
		if title == "" {
			title = "(untitled)"
		}
		fmt.Printf("%d: %s (%s) [%0.3f]\n", i+1, title, hit.URL, hit.Score)
		fmt.Printf("   %s\n", excerpt(hit.Text, 160))
	}
	return nil
}

func reembedCommand(c *cli.Context) error {
	ctx := context.Background()

	config := &reembed.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
	}
	if config.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if config.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if config.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	reembedder := reembed.NewReembedder(db.ChunkRepository(), db.Embedder(), config, os.Stderr)
	if err := reembedder.Run(ctx, c.String("tenant")); err != nil {
		return fmt.Errorf("reembedding failed: %w", err)
	}
	return nil
}

func statsCommand(c *cli.Context) error {
	ctx := context.Background()

	db, err := ivesna.NewDatabase(c.String("db"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	count, err := db.ChunkRepository().CountChunks(ctx, c.String("tenant"))
	if err != nil {
		return fmt.Errorf("failed to count chunks: %w", err)
	}

	fmt.Printf("Tenant %s: %d chunks indexed\n", c.String("tenant"), count)
	return nil
}

func excerpt(text string, max int) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "..."
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
