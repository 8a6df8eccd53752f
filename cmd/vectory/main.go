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
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/poiesic/vectory/ai"
	"github.com/poiesic/vectory/ai/local"
	"github.com/poiesic/vectory/ai/openai"
	"github.com/poiesic/vectory/cache"
	"github.com/poiesic/vectory/chunkio"
	"github.com/poiesic/vectory/core"
	"github.com/poiesic/vectory/embed"
	"github.com/poiesic/vectory/storage/badger"
	"github.com/poiesic/vectory/tokens"
)

func main() {
	app := &cli.App{
		Name:  "vectory",
		Usage: "Embedding engine for document chunk pipelines",
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
				Name:   "embed",
				Usage:  "Embed a chunk file through the remote embedding API",
				Action: embedCommand,
				Flags: append(clientFlags(),
					&cli.StringFlag{
						Name:     "input",
						Aliases:  []string{"i"},
						Usage:    "Path to input chunk JSON file",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Path to write embedded chunks (defaults to input)",
					},
					&cli.StringFlag{
						Name:  "cache-dir",
						Usage: "Directory holding the embedding cache",
						Value: ".vectory",
					},
					&cli.StringFlag{
						Name:  "stats",
						Usage: "Path to write run statistics JSON",
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of chunks per embedding request",
						Value: embed.DefaultBatchSize,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for transient failures",
						Value: embed.DefaultMaxRetries,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: embed.DefaultRetryDelay,
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Number of concurrent batch workers",
						Value: 1,
					},
					&cli.Float64Flag{
						Name:  "price-per-token",
						Usage: "Price per token for cost accounting",
						Value: embed.DefaultPricePerToken,
					},
				),
			},
			{
				Name:   "estimate",
				Usage:  "Estimate the embedding cost of a chunk file without calling the API",
				Action: estimateCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "input",
						Aliases:  []string{"i"},
						Usage:    "Path to input chunk JSON file",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "model",
						Usage: "Embedding model name",
						Value: ai.DefaultModel,
					},
					&cli.BoolFlag{
						Name:  "exact-tokens",
						Usage: "Count tokens with the model tokenizer instead of the chars/4 heuristic",
					},
					&cli.Float64Flag{
						Name:  "price-per-token",
						Usage: "Price per token for cost accounting",
						Value: embed.DefaultPricePerToken,
					},
				},
			},
			{
				Name:   "validate",
				Usage:  "Check that every chunk in a file carries an embedding of the expected dimension",
				Action: validateCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "input",
						Aliases:  []string{"i"},
						Usage:    "Path to input chunk JSON file",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "dimension",
						Usage: "Expected embedding dimension",
						Value: ai.DefaultDimension,
					},
				},
			},
			{
				Name:   "index",
				Usage:  "Load embedded chunks into the vector store",
				Action: indexCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "input",
						Aliases:  []string{"i"},
						Usage:    "Path to embedded chunk JSON file",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
				},
			},
			{
				Name:   "search",
				Usage:  "Embed a query and find similar chunks in the vector store",
				Action: searchCommand,
				Flags: append(clientFlags(),
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "query",
						Aliases:  []string{"q"},
						Usage:    "Query text",
						Required: true,
					},
					&cli.Float64Flag{
						Name:  "min-similarity",
						Usage: "Minimum similarity score for results",
						Value: 0.3,
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of results",
						Value: 5,
					},
				),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// clientFlags are shared by every command that talks to an embedding API.
func clientFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "provider",
			Usage: "Embedding provider (openai, local)",
			Value: "openai",
		},
		&cli.StringFlag{
			Name:    "api-key",
			Usage:   "API key for the embedding provider",
			EnvVars: []string{"OPENAI_API_KEY"},
		},
		&cli.StringFlag{
			Name:  "base-url",
			Usage: "Embedding service base URL",
			Value: ai.DefaultBaseURL,
		},
		&cli.StringFlag{
			Name:  "model",
			Usage: "Embedding model name",
			Value: ai.DefaultModel,
		},
		&cli.IntFlag{
			Name:  "dimension",
			Usage: "Embedding dimension",
			Value: ai.DefaultDimension,
		},
		&cli.IntFlag{
			Name:  "rpm",
			Usage: "Request rate limit in requests per minute (0 disables)",
		},
		&cli.BoolFlag{
			Name:  "exact-tokens",
			Usage: "Count tokens with the model tokenizer instead of the chars/4 heuristic",
		},
	}
}

func embedCommand(c *cli.Context) error {
	ctx := context.Background()

	chunks, err := chunkio.Load(c.String("input"))
	if err != nil {
		return err
	}

	client, err := newClient(c)
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}

	store, err := cache.Open(c.String("cache-dir"), client.Model(), client.Dimension())
	if err != nil {
		return fmt.Errorf("failed to open embedding cache: %w", err)
	}

	engine, err := embed.New(client, store,
		embed.WithBatchSize(c.Int("batch-size")),
		embed.WithMaxRetries(c.Int("max-retries")),
		embed.WithRetryDelay(c.Duration("retry-delay")),
		embed.WithWorkers(c.Int("workers")),
		embed.WithPricePerToken(c.Float64("price-per-token")),
		embed.WithEstimator(newEstimator(c)),
		embed.WithProgress(os.Stderr),
	)
	if err != nil {
		return fmt.Errorf("failed to create engine: %w", err)
	}

	chunks, err = engine.Embed(ctx, chunks)
	if err != nil {
		return fmt.Errorf("embedding run failed: %w", err)
	}

	output := c.String("output")
	if output == "" {
		output = c.String("input")
	}
	if err := chunkio.Save(output, chunks); err != nil {
		return err
	}

	stats := engine.Stats()
	if path := c.String("stats"); path != "" {
		if err := stats.WriteFile(path); err != nil {
			return err
		}
	}

	if !engine.Validate(chunks) {
		return fmt.Errorf("%d chunks failed to embed", stats.FailedChunks)
	}
	return nil
}

func estimateCommand(c *cli.Context) error {
	chunks, err := chunkio.Load(c.String("input"))
	if err != nil {
		return err
	}

	estimator := newEstimator(c)
	total := 0
	for _, chunk := range chunks {
		if chunk != nil {
			total += estimator.Count(chunk.Content)
		}
	}
	cost := float64(total) * c.Float64("price-per-token")

	fmt.Printf("Chunks: %d\n", len(chunks))
	fmt.Printf("Estimated tokens: %d\n", total)
	fmt.Printf("Estimated cost: $%.6f\n", cost)
	return nil
}

func validateCommand(c *cli.Context) error {
	chunks, err := chunkio.Load(c.String("input"))
	if err != nil {
		return err
	}

	dimension := c.Int("dimension")
	invalid := 0
	for i, chunk := range chunks {
		if err := core.ValidateEmbedding(chunk, dimension); err != nil {
			slog.Warn("invalid chunk", "index", i, "err", err)
			invalid++
		}
	}

	if invalid > 0 {
		return fmt.Errorf("%d of %d chunks are missing a %d-dimensional embedding", invalid, len(chunks), dimension)
	}
	fmt.Printf("All %d chunks carry %d-dimensional embeddings\n", len(chunks), dimension)
	return nil
}

func indexCommand(c *cli.Context) error {
	ctx := context.Background()

	chunks, err := chunkio.Load(c.String("input"))
	if err != nil {
		return err
	}

	backend, err := badger.OpenBackend(c.String("db"), false)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer backend.Close()

	repo, err := badger.NewChunkRepository(backend)
	if err != nil {
		return fmt.Errorf("failed to create repository: %w", err)
	}
	defer repo.Close()

	// Store normalized vectors so search can score with a plain dot product.
	indexed := 0
	for _, chunk := range chunks {
		if chunk == nil || len(chunk.Embedding) == 0 {
			slog.Warn("skipping chunk without embedding")
			continue
		}
		chunk.Embedding = embed.NormalizeVector(chunk.Embedding)
		if err := repo.AddChunks(ctx, chunk); err != nil {
			return fmt.Errorf("failed to index chunk: %w", err)
		}
		indexed++
	}

	fmt.Printf("Indexed %d of %d chunks\n", indexed, len(chunks))
	return nil
}

func searchCommand(c *cli.Context) error {
	ctx := context.Background()

	backend, err := badger.OpenBackend(c.String("db"), false)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer backend.Close()

	repo, err := badger.NewChunkRepository(backend)
	if err != nil {
		return fmt.Errorf("failed to create repository: %w", err)
	}
	defer repo.Close()

	client, err := newClient(c)
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}

	vectors, _, err := client.EmbedBatch(ctx, []string{c.String("query")})
	if err != nil {
		return fmt.Errorf("failed to embed query: %w", err)
	}
	query := embed.NormalizeVector(vectors[0])

	results, err := repo.FindSimilar(ctx, query, float32(c.Float64("min-similarity")), c.Int("limit"))
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if len(results) == 0 {
		fmt.Println("No results")
		return nil
	}
	for i, result := range results {
		fmt.Printf("%d. [%.4f] %s\n", i+1, result.Score, snippet(result.Chunk.Content, 120))
	}
	return nil
}

// newClient builds the embedding client selected by the provider flag.
func newClient(c *cli.Context) (ai.BatchEmbedder, error) {
	cfg := ai.NewConfig(
		ai.WithAPIKey(c.String("api-key")),
		ai.WithBaseURL(c.String("base-url")),
		ai.WithModel(c.String("model")),
		ai.WithDimension(c.Int("dimension")),
		ai.WithRequestsPerMinute(c.Int("rpm")),
	)

	switch c.String("provider") {
	case "openai":
		return openai.NewEmbedder(cfg)
	case "local":
		return local.NewEmbedder(cfg, newEstimator(c))
	default:
		return nil, fmt.Errorf("unknown provider %q: must be openai or local", c.String("provider"))
	}
}

// newEstimator picks the token counter. The exact tokenizer needs an
// embedded encoding for the model; when that fails the heuristic still
// gives a usable estimate.
func newEstimator(c *cli.Context) tokens.Estimator {
	if !c.Bool("exact-tokens") {
		return tokens.Heuristic{}
	}
	est, err := tokens.NewTiktoken(c.String("model"))
	if err != nil {
		slog.Warn("tokenizer unavailable, falling back to heuristic", "model", c.String("model"), "err", err)
		return tokens.Heuristic{}
	}
	return est
}

func snippet(text string, max int) string {
	text = strings.Join(strings.Fields(text), " ")
	if len(text) <= max {
		return text
	}
	return text[:max] + "..."
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

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

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
