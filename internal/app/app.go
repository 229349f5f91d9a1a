// Package app wires configuration into the deduplication pipeline for the
// server and the CLI.
package app

import (
	"context"
	"fmt"

	"github.com/agenthands/contactmerge/internal/config"
	"github.com/agenthands/contactmerge/internal/core"
	"github.com/agenthands/contactmerge/internal/core/dedupe"
	"github.com/agenthands/contactmerge/internal/core/merge"
	"github.com/agenthands/contactmerge/internal/core/review"
	"github.com/agenthands/contactmerge/internal/driver"
	"github.com/agenthands/contactmerge/internal/llm"
	"github.com/agenthands/contactmerge/internal/logger"
)

// Services holds the optional collaborators shared by every run.
type Services struct {
	Config   *config.Config
	Logger   logger.Logger
	Reviewer *review.Reviewer
	Store    driver.GraphStore
}

// Connect builds the LLM reviewer when review is enabled and the Memgraph
// store when a URI is configured.
func Connect(ctx context.Context, cfg *config.Config, l logger.Logger) (*Services, error) {
	if l == nil {
		l = logger.NewNop()
	}
	s := &Services{Config: cfg, Logger: l}

	if cfg.Review.Enabled {
		client, err := llm.NewClient(ctx, cfg.LLM)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize llm client: %w", err)
		}
		if client != nil {
			s.Reviewer = review.NewReviewer(client, cfg.Review.Prompts)
			l.Info("Group review enabled", "provider", cfg.LLM.Provider, "model", cfg.LLM.Model)
		}
	}

	if cfg.Memgraph.URI != "" {
		d, err := driver.NewMemgraphDriver(ctx, cfg.Memgraph.URI, cfg.Memgraph.User, cfg.Memgraph.Password, l)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to memgraph: %w", err)
		}
		store := driver.NewStore(d)
		if err := store.BuildIndices(ctx); err != nil {
			l.Warn("Failed to build indices", "error", err)
		}
		s.Store = store
	}

	return s, nil
}

// Deduplicator returns a pipeline using threshold and the configured region
// and workers. Each call gets fresh normalization caches.
func (s *Services) Deduplicator(threshold int) *core.Deduplicator {
	detector := dedupe.NewDetector(
		dedupe.WithFuzzyThreshold(threshold),
		dedupe.WithRegion(s.Config.Detection.Region),
		dedupe.WithWorkers(s.Config.Detection.Workers),
		dedupe.WithLogger(s.Logger),
	)
	opts := []core.Option{core.WithLogger(s.Logger)}
	if s.Reviewer != nil {
		opts = append(opts, core.WithReviewer(s.Reviewer, s.Config.Review.Concurrency))
	}
	if s.Store != nil {
		opts = append(opts, core.WithStore(s.Store))
	}
	return core.NewDeduplicator(detector, merge.NewMerger(detector.Normalizer(), s.Logger), opts...)
}

func (s *Services) Close(ctx context.Context) {
	if s.Store == nil {
		return
	}
	if err := s.Store.Close(ctx); err != nil {
		s.Logger.Warn("Failed to close graph store", "error", err)
	}
}
