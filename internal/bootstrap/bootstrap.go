// Package bootstrap assembles the generation pipeline from configuration.
// Both the studio server and the command line generator start here.
package bootstrap

import (
	"context"
	"fmt"

	"homedesign/internal/generators"
	"homedesign/internal/infra"
	"homedesign/internal/kv"
	"homedesign/internal/orchestrator"
	"homedesign/internal/providers/gemini"
	"homedesign/internal/video"
)

// Pipeline holds the wired components of one process.
type Pipeline struct {
	Store        kv.Store
	Provider     gemini.Service
	Objects      *video.ObjectStore
	Orchestrator *orchestrator.Orchestrator

	closers []func()
}

// Close releases database connections opened by New.
func (p *Pipeline) Close() {
	for i := len(p.closers) - 1; i >= 0; i-- {
		p.closers[i]()
	}
}

// New builds the state store, provider and orchestrator described by cfg.
// Without an API key the synthetic provider is used.
func New(ctx context.Context, cfg *infra.Config, logger *infra.Logger) (*Pipeline, error) {
	logger = infra.OrNop(logger)
	p := &Pipeline{Objects: video.NewObjectStore()}

	store, err := p.openStore(ctx, cfg, logger)
	if err != nil {
		p.Close()
		return nil, err
	}
	p.Store = store

	if cfg.Synthetic() {
		logger.Warn().Msg("bootstrap: no GEMINI_API_KEY set, using synthetic provider")
		p.Provider = gemini.NewSynthetic(logger)
	} else {
		client, err := gemini.NewClient(ctx, gemini.Options{
			APIKey:     cfg.GeminiAPIKey,
			TextModel:  cfg.GeminiTextModel,
			ImageModel: cfg.GeminiImageModel,
			VideoModel: cfg.GeminiVideoModel,
			Logger:     logger,
		})
		if err != nil {
			p.Close()
			return nil, fmt.Errorf("bootstrap: provider: %w", err)
		}
		p.Provider = client
	}

	limiter := video.NewCooldownLimiter(store, video.LimiterOptions{
		Cooldown: cfg.VideoCooldown,
		Logger:   logger,
	})
	videoGen := video.NewGenerator(p.Provider, video.Options{
		PollInterval: cfg.VideoPollInterval,
		Limiter:      limiter,
		Objects:      p.Objects,
		Logger:       logger,
	})
	p.Orchestrator = orchestrator.New(generators.New(p.Provider, logger), videoGen, logger)
	return p, nil
}

func (p *Pipeline) openStore(ctx context.Context, cfg *infra.Config, logger *infra.Logger) (kv.Store, error) {
	switch cfg.StateBackend {
	case infra.StateBackendMemory:
		return kv.NewMemoryStore(), nil
	case infra.StateBackendFile:
		store, err := kv.NewFileStore(cfg.StatePath)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: state file: %w", err)
		}
		logger.Info().Str("path", store.Path()).Msg("bootstrap: file state store")
		return store, nil
	case infra.StateBackendPostgres:
		pool, err := infra.NewDBPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: database: %w", err)
		}
		p.closers = append(p.closers, pool.Close)
		store := kv.NewPostgresStore(infra.NewSQLRunner(pool, logger))
		if err := store.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		logger.Info().Msg("bootstrap: postgres state store")
		return store, nil
	default:
		return nil, fmt.Errorf("bootstrap: unsupported state backend %q", cfg.StateBackend)
	}
}
