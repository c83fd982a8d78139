package main

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/danielpatrickdp/advisor-sim/internal/backend"
	"github.com/danielpatrickdp/advisor-sim/internal/config"
	"github.com/danielpatrickdp/advisor-sim/internal/corpus"
	"github.com/danielpatrickdp/advisor-sim/internal/fallback"
	"github.com/danielpatrickdp/advisor-sim/internal/knowledge"
	"github.com/danielpatrickdp/advisor-sim/internal/logging"
	"github.com/danielpatrickdp/advisor-sim/internal/orchestrator"
	"github.com/danielpatrickdp/advisor-sim/internal/persona"
	"github.com/danielpatrickdp/advisor-sim/internal/prompt"
	"github.com/danielpatrickdp/advisor-sim/internal/retrieval"
	"github.com/danielpatrickdp/advisor-sim/internal/rng"
	"github.com/danielpatrickdp/advisor-sim/internal/state"
	"github.com/danielpatrickdp/advisor-sim/internal/strategy"
)

// knowledgeSnippets is how many knowledge snippets back one reply.
const knowledgeSnippets = 3

// app is the fully wired runtime shared by chat, serve and replay.
type app struct {
	cfg       *config.Config
	store     *state.Store
	corpus    *corpus.Store
	knowledge *knowledge.Base
	personas  *persona.Registry
	transport backend.Transport
	orch      *orchestrator.Orchestrator
	rand      rng.Source

	closers []func() error
}

// #region wiring

// newApp wires every component. Watcher goroutines stop when ctx is done.
func newApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (_ *app, err error) {
	a := &app{cfg: cfg, rand: rng.FromConfig(cfg.Seed)}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	if a.personas, err = loadPersonas(cfg); err != nil {
		return nil, err
	}
	matrix, err := loadMatrix(cfg)
	if err != nil {
		return nil, err
	}
	fb, err := loadFallback(cfg, a.rand)
	if err != nil {
		return nil, err
	}
	if err := fb.Validate(a.personas.IDs()); err != nil {
		return nil, fmt.Errorf("fallback table: %w", err)
	}

	if a.store, err = state.NewStore(cfg.DBPath); err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	a.closers = append(a.closers, a.store.Close)

	src := corpusSource(cfg, a.store, logger)
	a.corpus = corpus.NewStore(corpus.LoadOrEmpty(ctx, src, logger))
	if cfg.CorpusWatch {
		w, err := corpus.NewWatcher(src, a.corpus, cfg.CorpusPaths(), logger)
		if err != nil {
			return nil, err
		}
		go func() {
			if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("[CORPUS] watcher stopped", zap.Error(err))
			}
		}()
	}

	if cfg.KnowledgeDir != "" {
		kb, err := knowledge.Open(cfg.KnowledgeDir, 0, logger)
		if err != nil {
			// knowledge is optional grounding; replies still work without it
			logger.Warn("[KNOW] knowledge disabled", zap.String("dir", cfg.KnowledgeDir), zap.Error(err))
		} else {
			a.knowledge = kb
			a.closers = append(a.closers, kb.Close)
		}
	}

	if a.transport, err = newTransport(cfg); err != nil {
		return nil, err
	}
	if c, ok := a.transport.(interface{ Close() error }); ok {
		a.closers = append(a.closers, c.Close)
	}

	classifier := backend.DefaultClassifier()
	if cfg.StrictModels {
		classifier = backend.StrictClassifier()
	}

	a.orch = orchestrator.NewOrchestrator(orchestrator.Config{
		Examples:    cfg.Examples,
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
	}, candidates(cfg), orchestrator.Deps{
		Personas: a.personas,
		Corpus:   a.corpus,
		Selector: retrieval.NewSelector(retrieval.DefaultConfig(), a.rand, logger),
		Builder:  prompt.NewBuilder(prompt.DefaultConfig(), matrix),
		Invoker:  backend.NewInvoker(a.transport, classifier, cfg.Timeout),
		Fallback: fb,
		Recorder: logging.NewSQLRecorder(a.store.DB()),
		Logger:   logger,
	})

	logger.Info("[APP] ready",
		zap.String("backend", cfg.Backend),
		zap.Strings("candidates", a.orch.Candidates().Names()),
		zap.Int("exchanges", a.corpus.Current().Len()),
		zap.Bool("knowledge", a.knowledge != nil),
		zap.Bool("strict_models", cfg.StrictModels))
	return a, nil
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}

// knowledgeContext returns grounding for text, or "" without a knowledge base.
func (a *app) knowledgeContext(text string) string {
	if a.knowledge == nil || text == "" {
		return ""
	}
	kc, err := a.knowledge.Context(text, knowledgeSnippets)
	if err != nil {
		logger.Warn("[KNOW] lookup failed", zap.Error(err))
	}
	return kc
}

// #endregion wiring

// #region loaders

func loadPersonas(cfg *config.Config) (*persona.Registry, error) {
	reg, err := persona.Default()
	if cfg.PersonasFile != "" {
		reg, err = persona.LoadFile(cfg.PersonasFile)
	}
	if err != nil {
		return nil, fmt.Errorf("personas: %w", err)
	}
	if err := reg.Validate(); err != nil {
		return nil, fmt.Errorf("personas: %w", err)
	}
	return reg, nil
}

func loadMatrix(cfg *config.Config) (*strategy.Matrix, error) {
	m, err := strategy.Default()
	if cfg.StrategyFile != "" {
		m, err = strategy.LoadFile(cfg.StrategyFile)
	}
	if err != nil {
		return nil, fmt.Errorf("strategy matrix: %w", err)
	}
	return m, nil
}

func loadFallback(cfg *config.Config, rand rng.Source) (*fallback.Generator, error) {
	if cfg.FallbackFile == "" {
		return fallback.NewGenerator(rand), nil
	}
	t, err := fallback.LoadTable(cfg.FallbackFile)
	if err != nil {
		return nil, err
	}
	return fallback.NewGeneratorWithTable(t, rand), nil
}

// corpusSource combines the configured files with the imported SQLite table.
func corpusSource(cfg *config.Config, store *state.Store, logger *zap.Logger) corpus.Source {
	var sources []corpus.Source
	if cfg.CorpusCSV != "" {
		sources = append(sources, corpus.CSVSource{Path: cfg.CorpusCSV})
	}
	if cfg.CorpusJSON != "" {
		sources = append(sources, corpus.JSONSource{Path: cfg.CorpusJSON})
	}
	if store != nil {
		sources = append(sources, corpus.SQLiteSource{DB: store.DB()})
	}
	return corpus.MultiSource{Sources: sources, Logger: logger}
}

func newTransport(cfg *config.Config) (backend.Transport, error) {
	switch cfg.Backend {
	case config.BackendGRPC:
		t, err := backend.NewGRPCTransport(cfg.GRPCAddr)
		if err != nil {
			return nil, fmt.Errorf("connect to generation service at %s: %w", cfg.GRPCAddr, err)
		}
		return t, nil
	default:
		return backend.NewOpenAITransport(cfg.BaseURL, cfg.APIKey), nil
	}
}

func candidates(cfg *config.Config) orchestrator.Candidates {
	if len(cfg.Candidates) > 0 {
		return orchestrator.NewCandidates(cfg.Candidates...)
	}
	return orchestrator.DefaultCandidates()
}

// #endregion loaders
