// Package app builds the advisor service and its backends from configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	"plan_advisor/internal/api"
	"plan_advisor/src"
	"plan_advisor/src/catalog"
	"plan_advisor/src/knowledge"
	"plan_advisor/src/llm"
	"plan_advisor/src/logger"
	"plan_advisor/src/session"
	"plan_advisor/src/storage"
	"plan_advisor/src/token"
)

// App owns the wired service and everything that must be closed on shutdown
type App struct {
	Service *session.Service
	Checks  map[string]api.HealthCheck
	closers []func(ctx context.Context) error
}

// New wires every backend named by cfg. On error, anything already opened is closed.
func New(ctx context.Context, cfg *src.Config) (_ *App, err error) {
	a := &App{Checks: map[string]api.HealthCheck{}}
	defer func() {
		if err != nil {
			_ = a.Close(ctx)
		}
	}()

	store, err := a.buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	cat, err := a.buildCatalog(ctx, cfg)
	if err != nil {
		return nil, err
	}

	meter, err := token.New(cfg.ConversationConfig.TokenMeter, cfg.ConversationConfig.TokenizerModel)
	if err != nil {
		return nil, err
	}

	deps, err := buildLLM(ctx, cfg)
	if err != nil {
		return nil, err
	}
	deps.Store = store
	deps.Meter = meter
	deps.Matcher = catalog.NewMatcher(cat)

	if cfg.KnowledgeConfig.Enabled {
		ret, err := a.buildRetriever(ctx, cfg)
		if err != nil {
			return nil, err
		}
		deps.Retriever = ret
	}

	a.Service = session.NewService(cfg.ConversationConfig, deps)
	logger.Info().
		Str("store", cfg.StoreConfig.Backend).
		Str("catalog", cfg.CatalogConfig.Backend).
		Str("llm_provider", cfg.LLMConfig.Provider).
		Bool("knowledge", cfg.KnowledgeConfig.Enabled).
		Msg("Advisor wired")
	return a, nil
}

// Close releases backends in reverse order of creation
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// ====================== Builders ======================

func (a *App) buildStore(ctx context.Context, cfg *src.Config) (storage.Store, error) {
	switch cfg.StoreConfig.Backend {
	case "redis":
		store, err := storage.NewRedisStore(ctx, cfg.StoreConfig.RedisURL, cfg.StoreConfig.TTL)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func(context.Context) error { return store.Close() })
		a.Checks["redis"] = store.Ping
		return store, nil
	default:
		return storage.NewMemoryStore(), nil
	}
}

func (a *App) buildCatalog(ctx context.Context, cfg *src.Config) (catalog.Catalog, error) {
	switch cfg.CatalogConfig.Backend {
	case "mongo":
		cat, err := catalog.NewMongoCatalog(ctx, cfg.CatalogConfig)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, cat.Close)
		a.Checks["mongo"] = cat.Ping
		return cat, nil
	default:
		plans, err := catalog.LoadSeed(cfg.CatalogConfig.SeedFile)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, err
			}
			logger.Warn().Str("seed_file", cfg.CatalogConfig.SeedFile).Msg("Catalog seed file missing, starting with an empty catalog")
		}
		logger.Info().Int("plans", len(plans)).Msg("In-memory plan catalog loaded")
		return catalog.NewMemoryCatalog(plans), nil
	}
}

func (a *App) buildRetriever(ctx context.Context, cfg *src.Config) (*knowledge.PGRetriever, error) {
	kc := cfg.KnowledgeConfig
	embedder, err := knowledge.NewOllamaEmbedder(kc.OllamaURL, kc.EmbeddingModel, nil)
	if err != nil {
		return nil, err
	}
	ret, err := knowledge.NewPGRetriever(ctx, kc, embedder)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, func(context.Context) error { return ret.Close() })
	a.Checks["postgres"] = ret.Ping
	return ret, nil
}

// buildLLM creates one guarded chat model shared by the conversational components
// and, when LLM_RANK_MODEL is set, a separate one for ranking.
func buildLLM(ctx context.Context, cfg *src.Config) (session.Deps, error) {
	var deps session.Deps

	cm, err := llm.NewChatModel(ctx, cfg.LLMConfig, cfg.LLMConfig.Model)
	if err != nil {
		return deps, err
	}
	rankModel := cm
	if rm := cfg.LLMConfig.RankModel; rm != "" && rm != cfg.LLMConfig.Model {
		if rankModel, err = llm.NewChatModel(ctx, cfg.LLMConfig, rm); err != nil {
			return deps, err
		}
	}

	if deps.Summarizer, err = llm.NewSummarizer(ctx, cm); err != nil {
		return deps, wrapBuild("summarizer", err)
	}
	if deps.Extractor, err = llm.NewEntityExtractor(ctx, cm); err != nil {
		return deps, wrapBuild("entity extractor", err)
	}
	if deps.SlotFiller, err = llm.NewSlotFiller(ctx, cm); err != nil {
		return deps, wrapBuild("slot filler", err)
	}
	if deps.Rewriter, err = llm.NewQueryRewriter(ctx, cm); err != nil {
		return deps, wrapBuild("query rewriter", err)
	}
	if deps.Answerer, err = llm.NewAnswerer(ctx, cm); err != nil {
		return deps, wrapBuild("answerer", err)
	}
	if deps.Ranker, err = llm.NewRanker(ctx, rankModel); err != nil {
		return deps, wrapBuild("ranker", err)
	}
	return deps, nil
}

func wrapBuild(component string, err error) error {
	return fmt.Errorf("failed to build %s: %w", component, err)
}
