package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"regexp"
	"syscall"
	"time"

	"scrollfeed/internal/adapter"
	"scrollfeed/internal/bridge"
	"scrollfeed/internal/detail"
	"scrollfeed/internal/feed"
	"scrollfeed/internal/feeditem"
	feedhttp "scrollfeed/internal/handler/http/feed"
	"scrollfeed/internal/memstore"
	"scrollfeed/internal/observability/logging"
	"scrollfeed/internal/observability/tracing"
	"scrollfeed/internal/pool"
	"scrollfeed/internal/resolver"
	respondsvc "scrollfeed/internal/respond"
	"scrollfeed/internal/scrollconfig"
	"scrollfeed/internal/tier"
	"scrollfeed/internal/warmer"
	"scrollfeed/pkg/config"

	hhttp "scrollfeed/internal/handler/http"
	"scrollfeed/internal/handler/http/requestid"
)

func main() {
	logger := initLogger()

	handler, warm := setupServer(logger)

	warm.Start()
	defer warm.Stop()

	runServer(logger, handler)
}

// initLogger sets up structured logging: a JSON slog handler, level
// gated by LOG_LEVEL, installed as the process default.
func initLogger() *slog.Logger {
	logger := logging.NewLogger()
	slog.SetDefault(logger)
	return logger
}

// setupServer builds the adapter registry, every domain collaborator,
// and the HTTP handler chain. There is no database to open and no
// auth layer to configure; this service carries no user accounts.
//
// The idle-session warmer runs inside this same process rather than as
// a separate cmd/warmer binary: pool.Manager's session state lives in
// process memory with no external store behind it, so a standalone
// warmer process would only ever be sweeping its own, permanently
// empty, pool.
func setupServer(logger *slog.Logger) (http.Handler, *warmer.Warmer) {
	registry := buildRegistry(logger)

	configDir := config.GetEnvString("SCROLL_CONFIG_DIR", "./data/scrollconfig")
	store, err := scrollconfig.NewFileStore(configDir)
	if err != nil {
		logger.Error("failed to open scroll config store", slog.Any("error", err))
		os.Exit(1)
	}
	loader := scrollconfig.NewLoader(store, logger)

	poolMgr := pool.NewManager(registry, logger)
	assembly := tier.NewAssemblyService()
	feedSvc := feed.NewService(loader, poolMgr, registry, assembly, logger)

	ids := resolver.NewContentIdResolver(registry, fallbackPatterns(), "wire")

	bridgeSvc := buildBridgeService(logger)
	assembler := detail.NewAssembler(ids, bridgeSvc)
	respondService := respondsvc.NewService(ids, bridgeSvc)

	ready := &hhttp.ReadyHandler{Ready: func() bool { return len(registry.SourceTypes()) > 0 }}

	mux := http.NewServeMux()
	mux.Handle("/health", ready)
	mux.Handle("/ready", ready)
	mux.Handle("/live", &hhttp.LiveHandler{})
	mux.Handle("/metrics", hhttp.MetricsHandler())
	feedhttp.Register(mux, feedSvc, assembler, respondService, loader, store, logger)

	warmerCfg := warmer.LoadConfigFromEnv(os.Getenv)
	warm, err := warmer.New(warmerCfg, poolMgr, logger)
	if err != nil {
		logger.Error("failed to construct warmer", slog.Any("error", err))
		os.Exit(1)
	}

	return applyMiddleware(logger, mux), warm
}

// fallbackPatterns supplies ContentIdResolver's ordered fallback list
// for colon-less compound ids: a bare numeric id is
// assumed to be a wire-source article id, which is the only built-in
// source whose local ids are ever passed around without their
// source-type prefix already attached by the client.
func fallbackPatterns() []resolver.FallbackPattern {
	return []resolver.FallbackPattern{
		{Pattern: regexp.MustCompile(`^\d+$`), SourceType: "wire"},
	}
}

// buildRegistry constructs every built-in SourceAdapter and registers it
// under the source type a deployment's ScrollConfig.Sources map refers
// to by name. Personal-tier adapters (journal/task/health) are backed by
// memstore's process-local stores here; a deployment wanting durable
// storage swaps those constructor arguments for its own
// JournalStore/TaskStore/HealthStore implementation without touching
// anything else in this function.
func buildRegistry(logger *slog.Logger) *adapter.Registry {
	registry := adapter.NewRegistry()

	client := &http.Client{Timeout: 10 * time.Second}

	registry.Register(adapter.NewWireAdapter("wire", os.Getenv("SCROLL_WIRE_FEED_URL"), client))
	registry.Register(adapter.NewFreshRSSAdapter(os.Getenv("SCROLL_FRESHRSS_URL"), os.Getenv("SCROLL_FRESHRSS_TOKEN"), client))
	registry.Register(adapter.NewRedditAdapter("reddit", config.GetEnvString("SCROLL_REDDIT_SUBREDDIT", "all"), "hot", client))
	registry.Register(adapter.NewHeadlinesAdapter("headlines", os.Getenv("SCROLL_HEADLINES_URL"), adapter.HeadlineSelectors{
		ItemSelector:  ".headline",
		TitleSelector: "a",
		URLSelector:   "a",
	}, feeditem.TierLibrary, client))

	registry.Register(adapter.NewJournalAdapter("journal", memstore.NewJournalStore()))
	registry.Register(adapter.NewTaskAdapter("task", memstore.NewTaskStore()))
	registry.Register(adapter.NewHealthAdapter("mood", "mood", 5, memstore.NewHealthStore()))

	if corpus := scriptureCorpus(); len(corpus) > 0 {
		registry.Register(adapter.NewScriptureAdapter("scripture", corpus))
	}

	if gen := buildPromptGenerator(logger); gen != nil {
		registry.Register(adapter.NewCompassAdapter("compass", gen))
	}

	return registry
}

// scriptureCorpus returns an empty corpus by default; a deployment
// supplies its own verse set via a store-backed ScriptureAdapter
// replacement, or populates this map at startup from a config file.
func scriptureCorpus() map[string][]adapter.ScriptureVerse {
	return map[string][]adapter.ScriptureVerse{}
}

// buildPromptGenerator wires CompassAdapter's PromptGenerator to
// whichever LLM credential is configured. Anthropic takes precedence
// over OpenAI when both are set; CompassAdapter is skipped entirely
// (not registered) when neither is configured, since a silent
// placeholder prompt would be worse than the source being absent.
func buildPromptGenerator(logger *slog.Logger) adapter.PromptGenerator {
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		model := os.Getenv("ANTHROPIC_MODEL")
		if model == "" {
			model = "claude-3-5-haiku-latest"
		}
		return adapter.NewAnthropicPromptGenerator(key, model)
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		model := os.Getenv("OPENAI_MODEL")
		if model == "" {
			model = "gpt-4o-mini"
		}
		return adapter.NewOpenAIPromptGenerator(key, model)
	}
	logger.Warn("no prompt generator credentials configured, compass tier disabled")
	return nil
}

// buildBridgeService wires the Nostr SocialProtocol when relays and a
// secret key are configured in the environment; otherwise it returns
// nil, which disables only the "comment" response path; every other
// route keeps working.
func buildBridgeService(logger *slog.Logger) *bridge.Service {
	secretKey := os.Getenv("SCROLL_NOSTR_SECRET_KEY")
	relays := config.GetEnvStringList("SCROLL_NOSTR_RELAYS", nil)
	if len(relays) == 0 || secretKey == "" {
		logger.Warn("nostr relays/secret key not configured, bridging comment path disabled")
		return nil
	}

	protocol, err := bridge.NewNostrProtocol(relays, secretKey)
	if err != nil {
		logger.Error("failed to construct nostr protocol, bridging comment path disabled", slog.Any("error", err))
		return nil
	}
	return bridge.NewService(protocol, true, logger)
}

// applyMiddleware wraps mux with the ambient chain: request id, panic
// recovery, tracing, structured logging, input limits, request
// timeout, and metrics. CORS, CSP, rate limiting, and authentication
// are absent on purpose: no accounts, no public multi-tenant exposure.
func applyMiddleware(logger *slog.Logger, handler http.Handler) http.Handler {
	requestTimeout := config.GetEnvDuration("SCROLL_REQUEST_TIMEOUT", 30*time.Second)
	maxBody := config.GetEnvInt("SCROLL_MAX_BODY_BYTES", 1<<20)

	chain := handler
	chain = hhttp.MetricsMiddleware(chain)
	chain = hhttp.Timeout(requestTimeout)(chain)
	chain = hhttp.InputValidation()(chain)
	chain = hhttp.LimitRequestBody(int64(maxBody))(chain)
	chain = hhttp.Logging(logger)(chain)
	chain = tracing.Middleware(chain)
	chain = hhttp.Recover(logger)(chain)
	chain = requestid.Middleware(chain)
	return chain
}

// runServer listens in a goroutine, waits on SIGINT/SIGTERM, then
// shuts down with a bounded grace period.
func runServer(logger *slog.Logger, handler http.Handler) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	addr := config.GetEnvString("SCROLL_ADDR", ":8081")

	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		logger.Info("feedapi starting", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("feedapi failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down feedapi...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("feedapi shutdown failed", slog.Any("error", err))
	}
	logger.Info("feedapi stopped")
}
