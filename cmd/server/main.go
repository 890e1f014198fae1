// Command server is the generation service: it answers questions about catalog items from their lore.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/myrjola/nai/internal/ai"
	"github.com/myrjola/nai/internal/catalog"
	"github.com/myrjola/nai/internal/envstruct"
	"github.com/myrjola/nai/internal/errors"
	"github.com/myrjola/nai/internal/logging"
	"github.com/myrjola/nai/internal/pprofserver"
	"github.com/myrjola/nai/internal/repositories"
	"github.com/myrjola/nai/internal/sqlite"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type answerer interface {
	Answer(ctx context.Context, itemType, question, lore string) (ai.Answer, error)
	Refine(ctx context.Context, question, initialAnswer string) (string, error)
}

type application struct {
	logger      *slog.Logger
	catalog     *catalog.Catalog
	answerer    answerer
	completions *repositories.CompletionRepository
	metrics     http.Handler
}

type config struct {
	// Addr is the address to listen on. Use localhost:0 for a random port.
	Addr             string        `env:"NAI_ADDR" envDefault:"localhost:5000"`
	SqliteURL        string        `env:"NAI_SQLITE_URL" envDefault:"./nai.sqlite"`
	Catalog          string        `env:"NAI_CATALOG" envDefault:""`
	Provider         string        `env:"NAI_PROVIDER" envDefault:"openai"`
	Model            string        `env:"NAI_MODEL" envDefault:"gpt-4o-mini"`
	AIBaseURL        string        `env:"NAI_AI_BASE_URL" envDefault:""`
	OpenAIAPIKey     string        `env:"OPENAI_API_KEY" envDefault:""`
	AITimeout        time.Duration `env:"NAI_AI_TIMEOUT" envDefault:"120s"`
	MaxContextTokens int           `env:"NAI_MAX_CONTEXT_TOKENS" envDefault:"512"`
	Refine           bool          `env:"NAI_REFINE" envDefault:"true"`
	// PprofPort enables the profiling server on [::1]:PprofPort when set.
	PprofPort        string        `env:"NAI_PPROF_PORT" envDefault:""`
}

func run(ctx context.Context, logger *slog.Logger, lookupEnv func(string) (string, bool)) error {
	var (
		cfg config
		err error
	)
	if err = envstruct.Populate(&cfg, lookupEnv); err != nil {
		return errors.Wrap(err, "populate config")
	}

	if cfg.PprofPort != "" {
		if _, err = pprofserver.Launch(ctx, cfg.PprofPort, logger); err != nil {
			return errors.Wrap(err, "launch pprof server")
		}
	}

	cat, err := catalog.LoadFile(cfg.Catalog)
	if err != nil {
		return errors.Wrap(err, "load catalog")
	}

	db, err := sqlite.NewDatabase(ctx, cfg.SqliteURL, logger)
	if err != nil {
		return errors.Wrap(err, "open db", slog.String("url", cfg.SqliteURL))
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			logger.LogAttrs(ctx, slog.LevelError, "close db", errors.SlogError(closeErr))
		}
	}()
	go db.RunOptimizer(ctx, time.Hour)

	completer, err := ai.NewCompleter(ai.ProviderConfig{
		Provider: cfg.Provider,
		Model:    cfg.Model,
		BaseURL:  cfg.AIBaseURL,
		APIKey:   cfg.OpenAIAPIKey,
		Timeout:  cfg.AITimeout,
	}, logger)
	if err != nil {
		return errors.Wrap(err, "new completer")
	}
	truncator := ai.NewTruncator(ctx, cfg.Model, cfg.MaxContextTokens, logger)

	app := application{
		logger:      logger,
		catalog:     cat,
		answerer:    ai.NewAnswerer(completer, truncator, cfg.Refine, logger),
		completions: repositories.NewCompletionRepository(db, logger),
		metrics:     promhttp.Handler(),
	}
	logger.LogAttrs(ctx, slog.LevelInfo, "configured generation",
		slog.String("provider", cfg.Provider), slog.String("model", cfg.Model),
		slog.Int("items", len(cat.Items())), slog.Bool("refine", cfg.Refine))

	if err = app.configureAndStartServer(ctx, cfg.Addr, handlerTimeout(cfg)); err != nil {
		return errors.Wrap(err, "start server")
	}
	return nil
}

// handlerTimeout leaves room for both completions of a refined answer.
func handlerTimeout(cfg config) time.Duration {
	if cfg.Refine {
		return 2*cfg.AITimeout + 5*time.Second //nolint:mnd // a few seconds for the rest of the request
	}
	return cfg.AITimeout + 5*time.Second //nolint:mnd // see above
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// A missing .env is fine, the environment may be configured otherwise.
	envErr := godotenv.Load()

	level, levelErr := logging.ParseLevel(os.Getenv("LOG_LEVEL"))
	logger := logging.NewLogger(os.Stdout, level)
	if levelErr != nil {
		logger.LogAttrs(ctx, slog.LevelWarn, "using default log level", errors.SlogError(levelErr))
	}
	if envErr != nil {
		logger.LogAttrs(ctx, slog.LevelDebug, "no .env loaded", slog.String("reason", envErr.Error()))
	}

	if err := run(ctx, logger, os.LookupEnv); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "failure starting application", errors.SlogError(err))
		os.Exit(1)
	}
}
