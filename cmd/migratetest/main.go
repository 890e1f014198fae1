// Command migratetest migrates a copy of a production database to the current schema and checks that the
// recorded answers survived.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/myrjola/nai/internal/errors"
	"github.com/myrjola/nai/internal/logging"
	"github.com/myrjola/nai/internal/repositories"
	"github.com/myrjola/nai/internal/sqlite"
)

func main() {
	logger := logging.NewLogger(os.Stdout, slog.LevelDebug)
	var (
		err       error
		start     = time.Now()
		sqliteURL string
		ok        bool
	)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second) //nolint:mnd // 5 seconds
	defer cancel()

	if sqliteURL, ok = os.LookupEnv("NAI_SQLITE_URL"); !ok {
		logger.LogAttrs(ctx, slog.LevelError, "NAI_SQLITE_URL not set")
		os.Exit(1) //nolint:gocritic // nothing to clean up yet
	}

	var db *sqlite.Database
	if db, err = sqlite.NewDatabase(ctx, sqliteURL, logger); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error creating database",
			slog.String("url", sqliteURL), errors.SlogError(err))
		os.Exit(1)
	}
	defer func() {
		_ = db.Close()
	}()

	// Read back the recorded answers through the repository as a simple smoke test.
	completions, err := repositories.NewCompletionRepository(db, logger).List(ctx, "", 0)
	if err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error listing completions", errors.SlogError(err))
		os.Exit(1)
	}
	if len(completions) == 0 {
		logger.LogAttrs(ctx, slog.LevelError, "no completions found, something is likely wrong")
		os.Exit(1)
	}
	logger.LogAttrs(ctx, slog.LevelInfo, "completion count", slog.Int("count", len(completions)))

	logger.LogAttrs(ctx, slog.LevelInfo, "Migration test successful 🙌", slog.Duration("duration", time.Since(start)))
}
