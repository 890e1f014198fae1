// Command smoketest checks that a deployed generation service answers questions.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/myrjola/nai/internal/catalog"
	"github.com/myrjola/nai/internal/e2etest"
	"github.com/myrjola/nai/internal/errors"
	"github.com/myrjola/nai/internal/logging"
	"github.com/myrjola/nai/internal/query"
)

// TestGenerate asks the first question of every catalog item.
func TestGenerate(ctx context.Context, logger *slog.Logger, client *e2etest.Client, cat *catalog.Catalog) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute) //nolint:mnd // generation is slow on CPU-only hosts
	defer cancel()

	if err := client.WaitForReady(ctx, "/api/healthy"); err != nil {
		return errors.Wrap(err, "wait for ready")
	}
	for _, item := range cat.Items() {
		question, ok := item.Question(0)
		if !ok {
			continue
		}
		var resp query.Response
		status, err := client.PostJSON(ctx, query.GeneratePath,
			query.Request{ItemType: item.Type.WireName(), Question: question}, &resp)
		if err != nil {
			return errors.Wrap(err, "generate", slog.String("item_type", item.Type.WireName()))
		}
		if status != http.StatusOK || resp.Error != "" || strings.TrimSpace(resp.Response) == "" {
			return errors.New("bad generation response", slog.String("item_type", item.Type.WireName()),
				slog.Int("status", status), slog.String("error", resp.Error))
		}
		logger.LogAttrs(ctx, slog.LevelInfo, "answered",
			slog.String("question", question), slog.String("answer", resp.Response),
			slog.Float64("time_taken", resp.TimeTaken))
	}
	return nil
}

func main() {
	logger := logging.NewLogger(os.Stdout, slog.LevelDebug)
	ctx := context.Background()

	if len(os.Args) != 2 { //nolint:mnd // we expect only the base URL to be passed as argument.
		logger.LogAttrs(ctx, slog.LevelError, "usage: smoketest <base url>")
		os.Exit(1)
	}

	url := strings.TrimSuffix(os.Args[1], "/")
	ctx = logging.WithAttrs(ctx, slog.String("url", url))

	cat, err := catalog.Default()
	if err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error loading catalog", errors.SlogError(err))
		os.Exit(1)
	}
	if err = TestGenerate(ctx, logger, e2etest.NewClient(url), cat); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error testing generation", errors.SlogError(err))
		os.Exit(1)
	}

	logger.LogAttrs(ctx, slog.LevelInfo, "Smoke test successful 🙌")
	os.Exit(0)
}
