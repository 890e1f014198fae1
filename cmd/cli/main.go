// Command cli asks questions about inventory items, either one at a time or from an interactive terminal game.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/myrjola/nai/internal/catalog"
	"github.com/myrjola/nai/internal/envstruct"
	"github.com/myrjola/nai/internal/errors"
	"github.com/myrjola/nai/internal/logging"
	"github.com/spf13/cobra"
)

type config struct {
	ServerURL    string        `env:"NAI_SERVER_URL" envDefault:"http://localhost:5000"`
	Slots        int           `env:"NAI_SLOTS" envDefault:"5"`
	Catalog      string        `env:"NAI_CATALOG" envDefault:""`
	QueryTimeout time.Duration `env:"NAI_QUERY_TIMEOUT" envDefault:"0s"`
	DiscardStale bool          `env:"NAI_DISCARD_STALE" envDefault:"false"`
	LogFile      string        `env:"NAI_LOG_FILE" envDefault:"nai.log"`
	LogLevel     string        `env:"LOG_LEVEL" envDefault:"info"`
}

// cli holds what every command needs once the persistent pre-run has configured it.
type cli struct {
	lookupEnv func(string) (string, bool)
	cfg       config
	level     slog.Level
	logger    *slog.Logger
	catalog   *catalog.Catalog
}

var (
	queryGroup   = &cobra.Group{ID: "query", Title: "Asking questions:"}
	catalogGroup = &cobra.Group{ID: "catalog", Title: "Catalog:"}
)

func newRootCmd(lookupEnv func(string) (string, bool)) *cobra.Command {
	c := &cli{lookupEnv: lookupEnv}
	root := &cobra.Command{
		Use:           "nai",
		Long:          `Ask a text-generation service questions about the items in your inventory.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.configure(cmd.ErrOrStderr())
		},
	}
	root.AddGroup(queryGroup, catalogGroup)
	root.AddCommand(c.itemsCmd(), c.askCmd(), c.playCmd())
	return root
}

func (c *cli) configure(logSink io.Writer) error {
	var err error
	if err = envstruct.Populate(&c.cfg, c.lookupEnv); err != nil {
		return errors.Wrap(err, "populate config")
	}
	if c.level, err = logging.ParseLevel(c.cfg.LogLevel); err != nil {
		return errors.Wrap(err, "configure logging")
	}
	c.logger = logging.NewLogger(logSink, c.level)
	if c.catalog, err = catalog.LoadFile(c.cfg.Catalog); err != nil {
		return errors.Wrap(err, "load catalog")
	}
	return nil
}

func main() {
	// A missing .env is fine, the environment may be configured otherwise.
	_ = godotenv.Load()

	if err := newRootCmd(os.LookupEnv).Execute(); err != nil {
		if !errors.Is(err, errNotAnswered) {
			_, _ = fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
