// Package sqlite opens the answer history database and keeps its schema in sync with schema.sql.
package sqlite

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/myrjola/nai/internal/errors"
	"github.com/myrjola/nai/internal/random"

	_ "embed"

	_ "github.com/mattn/go-sqlite3" // Enable sqlite3 driver
)

//go:embed schema.sql
var schemaDefinition string

const maxReadConns = 10

type Database struct {
	ReadWrite *sqlx.DB
	ReadOnly  *sqlx.DB
	logger    *slog.Logger
}

// NewDatabase connects to the database at url and synchronizes the schema.
//
// It opens two connection pools: a single connection for writes and a pool of read-only connections. See
// https://github.com/mattn/go-sqlite3/issues/1179#issuecomment-1638083995.
//
// url is the path to the SQLite database file or ":memory:" for an in-memory database.
func NewDatabase(ctx context.Context, url string, logger *slog.Logger) (*Database, error) {
	db, err := connect(url, logger)
	if err != nil {
		return nil, err
	}
	if err = db.migrateTo(ctx, schemaDefinition); err != nil {
		return nil, errors.Wrap(err, "synchronize schema")
	}
	return db, nil
}

func connect(url string, logger *slog.Logger) (*Database, error) {
	var (
		err         error
		readWriteDB *sqlx.DB
		readDB      *sqlx.DB
	)

	// In-memory databases need shared cache so that both pools see the same data, and a unique name so that
	// parallel tests don't share data. See https://www.sqlite.org/inmemorydb.html.
	readMode, readWriteMode := "mode=ro", "mode=rwc"
	if strings.Contains(url, ":memory:") {
		var randomID string
		if randomID, err = random.Letters(20); err != nil { //nolint:mnd // long enough to be unique
			return nil, errors.Wrap(err, "generate random ID")
		}
		url = randomID
		readMode, readWriteMode = "mode=memory&cache=shared", "mode=memory&cache=shared"
	}
	commonConfig := strings.Join([]string{
		"_journal_mode=wal",
		"_busy_timeout=5000",
		"_synchronous=normal",
		"_foreign_keys=on",
		"_temp_store=memory",
	}, "&")

	// Options prefixed with '_' are pragmas (https://www.sqlite.org/pragma.html), the rest are URI parameters
	// (https://www.sqlite.org/uri.html).
	readConfig := fmt.Sprintf("file:%s?%s&_txlock=deferred&_query_only=true&%s", url, readMode, commonConfig)
	readWriteConfig := fmt.Sprintf("file:%s?%s&_txlock=immediate&%s", url, readWriteMode, commonConfig)

	if readWriteDB, err = sqlx.Open("sqlite3", readWriteConfig); err != nil {
		return nil, errors.Wrap(err, "open read-write database")
	}
	readWriteDB.SetMaxOpenConns(1)
	readWriteDB.SetMaxIdleConns(1)
	readWriteDB.SetConnMaxLifetime(time.Hour)
	readWriteDB.SetConnMaxIdleTime(time.Hour)

	if readDB, err = sqlx.Open("sqlite3", readConfig); err != nil {
		return nil, errors.Wrap(err, "open read database")
	}
	readDB.SetMaxOpenConns(maxReadConns)
	readDB.SetMaxIdleConns(maxReadConns)
	readDB.SetConnMaxLifetime(time.Hour)
	readDB.SetConnMaxIdleTime(time.Hour)

	return &Database{
		ReadWrite: readWriteDB,
		ReadOnly:  readDB,
		logger:    logger.With("source", "Database"),
	}, nil
}

// Close closes both connection pools.
func (db *Database) Close() error {
	return errors.Join(
		errors.Wrap(db.ReadOnly.Close(), "close read database"),
		errors.Wrap(db.ReadWrite.Close(), "close read-write database"),
	)
}
