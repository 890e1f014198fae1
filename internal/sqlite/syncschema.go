package sqlite

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/myrjola/nai/internal/errors"
	"github.com/myrjola/nai/internal/random"
)

// migrateTo makes the database schema match schemaDefinition.
//
// The migration is declarative: the target schema is created in a scratch in-memory database, attached, and
// compared against the current one. Removed tables are dropped, new tables created and changed tables rebuilt
// with the 12-step procedure of https://www.sqlite.org/lang_altertable.html#otheralter, keeping common columns.
// Indexes and triggers are recreated whenever their definition differs.
//
// Inspired by https://david.rothlis.net/declarative-schema-migration-for-sqlite/
func (db *Database) migrateTo(ctx context.Context, schemaDefinition string) (err error) {
	// Pragmas and ATTACH don't work inside a transaction, so the whole migration runs on one connection.
	conn, err := db.ReadWrite.Connx(ctx)
	if err != nil {
		return errors.Wrap(err, "acquire connection")
	}
	defer func() {
		if closeErr := conn.Close(); closeErr != nil {
			err = errors.Join(err, errors.Wrap(closeErr, "release connection"))
		}
	}()

	// Step 1: Disable foreign key validation temporarily.
	if _, err = conn.ExecContext(ctx, "PRAGMA foreign_keys = OFF"); err != nil {
		return errors.Wrap(err, "disable foreign key validation")
	}
	// Step 12: Re-enable foreign key validation.
	defer func() {
		if _, fkErr := conn.ExecContext(ctx, "PRAGMA foreign_keys = ON"); fkErr != nil {
			err = errors.Join(err, errors.Wrap(fkErr, "re-enable foreign key validation"))
		}
	}()

	var randomID string
	if randomID, err = random.Letters(20); err != nil { //nolint:mnd // long enough to be unique
		return errors.Wrap(err, "generate random ID")
	}
	targetDSN := fmt.Sprintf("file:%s?mode=memory&cache=shared", randomID)
	target, err := sqlx.Open("sqlite3", targetDSN)
	if err != nil {
		return errors.Wrap(err, "open schema target database")
	}
	defer func() {
		if closeErr := target.Close(); closeErr != nil {
			db.logger.LogAttrs(ctx, slog.LevelWarn, "close schema target database",
				errors.SlogError(errors.Wrap(closeErr, "close")))
		}
	}()
	// Keep one connection open so that the in-memory database lives until it has been attached.
	target.SetMaxIdleConns(1)
	if _, err = target.ExecContext(ctx, schemaDefinition); err != nil {
		return errors.Wrap(err, "create schema target database")
	}
	if _, err = conn.ExecContext(ctx, "ATTACH DATABASE ? AS schemaTarget", targetDSN); err != nil {
		return errors.Wrap(err, "attach schema target database")
	}
	defer func() {
		if _, detachErr := conn.ExecContext(ctx, "DETACH DATABASE schemaTarget"); detachErr != nil {
			db.logger.LogAttrs(ctx, slog.LevelWarn, "detach schema target database",
				errors.SlogError(errors.Wrap(detachErr, "detach")))
		}
	}()

	// Step 2: Start transaction.
	tx, err := conn.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "start transaction")
	}
	defer func() {
		_ = tx.Rollback() // No-op after commit.
	}()

	// Steps 3-7.
	if err = db.migrateTables(ctx, tx); err != nil {
		return errors.Wrap(err, "migrate tables")
	}
	// Step 8: Recreate indexes and triggers.
	if err = db.migrateIndexesAndTriggers(ctx, tx); err != nil {
		return errors.Wrap(err, "migrate indexes and triggers")
	}
	// Step 10: Check foreign key constraints.
	var violations []struct {
		Table  string `db:"table"`
		RowID  *int64 `db:"rowid"`
		Parent string `db:"parent"`
		FKID   int64  `db:"fkid"`
	}
	if err = tx.SelectContext(ctx, &violations, "PRAGMA foreign_key_check"); err != nil {
		return errors.Wrap(err, "foreign key check")
	}
	if len(violations) > 0 {
		return errors.New("foreign key violations after migration", slog.Int("count", len(violations)),
			slog.String("table", violations[0].Table))
	}
	// Step 11: Commit transaction from step 2.
	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "commit transaction")
	}
	return nil
}

type schemaObject struct {
	Name string `db:"name"`
	SQL  string `db:"sql"`
}

type changedTable struct {
	Name       string `db:"name"`
	CurrentSQL string `db:"current_sql"`
	NewSQL     string `db:"new_sql"`
}

func (db *Database) migrateTables(ctx context.Context, tx *sqlx.Tx) error {
	var deleted []string
	if err := tx.SelectContext(ctx, &deleted, `SELECT current.name
FROM main.sqlite_schema AS current
LEFT JOIN schemaTarget.sqlite_schema AS target ON current.name = target.name AND current.type = target.type
WHERE current.type = 'table' AND target.type IS NULL AND current.name NOT LIKE 'sqlite_%'`); err != nil {
		return errors.Wrap(err, "query deleted tables")
	}
	for _, table := range deleted {
		db.logger.LogAttrs(ctx, slog.LevelInfo, "dropping table", slog.String("table", table))
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("DROP TABLE main.%q", table)); err != nil {
			return errors.Wrap(err, "drop table", slog.String("table", table))
		}
	}

	var created []schemaObject
	if err := tx.SelectContext(ctx, &created, `SELECT target.name, target.sql
FROM schemaTarget.sqlite_schema AS target
LEFT JOIN main.sqlite_schema AS current ON current.name = target.name AND current.type = target.type
WHERE target.type = 'table' AND current.type IS NULL AND target.name NOT LIKE 'sqlite_%'`); err != nil {
		return errors.Wrap(err, "query new tables")
	}
	for _, table := range created {
		db.logger.LogAttrs(ctx, slog.LevelInfo, "creating table", slog.String("table", table.Name))
		if _, err := tx.ExecContext(ctx, table.SQL); err != nil {
			return errors.Wrap(err, "create table", slog.String("table", table.Name))
		}
	}

	var changed []changedTable
	if err := tx.SelectContext(ctx, &changed, `SELECT current.name, current.sql AS current_sql, target.sql AS new_sql
FROM main.sqlite_schema AS current
JOIN schemaTarget.sqlite_schema AS target ON current.name = target.name AND current.type = target.type
WHERE current.type = 'table' AND current.name NOT LIKE 'sqlite_%' AND current.sql <> target.sql`); err != nil {
		return errors.Wrap(err, "query changed tables")
	}
	for _, table := range changed {
		if err := db.rebuildTable(ctx, tx, table); err != nil {
			return errors.Wrap(err, "rebuild table", slog.String("table", table.Name))
		}
	}
	return nil
}

// rebuildTable runs steps 4-7 for one changed table.
func (db *Database) rebuildTable(ctx context.Context, tx *sqlx.Tx, table changedTable) error {
	db.logger.LogAttrs(ctx, slog.LevelInfo, "migrating table",
		slog.String("table", table.Name),
		slog.String("current_sql", table.CurrentSQL),
		slog.String("new_sql", table.NewSQL))

	// Step 4: Create the new table under a temporary name.
	tempName := table.Name + "_migration_temp"
	tempSQL := strings.Replace(table.NewSQL, table.Name, tempName, 1)
	if _, err := tx.ExecContext(ctx, tempSQL); err != nil {
		return errors.Wrap(err, "create temporary table", slog.String("query", tempSQL))
	}

	// Step 5: Copy the common columns. Names are quoted since they may be keywords like "order".
	var columns []string
	if err := tx.SelectContext(ctx, &columns, `SELECT '"' || target.name || '"'
FROM pragma_table_info(?1) AS current
JOIN pragma_table_info(?1, 'schemaTarget') AS target ON target.name = current.name`, table.Name); err != nil {
		return errors.Wrap(err, "query common columns")
	}
	if len(columns) > 0 {
		common := strings.Join(columns, ", ")
		copySQL := fmt.Sprintf("INSERT INTO %q (%s) SELECT %s FROM main.%q", tempName, common, common, table.Name)
		if _, err := tx.ExecContext(ctx, copySQL); err != nil {
			return errors.Wrap(err, "copy data", slog.String("query", copySQL))
		}
	}

	// Step 6: Drop the old table.
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("DROP TABLE main.%q", table.Name)); err != nil {
		return errors.Wrap(err, "drop old table")
	}
	// Step 7: Rename the new table.
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("ALTER TABLE %q RENAME TO %q", tempName, table.Name)); err != nil {
		return errors.Wrap(err, "rename new table")
	}
	return nil
}

// migrateIndexesAndTriggers drops explicit indexes and triggers that are missing from or differ in the target
// schema and creates the ones the current schema lacks. Automatic indexes have no SQL and are left alone.
func (db *Database) migrateIndexesAndTriggers(ctx context.Context, tx *sqlx.Tx) error {
	var stale []struct {
		Type string `db:"type"`
		Name string `db:"name"`
	}
	if err := tx.SelectContext(ctx, &stale, `SELECT current.type, current.name
FROM main.sqlite_schema AS current
LEFT JOIN schemaTarget.sqlite_schema AS target
    ON current.name = target.name AND current.type = target.type AND current.sql = target.sql
WHERE current.type IN ('index', 'trigger') AND current.sql IS NOT NULL AND target.name IS NULL`); err != nil {
		return errors.Wrap(err, "query stale indexes and triggers")
	}
	for _, obj := range stale {
		db.logger.LogAttrs(ctx, slog.LevelInfo, "dropping "+obj.Type, slog.String("name", obj.Name))
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("DROP %s main.%q", strings.ToUpper(obj.Type), obj.Name)); err != nil {
			return errors.Wrap(err, "drop", slog.String("type", obj.Type), slog.String("name", obj.Name))
		}
	}

	var missing []schemaObject
	if err := tx.SelectContext(ctx, &missing, `SELECT target.name, target.sql
FROM schemaTarget.sqlite_schema AS target
LEFT JOIN main.sqlite_schema AS current
    ON current.name = target.name AND current.type = target.type AND current.sql = target.sql
WHERE target.type IN ('index', 'trigger') AND target.sql IS NOT NULL AND current.name IS NULL`); err != nil {
		return errors.Wrap(err, "query missing indexes and triggers")
	}
	for _, obj := range missing {
		db.logger.LogAttrs(ctx, slog.LevelInfo, "creating index or trigger", slog.String("name", obj.Name))
		if _, err := tx.ExecContext(ctx, obj.SQL); err != nil {
			return errors.Wrap(err, "create", slog.String("name", obj.Name))
		}
	}
	return nil
}
