package repositories

import (
	"context"
	"log/slog"

	"github.com/myrjola/nai/internal/errors"
	"github.com/myrjola/nai/internal/models"
	"github.com/myrjola/nai/internal/sqlite"
)

// DefaultListLimit caps List when no limit is given.
const DefaultListLimit = 100

type CompletionRepository struct {
	db     *sqlite.Database
	logger *slog.Logger
}

func NewCompletionRepository(db *sqlite.Database, logger *slog.Logger) *CompletionRepository {
	return &CompletionRepository{
		db:     db,
		logger: logger.With("source", "CompletionRepository"),
	}
}

// Record stores a completion at the end of its item type's history and returns it with ID, Order and Created
// filled in.
func (r *CompletionRepository) Record(ctx context.Context, c models.Completion) (models.Completion, error) {
	stmt := `INSERT INTO completions (item_type, "order", question, answer, initial_answer, time_taken_ms)
VALUES (:item_type,
        (SELECT COALESCE(MAX("order") + 1, 0) FROM completions WHERE item_type = :item_type),
        :question, :answer, :initial_answer, :time_taken_ms)
RETURNING id, "order", created`
	query, args, err := r.db.ReadWrite.BindNamed(stmt, c)
	if err != nil {
		return models.Completion{}, errors.Wrap(err, "bind completion")
	}
	if err = r.db.ReadWrite.QueryRowxContext(ctx, query, args...).Scan(&c.ID, &c.Order, &c.Created); err != nil {
		return models.Completion{}, errors.Wrap(err, "insert completion", slog.String("item_type", c.ItemType))
	}
	r.logger.LogAttrs(ctx, slog.LevelDebug, "recorded completion",
		slog.Int64("id", c.ID), slog.String("item_type", c.ItemType), slog.Int64("order", c.Order))
	return c, nil
}

// List returns up to limit completions in asking order. An empty itemType lists all item types.
func (r *CompletionRepository) List(ctx context.Context, itemType string, limit int) ([]models.Completion, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	completions := []models.Completion{}
	stmt := `SELECT id, item_type, "order", question, answer, initial_answer, time_taken_ms, created
FROM completions
WHERE ?1 = '' OR item_type = ?1
ORDER BY item_type, "order"
LIMIT ?2`
	if err := r.db.ReadOnly.SelectContext(ctx, &completions, stmt, itemType, limit); err != nil {
		return nil, errors.Wrap(err, "select completions", slog.String("item_type", itemType))
	}
	return completions, nil
}
