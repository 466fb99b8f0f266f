package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"craftcrm/internal/model"
)

// ActivityRepository is append-only: entries are inserted inside the
// transition's transaction and never updated or deleted.
type ActivityRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewActivityRepository(db *pgxpool.Pool, logger *zap.Logger) *ActivityRepository {
	return &ActivityRepository{
		db:     db,
		logger: logger,
	}
}

func (r *ActivityRepository) Insert(ctx context.Context, tx pgx.Tx, e *model.ActivityEntry) error {
	query := `
        INSERT INTO activities (id, entity_type, entity_id, type, message,
                                actor_id, actor_name, actor_role, metadata, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
    `
	_, err := tx.Exec(ctx, query,
		e.ID,
		e.EntityType,
		e.EntityID,
		e.Type,
		e.Message,
		e.ActorID,
		e.ActorName,
		e.ActorRole,
		e.Metadata,
		e.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to insert activity entry",
			zap.String("type", e.Type),
			zap.Int("entity_id", e.EntityID),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (r *ActivityRepository) FindByEntity(ctx context.Context, entityType string, entityID, limit, offset int) ([]model.ActivityEntry, error) {
	query := `
        SELECT id, entity_type, entity_id, type, message,
               actor_id, actor_name, actor_role, metadata, created_at
        FROM activities
        WHERE entity_type = $1 AND entity_id = $2
        ORDER BY created_at DESC
        LIMIT $3 OFFSET $4
    `
	rows, err := r.db.Query(ctx, query, entityType, entityID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []model.ActivityEntry
	for rows.Next() {
		var e model.ActivityEntry
		if err := rows.Scan(
			&e.ID,
			&e.EntityType,
			&e.EntityID,
			&e.Type,
			&e.Message,
			&e.ActorID,
			&e.ActorName,
			&e.ActorRole,
			&e.Metadata,
			&e.CreatedAt,
		); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
