package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"craftcrm/internal/model"
)

type CollaboratorRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewCollaboratorRepository(db *pgxpool.Pool, logger *zap.Logger) *CollaboratorRepository {
	return &CollaboratorRepository{
		db:     db,
		logger: logger,
	}
}

// Add attaches a user to an entity. Returns false when the user was
// already a collaborator; the set only ever grows through this path.
func (r *CollaboratorRepository) Add(ctx context.Context, tx pgx.Tx, entityType string, entityID, userID int) (bool, error) {
	query := `
        INSERT INTO collaborators (entity_type, entity_id, user_id, added_at)
        VALUES ($1, $2, $3, NOW())
        ON CONFLICT (entity_type, entity_id, user_id) DO NOTHING
    `
	tag, err := tx.Exec(ctx, query, entityType, entityID, userID)
	if err != nil {
		r.logger.Error("Failed to add collaborator",
			zap.String("entity_type", entityType),
			zap.Int("entity_id", entityID),
			zap.Int("user_id", userID),
			zap.Error(err),
		)
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *CollaboratorRepository) listUsers(ctx context.Context, q Querier, entityType string, entityID int) ([]model.User, error) {
	query := `
        SELECT u.id, u.name, u.email, u.password_hash, u.role, u.active, u.created_at
        FROM collaborators c
        JOIN users u ON u.id = c.user_id
        WHERE c.entity_type = $1 AND c.entity_id = $2
        ORDER BY c.added_at ASC
    `
	rows, err := q.Query(ctx, query, entityType, entityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(
			&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.Active, &u.CreatedAt,
		); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// ListUsers returns the entity's collaborators with their user records.
func (r *CollaboratorRepository) ListUsers(ctx context.Context, entityType string, entityID int) ([]model.User, error) {
	return r.listUsers(ctx, r.db, entityType, entityID)
}

// ListUsersTx reads collaborators inside the transition's transaction.
func (r *CollaboratorRepository) ListUsersTx(ctx context.Context, tx pgx.Tx, entityType string, entityID int) ([]model.User, error) {
	return r.listUsers(ctx, tx, entityType, entityID)
}
