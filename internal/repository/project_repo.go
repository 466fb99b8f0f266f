package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"craftcrm/internal/model"
	"craftcrm/pkg/metrics"
)

type ProjectRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewProjectRepository(db *pgxpool.Pool, logger *zap.Logger) *ProjectRepository {
	return &ProjectRepository{
		db:     db,
		logger: logger,
	}
}

const projectColumns = `
	id, name, client_name, lead_id, current_stage,
	completed_substages, percentage_substages,
	hold_status, hold_reason, hold_changed_by, hold_changed_at,
	created_at, updated_at
`

func scanProject(row pgx.Row) (*model.Project, error) {
	var p model.Project
	var completedJSON, percentJSON []byte
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.ClientName,
		&p.LeadID,
		&p.CurrentStage,
		&completedJSON,
		&percentJSON,
		&p.Hold.Status,
		&p.Hold.Reason,
		&p.Hold.ChangedBy,
		&p.Hold.ChangedAt,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(completedJSON) > 0 {
		if err := json.Unmarshal(completedJSON, &p.CompletedSubstageIDs); err != nil {
			return nil, fmt.Errorf("failed to decode completed substages: %w", err)
		}
	}
	if len(percentJSON) > 0 {
		if err := json.Unmarshal(percentJSON, &p.PercentageSubstages); err != nil {
			return nil, fmt.Errorf("failed to decode percentage substages: %w", err)
		}
	}
	if p.PercentageSubstages == nil {
		p.PercentageSubstages = make(map[string]int)
	}
	return &p, nil
}

func (r *ProjectRepository) Insert(ctx context.Context, tx pgx.Tx, p *model.Project) error {
	r.logger.Debug("Inserting project",
		zap.String("name", p.Name),
		zap.String("stage", p.CurrentStage),
	)

	completedJSON, err := json.Marshal(p.CompletedSubstageIDs)
	if err != nil {
		return err
	}
	percentJSON, err := json.Marshal(p.PercentageSubstages)
	if err != nil {
		return err
	}

	query := `
        INSERT INTO projects (name, client_name, lead_id, current_stage,
                              completed_substages, percentage_substages, hold_status)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id, created_at, updated_at
    `
	err = tx.QueryRow(ctx, query,
		p.Name,
		p.ClientName,
		p.LeadID,
		p.CurrentStage,
		completedJSON,
		percentJSON,
		p.Hold.Status,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)

	if err != nil {
		r.logger.Error("Failed to insert project", zap.Error(err))
		return err
	}

	r.logger.Info("Project inserted successfully",
		zap.Int("id", p.ID),
		zap.String("name", p.Name),
	)
	return nil
}

func (r *ProjectRepository) FindByID(ctx context.Context, id int) (*model.Project, error) {
	start := time.Now()
	defer func() {
		metrics.RecordDBQueryDuration("select", "projects", time.Since(start))
	}()

	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1`
	return scanProject(r.db.QueryRow(ctx, query, id))
}

// LockByID fetches the project row with a FOR UPDATE lock, serializing
// all transitions on this project for the life of the transaction.
func (r *ProjectRepository) LockByID(ctx context.Context, tx pgx.Tx, id int) (*model.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1 FOR UPDATE`
	return scanProject(tx.QueryRow(ctx, query, id))
}

// UpdateProgress persists stage and sub-stage progress after a
// successful transition. Must run inside the locking transaction.
func (r *ProjectRepository) UpdateProgress(ctx context.Context, tx pgx.Tx, p *model.Project) error {
	start := time.Now()
	defer func() {
		metrics.RecordDBQueryDuration("update", "projects", time.Since(start))
	}()

	completedJSON, err := json.Marshal(p.CompletedSubstageIDs)
	if err != nil {
		return err
	}
	percentJSON, err := json.Marshal(p.PercentageSubstages)
	if err != nil {
		return err
	}

	query := `
        UPDATE projects
        SET current_stage = $1,
            completed_substages = $2,
            percentage_substages = $3,
            updated_at = NOW()
        WHERE id = $4
    `
	_, err = tx.Exec(ctx, query, p.CurrentStage, completedJSON, percentJSON, p.ID)
	if err != nil {
		r.logger.Error("Failed to update project progress",
			zap.Int("id", p.ID),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (r *ProjectRepository) UpdateHold(ctx context.Context, tx pgx.Tx, id int, h model.HoldState) error {
	query := `
        UPDATE projects
        SET hold_status = $1,
            hold_reason = $2,
            hold_changed_by = $3,
            hold_changed_at = $4,
            updated_at = NOW()
        WHERE id = $5
    `
	_, err := tx.Exec(ctx, query, h.Status, h.Reason, h.ChangedBy, h.ChangedAt, id)
	if err != nil {
		r.logger.Error("Failed to update project hold status",
			zap.Int("id", id),
			zap.Error(err),
		)
		return err
	}
	return nil
}
