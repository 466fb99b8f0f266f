package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"craftcrm/internal/model"
)

type TimelineRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewTimelineRepository(db *pgxpool.Pool, logger *zap.Logger) *TimelineRepository {
	return &TimelineRepository{
		db:     db,
		logger: logger,
	}
}

// InsertBatch stores a freshly generated timeline. Entries keep catalog
// traversal order via their serial ids.
func (r *TimelineRepository) InsertBatch(ctx context.Context, tx pgx.Tx, projectID int, entries []model.TimelineEntry) error {
	query := `
        INSERT INTO timeline_entries (project_id, substage_id, title, stage_ref,
                                      expected_date, completed_date, status)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id
    `
	for i := range entries {
		e := &entries[i]
		e.ProjectID = projectID
		if err := tx.QueryRow(ctx, query,
			projectID,
			e.SubstageID,
			e.Title,
			e.StageRef,
			e.ExpectedDate,
			e.CompletedDate,
			e.Status,
		).Scan(&e.ID); err != nil {
			r.logger.Error("Failed to insert timeline entry",
				zap.Int("project_id", projectID),
				zap.String("substage_id", e.SubstageID),
				zap.Error(err),
			)
			return err
		}
	}
	return nil
}

func (r *TimelineRepository) findByProjectID(ctx context.Context, q Querier, projectID int) ([]model.TimelineEntry, error) {
	query := `
        SELECT id, project_id, substage_id, title, stage_ref,
               expected_date, completed_date, status
        FROM timeline_entries
        WHERE project_id = $1
        ORDER BY id ASC
    `
	rows, err := q.Query(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []model.TimelineEntry
	for rows.Next() {
		var e model.TimelineEntry
		if err := rows.Scan(
			&e.ID,
			&e.ProjectID,
			&e.SubstageID,
			&e.Title,
			&e.StageRef,
			&e.ExpectedDate,
			&e.CompletedDate,
			&e.Status,
		); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *TimelineRepository) FindByProjectID(ctx context.Context, projectID int) ([]model.TimelineEntry, error) {
	return r.findByProjectID(ctx, r.db, projectID)
}

// FindByProjectIDTx reads entries inside the transition's transaction so
// the recompute sees the locked row's timeline.
func (r *TimelineRepository) FindByProjectIDTx(ctx context.Context, tx pgx.Tx, projectID int) ([]model.TimelineEntry, error) {
	return r.findByProjectID(ctx, tx, projectID)
}

// UpdateStatuses writes back recomputed statuses and completion dates.
func (r *TimelineRepository) UpdateStatuses(ctx context.Context, tx pgx.Tx, entries []model.TimelineEntry) error {
	query := `
        UPDATE timeline_entries
        SET status = $1, completed_date = $2
        WHERE id = $3
    `
	for _, e := range entries {
		if _, err := tx.Exec(ctx, query, e.Status, e.CompletedDate, e.ID); err != nil {
			r.logger.Error("Failed to update timeline entry",
				zap.Int("id", e.ID),
				zap.Error(err),
			)
			return err
		}
	}
	return nil
}

// MarkSubstageCompleted completes the entry for a sub-stage. The
// completion date is write-once: COALESCE keeps any earlier value.
func (r *TimelineRepository) MarkSubstageCompleted(ctx context.Context, tx pgx.Tx, projectID int, substageID string) error {
	query := `
        UPDATE timeline_entries
        SET status = 'completed',
            completed_date = COALESCE(completed_date, NOW())
        WHERE project_id = $1 AND substage_id = $2
    `
	_, err := tx.Exec(ctx, query, projectID, substageID)
	return err
}
