package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"craftcrm/internal/model"
)

type LeadRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewLeadRepository(db *pgxpool.Pool, logger *zap.Logger) *LeadRepository {
	return &LeadRepository{
		db:     db,
		logger: logger,
	}
}

const leadColumns = `
	id, client_name, phone, email, source, current_stage,
	hold_status, hold_reason, hold_changed_by, hold_changed_at,
	project_id, created_at, updated_at
`

func scanLead(row pgx.Row) (*model.Lead, error) {
	var l model.Lead
	err := row.Scan(
		&l.ID,
		&l.ClientName,
		&l.Phone,
		&l.Email,
		&l.Source,
		&l.CurrentStage,
		&l.Hold.Status,
		&l.Hold.Reason,
		&l.Hold.ChangedBy,
		&l.Hold.ChangedAt,
		&l.ProjectID,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *LeadRepository) Insert(ctx context.Context, tx pgx.Tx, l *model.Lead) error {
	r.logger.Debug("Inserting lead",
		zap.String("client_name", l.ClientName),
		zap.String("stage", l.CurrentStage),
	)

	query := `
        INSERT INTO leads (client_name, phone, email, source, current_stage, hold_status)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at, updated_at
    `
	err := tx.QueryRow(ctx, query,
		l.ClientName,
		l.Phone,
		l.Email,
		l.Source,
		l.CurrentStage,
		l.Hold.Status,
	).Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt)

	if err != nil {
		r.logger.Error("Failed to insert lead", zap.Error(err))
		return err
	}

	r.logger.Info("Lead inserted successfully",
		zap.Int("id", l.ID),
		zap.String("client_name", l.ClientName),
	)
	return nil
}

func (r *LeadRepository) FindByID(ctx context.Context, id int) (*model.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE id = $1`
	return scanLead(r.db.QueryRow(ctx, query, id))
}

// LockByID fetches the lead row with a FOR UPDATE lock.
func (r *LeadRepository) LockByID(ctx context.Context, tx pgx.Tx, id int) (*model.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE id = $1 FOR UPDATE`
	return scanLead(tx.QueryRow(ctx, query, id))
}

func (r *LeadRepository) UpdateStage(ctx context.Context, tx pgx.Tx, id int, stage string) error {
	query := `
        UPDATE leads
        SET current_stage = $1, updated_at = NOW()
        WHERE id = $2
    `
	_, err := tx.Exec(ctx, query, stage, id)
	if err != nil {
		r.logger.Error("Failed to update lead stage",
			zap.Int("id", id),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (r *LeadRepository) UpdateHold(ctx context.Context, tx pgx.Tx, id int, h model.HoldState) error {
	query := `
        UPDATE leads
        SET hold_status = $1,
            hold_reason = $2,
            hold_changed_by = $3,
            hold_changed_at = $4,
            updated_at = NOW()
        WHERE id = $5
    `
	_, err := tx.Exec(ctx, query, h.Status, h.Reason, h.ChangedBy, h.ChangedAt, id)
	if err != nil {
		r.logger.Error("Failed to update lead hold status",
			zap.Int("id", id),
			zap.Error(err),
		)
		return err
	}
	return nil
}

// SetProjectID links a converted lead to the project created from it.
func (r *LeadRepository) SetProjectID(ctx context.Context, tx pgx.Tx, leadID, projectID int) error {
	query := `
        UPDATE leads
        SET project_id = $1, updated_at = NOW()
        WHERE id = $2
    `
	_, err := tx.Exec(ctx, query, projectID, leadID)
	return err
}
