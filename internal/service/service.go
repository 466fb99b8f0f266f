package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"craftcrm/internal/model"
	"craftcrm/internal/progression"
	"craftcrm/internal/repository"
	"craftcrm/pkg/outbox"
)

// Repos bundles every repository a service may touch, so constructors
// stay readable in main.
type Repos struct {
	Projects      *repository.ProjectRepository
	Leads         *repository.LeadRepository
	Timelines     *repository.TimelineRepository
	Activities    *repository.ActivityRepository
	Collaborators *repository.CollaboratorRepository
	Users         *repository.UserRepository
	Outbox        *outbox.Repository
}

// runInTx runs fn inside a transaction, committing on success and
// rolling back on any error.
func runInTx(ctx context.Context, db *pgxpool.Pool, fn func(pgx.Tx) error) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// lockProject fetches the project row FOR UPDATE, mapping a missing row
// to a not-found rejection.
func lockProject(ctx context.Context, tx pgx.Tx, repos Repos, id int) (*model.Project, error) {
	p, err := repos.Projects.LockByID(ctx, tx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &progression.Error{
				Kind:    progression.KindNotFound,
				Message: fmt.Sprintf("project not found: %d", id),
			}
		}
		return nil, err
	}
	return p, nil
}

// lockLead fetches the lead row FOR UPDATE, mapping a missing row to a
// not-found rejection.
func lockLead(ctx context.Context, tx pgx.Tx, repos Repos, id int) (*model.Lead, error) {
	l, err := repos.Leads.LockByID(ctx, tx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &progression.Error{
				Kind:    progression.KindNotFound,
				Message: fmt.Sprintf("lead not found: %d", id),
			}
		}
		return nil, err
	}
	return l, nil
}

// appendActivity writes an activity entry and its outbox event in the
// caller's transaction, so the log and the published event stay atomic
// with the state change.
func appendActivity(ctx context.Context, tx pgx.Tx, repos Repos, entry model.ActivityEntry, routingKey string, payload any) error {
	if err := repos.Activities.Insert(ctx, tx, &entry); err != nil {
		return err
	}
	aggID := int64(entry.EntityID)
	return outbox.InsertEventInTx(ctx, tx, repos.Outbox, entry.EntityType, &aggID, routingKey, payload)
}
