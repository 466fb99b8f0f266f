package service

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	contracts "craftcrm/contracts/mq"
	"craftcrm/internal/activity"
	"craftcrm/internal/hold"
	"craftcrm/internal/model"
	"craftcrm/pkg/rbac"
)

// HoldService applies hold/activate/deactivate changes to leads and
// projects. Hold changes never touch stages or sub-stages; they only
// flip the gate the guard checks first.
type HoldService struct {
	db         *pgxpool.Pool
	controller *hold.Controller
	repos      Repos
	logger     *zap.Logger
}

func NewHoldService(db *pgxpool.Pool, repos Repos, logger *zap.Logger) *HoldService {
	return &HoldService{
		db:         db,
		controller: hold.NewController(),
		repos:      repos,
		logger:     logger,
	}
}

// SetProjectHold changes a project's hold status.
func (s *HoldService) SetProjectHold(ctx context.Context, projectID int, req hold.Request, actor rbac.Actor) (*model.Project, error) {
	var result *model.Project

	err := runInTx(ctx, s.db, func(tx pgx.Tx) error {
		p, err := lockProject(ctx, tx, s.repos, projectID)
		if err != nil {
			return err
		}

		next, err := s.controller.Apply(p.Hold, req, actor.ID, actor.Has(rbac.CapManageHold))
		if err != nil {
			return err
		}
		if err := s.repos.Projects.UpdateHold(ctx, tx, p.ID, next); err != nil {
			return err
		}
		p.Hold = next

		entry := activity.HoldChange(model.EntityProject, p.ID, next.Status, next.Reason, actor)
		if err := appendActivity(ctx, tx, s.repos, entry, contracts.RoutingHoldChanged, contracts.HoldChangedPayload{
			EntityType: model.EntityProject,
			EntityID:   p.ID,
			Status:     string(next.Status),
			Reason:     next.Reason,
			ActorID:    actor.ID,
		}); err != nil {
			return err
		}

		result = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Project hold status changed",
		zap.Int("project_id", projectID),
		zap.String("status", string(result.Hold.Status)),
		zap.Int("actor_id", actor.ID),
	)
	return result, nil
}

// SetLeadHold changes a lead's hold status.
func (s *HoldService) SetLeadHold(ctx context.Context, leadID int, req hold.Request, actor rbac.Actor) (*model.Lead, error) {
	var result *model.Lead

	err := runInTx(ctx, s.db, func(tx pgx.Tx) error {
		l, err := lockLead(ctx, tx, s.repos, leadID)
		if err != nil {
			return err
		}

		next, err := s.controller.Apply(l.Hold, req, actor.ID, actor.Has(rbac.CapManageHold))
		if err != nil {
			return err
		}
		if err := s.repos.Leads.UpdateHold(ctx, tx, l.ID, next); err != nil {
			return err
		}
		l.Hold = next

		entry := activity.HoldChange(model.EntityLead, l.ID, next.Status, next.Reason, actor)
		if err := appendActivity(ctx, tx, s.repos, entry, contracts.RoutingHoldChanged, contracts.HoldChangedPayload{
			EntityType: model.EntityLead,
			EntityID:   l.ID,
			Status:     string(next.Status),
			Reason:     next.Reason,
			ActorID:    actor.ID,
		}); err != nil {
			return err
		}

		result = l
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Lead hold status changed",
		zap.Int("lead_id", leadID),
		zap.String("status", string(result.Hold.Status)),
		zap.Int("actor_id", actor.ID),
	)
	return result, nil
}
