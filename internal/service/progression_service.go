package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	contracts "craftcrm/contracts/mq"
	"craftcrm/internal/activity"
	"craftcrm/internal/catalog"
	"craftcrm/internal/collaborator"
	"craftcrm/internal/model"
	"craftcrm/internal/progression"
	"craftcrm/internal/timeline"
	"craftcrm/pkg/metrics"
	"craftcrm/pkg/rbac"
)

// ProgressionService orchestrates transitions: it locks the entity row,
// runs the guard, applies the effect, recomputes the timeline, assigns
// collaborators and appends activity entries, all inside one
// transaction so a transition commits as a unit or not at all.
type ProgressionService struct {
	db        *pgxpool.Pool
	catalog   *catalog.Catalog
	guard     *progression.Guard
	generator *timeline.Generator
	assigner  *collaborator.Assigner
	repos     Repos
	cache     *TimelineCache
	logger    *zap.Logger
}

func NewProgressionService(
	db *pgxpool.Pool,
	cat *catalog.Catalog,
	assigner *collaborator.Assigner,
	repos Repos,
	cache *TimelineCache,
	logger *zap.Logger,
) *ProgressionService {
	return &ProgressionService{
		db:        db,
		catalog:   cat,
		guard:     progression.NewGuard(cat),
		generator: timeline.NewGenerator(cat),
		assigner:  assigner,
		repos:     repos,
		cache:     cache,
		logger:    logger,
	}
}

// CompleteSubstageResult mirrors the completeSubstage response shape.
type CompleteSubstageResult struct {
	CompletedSubstageIDs []string `json:"completed_substage_ids"`
	GroupComplete        bool     `json:"group_complete"`
	CurrentStage         string   `json:"current_stage"`
}

// SetPercentageResult mirrors the setPercentage response shape.
type SetPercentageResult struct {
	Success             bool           `json:"success"`
	Percentage          int            `json:"percentage"`
	AutoCompleted       bool           `json:"auto_completed"`
	PercentageSubstages map[string]int `json:"percentage_substages"`
}

// ChangeStage moves a project to a later stage. Requesting the current
// stage is a no-op success.
func (s *ProgressionService) ChangeStage(ctx context.Context, projectID int, newStage string, actor rbac.Actor) (*model.Project, error) {
	var result *model.Project
	req := progression.ChangeStage{NewStage: newStage}

	err := s.withProject(ctx, projectID, func(tx pgx.Tx, p *model.Project) error {
		eff, err := s.guard.Attempt(progression.StateFromProject(p), req)
		if err != nil {
			return err
		}
		if err := s.applyProjectEffect(ctx, tx, p, eff, actor); err != nil {
			return err
		}
		result = p
		return nil
	})
	s.observe(model.EntityProject, progression.Name(req), err)
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, projectID)
	return result, nil
}

// CompleteSubstage marks a boolean sub-stage done, honoring the
// sequence gate.
func (s *ProgressionService) CompleteSubstage(ctx context.Context, projectID int, substageID string, actor rbac.Actor) (*CompleteSubstageResult, error) {
	var result *CompleteSubstageResult
	req := progression.CompleteSubstage{SubstageID: substageID}

	err := s.withProject(ctx, projectID, func(tx pgx.Tx, p *model.Project) error {
		eff, err := s.guard.Attempt(progression.StateFromProject(p), req)
		if err != nil {
			return err
		}
		if err := s.applyProjectEffect(ctx, tx, p, eff, actor); err != nil {
			return err
		}
		result = &CompleteSubstageResult{
			CompletedSubstageIDs: p.CompletedSubstageIDs,
			GroupComplete:        eff.GroupComplete,
			CurrentStage:         p.CurrentStage,
		}
		return nil
	})
	s.observe(model.EntityProject, progression.Name(req), err)
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, projectID)
	return result, nil
}

// SetPercentage updates a percentage sub-stage. Reaching 100 completes
// the sub-stage automatically. The optional comment is appended as a
// regular comment activity in the same transaction.
func (s *ProgressionService) SetPercentage(ctx context.Context, projectID int, substageID string, value int, comment string, actor rbac.Actor) (*SetPercentageResult, error) {
	var result *SetPercentageResult
	req := progression.SetPercentage{
		SubstageID: substageID,
		Value:      value,
		Override:   actor.Has(rbac.CapOverrideForwardOnly),
	}

	err := s.withProject(ctx, projectID, func(tx pgx.Tx, p *model.Project) error {
		eff, err := s.guard.Attempt(progression.StateFromProject(p), req)
		if err != nil {
			return err
		}
		if err := s.applyProjectEffect(ctx, tx, p, eff, actor); err != nil {
			return err
		}
		if comment != "" {
			entry := activity.Comment(model.EntityProject, p.ID, comment, actor)
			if err := appendActivity(ctx, tx, s.repos, entry, contracts.RoutingComment, contracts.CommentPayload{
				EntityType: model.EntityProject,
				EntityID:   p.ID,
				Message:    comment,
				ActorID:    actor.ID,
			}); err != nil {
				return err
			}
		}
		result = &SetPercentageResult{
			Success:             true,
			Percentage:          eff.Percentage,
			AutoCompleted:       eff.AutoCompleted,
			PercentageSubstages: p.PercentageSubstages,
		}
		return nil
	})
	s.observe(model.EntityProject, progression.Name(req), err)
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, projectID)
	return result, nil
}

// ChangeLeadStage moves a lead forward through the sales pipeline.
func (s *ProgressionService) ChangeLeadStage(ctx context.Context, leadID int, newStage string, actor rbac.Actor) (*model.Lead, error) {
	var result *model.Lead
	req := progression.ChangeStage{NewStage: newStage}

	err := runInTx(ctx, s.db, func(tx pgx.Tx) error {
		l, err := lockLead(ctx, tx, s.repos, leadID)
		if err != nil {
			return err
		}

		eff, err := s.guard.Attempt(progression.StateFromLead(l), req)
		if err != nil {
			return err
		}

		if eff.StageChanged {
			oldStage := l.CurrentStage
			l.CurrentStage = eff.NewStage
			if err := s.repos.Leads.UpdateStage(ctx, tx, l.ID, l.CurrentStage); err != nil {
				return err
			}

			entry := activity.StageChange(model.EntityLead, l.ID, oldStage, l.CurrentStage, actor)
			if err := appendActivity(ctx, tx, s.repos, entry, contracts.RoutingStageChanged, contracts.StageChangedPayload{
				EntityType: model.EntityLead,
				EntityID:   l.ID,
				FromStage:  oldStage,
				ToStage:    l.CurrentStage,
				ActorID:    actor.ID,
			}); err != nil {
				return err
			}

			if err := s.assignCollaborators(ctx, tx, model.EntityLead, l.ID, catalog.EntityTypeLead, l.CurrentStage, actor); err != nil {
				return err
			}
		}

		result = l
		return nil
	})
	s.observe(model.EntityLead, progression.Name(req), err)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// AssignInitialCollaborators attaches the roles required at an entity's
// first stage. Used by creation and conversion flows.
func (s *ProgressionService) AssignInitialCollaborators(ctx context.Context, tx pgx.Tx, entityType string, entityID int, et catalog.EntityType, stage string, actor rbac.Actor) error {
	return s.assignCollaborators(ctx, tx, entityType, entityID, et, stage, actor)
}

// withProject runs fn against the FOR UPDATE locked project row,
// serializing transitions per project.
func (s *ProgressionService) withProject(ctx context.Context, projectID int, fn func(pgx.Tx, *model.Project) error) error {
	return runInTx(ctx, s.db, func(tx pgx.Tx) error {
		p, err := lockProject(ctx, tx, s.repos, projectID)
		if err != nil {
			return err
		}
		return fn(tx, p)
	})
}

// applyProjectEffect persists everything a successful transition
// implies. Runs inside the locking transaction.
func (s *ProgressionService) applyProjectEffect(ctx context.Context, tx pgx.Tx, p *model.Project, eff progression.Effect, actor rbac.Actor) error {
	oldStage := p.CurrentStage
	progression.ApplyToProject(p, eff)

	if eff.CompletedSubstageID != "" {
		ss, err := s.catalog.SubStage(eff.CompletedSubstageID)
		if err != nil {
			return err
		}
		if err := s.repos.Timelines.MarkSubstageCompleted(ctx, tx, p.ID, ss.ID); err != nil {
			return err
		}
		entry := activity.SubstageComplete(p.ID, ss.ID, ss.Label, eff.AutoCompleted, actor)
		if err := appendActivity(ctx, tx, s.repos, entry, contracts.RoutingSubstageCompleted, contracts.SubstageCompletedPayload{
			ProjectID:     p.ID,
			SubstageID:    ss.ID,
			AutoCompleted: eff.AutoCompleted,
			ActorID:       actor.ID,
		}); err != nil {
			return err
		}
	} else if eff.PercentageSet {
		ss, err := s.catalog.SubStage(eff.SubstageID)
		if err != nil {
			return err
		}
		entry := activity.PercentageUpdate(p.ID, ss.ID, ss.Label, eff.Percentage, actor)
		if err := s.repos.Activities.Insert(ctx, tx, &entry); err != nil {
			return err
		}
	}

	if eff.StageChanged {
		entries, err := s.repos.Timelines.FindByProjectIDTx(ctx, tx, p.ID)
		if err != nil {
			return err
		}
		recomputed, err := s.generator.RecomputeOnStageChange(entries, catalog.EntityTypeProject, p.CurrentStage)
		if err != nil {
			return err
		}
		if err := s.repos.Timelines.UpdateStatuses(ctx, tx, recomputed); err != nil {
			return err
		}

		entry := activity.StageChange(model.EntityProject, p.ID, oldStage, p.CurrentStage, actor)
		if err := appendActivity(ctx, tx, s.repos, entry, contracts.RoutingStageChanged, contracts.StageChangedPayload{
			EntityType: model.EntityProject,
			EntityID:   p.ID,
			FromStage:  oldStage,
			ToStage:    p.CurrentStage,
			ActorID:    actor.ID,
		}); err != nil {
			return err
		}

		if err := s.assignCollaborators(ctx, tx, model.EntityProject, p.ID, catalog.EntityTypeProject, p.CurrentStage, actor); err != nil {
			return err
		}
	}

	return s.repos.Projects.UpdateProgress(ctx, tx, p)
}

// assignCollaborators attaches one user per missing required role for
// the stage just entered. Roles already represented are left alone.
func (s *ProgressionService) assignCollaborators(ctx context.Context, tx pgx.Tx, entityType string, entityID int, et catalog.EntityType, stage string, actor rbac.Actor) error {
	current, err := s.repos.Collaborators.ListUsersTx(ctx, tx, entityType, entityID)
	if err != nil {
		return err
	}

	for _, role := range s.assigner.MissingRoles(et, stage, current) {
		u, err := s.repos.Users.FindFirstActiveByRole(ctx, role)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				s.logger.Warn("No active user to auto-assign for role",
					zap.String("role", role),
					zap.String("stage", stage),
				)
				continue
			}
			return err
		}

		added, err := s.repos.Collaborators.Add(ctx, tx, entityType, entityID, u.ID)
		if err != nil {
			return err
		}
		if !added {
			continue
		}

		entry := activity.CollaboratorAdded(entityType, entityID, *u, actor)
		if err := appendActivity(ctx, tx, s.repos, entry, contracts.RoutingCollaboratorAdded, contracts.CollaboratorAddedPayload{
			EntityType: entityType,
			EntityID:   entityID,
			UserID:     u.ID,
			Role:       u.Role,
			ActorID:    actor.ID,
		}); err != nil {
			return err
		}
	}
	return nil
}

func (s *ProgressionService) observe(entity, request string, err error) {
	if err == nil {
		metrics.RecordTransition(entity, request, "success")
		return
	}
	if kind := progression.KindOf(err); kind != "" {
		metrics.RecordTransition(entity, request, "rejected")
		metrics.RecordRejection(entity, string(kind))
		return
	}
	metrics.RecordTransition(entity, request, "error")
}
