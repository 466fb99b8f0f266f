package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	contracts "craftcrm/contracts/mq"
	"craftcrm/internal/activity"
	"craftcrm/internal/catalog"
	"craftcrm/internal/model"
	"craftcrm/internal/progression"
	"craftcrm/pkg/rbac"
)

// LeadService covers the non-transition lead surface: creation, reads,
// comments and conversion into a project. Stage moves go through
// ProgressionService.
type LeadService struct {
	db          *pgxpool.Pool
	catalog     *catalog.Catalog
	progression *ProgressionService
	projects    *ProjectService
	repos       Repos
	logger      *zap.Logger
}

func NewLeadService(
	db *pgxpool.Pool,
	cat *catalog.Catalog,
	prog *ProgressionService,
	projects *ProjectService,
	repos Repos,
	logger *zap.Logger,
) *LeadService {
	return &LeadService{
		db:          db,
		catalog:     cat,
		progression: prog,
		projects:    projects,
		repos:       repos,
		logger:      logger,
	}
}

type CreateLeadInput struct {
	ClientName string `json:"client_name"`
	Phone      string `json:"phone"`
	Email      string `json:"email"`
	Source     string `json:"source"`
}

// Create inserts a lead at the first pipeline stage and attaches the
// roles required there.
func (s *LeadService) Create(ctx context.Context, in CreateLeadInput, actor rbac.Actor) (*model.Lead, error) {
	if in.ClientName == "" {
		return nil, &progression.Error{
			Kind:    progression.KindValidation,
			Message: "client name is required",
		}
	}

	firstStage, err := s.catalog.FirstStage(catalog.EntityTypeLead)
	if err != nil {
		return nil, err
	}

	var result *model.Lead
	err = runInTx(ctx, s.db, func(tx pgx.Tx) error {
		l := &model.Lead{
			ClientName:   in.ClientName,
			Phone:        in.Phone,
			Email:        in.Email,
			Source:       in.Source,
			CurrentStage: firstStage,
			Hold:         model.HoldState{Status: model.HoldStatusActive},
		}
		if err := s.repos.Leads.Insert(ctx, tx, l); err != nil {
			return err
		}

		entry := activity.StageChange(model.EntityLead, l.ID, "", firstStage, actor)
		if err := appendActivity(ctx, tx, s.repos, entry, contracts.RoutingStageChanged, contracts.StageChangedPayload{
			EntityType: model.EntityLead,
			EntityID:   l.ID,
			ToStage:    firstStage,
			ActorID:    actor.ID,
		}); err != nil {
			return err
		}

		if err := s.progression.AssignInitialCollaborators(ctx, tx, model.EntityLead, l.ID, catalog.EntityTypeLead, firstStage, actor); err != nil {
			return err
		}

		result = l
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Lead created",
		zap.Int("id", result.ID),
		zap.String("client_name", result.ClientName),
	)
	return result, nil
}

func (s *LeadService) Get(ctx context.Context, id int) (*model.Lead, error) {
	l, err := s.repos.Leads.FindByID(ctx, id)
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

// GetActivities returns the lead's activity log, newest first.
func (s *LeadService) GetActivities(ctx context.Context, leadID, limit, offset int) ([]model.ActivityEntry, error) {
	if _, err := s.Get(ctx, leadID); err != nil {
		return nil, err
	}
	return s.repos.Activities.FindByEntity(ctx, model.EntityLead, leadID, limit, offset)
}

// AddComment appends a comment to the lead's activity log.
func (s *LeadService) AddComment(ctx context.Context, leadID int, message string, actor rbac.Actor) (*model.ActivityEntry, error) {
	if message == "" {
		return nil, &progression.Error{
			Kind:    progression.KindValidation,
			Message: "comment message is required",
		}
	}

	entry := activity.Comment(model.EntityLead, leadID, message, actor)
	err := runInTx(ctx, s.db, func(tx pgx.Tx) error {
		if _, err := lockLead(ctx, tx, s.repos, leadID); err != nil {
			return err
		}
		return appendActivity(ctx, tx, s.repos, entry, contracts.RoutingComment, contracts.CommentPayload{
			EntityType: model.EntityLead,
			EntityID:   leadID,
			Message:    message,
			ActorID:    actor.ID,
		})
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// Convert turns a won lead into a project. The lead must be active, at
// the final pipeline stage, and not yet converted; the project is
// created, linked back, and both sides get activity entries in one
// transaction.
func (s *LeadService) Convert(ctx context.Context, leadID int, projectName string, actor rbac.Actor) (*model.Project, error) {
	stages, err := s.catalog.StagesFor(catalog.EntityTypeLead)
	if err != nil {
		return nil, err
	}
	finalStage := stages[len(stages)-1]

	var result *model.Project
	err = runInTx(ctx, s.db, func(tx pgx.Tx) error {
		l, err := lockLead(ctx, tx, s.repos, leadID)
		if err != nil {
			return err
		}
		if l.ProjectID != nil {
			return &progression.Error{
				Kind:    progression.KindValidation,
				Message: fmt.Sprintf("lead is already converted to project #%d", *l.ProjectID),
			}
		}
		if l.Hold.Status != model.HoldStatusActive {
			return &progression.Error{
				Kind:    progression.KindOnHold,
				Message: "entity is on hold; reactivate it before making changes",
			}
		}
		if l.CurrentStage != finalStage {
			return &progression.Error{
				Kind:    progression.KindValidation,
				Message: fmt.Sprintf("lead must reach stage %q before conversion, currently at %q", finalStage, l.CurrentStage),
			}
		}

		name := projectName
		if name == "" {
			name = l.ClientName
		}
		p, err := s.projects.createInTx(ctx, tx, name, l.ClientName, &l.ID, actor)
		if err != nil {
			return err
		}
		if err := s.repos.Leads.SetProjectID(ctx, tx, l.ID, p.ID); err != nil {
			return err
		}

		entry := activity.LeadConverted(l.ID, p.ID, actor)
		if err := appendActivity(ctx, tx, s.repos, entry, contracts.RoutingLeadConverted, contracts.LeadConvertedPayload{
			LeadID:    l.ID,
			ProjectID: p.ID,
			ActorID:   actor.ID,
		}); err != nil {
			return err
		}

		result = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Lead converted",
		zap.Int("lead_id", leadID),
		zap.Int("project_id", result.ID),
		zap.Int("actor_id", actor.ID),
	)
	return result, nil
}
