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
	"craftcrm/internal/timeline"
	"craftcrm/pkg/rbac"
)

// ProjectService covers the non-transition project surface: creation,
// reads, comments and manual collaborator management. Transitions go
// through ProgressionService.
type ProjectService struct {
	db          *pgxpool.Pool
	catalog     *catalog.Catalog
	generator   *timeline.Generator
	progression *ProgressionService
	repos       Repos
	cache       *TimelineCache
	logger      *zap.Logger
}

func NewProjectService(
	db *pgxpool.Pool,
	cat *catalog.Catalog,
	prog *ProgressionService,
	repos Repos,
	cache *TimelineCache,
	logger *zap.Logger,
) *ProjectService {
	return &ProjectService{
		db:          db,
		catalog:     cat,
		generator:   timeline.NewGenerator(cat),
		progression: prog,
		repos:       repos,
		cache:       cache,
		logger:      logger,
	}
}

type CreateProjectInput struct {
	Name       string `json:"name"`
	ClientName string `json:"client_name"`
}

// Create inserts a project at the first stage, generates its full
// timeline and attaches the roles required at that stage.
func (s *ProjectService) Create(ctx context.Context, in CreateProjectInput, actor rbac.Actor) (*model.Project, error) {
	if in.Name == "" {
		return nil, &progression.Error{
			Kind:    progression.KindValidation,
			Message: "project name is required",
		}
	}

	var result *model.Project
	err := runInTx(ctx, s.db, func(tx pgx.Tx) error {
		p, err := s.createInTx(ctx, tx, in.Name, in.ClientName, nil, actor)
		if err != nil {
			return err
		}
		result = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Project created",
		zap.Int("id", result.ID),
		zap.String("name", result.Name),
	)
	return result, nil
}

// createInTx does the actual creation work inside the caller's
// transaction, so lead conversion can create the project atomically
// with the lead update.
func (s *ProjectService) createInTx(ctx context.Context, tx pgx.Tx, name, clientName string, leadID *int, actor rbac.Actor) (*model.Project, error) {
	firstStage, err := s.catalog.FirstStage(catalog.EntityTypeProject)
	if err != nil {
		return nil, err
	}

	p := &model.Project{
		Name:                name,
		ClientName:          clientName,
		LeadID:              leadID,
		CurrentStage:        firstStage,
		PercentageSubstages: make(map[string]int),
		Hold:                model.HoldState{Status: model.HoldStatusActive},
	}
	if err := s.repos.Projects.Insert(ctx, tx, p); err != nil {
		return nil, err
	}

	entries, err := s.generator.Generate(catalog.EntityTypeProject, firstStage, p.CreatedAt)
	if err != nil {
		return nil, err
	}
	if err := s.repos.Timelines.InsertBatch(ctx, tx, p.ID, entries); err != nil {
		return nil, err
	}

	entry := activity.StageChange(model.EntityProject, p.ID, "", firstStage, actor)
	if err := appendActivity(ctx, tx, s.repos, entry, contracts.RoutingStageChanged, contracts.StageChangedPayload{
		EntityType: model.EntityProject,
		EntityID:   p.ID,
		ToStage:    firstStage,
		ActorID:    actor.ID,
	}); err != nil {
		return nil, err
	}

	if err := s.progression.AssignInitialCollaborators(ctx, tx, model.EntityProject, p.ID, catalog.EntityTypeProject, firstStage, actor); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *ProjectService) Get(ctx context.Context, id int) (*model.Project, error) {
	p, err := s.repos.Projects.FindByID(ctx, id)
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

// GetTimeline returns the project's timeline, serving from cache when
// possible.
func (s *ProjectService) GetTimeline(ctx context.Context, projectID int) ([]model.TimelineEntry, error) {
	if entries, ok := s.cache.Get(ctx, projectID); ok {
		return entries, nil
	}

	if _, err := s.Get(ctx, projectID); err != nil {
		return nil, err
	}
	entries, err := s.repos.Timelines.FindByProjectID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	s.cache.Set(ctx, projectID, entries)
	return entries, nil
}

// GetActivities returns the project's activity log, newest first.
func (s *ProjectService) GetActivities(ctx context.Context, projectID, limit, offset int) ([]model.ActivityEntry, error) {
	if _, err := s.Get(ctx, projectID); err != nil {
		return nil, err
	}
	return s.repos.Activities.FindByEntity(ctx, model.EntityProject, projectID, limit, offset)
}

// AddComment appends a comment to the project's activity log.
func (s *ProjectService) AddComment(ctx context.Context, projectID int, message string, actor rbac.Actor) (*model.ActivityEntry, error) {
	if message == "" {
		return nil, &progression.Error{
			Kind:    progression.KindValidation,
			Message: "comment message is required",
		}
	}

	entry := activity.Comment(model.EntityProject, projectID, message, actor)
	err := runInTx(ctx, s.db, func(tx pgx.Tx) error {
		if _, err := lockProject(ctx, tx, s.repos, projectID); err != nil {
			return err
		}
		return appendActivity(ctx, tx, s.repos, entry, contracts.RoutingComment, contracts.CommentPayload{
			EntityType: model.EntityProject,
			EntityID:   projectID,
			Message:    message,
			ActorID:    actor.ID,
		})
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// AddCollaborator attaches a user to the project manually, alongside
// the stage-driven auto-assignment.
func (s *ProjectService) AddCollaborator(ctx context.Context, projectID, userID int, actor rbac.Actor) error {
	return runInTx(ctx, s.db, func(tx pgx.Tx) error {
		if _, err := lockProject(ctx, tx, s.repos, projectID); err != nil {
			return err
		}

		u, err := s.repos.Users.FindByID(ctx, userID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return &progression.Error{
					Kind:    progression.KindNotFound,
					Message: fmt.Sprintf("user not found: %d", userID),
				}
			}
			return err
		}
		if !u.Active {
			return &progression.Error{
				Kind:    progression.KindValidation,
				Message: "user is not active",
			}
		}

		added, err := s.repos.Collaborators.Add(ctx, tx, model.EntityProject, projectID, u.ID)
		if err != nil {
			return err
		}
		if !added {
			return &progression.Error{
				Kind:    progression.KindValidation,
				Message: "user is already a collaborator",
			}
		}

		entry := activity.CollaboratorAdded(model.EntityProject, projectID, *u, actor)
		return appendActivity(ctx, tx, s.repos, entry, contracts.RoutingCollaboratorAdded, contracts.CollaboratorAddedPayload{
			EntityType: model.EntityProject,
			EntityID:   projectID,
			UserID:     u.ID,
			Role:       u.Role,
			ActorID:    actor.ID,
		})
	})
}

func (s *ProjectService) ListCollaborators(ctx context.Context, projectID int) ([]model.User, error) {
	if _, err := s.Get(ctx, projectID); err != nil {
		return nil, err
	}
	return s.repos.Collaborators.ListUsers(ctx, model.EntityProject, projectID)
}
