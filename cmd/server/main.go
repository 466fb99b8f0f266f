package main

import (
	"time"

	"go.uber.org/zap"

	"craftcrm/config"
	"craftcrm/internal/catalog"
	"craftcrm/internal/collaborator"
	"craftcrm/internal/handler"
	"craftcrm/internal/httpserver"
	"craftcrm/internal/repository"
	"craftcrm/internal/service"
	"craftcrm/pkg/db"
	"craftcrm/pkg/logger"
	"craftcrm/pkg/outbox"
	redisclient "craftcrm/pkg/redis"
)

const timelineCacheTTL = 5 * time.Minute

func main() {
	// 1. Load config
	cfg := config.Load()

	log := logger.NewLogger()
	defer log.Sync()

	// 2. Load stage catalog
	cat, err := catalog.LoadFile(cfg.Catalog.Path)
	if err != nil {
		log.Fatal("Catalog load failed", zap.Error(err))
	}

	// 3. Init DB
	dbConn, err := db.NewConnection(cfg.DB, log)
	if err != nil {
		log.Fatal("DB initialization failed", zap.Error(err))
	}
	defer dbConn.Close()

	// 4. Init Redis
	rdb := redisclient.NewClient(cfg.Redis)
	defer rdb.Close()

	// 5. Init repositories
	repos := service.Repos{
		Projects:      repository.NewProjectRepository(dbConn, log),
		Leads:         repository.NewLeadRepository(dbConn, log),
		Timelines:     repository.NewTimelineRepository(dbConn, log),
		Activities:    repository.NewActivityRepository(dbConn, log),
		Collaborators: repository.NewCollaboratorRepository(dbConn, log),
		Users:         repository.NewUserRepository(dbConn),
		Outbox:        outbox.NewRepository(dbConn),
	}

	// 6. Init services
	cache := service.NewTimelineCache(rdb, timelineCacheTTL, log)
	assigner := collaborator.NewAssigner(collaborator.DefaultRules())
	progressionService := service.NewProgressionService(dbConn, cat, assigner, repos, cache, log)
	projectService := service.NewProjectService(dbConn, cat, progressionService, repos, cache, log)
	leadService := service.NewLeadService(dbConn, cat, progressionService, projectService, repos, log)
	holdService := service.NewHoldService(dbConn, repos, log)
	authService := service.NewAuthService(repos.Users, cfg.JWT.Secret)

	// 7. Init handlers
	authHandler := handler.NewAuthHandler(authService, log)
	projectHandler := handler.NewProjectHandler(projectService, progressionService, holdService, log)
	leadHandler := handler.NewLeadHandler(leadService, progressionService, holdService, log)
	adminHandler := handler.NewAdminHandler(repos.Outbox, log)

	// 8. Init router
	router := httpserver.NewRouter(authHandler, projectHandler, leadHandler, adminHandler, dbConn, cfg.JWT.Secret)

	// 9. Run server
	if err := router.Run(cfg.Server.Port); err != nil {
		log.Fatal("Server start failed", zap.Error(err))
	}
}
