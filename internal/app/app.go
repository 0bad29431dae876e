// Package app wires configuration, storage and services into one value that
// the HTTP layer and the CLI share.
package app

import (
	"context"
	"fmt"

	"site-panel/internal/auth"
	"site-panel/internal/config"
	"site-panel/internal/db"
	deployservice "site-panel/internal/services/deploy_service"
	deploylogservice "site-panel/internal/services/deploylog_service"
	siteservice "site-panel/internal/services/site_service"
	userservice "site-panel/internal/services/user_service"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config *config.Config
	Log    *zap.SugaredLogger
	DB     *gorm.DB

	Tokens     *auth.TokenManager
	Users      *userservice.UserService
	Sites      *siteservice.SiteService
	DeployLogs *deploylogservice.DeployLogService
	Pipeline   *deployservice.Pipeline
}

// New opens the database and builds every service from cfg.
func New(cfg *config.Config, log *zap.SugaredLogger) (*App, error) {
	database, err := db.Open(cfg.Database, log)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	a, err := NewWithDB(cfg, log, database)
	if err != nil {
		closeDB(database)
		return nil, err
	}
	return a, nil
}

// NewWithDB builds the services on an already opened database.
func NewWithDB(cfg *config.Config, log *zap.SugaredLogger, database *gorm.DB) (*App, error) {
	tokens, err := auth.NewTokenManager(cfg.Auth.JWTSecret)
	if err != nil {
		return nil, err
	}

	sites := siteservice.NewSiteService(database)
	deployLogs := deploylogservice.NewDeployLogService(database, log)

	pipeline, err := deployservice.NewPipeline(deployservice.PipelineParams{
		SitesRoot: cfg.Deploy.SitesRoot,
		VhostDir:  cfg.Deploy.VhostDir,
		Sites:     sites,
		Logs:      deployLogs,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("deploy pipeline: %w", err)
	}

	return &App{
		Config:     cfg,
		Log:        log,
		DB:         database,
		Tokens:     tokens,
		Users:      userservice.NewUserService(database),
		Sites:      sites,
		DeployLogs: deployLogs,
		Pipeline:   pipeline,
	}, nil
}

// SeedOperator creates the configured operator account on first start.
func (a *App) SeedOperator(ctx context.Context) error {
	created, err := a.Users.EnsureUser(ctx, a.Config.Auth.SeedEmail, a.Config.Auth.SeedPassword)
	if err != nil {
		return fmt.Errorf("seed operator: %w", err)
	}
	if created {
		a.Log.Infow("seed operator created", "email", a.Config.Auth.SeedEmail)
	}
	return nil
}

func (a *App) Close() {
	closeDB(a.DB)
}

func closeDB(database *gorm.DB) {
	if sqlDB, err := database.DB(); err == nil {
		sqlDB.Close()
	}
}
