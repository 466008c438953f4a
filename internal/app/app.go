package app

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/stridelog/stridelog/internal/config"
	"github.com/stridelog/stridelog/internal/db"
	"github.com/stridelog/stridelog/internal/repository"
	"github.com/stridelog/stridelog/internal/service"
)

type App struct {
	Cfg         *config.Config
	DB          *sqlx.DB
	GoalService *service.GoalService
	Analytics   *service.AnalyticsAggregator
}

func New(cfg *config.Config) (*App, error) {
	// Initialize database
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %v", err)
	}

	// Run database migrations
	err = db.RunMigrations(database.DB, cfg.DBDriver)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %v", err)
	}

	// Repositories
	goalRepository := repository.NewGoalRepository(database)

	// Services
	goalService := service.NewGoalService(goalRepository)
	analytics := service.NewAnalyticsAggregator(goalRepository)

	return &App{
		Cfg:         cfg,
		DB:          database,
		GoalService: goalService,
		Analytics:   analytics,
	}, nil
}

func (a *App) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
