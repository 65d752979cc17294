// Package infrastructure provides core service initialization for application startup.
// It assembles common dependencies (logging, database, storage) that domain systems require.
package infrastructure

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/JaimeStill/bleak/internal/checkpoints"
	"github.com/JaimeStill/bleak/internal/config"
	"github.com/JaimeStill/bleak/internal/model"
	"github.com/JaimeStill/bleak/internal/workflow"
	"github.com/JaimeStill/bleak/pkg/database"
	"github.com/JaimeStill/bleak/pkg/lifecycle"
	"github.com/JaimeStill/bleak/pkg/query"
	"github.com/JaimeStill/bleak/pkg/storage"
)

// Infrastructure holds the core systems required by all domain modules.
// Database is nil when checkpoints are kept in memory. Storage is a
// disabled system when blob storage is not configured.
type Infrastructure struct {
	Lifecycle   *lifecycle.Coordinator
	Logger      *slog.Logger
	Database    database.System
	Storage     storage.System
	Checkpoints workflow.Store
	Model       workflow.Model

	migrate bool
}

// New creates an Infrastructure from the application configuration.
// It initializes all systems but does not start them; call Start separately.
func New(cfg *config.Config) (*Infrastructure, error) {
	lc := lifecycle.New()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	infra := &Infrastructure{
		Lifecycle: lc,
		Logger:    logger,
		Storage:   storage.Disabled(),
		migrate:   cfg.Checkpoints.Migrate(),
	}

	if cfg.Checkpoints.Persistent() {
		db, err := database.New(&cfg.Database, logger)
		if err != nil {
			return nil, fmt.Errorf("database init failed: %w", err)
		}
		infra.Database = db
	}

	if cfg.Storage.Enabled {
		store, err := storage.New(&cfg.Storage, logger)
		if err != nil {
			return nil, fmt.Errorf("storage init failed: %w", err)
		}
		infra.Storage = store
	}

	store, err := checkpoints.New(cfg.Checkpoints.Driver, infra.connection(), logger, cfg.API.Pagination)
	if err != nil {
		return nil, fmt.Errorf("checkpoints init failed: %w", err)
	}
	infra.Checkpoints = store

	m, err := model.New(&cfg.Model)
	if err != nil {
		return nil, fmt.Errorf("model init failed: %w", err)
	}
	infra.Model = m

	return infra, nil
}

// Start registers all infrastructure systems with the lifecycle coordinator.
// Migrations, when enabled, run before any request is served.
func (i *Infrastructure) Start() error {
	if i.Database != nil {
		if i.migrate {
			dialect, err := query.ParseDialect(i.Database.Driver())
			if err != nil {
				return err
			}
			if err := checkpoints.Migrate(i.Database.Connection(), dialect); err != nil {
				return fmt.Errorf("checkpoint migration failed: %w", err)
			}
			i.Logger.Info("checkpoint migrations applied", "driver", i.Database.Driver())
		}
		if err := i.Database.Start(i.Lifecycle); err != nil {
			return fmt.Errorf("database start failed: %w", err)
		}
	}
	if err := i.Storage.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("storage start failed: %w", err)
	}
	return nil
}

func (i *Infrastructure) connection() *sql.DB {
	if i.Database == nil {
		return nil
	}
	return i.Database.Connection()
}
