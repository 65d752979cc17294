// Package checkpoints provides the checkpoint stores that persist thread
// positions: an in-memory store and a SQL store for PostgreSQL or SQLite.
package checkpoints

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/JaimeStill/bleak/internal/workflow"
	"github.com/JaimeStill/bleak/pkg/pagination"
	"github.com/JaimeStill/bleak/pkg/query"
)

// Store drivers.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// New returns the store for driver. SQL drivers require db.
func New(
	driver string,
	db *sql.DB,
	logger *slog.Logger,
	cfg pagination.Config,
) (workflow.Store, error) {
	switch driver {
	case DriverMemory, "":
		return NewMemory(cfg), nil
	case DriverPostgres, DriverSQLite:
		if db == nil {
			return nil, fmt.Errorf("%s checkpoint store requires a database connection", driver)
		}
		dialect, err := query.ParseDialect(driver)
		if err != nil {
			return nil, err
		}
		return NewSQL(db, dialect, logger, cfg), nil
	default:
		return nil, fmt.Errorf("unsupported checkpoint driver: %s", driver)
	}
}
