package postgres

import (
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/Mattsantos541/ArcTecFox-Mono/internal/config"
	"github.com/Mattsantos541/ArcTecFox-Mono/internal/infrastructure/monitoring/logging"
	"github.com/Mattsantos541/ArcTecFox-Mono/pkg/errors"
)

// Migrate applies all pending up-migrations from cfg.MigrationPath.
// A database that is already current is not an error.
func Migrate(cfg config.DatabaseConfig, log logging.Logger) error {
	m, err := newMigrate(cfg)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil {
		if err == migrate.ErrNoChange {
			log.Info("database schema already up to date")
			return nil
		}
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "migration failed")
	}

	version, dirty, _ := m.Version()
	log.Info("database migrated",
		logging.Int("version", int(version)),
		logging.Bool("dirty", dirty),
	)
	return nil
}

// MigrateDown rolls back the most recent migration.  Used by the ops CLI
// only; the API server never migrates down.
func MigrateDown(cfg config.DatabaseConfig, log logging.Logger) error {
	m, err := newMigrate(cfg)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Steps(-1); err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "rollback failed")
	}
	log.Info("rolled back one migration")
	return nil
}

func newMigrate(cfg config.DatabaseConfig) (*migrate.Migrate, error) {
	// The pgx5 migrate driver registers itself under the pgx5:// scheme.
	dsn := strings.Replace(BuildDSN(cfg), "postgres://", "pgx5://", 1)
	sourceURL := fmt.Sprintf("file://%s", cfg.MigrationPath)

	m, err := migrate.New(sourceURL, dsn)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to initialise migrator")
	}
	return m, nil
}
