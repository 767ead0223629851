package bootstrap

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jonesrussell/pricetracker/internal/config"
	"github.com/jonesrussell/pricetracker/internal/database"
)

// Repositories bundles the database repositories.
type Repositories struct {
	Products      *database.ProductRepository
	Observations  *database.ObservationRepository
	Alerts        *database.AlertRepository
	ParserConfigs *database.ParserConfigRepository
}

// SetupDatabase connects to PostgreSQL, applies the schema and creates
// the repositories.
func SetupDatabase(ctx context.Context, cfg *config.Config) (*sqlx.DB, *Repositories, error) {
	db, err := database.NewPostgresConnection(cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if migrateErr := database.Migrate(ctx, db); migrateErr != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to migrate database: %w", migrateErr)
	}

	repos := &Repositories{
		Products:      database.NewProductRepository(db),
		Observations:  database.NewObservationRepository(db),
		Alerts:        database.NewAlertRepository(db),
		ParserConfigs: database.NewParserConfigRepository(db),
	}
	return db, repos, nil
}
