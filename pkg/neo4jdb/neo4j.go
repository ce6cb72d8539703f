package neo4jdb

import (
	"context"
	"fmt"

	"signal-desk/config"
	"signal-desk/pkg/logger"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// DB wraps a neo4j driver together with the database sessions should target.
type DB struct {
	Driver   neo4j.DriverWithContext
	Database string
	log      *logger.Logger
}

func NewDB(ctx context.Context, cfg config.Neo4j, log *logger.Logger) (*DB, error) {
	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.User, cfg.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("failed to reach neo4j at %s: %w", cfg.URI, err)
	}

	return &DB{Driver: driver, Database: cfg.Database, log: log}, nil
}

func (d *DB) Close(ctx context.Context) error {
	d.log.Info("Closing neo4j driver")
	return d.Driver.Close(ctx)
}
