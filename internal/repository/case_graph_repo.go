package repository

import (
	"context"
	"fmt"

	"signal-desk/internal/model"
	"signal-desk/pkg/neo4jdb"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

const (
	upsertCasesQuery = `
UNWIND $batch AS record
MERGE (c:Case {id: record.id})
SET c.text = record.text,
    c.embedding = record.embedding`

	caseIDConstraintQuery = `CREATE CONSTRAINT case_id_unique IF NOT EXISTS FOR (c:Case) REQUIRE c.id IS UNIQUE`
)

// CaseGraphRepository writes case documents into the graph, merging by id.
type CaseGraphRepository interface {
	EnsureSchema(ctx context.Context) error
	UpsertCases(ctx context.Context, cases []model.CaseRecord) error
}

type neo4jCaseGraphRepository struct {
	db *neo4jdb.DB
}

func NewNeo4jCaseGraphRepository(db *neo4jdb.DB) CaseGraphRepository {
	return &neo4jCaseGraphRepository{db: db}
}

func (r *neo4jCaseGraphRepository) session(ctx context.Context) neo4j.SessionWithContext {
	return r.db.Driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: r.db.Database,
	})
}

func (r *neo4jCaseGraphRepository) EnsureSchema(ctx context.Context) error {
	session := r.session(ctx)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, caseIDConstraintQuery, nil)
		if err != nil {
			return nil, err
		}
		return res.Consume(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to create case id constraint: %w", err)
	}
	return nil
}

func (r *neo4jCaseGraphRepository) UpsertCases(ctx context.Context, cases []model.CaseRecord) error {
	if len(cases) == 0 {
		return nil
	}

	batch := make([]any, 0, len(cases))
	for _, c := range cases {
		batch = append(batch, c.ToParams())
	}

	session := r.session(ctx)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, upsertCasesQuery, map[string]any{"batch": batch})
		if err != nil {
			return nil, err
		}
		return res.Consume(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to upsert %d cases: %w", len(cases), err)
	}
	return nil
}
