package graph

import (
	"context"
	"fmt"

	"github.com/ossgrants/grantgraph/backend/pkg/logger"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Store wraps the Neo4j driver with grant-domain read and write operations.
// All read helpers return plain maps so the query pipeline can serialize
// results without driver types leaking out.
type Store struct {
	driver   neo4j.DriverWithContext
	database string
}

// NewStoreParams contains connection configuration for a Store.
type NewStoreParams struct {
	URI      string
	Username string
	Password string
	Database string
}

// NewStore connects to Neo4j and verifies connectivity before returning.
func NewStore(ctx context.Context, params NewStoreParams) (*Store, error) {
	driver, err := neo4j.NewDriverWithContext(
		params.URI,
		neo4j.BasicAuth(params.Username, params.Password, ""),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to neo4j at %s: %w", params.URI, err)
	}

	logger.Info("[Graph] Connected to Neo4j", "uri", params.URI)

	return &Store{
		driver:   driver,
		database: params.Database,
	}, nil
}

// Close releases the underlying driver.
func (s *Store) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

func (s *Store) readSession(ctx context.Context) neo4j.SessionWithContext {
	return s.driver.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: s.database,
		AccessMode:   neo4j.AccessModeRead,
	})
}

func (s *Store) writeSession(ctx context.Context) neo4j.SessionWithContext {
	return s.driver.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: s.database,
		AccessMode:   neo4j.AccessModeWrite,
	})
}

// Execute runs a read query and returns each record as a map keyed by the
// record's return aliases. Node and relationship values are converted to
// their property maps.
func (s *Store) Execute(
	ctx context.Context,
	cypher string,
	params map[string]any,
) ([]map[string]any, error) {
	session := s.readSession(ctx)
	defer session.Close(ctx)

	result, err := session.Run(ctx, cypher, params)
	if err != nil {
		return nil, fmt.Errorf("query execution failed: %w", err)
	}

	rows := []map[string]any{}
	for result.Next(ctx) {
		record := result.Record()
		row := make(map[string]any, len(record.Keys))
		for i, key := range record.Keys {
			row[key] = convertValue(record.Values[i])
		}
		rows = append(rows, row)
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("query execution failed: %w", err)
	}

	return rows, nil
}

// run executes a read query and returns the collected rows, logging instead
// of failing the caller. Used by the analytics helpers where an empty result
// is an acceptable answer.
func (s *Store) run(
	ctx context.Context,
	cypher string,
	params map[string]any,
) ([]map[string]any, error) {
	rows, err := s.Execute(ctx, cypher, params)
	if err != nil {
		logger.Error("[Graph] Read query failed", "err", err)
		return nil, err
	}
	return rows, nil
}
