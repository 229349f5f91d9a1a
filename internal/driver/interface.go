package driver

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// GraphDriver runs Cypher against a Bolt-compatible database.
type GraphDriver interface {
	ExecuteQuery(ctx context.Context, query string, params map[string]any) (neo4j.EagerResult, error)
	BuildIndices(ctx context.Context) error
	Close(ctx context.Context) error
}

// GraphStore persists the similarity graph of a deduplication run.
type GraphStore interface {
	SaveRun(ctx context.Context, run *RunRecord) error
	BuildIndices(ctx context.Context) error
	Close(ctx context.Context) error
}
