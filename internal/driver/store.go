package driver

import (
	"context"
	"fmt"
	"time"
)

// RunRecord is the persisted view of one deduplication run.
type RunRecord struct {
	RunID          string
	CreatedAt      time.Time
	FuzzyThreshold int
	Contacts       []ContactNode
	Edges          []DuplicateEdge
	Groups         []MergeGroupNode
}

type ContactNode struct {
	Index     int
	Name      string
	Protected bool
}

// DuplicateEdge links Source to Target (Source < Target) under Rule.
type DuplicateEdge struct {
	Source int
	Target int
	Rule   string
}

type MergeGroupNode struct {
	UUID       string
	MergedName string
	Criteria   string
	Members    []int
}

// Store writes runs through a GraphDriver.
type Store struct {
	Driver GraphDriver
}

func NewStore(d GraphDriver) *Store {
	return &Store{Driver: d}
}

func (s *Store) BuildIndices(ctx context.Context) error {
	return s.Driver.BuildIndices(ctx)
}

func (s *Store) Close(ctx context.Context) error {
	return s.Driver.Close(ctx)
}

// SaveRun writes the run node, its contacts, the duplicate edges and the
// merge groups. Empty batches are skipped.
func (s *Store) SaveRun(ctx context.Context, run *RunRecord) error {
	if run == nil || run.RunID == "" {
		return fmt.Errorf("run id is required")
	}

	_, err := s.Driver.ExecuteQuery(ctx, SaveRunQuery, map[string]any{
		"run_id":          run.RunID,
		"created_at":      run.CreatedAt,
		"total_contacts":  int64(len(run.Contacts)),
		"fuzzy_threshold": int64(run.FuzzyThreshold),
	})
	if err != nil {
		return fmt.Errorf("failed to save run %s: %w", run.RunID, err)
	}

	if len(run.Contacts) > 0 {
		contacts := make([]map[string]any, len(run.Contacts))
		for i, c := range run.Contacts {
			contacts[i] = map[string]any{
				"index":     int64(c.Index),
				"name":      c.Name,
				"protected": c.Protected,
			}
		}
		if _, err := s.Driver.ExecuteQuery(ctx, SaveContactsQuery, map[string]any{
			"run_id":   run.RunID,
			"contacts": contacts,
		}); err != nil {
			return fmt.Errorf("failed to save contacts: %w", err)
		}
	}

	if len(run.Edges) > 0 {
		edges := make([]map[string]any, len(run.Edges))
		for i, e := range run.Edges {
			edges[i] = map[string]any{
				"source": int64(e.Source),
				"target": int64(e.Target),
				"rule":   e.Rule,
			}
		}
		if _, err := s.Driver.ExecuteQuery(ctx, SaveDuplicateEdgesQuery, map[string]any{
			"run_id": run.RunID,
			"edges":  edges,
		}); err != nil {
			return fmt.Errorf("failed to save duplicate edges: %w", err)
		}
	}

	if len(run.Groups) > 0 {
		groups := make([]map[string]any, len(run.Groups))
		for i, g := range run.Groups {
			members := make([]any, len(g.Members))
			for k, idx := range g.Members {
				members[k] = int64(idx)
			}
			groups[i] = map[string]any{
				"uuid":        g.UUID,
				"merged_name": g.MergedName,
				"criteria":    g.Criteria,
				"members":     members,
			}
		}
		if _, err := s.Driver.ExecuteQuery(ctx, SaveMergeGroupsQuery, map[string]any{
			"run_id": run.RunID,
			"groups": groups,
		}); err != nil {
			return fmt.Errorf("failed to save merge groups: %w", err)
		}
	}

	return nil
}

// DeleteRun removes every node written for runID.
func (s *Store) DeleteRun(ctx context.Context, runID string) error {
	if _, err := s.Driver.ExecuteQuery(ctx, DeleteRunQuery, map[string]any{"run_id": runID}); err != nil {
		return fmt.Errorf("failed to delete run %s: %w", runID, err)
	}
	return nil
}
