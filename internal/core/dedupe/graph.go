package dedupe

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/agenthands/contactmerge/internal/core/cluster"
	"github.com/agenthands/contactmerge/internal/core/model"
)

// BuildGraph compares every unordered pair (i < j) and links duplicates.
// With more than one worker the rows of the pair matrix are evaluated
// concurrently; edges are still inserted in (i, j) order, so the graph is
// the same as a sequential build.
func (d *Detector) BuildGraph(ctx context.Context, contacts []*model.NormalizedContact) (*cluster.Graph, error) {
	n := len(contacts)
	graph := cluster.NewGraph(n)
	if n < 2 {
		return graph, nil
	}

	if d.workers == 1 {
		for i := 0; i < n; i++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			for _, j := range d.row(contacts, i) {
				graph.AddEdge(i, j)
			}
		}
		return graph, nil
	}

	rows := make([][]int, n)
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(d.workers)
	for i := 0; i < n-1; i++ {
		i := i // per-iteration copy; go.mod targets Go 1.21 loop semantics
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			// Each goroutine owns rows[i]; no locking needed.
			rows[i] = d.row(contacts, i)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	for i, row := range rows {
		for _, j := range row {
			graph.AddEdge(i, j)
		}
	}
	return graph, nil
}

// row returns every j > i that duplicates contacts[i], ascending.
func (d *Detector) row(contacts []*model.NormalizedContact, i int) []int {
	var matches []int
	for j := i + 1; j < len(contacts); j++ {
		if d.AreDuplicates(contacts[i], contacts[j]) {
			matches = append(matches, j)
		}
	}
	return matches
}
