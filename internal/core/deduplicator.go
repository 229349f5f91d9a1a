// Package core runs a full deduplication pass: detection, merging and the
// optional review and persistence steps.
package core

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/agenthands/contactmerge/internal/core/dedupe"
	"github.com/agenthands/contactmerge/internal/core/merge"
	"github.com/agenthands/contactmerge/internal/core/model"
	"github.com/agenthands/contactmerge/internal/core/review"
	"github.com/agenthands/contactmerge/internal/driver"
	"github.com/agenthands/contactmerge/internal/logger"
)

// GroupReport describes one merged duplicate group.
type GroupReport struct {
	ID       string          `json:"id"`
	Indices  []int           `json:"indices"`
	Names    []string        `json:"names"`
	Criteria string          `json:"criteria"`
	Merged   *model.Contact  `json:"merged"`
	Review   *review.Verdict `json:"review,omitempty"`
}

type Stats struct {
	TotalContacts     int     `json:"total_contacts"`
	DuplicateGroups   int     `json:"duplicate_groups"`
	ContactsMerged    int     `json:"contacts_merged"`
	FinalContacts     int     `json:"final_contacts"`
	ProtectedExcluded int     `json:"protected_excluded"`
	ReductionPercent  float64 `json:"reduction_percent"`
}

// Outcome is the result of Run. Final holds the merged records in group
// order followed by every untouched input record in input order.
type Outcome struct {
	RunID  string           `json:"run_id"`
	Groups []GroupReport    `json:"groups"`
	Final  []*model.Contact `json:"contacts"`
	Stats  Stats            `json:"stats"`
}

type Deduplicator struct {
	Detector *dedupe.Detector
	Merger   *merge.Merger
	Reviewer *review.Reviewer
	Store    driver.GraphStore

	reviewConcurrency int
	logger            logger.Logger
}

type Option func(*Deduplicator)

func WithReviewer(r *review.Reviewer, concurrency int) Option {
	return func(d *Deduplicator) {
		d.Reviewer = r
		d.reviewConcurrency = concurrency
	}
}

func WithStore(s driver.GraphStore) Option {
	return func(d *Deduplicator) { d.Store = s }
}

func WithLogger(l logger.Logger) Option {
	return func(d *Deduplicator) { d.logger = l }
}

func NewDeduplicator(detector *dedupe.Detector, merger *merge.Merger, opts ...Option) *Deduplicator {
	d := &Deduplicator{
		Detector:          detector,
		Merger:            merger,
		reviewConcurrency: 1,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = logger.NewNop()
	}
	if d.reviewConcurrency < 1 {
		d.reviewConcurrency = 1
	}
	return d
}

// Run deduplicates contacts. Review and persistence failures are logged and
// do not fail the run.
func (d *Deduplicator) Run(ctx context.Context, contacts []*model.Contact) (*Outcome, error) {
	runID := uuid.New().String()
	log := d.logger.With("run_id", runID)

	result, err := d.Detector.FindDuplicates(ctx, contacts)
	if err != nil {
		return nil, fmt.Errorf("failed to find duplicates: %w", err)
	}

	out := &Outcome{RunID: runID}
	inGroup := make([]bool, len(contacts))
	merged := 0

	for n, g := range result.Groups {
		members := g.Members
		criteria := d.Detector.MatchCriteria(members[0], members[1])
		report := GroupReport{
			ID:       uuid.New().String(),
			Indices:  g.Indices(),
			Names:    g.Names(),
			Criteria: criteria,
			Merged:   d.Merger.Merge(g.Contacts()),
		}
		for _, idx := range report.Indices {
			inGroup[idx] = true
		}
		merged += len(members) - 1

		log.Debug("Duplicate group", "group", n+1, "names", report.Names, "criteria", criteria)
		log.Debug("Merged contact", "group", n+1, "name", report.Merged.DisplayName(),
			"phones", len(report.Merged.Phones), "emails", len(report.Merged.Emails))

		out.Groups = append(out.Groups, report)
		out.Final = append(out.Final, report.Merged)
	}

	for i, c := range contacts {
		if inGroup[i] {
			continue
		}
		if c == nil {
			c = &model.Contact{}
		}
		out.Final = append(out.Final, c.Clone())
	}

	out.Stats = Stats{
		TotalContacts:     len(contacts),
		DuplicateGroups:   len(out.Groups),
		ContactsMerged:    merged,
		FinalContacts:     len(out.Final),
		ProtectedExcluded: result.ProtectedExcluded,
	}
	if len(contacts) > 0 {
		out.Stats.ReductionPercent = float64(len(contacts)-len(out.Final)) / float64(len(contacts)) * 100
	}

	if d.Reviewer != nil && len(out.Groups) > 0 {
		d.reviewGroups(ctx, log, result.Groups, out.Groups)
	}
	if d.Store != nil {
		if err := d.Store.SaveRun(ctx, runRecord(out, result, d.Detector)); err != nil {
			log.Warn("Failed to persist run graph", "error", err)
		}
	}

	log.Info("Deduplication finished",
		"total", out.Stats.TotalContacts,
		"groups", out.Stats.DuplicateGroups,
		"merged", out.Stats.ContactsMerged,
		"final", out.Stats.FinalContacts,
		"reduction", fmt.Sprintf("%.1f%%", out.Stats.ReductionPercent))

	return out, nil
}

// reviewGroups fills reports[i].Review. Each goroutine writes only its own
// report, so no locking is needed.
func (d *Deduplicator) reviewGroups(ctx context.Context, log logger.Logger, groups []model.DuplicateGroup, reports []GroupReport) {
	var eg errgroup.Group
	eg.SetLimit(d.reviewConcurrency)
	for i := range reports {
		i := i // per-iteration copy; go.mod targets Go 1.21 loop semantics
		eg.Go(func() error {
			verdict, err := d.Reviewer.ReviewGroup(ctx, groups[i].Contacts(), reports[i].Criteria)
			if err != nil {
				log.Warn("Group review failed", "group", i+1, "error", err)
				return nil
			}
			reports[i].Review = verdict
			if !verdict.SamePerson {
				log.Warn("Reviewer disputes duplicate group", "group", i+1,
					"names", reports[i].Names, "confidence", verdict.Confidence, "reasoning", verdict.Reasoning)
			}
			return nil
		})
	}
	_ = eg.Wait()
}

func runRecord(out *Outcome, result *dedupe.Result, detector *dedupe.Detector) *driver.RunRecord {
	rec := &driver.RunRecord{
		RunID:          out.RunID,
		CreatedAt:      time.Now().UTC(),
		FuzzyThreshold: detector.FuzzyThreshold(),
	}
	for _, n := range result.Normalized {
		rec.Contacts = append(rec.Contacts, driver.ContactNode{
			Index:     n.Index,
			Name:      n.Contact.DisplayName(),
			Protected: n.Protected,
		})
	}
	for i := 0; i < result.Graph.Len(); i++ {
		for _, j := range result.Graph.Neighbors(i) {
			if i > j {
				continue
			}
			rule := detector.MatchRule(result.Normalized[i], result.Normalized[j])
			rec.Edges = append(rec.Edges, driver.DuplicateEdge{Source: i, Target: j, Rule: rule.String()})
		}
	}
	for _, g := range out.Groups {
		rec.Groups = append(rec.Groups, driver.MergeGroupNode{
			UUID:       g.ID,
			MergedName: g.Merged.DisplayName(),
			Criteria:   g.Criteria,
			Members:    g.Indices,
		})
	}
	return rec
}
