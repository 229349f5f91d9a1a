package dedupe

import (
	"context"
	"fmt"

	"github.com/agenthands/contactmerge/internal/core/cluster"
	"github.com/agenthands/contactmerge/internal/core/model"
	"github.com/agenthands/contactmerge/internal/core/normalize"
	"github.com/agenthands/contactmerge/internal/logger"
)

const (
	DefaultFuzzyThreshold = 85
	// weakNameThreshold is the name similarity required alongside a shared
	// phone or email. It does not follow the configurable threshold.
	weakNameThreshold = 70
)

// Detector finds groups of contact records that refer to the same person.
// Each Detector owns its normalization caches.
type Detector struct {
	fuzzyThreshold float64
	workers        int
	normalizer     *normalize.Normalizer
	logger         logger.Logger
	rules          []rule
}

type Option func(*detectorOptions)

type detectorOptions struct {
	threshold int
	region    string
	workers   int
	logger    logger.Logger
}

// WithFuzzyThreshold sets the 0-100 name similarity threshold. The value is
// expected to be validated by the caller.
func WithFuzzyThreshold(threshold int) Option {
	return func(o *detectorOptions) { o.threshold = threshold }
}

// WithRegion sets the region used to read phone numbers without a country code.
func WithRegion(region string) Option {
	return func(o *detectorOptions) { o.region = region }
}

// WithWorkers spreads the pairwise comparison over n goroutines.
func WithWorkers(n int) Option {
	return func(o *detectorOptions) { o.workers = n }
}

func WithLogger(l logger.Logger) Option {
	return func(o *detectorOptions) { o.logger = l }
}

func NewDetector(opts ...Option) *Detector {
	o := detectorOptions{
		threshold: DefaultFuzzyThreshold,
		region:    normalize.DefaultRegion,
		workers:   1,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.workers < 1 {
		o.workers = 1
	}
	if o.logger == nil {
		o.logger = logger.NewNop()
	}
	if o.region != "" && !normalize.ValidRegion(o.region) {
		o.logger.Warn("Unknown phone region, using default", "region", o.region, "default", normalize.DefaultRegion)
	}

	d := &Detector{
		fuzzyThreshold: float64(o.threshold),
		workers:        o.workers,
		normalizer:     normalize.NewNormalizer(o.region),
		logger:         o.logger,
	}
	d.rules = d.defaultRules()
	return d
}

func (d *Detector) FuzzyThreshold() int {
	return int(d.fuzzyThreshold)
}

// Normalizer exposes the detector's normalizer so a Merger can share its
// caches and region.
func (d *Detector) Normalizer() *normalize.Normalizer {
	return d.normalizer
}

// Result is the outcome of one detection run.
type Result struct {
	Groups []model.DuplicateGroup
	// ProtectedExcluded counts the contacts in groups dropped because
	// they contained a protected contact.
	ProtectedExcluded int
	Graph             *cluster.Graph
	Normalized        []*model.NormalizedContact
}

// Normalize derives the matching view of every contact, keyed by position.
func (d *Detector) Normalize(contacts []*model.Contact) []*model.NormalizedContact {
	out := make([]*model.NormalizedContact, len(contacts))
	for i, c := range contacts {
		if c == nil {
			c = &model.Contact{}
		}
		out[i] = d.normalizer.Contact(c, i)
	}
	return out
}

// FindDuplicates groups contacts into duplicate groups of at least two
// members. Groups that contain a protected contact are left out.
func (d *Detector) FindDuplicates(ctx context.Context, contacts []*model.Contact) (*Result, error) {
	d.logger.Info("Starting duplicate detection", "contacts", len(contacts))

	normalized := d.Normalize(contacts)
	graph, err := d.BuildGraph(ctx, normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to build similarity graph: %w", err)
	}

	var groups []model.DuplicateGroup
	for _, component := range graph.Components(2) {
		members := make([]*model.NormalizedContact, len(component))
		for k, idx := range component {
			members[k] = normalized[idx]
		}
		groups = append(groups, model.DuplicateGroup{Members: members})
	}

	kept, excluded := d.filterProtected(groups)
	if excluded > 0 {
		d.logger.Info("Excluded protected contacts from merging", "contacts", excluded)
	}
	d.logger.Info("Duplicate detection finished", "groups", len(kept), "edges", graph.EdgeCount())

	return &Result{
		Groups:            kept,
		ProtectedExcluded: excluded,
		Graph:             graph,
		Normalized:        normalized,
	}, nil
}

func (d *Detector) filterProtected(groups []model.DuplicateGroup) ([]model.DuplicateGroup, int) {
	var kept []model.DuplicateGroup
	excluded := 0
	for _, g := range groups {
		if !hasProtected(g) {
			kept = append(kept, g)
			continue
		}
		excluded += len(g.Members)
		d.logger.Info("Skipping merge for protected contact group", "names", g.Names())
	}
	return kept, excluded
}

func hasProtected(g model.DuplicateGroup) bool {
	for _, m := range g.Members {
		if m.Protected {
			return true
		}
	}
	return false
}
