package dedupe

import (
	"fmt"
	"strings"

	"github.com/agenthands/contactmerge/internal/core/model"
	"github.com/agenthands/contactmerge/internal/core/similarity"
)

// rule reports whether a and b are duplicates under one strategy.
type rule struct {
	kind  model.MatchRule
	match func(a, b *model.NormalizedContact) bool
}

// defaultRules are evaluated in order; the first that fires decides. The
// protected-contact veto is applied before any of them.
func (d *Detector) defaultRules() []rule {
	return []rule{
		{model.RulePhone, func(a, b *model.NormalizedContact) bool { return a.SharesPhone(b) }},
		{model.RuleEmail, func(a, b *model.NormalizedContact) bool { return a.SharesEmail(b) }},
		{model.RuleExactName, exactName},
		{model.RuleFuzzyName, d.fuzzyName},
		{model.RuleWeakCorroboration, weakCorroboration},
	}
}

// AreDuplicates reports whether a and b should be merged.
func (d *Detector) AreDuplicates(a, b *model.NormalizedContact) bool {
	return d.MatchRule(a, b) != model.RuleNone
}

// MatchRule returns the first rule that links a and b, or RuleNone.
func (d *Detector) MatchRule(a, b *model.NormalizedContact) model.MatchRule {
	if a.Protected || b.Protected {
		return model.RuleNone
	}
	for _, r := range d.rules {
		if r.match(a, b) {
			return r.kind
		}
	}
	return model.RuleNone
}

func sharesChannel(a, b *model.NormalizedContact) bool {
	return a.SharesPhone(b) || a.SharesEmail(b)
}

func exactName(a, b *model.NormalizedContact) bool {
	if a.Name != "" && a.Name == b.Name {
		return true
	}
	return hasFullName(a) && hasFullName(b) && a.First == b.First && a.Last == b.Last
}

func (d *Detector) fuzzyName(a, b *model.NormalizedContact) bool {
	if a.Name != "" && b.Name != "" && similarity.Ratio(a.Name, b.Name) >= d.fuzzyThreshold {
		return true
	}
	if hasFullName(a) && hasFullName(b) {
		return similarity.Ratio(fullName(a), fullName(b)) >= d.fuzzyThreshold
	}
	return false
}

func weakCorroboration(a, b *model.NormalizedContact) bool {
	if a.Name == "" || b.Name == "" || !sharesChannel(a, b) {
		return false
	}
	return similarity.Ratio(a.Name, b.Name) >= weakNameThreshold
}

func hasFullName(n *model.NormalizedContact) bool {
	return n.First != "" && n.Last != ""
}

func fullName(n *model.NormalizedContact) string {
	return n.First + " " + n.Last
}

// MatchCriteria describes why two contacts were linked, for reports.
func (d *Detector) MatchCriteria(a, b *model.NormalizedContact) string {
	var criteria []string
	if a.SharesPhone(b) {
		criteria = append(criteria, "Phone number")
	}
	if a.SharesEmail(b) {
		criteria = append(criteria, "Email address")
	}
	if a.Name != "" && b.Name != "" {
		if a.Name == b.Name {
			criteria = append(criteria, "Exact name")
		} else if ratio := similarity.Ratio(a.Name, b.Name); ratio >= d.fuzzyThreshold {
			criteria = append(criteria, fmt.Sprintf("Fuzzy name (%.0f%% similar)", ratio))
		}
	}
	if len(criteria) == 0 {
		return "Multiple criteria"
	}
	return strings.Join(criteria, ", ")
}
