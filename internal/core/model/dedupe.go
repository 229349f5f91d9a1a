package model

// MatchRule identifies which duplicate rule fired for a pair.
type MatchRule int

const (
	RuleNone MatchRule = iota
	RulePhone
	RuleEmail
	RuleExactName
	RuleFuzzyName
	RuleWeakCorroboration
)

func (r MatchRule) String() string {
	switch r {
	case RulePhone:
		return "phone"
	case RuleEmail:
		return "email"
	case RuleExactName:
		return "exact_name"
	case RuleFuzzyName:
		return "fuzzy_name"
	case RuleWeakCorroboration:
		return "weak_corroboration"
	default:
		return "none"
	}
}

// DuplicateGroup is a connected component of the similarity graph.
// Members keep the traversal order, which is also the merge order.
type DuplicateGroup struct {
	Members []*NormalizedContact
}

func (g DuplicateGroup) Indices() []int {
	out := make([]int, len(g.Members))
	for i, m := range g.Members {
		out[i] = m.Index
	}
	return out
}

func (g DuplicateGroup) Contacts() []*Contact {
	out := make([]*Contact, len(g.Members))
	for i, m := range g.Members {
		out[i] = m.Contact
	}
	return out
}

func (g DuplicateGroup) Names() []string {
	out := make([]string, len(g.Members))
	for i, m := range g.Members {
		out[i] = m.Contact.DisplayName()
	}
	return out
}
