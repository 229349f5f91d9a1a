// Package merge folds a duplicate group into one contact record.
package merge

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/agenthands/contactmerge/internal/core/model"
	"github.com/agenthands/contactmerge/internal/core/normalize"
	"github.com/agenthands/contactmerge/internal/logger"
)

// Merger combines duplicate contacts without losing information. Base
// values win ties; collections are unioned in order of first appearance.
type Merger struct {
	phones *normalize.Normalizer
	logger logger.Logger
}

// NewMerger returns a Merger that keys phones through n. A nil n uses the
// default region; a nil l discards logs.
func NewMerger(n *normalize.Normalizer, l logger.Logger) *Merger {
	if n == nil {
		n = normalize.NewNormalizer(normalize.DefaultRegion)
	}
	if l == nil {
		l = logger.NewNop()
	}
	return &Merger{phones: n, logger: l}
}

// Merge folds group left to right into a new record. An empty group yields
// an empty record and a single contact is returned as a copy. The inputs are
// never modified.
func (m *Merger) Merge(group []*model.Contact) *model.Contact {
	switch len(group) {
	case 0:
		return &model.Contact{}
	case 1:
		return orEmpty(group[0]).Clone()
	}

	merged := orEmpty(group[0]).Clone()
	for _, c := range group[1:] {
		merged = m.MergeTwo(merged, c)
	}
	return merged
}

// MergeTwo merges other into base and returns the result as a new record.
func (m *Merger) MergeTwo(base, other *model.Contact) *model.Contact {
	base = orEmpty(base).Clone()
	other = orEmpty(other).Clone()
	relabelGroups(base, other)

	photo, photoParams := base.Photo, base.PhotoParams
	if photo == "" {
		photo, photoParams = other.Photo, other.PhotoParams
	}

	out := &model.Contact{
		Name:       mergeNames(base.Name, other.Name),
		FirstName:  preferLonger(base.FirstName, other.FirstName),
		LastName:   preferLonger(base.LastName, other.LastName),
		MiddleName: preferLonger(base.MiddleName, other.MiddleName),
		Prefix:     preferBase(base.Prefix, other.Prefix),
		Suffix:     preferBase(base.Suffix, other.Suffix),

		Phones:    union(base.Phones, other.Phones, m.phoneKey),
		Emails:    mergeEmails(base.Emails, other.Emails),
		Addresses: mergeAddresses(base.Addresses, other.Addresses),
		URLs:      mergeStrings(base.URLs, other.URLs),

		Organization: preferLonger(base.Organization, other.Organization),
		Title:        preferLonger(base.Title, other.Title),
		Department:   preferLonger(base.Department, other.Department),

		Notes:       mergeStrings(base.Notes, other.Notes),
		Birthday:    preferBase(base.Birthday, other.Birthday),
		Anniversary: preferBase(base.Anniversary, other.Anniversary),
		Photo:       photo,
		PhotoParams: photoParams,

		CustomFields: mergeCustomFields(base.CustomFields, other.CustomFields),
		RawForm:      m.mergeRawForm(base.RawForm, other.RawForm),
	}
	return out
}

func orEmpty(c *model.Contact) *model.Contact {
	if c == nil {
		return &model.Contact{}
	}
	return c
}

// mergeNames keeps the longer trimmed display name, base on a tie.
func mergeNames(base, other string) string {
	base = strings.TrimSpace(base)
	other = strings.TrimSpace(other)
	switch {
	case base == "":
		return other
	case other == "":
		return base
	case utf8.RuneCountInString(base) >= utf8.RuneCountInString(other):
		return base
	default:
		return other
	}
}

// preferLonger keeps base unless other is strictly longer once trimmed.
// The untrimmed value is returned.
func preferLonger(base, other string) string {
	if base == "" {
		return other
	}
	if other == "" {
		return base
	}
	if utf8.RuneCountInString(strings.TrimSpace(other)) > utf8.RuneCountInString(strings.TrimSpace(base)) {
		return other
	}
	return base
}

func preferBase(base, other string) string {
	if base == "" {
		return other
	}
	return base
}

// mergeRawForm keeps the longer raw payload. Length stands in for "carries
// more embedded data"; it is a heuristic, not a guarantee.
func (m *Merger) mergeRawForm(base, other string) string {
	switch {
	case base != "" && other != "":
		if len(other) > len(base) {
			m.logger.Debug("Using other contact's raw form (longer, likely carries more data)")
			return other
		}
		return base
	case base == "" && other != "":
		m.logger.Debug("Using other contact's raw form (base had none)")
		return other
	default:
		return base
	}
}

// phoneKey identifies a phone by its digits and its sorted type tokens, so
// one number under two types yields two keys. Numbers that normalize are
// keyed by the digits of their E.164 form so formatting differences collapse.
func (m *Merger) phoneKey(p model.Phone) (string, bool) {
	digits := normalize.Digits(p.Number)
	if digits == "" {
		return "", false
	}
	if e164, ok := m.phones.Phone(p.Number); ok {
		digits = normalize.Digits(e164)
	}
	kind := strings.ToUpper(p.Type)
	if kind == "" {
		kind = "OTHER"
	}
	parts := strings.Split(kind, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	sort.Strings(parts)
	return digits + "|" + strings.Join(parts, ","), true
}

func mergeEmails(base, other []model.Email) []model.Email {
	return union(base, other, func(e model.Email) (string, bool) {
		key := strings.ToLower(strings.TrimSpace(e.Address))
		return key, key != ""
	})
}

func addressKey(a model.Address) (string, bool) {
	street := strings.ToLower(strings.TrimSpace(a.Street))
	city := strings.ToLower(strings.TrimSpace(a.City))
	postal := strings.TrimSpace(a.PostalCode)
	if street == "" && city == "" && postal == "" {
		return "", false
	}
	return street + "|" + city + "|" + postal, true
}

func mergeAddresses(base, other []model.Address) []model.Address {
	return union(base, other, addressKey)
}

// mergeStrings unions text lists case-insensitively, keeping the first
// spelling seen.
func mergeStrings(base, other []string) []string {
	return union(base, other, func(s string) (string, bool) {
		key := strings.ToLower(strings.TrimSpace(s))
		return key, key != ""
	})
}

// union returns the items of base then other whose key is valid and not yet
// seen. Items are values, so the result shares no memory with callers that
// passed cloned slices.
func union[T any](base, other []T, key func(T) (string, bool)) []T {
	var out []T
	seen := make(map[string]struct{}, len(base)+len(other))
	for _, list := range [][]T{base, other} {
		for _, item := range list {
			k, ok := key(item)
			if !ok {
				continue
			}
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			out = append(out, item)
		}
	}
	return out
}

// singleValueFields hold one value per record. The base value wins and the
// other record's value is used only when base has none.
var singleValueFields = map[string]bool{
	"UID":    true,
	"REV":    true,
	"KIND":   true,
	"GENDER": true,
}

// mergeCustomFields keeps every base value and appends the other record's
// values whose text (case-insensitive) is not already present for the key
// within the same group.
func mergeCustomFields(base, other map[string][]model.CustomValue) map[string][]model.CustomValue {
	if len(base) == 0 && len(other) == 0 {
		return nil
	}
	out := make(map[string][]model.CustomValue, len(base)+len(other))
	for k, values := range base {
		out[k] = values
	}

	keys := make([]string, 0, len(other))
	for k := range other {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if singleValueFields[k] {
			switch {
			case len(out[k]) > 0:
			case len(other[k]) > 0:
				out[k] = other[k][:1]
			default:
				out[k] = []model.CustomValue{}
			}
			continue
		}
		existing := make(map[string]struct{}, len(out[k]))
		for _, v := range out[k] {
			existing[customValueID(v)] = struct{}{}
		}
		for _, v := range other[k] {
			id := customValueID(v)
			if _, ok := existing[id]; ok {
				continue
			}
			existing[id] = struct{}{}
			out[k] = append(out[k], v)
		}
		if out[k] == nil {
			out[k] = []model.CustomValue{}
		}
	}
	return out
}

func customValueID(v model.CustomValue) string {
	return v.Group + "\x00" + strings.ToLower(v.Value)
}
