// Package normalize derives the matching keys used by the duplicate detector.
package normalize

import (
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/nyaruka/phonenumbers"

	"github.com/agenthands/contactmerge/internal/core/model"
)

const (
	DefaultRegion    = "US"
	defaultCacheSize = 16384
)

// result is what the caches store; ok=false remembers a failed input.
type result struct {
	value string
	ok    bool
}

// Normalizer owns the phone and email caches of a single detector. It is
// safe for concurrent use.
type Normalizer struct {
	region string
	phones *lru.Cache[string, result]
	emails *lru.Cache[string, result]
}

// NewNormalizer reads national numbers in region. An unknown region falls
// back to DefaultRegion; callers validate with ValidRegion first.
func NewNormalizer(region string) *Normalizer {
	region = strings.ToUpper(strings.TrimSpace(region))
	if !ValidRegion(region) {
		region = DefaultRegion
	}
	// lru.New only fails for a non-positive size.
	phones, _ := lru.New[string, result](defaultCacheSize)
	emails, _ := lru.New[string, result](defaultCacheSize)
	return &Normalizer{
		region: region,
		phones: phones,
		emails: emails,
	}
}

// ValidRegion reports whether region is a two-letter region code known to
// the phone number metadata.
func ValidRegion(region string) bool {
	region = strings.ToUpper(strings.TrimSpace(region))
	return len(region) == 2 && phonenumbers.GetCountryCodeForRegion(region) != 0
}

func (n *Normalizer) Region() string {
	return n.region
}

// Contact derives the normalized view of c at position index.
func (n *Normalizer) Contact(c *model.Contact, index int) *model.NormalizedContact {
	nc := &model.NormalizedContact{
		Index:     index,
		Protected: IsProtected(c),
		Name:      Name(c.Name),
		First:     Name(c.FirstName),
		Last:      Name(c.LastName),
		Contact:   c,
	}
	for _, p := range c.Phones {
		if v, ok := n.Phone(p.Number); ok {
			nc.Phones = appendUnique(nc.Phones, v)
		}
	}
	for _, e := range c.Emails {
		if v, ok := n.Email(e.Address); ok {
			nc.Emails = appendUnique(nc.Emails, v)
		}
	}
	return nc
}

// IsProtected flags "In Case of Emergency" entries, which are never merged.
func IsProtected(c *model.Contact) bool {
	for _, s := range []string{c.Name, c.FirstName, c.LastName} {
		if strings.Contains(strings.ToUpper(s), "ICE") {
			return true
		}
	}
	return false
}

// Name lowercases, trims and collapses internal whitespace runs.
func Name(name string) string {
	if name == "" {
		return ""
	}
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

// Phone returns an E.164-like form of raw, or false when raw cannot take
// part in phone matching.
func (n *Normalizer) Phone(raw string) (string, bool) {
	if raw == "" {
		return "", false
	}
	if r, ok := n.phones.Get(raw); ok {
		return r.value, r.ok
	}
	r := n.parsePhone(raw)
	n.phones.Add(raw, r)
	return r.value, r.ok
}

func (n *Normalizer) parsePhone(raw string) result {
	digits := Digits(raw)
	if digits == "" {
		return result{}
	}

	if v, ok := formatE164(raw, n.region); ok {
		return result{value: v, ok: true}
	}
	if strings.HasPrefix(strings.TrimSpace(raw), "+") {
		if v, ok := formatE164(raw, ""); ok {
			return result{value: v, ok: true}
		}
	}

	if len(digits) >= 10 {
		if len(digits) == 10 {
			return result{value: "+1" + digits, ok: true}
		}
		return result{value: "+" + digits, ok: true}
	}
	return result{}
}

func formatE164(raw, region string) (string, bool) {
	num, err := phonenumbers.Parse(raw, region)
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return "", false
	}
	return phonenumbers.Format(num, phonenumbers.E164), true
}

// Email lowercases and trims raw; it fails when the domain part has no dot.
func (n *Normalizer) Email(raw string) (string, bool) {
	if raw == "" {
		return "", false
	}
	if r, ok := n.emails.Get(raw); ok {
		return r.value, r.ok
	}
	r := parseEmail(raw)
	n.emails.Add(raw, r)
	return r.value, r.ok
}

func parseEmail(raw string) result {
	v := strings.ToLower(strings.TrimSpace(raw))
	at := strings.LastIndex(v, "@")
	if at < 0 || !strings.Contains(v[at+1:], ".") {
		return result{}
	}
	return result{value: v, ok: true}
}

// Digits strips everything but ASCII digits.
func Digits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func appendUnique(list []string, v string) []string {
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}
