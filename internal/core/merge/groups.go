package merge

import (
	"sort"
	"strconv"

	"github.com/agenthands/contactmerge/internal/core/model"
)

// relabelGroups renames the property groups of other that base already uses,
// so values and their labels stay paired after the two records are unioned.
// other must be a copy owned by the caller.
func relabelGroups(base, other *model.Contact) {
	theirs := groupsOf(other)
	if len(theirs) == 0 {
		return
	}
	taken := make(map[string]bool)
	for _, g := range groupsOf(base) {
		taken[g] = true
	}

	rename := make(map[string]string, len(theirs))
	next := 1
	for _, g := range theirs {
		if !taken[g] {
			rename[g] = g
			taken[g] = true
			continue
		}
		label := "item" + strconv.Itoa(next)
		for taken[label] {
			next++
			label = "item" + strconv.Itoa(next)
		}
		rename[g] = label
		taken[label] = true
	}

	for i := range other.Phones {
		other.Phones[i].Group = relabel(rename, other.Phones[i].Group)
	}
	for i := range other.Emails {
		other.Emails[i].Group = relabel(rename, other.Emails[i].Group)
	}
	for i := range other.Addresses {
		other.Addresses[i].Group = relabel(rename, other.Addresses[i].Group)
	}
	for _, values := range other.CustomFields {
		for i := range values {
			values[i].Group = relabel(rename, values[i].Group)
		}
	}
}

func relabel(rename map[string]string, group string) string {
	if group == "" {
		return ""
	}
	return rename[group]
}

// groupsOf lists the distinct non-empty groups of c in a stable order.
func groupsOf(c *model.Contact) []string {
	var out []string
	seen := make(map[string]bool)
	add := func(g string) {
		if g != "" && !seen[g] {
			seen[g] = true
			out = append(out, g)
		}
	}
	for _, p := range c.Phones {
		add(p.Group)
	}
	for _, e := range c.Emails {
		add(e.Group)
	}
	for _, a := range c.Addresses {
		add(a.Group)
	}
	keys := make([]string, 0, len(c.CustomFields))
	for k := range c.CustomFields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		for _, v := range c.CustomFields[k] {
			add(v.Group)
		}
	}
	return out
}
