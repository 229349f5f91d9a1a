package model

// NormalizedContact carries the matching-only attributes derived from a
// Contact. It never leaks into merged output.
type NormalizedContact struct {
	Index     int
	Protected bool
	Name      string
	First     string
	Last      string
	// Phones and Emails hold distinct normalized values in first-seen order.
	Phones []string
	Emails []string

	Contact *Contact
}

// SharesPhone reports whether both contacts have a normalized phone in common.
func (n *NormalizedContact) SharesPhone(other *NormalizedContact) bool {
	return intersects(n.Phones, other.Phones)
}

// SharesEmail reports whether both contacts have a normalized email in common.
func (n *NormalizedContact) SharesEmail(other *NormalizedContact) bool {
	return intersects(n.Emails, other.Emails)
}

func intersects(a, b []string) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	if len(a) > len(b) {
		a, b = b, a
	}
	set := make(map[string]struct{}, len(a))
	for _, v := range a {
		set[v] = struct{}{}
	}
	for _, v := range b {
		if _, ok := set[v]; ok {
			return true
		}
	}
	return false
}
