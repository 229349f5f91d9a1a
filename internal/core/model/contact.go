package model

import (
	"github.com/mohae/deepcopy"
)

// Group is the property group label of the source format (vCard "item1.")
// and ties a value to labels stored in CustomFields under the same group.
type Phone struct {
	Number string `json:"number"`
	Type   string `json:"type,omitempty"`
	Group  string `json:"group,omitempty"`
}

type Email struct {
	Address string `json:"address"`
	Type    string `json:"type,omitempty"`
	Group   string `json:"group,omitempty"`
}

type Address struct {
	Type       string `json:"type,omitempty"`
	Group      string `json:"group,omitempty"`
	Street     string `json:"street,omitempty"`
	City       string `json:"city,omitempty"`
	Region     string `json:"region,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Country    string `json:"country,omitempty"`
}

// CustomValue is one occurrence of a custom (non-standard) field.
// Params carries whatever metadata the source format attached to it.
type CustomValue struct {
	Value  string            `json:"value"`
	Params map[string]string `json:"params,omitempty"`
	Group  string            `json:"group,omitempty"`
}

// Contact is a parsed contact record. Every field may be empty; an empty
// string means the value is absent.
type Contact struct {
	Name       string `json:"name"`
	FirstName  string `json:"first_name,omitempty"`
	LastName   string `json:"last_name,omitempty"`
	MiddleName string `json:"middle_name,omitempty"`
	Prefix     string `json:"prefix,omitempty"`
	Suffix     string `json:"suffix,omitempty"`

	Phones    []Phone   `json:"phones,omitempty"`
	Emails    []Email   `json:"emails,omitempty"`
	Addresses []Address `json:"addresses,omitempty"`
	URLs      []string  `json:"urls,omitempty"`

	Organization string `json:"organization,omitempty"`
	Title        string `json:"title,omitempty"`
	Department   string `json:"department,omitempty"`

	Notes       []string `json:"notes,omitempty"`
	Birthday    string   `json:"birthday,omitempty"`
	Anniversary string   `json:"anniversary,omitempty"`
	Photo       string   `json:"photo,omitempty"`
	// PhotoParams travel with Photo (encoding and media type).
	PhotoParams map[string]string `json:"photo_params,omitempty"`

	CustomFields map[string][]CustomValue `json:"custom_fields,omitempty"`

	// RawForm is the source payload the record was parsed from. It is
	// opaque to matching and merging apart from its length.
	RawForm string `json:"raw_form,omitempty"`
}

// Clone returns a deep copy of c. A nil receiver yields nil.
func (c *Contact) Clone() *Contact {
	if c == nil {
		return nil
	}
	cp, ok := deepcopy.Copy(c).(*Contact)
	if !ok {
		return &Contact{}
	}
	return cp
}

// DisplayName is the best human label for the record.
func (c *Contact) DisplayName() string {
	switch {
	case c.Name != "":
		return c.Name
	case c.FirstName != "" || c.LastName != "":
		if c.FirstName == "" {
			return c.LastName
		}
		if c.LastName == "" {
			return c.FirstName
		}
		return c.FirstName + " " + c.LastName
	case c.Organization != "":
		return c.Organization
	default:
		return "Unknown"
	}
}
