package vcard

import (
	"fmt"

	"github.com/agenthands/contactmerge/internal/core/model"
)

// placeholderName is what CardFromContact writes when a record has no name.
const placeholderName = "Unknown"

// maxListed caps the record numbers quoted in a validation message.
const maxListed = 10

// Validation describes a re-read output file.
type Validation struct {
	OutputContacts   int      `json:"output_contacts"`
	ExpectedContacts int      `json:"expected_contacts"`
	ContactsLost     int      `json:"contacts_lost"`
	TotalPhones      int      `json:"total_phones"`
	TypedPhones      int      `json:"typed_phones"`
	Errors           []string `json:"errors,omitempty"`
	Warnings         []string `json:"warnings,omitempty"`
}

func (v *Validation) Valid() bool {
	return len(v.Errors) == 0
}

// PhoneTypePercent is the share of phones that carry a type other than the
// default one.
func (v *Validation) PhoneTypePercent() float64 {
	if v.TotalPhones == 0 {
		return 0
	}
	return float64(v.TypedPhones) / float64(v.TotalPhones) * 100
}

// ValidateFile re-reads a written file and checks it against expected
// records. The error is set only when the file cannot be read or parsed;
// content problems are reported in the Validation.
func ValidateFile(path string, expected int) (*Validation, error) {
	contacts, err := ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("output is not valid vCard: %w", err)
	}
	return Validate(contacts, expected), nil
}

// Validate checks the record count, that every record carries some data,
// and counts how many phones kept a type.
func Validate(contacts []*model.Contact, expected int) *Validation {
	v := &Validation{
		OutputContacts:   len(contacts),
		ExpectedContacts: expected,
	}
	if len(contacts) != expected {
		v.ContactsLost = expected - len(contacts)
		v.Errors = append(v.Errors, fmt.Sprintf("output holds %d contacts, expected %d", len(contacts), expected))
	}

	var unnamed, empty []int
	for i, c := range contacts {
		named := hasProperName(c)
		if !named {
			unnamed = append(unnamed, i+1)
		}
		if !named && len(c.Phones) == 0 && len(c.Emails) == 0 && c.Organization == "" {
			empty = append(empty, i+1)
		}
		for _, p := range c.Phones {
			v.TotalPhones++
			if p.Type != "" && p.Type != defaultType {
				v.TypedPhones++
			}
		}
	}
	if len(unnamed) > 0 {
		v.Warnings = append(v.Warnings, fmt.Sprintf("%d contacts without a proper name (records %v)", len(unnamed), head(unnamed)))
	}
	if len(empty) > 0 {
		v.Errors = append(v.Errors, fmt.Sprintf("%d contacts without any data (records %v)", len(empty), head(empty)))
	}
	return v
}

func hasProperName(c *model.Contact) bool {
	return c.Name != "" && c.Name != placeholderName
}

func head(ids []int) []int {
	if len(ids) > maxListed {
		return ids[:maxListed]
	}
	return ids
}
