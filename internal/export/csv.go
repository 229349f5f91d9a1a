// Package export writes contacts as CSV for spreadsheets.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/agenthands/contactmerge/internal/core/model"
)

const (
	maxPhones    = 5
	maxEmails    = 5
	maxAddresses = 3
)

// Headers returns the CSV header row.
func Headers() []string {
	h := []string{"Name", "First Name", "Last Name", "Middle Name", "Prefix", "Suffix"}
	h = append(h, repeated("Phone", maxPhones, "Number")...)
	h = append(h, repeated("Email", maxEmails, "Address")...)
	h = append(h, repeated("Address", maxAddresses, "")...)
	return append(h, "Organization", "Title", "Department", "Notes", "Birthday", "Anniversary")
}

func repeated(prefix string, n int, valueSuffix string) []string {
	out := make([]string, 0, 2*n)
	for i := 1; i <= n; i++ {
		out = append(out,
			fmt.Sprintf("%s %d Type", prefix, i),
			strings.TrimSpace(fmt.Sprintf("%s %d %s", prefix, i, valueSuffix)))
	}
	return out
}

// Row flattens c into one CSV record. Entries past the column limits are
// left out.
func Row(c *model.Contact) []string {
	row := []string{c.Name, c.FirstName, c.LastName, c.MiddleName, c.Prefix, c.Suffix}

	for i := 0; i < maxPhones; i++ {
		if i < len(c.Phones) {
			row = append(row, c.Phones[i].Type, c.Phones[i].Number)
		} else {
			row = append(row, "", "")
		}
	}
	for i := 0; i < maxEmails; i++ {
		if i < len(c.Emails) {
			row = append(row, c.Emails[i].Type, c.Emails[i].Address)
		} else {
			row = append(row, "", "")
		}
	}
	for i := 0; i < maxAddresses; i++ {
		if i < len(c.Addresses) {
			row = append(row, c.Addresses[i].Type, FormatAddress(c.Addresses[i]))
		} else {
			row = append(row, "", "")
		}
	}

	return append(row,
		c.Organization,
		c.Title,
		c.Department,
		joinNonEmpty(c.Notes, "; "),
		c.Birthday,
		c.Anniversary,
	)
}

// FormatAddress joins the non-empty address parts with ", ".
func FormatAddress(a model.Address) string {
	return joinNonEmpty([]string{a.Street, a.City, a.Region, a.PostalCode, a.Country}, ", ")
}

func joinNonEmpty(parts []string, sep string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}

// WriteCSV writes the header and one row per contact.
func WriteCSV(w io.Writer, contacts []*model.Contact) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Headers()); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, c := range contacts {
		if c == nil {
			continue
		}
		if err := cw.Write(Row(c)); err != nil {
			return fmt.Errorf("failed to write csv row for %s: %w", c.DisplayName(), err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile writes contacts to path, creating parent directories.
func WriteFile(path string, contacts []*model.Contact) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := WriteCSV(f, contacts); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
