// Package vcard converts between vCard files and contact records.
package vcard

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	govcard "github.com/emersion/go-vcard"

	"github.com/agenthands/contactmerge/internal/core/model"
)

const defaultType = "OTHER"

// standardFields are mapped onto Contact fields; everything else lands in
// CustomFields.
var standardFields = map[string]bool{
	govcard.FieldFormattedName: true,
	govcard.FieldName:          true,
	govcard.FieldTelephone:     true,
	govcard.FieldEmail:         true,
	govcard.FieldAddress:       true,
	govcard.FieldURL:           true,
	govcard.FieldOrganization:  true,
	govcard.FieldTitle:         true,
	govcard.FieldRole:          true,
	govcard.FieldNote:          true,
	govcard.FieldBirthday:      true,
	govcard.FieldAnniversary:   true,
	govcard.FieldPhoto:         true,
	govcard.FieldVersion:       true,
	govcard.FieldProductID:     true,
}

// Decode reads every card from r.
func Decode(r io.Reader) ([]*model.Contact, error) {
	dec := govcard.NewDecoder(r)
	var contacts []*model.Contact
	for {
		card, err := dec.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to decode card %d: %w", len(contacts)+1, err)
		}
		contacts = append(contacts, ContactFromCard(card))
	}
	return contacts, nil
}

func ReadFile(path string) ([]*model.Contact, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	return Decode(f)
}

// ContactFromCard maps card onto a Contact. RawForm holds the card encoded
// on its own.
func ContactFromCard(card govcard.Card) *model.Contact {
	c := &model.Contact{
		Name:        strings.TrimSpace(card.Value(govcard.FieldFormattedName)),
		Title:       card.Value(govcard.FieldTitle),
		Birthday:    card.Value(govcard.FieldBirthday),
		Anniversary: card.Value(govcard.FieldAnniversary),
	}
	if f := card.Get(govcard.FieldPhoto); f != nil {
		c.Photo = f.Value
		c.PhotoParams = flattenParams(f.Params)
	}

	if n := card.Name(); n != nil {
		c.FirstName = n.GivenName
		c.LastName = n.FamilyName
		c.MiddleName = n.AdditionalName
		c.Prefix = n.HonorificPrefix
		c.Suffix = n.HonorificSuffix
	}

	for _, f := range card[govcard.FieldTelephone] {
		c.Phones = append(c.Phones, model.Phone{Number: f.Value, Type: types(f), Group: f.Group})
	}
	for _, f := range card[govcard.FieldEmail] {
		c.Emails = append(c.Emails, model.Email{Address: f.Value, Type: types(f), Group: f.Group})
	}
	for _, a := range card.Addresses() {
		c.Addresses = append(c.Addresses, model.Address{
			Type:       types(a.Field),
			Group:      a.Group,
			Street:     a.StreetAddress,
			City:       a.Locality,
			Region:     a.Region,
			PostalCode: a.PostalCode,
			Country:    a.Country,
		})
	}
	c.URLs = card.Values(govcard.FieldURL)
	c.Notes = card.Values(govcard.FieldNote)

	if org := card.Value(govcard.FieldOrganization); org != "" {
		parts := strings.SplitN(org, ";", 2)
		c.Organization = parts[0]
		if len(parts) > 1 {
			c.Department = strings.TrimRight(parts[1], ";")
		}
	}
	if c.Department == "" {
		c.Department = card.Value(govcard.FieldRole)
	}

	for key, fields := range card {
		if standardFields[key] {
			continue
		}
		if c.CustomFields == nil {
			c.CustomFields = make(map[string][]model.CustomValue)
		}
		for _, f := range fields {
			c.CustomFields[key] = append(c.CustomFields[key], model.CustomValue{
				Value:  f.Value,
				Params: flattenParams(f.Params),
				Group:  f.Group,
			})
		}
	}

	if c.Name == "" {
		c.Name = nameFromParts(c)
	}
	if c.Name == "" {
		c.Name = c.Organization
	}

	var raw bytes.Buffer
	if err := govcard.NewEncoder(&raw).Encode(card); err == nil {
		c.RawForm = raw.String()
	}
	return c
}

// types joins the TYPE parameters upper-cased, or returns OTHER.
func types(f *govcard.Field) string {
	if f == nil {
		return defaultType
	}
	var out []string
	for _, t := range f.Params[govcard.ParamType] {
		for _, part := range strings.Split(t, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, strings.ToUpper(part))
			}
		}
	}
	if len(out) == 0 {
		return defaultType
	}
	return strings.Join(out, ",")
}

func flattenParams(p govcard.Params) map[string]string {
	if len(p) == 0 {
		return nil
	}
	out := make(map[string]string, len(p))
	for k, v := range p {
		out[k] = strings.Join(v, ",")
	}
	return out
}

func nameFromParts(c *model.Contact) string {
	var parts []string
	for _, p := range []string{c.Prefix, c.FirstName, c.MiddleName, c.LastName, c.Suffix} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
