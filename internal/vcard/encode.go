package vcard

import (
	"fmt"
	"io"
	"os"
	"strings"

	govcard "github.com/emersion/go-vcard"

	"github.com/agenthands/contactmerge/internal/core/model"
)

const version = "3.0"

// CardFromContact builds a vCard 3.0 card from c. FN falls back to the name
// parts and then to "Unknown".
func CardFromContact(c *model.Contact) govcard.Card {
	card := make(govcard.Card)
	card.SetValue(govcard.FieldVersion, version)

	fn := strings.TrimSpace(c.Name)
	if fn == "" {
		fn = nameFromParts(c)
	}
	if fn == "" {
		fn = "Unknown"
	}
	card.SetValue(govcard.FieldFormattedName, fn)

	if c.FirstName != "" || c.LastName != "" {
		card.SetName(&govcard.Name{
			GivenName:       c.FirstName,
			FamilyName:      c.LastName,
			AdditionalName:  c.MiddleName,
			HonorificPrefix: c.Prefix,
			HonorificSuffix: c.Suffix,
		})
	}

	for _, p := range c.Phones {
		card.Add(govcard.FieldTelephone, typedField(p.Number, p.Type, p.Group))
	}
	for _, e := range c.Emails {
		card.Add(govcard.FieldEmail, typedField(e.Address, e.Type, e.Group))
	}
	for _, a := range c.Addresses {
		card.AddAddress(&govcard.Address{
			Field:         typedField("", a.Type, a.Group),
			StreetAddress: a.Street,
			Locality:      a.City,
			Region:        a.Region,
			PostalCode:    a.PostalCode,
			Country:       a.Country,
		})
	}
	for _, u := range c.URLs {
		card.AddValue(govcard.FieldURL, u)
	}

	if c.Organization != "" {
		org := c.Organization
		if c.Department != "" {
			org += ";" + c.Department
		}
		card.SetValue(govcard.FieldOrganization, org)
	}
	setIf(card, govcard.FieldTitle, c.Title)
	for _, n := range c.Notes {
		card.AddValue(govcard.FieldNote, n)
	}
	setIf(card, govcard.FieldBirthday, c.Birthday)
	setIf(card, govcard.FieldAnniversary, c.Anniversary)
	if c.Photo != "" {
		card.Add(govcard.FieldPhoto, &govcard.Field{Value: c.Photo, Params: params(c.PhotoParams)})
	}

	for _, key := range sortedKeys(c.CustomFields) {
		for _, v := range c.CustomFields[key] {
			card.Add(key, &govcard.Field{Value: v.Value, Params: params(v.Params), Group: v.Group})
		}
	}
	return card
}

// params reverses flattenParams.
func params(p map[string]string) govcard.Params {
	if len(p) == 0 {
		return nil
	}
	out := make(govcard.Params, len(p))
	for k, v := range p {
		out[k] = strings.Split(v, ",")
	}
	return out
}

func typedField(value, kind, group string) *govcard.Field {
	f := &govcard.Field{Value: value, Group: group}
	var kinds []string
	for _, k := range strings.Split(kind, ",") {
		k = strings.TrimSpace(k)
		if k == "" || strings.EqualFold(k, defaultType) {
			continue
		}
		kinds = append(kinds, strings.ToUpper(k))
	}
	if len(kinds) > 0 {
		f.Params = govcard.Params{govcard.ParamType: kinds}
	}
	return f
}

func setIf(card govcard.Card, key, value string) {
	if value != "" {
		card.SetValue(key, value)
	}
}

// Encode writes contacts to w as a vCard stream.
func Encode(w io.Writer, contacts []*model.Contact) error {
	enc := govcard.NewEncoder(w)
	for i, c := range contacts {
		if c == nil {
			continue
		}
		if err := enc.Encode(CardFromContact(c)); err != nil {
			return fmt.Errorf("failed to encode contact %d (%s): %w", i+1, c.DisplayName(), err)
		}
	}
	return nil
}

func WriteFile(path string, contacts []*model.Contact) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := Encode(f, contacts); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
