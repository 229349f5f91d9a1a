package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClone_IsDeep(t *testing.T) {
	c := &Contact{
		Name:   "John Smith",
		Phones: []Phone{{Number: "555-1234", Type: "CELL"}},
		CustomFields: map[string][]CustomValue{
			"X-SOCIAL": {{Value: "@john", Params: map[string]string{"TYPE": "twitter"}}},
		},
	}

	cp := c.Clone()
	require.NotNil(t, cp)
	assert.Equal(t, c, cp)

	cp.Phones[0].Number = "000"
	cp.CustomFields["X-SOCIAL"][0].Params["TYPE"] = "other"
	assert.Equal(t, "555-1234", c.Phones[0].Number)
	assert.Equal(t, "twitter", c.CustomFields["X-SOCIAL"][0].Params["TYPE"])

	var nilContact *Contact
	assert.Nil(t, nilContact.Clone())
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Ann", (&Contact{Name: "Ann"}).DisplayName())
	assert.Equal(t, "Ann Lee", (&Contact{FirstName: "Ann", LastName: "Lee"}).DisplayName())
	assert.Equal(t, "Lee", (&Contact{LastName: "Lee"}).DisplayName())
	assert.Equal(t, "Acme", (&Contact{Organization: "Acme"}).DisplayName())
	assert.Equal(t, "Unknown", (&Contact{}).DisplayName())
}

func TestSharesPhoneAndEmail(t *testing.T) {
	a := &NormalizedContact{Phones: []string{"+12025550123"}, Emails: []string{"a@x.com"}}
	b := &NormalizedContact{Phones: []string{"+15550000000", "+12025550123"}}
	c := &NormalizedContact{}

	assert.True(t, a.SharesPhone(b))
	assert.True(t, b.SharesPhone(a))
	assert.False(t, a.SharesEmail(b))
	assert.False(t, a.SharesPhone(c))
}

func TestDuplicateGroupAccessors(t *testing.T) {
	c1 := &Contact{Name: "A"}
	c2 := &Contact{Name: "B"}
	g := DuplicateGroup{Members: []*NormalizedContact{
		{Index: 3, Contact: c1},
		{Index: 7, Contact: c2},
	}}

	assert.Equal(t, []int{3, 7}, g.Indices())
	assert.Equal(t, []*Contact{c1, c2}, g.Contacts())
	assert.Equal(t, []string{"A", "B"}, g.Names())
	assert.Equal(t, "fuzzy_name", RuleFuzzyName.String())
	assert.Equal(t, "none", RuleNone.String())
}
