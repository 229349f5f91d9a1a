package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/contactmerge/internal/core/model"
	"github.com/agenthands/contactmerge/internal/core/normalize"
)

func TestMerge_EmptyAndSingle(t *testing.T) {
	m := NewMerger(nil, nil)

	assert.Equal(t, &model.Contact{}, m.Merge(nil))

	src := &model.Contact{Name: "Ann", Phones: []model.Phone{{Number: "555", Type: "CELL"}}}
	got := m.Merge([]*model.Contact{src})
	assert.Equal(t, src, got)
	assert.NotSame(t, src, got)

	got.Phones[0].Number = "000"
	assert.Equal(t, "555", src.Phones[0].Number)
}

func TestMerge_SameNumberDifferentTypeKept(t *testing.T) {
	m := NewMerger(nil, nil)
	got := m.Merge([]*model.Contact{
		{Name: "Maria Garcia", Phones: []model.Phone{{Number: "555-1234", Type: "CELL"}}},
		{Name: "Maria Garcia", Phones: []model.Phone{{Number: "555-1234", Type: "HOME"}}},
	})

	assert.Equal(t, []model.Phone{
		{Number: "555-1234", Type: "CELL"},
		{Number: "555-1234", Type: "HOME"},
	}, got.Phones)
}

func TestMerge_SharedPhoneCollapses(t *testing.T) {
	m := NewMerger(nil, nil)
	got := m.Merge([]*model.Contact{
		{Name: "John Smith", Phones: []model.Phone{{Number: "+12025550123", Type: "CELL"}}},
		{Name: "John Smith", Phones: []model.Phone{{Number: "(202) 555-0123", Type: "CELL"}}},
	})

	assert.Equal(t, []model.Phone{{Number: "+12025550123", Type: "CELL"}}, got.Phones)
}

func TestMerge_SamePhoneDifferentFormatting(t *testing.T) {
	m := NewMerger(nil, nil)
	got := m.Merge([]*model.Contact{
		{Name: "John Smith", Phones: []model.Phone{{Number: "202-555-0123", Type: "cell,voice"}}},
		{Name: "John Smith", Phones: []model.Phone{{Number: "(202) 555 0123", Type: "VOICE,CELL"}}},
		{Name: "John Smith", Phones: []model.Phone{{Number: "n/a"}, {Number: "2025550123"}}},
	})

	assert.Equal(t, []model.Phone{
		{Number: "202-555-0123", Type: "cell,voice"},
		{Number: "2025550123"},
	}, got.Phones)
}

func TestMergeTwo_LongerOrganizationWins(t *testing.T) {
	m := NewMerger(nil, nil)
	got := m.MergeTwo(&model.Contact{Organization: "Acme"}, &model.Contact{Organization: "Acme Corporation"})
	assert.Equal(t, "Acme Corporation", got.Organization)
}

func TestMergeTwo_ScalarRules(t *testing.T) {
	m := NewMerger(nil, nil)
	base := &model.Contact{
		Name:      "  Bob Brown ",
		FirstName: "Bob",
		LastName:  "Brown",
		Title:     "CTO ",
		Prefix:    "Dr.",
		Birthday:  "1980-01-02",
	}
	other := &model.Contact{
		Name:        "Robert Brown",
		FirstName:   "Robert",
		LastName:    "Brwn",
		MiddleName:  "J",
		Title:       "VP",
		Prefix:      "Mr.",
		Suffix:      "Jr.",
		Birthday:    "1981-01-01",
		Anniversary: "2005-06-07",
		Photo:       "base64data",
		Department:  "Engineering",
	}

	got := m.MergeTwo(base, other)

	assert.Equal(t, "Robert Brown", got.Name)
	assert.Equal(t, "Robert", got.FirstName)
	assert.Equal(t, "Brown", got.LastName)
	assert.Equal(t, "J", got.MiddleName)
	assert.Equal(t, "CTO ", got.Title, "length compared after trimming")
	assert.Equal(t, "Engineering", got.Department)
	assert.Equal(t, "Dr.", got.Prefix)
	assert.Equal(t, "Jr.", got.Suffix)
	assert.Equal(t, "1980-01-02", got.Birthday)
	assert.Equal(t, "2005-06-07", got.Anniversary)
	assert.Equal(t, "base64data", got.Photo)
}

func TestMergeNames(t *testing.T) {
	assert.Equal(t, "Ann", mergeNames("", " Ann "))
	assert.Equal(t, "Ann", mergeNames("Ann", ""))
	assert.Equal(t, "Ann", mergeNames("Ann", "Bob"), "tie keeps base")
	assert.Equal(t, "Ann Lee", mergeNames("Ann", "Ann Lee"))
	assert.Equal(t, "", mergeNames("  ", ""))
}

func TestMergeTwo_Collections(t *testing.T) {
	m := NewMerger(nil, nil)
	base := &model.Contact{
		Emails: []model.Email{{Address: "Ann@Example.com", Type: "WORK"}, {Address: " "}},
		Addresses: []model.Address{
			{Type: "HOME", Street: "1 Main St", City: "Springfield", PostalCode: "12345"},
			{Type: "OTHER", Country: "US"},
		},
		URLs:  []string{"https://example.com", "HTTPS://EXAMPLE.COM"},
		Notes: []string{"Met at conf", ""},
	}
	other := &model.Contact{
		Emails: []model.Email{{Address: "ann@example.com ", Type: "HOME"}, {Address: "ann@home.org"}},
		Addresses: []model.Address{
			{Type: "WORK", Street: "1 MAIN ST ", City: "springfield", PostalCode: "12345"},
			{Type: "WORK", Street: "2 Elm St", City: "Springfield", PostalCode: "12345"},
		},
		URLs:  []string{"https://ann.dev"},
		Notes: []string{"met at CONF ", "Likes tea"},
	}

	got := m.MergeTwo(base, other)

	assert.Equal(t, []model.Email{
		{Address: "Ann@Example.com", Type: "WORK"},
		{Address: "ann@home.org"},
	}, got.Emails)
	assert.Equal(t, []model.Address{
		{Type: "HOME", Street: "1 Main St", City: "Springfield", PostalCode: "12345"},
		{Type: "WORK", Street: "2 Elm St", City: "Springfield", PostalCode: "12345"},
	}, got.Addresses)
	assert.Equal(t, []string{"https://example.com", "https://ann.dev"}, got.URLs)
	assert.Equal(t, []string{"Met at conf", "Likes tea"}, got.Notes)
}

func TestMergeTwo_CustomFields(t *testing.T) {
	m := NewMerger(nil, nil)
	base := &model.Contact{CustomFields: map[string][]model.CustomValue{
		"X-SOCIAL": {{Value: "@ann", Params: map[string]string{"TYPE": "twitter"}}},
	}}
	other := &model.Contact{CustomFields: map[string][]model.CustomValue{
		"X-SOCIAL": {{Value: "@ANN"}, {Value: "ann.bsky.social"}},
		"X-PET":    {{Value: "Rex"}},
	}}

	got := m.MergeTwo(base, other)

	assert.Equal(t, map[string][]model.CustomValue{
		"X-SOCIAL": {
			{Value: "@ann", Params: map[string]string{"TYPE": "twitter"}},
			{Value: "ann.bsky.social"},
		},
		"X-PET": {{Value: "Rex"}},
	}, got.CustomFields)
	assert.Len(t, base.CustomFields["X-SOCIAL"], 1)

	assert.Nil(t, m.MergeTwo(&model.Contact{}, &model.Contact{}).CustomFields)
}

func TestMergeTwo_PhotoKeepsItsParams(t *testing.T) {
	m := NewMerger(nil, nil)
	jpeg := map[string]string{"ENCODING": "b", "TYPE": "JPEG"}

	got := m.MergeTwo(&model.Contact{Name: "Ann"}, &model.Contact{Photo: "QUJDRA==", PhotoParams: jpeg})
	assert.Equal(t, "QUJDRA==", got.Photo)
	assert.Equal(t, jpeg, got.PhotoParams)

	got = m.MergeTwo(
		&model.Contact{Photo: "http://example.com/a.png"},
		&model.Contact{Photo: "QUJDRA==", PhotoParams: jpeg},
	)
	assert.Equal(t, "http://example.com/a.png", got.Photo)
	assert.Nil(t, got.PhotoParams, "params follow the chosen photo")
}

func TestMergeTwo_RelabelsCollidingGroups(t *testing.T) {
	m := NewMerger(nil, nil)
	base := &model.Contact{
		Emails: []model.Email{{Address: "ann@work.com", Group: "item1"}},
		CustomFields: map[string][]model.CustomValue{
			"X-ABLABEL": {{Value: "_$!<Work>!$_", Group: "item1"}},
		},
	}
	other := &model.Contact{
		Emails: []model.Email{{Address: "ann@home.com", Group: "item1"}},
		URLs:   []string{"https://ann.example.com"},
		CustomFields: map[string][]model.CustomValue{
			"X-ABLABEL": {{Value: "_$!<Home>!$_", Group: "item1"}, {Value: "_$!<Work>!$_", Group: "item2"}},
		},
	}

	got := m.MergeTwo(base, other)

	assert.Equal(t, []model.Email{
		{Address: "ann@work.com", Group: "item1"},
		{Address: "ann@home.com", Group: "item2"},
	}, got.Emails)
	assert.Equal(t, []model.CustomValue{
		{Value: "_$!<Work>!$_", Group: "item1"},
		{Value: "_$!<Home>!$_", Group: "item2"},
		{Value: "_$!<Work>!$_", Group: "item3"},
	}, got.CustomFields["X-ABLABEL"])
	assert.Equal(t, "item1", other.Emails[0].Group, "input untouched")
}

func TestMergeTwo_SingleValueFields(t *testing.T) {
	m := NewMerger(nil, nil)
	base := &model.Contact{CustomFields: map[string][]model.CustomValue{
		"UID": {{Value: "uid-a"}},
	}}
	other := &model.Contact{CustomFields: map[string][]model.CustomValue{
		"UID": {{Value: "uid-b"}},
		"REV": {{Value: "2024-01-01T00:00:00Z"}},
	}}

	got := m.MergeTwo(base, other)
	assert.Equal(t, []model.CustomValue{{Value: "uid-a"}}, got.CustomFields["UID"])
	assert.Equal(t, []model.CustomValue{{Value: "2024-01-01T00:00:00Z"}}, got.CustomFields["REV"])

	three := m.Merge([]*model.Contact{base, other, {CustomFields: map[string][]model.CustomValue{"UID": {{Value: "uid-c"}}}}})
	assert.Len(t, three.CustomFields["UID"], 1)
}

func TestMergeTwo_RawForm(t *testing.T) {
	m := NewMerger(nil, nil)
	assert.Equal(t, "longer raw", m.MergeTwo(&model.Contact{RawForm: "short"}, &model.Contact{RawForm: "longer raw"}).RawForm)
	assert.Equal(t, "same1", m.MergeTwo(&model.Contact{RawForm: "same1"}, &model.Contact{RawForm: "same2"}).RawForm)
	assert.Equal(t, "only", m.MergeTwo(&model.Contact{}, &model.Contact{RawForm: "only"}).RawForm)
	assert.Equal(t, "only", m.MergeTwo(&model.Contact{RawForm: "only"}, &model.Contact{}).RawForm)
}

func TestMerge_DoesNotMutateInputs(t *testing.T) {
	group := sampleGroup()
	before := make([]*model.Contact, len(group))
	for i, c := range group {
		before[i] = c.Clone()
	}

	NewMerger(nil, nil).Merge(group)

	for i := range group {
		assert.Equal(t, before[i], group[i])
	}
}

func TestMerge_IsDeterministic(t *testing.T) {
	m := NewMerger(nil, nil)
	assert.Equal(t, m.Merge(sampleGroup()), m.Merge(sampleGroup()))
}

func TestMerge_IsSuperset(t *testing.T) {
	group := sampleGroup()
	m := NewMerger(nil, nil)
	got := m.Merge(group)

	phoneKeys := keySet(got.Phones, m.phoneKey)
	emails := map[string]bool{}
	for _, e := range got.Emails {
		emails[lower(e.Address)] = true
	}
	notes := map[string]bool{}
	for _, n := range got.Notes {
		notes[lower(n)] = true
	}

	maxPhones, sumPhones := 0, 0
	for _, c := range group {
		own := keySet(c.Phones, m.phoneKey)
		maxPhones = max(maxPhones, len(own))
		sumPhones += len(own)
		for k := range own {
			assert.True(t, phoneKeys[k], "missing phone %s", k)
		}
		for _, e := range c.Emails {
			if lower(e.Address) != "" {
				assert.True(t, emails[lower(e.Address)], "missing email %s", e.Address)
			}
		}
		for _, n := range c.Notes {
			assert.True(t, notes[lower(n)], "missing note %q", n)
		}
	}
	assert.GreaterOrEqual(t, len(got.Phones), maxPhones)
	assert.LessOrEqual(t, len(got.Phones), sumPhones)
}

func TestMerge_NilMembersAreEmpty(t *testing.T) {
	m := NewMerger(nil, nil)
	got := m.Merge([]*model.Contact{nil, {Name: "Ann"}, nil})
	require.NotNil(t, got)
	assert.Equal(t, "Ann", got.Name)
}

func sampleGroup() []*model.Contact {
	return []*model.Contact{
		{
			Name:    "John Smith",
			Phones:  []model.Phone{{Number: "+1 202 555 0123", Type: "CELL"}, {Number: "555-0000", Type: "HOME"}},
			Emails:  []model.Email{{Address: "john@example.com"}},
			Notes:   []string{"Friend from school"},
			RawForm: "BEGIN:VCARD\nFN:John Smith\nEND:VCARD",
		},
		{
			Name:   "John A. Smith",
			Phones: []model.Phone{{Number: "12025550123", Type: "cell"}, {Number: "202.555.9999"}},
			Emails: []model.Email{{Address: "JOHN@example.com"}, {Address: "js@work.com", Type: "WORK"}},
			CustomFields: map[string][]model.CustomValue{
				"X-NICK": {{Value: "Johnny"}},
			},
		},
		{
			Name:   "J Smith",
			Phones: []model.Phone{{Number: "555-0000", Type: "WORK"}},
			Notes:  []string{"friend from school ", "Owes me lunch"},
			CustomFields: map[string][]model.CustomValue{
				"X-NICK": {{Value: "johnny"}, {Value: "JS"}},
			},
		},
	}
}

func keySet[T any](items []T, key func(T) (string, bool)) map[string]bool {
	out := map[string]bool{}
	for _, it := range items {
		if k, ok := key(it); ok {
			out[k] = true
		}
	}
	return out
}

func lower(s string) string {
	return normalize.Name(s)
}
