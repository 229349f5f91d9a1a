package export

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/contactmerge/internal/core/model"
)

func TestHeaders(t *testing.T) {
	h := Headers()
	assert.Len(t, h, 6+2*maxPhones+2*maxEmails+2*maxAddresses+6)
	assert.Equal(t, "Phone 1 Type", h[6])
	assert.Equal(t, "Phone 1 Number", h[7])
	assert.Equal(t, "Email 5 Address", h[6+2*maxPhones+2*maxEmails-1])
	assert.Equal(t, "Address 1", h[6+2*maxPhones+2*maxEmails+1])
	assert.Equal(t, "Anniversary", h[len(h)-1])
}

func TestRow(t *testing.T) {
	c := &model.Contact{
		Name:   "John Smith",
		Phones: []model.Phone{{Number: "555-1234", Type: "CELL"}},
		Addresses: []model.Address{
			{Type: "HOME", Street: "1 Main St", City: "Springfield", PostalCode: "62701"},
		},
		Organization: "Acme",
		Notes:        []string{"one", "", "two"},
		Birthday:     "1980-01-02",
	}

	row := Row(c)
	h := Headers()
	require.Len(t, row, len(h))

	get := func(col string) string {
		for i, name := range h {
			if name == col {
				return row[i]
			}
		}
		t.Fatalf("no column %q", col)
		return ""
	}
	assert.Equal(t, "John Smith", get("Name"))
	assert.Equal(t, "CELL", get("Phone 1 Type"))
	assert.Equal(t, "555-1234", get("Phone 1 Number"))
	assert.Equal(t, "", get("Phone 2 Number"))
	assert.Equal(t, "1 Main St, Springfield, 62701", get("Address 1"))
	assert.Equal(t, "Acme", get("Organization"))
	assert.Equal(t, "one; two", get("Notes"))
	assert.Equal(t, "1980-01-02", get("Birthday"))
}

func TestRow_TruncatesLongLists(t *testing.T) {
	c := &model.Contact{}
	for i := 0; i < 8; i++ {
		c.Phones = append(c.Phones, model.Phone{Number: "1"})
	}
	assert.Len(t, Row(c), len(Headers()))
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.csv")
	contacts := []*model.Contact{{Name: "Ann, Jr."}, nil, {Name: "Bob"}}

	require.NoError(t, WriteFile(path, contacts))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)

	require.Len(t, records, 3)
	assert.Equal(t, Headers(), records[0])
	assert.Equal(t, "Ann, Jr.", records[1][0])
	assert.Equal(t, "Bob", records[2][0])
}
