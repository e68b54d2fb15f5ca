package internal

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sp(v string) *string { return &v }

func TestRecordJSON(t *testing.T) {
	rec := NewRecord()
	rec.Fields["label"] = sp("Argiope")
	rec.Fields["description"] = (*string)(nil)
	rec.Fields["synonym"] = []string{"One", "Two"}
	rec.Classification["genus"] = (*string)(nil)
	rec.Classification["kingdom"] = sp("Animal")

	blob, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.JSONEq(t, `{"label":"Argiope","description":null,"synonym":["One","Two"],"classification":{"genus":null,"kingdom":"Animal"}}`, string(blob))

	var back Record
	require.NoError(t, json.Unmarshal(blob, &back))
	label, ok := back.String("label")
	require.True(t, ok)
	assert.Equal(t, "Argiope", *label)
	desc, ok := back.String("description")
	require.True(t, ok)
	assert.Nil(t, desc)
	synonym, ok := back.List("synonym")
	require.True(t, ok)
	assert.Equal(t, []string{"One", "Two"}, synonym)
	genus, ok := back.ClassificationString("genus")
	require.True(t, ok)
	assert.Nil(t, genus)
	_, ok = back.String("uri")
	assert.False(t, ok)
}

func TestRecordJSONNilClassification(t *testing.T) {
	blob, err := json.Marshal(Record{Fields: map[string]any{}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"classification":{}}`, string(blob))
}

func TestRecordUnmarshalRejectsNonString(t *testing.T) {
	var rec Record
	assert.Error(t, json.Unmarshal([]byte(`{"label": 12}`), &rec))
	assert.Error(t, json.Unmarshal([]byte(`{"classification": {"genus": [1]}}`), &rec))
}

func TestRawRowLookupLastWins(t *testing.T) {
	row := RawRow{Cells: []Cell{{Column: "name", Value: "a"}, {Column: "URI", Value: "u"}, {Column: "name", Value: "b"}}}
	v, ok := row.Lookup("name")
	require.True(t, ok)
	assert.Equal(t, "b", v)
	_, ok = row.Lookup("synonym")
	assert.False(t, ok)
}
