package schema

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	s := Default()
	require.NoError(t, s.Validate())
	assert.Equal(t, []string{"label", "uri", "description", "name", "synonym"}, s.TopLevel())
	assert.Equal(t, "genus", s.FieldMap()["genus_label"])
	assert.True(t, s.IsClassification("kingdom"))
	assert.False(t, s.IsClassification("label"))
}

func TestValidateRejects(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(s *Schema)
	}{
		{name: "empty field map", mutate: func(s *Schema) { s.Fields = nil }},
		{name: "empty column", mutate: func(s *Schema) { s.Fields[1].Column = " " }},
		{name: "empty canonical name", mutate: func(s *Schema) { s.Fields[1].Name = "" }},
		{name: "reserved name", mutate: func(s *Schema) { s.Fields[1].Name = ClassificationKey }},
		{name: "duplicate column", mutate: func(s *Schema) { s.Fields = append(s.Fields, Field{Column: "URI", Name: "uri2"}) }},
		{name: "duplicate canonical name", mutate: func(s *Schema) { s.Fields = append(s.Fields, Field{Column: "URI2", Name: "uri"}) }},
		{name: "unknown classification field", mutate: func(s *Schema) { s.Classification = append(s.Classification, "species") }},
		{name: "repeated classification field", mutate: func(s *Schema) { s.Classification = append(s.Classification, "genus") }},
		{name: "label column not mapped", mutate: func(s *Schema) { s.LabelColumn = "title" }},
		{name: "synonym column not mapped", mutate: func(s *Schema) { s.SynonymColumn = "aliases" }},
		{name: "column with two roles", mutate: func(s *Schema) { s.SynonymColumn = s.NameColumn }},
		{name: "name without label", mutate: func(s *Schema) { s.LabelColumn = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := Default()
			tc.mutate(&s)
			err := s.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidSchema))
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "schema.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
  "fields": [
    {"column": "Title", "name": "label"},
    {"column": "Kingdom", "name": "kingdom"}
  ],
  "classification": ["kingdom"],
  "labelColumn": "Title"
}`), 0o644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Title", s.LabelColumn)
	assert.Equal(t, []string{"label"}, s.TopLevel())

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"fields": [], "classification": []}`), 0o644))
	_, err = Load(bad)
	assert.True(t, errors.Is(err, ErrInvalidSchema))

	broken := filepath.Join(dir, "broken.json")
	require.NoError(t, os.WriteFile(broken, []byte(`{`), 0o644))
	_, err = Load(broken)
	assert.True(t, errors.Is(err, ErrInvalidSchema))
}
