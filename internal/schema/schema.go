package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

var ErrInvalidSchema = errors.New("invalid schema")

const ClassificationKey = "classification"

// Field maps a source column to its canonical output name.
type Field struct {
	Column string `json:"column"`
	Name   string `json:"name"`
}

// Schema is the static configuration of a transform. Fields keeps declaration
// order so exports have stable columns.
type Schema struct {
	Fields         []Field  `json:"fields"`
	Classification []string `json:"classification"`
	LabelColumn    string   `json:"labelColumn"`
	NameColumn     string   `json:"nameColumn"`
	SynonymColumn  string   `json:"synonymColumn"`
}

func Default() Schema {
	return Schema{
		Fields: []Field{
			{Column: "rdf-schema#label", Name: "label"},
			{Column: "URI", Name: "uri"},
			{Column: "rdf-schema#comment", Name: "description"},
			{Column: "name", Name: "name"},
			{Column: "synonym", Name: "synonym"},
			{Column: "family_label", Name: "family"},
			{Column: "class_label", Name: "class"},
			{Column: "phylum_label", Name: "phylum"},
			{Column: "order_label", Name: "order"},
			{Column: "kingdom_label", Name: "kingdom"},
			{Column: "genus_label", Name: "genus"},
		},
		Classification: []string{"family", "class", "phylum", "order", "kingdom", "genus"},
		LabelColumn:    "rdf-schema#label",
		NameColumn:     "name",
		SynonymColumn:  "synonym",
	}
}

func Load(path string) (Schema, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return Schema{}, err
	}
	var s Schema
	if err := json.Unmarshal(blob, &s); err != nil {
		return Schema{}, fmt.Errorf("%w: %s: %v", ErrInvalidSchema, path, err)
	}
	if err := s.Validate(); err != nil {
		return Schema{}, err
	}
	return s, nil
}

func (s Schema) FieldMap() map[string]string {
	out := make(map[string]string, len(s.Fields))
	for _, f := range s.Fields {
		out[f.Column] = f.Name
	}
	return out
}

func (s Schema) IsClassification(name string) bool {
	for _, c := range s.Classification {
		if c == name {
			return true
		}
	}
	return false
}

// TopLevel returns the canonical names stored outside classification, in declaration order.
func (s Schema) TopLevel() []string {
	out := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		if !s.IsClassification(f.Name) {
			out = append(out, f.Name)
		}
	}
	return out
}

func (s Schema) Validate() error {
	if len(s.Fields) == 0 {
		return invalid("field map is empty")
	}

	columns := map[string]struct{}{}
	names := map[string]string{}
	for _, f := range s.Fields {
		if strings.TrimSpace(f.Column) == "" {
			return invalid("empty source column for field %q", f.Name)
		}
		if strings.TrimSpace(f.Name) == "" {
			return invalid("empty canonical name for column %q", f.Column)
		}
		if f.Name == ClassificationKey {
			return invalid("column %q maps to reserved name %q", f.Column, ClassificationKey)
		}
		if _, dup := columns[f.Column]; dup {
			return invalid("column %q mapped twice", f.Column)
		}
		if prev, dup := names[f.Name]; dup {
			return invalid("columns %q and %q both map to %q", prev, f.Column, f.Name)
		}
		columns[f.Column] = struct{}{}
		names[f.Name] = f.Column
	}

	seen := map[string]struct{}{}
	for _, c := range s.Classification {
		if _, ok := names[c]; !ok {
			return invalid("classification field %q is not produced by any column", c)
		}
		if _, dup := seen[c]; dup {
			return invalid("classification field %q listed twice", c)
		}
		seen[c] = struct{}{}
	}

	special := []struct{ role, column string }{
		{"label", s.LabelColumn},
		{"name", s.NameColumn},
		{"synonym", s.SynonymColumn},
	}
	used := map[string]string{}
	for _, sp := range special {
		if sp.column == "" {
			continue
		}
		if _, ok := columns[sp.column]; !ok {
			return invalid("%s column %q is not in the field map", sp.role, sp.column)
		}
		if other, dup := used[sp.column]; dup {
			return invalid("column %q is both the %s and %s column", sp.column, other, sp.role)
		}
		used[sp.column] = sp.role
	}
	if s.NameColumn != "" && s.LabelColumn == "" {
		return invalid("name column %q needs a label column", s.NameColumn)
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidSchema, fmt.Sprintf(format, args...))
}
