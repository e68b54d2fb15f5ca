package pipeline

import (
	"errors"
	"fmt"

	"infobox/internal"
	"infobox/internal/schema"
)

var ErrMissingLabel = errors.New("row has a name column but no label column")

type Transformer struct {
	schema   schema.Schema
	fieldMap map[string]string
	cleaners map[string]cleanFunc
}

func NewTransformer(s schema.Schema) (*Transformer, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	t := &Transformer{
		schema:   s,
		fieldMap: s.FieldMap(),
		cleaners: map[string]cleanFunc{},
	}
	if s.NameColumn != "" {
		t.cleaners[s.NameColumn] = cleanName
	}
	if s.SynonymColumn != "" {
		t.cleaners[s.SynonymColumn] = cleanSynonym
	}
	return t, nil
}

func (t *Transformer) Schema() schema.Schema {
	return t.schema
}

// TransformRow builds one record. The label is cleaned before any other column
// so the name rule can fall back to it whatever the column order.
func (t *Transformer) TransformRow(row internal.RawRow) (internal.Record, error) {
	rec := internal.NewRecord()

	var label *string
	hasLabel := false
	if t.schema.LabelColumn != "" {
		if raw, ok := row.Lookup(t.schema.LabelColumn); ok {
			label, hasLabel = cleanLabel(raw), true
		}
	}

	for _, cell := range row.Cells {
		name, ok := t.fieldMap[cell.Column]
		if !ok {
			continue
		}

		var value any
		switch {
		case cell.Column == t.schema.LabelColumn:
			value = label
		case cell.Column == t.schema.NameColumn && !hasLabel:
			return internal.Record{}, fmt.Errorf("line %d: %w", row.LineNo, ErrMissingLabel)
		default:
			clean, ok := t.cleaners[cell.Column]
			if !ok {
				clean = cleanValue
			}
			value = clean(cell.Value, label)
		}

		if t.schema.IsClassification(name) {
			rec.Classification[name] = value
		} else {
			rec.Fields[name] = value
		}
	}

	return rec, nil
}

// Transform processes rows in order and aborts on the first failing row.
func (t *Transformer) Transform(rows []internal.RawRow) ([]internal.Record, error) {
	out := make([]internal.Record, 0, len(rows))
	for _, row := range rows {
		rec, err := t.TransformRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func Transform(rows []internal.RawRow, s schema.Schema) ([]internal.Record, error) {
	t, err := NewTransformer(s)
	if err != nil {
		return nil, err
	}
	return t.Transform(rows)
}
