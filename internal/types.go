package internal

import (
	"encoding/json"
	"fmt"
)

// Cell is one header/value pair of an input row.
type Cell struct {
	Column string
	Value  string
}

// RawRow keeps the cells in the order the source produced them.
type RawRow struct {
	LineNo int
	Cells  []Cell
}

// Lookup returns the value of column. A repeated header resolves to its last cell.
func (r RawRow) Lookup(column string) (string, bool) {
	value, found := "", false
	for _, c := range r.Cells {
		if c.Column == column {
			value, found = c.Value, true
		}
	}
	return value, found
}

// Record is a cleaned output document. Scalar values are *string and list
// values are []string; a nil value of either kind is the absent-value marker.
type Record struct {
	Fields         map[string]any
	Classification map[string]any
}

func NewRecord() Record {
	return Record{Fields: map[string]any{}, Classification: map[string]any{}}
}

func (r Record) String(key string) (*string, bool) {
	return scalar(r.Fields, key)
}

func (r Record) List(key string) ([]string, bool) {
	v, ok := r.Fields[key]
	if !ok {
		return nil, false
	}
	list, _ := v.([]string)
	return list, true
}

func (r Record) ClassificationString(key string) (*string, bool) {
	return scalar(r.Classification, key)
}

func scalar(m map[string]any, key string) (*string, bool) {
	v, ok := m[key]
	if !ok {
		return nil, false
	}
	s, _ := v.(*string)
	return s, true
}

func (r Record) MarshalJSON() ([]byte, error) {
	doc := make(map[string]any, len(r.Fields)+1)
	for k, v := range r.Fields {
		doc[k] = v
	}
	classification := r.Classification
	if classification == nil {
		classification = map[string]any{}
	}
	doc["classification"] = classification
	return json.Marshal(doc)
}

func (r *Record) UnmarshalJSON(data []byte) error {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	out := NewRecord()
	for k, raw := range doc {
		if k == "classification" {
			var nested map[string]json.RawMessage
			if err := json.Unmarshal(raw, &nested); err != nil {
				return fmt.Errorf("classification: %w", err)
			}
			for ck, craw := range nested {
				v, err := decodeValue(craw)
				if err != nil {
					return fmt.Errorf("classification.%s: %w", ck, err)
				}
				out.Classification[ck] = v
			}
			continue
		}
		v, err := decodeValue(raw)
		if err != nil {
			return fmt.Errorf("%s: %w", k, err)
		}
		out.Fields[k] = v
	}
	*r = out
	return nil
}

func decodeValue(raw json.RawMessage) (any, error) {
	if len(raw) > 0 && raw[0] == '[' {
		var list []string
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, err
		}
		return list, nil
	}
	var s *string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	return s, nil
}

type DatasetRow struct {
	ID          int
	RunID       string
	Source      string
	Hash        string
	Format      string
	RecordCount int
	CreatedAt   string
}

// SourceOptions parameterise a row source. SkipRows counts records discarded
// after the header row.
type SourceOptions struct {
	SkipRows int
	Encoding string
}
