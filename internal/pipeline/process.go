package pipeline

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"infobox/internal"
	"infobox/internal/storage"
	"infobox/internal/util"
)

type ImportService struct {
	db          *storage.DB
	opts        internal.SourceOptions
	transformer *Transformer
}

func NewImportService(db *storage.DB, opts internal.SourceOptions, transformer *Transformer) *ImportService {
	return &ImportService{db: db, opts: opts, transformer: transformer}
}

type ImportResult struct {
	Dataset   internal.DatasetRow
	Duplicate bool
}

// importKey identifies an import by its content together with the schema and
// source options it is read with, so a settings change yields a new dataset.
func (s *ImportService) importKey(blob []byte) (string, error) {
	settings, err := json.Marshal(struct {
		Schema   any    `json:"schema"`
		SkipRows int    `json:"skipRows"`
		Encoding string `json:"encoding"`
	}{
		Schema:   s.transformer.Schema(),
		SkipRows: s.opts.SkipRows,
		Encoding: normalizeEncoding(s.opts.Encoding),
	})
	if err != nil {
		return "", err
	}
	key := make([]byte, 0, len(blob)+1+len(settings))
	key = append(key, blob...)
	key = append(key, 0)
	key = append(key, settings...)
	return util.HashBytes(key), nil
}

// ImportFile transforms path and stores the records as a dataset. Content that
// was already imported returns the stored dataset untouched.
func (s *ImportService) ImportFile(path string) (ImportResult, error) {
	start := time.Now()
	rows, blob, err := ReadFile(path, s.opts)
	if err != nil {
		return ImportResult{}, err
	}

	hash, err := s.importKey(blob)
	if err != nil {
		return ImportResult{}, err
	}
	existing, err := s.db.GetDatasetByHash(hash)
	if err != nil {
		return ImportResult{}, err
	}
	if existing != nil {
		fmt.Printf("import skipped source=%s dataset=%d reason=duplicate\n", path, existing.ID)
		return ImportResult{Dataset: *existing, Duplicate: true}, nil
	}

	records, err := s.transformer.Transform(rows)
	if err != nil {
		return ImportResult{}, fmt.Errorf("%s: %w", path, err)
	}

	format, _ := DetectFormat(path)
	dataset, err := s.db.InsertDataset(uuid.NewString(), path, hash, format, records)
	if err != nil {
		return ImportResult{}, err
	}

	fmt.Printf("import done source=%s dataset=%d run=%s records=%d totalMs=%d\n", path, dataset.ID, dataset.RunID, dataset.RecordCount, time.Since(start).Milliseconds())
	return ImportResult{Dataset: dataset}, nil
}
