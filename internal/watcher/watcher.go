package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"infobox/internal/config"
	"infobox/internal/pipeline"
	"infobox/internal/storage"
	"infobox/internal/util"
)

const (
	lastCycleKey    = "watch.last_cycle"
	exportedKeyBase = "watch.exported."
)

func exportedKey(datasetID int) string {
	return fmt.Sprintf("%s%d", exportedKeyBase, datasetID)
}

type Service struct {
	db       *storage.DB
	cfg      config.Config
	importer *pipeline.ImportService
}

func NewService(db *storage.DB, cfg config.Config, transformer *pipeline.Transformer) *Service {
	return &Service{
		db:       db,
		cfg:      cfg,
		importer: pipeline.NewImportService(db, cfg.SourceOptions(), transformer),
	}
}

func (s *Service) Run(ctx context.Context) error {
	interval := time.Duration(s.cfg.WatchIntervalSec) * time.Second
	if interval <= 0 {
		interval = time.Second
	}
	for {
		if err := s.runCycle(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "watch cycle error: %v\n", err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(interval):
		}
	}
}

type cycleResult struct {
	Seen     int
	Imported int
	Exported int
	Failed   int
}

// runCycle imports every supported file in the watch directory. A file that
// fails is reported and the cycle moves on.
func (s *Service) runCycle(ctx context.Context) error {
	res, err := s.scan(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("watch cycle done dir=%s seen=%d imported=%d exported=%d failed=%d\n", s.cfg.WatchDir, res.Seen, res.Imported, res.Exported, res.Failed)
	if err := s.db.SetMetadata(lastCycleKey, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("record last cycle: %w", err)
	}
	return nil
}

func (s *Service) scan(ctx context.Context) (cycleResult, error) {
	var res cycleResult
	if err := os.MkdirAll(s.cfg.WatchDir, 0o755); err != nil {
		return res, err
	}
	entries, err := os.ReadDir(s.cfg.WatchDir)
	if err != nil {
		return res, err
	}

	for _, entry := range entries {
		if ctx.Err() != nil {
			return res, nil
		}
		if entry.IsDir() {
			continue
		}
		if _, err := pipeline.DetectFormat(entry.Name()); err != nil {
			continue
		}
		res.Seen++

		path := filepath.Join(s.cfg.WatchDir, entry.Name())
		imported, err := s.importer.ImportFile(path)
		if err != nil {
			res.Failed++
			fmt.Fprintf(os.Stderr, "watch import failed source=%s: %v\n", path, err)
			continue
		}
		if !imported.Duplicate {
			res.Imported++
		}

		if !s.cfg.WatchAutoExport {
			continue
		}
		// Duplicates are exported too when an earlier export never completed.
		done, err := s.db.GetMetadata(exportedKey(imported.Dataset.ID))
		if err != nil {
			res.Failed++
			fmt.Fprintf(os.Stderr, "watch export check failed source=%s dataset=%d: %v\n", path, imported.Dataset.ID, err)
			continue
		}
		if done != nil {
			continue
		}
		if err := s.export(imported.Dataset.ID, path); err != nil {
			res.Failed++
			fmt.Fprintf(os.Stderr, "watch export failed source=%s dataset=%d: %v\n", path, imported.Dataset.ID, err)
			continue
		}
		if err := s.db.SetMetadata(exportedKey(imported.Dataset.ID), time.Now().UTC().Format(time.RFC3339)); err != nil {
			fmt.Fprintf(os.Stderr, "watch export mark failed dataset=%d: %v\n", imported.Dataset.ID, err)
		}
		res.Exported++
	}
	return res, nil
}

func (s *Service) export(datasetID int, source string) error {
	records, err := s.db.GetRecords(datasetID)
	if err != nil {
		return err
	}
	filename := fmt.Sprintf("%d_%s.json", datasetID, util.SanitizeFileName(source))
	return pipeline.ExportJSON(records, filepath.Join(s.cfg.OutputDir, "watch", filename), s.cfg.OutputPretty)
}
