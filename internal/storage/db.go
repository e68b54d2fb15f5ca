package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"infobox/internal"
)

type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS datasets (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  runId TEXT NOT NULL,
  source TEXT NOT NULL,
  hash TEXT NOT NULL UNIQUE,
  format TEXT NOT NULL,
  recordCount INTEGER NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS records (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  datasetId INTEGER NOT NULL,
  position INTEGER NOT NULL,
  label TEXT,
  uri TEXT,
  docJson TEXT NOT NULL,
  UNIQUE(datasetId, position),
  FOREIGN KEY(datasetId) REFERENCES datasets(id)
);
CREATE INDEX IF NOT EXISTS idx_records_label ON records(label);

CREATE TABLE IF NOT EXISTS metadata (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

	_, err := d.conn.Exec(schema)
	return err
}

// InsertDataset stores the dataset and all of its records in one transaction.
func (d *DB) InsertDataset(runID, source, hash, format string, records []internal.Record) (internal.DatasetRow, error) {
	tx, err := d.conn.Begin()
	if err != nil {
		return internal.DatasetRow{}, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.Exec(`
INSERT INTO datasets (runId, source, hash, format, recordCount)
VALUES (?, ?, ?, ?, ?)
`, runID, source, hash, format, len(records))
	if err != nil {
		return internal.DatasetRow{}, err
	}
	datasetID, err := res.LastInsertId()
	if err != nil {
		return internal.DatasetRow{}, err
	}

	stmt, err := tx.Prepare(`INSERT INTO records (datasetId, position, label, uri, docJson) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return internal.DatasetRow{}, err
	}
	defer stmt.Close()

	for i, rec := range records {
		doc, err := json.Marshal(rec)
		if err != nil {
			return internal.DatasetRow{}, fmt.Errorf("record %d: %w", i, err)
		}
		label, _ := rec.String("label")
		uri, _ := rec.String("uri")
		if _, err := stmt.Exec(datasetID, i, label, uri, string(doc)); err != nil {
			return internal.DatasetRow{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return internal.DatasetRow{}, err
	}

	row, err := d.GetDatasetByID(int(datasetID))
	if err != nil {
		return internal.DatasetRow{}, err
	}
	if row == nil {
		return internal.DatasetRow{}, errors.New("failed to insert dataset")
	}
	return *row, nil
}

const datasetColumns = `id, runId, source, hash, format, recordCount, createdAt`

func scanDataset(scanner interface{ Scan(...any) error }) (internal.DatasetRow, error) {
	var row internal.DatasetRow
	err := scanner.Scan(&row.ID, &row.RunID, &row.Source, &row.Hash, &row.Format, &row.RecordCount, &row.CreatedAt)
	return row, err
}

func (d *DB) GetDatasetByID(id int) (*internal.DatasetRow, error) {
	row, err := scanDataset(d.conn.QueryRow(`SELECT `+datasetColumns+` FROM datasets WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (d *DB) GetDatasetByHash(hash string) (*internal.DatasetRow, error) {
	row, err := scanDataset(d.conn.QueryRow(`SELECT `+datasetColumns+` FROM datasets WHERE hash = ?`, hash))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (d *DB) ListDatasets(limit int) ([]internal.DatasetRow, error) {
	rows, err := d.conn.Query(`SELECT `+datasetColumns+` FROM datasets ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.DatasetRow
	for rows.Next() {
		row, err := scanDataset(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// GetRecords returns the dataset documents in their original input order.
func (d *DB) GetRecords(datasetID int) ([]internal.Record, error) {
	return d.queryRecords(`SELECT docJson FROM records WHERE datasetId = ? ORDER BY position ASC`, datasetID)
}

func (d *DB) FindByLabel(label string) ([]internal.Record, error) {
	return d.queryRecords(`SELECT docJson FROM records WHERE label = ? ORDER BY datasetId ASC, position ASC`, label)
}

func (d *DB) queryRecords(query string, args ...any) ([]internal.Record, error) {
	rows, err := d.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []internal.Record{}
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		var rec internal.Record
		if err := json.Unmarshal([]byte(doc), &rec); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (d *DB) SetMetadata(key, value string) error {
	_, err := d.conn.Exec(`
INSERT INTO metadata (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updatedAt = CURRENT_TIMESTAMP
`, key, value)
	return err
}

func (d *DB) GetMetadata(key string) (*string, error) {
	var value string
	err := d.conn.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &value, nil
}

func (d *DB) MustDatasetByID(id int) (internal.DatasetRow, error) {
	row, err := d.GetDatasetByID(id)
	if err != nil {
		return internal.DatasetRow{}, err
	}
	if row == nil {
		return internal.DatasetRow{}, fmt.Errorf("dataset not found: id=%d", id)
	}
	return *row, nil
}
