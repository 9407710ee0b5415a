// Copyright (c) 2020 FAIR Data Austria and its Contributors
//
// Permission is hereby granted, free of charge, to any person obtaining a copy of
// this software and associated documentation files (the "Software"), to deal in
// the Software without restriction, including without limitation the rights to
// use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies
// of the Software, and to permit persons to whom the Software is furnished to do
// so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package journal

import (
	"database/sql"
	"encoding/json"
	"path/filepath"
	"time"

	"github.com/frictionlessdata/datapackage-go/datapackage"
	"github.com/frictionlessdata/datapackage-go/validator"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// This is the sync journal, which logs all DMP sync activity. The journal is
// a table of sync records (one per processed DMP document).

// a record storing all information relevant to a sync run
type Record struct {
	// UUID associated with the sync run
	Id uuid.UUID `json:"id"`
	// the identifier of the synced DMP
	DmpId string `json:"dmp_id"`
	// the sync mode ("soft" or "hard")
	Mode string `json:"mode"`
	// times at which the sync was requested and at which it completed
	StartTime time.Time `json:"start_time"`
	StopTime  time.Time `json:"stop_time"`
	// status of the sync ("succeeded" or "failed")
	Status string `json:"status"`
	// number of datasets in the document hosted by this repository
	NumDatasets int `json:"num_datasets"`
	// numbers of records created and updated during the sync
	RecordsCreated int `json:"records_created"`
	RecordsUpdated int `json:"records_updated"`
	// number of stale datasets unlinked during the sync
	DatasetsRemoved int `json:"datasets_removed"`
	// manifest describing the synced datasets (stored separate from record)
	Manifest *datapackage.Package `json:"-"`
}

// A Journal persists sync records in a SQLite database inside the given data
// directory.
type Journal struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS syncs (
	id TEXT PRIMARY KEY,
	dmp_id TEXT NOT NULL,
	start_time TEXT NOT NULL,
	record TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS manifests (
	sync_id TEXT PRIMARY KEY REFERENCES syncs(id),
	descriptor TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS syncs_by_dmp ON syncs(dmp_id);
`

// Open opens (creating it if necessary) the sync journal in the given data
// directory.
func Open(dataDirectory string) (*Journal, error) {
	dbPath := filepath.Join(dataDirectory, "sync_journal.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, &CantOpenError{Message: err.Error()}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, &CantOpenError{Message: err.Error()}
	}
	return &Journal{db: db}, nil
}

func (j *Journal) Close() error {
	return j.db.Close()
}

// RecordSync appends a completed sync run to the journal.
// record: the record containing all sync information
func (j *Journal) RecordSync(record Record) error {
	switch record.Status {
	case "succeeded", "failed":
		// pass-through (see below)
	default:
		return &NewRecordError{
			Id:      record.Id,
			Message: "Invalid status: " + record.Status,
		}
	}

	jsonBytes, err := json.Marshal(&record)
	if err != nil {
		return &NewRecordError{Id: record.Id, Message: err.Error()}
	}

	tx, err := j.db.Begin()
	if err != nil {
		return &NewRecordError{Id: record.Id, Message: err.Error()}
	}
	defer tx.Rollback()

	_, err = tx.Exec(`INSERT INTO syncs (id, dmp_id, start_time, record) VALUES (?, ?, ?, ?)`,
		record.Id.String(), record.DmpId,
		record.StartTime.UTC().Format(time.RFC3339), string(jsonBytes))
	if err != nil {
		return &NewRecordError{Id: record.Id, Message: err.Error()}
	}

	// if the sync succeeded, store its manifest (indexed by sync UUID)
	if record.Manifest != nil {
		jsonManifest, err := json.Marshal(record.Manifest.Descriptor())
		if err != nil {
			return &NewRecordError{Id: record.Id, Message: err.Error()}
		}
		_, err = tx.Exec(`INSERT INTO manifests (sync_id, descriptor) VALUES (?, ?)`,
			record.Id.String(), string(jsonManifest))
		if err != nil {
			return &NewRecordError{Id: record.Id, Message: err.Error()}
		}
	}

	return tx.Commit()
}

// Records retrieves the records for sync runs that started within the time
// range with the given (inclusive) bounds.
func (j *Journal) Records(start, stop time.Time) ([]Record, error) {
	rows, err := j.db.Query(
		`SELECT record FROM syncs WHERE start_time >= ? AND start_time <= ? ORDER BY start_time`,
		start.UTC().Format(time.RFC3339), stop.UTC().Format(time.RFC3339))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return j.scanRecords(rows)
}

// RecordsForDmp retrieves all journal records for the given DMP, oldest
// first.
func (j *Journal) RecordsForDmp(dmpId string) ([]Record, error) {
	rows, err := j.db.Query(
		`SELECT record FROM syncs WHERE dmp_id = ? ORDER BY start_time`, dmpId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return j.scanRecords(rows)
}

func (j *Journal) scanRecords(rows *sql.Rows) ([]Record, error) {
	records := make([]Record, 0)
	for rows.Next() {
		var jsonBytes string
		if err := rows.Scan(&jsonBytes); err != nil {
			return nil, err
		}
		var record Record
		if err := json.Unmarshal([]byte(jsonBytes), &record); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// attach manifests for each successfully completed sync
	for i := range records {
		if records[i].Status != "succeeded" {
			continue
		}
		var descriptor string
		err := j.db.QueryRow(`SELECT descriptor FROM manifests WHERE sync_id = ?`,
			records[i].Id.String()).Scan(&descriptor)
		if err == sql.ErrNoRows {
			continue
		} else if err != nil {
			return nil, err
		}
		records[i].Manifest, err = datapackage.FromString(descriptor, "manifest.json",
			validator.InMemoryLoader())
		if err != nil {
			return nil, &InvalidRecordError{
				Id:      records[i].Id,
				Message: "unable to retrieve manifest for successful sync",
			}
		}
	}
	return records, nil
}
