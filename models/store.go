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

package models

import (
	"database/sql"
	_ "embed"
	"fmt"
	"strings"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// queries are issued against this subset of database/sql, so that the same
// store methods work inside and outside of transactions
type querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// A Store provides access to the DMP/dataset entity graph. Duplicate external
// identifiers are rejected with a ConflictError, and association mutations
// are idempotent by dataset_id value.
type Store struct {
	db *sql.DB // nil inside a transaction
	q  querier
}

// Opens (creating if necessary) the store backed by the SQLite database file
// at the given path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing store schema: %s", err)
	}
	return &Store{db: db, q: db}, nil
}

// Closes the store and its underlying database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Runs the given function within a single database transaction. If the
// function returns an error, all of its mutations are rolled back and the
// error is returned; otherwise the transaction commits. The store handed to
// the function must not be retained beyond its scope.
func (s *Store) Transaction(fn func(tx *Store) error) error {
	if s.db == nil {
		return &NestedTransactionError{}
	}
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	if err := fn(&Store{q: tx}); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

// translates SQLite unique-constraint violations into ConflictErrors
func conflictOr(err error, entity, value string) error {
	if err == nil {
		return nil
	}
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return &ConflictError{Entity: entity, Value: value}
	}
	return err
}

//---------------------------
// Data Management Plans
//---------------------------

// Creates and stores a DMP with the given external dmp_id. Returns a
// ConflictError if a DMP with that dmp_id already exists.
func (s *Store) CreateDMP(dmpId string) (*DataManagementPlan, error) {
	dmp := &DataManagementPlan{
		Id:    uuid.New(),
		DmpId: dmpId,
	}
	_, err := s.q.Exec("INSERT INTO dmps (id, dmp_id) VALUES (?, ?)",
		dmp.Id.String(), dmp.DmpId)
	if err != nil {
		return nil, conflictOr(err, "DMP", dmpId)
	}
	return dmp, nil
}

// Returns the DMP with the given external dmp_id and its associated
// datasets, or nil if no such DMP exists.
func (s *Store) GetDMP(dmpId string) (*DataManagementPlan, error) {
	var dmp DataManagementPlan
	var id string
	row := s.q.QueryRow("SELECT id, dmp_id FROM dmps WHERE dmp_id = ?", dmpId)
	err := row.Scan(&id, &dmp.DmpId)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	dmp.Id, err = uuid.Parse(id)
	if err != nil {
		return nil, err
	}
	dmp.Datasets, err = s.datasetsFor(dmp.Id)
	if err != nil {
		return nil, err
	}
	return &dmp, nil
}

// Returns all stored DMPs with their associated datasets.
func (s *Store) AllDMPs() ([]*DataManagementPlan, error) {
	rows, err := s.q.Query("SELECT dmp_id FROM dmps ORDER BY dmp_id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dmpIds []string
	for rows.Next() {
		var dmpId string
		if err := rows.Scan(&dmpId); err != nil {
			return nil, err
		}
		dmpIds = append(dmpIds, dmpId)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	dmps := make([]*DataManagementPlan, 0, len(dmpIds))
	for _, dmpId := range dmpIds {
		dmp, err := s.GetDMP(dmpId)
		if err != nil {
			return nil, err
		}
		dmps = append(dmps, dmp)
	}
	return dmps, nil
}

// Returns all DMPs that use the dataset referencing the record with the
// given persistent identifier.
func (s *Store) DMPsForRecordPid(recordPid string) ([]*DataManagementPlan, error) {
	dataset, err := s.GetDatasetByRecordPid(recordPid)
	if err != nil || dataset == nil {
		return nil, err
	}
	return s.DMPsForDataset(dataset)
}

//-----------
// Datasets
//-----------

// Creates and stores a dataset with the given external dataset_id and
// (possibly empty) record reference. Returns a ConflictError if the
// dataset_id or the record reference is already in use.
func (s *Store) CreateDataset(datasetId, recordPid string) (*Dataset, error) {
	dataset := &Dataset{
		Id:        uuid.New(),
		DatasetId: datasetId,
		RecordPid: recordPid,
	}
	var pid any
	if recordPid != "" {
		pid = recordPid
	}
	_, err := s.q.Exec("INSERT INTO datasets (id, dataset_id, record_pid) VALUES (?, ?, ?)",
		dataset.Id.String(), dataset.DatasetId, pid)
	if err != nil {
		return nil, conflictOr(err, "dataset", datasetId)
	}
	return dataset, nil
}

// Returns the dataset with the given external dataset_id, or nil if no such
// dataset exists.
func (s *Store) GetDataset(datasetId string) (*Dataset, error) {
	return s.datasetWhere("dataset_id = ?", datasetId)
}

// Returns the dataset referencing the record with the given persistent
// identifier, or nil if no dataset references it.
func (s *Store) GetDatasetByRecordPid(recordPid string) (*Dataset, error) {
	return s.datasetWhere("record_pid = ?", recordPid)
}

func (s *Store) datasetWhere(condition string, arg any) (*Dataset, error) {
	var dataset Dataset
	var id string
	var pid sql.NullString
	row := s.q.QueryRow(
		"SELECT id, dataset_id, record_pid FROM datasets WHERE "+condition, arg)
	err := row.Scan(&id, &dataset.DatasetId, &pid)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	dataset.Id, err = uuid.Parse(id)
	if err != nil {
		return nil, err
	}
	dataset.RecordPid = pid.String
	return &dataset, nil
}

// Sets the record reference of the given dataset. Returns a ConflictError if
// another dataset already references that record.
func (s *Store) SetRecordPid(dataset *Dataset, recordPid string) error {
	var pid any
	if recordPid != "" {
		pid = recordPid
	}
	_, err := s.q.Exec("UPDATE datasets SET record_pid = ? WHERE id = ?",
		pid, dataset.Id.String())
	if err != nil {
		return conflictOr(err, "record reference", recordPid)
	}
	dataset.RecordPid = recordPid
	return nil
}

// Returns all DMPs the given dataset is associated with (shallow: their
// dataset sets are not loaded).
func (s *Store) DMPsForDataset(dataset *Dataset) ([]*DataManagementPlan, error) {
	rows, err := s.q.Query(
		`SELECT d.id, d.dmp_id FROM dmps d
		 JOIN dmp_datasets dd ON dd.dmp_id = d.id
		 WHERE dd.dataset_id = ? ORDER BY d.dmp_id`, dataset.Id.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dmps []*DataManagementPlan
	for rows.Next() {
		var dmp DataManagementPlan
		var id string
		if err := rows.Scan(&id, &dmp.DmpId); err != nil {
			return nil, err
		}
		dmp.Id, err = uuid.Parse(id)
		if err != nil {
			return nil, err
		}
		dmps = append(dmps, &dmp)
	}
	return dmps, rows.Err()
}

//---------------
// Associations
//---------------

// Associates the dataset with the DMP. Adding an already-associated dataset
// is a no-op; the returned flag indicates whether a new association was
// created.
func (s *Store) AddDatasetToDMP(dmp *DataManagementPlan, dataset *Dataset) (bool, error) {
	result, err := s.q.Exec(
		"INSERT OR IGNORE INTO dmp_datasets (dmp_id, dataset_id) VALUES (?, ?)",
		dmp.Id.String(), dataset.Id.String())
	if err != nil {
		return false, err
	}
	count, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	added := count > 0
	if added && !dmp.HasDataset(dataset) {
		dmp.Datasets = append(dmp.Datasets, dataset)
	}
	return added, nil
}

// Removes the association between the dataset and the DMP. The dataset
// itself is kept: it may still be referenced by other DMPs.
func (s *Store) RemoveDatasetFromDMP(dmp *DataManagementPlan, dataset *Dataset) error {
	_, err := s.q.Exec(
		"DELETE FROM dmp_datasets WHERE dmp_id = ? AND dataset_id = ?",
		dmp.Id.String(), dataset.Id.String())
	if err != nil {
		return err
	}
	for i, ds := range dmp.Datasets {
		if ds.DatasetId == dataset.DatasetId {
			dmp.Datasets = append(dmp.Datasets[:i], dmp.Datasets[i+1:]...)
			break
		}
	}
	return nil
}

// loads the datasets associated with the DMP with the given internal id
func (s *Store) datasetsFor(dmpId uuid.UUID) ([]*Dataset, error) {
	rows, err := s.q.Query(
		`SELECT ds.id, ds.dataset_id, ds.record_pid FROM datasets ds
		 JOIN dmp_datasets dd ON dd.dataset_id = ds.id
		 WHERE dd.dmp_id = ? ORDER BY ds.dataset_id`, dmpId.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	datasets := make([]*Dataset, 0)
	for rows.Next() {
		var dataset Dataset
		var id string
		var pid sql.NullString
		if err := rows.Scan(&id, &dataset.DatasetId, &pid); err != nil {
			return nil, err
		}
		dataset.Id, err = uuid.Parse(id)
		if err != nil {
			return nil, err
		}
		dataset.RecordPid = pid.String
		datasets = append(datasets, &dataset)
	}
	return datasets, rows.Err()
}
