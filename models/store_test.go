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
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func openTestStore(t *testing.T) *Store {
	store, err := Open(filepath.Join(t.TempDir(), "madmp.db"))
	if err != nil {
		t.Fatalf("Couldn't open test store: %s", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestCreateAndGetDMP(t *testing.T) {
	assert := assert.New(t)
	store := openTestStore(t)

	dmp, err := store.CreateDMP("dmp-1")
	assert.Nil(err)
	assert.Equal("dmp-1", dmp.DmpId)

	found, err := store.GetDMP("dmp-1")
	assert.Nil(err)
	assert.NotNil(found)
	assert.Equal(dmp.Id, found.Id)
	assert.Empty(found.Datasets)

	missing, err := store.GetDMP("nope")
	assert.Nil(err)
	assert.Nil(missing)
}

func TestDuplicateDmpIdConflicts(t *testing.T) {
	assert := assert.New(t)
	store := openTestStore(t)

	_, err := store.CreateDMP("dmp-1")
	assert.Nil(err)
	_, err = store.CreateDMP("dmp-1")
	var conflict *ConflictError
	assert.True(errors.As(err, &conflict), "Duplicate dmp_id didn't produce a ConflictError")
}

func TestDuplicateDatasetIdConflicts(t *testing.T) {
	assert := assert.New(t)
	store := openTestStore(t)

	_, err := store.CreateDataset("ds-1", "")
	assert.Nil(err)
	_, err = store.CreateDataset("ds-1", "")
	var conflict *ConflictError
	assert.True(errors.As(err, &conflict), "Duplicate dataset_id didn't produce a ConflictError")
}

func TestRecordPidIsUniqueAcrossDatasets(t *testing.T) {
	assert := assert.New(t)
	store := openTestStore(t)

	_, err := store.CreateDataset("ds-1", "recid-1")
	assert.Nil(err)
	_, err = store.CreateDataset("ds-2", "recid-1")
	var conflict *ConflictError
	assert.True(errors.As(err, &conflict), "Shared record_pid didn't produce a ConflictError")

	// several datasets without a record reference may coexist
	_, err = store.CreateDataset("ds-3", "")
	assert.Nil(err)
	_, err = store.CreateDataset("ds-4", "")
	assert.Nil(err)
}

func TestSetRecordPid(t *testing.T) {
	assert := assert.New(t)
	store := openTestStore(t)

	dataset, err := store.CreateDataset("ds-1", "")
	assert.Nil(err)
	assert.Nil(store.SetRecordPid(dataset, "recid-1"))
	assert.Equal("recid-1", dataset.RecordPid)

	found, err := store.GetDatasetByRecordPid("recid-1")
	assert.Nil(err)
	assert.NotNil(found)
	assert.Equal("ds-1", found.DatasetId)
}

func TestAssociationIsIdempotent(t *testing.T) {
	assert := assert.New(t)
	store := openTestStore(t)

	dmp, _ := store.CreateDMP("dmp-1")
	dataset, _ := store.CreateDataset("ds-1", "")

	added, err := store.AddDatasetToDMP(dmp, dataset)
	assert.Nil(err)
	assert.True(added)
	added, err = store.AddDatasetToDMP(dmp, dataset)
	assert.Nil(err)
	assert.False(added, "Re-adding an associated dataset created a new association")

	found, err := store.GetDMP("dmp-1")
	assert.Nil(err)
	assert.Len(found.Datasets, 1)
}

func TestDatasetSharedByMultipleDMPs(t *testing.T) {
	assert := assert.New(t)
	store := openTestStore(t)

	first, _ := store.CreateDMP("dmp-1")
	second, _ := store.CreateDMP("dmp-2")
	dataset, _ := store.CreateDataset("ds-1", "recid-1")

	_, err := store.AddDatasetToDMP(first, dataset)
	assert.Nil(err)
	_, err = store.AddDatasetToDMP(second, dataset)
	assert.Nil(err)

	dmps, err := store.DMPsForDataset(dataset)
	assert.Nil(err)
	assert.Len(dmps, 2)

	// removing the dataset from one DMP leaves the other association and the
	// dataset's record reference alone
	assert.Nil(store.RemoveDatasetFromDMP(first, dataset))
	dmps, err = store.DMPsForDataset(dataset)
	assert.Nil(err)
	assert.Len(dmps, 1)
	assert.Equal("dmp-2", dmps[0].DmpId)

	kept, err := store.GetDataset("ds-1")
	assert.Nil(err)
	assert.Equal("recid-1", kept.RecordPid)
}

func TestDMPsForRecordPid(t *testing.T) {
	assert := assert.New(t)
	store := openTestStore(t)

	dmp, _ := store.CreateDMP("dmp-1")
	dataset, _ := store.CreateDataset("ds-1", "recid-1")
	_, err := store.AddDatasetToDMP(dmp, dataset)
	assert.Nil(err)

	dmps, err := store.DMPsForRecordPid("recid-1")
	assert.Nil(err)
	assert.Len(dmps, 1)

	dmps, err = store.DMPsForRecordPid("unknown")
	assert.Nil(err)
	assert.Empty(dmps)
}

func TestTransactionRollsBackOnError(t *testing.T) {
	assert := assert.New(t)
	store := openTestStore(t)

	boom := errors.New("boom")
	err := store.Transaction(func(tx *Store) error {
		_, err := tx.CreateDMP("dmp-1")
		assert.Nil(err)
		dataset, err := tx.CreateDataset("ds-1", "")
		assert.Nil(err)
		assert.NotNil(dataset)
		return boom
	})
	assert.Equal(boom, err)

	dmp, err := store.GetDMP("dmp-1")
	assert.Nil(err)
	assert.Nil(dmp, "A rolled-back DMP is still visible")
	dataset, err := store.GetDataset("ds-1")
	assert.Nil(err)
	assert.Nil(dataset, "A rolled-back dataset is still visible")
}

func TestTransactionCommits(t *testing.T) {
	assert := assert.New(t)
	store := openTestStore(t)

	err := store.Transaction(func(tx *Store) error {
		dmp, err := tx.CreateDMP("dmp-1")
		if err != nil {
			return err
		}
		dataset, err := tx.CreateDataset("ds-1", "recid-1")
		if err != nil {
			return err
		}
		_, err = tx.AddDatasetToDMP(dmp, dataset)
		return err
	})
	assert.Nil(err)

	dmp, err := store.GetDMP("dmp-1")
	assert.Nil(err)
	assert.NotNil(dmp)
	assert.Len(dmp.Datasets, 1)
}

func TestNestedTransactionsAreRejected(t *testing.T) {
	store := openTestStore(t)
	err := store.Transaction(func(tx *Store) error {
		return tx.Transaction(func(*Store) error { return nil })
	})
	var nested *NestedTransactionError
	assert.True(t, errors.As(err, &nested))
}
