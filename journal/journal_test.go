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
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func openTestJournal(t *testing.T) *Journal {
	journal, err := Open(t.TempDir())
	assert.Nil(t, err)
	t.Cleanup(func() { journal.Close() })
	return journal
}

func syncRecord(dmpId, status string, start time.Time) Record {
	return Record{
		Id:          uuid.New(),
		DmpId:       dmpId,
		Mode:        "soft",
		StartTime:   start,
		StopTime:    start.Add(time.Second),
		Status:      status,
		NumDatasets: 1,
	}
}

func TestRecordAndFetchSync(t *testing.T) {
	assert := assert.New(t)
	journal := openTestJournal(t)

	start := time.Now().UTC()
	record := syncRecord("dmp-1", "succeeded", start)
	record.RecordsCreated = 2
	assert.Nil(journal.RecordSync(record))

	records, err := journal.Records(start.Add(-time.Minute), start.Add(time.Minute))
	assert.Nil(err)
	assert.Len(records, 1)
	assert.Equal(record.Id, records[0].Id)
	assert.Equal("dmp-1", records[0].DmpId)
	assert.Equal(2, records[0].RecordsCreated)
}

func TestRecordSyncRejectsInvalidStatus(t *testing.T) {
	assert := assert.New(t)
	journal := openTestJournal(t)

	err := journal.RecordSync(syncRecord("dmp-1", "maybe", time.Now().UTC()))
	assert.Error(err)
	assert.IsType(&NewRecordError{}, err)
}

func TestRecordsOutsideTimeRange(t *testing.T) {
	assert := assert.New(t)
	journal := openTestJournal(t)

	start := time.Now().UTC()
	assert.Nil(journal.RecordSync(syncRecord("dmp-1", "failed", start)))

	records, err := journal.Records(start.Add(time.Hour), start.Add(2*time.Hour))
	assert.Nil(err)
	assert.Empty(records)
}

func TestRecordsForDmp(t *testing.T) {
	assert := assert.New(t)
	journal := openTestJournal(t)

	start := time.Now().UTC()
	assert.Nil(journal.RecordSync(syncRecord("dmp-1", "succeeded", start)))
	assert.Nil(journal.RecordSync(syncRecord("dmp-2", "succeeded", start.Add(time.Second))))
	assert.Nil(journal.RecordSync(syncRecord("dmp-1", "failed", start.Add(2*time.Second))))

	records, err := journal.RecordsForDmp("dmp-1")
	assert.Nil(err)
	assert.Len(records, 2)
	assert.Equal("succeeded", records[0].Status)
	assert.Equal("failed", records[1].Status)
}

func TestManifestRoundTrip(t *testing.T) {
	assert := assert.New(t)
	journal := openTestJournal(t)

	manifest, err := NewManifest("dmp-1", []DatasetResource{
		{DatasetId: "10.1234/Dataset.One", RecordPid: "recid-1", Title: "Gauge data"},
	})
	assert.Nil(err)

	start := time.Now().UTC()
	record := syncRecord("dmp-1", "succeeded", start)
	record.Manifest = manifest
	assert.Nil(journal.RecordSync(record))

	records, err := journal.Records(start.Add(-time.Minute), start.Add(time.Minute))
	assert.Nil(err)
	assert.Len(records, 1)
	assert.NotNil(records[0].Manifest)

	resources := records[0].Manifest.ResourceNames()
	assert.Equal([]string{"10.1234/dataset.one"}, resources)
}

func TestFailedSyncHasNoManifest(t *testing.T) {
	assert := assert.New(t)
	journal := openTestJournal(t)

	start := time.Now().UTC()
	assert.Nil(journal.RecordSync(syncRecord("dmp-1", "failed", start)))

	records, err := journal.Records(start.Add(-time.Minute), start.Add(time.Minute))
	assert.Nil(err)
	assert.Len(records, 1)
	assert.Nil(records[0].Manifest)
}
