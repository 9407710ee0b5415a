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

package convert_test

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/FAIR-Data-Austria/invenio-madmp/auth"
	"github.com/FAIR-Data-Austria/invenio-madmp/config"
	"github.com/FAIR-Data-Austria/invenio-madmp/convert"
	"github.com/FAIR-Data-Austria/invenio-madmp/converters"
	"github.com/FAIR-Data-Austria/invenio-madmp/converters/rdm"
	"github.com/FAIR-Data-Austria/invenio-madmp/events"
	"github.com/FAIR-Data-Austria/invenio-madmp/madmptest"
	"github.com/FAIR-Data-Austria/invenio-madmp/models"
	"github.com/FAIR-Data-Austria/invenio-madmp/records"
)

const engineTestConfig string = `
service:
  port: 8080
host:
  title: Test Repository
  url: https://repo.example.org
sync:
  resource_type_translations:
    dataset: dataset
`

// everything an engine test needs in one place
type fixture struct {
	engine  *convert.Engine
	store   *models.Store
	records *records.MemoryService
	bus     *events.Bus
}

func setup(t *testing.T) *fixture {
	return setupWithConfig(t, engineTestConfig)
}

func setupWithConfig(t *testing.T, yamlConfig string) *fixture {
	conf, err := config.Read([]byte(yamlConfig))
	assert.Nil(t, err)

	store, err := models.Open(filepath.Join(t.TempDir(), "madmp.db"))
	assert.Nil(t, err)
	t.Cleanup(func() { store.Close() })

	recordService := records.NewMemoryService()
	directory := rdm.NewMemoryDirectory()
	directory.AddUser(rdm.User{Id: "42", Email: "jane.doe@example.org"})

	registry, err := converters.NewRegistry(rdm.NewConverter(conf, recordService, directory))
	assert.Nil(t, err)

	bus := events.NewBus(slog.Default())
	engine, err := convert.NewEngine(conf, store, recordService, registry, bus, nil, slog.Default())
	assert.Nil(t, err)

	return &fixture{engine: engine, store: store, records: recordService, bus: bus}
}

const (
	testHostTitle = "Test Repository"
	testHostURL   = "https://repo.example.org"
)

func document(dmpId string, datasets ...string) json.RawMessage {
	return madmptest.Document(dmpId, datasets...)
}

func hostedDistribution() string {
	return madmptest.Distribution("open", testHostTitle, testHostURL)
}

func hostedDataset(datasetId string) string {
	return madmptest.HostedDataset(datasetId, testHostTitle, testHostURL)
}

func TestConvertDMPCreatesRecordDraft(t *testing.T) {
	assert := assert.New(t)
	f := setup(t)

	dmp, err := f.engine.ConvertDMP(document("dmp-1", hostedDataset("10.1234/ds.1")),
		false, auth.SystemIdentity, true)
	assert.Nil(err)
	assert.NotNil(dmp)
	assert.Equal("dmp-1", dmp.DmpId)
	assert.Len(dmp.Datasets, 1)

	dataset := dmp.Datasets[0]
	assert.Equal("10.1234/ds.1", dataset.DatasetId)
	assert.NotEmpty(dataset.RecordPid)

	record, err := f.records.ResolvePid(dataset.RecordPid)
	assert.Nil(err)
	assert.NotNil(record)
	assert.True(record.Draft)
	metadata := record.Data["metadata"].(map[string]any)
	assert.Equal("jane.doe@example.org", metadata["contact"])
}

func TestConvertDMPIsIdempotent(t *testing.T) {
	assert := assert.New(t)
	f := setup(t)

	doc := document("dmp-1", hostedDataset("10.1234/ds.1"))
	first, err := f.engine.ConvertDMP(doc, false, auth.SystemIdentity, true)
	assert.Nil(err)
	pid := first.Datasets[0].RecordPid

	second, err := f.engine.ConvertDMP(doc, false, auth.SystemIdentity, true)
	assert.Nil(err)
	assert.Len(second.Datasets, 1)
	// the dataset keeps its record: no second draft is created
	assert.Equal(pid, second.Datasets[0].RecordPid)
}

func TestConvertDMPUnlinksStaleDatasets(t *testing.T) {
	assert := assert.New(t)
	f := setup(t)

	_, err := f.engine.ConvertDMP(document("dmp-1",
		hostedDataset("10.1234/ds.1"), hostedDataset("10.1234/ds.2")),
		false, auth.SystemIdentity, true)
	assert.Nil(err)

	dmp, err := f.engine.ConvertDMP(document("dmp-1", hostedDataset("10.1234/ds.1")),
		false, auth.SystemIdentity, true)
	assert.Nil(err)
	assert.Len(dmp.Datasets, 1)
	assert.Equal("10.1234/ds.1", dmp.Datasets[0].DatasetId)

	// the unlinked dataset and its record reference survive the unlink
	stale, err := f.store.GetDataset("10.1234/ds.2")
	assert.Nil(err)
	assert.NotNil(stale)
	assert.NotEmpty(stale.RecordPid)
}

func TestSoftSyncLeavesRecordAlone(t *testing.T) {
	assert := assert.New(t)
	f := setup(t)

	dmp, err := f.engine.ConvertDMP(document("dmp-1", hostedDataset("10.1234/ds.1")),
		false, auth.SystemIdentity, true)
	assert.Nil(err)
	pid := dmp.Datasets[0].RecordPid

	record, _ := f.records.ResolvePid(pid)
	_, err = f.records.Update(record, map[string]any{
		"metadata": map[string]any{"language": "deu"},
	}, auth.SystemIdentity)
	assert.Nil(err)

	_, err = f.engine.ConvertDMP(document("dmp-1", hostedDataset("10.1234/ds.1")),
		false, auth.SystemIdentity, true)
	assert.Nil(err)

	record, _ = f.records.ResolvePid(pid)
	metadata := record.Data["metadata"].(map[string]any)
	assert.Equal("deu", metadata["language"])
}

func TestHardSyncOverwritesRecordMetadata(t *testing.T) {
	assert := assert.New(t)
	f := setup(t)

	dmp, err := f.engine.ConvertDMP(document("dmp-1", hostedDataset("10.1234/ds.1")),
		false, auth.SystemIdentity, true)
	assert.Nil(err)
	pid := dmp.Datasets[0].RecordPid

	record, _ := f.records.ResolvePid(pid)
	_, err = f.records.Update(record, map[string]any{
		"access":   record.Data["access"],
		"metadata": map[string]any{"language": "deu"},
	}, auth.SystemIdentity)
	assert.Nil(err)

	synced, err := f.engine.ConvertDMP(document("dmp-1", hostedDataset("10.1234/ds.1")),
		true, auth.SystemIdentity, true)
	assert.Nil(err)
	// the record link never changes during a hard sync
	assert.Equal(pid, synced.Datasets[0].RecordPid)

	record, _ = f.records.ResolvePid(pid)
	metadata := record.Data["metadata"].(map[string]any)
	assert.Equal("eng", metadata["language"])
}

func TestConvertDMPSkipsForeignDistributions(t *testing.T) {
	assert := assert.New(t)
	f := setup(t)

	foreign := madmptest.Dataset("10.1234/ds.1",
		madmptest.Distribution("open", "Another Repository", "https://elsewhere.example.org"))
	dmp, err := f.engine.ConvertDMP(document("dmp-1", foreign), false, auth.SystemIdentity, true)
	assert.Nil(err)
	assert.Empty(dmp.Datasets)
}

func TestConvertDMPRejectsMultipleDistributions(t *testing.T) {
	assert := assert.New(t)
	f := setup(t)

	doubled := madmptest.Dataset("10.1234/ds.1", hostedDistribution(), hostedDistribution())
	_, err := f.engine.ConvertDMP(document("dmp-1", doubled), false, auth.SystemIdentity, true)
	assert.Error(err)
	assert.IsType(&convert.PolicyViolationError{}, err)

	// nothing of the failed run may stick
	dmp, err := f.store.GetDMP("dmp-1")
	assert.Nil(err)
	assert.Nil(dmp)
}

func TestConvertDMPAllowsMultipleDistributionsWhenConfigured(t *testing.T) {
	assert := assert.New(t)
	f := setupWithConfig(t, engineTestConfig+"  allow_multiple_distributions: true\n")

	doubled := madmptest.Dataset("10.1234/ds.1",
		madmptest.Distribution("open", testHostTitle, testHostURL),
		madmptest.Distribution("closed", testHostTitle, testHostURL))
	dmp, err := f.engine.ConvertDMP(document("dmp-1", doubled), false, auth.SystemIdentity, true)
	assert.Nil(err)
	assert.Len(dmp.Datasets, 1)

	// the record is created from the first distribution's data
	record, err := f.records.ResolvePid(dmp.Datasets[0].RecordPid)
	assert.Nil(err)
	assert.NotNil(record)
	access := record.Data["access"].(map[string]any)
	assert.Equal("open", access["access_right"])
	assert.Equal(false, access["files_restricted"])
}

func TestConvertDMPRejectsInvalidDocuments(t *testing.T) {
	assert := assert.New(t)
	f := setup(t)

	_, err := f.engine.ConvertDMP(json.RawMessage(`{"title": "No identifiers here"}`),
		false, auth.SystemIdentity, true)
	assert.Error(err)

	var validationErr *convert.ValidationError
	assert.ErrorAs(err, &validationErr)
	assert.NotEmpty(validationErr.Messages)
}

func TestConvertDMPCanSkipValidation(t *testing.T) {
	assert := assert.New(t)
	f := setup(t)

	// no title: the document fails schema validation but parses fine
	doc := json.RawMessage(fmt.Sprintf(`{
		"dmp_id": {"identifier": "dmp-1", "type": "other"},
		"contact": {"name": "Jane Doe", "mbox": "jane.doe@example.org"},
		"contributor": [
			{"name": "Jane Doe", "mbox": "jane.doe@example.org", "role": ["data manager"]}
		],
		"dataset": [%s]
	}`, hostedDataset("10.1234/ds.1")))

	_, err := f.engine.ConvertDMP(doc, false, auth.SystemIdentity, true)
	var validationErr *convert.ValidationError
	assert.ErrorAs(err, &validationErr)

	dmp, err := f.engine.ConvertDMP(doc, false, auth.SystemIdentity, false)
	assert.Nil(err)
	assert.Len(dmp.Datasets, 1)
	assert.NotEmpty(dmp.Datasets[0].RecordPid)
}

func TestPreviewDMPReportsWithoutWriting(t *testing.T) {
	assert := assert.New(t)
	f := setup(t)

	preview, err := f.engine.PreviewDMP(document("dmp-1", hostedDataset("10.1234/ds.1")))
	assert.Nil(err)
	assert.Equal("dmp-1", preview.DmpId)
	assert.Len(preview.Datasets, 1)
	assert.Equal("10.1234/ds.1", preview.Datasets[0].DatasetId)
	assert.Equal("", preview.Datasets[0].RecordPid)
	assert.Equal(1, preview.Datasets[0].Distributions)

	// previewing must not create anything
	dmp, err := f.store.GetDMP("dmp-1")
	assert.Nil(err)
	assert.Nil(dmp)

	_, err = f.engine.ConvertDMP(document("dmp-1", hostedDataset("10.1234/ds.1")),
		false, auth.SystemIdentity, true)
	assert.Nil(err)

	preview, err = f.engine.PreviewDMP(document("dmp-1", hostedDataset("10.1234/ds.1")))
	assert.Nil(err)
	assert.NotEmpty(preview.Datasets[0].RecordPid)
}

func TestConvertDMPLinksExistingRecord(t *testing.T) {
	assert := assert.New(t)
	f := setup(t)

	existing, err := f.records.CreateDraft(map[string]any{
		"metadata": map[string]any{"language": "eng"},
	}, auth.SystemIdentity)
	assert.Nil(err)
	recid := existing.Pids[0].Value

	withURL := madmptest.Dataset("10.1234/ds.1", fmt.Sprintf(`{
		"title": "Gauge data",
		"data_access": "open",
		"access_url": "https://repo.example.org/records/%s",
		"host": {"title": "Test Repository", "url": "https://repo.example.org"}
	}`, recid))

	dmp, err := f.engine.ConvertDMP(document("dmp-1", withURL), false, auth.SystemIdentity, true)
	assert.Nil(err)
	assert.Equal(recid, dmp.Datasets[0].RecordPid)

	// no draft was created on top of the existing record
	another, _ := f.records.ResolvePid("recid-2")
	assert.Nil(another)
}

func TestDatasetSharedBetweenDMPs(t *testing.T) {
	assert := assert.New(t)
	f := setup(t)

	first, err := f.engine.ConvertDMP(document("dmp-1", hostedDataset("10.1234/ds.1")),
		false, auth.SystemIdentity, true)
	assert.Nil(err)
	second, err := f.engine.ConvertDMP(document("dmp-2", hostedDataset("10.1234/ds.1")),
		false, auth.SystemIdentity, true)
	assert.Nil(err)

	// both DMPs share the dataset and its record
	assert.Equal(first.Datasets[0].RecordPid, second.Datasets[0].RecordPid)

	dmps, err := f.store.DMPsForRecordPid(first.Datasets[0].RecordPid)
	assert.Nil(err)
	assert.Len(dmps, 2)
}

func TestConvertDMPPublishesEvents(t *testing.T) {
	assert := assert.New(t)
	f := setup(t)

	var seen []events.Event
	for _, event := range []events.Event{
		events.DmpCreated, events.DmpDatasetAdded,
		events.DatasetRecordPidChanged, events.DmpDatasetRemoved,
	} {
		f.bus.Subscribe(event, func(e events.Event, _ events.Payload) error {
			seen = append(seen, e)
			return nil
		})
	}

	_, err := f.engine.ConvertDMP(document("dmp-1", hostedDataset("10.1234/ds.1")),
		false, auth.SystemIdentity, true)
	assert.Nil(err)
	assert.Equal([]events.Event{
		events.DmpCreated, events.DmpDatasetAdded, events.DatasetRecordPidChanged,
	}, seen)

	seen = nil
	_, err = f.engine.ConvertDMP(document("dmp-1"), false, auth.SystemIdentity, true)
	assert.Nil(err)
	assert.Equal([]events.Event{events.DmpDatasetRemoved}, seen)
}

func TestConvertRecordReportsDataset(t *testing.T) {
	assert := assert.New(t)
	f := setup(t)

	dmp, err := f.engine.ConvertDMP(document("dmp-1", hostedDataset("10.1234/ds.1")),
		false, auth.SystemIdentity, true)
	assert.Nil(err)

	record, _ := f.records.ResolvePid(dmp.Datasets[0].RecordPid)
	fragment, err := f.engine.ConvertRecord(record)
	assert.Nil(err)
	assert.NotNil(fragment)

	assert.Len(fragment.Distribution, 1)
	distribution := fragment.Distribution[0]
	assert.Equal("Gauge data", distribution.Title)
	assert.Equal("open", distribution.DataAccess)
	assert.NotNil(distribution.Host)
	assert.Equal("Test Repository", distribution.Host.Title)
	assert.Equal("https://repo.example.org", distribution.Host.URL)

	assert.Len(fragment.DatasetId, 1)
	assert.Equal(dmp.Datasets[0].RecordPid, fragment.DatasetId[0].Identifier)
	assert.Equal("other", fragment.DatasetId[0].Type)

	assert.Len(fragment.Metadata, 1)
	assert.Contains(fragment.Metadata[0].MetadataStandardId.Identifier, "/schemas/")
}

func TestConvertRecordWithoutDataset(t *testing.T) {
	assert := assert.New(t)
	f := setup(t)

	record, err := f.records.CreateDraft(map[string]any{}, auth.SystemIdentity)
	assert.Nil(err)

	fragment, err := f.engine.ConvertRecord(record)
	assert.Nil(err)
	assert.Nil(fragment)
}
