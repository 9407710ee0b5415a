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

// package convert implements the reconciliation between incoming DMP
// documents and the records held by this repository, in both directions.
package convert

import (
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/FAIR-Data-Austria/invenio-madmp/auth"
	"github.com/FAIR-Data-Austria/invenio-madmp/config"
	"github.com/FAIR-Data-Austria/invenio-madmp/converters"
	"github.com/FAIR-Data-Austria/invenio-madmp/events"
	"github.com/FAIR-Data-Austria/invenio-madmp/journal"
	"github.com/FAIR-Data-Austria/invenio-madmp/madmp"
	"github.com/FAIR-Data-Austria/invenio-madmp/models"
	"github.com/FAIR-Data-Austria/invenio-madmp/records"
)

// An Engine reconciles DMP documents with the repository's records. It is
// safe for concurrent use; runs for the same DMP are serialized.
type Engine struct {
	conf      *config.Config
	store     *models.Store
	records   records.Service
	registry  *converters.Registry
	bus       *events.Bus
	journal   *journal.Journal
	validator *madmp.SchemaValidator
	logger    *slog.Logger

	locks sync.Map // dmp_id -> *sync.Mutex
}

// NewEngine assembles an engine from its collaborators. The journal may be
// nil, in which case sync runs are not journaled.
func NewEngine(conf *config.Config, store *models.Store, recordService records.Service,
	registry *converters.Registry, bus *events.Bus, syncJournal *journal.Journal,
	logger *slog.Logger) (*Engine, error) {

	validator, err := madmp.NewSchemaValidator()
	if err != nil {
		return nil, err
	}
	return &Engine{
		conf:      conf,
		store:     store,
		records:   recordService,
		registry:  registry,
		bus:       bus,
		journal:   syncJournal,
		validator: validator,
		logger:    logger,
	}, nil
}

// a deferred event, published only after the run's transaction has committed
type pendingEvent struct {
	event   events.Event
	payload events.Payload
}

// bookkeeping for a single sync run
type syncRun struct {
	dmp       *models.DataManagementPlan
	events    []pendingEvent
	resources []journal.DatasetResource

	numDatasets     int
	recordsCreated  int
	recordsUpdated  int
	datasetsRemoved int
}

func (run *syncRun) publish(event events.Event, payload events.Payload) {
	run.events = append(run.events, pendingEvent{event: event, payload: payload})
}

// ConvertDMP parses the given maDMP document and updates the repository's
// records and DMP/dataset links accordingly.
//
// All datasets with a distribution hosted by this repository are collected.
// Each such dataset that doesn't have a linked record yet either gets linked
// to an existing unassigned record, or a new record draft is created for it
// from the converted metadata. Datasets that already have a record are left
// alone unless hardSync is set, in which case the record's metadata is
// overwritten with the converted data (the record link itself never changes).
// Datasets previously linked to the DMP but absent from the document are
// unlinked.
//
// The whole run happens in a single transaction: either all changes of a
// document are applied, or none are. Events are published (and the journal
// written) only after the transaction has committed.
//
// When validate is false the schema gate is skipped; the document is still
// rejected if it can't be parsed or carries no dmp_id. Trusted callers that
// have validated the document already (or knowingly feed a non-conforming
// one) use this to avoid a second validation pass.
func (e *Engine) ConvertDMP(document json.RawMessage, hardSync bool,
	identity auth.Identity, validate bool) (*models.DataManagementPlan, error) {

	if validate {
		if messages := e.validator.Validate(document); len(messages) > 0 {
			return nil, &ValidationError{Messages: messages}
		}
	}

	var doc madmp.Document
	if err := json.Unmarshal(document, &doc); err != nil {
		return nil, &ValidationError{Messages: []string{err.Error()}}
	}
	if doc.DmpId.Identifier == "" {
		return nil, &MissingDmpIdError{}
	}

	// serialize runs per DMP so concurrent submissions can't interleave
	lock, _ := e.locks.LoadOrStore(doc.DmpId.Identifier, &sync.Mutex{})
	mutex := lock.(*sync.Mutex)
	mutex.Lock()
	defer mutex.Unlock()

	startTime := time.Now()
	run := &syncRun{}
	err := e.store.Transaction(func(tx *models.Store) error {
		return e.syncDocument(tx, &doc, hardSync, identity, run)
	})

	e.journalRun(&doc, hardSync, startTime, run, err)
	if err != nil {
		return nil, err
	}

	// Handler errors (e.g. notification observers configured to raise) are
	// reported to the caller, but the sync itself has already committed: the
	// DMP is returned alongside the error.
	var publishErrs []error
	for _, pending := range run.events {
		if err := e.bus.Publish(pending.event, pending.payload); err != nil {
			publishErrs = append(publishErrs, err)
		}
	}
	return run.dmp, errors.Join(publishErrs...)
}

// A Preview reports what a sync of a document would operate on.
type Preview struct {
	DmpId    string
	Datasets []PreviewDataset
}

// one dataset a sync run would process
type PreviewDataset struct {
	DatasetId string
	// the pid of the record currently linked to the dataset, "" if none
	RecordPid string
	// the number of the dataset's distributions hosted by this repository
	Distributions int
}

// PreviewDMP validates and parses the document and reports the datasets a
// sync run would process, together with any records already linked to them.
// Nothing is written; this backs dry runs.
func (e *Engine) PreviewDMP(document json.RawMessage) (*Preview, error) {
	if messages := e.validator.Validate(document); len(messages) > 0 {
		return nil, &ValidationError{Messages: messages}
	}
	var doc madmp.Document
	if err := json.Unmarshal(document, &doc); err != nil {
		return nil, &ValidationError{Messages: []string{err.Error()}}
	}
	if doc.DmpId.Identifier == "" {
		return nil, &MissingDmpIdError{}
	}

	preview := &Preview{DmpId: doc.DmpId.Identifier}
	for _, dataset := range doc.Dataset {
		distributions := madmp.MatchingDistributions(dataset, e.conf.Host)
		if len(distributions) == 0 {
			continue
		}
		entry := PreviewDataset{
			DatasetId:     dataset.DatasetId.Identifier,
			Distributions: len(distributions),
		}
		ds, err := e.store.GetDataset(entry.DatasetId)
		if err != nil {
			return nil, err
		}
		if ds != nil {
			entry.RecordPid = ds.RecordPid
		}
		preview.Datasets = append(preview.Datasets, entry)
	}
	return preview, nil
}

func (e *Engine) syncDocument(tx *models.Store, doc *madmp.Document, hardSync bool,
	identity auth.Identity, run *syncRun) error {

	dmp, err := tx.GetDMP(doc.DmpId.Identifier)
	if err != nil {
		return err
	}
	if dmp == nil {
		dmp, err = tx.CreateDMP(doc.DmpId.Identifier)
		if err != nil {
			return err
		}
		run.publish(events.DmpCreated, events.Payload{DMP: dmp})
	}
	run.dmp = dmp

	// datasets still in here after the loop are no longer mentioned in the
	// document and get unlinked
	staleDatasets := make(map[string]*models.Dataset)
	for _, dataset := range dmp.Datasets {
		staleDatasets[dataset.DatasetId] = dataset
	}

	context := BuildContext(doc, e.conf.Sync)

	for _, dataset := range doc.Dataset {
		distributions := madmp.MatchingDistributions(dataset, e.conf.Host)
		if len(distributions) == 0 {
			// this repository doesn't host any of the dataset's
			// distributions: not our concern
			continue
		}

		datasetId := dataset.DatasetId.Identifier
		if len(distributions) > 1 && !e.conf.Sync.AllowMultipleDistributions {
			return &PolicyViolationError{DatasetId: datasetId, Count: len(distributions)}
		}
		run.numDatasets++

		type recordAndConverter struct {
			data      map[string]any
			converter converters.Converter
		}
		converted := make([]recordAndConverter, 0, len(distributions))
		for _, distribution := range distributions {
			converter := e.registry.ForDataset(distribution, dataset, doc)
			data, err := converter.ConvertDataset(distribution, dataset, doc, context)
			if err != nil {
				return err
			}
			converted = append(converted, recordAndConverter{data: data, converter: converter})
		}

		ds, err := tx.GetDataset(datasetId)
		if err != nil {
			return err
		}
		if ds != nil {
			delete(staleDatasets, ds.DatasetId)
		} else {
			ds, err = tx.CreateDataset(datasetId, "")
			if err != nil {
				return err
			}
		}

		added, err := tx.AddDatasetToDMP(dmp, ds)
		if err != nil {
			return err
		}
		if added {
			run.publish(events.DmpDatasetAdded, events.Payload{DMP: dmp, Dataset: ds})
		}

		if ds.RecordPid == "" {
			if err := e.linkRecord(tx, ds, dataset, distributions[0].AccessURL,
				converted[0].data, converted[0].converter, identity, run); err != nil {
				return err
			}
		} else if hardSync {
			if err := e.hardSyncRecord(ds, converted[0].data, converted[0].converter,
				identity, run); err != nil {
				return err
			}
		}

		run.resources = append(run.resources, journal.DatasetResource{
			DatasetId: datasetId,
			RecordPid: ds.RecordPid,
			Title:     dataset.Title,
		})
	}

	for _, stale := range staleDatasets {
		if err := tx.RemoveDatasetFromDMP(dmp, stale); err != nil {
			return err
		}
		run.datasetsRemoved++
		run.publish(events.DmpDatasetRemoved, events.Payload{DMP: dmp, Dataset: stale})
	}
	return nil
}

// linkRecord links a dataset without a record reference to a record: either
// an existing record found via the distribution's access URL or the dataset
// identifier, or a freshly created draft.
func (e *Engine) linkRecord(tx *models.Store, ds *models.Dataset, dataset madmp.Dataset,
	accessURL string, data map[string]any, converter converters.Converter,
	identity auth.Identity, run *syncRun) error {

	record, err := fetchUnassignedRecord(e.records, tx, ds.DatasetId, accessURL)
	if err != nil {
		return err
	}
	if record == nil {
		record, err = converter.CreateRecord(data, identity)
		if err != nil {
			return err
		}
		run.recordsCreated++
		e.logger.Info("Created a new record draft",
			"dataset", ds.DatasetId, "converter", converter.Name())
	}

	pid := bestPid(record)
	if err := tx.SetRecordPid(ds, pid); err != nil {
		return err
	}
	run.publish(events.DatasetRecordPidChanged,
		events.Payload{Dataset: ds, Record: record, Pid: pid})
	return nil
}

// hardSyncRecord overwrites the metadata of a dataset's linked record with
// the converted data. The record link itself is kept as it is.
func (e *Engine) hardSyncRecord(ds *models.Dataset, data map[string]any,
	converter converters.Converter, identity auth.Identity, run *syncRun) error {

	record, err := e.records.ResolvePid(ds.RecordPid)
	if err != nil {
		return err
	}
	if record == nil {
		e.logger.Warn("A linked record could not be resolved for hard sync",
			"dataset", ds.DatasetId, "pid", ds.RecordPid)
		return nil
	}

	record, err = converter.UpdateRecord(record, data, identity)
	if err != nil {
		return err
	}
	run.recordsUpdated++
	run.publish(events.RecordUpdated, events.Payload{Dataset: ds, Record: record, Pid: ds.RecordPid})
	return nil
}

// journalRun writes the journal entry for a finished run. Journal failures
// are logged, never returned: bookkeeping must not fail a successful sync.
func (e *Engine) journalRun(doc *madmp.Document, hardSync bool, startTime time.Time,
	run *syncRun, runErr error) {

	if e.journal == nil {
		return
	}

	record := journal.Record{
		Id:              uuid.New(),
		DmpId:           doc.DmpId.Identifier,
		Mode:            "soft",
		StartTime:       startTime,
		StopTime:        time.Now(),
		Status:          "succeeded",
		NumDatasets:     run.numDatasets,
		RecordsCreated:  run.recordsCreated,
		RecordsUpdated:  run.recordsUpdated,
		DatasetsRemoved: run.datasetsRemoved,
	}
	if hardSync {
		record.Mode = "hard"
	}
	if runErr != nil {
		record.Status = "failed"
	} else {
		manifest, err := journal.NewManifest(record.DmpId, run.resources)
		if err != nil {
			e.logger.Error("Couldn't generate a sync manifest", "error", err.Error())
		} else {
			record.Manifest = manifest
		}
	}

	if err := e.journal.RecordSync(record); err != nil {
		e.logger.Error("Couldn't journal a sync run", "error", err.Error())
	}
}
