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

// package events provides the in-process event bus over which sync
// operations announce changes to DMPs, datasets and records. Handlers are
// registered explicitly at startup; there is no implicit global bus.
package events

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/FAIR-Data-Austria/invenio-madmp/models"
	"github.com/FAIR-Data-Austria/invenio-madmp/records"
)

// An Event names a kind of change announced on the bus.
type Event string

const (
	// a DMP was seen for the first time
	DmpCreated Event = "dmp-created"
	// a dataset was linked to a DMP
	DmpDatasetAdded Event = "dmp-dataset-added"
	// a dataset was unlinked from a DMP
	DmpDatasetRemoved Event = "dmp-dataset-removed"
	// a dataset was deleted entirely
	DatasetDeleted Event = "dataset-deleted"
	// a dataset's record reference changed
	DatasetRecordPidChanged Event = "dataset-record-pid-changed"
	// a record known to a dataset was updated
	RecordUpdated Event = "record-updated"
	// a record known to a dataset was deleted
	RecordDeleted Event = "record-deleted"
)

// A Payload carries the entities affected by an event. Fields that don't
// apply to a given event are nil (or empty).
type Payload struct {
	DMP     *models.DataManagementPlan
	Dataset *models.Dataset
	Record  *records.Record
	Pid     string
}

// A Handler reacts to a single event occurrence. A returned error is
// collected by Publish; handlers that have nothing to report return nil.
type Handler func(event Event, payload Payload) error

// A Bus dispatches events to the handlers subscribed to them. A panicking
// handler is logged and skipped, and must not keep the remaining handlers
// from running; handler errors are collected and returned to the publisher.
type Bus struct {
	mutex    sync.RWMutex
	handlers map[Event][]Handler
	logger   *slog.Logger
}

func NewBus(logger *slog.Logger) *Bus {
	return &Bus{
		handlers: make(map[Event][]Handler),
		logger:   logger,
	}
}

// Subscribe registers a handler for the given event.
func (b *Bus) Subscribe(event Event, handler Handler) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	b.handlers[event] = append(b.handlers[event], handler)
}

// Publish invokes all handlers subscribed to the given event, in
// subscription order. Every handler runs; the errors of all failed handlers
// are joined into the returned error.
func (b *Bus) Publish(event Event, payload Payload) error {
	b.mutex.RLock()
	handlers := b.handlers[event]
	b.mutex.RUnlock()

	var errs []error
	for _, handler := range handlers {
		if err := b.dispatch(event, payload, handler); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (b *Bus) dispatch(event Event, payload Payload, handler Handler) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			b.logger.Error("An event handler panicked",
				"event", string(event), "panic", recovered)
		}
	}()
	return handler(event, payload)
}
