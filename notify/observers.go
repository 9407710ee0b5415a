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

package notify

import (
	"log/slog"

	"github.com/FAIR-Data-Austria/invenio-madmp/events"
	"github.com/FAIR-Data-Austria/invenio-madmp/madmp"
	"github.com/FAIR-Data-Austria/invenio-madmp/records"
)

// A RecordConverter renders a record as a partial maDMP dataset entry,
// returning nil for records that don't belong to any dataset.
type RecordConverter interface {
	ConvertRecord(record *records.Record) (*madmp.DatasetFragment, error)
}

// RegisterObservers wires the lifecycle events to outgoing notifications.
// The observers are adapters between the events published during sync runs
// and the notifier: they gather the notification body from the affected
// record and send the request. Notification failures are logged and
// swallowed, so the DMP tool being unreachable doesn't fail a sync; with
// dmp_tool.raise_errors set they are returned to the publisher instead.
func RegisterObservers(bus *events.Bus, notifier *Notifier, converter RecordConverter,
	recordService records.Service, logger *slog.Logger) {

	fragmentFor := func(payload events.Payload) *madmp.DatasetFragment {
		record := payload.Record
		if record == nil && payload.Dataset != nil && payload.Dataset.RecordPid != "" {
			found, err := recordService.ResolvePid(payload.Dataset.RecordPid)
			if err != nil {
				logger.Error("Couldn't resolve a record for a notification",
					"pid", payload.Dataset.RecordPid, "error", err.Error())
				return nil
			}
			record = found
		}
		if record == nil {
			return nil
		}
		fragment, err := converter.ConvertRecord(record)
		if err != nil {
			logger.Error("Couldn't convert a record for a notification", "error", err.Error())
			return nil
		}
		return fragment
	}

	reportFailure := func(err error) error {
		if err == nil {
			return nil
		}
		if notifier.conf.RaiseErrors {
			return err
		}
		logger.Error("Couldn't notify the DMP tool", "error", err.Error())
		return nil
	}

	bus.Subscribe(events.DmpDatasetAdded, func(_ events.Event, payload events.Payload) error {
		if payload.DMP == nil || payload.Dataset == nil {
			return nil
		}
		return reportFailure(notifier.SendDatasetAddition(payload.DMP.DmpId, fragmentFor(payload)))
	})

	distributionUpdate := func(_ events.Event, payload events.Payload) error {
		if payload.Dataset == nil {
			return nil
		}
		return reportFailure(notifier.SendDistributionUpdate(payload.Dataset.DatasetId, fragmentFor(payload)))
	}
	bus.Subscribe(events.DatasetRecordPidChanged, distributionUpdate)
	bus.Subscribe(events.RecordUpdated, distributionUpdate)

	distributionDeletion := func(_ events.Event, payload events.Payload) error {
		if payload.Dataset == nil {
			return nil
		}
		return reportFailure(notifier.SendDistributionDeletion(payload.Dataset.DatasetId, fragmentFor(payload)))
	}
	bus.Subscribe(events.DatasetDeleted, distributionDeletion)
	bus.Subscribe(events.RecordDeleted, distributionDeletion)
}
