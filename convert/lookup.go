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

package convert

import (
	"regexp"

	"github.com/FAIR-Data-Austria/invenio-madmp/madmp"
	"github.com/FAIR-Data-Austria/invenio-madmp/models"
	"github.com/FAIR-Data-Austria/invenio-madmp/records"
)

// landing page URLs look like https://<host>/records/<recid>
var accessURLPattern = regexp.MustCompile(`https?://.*?/records/(.*)`)

// fetchUnassignedRecord tries to find an existing record for a dataset that
// doesn't have one linked yet. The distribution's access URL (the record's
// landing page) takes precedence over the dataset's identifier. Records that
// are already linked to some dataset are not considered.
func fetchUnassignedRecord(service records.Service, store *models.Store,
	datasetId, accessURL string) (*records.Record, error) {

	var record *records.Record
	if accessURL != "" {
		if match := accessURLPattern.FindStringSubmatch(accessURL); match != nil {
			found, err := service.ResolvePid(match[1])
			if err != nil {
				return nil, err
			}
			record = found
		}
	}

	if record == nil {
		// in case of a DOI, remove the possibly leading "https://doi.org/"
		found, err := service.ResolvePid(madmp.StripIdentifier(datasetId))
		if err != nil {
			return nil, err
		}
		record = found
	}

	if record == nil {
		return nil, nil
	}

	for _, pid := range record.Pids {
		dataset, err := store.GetDatasetByRecordPid(pid.Value)
		if err != nil {
			return nil, err
		}
		if dataset != nil {
			// the record already belongs to another dataset
			return nil, nil
		}
	}
	return record, nil
}

// bestPid picks the identifier under which a record is linked to a dataset.
// DOIs are preferred over internal identifiers.
func bestPid(record *records.Record) string {
	for _, pid := range record.Pids {
		if pid.Type == "doi" {
			return pid.Value
		}
	}
	if len(record.Pids) > 0 {
		return record.Pids[0].Value
	}
	return ""
}
