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
	"github.com/FAIR-Data-Austria/invenio-madmp/config"
	"github.com/FAIR-Data-Austria/invenio-madmp/madmp"
	"github.com/FAIR-Data-Austria/invenio-madmp/models"
	"github.com/FAIR-Data-Austria/invenio-madmp/records"
)

// ConvertRecord converts the given record into a partial DMP dataset entry
// for reporting to the DMP tool. If the record isn't linked to any dataset,
// nothing is reported and the result is nil.
func (e *Engine) ConvertRecord(record *records.Record) (*madmp.DatasetFragment, error) {
	dataset, err := e.datasetForRecord(e.store, record)
	if err != nil {
		return nil, err
	}
	if dataset == nil {
		// the record doesn't belong to a dataset: do nothing
		return nil, nil
	}

	converter, err := e.registry.ForRecord(record)
	if err != nil {
		return nil, err
	}
	distribution, err := converter.ConvertRecord(record)
	if err != nil {
		return nil, err
	}
	distribution.Host = hostBlock(e.conf.Host)

	fragment := &madmp.DatasetFragment{
		Distribution: []madmp.Distribution{distribution},
	}

	// report all identifiers of the record that are known to us
	for _, pid := range record.Pids {
		fragment.DatasetId = append(fragment.DatasetId, madmp.NormalizeIdentifier(
			madmp.Identifier{Identifier: pid.Value, Type: pid.Type}))
	}

	metadata, err := converter.DatasetMetadataModel(record)
	if err != nil {
		return nil, err
	}
	if metadata != nil {
		fragment.Metadata = []madmp.Metadata{*metadata}
	}
	return fragment, nil
}

// datasetForRecord finds the dataset (if any) that references the record
// under one of its identifiers.
func (e *Engine) datasetForRecord(store *models.Store, record *records.Record) (*models.Dataset, error) {
	for _, pid := range record.Pids {
		dataset, err := store.GetDatasetByRecordPid(pid.Value)
		if err != nil {
			return nil, err
		}
		if dataset != nil {
			return dataset, nil
		}
	}
	return nil, nil
}

// DMPsForRecord lists the DMPs covering the given record.
func (e *Engine) DMPsForRecord(record *records.Record) ([]*models.DataManagementPlan, error) {
	dataset, err := e.datasetForRecord(e.store, record)
	if err != nil || dataset == nil {
		return nil, err
	}
	return e.store.DMPsForDataset(dataset)
}

// hostBlock renders the configured repository description as the host block
// of an outgoing distribution. Empty fields are left out; a completely empty
// configuration yields no host block at all.
func hostBlock(host config.HostConfig) *madmp.Host {
	block := &madmp.Host{
		Title:             host.Title,
		URL:               host.URL,
		Description:       host.Description,
		Availability:      host.Availability,
		BackupFrequency:   host.BackupFrequency,
		BackupType:        host.BackupType,
		CertifiedWith:     host.CertifiedWith,
		GeoLocation:       host.GeoLocation,
		SupportVersioning: host.SupportVersioning,
		StorageType:       host.StorageType,
		PidSystem:         host.PidSystem,
	}
	empty := block.Title == "" && block.URL == "" && block.Description == "" &&
		block.Availability == "" && block.BackupFrequency == "" &&
		block.BackupType == "" && block.CertifiedWith == "" &&
		block.GeoLocation == "" && block.SupportVersioning == "" &&
		block.StorageType == "" && len(block.PidSystem) == 0
	if empty {
		return nil
	}
	return block
}
