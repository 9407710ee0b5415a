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

// Package models holds the entity graph linking Data Management Plans to
// datasets and their repository records, together with its SQLite-backed
// persistence.
package models

import (
	"github.com/google/uuid"
)

// A DataManagementPlan mirrors a DMP known to the DMP tool. It stores the
// external dmp_id used to identify the plan in the DMP tool, and the set of
// datasets the plan mentioned in its most recently processed document.
type DataManagementPlan struct {
	// the internal identifier
	Id uuid.UUID
	// the dmp_id used to identify the DMP in the DMP tool (unique)
	DmpId string
	// the datasets currently associated with this DMP
	Datasets []*Dataset
}

// A Dataset mirrors one dataset entry of a DMP that is hosted by this
// repository. A dataset may be shared by several DMPs.
type Dataset struct {
	// the internal identifier
	Id uuid.UUID
	// the dataset_id used to identify the dataset in the DMP tool (unique)
	DatasetId string
	// the persistent identifier of the repository record holding the
	// dataset's metadata, or "" if no record has been linked yet; at most
	// one dataset may reference any given record
	RecordPid string
}

// Reports whether the given dataset is already associated with the DMP,
// compared by dataset_id value.
func (dmp *DataManagementPlan) HasDataset(dataset *Dataset) bool {
	for _, ds := range dmp.Datasets {
		if ds.DatasetId == dataset.DatasetId {
			return true
		}
	}
	return false
}
