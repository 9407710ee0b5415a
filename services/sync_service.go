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

package services

import (
	"context"
)

// this type encodes a JSON object for responding to root queries
type ServiceInfoResponse struct {
	Name          string `json:"name" example:"maDMP integration service" doc:"The name of the service API"`
	Version       string `json:"version" example:"1.0.0" doc:"The version string (major.minor.patch)"`
	Uptime        int    `json:"uptime" example:"345600" doc:"The time the service has been up (seconds)"`
	Documentation string `json:"documentation" example:"/docs" doc:"The OpenAPI documentation endpoint"`
}

// a summary of one dataset associated with a DMP (GET)
type DatasetSummary struct {
	// the dataset_id used by the DMP tool
	DatasetId string `json:"dataset_id" example:"10.1234/dataset.one" doc:"the identifier of the dataset in the DMP tool"`
	// the persistent identifier of the linked record, if any
	RecordPid string `json:"record_pid,omitempty" example:"10.1234/record.one" doc:"the persistent identifier of the repository record holding the dataset"`
}

// a summary of one data management plan (GET)
type DMPSummary struct {
	// the dmp_id used by the DMP tool
	DmpId string `json:"dmp_id" example:"dmp.42" doc:"the identifier of the DMP in the DMP tool"`
	// the datasets hosted by this repository for the DMP
	Datasets []DatasetSummary `json:"datasets" doc:"the datasets of the DMP hosted by this repository"`
}

// SyncService defines the interface for the maDMP integration service.
type SyncService interface {
	// Starts the service on the selected port, returning an error that indicates
	// success or failure.
	Start(port int) error
	// Gracefully shuts down the service without interrupting active connections.
	Shutdown(ctx context.Context) error
	// Closes down the service, freeing all resources.
	Close()
}
