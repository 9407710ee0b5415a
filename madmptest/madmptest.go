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

// This package contains testing utilities for the maDMP integration service.
package madmptest

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// Enables DEBUG log messages for the service's structured log (slog).
func EnableDebugLogging() {
	logLevel := new(slog.LevelVar)
	logLevel.Set(slog.LevelDebug)
	h := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})
	slog.SetDefault(slog.New(h))
}

// Builds a maDMP document with the given dmp_id, a contact, a single
// contributor, and the given dataset blocks. The document conforms to the
// RDA DMP Common Standard schema.
func Document(dmpId string, datasets ...string) json.RawMessage {
	doc := fmt.Sprintf(`{
		"dmp_id": {"identifier": "%s", "type": "other"},
		"title": "Test DMP",
		"contact": {"name": "Jane Doe", "mbox": "jane.doe@example.org"},
		"contributor": [
			{"name": "Jane Doe", "mbox": "jane.doe@example.org", "role": ["data manager"]}
		],
		"dataset": [%s]
	}`, dmpId, strings.Join(datasets, ","))
	return json.RawMessage(doc)
}

// Builds a dataset block with the given dataset_id and distribution blocks.
func Dataset(datasetId string, distributions ...string) string {
	return fmt.Sprintf(`{
		"dataset_id": {"identifier": "%s", "type": "doi"},
		"title": "Gauge data",
		"type": "dataset",
		"language": "eng",
		"metadata": [
			{"metadata_standard_id": {"identifier": "https://schema.datacite.org/meta/kernel-4.3/", "type": "url"}}
		],
		"distribution": [%s]
	}`, datasetId, strings.Join(distributions, ","))
}

// Builds a distribution block with the given access right, hosted by the
// repository with the given title and URL.
func Distribution(dataAccess, hostTitle, hostUrl string) string {
	return fmt.Sprintf(`{
		"title": "Gauge data",
		"data_access": "%s",
		"host": {"title": "%s", "url": "%s"}
	}`, dataAccess, hostTitle, hostUrl)
}

// Builds a dataset block with the given dataset_id and a single open
// distribution hosted by the repository with the given title and URL.
func HostedDataset(datasetId, hostTitle, hostUrl string) string {
	return Dataset(datasetId, Distribution("open", hostTitle, hostUrl))
}
