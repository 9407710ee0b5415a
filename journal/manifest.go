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
	"regexp"
	"strings"
	"time"

	"github.com/frictionlessdata/datapackage-go/datapackage"
)

// A DatasetResource describes one synced dataset inside a manifest.
type DatasetResource struct {
	DatasetId string
	RecordPid string
	Title     string
}

// Frictionless resource names may only contain lowercase alphanumerics and
// a few punctuation characters.
var invalidNameChars = regexp.MustCompile(`[^-a-z0-9._/]`)

func resourceName(datasetId string) string {
	return invalidNameChars.ReplaceAllString(strings.ToLower(datasetId), "-")
}

// NewManifest generates a Frictionless data package describing the datasets
// touched by a sync run.
func NewManifest(dmpId string, datasets []DatasetResource) (*datapackage.Package, error) {
	resources := make([]any, 0, len(datasets))
	for _, dataset := range datasets {
		path := dataset.RecordPid
		if path == "" {
			path = dataset.DatasetId
		}
		resource := map[string]any{
			"name": resourceName(dataset.DatasetId),
			"path": path,
		}
		if dataset.Title != "" {
			resource["title"] = dataset.Title
		}
		resources = append(resources, resource)
	}

	descriptor := map[string]any{
		"name":        "manifest",
		"resources":   resources,
		"created":     time.Now().Format(time.RFC3339),
		"profile":     "data-package",
		"keywords":    []any{"madmp", "sync", "manifest"},
		"description": "Datasets synced for DMP " + dmpId,
	}

	return datapackage.New(descriptor, ".")
}
