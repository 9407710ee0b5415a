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

// package converters defines the interface between DMP documents and the
// metadata models of the records they describe. A Converter knows one
// metadata model: it decides whether a dataset (or record) speaks that
// model, and translates between the two representations.
package converters

import (
	"github.com/FAIR-Data-Austria/invenio-madmp/auth"
	"github.com/FAIR-Data-Austria/invenio-madmp/madmp"
	"github.com/FAIR-Data-Austria/invenio-madmp/records"
)

// A Person is a contributor or creator in record-metadata form, produced by
// mapping the persons named in a DMP document.
type Person struct {
	Name         string            `json:"name"`
	Type         string            `json:"type"`
	GivenName    string            `json:"given_name,omitempty"`
	FamilyName   string            `json:"family_name,omitempty"`
	Identifiers  map[string]string `json:"identifiers,omitempty"`
	Affiliations []string          `json:"affiliations,omitempty"`
	Role         string            `json:"role,omitempty"`
}

// A Context carries the DMP-level person information shared by all datasets
// in a document, so that converters don't re-derive it per dataset.
type Context struct {
	Contact      string
	Creators     []Person
	Contributors []Person
}

// Converter translates between a DMP document's datasets and the records
// held by this repository, in both directions.
type Converter interface {
	// Name returns the identifier under which the converter is configured.
	Name() string

	// MatchesDataset checks whether this converter can handle the given
	// dataset, typically by inspecting its declared metadata standard.
	MatchesDataset(distribution madmp.Distribution, dataset madmp.Dataset, document *madmp.Document) bool

	// MatchesRecord checks whether this converter can handle the given record.
	MatchesRecord(record *records.Record) bool

	// ConvertDataset maps a single matching distribution of a dataset to the
	// metadata for a record.
	ConvertDataset(distribution madmp.Distribution, dataset madmp.Dataset, document *madmp.Document, context Context) (map[string]any, error)

	// ConvertRecord maps a record's metadata back to a dataset distribution.
	ConvertRecord(record *records.Record) (madmp.Distribution, error)

	// DatasetMetadataModel reports the metadata model used by the record (or,
	// given a nil record, by this converter) in DMP document form.
	DatasetMetadataModel(record *records.Record) (*madmp.Metadata, error)

	// CreateRecord creates a new draft record from the given metadata.
	CreateRecord(data map[string]any, identity auth.Identity) (*records.Record, error)

	// UpdateRecord replaces the record's metadata with the given data.
	UpdateRecord(record *records.Record, data map[string]any, identity auth.Identity) (*records.Record, error)
}
