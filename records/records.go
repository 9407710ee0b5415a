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

// Package records defines the contract against the repository's record
// store. The sync core never owns record content -- only the persistent
// identifiers pointing at records and the timing of create/update calls.
package records

import (
	"github.com/google/uuid"

	"github.com/FAIR-Data-Austria/invenio-madmp/auth"
)

// A Pid is a persistent identifier attached to a record (e.g. a recid, a
// DOI, or a handle).
type Pid struct {
	Value string `json:"value"`
	Type  string `json:"type"`
}

// A Record is the service's view of a repository record (or record draft):
// its persistent identifiers and its raw data, typically holding "access"
// and "metadata" objects. The record store owns everything else.
type Record struct {
	// UUID assigned to the record by the record store
	Id uuid.UUID `json:"id"`
	// whether the record is still an unpublished draft
	Draft bool `json:"draft"`
	// all persistent identifiers attached to the record
	Pids []Pid `json:"pids"`
	// the record's data, as understood by the record store
	Data map[string]any `json:"data"`
}

// Returns the URL of the metadata schema the record declares, or "" if it
// doesn't declare one.
func (r *Record) Schema() string {
	if schema, found := r.Data["$schema"].(string); found {
		return schema
	}
	return ""
}

// Service is the interface to the repository's record store.
type Service interface {
	// returns the record with the given UUID, or nil if there is none
	Get(id uuid.UUID) (*Record, error)
	// returns the record carrying a persistent identifier with the given
	// value, or nil if there is none
	ResolvePid(pidValue string) (*Record, error)
	// creates a new record draft with the given data under the given
	// identity; the returned record carries at least one persistent
	// identifier
	CreateDraft(data map[string]any, identity auth.Identity) (*Record, error)
	// replaces the data of the given record under the given identity
	Update(record *Record, data map[string]any, identity auth.Identity) (*Record, error)
}
