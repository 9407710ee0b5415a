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

package converters

import (
	"github.com/FAIR-Data-Austria/invenio-madmp/madmp"
	"github.com/FAIR-Data-Austria/invenio-madmp/records"
)

// A Registry holds the configured converters in registration order and picks
// the first one that accepts a given dataset or record. The fallback
// converter answers whenever no registered converter does, so lookups by
// dataset always succeed.
type Registry struct {
	converters []Converter
	fallback   Converter
}

// NewRegistry creates a registry with the given fallback converter. The
// fallback is mandatory.
func NewRegistry(fallback Converter) (*Registry, error) {
	if fallback == nil {
		return nil, &NoFallbackError{}
	}
	return &Registry{fallback: fallback}, nil
}

// Register appends a converter to the scan order.
func (r *Registry) Register(converter Converter) error {
	name := converter.Name()
	if name == r.fallback.Name() {
		return &DuplicateConverterError{Name: name}
	}
	for _, registered := range r.converters {
		if registered.Name() == name {
			return &DuplicateConverterError{Name: name}
		}
	}
	r.converters = append(r.converters, converter)
	return nil
}

// Fallback returns the registry's fallback converter.
func (r *Registry) Fallback() Converter {
	return r.fallback
}

// ForDataset returns the first registered converter that accepts the given
// dataset, or the fallback if none does.
func (r *Registry) ForDataset(distribution madmp.Distribution, dataset madmp.Dataset, document *madmp.Document) Converter {
	for _, converter := range r.converters {
		if converter.MatchesDataset(distribution, dataset, document) {
			return converter
		}
	}
	return r.fallback
}

// ForRecord returns the first registered converter that accepts the given
// record, or the fallback if it does. Unlike dataset lookups, record lookups
// can fail: a record may use a metadata model none of the converters speak.
func (r *Registry) ForRecord(record *records.Record) (Converter, error) {
	for _, converter := range r.converters {
		if converter.MatchesRecord(record) {
			return converter, nil
		}
	}
	if r.fallback.MatchesRecord(record) {
		return r.fallback, nil
	}
	return nil, &NoConverterError{Subject: "record " + record.Id.String()}
}
