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

package madmp

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// the RDA DMP Common Standard JSON Schema shipped with the service
//
//go:embed schema/madmp-schema-1.0.json
var schemaData string

// A SchemaValidator checks maDMP documents against the RDA DMP Common
// Standard JSON Schema. It reports all violations found in a document, not
// just the first one.
type SchemaValidator struct {
	schema *jsonschema.Schema
}

// Creates a validator for the schema shipped with the service.
func NewSchemaValidator() (*SchemaValidator, error) {
	compiler := jsonschema.NewCompiler()
	err := compiler.AddResource("madmp-schema-1.0.json", strings.NewReader(schemaData))
	if err != nil {
		return nil, err
	}
	schema, err := compiler.Compile("madmp-schema-1.0.json")
	if err != nil {
		return nil, err
	}
	return &SchemaValidator{schema: schema}, nil
}

// Validates the given raw maDMP document (the "dmp" object itself, without a
// wrapper), returning the list of all violation messages. An empty list means
// the document is valid.
func (v *SchemaValidator) Validate(document json.RawMessage) []string {
	var doc any
	err := json.Unmarshal(document, &doc)
	if err != nil {
		return []string{fmt.Sprintf("invalid JSON: %s", err)}
	}

	err = v.schema.Validate(map[string]any{"dmp": doc})
	if err == nil {
		return nil
	}

	var validationErr *jsonschema.ValidationError
	if errors.As(err, &validationErr) {
		return collectMessages(validationErr, nil)
	}
	return []string{err.Error()}
}

// gathers the messages of all leaf causes of a validation error
func collectMessages(err *jsonschema.ValidationError, messages []string) []string {
	if len(err.Causes) == 0 {
		location := err.InstanceLocation
		if location == "" {
			location = "/"
		}
		return append(messages, fmt.Sprintf("%s: %s", location, err.Message))
	}
	for _, cause := range err.Causes {
		messages = collectMessages(cause, messages)
	}
	return messages
}
