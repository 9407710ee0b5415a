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
	"fmt"
	"strings"
)

// This error type is returned when an incoming DMP document fails schema
// validation. It carries all violations found, not just the first one.
type ValidationError struct {
	Messages []string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("The DMP document is not valid: %s",
		strings.Join(e.Messages, "; "))
}

// This error type is returned when a dataset lists more matching
// distributions than the configuration allows.
type PolicyViolationError struct {
	DatasetId string
	Count     int
}

func (e PolicyViolationError) Error() string {
	return fmt.Sprintf("The dataset '%s' has multiple (%d) matching distributions "+
		"on this host, but only one is allowed", e.DatasetId, e.Count)
}

// This error type is returned when a document names no DMP identifier.
type MissingDmpIdError struct {
}

func (e MissingDmpIdError) Error() string {
	return "The DMP document doesn't provide a DMP identifier"
}
