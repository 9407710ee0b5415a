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

import "fmt"

// This error type is returned when no registered converter (nor the fallback)
// accepts a dataset or record.
type NoConverterError struct {
	Subject string
}

func (e NoConverterError) Error() string {
	return fmt.Sprintf("No converter found for %s", e.Subject)
}

// indicates a registry was built without a usable fallback converter
type NoFallbackError struct {
}

func (e NoFallbackError) Error() string {
	return "A converter registry requires a fallback converter"
}

// This error type is returned when a converter name is registered twice.
type DuplicateConverterError struct {
	Name string
}

func (e DuplicateConverterError) Error() string {
	return fmt.Sprintf("A converter named '%s' is already registered", e.Name)
}
