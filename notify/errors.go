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

package notify

import "fmt"

// indicates an HTTPS request was redirected to an insecure HTTP endpoint
type DowngradedRedirectError struct {
	Endpoint string
}

func (e DowngradedRedirectError) Error() string {
	return fmt.Sprintf("The request was redirected to an insecure endpoint: %s", e.Endpoint)
}

// This error type is returned when the DMP tool rejects or fails a
// notification request.
type NotificationError struct {
	Endpoint string
	Message  string
}

func (e NotificationError) Error() string {
	return fmt.Sprintf("A notification to '%s' failed: %s", e.Endpoint, e.Message)
}

// indicates a notification couldn't be sent for lack of an addressable
// subject (no usable endpoint or dataset identifier)
type UnaddressableError struct {
	DatasetId string
}

func (e UnaddressableError) Error() string {
	return fmt.Sprintf("The dataset '%s' can't be addressed at the DMP tool", e.DatasetId)
}
