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

package rdm

import (
	"fmt"
	"strings"
)

// indicates that a DMP names no contributor whose role qualifies them as a
// record owner
type NoOwnersError struct {
}

func (e NoOwnersError) Error() string {
	return "The contributors contain no suitable record owners by role"
}

// This error type is returned when owner candidates can't be resolved to
// registered users and unknown contributors are not allowed.
type UnknownContributorsError struct {
	Emails []string
}

func (e UnknownContributorsError) Error() string {
	return fmt.Sprintf("The DMP contains unknown contributors: %s",
		strings.Join(e.Emails, ", "))
}

// indicates that none of the owner candidates is a registered user
type NoUsersError struct {
	Emails []string
}

func (e NoUsersError) Error() string {
	return fmt.Sprintf("No registered users were found for any e-mail address: %s",
		strings.Join(e.Emails, ", "))
}
