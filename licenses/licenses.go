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

// package licenses identifies well-known open licenses from the free-form
// license references found in data management plans. License references come
// in many shapes (SPDX identifiers, full names, license text URLs), so each
// known license carries the set of spellings it answers to.
package licenses

import "strings"

// A License describes a single well-known license and the values (identifier,
// name, URI and variants thereof) under which it can be referenced.
type License struct {
	Identifier string
	Name       string
	Scheme     string
	URI        string

	// dashed CC-style identifier ("cc-by-nc"), empty for non-CC licenses
	dashedIdentifier string
	valuesToCheck    []string
}

const uriTemplate = "https://opensource.org/licenses/"

func newLicense(identifier, name, uri, scheme string) License {
	if scheme == "" {
		scheme = identifier
	}
	if uri == "" {
		uri = uriTemplate + identifier
	}
	license := License{
		Identifier: identifier,
		Name:       name,
		Scheme:     scheme,
		URI:        uri,
	}

	shortIdentifier := strings.TrimSuffix(identifier, ".0")
	altURI := ""
	if after, found := strings.CutPrefix(uri, "http://"); found {
		altURI = "https://" + after
	} else if after, found := strings.CutPrefix(uri, "https://"); found {
		altURI = "http://" + after
	}

	license.valuesToCheck = []string{
		identifier,
		shortIdentifier,
		uri,
		altURI,
		scheme,
		name,
	}
	if trimmed, found := strings.CutSuffix(uri, "/"); found {
		license.valuesToCheck = append(license.valuesToCheck, trimmed)
	}
	return license
}

func newCCLicense(identifier, name, uri string) License {
	license := newLicense(identifier, name, uri, "")
	license.dashedIdentifier = strings.ToLower(strings.ReplaceAll(identifier, " ", "-"))
	return license
}

// Matches reports whether any of the given values refers to this license.
// The comparison is case-insensitive and covers the identifier (with and
// without a trailing ".0"), URI (both http and https, with and without a
// trailing slash), scheme and full name. Creative Commons licenses
// additionally answer to their dashed identifier ("CC BY-NC" vs "cc-by-nc").
func (l License) Matches(values ...string) bool {
	for _, value := range values {
		lowered := strings.ToLower(value)
		for _, candidate := range l.valuesToCheck {
			if lowered == strings.ToLower(candidate) {
				return true
			}
		}
		if l.dashedIdentifier != "" && lowered == l.dashedIdentifier {
			return true
		}
	}
	return false
}

// ToMetadata renders the license the way record metadata expects it.
func (l License) ToMetadata() map[string]any {
	return map[string]any{
		"license":    l.Name,
		"uri":        l.URI,
		"identifier": l.Identifier,
		"scheme":     l.Scheme,
	}
}

// Known lists all licenses this package can identify.
var Known = []License{
	newLicense("0BSD", "Zero-Clause BSD", "", ""),
	newLicense("BSD-1-Clause", "1-Clause BSD License", "", "BSD-1"),
	newLicense("BSD-2-Clause", "2-Clause BSD License", "", "BSD-2"),
	newLicense("BSD-3-Clause", "3-Clause BSD License", "", "BSD-3"),
	newLicense("Apache-2.0", "Apache License, Version 2.0", "", ""),
	newLicense("GPL-2.0", "GNU General Public License Version 2", "", ""),
	newLicense("GPL-3.0", "GNU General Public License Version 3", "", ""),
	newLicense("AGPL-3.0", "GNU Affero General Public License Version 3", "", ""),
	newLicense("LGPL-2.0", "GNU Library General Public License Version 2", "", ""),
	newLicense("LGPL-2.1", "GNU Lesser General Public License Version 2.1", "", ""),
	newLicense("LGPL-3.0", "GNU Lesser General Public License Version 3", "", ""),
	newLicense("MIT", "MIT License", "", ""),
	newLicense("MIT-0", "MIT No Attribution License", "", ""),
	newLicense("MPL-2.0", "Mozilla Public License 2.0", "", ""),
	newLicense("CDDL-1.0", "Common Development and Distribution License 1.0", "", ""),
	newLicense("EPL-2.0", "Eclipse Public License Version 2.0", "", ""),
	newLicense("unlicense", "The Unlicense", "", ""),
	newCCLicense("CC0", "Public Domain Dedication", "https://creativecommons.org/publicdomain/zero/1.0/"),
	newCCLicense("CC BY", "Attribution", "https://creativecommons.org/licenses/by/4.0/"),
	newCCLicense("CC BY-SA", "Attribution-ShareAlike", "https://creativecommons.org/licenses/by-sa/4.0/"),
	newCCLicense("CC BY-ND", "Attribution-NoDerivs", "https://creativecommons.org/licenses/by-nd/4.0/"),
	newCCLicense("CC BY-NC", "Attribution-NonCommercial", "https://creativecommons.org/licenses/by-nc/4.0/"),
	newCCLicense("CC BY-NC-SA", "Attribution-NonCommercial-ShareAlike", "https://creativecommons.org/licenses/by-nc-sa/4.0/"),
	newCCLicense("CC BY-NC-ND", "Attribution-NonCommercial-NoDerivs", "https://creativecommons.org/licenses/by-nc-nd/4.0/"),
}

// Match searches the known licenses for one matching any of the given
// values. Its second return value is false if no known license matches.
func Match(values ...string) (License, bool) {
	for _, license := range Known {
		if license.Matches(values...) {
			return license, true
		}
	}
	return License{}, false
}
