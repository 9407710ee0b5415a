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

package licenses

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchByIdentifier(t *testing.T) {
	assert := assert.New(t)
	license, found := Match("Apache-2.0")
	assert.True(found)
	assert.Equal("Apache-2.0", license.Identifier)
}

func TestMatchIsCaseInsensitive(t *testing.T) {
	assert := assert.New(t)
	license, found := Match("apache-2.0")
	assert.True(found)
	assert.Equal("Apache-2.0", license.Identifier)
}

func TestMatchByShortIdentifier(t *testing.T) {
	assert := assert.New(t)
	license, found := Match("GPL-3")
	assert.True(found)
	assert.Equal("GPL-3.0", license.Identifier)
}

func TestMatchByName(t *testing.T) {
	assert := assert.New(t)
	license, found := Match("MIT License")
	assert.True(found)
	assert.Equal("MIT", license.Identifier)
}

func TestMatchByScheme(t *testing.T) {
	assert := assert.New(t)
	license, found := Match("BSD-3")
	assert.True(found)
	assert.Equal("BSD-3-Clause", license.Identifier)
}

func TestMatchByURI(t *testing.T) {
	assert := assert.New(t)
	license, found := Match("https://opensource.org/licenses/MIT")
	assert.True(found)
	assert.Equal("MIT", license.Identifier)
}

func TestMatchByAlternateURIScheme(t *testing.T) {
	assert := assert.New(t)
	license, found := Match("http://creativecommons.org/licenses/by/4.0/")
	assert.True(found)
	assert.Equal("CC BY", license.Identifier)
}

func TestMatchByURIWithoutTrailingSlash(t *testing.T) {
	assert := assert.New(t)
	license, found := Match("https://creativecommons.org/licenses/by-nc/4.0")
	assert.True(found)
	assert.Equal("CC BY-NC", license.Identifier)
}

func TestMatchByDashedCreativeCommonsIdentifier(t *testing.T) {
	assert := assert.New(t)
	license, found := Match("cc-by-nc-sa")
	assert.True(found)
	assert.Equal("CC BY-NC-SA", license.Identifier)
}

func TestDashedIdentifierOnlyAppliesToCreativeCommons(t *testing.T) {
	assert := assert.New(t)
	mit, _ := Match("MIT")
	assert.False(mit.Matches("m-i-t"))
}

func TestMatchUnknownLicense(t *testing.T) {
	assert := assert.New(t)
	_, found := Match("Proprietary-EULA-1.0")
	assert.False(found)
}

func TestMatchAnyOfSeveralValues(t *testing.T) {
	assert := assert.New(t)
	license, found := Match("something else entirely", "EPL-2.0")
	assert.True(found)
	assert.Equal("EPL-2.0", license.Identifier)
}

func TestToMetadata(t *testing.T) {
	assert := assert.New(t)
	license, _ := Match("CC0")
	metadata := license.ToMetadata()
	assert.Equal("Public Domain Dedication", metadata["license"])
	assert.Equal("https://creativecommons.org/publicdomain/zero/1.0/", metadata["uri"])
	assert.Equal("CC0", metadata["identifier"])
	assert.Equal("CC0", metadata["scheme"])
}
