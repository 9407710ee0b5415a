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
	"regexp"
	"strings"

	"github.com/FAIR-Data-Austria/invenio-madmp/config"
)

// identifier types known to the RDA Common Standard for dataset_id entries;
// everything else degrades to "other"
var datasetIdTypes = []string{"handle", "doi", "ark", "url"}

var urlIdentifierPattern = regexp.MustCompile(`https?://.*?/(.*)`)

// Reports whether the given distribution is hosted by this repository, i.e.
// whether its host's title or URL matches the configured host settings.
func DistributionMatchesUs(dist Distribution, host config.HostConfig) bool {
	if dist.Host == nil {
		return false
	}
	titleMatches := host.Title != "" && dist.Host.Title == host.Title
	urlMatches := host.URL != "" && dist.Host.URL == host.URL
	return titleMatches || urlMatches
}

// Returns the distributions of the given dataset that are hosted by this
// repository.
func MatchingDistributions(dataset Dataset, host config.HostConfig) []Distribution {
	var matching []Distribution
	for _, dist := range dataset.Distribution {
		if DistributionMatchesUs(dist, host) {
			matching = append(matching, dist)
		}
	}
	return matching
}

// Normalizes the type of the given identifier so that it follows the RDA
// Common Standard for dataset_id entries. Unknown types are mapped to
// "other" rather than rejected.
func NormalizeIdentifier(id Identifier) Identifier {
	idType := strings.ToLower(strings.TrimSpace(id.Type))
	found := false
	for _, t := range datasetIdTypes {
		if idType == t {
			found = true
			break
		}
	}
	if !found {
		idType = "other"
	}
	return Identifier{
		Identifier: id.Identifier,
		Type:       idType,
	}
}

// Strips the URL prefix from identifiers that carry one
// (e.g. "https://doi.org/10.1234/foo" becomes "10.1234/foo").
func StripIdentifier(identifier string) string {
	match := urlIdentifierPattern.FindStringSubmatch(identifier)
	if match != nil {
		return match[1]
	}
	return identifier
}
