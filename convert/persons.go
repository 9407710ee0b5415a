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
	"regexp"

	"github.com/FAIR-Data-Austria/invenio-madmp/config"
	"github.com/FAIR-Data-Austria/invenio-madmp/converters"
	"github.com/FAIR-Data-Austria/invenio-madmp/madmp"
)

// full names come either as "Given Family" or as "Family, Given"; the comma
// form is checked first because the plain form would also match it
var commaNamePattern = regexp.MustCompile(`^(\S+),\s+(\S+)$`)
var plainNamePattern = regexp.MustCompile(`^(\S+)\s+(\S+)$`)

// IsRelevantContributor reports whether a contributor with the given role
// qualifies as a record owner. An empty configured role list means that every
// role qualifies.
func IsRelevantContributor(role string, sync config.SyncConfig) bool {
	if len(sync.RelevantContributorRoles) == 0 {
		return true
	}
	for _, relevant := range sync.RelevantContributorRoles {
		if role == relevant {
			return true
		}
	}
	return false
}

// FilterContributors returns the contributors holding at least one role that
// qualifies them as record owners.
func FilterContributors(contributors []madmp.Contributor, sync config.SyncConfig) []madmp.Contributor {
	var filtered []madmp.Contributor
	for _, contributor := range contributors {
		for _, role := range contributor.Role {
			if IsRelevantContributor(role, sync) {
				filtered = append(filtered, contributor)
				break
			}
		}
	}
	return filtered
}

// MapContact returns the contact person's e-mail address, falling back to the
// configured default.
func MapContact(contact madmp.Contact, sync config.SyncConfig) string {
	if contact.Mbox != "" {
		return contact.Mbox
	}
	return sync.DefaultContact
}

// MapCreator maps a DMP contributor to a record creator.
func MapCreator(contributor madmp.Contributor, sync config.SyncConfig) converters.Person {
	return mapPerson(contributor, "creator", sync)
}

// MapContributor maps a DMP contributor to a record contributor, keeping the
// role at the given index (a contributor may hold several roles).
func MapContributor(contributor madmp.Contributor, roleIdx int, sync config.SyncConfig) converters.Person {
	person := mapPerson(contributor, "contributor", sync)
	if roleIdx < len(contributor.Role) {
		person.Role = contributor.Role[roleIdx]
	}
	return person
}

func mapPerson(contributor madmp.Contributor, field string, sync config.SyncConfig) converters.Person {
	identifiers := map[string]string{}
	cid := contributor.ContributorId
	if cid.Identifier != "" && sync.IdentifierTypeAllowed(cid.Type, field) {
		identifiers[cid.Type] = cid.Identifier
	}

	person := converters.Person{
		Name:         contributor.Name,
		Type:         "Personal",
		Identifiers:  identifiers,
		Affiliations: []string{},
	}
	person.GivenName, person.FamilyName = splitName(contributor.Name)
	return person
}

// splitName tries to separate a full name into its given and family parts by
// applying simple patterns. Names that don't fit either pattern are left
// unsplit.
func splitName(name string) (givenName, familyName string) {
	if match := commaNamePattern.FindStringSubmatch(name); match != nil {
		return match[2], match[1]
	}
	if match := plainNamePattern.FindStringSubmatch(name); match != nil {
		return match[1], match[2]
	}
	return "", ""
}

// BuildContext derives the record-level person information from a DMP
// document once, for reuse across all of its datasets.
func BuildContext(document *madmp.Document, sync config.SyncConfig) converters.Context {
	context := converters.Context{
		Contact: MapContact(document.Contact, sync),
	}
	for _, contributor := range document.Contributor {
		context.Creators = append(context.Creators, MapCreator(contributor, sync))
		context.Contributors = append(context.Contributors, MapContributor(contributor, 0, sync))
	}
	return context
}
