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

// package rdm converts between maDMP datasets and the Datacite-based
// metadata model used by RDM records.
package rdm

import (
	"strings"
	"time"

	"github.com/FAIR-Data-Austria/invenio-madmp/auth"
	"github.com/FAIR-Data-Austria/invenio-madmp/config"
	"github.com/FAIR-Data-Austria/invenio-madmp/convert"
	"github.com/FAIR-Data-Austria/invenio-madmp/converters"
	"github.com/FAIR-Data-Austria/invenio-madmp/licenses"
	"github.com/FAIR-Data-Austria/invenio-madmp/madmp"
	"github.com/FAIR-Data-Austria/invenio-madmp/records"
)

// metadata standard marker by which datasets advertise the model we speak
const dataciteMarker = "schema.datacite.org"

// schema reported for records that don't name one themselves
const defaultRecordSchema = "records/record-v1.0.0.json"

// A Converter maps between maDMP datasets and RDM record metadata.
type Converter struct {
	conf    *config.Config
	service records.Service
	users   UserDirectory
}

func NewConverter(conf *config.Config, service records.Service, users UserDirectory) *Converter {
	return &Converter{
		conf:    conf,
		service: service,
		users:   users,
	}
}

func (c *Converter) Name() string {
	return "rdm"
}

// MatchesDataset reports whether the dataset declares a Datacite-based
// metadata standard.
func (c *Converter) MatchesDataset(_ madmp.Distribution, dataset madmp.Dataset, _ *madmp.Document) bool {
	for _, metadata := range dataset.Metadata {
		if strings.Contains(metadata.MetadataStandardId.Identifier, dataciteMarker) {
			return true
		}
	}
	return false
}

func (c *Converter) MatchesRecord(record *records.Record) bool {
	return record != nil
}

func (c *Converter) mapAccessRight(distribution madmp.Distribution) string {
	if distribution.DataAccess != "" {
		return distribution.DataAccess
	}
	return c.conf.Sync.DefaultDataAccess
}

func (c *Converter) mapResourceType(dataset madmp.Dataset) map[string]any {
	resourceType, found := c.conf.Sync.ResourceTypeTranslations[dataset.Type]
	if !found {
		resourceType = "other"
	}
	return map[string]any{
		"type":    resourceType,
		"subtype": c.conf.Sync.ResourceSubtypeTranslations[dataset.Type],
	}
}

func (c *Converter) mapLanguage(dataset madmp.Dataset) string {
	// both the RDA Common Standard and RDM records use ISO 639-3
	if dataset.Language != "" {
		return dataset.Language
	}
	return c.conf.Sync.DefaultLanguage
}

func (c *Converter) mapTitle(dataset madmp.Dataset) map[string]any {
	title := dataset.Title
	if title == "" {
		title = "[No Title]"
	}
	return map[string]any{
		"title": title,
		"type":  "MainTitle",
		"lang":  c.mapLanguage(dataset),
	}
}

func (c *Converter) mapDescription(dataset madmp.Dataset) map[string]any {
	// possible description types: "Abstract", "Methods", "SeriesInformation",
	// "TableOfContents", "TechnicalInfo", "Other"
	description := dataset.Description
	if description == "" {
		description = "[No Description]"
	}
	return map[string]any{
		"description": description,
		"type":        "Other",
		"lang":        c.mapLanguage(dataset),
	}
}

func mapLicense(reference madmp.License) map[string]any {
	license, found := licenses.Match(reference.LicenseRef)
	if !found {
		license = licenses.License{Identifier: "Other", Name: "Other", Scheme: "Other"}
	}
	return license.ToMetadata()
}

// ConvertDataset maps a dataset distribution to the metadata for an RDM
// record.
func (c *Converter) ConvertDataset(distribution madmp.Distribution, dataset madmp.Dataset,
	document *madmp.Document, context converters.Context) (map[string]any, error) {

	accessRight := c.mapAccessRight(distribution)

	licenseList := make([]any, 0, len(distribution.License))
	var earliestStart *time.Time
	for _, reference := range distribution.License {
		licenseList = append(licenseList, mapLicense(reference))
		start, err := parseDate(reference.StartDate)
		if err != nil {
			continue
		}
		if earliestStart == nil || start.Before(*earliestStart) {
			earliestStart = &start
		}
	}

	metadata := map[string]any{
		"contact":          context.Contact,
		"resource_type":    c.mapResourceType(dataset),
		"creators":         context.Creators,
		"titles":           []any{c.mapTitle(dataset)},
		"contributors":     context.Contributors,
		"dates":            []any{},
		"language":         c.mapLanguage(dataset),
		"licenses":         licenseList,
		"descriptions":     []any{c.mapDescription(dataset)},
		"publication_date": time.Now().UTC().Format(time.RFC3339),
	}

	if earliestStart != nil && time.Now().Before(*earliestStart) {
		// the earliest license start date is in the future:
		// that means there's an embargo
		metadata["embargo_date"] = earliestStart.Format("2006-01-02")
	}

	access := map[string]any{
		"access_right":        accessRight,
		"files_restricted":    accessRight != "open",
		"metadata_restricted": false,
	}

	owners, createdBy, err := c.resolveOwners(document)
	if err != nil {
		return nil, err
	}
	access["owners"] = owners
	access["created_by"] = createdBy

	return map[string]any{
		"access":   access,
		"metadata": metadata,
	}, nil
}

// resolveOwners parses the record owners from the document's contributors,
// based on their roles.
func (c *Converter) resolveOwners(document *madmp.Document) (owners []string, createdBy string, err error) {
	relevant := convert.FilterContributors(document.Contributor, c.conf.Sync)
	if len(relevant) == 0 {
		return nil, "", &NoOwnersError{}
	}

	var emails, unknown []string
	var users []*User
	for _, contributor := range relevant {
		if contributor.Mbox == "" {
			continue
		}
		emails = append(emails, contributor.Mbox)
		user, err := c.users.UserByEmail(contributor.Mbox)
		if err != nil {
			return nil, "", err
		}
		if user == nil {
			unknown = append(unknown, contributor.Mbox)
		} else {
			users = append(users, user)
		}
	}

	if len(unknown) > 0 && !c.conf.Sync.AllowUnknownContributors {
		return nil, "", &UnknownContributorsError{Emails: unknown}
	}
	if len(users) == 0 {
		return nil, "", &NoUsersError{Emails: emails}
	}

	seen := make(map[string]bool)
	for _, user := range users {
		if !seen[user.Id] {
			seen[user.Id] = true
			owners = append(owners, user.Id)
		}
	}

	createdBy = c.conf.Sync.RecordCreatorUserId
	if createdBy == "" {
		createdBy = users[0].Id
	}
	return owners, createdBy, nil
}

func (c *Converter) CreateRecord(data map[string]any, identity auth.Identity) (*records.Record, error) {
	return c.service.CreateDraft(data, identity)
}

// UpdateRecord merges the new data into the record's existing metadata.
// Ownership information is never overwritten from DMP documents.
func (c *Converter) UpdateRecord(record *records.Record, data map[string]any,
	identity auth.Identity) (*records.Record, error) {

	merged := make(map[string]any, len(record.Data))
	for key, value := range record.Data {
		merged[key] = value
	}

	if newAccess, hasAccess := data["access"].(map[string]any); hasAccess {
		access, _ := merged["access"].(map[string]any)
		if access == nil {
			access = map[string]any{}
		}
		for key, value := range newAccess {
			if key == "owners" || key == "created_by" {
				continue
			}
			access[key] = value
		}
		merged["access"] = access
	}

	if newMetadata, hasMetadata := data["metadata"].(map[string]any); hasMetadata {
		metadata, _ := merged["metadata"].(map[string]any)
		if metadata == nil {
			metadata = map[string]any{}
		}
		for key, value := range newMetadata {
			metadata[key] = value
		}
		merged["metadata"] = metadata
	}

	return c.service.Update(record, merged, identity)
}

// ConvertRecord maps a record's metadata back to a maDMP dataset
// distribution.
func (c *Converter) ConvertRecord(record *records.Record) (madmp.Distribution, error) {
	metadata, _ := record.Data["metadata"].(map[string]any)
	access, _ := record.Data["access"].(map[string]any)

	distribution := madmp.Distribution{
		Title:       preferEnglish(metadata, "titles", "title"),
		Description: preferEnglish(metadata, "descriptions", "description"),
	}
	if accessRight, hasIt := access["access_right"].(string); hasIt {
		distribution.DataAccess = accessRight
	}
	if resourceType, hasIt := metadata["resource_type"].(map[string]any); hasIt {
		if typeName, hasType := resourceType["type"].(string); hasType && typeName != "" {
			distribution.Format = []string{typeName}
		}
	}

	// licenses start at the embargo date, if one is set, or else at the
	// record's publication date
	startDate := time.Now().UTC()
	if date, err := parseDate(stringField(metadata, "publication_date")); err == nil {
		startDate = date
	}
	if date, err := parseDate(stringField(metadata, "embargo_date")); err == nil {
		startDate = date
	}

	licenseEntries, _ := metadata["licenses"].([]any)
	for _, entry := range licenseEntries {
		license, isMap := entry.(map[string]any)
		if !isMap {
			continue
		}
		distribution.License = append(distribution.License, madmp.License{
			LicenseRef: stringField(license, "uri"),
			StartDate:  startDate.Format("2006-01-02"),
		})
	}

	return distribution, nil
}

// DatasetMetadataModel reports the metadata model used by the record in DMP
// document form.
func (c *Converter) DatasetMetadataModel(record *records.Record) (*madmp.Metadata, error) {
	schema := defaultRecordSchema
	if record != nil && record.Schema() != "" {
		schema = record.Schema()
	}

	identifier := schema
	if !strings.HasPrefix(schema, "http://") && !strings.HasPrefix(schema, "https://") {
		identifier = strings.TrimSuffix(c.conf.Host.URL, "/") + "/schemas/" + schema
	}

	return &madmp.Metadata{
		Description: "Datacite-based metadata model for RDM records",
		Language:    "eng",
		MetadataStandardId: madmp.Identifier{
			Identifier: identifier,
			Type:       "url",
		},
	}, nil
}

func stringField(data map[string]any, key string) string {
	value, _ := data[key].(string)
	return value
}

// preferEnglish picks the English entry of a title/description list if there
// is one, or else the first entry.
func preferEnglish(metadata map[string]any, listKey, valueKey string) string {
	entries, _ := metadata[listKey].([]any)
	var first string
	for i, entry := range entries {
		values, isMap := entry.(map[string]any)
		if !isMap {
			continue
		}
		if i == 0 {
			first = stringField(values, valueKey)
		}
		if stringField(values, "lang") == "eng" {
			return stringField(values, valueKey)
		}
	}
	return first
}

// parseDate accepts the date formats that DMP documents use in practice.
func parseDate(value string) (time.Time, error) {
	var lastErr error
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		date, err := time.Parse(layout, value)
		if err == nil {
			return date, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
