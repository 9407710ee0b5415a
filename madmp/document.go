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

// Package madmp defines the subset of the RDA Common Standard for machine
// actionable Data Management Plans that the service consumes and produces.
// See https://github.com/RDA-DMP-Common/RDA-DMP-Common-Standard for the full
// standard.
package madmp

// An external identifier together with its type (e.g. "doi", "orcid").
type Identifier struct {
	Identifier string `json:"identifier"`
	Type       string `json:"type"`
}

// the DMP's contact person
type Contact struct {
	Name      string     `json:"name,omitempty"`
	Mbox      string     `json:"mbox,omitempty"`
	ContactId Identifier `json:"contact_id,omitempty"`
}

// a contributor to the DMP; a contributor may hold several roles
type Contributor struct {
	Name          string     `json:"name,omitempty"`
	Mbox          string     `json:"mbox,omitempty"`
	ContributorId Identifier `json:"contributor_id,omitempty"`
	Role          []string   `json:"role,omitempty"`
}

// a license attached to a distribution
type License struct {
	LicenseRef string `json:"license_ref,omitempty"`
	StartDate  string `json:"start_date,omitempty"`
}

// the host descriptor of a distribution: the repository (or other system)
// serving the distribution
type Host struct {
	Title             string   `json:"title,omitempty"`
	URL               string   `json:"url,omitempty"`
	Description       string   `json:"description,omitempty"`
	Availability      string   `json:"availability,omitempty"`
	BackupFrequency   string   `json:"backup_frequency,omitempty"`
	BackupType        string   `json:"backup_type,omitempty"`
	CertifiedWith     string   `json:"certified_with,omitempty"`
	GeoLocation       string   `json:"geo_location,omitempty"`
	SupportVersioning string   `json:"support_versioning,omitempty"`
	StorageType       string   `json:"storage_type,omitempty"`
	PidSystem         []string `json:"pid_system,omitempty"`
}

// one hosted copy of a dataset
type Distribution struct {
	Title          string    `json:"title,omitempty"`
	Description    string    `json:"description,omitempty"`
	AccessURL      string    `json:"access_url,omitempty"`
	DownloadURL    string    `json:"download_url,omitempty"`
	ByteSize       int64     `json:"byte_size,omitempty"`
	DataAccess     string    `json:"data_access,omitempty"`
	Format         []string  `json:"format,omitempty"`
	License        []License `json:"license,omitempty"`
	PersonalData   string    `json:"personal_data,omitempty"`
	SensitiveData  string    `json:"sensitive_data,omitempty"`
	AvailableUntil string    `json:"available_until,omitempty"`
	Host           *Host     `json:"host,omitempty"`
}

// a metadata standard used by a dataset
type Metadata struct {
	Description        string     `json:"description,omitempty"`
	Language           string     `json:"language,omitempty"`
	MetadataStandardId Identifier `json:"metadata_standard_id"`
}

// one dataset entry of a DMP
type Dataset struct {
	DatasetId    Identifier     `json:"dataset_id"`
	Title        string         `json:"title,omitempty"`
	Description  string         `json:"description,omitempty"`
	Type         string         `json:"type,omitempty"`
	Language     string         `json:"language,omitempty"`
	PersonalData string         `json:"personal_data,omitempty"`
	Distribution []Distribution `json:"distribution,omitempty"`
	Metadata     []Metadata     `json:"metadata,omitempty"`
}

// A Document is the inbound maDMP document describing a Data Management Plan
// and the datasets it covers.
type Document struct {
	DmpId       Identifier    `json:"dmp_id"`
	Title       string        `json:"title,omitempty"`
	Description string        `json:"description,omitempty"`
	Language    string        `json:"language,omitempty"`
	Created     string        `json:"created,omitempty"`
	Modified    string        `json:"modified,omitempty"`
	Contact     Contact       `json:"contact,omitempty"`
	Contributor []Contributor `json:"contributor,omitempty"`
	Dataset     []Dataset     `json:"dataset,omitempty"`
}

// A DatasetFragment is the outbound counterpart of a Dataset: a partial
// dataset entry describing a single record hosted by this repository, sent
// to the DMP tool in update notifications.
type DatasetFragment struct {
	DatasetId    []Identifier   `json:"dataset_id,omitempty"`
	Distribution []Distribution `json:"distribution"`
	Metadata     []Metadata     `json:"metadata,omitempty"`
}
