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

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// A Config holds all settings for the maDMP integration service. It is read
// from a YAML file once at startup and then threaded explicitly through the
// constructors of all components that need it.
type Config struct {
	Service  ServiceConfig  `yaml:"service"`
	Host     HostConfig     `yaml:"host"`
	Sync     SyncConfig     `yaml:"sync"`
	DMPTool  DMPToolConfig  `yaml:"dmp_tool"`
	Database DatabaseConfig `yaml:"database"`
}

// settings for the REST service itself
type ServiceConfig struct {
	// port on which the service listens
	Port int `yaml:"port"`
	// maximum number of allowed incoming connections
	MaxConnections int `yaml:"max_connections"`
	// directory in which the service keeps its data files (databases,
	// journals, access tokens)
	DataDirectory string `yaml:"data_directory"`
	// fernet key(s) used to verify access tokens, separated by whitespace
	Secret string `yaml:"secret"`
	// whether debug logging is enabled
	Debug bool `yaml:"debug"`
}

// descriptive settings for the repository itself, as reported to the DMP tool
// in the "host" block of outgoing dataset distributions. Empty fields are
// omitted from the host block.
type HostConfig struct {
	Title             string   `yaml:"title"`
	URL               string   `yaml:"url"`
	Description       string   `yaml:"description"`
	Availability      string   `yaml:"availability"`
	BackupFrequency   string   `yaml:"backup_frequency"`
	BackupType        string   `yaml:"backup_type"`
	CertifiedWith     string   `yaml:"certified_with"`
	GeoLocation       string   `yaml:"geo_location"`
	SupportVersioning string   `yaml:"support_versioning"`
	StorageType       string   `yaml:"storage_type"`
	PidSystem         []string `yaml:"pid_system"`
}

// settings governing how maDMP documents are mapped to records
type SyncConfig struct {
	// contact address used when a DMP doesn't specify one
	DefaultContact string `yaml:"default_contact"`
	// language used for titles/descriptions when the dataset doesn't name one
	DefaultLanguage string `yaml:"default_language"`
	// access right used when a distribution doesn't name one
	DefaultDataAccess string `yaml:"default_data_access"`
	// contributor roles that qualify a contributor as a record owner;
	// an empty list means that every role qualifies
	RelevantContributorRoles []string `yaml:"relevant_contributor_roles"`
	// identifier types (e.g. "Orcid") that may be attached to person records,
	// keyed by the field they apply to ("creator", "contributor"); an absent
	// key falls back to the "default" entry
	AllowedIdentifierTypes map[string][]string `yaml:"allowed_identifier_types"`
	// whether a dataset may list several distributions hosted by us
	AllowMultipleDistributions bool `yaml:"allow_multiple_distributions"`
	// whether record owners may be omitted when no contributor matches a
	// registered user
	AllowUnknownContributors bool `yaml:"allow_unknown_contributors"`
	// user id recorded as the creator of new record drafts; empty means the
	// first resolved owner is used
	RecordCreatorUserId string `yaml:"record_creator_user_id"`
	// translation tables for maDMP dataset types to repository resource types
	ResourceTypeTranslations    map[string]string `yaml:"resource_type_translations"`
	ResourceSubtypeTranslations map[string]string `yaml:"resource_subtype_translations"`
	// ordered list of converter names tried for each dataset/record
	Converters []string `yaml:"converters"`
	// converter used when none of the listed converters matches
	FallbackConverter string `yaml:"fallback_converter"`
}

// settings for communicating with the maDMP tool
type DMPToolConfig struct {
	// endpoint for a single dataset, with a %s or {} placeholder for its id
	DatasetEndpoint string `yaml:"dataset_endpoint"`
	// endpoint for datasets whose ids cannot be embedded in a URL
	DatasetsEndpoint string `yaml:"datasets_endpoint"`
	// endpoint for a single DMP, with a %s or {} placeholder for its id
	DMPEndpoint string `yaml:"dmp_endpoint"`
	// bearer token sent along with every notification
	Token string `yaml:"token"`
	// whether notification failures are returned to direct callers instead of
	// being logged and swallowed
	RaiseErrors bool `yaml:"raise_errors"`
}

// settings for the DMP/dataset database
type DatabaseConfig struct {
	// name of the SQLite database file, relative to the data directory
	File string `yaml:"file"`
}

// This helper validates the given service parameters, returning an error
// indicating success or failure.
func validateServiceParameters(params ServiceConfig) error {
	if params.Port < 0 || params.Port > 65535 {
		return fmt.Errorf("Invalid port: %d (must be 0-65535)", params.Port)
	}
	if params.MaxConnections <= 0 {
		return fmt.Errorf("Invalid max_connections: %d (must be positive)",
			params.MaxConnections)
	}
	return nil
}

// This helper validates the parsed configuration, returning an error that
// indicates success or failure.
func validateConfig(conf *Config) error {
	err := validateServiceParameters(conf.Service)
	if err != nil {
		return err
	}

	// without a host title or URL we can never match a distribution
	if conf.Host.Title == "" && conf.Host.URL == "" {
		return fmt.Errorf("Neither a host title nor a host URL was provided!")
	}

	// at least one converter must be available
	if conf.Sync.FallbackConverter == "" {
		return fmt.Errorf("No fallback converter was provided!")
	}

	return nil
}

// Reads the service configuration from the given YAML byte data, applying
// defaults and validating the result. All environment variables of the form
// ${ENV_VAR} are expanded before parsing.
func Read(data []byte) (*Config, error) {
	data = []byte(os.ExpandEnv(string(data)))

	conf := &Config{
		Service: ServiceConfig{
			Port:           8080,
			MaxConnections: 100,
			DataDirectory:  ".",
		},
		Sync: SyncConfig{
			DefaultContact:    "info@invenio.org",
			DefaultLanguage:   "eng",
			DefaultDataAccess: "open",
			AllowedIdentifierTypes: map[string][]string{
				"default": {"Orcid", "ror"},
			},
			Converters:        []string{"rdm"},
			FallbackConverter: "rdm",
		},
		Database: DatabaseConfig{
			File: "madmp.db",
		},
	}
	err := yaml.Unmarshal(data, conf)
	if err != nil {
		return nil, fmt.Errorf("Couldn't parse configuration data: %s", err)
	}

	err = validateConfig(conf)
	if err != nil {
		return nil, err
	}
	return conf, nil
}

// Reports whether the given identifier type may be attached to person records
// in the given field ("creator" or "contributor"). If no allow-list is
// configured for the field, the "default" list applies.
func (c SyncConfig) IdentifierTypeAllowed(idType, field string) bool {
	allowed, found := c.AllowedIdentifierTypes[field]
	if !found {
		allowed = c.AllowedIdentifierTypes["default"]
	}
	for _, t := range allowed {
		if t == idType {
			return true
		}
	}
	return false
}
