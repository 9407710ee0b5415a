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

// package notify sends DMP update notifications to the DMP tool's REST
// endpoints. Notifications carry partial maDMP dataset objects describing
// the distributions (records) hosted by this repository.
package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/FAIR-Data-Austria/invenio-madmp/config"
	"github.com/FAIR-Data-Austria/invenio-madmp/madmp"
)

// dataset identifiers simple enough to be embedded in an endpoint URL
var simpleIdPattern = regexp.MustCompile(`^[\w\-.]+$`)

// A Notifier sends update notifications to the configured DMP tool.
type Notifier struct {
	conf   config.DMPToolConfig
	client http.Client
}

func NewNotifier(conf config.DMPToolConfig) *Notifier {
	return &Notifier{
		conf:   conf,
		client: SecureHttpClient(30 * time.Second),
	}
}

// Replaces the placeholder (if present) in the endpoint URL with the given
// object ID.
func prepareEndpointURL(url, objId string) string {
	if strings.Contains(url, "%s") {
		return fmt.Sprintf(url, objId)
	}
	return strings.Replace(url, "{}", objId, 1)
}

// datasetEndpoint picks the endpoint URL for a dataset notification. Simple
// dataset identifiers are embedded in the URL; unwieldy ones fall back to the
// generic datasets endpoint, in which case the notification body must carry
// the dataset_id itself.
func (n *Notifier) datasetEndpoint(datasetId string, fragment *madmp.DatasetFragment) (string, error) {
	if simpleIdPattern.MatchString(datasetId) && n.conf.DatasetEndpoint != "" {
		return prepareEndpointURL(n.conf.DatasetEndpoint, datasetId), nil
	}
	if n.conf.DatasetsEndpoint != "" && fragment != nil && len(fragment.DatasetId) > 0 {
		return n.conf.DatasetsEndpoint, nil
	}
	return "", &UnaddressableError{DatasetId: datasetId}
}

func (n *Notifier) send(method, endpoint string, body any) error {
	bodyJSON, err := json.Marshal(body)
	if err != nil {
		return &NotificationError{Endpoint: endpoint, Message: err.Error()}
	}

	request, err := http.NewRequest(method, endpoint, bytes.NewReader(bodyJSON))
	if err != nil {
		return &NotificationError{Endpoint: endpoint, Message: err.Error()}
	}
	request.Header.Set("Content-Type", "application/json")
	if n.conf.Token != "" {
		request.Header.Set("Authorization", "Bearer "+n.conf.Token)
	}

	response, err := n.client.Do(request)
	if err != nil {
		return &NotificationError{Endpoint: endpoint, Message: err.Error()}
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return &NotificationError{
			Endpoint: endpoint,
			Message:  fmt.Sprintf("unexpected status: %s", response.Status),
		}
	}
	return nil
}

// SendDistributionUpdate tells the DMP tool that a distribution (record) has
// changed. This sends a PATCH request to the dataset endpoint.
func (n *Notifier) SendDistributionUpdate(datasetId string, fragment *madmp.DatasetFragment) error {
	if fragment == nil {
		// nothing to report for records without a dataset
		return nil
	}
	endpoint, err := n.datasetEndpoint(datasetId, fragment)
	if err != nil {
		return err
	}
	return n.send(http.MethodPatch, endpoint, fragment)
}

// SendDistributionDeletion tells the DMP tool that a distribution (record)
// was deleted. This sends a DELETE request to the dataset endpoint.
func (n *Notifier) SendDistributionDeletion(datasetId string, fragment *madmp.DatasetFragment) error {
	endpoint, err := n.datasetEndpoint(datasetId, fragment)
	if err != nil {
		return err
	}
	if fragment == nil {
		// the record is already gone, so an empty body has to do
		return n.send(http.MethodDelete, endpoint, map[string]any{})
	}
	return n.send(http.MethodDelete, endpoint, fragment)
}

// SendDatasetAddition tells the DMP tool that a new dataset was added to a
// DMP. This sends a POST request to the DMP endpoint.
func (n *Notifier) SendDatasetAddition(dmpId string, fragment *madmp.DatasetFragment) error {
	if n.conf.DMPEndpoint == "" {
		return &UnaddressableError{DatasetId: dmpId}
	}
	endpoint := prepareEndpointURL(n.conf.DMPEndpoint, dmpId)
	return n.send(http.MethodPost, endpoint, fragment)
}
