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

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/FAIR-Data-Austria/invenio-madmp/auth"
	"github.com/FAIR-Data-Austria/invenio-madmp/config"
	"github.com/FAIR-Data-Austria/invenio-madmp/events"
	"github.com/FAIR-Data-Austria/invenio-madmp/madmp"
	"github.com/FAIR-Data-Austria/invenio-madmp/models"
	"github.com/FAIR-Data-Austria/invenio-madmp/records"
)

// capturedRequest remembers what the fake DMP tool received
type capturedRequest struct {
	Method string
	Path   string
	Auth   string
	Body   map[string]any
}

func fakeDMPTool(t *testing.T, status int) (*httptest.Server, *[]capturedRequest) {
	captured := &[]capturedRequest{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		bodyBytes, err := io.ReadAll(r.Body)
		assert.Nil(t, err)
		var body map[string]any
		if len(bodyBytes) > 0 {
			assert.Nil(t, json.Unmarshal(bodyBytes, &body))
		}
		*captured = append(*captured, capturedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Auth:   r.Header.Get("Authorization"),
			Body:   body,
		})
		w.WriteHeader(status)
	}))
	t.Cleanup(server.Close)
	return server, captured
}

func toolConfig(serverURL string) config.DMPToolConfig {
	return config.DMPToolConfig{
		DatasetEndpoint:  serverURL + "/datasets/%s",
		DatasetsEndpoint: serverURL + "/datasets",
		DMPEndpoint:      serverURL + "/dmps/{}",
		Token:            "sesame",
	}
}

func testFragment() *madmp.DatasetFragment {
	return &madmp.DatasetFragment{
		DatasetId: []madmp.Identifier{
			{Identifier: "recid-1", Type: "other"},
		},
		Distribution: []madmp.Distribution{
			{Title: "Gauge data", DataAccess: "open"},
		},
	}
}

func TestSendDistributionUpdate(t *testing.T) {
	assert := assert.New(t)
	server, captured := fakeDMPTool(t, http.StatusOK)
	notifier := NewNotifier(toolConfig(server.URL))

	err := notifier.SendDistributionUpdate("recid-1", testFragment())
	assert.Nil(err)
	assert.Len(*captured, 1)
	request := (*captured)[0]
	assert.Equal(http.MethodPatch, request.Method)
	assert.Equal("/datasets/recid-1", request.Path)
	assert.Equal("Bearer sesame", request.Auth)
	assert.Contains(request.Body, "distribution")
}

func TestSendDistributionUpdateWithoutFragment(t *testing.T) {
	assert := assert.New(t)
	server, captured := fakeDMPTool(t, http.StatusOK)
	notifier := NewNotifier(toolConfig(server.URL))

	// a record without a dataset yields no notification at all
	err := notifier.SendDistributionUpdate("recid-1", nil)
	assert.Nil(err)
	assert.Empty(*captured)
}

func TestUnwieldyDatasetIdsUseGenericEndpoint(t *testing.T) {
	assert := assert.New(t)
	server, captured := fakeDMPTool(t, http.StatusOK)
	notifier := NewNotifier(toolConfig(server.URL))

	err := notifier.SendDistributionUpdate("10.1234/ds/one?x=y", testFragment())
	assert.Nil(err)
	assert.Len(*captured, 1)
	assert.Equal("/datasets", (*captured)[0].Path)
}

func TestSendDistributionDeletion(t *testing.T) {
	assert := assert.New(t)
	server, captured := fakeDMPTool(t, http.StatusNoContent)
	notifier := NewNotifier(toolConfig(server.URL))

	err := notifier.SendDistributionDeletion("recid-1", nil)
	assert.Nil(err)
	assert.Len(*captured, 1)
	assert.Equal(http.MethodDelete, (*captured)[0].Method)
	assert.Equal("/datasets/recid-1", (*captured)[0].Path)
}

func TestSendDatasetAddition(t *testing.T) {
	assert := assert.New(t)
	server, captured := fakeDMPTool(t, http.StatusCreated)
	notifier := NewNotifier(toolConfig(server.URL))

	err := notifier.SendDatasetAddition("dmp-1", testFragment())
	assert.Nil(err)
	assert.Len(*captured, 1)
	assert.Equal(http.MethodPost, (*captured)[0].Method)
	assert.Equal("/dmps/dmp-1", (*captured)[0].Path)
}

func TestNotificationFailure(t *testing.T) {
	assert := assert.New(t)
	server, _ := fakeDMPTool(t, http.StatusBadGateway)
	notifier := NewNotifier(toolConfig(server.URL))

	err := notifier.SendDistributionUpdate("recid-1", testFragment())
	assert.Error(err)
	assert.IsType(&NotificationError{}, err)
}

// fixedConverter always reports the same fragment
type fixedConverter struct {
	fragment *madmp.DatasetFragment
}

func (c *fixedConverter) ConvertRecord(*records.Record) (*madmp.DatasetFragment, error) {
	return c.fragment, nil
}

func TestObserversSendNotifications(t *testing.T) {
	assert := assert.New(t)
	server, captured := fakeDMPTool(t, http.StatusOK)
	notifier := NewNotifier(toolConfig(server.URL))

	recordService := records.NewMemoryService()
	record, err := recordService.CreateDraft(map[string]any{}, auth.SystemIdentity)
	assert.Nil(err)
	pid := record.Pids[0].Value

	bus := events.NewBus(slog.Default())
	RegisterObservers(bus, notifier, &fixedConverter{fragment: testFragment()},
		recordService, slog.Default())

	dmp := &models.DataManagementPlan{DmpId: "dmp-1"}
	dataset := &models.Dataset{DatasetId: "ds-1", RecordPid: pid}

	bus.Publish(events.DmpDatasetAdded, events.Payload{DMP: dmp, Dataset: dataset})
	bus.Publish(events.DatasetRecordPidChanged, events.Payload{Dataset: dataset, Record: record, Pid: pid})
	bus.Publish(events.RecordDeleted, events.Payload{Dataset: dataset})

	assert.Len(*captured, 3)
	assert.Equal(http.MethodPost, (*captured)[0].Method)
	assert.Equal("/dmps/dmp-1", (*captured)[0].Path)
	assert.Equal(http.MethodPatch, (*captured)[1].Method)
	assert.Equal("/datasets/ds-1", (*captured)[1].Path)
	assert.Equal(http.MethodDelete, (*captured)[2].Method)
	assert.Equal("/datasets/ds-1", (*captured)[2].Path)
}

func TestObserversSwallowFailures(t *testing.T) {
	assert := assert.New(t)
	server, _ := fakeDMPTool(t, http.StatusInternalServerError)
	notifier := NewNotifier(toolConfig(server.URL))

	bus := events.NewBus(slog.Default())
	RegisterObservers(bus, notifier, &fixedConverter{fragment: testFragment()},
		records.NewMemoryService(), slog.Default())

	// must not panic or propagate anything
	err := bus.Publish(events.DmpDatasetAdded, events.Payload{
		DMP:     &models.DataManagementPlan{DmpId: "dmp-1"},
		Dataset: &models.Dataset{DatasetId: "ds-1"},
	})
	assert.Nil(err)
}

func TestObserversRaiseFailuresWhenConfigured(t *testing.T) {
	assert := assert.New(t)
	server, _ := fakeDMPTool(t, http.StatusInternalServerError)
	conf := toolConfig(server.URL)
	conf.RaiseErrors = true
	notifier := NewNotifier(conf)

	bus := events.NewBus(slog.Default())
	RegisterObservers(bus, notifier, &fixedConverter{fragment: testFragment()},
		records.NewMemoryService(), slog.Default())

	err := bus.Publish(events.DmpDatasetAdded, events.Payload{
		DMP:     &models.DataManagementPlan{DmpId: "dmp-1"},
		Dataset: &models.Dataset{DatasetId: "ds-1"},
	})
	assert.Error(err)

	var notificationErr *NotificationError
	assert.ErrorAs(err, &notificationErr)
}
