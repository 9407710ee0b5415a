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

package services

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humamux"
	"github.com/gorilla/mux"
	"golang.org/x/net/netutil"

	"github.com/FAIR-Data-Austria/invenio-madmp/auth"
	"github.com/FAIR-Data-Austria/invenio-madmp/config"
	"github.com/FAIR-Data-Austria/invenio-madmp/convert"
	"github.com/FAIR-Data-Austria/invenio-madmp/models"
)

// Version numbers
var majorVersion = 0
var minorVersion = 1
var patchVersion = 0

// Version string
var version = fmt.Sprintf("%d.%d.%d", majorVersion, minorVersion, patchVersion)

// This type implements the SyncService interface, accepting maDMP documents
// from the DMP tool and synchronizing them with repository records.
type syncService struct {
	// name of the service
	Name string
	// service version identifier
	Version string
	// time which the service was started
	StartTime time.Time
	// port on which the service currently runs
	Port int
	// router for REST endpoints
	Router *mux.Router
	// API wrapper
	API huma.API
	// HTTP server.
	Server *http.Server

	conf          *config.Config
	engine        *convert.Engine
	store         *models.Store
	authenticator *auth.Authenticator
}

// authorize clients for the service, returning the identity encoded in the
// client's access token and an error describing any issue encountered
func (service *syncService) authorize(authorizationHeader string) (auth.Identity, error) {
	accessToken, found := strings.CutPrefix(authorizationHeader, "Bearer ")
	if !found {
		return "", huma.Error401Unauthorized("Invalid authorization header")
	}
	identity, err := service.authenticator.IdentityForToken(strings.TrimSpace(accessToken))
	if err != nil {
		return "", huma.Error401Unauthorized(err.Error())
	}
	return identity, nil
}

type ServiceInfoOutput struct {
	Body ServiceInfoResponse `doc:"information about the service itself"`
}

// handler method for root (no authorization needed for this one)
func (service *syncService) getRoot(ctx context.Context,
	input *struct{}) (*ServiceInfoOutput, error) {

	slog.Info("Querying root endpoint...")
	return &ServiceInfoOutput{
		Body: ServiceInfoResponse{
			Name:          service.Name,
			Version:       service.Version,
			Uptime:        int(service.uptime()),
			Documentation: "/docs",
		},
	}, nil
}

// builds the wire representation of a DMP and its datasets
func summarize(dmp *models.DataManagementPlan) DMPSummary {
	summary := DMPSummary{
		DmpId:    dmp.DmpId,
		Datasets: make([]DatasetSummary, 0, len(dmp.Datasets)),
	}
	for _, dataset := range dmp.Datasets {
		summary.Datasets = append(summary.Datasets, DatasetSummary{
			DatasetId: dataset.DatasetId,
			RecordPid: dataset.RecordPid,
		})
	}
	return summary
}

type DMPOutput struct {
	Body DMPSummary `doc:"A summary of the requested data management plan"`
}

type DMPsOutput struct {
	Body []DMPSummary `doc:"A list of summaries of all known data management plans"`
}

// handler method for querying all known DMPs
func (service *syncService) getDMPs(ctx context.Context,
	input *struct {
		Authorization string `header:"authorization" doc:"Authorization header with access token"`
	}) (*DMPsOutput, error) {

	_, err := service.authorize(input.Authorization)
	if err != nil {
		return nil, err
	}

	slog.Info("Querying data management plans...")
	dmps, err := service.store.AllDMPs()
	if err != nil {
		return nil, err
	}
	output := &DMPsOutput{
		Body: make([]DMPSummary, 0, len(dmps)),
	}
	for _, dmp := range dmps {
		output.Body = append(output.Body, summarize(dmp))
	}
	slices.SortFunc(output.Body, func(dmp1, dmp2 DMPSummary) int { // sort by dmp_id
		return cmp.Compare(dmp1.DmpId, dmp2.DmpId)
	})
	return output, nil
}

// handler method for querying a single DMP
func (service *syncService) getDMP(ctx context.Context,
	input *struct {
		Authorization string `header:"authorization" doc:"Authorization header with access token"`
		Id            string `path:"dmp_id" example:"dmp.42" doc:"the identifier of a DMP in the DMP tool"`
	}) (*DMPOutput, error) {

	_, err := service.authorize(input.Authorization)
	if err != nil {
		return nil, err
	}

	slog.Info(fmt.Sprintf("Querying data management plan %s...", input.Id))
	dmp, err := service.store.GetDMP(input.Id)
	if err != nil {
		return nil, err
	}
	if dmp == nil {
		return nil, huma.Error404NotFound(fmt.Sprintf("DMP %s not found", input.Id))
	}
	return &DMPOutput{
		Body: summarize(dmp),
	}, nil
}

type SyncOutput struct {
	Body   DMPSummary `doc:"A summary of the synchronized data management plan"`
	Status int
}

// handler method for submitting a maDMP document for synchronization
func (service *syncService) syncDMP(ctx context.Context,
	input *struct {
		Authorization string          `header:"Authorization" doc:"Authorization header with access token"`
		HardSync      bool            `query:"hard_sync" doc:"Whether metadata of already-linked records is overwritten"`
		Body          json.RawMessage `doc:"A maDMP document conforming to the RDA DMP Common Standard" contentType:"application/json"`
		ContentType   string          `header:"Content-Type" doc:"Content-Type header (must be application/json)"`
	}) (*SyncOutput, error) {

	identity, err := service.authorize(input.Authorization)
	if err != nil {
		return nil, err
	}

	dmp, err := service.engine.ConvertDMP(input.Body, input.HardSync, identity, true)
	if err != nil {
		var validationErr *convert.ValidationError
		var missingIdErr *convert.MissingDmpIdError
		var policyErr *convert.PolicyViolationError
		switch {
		case errors.As(err, &validationErr), errors.As(err, &missingIdErr):
			return nil, huma.Error400BadRequest(err.Error())
		case errors.As(err, &policyErr):
			return nil, huma.Error409Conflict(err.Error())
		}
		return nil, err
	}
	return &SyncOutput{
		Body:   summarize(dmp),
		Status: http.StatusCreated,
	}, nil
}

// returns the uptime for the service in seconds
func (service *syncService) uptime() float64 {
	return time.Since(service.StartTime).Seconds()
}

// constructs a maDMP integration service from its wired-up components
func NewService(conf *config.Config, engine *convert.Engine, store *models.Store,
	authenticator *auth.Authenticator) (SyncService, error) {

	if engine == nil || store == nil || authenticator == nil {
		return nil, &NotWiredError{}
	}

	service := new(syncService)
	service.Name = "maDMP integration service"
	service.Version = version
	service.Port = -1
	service.conf = conf
	service.engine = engine
	service.store = store
	service.authenticator = authenticator

	// set up routing
	service.Router = mux.NewRouter()
	api := humamux.New(service.Router, huma.DefaultConfig(service.Name, service.Version))
	huma.Get(api, "/", service.getRoot)

	// API v1
	huma.Get(api, "/api/v1/dmps", service.getDMPs)
	huma.Get(api, "/api/v1/dmps/{dmp_id}", service.getDMP)
	huma.Post(api, "/api/v1/dmps", service.syncDMP)

	return service, nil
}

// starts the maDMP integration service
func (service *syncService) Start(port int) error {
	slog.Info(fmt.Sprintf("Starting %s on port %d...", service.Name, port))
	slog.Info(fmt.Sprintf("(Accepting up to %d connections)", service.conf.Service.MaxConnections))

	service.StartTime = time.Now()

	// create a listener that limits the number of incoming connections
	service.Port = port
	listener, err := net.Listen("tcp", ":"+strconv.Itoa(port))
	if err != nil {
		return err
	}
	defer listener.Close()
	listener = netutil.LimitListener(listener, service.conf.Service.MaxConnections)

	// start the server
	service.Server = &http.Server{
		Handler: service.Router}
	err = service.Server.Serve(listener)

	// we don't report the server closing as an error
	if err != http.ErrServerClosed {
		return err
	}
	return nil
}

// gracefully shuts down the service without interrupting active connections
func (service *syncService) Shutdown(ctx context.Context) error {
	if service.Server != nil {
		return service.Server.Shutdown(ctx)
	}
	return nil
}

// closes down the service abruptly, freeing all resources
func (service *syncService) Close() {
	if service.Server != nil {
		service.Server.Close()
	}
}
