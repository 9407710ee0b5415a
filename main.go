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

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/FAIR-Data-Austria/invenio-madmp/auth"
	"github.com/FAIR-Data-Austria/invenio-madmp/config"
	"github.com/FAIR-Data-Austria/invenio-madmp/convert"
	"github.com/FAIR-Data-Austria/invenio-madmp/converters"
	"github.com/FAIR-Data-Austria/invenio-madmp/converters/rdm"
	"github.com/FAIR-Data-Austria/invenio-madmp/events"
	"github.com/FAIR-Data-Austria/invenio-madmp/journal"
	"github.com/FAIR-Data-Austria/invenio-madmp/models"
	"github.com/FAIR-Data-Austria/invenio-madmp/notify"
	"github.com/FAIR-Data-Austria/invenio-madmp/records"
	"github.com/FAIR-Data-Austria/invenio-madmp/services"
)

// Prints usage info.
func usage() {
	fmt.Fprintf(os.Stderr, "%s: usage:\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "%s <config_file>\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "%s <config_file> import <dmp_file> [-dry-run] [-hard-sync]\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "See README.md for details on config files.\n")
	os.Exit(1)
}

// Imports a single maDMP document from a file, without going through the REST
// service. With -dry-run the document is only matched against the store and a
// summary is printed; nothing is written.
func runImport(engine *convert.Engine, args []string) {
	flags := flag.NewFlagSet("import", flag.ExitOnError)
	dryRun := flags.Bool("dry-run", false, "report what would be synchronized without writing")
	hardSync := flags.Bool("hard-sync", false, "replace record metadata instead of merging")
	flags.Parse(args)
	if flags.NArg() != 1 {
		usage()
	}

	document, err := os.ReadFile(flags.Arg(0))
	if err != nil {
		log.Panicf("Couldn't read %s: %s\n", flags.Arg(0), err.Error())
	}

	if *dryRun {
		preview, err := engine.PreviewDMP(document)
		if err != nil {
			log.Panicf("Couldn't preview the DMP: %s\n", err.Error())
		}
		fmt.Printf("DMP %s: %d matching dataset(s)\n", preview.DmpId, len(preview.Datasets))
		for _, dataset := range preview.Datasets {
			record := "new record"
			if dataset.RecordPid != "" {
				record = "record " + dataset.RecordPid
			}
			fmt.Printf("  dataset %s -> %s (%d distribution(s))\n",
				dataset.DatasetId, record, dataset.Distributions)
		}
		return
	}

	dmp, err := engine.ConvertDMP(document, *hardSync, auth.SystemIdentity, true)
	if err != nil {
		if dmp == nil {
			log.Panicf("Couldn't import the DMP: %s\n", err.Error())
		}
		// The DMP was stored, only the post-commit notifications failed.
		log.Printf("Imported DMP %s with notification failures: %s\n", dmp.DmpId, err.Error())
	}
	fmt.Printf("Imported DMP %s with %d dataset(s)\n", dmp.DmpId, len(dmp.Datasets))
}

// sets up structured logging on stderr
func initLogging(conf *config.Config) {
	logLevel := new(slog.LevelVar)
	if conf.Service.Debug {
		logLevel.Set(slog.LevelDebug)
	}
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})
	slog.SetDefault(slog.New(handler))
}

// creates the converter with the given name, or nil if no such converter
// exists
func newConverter(name string, conf *config.Config, service records.Service,
	users rdm.UserDirectory) converters.Converter {
	switch name {
	case "rdm":
		return rdm.NewConverter(conf, service, users)
	}
	return nil
}

// builds the converter registry from the configured converter names
func newRegistry(conf *config.Config, service records.Service,
	users rdm.UserDirectory) (*converters.Registry, error) {

	fallback := newConverter(conf.Sync.FallbackConverter, conf, service, users)
	if fallback == nil {
		return nil, fmt.Errorf("Unknown fallback converter: %s", conf.Sync.FallbackConverter)
	}
	registry, err := converters.NewRegistry(fallback)
	if err != nil {
		return nil, err
	}
	for _, name := range conf.Sync.Converters {
		if name == conf.Sync.FallbackConverter {
			continue
		}
		converter := newConverter(name, conf, service, users)
		if converter == nil {
			return nil, fmt.Errorf("Unknown converter: %s", name)
		}
		if err := registry.Register(converter); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

func main() {

	// The only argument is the configuration filename.
	if len(os.Args) < 2 {
		usage()
	}
	configFile := os.Args[1]

	// Read the configuration file.
	log.Printf("Reading configuration from '%s'...\n", configFile)
	b, err := os.ReadFile(configFile)
	if err != nil {
		log.Panicf("Couldn't read %s: %s\n", configFile, err.Error())
	}
	conf, err := config.Read(b)
	if err != nil {
		log.Panicf("Couldn't initialize the configuration: %s\n", err.Error())
	}
	initLogging(conf)

	if err = os.MkdirAll(conf.Service.DataDirectory, 0755); err != nil {
		log.Panicf("Couldn't create the data directory: %s\n", err.Error())
	}

	// Wire up the components behind the service.
	store, err := models.Open(filepath.Join(conf.Service.DataDirectory, conf.Database.File))
	if err != nil {
		log.Panicf("Couldn't open the DMP database: %s\n", err.Error())
	}
	defer store.Close()

	recordService := records.NewMemoryService()
	users := rdm.NewMemoryDirectory()
	registry, err := newRegistry(conf, recordService, users)
	if err != nil {
		log.Panicf("Couldn't create the converter registry: %s\n", err.Error())
	}

	jour, err := journal.Open(conf.Service.DataDirectory)
	if err != nil {
		log.Panicf("Couldn't open the sync journal: %s\n", err.Error())
	}
	defer jour.Close()

	bus := events.NewBus(slog.Default())
	engine, err := convert.NewEngine(conf, store, recordService, registry, bus, jour,
		slog.Default())
	if err != nil {
		log.Panicf("Couldn't create the conversion engine: %s\n", err.Error())
	}

	notifier := notify.NewNotifier(conf.DMPTool)
	notify.RegisterObservers(bus, notifier, engine, recordService, slog.Default())

	// "import" loads a maDMP document from a file instead of running the
	// service.
	if len(os.Args) > 2 && os.Args[2] == "import" {
		runImport(engine, os.Args[3:])
		return
	}

	authenticator, err := auth.NewAuthenticator(conf.Service.Secret)
	if err != nil {
		log.Panicf("Couldn't create the authenticator: %s\n", err.Error())
	}

	service, err := services.NewService(conf, engine, store, authenticator)
	if err != nil {
		log.Panicf("Couldn't create the service: %s\n", err.Error())
	}

	// Start the service in a goroutine so it doesn't block.
	go func() {
		err = service.Start(conf.Service.Port)
		if err != nil {
			log.Println(err.Error())
		}
	}()

	// Intercept the SIGINT, SIGHUP, SIGTERM, and SIGQUIT signals, shutting down
	// the service as gracefully as possible if they are encountered.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan,
		syscall.SIGINT,
		syscall.SIGHUP,
		syscall.SIGTERM,
		syscall.SIGQUIT)

	// Block till we receive one of the above signals.
	<-sigChan

	// Create a deadline to wait for.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Wait for connections to close until the deadline elapses.
	service.Shutdown(ctx)
	log.Println("Shutting down")
}
