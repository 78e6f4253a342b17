package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/dhamidi/classgraph/importer"
	"github.com/dhamidi/classgraph/location"
)

var log = commonlog.GetLogger("classgraph")

// app carries the global flags and the options loaded from them.
type app struct {
	configPath  string
	verbose     int
	logFile     string
	metricsAddr string

	options importer.Options
}

func (a *app) setup() error {
	var path *string
	if a.logFile != "" {
		path = &a.logFile
	}
	commonlog.Configure(a.verbose, path)

	opts, err := importer.LoadOptions(a.configPath)
	if err != nil {
		return err
	}
	a.options = opts

	if a.metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		go func() {
			if err := http.ListenAndServe(a.metricsAddr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Errorf("metrics server: %s", err)
			}
		}()
		log.Infof("serving metrics on %s/metrics", a.metricsAddr)
	}
	return nil
}

// importPaths scans paths and imports every class file found. Missing
// classes are looked up on the configured class path when enabled.
func (a *app) importPaths(ctx context.Context, paths []string) (*importer.Result, error) {
	scan, err := location.New(a.options).Scan(ctx, paths...)
	if err != nil {
		return nil, err
	}
	for _, err := range scan.Errors {
		log.Warningf("%s", err)
	}
	if len(scan.Inputs) == 0 {
		return nil, fmt.Errorf("no class files found in %v", paths)
	}

	opts := []importer.Option{importer.WithOptions(a.options)}
	if a.options.ResolveMissingFromClassPath && len(a.options.ClassPath) > 0 {
		entries, err := location.ExpandClassPath(a.options.ClassPath, location.LocalMavenRepo())
		if err != nil {
			return nil, err
		}
		cp := location.NewClassPathResolver(entries, a.options.Checksums)
		defer cp.Close()
		opts = append(opts, importer.WithResolver(importer.ResolverChain{cp}))
	}

	return importer.New(opts...).Import(ctx, scan.Inputs)
}
