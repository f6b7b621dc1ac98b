//go:generate go run github.com/Songmu/gocredits/cmd/gocredits@v0.3.0 -w
package main

import (
	"context"
	_ "embed"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	glog "github.com/labstack/gommon/log"
	"github.com/opst/knitsim/cmd/knitsimd/handlers"
	"github.com/opst/knitsim/pkg/analysis"
	driver "github.com/opst/knitsim/pkg/analysisdriver"
	kconf "github.com/opst/knitsim/pkg/configs/driver"
	cfg_hook "github.com/opst/knitsim/pkg/configs/hook"
	"github.com/opst/knitsim/pkg/echoutil"
	"github.com/opst/knitsim/pkg/hook"
	"github.com/opst/knitsim/pkg/metrics"
	"github.com/opst/knitsim/pkg/project"
	"github.com/opst/knitsim/pkg/runner"
	"github.com/opst/knitsim/pkg/utils/filewatch"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

//go:embed CREDITS
var CREDITS string

func main() {
	configPath := flag.String("config", "", "knitsim config path")
	hooksPath := flag.String("hooks", "", "path to lifecycle hooks config file")
	loglevel := flag.String("loglevel", "", "log level, overriding config. debug|info|warn|error|off")
	plic := flag.Bool("license", false, "show licenses of dependencies")
	flag.Parse()

	if *plic {
		log.Println(CREDITS)
		return
	}

	// read configfile
	conf, err := kconf.Load(*configPath)
	if err != nil {
		log.Fatalf("can not read configration: %s", err)
	}
	level := conf.Server().LogLevel()
	if *loglevel != "" {
		level = *loglevel
	}

	hooks := cfg_hook.Config{}
	watched := []string{*configPath}
	if *hooksPath != "" {
		h, err := cfg_hook.Load(*hooksPath)
		if err != nil {
			log.Fatalf("can not read hooks configration: %s", err)
		}
		hooks = h
		watched = append(watched, *hooksPath)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx, cancel, err := filewatch.UntilModified(ctx, watched...)
	if err != nil {
		log.Fatalf("can not watch configration: %s", err)
	}
	defer cancel()

	if err := serve(ctx, conf, hooks, level); err != nil {
		log.Fatal(err)
	}
	if cause := context.Cause(ctx); errors.Is(cause, filewatch.ErrModified) {
		log.Printf("%s. quit to restart server.", cause)
	}
}

func serve(ctx context.Context, conf *kconf.Config, hooks cfg_hook.Config, level string) error {
	logger := glog.New("knitsimd")
	lvl, ok := echoutil.ParseLevel(level)
	logger.SetLevel(lvl)
	if !ok {
		logger.Warnf("unknown loglevel: %s . fall-backed to warn", level)
	}

	jobs := runner.New(conf.MaxLocalJobs(), runner.WithLogger(logger))
	defer jobs.Close()
	db := project.NewMemory(jobs)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	listeners := []driver.Listener{metrics.New(reg)}
	if 0 < len(hooks.Lifecycle.Before) || 0 < len(hooks.Lifecycle.After) {
		listeners = append(
			listeners,
			hook.NewLifecycle(hook.Build[hook.Event](hooks.Lifecycle), logger),
		)
	}
	d := driver.New(db, driver.WithLogger(logger), driver.WithListener(listeners...))

	options := func(a *analysis.Analysis) driver.RunOptions {
		opts := conf.RunOptions()
		opts.WorkingDirectory = filepath.Join(opts.WorkingDirectory, a.ID.String())
		return opts
	}

	e := echo.New()
	e.HideBanner = true
	e.Pre(middleware.RemoveTrailingSlash())

	// set log
	echoutil.SetLevel(e, level)
	e.HTTPErrorHandler = func(err error, ctx echo.Context) {
		e.DefaultHTTPErrorHandler(err, ctx)
		e.Logger.Error(err)
	}
	e.Use(echoutil.LogHandlerFunc)

	{
		analysisId := "analysisId"
		e.POST("/api/analyses", handlers.PostAnalysisHandler(d, options))
		e.GET("/api/analyses", handlers.GetAnalysesHandler(d))
		e.GET("/api/analyses/:"+analysisId, handlers.GetAnalysisHandler(d, db, analysisId))
		e.DELETE("/api/analyses/:"+analysisId, handlers.DeleteAnalysisHandler(d, analysisId))
		e.PUT("/api/queue/unpause", handlers.PutUnpauseQueueHandler(d))
	}
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))

	log.Println("registred routes:")
	for _, r := range e.Routes() {
		log.Println(r.Method, r.Path)
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		err := d.Serve(ctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	eg.Go(func() error {
		err := e.Start(fmt.Sprintf(":%d", conf.Server().Port()))
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	eg.Go(func() error {
		<-ctx.Done()
		for _, ca := range d.CurrentAnalyses() {
			d.Stop(ca)
		}
		graceful, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return e.Shutdown(graceful)
	})
	return eg.Wait()
}
