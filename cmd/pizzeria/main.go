// SPDX-FileCopyrightText: 2026 networking-project contributors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/sapcc/go-api-declarations/bininfo"
	"github.com/sapcc/go-bits/httpapi"
	"github.com/sapcc/go-bits/httpext"
	"github.com/sapcc/go-bits/logg"
	"github.com/sapcc/go-bits/osext"

	"github.com/meline-schndr/networking-project/internal/api"
	"github.com/meline-schndr/networking-project/internal/catalog"
	"github.com/meline-schndr/networking-project/internal/core"
	"github.com/meline-schndr/networking-project/internal/db"
	"github.com/meline-schndr/networking-project/internal/ingest"
	"github.com/meline-schndr/networking-project/internal/pprofapi"
	"github.com/meline-schndr/networking-project/internal/scheduler"
)

func main() {
	logg.ShowDebug = osext.GetenvBool("PIZZERIA_DEBUG")

	taskName := ""
	if len(os.Args) == 2 {
		taskName = os.Args[1]
	}
	bininfo.SetTaskName(taskName)

	ctx := httpext.ContextWithSIGINT(context.Background(), 1*time.Second)
	switch taskName {
	case "serve":
		taskServe(ctx)
	case "send-test-orders":
		taskSendTestOrders(ctx)
	default:
		printUsageAndExit()
	}
}

func printUsageAndExit() {
	fmt.Fprintf(os.Stderr, "Usage:\n\t%[1]s serve\n\t%[1]s send-test-orders\n", os.Args[0])
	os.Exit(1)
}

func taskServe(ctx context.Context) {
	// connect to the authoritative catalog store; the engine can run without
	// it, on the default station layout and with all lookups missing
	var store catalog.Store
	if osext.GetenvBool("PIZZERIA_INSECURE_SKIP_DB") {
		logg.Info("skipping DB connection as requested; catalog lookups will all miss")
	} else {
		dbConn, err := db.Init()
		if err != nil {
			logg.Error("cannot connect to the catalog store: %s (falling back to the default station layout)", err.Error())
		} else {
			defer dbConn.Close()
			store = catalog.NewSQLStore(dbConn)
		}
	}

	cat := catalog.New(store)
	err := cat.LoadAll()
	if err != nil {
		// missing bulk data degrades into per-order refills, so keep going
		logg.Error("catalog bulk load failed: %s", err.Error())
	}
	manager := scheduler.NewManager(cat.Stations())
	shared := core.NewContext(cat, manager)
	core.RegisterMetrics(prometheus.DefaultRegisterer)

	// dashboard agent
	// the pprof routes must register before the dashboard's static-asset
	// catch-all on "/"
	handler := httpapi.Compose(
		pprofapi.API{IsAuthorized: pprofapi.IsRequestFromLocalhost},
		httpapi.HealthCheckAPI{SkipRequestLog: true},
		api.NewV1API(shared, osext.GetenvOrDefault("PIZZERIA_WEB_ASSET_DIR", "web")),
	)
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"HEAD", "GET"},
	}).Handler(handler))
	apiListenAddr := osext.GetenvOrDefault("PIZZERIA_API_LISTEN_ADDRESS", "localhost:10000")
	go func() {
		logg.Info("dashboard listening on " + apiListenAddr)
		err := httpext.ListenAndServeContext(ctx, apiListenAddr, mux)
		if err != nil {
			logg.Fatal("dashboard server failed: %s", err.Error())
		}
	}()

	go shared.HousekeepingJob(prometheus.DefaultRegisterer).Run(ctx)

	// order agent (without the order socket this process serves no purpose,
	// so a bind failure is fatal)
	receiver, err := ingest.ListenForOrders(ctx, getenvInt("PIZZERIA_ORDER_PORT", 40100))
	if err != nil {
		logg.Fatal(err.Error())
	}
	go receiver.Run(ctx)

	batcher := ingest.NewBatcher(shared, receiver.Datagrams())
	batcher.BatchSize = getenvInt("PIZZERIA_BATCH_SIZE", ingest.DefaultBatchSize)
	batcher.BatchTimeout = getenvDuration("PIZZERIA_BATCH_TIMEOUT", ingest.DefaultBatchTimeout)
	batcher.Run(ctx)
	logg.Info("shutdown complete")
}

func getenvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		logg.Fatal("could not parse %s: %s", key, err.Error())
	}
	return value
}

func getenvDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		logg.Fatal("could not parse %s: %s", key, err.Error())
	}
	return value
}
