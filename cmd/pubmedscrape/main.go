package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"pubmedscrape/lib/abstractstore"
	"pubmedscrape/lib/configutil"
	"pubmedscrape/lib/scrapers/pubmed"
	"pubmedscrape/lib/sectionstore"
	"pubmedscrape/lib/serviceutil"
	"pubmedscrape/lib/telemetry"
	"pubmedscrape/services/pubmedscrape"
)

// exit code reserved for a missing request config file
const exitConfigMissing = 3

const datasetPath = "output/pubmed_data.csv"

type Config struct {
	ScrapeParams pubmedscrape.Params `json:"scrape-params"`
}

func main() {
	telemetry.InitSlog(true)

	ctx := serviceutil.SignalContext()

	config, err := configutil.ReadConfig[Config]("request.json5")
	if os.IsNotExist(err) {
		serviceutil.FatalCode(exitConfigMissing, "request.json5 not found", err)
	}
	if err != nil {
		serviceutil.Fatal("failed to read request.json5", err)
	}

	tel, err := telemetry.SetupFromEnv(ctx, "pubmedscrape")
	if err != nil && !os.IsNotExist(err) {
		serviceutil.Fatal("failed to setup telemetry", err)
	}
	if err == nil {
		defer tel.Shutdown(context.Background())
		telemetry.InstrumentPerfStats(ctx)
	}

	client := pubmed.NewClient(pubmed.ClientOptions{
		Timeout: time.Duration(config.ScrapeParams.RequestTimeoutSeconds) * time.Second,
	})
	store := abstractstore.NewStore(filepath.FromSlash(datasetPath))

	var sections *sectionstore.Store
	if config.ScrapeParams.SqlitePath != "" {
		s, err := sectionstore.Open(config.ScrapeParams.SqlitePath)
		if err != nil {
			serviceutil.Fatal("failed to open section store", err)
		}
		sections = &s
	}

	service := pubmedscrape.NewService(client, store, sections)
	results, runErr := service.Run(ctx, config.ScrapeParams)

	fmt.Println(pubmedscrape.Summary(results))

	if runErr != nil {
		serviceutil.Fatal("run halted", runErr)
	}
	if pubmedscrape.Failed(results) > 0 {
		os.Exit(1)
	}
}
