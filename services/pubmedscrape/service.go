// Package pubmedscrape sequences the scrape run: for each configured
// research code, fetch the page, extract its abstract segments and
// merge the resulting record into the dataset.
package pubmedscrape

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"pubmedscrape/lib/abstractstore"
	"pubmedscrape/lib/scrapers/pubmed"
	"pubmedscrape/lib/sectionstore"
)

var tracer = otel.Tracer("services/pubmedscrape")

// Params is the scrape-params table of the request config.
type Params struct {
	// literal url prefix each research code is appended to
	Url           string   `json:"url"`
	ResearchCodes []string `json:"research_code"`
	Selector      string   `json:"selector"`
	// abort the whole run at the first failing target instead of
	// recording the failure and continuing
	HaltOnError bool `json:"halt_on_error"`
	// zero means no timeout
	RequestTimeoutSeconds int `json:"request_timeout_seconds"`
	// when set, sections are mirrored into this sqlite file
	SqlitePath string `json:"sqlite_path"`
}

type Service struct {
	client   pubmed.Client
	store    abstractstore.Store
	sections *sectionstore.Store
}

// sections may be nil, the sqlite mirror is optional.
func NewService(client pubmed.Client, store abstractstore.Store, sections *sectionstore.Store) Service {
	return Service{
		client:   client,
		store:    store,
		sections: sections,
	}
}

// TargetResult is the outcome of one target's pipeline.
type TargetResult struct {
	Target   pubmed.Target
	Sections int
	Err      error
}

// Run processes every target strictly in config order, one at a time.
// A failing target contributes a TargetResult with Err set and no
// dataset row; unless HaltOnError is set the run continues with the
// remaining targets. The returned error is non-nil only when the run
// stopped early.
func (s Service) Run(ctx context.Context, params Params) ([]TargetResult, error) {
	ctx, span := tracer.Start(ctx, "Run")
	defer span.End()
	span.SetAttributes(attribute.Int("targets", len(params.ResearchCodes)))

	err := s.store.Init()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to init dataset")
		return nil, err
	}

	targets := pubmed.BuildTargets(params.Url, params.ResearchCodes)

	results := make([]TargetResult, 0, len(targets))
	for _, target := range targets {
		// a canceled run stops cleanly instead of recording a
		// context-canceled failure for every remaining target
		if err := ctx.Err(); err != nil {
			span.SetStatus(codes.Error, "run canceled")
			return results, err
		}

		result := s.scrapeTarget(ctx, target, params.Selector)
		results = append(results, result)

		if result.Err != nil && params.HaltOnError {
			span.SetStatus(codes.Error, "run halted")
			return results, result.Err
		}
	}
	return results, nil
}

func (s Service) scrapeTarget(ctx context.Context, target pubmed.Target, selector string) TargetResult {
	ctx, span := tracer.Start(ctx, "scrapeTarget")
	defer span.End()
	span.SetAttributes(attribute.String("url", target.Url))

	slog.InfoContext(ctx, "scraping target", "code", target.Code, "url", target.Url)

	doc, err := s.client.FetchDocument(ctx, target.Url)
	if err != nil {
		slog.ErrorContext(ctx, "failed to fetch target", "url", target.Url, "err", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		return TargetResult{Target: target, Err: err}
	}

	segments := pubmed.ExtractSegments(ctx, doc, selector)
	record := abstractstore.NewPageRecord(target.Url, segments)

	err = s.store.Append(ctx, record)
	if err != nil {
		slog.ErrorContext(ctx, "failed to append record", "url", target.Url, "err", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "append failed")
		return TargetResult{Target: target, Err: err}
	}

	if s.sections != nil {
		err = s.sections.Push(ctx, record)
		if err != nil {
			slog.ErrorContext(ctx, "failed to mirror sections", "url", target.Url, "err", err)
			span.RecordError(err)
			span.SetStatus(codes.Error, "section mirror failed")
			return TargetResult{Target: target, Sections: len(segments), Err: err}
		}
	}

	slog.InfoContext(ctx, "target done", "code", target.Code, "sections", len(segments))
	return TargetResult{Target: target, Sections: len(segments)}
}

// Failed counts the targets whose pipeline did not complete.
func Failed(results []TargetResult) int {
	n := 0
	for _, result := range results {
		if result.Err != nil {
			n++
		}
	}
	return n
}
