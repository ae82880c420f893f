// Package pubmed fetches publication abstract pages and splits the
// abstract region into labeled segments.
//
// A segment is one element matched by the configured CSS selector:
// its label is the text of the first bold run inside the element
// (abstracts commonly open sections with e.g. "Conclusion:"), and its
// body is the rest of the element's text.
package pubmed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"pubmedscrape/lib/htmlutil"
	"pubmedscrape/lib/telemetry"
)

var tracer = otel.Tracer("scrapers/pubmed")

var (
	ErrBadStatus = errors.New("unexpected response status")
	ErrParse     = errors.New("unparseable document")
)

// Target is one fully-formed URL to fetch, derived from one research
// code.
type Target struct {
	Code string
	Url  string
}

// BuildTargets concatenates the url template with each research code,
// preserving code order. The template is a literal prefix, not a
// format string.
func BuildTargets(template string, codes []string) []Target {
	targets := make([]Target, len(codes))
	for i, code := range codes {
		targets[i] = Target{
			Code: code,
			Url:  template + code,
		}
	}
	return targets
}

type Segment struct {
	Label string
	Body  string
}

type Client struct {
	http *resty.Client
}

type ClientOptions struct {
	// zero means no timeout
	Timeout time.Duration
}

func NewClient(opts ClientOptions) Client {
	client := resty.New()
	if opts.Timeout > 0 {
		client.SetTimeout(opts.Timeout)
	}
	telemetry.InstrumentResty(client, "scrapers/pubmed")
	return Client{http: client}
}

// FetchDocument performs a single GET and parses the response body.
// resty reads and releases the response body on every path, including
// errors, so there is no connection for the caller to clean up.
func (c Client) FetchDocument(ctx context.Context, url string) (*goquery.Document, error) {
	ctx, span := tracer.Start(ctx, "FetchDocument")
	defer span.End()
	span.SetAttributes(attribute.String("url", url))

	res, err := c.http.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch")
		return nil, fmt.Errorf("get %s: %w", url, err)
	}
	if res.IsError() {
		err = fmt.Errorf("%w: %s returned %s", ErrBadStatus, url, res.Status())
		span.RecordError(err)
		span.SetStatus(codes.Error, "bad status")
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse html")
		return nil, fmt.Errorf("%w: %s: %v", ErrParse, url, err)
	}
	return doc, nil
}

// ExtractSegments selects every element matching the selector, in
// document order, and splits each into a label and a body. A page
// with no matching elements yields an empty slice.
func ExtractSegments(ctx context.Context, doc *goquery.Document, selector string) []Segment {
	ctx, span := tracer.Start(ctx, "ExtractSegments")
	defer span.End()
	span.SetAttributes(attribute.String("selector", selector))

	var segments []Segment
	doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
		segment := segmentFromElement(sel)
		slog.DebugContext(ctx, "extracted segment",
			"label", segment.Label,
			"body_len", len(segment.Body),
		)
		segments = append(segments, segment)
	})
	return segments
}

// The label is stripped from the body at its first occurrence only.
// Later incidental repeats of the label substring stay in the body.
func segmentFromElement(sel *goquery.Selection) Segment {
	label := htmlutil.FirstEmphasis(sel)
	body := htmlutil.CollapseSpace(sel.Text())
	if label != "" {
		body = strings.TrimSpace(strings.Replace(body, label, "", 1))
	}
	return Segment{Label: label, Body: body}
}
