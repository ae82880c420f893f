package pubmed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	"pubmedscrape/lib/telemetry"
)

func TestBuildTargets(t *testing.T) {
	targets := BuildTargets("https://example.org/", []string{"100", "101"})
	require.Equal(t, []Target{
		{Code: "100", Url: "https://example.org/100"},
		{Code: "101", Url: "https://example.org/101"},
	}, targets)

	// building twice from the same inputs yields identical strings
	again := BuildTargets("https://example.org/", []string{"100", "101"})
	require.Equal(t, targets, again)
}

const abstractPage = `<html><body>
<div id="abstract">
  <p class="abstract">
    <strong>  Background:  </strong>
    Little is known about scraping.
  </p>
  <p class="abstract">
    <strong>Conclusion:</strong> All related content.
  </p>
  <p class="abstract">
    No bold run in this paragraph at all.
  </p>
</div>
</body></html>`

func fetchFixture(t *testing.T, page string) *goquery.Document {
	t.Helper()
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/pubmed")
	t.Cleanup(cleanup)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(page))
	}))
	t.Cleanup(server.Close)

	client := NewClient(ClientOptions{})
	doc, err := client.FetchDocument(context.Background(), server.URL)
	require.NoError(t, err)
	return doc
}

func TestExtractSegments(t *testing.T) {
	fixture := fetchFixture(t, abstractPage)

	segments := ExtractSegments(context.Background(), fixture, "p.abstract")
	require.Equal(t, []Segment{
		{Label: "Background:", Body: "Little is known about scraping."},
		{Label: "Conclusion:", Body: "All related content."},
		{Label: "", Body: "No bold run in this paragraph at all."},
	}, segments)

	for _, segment := range segments {
		require.Equal(t, strings.TrimSpace(segment.Body), segment.Body)
		if segment.Label != "" {
			require.False(t, strings.HasPrefix(segment.Body, segment.Label))
		}
	}
}

func TestExtractSegmentsNoMatches(t *testing.T) {
	fixture := fetchFixture(t, abstractPage)

	segments := ExtractSegments(context.Background(), fixture, "div.missing")
	require.Len(t, segments, 0)
}

func TestExtractSegmentsRepeatedLabel(t *testing.T) {
	fixture := fetchFixture(t, `<html><body>
		<p class="abstract"><b>Aim:</b> State the Aim: clearly.</p>
	</body></html>`)

	segments := ExtractSegments(context.Background(), fixture, "p.abstract")
	require.Len(t, segments, 1)
	// only the first occurrence of the label is stripped
	require.Equal(t, "Aim:", segments[0].Label)
	require.Equal(t, "State the Aim: clearly.", segments[0].Body)
}

func TestFetchDocumentBadStatus(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/pubmed")
	t.Cleanup(cleanup)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	t.Cleanup(server.Close)

	client := NewClient(ClientOptions{})
	_, err := client.FetchDocument(context.Background(), server.URL)
	require.ErrorIs(t, err, ErrBadStatus)
}
