// Package abstractstore persists scraped pages to the cumulative CSV
// dataset. Each page is one row: its source url and a json-encoded
// list of the abstract's sections.
package abstractstore

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("abstractstore")

var header = []string{"url", "text"}

type Section struct {
	Index       int
	BoldText    string
	ContentText string
}

// PageRecord is one scraped page: the url it came from plus its
// sections in document order.
type PageRecord struct {
	SourceUrl string
	Sections  []Section
}

type Store struct {
	path string
}

func NewStore(path string) Store {
	return Store{path: path}
}

// Init creates the containing directory and an empty dataset file if
// absent. An empty file is the valid "no rows yet" state.
func (s Store) Init() error {
	err := os.MkdirAll(filepath.Dir(s.path), 0755)
	if err != nil {
		return err
	}
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	return f.Close()
}

// Append merges the given records into the dataset: prior rows are
// kept verbatim in order, the new rows follow them, and the file is
// replaced through a temp-file rename so a crash mid-write leaves the
// old file intact.
func (s Store) Append(ctx context.Context, records ...PageRecord) error {
	ctx, span := tracer.Start(ctx, "Append")
	defer span.End()
	span.SetAttributes(attribute.Int("records", len(records)))

	existing := s.loadRaw(ctx)

	rows := make([][]string, 0, len(existing)+len(records))
	rows = append(rows, existing...)
	for _, record := range records {
		text, err := encodeSections(record.Sections)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to encode sections")
			return err
		}
		rows = append(rows, []string{record.SourceUrl, text})
	}

	return s.rewrite(rows)
}

// Load returns every row of the dataset, decoded.
func (s Store) Load(ctx context.Context) ([]PageRecord, error) {
	ctx, span := tracer.Start(ctx, "Load")
	defer span.End()

	raw := s.loadRaw(ctx)
	records := make([]PageRecord, 0, len(raw))
	for _, row := range raw {
		if len(row) < 2 {
			return nil, fmt.Errorf("dataset row has %d columns, want 2", len(row))
		}
		sections, err := decodeSections(row[1])
		if err != nil {
			return nil, err
		}
		records = append(records, PageRecord{
			SourceUrl: row[0],
			Sections:  sections,
		})
	}
	return records, nil
}

// loadRaw reads the current rows, minus the header. A missing, empty
// or unreadable-as-csv file counts as zero existing rows rather than
// a failure, so a corrupt dataset never blocks new appends.
func (s Store) loadRaw(ctx context.Context) [][]string {
	f, err := os.Open(s.path)
	if err != nil {
		return nil
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		slog.WarnContext(ctx, "dataset unreadable, treating as empty",
			"path", s.path,
			"err", err,
		)
		return nil
	}
	if len(rows) == 0 {
		return nil
	}
	// first row is the header
	return rows[1:]
}

func (s Store) rewrite(rows [][]string) error {
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".pubmed_data-*.csv")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	err = w.Write(header)
	if err == nil {
		err = w.WriteAll(rows)
	}
	if err != nil {
		tmp.Close()
		return err
	}
	err = tmp.Close()
	if err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}

type sectionCell struct {
	BoldText    string `json:"bold_text"`
	ContentText string `json:"content_text"`
}

// The text cell holds a json list of single-key objects, e.g.
// [{"section_0": {"bold_text": ..., "content_text": ...}}, ...].
// List order carries the section order, the key only restates it.
func encodeSections(sections []Section) (string, error) {
	cells := make([]map[string]sectionCell, len(sections))
	for i, section := range sections {
		cells[i] = map[string]sectionCell{
			fmt.Sprintf("section_%d", section.Index): {
				BoldText:    section.BoldText,
				ContentText: section.ContentText,
			},
		}
	}
	out, err := json.Marshal(cells)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func decodeSections(text string) ([]Section, error) {
	var cells []map[string]sectionCell
	err := json.Unmarshal([]byte(text), &cells)
	if err != nil {
		return nil, fmt.Errorf("decode text cell: %w", err)
	}

	sections := make([]Section, 0, len(cells))
	for i, cell := range cells {
		for key, value := range cell {
			var index int
			_, err := fmt.Sscanf(key, "section_%d", &index)
			if err != nil {
				index = i
			}
			sections = append(sections, Section{
				Index:       index,
				BoldText:    value.BoldText,
				ContentText: value.ContentText,
			})
		}
	}
	return sections, nil
}
