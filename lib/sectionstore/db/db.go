package db

import (
	"context"
	"database/sql"

	_ "embed"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var Schema string

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

type Section struct {
	SourceUrl    string
	SectionIndex int64
	BoldText     string
	ContentText  string
}

const upsertSection = `
INSERT INTO sections (source_url, section_index, bold_text, content_text)
VALUES (?, ?, ?, ?)
ON CONFLICT (source_url, section_index)
DO UPDATE SET bold_text = excluded.bold_text, content_text = excluded.content_text
`

type UpsertSectionParams struct {
	SourceUrl    string
	SectionIndex int64
	BoldText     string
	ContentText  string
}

func (q *Queries) UpsertSection(ctx context.Context, arg UpsertSectionParams) error {
	_, err := q.db.ExecContext(ctx, upsertSection,
		arg.SourceUrl,
		arg.SectionIndex,
		arg.BoldText,
		arg.ContentText,
	)
	return err
}

const getSections = `
SELECT source_url, section_index, bold_text, content_text
FROM sections
WHERE source_url = ?
ORDER BY section_index
`

func (q *Queries) GetSections(ctx context.Context, sourceUrl string) ([]Section, error) {
	rows, err := q.db.QueryContext(ctx, getSections, sourceUrl)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Section
	for rows.Next() {
		var i Section
		err := rows.Scan(&i.SourceUrl, &i.SectionIndex, &i.BoldText, &i.ContentText)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}
