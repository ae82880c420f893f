// Package sectionstore mirrors scraped sections into sqlite, one row
// per (source_url, section_index). It is the normalized counterpart
// of the CSV dataset's nested text cell, for cleaner querying.
package sectionstore

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"pubmedscrape/lib/abstractstore"
	"pubmedscrape/lib/sectionstore/db"
)

type Store struct {
	db  *sql.DB
	qry *db.Queries
}

func NewStore(database *sql.DB) Store {
	return Store{
		db:  database,
		qry: db.New(database),
	}
}

// Open opens (creating if needed) a sqlite section store at path,
// along with its containing directory.
func Open(path string) (Store, error) {
	err := os.MkdirAll(filepath.Dir(path), 0755)
	if err != nil {
		return Store{}, err
	}
	database, err := sql.Open("sqlite", path)
	if err != nil {
		return Store{}, err
	}
	_, err = database.Exec(db.Schema)
	if err != nil {
		return Store{}, err
	}
	return NewStore(database), nil
}

// Push upserts every section of the record in one transaction, so a
// re-scrape of the same url replaces its sections instead of
// duplicating them.
func (s Store) Push(ctx context.Context, record abstractstore.PageRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	txqry := s.qry.WithTx(tx)

	for _, section := range record.Sections {
		err := txqry.UpsertSection(ctx, db.UpsertSectionParams{
			SourceUrl:    record.SourceUrl,
			SectionIndex: int64(section.Index),
			BoldText:     section.BoldText,
			ContentText:  section.ContentText,
		})
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Pull returns the stored sections for a url in index order.
func (s Store) Pull(ctx context.Context, sourceUrl string) ([]abstractstore.Section, error) {
	rows, err := s.qry.GetSections(ctx, sourceUrl)
	if err != nil {
		return nil, err
	}

	sections := make([]abstractstore.Section, len(rows))
	for i, row := range rows {
		sections[i] = abstractstore.Section{
			Index:       int(row.SectionIndex),
			BoldText:    row.BoldText,
			ContentText: row.ContentText,
		}
	}
	return sections, nil
}
