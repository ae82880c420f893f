package sectionstore

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"pubmedscrape/lib/abstractstore"
	"pubmedscrape/lib/sectionstore/db"
	"pubmedscrape/lib/telemetry"

	_ "modernc.org/sqlite"
)

func TestOpenCreatesDirectory(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:sectionstore")
	defer cleanup()

	// the output directory does not exist yet on a fresh checkout
	store, err := Open(filepath.Join(t.TempDir(), "output", "sections.sqlite"))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	err = store.Push(ctx, abstractstore.PageRecord{
		SourceUrl: "https://example.org/100",
		Sections: []abstractstore.Section{
			{Index: 0, BoldText: "Conclusion:", ContentText: "All related content."},
		},
	})
	require.NoError(t, err)

	sections, err := store.Pull(ctx, "https://example.org/100")
	require.NoError(t, err)
	require.Len(t, sections, 1)
}

func TestStore(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:sectionstore")
	defer cleanup()

	sqlite, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	_, err = sqlite.Exec(db.Schema)
	if err != nil {
		t.Fatal(err)
	}
	store := NewStore(sqlite)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	{
		sections, err := store.Pull(ctx, "https://example.org/unknown")
		if err != nil {
			t.Fatal(err)
		}
		require.Len(t, sections, 0)
	}
	{
		err := store.Push(ctx, abstractstore.PageRecord{
			SourceUrl: "https://example.org/100",
			Sections: []abstractstore.Section{
				{Index: 0, BoldText: "Background:", ContentText: "Little is known."},
				{Index: 1, BoldText: "Conclusion:", ContentText: "All related content."},
			},
		})
		if err != nil {
			t.Fatal(err)
		}

		sections, err := store.Pull(ctx, "https://example.org/100")
		if err != nil {
			t.Fatal(err)
		}
		require.Equal(t, []abstractstore.Section{
			{Index: 0, BoldText: "Background:", ContentText: "Little is known."},
			{Index: 1, BoldText: "Conclusion:", ContentText: "All related content."},
		}, sections)
	}
	{
		// re-pushing the same url upserts instead of duplicating
		err := store.Push(ctx, abstractstore.PageRecord{
			SourceUrl: "https://example.org/100",
			Sections: []abstractstore.Section{
				{Index: 0, BoldText: "Background:", ContentText: "Now well understood."},
			},
		})
		if err != nil {
			t.Fatal(err)
		}

		sections, err := store.Pull(ctx, "https://example.org/100")
		if err != nil {
			t.Fatal(err)
		}
		require.Len(t, sections, 2)
		require.Equal(t, "Now well understood.", sections[0].ContentText)
	}
}
