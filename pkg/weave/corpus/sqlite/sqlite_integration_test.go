package sqlite

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/densetext/wikiweave/pkg/weave/corpus"
)

// TestSQLiteBasic tests basic article round-trips
func TestSQLiteBasic(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "corpus.sqlite3")

	st, err := Open(ctx, dbPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer st.Close()

	a := corpus.Article{
		Title:     "Helium",
		Text:      "# Helium\n\nHelium is a noble gas.",
		Links:     []string{"Noble gas", "Hydrogen", "Noble gas"},
		NumTokens: 11,
	}
	if err := st.UpsertArticle(ctx, a); err != nil {
		t.Fatalf("UpsertArticle: %v", err)
	}

	got, found, err := st.Get(ctx, "Helium")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !found {
		t.Fatal("article should be found")
	}
	if got.Text != a.Text {
		t.Errorf("Text mismatch: got %q", got.Text)
	}
	if got.NumTokens != 11 {
		t.Errorf("NumTokens = %d, want 11", got.NumTokens)
	}
	// Duplicate links collapse on write.
	if len(got.Links) != 2 {
		t.Errorf("expected 2 links, got %d: %v", len(got.Links), got.Links)
	}

	ok, err := st.Has(ctx, "Helium")
	if err != nil {
		t.Fatalf("Has: %v", err)
	}
	if !ok {
		t.Error("Has should be true")
	}

	_, found, err = st.Get(ctx, "Unobtainium")
	if err != nil {
		t.Fatalf("Get missing: %v", err)
	}
	if found {
		t.Error("missing article should not be found")
	}
}

// TestSQLiteUpsertReplacesLinks tests that re-upserting replaces the link set
func TestSQLiteUpsertReplacesLinks(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "corpus.sqlite3")

	st, err := Open(ctx, dbPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer st.Close()

	if err := st.UpsertArticle(ctx, corpus.Article{
		Title: "Sun", Text: "old", Links: []string{"Star", "Helium"}, NumTokens: 1,
	}); err != nil {
		t.Fatalf("UpsertArticle: %v", err)
	}
	if err := st.UpsertArticle(ctx, corpus.Article{
		Title: "Sun", Text: "new and longer", Links: []string{"Star"}, NumTokens: 3,
	}); err != nil {
		t.Fatalf("UpsertArticle (second): %v", err)
	}

	got, _, err := st.Get(ctx, "Sun")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Text != "new and longer" {
		t.Errorf("text not replaced: %q", got.Text)
	}
	if len(got.Links) != 1 || got.Links[0] != "Star" {
		t.Errorf("links not replaced: %v", got.Links)
	}

	n, err := st.Len(ctx)
	if err != nil {
		t.Fatalf("Len: %v", err)
	}
	if n != 1 {
		t.Errorf("Len = %d, want 1", n)
	}
}

// TestSQLiteTitlesOrder tests insertion-order enumeration
func TestSQLiteTitlesOrder(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "corpus.sqlite3")

	st, err := Open(ctx, dbPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer st.Close()

	var want []string
	for i := 0; i < 10; i++ {
		// Titles deliberately sort differently from insertion order.
		title := fmt.Sprintf("Article %d", 9-i)
		want = append(want, title)
		if err := st.UpsertArticle(ctx, corpus.Article{Title: title, Text: title}); err != nil {
			t.Fatalf("UpsertArticle: %v", err)
		}
	}

	titles, err := st.Titles(ctx)
	if err != nil {
		t.Fatalf("Titles: %v", err)
	}
	if len(titles) != len(want) {
		t.Fatalf("expected %d titles, got %d", len(want), len(titles))
	}
	for i := range want {
		if titles[i] != want[i] {
			t.Fatalf("titles[%d] = %q, want %q (insertion order broken)", i, titles[i], want[i])
		}
	}
}

// TestSQLiteLinkFrequency tests frequency counting with clamping
func TestSQLiteLinkFrequency(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "corpus.sqlite3")

	st, err := Open(ctx, dbPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer st.Close()

	if err := st.AddLinkFrequency(ctx, "Star", 2); err != nil {
		t.Fatalf("AddLinkFrequency: %v", err)
	}
	if err := st.AddLinkFrequency(ctx, "Star", 1); err != nil {
		t.Fatalf("AddLinkFrequency: %v", err)
	}

	freq, err := st.LinkFrequency(ctx, "Star")
	if err != nil {
		t.Fatalf("LinkFrequency: %v", err)
	}
	if freq != 3 {
		t.Errorf("freq = %d, want 3", freq)
	}

	if err := st.AddLinkFrequency(ctx, "Star", -5); err != nil {
		t.Fatalf("AddLinkFrequency: %v", err)
	}
	freq, err = st.LinkFrequency(ctx, "Star")
	if err != nil {
		t.Fatalf("LinkFrequency: %v", err)
	}
	if freq != 0 {
		t.Errorf("freq after over-decrement = %d, want 0", freq)
	}

	freq, err = st.LinkFrequency(ctx, "Never linked")
	if err != nil {
		t.Fatalf("LinkFrequency: %v", err)
	}
	if freq != 0 {
		t.Errorf("unknown link freq = %d, want 0", freq)
	}
}

// TestSQLiteReopen tests that data survives reopening the store
func TestSQLiteReopen(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "corpus.sqlite3")

	st, err := Open(ctx, dbPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := st.UpsertArticle(ctx, corpus.Article{Title: "Moon", Text: "# Moon", NumTokens: 2}); err != nil {
		t.Fatalf("UpsertArticle: %v", err)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	st2, err := Open(ctx, dbPath)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer st2.Close()

	_, found, err := st2.Get(ctx, "Moon")
	if err != nil {
		t.Fatalf("Get after reopen: %v", err)
	}
	if !found {
		t.Error("article should survive reopen")
	}
}
