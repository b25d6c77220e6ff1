package sqlite

import (
	"context"
	"database/sql"

	_ "modernc.org/sqlite"

	"github.com/densetext/wikiweave/pkg/weave/corpus"
)

// sqliteStore implements corpus.Store using SQLite. Article enumeration
// order is the autoincrement rowid, i.e. insertion order, which keeps
// repeated dataset builds byte-identical.
type sqliteStore struct {
	db *sql.DB
}

// Open opens (creating if necessary) a SQLite corpus store with WAL mode
// enabled.
func Open(ctx context.Context, path string) (corpus.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	// Enable foreign keys
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS articles (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT UNIQUE NOT NULL,
	text TEXT NOT NULL,
	num_tokens INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS article_links (
	article_id INTEGER NOT NULL,
	link TEXT NOT NULL,
	UNIQUE(article_id, link),
	FOREIGN KEY(article_id) REFERENCES articles(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_article_links_article ON article_links(article_id);

CREATE TABLE IF NOT EXISTS link_freq (
	link TEXT PRIMARY KEY,
	freq INTEGER NOT NULL
);
`

	_, err := db.ExecContext(ctx, schema)
	return err
}

// UpsertArticle inserts or updates an article, replacing its link list.
func (s *sqliteStore) UpsertArticle(ctx context.Context, a corpus.Article) error {
	if a.Title == "" {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const stmt = `
INSERT INTO articles (title, text, num_tokens)
VALUES (?, ?, ?)
ON CONFLICT(title) DO UPDATE SET
	text=excluded.text,
	num_tokens=excluded.num_tokens
RETURNING id;
`

	var articleID int64
	if err := tx.QueryRowContext(ctx, stmt, a.Title, a.Text, a.NumTokens).Scan(&articleID); err != nil {
		return err
	}

	if err := replaceLinks(ctx, tx, articleID, uniqueStrings(a.Links)); err != nil {
		return err
	}

	return tx.Commit()
}

func replaceLinks(ctx context.Context, tx *sql.Tx, articleID int64, links []string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM article_links WHERE article_id=?`, articleID); err != nil {
		return err
	}
	if len(links) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO article_links (article_id, link) VALUES (?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, link := range links {
		if link == "" {
			continue
		}
		if _, err := stmt.ExecContext(ctx, articleID, link); err != nil {
			return err
		}
	}
	return nil
}

// AddLinkFrequency adjusts the global frequency of a link, clamping at zero.
func (s *sqliteStore) AddLinkFrequency(ctx context.Context, link string, delta int64) error {
	if link == "" || delta == 0 {
		return nil
	}

	if _, err := s.db.ExecContext(ctx, `
INSERT INTO link_freq (link, freq) VALUES (?, ?)
ON CONFLICT(link) DO UPDATE SET freq=MAX(0, freq + ?);
`, link, delta, delta); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `DELETE FROM link_freq WHERE link=? AND freq<=0`, link)
	return err
}

// Get retrieves an article by title.
func (s *sqliteStore) Get(ctx context.Context, title string) (corpus.Article, bool, error) {
	var (
		a  corpus.Article
		id int64
	)
	err := s.db.QueryRowContext(ctx, `
SELECT id, title, text, num_tokens FROM articles WHERE title = ?;
`, title).Scan(&id, &a.Title, &a.Text, &a.NumTokens)
	if err == sql.ErrNoRows {
		return corpus.Article{}, false, nil
	}
	if err != nil {
		return corpus.Article{}, false, err
	}

	a.Links, err = s.loadStringColumn(ctx, `SELECT link FROM article_links WHERE article_id=? ORDER BY rowid`, id)
	if err != nil {
		return corpus.Article{}, false, err
	}
	return a, true, nil
}

// Has reports whether a title exists without loading its text.
func (s *sqliteStore) Has(ctx context.Context, title string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM articles WHERE title=?`, title).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Titles enumerates all titles in insertion order.
func (s *sqliteStore) Titles(ctx context.Context) ([]string, error) {
	return s.loadStringColumn(ctx, `SELECT title FROM articles ORDER BY id`)
}

// LinkFrequency returns the number of articles linking to the title.
func (s *sqliteStore) LinkFrequency(ctx context.Context, link string) (int64, error) {
	var freq int64
	err := s.db.QueryRowContext(ctx, `SELECT freq FROM link_freq WHERE link=?`, link).Scan(&freq)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	return freq, err
}

// Len returns the number of articles.
func (s *sqliteStore) Len(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM articles`).Scan(&n)
	return n, err
}

func (s *sqliteStore) loadStringColumn(ctx context.Context, query string, args ...interface{}) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []string
	for rows.Next() {
		var val string
		if err := rows.Scan(&val); err != nil {
			return nil, err
		}
		result = append(result, val)
	}
	return result, rows.Err()
}

func uniqueStrings(in []string) []string {
	set := make(map[string]struct{}, len(in))
	var out []string
	for _, v := range in {
		if v == "" {
			continue
		}
		if _, ok := set[v]; ok {
			continue
		}
		set[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
