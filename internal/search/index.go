// Package search keeps an in-memory SQLite copy of the loaded collections
// for substring search. Nothing is written to disk.
package search

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/infblueocean/khabar/internal/logging"
	"github.com/infblueocean/khabar/internal/model"
)

const schema = `
CREATE TABLE articles (
	category    TEXT NOT NULL,
	cat_rank    INTEGER NOT NULL,
	position    INTEGER NOT NULL,
	id          TEXT NOT NULL,
	title       TEXT NOT NULL,
	description TEXT NOT NULL,
	title_lc    TEXT NOT NULL,
	desc_lc     TEXT NOT NULL,
	published   INTEGER NOT NULL,
	link        TEXT NOT NULL,
	image_url   TEXT NOT NULL,
	source      TEXT NOT NULL,
	PRIMARY KEY (category, position)
);
CREATE INDEX idx_articles_order ON articles(cat_rank, position);
`

// Index is safe for concurrent use.
type Index struct {
	mu sync.RWMutex
	db *sql.DB
}

// Open creates an empty in-memory index.
func Open() (*Index, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open search index: %w", err)
	}
	// Each connection to ":memory:" is its own database; pin to one.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create search schema: %w", err)
	}
	return &Index{db: db}, nil
}

// Close releases the database.
func (ix *Index) Close() error {
	return ix.db.Close()
}

// Replace swaps the indexed contents of cat for articles, keeping their order.
func (ix *Index) Replace(ctx context.Context, cat model.Category, articles []model.Article) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	tx, err := ix.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM articles WHERE category = ?`, string(cat)); err != nil {
		return fmt.Errorf("clear %s: %w", cat, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO articles (category, cat_rank, position, id, title, description,
			title_lc, desc_lc, published, link, image_url, source)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	rank := categoryRank(cat)
	for i, a := range articles {
		if _, err := stmt.ExecContext(ctx,
			string(cat), rank, i, a.ID, a.Title, a.Description,
			strings.ToLower(a.Title), strings.ToLower(a.Description),
			a.Published.UnixNano(), a.Link, a.ImageURL, a.Source,
		); err != nil {
			return fmt.Errorf("insert %s: %w", a.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	logging.Debug("search index updated", "category", cat, "articles", len(articles))
	return nil
}

// Hit locates a match inside a category's collection.
type Hit struct {
	Category model.Category
	Position int
	ID       string
}

const matchQuery = `
		SELECT category, position, id, title, description, published, link, image_url, source
		FROM articles
		WHERE instr(title_lc, ?) > 0 OR instr(desc_lc, ?) > 0
		ORDER BY cat_rank, position`

// Hits returns where query matches, Indian before Global, each in
// collection order. Callers holding the collections resolve hits to their
// own copies. An empty query returns nothing.
func (ix *Index) Hits(ctx context.Context, query string) ([]Hit, error) {
	var out []Hit
	err := ix.match(ctx, query, func(h Hit, _ model.Article) {
		out = append(out, h)
	})
	return out, err
}

// Search returns the matching articles as stored in the index, ordered
// like Hits. Published comes back in UTC.
func (ix *Index) Search(ctx context.Context, query string) ([]model.Article, error) {
	var out []model.Article
	err := ix.match(ctx, query, func(_ Hit, a model.Article) {
		out = append(out, a)
	})
	return out, err
}

func (ix *Index) match(ctx context.Context, query string, fn func(Hit, model.Article)) error {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	rows, err := ix.db.QueryContext(ctx, matchQuery, q, q)
	if err != nil {
		return fmt.Errorf("search %q: %w", query, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			h         Hit
			cat       string
			a         model.Article
			published int64
		)
		if err := rows.Scan(&cat, &h.Position, &a.ID, &a.Title, &a.Description, &published, &a.Link, &a.ImageURL, &a.Source); err != nil {
			return fmt.Errorf("scan: %w", err)
		}
		h.Category = model.Category(cat)
		h.ID = a.ID
		a.Published = time.Unix(0, published).UTC()
		fn(h, a)
	}
	return rows.Err()
}

// Count returns the number of indexed articles in cat.
func (ix *Index) Count(ctx context.Context, cat model.Category) (int, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	var n int
	err := ix.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM articles WHERE category = ?`, string(cat)).Scan(&n)
	return n, err
}

func categoryRank(cat model.Category) int {
	for i, c := range model.Categories {
		if c == cat {
			return i
		}
	}
	return len(model.Categories)
}
