package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	_ "github.com/lib/pq"

	"truthlens/models"
)

// ErrDisabled is returned by a nil store.
var ErrDisabled = errors.New("database not configured")

var ErrNotFound = errors.New("not found")

// Store is the optional Postgres store. A nil *Store is valid; every method
// returns ErrDisabled.
type Store struct {
	db *sql.DB
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS curated_headlines (
		id           SERIAL PRIMARY KEY,
		title        TEXT NOT NULL,
		link         TEXT NOT NULL,
		source       TEXT NOT NULL DEFAULT '',
		summary      TEXT NOT NULL DEFAULT '',
		published_at TIMESTAMPTZ,
		active       BOOLEAN NOT NULL DEFAULT TRUE,
		created_at   TIMESTAMPTZ DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS domain_stats (
		domain           TEXT PRIMARY KEY,
		total_analyses   INTEGER DEFAULT 0,
		sum_scores       INTEGER DEFAULT 0,
		avg_score        FLOAT   DEFAULT 0,
		last_analyzed_at TIMESTAMPTZ DEFAULT NOW()
	)`,
}

// Open connects to Postgres and creates the tables. An empty url or an
// unreachable server yields a nil store.
func Open(ctx context.Context, url string) *Store {
	if url == "" {
		log.Println("[DB] ⚠ DB_URL not set, running without database")
		return nil
	}

	db, err := sql.Open("postgres", url)
	if err != nil {
		log.Printf("[DB] ❌ Could not open database: %v", err)
		return nil
	}
	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pctx); err != nil {
		log.Printf("[DB] ❌ Database unavailable: %v", err)
		db.Close()
		return nil
	}

	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			log.Printf("[DB] ❌ Could not create schema: %v", err)
			db.Close()
			return nil
		}
	}
	log.Println("[DB] ✓ Connected to PostgreSQL")
	return &Store{db: db}
}

func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	return s.db.Close()
}

// CuratedHeadlines returns the newest active curated headlines.
func (s *Store) CuratedHeadlines(ctx context.Context, limit int) ([]models.TrendingArticle, error) {
	if s == nil {
		return nil, ErrDisabled
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT title, link, source, summary, published_at
		FROM curated_headlines
		WHERE active
		ORDER BY COALESCE(published_at, created_at) DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query curated headlines: %w", err)
	}
	defer rows.Close()

	var out []models.TrendingArticle
	for rows.Next() {
		var a models.TrendingArticle
		var published sql.NullTime
		if err := rows.Scan(&a.Title, &a.Link, &a.Source, &a.Summary, &published); err != nil {
			return nil, fmt.Errorf("scan curated headline: %w", err)
		}
		if published.Valid {
			a.Published = published.Time.UTC().Format(time.RFC3339)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// AddCuratedHeadline stores one editor-picked headline.
func (s *Store) AddCuratedHeadline(ctx context.Context, a models.TrendingArticle) error {
	if s == nil {
		return ErrDisabled
	}
	var published sql.NullTime
	if t, err := time.Parse(time.RFC3339, a.Published); err == nil {
		published = sql.NullTime{Time: t, Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO curated_headlines (title, link, source, summary, published_at)
		VALUES ($1, $2, $3, $4, $5)
	`, a.Title, a.Link, a.Source, a.Summary, published)
	if err != nil {
		return fmt.Errorf("insert curated headline: %w", err)
	}
	return nil
}
