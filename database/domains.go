package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"
)

// DomainStat is the running credibility average of one news domain.
type DomainStat struct {
	Domain         string    `json:"domain"`
	TotalAnalyses  int       `json:"total_analyses"`
	AvgScore       float64   `json:"avg_score"`
	LastAnalyzedAt time.Time `json:"last_analyzed_at"`
}

// RecordDomainScore folds one article credibility score into its domain's
// average.
func (s *Store) RecordDomainScore(ctx context.Context, domain string, score int) error {
	if s == nil {
		return ErrDisabled
	}
	if domain == "" {
		return nil
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO domain_stats (domain, total_analyses, sum_scores, avg_score, last_analyzed_at)
		VALUES ($1, 1, $2::INTEGER, $2::FLOAT, NOW())
		ON CONFLICT (domain) DO UPDATE SET
			total_analyses   = domain_stats.total_analyses + 1,
			sum_scores       = domain_stats.sum_scores + $2::INTEGER,
			avg_score        = (domain_stats.sum_scores + $2)::float / (domain_stats.total_analyses + 1),
			last_analyzed_at = NOW()
	`, domain, score)
	if err != nil {
		return fmt.Errorf("upsert domain stats: %w", err)
	}
	log.Printf("[DB] ✓ Domain stats updated: %s score=%d", domain, score)
	return nil
}

// TopDomains lists the most analysed domains.
func (s *Store) TopDomains(ctx context.Context, limit int) ([]DomainStat, error) {
	if s == nil {
		return nil, ErrDisabled
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT domain, total_analyses, avg_score, last_analyzed_at
		FROM domain_stats
		ORDER BY total_analyses DESC, domain
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query domain stats: %w", err)
	}
	defer rows.Close()

	out := []DomainStat{}
	for rows.Next() {
		var d DomainStat
		if err := rows.Scan(&d.Domain, &d.TotalAnalyses, &d.AvgScore, &d.LastAnalyzedAt); err != nil {
			return nil, fmt.Errorf("scan domain stats: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Domain returns the stats of one domain, or ErrNotFound.
func (s *Store) Domain(ctx context.Context, domain string) (*DomainStat, error) {
	if s == nil {
		return nil, ErrDisabled
	}
	var d DomainStat
	err := s.db.QueryRowContext(ctx, `
		SELECT domain, total_analyses, avg_score, last_analyzed_at
		FROM domain_stats WHERE domain = $1
	`, domain).Scan(&d.Domain, &d.TotalAnalyses, &d.AvgScore, &d.LastAnalyzedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query domain stats: %w", err)
	}
	return &d, nil
}
