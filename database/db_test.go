package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"truthlens/models"
)

func TestNilStoreIsDisabled(t *testing.T) {
	var s *Store
	ctx := context.Background()

	_, err := s.CuratedHeadlines(ctx, 10)
	assert.ErrorIs(t, err, ErrDisabled)
	assert.ErrorIs(t, s.AddCuratedHeadline(ctx, models.TrendingArticle{Title: "t", Link: "l"}), ErrDisabled)
	assert.ErrorIs(t, s.RecordDomainScore(ctx, "example.com", 80), ErrDisabled)
	_, err = s.TopDomains(ctx, 10)
	assert.ErrorIs(t, err, ErrDisabled)
	assert.NoError(t, s.Close())
}

func TestOpenWithoutURL(t *testing.T) {
	assert.Nil(t, Open(context.Background(), ""))
}

func TestNilStoreDomainLookup(t *testing.T) {
	var s *Store
	_, err := s.Domain(context.Background(), "example.com")
	assert.ErrorIs(t, err, ErrDisabled)
}
