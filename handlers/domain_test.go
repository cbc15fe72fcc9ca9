package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"truthlens/config"
	"truthlens/database"
)

type fakeDomainStore struct {
	stats map[string]database.DomainStat
	top   []database.DomainStat
	err   error
}

func (f fakeDomainStore) Domain(_ context.Context, domain string) (*database.DomainStat, error) {
	if f.err != nil {
		return nil, f.err
	}
	d, ok := f.stats[domain]
	if !ok {
		return nil, database.ErrNotFound
	}
	return &d, nil
}

func (f fakeDomainStore) TopDomains(context.Context, int) ([]database.DomainStat, error) {
	return f.top, f.err
}

var credibility = config.DefaultScoring().Verdicts.Credibility

func getDomain(h *DomainHandler, domain string) *httptest.ResponseRecorder {
	req := mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/api/domain/"+domain, nil), map[string]string{"domain": domain})
	rec := httptest.NewRecorder()
	h.GetDomain(rec, req)
	return rec
}

func TestGetDomain(t *testing.T) {
	store := fakeDomainStore{stats: map[string]database.DomainStat{
		"bbc.co.uk": {Domain: "bbc.co.uk", TotalAnalyses: 4, AvgScore: 81.5, LastAnalyzedAt: time.Now()},
	}}
	h := NewDomainHandler(store, credibility)

	rec := getDomain(h, "www.BBC.co.uk")
	require.Equal(t, http.StatusOK, rec.Code)
	var data map[string]any
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &data))
	assert.Equal(t, "bbc.co.uk", data["domain"])
	assert.Equal(t, "MOSTLY_CREDIBLE", data["verdict"])
	assert.Equal(t, float64(4), data["total_analyses"])

	rec = getDomain(h, "unknown.example")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Domain not found", decodeEnvelope(t, rec).Error)
}

func TestGetDomainWithoutDatabase(t *testing.T) {
	var store *database.Store
	rec := getDomain(NewDomainHandler(store, credibility), "bbc.co.uk")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetTopDomains(t *testing.T) {
	store := fakeDomainStore{top: []database.DomainStat{
		{Domain: "reuters.com", TotalAnalyses: 9, AvgScore: 88},
		{Domain: "clickbait.example", TotalAnalyses: 3, AvgScore: 12.4},
	}}
	rec := httptest.NewRecorder()
	NewDomainHandler(store, credibility).GetTopDomains(rec, httptest.NewRequest(http.MethodGet, "/api/domains/top", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var data []map[string]any
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &data))
	require.Len(t, data, 2)
	assert.Equal(t, "MOSTLY_CREDIBLE", data[0]["verdict"])
	assert.Equal(t, "NOT_CREDIBLE", data[1]["verdict"])
}

func TestGetTopDomainsErrors(t *testing.T) {
	var disabled *database.Store
	rec := httptest.NewRecorder()
	NewDomainHandler(disabled, credibility).GetTopDomains(rec, httptest.NewRequest(http.MethodGet, "/api/domains/top", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, string(decodeEnvelope(t, rec).Data))

	rec = httptest.NewRecorder()
	NewDomainHandler(fakeDomainStore{err: errors.New("query failed")}, credibility).GetTopDomains(rec, httptest.NewRequest(http.MethodGet, "/api/domains/top", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
