package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"truthlens/database"
	"truthlens/risk"
	"truthlens/services"
)

// DomainStore reads per-domain credibility stats.
type DomainStore interface {
	Domain(ctx context.Context, domain string) (*database.DomainStat, error)
	TopDomains(ctx context.Context, limit int) ([]database.DomainStat, error)
}

const topDomains = 20

type DomainHandler struct {
	store      DomainStore
	thresholds risk.Thresholds
}

func NewDomainHandler(store DomainStore, thresholds risk.Thresholds) *DomainHandler {
	return &DomainHandler{store: store, thresholds: thresholds}
}

type domainStats struct {
	database.DomainStat
	Verdict risk.Category `json:"verdict"`
}

func (h *DomainHandler) withVerdict(d database.DomainStat) domainStats {
	return domainStats{DomainStat: d, Verdict: h.thresholds.Classify(int(d.AvgScore+0.5), risk.CredibilityScale)}
}

// GetDomain - GET /api/domain/{domain}
func (h *DomainHandler) GetDomain(w http.ResponseWriter, r *http.Request) {
	domain := services.NormalizeDomain("https://" + mux.Vars(r)["domain"])
	d, err := h.store.Domain(r.Context(), domain)
	switch {
	case errors.Is(err, database.ErrNotFound), errors.Is(err, database.ErrDisabled):
		writeFailure(w, http.StatusNotFound, "", "Domain not found")
	case err != nil:
		writeError(w, r, "", err)
	default:
		writeData(w, "", h.withVerdict(*d))
	}
}

// GetTopDomains - GET /api/domains/top
func (h *DomainHandler) GetTopDomains(w http.ResponseWriter, r *http.Request) {
	list, err := h.store.TopDomains(r.Context(), topDomains)
	if errors.Is(err, database.ErrDisabled) {
		writeData(w, "", []domainStats{})
		return
	}
	if err != nil {
		writeError(w, r, "", err)
		return
	}
	out := make([]domainStats, 0, len(list))
	for _, d := range list {
		out = append(out, h.withVerdict(d))
	}
	writeData(w, "", out)
}
