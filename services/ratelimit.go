package services

import (
	"net/http"
	"strconv"
	"sync"
	"time"
)

// QuotaInfo is the latest upstream rate-limit state for one model.
type QuotaInfo struct {
	Model string `json:"model"`

	LimitRequests     int    `json:"limit_requests"`
	RemainingRequests int    `json:"remaining_requests"`
	ResetRequests     string `json:"reset_requests"`
	ResetRequestsAt   *int64 `json:"reset_requests_at"`

	LimitTokens     int    `json:"limit_tokens"`
	RemainingTokens int    `json:"remaining_tokens"`
	ResetTokens     string `json:"reset_tokens"`
	ResetTokensAt   *int64 `json:"reset_tokens_at"`

	Throttled  bool   `json:"throttled"`
	StatusCode int    `json:"status_code"`
	UpdatedAt  int64  `json:"updated_at"`
	UpdatedAgo string `json:"updated_ago"`
}

// QuotaTracker remembers the x-ratelimit-* headers of the last model
// response per model name. It is safe for concurrent use.
type QuotaTracker struct {
	mu    sync.RWMutex
	store map[string]QuotaInfo
	now   func() time.Time
}

func NewQuotaTracker() *QuotaTracker {
	return &QuotaTracker{store: map[string]QuotaInfo{}, now: time.Now}
}

// Record stores the rate-limit headers of one response. A nil tracker or
// header set is ignored.
func (q *QuotaTracker) Record(model string, h http.Header, statusCode int) {
	if q == nil || h == nil {
		return
	}
	now := q.now()

	info := QuotaInfo{
		Model:             model,
		StatusCode:        statusCode,
		Throttled:         statusCode == http.StatusTooManyRequests,
		UpdatedAt:         now.UnixMilli(),
		LimitRequests:     headerInt(h, "X-Ratelimit-Limit-Requests"),
		RemainingRequests: headerInt(h, "X-Ratelimit-Remaining-Requests"),
		ResetRequests:     h.Get("X-Ratelimit-Reset-Requests"),
		LimitTokens:       headerInt(h, "X-Ratelimit-Limit-Tokens"),
		RemainingTokens:   headerInt(h, "X-Ratelimit-Remaining-Tokens"),
		ResetTokens:       h.Get("X-Ratelimit-Reset-Tokens"),
	}
	info.ResetRequestsAt = resetAt(now, info.ResetRequests)
	info.ResetTokensAt = resetAt(now, info.ResetTokens)

	q.mu.Lock()
	q.store[model] = info
	q.mu.Unlock()
}

// Snapshot returns a copy of every recorded model's state.
func (q *QuotaTracker) Snapshot() map[string]QuotaInfo {
	q.mu.RLock()
	defer q.mu.RUnlock()

	out := make(map[string]QuotaInfo, len(q.store))
	now := q.now()
	for k, v := range q.store {
		ago := now.Sub(time.UnixMilli(v.UpdatedAt))
		if ago < time.Minute {
			v.UpdatedAgo = strconv.Itoa(int(ago.Seconds())) + "s ago"
		} else {
			v.UpdatedAgo = strconv.Itoa(int(ago.Minutes())) + "m ago"
		}
		out[k] = v
	}
	return out
}

func resetAt(now time.Time, v string) *int64 {
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return nil
	}
	t := now.Add(d).UnixMilli()
	return &t
}

// headerInt returns -1 when the header is missing or not a number.
func headerInt(h http.Header, key string) int {
	v := h.Get(key)
	if v == "" {
		return -1
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return -1
	}
	return n
}
