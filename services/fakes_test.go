package services

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"truthlens/models"
)

// scriptedModel answers each prompt with the first reply whose marker the
// prompt contains. Unmatched prompts fail.
type scriptedModel struct {
	mu      sync.Mutex
	replies []reply
	prompts []string

	transcript    string
	transcribeErr error
}

type reply struct {
	marker string
	answer string
	err    error
}

func (m *scriptedModel) on(marker, answer string) *scriptedModel {
	m.replies = append(m.replies, reply{marker: marker, answer: answer})
	return m
}

func (m *scriptedModel) fail(marker string, err error) *scriptedModel {
	m.replies = append(m.replies, reply{marker: marker, err: err})
	return m
}

func (m *scriptedModel) Ask(_ context.Context, prompt string) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()
	for _, r := range m.replies {
		if strings.Contains(prompt, r.marker) {
			return r.answer, r.err
		}
	}
	return "", ErrModelUnavailable
}

func (m *scriptedModel) AskImage(ctx context.Context, prompt string, _ []byte, _ string) (string, error) {
	return m.Ask(ctx, prompt)
}

func (m *scriptedModel) Transcribe(context.Context, string, []byte) (string, error) {
	if m.transcribeErr != nil {
		return "", m.transcribeErr
	}
	if m.transcript == "" {
		return "", ErrModelUnavailable
	}
	return m.transcript, nil
}

// Prompt markers, one per built-in prompt.
const (
	markKeywords    = "Extract 3-5 concise"
	markTextClaim   = "expert fact-checker"
	markCredibility = "media literacy analyst"
	markClaims      = "most important FACTUAL claims"
	markSingleClaim = "Is this claim true or false"
	markPhishing    = "phishing detection"
	markImage       = "digital forensics expert"
	markDeepfake    = "audio forensics expert"
	markScam        = "Rate how likely"
)

func newJudge(t *testing.T, m *scriptedModel) *Judge {
	t.Helper()
	prompts, err := LoadPrompts("")
	require.NoError(t, err)
	return NewJudge(m, m, prompts)
}

func noModelJudge(t *testing.T) *Judge {
	t.Helper()
	prompts, err := LoadPrompts("")
	require.NoError(t, err)
	return NewJudge(NoModel{}, NoModel{}, prompts)
}

type fakeSearcher struct {
	results map[string][]models.Source
	err     error
	queries []string
}

func (f *fakeSearcher) Search(_ context.Context, query string) ([]models.Source, error) {
	f.queries = append(f.queries, query)
	if f.err != nil {
		return nil, f.err
	}
	if r, ok := f.results[query]; ok {
		return r, nil
	}
	return f.results["*"], nil
}
