package services

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"text/template"
)

const (
	PromptKeywords        = "keywords"
	PromptTextClaim       = "text_claim"
	PromptCredibility     = "credibility"
	PromptClaimExtraction = "claim_extraction"
	PromptSingleClaim     = "single_claim"
	PromptPhishing        = "phishing"
	PromptImage           = "image"
	PromptAudioDeepfake   = "audio_deepfake"
	PromptAudioScam       = "audio_scam"
)

//go:embed prompts_default.json
var defaultPrompts []byte

var promptFuncs = template.FuncMap{
	"inc":      func(i int) int { return i + 1 },
	"truncate": truncate,
}

// PromptSet holds the parsed prompt templates. Prompts are rendered only
// from values the pipelines have already computed.
type PromptSet struct {
	templates map[string]*template.Template
}

// LoadPrompts parses the built-in prompts and overlays any templates found
// in the JSON file at path. A missing file keeps the built-in set.
func LoadPrompts(path string) (*PromptSet, error) {
	var sources map[string]string
	if err := json.Unmarshal(defaultPrompts, &sources); err != nil {
		return nil, fmt.Errorf("parse built-in prompts: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			log.Printf("[PROMPT] %s not found, using built-in prompts", path)
		case err != nil:
			return nil, fmt.Errorf("read prompts file: %w", err)
		default:
			var overrides map[string]string
			if err := json.Unmarshal(data, &overrides); err != nil {
				return nil, fmt.Errorf("parse prompts file: %w", err)
			}
			for name, text := range overrides {
				if _, known := sources[name]; !known {
					return nil, fmt.Errorf("prompts file: unknown prompt %q", name)
				}
				sources[name] = text
			}
			log.Printf("[PROMPT] ✓ Loaded %d prompt overrides from %s", len(overrides), path)
		}
	}

	set := &PromptSet{templates: make(map[string]*template.Template, len(sources))}
	for name, text := range sources {
		t, err := template.New(name).Funcs(promptFuncs).Option("missingkey=error").Parse(text)
		if err != nil {
			return nil, fmt.Errorf("prompt %s: %w", name, err)
		}
		set.templates[name] = t
	}
	return set, nil
}

// Render executes the named prompt with data.
func (p *PromptSet) Render(name string, data any) (string, error) {
	t, ok := p.templates[name]
	if !ok {
		return "", fmt.Errorf("unknown prompt %q", name)
	}
	var b strings.Builder
	if err := t.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render prompt %s: %w", name, err)
	}
	return b.String(), nil
}

func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen])
}
