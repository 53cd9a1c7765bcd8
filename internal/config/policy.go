package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Policy holds matching heuristics that operators may tune without a rebuild.
type Policy struct {
	// SectionKeywords maps a section name to the header keywords that open it.
	// Sections absent from the file keep their built-in keywords.
	SectionKeywords map[string][]string `yaml:"section_keywords"`
	// ExtraStopWords are appended to the built-in English stop-word list.
	ExtraStopWords []string `yaml:"extra_stop_words"`
	// MaxHeaderWords caps how long a line may be and still count as a header.
	MaxHeaderWords int `yaml:"max_header_words"`
}

// LoadPolicy reads a YAML policy file. An empty path yields an empty Policy.
func LoadPolicy(path string) (Policy, error) {
	if strings.TrimSpace(path) == "" {
		return Policy{}, nil
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return Policy{}, fmt.Errorf("op=config.LoadPolicy: failed to get absolute path: %w", err)
	}
	if _, err := os.Stat(absPath); os.IsNotExist(err) {
		return Policy{}, fmt.Errorf("op=config.LoadPolicy: policy file not found: %s", absPath)
	}
	// #nosec G304 -- operator supplied configuration path
	content, err := os.ReadFile(absPath)
	if err != nil {
		return Policy{}, fmt.Errorf("op=config.LoadPolicy: failed to read policy file: %w", err)
	}
	var p Policy
	if err := yaml.Unmarshal(content, &p); err != nil {
		return Policy{}, fmt.Errorf("op=config.LoadPolicy: failed to parse YAML: %w", err)
	}
	p.normalize()
	return p, nil
}

func (p *Policy) normalize() {
	if len(p.SectionKeywords) > 0 {
		keywords := make(map[string][]string, len(p.SectionKeywords))
		for name, kws := range p.SectionKeywords {
			clean := make([]string, 0, len(kws))
			for _, kw := range kws {
				kw = strings.ToLower(strings.TrimSpace(kw))
				if kw != "" {
					clean = append(clean, kw)
				}
			}
			keywords[strings.ToLower(strings.TrimSpace(name))] = clean
		}
		p.SectionKeywords = keywords
	}
	words := p.ExtraStopWords[:0]
	for _, w := range p.ExtraStopWords {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			words = append(words, w)
		}
	}
	p.ExtraStopWords = words
	if p.MaxHeaderWords < 0 {
		p.MaxHeaderWords = 0
	}
}
