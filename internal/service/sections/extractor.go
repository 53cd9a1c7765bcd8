// Package sections splits résumé and job-description text into labeled sections
// using header-keyword detection.
//
// Detection is heuristic. A line opens a section when it is short enough to be
// a header and contains one of the section's keywords as a whole word or
// phrase. When a header matches keywords of several sections, sections are
// tested in domain.AllSections order and the last match wins, so
// "Skills & Projects" opens projects.
package sections

import (
	"strings"

	"github.com/fairyhunter13/resume-matcher/internal/domain"
	"github.com/fairyhunter13/resume-matcher/pkg/textx"
)

// DefaultMaxHeaderWords is the longest line, in words, still treated as a header.
const DefaultMaxHeaderWords = 5

var defaultKeywords = map[domain.SectionName][]string{
	domain.SectionExperience:     {"experience", "work", "employment", "professional", "career"},
	domain.SectionSkills:         {"skills", "technologies", "tools", "competencies", "tech stack"},
	domain.SectionEducation:      {"education", "academic", "university", "degree", "qualifications"},
	domain.SectionProjects:       {"projects", "portfolio", "work samples"},
	domain.SectionCertifications: {"certifications", "certificates", "licenses", "courses"},
	domain.SectionSummary:        {"summary", "objective", "profile", "about me"},
}

// DefaultKeywords returns a copy of the built-in header keywords.
func DefaultKeywords() map[domain.SectionName][]string {
	out := make(map[domain.SectionName][]string, len(defaultKeywords))
	for k, v := range defaultKeywords {
		out[k] = append([]string(nil), v...)
	}
	return out
}

type sectionKeywords struct {
	name     domain.SectionName
	keywords []string
}

// Extractor is immutable after construction and safe for concurrent use.
type Extractor struct {
	order          []sectionKeywords
	maxHeaderWords int
}

// New builds an Extractor. overrides replaces the keywords of the named
// sections; unknown section names are ignored. maxHeaderWords <= 0 selects
// DefaultMaxHeaderWords.
func New(overrides map[string][]string, maxHeaderWords int) *Extractor {
	if maxHeaderWords <= 0 {
		maxHeaderWords = DefaultMaxHeaderWords
	}
	kw := DefaultKeywords()
	for k, v := range overrides {
		name, ok := domain.ParseSectionName(k)
		if !ok || len(v) == 0 {
			continue
		}
		kw[name] = append([]string(nil), v...)
	}
	e := &Extractor{maxHeaderWords: maxHeaderWords}
	for _, name := range domain.AllSections() {
		e.order = append(e.order, sectionKeywords{name: name, keywords: kw[name]})
	}
	return e
}

var defaultExtractor = New(nil, 0)

// Extract splits text with the built-in keywords.
func Extract(text string) domain.Sections {
	return defaultExtractor.Extract(text)
}

// Extract scans text line by line. Header lines move the current-section
// pointer and are not kept as content; other non-empty lines are appended,
// trimmed, to the current section. Lines before the first header are dropped.
func (e *Extractor) Extract(text string) domain.Sections {
	out := domain.Sections{}
	if textx.IsBlank(text) {
		return out
	}
	var current domain.SectionName
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if name, ok := e.Header(line); ok {
			current = name
			continue
		}
		if current == "" {
			continue
		}
		out[current] = append(out[current], line)
	}
	return out
}

// Header reports which section a line opens, if any.
func (e *Extractor) Header(line string) (domain.SectionName, bool) {
	words := headerWords(line)
	if len(words) == 0 || len(words) > e.maxHeaderWords {
		return "", false
	}
	padded := " " + strings.Join(words, " ") + " "
	var match domain.SectionName
	for _, sk := range e.order {
		for _, kw := range sk.keywords {
			if strings.Contains(padded, " "+kw+" ") {
				match = sk.name
				break
			}
		}
	}
	return match, match != ""
}

func headerWords(line string) []string {
	fields := strings.Fields(textx.Normalize(line))
	words := fields[:0]
	for _, f := range fields {
		f = strings.Trim(f, ".,!?;:()-")
		if f != "" {
			words = append(words, f)
		}
	}
	return words
}
