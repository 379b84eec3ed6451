// Package moderation implements the content safety gate that sits between
// script generation and speech synthesis. It combines a keyword-based
// toxicity score with PII redaction. Toxicity over the threshold aborts
// the pipeline; redaction only rewrites the transcript.
package moderation

import (
	"fmt"
	"log"
	"regexp"
	"strings"
)

// Redaction records one PII match replaced in the transcript.
type Redaction struct {
	Type   string `json:"type"`
	Start  int    `json:"start"`
	Length int    `json:"length"`
}

// Result is the outcome of a single moderation pass over a transcript.
// ToxicityScore is nil when moderation was skipped via override.
type Result struct {
	Flagged       bool        `json:"flagged"`
	ToxicityScore *float64    `json:"toxicityScore"`
	Labels        []string    `json:"labels"`
	RedactedText  string      `json:"redactedText"`
	Redactions    []Redaction `json:"redactions"`
}

// Service moderates generated transcripts before synthesis.
type Service interface {
	Moderate(text string, allowOverride bool) *Result
}

type service struct {
	threshold     float64
	extraKeywords []string
	extraPatterns []*regexp.Regexp
}

// NewService creates a moderation service flagging text whose toxicity
// score exceeds threshold. Values outside (0, 1] fall back to 0.3.
func NewService(threshold float64) Service {
	return NewServiceWithKeywords(threshold, nil)
}

// NewServiceWithKeywords creates a moderation service with additional
// deployment-specific keywords matched alongside the built-in list.
func NewServiceWithKeywords(threshold float64, extra []string) Service {
	if threshold <= 0 || threshold > 1 {
		threshold = 0.3
	}
	s := &service{threshold: threshold}
	for _, kw := range extra {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		s.extraKeywords = append(s.extraKeywords, strings.ToLower(kw))
		s.extraPatterns = append(s.extraPatterns, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(kw)+`\b`))
	}
	return s
}

// toxicKeywords are matched as whole words, case-insensitive. The list is
// intentionally conservative; the score is a density, not a verdict.
var toxicKeywords = []string{
	"hate", "kill", "murder", "violence", "attack", "destroy",
	"stupid", "idiot", "moron", "worthless", "pathetic",
	"damn", "hell", "bastard", "shut up",
}

var toxicPatterns = buildToxicPatterns()

func buildToxicPatterns() []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, 0, len(toxicKeywords))
	for _, kw := range toxicKeywords {
		patterns = append(patterns, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(kw)+`\b`))
	}
	return patterns
}

type piiPattern struct {
	name    string
	pattern *regexp.Regexp
}

var piiPatterns = []piiPattern{
	{"ssn", regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`)},
	{"credit_card", regexp.MustCompile(`\b(?:\d[ -]?){15}\d\b`)},
	{"email", regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)},
	{"phone", regexp.MustCompile(`\b(?:\+?1[-. ]?)?\(?\d{3}\)?[-. ]?\d{3}[-. ]?\d{4}\b`)},
}

func (s *service) Moderate(text string, allowOverride bool) *Result {
	if allowOverride {
		log.Printf("[DEBUG] Moderation skipped by override")
		return &Result{
			Flagged:      false,
			RedactedText: text,
		}
	}

	score, labels := s.toxicityScore(text)
	flagged := score > s.threshold

	redacted, redactions := redactPII(text)

	if flagged {
		log.Printf("[ERROR] Transcript flagged by safety gate (score: %.3f, labels: %v)", score, labels)
	} else if len(redactions) > 0 {
		log.Printf("[DEBUG] Redacted %d PII match(es) from transcript", len(redactions))
	}

	return &Result{
		Flagged:       flagged,
		ToxicityScore: &score,
		Labels:        labels,
		RedactedText:  redacted,
		Redactions:    redactions,
	}
}

// toxicityScore is match density over word count, clamped to [0, 1].
func (s *service) toxicityScore(text string) (float64, []string) {
	words := strings.Fields(text)
	if len(words) == 0 {
		return 0, nil
	}

	matches := 0
	var labels []string
	for i, p := range toxicPatterns {
		found := p.FindAllStringIndex(text, -1)
		if len(found) > 0 {
			matches += len(found)
			labels = append(labels, toxicKeywords[i])
		}
	}
	for i, p := range s.extraPatterns {
		found := p.FindAllStringIndex(text, -1)
		if len(found) > 0 {
			matches += len(found)
			labels = append(labels, s.extraKeywords[i])
		}
	}

	score := float64(matches) / float64(len(words))
	if score > 1 {
		score = 1
	}
	return score, labels
}

// redactPII replaces PII matches with literal markers like [REDACTED-SSN].
// Offsets recorded in the redactions refer to the original text. Earlier
// pattern types win on overlapping matches.
func redactPII(text string) (string, []Redaction) {
	type match struct {
		name       string
		start, end int
	}

	var matches []match
	claimed := make([]bool, len(text))
	for _, p := range piiPatterns {
		for _, loc := range p.pattern.FindAllStringIndex(text, -1) {
			overlap := false
			for i := loc[0]; i < loc[1]; i++ {
				if claimed[i] {
					overlap = true
					break
				}
			}
			if overlap {
				continue
			}
			for i := loc[0]; i < loc[1]; i++ {
				claimed[i] = true
			}
			matches = append(matches, match{name: p.name, start: loc[0], end: loc[1]})
		}
	}

	if len(matches) == 0 {
		return text, nil
	}

	// Rebuild the text left to right
	for i := 1; i < len(matches); i++ {
		for j := i; j > 0 && matches[j-1].start > matches[j].start; j-- {
			matches[j-1], matches[j] = matches[j], matches[j-1]
		}
	}

	var b strings.Builder
	redactions := make([]Redaction, 0, len(matches))
	prev := 0
	for _, m := range matches {
		b.WriteString(text[prev:m.start])
		b.WriteString(fmt.Sprintf("[REDACTED-%s]", strings.ToUpper(m.name)))
		redactions = append(redactions, Redaction{
			Type:   m.name,
			Start:  m.start,
			Length: m.end - m.start,
		})
		prev = m.end
	}
	b.WriteString(text[prev:])

	return b.String(), redactions
}
