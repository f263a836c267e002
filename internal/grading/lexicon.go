// Lexicon-based fallback grader.
//
// When no upstream grading service is configured the engine still has to
// produce deterministic scores, so this grader matches the description's
// tokens against weighted term lexicons. It is intentionally small and
// dependency-free, engineered like the retrieval layer it descends from:
//
//   - No logging in the library (callers decide how/what to log)
//   - Functional options for tuning weights and caps
//   - Unicode-aware tokenization
//   - Deterministic scoring (stable results for identical input)
package grading

import (
	"context"
	"regexp"
	"sort"
	"strings"
)

// LexiconOption tunes a LexiconGrader.
type LexiconOption func(*lexiconConfig)

type lexiconConfig struct {
	maxScore float64
	terms    map[string]float64
}

func defaultLexiconConfig() lexiconConfig {
	return lexiconConfig{
		maxScore: 80,
		terms:    defaultTerms(),
	}
}

// WithMaxScore caps the absolute graded score. Values <= 0 are ignored.
func WithMaxScore(n float64) LexiconOption {
	return func(c *lexiconConfig) {
		if n > 0 {
			c.maxScore = n
		}
	}
}

// WithTerms merges extra term weights into the lexicon, overriding defaults
// for duplicate terms. Terms are lowercased; empty terms are dropped.
func WithTerms(terms map[string]float64) LexiconOption {
	return func(c *lexiconConfig) {
		for t, w := range terms {
			t = strings.ToLower(strings.TrimSpace(t))
			if t != "" {
				c.terms[t] = w
			}
		}
	}
}

// LexiconGrader grades descriptions by summing the weights of known terms.
// The zero score (no term matched) is reported as a mild +5 so that logging
// an unrecognized action still nudges the monster rather than doing nothing.
type LexiconGrader struct {
	cfg lexiconConfig
}

// NewLexiconGrader constructs a LexiconGrader with the default lexicon and
// any supplied options applied.
func NewLexiconGrader(opts ...LexiconOption) *LexiconGrader {
	cfg := defaultLexiconConfig()
	for _, o := range opts {
		o(&cfg)
	}
	return &LexiconGrader{cfg: cfg}
}

// tokenRE extracts Unicode word tokens.
var tokenRE = regexp.MustCompile(`[\p{L}\p{N}]+`)

// Grade scores the description deterministically from the term lexicon.
// It never fails; ctx is accepted for interface symmetry.
func (g *LexiconGrader) Grade(_ context.Context, description string) (*Result, error) {
	desc := strings.TrimSpace(description)
	tokens := tokenRE.FindAllString(strings.ToLower(desc), -1)

	total := 0.0
	matched := make([]string, 0, 4)
	seen := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		if w, ok := g.cfg.terms[tok]; ok {
			total += w
			matched = append(matched, tok)
		}
	}

	if total > g.cfg.maxScore {
		total = g.cfg.maxScore
	}
	if total < -g.cfg.maxScore {
		total = -g.cfg.maxScore
	}
	if len(matched) == 0 {
		total = 5
	}

	sort.Strings(matched)
	reasoning := "no known terms matched; neutral default applied"
	if len(matched) > 0 {
		reasoning = "matched terms: " + strings.Join(matched, ", ")
	}

	return &Result{
		Score:     total,
		Label:     labelFrom(desc),
		Reasoning: reasoning,
	}, nil
}

// labelFrom derives a short display label from the raw description: first
// few words, whitespace collapsed.
func labelFrom(desc string) string {
	fields := strings.Fields(desc)
	if len(fields) > 6 {
		fields = fields[:6]
	}
	return strings.Join(fields, " ")
}

// defaultTerms is the built-in lexicon. Weights follow the engine's sign
// convention: beneficial-positive.
func defaultTerms() map[string]float64 {
	return map[string]float64{
		// beneficial foods
		"salad": 30, "vegetable": 25, "vegetables": 25, "fruit": 20, "apple": 15,
		"banana": 12, "grilled": 15, "steamed": 15, "salmon": 20, "oats": 15,
		"yogurt": 12, "water": 10, "tea": 8, "lentils": 18, "tofu": 15,
		"chicken": 10, "quinoa": 15, "avocado": 12, "nuts": 10, "berries": 15,

		// harmful foods
		"soda": -25, "candy": -25, "fries": -25, "fried": -20, "burger": -20,
		"pizza": -15, "donut": -25, "cake": -20, "chips": -18, "bacon": -15,
		"milkshake": -20, "beer": -20, "wine": -12, "vodka": -30, "cigarette": -40,

		// activity & mindfulness
		"walk": 15, "walked": 15, "run": 25, "ran": 25, "jog": 20, "yoga": 20,
		"gym": 20, "pushups": 15, "swim": 25, "swam": 25, "cycling": 20,
		"meditation": 20, "meditated": 20, "breathing": 12, "stretching": 10,
		"slept": 15, "sleep": 15, "skipped": -15, "sedentary": -15,
	}
}
