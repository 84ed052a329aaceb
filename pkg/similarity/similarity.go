// Package similarity decides whether a phrase is quote-like by comparing its
// tokens against the corpus quotes that share at least one token with it.
package similarity

import (
	"math"

	"github.com/bastiangx/phrasemeter/pkg/corpus"
	"github.com/charmbracelet/log"
)

// DefaultThreshold is the similarity at which a phrase counts as a quote.
const DefaultThreshold = 0.6

// Jaccard returns |A ∩ B| / |A ∪ B| over the distinct tokens of a and b,
// rounded to 3 decimals. An empty union yields 0.
func Jaccard(a, b []string) float64 {
	setA := toSet(a)
	setB := toSet(b)

	union := len(setA)
	inter := 0
	for tok := range setB {
		if _, ok := setA[tok]; ok {
			inter++
		} else {
			union++
		}
	}
	if union == 0 {
		return 0
	}
	return round3(float64(inter) / float64(union))
}

func toSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		if t == "" {
			continue
		}
		set[t] = struct{}{}
	}
	return set
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

// Match is the outcome of a quote-likeness check. Matched and Similarity are
// the contract; Similarity is 0 when Matched is false. Best and
// BestSimilarity describe the closest quote seen and are for diagnostics.
type Match struct {
	Matched        bool
	Similarity     float64
	Best           *corpus.Quote
	BestSimilarity float64
	Compared       int
}

// Matcher checks phrases against one index.
type Matcher struct {
	index     *corpus.Index
	threshold float64
	diag      *log.Logger
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithThreshold overrides DefaultThreshold.
func WithThreshold(threshold float64) Option {
	return func(m *Matcher) {
		m.threshold = threshold
	}
}

// WithDiagnostics emits one log line per candidate comparison.
func WithDiagnostics(l *log.Logger) Option {
	return func(m *Matcher) {
		m.diag = l
	}
}

// NewMatcher builds a matcher over index, which may be nil.
func NewMatcher(index *corpus.Index, opts ...Option) *Matcher {
	m := &Matcher{
		index:     index,
		threshold: DefaultThreshold,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Threshold returns the configured threshold, or DefaultThreshold for a nil
// matcher.
func (m *Matcher) Threshold() float64 {
	if m == nil {
		return DefaultThreshold
	}
	return m.threshold
}

// IsQuoteLike is IsQuoteLikeAt with the matcher's threshold.
func (m *Matcher) IsQuoteLike(tokens []string) Match {
	if m == nil {
		return Match{}
	}
	return m.IsQuoteLikeAt(tokens, m.threshold)
}

// IsQuoteLikeAt scans the candidates sharing a token with tokens in ascending
// ID order and stops at the first one whose similarity reaches threshold.
func (m *Matcher) IsQuoteLikeAt(tokens []string, threshold float64) Match {
	var res Match
	if m == nil || m.index == nil || len(tokens) == 0 {
		return res
	}

	bestID := -1
	m.index.CandidateTokens(tokens, func(id int, quoteTokens []string) bool {
		sim := Jaccard(tokens, quoteTokens)
		res.Compared++
		if m.diag != nil {
			m.diag.Info("compare", "candidate", id, "similarity", sim, "phrase_tokens", tokens, "quote_tokens", quoteTokens)
		}
		if sim > res.BestSimilarity || bestID < 0 {
			res.BestSimilarity = sim
			bestID = id
		}
		if sim >= threshold {
			res.Matched = true
			res.Similarity = sim
			return false
		}
		return true
	})

	if bestID >= 0 {
		if q, ok := m.index.Quote(bestID); ok {
			res.Best = &q
		}
	}
	if res.Matched {
		log.Debugf("Quote-like phrase: similarity %.3f to quote %d", res.Similarity, bestID)
	}
	return res
}
