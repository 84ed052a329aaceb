/*
Package corpus loads the reference quote corpus and builds the inverted index
used for quote-likeness checks.

An Index is built once and never mutated afterwards. Every surviving quote gets
a stable integer ID equal to its position in the filtered, order-preserving
sequence, and every similarity token maps to the ascending set of IDs of the
quotes containing it. The token dictionary is a Patricia trie, which also
serves prefix lookups for diagnostics.

	idx := corpus.Build(records, corpus.DefaultPopularityFloor)
	ids := idx.Candidates([]string{"fear", "itself"})

A nil *Index is valid and behaves as an empty index, so callers that failed to
load a corpus can keep scoring without similarity checks.
*/
package corpus

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"sort"
	"strings"

	"github.com/bastiangx/phrasemeter/pkg/normalize"
	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"
)

// DefaultPopularityFloor drops quotes that are too obscure to be guessed.
const DefaultPopularityFloor = 0.01

// ErrCorpusUnavailable is wrapped by every error caused by a missing or
// unparsable corpus source.
var ErrCorpusUnavailable = errors.New("corpus unavailable")

// Record is a corpus entry as it appears in a source file.
type Record struct {
	Text       string   `json:"text" msgpack:"text"`
	Author     string   `json:"author" msgpack:"author"`
	Popularity float64  `json:"popularity" msgpack:"popularity"`
	Tokens     []string `json:"tokens,omitempty" msgpack:"tokens,omitempty"`
}

// Validate rejects records that cannot be indexed.
func (r Record) Validate() error {
	if strings.TrimSpace(r.Text) == "" {
		return errors.New("empty text")
	}
	if math.IsNaN(r.Popularity) || r.Popularity < 0 || r.Popularity > 1 {
		return fmt.Errorf("popularity %v outside [0, 1]", r.Popularity)
	}
	return nil
}

// Quote is an indexed corpus entry.
type Quote struct {
	ID         int
	Text       string
	Author     string
	Popularity float64
	Tokens     []string
}

type postings struct {
	ids []int
}

// Index owns the filtered quotes and the token -> quote ID mapping.
type Index struct {
	quotes   []Quote
	trie     *patricia.Trie
	floor    float64
	rejected int
	vocab    int
}

// Build filters records by popularity and indexes the survivors. Records
// failing validation are skipped and counted.
func Build(records []Record, floor float64) *Index {
	idx := &Index{
		quotes: make([]Quote, 0, len(records)),
		trie:   patricia.NewTrie(),
		floor:  floor,
	}

	for i, r := range records {
		if err := r.Validate(); err != nil {
			log.Warnf("Skipping corpus record %d: %v", i, err)
			idx.rejected++
			continue
		}
		if r.Popularity <= floor {
			continue
		}
		idx.add(r.Text, r.Author, r.Popularity, normalize.Tokens(r.Text))
	}

	log.Debugf("Corpus index built: %d quotes, %d tokens, %d rejected", len(idx.quotes), idx.vocab, idx.rejected)
	return idx
}

// add appends a quote and posts each distinct token once.
func (idx *Index) add(text, author string, popularity float64, tokens []string) {
	id := len(idx.quotes)
	idx.quotes = append(idx.quotes, Quote{
		ID:         id,
		Text:       text,
		Author:     author,
		Popularity: popularity,
		Tokens:     tokens,
	})

	seen := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}

		key := patricia.Prefix(tok)
		if item := idx.trie.Get(key); item != nil {
			p := item.(*postings)
			// IDs are assigned ascending so appending keeps the list sorted.
			p.ids = append(p.ids, id)
			continue
		}
		idx.trie.Insert(key, &postings{ids: []int{id}})
		idx.vocab++
	}
}

// Len returns the number of indexed quotes.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.quotes)
}

// Floor returns the popularity floor the index was built with.
func (idx *Index) Floor() float64 {
	if idx == nil {
		return 0
	}
	return idx.floor
}

// Rejected returns how many source records failed validation.
func (idx *Index) Rejected() int {
	if idx == nil {
		return 0
	}
	return idx.rejected
}

// VocabularySize returns the number of distinct indexed tokens.
func (idx *Index) VocabularySize() int {
	if idx == nil {
		return 0
	}
	return idx.vocab
}

// Quote returns a copy of the quote with the given ID.
func (idx *Index) Quote(id int) (Quote, bool) {
	if idx == nil || id < 0 || id >= len(idx.quotes) {
		return Quote{}, false
	}
	q := idx.quotes[id]
	q.Tokens = slices.Clone(q.Tokens)
	return q, true
}

// Quotes returns copies of all indexed quotes in ID order.
func (idx *Index) Quotes() []Quote {
	if idx == nil {
		return nil
	}
	out := make([]Quote, len(idx.quotes))
	for i, q := range idx.quotes {
		q.Tokens = slices.Clone(q.Tokens)
		out[i] = q
	}
	return out
}

// Postings returns the ascending IDs of quotes containing token.
func (idx *Index) Postings(token string) []int {
	if idx == nil || token == "" {
		return nil
	}
	item := idx.trie.Get(patricia.Prefix(token))
	if item == nil {
		return nil
	}
	return slices.Clone(item.(*postings).ids)
}

// tokensOf exposes a quote's tokens without copying. Callers must not modify
// the returned slice.
func (idx *Index) tokensOf(id int) []string {
	return idx.quotes[id].Tokens
}

// Candidates returns the ascending union of the postings of every token.
// Tokens missing from the index contribute nothing.
func (idx *Index) Candidates(tokens []string) []int {
	if idx == nil || len(tokens) == 0 {
		return nil
	}
	seen := make(map[int]struct{})
	for _, tok := range tokens {
		if tok == "" {
			continue
		}
		item := idx.trie.Get(patricia.Prefix(tok))
		if item == nil {
			continue
		}
		for _, id := range item.(*postings).ids {
			seen[id] = struct{}{}
		}
	}
	if len(seen) == 0 {
		return nil
	}
	ids := make([]int, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// CandidateTokens pairs each candidate ID with its token sequence, in
// ascending ID order.
func (idx *Index) CandidateTokens(tokens []string, visit func(id int, quoteTokens []string) bool) {
	for _, id := range idx.Candidates(tokens) {
		if !visit(id, idx.tokensOf(id)) {
			return
		}
	}
}

// TokensWithPrefix lists up to limit indexed tokens starting with prefix and
// the number of quotes each appears in. A limit <= 0 means no limit.
func (idx *Index) TokensWithPrefix(prefix string, limit int) map[string]int {
	out := make(map[string]int)
	if idx == nil {
		return out
	}
	errStop := errors.New("limit reached")
	err := idx.trie.VisitSubtree(patricia.Prefix(prefix), func(p patricia.Prefix, item patricia.Item) error {
		if limit > 0 && len(out) >= limit {
			return errStop
		}
		out[string(p)] = len(item.(*postings).ids)
		return nil
	})
	if err != nil && !errors.Is(err, errStop) {
		log.Errorf("Error visiting token trie: %v", err)
	}
	return out
}
