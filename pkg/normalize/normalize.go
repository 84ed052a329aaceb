/*
Package normalize canonicalizes raw passphrase text and splits it into tokens.

Two tokenizations are provided on purpose and they disagree:

  - Tokens is used for similarity lookups. It strips punctuation and drops
    stop words, so only content words reach the corpus index.
  - Words is used for entropy. It splits on runs of non-alphanumerics and keeps
    every word, stop words included, since every word adds guessing work.
*/
package normalize

import (
	"regexp"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// stopWords is the closed list used by both the similarity tokenizer and the
// stop-word ratio signal.
var stopWords = map[string]struct{}{
	"the": {}, "of": {}, "and": {}, "to": {}, "a": {},
	"in": {}, "that": {}, "it": {}, "is": {}, "for": {},
	"on": {}, "with": {}, "as": {}, "was": {}, "at": {},
	"by": {}, "be": {}, "this": {}, "not": {}, "are": {},
}

var nonWord = regexp.MustCompile(`[^\w\s]`)

// quoteFold maps typographic quotes onto their ASCII forms.
var quoteFold = runes.Map(func(r rune) rune {
	switch r {
	case '‘', '’', '‚', '‛', '′':
		return '\''
	case '“', '”', '„', '‟', '″':
		return '"'
	}
	return r
})

// asciiOnly drops everything outside the printable ASCII range 0x20-0x7E.
var asciiOnly = runes.Remove(runes.Predicate(func(r rune) bool {
	return r < 0x20 || r > 0x7E
}))

// lowerPool holds casers since a cases.Caser keeps state between calls.
var lowerPool = sync.Pool{
	New: func() any {
		c := cases.Lower(language.Und)
		return &c
	},
}

// Normalize unifies quotes, collapses whitespace, strips non-printable and
// non-ASCII characters, trims, then lowercases.
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	s, _, _ := transform.String(quoteFold, text)
	s = strings.Join(strings.Fields(s), " ")
	s, _, _ = transform.String(asciiOnly, s)
	s = strings.TrimSpace(s)

	caser := lowerPool.Get().(*cases.Caser)
	s = caser.String(s)
	lowerPool.Put(caser)
	return s
}

// Tokens returns the similarity tokens of text: normalized, punctuation
// stripped, split on whitespace, stop words removed. Order and duplicates are
// preserved.
func Tokens(text string) []string {
	s := nonWord.ReplaceAllString(Normalize(text), "")
	fields := strings.Fields(s)
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if IsStopWord(f) {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

// Words splits text on runs of non-alphanumeric characters and returns every
// non-empty segment. Stop words are kept.
func Words(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// WordCount is len(Words(text)).
func WordCount(text string) int {
	return len(Words(text))
}

// IsStopWord reports whether the lowercase word is on the stop list.
func IsStopWord(word string) bool {
	_, ok := stopWords[word]
	return ok
}

// StopWords returns a copy of the stop list in no particular order.
func StopWords() []string {
	out := make([]string, 0, len(stopWords))
	for w := range stopWords {
		out = append(out, w)
	}
	return out
}
