package penalty

import (
	"regexp"
	"strings"

	"github.com/bastiangx/phrasemeter/pkg/normalize"
)

// Signal names as reported in a Breakdown.
const (
	SignalTemplate   = "template"
	SignalQuote      = "quote"
	SignalTitleCase  = "title_case"
	SignalStopWords  = "stop_words"
	SignalGrammar    = "grammar"
	SignalRepetition = "repetition"
	SignalSymbols    = "symbols"
	SignalDigits     = "digits"
	SignalCamelCase  = "camel_case"
	SignalLeet       = "leet"
)

const (
	quotePenalty      = 25
	titleCasePenalty  = 5
	titleCaseRatio    = 0.75
	stopWordPenalty   = 10
	stopWordRatio     = 0.40
	grammarPenalty    = 10
	repetitionBase    = 5
	repetitionStep    = 5
	repetitionMax     = 15
	symbolsBonus      = -5
	digitsBonus       = -3
	camelCaseBonus    = -2
	leetSingleBonus   = -1
	leetMultipleBonus = -3
)

var (
	titleWord    = regexp.MustCompile(`^[A-Z][a-z]+$`)
	grammarFlow  = regexp.MustCompile(`(?i)^\W*(i|you|we|they|he|she|it|my|our|your|their|his|her|the|a|an|this|that|there)\b.*\b(am|is|are|was|were|be|been|will|would|can|could|shall|should|may|might|must|have|has|had|do|does|did)\b`)
	symbolChars  = regexp.MustCompile(`[\[\]{}()<>@#$%^&*_+=|\\~]`)
	digitChar    = regexp.MustCompile(`[0-9]`)
	letterChar   = regexp.MustCompile(`[A-Za-z]`)
	caseBoundary = regexp.MustCompile(`[a-z][A-Z]`)
)

// leetSub is one family of look-alike characters standing in for a letter.
// Ambiguous look-alikes are also ordinary punctuation ("me@home",
// "wait!really"), so they need corroboration before they count.
type leetSub struct {
	letter    byte
	chars     string
	ambiguous bool
}

var leetSubs = []leetSub{
	{letter: 'a', chars: "4"},
	{letter: 'a', chars: "@", ambiguous: true},
	{letter: 'e', chars: "3"},
	{letter: 'i', chars: "1|"},
	{letter: 'i', chars: "!", ambiguous: true},
	{letter: 'o', chars: "0"},
	{letter: 's', chars: "5$"},
	{letter: 't', chars: "7"},
}

// TitleCase penalizes phrases where most words are capitalized like
// "Correct Horse Battery Staple".
func TitleCase(in Input) int {
	if len(in.Fields) == 0 {
		return 0
	}
	n := 0
	for _, w := range in.Fields {
		if titleWord.MatchString(w) {
			n++
		}
	}
	if float64(n)/float64(len(in.Fields)) >= titleCaseRatio {
		return titleCasePenalty
	}
	return 0
}

// StopWordRatio penalizes phrases dense in function words.
func StopWordRatio(in Input) int {
	if len(in.Fields) == 0 {
		return 0
	}
	n := 0
	for _, w := range in.Fields {
		if normalize.IsStopWord(strings.ToLower(w)) {
			n++
		}
	}
	if float64(n)/float64(len(in.Fields)) >= stopWordRatio {
		return stopWordPenalty
	}
	return 0
}

// GrammaticalFlow penalizes sentence-like phrases: a subject word first and an
// auxiliary or modal verb later on.
func GrammaticalFlow(in Input) int {
	if grammarFlow.MatchString(in.Phrase) {
		return grammarPenalty
	}
	return 0
}

// Repetition penalizes repeated words, growing with the number of distinct
// repeated words up to a cap.
func Repetition(in Input) int {
	counts := make(map[string]int, len(in.Fields))
	for _, w := range in.Fields {
		counts[strings.ToLower(w)]++
	}
	dups := 0
	for _, c := range counts {
		if c > 1 {
			dups++
		}
	}
	if dups == 0 {
		return 0
	}
	return min(repetitionBase+repetitionStep*dups, repetitionMax)
}

// Symbols rewards bracket and symbol characters.
func Symbols(in Input) int {
	if symbolChars.MatchString(in.Phrase) {
		return symbolsBonus
	}
	return 0
}

// DigitsAndLetters rewards mixing digits into words.
func DigitsAndLetters(in Input) int {
	if digitChar.MatchString(in.Phrase) && letterChar.MatchString(in.Phrase) {
		return digitsBonus
	}
	return 0
}

// CamelCase rewards lower-to-upper transitions inside words.
func CamelCase(in Input) int {
	if caseBoundary.MatchString(in.Phrase) {
		return camelCaseBonus
	}
	return 0
}

// LeetPatterns counts how many distinct letters are replaced by look-alikes.
// A look-alike run only counts inside a word, with letters on both sides, so
// plain numbers never count. An ambiguous run also needs either an
// unambiguous substitution in the same word or exactly one letter before it
// ("p@ss", "l!ke").
func LeetPatterns(phrase string) int {
	found := make(map[byte]struct{})
	for _, word := range strings.Fields(phrase) {
		corroborated := false
		var pending []byte
		for _, sub := range leetSubs {
			for _, start := range leetRuns(word, sub.chars) {
				switch {
				case !sub.ambiguous:
					found[sub.letter] = struct{}{}
					corroborated = true
				case start < 2 || !isASCIILetter(word[start-2]):
					found[sub.letter] = struct{}{}
				default:
					pending = append(pending, sub.letter)
				}
			}
		}
		if corroborated {
			for _, l := range pending {
				found[l] = struct{}{}
			}
		}
	}
	return len(found)
}

// leetRuns returns the start of every maximal run of chars in word that has
// an ASCII letter immediately before and after it.
func leetRuns(word, chars string) []int {
	var starts []int
	for i := 0; i < len(word); {
		if !strings.ContainsRune(chars, rune(word[i])) {
			i++
			continue
		}
		start := i
		for i < len(word) && strings.ContainsRune(chars, rune(word[i])) {
			i++
		}
		if start > 0 && isASCIILetter(word[start-1]) && i < len(word) && isASCIILetter(word[i]) {
			starts = append(starts, start)
		}
	}
	return starts
}

func isASCIILetter(b byte) bool {
	return ('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z')
}

// Leet rewards leet-speak substitutions.
func Leet(in Input) int {
	switch n := LeetPatterns(in.Phrase); {
	case n >= 2:
		return leetMultipleBonus
	case n == 1:
		return leetSingleBonus
	}
	return 0
}
