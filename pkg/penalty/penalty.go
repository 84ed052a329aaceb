/*
Package penalty estimates how predictable a passphrase is.

The estimate is a sum of independent signals. Each signal is a named predicate
that looks at the phrase and returns a fixed contribution: positive when the
phrase looks like natural or borrowed language, negative when it shows
structure that real guessers handle poorly (symbols, digits, mixed case, leet).
The sum is clamped to zero so a penalty never adds entropy.

	model := penalty.New(templates, similarity.NewMatcher(idx))
	b := model.Estimate("The only thing we have to fear is fear itself.")
	fmt.Println(b.Total)
*/
package penalty

import (
	"strings"
	"unicode"

	"github.com/bastiangx/phrasemeter/pkg/normalize"
	"github.com/bastiangx/phrasemeter/pkg/similarity"
	"github.com/charmbracelet/log"
)

// Input is the phrase in the shapes the signals need.
type Input struct {
	// Phrase is the raw text.
	Phrase string
	// Fields are the whitespace-split words with surrounding punctuation
	// trimmed. Empty results are dropped.
	Fields []string
	// Tokens are the similarity tokens.
	Tokens []string
}

// NewInput prepares a phrase for signal evaluation.
func NewInput(phrase string) Input {
	raw := strings.Fields(phrase)
	fields := make([]string, 0, len(raw))
	for _, f := range raw {
		f = strings.TrimFunc(f, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if f != "" {
			fields = append(fields, f)
		}
	}
	return Input{
		Phrase: phrase,
		Fields: fields,
		Tokens: normalize.Tokens(phrase),
	}
}

// Signal is one named contribution to the penalty.
type Signal struct {
	Name string
	Eval func(in Input) int
}

// SignalScore is the contribution a signal made to one estimate.
type SignalScore struct {
	Name  string `json:"name" msgpack:"n"`
	Score int    `json:"score" msgpack:"s"`
}

// Breakdown is the result of an estimate. Raw is the plain sum of all signals
// and Total the value clamped to zero.
type Breakdown struct {
	Signals []SignalScore
	Raw     int
	Total   int
}

// Score returns the contribution of the named signal.
func (b Breakdown) Score(name string) int {
	for _, s := range b.Signals {
		if s.Name == name {
			return s.Score
		}
	}
	return 0
}

// Model holds the templates and matcher the context-dependent signals use.
// Both are optional; a missing one disables its signal.
type Model struct {
	templates []Template
	matcher   *similarity.Matcher
	signals   []Signal
}

// New builds a model. templates and matcher may be nil.
func New(templates []Template, matcher *similarity.Matcher) *Model {
	m := &Model{
		templates: templates,
		matcher:   matcher,
	}
	m.signals = []Signal{
		{Name: SignalTemplate, Eval: m.templateSignal},
		{Name: SignalQuote, Eval: m.quoteSignal},
		{Name: SignalTitleCase, Eval: TitleCase},
		{Name: SignalStopWords, Eval: StopWordRatio},
		{Name: SignalGrammar, Eval: GrammaticalFlow},
		{Name: SignalRepetition, Eval: Repetition},
		{Name: SignalSymbols, Eval: Symbols},
		{Name: SignalDigits, Eval: DigitsAndLetters},
		{Name: SignalCamelCase, Eval: CamelCase},
		{Name: SignalLeet, Eval: Leet},
	}
	return m
}

// Signals returns the names of the evaluated signals in order.
func (m *Model) Signals() []string {
	names := make([]string, len(m.signals))
	for i, s := range m.signals {
		names[i] = s.Name
	}
	return names
}

// Estimate evaluates every signal against phrase.
func (m *Model) Estimate(phrase string) Breakdown {
	in := NewInput(phrase)
	b := Breakdown{Signals: make([]SignalScore, 0, len(m.signals))}
	for _, s := range m.signals {
		score := s.Eval(in)
		b.Signals = append(b.Signals, SignalScore{Name: s.Name, Score: score})
		b.Raw += score
	}
	b.Total = max(0, b.Raw)
	log.Debug("penalty estimate", "phrase", phrase, "raw", b.Raw, "total", b.Total)
	return b
}

func (m *Model) templateSignal(in Input) int {
	return TemplateBand(BestTemplateCoverage(m.templates, in.Phrase))
}

func (m *Model) quoteSignal(in Input) int {
	if m.matcher == nil {
		return 0
	}
	if m.matcher.IsQuoteLike(in.Tokens).Matched {
		return quotePenalty
	}
	return 0
}
