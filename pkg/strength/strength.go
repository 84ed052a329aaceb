/*
Package strength turns a passphrase into an adjusted entropy score and
crack-time estimates.

Theoretical entropy charges log2(pool) bits for every word. The penalty model
then subtracts bits for predictability, never going below zero, and the
result is converted into the time an attacker needs at offline and online
guess rates.

	engine := strength.NewEngine(penalty.New(templates, matcher))
	res, err := engine.Score("correct horse battery staple", strength.DefaultOptions())

Engines are safe for concurrent use once built: the index, templates and
flair table they hold are read-only.
*/
package strength

import (
	"errors"
	"math"
	"strings"

	"github.com/bastiangx/phrasemeter/pkg/normalize"
	"github.com/bastiangx/phrasemeter/pkg/penalty"
	"github.com/charmbracelet/log"
	zxcvbn "github.com/nbutton23/zxcvbn-go"
)

const (
	// DefaultPoolSize is the size of a diceware word list.
	DefaultPoolSize = 7776
	// DefaultOfflineRate is guesses per second against a leaked fast hash.
	DefaultOfflineRate = 1e12
	// DefaultOnlineRate is guesses per second against a rate-limited login.
	DefaultOnlineRate = 10
)

// ErrInvalidPhrase is returned for empty, whitespace-only or wordless phrases.
var ErrInvalidPhrase = errors.New("invalid phrase")

// Options are the per-call scoring parameters.
type Options struct {
	PoolSize int
	// Penalty, when non-nil and non-negative, replaces the penalty model.
	Penalty     *float64
	OfflineRate float64
	OnlineRate  float64
}

// DefaultOptions returns the documented defaults.
func DefaultOptions() Options {
	return Options{
		PoolSize:    DefaultPoolSize,
		OfflineRate: DefaultOfflineRate,
		OnlineRate:  DefaultOnlineRate,
	}
}

func (o Options) withDefaults() Options {
	if o.PoolSize <= 0 {
		o.PoolSize = DefaultPoolSize
	}
	if o.OfflineRate <= 0 {
		o.OfflineRate = DefaultOfflineRate
	}
	if o.OnlineRate <= 0 {
		o.OnlineRate = DefaultOnlineRate
	}
	return o
}

// CrackTime is one crack-time estimate.
type CrackTime struct {
	Seconds   float64
	Formatted string
	Flair     string
}

// Reference is an independent zxcvbn estimate of the same phrase.
type Reference struct {
	Entropy   float64
	Score     int
	CrackTime string
}

// Result is the outcome of scoring one phrase.
type Result struct {
	Phrase            string
	WordCount         int
	Entropy           float64
	Penalty           float64
	PenaltyOverridden bool
	Breakdown         *penalty.Breakdown
	AdjustedEntropy   float64
	Offline           CrackTime
	Online            CrackTime
	Reference         *Reference
}

// Engine scores phrases.
type Engine struct {
	model     *penalty.Model
	flair     FlairTable
	choose    Chooser
	reference bool
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithFlair replaces the built-in flair table.
func WithFlair(t FlairTable) EngineOption {
	return func(e *Engine) {
		e.flair = t
	}
}

// WithChooser replaces the random flair selector.
func WithChooser(c Chooser) EngineOption {
	return func(e *Engine) {
		e.choose = c
	}
}

// WithReference toggles the zxcvbn reference estimate.
func WithReference(enabled bool) EngineOption {
	return func(e *Engine) {
		e.reference = enabled
	}
}

// NewEngine builds an engine around model. A nil model scores with only the
// context-free signals.
func NewEngine(model *penalty.Model, opts ...EngineOption) *Engine {
	if model == nil {
		model = penalty.New(nil, nil)
	}
	e := &Engine{
		model:  model,
		flair:  DefaultFlair(),
		choose: RandomChooser,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Score computes the strength result for phrase.
func (e *Engine) Score(phrase string, opts Options) (Result, error) {
	if strings.TrimSpace(phrase) == "" {
		return Result{}, ErrInvalidPhrase
	}
	words := normalize.WordCount(phrase)
	if words == 0 {
		return Result{}, ErrInvalidPhrase
	}
	opts = opts.withDefaults()

	res := Result{
		Phrase:    phrase,
		WordCount: words,
		Entropy:   TheoreticalEntropy(words, opts.PoolSize),
	}

	if opts.Penalty != nil && *opts.Penalty >= 0 {
		res.Penalty = *opts.Penalty
		res.PenaltyOverridden = true
	} else {
		b := e.model.Estimate(phrase)
		res.Breakdown = &b
		res.Penalty = float64(b.Total)
	}

	res.AdjustedEntropy = AdjustedEntropy(res.Entropy, res.Penalty)
	res.Offline = e.crackTime(res.AdjustedEntropy, opts.OfflineRate)
	res.Online = e.crackTime(res.AdjustedEntropy, opts.OnlineRate)

	if e.reference {
		ref := zxcvbn.PasswordStrength(phrase, nil)
		res.Reference = &Reference{
			Entropy:   ref.Entropy,
			Score:     ref.Score,
			CrackTime: ref.CrackTimeDisplay,
		}
	}

	log.Debug("scored phrase", "words", res.WordCount, "entropy", res.Entropy, "penalty", res.Penalty, "adjusted", res.AdjustedEntropy)
	return res, nil
}

func (e *Engine) crackTime(bits, rate float64) CrackTime {
	seconds := CrackSeconds(bits, rate)
	return CrackTime{
		Seconds:   seconds,
		Formatted: FormatDuration(seconds),
		Flair:     e.flair.Pick(seconds, e.choose),
	}
}

// TheoreticalEntropy is words * log2(pool), rounded to one decimal.
func TheoreticalEntropy(words, pool int) float64 {
	if words <= 0 || pool <= 1 {
		return 0
	}
	return round1(float64(words) * math.Log2(float64(pool)))
}

// AdjustedEntropy subtracts penalty from entropy, floored at zero and rounded
// to one decimal.
func AdjustedEntropy(entropy, penalty float64) float64 {
	return round1(math.Max(0, entropy-penalty))
}

// CrackSeconds is 2^bits / rate. A non-positive rate yields +Inf.
func CrackSeconds(bits, rate float64) float64 {
	if rate <= 0 {
		return math.Inf(1)
	}
	return math.Pow(2, bits) / rate
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
