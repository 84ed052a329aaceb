package penalty

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/bastiangx/phrasemeter/pkg/normalize"
)

// ErrTemplateSourceUnavailable is wrapped by template loading failures.
var ErrTemplateSourceUnavailable = errors.New("template source unavailable")

var placeholder = regexp.MustCompile(`\{\d*\}`)

// Template is a phrase template with its placeholders removed.
type Template struct {
	Raw   string
	Words []string
}

// NewTemplate strips placeholder markers like {0} and splits the rest into
// lowercase words.
func NewTemplate(raw string) Template {
	stripped := placeholder.ReplaceAllString(raw, " ")
	return Template{
		Raw:   raw,
		Words: normalize.Words(strings.ToLower(stripped)),
	}
}

// ParseTemplates builds templates from raw strings, skipping ones without
// any literal word.
func ParseTemplates(raw []string) []Template {
	out := make([]Template, 0, len(raw))
	for _, r := range raw {
		t := NewTemplate(r)
		if len(t.Words) == 0 {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Coverage is the fraction of template words found anywhere in phrase.
func (t Template) Coverage(phraseWords map[string]struct{}) float64 {
	if len(t.Words) == 0 {
		return 0
	}
	hit := 0
	for _, w := range t.Words {
		if _, ok := phraseWords[w]; ok {
			hit++
		}
	}
	return float64(hit) / float64(len(t.Words))
}

// BestTemplateCoverage returns the highest coverage over all templates.
func BestTemplateCoverage(templates []Template, phrase string) float64 {
	if len(templates) == 0 {
		return 0
	}
	words := make(map[string]struct{})
	for _, w := range normalize.Words(strings.ToLower(phrase)) {
		words[w] = struct{}{}
	}
	best := 0.0
	for _, t := range templates {
		if c := t.Coverage(words); c > best {
			best = c
		}
	}
	return best
}

// TemplateBand maps a coverage fraction to a penalty.
func TemplateBand(coverage float64) int {
	switch {
	case coverage >= 0.9:
		return 25
	case coverage >= 0.7:
		return 15
	case coverage >= 0.5:
		return 10
	}
	return 0
}

// LoadTemplates reads templates from a JSON array of strings or a TOML file
// with a top-level templates array.
func LoadTemplates(path string) ([]Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTemplateSourceUnavailable, err)
	}

	var raw []string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		var doc struct {
			Templates []string `toml:"templates"`
		}
		if _, err := toml.Decode(string(data), &doc); err != nil {
			return nil, fmt.Errorf("%w: parse %s: %v", ErrTemplateSourceUnavailable, path, err)
		}
		raw = doc.Templates
	default:
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("%w: parse %s: %v", ErrTemplateSourceUnavailable, path, err)
		}
	}
	return ParseTemplates(raw), nil
}
