package strength

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
)

// NoFlair is returned when no band lies above the crack time.
const NoFlair = "no flair available"

// ErrFlairSourceMalformed is wrapped by flair loading failures.
var ErrFlairSourceMalformed = errors.New("flair source malformed")

// Chooser returns an index in [0, n). n is always > 0.
type Chooser func(n int) int

// RandomChooser picks uniformly at random.
func RandomChooser(n int) int {
	return rand.Intn(n)
}

// FirstChooser always picks the first line. Useful for tests.
func FirstChooser(int) int {
	return 0
}

// FlairBand holds the lines shown for crack times below Threshold seconds.
type FlairBand struct {
	Threshold float64
	Lines     []string
}

// FlairTable is an ascending list of bands. It is read-only once built.
type FlairTable struct {
	bands []FlairBand
}

// NewFlairTable validates and sorts bands.
func NewFlairTable(bands map[float64][]string) (FlairTable, error) {
	var t FlairTable
	for threshold, lines := range bands {
		if math.IsNaN(threshold) || math.IsInf(threshold, 0) || threshold < 0 {
			return FlairTable{}, fmt.Errorf("%w: invalid threshold %v", ErrFlairSourceMalformed, threshold)
		}
		kept := make([]string, 0, len(lines))
		for _, l := range lines {
			if strings.TrimSpace(l) != "" {
				kept = append(kept, l)
			}
		}
		if len(kept) == 0 {
			return FlairTable{}, fmt.Errorf("%w: threshold %v has no lines", ErrFlairSourceMalformed, threshold)
		}
		t.bands = append(t.bands, FlairBand{Threshold: threshold, Lines: kept})
	}
	if len(t.bands) == 0 {
		return FlairTable{}, fmt.Errorf("%w: no bands", ErrFlairSourceMalformed)
	}
	sort.Slice(t.bands, func(i, j int) bool {
		return t.bands[i].Threshold < t.bands[j].Threshold
	})
	return t, nil
}

// ParseFlair converts stringified thresholds to a table.
func ParseFlair(raw map[string][]string) (FlairTable, error) {
	bands := make(map[float64][]string, len(raw))
	for key, lines := range raw {
		threshold, err := strconv.ParseFloat(strings.TrimSpace(key), 64)
		if err != nil {
			return FlairTable{}, fmt.Errorf("%w: threshold %q: %v", ErrFlairSourceMalformed, key, err)
		}
		bands[threshold] = append(bands[threshold], lines...)
	}
	return NewFlairTable(bands)
}

// ReadFlair loads a JSON object or TOML table of threshold -> lines.
func ReadFlair(path string) (FlairTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return FlairTable{}, fmt.Errorf("%w: %v", ErrFlairSourceMalformed, err)
	}

	raw := make(map[string][]string)
	if strings.ToLower(filepath.Ext(path)) == ".toml" {
		_, err = toml.Decode(string(data), &raw)
	} else {
		err = json.Unmarshal(data, &raw)
	}
	if err != nil {
		return FlairTable{}, fmt.Errorf("%w: parse %s: %v", ErrFlairSourceMalformed, path, err)
	}
	return ParseFlair(raw)
}

// LoadFlair is ReadFlair that never fails: an empty path or any error falls
// back to the built-in table, logging a warning for errors.
func LoadFlair(path string) FlairTable {
	if path == "" {
		return DefaultFlair()
	}
	t, err := ReadFlair(path)
	if err != nil {
		log.Warnf("Using built-in flair table: %v", err)
		return DefaultFlair()
	}
	log.Debugf("Loaded %d flair bands from %s", len(t.bands), path)
	return t
}

// Bands returns a copy of the bands in ascending order.
func (t FlairTable) Bands() []FlairBand {
	out := make([]FlairBand, len(t.bands))
	for i, b := range t.bands {
		out[i] = FlairBand{Threshold: b.Threshold, Lines: append([]string(nil), b.Lines...)}
	}
	return out
}

// Pick returns a line from the first band whose threshold is strictly greater
// than seconds, or NoFlair if there is none.
func (t FlairTable) Pick(seconds float64, choose Chooser) string {
	if choose == nil {
		choose = RandomChooser
	}
	for _, b := range t.bands {
		if b.Threshold > seconds {
			i := choose(len(b.Lines))
			if i < 0 || i >= len(b.Lines) {
				i = 0
			}
			return b.Lines[i]
		}
	}
	return NoFlair
}

var defaultFlair = map[float64][]string{
	1: {
		"Faster than you can blink.",
		"Instant. Not even a coffee break.",
	},
	secondsPerMinute: {
		"Gone before the kettle boils.",
		"Barely a speed bump.",
	},
	secondsPerHour: {
		"About one episode of a sitcom.",
		"A lunch break for a bored attacker.",
	},
	secondsPerDay: {
		"Cracked before tomorrow's standup.",
		"One good night of GPU time.",
	},
	30 * secondsPerDay: {
		"Roughly a month of patience.",
		"Long enough to forget why you started.",
	},
	SecondsPerYear: {
		"A year of someone's electricity bill.",
		"See you next birthday.",
	},
	1e3 * SecondsPerYear: {
		"Older than most cathedrals by the time it falls.",
		"Centuries of brute force.",
	},
	1e6 * SecondsPerYear: {
		"Continents will drift noticeably first.",
		"Evolution would have time for a new species.",
	},
	1e9 * SecondsPerYear: {
		"The sun will be a red giant first.",
		"Geology-grade patience required.",
	},
	1e15 * SecondsPerYear: {
		"The stars will have burned out.",
		"Heat death is a closer deadline.",
	},
	1e33 * SecondsPerYear: {
		"Numbers this big stop meaning anything.",
		"Even the protons may decay first.",
	},
}

// DefaultFlair returns the built-in table.
func DefaultFlair() FlairTable {
	t, err := NewFlairTable(defaultFlair)
	if err != nil {
		panic(err)
	}
	return t
}
