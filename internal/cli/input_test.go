package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/bastiangx/phrasemeter/pkg/strength"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	log.SetLevel(log.FatalLevel)
}

func newEngine() *strength.Engine {
	return strength.NewEngine(nil, strength.WithChooser(strength.FirstChooser))
}

func TestInputHandlerScoresEachLine(t *testing.T) {
	in := strings.NewReader("correct horse battery staple\n\n   \nPeace Peace Peace Peace")
	var out bytes.Buffer

	h := NewInputHandler(newEngine(), strength.DefaultOptions(), in, &out)
	require.NoError(t, h.Start())
	assert.Equal(t, 2, h.Requests())

	text := out.String()
	assert.Contains(t, text, "7,776")
	assert.Contains(t, text, "51.7 bits")
	assert.Contains(t, text, "repetition")
}

func TestInputHandlerSkipsInvalidPhrase(t *testing.T) {
	in := strings.NewReader("!!! ???\n")
	var out bytes.Buffer

	h := NewInputHandler(newEngine(), strength.DefaultOptions(), in, &out)
	require.NoError(t, h.Start())
	assert.Equal(t, 1, h.Requests())
	assert.NotContains(t, out.String(), "entropy")
}

func TestRenderOverride(t *testing.T) {
	pen := 5.0
	opts := strength.DefaultOptions()
	opts.Penalty = &pen

	res, err := newEngine().Score("alpha beta", opts)
	require.NoError(t, err)

	report := Render(res)
	assert.Contains(t, report, "(override)")
	assert.Contains(t, report, "offline crack")
	assert.NotContains(t, report, "zxcvbn")
}
