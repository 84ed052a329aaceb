// Package cli reads phrases from a terminal and prints their strength report.
package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/bastiangx/phrasemeter/pkg/strength"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
)

var (
	labelStyle = lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#286983", Dark: "#9ccfd8"})
	flairStyle = lipgloss.NewStyle().Italic(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#797593", Dark: "#908caa"})
	penaltyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#b4637a", Dark: "#eb6f92"})
	bonusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#56949f", Dark: "#31748f"})
)

// InputHandler reads one phrase per line and prints a report for each.
type InputHandler struct {
	engine       *strength.Engine
	opts         strength.Options
	in           io.Reader
	out          io.Writer
	requestCount int
}

// NewInputHandler handles initialization of the InputHandler with basic parameters
func NewInputHandler(engine *strength.Engine, opts strength.Options, in io.Reader, out io.Writer) *InputHandler {
	return &InputHandler{
		engine: engine,
		opts:   opts,
		in:     in,
		out:    out,
	}
}

// Start loops until the input ends. Blank lines are ignored.
func (h *InputHandler) Start() error {
	fmt.Fprintln(h.out, labelStyle.Render("phrasemeter CLI"))
	fmt.Fprintf(h.out, "pool %s words, offline %s guesses/s, online %s guesses/s\n",
		humanize.Comma(int64(h.opts.PoolSize)),
		humanize.SIWithDigits(h.opts.OfflineRate, 1, ""),
		humanize.Commaf(h.opts.OnlineRate))
	fmt.Fprintln(h.out, "type a phrase and press Enter (Ctrl+D to exit):")

	reader := bufio.NewReader(h.in)
	for {
		fmt.Fprint(h.out, "> ")
		line, err := reader.ReadString('\n')
		if phrase := strings.TrimSpace(line); phrase != "" {
			h.handleInput(phrase)
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(h.out)
				return nil
			}
			return err
		}
	}
}

// Requests returns the number of phrases handled.
func (h *InputHandler) Requests() int {
	return h.requestCount
}

func (h *InputHandler) handleInput(phrase string) {
	h.requestCount++
	start := time.Now()
	res, err := h.engine.Score(phrase, h.opts)
	if err != nil {
		log.Errorf("Cannot score %q: %v", phrase, err)
		return
	}
	log.Debugf("Took [ %v ] for phrase %q", time.Since(start), phrase)
	fmt.Fprint(h.out, Render(res))
}

// Render formats a result as a multi-line report.
func Render(res strength.Result) string {
	var b strings.Builder
	row := func(label, value string) {
		fmt.Fprintf(&b, "  %s %s\n", labelStyle.Render(fmt.Sprintf("%-16s", label)), valueStyle.Render(value))
	}

	row("words", humanize.Comma(int64(res.WordCount)))
	row("entropy", fmt.Sprintf("%.1f bits", res.Entropy))
	if res.PenaltyOverridden {
		row("penalty", fmt.Sprintf("%.1f bits (override)", res.Penalty))
	} else {
		row("penalty", fmt.Sprintf("%.1f bits", res.Penalty))
	}
	if res.Breakdown != nil {
		for _, sig := range res.Breakdown.Signals {
			switch {
			case sig.Score > 0:
				fmt.Fprintf(&b, "    %s\n", penaltyStyle.Render(fmt.Sprintf("+%d %s", sig.Score, sig.Name)))
			case sig.Score < 0:
				fmt.Fprintf(&b, "    %s\n", bonusStyle.Render(fmt.Sprintf("%d %s", sig.Score, sig.Name)))
			}
		}
	}
	row("adjusted", fmt.Sprintf("%.1f bits", res.AdjustedEntropy))
	row("offline crack", res.Offline.Formatted)
	fmt.Fprintf(&b, "    %s\n", flairStyle.Render(res.Offline.Flair))
	row("online crack", res.Online.Formatted)
	fmt.Fprintf(&b, "    %s\n", flairStyle.Render(res.Online.Flair))
	if ref := res.Reference; ref != nil {
		row("zxcvbn", fmt.Sprintf("score %d/4, %.1f bits, %s", ref.Score, ref.Entropy, ref.CrackTime))
	}
	return b.String()
}
