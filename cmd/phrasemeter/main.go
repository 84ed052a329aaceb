// Copyright 2025 The WordServe Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main implements the phrasemeter scoring server and CLI.

phrasemeter estimates how hard a multi-word passphrase is to guess. Each word
is worth log2(pool) bits; bits are then taken away for predictability: a close
match with a well-known quotation, a fill-in-the-blank template, title case,
grammatical flow, repetition and so on. The adjusted entropy is turned into
offline and online crack times with a flavour line for each.

# Usage

Score a phrase once:

	phrasemeter correct horse battery staple

Run the interactive CLI with debug logging:

	phrasemeter -c -d

Start the MessagePack IPC server (the default when no phrase is given):

	phrasemeter -corpus data/quotes.db

# Configuration

Runtime configuration is a TOML file created with defaults on first run:

	[scoring]
	pool_size = 7776
	offline_rate = 1e12
	online_rate = 10.0

	[corpus]
	path = "data/quotes.json"
	popularity_floor = 0.01
	quote_threshold = 0.6

Flags override the file for a single run.

# Degraded mode

A missing or unreadable quote corpus or template file is not fatal. The
corresponding signal is switched off with a warning and scoring continues.

# Command Line Flags

	-version   Show current version
	-d         Enable debug logging
	-c         Run the interactive CLI
	-config    Path to a config file
	-corpus    Quote corpus (.json, .db/.sqlite or .msgpack cache)
	-cache     Index cache file, refreshed when stale
	-templates Template file (.json or .toml)
	-flair     Flair file (.json or .toml)
	-pool      Word pool size
	-penalty   Fixed penalty in bits, bypassing the model (CLI only)
	-offline   Offline guesses per second
	-online    Online guesses per second
	-diag      Similarity diagnostics file ("-" for stderr)
	-ref       Include the zxcvbn reference estimate
	-rebuild-config
	           Overwrite the default config file with defaults
*/
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/bastiangx/phrasemeter/internal/cli"
	"github.com/bastiangx/phrasemeter/internal/logger"
	"github.com/bastiangx/phrasemeter/internal/utils"
	"github.com/bastiangx/phrasemeter/pkg/config"
	"github.com/bastiangx/phrasemeter/pkg/corpus"
	"github.com/bastiangx/phrasemeter/pkg/penalty"
	"github.com/bastiangx/phrasemeter/pkg/server"
	"github.com/bastiangx/phrasemeter/pkg/similarity"
	"github.com/bastiangx/phrasemeter/pkg/strength"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
)

const (
	Version = "0.3.0-beta"
	AppName = "phrasemeter"
	gh      = "https://github.com/bastiangx/phrasemeter"
)

// sigHandler is a simple handler for OS signals to exit normally.
func sigHandler() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		os.Exit(0)
	}()
}

// main wires the packages together and picks a mode.
func main() {
	sigHandler()
	defaults := config.DefaultConfig()

	showVersion := flag.Bool("version", false, "Show current version")
	debugMode := flag.Bool("d", false, "Toggle debug mode")
	cliMode := flag.Bool("c", false, "Run CLI -- score phrases typed on stdin")
	configPath := flag.String("config", "", "Path to a custom config file")
	corpusPath := flag.String("corpus", defaults.Corpus.Path, "Quote corpus file")
	cachePath := flag.String("cache", defaults.Corpus.CachePath, "Index cache file (empty disables caching)")
	templatesPath := flag.String("templates", defaults.Templates.Path, "Phrase template file")
	flairPath := flag.String("flair", defaults.Flair.Path, "Flair file (empty uses the built-in table)")
	poolSize := flag.Int("pool", defaults.Scoring.PoolSize, "Word pool size")
	penaltyBits := flag.Float64("penalty", -1, "Fixed penalty in bits; negative uses the penalty model")
	offlineRate := flag.Float64("offline", defaults.Scoring.OfflineRate, "Offline guesses per second")
	onlineRate := flag.Float64("online", defaults.Scoring.OnlineRate, "Online guesses per second")
	diagPath := flag.String("diag", defaults.Corpus.Diagnostics, "Similarity diagnostics file (- for stderr)")
	reference := flag.Bool("ref", defaults.Scoring.Reference, "Include the zxcvbn reference estimate")
	rebuildConfig := flag.Bool("rebuild-config", false, "Overwrite the default config file with defaults and exit")

	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	if *debugMode {
		log.SetLevel(log.DebugLevel)
		log.SetReportTimestamp(true)
	} else {
		log.SetLevel(log.WarnLevel)
	}

	if *rebuildConfig {
		path, err := config.RebuildConfigFile()
		if err != nil {
			log.Fatalf("Failed to rebuild config: %v", err)
		}
		fmt.Fprintf(os.Stderr, "Wrote default config to %s\n", path)
		os.Exit(0)
	}

	cfg, usedConfig, err := config.LoadConfigWithPriority(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Debugf("Using config file: (%s)", usedConfig)

	// explicit flags win over the config file
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "corpus":
			cfg.Corpus.Path = *corpusPath
		case "cache":
			cfg.Corpus.CachePath = *cachePath
		case "templates":
			cfg.Templates.Path = *templatesPath
		case "flair":
			cfg.Flair.Path = *flairPath
		case "pool":
			cfg.Scoring.PoolSize = *poolSize
		case "offline":
			cfg.Scoring.OfflineRate = *offlineRate
		case "online":
			cfg.Scoring.OnlineRate = *onlineRate
		case "diag":
			cfg.Corpus.Diagnostics = *diagPath
		case "ref":
			cfg.Scoring.Reference = *reference
		}
	})

	pathResolver, err := utils.NewPathResolver()
	if err != nil {
		log.Fatalf("Failed to initialize path resolver: %v", err)
	}
	log.Debugf("Executable dir: %s, config dir: %s", pathResolver.GetExecutableDir(), pathResolver.GetConfigDir())

	engine, quotes, closeDiag := buildEngine(cfg, pathResolver)
	defer closeDiag()

	opts := cfg.ScoreOptions()
	if *penaltyBits >= 0 {
		opts.Penalty = penaltyBits
	}

	if flag.NArg() > 0 {
		phrase := strings.Join(flag.Args(), " ")
		res, err := engine.Score(phrase, opts)
		if err != nil {
			log.Errorf("Cannot score phrase: %v", err)
			closeDiag()
			os.Exit(1)
		}
		fmt.Print(cli.Render(res))
		return
	}

	if *cliMode {
		log.SetReportTimestamp(false)
		inputHandler := cli.NewInputHandler(engine, opts, os.Stdin, os.Stdout)
		if err := inputHandler.Start(); err != nil {
			log.Fatalf("CLI error: %v", err)
		}
		return
	}

	log.Debug("spawning IPC")
	srv := server.NewServer(engine, cfg, quotes, os.Stdin, os.Stdout)
	showStartupInfo(cfg, quotes)
	if err := srv.Start(); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}

// buildEngine loads the corpus, templates and flair. Any source that cannot be
// read switches its signal off instead of aborting.
func buildEngine(cfg *config.Config, pr *utils.PathResolver) (*strength.Engine, int, func()) {
	closeDiag := func() {}

	var matcher *similarity.Matcher
	quotes := 0
	corpusFile := pr.ResolveDataFile(cfg.Corpus.Path)
	cacheFile := pr.ResolveDataFile(cfg.Corpus.CachePath)
	log.Debugf("Using corpus at: %s (cache: %s)", utils.GetAbsolutePath(corpusFile), utils.GetAbsolutePath(cacheFile))
	idx, err := corpus.LoadWithCache(corpusFile, cacheFile, cfg.Corpus.PopularityFloor)
	switch {
	case err == nil:
		quotes = idx.Len()
		log.Debugf("Loaded %d quotes from %s (%d rejected)", quotes, corpusFile, idx.Rejected())
		mopts := []similarity.Option{similarity.WithThreshold(cfg.Corpus.QuoteThreshold)}
		if cfg.Corpus.Diagnostics != "" {
			diag, closeFn, derr := logger.OpenDiagnostics(cfg.Corpus.Diagnostics)
			if derr != nil {
				log.Warnf("Diagnostics disabled: %v", derr)
			} else {
				mopts = append(mopts, similarity.WithDiagnostics(diag))
				closeDiag = func() {
					if err := closeFn(); err != nil {
						log.Warnf("Closing diagnostics: %v", err)
					}
				}
			}
		}
		matcher = similarity.NewMatcher(idx, mopts...)
	case errors.Is(err, corpus.ErrCorpusUnavailable):
		log.Warnf("Quote signal disabled: %v", err)
	default:
		log.Warnf("Quote signal disabled, unexpected corpus error: %v", err)
	}

	var templates []penalty.Template
	if cfg.Templates.Path != "" {
		templates, err = penalty.LoadTemplates(pr.ResolveDataFile(cfg.Templates.Path))
		if err != nil {
			log.Warnf("Template signal disabled: %v", err)
		}
	}

	flairFile := ""
	if cfg.Flair.Path != "" {
		flairFile = pr.ResolveDataFile(cfg.Flair.Path)
	}

	engine := strength.NewEngine(
		penalty.New(templates, matcher),
		strength.WithFlair(strength.LoadFlair(flairFile)),
		strength.WithReference(cfg.Scoring.Reference),
	)
	return engine, quotes, closeDiag
}

func printVersion() {
	l := logger.NewWithConfig(os.Stderr, "", log.InfoLevel, false, false, log.TextFormatter)

	styles := log.DefaultStyles()
	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"}).
		Background(lipgloss.AdaptiveColor{Light: "#f2e9e1", Dark: "#26233a"})
	styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	l.SetStyles(styles)

	l.Print("")
	l.Print("[ phrasemeter ] How long would your passphrase last?")
	l.Print("", "version", Version)
	l.Print("")
	l.Print("use -h or --help to see available options")
	l.Print("Github Repo", "gh", gh)
}

// showStartupInfo displays some basic info about the init process.
func showStartupInfo(cfg *config.Config, quotes int) {
	l := logger.New(AppName)
	l.SetLevel(log.InfoLevel)
	l.Infof("Version: %s", Version)
	l.Infof("Process ID: [ %d ]", os.Getpid())
	l.Infof("quotes: %s", humanize.Comma(int64(quotes)))
	l.Infof("pool: %s words", humanize.Comma(int64(cfg.Scoring.PoolSize)))
	l.Info("status: ready")
}
