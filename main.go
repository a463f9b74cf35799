// Command redline reviews an AI-proposed rewrite of a text file as
// individually acceptable suggestions. It diffs the original against the
// proposed text, overlays the hunks on an in-memory document, and opens an
// interactive review; the resolved document is written out on exit.
package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"redline/doc"
	"redline/engine"
	"redline/tui"
	"redline/types"
)

type config struct {
	originalPath string
	proposedPath string
	outPath      string
	acceptAll    bool
	rejectAll    bool
	logLevel     string
}

func parseFlags() config {
	var cfg config
	flag.StringVar(&cfg.originalPath, "original", "", "path to the original text (required)")
	flag.StringVar(&cfg.proposedPath, "proposed", "", "path to the proposed rewrite (required)")
	flag.StringVar(&cfg.outPath, "out", "", "path to write the resolved text (default stdout)")
	flag.BoolVar(&cfg.acceptAll, "accept-all", false, "accept every suggestion without review")
	flag.BoolVar(&cfg.rejectAll, "reject-all", false, "reject every suggestion without review")
	flag.StringVar(&cfg.logLevel, "log-level", "warn", "log level: trace, debug, info, warn, error")
	flag.Parse()
	return cfg
}

func setupLogger(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.WarnLevel
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(lvl).
		With().Timestamp().Logger()
}

func run(cfg config) error {
	original, err := os.ReadFile(cfg.originalPath)
	if err != nil {
		return fmt.Errorf("reading original: %w", err)
	}
	proposed, err := os.ReadFile(cfg.proposedPath)
	if err != nil {
		return fmt.Errorf("reading proposed: %w", err)
	}

	d := doc.New(string(original))
	eng := engine.New(d)
	defer eng.Close()

	span := types.Span{From: 0, To: d.Len()}
	groupID, err := eng.ApplyRewrite(string(original), string(proposed), span, "")
	if err != nil {
		return fmt.Errorf("applying rewrite: %w", err)
	}
	log.Info().Str("group", groupID).Msg("rewrite staged for review")

	switch {
	case cfg.acceptAll:
		if err := eng.AcceptAll(); err != nil {
			return err
		}
	case cfg.rejectAll:
		if err := eng.RejectAll(); err != nil {
			return err
		}
	default:
		if eng.State() == engine.StateReviewing {
			p := tea.NewProgram(tui.New(eng, string(original), string(proposed)), tea.WithAltScreen())
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("review ui: %w", err)
			}
		}
		// Suggestions left pending when the reviewer quits are rejected, so
		// the output never contains overlay text.
		if eng.State() == engine.StateReviewing {
			if err := eng.RejectAll(); err != nil {
				return err
			}
		}
	}

	if cfg.outPath == "" {
		_, err = fmt.Print(d.Text())
		return err
	}
	return os.WriteFile(cfg.outPath, []byte(d.Text()), 0o644)
}

func main() {
	cfg := parseFlags()
	setupLogger(cfg.logLevel)

	if cfg.originalPath == "" || cfg.proposedPath == "" {
		flag.Usage()
		os.Exit(2)
	}
	if cfg.acceptAll && cfg.rejectAll {
		fmt.Fprintln(os.Stderr, "redline: -accept-all and -reject-all are mutually exclusive")
		os.Exit(2)
	}

	if err := run(cfg); err != nil {
		log.Error().Err(err).Msg("redline failed")
		os.Exit(1)
	}
}
