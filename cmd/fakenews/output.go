package main

import (
	"fmt"
	"os"

	"github.com/aarunima248/fake-news/internal/corrections"
	"github.com/aarunima248/fake-news/internal/engine"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorBold   = "\033[1m"
)

func colorize(color, text string) string {
	if noColor {
		return text
	}
	return color + text + colorReset
}

func printSuccess(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(os.Stderr, colorize(colorGreen, "✓ "+msg))
}

func printError(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(os.Stderr, colorize(colorRed, "✗ "+msg))
}

func printWarning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(os.Stderr, colorize(colorYellow, "⚠ "+msg))
}

func printStatus(label string, format string, args ...any) {
	val := fmt.Sprintf(format, args...)
	l := colorize(colorBold, label+":")
	fmt.Fprintf(os.Stderr, "  %s %s\n", l, val)
}

func printStep(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(os.Stderr, colorize(colorCyan, "→ "+msg))
}

// printVerdict writes the classification outcome to stdout. Everything else
// this CLI prints is commentary on stderr; the verdict is the result.
func printVerdict(verdict engine.Verdict, confidence *float64, correction *corrections.Entry) {
	switch verdict {
	case engine.VerdictReal:
		fmt.Fprintln(os.Stdout, colorize(colorGreen, "✓ The News is Real!"))
	default:
		fmt.Fprintln(os.Stdout, colorize(colorRed, "✗ The News is Fake!"))
	}
	if confidence != nil {
		fmt.Fprintf(os.Stdout, "Confidence: %.1f%%\n", *confidence)
	}
	if correction != nil {
		fmt.Fprintln(os.Stdout)
		fmt.Fprintln(os.Stdout, colorize(colorBold, "Known claim: ")+correction.Pattern)
		fmt.Fprintln(os.Stdout, colorize(colorBold, "Correction:  ")+correction.Correction)
		if correction.SourceURL != "" {
			fmt.Fprintln(os.Stdout, colorize(colorBold, "Source:      ")+correction.SourceURL)
		}
	}
}
