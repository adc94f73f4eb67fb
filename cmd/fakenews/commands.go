package main

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/aarunima248/fake-news/internal/config"
	"github.com/aarunima248/fake-news/internal/corrections"
	"github.com/aarunima248/fake-news/internal/engine"
	"github.com/aarunima248/fake-news/internal/extract"
	"github.com/aarunima248/fake-news/internal/pipeline"
	"github.com/aarunima248/fake-news/internal/session"
)

// --- analyze ---

var analyzeCmd = &cobra.Command{
	Use:   "analyze [text]",
	Short: "Classify news content as real or fake",
	Long: `Classify news content and record the verdict in your CLI session.

Content comes from the positional argument, --text, --file (plain text, HTML
or PDF), or piped stdin, in that order.

Examples:
  fakenews analyze "BREAKING: scientists stunned by miracle cure"
  fakenews analyze --file article.pdf --source whatsapp --shared-by "family group"
  cat article.txt | fakenews analyze --no-record`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, _ := cmd.Flags().GetString("text")
		file, _ := cmd.Flags().GetString("file")
		content, err := resolveContent(args, text, file)
		if err != nil {
			return err
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		if noRecord, _ := cmd.Flags().GetBool("no-record"); noRecord {
			resp, err := client.post(cmd.Context(), "/api/classify", map[string]any{"content": content})
			if err != nil {
				return err
			}
			var result struct {
				Verdict    engine.Verdict     `json:"verdict"`
				Confidence *float64           `json:"confidence"`
				Correction *corrections.Entry `json:"correction"`
			}
			if err := decodeJSON(resp, &result); err != nil {
				return err
			}
			printVerdict(result.Verdict, result.Confidence, result.Correction)
			return nil
		}

		req := map[string]any{"content": content}
		if source, _ := cmd.Flags().GetString("source"); source != "" {
			req["source"] = source
		}
		if author, _ := cmd.Flags().GetString("author"); author != "" {
			req["author"] = author
		}
		if articleURL, _ := cmd.Flags().GetString("url"); articleURL != "" {
			req["url"] = articleURL
		}
		if sharedBy, _ := cmd.Flags().GetString("shared-by"); sharedBy != "" {
			req["shared_by"] = sharedBy
		}
		if shareCount, _ := cmd.Flags().GetInt("share-count"); shareCount != 0 {
			req["share_count"] = shareCount
		}

		resp, err := client.post(cmd.Context(), "/api/analyze", req)
		if err != nil {
			return err
		}
		var analysis pipeline.Analysis
		if err := decodeJSON(resp, &analysis); err != nil {
			return err
		}

		printVerdict(analysis.Record.Prediction, analysis.Record.Confidence, analysis.Correction)
		printStep("Recorded as %s (%d words)", shortID(analysis.Record.ContentID), analysis.Record.Metadata.WordCount)
		return nil
	},
}

// shortID abbreviates a content digest for display.
func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}

// resolveContent picks the analyze input: positional text, --text, --file
// (extracted locally), or piped stdin, in that order.
func resolveContent(args []string, text, file string) (string, error) {
	switch {
	case len(args) == 1 && strings.TrimSpace(args[0]) != "":
		return args[0], nil
	case text != "":
		return text, nil
	case file != "":
		return extract.FromFile(file)
	}

	if info, err := os.Stdin.Stat(); err == nil && info.Mode()&os.ModeCharDevice == 0 {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		if strings.TrimSpace(string(data)) != "" {
			return string(data), nil
		}
	}
	return "", fmt.Errorf("no content: pass text as an argument, use --text or --file, or pipe stdin")
}

func init() {
	analyzeCmd.Flags().String("text", "", "text content to analyze")
	analyzeCmd.Flags().String("file", "", "file to analyze (.txt, .html or .pdf)")
	analyzeCmd.Flags().String("source", "", "where the content came from: news_article, twitter, facebook, whatsapp or other")
	analyzeCmd.Flags().String("author", "", "author of the content")
	analyzeCmd.Flags().String("url", "", "URL the content was published at")
	analyzeCmd.Flags().String("shared-by", "", "who shared the content with you")
	analyzeCmd.Flags().Int("share-count", 0, "how many times the content was shared")
	analyzeCmd.Flags().Bool("no-record", false, "classify without recording to the session history")
}

// --- export ---

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export this session's history as JSON or CSV",
	Long: `Export this session's analysis history.

Examples:
  fakenews export --format json
  fakenews export --format csv --out history.csv`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		out, _ := cmd.Flags().GetString("out")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), "/api/export?format="+url.QueryEscape(format))
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode >= 400 {
			return apiError(resp)
		}

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("reading export: %w", err)
		}

		if out == "" {
			_, err := os.Stdout.Write(data)
			return err
		}
		if err := os.WriteFile(out, data, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", out, err)
		}
		printSuccess("Exported session history to %s", out)
		return nil
	},
}

func init() {
	exportCmd.Flags().String("format", "json", "export format: json or csv")
	exportCmd.Flags().String("out", "", "write to file instead of stdout")
}

// --- stats ---

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show this session's analysis statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), "/api/stats")
		if err != nil {
			return err
		}
		var stats session.Stats
		if err := decodeJSON(resp, &stats); err != nil {
			return err
		}

		if stats.Total == 0 {
			printStep("Nothing analyzed yet in this session")
			return nil
		}
		printStatus("Analyzed", "%d", stats.Total)
		printStatus("Real", "%d (%.0f%%)", stats.Real, stats.RealPct)
		printStatus("Fake", "%d (%.0f%%)", stats.Fake, stats.FakePct)
		if stats.AvgConfidence != nil {
			printStatus("Avg confidence", "%.1f%%", *stats.AvgConfidence)
		}
		if stats.LastAnalyzedAt != nil {
			printStatus("Last analyzed", "%s", stats.LastAnalyzedAt.Local().Format(time.RFC822))
		}
		return nil
	},
}

// --- clear ---

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear this session's analysis history",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.delete(cmd.Context(), "/api/records")
		if err != nil {
			return err
		}
		var result map[string]string
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		printSuccess("Session history cleared")
		return nil
	},
}

// --- corrections ---

var correctionsCmd = &cobra.Command{
	Use:   "corrections",
	Short: "Work with the misinformation correction catalog",
}

var correctionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the catalog entries the server is using",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), "/api/corrections")
		if err != nil {
			return err
		}
		var payload struct {
			Corrections []corrections.Entry `json:"corrections"`
		}
		if err := decodeJSON(resp, &payload); err != nil {
			return err
		}

		for _, e := range payload.Corrections {
			fmt.Fprintln(os.Stdout, colorize(colorBold, e.Pattern))
			fmt.Fprintf(os.Stdout, "  %s\n", e.Correction)
			if e.Topic != "" {
				fmt.Fprintf(os.Stdout, "  topic: %s\n", e.Topic)
			}
			if e.SourceURL != "" {
				fmt.Fprintf(os.Stdout, "  source: %s\n", e.SourceURL)
			}
		}
		printStep("%d entries", len(payload.Corrections))
		return nil
	},
}

var correctionsBuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Compile a YAML correction catalog into a SQLite artifact",
	Long: `Compile a YAML correction catalog into the SQLite artifact the server
loads at startup. Runs entirely offline.

Example:
  fakenews corrections build --from corrections.yaml --to corrections.db`,
	RunE: func(cmd *cobra.Command, args []string) error {
		from, _ := cmd.Flags().GetString("from")
		to, _ := cmd.Flags().GetString("to")

		entries, err := corrections.LoadYAML(from)
		if err != nil {
			return err
		}
		if err := corrections.BuildDB(to, entries); err != nil {
			return err
		}

		printSuccess("Built %s with %d entries", to, len(entries))
		printStep("Set corrections.path: %s to serve from it", to)
		return nil
	},
}

func init() {
	correctionsBuildCmd.Flags().String("from", "corrections.yaml", "YAML catalog to read")
	correctionsBuildCmd.Flags().String("to", "corrections.db", "SQLite artifact to write")
	correctionsCmd.AddCommand(correctionsListCmd, correctionsBuildCmd)
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and manage configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		for _, k := range config.ShowAll(cfg) {
			fmt.Fprintf(os.Stdout, "%s %s\n", colorize(colorBold, k.Key+":"), k.Value)
		}

		if used := vp.ConfigFileUsed(); used != "" {
			printStep("Loaded from %s", used)
		} else {
			printStep("No config file; defaults and FAKENEWS_* environment only")
		}
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfgFile
		if path == "" {
			var err error
			path, err = config.DefaultConfigPath()
			if err != nil {
				return err
			}
		}

		if err := config.WriteDefault(path); err != nil {
			return err
		}
		printSuccess("Wrote %s", path)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd, configInitCmd)
}
