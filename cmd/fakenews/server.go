package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/aarunima248/fake-news/internal/api"
	"github.com/aarunima248/fake-news/internal/config"
	"github.com/aarunima248/fake-news/internal/corrections"
	"github.com/aarunima248/fake-news/internal/engine"
	"github.com/aarunima248/fake-news/internal/pipeline"
	"github.com/aarunima248/fake-news/internal/session"
	"github.com/aarunima248/fake-news/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the fakenews server (foreground)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running fakenews server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return stopServer()
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show fakenews system status",
	RunE: func(cmd *cobra.Command, args []string) error {
		return showStatus()
	},
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the MCP server on stdio",
	Long: `Run the MCP server on stdio for agent integration.

The model and correction catalog are loaded in-process; no HTTP server is
involved. Point your MCP client at "fakenews mcp".`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMCP()
	},
}

func pidFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "fakenews.pid")
	}
	return filepath.Join(home, ".fakenews", "fakenews.pid")
}

func writePIDFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0o644)
}

func readPIDFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(data)))
}

func removePIDFile(path string) {
	os.Remove(path)
}

// loadCatalog picks the correction source by artifact extension: YAML and
// SQLite files are both accepted, and an unset path means the compiled-in
// default entries.
func loadCatalog(cfg config.Config) (*corrections.Catalog, error) {
	path := cfg.Corrections.Path
	if path == "" {
		return corrections.Default(), nil
	}
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		entries, err := corrections.LoadYAML(path)
		if err != nil {
			return nil, err
		}
		return corrections.NewCatalog(entries)
	default:
		return corrections.LoadDB(path)
	}
}

func runServer() error {
	fmt.Fprintf(os.Stderr, "fakenews version %s\n", version)

	// .env participates in config through the FAKENEWS_* environment.
	_ = godotenv.Load()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	level, err := config.ParseLogLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	// Write PID file. Check if server is already running via health endpoint.
	pidPath := pidFilePath()
	healthClient := &http.Client{Timeout: 2 * time.Second}
	if resp, err := healthClient.Get(cfg.Server.BaseURL + "/health"); err == nil {
		resp.Body.Close()
		if pid, pidErr := readPIDFile(pidPath); pidErr == nil {
			printWarning("fakenews is already running (PID %d)", pid)
			return fmt.Errorf("server already running (PID %d)", pid)
		}
		printWarning("fakenews is already running at %s", cfg.Server.BaseURL)
		return fmt.Errorf("server already running at %s", cfg.Server.BaseURL)
	}
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("writing PID file: %w", err)
	}
	defer removePIDFile(pidPath)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Model artifacts are required; refuse to start without them.
	eng, err := engine.Load(cfg.Model.Dir)
	if err != nil {
		return fmt.Errorf("loading model: %w", err)
	}
	info := eng.Info()
	slog.Info("model loaded", "kind", info.Kind, "terms", info.Dimension, "confidence", info.Confidence)

	catalog, err := loadCatalog(cfg)
	if err != nil {
		return fmt.Errorf("loading corrections: %w", err)
	}
	slog.Info("corrections catalog loaded", "entries", catalog.Len())

	sessions := session.NewManager(cfg.Session.TTL, cfg.Session.MaxRecords)
	analyzer := pipeline.NewAnalyzer(eng, catalog, sessions)

	var limiter *api.ClientLimiter
	if cfg.Rate.RPS > 0 {
		limiter = api.NewClientLimiter(cfg.Rate.RPS, cfg.Rate.Burst)
	}

	handler := api.NewHandler(api.Deps{
		Engine:   eng,
		Analyzer: analyzer,
		Sessions: sessions,
		Catalog:  catalog,
		Version:  version,
		Token:    cfg.Server.APIToken,
		Limiter:  limiter,
		Static:   web.Handler(),
	})

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: handler,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	// Start server in a goroutine.
	errCh := make(chan error, 1)
	go func() {
		fmt.Fprintf(os.Stderr, "fakenews listening on %s\n", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for signal or server error.
	select {
	case <-ctx.Done():
		fmt.Fprintln(os.Stderr, "shutting down...")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	// Graceful shutdown with timeout.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func stopServer() error {
	pidPath := pidFilePath()
	pid, err := readPIDFile(pidPath)
	if err != nil {
		printError("fakenews is not running (no PID file)")
		return fmt.Errorf("not running: %w", err)
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		printError("could not find process %d", pid)
		return err
	}

	if err := process.Signal(syscall.SIGTERM); err != nil {
		printError("could not stop fakenews (PID %d): %v", pid, err)
		removePIDFile(pidPath)
		return err
	}

	printSuccess("Sent stop signal to fakenews (PID %d)", pid)
	return nil
}

func showStatus() error {
	cfg, err := loadConfig()
	if err != nil {
		// Still show partial status even if config fails.
		printError("config error: %v", err)
		return nil
	}

	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(cfg.Server.BaseURL + "/health")
	if err != nil {
		printStatus("Server", "stopped")
		printStatus("Model dir", "%s", cfg.Model.Dir)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		printStatus("Server", "error (HTTP %d)", resp.StatusCode)
		return nil
	}

	var health struct {
		Version string      `json:"version"`
		Model   engine.Info `json:"model"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		printStatus("Server", "running, but health response unreadable: %v", err)
		return nil
	}

	printStatus("Server", "running at %s (version %s)", cfg.Server.BaseURL, health.Version)
	printStatus("Model", "%s, %d terms", health.Model.Kind, health.Model.Dimension)
	if health.Model.Confidence {
		printStatus("Confidence", "calibrated probabilities")
	} else {
		printStatus("Confidence", "margin only")
	}

	// Session and catalog figures come from the authenticated API.
	if apiC, err := newAPIClient(); err == nil {
		if statsResp, err := apiC.get(context.Background(), "/api/stats"); err == nil {
			var stats session.Stats
			if decodeJSON(statsResp, &stats) == nil {
				printStatus("Session", "%d analyzed (%d real, %d fake)", stats.Total, stats.Real, stats.Fake)
			}
		}
		if corrResp, err := apiC.get(context.Background(), "/api/corrections"); err == nil {
			var payload struct {
				Corrections []corrections.Entry `json:"corrections"`
			}
			if decodeJSON(corrResp, &payload) == nil {
				printStatus("Corrections", "%d entries", len(payload.Corrections))
			}
		}
	}

	printStatus("Model dir", "%s", cfg.Model.Dir)
	return nil
}

func runMCP() error {
	_ = godotenv.Load()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Stdout carries the protocol stream; keep logging quiet and on stderr.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	eng, err := engine.Load(cfg.Model.Dir)
	if err != nil {
		return fmt.Errorf("loading model: %w", err)
	}
	catalog, err := loadCatalog(cfg)
	if err != nil {
		return fmt.Errorf("loading corrections: %w", err)
	}

	sessions := session.NewManager(cfg.Session.TTL, cfg.Session.MaxRecords)
	analyzer := pipeline.NewAnalyzer(eng, catalog, sessions)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mcpSrv := api.NewMCPServer(api.MCPDeps{
		Analyzer: analyzer,
		Catalog:  catalog,
		Version:  version,
	})
	if err := server.NewStdioServer(mcpSrv).Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
