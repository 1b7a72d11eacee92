package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/policyguard/policyguard/internal/adapters/outbound/api"
	"github.com/policyguard/policyguard/internal/adapters/outbound/config"
	"github.com/policyguard/policyguard/internal/adapters/outbound/gitinfo"
	"github.com/policyguard/policyguard/internal/adapters/outbound/history"
	"github.com/policyguard/policyguard/internal/adapters/outbound/loader"
	"github.com/policyguard/policyguard/internal/adapters/outbound/metrics"
	"github.com/policyguard/policyguard/internal/adapters/outbound/runstore"
	"github.com/policyguard/policyguard/internal/application"
	"github.com/policyguard/policyguard/internal/domain"
)

// app holds the adapters and services one command invocation needs.
type app struct {
	cfg        domain.ClientConfig
	logger     *slog.Logger
	loader     *loader.FileLoader
	runs       *runstore.Store
	metrics    *metrics.Metrics
	history    *application.HistoryService
	violations *application.ViolationService
	scan       *application.ScanService
	gate       *application.RunGate
}

func newApp(cmd *cobra.Command, flags *globalFlags) (*app, error) {
	cfg, err := config.New().Load(flags.configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if flags.serverURL != "" {
		cfg.ServerURL = flags.serverURL
	}
	if flags.userID != "" {
		cfg.UserID = flags.userID
	}
	if flags.verbose {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger := newLogger(cmd.ErrOrStderr(), cfg.LogLevel)

	client := api.New(cfg.ServerURL, cfg.UserID,
		api.WithTimeout(cfg.Timeout),
		api.WithLogger(logger),
	)

	hist := application.NewHistoryService(client, history.New(cfg.StateDir), logger)
	if err := hist.Prime(); err != nil {
		logger.Warn("ignoring unreadable history snapshot", "error", err)
	}

	a := &app{
		cfg:        cfg,
		logger:     logger,
		loader:     loader.New(),
		runs:       runstore.New(cfg.StateDir),
		metrics:    metrics.New(),
		history:    hist,
		violations: application.NewViolationService(client, logger),
	}
	a.scan = application.NewScanService(client, hist,
		application.WithRunStore(a.runs),
		application.WithRevisionReader(gitinfo.New()),
		application.WithMetrics(a.metrics),
		application.WithLogger(logger),
	)
	a.gate = application.NewRunGate(a.scan, a.metrics)
	return a, nil
}

func newLogger(w io.Writer, level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}

// absPaths makes input paths absolute so a stored run can be repeated from
// any working directory.
func absPaths(paths ...string) ([]string, error) {
	out := make([]string, len(paths))
	for i, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("resolving path: %w", err)
		}
		out[i] = abs
	}
	return out, nil
}

func renderJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// warnHistory reports a failed history refresh without failing the command.
func warnHistory(cmd *cobra.Command, err error) {
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v (showing last known history)\n", err)
	}
}
