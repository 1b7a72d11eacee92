package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/policyguard/policyguard/internal/adapters/outbound/scheduler"
	"github.com/policyguard/policyguard/internal/adapters/outbound/watcher"
	"github.com/policyguard/policyguard/internal/application"
	"github.com/policyguard/policyguard/internal/domain"
)

func newWatchCmd(flags *globalFlags) *cobra.Command {
	var (
		policyPath   string
		datasetPath  string
		noInitialRun bool
		metricsAddr  string
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-scan whenever the policy or dataset changes",
		Long: "Watch the policy and dataset files and run a scan after each change. " +
			"History is refreshed on the configured schedule. A change that arrives while a scan is running is skipped.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, flags)
			if err != nil {
				return err
			}
			if metricsAddr == "" {
				metricsAddr = a.cfg.Watch.MetricsAddr
			}

			paths, err := absPaths(policyPath, datasetPath)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if metricsAddr != "" {
				srv := serveMetrics(ctx, a, metricsAddr)
				defer func() {
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					_ = srv.Shutdown(shutdownCtx)
				}()
			}

			var mu sync.Mutex
			out := cmd.OutOrStdout()
			svc := application.NewWatchService(
				a.loader,
				a.gate,
				a.history,
				watcher.New(a.cfg.Watch.Debounce, a.logger),
				scheduler.New(a.logger),
				a.logger,
			)

			fmt.Fprintf(out, "watching %s and %s (Ctrl+C to stop)\n", paths[0], paths[1])
			return svc.Run(ctx, application.WatchOptions{
				PolicyPath:      paths[0],
				DatasetPath:     paths[1],
				HistorySchedule: a.cfg.Watch.HistorySchedule,
				RunOnStart:      !noInitialRun,
				OnResult: func(res *application.RunResult, err error) {
					mu.Lock()
					defer mu.Unlock()
					switch {
					case errors.Is(err, domain.ErrRunInFlight):
						fmt.Fprintln(out, "skipped: a scan is already running")
					case err != nil:
						fmt.Fprintf(out, "scan failed: %v\n", err)
					default:
						fmt.Fprintf(out, "%s  score %d/100 (%s)  %d violations in %d records\n",
							time.Now().Format("15:04:05"),
							res.Summary.ComplianceScore,
							res.Summary.Grade(),
							res.Summary.ViolationsFound,
							res.Summary.TotalRecords,
						)
						warnHistory(cmd, res.HistoryErr)
					}
				},
				OnHistory: func(entries []domain.HistoryEntry, err error) {
					mu.Lock()
					defer mu.Unlock()
					warnHistory(cmd, err)
					if line, ok := historyLine(entries, a.gate.Busy()); ok {
						fmt.Fprintln(out, line)
					}
				},
			})
		},
	}

	cmd.Flags().StringVar(&policyPath, "policy", "", "Policy document (PDF)")
	cmd.Flags().StringVar(&datasetPath, "dataset", "", "Employee dataset (CSV)")
	cmd.Flags().BoolVar(&noInitialRun, "no-initial-run", false, "Wait for the first change before scanning")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (overrides watch.metrics_addr)")
	_ = cmd.MarkFlagRequired("policy")
	_ = cmd.MarkFlagRequired("dataset")

	return cmd
}

func serveMetrics(ctx context.Context, a *app, addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", a.metrics.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("metrics server failed", "addr", addr, "error", err)
		}
	}()
	a.logger.Info("serving metrics", "addr", addr)
	return srv
}

// historyLine is the status line printed after a scheduled history refresh.
func historyLine(entries []domain.HistoryEntry, scanning bool) (string, bool) {
	trend, ok := domain.ComputeTrend(entries)
	if !ok {
		return "", false
	}
	line := fmt.Sprintf("history: %d scans, violations %s", len(entries), trend.Label())
	if scanning {
		line += " (scan in progress)"
	}
	return line, true
}
