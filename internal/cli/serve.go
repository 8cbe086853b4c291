package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/joingate/joingate/internal/alert"
	"github.com/joingate/joingate/internal/attempts"
	"github.com/joingate/joingate/internal/audit"
	"github.com/joingate/joingate/internal/config"
	"github.com/joingate/joingate/internal/engine"
	"github.com/joingate/joingate/internal/metrics"
	"github.com/joingate/joingate/internal/platform/onebot"
	"github.com/joingate/joingate/internal/router"
	"github.com/joingate/joingate/internal/rules"
)

var serveConfigPath string

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVarP(&serveConfigPath, "config", "c", "", "Path to config YAML (default ~/.joingate/config.yaml)")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Connect to the gateway and screen join requests",
	Long:  "Connects to the OneBot v11 WebSocket gateway, evaluates incoming\njoin requests against per-group rules, and resolves them.\nSupports hot-reload of the config file.",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(serveConfigPath)
	if err != nil {
		return err
	}

	store := rules.NewStore(rules.NewFilePersister(cfg.DataDir), cfg.RuleDefaults())
	eng := engine.New(store, attempts.NewTracker())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	gw, err := onebot.Dial(ctx, cfg.Gateway.URL, cfg.Gateway.AccessToken)
	if err != nil {
		return err
	}
	defer gw.Close()

	rt := router.New(cfg.RouterConfig(), store, eng, gw)

	if cfg.AuditLog != "" {
		log, err := audit.Open(cfg.AuditLog)
		if err != nil {
			return fmt.Errorf("open audit log: %w", err)
		}
		defer log.Close()
		rt.AttachAudit(log)
	}

	rt.AttachAlerts(alert.NewDispatcher(cfg.Alerts))

	if cfg.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		rt.AttachMetrics(metrics.New(reg))
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		go func() {
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
				fmt.Fprintf(os.Stderr, "metrics server: %v\n", err)
			}
		}()
		fmt.Fprintf(os.Stderr, "metrics on %s/metrics\n", cfg.MetricsAddr)
	}

	watchPath := serveConfigPath
	if watchPath == "" {
		watchPath = config.DefaultPath()
	}

	// Hot-reload swaps the router toggles and the alert dispatcher; the
	// gateway connection and rule store are untouched.
	reloader, err := config.NewReloader(watchPath, func(c *config.Config) {
		rt.UpdateConfig(c.RouterConfig())
		rt.AttachAlerts(alert.NewDispatcher(c.Alerts))
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: hot-reload disabled: %v\n", err)
	} else {
		go reloader.Run(ctx)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nShutting down...")
		cancel()
		gw.Close()
	}()

	fmt.Fprintf(os.Stderr, "joingate connected to %s\n", cfg.Gateway.URL)
	err = gw.Run(ctx, rt)
	if ctx.Err() != nil {
		return nil
	}
	return err
}
