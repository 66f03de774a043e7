// Package bootstrap wires configuration, telemetry, and the relay together
// and runs them until an OS signal requests shutdown. It is the direct
// analogue of the source's init-wait/create-socket/register-callback
// sequence (spec.md §4.6), translated to Go: there is no network-stack
// readiness wait because net.Listen/net.Dial are synchronous and report
// their own failures.
package bootstrap

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"SerialFilter/internal/config"
	"SerialFilter/internal/relay"
	"SerialFilter/internal/simcoupler"
	"SerialFilter/internal/telemetry"
)

// Run loads no config itself (the caller already has cfg) — it starts the
// relay and, if enabled, the metrics HTTP server and the simcoupler, then
// blocks until SIGINT/SIGTERM (returning nil) or until the relay stops
// (returning its error).
func Run(cfg *config.Config) error {
	telemetry.SetLevelFromString(cfg.Log.Level)
	telemetry.SetTimestampFormat(cfg.Log.TimestampFormat)

	r := relay.New(cfg, telemetry.Global)

	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle("/metrics", telemetry.Global.Handler())
		server := &http.Server{Addr: cfg.Metrics.Address, Handler: mux}
		go func() {
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				telemetry.Error("bootstrap: metrics server stopped: %v", err)
			}
		}()
		telemetry.Info("bootstrap: metrics exposed on %s/metrics", cfg.Metrics.Address)
	}

	relayErr := make(chan error, 1)
	go func() {
		relayErr <- r.Run()
	}()

	if cfg.Simcoupler.Enabled {
		coupler, err := simcoupler.New(cfg, telemetry.Global)
		if err != nil {
			return fmt.Errorf("bootstrap: simcoupler: %w", err)
		}
		defer coupler.Close()
		go coupler.Run()
		telemetry.Info("bootstrap: simcoupler relaying on %s", cfg.Simcoupler.VMListenAddress)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-relayErr:
		return fmt.Errorf("bootstrap: relay terminated: %w", err)
	case <-sigCh:
		telemetry.Info("bootstrap: shutdown signal received")
	}

	return nil
}
