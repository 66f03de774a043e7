package main

import (
	"flag"

	"SerialFilter/internal/bootstrap"
	"SerialFilter/internal/config"
	"SerialFilter/internal/telemetry"
)

func main() {
	configFile := flag.String("config", "config/gateway.yaml", "Path to configuration file")
	logLevel := flag.String("log", "", "Log level: debug, info, warn, error (overrides config)")
	flag.Parse()

	telemetry.Info("loading configuration from %s", *configFile)
	cfg, err := config.Load(*configFile)
	if err != nil {
		telemetry.Fatal("failed to load configuration: %v", err)
	}

	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}

	if err := bootstrap.Run(cfg); err != nil {
		telemetry.Fatal("gateway terminated: %v", err)
	}
	telemetry.Info("gateway shut down cleanly")
}
