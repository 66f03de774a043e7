// Command simcoupler runs the unfiltered PX4-telemetry relay standalone,
// separate from the gateway's filtering core.
package main

import (
	"flag"

	"SerialFilter/internal/config"
	"SerialFilter/internal/simcoupler"
	"SerialFilter/internal/telemetry"
)

func main() {
	configFile := flag.String("config", "config/gateway.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		telemetry.Fatal("simcoupler: failed to load configuration: %v", err)
	}
	telemetry.SetLevelFromString(cfg.Log.Level)

	if !cfg.Simcoupler.Enabled {
		telemetry.Fatal("simcoupler: simcoupler.enabled is false in %s", *configFile)
	}

	coupler, err := simcoupler.New(cfg, telemetry.Global)
	if err != nil {
		telemetry.Fatal("simcoupler: %v", err)
	}
	defer coupler.Close()

	coupler.Run()
}
