// Package main is the entry point for the finance tracker CLI.
package main

import (
	"context"

	"gitlab.com/afonsoc/finance-tracker/cmd"
	"gitlab.com/afonsoc/finance-tracker/internal/config"
	"gitlab.com/afonsoc/finance-tracker/internal/logger"
	"gitlab.com/afonsoc/finance-tracker/internal/telemetry"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err == nil {
		logger.SetLevel(cfg.LogLevel)
		if cfg.LogJSON {
			logger.SetJSON()
		}

		providers, terr := telemetry.Setup(ctx, cfg)
		if terr != nil {
			logger.Log.Warn().Err(terr).Msg("telemetry disabled")
		} else {
			defer func() {
				if serr := providers.Shutdown(context.Background()); serr != nil {
					logger.Log.Warn().Err(serr).Msg("telemetry shutdown failed")
				}
			}()
		}
	}
	// Config errors are reported by the commands that need configuration;
	// help and version must still work without a .env.

	cmd.Execute()
}
