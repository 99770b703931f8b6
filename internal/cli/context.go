package cli

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/viper"

	"github.com/aryankumar/dockyard/internal/certstore"
	"github.com/aryankumar/dockyard/internal/config"
	"github.com/aryankumar/dockyard/internal/connection"
	"github.com/aryankumar/dockyard/internal/output"
	"github.com/aryankumar/dockyard/internal/store"
)

// newManager assembles the connection manager from configuration: the
// catalogue store, the certificate store and the probe settings.
func newManager() (*connection.Manager, *config.Config, error) {
	configManager := config.NewManager(viper.GetString("config"))
	cfg, err := configManager.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	repo, err := store.Open(cfg.StorePath)
	if err != nil {
		return nil, nil, err
	}

	certs := certstore.New(cfg.CertDir)

	manager := connection.NewManager(repo, certs, slog.Default())
	manager.SetProbeTimeout(probeTimeout(cfg))

	return manager, cfg, nil
}

// probeTimeout resolves the probe deadline: the --timeout flag wins over
// the config file default.
func probeTimeout(cfg *config.Config) time.Duration {
	if d := viper.GetDuration("timeout"); d > 0 {
		return d
	}
	return cfg.Defaults.ProbeTimeout
}

// outputFormat resolves the output format: flag, then config file, then
// table.
func outputFormat(cfg *config.Config) output.Format {
	if f := viper.GetString("output"); f != "" {
		return output.Format(f)
	}
	if cfg != nil && cfg.Defaults.OutputFormat != "" {
		return output.Format(cfg.Defaults.OutputFormat)
	}
	return output.FormatTable
}

// newFormatter builds the formatter for the resolved format and flags.
func newFormatter(cfg *config.Config, wide bool) output.Formatter {
	return output.NewFormatter(outputFormat(cfg),
		output.WithNoColor(viper.GetBool("no-color")),
		output.WithWide(wide),
	)
}
