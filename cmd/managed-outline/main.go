// Command managed-outline keeps stroked outlines around text layers in sync.
package main

import (
	"fmt"
	"os"

	"github.com/custodia-labs/managed-outline/internal/adapters/driven/file"
	"github.com/custodia-labs/managed-outline/internal/adapters/driven/progress"
	"github.com/custodia-labs/managed-outline/internal/adapters/driven/render"
	"github.com/custodia-labs/managed-outline/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/managed-outline/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/managed-outline/internal/adapters/driving/cli"
	"github.com/custodia-labs/managed-outline/internal/core/domain"
	"github.com/custodia-labs/managed-outline/internal/core/ports/driven"
	"github.com/custodia-labs/managed-outline/internal/core/ports/driving"
	"github.com/custodia-labs/managed-outline/internal/core/services"
	"github.com/custodia-labs/managed-outline/internal/logger"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cli.SetVersion(version)
	cli.SetSetup(setup)

	err := cli.Execute()
	cli.Close()
	if err != nil {
		os.Exit(1)
	}
}

// setup opens the document database and config, and wires the services.
func setup(opts cli.SetupOptions) (*cli.Services, func(), error) {
	store, err := sqlite.NewStore(opts.DataDir)
	if err != nil {
		return nil, nil, fmt.Errorf("opening document store: %w", err)
	}

	config, err := file.NewConfigStore(opts.DataDir)
	if err != nil {
		store.Close()
		return nil, nil, fmt.Errorf("opening config: %w", err)
	}
	settings := services.NewSettingsService(config)
	if err := settings.Validate(); err != nil {
		logger.Warn("Invalid settings, using defaults where needed: %v", err)
	}

	factory := memory.NewWorkspaceFactory(func(ws *memory.Workspace) driven.Renderer {
		return render.NewRasteriser(ws, textFace(settings))
	})

	var reporter driven.ProgressReporter
	if !opts.Quiet {
		reporter = progress.NewTerminalReporter()
	}

	workspace := services.NewWorkspaceService(
		store.DocumentStore(),
		file.NewYAMLCodec(),
		factory,
		settings,
		reporter,
	)
	logger.Debug("Using document store %s and config %s", store.Path(), config.Path())

	release := func() {
		if err := store.Close(); err != nil {
			logger.Warn("Closing document store: %v", err)
		}
	}
	return &cli.Services{Workspace: workspace, Settings: settings}, release, nil
}

func textFace(settings driving.SettingsService) domain.TextFace {
	s, err := settings.Get()
	if err != nil || !s.Text.Face.IsValid() {
		return domain.DefaultAppSettings().Text.Face
	}
	return s.Text.Face
}
