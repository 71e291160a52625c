package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"

	"github.com/decker502/liquidbox/pkg/app"
	"github.com/decker502/liquidbox/pkg/config"
	"github.com/decker502/liquidbox/pkg/embedded"
)

var (
	sceneFlag     = flag.String("scene", app.DefaultScene, "Scene config (YAML or TOML); paths under data/ are embedded")
	scriptFlag    = flag.String("script", "", "Lua scene script, overrides the scene's script")
	nozzleFlag    = flag.String("nozzle", "", "Nozzle texture image, empty for the generated one")
	inspectorFlag = flag.String("inspector", "", "Serve world snapshots over websocket on this address (e.g. 127.0.0.1:9100)")
	logLevelFlag  = flag.String("log-level", "info", "Log level: debug, info, warn, error")
	logFormatFlag = flag.String("log-format", "console", "Log format: console or json")
)

func main() {
	flag.Parse()

	logger, err := config.NewLogger(config.LoggingConfig{Level: *logLevelFlag, Format: *logFormatFlag})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	embedded.Init(dataFS)

	a, err := app.NewApp(app.Config{
		Scene:         *sceneFlag,
		Script:        *scriptFlag,
		NozzleTexture: *nozzleFlag,
		InspectorAddr: *inspectorFlag,
		Logger:        logger,
	})
	if err != nil {
		logger.Fatal("init failed", zap.Error(err))
	}
	defer a.Close()

	width, height := a.WindowSize()
	ebiten.SetWindowSize(width, height)
	ebiten.SetWindowTitle("liquidbox")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetFullscreen(a.Settings().GetSettings().Fullscreen)

	if err := ebiten.RunGame(a); err != nil {
		logger.Error("game loop exited", zap.Error(err))
	}
}
