package main

import (
	"embed"
	"log"

	"deskbridge/internal/app"
	"deskbridge/internal/config"
	"deskbridge/internal/infrastructure/logging"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/logger"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	"github.com/wailsapp/wails/v2/pkg/options/windows"
)

//go:embed all:frontend/dist
var assets embed.FS

func main() {
	cfg, err := config.Load(config.DefaultPath())
	if err != nil {
		log.Fatal(err)
	}

	appLogger, logFile, err := logging.NewFileLogger(cfg.LogLevel(), cfg.Logging.File)
	if err != nil {
		log.Fatal(err)
	}
	defer logFile.Close()

	application := app.NewApp(cfg, appLogger)

	wailsLevel := logger.INFO
	if cfg.Environment == "development" {
		wailsLevel = logger.DEBUG
	}

	err = wails.Run(&options.App{
		Title:             "deskbridge",
		Width:             900,
		Height:            600,
		MinWidth:          640,
		MinHeight:         420,
		DisableResize:     false,
		Frameless:         false,
		StartHidden:       false,
		HideWindowOnClose: false,
		BackgroundColour:  &options.RGBA{R: 255, G: 255, B: 255, A: 255},
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		Logger:           logging.NewWailsLoggerAdapter(appLogger),
		LogLevel:         wailsLevel,
		OnStartup:        application.Startup,
		OnDomReady:       application.DomReady,
		OnBeforeClose:    application.BeforeClose,
		OnShutdown:       application.Shutdown,
		WindowStartState: options.Normal,
		Bind: []interface{}{
			application,
		},
		Windows: &windows.Options{
			WebviewIsTransparent: false,
			WindowIsTranslucent:  false,
			DisableWindowIcon:    false,
			ZoomFactor:           1.0,
		},
	})

	if err != nil {
		log.Fatal(err)
	}
}
