package app

import (
	"io"
	"log/slog"
)

// App is one configured invocation of the tool.
type App struct {
	cfg    *Config
	logger *slog.Logger
}

// New builds an App whose logs go to logW.
func New(cfg *Config, logW io.Writer) *App {
	return &App{
		cfg:    cfg,
		logger: newLogger(cfg.LogLevel, cfg.LogFormat, logW),
	}
}
