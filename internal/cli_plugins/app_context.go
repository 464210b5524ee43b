package cliplugins

import (
	"io"
	"log/slog"

	"pollwatch/internal/config"
)

// AppContext хранит зависимости, которые будут использоваться в командах CLI
type AppContext struct {
	Config *config.Config
	Log    *slog.Logger
	Out    io.Writer
	// Color enables colored event output.
	Color bool
}

func NewAppContext(cfg *config.Config, log *slog.Logger, out io.Writer, color bool) *AppContext {
	return &AppContext{
		Config: cfg,
		Log:    log,
		Out:    out,
		Color:  color,
	}
}
