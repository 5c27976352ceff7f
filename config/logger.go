package config

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"
)

// NewLogger builds a zerolog logger writing to w. The level is applied to the
// returned logger only; the global zerolog level is left alone.
func NewLogger(cfg LoggerConfig, w io.Writer) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("logger level: %w", err)
	}

	if cfg.Format == "console" {
		w = zerolog.ConsoleWriter{Out: w, NoColor: true}
	}

	ctx := zerolog.New(w).Level(level).With().Timestamp().Str("lib", "docpager")
	if cfg.Caller {
		ctx = ctx.Caller()
	}

	return ctx.Logger(), nil
}
