package utils

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/vnkhanh/pathfinder-backend/config"
)

// Log là logger dùng chung cho toàn bộ server.
var Log = zerolog.New(os.Stdout).With().Timestamp().Logger()

// InitLogger: JSON khi production, console writer khi dev.
func InitLogger(cfg *config.Config) {
	var w io.Writer = os.Stdout
	if !cfg.IsProduction() {
		w = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	Log = NewLogger(w, cfg.LogLevel)
}

func NewLogger(w io.Writer, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}
