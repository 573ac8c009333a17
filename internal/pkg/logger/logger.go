package logger

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// ZeroLogger adapts zerolog to the ports.Logger interface.
type ZeroLogger struct {
	log zerolog.Logger
}

// New creates a console logger on stderr at the given level name.
func New(level string) *ZeroLogger {
	return NewWithWriter(zerolog.ConsoleWriter{Out: os.Stderr}, level)
}

// NewWithWriter builds a logger on an arbitrary writer.
func NewWithWriter(w io.Writer, level string) *ZeroLogger {
	return &ZeroLogger{
		log: zerolog.New(w).Level(ParseLevel(level)).With().Timestamp().Logger(),
	}
}

// Nop returns a logger that discards everything.
func Nop() *ZeroLogger {
	return &ZeroLogger{log: zerolog.Nop()}
}

// ParseLevel maps a level name to zerolog; unknown names fall back to warn
// so the CLI stays quiet unless asked.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.WarnLevel
	}
}

func (l *ZeroLogger) Debug(msg string, fields map[string]interface{}) {
	l.log.Debug().Fields(fields).Msg(msg)
}

func (l *ZeroLogger) Info(msg string, fields map[string]interface{}) {
	l.log.Info().Fields(fields).Msg(msg)
}

func (l *ZeroLogger) Warn(msg string, fields map[string]interface{}) {
	l.log.Warn().Fields(fields).Msg(msg)
}

func (l *ZeroLogger) Error(msg string, err error, fields map[string]interface{}) {
	l.log.Error().Err(err).Fields(fields).Msg(msg)
}
