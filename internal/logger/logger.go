package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/dvcrn/ledspeed/internal/env"
	"github.com/rs/zerolog"
)

const (
	colorRed     = 31
	colorGreen   = 32
	colorYellow  = 33
	colorMagenta = 35
	colorBold    = 1
)

var levelLabels = map[string]string{
	"trace": colorize("TRC", colorMagenta),
	"debug": colorize("DBG", colorYellow),
	"info":  colorize("INF", colorGreen),
	"warn":  colorize("WRN", colorRed),
	"error": colorize("ERR", colorRed),
	"fatal": colorize("FTL", colorRed),
	"panic": colorize("PNC", colorRed),
}

var (
	once   sync.Once
	logger *zerolog.Logger
)

// Get returns the process logger, building it from LOG_LEVEL and ENV on first use.
func Get() *zerolog.Logger {
	once.Do(func() {
		logger = newLogger(os.Stderr)
	})
	return logger
}

// Nop returns a logger that discards everything. Tests hand it to
// components that accept an explicit logger.
func Nop() *zerolog.Logger {
	zl := zerolog.Nop()
	return &zl
}

func colorize(s interface{}, c int) string {
	return fmt.Sprintf("\x1b[%dm%v\x1b[0m", c, s)
}

func newLogger(out io.Writer) *zerolog.Logger {
	zerolog.SetGlobalLevel(parseLevel(env.GetOrDefault("LOG_LEVEL", "info")))

	switch env.GetOrDefault("ENV", "development") {
	case "development", "dev":
		return newDevelopment(out)
	default:
		return newProduction(out)
	}
}

func parseLevel(s string) zerolog.Level {
	level, err := zerolog.ParseLevel(strings.ToLower(s))
	if err != nil || level == zerolog.NoLevel {
		fmt.Fprintf(os.Stderr, "Invalid LOG_LEVEL %q; defaulting to 'info'\n", s)
		return zerolog.InfoLevel
	}
	return level
}

func newDevelopment(out io.Writer) *zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: "15:04:05.000",
		NoColor:    env.GetOrDefault("NO_COLOR", "") != "",
		FormatLevel: func(i interface{}) string {
			ll, _ := i.(string)
			if l, ok := levelLabels[ll]; ok {
				return l
			}
			if len(ll) >= 3 {
				return colorize(strings.ToUpper(ll[:3]), colorBold)
			}
			return strings.ToUpper(ll)
		},
	}

	zl := zerolog.New(output).With().Timestamp().Logger()
	return &zl
}

// newProduction writes JSON lines with UNIX timestamps.
func newProduction(out io.Writer) *zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zl := zerolog.New(out).With().Timestamp().Logger()
	return &zl
}
