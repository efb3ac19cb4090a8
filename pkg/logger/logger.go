package logger

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
)

// ANSI color codes, used only by the decorative Banner/Section output.
const (
	ColorReset = "\033[0m"
	ColorGreen = "\033[32m"
	ColorCyan  = "\033[36m"
)

var base zerolog.Logger

func init() {
	console := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"}
	base = zerolog.New(console).With().Timestamp().Logger()
}

// SetLevel sets the minimum zerolog level (zerolog.DebugLevel, etc).
func SetLevel(level zerolog.Level) {
	base = base.Level(level)
}

// Peer returns a structured event scoped to a peer, for callers that want
// fields (seq, rtt_ms, mode) instead of a formatted message.
func Peer(id uint32) *zerolog.Event {
	return base.Info().Uint32("peer", id)
}

func Debug(format string, args ...interface{}) {
	base.Debug().Msg(fmt.Sprintf(format, args...))
}

func Info(format string, args ...interface{}) {
	base.Info().Msg(fmt.Sprintf(format, args...))
}

func Warn(format string, args ...interface{}) {
	base.Warn().Msg(fmt.Sprintf(format, args...))
}

func Error(format string, args ...interface{}) {
	base.Error().Msg(fmt.Sprintf(format, args...))
}

// Success logs an info-level message tagged as a successful outcome.
func Success(format string, args ...interface{}) {
	base.Info().Bool("ok", true).Msg(fmt.Sprintf(format, args...))
}

func Fatal(format string, args ...interface{}) {
	base.Fatal().Msg(fmt.Sprintf(format, args...))
}

// InfoCyan highlights a message the way the console logger used color;
// zerolog has no per-call color, so it's tagged instead.
func InfoCyan(format string, args ...interface{}) {
	base.Info().Bool("highlight", true).Msg(fmt.Sprintf(format, args...))
}

// Section prints a decorative header. Not a structured log line.
func Section(title string) {
	border := "═══════════════════════════════════════════════════════════"
	fmt.Printf("\n%s╔%s╗%s\n", ColorCyan, border, ColorReset)
	fmt.Printf("%s║%s %-57s %s║%s\n", ColorCyan, ColorReset, title, ColorCyan, ColorReset)
	fmt.Printf("%s╚%s╝%s\n\n", ColorCyan, border, ColorReset)
}

// Banner prints the application banner at startup.
func Banner(title, version string) {
	banner := `
╔═══════════════════════════════════════════════════════════╗
║                                                           ║
║   ██████╗ ███████╗██╗     ██╗██╗   ██╗██████╗ ██████╗    ║
║   ██╔══██╗██╔════╝██║     ██║██║   ██║██╔══██╗██╔══██╗   ║
║   ██████╔╝█████╗  ██║     ██║██║   ██║██║  ██║██████╔╝   ║
║   ██╔══██╗██╔══╝  ██║     ██║██║   ██║██║  ██║██╔═══╝    ║
║   ██║  ██║███████╗███████╗██║╚██████╔╝██████╔╝██║        ║
║   ╚═╝  ╚═╝╚══════╝╚══════╝╚═╝ ╚═════╝ ╚═════╝ ╚═╝        ║
║                                                           ║
║              %s%-37s%s║
║                    %sVersion %-7s%s                      ║
║                                                           ║
╚═══════════════════════════════════════════════════════════╝
`
	fmt.Printf(banner, ColorCyan, title, ColorReset, ColorGreen, version, ColorReset)
}
