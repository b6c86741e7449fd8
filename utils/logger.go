package utils

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// ANSI colour codes
const (
	reset  = "\033[0m"
	red    = "\033[31m"
	green  = "\033[32m"
	yellow = "\033[33m"
	blue   = "\033[34m"
	cyan   = "\033[36m"
)

type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "OK"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "INFO"
	}
}

func (l Level) colour() string {
	switch l {
	case LevelSuccess:
		return green
	case LevelWarn:
		return yellow
	case LevelError:
		return red
	default:
		return blue
	}
}

// LogFunc is the single logging call the crawl core depends on. Callers can
// plug in anything with this shape; Log is the terminal implementation.
type LogFunc func(level Level, format string, a ...interface{})

var (
	mu     sync.Mutex
	out    io.Writer = os.Stdout
	colour           = true
)

// SetOutput redirects every log line to w.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	out = w
}

// SetColor toggles ANSI colours, off for files and pipes.
func SetColor(enabled bool) {
	mu.Lock()
	defer mu.Unlock()
	colour = enabled
}

func ts() string {
	return time.Now().Format("15:04:05")
}

// Log writes one line at the given level.
func Log(level Level, format string, a ...interface{}) {
	mu.Lock()
	defer mu.Unlock()

	tag := fmt.Sprintf("[%s]", level)
	line := fmt.Sprintf("[%s] %-7s %s", ts(), tag, fmt.Sprintf(format, a...))
	if colour {
		line = level.colour() + line + reset
	}
	fmt.Fprintln(out, line)
}

func Info(format string, a ...interface{}) {
	Log(LevelInfo, format, a...)
}

func Success(format string, a ...interface{}) {
	Log(LevelSuccess, format, a...)
}

func Warn(format string, a ...interface{}) {
	Log(LevelWarn, format, a...)
}

func Error(format string, a ...interface{}) {
	Log(LevelError, format, a...)
}

func Section(title string) {
	mu.Lock()
	defer mu.Unlock()

	line := fmt.Sprintf("\n[%s] ══════════ %s ══════════\n", ts(), title)
	if colour {
		line = cyan + line + reset
	}
	fmt.Fprintln(out, line)
}

// Discard drops every message. Handy as a LogFunc in tests.
func Discard(Level, string, ...interface{}) {}
