package logger

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"           // Colored console output
	"gopkg.in/natefinch/lumberjack.v2" // Rotating log file sink
)

// Define colorized printing functions for different log levels using fatih/color.
// These are package-level variables holding functions that behave like fmt.Printf,
// but with text colored appropriately for the log level. Every line is also
// copied, without color codes, to the optional log file configured via AttachFile.

var (
	mu      sync.Mutex
	console io.Writer = color.Output
	file    io.Writer
)

// Info logs informational messages in green color.
var Info = printer(color.FgGreen)

// Warn logs warning messages in bright magenta color.
var Warn = printer(color.FgHiMagenta)

// Error logs error messages in red color.
var Error = printer(color.FgRed)

// Plain logs uncolored console narration (menus, prompts, summaries).
var Plain = printer(color.Reset)

// Debug logs debug messages in cyan color if enabled, otherwise is a no-op.
// It is reassigned by Init.
var Debug = func(format string, a ...any) {}

// Init enables or disables debug logging.
// When enabled, Debug will print messages in cyan color.
// When disabled, Debug is a no-op that silently ignores debug logs.
func Init(enableDebug bool) {
	if enableDebug {
		Debug = printer(color.FgCyan)
	} else {
		Debug = func(format string, a ...any) {}
	}
}

// SetOutput redirects console output. Tests use it to capture narration.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	console = w
}

// AttachFile tees every log line into a size-rotated file at path.
// The returned closer detaches and closes the file.
func AttachFile(path string) io.Closer {
	lj := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     30, // days
	}
	mu.Lock()
	file = lj
	mu.Unlock()
	return closerFunc(func() error {
		mu.Lock()
		file = nil
		mu.Unlock()
		return lj.Close()
	})
}

func printer(attr color.Attribute) func(format string, a ...any) {
	c := color.New(attr)
	return func(format string, a ...any) {
		mu.Lock()
		defer mu.Unlock()
		_, _ = c.Fprintf(console, format, a...)
		if file != nil {
			_, _ = fmt.Fprintf(file, format, a...)
		}
	}
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }
