package output

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"

	"github.com/yaram/simple-compiler/diagnostic"
	"github.com/yaram/simple-compiler/job"
)

// Logger renders progress, statistics, and diagnostics with verbosity
// control, writing to stderr to keep stdout free for machine-readable
// formats (json/sarif/csv).
type Logger struct {
	verbosity VerbosityLevel
	writer    io.Writer
	startTime time.Time

	errColor   *color.Color
	warnColor  *color.Color
	cycleColor *color.Color
}

// NewLogger creates a logger with the given verbosity, writing to stderr.
func NewLogger(verbosity VerbosityLevel) *Logger {
	return NewLoggerWithWriter(verbosity, os.Stderr)
}

// NewLoggerWithWriter creates a logger with a custom writer, for tests.
func NewLoggerWithWriter(verbosity VerbosityLevel, w io.Writer) *Logger {
	return &Logger{
		verbosity:  verbosity,
		writer:     w,
		startTime:  time.Now(),
		errColor:   color.New(color.FgRed),
		warnColor:  color.New(color.FgYellow),
		cycleColor: color.New(color.FgYellow, color.Bold),
	}
}

// Progress logs a high-level progress line (verbose and debug modes).
func (l *Logger) Progress(format string, args ...interface{}) {
	if l.verbosity >= VerbosityVerbose {
		fmt.Fprintf(l.writer, format+"\n", args...)
	}
}

// Debug logs a diagnostic trace line with an elapsed-time prefix, shown
// only in debug mode.
func (l *Logger) Debug(format string, args ...interface{}) {
	if l.verbosity >= VerbosityDebug {
		fmt.Fprintf(l.writer, "[%s] %s\n", formatDuration(time.Since(l.startTime)), fmt.Sprintf(format, args...))
	}
}

// Diagnostic renders one reported diagnostic, coloring circular-dependency
// reports as cycle warnings (yellow) and everything else as an error (red).
func (l *Logger) Diagnostic(d diagnostic.Diagnostic) {
	c := l.errColor
	if d.Kind == diagnostic.CircularDependency {
		c = l.cycleColor
	}
	c.Fprintln(l.writer, d.String())
}

// Statistics prints scheduler-level job counts (verbose and debug modes),
// mirroring the teacher's timing-summary output.
func (l *Logger) Statistics(s *job.Scheduler) {
	if l.verbosity < VerbosityVerbose {
		return
	}
	total := len(s.Jobs())
	done := 0
	for _, j := range s.Jobs() {
		if j.State == job.Done {
			done++
		}
	}
	fmt.Fprintf(l.writer, "jobs: %d/%d done, %d diagnostic(s)\n", done, total, len(s.Sink().Diagnostics()))
}

func formatDuration(d time.Duration) string {
	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60
	millis := int(d.Milliseconds()) % 1000
	return fmt.Sprintf("%02d:%02d.%03d", minutes, seconds, millis)
}

// Verbosity returns the logger's configured level.
func (l *Logger) Verbosity() VerbosityLevel { return l.verbosity }
