package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"
	"sync"
)

// Component identifiers for color-coded logging
type Component string

const (
	ComponentCLI       Component = "CLI"
	ComponentServer    Component = "SERVER"
	ComponentWorkspace Component = "WORKSPACE"
	ComponentStore     Component = "STORE"
)

// ANSI color codes
const (
	colorReset   = "\033[0m"
	colorGreen   = "\033[32m"
	colorBlue    = "\033[34m"
	colorMagenta = "\033[35m"
	colorYellow  = "\033[33m"
	colorRed     = "\033[31m"
	colorGray    = "\033[90m"
)

var componentColors = map[Component]string{
	ComponentCLI:       colorBlue,
	ComponentServer:    colorGreen,
	ComponentWorkspace: colorMagenta,
	ComponentStore:     colorYellow,
}

// Options configure a Logger.
type Options struct {
	Level     slog.Level
	UseColors bool
}

// DefaultOptions logs at info and colours output unless NO_COLOR is set or
// TERM is "dumb".
func DefaultOptions() Options {
	return Options{
		Level:     slog.LevelInfo,
		UseColors: os.Getenv("NO_COLOR") == "" && os.Getenv("TERM") != "dumb",
	}
}

// ColorHandler is a slog handler that prefixes every line with a coloured
// level tag and component name.
type ColorHandler struct {
	out       io.Writer
	mu        *sync.Mutex
	component Component
	level     slog.Leveler
	useColors bool
	attrs     []slog.Attr
	group     string
}

// NewColorHandler creates a new color-coded handler
func NewColorHandler(out io.Writer, component Component, opts Options) *ColorHandler {
	return &ColorHandler{
		out:       out,
		mu:        &sync.Mutex{},
		component: component,
		level:     opts.Level,
		useColors: opts.UseColors,
	}
}

// Enabled reports whether level is at or above the configured level.
func (h *ColorHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle writes: LEVEL [COMPONENT] message key=value...
func (h *ColorHandler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder

	color, reset, lc := componentColors[h.component], colorReset, levelColor(r.Level)
	if !h.useColors {
		color, reset, lc = "", "", ""
	}

	fmt.Fprintf(&b, "%s%-5s%s %s[%s]%s %s", lc, r.Level.String(), reset, color, h.component, reset, r.Message)

	for _, a := range h.attrs {
		writeAttr(&b, "", a)
	}
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(&b, h.group, a)
		return true
	})
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.out, b.String())
	return err
}

func writeAttr(b *strings.Builder, group string, a slog.Attr) {
	if a.Equal(slog.Attr{}) {
		return
	}
	key := a.Key
	if group != "" {
		key = group + "." + key
	}
	fmt.Fprintf(b, " %s=%v", key, a.Value.Resolve())
}

// WithAttrs returns a new handler with the given attributes
func (h *ColorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = slices.Clone(h.attrs)
	for _, a := range attrs {
		if h.group != "" {
			a.Key = h.group + "." + a.Key
		}
		next.attrs = append(next.attrs, a)
	}
	return &next
}

// WithGroup returns a new handler with the given group
func (h *ColorHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	if h.group != "" {
		name = h.group + "." + name
	}
	next.group = name
	return &next
}

func levelColor(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return colorRed
	case level >= slog.LevelWarn:
		return colorYellow
	case level >= slog.LevelInfo:
		return colorBlue
	default:
		return colorGray
	}
}

// Logger wraps slog.Logger with component-specific functionality
type Logger struct {
	*slog.Logger
	component Component
}

// New creates a component logger writing to stderr.
func New(component Component, opts Options) *Logger {
	return NewWithWriter(component, os.Stderr, opts)
}

// NewWithWriter creates a logger with a custom writer
func NewWithWriter(component Component, w io.Writer, opts Options) *Logger {
	return &Logger{
		Logger:    slog.New(NewColorHandler(w, component, opts)),
		component: component,
	}
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return &Logger{
		Logger:    slog.New(slog.DiscardHandler),
		component: "",
	}
}

// Component returns the component tag of l.
func (l *Logger) Component() Component {
	return l.component
}

// For returns a logger for another component that shares l's writer and
// options. A discarding logger stays discarding.
func (l *Logger) For(component Component) *Logger {
	h, ok := l.Handler().(*ColorHandler)
	if !ok {
		return &Logger{Logger: l.Logger, component: component}
	}
	next := *h
	next.component = component
	next.attrs = nil
	next.group = ""
	return &Logger{Logger: slog.New(&next), component: component}
}

// ParseLevel maps debug, info, warn/warning and error (any case) to a slog
// level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}
