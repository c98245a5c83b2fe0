package logger

import (
	"io"
	"os"
	"runtime/debug"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Level per schema: DEBUG, INFO, WARN, ERROR
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func ParseLevel(s string) Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return LevelDebug
	case "WARN", "WARNING":
		return LevelWarn
	case "ERROR":
		return LevelError
	default:
		return LevelInfo
	}
}

func (l Level) zerolog() zerolog.Level {
	switch l {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func init() {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.LevelFieldMarshalFunc = func(l zerolog.Level) string {
		return strings.ToUpper(l.String())
	}
}

// ErrObj for error logs
type ErrObj struct {
	Msg   string `json:"msg"`
	Stack string `json:"stack,omitempty"`
}

// Entry: одна запись лога. timestamp, level, service и hostname
// заполняет сам логгер.
type Entry struct {
	Action     string         // event name, e.g. user_created
	Message    string         // human-readable
	RequestID  string         // correlation id (one per connection)
	Error      *ErrObj        // only for ERROR
	Additional map[string]any // optional extras
}

// callerSkip: Info/Error -> log -> Msg
const callerSkip = 4

type Logger struct {
	service  string
	hostname string

	out zerolog.Logger
	err zerolog.Logger
}

// NewLogger stdout-only (recommended for prod)
func NewLogger(service string) *Logger {
	return newLogger(service, LevelInfo, os.Stdout, os.Stderr)
}

// NewLoggerWithOptions позволяет задать минимальный уровень и writer.
// Если w == nil, INFO/WARN/DEBUG идут в stdout, ERROR: в stderr.
func NewLoggerWithOptions(service, minLevel string, w io.Writer) *Logger {
	if w == nil {
		return newLogger(service, ParseLevel(minLevel), os.Stdout, os.Stderr)
	}
	return newLogger(service, ParseLevel(minLevel), w, w)
}

func newLogger(service string, min Level, out, errOut io.Writer) *Logger {
	h, _ := os.Hostname()
	if strings.ToLower(os.Getenv("LOG_PRETTY")) == "true" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
		errOut = zerolog.ConsoleWriter{Out: errOut, TimeFormat: time.RFC3339}
	}

	build := func(w io.Writer) zerolog.Logger {
		return zerolog.New(w).
			Level(min.zerolog()).
			With().
			Timestamp().
			CallerWithSkipFrameCount(callerSkip).
			Logger()
	}

	return &Logger{
		service:  service,
		hostname: h,
		out:      build(out),
		err:      build(errOut),
	}
}

func (l *Logger) Debug(e Entry) { l.log(LevelDebug, e, nil) }
func (l *Logger) Info(e Entry)  { l.log(LevelInfo, e, nil) }
func (l *Logger) Warn(e Entry)  { l.log(LevelWarn, e, nil) }
func (l *Logger) Error(e Entry) { l.log(LevelError, e, nil) }
func (l *Logger) Fatal(e Entry) {
	// include stack automatically for fatal
	if e.Error == nil {
		e.Error = &ErrObj{Msg: e.Message, Stack: string(debug.Stack())}
	} else if e.Error.Stack == "" {
		e.Error.Stack = string(debug.Stack())
	}
	l.log(LevelError, e, nil)
	os.Exit(1)
}

// WithFields returns a shallow "context" logger that auto-merges Additional fields.
func (l *Logger) WithFields(base map[string]any) *ContextLogger {
	return &ContextLogger{parent: l, base: base}
}

// WithContext is a helper to attach request_id.
func (l *Logger) WithContext(requestID string) *ContextLogger {
	base := map[string]any{}
	if requestID != "" {
		base["request_id"] = requestID
	}
	return &ContextLogger{parent: l, base: base}
}

type ContextLogger struct {
	parent *Logger
	base   map[string]any
}

func (c *ContextLogger) Debug(e Entry) { c.parent.log(LevelDebug, e, c.base) }
func (c *ContextLogger) Info(e Entry)  { c.parent.log(LevelInfo, e, c.base) }
func (c *ContextLogger) Warn(e Entry)  { c.parent.log(LevelWarn, e, c.base) }
func (c *ContextLogger) Error(e Entry) { c.parent.log(LevelError, e, c.base) }

func (l *Logger) log(level Level, e Entry, base map[string]any) {
	zl := &l.out
	if level == LevelError {
		zl = &l.err
	}

	ev := zl.WithLevel(level.zerolog())
	if ev == nil {
		return
	}

	ev.Str("service", l.service).
		Str("hostname", l.hostname).
		Str("action", e.Action)

	if e.RequestID == "" {
		if v, ok := base["request_id"].(string); ok {
			e.RequestID = v
		}
	}
	if e.RequestID != "" {
		ev.Str("request_id", e.RequestID)
	}

	if e.Error != nil {
		d := zerolog.Dict().Str("msg", e.Error.Msg)
		if e.Error.Stack != "" {
			d.Str("stack", e.Error.Stack)
		}
		ev.Dict("error", d)
	}

	additional := mergeAdditional(e.Additional, base)
	if len(additional) > 0 {
		ev.Interface("additional", additional)
	}

	ev.Msg(e.Message)
}

// mergeAdditional не перезаписывает поля, которые уже заданы в Entry.
func mergeAdditional(own, base map[string]any) map[string]any {
	if len(base) == 0 {
		return own
	}
	out := make(map[string]any, len(own)+len(base))
	for k, v := range base {
		switch k {
		case "timestamp", "level", "service", "action", "message", "hostname", "request_id":
			continue
		default:
			out[k] = v
		}
	}
	for k, v := range own {
		out[k] = v
	}
	return out
}
