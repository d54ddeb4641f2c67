package lactoserv

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"text/template"
	"time"
)

// level is the severity of a logged event.
type level uint8

const (
	lvlDebug level = iota
	lvlInfo
	lvlWarn
	lvlError
)

var levelNames = []string{"DEBUG", "INFO", "WARN", "ERROR"}

func (lv level) String() string {
	if int(lv) < len(levelNames) {
		return levelNames[lv]
	}
	return "UNKNOWN"
}

// ParseLevel parses one of "debug", "info", "warn", "error" (case
// insensitive). It defaults to lvlInfo with an error for anything else.
func ParseLevel(s string) (level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return lvlDebug, nil
	case "info":
		return lvlInfo, nil
	case "warn", "warning":
		return lvlWarn, nil
	case "error":
		return lvlError, nil
	default:
		return lvlInfo, fmt.Errorf("lactoserv: invalid log level: %q", s)
	}
}

// DefaultLoggerFormat is the text/template source used to render the
// fixed fields of a log line before the message is appended. When the
// rendered header ends in "}" it is treated as a JSON object and the
// message is spliced in as an additional field; otherwise the message is
// appended as plain text.
const DefaultLoggerFormat = `{"time":"{{.time}}","level":"{{.level}}","component":"{{.component}}"}`

// LoggerConfig configures a root Logger.
type LoggerConfig struct {
	// Output is where rendered log lines are written. Defaults to
	// os.Stdout.
	Output io.Writer

	// MinLevel suppresses any event below this severity. The zero value
	// is lvlDebug, which suppresses nothing.
	MinLevel level

	// Format is the text/template source for the log line header.
	// Defaults to DefaultLoggerFormat.
	Format string

	// Enabled, when false, makes every logging call on this Logger (and
	// its descendants via Named) a no-op.
	Enabled bool
}

// Logger is a per-component leveled logger descending from a single root
// configuration. Calling Named derives a child Logger scoped to a
// sub-component name, the same way a Component derives its name-path.
type Logger struct {
	shared *loggerShared
	name   string
}

type loggerShared struct {
	output   io.Writer
	minLevel level
	enabled  bool
	tmpl     *template.Template

	mu   sync.Mutex
	pool sync.Pool
}

// NewLogger constructs a root Logger from cfg.
func NewLogger(cfg LoggerConfig) (*Logger, error) {
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}

	format := cfg.Format
	if format == "" {
		format = DefaultLoggerFormat
	}

	tmpl, err := template.New("lactoserv-log").Parse(format)
	if err != nil {
		return nil, fmt.Errorf("lactoserv: invalid logger format: %w", err)
	}

	shared := &loggerShared{
		output:   out,
		minLevel: cfg.MinLevel,
		enabled:  cfg.Enabled,
		tmpl:     tmpl,
		pool: sync.Pool{
			New: func() any { return bytes.NewBuffer(make([]byte, 0, 256)) },
		},
	}

	return &Logger{shared: shared, name: "root"}, nil
}

// Named returns a Logger scoped to a sub-component, for use as a child
// component's logger.
func (l *Logger) Named(name string) *Logger {
	if l == nil {
		return nil
	}
	return &Logger{shared: l.shared, name: l.name + "." + name}
}

// Name returns the dotted component path this Logger is scoped to.
func (l *Logger) Name() string { return l.name }

func (l *Logger) Debug(args ...any)                 { l.log(lvlDebug, "", args...) }
func (l *Logger) Debugf(format string, args ...any) { l.log(lvlDebug, format, args...) }
func (l *Logger) Info(args ...any)                  { l.log(lvlInfo, "", args...) }
func (l *Logger) Infof(format string, args ...any)  { l.log(lvlInfo, format, args...) }
func (l *Logger) Warn(args ...any)                  { l.log(lvlWarn, "", args...) }
func (l *Logger) Warnf(format string, args ...any)  { l.log(lvlWarn, format, args...) }
func (l *Logger) Error(args ...any)                 { l.log(lvlError, "", args...) }
func (l *Logger) Errorf(format string, args ...any) { l.log(lvlError, format, args...) }

// Fields logs msg at the given level followed by the JSON encoding of
// fields, as one message string. In JSON mode the fields therefore appear
// inside the "message" value, not as separate keys of the log line; text
// mode prints the same JSON after msg.
func (l *Logger) Fields(lv level, msg string, fields map[string]any) {
	if l == nil || !l.shared.enabled || lv < l.shared.minLevel {
		return
	}

	b, _ := json.Marshal(fields)
	l.log(lv, "", fmt.Sprintf("%s %s", msg, string(b)))
}

func (l *Logger) log(lv level, format string, args ...any) {
	if l == nil || !l.shared.enabled || lv < l.shared.minLevel {
		return
	}

	message := fmt.Sprint(args...)
	if format != "" {
		message = fmt.Sprintf(format, args...)
	}

	s := l.shared
	s.mu.Lock()
	defer s.mu.Unlock()

	buf := s.pool.Get().(*bytes.Buffer)
	defer func() {
		buf.Reset()
		s.pool.Put(buf)
	}()

	data := map[string]any{
		"time":      time.Now().Format(time.RFC3339),
		"level":     lv.String(),
		"component": l.name,
	}

	if err := s.tmpl.Execute(buf, data); err != nil {
		return
	}

	out := buf.Bytes()
	if len(out) > 0 && out[len(out)-1] == '}' {
		buf.Truncate(buf.Len() - 1)
		buf.WriteByte(',')
		buf.WriteString(`"message":`)
		mb, _ := json.Marshal(message)
		buf.Write(mb)
		buf.WriteByte('}')
	} else {
		buf.WriteByte(' ')
		buf.WriteString(message)
	}
	buf.WriteByte('\n')

	s.output.Write(buf.Bytes())
}
