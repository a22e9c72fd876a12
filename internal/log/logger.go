package log

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync/atomic"

	"filedeck/internal/errors"

	"github.com/sirupsen/logrus"
)

const timestampFormat = "2006-01-02 15:04:05"

var (
	isDebug atomic.Bool
	current atomic.Pointer[Logger]
)

func init() {
	current.Store(NewLogger())
}

// Field is a single structured key/value attached to a log line.
type Field struct {
	Key   string
	Value interface{}
}

// F builds a Field.
func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// Option configures a Logger.
type Option func(*options)

type options struct {
	out  io.Writer
	json bool
	path string
}

// WithOutput sends log lines to w instead of stdout.
func WithOutput(w io.Writer) Option {
	return func(o *options) { o.out = w }
}

// WithJSON switches to one JSON object per line.
func WithJSON() Option {
	return func(o *options) { o.json = true }
}

// WithFile appends log lines to path in addition to the configured output.
func WithFile(path string) Option {
	return func(o *options) { o.path = path }
}

// Logger writes leveled, optionally structured lines through logrus.
type Logger struct {
	entry *logrus.Entry
	file  *os.File
}

// NewLogger creates a logger. Without options it writes text lines to stdout.
func NewLogger(opts ...Option) *Logger {
	o := options{out: os.Stdout}
	for _, opt := range opts {
		opt(&o)
	}

	l := logrus.New()
	l.SetLevel(logrus.DebugLevel)
	if o.json {
		l.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: timestampFormat,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyMsg:  "message",
				logrus.FieldKeyTime: "timestamp",
			},
		})
	} else {
		l.SetFormatter(&lineFormatter{})
	}

	res := &Logger{}
	out := o.out
	if o.path != "" {
		f, err := os.OpenFile(o.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err == nil {
			res.file = f
			out = io.MultiWriter(o.out, f)
		} else {
			fmt.Fprintf(os.Stderr, "failed to open log file %s: %v\n", o.path, err)
		}
	}
	l.SetOutput(out)
	res.entry = logrus.NewEntry(l)
	return res
}

// Configure replaces the package-level logger and closes the log file of
// the one it replaces.
func Configure(opts ...Option) {
	if prev := current.Swap(NewLogger(opts...)); prev != nil {
		if err := prev.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to close log file: %v\n", err)
		}
	}
}

// SetDebug enables or disables debug lines for every logger.
func SetDebug(debug bool) {
	isDebug.Store(debug)
}

// Default returns the package-level logger.
func Default() *Logger {
	return current.Load()
}

// With returns a logger that attaches fields to every line.
func (l *Logger) With(fields ...Field) *Logger {
	data := make(logrus.Fields, len(fields))
	for _, f := range fields {
		data[f.Key] = f.Value
	}
	return &Logger{entry: l.entry.WithFields(data), file: l.file}
}

// WithError attaches err and, for application errors, its kind and subject.
func (l *Logger) WithError(err error) *Logger {
	if err == nil {
		return l.With(F("error", "<nil>"))
	}
	fields := []Field{F("error", err.Error()), F("error_kind", errors.KindOf(err).String())}
	var fileErr *errors.FileError
	if errors.As(err, &fileErr) && fileErr.Path() != "" {
		fields = append(fields, F("path", fileErr.Path()))
	}
	var configErr *errors.ConfigError
	if errors.As(err, &configErr) && configErr.Param() != "" {
		fields = append(fields, F("param", configErr.Param()))
	}
	return l.With(fields...)
}

// Close releases the log file, if any.
func (l *Logger) Close() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

func (l *Logger) Info(msg string, args ...interface{})  { l.entry.Info(format(msg, args)) }
func (l *Logger) Infof(msg string, args ...interface{}) { l.entry.Info(format(msg, args)) }
func (l *Logger) Warn(msg string, args ...interface{})  { l.entry.Warn(format(msg, args)) }
func (l *Logger) Warnf(msg string, args ...interface{}) { l.entry.Warn(format(msg, args)) }
func (l *Logger) Error(msg string, args ...interface{}) { l.entry.Error(format(msg, args)) }

func (l *Logger) Errorf(msg string, args ...interface{}) { l.entry.Error(format(msg, args)) }

// Debug logs only when debug output is enabled
func (l *Logger) Debug(msg string, args ...interface{}) {
	if isDebug.Load() {
		l.entry.Debug(format(msg, args))
	}
}

// Debugf logs a formatted message when debug output is enabled
func (l *Logger) Debugf(msg string, args ...interface{}) {
	l.Debug(msg, args...)
}

func format(msg string, args []interface{}) string {
	if len(args) == 0 {
		return msg
	}
	return fmt.Sprintf(msg, args...)
}

func Info(format string, args ...interface{})  { Default().Info(format, args...) }
func Infof(format string, args ...interface{}) { Default().Infof(format, args...) }
func Warn(format string, args ...interface{})  { Default().Warn(format, args...) }
func Warnf(format string, args ...interface{}) { Default().Warnf(format, args...) }

// Debug logs a message when debug output is enabled
func Debug(format string, args ...interface{}) { Default().Debug(format, args...) }

// Debugf logs a formatted message when debug output is enabled
func Debugf(format string, args ...interface{}) { Default().Debugf(format, args...) }

// Error logs an error message with arguments
func Error(format string, args ...interface{}) { Default().Error(format, args...) }

// Errorf logs a formatted error message
func Errorf(format string, args ...interface{}) { Default().Errorf(format, args...) }

// LogWithFields returns the package logger with fields attached.
func LogWithFields(fields ...Field) *Logger {
	return Default().With(fields...)
}

// LogWithError returns the package logger with err attached.
func LogWithError(err error) *Logger {
	return Default().WithError(err)
}

// LogError logs err at error level with msg.
func LogError(err error, msg string) {
	Default().WithError(err).Error(msg)
}

// lineFormatter renders "[timestamp] LEVEL: message key=value ..." lines.
type lineFormatter struct{}

func (f *lineFormatter) Format(e *logrus.Entry) ([]byte, error) {
	var b bytes.Buffer
	fmt.Fprintf(&b, "[%s] %s: %s", e.Time.Format(timestampFormat), levelName(e.Level), e.Message)

	keys := make([]string, 0, len(e.Data))
	for k := range e.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, e.Data[k])
	}
	b.WriteByte('\n')
	return b.Bytes(), nil
}

func levelName(level logrus.Level) string {
	if level == logrus.WarnLevel {
		return "WARN"
	}
	return strings.ToUpper(level.String())
}
