package logger

import (
	"context"
	"fmt"
	"go/build"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"
)

type jobIdKey struct{}

// WithJobId stores the export job id so every record logged with ctx carries it.
func WithJobId(ctx context.Context, jobId string) context.Context {
	return context.WithValue(ctx, jobIdKey{}, jobId)
}

// ParseLevel maps debug, info, warn and error to slog levels.
func ParseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q, one of debug, info, warn or error expected", s)
	}
	return lvl, nil
}

// SetupSLog installs the default logger. format is text or json; source file
// paths are reported relative to rootPath (or GOPATH for dependencies).
func SetupSLog(lvl slog.Level, format string, rootPath string) error {
	h, err := newBaseHandler(os.Stderr, format, lvl)
	if err != nil {
		return err
	}

	slog.SetDefault(slog.New(newHandler(h, rootPath)))
	return nil
}

func newBaseHandler(w io.Writer, format string, lvl slog.Level) (slog.Handler, error) {
	ho := slog.HandlerOptions{
		Level: lvl,
	}

	switch format {
	case "json":
		return slog.NewJSONHandler(w, &ho), nil
	case "text", "":
		return slog.NewTextHandler(w, &ho), nil
	default:
		return nil, fmt.Errorf("LOG_FORMAT must be json or text, got %q", format)
	}
}

func newHandler(base slog.Handler, rootPath string) *handler {
	gopath := os.Getenv("GOPATH")
	if gopath == "" {
		gopath = build.Default.GOPATH
	}

	return &handler{
		baseHandler: base,
		rootPath:    strings.TrimSuffix(rootPath, "/") + "/",
		goPath:      strings.TrimSuffix(gopath, "/") + "/",
	}
}

type handler struct {
	baseHandler slog.Handler
	rootPath    string
	goPath      string
}

func (e *handler) Enabled(ctx context.Context, level slog.Level) bool {
	return e.baseHandler.Enabled(ctx, level)
}

func (e *handler) Handle(ctx context.Context, record slog.Record) error {
	record = record.Clone()

	if record.PC != 0 {
		fs := runtime.CallersFrames([]uintptr{record.PC})
		f, _ := fs.Next()
		file := f.File
		if strings.HasPrefix(file, e.rootPath) {
			file = file[len(e.rootPath):]
		} else if strings.HasPrefix(file, e.goPath) {
			file = file[len(e.goPath):]
		}
		record.AddAttrs(slog.Any(slog.SourceKey, &slog.Source{
			Function: f.Function,
			File:     file,
			Line:     f.Line,
		}))
	}

	if jobId, ok := ctx.Value(jobIdKey{}).(string); ok {
		record.AddAttrs(slog.String("job_id", jobId))
	}

	return e.baseHandler.Handle(ctx, record)
}

func (e *handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &handler{
		baseHandler: e.baseHandler.WithAttrs(attrs),
		rootPath:    e.rootPath,
		goPath:      e.goPath,
	}
}

func (e *handler) WithGroup(name string) slog.Handler {
	return &handler{
		baseHandler: e.baseHandler.WithGroup(name),
		rootPath:    e.rootPath,
		goPath:      e.goPath,
	}
}
