package logger

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/gamersarena/arenabot/core/buildinfo"
	coreconfig "github.com/gamersarena/arenabot/core/config"
)

var (
	mu      sync.Mutex
	inited  bool
	closers []io.Closer
	level   slog.LevelVar

	// L is the base logger; prefer the component helpers below.
	L *slog.Logger

	// DB logs database events.
	DB *slog.Logger
	// TG logs Telegram transport events.
	TG *slog.Logger
	// MIG logs database migration events.
	MIG *slog.Logger
	// TWire logs Telegram wiring steps.
	TWire *slog.Logger
)

func init() {
	// Usable before InitLogger (tests, early failures); replaced on init.
	setBase(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func setBase(l *slog.Logger) {
	L = l
	DB = l.With("component", "db")
	TG = l.With("component", "tg")
	MIG = l.With("component", "db.migrate")
	TWire = l.With("component", "tg.wire")
}

// InitLogger installs the process logger described by cfg. Later calls are no-ops.
func InitLogger(cfg *coreconfig.Config) error {
	mu.Lock()
	defer mu.Unlock()
	if inited {
		return nil
	}
	var lc coreconfig.LoggingConfig
	if cfg != nil {
		lc = cfg.Logging
	}

	out, files, err := openSinks(lc)
	if err != nil {
		return err
	}
	closers = files
	level.Set(parseLevel(lc.Level))

	base := slog.New(newHandler(out, parseFormat(lc), &level))
	setBase(base)
	slog.SetDefault(base)
	inited = true

	L.LogAttrs(context.Background(), slog.LevelInfo, "",
		slog.String("component", "app"),
		slog.String("event", "startup"),
		slog.String("go_version", runtime.Version()),
		slog.String("build_version", buildinfo.Version),
		slog.String("build_commit", buildinfo.Commit),
		slog.String("profile", profile(lc)),
	)
	return nil
}

// Shutdown closes file sinks opened by InitLogger.
func Shutdown() error {
	mu.Lock()
	defer mu.Unlock()
	var errs []error
	for _, c := range closers {
		errs = append(errs, c.Close())
	}
	closers = nil
	return errors.Join(errs...)
}

func parseFormat(lc coreconfig.LoggingConfig) string {
	switch strings.ToLower(strings.TrimSpace(lc.Format)) {
	case formatJSON:
		return formatJSON
	case formatKV, "text", "pretty":
		return formatKV
	}
	if p := profile(lc); p == "debug" || p == "dev" {
		return formatKV
	}
	return formatJSON
}

func parseLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

func profile(lc coreconfig.LoggingConfig) string {
	if p := strings.TrimSpace(lc.Profile); p != "" {
		return strings.ToLower(p)
	}
	return "prod"
}

// openSinks returns stdout plus the optional bot log file.
func openSinks(lc coreconfig.LoggingConfig) (io.Writer, []io.Closer, error) {
	dir, file := strings.TrimSpace(lc.Dir), strings.TrimSpace(lc.BotFile)
	if dir == "" || file == "" {
		return os.Stdout, nil, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(filepath.Join(dir, file), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	return io.MultiWriter(os.Stdout, f), []io.Closer{f}, nil
}

// Component returns the base logger scoped to name.
func Component(name string) *slog.Logger {
	if name = strings.TrimSpace(name); name == "" {
		return L
	}
	return L.With("component", name)
}

// Event writes one structured line carrying component and event.
func Event(ctx context.Context, component string, lvl slog.Level, event string, attrs ...slog.Attr) {
	if ctx == nil {
		ctx = context.Background()
	}
	l := Component(component)
	if !l.Enabled(ctx, lvl) {
		return
	}
	l.LogAttrs(ctx, lvl, "", append([]slog.Attr{slog.String("event", event)}, attrs...)...)
}

// Debug writes an event below the default level; it is dropped unless
// logging.level is debug.
func Debug(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelDebug, event, attrs...)
}

func Info(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelInfo, event, attrs...)
}

func Warn(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelWarn, event, attrs...)
}

func Error(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelError, event, attrs...)
}
