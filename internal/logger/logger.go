// Package logger builds the zap loggers used by the analysis pipeline: a
// console core for the operator and a JSON session file per symbol.
package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options configures a session logger
type Options struct {
	Symbol  string
	Level   string
	Dir     string
	Console bool
	// File disables the JSON session file when false.
	File bool
}

// DefaultOptions logs INFO to the console and to logs/<SYMBOL>_<date>.log
func DefaultOptions(symbol string) Options {
	return Options{Symbol: symbol, Level: "info", Dir: "logs", Console: true, File: true}
}

// Session wraps a zap logger with the session file it writes to.
type Session struct {
	*zap.Logger
	symbol  string
	path    string
	file    *os.File
	started time.Time
}

// New creates a session logger. The log directory is created if needed.
func New(opts Options) (*Session, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}

	var cores []zapcore.Core
	if opts.Console {
		encCfg := zap.NewDevelopmentEncoderConfig()
		encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.Lock(os.Stderr), level))
	}

	var path string
	var file *os.File
	if opts.File {
		dir := opts.Dir
		if dir == "" {
			dir = "logs"
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		path = filepath.Join(dir, FileName(opts.Symbol, time.Now()))
		file, err = os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), zapcore.AddSync(file), level))
	}

	base := zap.NewNop()
	if len(cores) > 0 {
		base = zap.New(zapcore.NewTee(cores...))
	}
	if opts.Symbol != "" {
		base = base.With(zap.String("symbol", opts.Symbol))
	}

	return &Session{Logger: base, symbol: opts.Symbol, path: path, file: file, started: time.Now()}, nil
}

// Nop returns a session that discards everything
func Nop() *Session {
	return &Session{Logger: zap.NewNop(), started: time.Now()}
}

// FileName returns <SYMBOL>_<YYYY-MM-DD>.log
func FileName(symbol string, day time.Time) string {
	if symbol == "" {
		symbol = "session"
	}
	return fmt.Sprintf("%s_%s.log", symbol, day.Format("2006-01-02"))
}

// ParseLevel maps a level name to a zap level. Empty means info.
func ParseLevel(name string) (zapcore.Level, error) {
	if strings.TrimSpace(name) == "" {
		return zapcore.InfoLevel, nil
	}
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(strings.ToLower(name))); err != nil {
		return level, fmt.Errorf("invalid log level %q: %w", name, err)
	}
	return level, nil
}

// Path returns the session file path, empty when file logging is off
func (s *Session) Path() string {
	return s.path
}

// SessionStart writes the session header entry
func (s *Session) SessionStart(fields ...zap.Field) {
	s.Info("🚀 analysis session started", append(fields, zap.String("log_file", s.path))...)
}

// SessionEnd writes the closing entry and flushes the cores
func (s *Session) SessionEnd(fields ...zap.Field) {
	s.Info("🏁 analysis session finished", append(fields, zap.Duration("elapsed", time.Since(s.started)))...)
	_ = s.Sync()
}

// Close flushes and closes the session file
func (s *Session) Close() error {
	_ = s.Sync()
	if s.file == nil {
		return nil
	}
	return s.file.Close()
}

// Trade logs a completed round trip
func (s *Session) Trade(entryDate, exitDate time.Time, entry, exit, size, pnl float64, reason string) {
	s.Info("💹 trade",
		zap.String("entry_date", entryDate.Format("2006-01-02")),
		zap.String("exit_date", exitDate.Format("2006-01-02")),
		zap.Float64("entry_price", entry),
		zap.Float64("exit_price", exit),
		zap.Float64("size", size),
		zap.Float64("pnl", pnl),
		zap.String("reason", reason))
}
