//go:build go1.21

package slog

import (
	"context"
	stdslog "log/slog"
	"os"
	"strings"

	"github.com/unkn0wn-root/greetcount"
)

var _ greetcount.Logger = Logger{}

type Logger struct{ L *stdslog.Logger }

// New builds a JSON handler on stdout at level.
func New(level string) (Logger, error) {
	var lvl stdslog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		return Logger{}, err
	}
	h := stdslog.NewJSONHandler(os.Stdout, &stdslog.HandlerOptions{Level: lvl})
	return Logger{L: stdslog.New(h)}, nil
}

func (s Logger) Debug(msg string, f greetcount.Fields) {
	s.L.LogAttrs(context.Background(), stdslog.LevelDebug, msg, attrs(f)...)
}
func (s Logger) Info(msg string, f greetcount.Fields) {
	s.L.LogAttrs(context.Background(), stdslog.LevelInfo, msg, attrs(f)...)
}
func (s Logger) Warn(msg string, f greetcount.Fields) {
	s.L.LogAttrs(context.Background(), stdslog.LevelWarn, msg, attrs(f)...)
}
func (s Logger) Error(msg string, f greetcount.Fields) {
	s.L.LogAttrs(context.Background(), stdslog.LevelError, msg, attrs(f)...)
}

func attrs(f greetcount.Fields) []stdslog.Attr {
	if len(f) == 0 {
		return nil
	}
	out := make([]stdslog.Attr, 0, len(f))
	for k, v := range f {
		out = append(out, stdslog.Any(k, v))
	}
	return out
}
