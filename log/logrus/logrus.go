package logrus

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/unkn0wn-root/greetcount"
)

type LogrusLogger struct{ E *logrus.Entry }

var _ greetcount.Logger = LogrusLogger{}

// New builds a JSON logger on stdout at level.
func New(level string) (LogrusLogger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return LogrusLogger{}, err
	}
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetFormatter(&logrus.JSONFormatter{})
	l.SetLevel(lvl)
	return LogrusLogger{E: logrus.NewEntry(l)}, nil
}

func (l LogrusLogger) Debug(msg string, f greetcount.Fields) {
	l.E.WithFields(logrus.Fields(f)).Debug(msg)
}
func (l LogrusLogger) Info(msg string, f greetcount.Fields) { l.E.WithFields(logrus.Fields(f)).Info(msg) }
func (l LogrusLogger) Warn(msg string, f greetcount.Fields) { l.E.WithFields(logrus.Fields(f)).Warn(msg) }
func (l LogrusLogger) Error(msg string, f greetcount.Fields) {
	l.E.WithFields(logrus.Fields(f)).Error(msg)
}
