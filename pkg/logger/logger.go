package logger

import (
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	logger *logrus.Logger
	once   sync.Once
)

// Init configures the shared JSON logger. An unknown level falls back to info.
func Init(level string, out io.Writer) {
	l := logrus.New()
	l.SetFormatter(&logrus.JSONFormatter{})
	if out == nil {
		out = os.Stdout
	}
	l.SetOutput(out)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)

	logger = l
}

func Get() *logrus.Logger {
	once.Do(func() {
		if logger == nil {
			Init("info", nil)
		}
	})
	return logger
}
