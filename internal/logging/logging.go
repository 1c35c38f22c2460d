package logging

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

type LogFormat string

const (
	FormatText LogFormat = "text"
	FormatJSON LogFormat = "json"
)

// Decode lets envconfig reject unknown formats at startup.
func (f *LogFormat) Decode(value string) error {
	switch v := LogFormat(strings.ToLower(strings.TrimSpace(value))); v {
	case "", FormatText:
		*f = FormatText
	case FormatJSON:
		*f = FormatJSON
	default:
		return fmt.Errorf("unknown log format %q", value)
	}
	return nil
}

func NewLogger(format LogFormat) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	switch format {
	case FormatJSON:
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		})
	default:
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}
	return logger
}
