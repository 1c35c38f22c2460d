package wallet

import (
	"github.com/sirupsen/logrus"

	"github.com/OshiSharma1222/starquik/internal/stellar"
)

type Level string

const (
	LevelLoading Level = "loading"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notification is a transient status message for one attempt. Later
// notifications with the same AttemptID replace earlier ones.
type Notification struct {
	AttemptID string
	Operation stellar.Operation
	Level     Level
	Message   string
}

type Notifier interface {
	Notify(n Notification)
}

// LogNotifier writes notifications to a logger.
type LogNotifier struct {
	logger *logrus.Entry
}

func NewLogNotifier(logger *logrus.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.WithField("pkg", "wallet")}
}

func (l *LogNotifier) Notify(n Notification) {
	entry := l.logger.WithFields(logrus.Fields{
		"attempt":   n.AttemptID,
		"operation": n.Operation,
	})
	switch n.Level {
	case LevelError:
		entry.Error(n.Message)
	case LevelSuccess:
		entry.Info(n.Message)
	default:
		entry.Debug(n.Message)
	}
}

type nopNotifier struct{}

func (nopNotifier) Notify(Notification) {}
