package graceful

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
)

func MakeSigintChan() chan os.Signal {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	return sigCh
}

// CancelOnSignal cancels once SIGINT or SIGTERM arrives or ctx ends.
func CancelOnSignal(ctx context.Context, cancel context.CancelFunc, logger logrus.FieldLogger) {
	sigCh := MakeSigintChan()
	go func() {
		defer signal.Stop(sigCh)
		select {
		case sig := <-sigCh:
			logger.Infof("received exit signal: %v", sig)
			cancel()
		case <-ctx.Done():
		}
	}()
}
