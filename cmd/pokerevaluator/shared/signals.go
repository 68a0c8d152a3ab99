package shared

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
)

// SetupSignalHandler creates a context that is cancelled on interrupt
// signals. The signal is logged and a second one exits immediately.
func SetupSignalHandler(logger *log.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 2)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("Received signal, ending session", "signal", sig.String())
			cancel()
		case <-ctx.Done():
			signal.Stop(sigChan)
			return
		}

		<-sigChan
		os.Exit(130)
	}()

	return ctx, cancel
}
