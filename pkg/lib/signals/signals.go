package signals

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

var (
	shutdownSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}

	signalCtx context.Context
	cancel    context.CancelFunc
	once      sync.Once
)

// Context returns a Context cancelled on SIGTERM or SIGINT, so that an
// interrupted synthesis run unwinds cleanly. A second signal
// terminates the process with exit code 1.
func Context() context.Context {
	once.Do(func() {
		c := make(chan os.Signal, 2)
		signal.Notify(c, shutdownSignals...)
		signalCtx, cancel = context.WithCancel(context.Background())
		go func() {
			<-c
			cancel()
			<-c
			os.Exit(1)
		}()
	})

	return signalCtx
}
