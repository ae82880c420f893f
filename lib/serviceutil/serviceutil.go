package serviceutil

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

// Returns a context that will live until Ctrl+C is pressed
func SignalContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		cancel()
	}()

	return ctx
}

func Fatal(message string, err error) {
	FatalCode(1, message, err)
}

// FatalCode exits with a specific status. Exit code 3 is reserved for
// a missing request config file.
func FatalCode(code int, message string, err error) {
	slog.Error(message, "err", err.Error())
	os.Exit(code)
}
