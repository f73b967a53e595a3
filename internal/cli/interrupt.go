package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// InterruptHandler cancels long-running commands on SIGINT/SIGTERM and
// tells the user what happened to their data.
type InterruptHandler struct {
	writer      io.Writer
	signals     chan os.Signal
	operation   string
	hint        string
	mu          sync.Mutex
	interrupted bool
}

// NewInterruptHandler creates a handler for the named operation. hint, if
// not empty, is printed after the interrupt notice.
func NewInterruptHandler(writer io.Writer, operation, hint string) *InterruptHandler {
	if writer == nil {
		writer = os.Stderr
	}
	return &InterruptHandler{
		writer:    writer,
		operation: operation,
		hint:      hint,
		signals:   make(chan os.Signal, 1),
	}
}

// HandleInterrupts returns a context canceled on interrupt. The returned
// stop function releases the signal handler and must be called.
func (h *InterruptHandler) HandleInterrupts(ctx context.Context) (context.Context, func()) {
	ctx, cancel := context.WithCancel(ctx)
	signal.Notify(h.signals, os.Interrupt, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		select {
		case <-h.signals:
			h.mu.Lock()
			h.interrupted = true
			h.showInterruptMessage()
			h.mu.Unlock()
			cancel()
		case <-done:
		}
	}()

	var once sync.Once
	return ctx, func() {
		once.Do(func() {
			signal.Stop(h.signals)
			close(done)
			cancel()
		})
	}
}

func (h *InterruptHandler) showInterruptMessage() {
	msg := "\n" + FormatWarning(fmt.Sprintf("%s interrumpida", h.operation))
	if h.hint != "" {
		msg += "\n" + FormatInfo(h.hint)
	}
	_, _ = fmt.Fprintln(h.writer, msg)
}

// WasInterrupted reports whether a signal was received.
func (h *InterruptHandler) WasInterrupted() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.interrupted
}
