// Package signal cancels the application context on SIGINT/SIGTERM and lets critical
// sections (migrations, run imports) defer that cancellation until they finish.
package signal

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

var (
	mu sync.Mutex
	// depth counts nested critical sections.
	depth int
	// pending holds cancel funcs for signals received while depth > 0.
	pending []context.CancelFunc
)

// WithSignalCancel returns a context that is cancelled when SIGINT or SIGTERM is received.
// A signal that arrives inside a critical section cancels the context once the section ends.
func WithSignalCancel(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case <-sigChan:
			mu.Lock()
			if depth > 0 {
				pending = append(pending, cancel)
				mu.Unlock()
				return
			}
			mu.Unlock()
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

// BlockSignals enters a critical section. Calls may be nested.
func BlockSignals() {
	mu.Lock()
	defer mu.Unlock()
	depth++
}

// UnblockSignals leaves a critical section and runs any cancellation deferred by it.
func UnblockSignals() {
	mu.Lock()
	if depth > 0 {
		depth--
	}
	var run []context.CancelFunc
	if depth == 0 {
		run, pending = pending, nil
	}
	mu.Unlock()

	for _, cancel := range run {
		cancel()
	}
}

// Critical runs fn with signal cancellation deferred until it returns.
func Critical(fn func() error) error {
	BlockSignals()
	defer UnblockSignals()
	return fn()
}

// Blocked reports whether a critical section is active.
func Blocked() bool {
	mu.Lock()
	defer mu.Unlock()
	return depth > 0
}
