package sender

import (
	"context"
	"sync"

	"appevents/internal/types"
)

// The package-level facade forwards to a single process-wide Sender bound at
// startup. Binding is last-wins: a later Bind replaces an earlier one, which
// keeps re-initialization (e.g. credential rotation in a long-lived process)
// possible without a separate rebind API.
var (
	defaultMu     sync.RWMutex
	defaultSender *Sender
)

// Bind installs s as the process-wide default sender. Passing nil unbinds.
func Bind(s *Sender) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultSender = s
}

// Default returns the bound sender, or a sender_not_initialized error when
// Bind has not been called.
func Default() (*Sender, error) {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	if defaultSender == nil {
		return nil, types.NewAppError(types.ErrCodeSenderNotInitialized,
			"no default sender bound; call sender.Bind first", nil)
	}
	return defaultSender, nil
}

// SendEvents forwards to the bound default sender. Unlike instance sends,
// the facade can fail: using it before Bind returns a sender_not_initialized
// error instead of silently dropping events.
func SendEvents(ctx context.Context, batch ...types.Event) error {
	s, err := Default()
	if err != nil {
		return err
	}
	s.SendEvents(ctx, batch...)
	return nil
}

// Reset unbinds the default sender. For tests.
func Reset() {
	Bind(nil)
}
