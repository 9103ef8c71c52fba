// Package consent holds the manually supplied advertiser-tracking decision.
//
// The override mirrors the one-time nature of platform consent dialogs: it
// is set once by a caller that obtained a decision outside this module's own
// flow, stays visible process-wide for the lifetime of the shared instance,
// and is consulted by every identity resolution until cleared.
package consent

import "sync"

// Override stores an optional boolean consent decision. The zero value is
// usable and holds no decision. A single shared instance is constructed at
// startup and injected into resolvers; there is no ambient global.
type Override struct {
	mu      sync.RWMutex
	set     bool
	enabled bool
}

// NewOverride returns an empty Override.
func NewOverride() *Override {
	return &Override{}
}

// Set records a consent decision. Subsequent resolutions use it instead of
// querying the platform, until Clear is called.
func (o *Override) Set(enabled bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.set = true
	o.enabled = enabled
}

// Clear removes the stored decision; resolution reverts to platform queries.
func (o *Override) Clear() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.set = false
	o.enabled = false
}

// Has reports whether a decision is currently stored.
func (o *Override) Has() bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.set
}

// Value returns the stored decision and whether one is present. The read is
// atomic: callers see either no value or one complete value.
func (o *Override) Value() (enabled, ok bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.enabled, o.set
}
