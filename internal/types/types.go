// Package types defines the shared value types, error taxonomy, and small
// cross-cutting interfaces (Logger, Clock) used throughout the appevents
// module. It has no dependencies on other internal packages so that every
// component can import it freely.
package types

import "time"

// ContentItem is a single line item (product, media asset) referenced by an
// analytics event. Quantity must be non-negative; validation happens in the
// event factory, not here.
type ContentItem struct {
	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
}

// Event is a single analytics event ready for dispatch. Instances are
// immutable by convention: they are passed by value and never modified after
// construction by the factory in internal/events.
//
// ID uniqueness is advisory only (the collection endpoint uses it for
// dedup); the factory generates a UUID when the caller supplies none.
type Event struct {
	// Name is the semantic event name (e.g. fb_mobile_purchase). Required.
	Name string

	// ID identifies this event instance for receiver-side deduplication.
	ID string

	// Items are the content line items, in caller-supplied order. May be empty.
	Items []ContentItem

	// ContentType describes what Items refer to (e.g. "product"). Optional.
	ContentType string

	// ValueToSum is the monetary value to accumulate, when present. Never
	// negative once the factory has accepted it.
	ValueToSum *float64

	// Currency is the ISO 4217 code qualifying ValueToSum. Optional.
	Currency string

	// LogTime is when the event was constructed, always UTC.
	LogTime time.Time
}

// AdvertiserIdentity is the outcome of a privacy-aware identity resolution.
//
// Invariant: TrackingEnabled == false implies ID == "". The identifier is
// never surfaced when tracking is disabled, regardless of what a platform
// API returned. All construction sites must preserve this.
type AdvertiserIdentity struct {
	ID              string
	TrackingEnabled bool
}

// DisabledIdentity returns the fail-closed identity used whenever consent is
// denied, unknown, or a platform query fails.
func DisabledIdentity() AdvertiserIdentity {
	return AdvertiserIdentity{}
}

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the real system time (always UTC).
type RealClock struct{}

// Now returns the current time in UTC.
func (RealClock) Now() time.Time { return time.Now().UTC() }

// Logger defines the structured logging interface used throughout the module.
// It is satisfied by a thin adapter over *slog.Logger (see cmd entrypoints).
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	With(args ...any) Logger
}

// NopLogger is a Logger that discards everything. It is the default for
// components constructed without an explicit logger.
type NopLogger struct{}

func (NopLogger) Info(msg string, args ...any)  {}
func (NopLogger) Warn(msg string, args ...any)  {}
func (NopLogger) Error(msg string, args ...any) {}
func (n NopLogger) With(args ...any) Logger     { return n }
