// Package identity resolves whether advertising tracking is permitted and,
// if so, the platform advertising identifier.
//
// The two platform variants (Apple/Google) are selected at startup when the
// sender is wired, never at call time. Both honor the same contract:
//
//  1. A manual consent override, when present, replaces the platform consent
//     query entirely.
//  2. A failed platform query means tracking disabled (fail-closed).
//  3. The identifier is fetched only when tracking is enabled, and the
//     all-zero placeholder value is treated as absent.
//  4. When tracking is disabled the identifier is never fetched or returned,
//     regardless of the override source.
//
// ResolveIdentity never returns an error: unexpected internal failures
// degrade to the disabled identity rather than propagating.
package identity

import (
	"context"

	"github.com/google/uuid"

	"appevents/internal/types"
)

// Resolver is the advertiser identity resolution capability consumed by the
// event sender.
type Resolver interface {
	ResolveIdentity(ctx context.Context) types.AdvertiserIdentity
}

// singleflightKey is the shared key under which concurrent resolutions of
// one resolver instance are collapsed into a single platform query.
const singleflightKey = "advertiser_identity"

// sanitizeIdentifier normalizes a platform-returned advertising identifier.
// Platforms report the all-zero UUID when the user has opted out of
// personalization or the identifier is unavailable; that placeholder is not
// a real identifier and is mapped to absent.
func sanitizeIdentifier(raw string) string {
	if raw == "" {
		return ""
	}
	parsed, err := uuid.Parse(raw)
	if err != nil || parsed == uuid.Nil {
		return ""
	}
	return raw
}

// Disabled is a Resolver that always reports tracking disabled. It is the
// safe default when no platform bridge is configured.
type Disabled struct{}

// ResolveIdentity returns the fail-closed identity.
func (Disabled) ResolveIdentity(context.Context) types.AdvertiserIdentity {
	return types.DisabledIdentity()
}

var _ Resolver = Disabled{}
