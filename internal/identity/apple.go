package identity

import (
	"context"

	"golang.org/x/sync/singleflight"

	"appevents/internal/consent"
	"appevents/internal/types"
)

// AuthorizationClient answers the App Tracking Transparency authorization
// question. On-device this is a cross-process call; in tests and server-side
// deployments it is a small injected bridge.
type AuthorizationClient interface {
	TrackingAuthorized(ctx context.Context) (bool, error)
}

// IdentifierClient fetches the platform advertising identifier (IDFA).
type IdentifierClient interface {
	AdvertisingIdentifier(ctx context.Context) (string, error)
}

// AppleResolver resolves advertiser identity on Apple platforms using the
// ATT authorization status and the IDFA.
type AppleResolver struct {
	auth     AuthorizationClient
	idClient IdentifierClient
	override *consent.Override
	logger   types.Logger
	group    singleflight.Group
}

var _ Resolver = (*AppleResolver)(nil)

// NewAppleResolver wires the Apple variant. The override store is normally
// the shared instance constructed at startup; a nil override gets a private
// empty store.
func NewAppleResolver(auth AuthorizationClient, idClient IdentifierClient, override *consent.Override, logger types.Logger) *AppleResolver {
	if override == nil {
		override = consent.NewOverride()
	}
	if logger == nil {
		logger = types.NopLogger{}
	}
	return &AppleResolver{
		auth:     auth,
		idClient: idClient,
		override: override,
		logger:   logger,
	}
}

// ResolveIdentity resolves the advertiser identity. Concurrent calls share a
// single in-flight platform query.
func (r *AppleResolver) ResolveIdentity(ctx context.Context) types.AdvertiserIdentity {
	v, _, _ := r.group.Do(singleflightKey, func() (any, error) {
		return r.resolve(ctx), nil
	})
	identity, ok := v.(types.AdvertiserIdentity)
	if !ok {
		return types.DisabledIdentity()
	}
	return identity
}

func (r *AppleResolver) resolve(ctx context.Context) types.AdvertiserIdentity {
	enabled, overridden := r.override.Value()
	if !overridden {
		var err error
		enabled, err = r.auth.TrackingAuthorized(ctx)
		if err != nil {
			// Fail closed: an unanswerable consent question means no consent.
			r.logger.Warn("tracking authorization query failed, treating as denied",
				"error_code", string(types.ErrCodeResolutionFailed),
				"error", err.Error(),
			)
			return types.DisabledIdentity()
		}
	}

	if !enabled {
		return types.DisabledIdentity()
	}

	id, err := r.idClient.AdvertisingIdentifier(ctx)
	if err != nil {
		r.logger.Warn("advertising identifier query failed",
			"error_code", string(types.ErrCodeResolutionFailed),
			"error", err.Error(),
		)
		return types.AdvertiserIdentity{TrackingEnabled: true}
	}

	return types.AdvertiserIdentity{
		ID:              sanitizeIdentifier(id),
		TrackingEnabled: true,
	}
}
