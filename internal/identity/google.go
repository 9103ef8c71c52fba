package identity

import (
	"context"

	"golang.org/x/sync/singleflight"

	"appevents/internal/consent"
	"appevents/internal/types"
)

// AdvertisingInfoClient fetches the platform advertising info (GAID plus the
// limit-ad-tracking flag) in one call, mirroring the play-services API shape.
type AdvertisingInfoClient interface {
	AdvertisingInfo(ctx context.Context) (id string, limitAdTracking bool, err error)
}

// GoogleResolver resolves advertiser identity on Google platforms using the
// advertising-info service's limit-ad-tracking flag and GAID.
type GoogleResolver struct {
	info     AdvertisingInfoClient
	override *consent.Override
	logger   types.Logger
	group    singleflight.Group
}

var _ Resolver = (*GoogleResolver)(nil)

// NewGoogleResolver wires the Google variant. The override store is normally
// the shared instance constructed at startup; a nil override gets a private
// empty store.
func NewGoogleResolver(info AdvertisingInfoClient, override *consent.Override, logger types.Logger) *GoogleResolver {
	if override == nil {
		override = consent.NewOverride()
	}
	if logger == nil {
		logger = types.NopLogger{}
	}
	return &GoogleResolver{
		info:     info,
		override: override,
		logger:   logger,
	}
}

// ResolveIdentity resolves the advertiser identity. Concurrent calls share a
// single in-flight platform query.
func (r *GoogleResolver) ResolveIdentity(ctx context.Context) types.AdvertiserIdentity {
	v, _, _ := r.group.Do(singleflightKey, func() (any, error) {
		return r.resolve(ctx), nil
	})
	identity, ok := v.(types.AdvertiserIdentity)
	if !ok {
		return types.DisabledIdentity()
	}
	return identity
}

func (r *GoogleResolver) resolve(ctx context.Context) types.AdvertiserIdentity {
	if enabled, overridden := r.override.Value(); overridden {
		if !enabled {
			return types.DisabledIdentity()
		}
		id, _, err := r.info.AdvertisingInfo(ctx)
		if err != nil {
			r.logger.Warn("advertising info query failed",
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

	id, limited, err := r.info.AdvertisingInfo(ctx)
	if err != nil {
		// Fail closed: an unanswerable consent question means no consent.
		r.logger.Warn("advertising info query failed, treating as limited",
			"error_code", string(types.ErrCodeResolutionFailed),
			"error", err.Error(),
		)
		return types.DisabledIdentity()
	}
	if limited {
		return types.DisabledIdentity()
	}

	return types.AdvertiserIdentity{
		ID:              sanitizeIdentifier(id),
		TrackingEnabled: true,
	}
}
