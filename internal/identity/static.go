package identity

import "context"

// StaticPlatformClient is a fixed-value platform bridge. It stands in for
// the real cross-process platform APIs in tests, local development, and
// server-side deployments where the consent state and identifier arrive
// through configuration instead of device IPC.
//
// It implements AuthorizationClient, IdentifierClient, and
// AdvertisingInfoClient, so one instance can back either resolver variant.
type StaticPlatformClient struct {
	ID         string
	Authorized bool
	Err        error
}

var (
	_ AuthorizationClient   = (*StaticPlatformClient)(nil)
	_ IdentifierClient      = (*StaticPlatformClient)(nil)
	_ AdvertisingInfoClient = (*StaticPlatformClient)(nil)
)

// TrackingAuthorized implements AuthorizationClient.
func (c *StaticPlatformClient) TrackingAuthorized(context.Context) (bool, error) {
	return c.Authorized, c.Err
}

// AdvertisingIdentifier implements IdentifierClient.
func (c *StaticPlatformClient) AdvertisingIdentifier(context.Context) (string, error) {
	return c.ID, c.Err
}

// AdvertisingInfo implements AdvertisingInfoClient. The limit-ad-tracking
// flag is the inverse of Authorized.
func (c *StaticPlatformClient) AdvertisingInfo(context.Context) (string, bool, error) {
	return c.ID, !c.Authorized, c.Err
}
