// Package config defines the environment-driven configuration for the
// appevents module. Configuration is loaded once at process initialization
// and is immutable thereafter, following 12-Factor principles: values come
// from the OS environment, optionally seeded by a .env file for local
// development. A missing required value or invalid format fails the load
// immediately (fail fast).
package config

import (
	"time"

	"appevents/internal/types"
)

// SecretString is an alias for types.SecretString, the redacted secret type
// used to keep the client token out of logs and config dumps.
type SecretString = types.SecretString

// Config is the top-level configuration struct. It is populated once during
// startup and never modified.
type Config struct {
	// Credentials for the collection endpoint.
	AppID       string       `envconfig:"EVENTS_APP_ID" validate:"required"`
	ClientToken SecretString `envconfig:"EVENTS_CLIENT_TOKEN" validate:"required"`

	// GraphURL is the API root. Point it at cmd/devsink for local work.
	GraphURL string `envconfig:"EVENTS_GRAPH_URL" default:"https://graph.facebook.com/v17.0" validate:"url"`

	// Platform selects the advertiser identity resolver variant at startup.
	Platform string `envconfig:"EVENTS_PLATFORM" default:"google" validate:"oneof=apple google"`

	// Timeout bounds each outbound dispatch.
	Timeout time.Duration `envconfig:"EVENTS_HTTP_TIMEOUT" default:"10s"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// MetricsEnabled switches on the CloudWatch delivery metrics sink.
	MetricsEnabled bool `envconfig:"EVENTS_METRICS_ENABLED" default:"false"`

	App AppConfig
}

// AppConfig describes the reporting application; it feeds the extinfo
// request field.
type AppConfig struct {
	PackageName string `envconfig:"EVENTS_APP_PACKAGE" default:"appevents"`
	AppVersion  string `envconfig:"EVENTS_APP_VERSION" default:"0.0.0"`
	BuildNumber string `envconfig:"EVENTS_APP_BUILD" default:"0"`
	OSVersion   string `envconfig:"EVENTS_OS_VERSION" default:""`
	Locale      string `envconfig:"EVENTS_LOCALE" default:"en_US"`
	Timezone    string `envconfig:"EVENTS_TIMEZONE" default:"UTC"`
}
