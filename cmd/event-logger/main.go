// Package main is the bootstrap entrypoint that wires an event sender once
// at startup and sends one or more events from the command line.
//
// Startup sequence:
//  1. Initialize structured logger.
//  2. Load and validate configuration (env / .env).
//  3. Construct the shared consent override and the platform resolver
//     variant selected by EVENTS_PLATFORM.
//  4. Construct the Sender and bind it as the process-wide default.
//  5. Build the requested event via the factory and dispatch it.
//  6. Drain in-flight dispatches before exit.
package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"runtime"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"

	"appevents/internal/config"
	"appevents/internal/consent"
	"appevents/internal/events"
	"appevents/internal/identity"
	"appevents/internal/sender"
	"appevents/internal/types"
)

// slogAdapter wraps *slog.Logger to implement the types.Logger interface.
// slog.Logger satisfies Info/Warn/Error directly, but its With returns
// *slog.Logger, so an adapter is necessary.
type slogAdapter struct {
	logger *slog.Logger
}

func (a *slogAdapter) Info(msg string, args ...any)  { a.logger.Info(msg, args...) }
func (a *slogAdapter) Warn(msg string, args ...any)  { a.logger.Warn(msg, args...) }
func (a *slogAdapter) Error(msg string, args ...any) { a.logger.Error(msg, args...) }
func (a *slogAdapter) With(args ...any) types.Logger {
	return &slogAdapter{logger: a.logger.With(args...)}
}

var _ types.Logger = (*slogAdapter)(nil)

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func main() {
	var (
		eventName = flag.String("event", "login", "event category: purchase|add_to_cart|remove_from_cart|screen_view|login|search|custom")
		name      = flag.String("name", "", "event name for -event=custom, screen name for screen_view, query for search")
		itemID    = flag.String("item", "", "content item id")
		quantity  = flag.Int("quantity", 1, "content item quantity")
		value     = flag.Float64("value", 0, "purchase value")
		currency  = flag.String("currency", "USD", "ISO 4217 currency code")
		track     = flag.String("tracking", "", "manual tracking override: true|false (empty leaves the platform decision)")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(cfg.LogLevel),
	}))
	typedLogger := &slogAdapter{logger: logger}

	// Shared consent override, consulted by every resolution.
	override := consent.NewOverride()
	switch *track {
	case "true":
		override.Set(true)
	case "false":
		override.Set(false)
	}

	// Platform bridge values arrive through the environment on this
	// server-side rendition; on-device builds would inject real IPC clients.
	platformClient := &identity.StaticPlatformClient{
		ID:         os.Getenv("EVENTS_ADVERTISING_ID"),
		Authorized: os.Getenv("EVENTS_TRACKING_AUTHORIZED") == "true",
	}

	var resolver identity.Resolver
	switch cfg.Platform {
	case "apple":
		resolver = identity.NewAppleResolver(platformClient, platformClient, override, typedLogger)
	default:
		resolver = identity.NewGoogleResolver(platformClient, override, typedLogger)
	}

	metrics := buildMetrics(cfg, typedLogger)

	osVersion := cfg.App.OSVersion
	if osVersion == "" {
		osVersion = runtime.GOOS
	}

	s, err := sender.New(sender.Config{
		AppID:       cfg.AppID,
		ClientToken: cfg.ClientToken,
		GraphURL:    cfg.GraphURL,
		HTTPClient:  &http.Client{Timeout: cfg.Timeout},
		Resolver:    resolver,
		Logger:      typedLogger,
		Metrics:     metrics,
		App: sender.AppInfo{
			Platform:    cfg.Platform,
			PackageName: cfg.App.PackageName,
			AppVersion:  cfg.App.AppVersion,
			BuildNumber: cfg.App.BuildNumber,
			OSVersion:   osVersion,
			Locale:      cfg.App.Locale,
			Timezone:    cfg.App.Timezone,
		},
	})
	if err != nil {
		logger.Error("failed to construct sender", "error", err)
		os.Exit(1)
	}
	sender.Bind(s)

	ev, err := buildEvent(*eventName, *name, *itemID, *quantity, *value, *currency)
	if err != nil {
		logger.Error("failed to build event", "error", err)
		os.Exit(1)
	}

	if err := sender.SendEvents(context.Background(), ev); err != nil {
		logger.Error("failed to dispatch event", "error", err)
		os.Exit(1)
	}

	logger.Info("event dispatched",
		"event_name", ev.Name,
		"event_id", ev.ID,
	)

	// Fire-and-forget sends are detached; drain before the process exits.
	s.Close()
}

// buildEvent maps the CLI flags onto a factory constructor.
func buildEvent(category, name, itemID string, quantity int, value float64, currency string) (types.Event, error) {
	items := []types.ContentItem{}
	if itemID != "" {
		items = append(items, types.ContentItem{ID: itemID, Quantity: quantity})
	}

	switch category {
	case "purchase":
		return events.NewPurchaseEvent(items, value, currency)
	case "add_to_cart":
		return events.NewAddToCartEvent(items)
	case "remove_from_cart":
		return events.NewRemoveFromCartEvent(items)
	case "screen_view":
		return events.NewScreenViewEvent(name)
	case "search":
		return events.NewSearchEvent(name)
	case "custom":
		opts := []events.Option{}
		if len(items) > 0 {
			opts = append(opts, events.WithItems(items))
		}
		if value != 0 {
			opts = append(opts, events.WithValueToSum(value), events.WithCurrency(currency))
		}
		return events.NewCustomEvent(name, opts...)
	default:
		return events.NewLoginEvent(), nil
	}
}

// buildMetrics returns the CloudWatch sink when enabled, otherwise the noop.
func buildMetrics(cfg *config.Config, logger types.Logger) sender.DeliveryMetrics {
	if !cfg.MetricsEnabled {
		return sender.NopMetrics{}
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background())
	if err != nil {
		logger.Warn("failed to load AWS config, delivery metrics disabled", "error", err.Error())
		return sender.NopMetrics{}
	}
	return sender.NewCloudWatchMetrics(cloudwatch.NewFromConfig(awsCfg), logger)
}
