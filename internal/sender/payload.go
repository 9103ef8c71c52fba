package sender

import (
	"encoding/json"
	"fmt"
	"net/url"

	"appevents/internal/types"
)

// eventRequestType is the fixed event field value the activities endpoint
// expects for custom app event batches.
const eventRequestType = "CUSTOM_APP_EVENTS"

// AppInfo describes the reporting application. The values feed the extinfo
// request field; on-device SDKs probe these at runtime, here they arrive
// through configuration.
type AppInfo struct {
	// Platform is "apple" or "google"; it selects the extinfo platform tag.
	Platform    string
	PackageName string
	AppVersion  string
	BuildNumber string
	OSVersion   string
	Locale      string
	Timezone    string
}

// platformTag maps the deployment platform to the tag the endpoint expects
// as the first extinfo element.
func (a AppInfo) platformTag() string {
	if a.Platform == "apple" {
		return "i2"
	}
	return "a2"
}

// customEvent is the wire shape of one event inside the custom_events array.
type customEvent struct {
	EventName   string   `json:"_eventName"`
	EventID     string   `json:"_eventID"`
	ValueToSum  *float64 `json:"_valueToSum,omitempty"`
	Currency    string   `json:"fb_currency,omitempty"`
	ContentType string   `json:"fb_content_type,omitempty"`
	Content     string   `json:"fb_content,omitempty"`
	LogTime     int64    `json:"_logTime"`
}

// encodeCustomEvents serializes the batch into the custom_events JSON array,
// preserving caller order.
func encodeCustomEvents(batch []types.Event) (string, error) {
	wire := make([]customEvent, 0, len(batch))
	for _, ev := range batch {
		ce := customEvent{
			EventName:   ev.Name,
			EventID:     ev.ID,
			ValueToSum:  ev.ValueToSum,
			Currency:    ev.Currency,
			ContentType: ev.ContentType,
			LogTime:     ev.LogTime.Unix(),
		}
		if len(ev.Items) > 0 {
			content, err := json.Marshal(ev.Items)
			if err != nil {
				return "", fmt.Errorf("marshal content items for %s: %w", ev.Name, err)
			}
			ce.Content = string(content)
		}
		wire = append(wire, ce)
	}

	encoded, err := json.Marshal(wire)
	if err != nil {
		return "", fmt.Errorf("marshal custom events: %w", err)
	}
	return string(encoded), nil
}

// encodeExtinfo serializes the application metadata array.
func encodeExtinfo(app AppInfo) (string, error) {
	fields := []string{
		app.platformTag(),
		app.PackageName,
		app.BuildNumber,
		app.AppVersion,
		app.OSVersion,
		app.Locale,
		app.Timezone,
	}
	encoded, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("marshal extinfo: %w", err)
	}
	return string(encoded), nil
}

// buildForm assembles the complete request body for one batch.
//
// advertiser_id is set only when the resolved identity carries one; the
// tracking-disabled invariant upstream guarantees the field can never leak
// an identifier without consent.
func buildForm(appID string, clientToken types.SecretString, app AppInfo, identity types.AdvertiserIdentity, batch []types.Event) (url.Values, error) {
	customEvents, err := encodeCustomEvents(batch)
	if err != nil {
		return nil, err
	}
	extinfo, err := encodeExtinfo(app)
	if err != nil {
		return nil, err
	}

	form := url.Values{}
	form.Set("event", eventRequestType)
	form.Set("access_token", fmt.Sprintf("%s|%s", appID, clientToken.Unmask()))
	form.Set("advertiser_tracking_enabled", boolFlag(identity.TrackingEnabled))
	form.Set("application_tracking_enabled", "1")
	if identity.ID != "" {
		form.Set("advertiser_id", identity.ID)
	}
	form.Set("extinfo", extinfo)
	form.Set("custom_events", customEvents)
	return form, nil
}

func boolFlag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
