package sender

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"appevents/internal/types"
)

func testAppInfo() AppInfo {
	return AppInfo{
		Platform:    "google",
		PackageName: "com.example.shop",
		AppVersion:  "2.4.1",
		BuildNumber: "241",
		OSVersion:   "14",
		Locale:      "en_US",
		Timezone:    "UTC",
	}
}

func testEvent(name, id string) types.Event {
	return types.Event{
		Name:    name,
		ID:      id,
		LogTime: time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC),
	}
}

func TestBuildForm_Fields(t *testing.T) {
	value := 49.98
	ev := testEvent("fb_mobile_purchase", "evt-1")
	ev.ValueToSum = &value
	ev.Currency = "USD"
	ev.ContentType = "product"
	ev.Items = []types.ContentItem{{ID: "sku1", Quantity: 2}}

	identity := types.AdvertiserIdentity{ID: "38400000-8cf0-11bd-b23e-10b96e40000d", TrackingEnabled: true}

	form, err := buildForm("123456", types.SecretString("tok"), testAppInfo(), identity, []types.Event{ev})
	require.NoError(t, err)

	assert.Equal(t, "CUSTOM_APP_EVENTS", form.Get("event"))
	assert.Equal(t, "123456|tok", form.Get("access_token"))
	assert.Equal(t, "1", form.Get("advertiser_tracking_enabled"))
	assert.Equal(t, "1", form.Get("application_tracking_enabled"))
	assert.Equal(t, identity.ID, form.Get("advertiser_id"))

	var extinfo []string
	require.NoError(t, json.Unmarshal([]byte(form.Get("extinfo")), &extinfo))
	assert.Equal(t, "a2", extinfo[0], "platform tag leads the extinfo array")
	assert.Contains(t, extinfo, "com.example.shop")

	var batch []map[string]any
	require.NoError(t, json.Unmarshal([]byte(form.Get("custom_events")), &batch))
	require.Len(t, batch, 1)
	assert.Equal(t, "fb_mobile_purchase", batch[0]["_eventName"])
	assert.Equal(t, "evt-1", batch[0]["_eventID"])
	assert.Equal(t, 49.98, batch[0]["_valueToSum"])
	assert.Equal(t, "USD", batch[0]["fb_currency"])
	assert.Equal(t, "product", batch[0]["fb_content_type"])
	assert.JSONEq(t, `[{"id":"sku1","quantity":2}]`, batch[0]["fb_content"].(string))
	assert.Equal(t, float64(ev.LogTime.Unix()), batch[0]["_logTime"])
}

func TestBuildForm_TrackingDisabledOmitsAdvertiserID(t *testing.T) {
	form, err := buildForm("123456", types.SecretString("tok"), testAppInfo(),
		types.DisabledIdentity(), []types.Event{testEvent("fb_mobile_login", "evt-1")})
	require.NoError(t, err)

	assert.Equal(t, "0", form.Get("advertiser_tracking_enabled"))
	_, present := form["advertiser_id"]
	assert.False(t, present, "advertiser_id must be omitted, not sent empty")
}

func TestBuildForm_EnabledWithoutIdentifier(t *testing.T) {
	// Tracking enabled but the platform returned the placeholder: the flag
	// stays 1 while the identifier is omitted.
	form, err := buildForm("123456", types.SecretString("tok"), testAppInfo(),
		types.AdvertiserIdentity{TrackingEnabled: true}, []types.Event{testEvent("fb_mobile_login", "evt-1")})
	require.NoError(t, err)

	assert.Equal(t, "1", form.Get("advertiser_tracking_enabled"))
	_, present := form["advertiser_id"]
	assert.False(t, present)
}

func TestEncodeCustomEvents_PreservesOrder(t *testing.T) {
	batch := []types.Event{
		testEvent("first", "a"),
		testEvent("second", "b"),
		testEvent("third", "c"),
	}

	encoded, err := encodeCustomEvents(batch)
	require.NoError(t, err)

	var wire []map[string]any
	require.NoError(t, json.Unmarshal([]byte(encoded), &wire))
	require.Len(t, wire, 3)
	assert.Equal(t, "first", wire[0]["_eventName"])
	assert.Equal(t, "second", wire[1]["_eventName"])
	assert.Equal(t, "third", wire[2]["_eventName"])
}

func TestEncodeCustomEvents_OmitsAbsentOptionals(t *testing.T) {
	encoded, err := encodeCustomEvents([]types.Event{testEvent("fb_mobile_login", "evt-1")})
	require.NoError(t, err)

	var wire []map[string]any
	require.NoError(t, json.Unmarshal([]byte(encoded), &wire))
	require.Len(t, wire, 1)
	assert.NotContains(t, wire[0], "_valueToSum")
	assert.NotContains(t, wire[0], "fb_currency")
	assert.NotContains(t, wire[0], "fb_content_type")
	assert.NotContains(t, wire[0], "fb_content")
}

func TestAppInfo_PlatformTag(t *testing.T) {
	assert.Equal(t, "i2", AppInfo{Platform: "apple"}.platformTag())
	assert.Equal(t, "a2", AppInfo{Platform: "google"}.platformTag())
	assert.Equal(t, "a2", AppInfo{}.platformTag())
}
