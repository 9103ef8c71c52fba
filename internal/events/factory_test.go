package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"appevents/internal/types"
)

func fixedHooks(t *testing.T) time.Time {
	t.Helper()
	at := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	origNow, origID := timeNow, newID
	timeNow = func() time.Time { return at }
	newID = func() string { return "evt-fixed-id" }
	t.Cleanup(func() {
		timeNow, newID = origNow, origID
	})
	return at
}

func TestNewPurchaseEvent(t *testing.T) {
	at := fixedHooks(t)

	ev, err := NewPurchaseEvent([]types.ContentItem{{ID: "sku1", Quantity: 2}}, 49.98, "USD")
	require.NoError(t, err)

	assert.Equal(t, NamePurchase, ev.Name)
	assert.Equal(t, "evt-fixed-id", ev.ID)
	require.NotNil(t, ev.ValueToSum)
	assert.Equal(t, 49.98, *ev.ValueToSum)
	assert.Equal(t, "USD", ev.Currency)
	assert.Equal(t, ContentTypeProduct, ev.ContentType)
	require.Len(t, ev.Items, 1)
	assert.Equal(t, types.ContentItem{ID: "sku1", Quantity: 2}, ev.Items[0])
	assert.Equal(t, at, ev.LogTime)
}

func TestNewPurchaseEvent_Validation(t *testing.T) {
	items := []types.ContentItem{{ID: "sku1", Quantity: 1}}

	tests := []struct {
		name     string
		items    []types.ContentItem
		value    float64
		currency string
		wantCode types.ErrorCode
	}{
		{"negative value", items, -0.01, "USD", types.ErrCodeValidationNegativeValue},
		{"bad currency", items, 10, "DOLLARS", types.ErrCodeValidationInvalidCurrency},
		{"lowercase currency", items, 10, "usd", types.ErrCodeValidationInvalidCurrency},
		{"no items", nil, 10, "USD", types.ErrCodeValidationEmptyItems},
		{"empty item id", []types.ContentItem{{ID: "", Quantity: 1}}, 10, "USD", types.ErrCodeValidationInvalidItem},
		{"negative quantity", []types.ContentItem{{ID: "sku1", Quantity: -1}}, 10, "USD", types.ErrCodeValidationInvalidItem},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPurchaseEvent(tt.items, tt.value, tt.currency)
			require.Error(t, err)
			assert.True(t, types.HasCode(err, tt.wantCode), "got %v, want code %s", err, tt.wantCode)
			assert.True(t, types.IsValidation(err))
		})
	}
}

func TestNewPurchaseEvent_ZeroValueAllowed(t *testing.T) {
	ev, err := NewPurchaseEvent([]types.ContentItem{{ID: "freebie", Quantity: 1}}, 0, "EUR")
	require.NoError(t, err)
	require.NotNil(t, ev.ValueToSum)
	assert.Equal(t, 0.0, *ev.ValueToSum)
}

func TestCartEvents(t *testing.T) {
	items := []types.ContentItem{{ID: "sku1", Quantity: 3}, {ID: "sku2", Quantity: 0}}

	add, err := NewAddToCartEvent(items)
	require.NoError(t, err)
	assert.Equal(t, NameAddToCart, add.Name)
	assert.Equal(t, items, add.Items)

	remove, err := NewRemoveFromCartEvent(items)
	require.NoError(t, err)
	assert.Equal(t, NameRemoveFromCart, remove.Name)

	_, err = NewAddToCartEvent(nil)
	assert.True(t, types.HasCode(err, types.ErrCodeValidationEmptyItems))

	_, err = NewRemoveFromCartEvent([]types.ContentItem{})
	assert.True(t, types.HasCode(err, types.ErrCodeValidationEmptyItems))
}

func TestCartEvents_CopyItems(t *testing.T) {
	items := []types.ContentItem{{ID: "sku1", Quantity: 1}}
	ev, err := NewAddToCartEvent(items)
	require.NoError(t, err)

	items[0].Quantity = 99
	assert.Equal(t, 1, ev.Items[0].Quantity, "event must own a copy of the caller's slice")
}

func TestNewScreenViewEvent(t *testing.T) {
	ev, err := NewScreenViewEvent("checkout")
	require.NoError(t, err)
	assert.Equal(t, NameScreenView, ev.Name)
	assert.Equal(t, "checkout", ev.ContentType)

	for _, blank := range []string{"", "   ", "\t\n"} {
		_, err := NewScreenViewEvent(blank)
		assert.True(t, types.HasCode(err, types.ErrCodeValidationEmptyScreenName), "input %q", blank)
	}
}

func TestNewLoginEvent(t *testing.T) {
	ev := NewLoginEvent()
	assert.Equal(t, NameLogin, ev.Name)
	assert.NotEmpty(t, ev.ID)
	assert.False(t, ev.LogTime.IsZero())
}

func TestNewSearchEvent(t *testing.T) {
	ev, err := NewSearchEvent("hiking boots")
	require.NoError(t, err)
	assert.Equal(t, NameSearch, ev.Name)
	assert.Equal(t, "hiking boots", ev.ContentType)

	_, err = NewSearchEvent("")
	assert.True(t, types.HasCode(err, types.ErrCodeValidationEmptyQuery))
}

func TestNewCustomEvent(t *testing.T) {
	ev, err := NewCustomEvent("level_completed",
		WithContentType("level"),
		WithItems([]types.ContentItem{{ID: "level-7", Quantity: 1}}),
		WithValueToSum(2.5),
		WithCurrency("GBP"),
	)
	require.NoError(t, err)
	assert.Equal(t, "level_completed", ev.Name)
	assert.Equal(t, "level", ev.ContentType)
	require.NotNil(t, ev.ValueToSum)
	assert.Equal(t, 2.5, *ev.ValueToSum)
	assert.Equal(t, "GBP", ev.Currency)
}

func TestNewCustomEvent_NameRequired(t *testing.T) {
	_, err := NewCustomEvent("")
	assert.True(t, types.HasCode(err, types.ErrCodeValidationEmptyEventName))

	_, err = NewCustomEvent("  ")
	assert.True(t, types.HasCode(err, types.ErrCodeValidationEmptyEventName))
}

func TestNewCustomEvent_OptionalFieldsValidated(t *testing.T) {
	_, err := NewCustomEvent("ok", WithValueToSum(-1))
	assert.True(t, types.HasCode(err, types.ErrCodeValidationNegativeValue))

	_, err = NewCustomEvent("ok", WithCurrency("???"))
	assert.True(t, types.HasCode(err, types.ErrCodeValidationInvalidCurrency))

	_, err = NewCustomEvent("ok", WithItems([]types.ContentItem{{ID: "", Quantity: 1}}))
	assert.True(t, types.HasCode(err, types.ErrCodeValidationInvalidItem))

	// Optional fields absent: only the name is required.
	ev, err := NewCustomEvent("bare")
	require.NoError(t, err)
	assert.Nil(t, ev.ValueToSum)
	assert.Empty(t, ev.Items)
}

func TestEventIDsAreUnique(t *testing.T) {
	a := NewLoginEvent()
	b := NewLoginEvent()
	assert.NotEqual(t, a.ID, b.ID)
}
