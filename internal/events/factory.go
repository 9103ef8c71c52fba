// Package events provides constructors for the fixed set of semantic event
// categories understood by the collection endpoint. Callers never assemble
// Event values by hand: each constructor encapsulates the category-to-field
// mapping and validates its inputs, so a successfully constructed Event is
// always well-formed.
package events

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"appevents/internal/types"
)

// Standard event names from the provider's mobile SDK.
const (
	NamePurchase       = "fb_mobile_purchase"
	NameAddToCart      = "fb_mobile_add_to_cart"
	NameRemoveFromCart = "fb_mobile_remove_from_cart"
	NameScreenView     = "fb_mobile_content_view"
	NameLogin          = "fb_mobile_login"
	NameSearch         = "fb_mobile_search"
)

// ContentTypeProduct is the content type attached to commerce events.
const ContentTypeProduct = "product"

var validate = validator.New()

// Hooks for deterministic tests.
var (
	timeNow = func() time.Time { return time.Now().UTC() }
	newID   = uuid.NewString
)

// NewPurchaseEvent builds a completed-purchase event. It fails with a
// validation error if totalValue is negative, currency is not a valid
// ISO 4217 code, or items is empty.
func NewPurchaseEvent(items []types.ContentItem, totalValue float64, currency string) (types.Event, error) {
	if err := validateItems(items, true); err != nil {
		return types.Event{}, err
	}
	if totalValue < 0 {
		return types.Event{}, types.NewAppError(types.ErrCodeValidationNegativeValue,
			fmt.Sprintf("purchase value must be non-negative, got %v", totalValue), nil)
	}
	if err := validateCurrency(currency); err != nil {
		return types.Event{}, err
	}

	ev := newEvent(NamePurchase)
	ev.Items = copyItems(items)
	ev.ContentType = ContentTypeProduct
	ev.ValueToSum = &totalValue
	ev.Currency = currency
	return ev, nil
}

// NewAddToCartEvent builds a cart-addition event. Items must be non-empty.
func NewAddToCartEvent(items []types.ContentItem) (types.Event, error) {
	return newCartEvent(NameAddToCart, items)
}

// NewRemoveFromCartEvent builds a cart-removal event. Items must be non-empty.
func NewRemoveFromCartEvent(items []types.ContentItem) (types.Event, error) {
	return newCartEvent(NameRemoveFromCart, items)
}

// NewScreenViewEvent builds a screen-view event for the named screen.
func NewScreenViewEvent(screenName string) (types.Event, error) {
	if strings.TrimSpace(screenName) == "" {
		return types.Event{}, types.NewAppError(types.ErrCodeValidationEmptyScreenName,
			"screen name must not be blank", nil)
	}
	ev := newEvent(NameScreenView)
	ev.ContentType = screenName
	return ev, nil
}

// NewLoginEvent builds a login event. It has no required fields beyond the
// fixed event name, so it cannot fail.
func NewLoginEvent() types.Event {
	return newEvent(NameLogin)
}

// NewSearchEvent builds a search event for the given query string.
func NewSearchEvent(query string) (types.Event, error) {
	if query == "" {
		return types.Event{}, types.NewAppError(types.ErrCodeValidationEmptyQuery,
			"search query must not be empty", nil)
	}
	ev := newEvent(NameSearch)
	ev.ContentType = query
	return ev, nil
}

// Option configures the optional fields of a custom event.
type Option func(*types.Event)

// WithContentType sets the content type of a custom event.
func WithContentType(contentType string) Option {
	return func(ev *types.Event) { ev.ContentType = contentType }
}

// WithItems attaches content line items to a custom event.
func WithItems(items []types.ContentItem) Option {
	return func(ev *types.Event) { ev.Items = copyItems(items) }
}

// WithValueToSum sets the accumulating monetary value of a custom event.
func WithValueToSum(value float64) Option {
	return func(ev *types.Event) { ev.ValueToSum = &value }
}

// WithCurrency sets the ISO 4217 currency code of a custom event.
func WithCurrency(currency string) Option {
	return func(ev *types.Event) { ev.Currency = currency }
}

// NewCustomEvent builds an event with a caller-chosen name. The name is
// required; every optional field supplied through opts is validated
// independently (non-negative value, valid currency code, well-formed items).
func NewCustomEvent(name string, opts ...Option) (types.Event, error) {
	if strings.TrimSpace(name) == "" {
		return types.Event{}, types.NewAppError(types.ErrCodeValidationEmptyEventName,
			"event name must not be empty", nil)
	}

	ev := newEvent(name)
	for _, opt := range opts {
		opt(&ev)
	}

	if len(ev.Items) > 0 {
		if err := validateItems(ev.Items, false); err != nil {
			return types.Event{}, err
		}
	}
	if ev.ValueToSum != nil && *ev.ValueToSum < 0 {
		return types.Event{}, types.NewAppError(types.ErrCodeValidationNegativeValue,
			fmt.Sprintf("value to sum must be non-negative, got %v", *ev.ValueToSum), nil)
	}
	if ev.Currency != "" {
		if err := validateCurrency(ev.Currency); err != nil {
			return types.Event{}, err
		}
	}

	return ev, nil
}

func newEvent(name string) types.Event {
	return types.Event{
		Name:    name,
		ID:      newID(),
		LogTime: timeNow(),
	}
}

func newCartEvent(name string, items []types.ContentItem) (types.Event, error) {
	if err := validateItems(items, true); err != nil {
		return types.Event{}, err
	}
	ev := newEvent(name)
	ev.Items = copyItems(items)
	ev.ContentType = ContentTypeProduct
	return ev, nil
}

// validateItems checks item well-formedness. When required is true, an empty
// list is itself a validation failure.
func validateItems(items []types.ContentItem, required bool) error {
	if len(items) == 0 {
		if required {
			return types.NewAppError(types.ErrCodeValidationEmptyItems,
				"at least one content item is required", nil)
		}
		return nil
	}
	for i, item := range items {
		if item.ID == "" {
			return types.NewAppErrorWithDetails(types.ErrCodeValidationInvalidItem,
				"content item id must not be empty", nil,
				map[string]any{"index": i})
		}
		if item.Quantity < 0 {
			return types.NewAppErrorWithDetails(types.ErrCodeValidationInvalidItem,
				fmt.Sprintf("content item quantity must be non-negative, got %d", item.Quantity), nil,
				map[string]any{"index": i, "id": item.ID})
		}
	}
	return nil
}

func validateCurrency(currency string) error {
	if err := validate.Var(currency, "iso4217"); err != nil {
		return types.NewAppError(types.ErrCodeValidationInvalidCurrency,
			fmt.Sprintf("currency %q is not a valid ISO 4217 code", currency), err)
	}
	return nil
}

func copyItems(items []types.ContentItem) []types.ContentItem {
	if len(items) == 0 {
		return nil
	}
	out := make([]types.ContentItem, len(items))
	copy(out, items)
	return out
}
