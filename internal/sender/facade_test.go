package sender

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"appevents/internal/identity"
	"appevents/internal/types"
)

func TestFacade_NotInitialized(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	_, err := Default()
	assert.True(t, types.HasCode(err, types.ErrCodeSenderNotInitialized))

	err = SendEvents(context.Background(), testEvent("fb_mobile_login", "evt-1"))
	require.Error(t, err)
	assert.True(t, types.HasCode(err, types.ErrCodeSenderNotInitialized),
		"the facade must fail loudly instead of silently dropping events")
}

func TestFacade_BindLastWins(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	first, err := New(Config{AppID: "111111", ClientToken: types.SecretString("tok")})
	require.NoError(t, err)
	second, err := New(Config{AppID: "222222", ClientToken: types.SecretString("tok")})
	require.NoError(t, err)

	Bind(first)
	Bind(second)

	bound, err := Default()
	require.NoError(t, err)
	assert.Same(t, second, bound, "re-binding replaces the earlier instance")
}

func TestFacade_ForwardsToBoundSender(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	handler := &capturingHandler{}
	server := httptest.NewServer(handler)
	defer server.Close()

	s := newTestSender(t, server, identity.Disabled{})
	Bind(s)

	require.NoError(t, SendEvents(context.Background(), testEvent("fb_mobile_login", "evt-1")))
	s.Close()

	assert.Len(t, handler.requests(), 1)
}
