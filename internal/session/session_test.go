// ABOUTME: Tests for session providers and ID token parsing
// ABOUTME: Covers watch notification delivery and claim extraction

package session

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticProvider_Current(t *testing.T) {
	p := NewStaticProvider(&User{ID: "user-1", Email: "u@example.com"})

	user, ok := p.Current()
	require.True(t, ok)
	assert.Equal(t, "user-1", user.ID)
	assert.Equal(t, "u@example.com", user.Email)
}

func TestStaticProvider_SignedOut(t *testing.T) {
	p := NewStaticProvider(nil)

	_, ok := p.Current()
	assert.False(t, ok)
}

func TestStaticProvider_WatchDeliversCurrentIdentity(t *testing.T) {
	p := NewStaticProvider(&User{ID: "user-1"})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := p.Watch(ctx)
	select {
	case u := <-ch:
		require.NotNil(t, u)
		assert.Equal(t, "user-1", u.ID)
	case <-time.After(time.Second):
		t.Fatal("no initial identity delivered")
	}
}

func TestStaticProvider_EmitNotifiesWatchers(t *testing.T) {
	p := NewStaticProvider(nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := p.Watch(ctx)

	p.Emit(&User{ID: "user-2"})
	select {
	case u := <-ch:
		require.NotNil(t, u)
		assert.Equal(t, "user-2", u.ID)
	case <-time.After(time.Second):
		t.Fatal("sign-in not delivered")
	}

	p.Emit(nil)
	select {
	case u := <-ch:
		assert.Nil(t, u)
	case <-time.After(time.Second):
		t.Fatal("sign-out not delivered")
	}

	_, ok := p.Current()
	assert.False(t, ok)
}

func TestStaticProvider_WatchClosesOnCancel(t *testing.T) {
	p := NewStaticProvider(nil)

	ctx, cancel := context.WithCancel(context.Background())
	ch := p.Watch(ctx)
	cancel()

	select {
	case _, open := <-ch:
		assert.False(t, open, "channel should be closed after cancel")
	case <-time.After(time.Second):
		t.Fatal("channel not closed after cancel")
	}
}

func TestFromIDToken(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   "uid-123",
		"email": "driver@example.com",
	})
	signed, err := token.SignedString([]byte("irrelevant-secret"))
	require.NoError(t, err)

	user, err := FromIDToken(signed)
	require.NoError(t, err)
	assert.Equal(t, "uid-123", user.ID)
	assert.Equal(t, "driver@example.com", user.Email)
}

func TestFromIDToken_MissingSubject(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"email": "driver@example.com",
	})
	signed, err := token.SignedString([]byte("irrelevant-secret"))
	require.NoError(t, err)

	_, err = FromIDToken(signed)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingClaim)
}

func TestFromIDToken_Garbage(t *testing.T) {
	_, err := FromIDToken("not-a-token")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
