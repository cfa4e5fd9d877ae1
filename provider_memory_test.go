package authkit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMemoryProviderSignUpAndSignIn tests the password round trip.
func TestMemoryProviderSignUpAndSignIn(t *testing.T) {
	ctx := context.Background()
	provider := NewMemoryProvider()

	subject, err := provider.SignUp(ctx, Credentials{Email: "Ana@Example.com", Password: "secret"})
	require.NoError(t, err)
	require.NotEmpty(t, subject)

	// Email matching is case-insensitive.
	session, err := provider.SignInWithPassword(ctx, Credentials{Email: "ana@example.com", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, subject, session.Subject)
	assert.NotEmpty(t, session.Token)

	current, err := provider.CurrentSession(ctx)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, session.Token, current.Token)
}

// TestMemoryProviderRejections tests credential and duplicate rejections.
func TestMemoryProviderRejections(t *testing.T) {
	ctx := context.Background()
	provider := NewMemoryProvider()

	_, err := provider.SignUp(ctx, Credentials{Email: "ana@example.com", Password: "secret"})
	require.NoError(t, err)

	_, err = provider.SignUp(ctx, Credentials{Email: "ana@example.com", Password: "other"})
	assert.True(t, IsProviderRejected(err), "duplicate account must be rejected")

	_, err = provider.SignUp(ctx, Credentials{Email: "", Password: "x"})
	assert.True(t, IsProviderRejected(err))

	_, err = provider.SignInWithPassword(ctx, Credentials{Email: "ana@example.com", Password: "wrong"})
	assert.True(t, IsProviderRejected(err))

	_, err = provider.SignInWithPassword(ctx, Credentials{Email: "ghost@example.com", Password: "secret"})
	assert.True(t, IsProviderRejected(err))
}

// TestMemoryProviderSessionEvents tests the change stream.
func TestMemoryProviderSessionEvents(t *testing.T) {
	ctx := context.Background()
	provider := NewMemoryProvider()

	_, err := provider.SignUp(ctx, Credentials{Email: "ana@example.com", Password: "secret"})
	require.NoError(t, err)

	var events []SessionEvent
	unsubscribe := provider.OnSessionChange(func(ev SessionEvent) {
		events = append(events, ev)
	})

	_, err = provider.SignInWithPassword(ctx, Credentials{Email: "ana@example.com", Password: "secret"})
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.NotNil(t, events[0].Session)

	require.NoError(t, provider.SignOut(ctx))
	require.Len(t, events, 2)
	assert.Nil(t, events[1].Session)

	// After unsubscribe no further events are delivered.
	unsubscribe()
	_, err = provider.SignInWithPassword(ctx, Credentials{Email: "ana@example.com", Password: "secret"})
	require.NoError(t, err)
	assert.Len(t, events, 2)
}

// TestMemoryProviderSignOutWithoutSession tests sign-out on a dead session.
func TestMemoryProviderSignOutWithoutSession(t *testing.T) {
	provider := NewMemoryProvider()
	err := provider.SignOut(context.Background())
	assert.True(t, IsProviderRejected(err))
}

// TestMemoryProviderSessionExpiry tests that an expired session is absent at
// cold start.
func TestMemoryProviderSessionExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	clock := &now

	provider := NewMemoryProvider(
		WithSessionTTL(time.Hour),
		withClock(func() time.Time { return *clock }),
	)

	_, err := provider.SignUp(ctx, Credentials{Email: "ana@example.com", Password: "secret"})
	require.NoError(t, err)
	_, err = provider.SignInWithPassword(ctx, Credentials{Email: "ana@example.com", Password: "secret"})
	require.NoError(t, err)

	current, err := provider.CurrentSession(ctx)
	require.NoError(t, err)
	require.NotNil(t, current)

	// Advance past the TTL: the session no longer survives.
	later := now.Add(2 * time.Hour)
	clock = &later

	current, err = provider.CurrentSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, current)
}

// TestMemoryProviderRemoveIdentity tests sign-up compensation support.
func TestMemoryProviderRemoveIdentity(t *testing.T) {
	ctx := context.Background()
	provider := NewMemoryProvider()

	subject, err := provider.SignUp(ctx, Credentials{Email: "ana@example.com", Password: "secret"})
	require.NoError(t, err)

	require.NoError(t, provider.RemoveIdentity(ctx, subject))

	// The account is gone: signing in fails, the email is free again.
	_, err = provider.SignInWithPassword(ctx, Credentials{Email: "ana@example.com", Password: "secret"})
	assert.True(t, IsProviderRejected(err))
	_, err = provider.SignUp(ctx, Credentials{Email: "ana@example.com", Password: "secret"})
	assert.NoError(t, err)

	err = provider.RemoveIdentity(ctx, "unknown-subject")
	assert.True(t, IsProviderRejected(err))
}
