package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/campuskit/auth-service/internal/application/auth"
)

func TestLogout(t *testing.T) {
	f := newFixture(t, auth.Config{})
	f.seedUser(t, 1, "wendy@example.com")
	ctx := context.Background()

	res, err := f.svc.Login(ctx, auth.LoginInput{Email: "wendy@example.com", Password: testPassword})
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(ctx, res.Tokens.AccessToken))
	require.Equal(t, 0, f.sessions.ActiveCountForUser(1))

	_, err = f.svc.Authenticate(ctx, res.Tokens.AccessToken)
	require.Error(t, err, "tokens must be unusable after logout")

	// Idempotent: repeating or passing garbage still succeeds.
	require.NoError(t, f.svc.Logout(ctx, res.Tokens.AccessToken))
	require.NoError(t, f.svc.Logout(ctx, "unknown-token"))
	require.NoError(t, f.svc.Logout(ctx, ""))
}
