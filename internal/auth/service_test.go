package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kurama07a/buyer-lead-app/internal/auth"
	"github.com/Kurama07a/buyer-lead-app/internal/core"
	"github.com/Kurama07a/buyer-lead-app/internal/memstore"
)

func newService(t *testing.T, withRedis bool) *auth.Service {
	t.Helper()
	var revoker auth.Revoker
	if withRedis {
		mr := miniredis.RunT(t)
		rdb, err := auth.NewRedisClient(context.Background(), "redis://"+mr.Addr())
		require.NoError(t, err)
		t.Cleanup(func() { rdb.Close() })
		revoker = auth.NewTokenBlacklist(rdb)
	}
	return auth.NewService(memstore.New(), auth.NewTokenManager("secret", time.Hour), revoker, 4)
}

func TestRegisterValidation(t *testing.T) {
	svc := newService(t, false)
	ctx := context.Background()

	_, err := svc.Register(ctx, auth.RegisterInput{Email: "", Password: "secret1"})
	assert.ErrorIs(t, err, auth.ErrMissingCredentials)

	_, err = svc.Register(ctx, auth.RegisterInput{Email: "a@example.com", Password: "12345"})
	assert.ErrorIs(t, err, auth.ErrWeakPassword)

	sess, err := svc.Register(ctx, auth.RegisterInput{Email: " A@Example.com ", Password: "123456", Name: "Ann"})
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", sess.User.Email)
	assert.Equal(t, core.RoleUser, sess.User.Role)
	assert.NotEmpty(t, sess.Token)

	_, err = svc.Register(ctx, auth.RegisterInput{Email: "a@example.com", Password: "123456"})
	assert.ErrorIs(t, err, auth.ErrEmailTaken)
	assert.Equal(t, 409, core.MapError(err).Status)
}

func TestLoginAndAuthenticate(t *testing.T) {
	svc := newService(t, false)
	ctx := context.Background()

	reg, err := svc.Register(ctx, auth.RegisterInput{Email: "b@example.com", Password: "password"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, "b@example.com", "wrong")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	_, err = svc.Login(ctx, "nobody@example.com", "password")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	sess, err := svc.Login(ctx, "B@example.com", "password")
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, sess.User.ID)

	id, err := svc.Authenticate(ctx, sess.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.User, id)

	_, err = svc.Authenticate(ctx, "garbage")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestLogoutRevokesToken(t *testing.T) {
	svc := newService(t, true)
	ctx := context.Background()

	sess, err := svc.Register(ctx, auth.RegisterInput{Email: "c@example.com", Password: "password"})
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, sess.Token)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, sess.Token))
	_, err = svc.Authenticate(ctx, sess.Token)
	assert.ErrorIs(t, err, auth.ErrTokenRevoked)

	assert.NoError(t, svc.Logout(ctx, "not-a-token"))
}

func TestEnsureUserIsIdempotent(t *testing.T) {
	svc := newService(t, false)
	ctx := context.Background()

	first, err := svc.EnsureUser(ctx, "admin@example.com", "adminpass", "Admin", core.RoleAdmin)
	require.NoError(t, err)
	assert.True(t, first.IsAdmin())

	second, err := svc.EnsureUser(ctx, "admin@example.com", "other", "Other", core.RoleUser)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
