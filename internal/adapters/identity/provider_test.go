package identity

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vncsmyrnk/salesvote/internal/adapters/repository/memory"
	"github.com/vncsmyrnk/salesvote/internal/core/domain"
	"github.com/vncsmyrnk/salesvote/internal/core/services"
)

func newTestProvider(t *testing.T, auth *services.AuthService) (*Provider, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "salesvote", "session")
	return NewProvider(auth, path, nil), path
}

func newTestAuth() *services.AuthService {
	return services.NewAuthService(memory.NewStore(), nil, "test-secret", "", nil)
}

func TestProvider_SignUpPersistsSession(t *testing.T) {
	auth := newTestAuth()
	provider, path := newTestProvider(t, auth)

	identity, err := provider.SignUp(context.Background(), "alice@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, identity, provider.Current())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	restored := NewProvider(auth, path, nil)
	assert.Equal(t, identity, restored.Current())
}

func TestProvider_SignInAndOut(t *testing.T) {
	auth := newTestAuth()
	provider, path := newTestProvider(t, auth)
	ctx := context.Background()

	_, err := provider.SignUp(ctx, "alice@example.com", "secret1")
	require.NoError(t, err)
	require.NoError(t, provider.SignOut(ctx))
	assert.Nil(t, provider.Current())
	assert.NoFileExists(t, path)

	_, err = provider.SignIn(ctx, "alice@example.com", "wrong-pass")
	assert.ErrorIs(t, err, domain.ErrAuth)
	assert.Nil(t, provider.Current())

	identity, err := provider.SignIn(ctx, "alice@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", identity.Email)

	require.NoError(t, provider.SignOut(ctx), "signing out twice is fine")
	require.NoError(t, provider.SignOut(ctx))
}

func TestProvider_Subscribe(t *testing.T) {
	provider, _ := newTestProvider(t, newTestAuth())
	ctx := context.Background()

	var seen []*domain.Identity
	unsubscribe := provider.Subscribe(func(identity *domain.Identity) {
		seen = append(seen, identity)
	})

	require.Len(t, seen, 1, "current identity is pushed on subscribe")
	assert.Nil(t, seen[0])

	identity, err := provider.SignUp(ctx, "alice@example.com", "secret1")
	require.NoError(t, err)
	require.NoError(t, provider.SignOut(ctx))

	require.Len(t, seen, 3)
	assert.Equal(t, identity, seen[1])
	assert.Nil(t, seen[2])

	unsubscribe()
	_, err = provider.SignIn(ctx, "alice@example.com", "secret1")
	require.NoError(t, err)
	assert.Len(t, seen, 3)
}

func TestProvider_RejectsStaleSession(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session")
	require.NoError(t, os.WriteFile(path, []byte("not-a-token\n"), 0o600))

	provider := NewProvider(newTestAuth(), path, nil)
	assert.Nil(t, provider.Current())
}

func TestProvider_WithoutSessionFile(t *testing.T) {
	provider := NewProvider(newTestAuth(), "", nil)

	identity, err := provider.SignUp(context.Background(), "alice@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, identity, provider.Current())
	require.NoError(t, provider.SignOut(context.Background()))
}
