package sessionstore

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"github.com/recipebox-dev/recipebox/internal/cli/userconfig"
	"github.com/recipebox-dev/recipebox/internal/session"
)

func testState() session.State {
	return session.State{Token: "tok-1", Name: "Ada", Email: "ada@example.com", UserID: 7}
}

// exerciseStorage runs the lifecycle every backend must support
func exerciseStorage(t *testing.T, storage session.Storage) {
	t.Helper()
	ctx := context.Background()

	got, err := storage.GetUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, session.LoggedOut(), got, "empty storage reads as logged out")

	require.NoError(t, storage.SaveUser(ctx, testState()))
	got, err = storage.GetUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, testState(), got)

	assert.ErrorIs(t, storage.SaveUser(ctx, session.State{Token: "partial"}), session.ErrInvalidState)

	require.NoError(t, storage.ClearUser(ctx))
	got, err = storage.GetUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, session.LoggedOut(), got)

	// clearing twice is fine
	require.NoError(t, storage.ClearUser(ctx))
}

func TestFileStorage(t *testing.T) {
	dir := t.TempDir()
	storage := NewFileStorage(dir, zerolog.Nop())
	exerciseStorage(t, storage)

	require.NoError(t, storage.SaveUser(context.Background(), testState()))
	info, err := os.Stat(filepath.Join(dir, "session.json"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestFileStorage_UnreadableRecordIsLoggedOut(t *testing.T) {
	records := map[string]string{
		"partial": `{"token":"abc","name":null,"email":null,"userId":null}`,
		"garbage": `{not json`,
	}

	for name, record := range records {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, "session.json")
			require.NoError(t, os.WriteFile(path, []byte(record), 0600))

			var logs bytes.Buffer
			storage := NewFileStorage(dir, zerolog.New(&logs))

			got, err := storage.GetUser(context.Background())
			require.NoError(t, err)
			assert.Equal(t, session.LoggedOut(), got)
			assert.Contains(t, logs.String(), "Ignoring unreadable session record")

			require.NoError(t, storage.ClearUser(context.Background()))
			_, err = os.Stat(path)
			assert.True(t, os.IsNotExist(err))
		})
	}
}

func TestKeyringStorage(t *testing.T) {
	keyring.MockInit()
	exerciseStorage(t, NewKeyringStorage("http://localhost:8080", zerolog.Nop()))
}

func TestKeyringStorage_PerServer(t *testing.T) {
	keyring.MockInit()
	ctx := context.Background()

	a := NewKeyringStorage("https://a.example.com", zerolog.Nop())
	b := NewKeyringStorage("https://b.example.com", zerolog.Nop())
	require.NoError(t, a.SaveUser(ctx, testState()))

	got, err := b.GetUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, session.LoggedOut(), got)
}

func TestRedisStorage(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	storage := NewRedisStorage(client, "http://localhost:8080", time.Hour, zerolog.Nop())
	exerciseStorage(t, storage)

	require.NoError(t, storage.SaveUser(context.Background(), testState()))
	assert.Equal(t, time.Hour, mr.TTL("recipebox:session:http://localhost:8080"))

	mr.FastForward(2 * time.Hour)
	got, err := storage.GetUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, session.LoggedOut(), got, "expired sessions read as logged out")
}

func TestKeyringStorage_UnreadableRecordIsLoggedOut(t *testing.T) {
	keyring.MockInit()
	require.NoError(t, keyring.Set(keyringService, "session-http://localhost:8080", `{"token":"abc"}`))

	got, err := NewKeyringStorage("http://localhost:8080", zerolog.Nop()).GetUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, session.LoggedOut(), got)
}

func TestRedisStorage_ExpiresWithToken(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(90 * time.Minute)),
	}).SignedString([]byte("server-side-secret"))
	require.NoError(t, err)

	state := testState()
	state.Token = token

	storage := NewRedisStorage(client, "http://localhost:8080", DefaultRedisTTL, zerolog.Nop())
	require.NoError(t, storage.SaveUser(context.Background(), state))

	ttl := mr.TTL("recipebox:session:http://localhost:8080")
	assert.InDelta(t, (90 * time.Minute).Seconds(), ttl.Seconds(), 5)

	require.NoError(t, mr.Set("recipebox:session:http://localhost:8080", `{"token":"abc"}`))
	got, err := storage.GetUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, session.LoggedOut(), got, "corrupt records read as logged out")
}

func TestMemoryStorage(t *testing.T) {
	exerciseStorage(t, NewMemoryStorage())
}

func TestOpen(t *testing.T) {
	t.Setenv("RECIPEBOX_CONFIG_DIR", t.TempDir())

	storage, closeFn, err := Open(&userconfig.UserConfig{SessionBackend: userconfig.BackendFile}, zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &FileStorage{}, storage)
	require.NoError(t, closeFn())

	storage, _, err = Open(&userconfig.UserConfig{SessionBackend: userconfig.BackendMemory}, zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &MemoryStorage{}, storage)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	storage, closeFn, err = Open(&userconfig.UserConfig{
		ServerURL:      "http://localhost:8080",
		SessionBackend: userconfig.BackendRedis,
		RedisAddress:   mr.Addr(),
	}, zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &RedisStorage{}, storage)
	require.NoError(t, closeFn())

	_, _, err = Open(&userconfig.UserConfig{SessionBackend: "floppy"}, zerolog.Nop())
	require.Error(t, err)
}
