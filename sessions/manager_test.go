package sessions_test

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	apperrors "github.com/jrsteele09/go-hospital-client/internal/errors"
	"github.com/jrsteele09/go-hospital-client/sessions"
	"github.com/jrsteele09/go-hospital-client/sessions/repofake"
	"github.com/jrsteele09/go-hospital-client/users"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

var testUser = users.User{ID: 7, Email: "ana@example.com", FullName: "Ana Silva", Role: users.RolePatient}

// fakeClock is a settable time source shared with the watcher goroutine.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// reasons records logout notifications.
type reasons struct {
	mu   sync.Mutex
	seen []sessions.LogoutReason
}

func (r *reasons) add(reason sessions.LogoutReason) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, reason)
}

func (r *reasons) list() []sessions.LogoutReason {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]sessions.LogoutReason{}, r.seen...)
}

type testFixture struct {
	repo    *repofake.FakeSessionRepo
	clock   *fakeClock
	base    time.Time
	manager *sessions.Manager
	reasons *reasons
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()
	f := &testFixture{
		repo:    repofake.NewFakeSessionRepo(),
		base:    time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
		reasons: &reasons{},
	}
	f.clock = &fakeClock{now: f.base}
	f.manager = f.newManager()
	t.Cleanup(f.manager.Close)
	return f
}

func (f *testFixture) newManager() *sessions.Manager {
	m := sessions.NewManager(f.repo,
		sessions.WithCheckInterval(5*time.Millisecond),
		sessions.WithClock(f.clock.Now),
		sessions.WithLogger(zerolog.Nop()),
	)
	m.OnLogout(f.reasons.add)
	return m
}

func sign(t *testing.T, userID int64, exp time.Time) string {
	t.Helper()
	s, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, jwtlib.MapClaims{
		"token_type": "access",
		"user_id":    userID,
		"exp":        exp.Unix(),
	}).SignedString([]byte("backend-secret"))
	require.NoError(t, err)
	return s
}

func (f *testFixture) requireStorageEmpty(t *testing.T) {
	t.Helper()
	for _, key := range []string{sessions.KeyUser, sessions.KeyToken, sessions.KeyRefresh} {
		_, ok, err := f.repo.Get(key)
		require.NoError(t, err)
		require.False(t, ok, "storage still holds %q", key)
	}
}

func TestLogin_PersistsAndArmsWatcher(t *testing.T) {
	f := setupTestFixture(t)
	tok := sign(t, testUser.ID, f.base.Add(time.Hour))

	require.NoError(t, f.manager.Login(testUser, tok))

	s, ok := f.manager.Current()
	require.True(t, ok)
	require.Equal(t, testUser, s.User)
	require.Equal(t, tok, s.Token)
	require.True(t, f.base.Add(time.Hour).Equal(s.ExpiresAt))
	require.Equal(t, users.RolePatient, f.manager.Role())
	require.Equal(t, 1, f.manager.ActiveWatchers())

	rawUser, ok, err := f.repo.Get(sessions.KeyUser)
	require.NoError(t, err)
	require.True(t, ok)
	var stored users.User
	require.NoError(t, json.Unmarshal([]byte(rawUser), &stored))
	require.Equal(t, testUser, stored)

	rawToken, ok, err := f.repo.Get(sessions.KeyToken)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, tok, rawToken)
}

func TestLogin_RejectsPartialSession(t *testing.T) {
	f := setupTestFixture(t)

	err := f.manager.Login(testUser, "  ")
	require.ErrorIs(t, err, apperrors.ErrIncompleteSession)

	err = f.manager.Login(users.User{ID: 1}, sign(t, 1, f.base.Add(time.Hour)))
	require.ErrorIs(t, err, apperrors.ErrIncompleteSession)

	_, ok := f.manager.Current()
	require.False(t, ok)
	require.Equal(t, 0, f.repo.Keys())
}

func TestLogin_StorageFailureKeepsMemorySession(t *testing.T) {
	f := setupTestFixture(t)
	f.repo.SetErr = errors.New("disk full")

	require.NoError(t, f.manager.Login(testUser, sign(t, testUser.ID, f.base.Add(time.Hour))))

	_, ok := f.manager.Current()
	require.True(t, ok)
}

func TestLogin_DropsPreviousRefreshToken(t *testing.T) {
	f := setupTestFixture(t)
	require.NoError(t, f.manager.Login(testUser, sign(t, testUser.ID, f.base.Add(time.Hour))))
	f.manager.StoreRefreshToken("refresh-of-ana")

	other := users.User{ID: 8, Email: "ben@example.com", FullName: "Ben Costa", Role: users.RoleDoctor}
	require.NoError(t, f.manager.Login(other, sign(t, other.ID, f.base.Add(time.Hour))))

	_, ok, err := f.repo.Get(sessions.KeyRefresh)
	require.NoError(t, err)
	require.False(t, ok)

	f.manager.StoreRefreshToken("refresh-of-ben")
	raw, ok, err := f.repo.Get(sessions.KeyRefresh)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "refresh-of-ben", raw)
}

func TestLogout_ClearsEverything(t *testing.T) {
	f := setupTestFixture(t)
	require.NoError(t, f.manager.Login(testUser, sign(t, testUser.ID, f.base.Add(time.Hour))))
	f.manager.StoreRefreshToken("refresh-token")

	f.manager.Logout()

	_, ok := f.manager.Current()
	require.False(t, ok)
	require.Empty(t, f.manager.Role())
	require.Equal(t, 0, f.manager.ActiveWatchers())
	f.requireStorageEmpty(t)
	require.Equal(t, []sessions.LogoutReason{sessions.ReasonExplicit}, f.reasons.list())
}

func TestLogout_Idempotent(t *testing.T) {
	f := setupTestFixture(t)

	f.manager.Logout()
	require.Empty(t, f.reasons.list())

	require.NoError(t, f.manager.Login(testUser, sign(t, testUser.ID, f.base.Add(time.Hour))))
	f.manager.Logout()
	f.manager.Logout()

	require.Equal(t, []sessions.LogoutReason{sessions.ReasonExplicit}, f.reasons.list())
	f.requireStorageEmpty(t)
}

func TestToken_Source(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.manager.Token()
	require.ErrorIs(t, err, apperrors.ErrNoSession)

	raw := sign(t, testUser.ID, f.base.Add(time.Hour))
	require.NoError(t, f.manager.Login(testUser, raw))

	tok, err := f.manager.Token()
	require.NoError(t, err)
	require.Equal(t, raw, tok.AccessToken)
	require.Equal(t, "Bearer", tok.Type())
	require.True(t, f.base.Add(time.Hour).Equal(tok.Expiry))
}

func TestRestore(t *testing.T) {
	t.Run("valid stored session", func(t *testing.T) {
		f := setupTestFixture(t)
		raw := sign(t, testUser.ID, f.base.Add(time.Hour))
		require.NoError(t, f.manager.Login(testUser, raw))
		f.manager.Close()

		restored := f.newManager()
		t.Cleanup(restored.Close)
		restored.Restore()

		s, ok := restored.Current()
		require.True(t, ok)
		require.Equal(t, testUser, s.User)
		require.Equal(t, raw, s.Token)
		require.Equal(t, 1, restored.ActiveWatchers())
	})

	t.Run("expired token yields no session and no watcher", func(t *testing.T) {
		f := setupTestFixture(t)
		b, err := json.Marshal(testUser)
		require.NoError(t, err)
		require.NoError(t, f.repo.Set(sessions.KeyUser, string(b)))
		require.NoError(t, f.repo.Set(sessions.KeyToken, sign(t, testUser.ID, f.base.Add(-time.Minute))))

		f.manager.Restore()

		_, ok := f.manager.Current()
		require.False(t, ok)
		require.Equal(t, 0, f.manager.ActiveWatchers())
		f.requireStorageEmpty(t)
		require.Equal(t, []sessions.LogoutReason{sessions.ReasonExpired}, f.reasons.list())
	})

	t.Run("token expiring exactly now counts as expired", func(t *testing.T) {
		f := setupTestFixture(t)
		b, err := json.Marshal(testUser)
		require.NoError(t, err)
		require.NoError(t, f.repo.Set(sessions.KeyUser, string(b)))
		require.NoError(t, f.repo.Set(sessions.KeyToken, sign(t, testUser.ID, f.base)))

		f.manager.Restore()

		_, ok := f.manager.Current()
		require.False(t, ok)
	})

	t.Run("undecodable token", func(t *testing.T) {
		f := setupTestFixture(t)
		b, err := json.Marshal(testUser)
		require.NoError(t, err)
		require.NoError(t, f.repo.Set(sessions.KeyUser, string(b)))
		require.NoError(t, f.repo.Set(sessions.KeyToken, "not.a.jwt"))

		f.manager.Restore()

		_, ok := f.manager.Current()
		require.False(t, ok)
		f.requireStorageEmpty(t)
		require.Equal(t, []sessions.LogoutReason{sessions.ReasonInvalidToken}, f.reasons.list())
	})

	t.Run("malformed stored user", func(t *testing.T) {
		f := setupTestFixture(t)
		require.NoError(t, f.repo.Set(sessions.KeyUser, "{broken"))
		require.NoError(t, f.repo.Set(sessions.KeyToken, sign(t, testUser.ID, f.base.Add(time.Hour))))

		f.manager.Restore()

		_, ok := f.manager.Current()
		require.False(t, ok)
		require.Equal(t, 0, f.manager.ActiveWatchers())
		f.requireStorageEmpty(t)
		require.Empty(t, f.reasons.list())
	})

	t.Run("user without token is discarded", func(t *testing.T) {
		f := setupTestFixture(t)
		b, err := json.Marshal(testUser)
		require.NoError(t, err)
		require.NoError(t, f.repo.Set(sessions.KeyUser, string(b)))

		f.manager.Restore()

		_, ok := f.manager.Current()
		require.False(t, ok)
		f.requireStorageEmpty(t)
	})

	t.Run("unreadable storage", func(t *testing.T) {
		f := setupTestFixture(t)
		f.repo.GetErr = errors.New("permission denied")

		f.manager.Restore()

		_, ok := f.manager.Current()
		require.False(t, ok)
	})

	t.Run("empty storage", func(t *testing.T) {
		f := setupTestFixture(t)
		f.manager.Restore()
		_, ok := f.manager.Current()
		require.False(t, ok)
		require.Empty(t, f.reasons.list())
	})
}

func TestWatcher_LogsOutOnExpiry(t *testing.T) {
	f := setupTestFixture(t)
	require.NoError(t, f.manager.Login(testUser, sign(t, testUser.ID, f.base.Add(time.Hour))))

	f.clock.Set(f.base.Add(59 * time.Minute))
	time.Sleep(30 * time.Millisecond)
	_, ok := f.manager.Current()
	require.True(t, ok)

	f.clock.Set(f.base.Add(time.Hour))
	require.Eventually(t, func() bool {
		_, ok := f.manager.Current()
		return !ok && f.manager.ActiveWatchers() == 0
	}, time.Second, 5*time.Millisecond)

	f.requireStorageEmpty(t)
	require.Equal(t, []sessions.LogoutReason{sessions.ReasonExpired}, f.reasons.list())
}

func TestLogin_ReplacingTokenCancelsPreviousWatcher(t *testing.T) {
	f := setupTestFixture(t)
	first := sign(t, testUser.ID, f.base.Add(time.Hour))
	second := sign(t, testUser.ID, f.base.Add(2*time.Hour))

	require.NoError(t, f.manager.Login(testUser, first))
	require.NoError(t, f.manager.Login(testUser, second))
	require.Equal(t, 1, f.manager.ActiveWatchers())

	// past the first token's expiry only
	f.clock.Set(f.base.Add(time.Hour + time.Minute))
	time.Sleep(30 * time.Millisecond)

	s, ok := f.manager.Current()
	require.True(t, ok)
	require.Equal(t, second, s.Token)
	require.Empty(t, f.reasons.list())

	f.clock.Set(f.base.Add(2 * time.Hour))
	require.Eventually(t, func() bool {
		return len(f.reasons.list()) == 1
	}, time.Second, 5*time.Millisecond)

	time.Sleep(20 * time.Millisecond)
	require.Equal(t, []sessions.LogoutReason{sessions.ReasonExpired}, f.reasons.list())
}

func TestManager_ConcurrentLoginLogout(t *testing.T) {
	f := setupTestFixture(t)
	tok := sign(t, testUser.ID, f.base.Add(time.Hour))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = f.manager.Login(testUser, tok)
		}()
		go func() {
			defer wg.Done()
			f.manager.Logout()
		}()
	}
	wg.Wait()

	require.LessOrEqual(t, f.manager.ActiveWatchers(), 1)
	f.manager.Logout()
	require.Equal(t, 0, f.manager.ActiveWatchers())
	f.requireStorageEmpty(t)
}

func TestLogoutReason(t *testing.T) {
	require.False(t, sessions.ReasonExplicit.Forced())
	require.True(t, sessions.ReasonExpired.Forced())
	require.True(t, sessions.ReasonInvalidToken.Forced())
	require.Equal(t, "invalid-token", sessions.ReasonInvalidToken.String())
}
