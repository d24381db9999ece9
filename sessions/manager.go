// Package sessions is the single source of truth for who is acting and with
// what credential. A Manager keeps the current user and bearer token in
// memory, mirrors them into durable storage so they survive a restart, and
// logs out on its own once the token expires.
package sessions

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	apperrors "github.com/jrsteele09/go-hospital-client/internal/errors"
	"github.com/jrsteele09/go-hospital-client/token"
	"github.com/jrsteele09/go-hospital-client/users"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

const DefaultCheckInterval = time.Minute

type Option func(*Manager)

// WithCheckInterval sets how often an active token's expiry is checked.
func WithCheckInterval(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.interval = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func WithLogger(l zerolog.Logger) Option {
	return func(m *Manager) { m.log = l }
}

// watcher is the expiry check bound to one token. At most one is live.
type watcher struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// stop cancels the watcher and waits for its goroutine to exit.
func (w *watcher) stop() {
	if w == nil {
		return
	}
	w.cancel()
	<-w.done
}

type Manager struct {
	repo     Repo
	interval time.Duration
	now      func() time.Time
	log      zerolog.Logger

	mu        sync.Mutex
	current   *Session
	gen       uint64 // bumped whenever the session is replaced or cleared
	watcher   *watcher
	listeners []func(LogoutReason)

	active atomic.Int32
}

var _ oauth2.TokenSource = (*Manager)(nil)

func NewManager(repo Repo, opts ...Option) *Manager {
	m := &Manager{
		repo:     repo,
		interval: DefaultCheckInterval,
		now:      time.Now,
		log:      log.Logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// OnLogout registers fn to be called after every logout, explicit or forced.
// Forced logouts call fn from the watcher goroutine.
func (m *Manager) OnLogout(fn func(LogoutReason)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

// Login replaces any current session with user and token and persists both.
// A refresh token stored for the previous session is dropped. The expiry watch for the previous token is stopped before the new one is
// armed. A token that is already expired or cannot be decoded ends the
// session straight away.
func (m *Manager) Login(user users.User, token string) error {
	if !user.Valid() || strings.TrimSpace(token) == "" {
		return apperrors.ErrIncompleteSession
	}

	m.mu.Lock()
	prev, gen := m.replace(Session{User: user, Token: token})
	if err := m.repo.Delete(KeyRefresh); err != nil {
		m.log.Warn().Err(err).Msg("failed to drop previous refresh token")
	}
	m.persist(user, token)
	m.mu.Unlock()

	prev.stop()
	m.watch(gen, token)
	return nil
}

// StoreRefreshToken writes the refresh token entry. Nothing in the client
// reads it back; it is kept for parity with the backend's login response.
func (m *Manager) StoreRefreshToken(refresh string) {
	if refresh == "" {
		return
	}
	if err := m.repo.Set(KeyRefresh, refresh); err != nil {
		m.log.Warn().Err(err).Msg("failed to persist refresh token")
	}
}

// Logout clears the session from memory and storage. Calling it without a
// session is a no-op apart from removing any stale storage entries.
func (m *Manager) Logout() {
	m.mu.Lock()
	prev, had := m.clear()
	m.mu.Unlock()

	prev.stop()
	if had {
		m.notify(ReasonExplicit)
	}
}

// Restore hydrates the session from storage. It is called once at start and
// never fails: unreadable, partial or malformed storage means no session.
func (m *Manager) Restore() {
	rawUser, hasUser, errUser := m.repo.Get(KeyUser)
	rawToken, hasToken, errToken := m.repo.Get(KeyToken)
	if errUser != nil || errToken != nil {
		m.log.Warn().AnErr("user_err", errUser).AnErr("token_err", errToken).
			Msg("session storage unreadable, starting without a session")
		return
	}
	if !hasUser && !hasToken {
		return
	}

	var user users.User
	if !hasUser || !hasToken || strings.TrimSpace(rawToken) == "" ||
		json.Unmarshal([]byte(rawUser), &user) != nil || !user.Valid() {
		m.log.Info().Msg("discarding incomplete stored session")
		m.mu.Lock()
		m.wipe()
		m.mu.Unlock()
		return
	}

	m.mu.Lock()
	prev, gen := m.replace(Session{User: user, Token: rawToken})
	m.mu.Unlock()

	prev.stop()
	m.watch(gen, rawToken)
}

// Close stops the expiry watch without ending the session, for process exit.
func (m *Manager) Close() {
	m.mu.Lock()
	prev := m.watcher
	m.watcher = nil
	m.gen++
	m.mu.Unlock()
	prev.stop()
}

// Current returns a copy of the active session.
func (m *Manager) Current() (Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return Session{}, false
	}
	return *m.current, true
}

// Role is the acting role, or "" without a session.
func (m *Manager) Role() users.RoleType {
	s, ok := m.Current()
	if !ok {
		return ""
	}
	return s.User.Role
}

// Token implements oauth2.TokenSource over the active session.
func (m *Manager) Token() (*oauth2.Token, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return nil, apperrors.ErrNoSession
	}
	return &oauth2.Token{
		AccessToken: m.current.Token,
		TokenType:   "Bearer",
		Expiry:      m.current.ExpiresAt,
	}, nil
}

// ActiveWatchers is the number of live expiry watches, 0 or 1.
func (m *Manager) ActiveWatchers() int {
	return int(m.active.Load())
}

// replace installs s as the current session. Caller holds m.mu and must stop
// the returned watcher after unlocking.
func (m *Manager) replace(s Session) (*watcher, uint64) {
	m.gen++
	prev := m.watcher
	m.watcher = nil
	m.current = &s
	return prev, m.gen
}

// clear drops the session and its storage. Caller holds m.mu.
func (m *Manager) clear() (*watcher, bool) {
	had := m.current != nil
	m.gen++
	prev := m.watcher
	m.watcher = nil
	m.current = nil
	m.wipe()
	return prev, had
}

func (m *Manager) persist(user users.User, token string) {
	b, err := json.Marshal(user)
	if err != nil {
		m.log.Warn().Err(err).Msg("failed to encode session user")
		return
	}
	if err := m.repo.Set(KeyUser, string(b)); err != nil {
		m.log.Warn().Err(err).Msg("failed to persist session user")
	}
	if err := m.repo.Set(KeyToken, token); err != nil {
		m.log.Warn().Err(err).Msg("failed to persist session token")
	}
}

func (m *Manager) wipe() {
	for _, key := range []string{KeyUser, KeyToken, KeyRefresh} {
		if err := m.repo.Delete(key); err != nil {
			m.log.Warn().Err(err).Str("key", key).Msg("failed to delete session entry")
		}
	}
}

// watch arms the expiry check for the session of generation gen.
func (m *Manager) watch(gen uint64, raw string) {
	claims, err := token.Decode(raw)
	if err != nil {
		m.log.Info().Err(err).Msg("session token unreadable, logging out")
		m.expire(gen, ReasonInvalidToken)
		return
	}
	if claims.Expired(m.now()) {
		m.log.Info().Time("expires_at", claims.ExpiresAt).Msg("session token expired, logging out")
		m.expire(gen, ReasonExpired)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &watcher{cancel: cancel, done: make(chan struct{})}

	m.mu.Lock()
	if m.gen != gen {
		// replaced while decoding
		m.mu.Unlock()
		cancel()
		return
	}
	m.current.ExpiresAt = claims.ExpiresAt
	m.watcher = w
	m.active.Add(1)
	m.mu.Unlock()

	go m.run(ctx, w, gen, claims.ExpiresAt)
}

func (m *Manager) run(ctx context.Context, w *watcher, gen uint64, exp time.Time) {
	defer close(w.done)
	defer m.active.Add(-1)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !m.now().Before(exp) {
				m.log.Info().Time("expires_at", exp).Msg("session token expired, logging out")
				m.expire(gen, ReasonExpired)
				return
			}
		}
	}
}

// expire ends the session of generation gen if it is still current.
func (m *Manager) expire(gen uint64, reason LogoutReason) {
	m.mu.Lock()
	if m.gen != gen || m.current == nil {
		m.mu.Unlock()
		return
	}
	prev, _ := m.clear()
	m.mu.Unlock()

	// prev is the calling watcher or nil, so cancel without waiting
	if prev != nil {
		prev.cancel()
	}
	m.notify(reason)
}

func (m *Manager) notify(reason LogoutReason) {
	m.mu.Lock()
	listeners := append([]func(LogoutReason){}, m.listeners...)
	m.mu.Unlock()
	for _, fn := range listeners {
		fn(reason)
	}
}
