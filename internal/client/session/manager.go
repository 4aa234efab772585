// Package session owns the canonical in-memory session: who the current
// actor is, their tokens, and their normalized permissions. The Manager is
// the only writer of the credential store and the only component turning
// transport errors into state transitions; everything else consumes the
// read-only query methods.
package session

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/kadrio/clientkit/internal/client/api"
	"github.com/kadrio/clientkit/internal/client/appstate"
	"github.com/kadrio/clientkit/internal/client/models"
	"github.com/kadrio/clientkit/internal/client/permission"
	"github.com/kadrio/clientkit/internal/client/store"
	"github.com/kadrio/clientkit/internal/common"
	"github.com/kadrio/clientkit/internal/cryptox"
	"github.com/kadrio/clientkit/internal/logging"
	"github.com/kadrio/clientkit/internal/tokenx"
)

// State is the lifecycle state of the session.
type State int

const (
	StateBootstrapping State = iota
	StateAuthenticated
	StateUnauthenticated
	StateLoggingOut
)

func (s State) String() string {
	switch s {
	case StateBootstrapping:
		return "bootstrapping"
	case StateAuthenticated:
		return "authenticated"
	case StateUnauthenticated:
		return "unauthenticated"
	case StateLoggingOut:
		return "logging-out"
	default:
		return "unknown"
	}
}

// Result is the outcome of login/register, shaped for inline UI feedback
// instead of error plumbing.
type Result struct {
	Success bool
	Message string
}

// ErrNoOfflineData is returned by OfflineUnlock when no cached unlock
// material exists.
var ErrNoOfflineData = errors.New("offline unlock data unavailable")

// ErrNotAuthenticated is returned by operations that need a live session.
var ErrNotAuthenticated = errors.New("not authenticated")

// Options configures a Manager.
type Options struct {
	API         api.Client
	Credentials store.Repository
	Replica     *appstate.Store
	Logger      logging.Logger

	// DemoMode sources and validates the session entirely from the local
	// cache; no backend call is ever made.
	DemoMode bool

	// Now is a clock override for tests. Defaults to time.Now.
	Now func() time.Time
}

// Manager is the session lifecycle controller.
type Manager struct {
	api     api.Client
	creds   store.Repository
	replica *appstate.Store
	log     logging.Logger
	demo    bool
	now     func() time.Time

	mu           sync.RWMutex
	state        State
	loading      bool
	user         *models.User
	token        string
	refreshToken string
	perms        *permission.Set
	retryable    bool

	// epoch invalidates in-flight async results: logout bumps it, and a
	// late bootstrap/login/refresh completion from an older epoch is
	// discarded instead of resurrecting the session.
	epoch uint64

	refreshGroup singleflight.Group
}

func NewManager(opts Options) *Manager {
	log := opts.Logger
	if log == nil {
		log = logging.Nop()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Manager{
		api:     opts.API,
		creds:   opts.Credentials,
		replica: opts.Replica,
		log:     log,
		demo:    opts.DemoMode,
		now:     now,
		state:   StateBootstrapping,
		loading: true,
	}
}

// Bootstrap reconstructs the session from the credential store. It runs
// once at process start; after a transient failure (RetryAvailable
// reports true) it may be invoked again.
//
// Outcomes:
//   - no cached token/user: Unauthenticated, no network call
//   - demo mode, cached unexpired session: Authenticated from cache alone
//   - cached token expired: storage cleared, Unauthenticated, no network call
//   - identity endpoint rejects the token: storage cleared, Unauthenticated
//   - identity endpoint unreachable: Unauthenticated, storage kept,
//     RetryAvailable set, error returned
func (m *Manager) Bootstrap(ctx context.Context) error {
	e := m.beginOperation()

	rec, err := m.creds.LoadSession(ctx)
	if err != nil {
		m.log.Error(ctx, "bootstrap: credential store unreadable", "error", err)
		m.applyUnauthenticated(e, true)
		return err
	}

	if rec.Token == "" || len(rec.UserJSON) == 0 {
		m.applyUnauthenticated(e, false)
		return nil
	}

	user := &models.User{}
	if err := json.Unmarshal(rec.UserJSON, user); err != nil || user.ID == 0 {
		// A cache we cannot read is the same as no cache.
		m.log.Warn(ctx, "bootstrap: cached user unreadable, clearing", "error", err)
		m.clearStorage(ctx)
		m.applyUnauthenticated(e, false)
		return nil
	}

	if tokenx.Expired(rec.Token, m.now()) {
		// A stale cached session is "never logged in", not an error.
		m.clearStorage(ctx)
		m.applyUnauthenticated(e, false)
		return nil
	}

	if m.demo {
		perms := deserializePermissions(rec.PermissionsJSON)
		m.applyAuthenticated(ctx, e, user, rec.Token, rec.RefreshToken, perms)
		m.log.Info(ctx, "bootstrap: demo session hydrated from cache", "user_id", user.ID)
		return nil
	}

	fresh, err := m.api.Me(ctx, rec.Token)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorUnauthorized):
			m.clearStorage(ctx)
			m.applyUnauthenticated(e, false)
			return nil
		case errors.Is(err, common.ErrorMalformedResponse):
			m.log.Error(ctx, "bootstrap: identity response malformed", "error", err)
			m.applyUnauthenticated(e, false)
			return err
		default:
			// Unreachable is not "credentials invalid": keep storage so a
			// later retry can succeed without re-login.
			m.log.Warn(ctx, "bootstrap: identity endpoint unreachable", "error", err)
			m.applyUnauthenticated(e, true)
			return err
		}
	}

	perms := m.fetchPermissions(ctx, rec.Token, fresh)
	m.persistSession(ctx, fresh, rec.Token, rec.RefreshToken, perms)
	if !m.applyAuthenticated(ctx, e, fresh, rec.Token, rec.RefreshToken, perms) {
		// A logout raced the hydration; its cleared storage must win too.
		m.clearStorage(ctx)
		return nil
	}
	m.log.Info(ctx, "bootstrap: session hydrated", "user_id", fresh.ID, "company_id", fresh.CompanyID)
	return nil
}

// Login authenticates against the backend. The returned Result is meant
// for inline rendering; Login itself never leaves the manager in
// Bootstrapping and never returns a transport error.
func (m *Manager) Login(ctx context.Context, email, password string) Result {
	e := m.beginOperation()

	res, err := m.api.Login(ctx, api.Credentials{Email: email, Password: password})
	if err != nil {
		m.clearStorage(ctx)
		m.applyUnauthenticated(e, false)
		return Result{Success: false, Message: userMessage(err)}
	}

	m.saveOfflineUnlock(ctx, email, password)
	return m.completeLogin(ctx, e, res)
}

// Register creates a new actor (and tenant) and logs it in.
func (m *Manager) Register(ctx context.Context, req api.RegisterRequest) Result {
	e := m.beginOperation()

	res, err := m.api.Register(ctx, req)
	if err != nil {
		m.applyUnauthenticated(e, false)
		return Result{Success: false, Message: userMessage(err)}
	}

	m.saveOfflineUnlock(ctx, req.Email, req.Password)
	return m.completeLogin(ctx, e, res)
}

func (m *Manager) completeLogin(ctx context.Context, e uint64, res *api.LoginResult) Result {
	perms := m.fetchPermissions(ctx, res.AccessToken, res.User)

	if err := m.persistSession(ctx, res.User, res.AccessToken, res.RefreshToken, perms); err != nil {
		// A session we cannot persist would silently evaporate on the next
		// start; fail the login instead.
		m.clearStorage(ctx)
		m.applyUnauthenticated(e, false)
		return Result{Success: false, Message: "could not persist session"}
	}

	if !m.applyAuthenticated(ctx, e, res.User, res.AccessToken, res.RefreshToken, perms) {
		// A logout raced this login; its cleared storage must win too.
		m.clearStorage(ctx)
		return Result{Success: false, Message: "session superseded"}
	}
	m.log.Info(ctx, "login: authenticated", "user_id", res.User.ID)
	return Result{Success: true}
}

// Logout ends the session. The server call is best-effort; client-side
// logout always succeeds: storage is cleared and state is Unauthenticated
// even when the server is unreachable.
func (m *Manager) Logout(ctx context.Context) {
	m.mu.Lock()
	token := m.token
	m.state = StateLoggingOut
	m.epoch++ // discard any in-flight bootstrap/login/refresh result
	e := m.epoch
	m.mu.Unlock()

	if !m.demo && token != "" {
		if err := m.api.Logout(ctx, token); err != nil {
			m.log.Warn(ctx, "logout: server call failed, proceeding", "error", err)
		}
	}

	m.clearStorage(ctx)
	m.applyUnauthenticated(e, false)
	m.log.Info(ctx, "logout: session ended")
}

// RefreshToken exchanges the refresh token for a new access token.
// Concurrent callers share one in-flight exchange: with rotating refresh
// tokens, two parallel refreshes would invalidate each other. Any failure
// is session-invalidating and forces a full logout before the error is
// returned to the caller.
func (m *Manager) RefreshToken(ctx context.Context) (string, error) {
	if m.demo {
		m.mu.RLock()
		token := m.token
		m.mu.RUnlock()
		if token == "" {
			return "", ErrNotAuthenticated
		}
		return token, nil
	}

	v, err, _ := m.refreshGroup.Do("refresh", func() (any, error) {
		token, err := m.doRefresh(ctx)
		if err != nil {
			m.Logout(ctx)
			return "", err
		}
		return token, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (m *Manager) doRefresh(ctx context.Context) (string, error) {
	m.mu.RLock()
	refresh := m.refreshToken
	e := m.epoch
	m.mu.RUnlock()

	if refresh == "" {
		return "", common.ErrNoRefreshToken
	}
	if tokenx.Expired(refresh, m.now()) {
		return "", common.ErrRefreshTokenExpired
	}

	pair, err := m.api.Refresh(ctx, refresh)
	if err != nil {
		return "", fmt.Errorf("token refresh: %w", err)
	}

	if err := m.creds.Set(ctx, store.KeyToken, []byte(pair.AccessToken)); err != nil {
		return "", err
	}
	if pair.RefreshToken != "" {
		if err := m.creds.Set(ctx, store.KeyRefreshToken, []byte(pair.RefreshToken)); err != nil {
			return "", err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.epoch != e {
		// A logout raced the refresh; its cleared state wins.
		return "", ErrNotAuthenticated
	}
	m.token = pair.AccessToken
	if pair.RefreshToken != "" {
		m.refreshToken = pair.RefreshToken
	}
	return pair.AccessToken, nil
}

// RefreshPermissions replaces the permission set wholesale. In demo mode
// it re-reads the serialized permissions from storage, so locally
// simulated grant changes take effect without a server.
func (m *Manager) RefreshPermissions(ctx context.Context) error {
	m.mu.RLock()
	user := m.user
	token := m.token
	e := m.epoch
	authenticated := m.state == StateAuthenticated
	m.mu.RUnlock()

	if !authenticated || user == nil {
		return ErrNotAuthenticated
	}

	var perms *permission.Set
	if m.demo {
		v, err := m.creds.Get(ctx, store.KeyPermissions)
		if err != nil && !errors.Is(err, common.ErrorNotFound) {
			return err
		}
		perms = deserializePermissions(v)
	} else {
		raw, err := m.api.UserType(ctx, token, user.UserTypeID)
		if err != nil {
			return fmt.Errorf("permission refresh: %w", err)
		}
		perms = permission.Normalize(raw)
		if err := m.persistPermissions(ctx, perms); err != nil {
			return err
		}
	}

	m.mu.Lock()
	if m.epoch != e {
		m.mu.Unlock()
		return ErrNotAuthenticated
	}
	m.perms = perms
	m.mu.Unlock()

	m.pushReplica()
	return nil
}

// UpdateUser shallow-merges the patch into the in-memory user only.
// Persisted storage and permissions are untouched; the change is lost on
// restart. An empty patch is a no-op.
func (m *Manager) UpdateUser(patch models.UserPatch) {
	if patch.IsZero() {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil {
		return
	}
	m.user.ApplyPatch(patch)
}

// OfflineUnlock verifies the password against the locally cached verifier
// without any network call. Used by interactive frontends as the gate
// before a demo/offline bootstrap. Returns ErrNoOfflineData when nothing
// is cached and common.ErrorUnauthorized on a mismatch.
func (m *Manager) OfflineUnlock(ctx context.Context, username string, password []byte) error {
	stored := func(key string) ([]byte, error) {
		v, err := m.creds.Get(ctx, key)
		if errors.Is(err, common.ErrorNotFound) {
			return nil, ErrNoOfflineData
		}
		return v, err
	}

	savedUsername, err := stored(store.KeyOfflineUsername)
	if err != nil {
		return err
	}
	if string(savedUsername) != username {
		return common.ErrorUnauthorized
	}

	salt, err := stored(store.KeyOfflineSalt)
	if err != nil {
		return err
	}
	verifier, err := stored(store.KeyOfflineVerifier)
	if err != nil {
		return err
	}

	candidate := cryptox.MakeVerifier(cryptox.DeriveMasterKey(password, salt))
	if subtle.ConstantTimeCompare(verifier, candidate) == 0 {
		return common.ErrorUnauthorized
	}
	return nil
}

/* ---- internals ---- */

// beginOperation flags the loading window and returns the epoch the
// operation belongs to.
func (m *Manager) beginOperation() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loading = true
	m.retryable = false
	return m.epoch
}

// applyAuthenticated installs a session if it still belongs to the
// current epoch. Reports whether the result was applied.
func (m *Manager) applyAuthenticated(ctx context.Context, e uint64, user *models.User, token, refreshToken string, perms *permission.Set) bool {
	m.mu.Lock()
	if m.epoch != e {
		m.mu.Unlock()
		m.log.Warn(ctx, "stale session result discarded")
		return false
	}
	m.state = StateAuthenticated
	m.loading = false
	m.retryable = false
	m.user = user
	m.token = token
	m.refreshToken = refreshToken
	m.perms = perms
	m.mu.Unlock()

	m.pushReplica()
	return true
}

func (m *Manager) applyUnauthenticated(e uint64, retryable bool) {
	m.mu.Lock()
	if m.epoch != e {
		m.mu.Unlock()
		return
	}
	m.state = StateUnauthenticated
	m.loading = false
	m.retryable = retryable
	m.user = nil
	m.token = ""
	m.refreshToken = ""
	m.perms = nil
	m.mu.Unlock()

	m.pushReplica()
}

// fetchPermissions derives the permission set for the user's type. A
// failure here is non-fatal: the actor is authenticated either way, just
// under-privileged until the next refresh.
func (m *Manager) fetchPermissions(ctx context.Context, token string, user *models.User) *permission.Set {
	if user.UserTypeID == 0 {
		return nil
	}
	raw, err := m.api.UserType(ctx, token, user.UserTypeID)
	if err != nil {
		m.log.Warn(ctx, "permission fetch failed, continuing without permissions",
			"user_type_id", user.UserTypeID, "error", err)
		return nil
	}
	return permission.Normalize(raw)
}

func (m *Manager) persistSession(ctx context.Context, user *models.User, token, refreshToken string, perms *permission.Set) error {
	userJSON, err := json.Marshal(user)
	if err != nil {
		return err
	}
	rec := store.SessionRecord{
		Token:        token,
		RefreshToken: refreshToken,
		UserJSON:     userJSON,
		CompanyID:    user.CompanyID,
	}
	if perms != nil {
		if rec.PermissionsJSON, err = json.Marshal(permission.Serialize(perms)); err != nil {
			return err
		}
	}
	if err := m.creds.SaveSession(ctx, rec); err != nil {
		m.log.Error(ctx, "failed to persist session", "error", err)
		return err
	}
	return nil
}

func (m *Manager) persistPermissions(ctx context.Context, perms *permission.Set) error {
	data, err := json.Marshal(permission.Serialize(perms))
	if err != nil {
		return err
	}
	return m.creds.Set(ctx, store.KeyPermissions, data)
}

func (m *Manager) saveOfflineUnlock(ctx context.Context, username, password string) {
	salt := common.GenerateRandByteArray(32)
	verifier := cryptox.MakeVerifier(cryptox.DeriveMasterKey([]byte(password), salt))

	for key, value := range map[string][]byte{
		store.KeyOfflineUsername: []byte(username),
		store.KeyOfflineSalt:     salt,
		store.KeyOfflineVerifier: verifier,
	} {
		if err := m.creds.Set(ctx, key, value); err != nil {
			m.log.Warn(ctx, "failed to cache offline unlock material", "key", key, "error", err)
			return
		}
	}
}

func (m *Manager) clearStorage(ctx context.Context) {
	if err := m.creds.Clear(ctx); err != nil {
		m.log.Error(ctx, "failed to clear credential store", "error", err)
	}
}

// pushReplica mirrors the current session into the application-state
// container. One-way: the replica never writes back.
func (m *Manager) pushReplica() {
	if m.replica == nil {
		return
	}
	m.mu.RLock()
	snap := appstate.Snapshot{
		Authenticated: m.state == StateAuthenticated,
		Token:         m.token,
		Permissions:   permission.Serialize(m.perms),
	}
	if m.user != nil {
		u := *m.user
		snap.User = &u
		snap.CompanyID = u.CompanyID
	}
	m.mu.RUnlock()

	m.replica.Set(snap)
}

func deserializePermissions(data []byte) *permission.Set {
	if len(data) == 0 {
		return nil
	}
	var ser permission.Serialized
	if err := json.Unmarshal(data, &ser); err != nil {
		return nil
	}
	return permission.Deserialize(&ser)
}

// userMessage turns an API error into inline UI text without leaking
// transport detail.
func userMessage(err error) string {
	var serr *api.ServerError
	if errors.As(err, &serr) && serr.Message != "" {
		return serr.Message
	}
	switch {
	case errors.Is(err, common.ErrorUnauthorized):
		return "invalid credentials"
	case errors.Is(err, common.ErrorUnavailable):
		return "server unavailable, try again later"
	case errors.Is(err, common.ErrorMalformedResponse):
		return "unexpected server response"
	default:
		return "login failed"
	}
}
