package session

import (
	"strings"

	"github.com/kadrio/clientkit/internal/client/models"
	"github.com/kadrio/clientkit/internal/client/permission"
)

// The query façade. Every method is total: a nil permission set, a missing
// user, or the loading window all answer with a safe default, so route
// guards can call these unconditionally.

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// IsAuthenticated reports whether a session is established.
func (m *Manager) IsAuthenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state == StateAuthenticated
}

// IsLoading reports whether a bootstrap/login/refresh transition is in
// flight. Never true indefinitely: every operation resolves it.
func (m *Manager) IsLoading() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loading
}

// RetryAvailable reports whether the last bootstrap failed transiently
// (server unreachable with credentials still cached), so the UI can offer
// a retry instead of a login form.
func (m *Manager) RetryAvailable() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.retryable
}

// User returns a copy of the current actor, or nil.
func (m *Manager) User() *models.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return nil
	}
	u := *m.user
	return &u
}

// Token returns the current access token, or "".
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

// HasPermission reports whether the item is granted in any module.
func (m *Manager) HasPermission(itemID string) bool {
	return m.permissions().HasItem(itemID)
}

// HasRoute reports whether the exact route is granted.
func (m *Manager) HasRoute(route string) bool {
	return m.permissions().HasRoute(route)
}

// HasModule reports whether the module is granted.
func (m *Manager) HasModule(moduleID string) bool {
	return m.permissions().HasModule(moduleID)
}

// HasAnyOf reports whether at least one item is granted; false for an
// empty list.
func (m *Manager) HasAnyOf(itemIDs []string) bool {
	return m.permissions().HasAny(itemIDs)
}

// HasAllOf reports whether every item is granted; false for an empty list.
func (m *Manager) HasAllOf(itemIDs []string) bool {
	return m.permissions().HasAll(itemIDs)
}

// GetModulePermissions returns the sorted items of one module.
func (m *Manager) GetModulePermissions(moduleID string) []string {
	return m.permissions().ModuleItems(moduleID)
}

// GetPermissionLevels returns the sorted access levels of one module.
func (m *Manager) GetPermissionLevels(moduleID string) []permission.AccessLevel {
	return m.permissions().ModuleLevels(moduleID)
}

// Modules returns the sorted identifiers of every granted module.
func (m *Manager) Modules() []string {
	return m.permissions().Modules()
}

// HasRole compares the actor's role name, case-insensitively. It does not
// consult the permission set.
func (m *Manager) HasRole(role string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil || role == "" {
		return false
	}
	return strings.EqualFold(m.user.UserTypeName, role)
}

// HasAnyRole reports whether the actor holds any of the named roles.
func (m *Manager) HasAnyRole(roles ...string) bool {
	for _, r := range roles {
		if m.HasRole(r) {
			return true
		}
	}
	return false
}

func (m *Manager) permissions() *permission.Set {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.perms
}
