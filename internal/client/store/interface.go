// Package store is the persisted credential store: a string-keyed
// key/value table in local SQLite that survives process restarts. It is
// written only by the session manager; everything else reads session state
// from memory.
package store

import "context"

// Persisted keys. The five session keys are written together on login and
// removed together on clear; they are never partially present after an
// operation completes.
const (
	KeyToken        = "token"
	KeyRefreshToken = "refreshToken"
	KeyUser         = "user"
	KeyPermissions  = "permissions"
	KeyCompanyID    = "company_id"

	// Offline unlock material, cleared together with the session.
	KeyOfflineUsername = "offline_username"
	KeyOfflineSalt     = "offline_salt"
	KeyOfflineVerifier = "offline_verifier"

	// Per-install identity. Survives Clear.
	KeyDeviceID = "device_id"
)

// clearedKeys is everything Clear removes.
var clearedKeys = []string{
	KeyToken, KeyRefreshToken, KeyUser, KeyPermissions, KeyCompanyID,
	KeyOfflineUsername, KeyOfflineSalt, KeyOfflineVerifier,
}

// SessionRecord is the persisted shape of one session. User and
// permissions are stored as their JSON encodings; an empty/nil field means
// the key is absent.
type SessionRecord struct {
	Token           string
	RefreshToken    string
	UserJSON        []byte
	PermissionsJSON []byte
	CompanyID       string
}

// Repository is the credential store contract.
type Repository interface {
	// Get returns the value for key, or common.ErrorNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set writes one key.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes one key. Removing an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// SaveSession writes the whole session in a single transaction, so a
	// crash cannot leave a token without its user or vice versa. Empty
	// fields delete the corresponding key.
	SaveSession(ctx context.Context, rec SessionRecord) error

	// LoadSession reads the session keys. Absent keys load as empty
	// fields; a completely absent session is not an error.
	LoadSession(ctx context.Context) (*SessionRecord, error)

	// Clear removes every session key (and the offline unlock material)
	// in one transaction. The device identifier survives.
	Clear(ctx context.Context) error
}
