package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/kadrio/clientkit/internal/common"
)

// EnsureDeviceID returns the per-install device identifier, generating and
// persisting one on first run. The identifier deliberately lives outside
// the clearable session keys so the backend can correlate logins from the
// same install across sessions.
func EnsureDeviceID(ctx context.Context, repo Repository) (string, error) {
	v, err := repo.Get(ctx, KeyDeviceID)
	if err == nil && len(v) > 0 {
		return string(v), nil
	}
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		return "", err
	}

	id := uuid.NewString()
	if err := repo.Set(ctx, KeyDeviceID, []byte(id)); err != nil {
		return "", err
	}
	return id, nil
}
