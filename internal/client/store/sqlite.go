package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kadrio/clientkit/internal/client/migrations"
	"github.com/kadrio/clientkit/internal/common"
	"github.com/kadrio/clientkit/internal/dbx"
	"github.com/pressly/goose/v3"
)

// InitDatabase opens the local SQLite database and applies migrations.
func InitDatabase(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return db, nil
}

// SQLiteRepository is the Repository implementation on local SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Get(ctx context.Context, key string) ([]byte, error) {
	return get(ctx, r.db, key)
}

func get(ctx context.Context, db dbx.DBTX, key string) ([]byte, error) {
	var value []byte
	err := db.QueryRowContext(ctx, `SELECT value FROM credentials WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get credentials[%s]: %w", key, err)
	}
	return value, nil
}

func (r *SQLiteRepository) Set(ctx context.Context, key string, value []byte) error {
	return set(ctx, r.db, key, value)
}

func set(ctx context.Context, db dbx.DBTX, key string, value []byte) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO credentials (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set credentials[%s]: %w", key, err)
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, key string) error {
	return del(ctx, r.db, key)
}

func del(ctx context.Context, db dbx.DBTX, key string) error {
	_, err := db.ExecContext(ctx, `DELETE FROM credentials WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("failed to delete credentials[%s]: %w", key, err)
	}
	return nil
}

func (r *SQLiteRepository) SaveSession(ctx context.Context, rec SessionRecord) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		entries := []struct {
			key   string
			value []byte
		}{
			{KeyToken, []byte(rec.Token)},
			{KeyRefreshToken, []byte(rec.RefreshToken)},
			{KeyUser, rec.UserJSON},
			{KeyPermissions, rec.PermissionsJSON},
			{KeyCompanyID, []byte(rec.CompanyID)},
		}
		for _, e := range entries {
			if len(e.value) == 0 {
				if err := del(ctx, tx, e.key); err != nil {
					return err
				}
				continue
			}
			if err := set(ctx, tx, e.key, e.value); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *SQLiteRepository) LoadSession(ctx context.Context) (*SessionRecord, error) {
	rec := &SessionRecord{}
	read := func(key string) ([]byte, error) {
		v, err := r.Get(ctx, key)
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil
		}
		return v, err
	}

	v, err := read(KeyToken)
	if err != nil {
		return nil, err
	}
	rec.Token = string(v)

	if v, err = read(KeyRefreshToken); err != nil {
		return nil, err
	}
	rec.RefreshToken = string(v)

	if rec.UserJSON, err = read(KeyUser); err != nil {
		return nil, err
	}
	if rec.PermissionsJSON, err = read(KeyPermissions); err != nil {
		return nil, err
	}

	if v, err = read(KeyCompanyID); err != nil {
		return nil, err
	}
	rec.CompanyID = string(v)

	return rec, nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		for _, key := range clearedKeys {
			if err := del(ctx, tx, key); err != nil {
				return err
			}
		}
		return nil
	})
}
