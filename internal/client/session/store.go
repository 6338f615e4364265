// Package session persists the signed-in session across process restarts.
//
// Every operation runs in its own transaction on the local database, so a
// failed Save leaves whatever was stored before untouched.
package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/akansh-agarwalalwar/online-dudhiya-frontend-app-sub001/internal/client/models"
	"github.com/akansh-agarwalalwar/online-dudhiya-frontend-app-sub001/internal/client/repositories/securestore"
	"github.com/akansh-agarwalalwar/online-dudhiya-frontend-app-sub001/internal/common"
	"github.com/akansh-agarwalalwar/online-dudhiya-frontend-app-sub001/internal/dbx"
)

var (
	// ErrCorruptSession is returned by Load when a stored session exists
	// but cannot be opened or decoded.
	ErrCorruptSession = errors.New("stored session is corrupt")

	// ErrInvalidSession is returned by Save for a session missing its user
	// or token.
	ErrInvalidSession = errors.New("session must have user and token")
)

// Store is the durable home of the current session.
type Store interface {
	Save(ctx context.Context, s *models.Session) error
	// Load returns (nil, nil) when no session was saved.
	Load(ctx context.Context) (*models.Session, error)
	Clear(ctx context.Context) error
}

// SQLStore keeps the session in the sealed secure_store table.
type SQLStore struct {
	db  *sql.DB
	key []byte
}

// NewSQLStore derives the install key from deviceSecret and returns a store
// bound to db. db must already be migrated (see localdb.Open).
func NewSQLStore(ctx context.Context, db *sql.DB, deviceSecret []byte) (*SQLStore, error) {
	var key []byte
	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		key, err = securestore.InstallKey(ctx, tx, deviceSecret)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("init session store: %w", err)
	}
	return &SQLStore{db: db, key: key}, nil
}

func (s *SQLStore) repo(tx dbx.DBTX) securestore.Repository {
	return securestore.NewSQLiteRepository(tx, s.key)
}

func (s *SQLStore) Save(ctx context.Context, sess *models.Session) error {
	if !sess.Valid() {
		return ErrInvalidSession
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return s.repo(tx).Set(ctx, common.SessionStorageKey, data)
	})
}

func (s *SQLStore) Load(ctx context.Context) (*models.Session, error) {
	var data []byte
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		data, err = s.repo(tx).Get(ctx, common.SessionStorageKey)
		return err
	})
	if errors.Is(err, securestore.ErrUnreadable) {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSession, err)
	}
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}

	var sess models.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSession, err)
	}
	if !sess.Valid() {
		return nil, ErrCorruptSession
	}
	return &sess, nil
}

func (s *SQLStore) Clear(ctx context.Context) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return s.repo(tx).Delete(ctx, common.SessionStorageKey)
	})
}

// DeviceID returns the identifier of this install, generating and storing
// one with newID on first use.
func (s *SQLStore) DeviceID(ctx context.Context, newID func() string) (string, error) {
	var id string
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repo(tx)
		v, err := repo.Get(ctx, common.DeviceIDStorageKey)
		if err != nil {
			return err
		}
		if v != nil {
			id = string(v)
			return nil
		}
		id = newID()
		return repo.Set(ctx, common.DeviceIDStorageKey, []byte(id))
	})
	if err != nil {
		return "", fmt.Errorf("device id: %w", err)
	}
	return id, nil
}
