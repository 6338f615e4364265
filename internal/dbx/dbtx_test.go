package dbx

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func openStore(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	// one connection, so every statement sees the same in-memory database
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE secure_store (key TEXT PRIMARY KEY, value BLOB NOT NULL)`)
	require.NoError(t, err)
	return db
}

func storedKeys(t *testing.T, db *sql.DB) []string {
	t.Helper()
	rows, err := db.Query(`SELECT key FROM secure_store ORDER BY key`)
	require.NoError(t, err)
	defer rows.Close()

	keys := []string{}
	for rows.Next() {
		var k string
		require.NoError(t, rows.Scan(&k))
		keys = append(keys, k)
	}
	require.NoError(t, rows.Err())
	return keys
}

func saveUserAndToken(ctx context.Context, tx DBTX) error {
	for _, k := range []string{"user", "token"} {
		if _, err := tx.ExecContext(ctx, `INSERT INTO secure_store(key, value) VALUES (?, x'00')`, k); err != nil {
			return err
		}
	}
	return nil
}

func TestWithTx(t *testing.T) {
	errHalf := errors.New("second write failed")

	tests := []struct {
		name     string
		fn       TxFunc
		wantErr  error
		wantKeys []string
	}{
		{
			name:     "both writes commit",
			fn:       saveUserAndToken,
			wantKeys: []string{"token", "user"},
		},
		{
			name: "error rolls back the first write",
			fn: func(ctx context.Context, tx DBTX) error {
				if _, err := tx.ExecContext(ctx, `INSERT INTO secure_store(key, value) VALUES ('user', x'00')`); err != nil {
					return err
				}
				return errHalf
			},
			wantErr:  errHalf,
			wantKeys: []string{},
		},
		{
			name: "reads inside see own writes",
			fn: func(ctx context.Context, tx DBTX) error {
				if err := saveUserAndToken(ctx, tx); err != nil {
					return err
				}
				var n int
				if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM secure_store`).Scan(&n); err != nil {
					return err
				}
				if n != 2 {
					return errors.New("writes not visible")
				}
				_, err := tx.ExecContext(ctx, `DELETE FROM secure_store WHERE key = 'token'`)
				return err
			},
			wantKeys: []string{"user"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := openStore(t)

			err := WithTx(context.Background(), db, nil, tt.fn)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.wantKeys, storedKeys(t, db))
		})
	}
}

func TestWithTx_PanicRollsBackAndPropagates(t *testing.T) {
	db := openStore(t)

	assert.PanicsWithValue(t, "disk gone", func() {
		_ = WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
			if err := saveUserAndToken(ctx, tx); err != nil {
				return err
			}
			panic("disk gone")
		})
	})
	assert.Equal(t, []string{}, storedKeys(t, db))
}

func TestWithTx_BeginFails(t *testing.T) {
	db := openStore(t)
	require.NoError(t, db.Close())

	called := false
	err := WithTx(context.Background(), db, nil, func(context.Context, DBTX) error {
		called = true
		return nil
	})
	require.ErrorContains(t, err, "begin tx")
	assert.False(t, called)
}

func TestWithTx_CancelledContext(t *testing.T) {
	db := openStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := WithTx(ctx, db, nil, saveUserAndToken)
	require.Error(t, err)
	assert.Equal(t, []string{}, storedKeys(t, db))
}
