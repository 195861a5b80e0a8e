package sqlitedb_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/storefront-cart/internal/pkg/sqlitedb"
)

func TestOpenCreatesParentDir(t *testing.T) {
	db, err := sqlitedb.Open(filepath.Join(t.TempDir(), "a", "b", "shop.db"))
	require.NoError(t, err)
	defer db.Close()

	var mode string
	require.NoError(t, db.QueryRow(`PRAGMA journal_mode`).Scan(&mode))
	assert.Equal(t, "wal", mode)
}

func TestTimeRoundTripAndOrdering(t *testing.T) {
	whole := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	frac := whole.Add(500 * time.Millisecond)

	got, err := sqlitedb.ParseTime(sqlitedb.FormatTime(frac))
	require.NoError(t, err)
	assert.True(t, frac.Equal(got))

	assert.Less(t, sqlitedb.FormatTime(whole), sqlitedb.FormatTime(frac))

	_, err = sqlitedb.ParseTime("yesterday")
	assert.Error(t, err)
}
