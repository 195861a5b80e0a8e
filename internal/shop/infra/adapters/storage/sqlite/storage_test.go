package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/storefront-cart/internal/pkg/sqlitedb"
	"github.com/jcmexdev/storefront-cart/internal/shop/core/cart"
	"github.com/jcmexdev/storefront-cart/internal/shop/infra/adapters/storage/sqlite"
)

func TestStorage(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "shop.db")

	db, err := sqlitedb.Open(path)
	require.NoError(t, err)
	defer db.Close()

	st, err := sqlite.New(db, cart.RecordName)
	require.NoError(t, err)

	t.Run("Absent record loads as nil", func(t *testing.T) {
		b, err := st.Load(ctx)
		require.NoError(t, err)
		assert.Nil(t, b)
	})

	t.Run("Save then overwrite", func(t *testing.T) {
		require.NoError(t, st.Save(ctx, []byte(`[{"_id":"p1","qty":1}]`)))
		require.NoError(t, st.Save(ctx, []byte(`[]`)))

		b, err := st.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, `[]`, string(b))
	})

	t.Run("Records are independent", func(t *testing.T) {
		other, err := sqlite.New(db, "other")
		require.NoError(t, err)

		b, err := other.Load(ctx)
		require.NoError(t, err)
		assert.Nil(t, b)
	})
}

func TestStorageSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "shop.db")

	db, err := sqlitedb.Open(path)
	require.NoError(t, err)
	st, err := sqlite.New(db, cart.RecordName)
	require.NoError(t, err)
	require.NoError(t, st.Save(ctx, []byte(`[{"_id":"p2","qty":3}]`)))
	require.NoError(t, db.Close())

	db, err = sqlitedb.Open(path)
	require.NoError(t, err)
	defer db.Close()
	st, err = sqlite.New(db, cart.RecordName)
	require.NoError(t, err)

	b, err := st.Load(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"_id":"p2","qty":3}]`, string(b))
}
