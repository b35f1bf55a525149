package services

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogService(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	catalog := NewCatalogService(db)
	ctx := context.Background()

	t.Run("get package", func(t *testing.T) {
		mock.ExpectQuery("SELECT id, name, coins_amount, price_usd FROM coin_packages WHERE id").
			WithArgs(2).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "coins_amount", "price_usd"}).
				AddRow(2, "500 Coins", 500, "4.99"))

		pkg, err := catalog.GetPackage(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, "500 Coins", pkg.Name)
		assert.Equal(t, int64(499), pkg.MinorUnits())
	})

	t.Run("missing package", func(t *testing.T) {
		mock.ExpectQuery("FROM coin_packages WHERE id").
			WithArgs(42).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "coins_amount", "price_usd"}))

		_, err := catalog.GetPackage(ctx, 42)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Equal(t, 404, StatusFor(err))
	})

	t.Run("list packages", func(t *testing.T) {
		mock.ExpectQuery("FROM coin_packages ORDER BY").
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "coins_amount", "price_usd"}).
				AddRow(1, "100 Coins", 100, "0.99").
				AddRow(2, "500 Coins", 500, "4.99"))

		packages, err := catalog.ListPackages(ctx)
		require.NoError(t, err)
		assert.Len(t, packages, 2)
	})

	t.Run("dino costs are derived from name", func(t *testing.T) {
		mock.ExpectQuery("SELECT id, name, gender FROM dinos").
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "gender"}).
				AddRow(1, "Spinosaurus", "female").
				AddRow(2, "Utahraptor", "male"))

		dinos, err := catalog.ListDinos(ctx)
		require.NoError(t, err)
		require.Len(t, dinos, 2)
		assert.Equal(t, int64(2), dinos[0].CoinCost)
		assert.Equal(t, int64(1), dinos[1].CoinCost)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
