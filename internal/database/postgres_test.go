package database

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestGetConfig(t *testing.T) {
	viper.Reset()
	viper.Set("database.host", "db.internal")
	viper.Set("database.name", "store")

	config := GetConfig()
	assert.Equal(t, "db.internal", config.Host)
	assert.Equal(t, "5432", config.Port)
	assert.Equal(t, 25, config.MaxOpenConns)
	assert.Equal(t, "host=db.internal port=5432 user=postgres password=password dbname=store sslmode=disable", config.DSN())
}

func TestMigrationsEmbedded(t *testing.T) {
	data, err := migrations.ReadFile("migrations/00001_init.sql")
	assert.NoError(t, err)
	assert.Contains(t, string(data), "CREATE TABLE IF NOT EXISTS ledger_entries")
	assert.Contains(t, string(data), "-- +goose Up")
}

func TestSeedMigrationEmbedded(t *testing.T) {
	data, err := migrations.ReadFile("migrations/00002_seed_catalog.sql")
	assert.NoError(t, err)
	assert.Contains(t, string(data), "INSERT INTO coin_packages")
	assert.Contains(t, string(data), "-- +goose Down")
}
