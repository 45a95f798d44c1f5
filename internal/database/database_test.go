package database

import (
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yukikurage/todo-tracker/internal/config"
	"github.com/yukikurage/todo-tracker/internal/models"
)

func TestDialector(t *testing.T) {
	for _, driver := range []string{config.DriverMySQL, config.DriverPostgres, config.DriverSQLite} {
		d, err := Dialector(&config.Config{StorageDriver: driver, SQLitePath: ":memory:"})
		require.NoError(t, err, driver)
		assert.Equal(t, driver, d.Name())
	}

	_, err := Dialector(&config.Config{StorageDriver: config.DriverMongo})
	assert.Error(t, err)
}

func TestConnectAndMigrateSQLite(t *testing.T) {
	logger := logrus.New()
	cfg := &config.Config{
		StorageDriver: config.DriverSQLite,
		SQLitePath:    filepath.Join(t.TempDir(), "todos.db"),
		GinMode:       "test",
	}

	db, err := Connect(cfg, logger)
	require.NoError(t, err)
	require.NoError(t, Migrate(db, logger))
	assert.True(t, db.Migrator().HasTable(&models.Todo{}))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.Close()
}

func TestNewRedisClient(t *testing.T) {
	assert.Nil(t, NewRedisClient(&config.Config{}))

	client := NewRedisClient(&config.Config{RedisAddr: "redis://localhost:6380/2"})
	require.NotNil(t, client)
	assert.Equal(t, "localhost:6380", client.Options().Addr)
	assert.Equal(t, 2, client.Options().DB)

	client = NewRedisClient(&config.Config{RedisAddr: "cache.internal:6379,password=s3cret,ssl=true"})
	require.NotNil(t, client)
	assert.Equal(t, "cache.internal:6379", client.Options().Addr)
	assert.Equal(t, "s3cret", client.Options().Password)
	assert.NotNil(t, client.Options().TLSConfig)
}
