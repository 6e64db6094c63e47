package db

import (
	"testing"

	"github.com/chantierpro/finance/internal/config"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestDialect(t *testing.T) {
	for kind, want := range map[string]string{
		"postgres": "postgres",
		"MariaDB":  "mysql",
		"sqlite":   "sqlite",
	} {
		d, err := Dialect(config.Config{DBType: kind, DBName: "chantierpro"})
		require.NoError(t, err, kind)
		assert.Equal(t, want, d.Name())
	}

	_, err := Dialect(config.Config{DBType: "oracle"})
	assert.ErrorIs(t, err, ErrUnsupportedDialect)
}

func TestDSNEscapeCredentials(t *testing.T) {
	cfg := config.Config{
		DBHost: "db", DBPort: "5432", DBName: "chantierpro",
		DBUser: "compta", DBPassword: "p@ss word", DBSSLMode: "require",
	}
	assert.Equal(t, "postgres://compta:p%40ss%20word@db:5432/chantierpro?TimeZone=UTC&sslmode=require", postgresDSN(cfg))

	cfg.DBPort = "3306"
	dsn := mysqlDSN(cfg)
	assert.Contains(t, dsn, "compta:p@ss word@tcp(db:3306)/chantierpro?")
	assert.Contains(t, dsn, "parseTime=true")
	assert.Contains(t, dsn, "charset=utf8mb4")
}

func TestApplyPool(t *testing.T) {
	gdb, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, ApplyPool(gdb, PoolConfig{MaxIdleConn: 2, MaxOpenConn: 3, ConnMaxLifetime: 10}))
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	assert.Equal(t, 3, sqlDB.Stats().MaxOpenConnections)
}

func TestPoolFromConfig(t *testing.T) {
	pool := PoolFromConfig(config.Config{DBMaxIdleConn: 5, DBConnMaxIdleTime: 60})
	assert.Equal(t, 5, pool.MaxIdleConn)
	assert.Equal(t, 60, pool.ConnMaxIdleTime)
	assert.Zero(t, seconds(-1))
}
