package db

import (
	"fmt"

	"github.com/chantierpro/finance/internal/config"
	"github.com/chantierpro/finance/internal/observability/logger"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormprometheus "gorm.io/plugin/prometheus"
)

// Open connects to the configured database with tracing and pool metrics.
func Open(cfg config.Config, log *zap.Logger) (*gorm.DB, error) {
	dialector, err := Dialect(cfg)
	if err != nil {
		return nil, err
	}
	gdb, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.NewGormLogger(log, logger.DefaultGormLoggerConfig()),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.DBType, err)
	}
	if err := Instrument(gdb, cfg.DBName); err != nil {
		return nil, err
	}
	if err := ApplyPool(gdb, PoolFromConfig(cfg)); err != nil {
		return nil, err
	}
	return gdb, nil
}

// Instrument installs the otel tracing and prometheus stats plugins.
func Instrument(gdb *gorm.DB, name string) error {
	if err := gdb.Use(otelgorm.NewPlugin(otelgorm.WithDBName(name))); err != nil {
		return fmt.Errorf("otelgorm: %w", err)
	}
	if err := gdb.Use(gormprometheus.New(gormprometheus.Config{
		DBName:          name,
		RefreshInterval: 15,
	})); err != nil {
		return fmt.Errorf("gorm prometheus: %w", err)
	}
	return nil
}

func ApplyPool(gdb *gorm.DB, pool PoolConfig) error {
	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}
	if pool.MaxIdleConn > 0 {
		sqlDB.SetMaxIdleConns(pool.MaxIdleConn)
	}
	if pool.MaxOpenConn > 0 {
		sqlDB.SetMaxOpenConns(pool.MaxOpenConn)
	}
	sqlDB.SetConnMaxLifetime(seconds(pool.ConnMaxLifetime))
	sqlDB.SetConnMaxIdleTime(seconds(pool.ConnMaxIdleTime))
	return nil
}
