package db

import (
	"context"
	"fmt"
	"time"

	"github.com/scienceol/chemtrack/pkg/middleware/logger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"
)

type LogConf struct {
	Level string
}

type Config struct {
	Host         string
	Port         int
	User         string
	PW           string
	DBName       string
	MaxOpenConns int
	MaxIdleConns int
	LogConf      LogConf
}

type txKey struct{}

type Datastore struct {
	db *gorm.DB
}

var store *Datastore

func gormLevel(level string) gormLogger.LogLevel {
	switch level {
	case "debug":
		return gormLogger.Info
	case "warn", "info":
		return gormLogger.Warn
	default:
		return gormLogger.Error
	}
}

func InitPostgres(ctx context.Context, conf *Config) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
		conf.Host, conf.Port, conf.User, conf.PW, conf.DBName)
	d, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:                 gormLogger.Default.LogMode(gormLevel(conf.LogConf.Level)),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		logger.Fatalf(ctx, "open postgres err: %+v", err)
	}
	if err := d.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
		logger.Fatalf(ctx, "register gorm tracing plugin err: %+v", err)
	}

	sqlDB, err := d.DB()
	if err != nil {
		logger.Fatalf(ctx, "get sql db err: %+v", err)
	}
	sqlDB.SetMaxOpenConns(conf.MaxOpenConns)
	sqlDB.SetMaxIdleConns(conf.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Hour)
	if err := sqlDB.PingContext(ctx); err != nil {
		logger.Fatalf(ctx, "ping postgres err: %+v", err)
	}

	store = &Datastore{db: d}
	logger.Infof(ctx, "postgres connected %s:%d/%s", conf.Host, conf.Port, conf.DBName)
}

func ClosePostgres(ctx context.Context) {
	if store == nil {
		return
	}
	if sqlDB, err := store.db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Errorf(ctx, "close postgres err: %+v", err)
		}
	}
}

// DB returns nil until InitPostgres ran.
func DB() *Datastore {
	return store
}

func (d *Datastore) DBIns() *gorm.DB {
	return d.db
}

// DBWithContext returns the transaction bound to ctx by ExecTx, or a fresh session.
func (d *Datastore) DBWithContext(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok && tx != nil {
		return tx.WithContext(ctx)
	}
	return d.db.WithContext(ctx)
}

// ExecTx runs fn in a transaction. Nested calls join the outer transaction.
func (d *Datastore) ExecTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok && tx != nil {
		return fn(ctx)
	}
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}
