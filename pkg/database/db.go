package database

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Options describes how to reach Postgres. DSN wins over the discrete fields.
type Options struct {
	DSN      string
	Host     string
	User     string
	Password string
	Name     string
	Port     string
	Debug    bool
}

func (o Options) dsn() string {
	if o.DSN != "" {
		return o.DSN
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		valueOrDefault(o.Host, "localhost"),
		valueOrDefault(o.User, "postgres"),
		o.Password,
		valueOrDefault(o.Name, "reelmate"),
		valueOrDefault(o.Port, "5432"),
	)
}

// Connect opens the gorm connection. Unique violations are translated to
// gorm.ErrDuplicatedKey so services can map them to conflicts.
func Connect(opts Options) (*gorm.DB, error) {
	logLevel := gormlogger.Warn
	if opts.Debug {
		logLevel = gormlogger.Info
	}

	db, err := gorm.Open(postgres.Open(opts.dsn()), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}

func valueOrDefault(val, fallback string) string {
	if val != "" {
		return val
	}

	return fallback
}
