package database

import (
	"airwatch/config"
	"airwatch/models"
	"log"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// InitDB opens the GORM SQLite database according to config.Settings, applies
// connection pool settings and optional SQLite PRAGMAs, and automigrates the
// records, refresh_runs and app_settings tables.
func InitDB() error {
	var err error

	logLevel := logger.Silent
	if config.Settings.LogLevel == "DEBUG" {
		logLevel = logger.Info
	}

	dsn := sqliteDSN(config.Settings.DatabaseURL, config.Settings)
	DB, err = gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: queryMetricsLogger{inner: logger.New(
			log.New(log.Writer(), "\r\n", log.LstdFlags),
			logger.Config{
				LogLevel: logLevel,
			},
		)},
	})
	if err != nil {
		return err
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}

	pool := clampPool(poolConfig{
		maxOpenConns: config.Settings.SQLiteMaxOpenConns,
		maxIdleConns: config.Settings.SQLiteMaxIdleConns,
		maxIdleSec:   config.Settings.SQLiteConnMaxIdleSec,
		maxLifeSec:   config.Settings.SQLiteConnMaxLifeSec,
	})
	sqlDB.SetMaxIdleConns(pool.maxIdleConns)
	sqlDB.SetMaxOpenConns(pool.maxOpenConns)
	sqlDB.SetConnMaxIdleTime(time.Duration(pool.maxIdleSec) * time.Second)
	sqlDB.SetConnMaxLifetime(time.Duration(pool.maxLifeSec) * time.Second)

	// DSN parameters cover new connections; run the PRAGMAs once at startup too
	// so pre-existing database files pick them up.
	if config.Settings.SQLitePragmasEnabled {
		if config.Settings.SQLiteBusyTimeoutMS > 0 {
			DB.Exec("PRAGMA busy_timeout = ?", config.Settings.SQLiteBusyTimeoutMS)
		}
		if mode := normalizeJournalMode(config.Settings.SQLiteJournalMode); mode != "" {
			DB.Exec("PRAGMA journal_mode = " + mode)
		}
		if sync := normalizeSynchronous(config.Settings.SQLiteSynchronous); sync != "" {
			DB.Exec("PRAGMA synchronous = " + sync)
		}
		if config.Settings.SQLiteForeignKeys {
			DB.Exec("PRAGMA foreign_keys = ON")
		} else {
			DB.Exec("PRAGMA foreign_keys = OFF")
		}
	}

	if err := DB.AutoMigrate(&models.Record{}, &models.RefreshRun{}, &models.AppSetting{}); err != nil {
		return err
	}

	log.Println("Database initialized successfully")
	return nil
}

// CloseDB closes the database connection and releases resources
func CloseDB() error {
	if DB == nil {
		return nil
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}

	log.Println("Closing database connection...")
	return sqlDB.Close()
}
