package database

import (
	"airwatch/config"
	"fmt"
	"net/url"
	"strings"
)

type poolConfig struct {
	maxOpenConns int
	maxIdleConns int
	maxIdleSec   int
	maxLifeSec   int
}

// clampPool enforces sane bounds: at least one open connection, idle conns
// within [0, open], non-negative lifetimes.
func clampPool(cfg poolConfig) poolConfig {
	if cfg.maxOpenConns < 1 {
		cfg.maxOpenConns = 1
	}
	if cfg.maxIdleConns < 0 {
		cfg.maxIdleConns = 0
	}
	if cfg.maxIdleConns > cfg.maxOpenConns {
		cfg.maxIdleConns = cfg.maxOpenConns
	}
	if cfg.maxIdleSec < 0 {
		cfg.maxIdleSec = 0
	}
	if cfg.maxLifeSec < 0 {
		cfg.maxLifeSec = 0
	}
	return cfg
}

// sqliteDSN builds the SQLite DSN for dbPath, appending _pragma query
// parameters (busy_timeout, journal_mode, synchronous, foreign_keys) when
// PRAGMAs are enabled. Existing query parameters in dbPath are preserved.
func sqliteDSN(dbPath string, settings *config.Config) string {
	base, rawQuery, _ := strings.Cut(dbPath, "?")

	query, _ := url.ParseQuery(rawQuery)

	if settings.SQLitePragmasEnabled {
		if settings.SQLiteBusyTimeoutMS > 0 {
			query.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", settings.SQLiteBusyTimeoutMS))
		}
		if mode := normalizeJournalMode(settings.SQLiteJournalMode); mode != "" {
			query.Add("_pragma", fmt.Sprintf("journal_mode(%s)", mode))
		}
		if sync := normalizeSynchronous(settings.SQLiteSynchronous); sync != "" {
			query.Add("_pragma", fmt.Sprintf("synchronous(%s)", sync))
		}
		if settings.SQLiteForeignKeys {
			query.Add("_pragma", "foreign_keys(1)")
		} else {
			query.Add("_pragma", "foreign_keys(0)")
		}
	}

	if len(query) == 0 {
		return base
	}
	return base + "?" + query.Encode()
}

// normalizeJournalMode uppercases and validates a journal_mode value.
// Accepted modes: WAL, DELETE, TRUNCATE, PERSIST, MEMORY, OFF.
func normalizeJournalMode(value string) string {
	value = strings.ToUpper(strings.TrimSpace(value))
	switch value {
	case "WAL", "DELETE", "TRUNCATE", "PERSIST", "MEMORY", "OFF":
		return value
	default:
		return ""
	}
}

// normalizeSynchronous uppercases and validates a synchronous value.
// Accepted: OFF, NORMAL, FULL, EXTRA or the numeric strings 0-3.
func normalizeSynchronous(value string) string {
	value = strings.ToUpper(strings.TrimSpace(value))
	switch value {
	case "OFF", "NORMAL", "FULL", "EXTRA", "0", "1", "2", "3":
		return value
	default:
		return ""
	}
}
