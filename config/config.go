package config

import (
	"airwatch/version"
	"flag"
	"fmt"
	"os"
	"strconv"
)

// Config holds airwatch runtime configuration.
type Config struct {
	LogLevel             string
	LogFilePath          string
	Port                 int
	DatabaseURL          string
	SQLitePragmasEnabled bool
	SQLiteBusyTimeoutMS  int
	SQLiteJournalMode    string
	SQLiteSynchronous    string
	SQLiteForeignKeys    bool
	SQLiteMaxOpenConns   int
	SQLiteMaxIdleConns   int
	SQLiteConnMaxIdleSec int
	SQLiteConnMaxLifeSec int

	// Upstream measurements API
	APIBaseURL        string
	APIParameter      string
	APILimit          int
	APITimeoutSeconds int

	// Dashboard behavior
	Threshold   float64
	RefreshMode string // "replace" (transactional wipe+insert) or "drop" (drop/recreate table)
	OpenBrowser bool

	// Tunable limits
	MaxErrorLogs                    int
	GoroutineMonitorIntervalSeconds int
	GoroutineWarnThreshold          int

	CLIMode   bool
	CLIServer string // Server URL for CLI mode
}

// Settings is the global configuration instance populated from environment variables and flags.
var Settings *Config

func init() {
	Settings = &Config{
		LogLevel:             getEnv("LOG_LEVEL", "INFO"),
		LogFilePath:          getEnv("LOG_FILE", "./airwatch.log"),
		Port:                 getEnvInt("PORT", 8655),
		DatabaseURL:          getEnv("DATABASE_URL", "airwatch.db"),
		SQLitePragmasEnabled: getEnvBool("SQLITE_PRAGMAS_ENABLED", true),
		SQLiteBusyTimeoutMS:  getEnvInt("SQLITE_BUSY_TIMEOUT_MS", 5000),
		SQLiteJournalMode:    getEnv("SQLITE_JOURNAL_MODE", "WAL"),
		SQLiteSynchronous:    getEnv("SQLITE_SYNCHRONOUS", "NORMAL"),
		SQLiteForeignKeys:    getEnvBool("SQLITE_FOREIGN_KEYS", true),
		SQLiteMaxOpenConns:   getEnvInt("SQLITE_MAX_OPEN_CONNS", 1),
		SQLiteMaxIdleConns:   getEnvInt("SQLITE_MAX_IDLE_CONNS", 1),
		SQLiteConnMaxIdleSec: getEnvInt("SQLITE_CONN_MAX_IDLE_SECONDS", 300),
		SQLiteConnMaxLifeSec: getEnvInt("SQLITE_CONN_MAX_LIFETIME_SECONDS", 0),

		APIBaseURL:        getEnv("API_BASE_URL", "https://api.openaq.org/v1"),
		APIParameter:      getEnv("API_PARAMETER", "pm25"),
		APILimit:          getEnvInt("API_LIMIT", 100),
		APITimeoutSeconds: getEnvInt("API_TIMEOUT_SECONDS", 10),

		Threshold:   getEnvFloat("THRESHOLD", 10),
		RefreshMode: getEnv("REFRESH_MODE", "replace"),
		OpenBrowser: getEnvBool("OPEN_BROWSER", false),

		MaxErrorLogs:                    getEnvInt("MAX_ERROR_LOGS", 100),
		GoroutineMonitorIntervalSeconds: getEnvInt("GOROUTINE_MONITOR_INTERVAL_SECONDS", 30),
		GoroutineWarnThreshold:          getEnvInt("GOROUTINE_WARN_THRESHOLD", 1000),

		CLIMode: getEnvBool("CLI_MODE", false),
	}
}

// ParseFlags parses command-line flags, applies any overrides to the package-level Settings,
// and handles --help and --version (both print and exit).
func ParseFlags() {
	flag.Usage = func() {
		out := flag.CommandLine.Output()
		fmt.Fprintf(out, "airwatch - PM2.5 air quality dashboard\n\n")
		fmt.Fprintf(out, "Usage: %s [options]\n\n", os.Args[0])
		fmt.Fprintln(out, "Options:")
		flag.PrintDefaults()
		fmt.Fprintln(out, "\nEnvironment variables:")
		fmt.Fprintln(out, "  LOG_LEVEL                         Log level (DEBUG, INFO, WARN, ERROR)")
		fmt.Fprintln(out, "  LOG_FILE                          Log file path (default ./airwatch.log)")
		fmt.Fprintln(out, "  PORT                              HTTP server port (default 8655)")
		fmt.Fprintln(out, "  DATABASE_URL                      SQLite database path (default airwatch.db)")
		fmt.Fprintln(out, "  SQLITE_PRAGMAS_ENABLED            Enable SQLite PRAGMAs (true/false, default true)")
		fmt.Fprintln(out, "  SQLITE_BUSY_TIMEOUT_MS            SQLite busy_timeout in milliseconds (default 5000)")
		fmt.Fprintln(out, "  SQLITE_JOURNAL_MODE               SQLite journal_mode (default WAL)")
		fmt.Fprintln(out, "  SQLITE_SYNCHRONOUS                SQLite synchronous (default NORMAL)")
		fmt.Fprintln(out, "  SQLITE_FOREIGN_KEYS               Enable SQLite foreign_keys (true/false, default true)")
		fmt.Fprintln(out, "  SQLITE_MAX_OPEN_CONNS             SQLite MaxOpenConns (default 1)")
		fmt.Fprintln(out, "  SQLITE_MAX_IDLE_CONNS             SQLite MaxIdleConns (default 1)")
		fmt.Fprintln(out, "  API_BASE_URL                      Measurements API base URL (default https://api.openaq.org/v1)")
		fmt.Fprintln(out, "  API_PARAMETER                     Pollutant parameter to fetch (default pm25)")
		fmt.Fprintln(out, "  API_LIMIT                         Max measurements per fetch (default 100)")
		fmt.Fprintln(out, "  API_TIMEOUT_SECONDS               Upstream fetch timeout in seconds (default 10)")
		fmt.Fprintln(out, "  THRESHOLD                         Risky-value threshold for the dashboard (default 10)")
		fmt.Fprintln(out, "  REFRESH_MODE                      replace | drop (default replace)")
		fmt.Fprintln(out, "  OPEN_BROWSER                      Open the dashboard in a browser on startup (default false)")
		fmt.Fprintln(out, "  MAX_ERROR_LOGS                    Maximum in-memory error logs (default 100)")
		fmt.Fprintln(out, "  GOROUTINE_MONITOR_INTERVAL_SECONDS Interval seconds for goroutine monitor (default 30)")
		fmt.Fprintln(out, "  GOROUTINE_WARN_THRESHOLD          Goroutine count warning threshold (default 1000)")
	}

	port := flag.Int("port", Settings.Port, "HTTP server port (overrides PORT)")
	db := flag.String("db", Settings.DatabaseURL, "SQLite database path (overrides DATABASE_URL)")
	logLevel := flag.String("log-level", Settings.LogLevel, "Log level: DEBUG, INFO, WARN, ERROR (overrides LOG_LEVEL)")
	logFile := flag.String("log-file", Settings.LogFilePath, "Log file path (overrides LOG_FILE)")
	apiBaseURL := flag.String("api-base-url", Settings.APIBaseURL, "Measurements API base URL (overrides API_BASE_URL)")
	apiParameter := flag.String("api-parameter", Settings.APIParameter, "Pollutant parameter to fetch (overrides API_PARAMETER)")
	apiLimit := flag.Int("api-limit", Settings.APILimit, "Max measurements per fetch (overrides API_LIMIT)")
	threshold := flag.Float64("threshold", Settings.Threshold, "Risky-value threshold (overrides THRESHOLD)")
	refreshMode := flag.String("refresh-mode", Settings.RefreshMode, "Refresh mode: replace or drop (overrides REFRESH_MODE)")
	openBrowser := flag.Bool("open-browser", Settings.OpenBrowser, "Open the dashboard in a browser on startup (overrides OPEN_BROWSER)")
	sqlitePragmasEnabled := flag.Bool("sqlite-pragmas", Settings.SQLitePragmasEnabled, "Enable SQLite PRAGMAs (overrides SQLITE_PRAGMAS_ENABLED)")
	cliMode := flag.Bool("cli", Settings.CLIMode, "Run in CLI mode (HTTP client only, no database)")
	cliServer := flag.String("server", "http://localhost:8655", "Server URL for CLI mode")

	showHelp := flag.Bool("help", false, "Show help and exit")
	showVersion := flag.Bool("version", false, "Show version and exit")

	flag.Parse()

	if *showVersion {
		fmt.Println(version.GetBuildInfo())
		os.Exit(0)
	}

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	Settings.Port = *port
	Settings.DatabaseURL = *db
	Settings.LogLevel = *logLevel
	Settings.LogFilePath = *logFile
	Settings.APIBaseURL = *apiBaseURL
	Settings.APIParameter = *apiParameter
	Settings.APILimit = *apiLimit
	Settings.Threshold = *threshold
	Settings.RefreshMode = *refreshMode
	Settings.OpenBrowser = *openBrowser
	Settings.SQLitePragmasEnabled = *sqlitePragmasEnabled
	Settings.CLIMode = *cliMode
	Settings.CLIServer = *cliServer
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
