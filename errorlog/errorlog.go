package errorlog

import (
	"airwatch/models"
	"sync"
	"time"
)

// Logger keeps a capped in-memory ring of recent error logs.
type Logger struct {
	logs      []*models.ErrorLog
	mu        sync.RWMutex
	maxLogs   int
	idCounter int
}

// Instance is the shared error logger.
var Instance = New(100)

// New creates a Logger holding at most maxLogs entries.
func New(maxLogs int) *Logger {
	if maxLogs <= 0 {
		maxLogs = 100
	}
	return &Logger{
		logs:    make([]*models.ErrorLog, 0, maxLogs),
		maxLogs: maxLogs,
	}
}

// SetMaxLogs adjusts capacity; existing entries beyond the new cap are evicted oldest-first.
func (l *Logger) SetMaxLogs(maxLogs int) {
	if maxLogs <= 0 {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.maxLogs = maxLogs
	for len(l.logs) > l.maxLogs {
		l.logs = l.logs[1:]
	}
}

// Log records an entry, evicting the oldest when full.
func (l *Logger) Log(level, source, message, detail string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.logs) >= l.maxLogs {
		l.logs = l.logs[1:]
	}

	l.idCounter++
	l.logs = append(l.logs, &models.ErrorLog{
		ID:        l.idCounter,
		Timestamp: time.Now(),
		Level:     level,
		Source:    source,
		Message:   message,
		Detail:    detail,
	})
}

// Recent returns logs latest-first.
func (l *Logger) Recent() []*models.ErrorLog {
	l.mu.RLock()
	defer l.mu.RUnlock()

	total := len(l.logs)
	result := make([]*models.ErrorLog, total)
	for i := 0; i < total; i++ {
		result[i] = l.logs[total-1-i]
	}
	return result
}

// Clear removes all entries.
func (l *Logger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.logs = make([]*models.ErrorLog, 0, l.maxLogs)
	l.idCounter = 0
}

// Error records an error with details on the shared logger.
func Error(source, message, detail string) {
	Instance.Log("ERROR", source, message, detail)
}

// Warn records a warning on the shared logger.
func Warn(source, message, detail string) {
	Instance.Log("WARN", source, message, detail)
}
