package handlers

import (
	"airwatch/database"
	"airwatch/service"
	"airwatch/state"
	"airwatch/version"
	"bytes"
	"fmt"
	"net/http"
	"runtime"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

type metricsSnapshot struct {
	timestamp    int64
	recordsTotal int64
	refresh      state.Status
	mem          runtime.MemStats
}

func collectMetricsSnapshot() metricsSnapshot {
	recordsTotal, err := service.GlobalServices.Record.Count()
	if err != nil {
		recordsTotal = -1
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	return metricsSnapshot{
		timestamp:    time.Now().Unix(),
		recordsTotal: recordsTotal,
		refresh:      state.Global.Snapshot(),
		mem:          mem,
	}
}

// GetMetrics gathers system metrics as JSON
func GetMetrics(c *gin.Context) {
	s := collectMetricsSnapshot()

	metrics := gin.H{
		"timestamp": s.timestamp,
		"records": gin.H{
			"total": s.recordsTotal,
		},
		"refresh": gin.H{
			"total":         s.refresh.RefreshTotal,
			"in_progress":   s.refresh.Refreshing,
			"last_fetched":  s.refresh.LastFetched,
			"last_inserted": s.refresh.LastInserted,
			"last_ok":       s.refresh.LastOK,
		},
		"sqlite": gin.H{
			"busy_errors":   database.SQLiteBusyErrorsTotal(),
			"locked_errors": database.SQLiteLockedErrorsTotal(),
		},
		"system": gin.H{
			"goroutines":   runtime.NumGoroutine(),
			"memory_alloc": s.mem.Alloc,
			"memory_total": s.mem.TotalAlloc,
			"memory_sys":   s.mem.Sys,
			"gc_runs":      s.mem.NumGC,
		},
	}

	if !s.refresh.LastRefreshAt.IsZero() {
		metrics["refresh"].(gin.H)["last_at"] = s.refresh.LastRefreshAt.Unix()
	}

	c.JSON(http.StatusOK, metrics)
}

func promLabelEscape(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}

// GetPrometheusMetrics writes Prometheus-formatted metrics for scraping.
func GetPrometheusMetrics(c *gin.Context) {
	s := collectMetricsSnapshot()

	var buf bytes.Buffer

	buf.WriteString("# HELP airwatch_build_info Build information.\n")
	buf.WriteString("# TYPE airwatch_build_info gauge\n")
	fmt.Fprintf(
		&buf,
		"airwatch_build_info{version=\"%s\",commit=\"%s\",build_time=\"%s\"} 1\n",
		promLabelEscape(version.Version),
		promLabelEscape(version.CommitHash),
		promLabelEscape(version.BuildTime),
	)

	buf.WriteString("# HELP airwatch_sqlite_up SQLite connectivity (1=up, 0=down).\n")
	buf.WriteString("# TYPE airwatch_sqlite_up gauge\n")
	if database.SQLiteUp(c.Request.Context()) {
		buf.WriteString("airwatch_sqlite_up 1\n")
	} else {
		buf.WriteString("airwatch_sqlite_up 0\n")
	}

	buf.WriteString("# HELP airwatch_sqlite_busy_errors_total Total SQLite busy errors observed.\n")
	buf.WriteString("# TYPE airwatch_sqlite_busy_errors_total counter\n")
	fmt.Fprintf(&buf, "airwatch_sqlite_busy_errors_total %d\n", database.SQLiteBusyErrorsTotal())

	buf.WriteString("# HELP airwatch_sqlite_locked_errors_total Total SQLite locked errors observed.\n")
	buf.WriteString("# TYPE airwatch_sqlite_locked_errors_total counter\n")
	fmt.Fprintf(&buf, "airwatch_sqlite_locked_errors_total %d\n", database.SQLiteLockedErrorsTotal())

	buf.WriteString("# HELP airwatch_records_total Number of stored measurement records.\n")
	buf.WriteString("# TYPE airwatch_records_total gauge\n")
	fmt.Fprintf(&buf, "airwatch_records_total %d\n", s.recordsTotal)

	buf.WriteString("# HELP airwatch_refresh_runs_total Total refresh operations since startup.\n")
	buf.WriteString("# TYPE airwatch_refresh_runs_total counter\n")
	fmt.Fprintf(&buf, "airwatch_refresh_runs_total %d\n", s.refresh.RefreshTotal)

	buf.WriteString("# HELP airwatch_refresh_in_progress Whether a refresh is currently running.\n")
	buf.WriteString("# TYPE airwatch_refresh_in_progress gauge\n")
	if s.refresh.Refreshing {
		buf.WriteString("airwatch_refresh_in_progress 1\n")
	} else {
		buf.WriteString("airwatch_refresh_in_progress 0\n")
	}

	if !s.refresh.LastRefreshAt.IsZero() {
		buf.WriteString("# HELP airwatch_last_refresh_timestamp_seconds Unix time of the last refresh.\n")
		buf.WriteString("# TYPE airwatch_last_refresh_timestamp_seconds gauge\n")
		fmt.Fprintf(&buf, "airwatch_last_refresh_timestamp_seconds %d\n", s.refresh.LastRefreshAt.Unix())
	}

	buf.WriteString("# HELP airwatch_go_goroutines Number of goroutines.\n")
	buf.WriteString("# TYPE airwatch_go_goroutines gauge\n")
	fmt.Fprintf(&buf, "airwatch_go_goroutines %d\n", runtime.NumGoroutine())

	buf.WriteString("# HELP airwatch_memory_alloc_bytes Bytes of allocated heap objects.\n")
	buf.WriteString("# TYPE airwatch_memory_alloc_bytes gauge\n")
	fmt.Fprintf(&buf, "airwatch_memory_alloc_bytes %d\n", s.mem.Alloc)

	buf.WriteString("# HELP airwatch_memory_sys_bytes Bytes obtained from the OS.\n")
	buf.WriteString("# TYPE airwatch_memory_sys_bytes gauge\n")
	fmt.Fprintf(&buf, "airwatch_memory_sys_bytes %d\n", s.mem.Sys)

	buf.WriteString("# HELP airwatch_gc_runs_total Number of completed GC cycles.\n")
	buf.WriteString("# TYPE airwatch_gc_runs_total counter\n")
	fmt.Fprintf(&buf, "airwatch_gc_runs_total %d\n", s.mem.NumGC)

	c.Data(http.StatusOK, "text/plain; version=0.0.4; charset=utf-8", buf.Bytes())
}
