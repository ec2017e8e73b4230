package handlers

import (
	"airwatch/database"
	"airwatch/errorlog"
	"airwatch/models"
	"airwatch/service"
	"airwatch/state"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// renderRecords stringifies a record list for the plain-text routes,
// e.g. "[Record: 1, 2023-10-18T00:00:00Z, 12.5, Record: 2, ...]".
func renderRecords(records []models.Record) string {
	parts := make([]string, 0, len(records))
	for _, r := range records {
		parts = append(parts, r.String())
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Root lists records at or above the configured threshold as plain text.
func Root(c *gin.Context) {
	svc := service.GlobalServices.Record
	records, err := svc.List(svc.Threshold())
	if err != nil {
		c.String(http.StatusInternalServerError, err.Error())
		return
	}
	c.String(http.StatusOK, renderRecords(records))
}

// Refresh repopulates the record set from the upstream API, then returns the
// same listing as Root.
func Refresh(c *gin.Context) {
	svc := service.GlobalServices.Record
	if _, err := svc.Refresh(c.Request.Context()); err != nil {
		c.String(http.StatusInternalServerError, err.Error())
		return
	}
	Root(c)
}

// ListRecords returns a paginated JSON listing of records at or above the
// threshold. The threshold can be overridden per request via ?threshold=.
func ListRecords(c *gin.Context) {
	svc := service.GlobalServices.Record

	page := 1
	pageSize := 20
	threshold := svc.Threshold()

	if pageStr := c.Query("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			page = p
		}
	}
	if sizeStr := c.Query("page_size"); sizeStr != "" {
		if s, err := strconv.Atoi(sizeStr); err == nil && s > 0 {
			pageSize = s
		}
	}
	if thresholdStr := strings.TrimSpace(c.Query("threshold")); thresholdStr != "" {
		v, err := strconv.ParseFloat(thresholdStr, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid threshold"})
			return
		}
		threshold = v
	}

	records, total, err := svc.ListPage(page, pageSize, threshold)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":      records,
		"page":      page,
		"page_size": pageSize,
		"total":     total,
		"threshold": threshold,
	})
}

// ClearRecords wipes the records table.
func ClearRecords(c *gin.Context) {
	if err := service.GlobalServices.Record.Clear(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "message": "Records cleared"})
}

// TriggerRefresh runs the refresh workflow and returns the run summary.
func TriggerRefresh(c *gin.Context) {
	run, err := service.GlobalServices.Record.Refresh(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "run": run})
}

// GetRefreshHistory returns recent refresh runs, latest first.
func GetRefreshHistory(c *gin.Context) {
	limit := 20
	if limitStr := c.Query("limit"); limitStr != "" {
		if n, err := strconv.Atoi(limitStr); err == nil && n > 0 {
			limit = n
		}
	}

	runs, err := service.GlobalServices.Record.RefreshHistory(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, runs)
}

// HealthCheck health endpoint
func HealthCheck(c *gin.Context) {
	dbHealthy := database.SQLiteUp(c.Request.Context())
	snap := state.Global.Snapshot()

	health := gin.H{
		"status":        "healthy",
		"timestamp":     time.Now().Unix(),
		"db_healthy":    dbHealthy,
		"refreshing":    snap.Refreshing,
		"refresh_total": snap.RefreshTotal,
	}
	if !snap.LastRefreshAt.IsZero() {
		health["last_refresh_at"] = snap.LastRefreshAt.Unix()
		health["last_refresh_ok"] = snap.LastOK
	}

	if !dbHealthy {
		health["status"] = "degraded"
		c.JSON(http.StatusServiceUnavailable, health)
		return
	}

	c.JSON(http.StatusOK, health)
}

// GetErrorLogs returns recent error logs
func GetErrorLogs(c *gin.Context) {
	c.JSON(http.StatusOK, errorlog.Instance.Recent())
}

// ClearErrorLogs wipes error logs
func ClearErrorLogs(c *gin.Context) {
	errorlog.Instance.Clear()
	c.JSON(http.StatusOK, gin.H{"ok": true, "message": "Error logs cleared"})
}
