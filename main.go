package main

import (
	"airwatch/cli"
	"airwatch/config"
	"airwatch/database"
	"airwatch/errorlog"
	"airwatch/handlers"
	"airwatch/openaq"
	"airwatch/service"
	"airwatch/state"
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log"
	"net"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

//go:embed static/*
var staticFiles embed.FS

func main() {
	// Load environment variables and parse CLI flags
	config.ParseFlags()

	logFile, err := setupLogging(config.Settings.LogFilePath)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	if logFile != nil {
		defer logFile.Close()
	}

	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	// Check if CLI mode is requested
	if config.Settings.CLIMode {
		mainCLI()
		return
	}

	log.Println("System starting up...")

	errorlog.Instance.SetMaxLogs(config.Settings.MaxErrorLogs)

	// Initialize database
	if err := database.InitDB(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Upstream fetcher: the proxy URL is re-resolved on every fetch so that
	// changes made via the API take effect immediately.
	fetcher := openaq.NewDynamicClient(
		config.Settings.APIBaseURL,
		config.Settings.APIParameter,
		config.Settings.APILimit,
		time.Duration(config.Settings.APITimeoutSeconds)*time.Second,
		func() string {
			manual, _ := handlers.ManualFetchProxyURL()
			effective, _ := openaq.ChooseEffectiveProxy(manual, openaq.ReadProxyEnv())
			return effective
		},
	)

	// Initialize services
	service.InitServices(database.DB, fetcher, state.Global, config.Settings.Threshold, config.Settings.RefreshMode)

	// Start goroutine monitor
	go monitorGoroutines()

	// Set Gin mode
	if config.Settings.LogLevel != "DEBUG" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Direct Gin logs to the configured log file
	gin.DefaultWriter = log.Writer()
	gin.DefaultErrorWriter = log.Writer()
	gin.DisableConsoleColor()

	// Create router
	r := gin.Default()

	// CORS middleware
	r.Use(cors.New(cors.Config{
		AllowAllOrigins:  true,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"*"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	// Static dashboard using embedded FS
	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		log.Fatalf("Failed to create static file system: %v", err)
	}
	r.StaticFS("/web", http.FS(staticFS))

	// Plain-text dashboard routes
	r.GET("/", handlers.Root)
	r.GET("/refresh", handlers.Refresh)

	// API routes
	api := r.Group("/api")
	{
		// Record routes
		api.GET("/records", handlers.ListRecords)
		api.DELETE("/records", handlers.ClearRecords)

		// Refresh routes
		api.POST("/refresh", handlers.TriggerRefresh)
		api.GET("/refreshes", handlers.GetRefreshHistory)

		// Fetch proxy routes
		api.GET("/proxy", handlers.GetFetchProxy)
		api.PUT("/proxy", handlers.SetFetchProxy)

		// Error log routes
		api.GET("/error-logs", handlers.GetErrorLogs)
		api.DELETE("/error-logs", handlers.ClearErrorLogs)

		// Health and metrics routes
		api.GET("/health", handlers.HealthCheck)
		api.GET("/metrics", handlers.GetMetrics)
		api.GET("/metrics/prometheus", handlers.GetPrometheusMetrics)
	}

	// Find an available port
	port := findAvailablePort(config.Settings.Port)
	if port != config.Settings.Port {
		log.Printf("Default port %d is busy. Switched to %d", config.Settings.Port, port)
	}

	// Create HTTP server
	addr := fmt.Sprintf("0.0.0.0:%d", port)
	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on http://127.0.0.1:%d", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Optionally open the dashboard in a browser
	if config.Settings.OpenBrowser {
		go func() {
			time.Sleep(1500 * time.Millisecond)
			openBrowser(fmt.Sprintf("http://127.0.0.1:%d/web/index.html", port))
		}()
	}

	// Wait for OS interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Received interrupt signal")

	log.Println("System shutting down...")

	// Close database connection
	if err := database.CloseDB(); err != nil {
		log.Printf("Error closing database: %v", err)
	}

	// Gracefully shut down HTTP server
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

// findAvailablePort searches for an available port
func findAvailablePort(startPort int) int {
	for port := startPort; port < startPort+100; port++ {
		addr := fmt.Sprintf("0.0.0.0:%d", port)
		listener, err := net.Listen("tcp", addr)
		if err == nil {
			listener.Close()
			return port
		}
	}
	log.Fatal("No available ports found")
	return startPort
}

// openBrowser opens the default browser
func openBrowser(url string) {
	var err error
	switch {
	case fileExists("/usr/bin/xdg-open"):
		err = runCommand("xdg-open", url)
	case fileExists("/usr/bin/open"):
		err = runCommand("open", url)
	default:
		// Windows
		err = runCommand("cmd", "/c", "start", url)
	}
	if err != nil {
		log.Printf("Failed to open browser: %v", err)
		log.Printf("Please manually open: %s", url)
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func runCommand(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}

	// Wait asynchronously to avoid zombie processes
	go func() {
		if err := cmd.Wait(); err != nil {
			log.Printf("Browser process exited with error: %v", err)
		}
	}()

	return nil
}

// monitorGoroutines tracks goroutine count to prevent leaks
func monitorGoroutines() {
	ticker := time.NewTicker(time.Duration(config.Settings.GoroutineMonitorIntervalSeconds) * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		count := runtime.NumGoroutine()
		if count > config.Settings.GoroutineWarnThreshold {
			log.Printf("WARNING: High goroutine count detected: %d", count)
		} else if config.Settings.LogLevel == "DEBUG" {
			log.Printf("Current goroutine count: %d", count)
		}
	}
}

// mainCLI entrypoint for CLI (HTTP client mode)
func mainCLI() {
	// CLI mode skips DB load; acts as HTTP client
	log.SetFlags(log.Ldate | log.Ltime)

	serverURL := config.Settings.CLIServer

	fmt.Printf("airwatch CLI - Connecting to %s\n", serverURL)

	cliInstance, err := cli.New(serverURL)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		fmt.Println("\nTips:")
		fmt.Println("  1. Make sure the airwatch server is running:")
		fmt.Println("     ./airwatch")
		fmt.Println("  2. Or specify a different server:")
		fmt.Printf("     ./airwatch --cli --server http://your-server:8655\n")
		os.Exit(1)
	}

	// Start CLI loop (readline handles Ctrl+C automatically)
	cliInstance.Start()
}
