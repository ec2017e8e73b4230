package cli

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
)

// CLI is the interactive HTTP client shell
type CLI struct {
	rl      *readline.Instance
	running bool
	client  *Client
	config  *Config
}

// New creates a new CLI instance connected to serverURL
func New(serverURL string) (*CLI, error) {
	config, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load CLI config: %v", err)
	}

	client := NewClient(serverURL)

	// Test connectivity
	if err := client.HealthCheck(); err != nil {
		return nil, fmt.Errorf("cannot connect to server: %v", err)
	}

	// Create readline instance; ignore Ctrl+C
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "airwatch> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %v", err)
	}

	return &CLI{
		rl:      rl,
		running: true,
		client:  client,
		config:  config,
	}, nil
}

// Start runs the CLI loop
func (c *CLI) Start() {
	defer c.rl.Close()
	c.printWelcome()

	for c.running {
		line, err := c.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				fmt.Println("\nUse 'exit' or 'quit' to leave.")
				continue
			}
			// EOF or other error; exit
			break
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		c.handleCommand(input)
	}
}

// printWelcome prints initial banner
func (c *CLI) printWelcome() {
	PrintBanner("airwatch - CLI Mode (HTTP Client)")
	fmt.Printf("\nConnected to: %s\n", c.client.baseURL)
	fmt.Println("Type 'help' for available commands")
}

// handleCommand routes user commands
func (c *CLI) handleCommand(input string) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return
	}

	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "help", "h", "?":
		c.showHelp()
	case "records", "list", "ls":
		c.handleRecordsCommand(args)
	case "refresh":
		c.handleRefreshCommand()
	case "history", "runs":
		c.handleHistoryCommand(args)
	case "errors", "errlog":
		c.handleErrorsCommand(args)
	case "proxy":
		c.handleProxyCommand(args)
	case "server", "servers":
		c.handleServerCommand(args)
	case "status", "health", "st":
		c.handleStatusCommand()
	case "clear":
		c.clearScreen()
	case "exit", "quit", "q":
		c.handleExit()
	default:
		fmt.Printf("Unknown command: %s. Type 'help' for available commands.\n", cmd)
	}
}

// showHelp prints available commands
func (c *CLI) showHelp() {
	fmt.Println()
	PrintBanner("Available Commands")
	fmt.Println()

	commands := [][]string{
		{"help, h, ?", "Show this help message"},
		{"", ""},
		{"RECORDS:", ""},
		{"records [page]", "List measurements at or above the threshold"},
		{"records all [page]", "List all measurements (threshold 0)"},
		{"records clear", "Delete all stored measurements"},
		{"", ""},
		{"REFRESH:", ""},
		{"refresh", "Repopulate measurements from upstream"},
		{"history [n]", "Show the last n refresh runs"},
		{"", ""},
		{"DIAGNOSTICS:", ""},
		{"status", "Show server health"},
		{"errors", "Show server-side error logs"},
		{"errors clear", "Clear server-side error logs"},
		{"proxy", "Show upstream fetch proxy settings"},
		{"proxy set <url>", "Set the manual fetch proxy (http/socks5)"},
		{"proxy clear", "Clear the manual fetch proxy"},
		{"", ""},
		{"SERVERS:", ""},
		{"server list", "List saved servers"},
		{"server add <name> <url>", "Save a server"},
		{"server remove <name>", "Remove a saved server"},
		{"server use <name>", "Set the default server"},
		{"", ""},
		{"SYSTEM:", ""},
		{"clear", "Clear screen"},
		{"exit, quit, q", "Exit the program"},
	}

	for _, cmd := range commands {
		if len(cmd) == 2 && cmd[0] != "" {
			fmt.Printf("  %-26s %s\n", cmd[0], cmd[1])
		} else {
			fmt.Println()
		}
	}
}

// handleRecordsCommand handles record listing and clearing
func (c *CLI) handleRecordsCommand(args []string) {
	page := 1
	threshold := -1.0

	if len(args) > 0 {
		switch args[0] {
		case "clear":
			if err := c.client.ClearRecords(); err != nil {
				fmt.Printf("Error: %v\n", err)
				return
			}
			fmt.Println("Records cleared.")
			return
		case "all":
			threshold = 0
			args = args[1:]
		}
	}
	if len(args) > 0 {
		if p, err := strconv.Atoi(args[0]); err == nil && p > 0 {
			page = p
		}
	}

	resp, err := c.client.ListRecords(page, 20, threshold)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	if resp.Total == 0 {
		fmt.Println("No records stored. Run 'refresh' to fetch from upstream.")
		return
	}

	fmt.Println()
	PrintBanner(fmt.Sprintf("Records: %d (threshold %g)", resp.Total, resp.Threshold))
	fmt.Println()

	fmt.Printf("%-6s %-24s %-10s\n", "ID", "Datetime (UTC)", "PM2.5")
	fmt.Println(strings.Repeat("-", 44))
	for _, r := range resp.Data {
		fmt.Printf("%-6d %-24s %-10s\n", r.ID, truncate(r.Datetime, 24), strconv.FormatFloat(r.Value, 'f', -1, 64))
	}

	totalPages := (resp.Total + int64(resp.PageSize) - 1) / int64(resp.PageSize)
	if totalPages > 1 {
		fmt.Printf("\nPage %d/%d. Use 'records %d' for the next page.\n", resp.Page, totalPages, resp.Page+1)
	}
}

// handleRefreshCommand triggers a refresh and prints the run summary
func (c *CLI) handleRefreshCommand() {
	fmt.Println("Refreshing from upstream...")
	run, err := c.client.TriggerRefresh()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	status := "ok"
	if !run.UpstreamOK {
		status = "upstream failed, stored empty set"
	}
	fmt.Printf("Refresh #%d done in %dms: fetched %d, inserted %d (%s)\n",
		run.ID, run.DurationMS, run.Fetched, run.Inserted, status)
}

// handleHistoryCommand lists recent refresh runs
func (c *CLI) handleHistoryCommand(args []string) {
	limit := 10
	if len(args) > 0 {
		if n, err := strconv.Atoi(args[0]); err == nil && n > 0 {
			limit = n
		}
	}

	runs, err := c.client.GetRefreshHistory(limit)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	if len(runs) == 0 {
		fmt.Println("No refresh runs recorded yet.")
		return
	}

	fmt.Printf("%-5s %-20s %-8s %-8s %-9s %-8s %-10s\n",
		"ID", "Started", "Mode", "Fetched", "Inserted", "OK", "Duration")
	fmt.Println(strings.Repeat("-", 74))
	for _, run := range runs {
		fmt.Printf("%-5d %-20s %-8s %-8d %-9d %-8t %dms\n",
			run.ID,
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			run.Mode,
			run.Fetched,
			run.Inserted,
			run.UpstreamOK,
			run.DurationMS,
		)
	}
}

// handleErrorsCommand lists or clears server-side error logs
func (c *CLI) handleErrorsCommand(args []string) {
	if len(args) > 0 && args[0] == "clear" {
		if err := c.client.ClearErrorLogs(); err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		fmt.Println("Error logs cleared.")
		return
	}

	logs, err := c.client.GetErrorLogs()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	if len(logs) == 0 {
		fmt.Println("No error logs.")
		return
	}

	for _, entry := range logs {
		fmt.Printf("[%s] %s %s: %s\n",
			entry.Timestamp.Local().Format("2006-01-02 15:04:05"),
			entry.Level,
			entry.Source,
			entry.Message,
		)
		if entry.Detail != "" {
			fmt.Printf("    %s\n", truncate(entry.Detail, 120))
		}
	}
}

// handleProxyCommand shows or updates the upstream fetch proxy
func (c *CLI) handleProxyCommand(args []string) {
	if len(args) > 0 {
		switch args[0] {
		case "set":
			if len(args) < 2 {
				fmt.Println("Usage: proxy set <url>")
				return
			}
			if err := c.client.SetProxy(args[1]); err != nil {
				fmt.Printf("Error: %v\n", err)
				return
			}
			fmt.Println("Proxy updated. It applies to the next refresh.")
			return
		case "clear":
			if err := c.client.SetProxy(""); err != nil {
				fmt.Printf("Error: %v\n", err)
				return
			}
			fmt.Println("Manual proxy cleared.")
			return
		default:
			fmt.Println("Usage: proxy [set <url>|clear]")
			return
		}
	}

	proxy, err := c.client.GetProxy()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	fmt.Printf("Source:    %s\n", proxy.Source)
	if proxy.ManualProxy != "" {
		fmt.Printf("Manual:    %s\n", proxy.ManualProxy)
	}
	if proxy.EnvHTTPProxy != "" {
		fmt.Printf("HTTP_PROXY:  %s\n", proxy.EnvHTTPProxy)
	}
	if proxy.EnvHTTPSProxy != "" {
		fmt.Printf("HTTPS_PROXY: %s\n", proxy.EnvHTTPSProxy)
	}
	if proxy.EnvAllProxy != "" {
		fmt.Printf("ALL_PROXY:   %s\n", proxy.EnvAllProxy)
	}
	if proxy.EffectiveProxy != "" {
		fmt.Printf("Effective: %s\n", proxy.EffectiveProxy)
	} else {
		fmt.Println("Effective: direct connection")
	}
}

// handleServerCommand manages the saved server list
func (c *CLI) handleServerCommand(args []string) {
	if len(args) == 0 {
		args = []string{"list"}
	}

	switch args[0] {
	case "list", "ls":
		servers := c.config.ListServers()
		if len(servers) == 0 {
			fmt.Println("No servers saved.")
			return
		}
		for name, server := range servers {
			marker := " "
			if name == c.config.DefaultServer {
				marker = "*"
			}
			fmt.Printf("%s %-15s %s  %s\n", marker, name, server.URL, server.Description)
		}
	case "add":
		if len(args) < 3 {
			fmt.Println("Usage: server add <name> <url> [description]")
			return
		}
		description := strings.Join(args[3:], " ")
		if err := c.config.AddServer(args[1], args[2], description); err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		fmt.Printf("Server '%s' saved.\n", args[1])
	case "remove", "rm":
		if len(args) < 2 {
			fmt.Println("Usage: server remove <name>")
			return
		}
		if err := c.config.RemoveServer(args[1]); err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		fmt.Printf("Server '%s' removed.\n", args[1])
	case "use", "default":
		if len(args) < 2 {
			fmt.Println("Usage: server use <name>")
			return
		}
		if err := c.config.SetDefault(args[1]); err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		fmt.Printf("Default server set to '%s'. Restart the CLI to switch.\n", args[1])
	default:
		fmt.Printf("Unknown server command: %s\n", args[0])
	}
}

// handleStatusCommand prints the server health payload
func (c *CLI) handleStatusCommand() {
	health, err := c.client.GetHealth()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	fmt.Printf("Status:        %v\n", health["status"])
	fmt.Printf("DB healthy:    %v\n", health["db_healthy"])
	fmt.Printf("Refreshing:    %v\n", health["refreshing"])
	fmt.Printf("Refresh total: %v\n", health["refresh_total"])
	if v, ok := health["last_refresh_ok"]; ok {
		fmt.Printf("Last refresh:  ok=%v\n", v)
	}
}

// clearScreen clears the terminal
func (c *CLI) clearScreen() {
	var cmd *exec.Cmd
	if runtime.GOOS == "windows" {
		cmd = exec.Command("cmd", "/c", "cls")
	} else {
		cmd = exec.Command("clear")
	}
	cmd.Stdout = os.Stdout
	_ = cmd.Run()
}

// handleExit exits the CLI loop
func (c *CLI) handleExit() {
	fmt.Println("Bye.")
	c.running = false
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
