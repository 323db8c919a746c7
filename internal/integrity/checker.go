// Package integrity implements the data health report behind the
// check_integrity command. Every check is independent: failures are
// reported and checking continues, with a single pass/fail aggregate
// deciding the process exit code.
package integrity

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"go.uber.org/zap"

	"github.com/hetulpatel/intellichat/internal/config"
	"github.com/hetulpatel/intellichat/internal/logging"
	sqlstore "github.com/hetulpatel/intellichat/internal/storage/sqlite"
)

var requiredTables = []string{"conversations", "messages", "model_usage"}

const (
	logWarnMB    = 10
	logArchiveMB = 100

	vacuumSuggestMB  = 100
	archiveSuggestMB = 50
)

// Checker runs the diagnostic suite against one database and log directory.
type Checker struct {
	cfg config.Config
	out io.Writer

	header  *color.Color
	success *color.Color
	warning *color.Color
	failure *color.Color
}

func New(cfg config.Config, out io.Writer) *Checker {
	if out == nil {
		out = os.Stdout
	}
	return &Checker{
		cfg:     cfg,
		out:     out,
		header:  color.New(color.FgBlue),
		success: color.New(color.FgGreen),
		warning: color.New(color.FgYellow),
		failure: color.New(color.FgRed),
	}
}

// Run executes every check and reports true only when the directory,
// database-structure and integrity checks all passed.
func (c *Checker) Run(ctx context.Context) bool {
	c.header.Fprintln(c.out, "============================================================")
	c.header.Fprintln(c.out, "IntelliChat Data Integrity Check")
	c.header.Fprintln(c.out, "============================================================")
	fmt.Fprintf(c.out, "Timestamp: %s\n", time.Now().Format("2006-01-02 15:04:05"))

	dirsOK := c.checkDirectories()
	dbOK := c.checkDatabase(ctx)
	integrityOK := c.checkIntegrity(ctx)
	c.checkLogs()
	c.printStatistics(ctx)
	c.suggestMaintenance()

	c.printHeader("Summary")
	ok := dirsOK && dbOK && integrityOK
	if ok {
		c.printSuccess("All checks passed!")
		fmt.Fprintln(c.out, "\nYour IntelliChat data is healthy and ready to use.")
	} else {
		c.printWarning("Some checks failed")
		fmt.Fprintln(c.out, "\nRecommended actions:")
		fmt.Fprintln(c.out, "1. Review the errors above")
		fmt.Fprintln(c.out, "2. Run: db_init")
		fmt.Fprintln(c.out, "3. Check documentation: data/README.md")
	}
	return ok
}

func (c *Checker) checkDirectories() bool {
	c.printHeader("Checking Directories")

	directories := []struct {
		name string
		path string
	}{
		{"Data directory", c.cfg.DataDir},
		{"Conversations directory", c.cfg.ConversationsDir},
		{"Logs directory", c.cfg.LogsDir},
	}

	allExist := true
	for _, d := range directories {
		if _, err := os.Stat(d.path); err == nil {
			c.printSuccess("%s exists: %s", d.name, d.path)
		} else {
			c.printError("%s missing: %s", d.name, d.path)
			allExist = false
		}
	}
	return allExist
}

func (c *Checker) checkDatabase(ctx context.Context) bool {
	c.printHeader("Checking Database")

	info, err := os.Stat(c.cfg.DBPath)
	if err != nil {
		c.printError("Database file not found: %s", c.cfg.DBPath)
		c.printWarning("Run: db_init")
		return false
	}
	c.printSuccess("Database file exists: %s", c.cfg.DBPath)
	fmt.Fprintf(c.out, "  Size: %.2f MB (%d bytes)\n", float64(info.Size())/(1024*1024), info.Size())

	store, err := sqlstore.Open(c.cfg.DBPath, zap.NewNop())
	if err != nil {
		c.printError("Database error: %v", err)
		return false
	}
	defer store.Close()

	tables, err := c.objectNames(ctx, store, "table")
	if err != nil {
		c.printError("Database error: %v", err)
		return false
	}

	ok := true
	fmt.Fprintln(c.out, "\n  Tables:")
	for _, table := range requiredTables {
		if !tables[table] {
			c.printError("  %s (missing)", table)
			ok = false
			continue
		}
		c.printSuccess("  %s", table)
		rows, err := store.Query(ctx, fmt.Sprintf("SELECT COUNT(*) AS n FROM %q", table))
		if err != nil || len(rows) == 0 {
			c.printError("  count failed: %v", err)
			ok = false
			continue
		}
		fmt.Fprintf(c.out, "    Rows: %v\n", rows[0]["n"])
	}

	indexes, err := c.objectNames(ctx, store, "index")
	if err != nil {
		c.printError("Database error: %v", err)
		return false
	}
	fmt.Fprintf(c.out, "\n  Indexes: %d\n", len(indexes))
	for idx := range indexes {
		fmt.Fprintf(c.out, "    - %s\n", idx)
	}

	if ok {
		c.printSuccess("Database structure is valid")
	}
	return ok
}

func (c *Checker) objectNames(ctx context.Context, store *sqlstore.Store, kind string) (map[string]bool, error) {
	rows, err := store.Query(ctx,
		"SELECT name FROM sqlite_master WHERE type = ? AND name NOT LIKE 'sqlite_%'", kind)
	if err != nil {
		return nil, err
	}
	names := make(map[string]bool, len(rows))
	for _, row := range rows {
		if name, ok := row["name"].(string); ok {
			names[name] = true
		}
	}
	return names, nil
}

func (c *Checker) checkIntegrity(ctx context.Context) bool {
	c.printHeader("Database Integrity Check")

	if _, err := os.Stat(c.cfg.DBPath); err != nil {
		c.printWarning("Database doesn't exist, skipping integrity check")
		return false
	}

	store, err := sqlstore.Open(c.cfg.DBPath, zap.NewNop())
	if err != nil {
		c.printError("Integrity check failed: %v", err)
		return false
	}
	defer store.Close()

	result, err := store.CheckIntegrity(ctx)
	if err != nil {
		c.printError("Integrity check failed: %v", err)
		return false
	}
	if result != "ok" {
		c.printError("Database integrity issues: %s", result)
		return false
	}
	c.printSuccess("Database integrity: OK")
	return true
}

func (c *Checker) checkLogs() {
	c.printHeader("Checking Log Files")

	for _, name := range []string{logging.AppLogFile, logging.ErrorLogFile, logging.APILogFile} {
		path := filepath.Join(c.cfg.LogsDir, name)
		info, err := os.Stat(path)
		if err != nil {
			c.printWarning("%s not found (will be created on first use)", name)
			continue
		}
		sizeMB := float64(info.Size()) / (1024 * 1024)
		switch {
		case sizeMB > logArchiveMB:
			c.printWarning("%s is large: %.2f MB", name, sizeMB)
			fmt.Fprintln(c.out, "  Consider archiving: archive_logs")
		case sizeMB > logWarnMB:
			c.printSuccess("%s exists (%.2f MB)", name, sizeMB)
		default:
			c.printSuccess("%s exists (%d bytes)", name, info.Size())
		}
	}
}

func (c *Checker) printStatistics(ctx context.Context) {
	c.printHeader("Database Statistics")

	if _, err := os.Stat(c.cfg.DBPath); err != nil {
		c.printWarning("Database doesn't exist")
		return
	}

	store, err := sqlstore.Open(c.cfg.DBPath, zap.NewNop())
	if err != nil {
		c.printError("Error getting statistics: %v", err)
		return
	}
	defer store.Close()

	stats, err := store.Statistics(ctx)
	if err != nil {
		c.printError("Error getting statistics: %v", err)
		return
	}
	fmt.Fprintf(c.out, "Total Conversations: %d\n", stats.Conversations)
	fmt.Fprintf(c.out, "Total Messages: %d\n", stats.Messages)

	if byRole, err := store.MessageCountsByRole(ctx); err == nil && len(byRole) > 0 {
		fmt.Fprintln(c.out, "\nMessages by Role:")
		for role, count := range byRole {
			fmt.Fprintf(c.out, "  %s: %d\n", role, count)
		}
	}

	fmt.Fprintf(c.out, "\nTotal Tokens Used: %d\n", stats.TotalTokens)

	if byModel, err := store.ConversationsByModel(ctx); err == nil && len(byModel) > 0 {
		fmt.Fprintln(c.out, "\nModel Usage:")
		for _, mc := range byModel {
			fmt.Fprintf(c.out, "  %s: %d conversations\n", mc.ModelName, mc.Conversations)
		}
	}

	if first, last, ok, err := store.ConversationDateRange(ctx); err == nil && ok {
		fmt.Fprintf(c.out, "\nFirst Conversation: %s\n", first.Format("2006-01-02 15:04:05"))
		fmt.Fprintf(c.out, "Last Conversation: %s\n", last.Format("2006-01-02 15:04:05"))
	}
}

func (c *Checker) suggestMaintenance() {
	c.printHeader("Maintenance Suggestions")

	suggestions := make([]string, 0)

	if info, err := os.Stat(c.cfg.DBPath); err == nil {
		if float64(info.Size())/(1024*1024) > vacuumSuggestMB {
			suggestions = append(suggestions,
				"Database is large (>100MB). Consider:\n  - Vacuum: db_vacuum\n  - Archive old conversations")
		}
	}

	logs, _ := filepath.Glob(filepath.Join(c.cfg.LogsDir, "*.log"))
	for _, path := range logs {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		if float64(info.Size())/(1024*1024) > archiveSuggestMB {
			suggestions = append(suggestions,
				fmt.Sprintf("%s is large (>50MB). Consider:\n  - Archive: archive_logs\n  - Rotate logs", filepath.Base(path)))
		}
	}

	if len(suggestions) == 0 {
		c.printSuccess("No maintenance needed at this time")
		return
	}
	for i, suggestion := range suggestions {
		fmt.Fprintf(c.out, "\n%d. %s\n", i+1, suggestion)
	}
}

func (c *Checker) printHeader(text string) {
	c.header.Fprintf(c.out, "\n============================================================\n")
	c.header.Fprintln(c.out, text)
	c.header.Fprintf(c.out, "============================================================\n\n")
}

func (c *Checker) printSuccess(format string, args ...any) {
	c.success.Fprintf(c.out, "✓ "+format+"\n", args...)
}

func (c *Checker) printWarning(format string, args ...any) {
	c.warning.Fprintf(c.out, "⚠ "+format+"\n", args...)
}

func (c *Checker) printError(format string, args ...any) {
	c.failure.Fprintf(c.out, "✗ "+format+"\n", args...)
}
