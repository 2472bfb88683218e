package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"

	"github.com/lqviet/simpledb/internal/catalog"
	"github.com/lqviet/simpledb/internal/config"
	"github.com/lqviet/simpledb/internal/sql/executor"
	"github.com/lqviet/simpledb/internal/storage"
)

var (
	okColor  = color.New(color.FgGreen)
	errColor = color.New(color.FgRed)
)

func setupLogging(level string) {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelWarn
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}

func printResult(res executor.Result) {
	if res.Status == executor.StatusError {
		errColor.Println(res.Message)
		return
	}
	if res.Message != "" {
		okColor.Println(res.Message)
	}
	if res.HasData() {
		fmt.Println(strings.Join(res.Data.Headers, "\t"))
		for _, row := range res.Data.Rows {
			fmt.Println(strings.Join(row, "\t"))
		}
	}
}

// dumpTable prints every page of a table's heap file in debug form.
func dumpTable(cat *catalog.Catalog, dataDir, tableName string) {
	if !cat.TableExists(tableName) {
		errColor.Printf("unknown table: %s\n", tableName)
		return
	}

	heap, err := storage.Open(filepath.Join(dataDir, tableName+".data"))
	if err != nil {
		errColor.Printf("open heap: %v\n", err)
		return
	}
	defer func() { _ = heap.Close() }()

	numPages, err := heap.NumPages()
	if err != nil {
		errColor.Printf("read heap: %v\n", err)
		return
	}

	page := storage.NewPage()
	for pageID := uint32(0); pageID < numPages; pageID++ {
		if err := heap.ReadPage(pageID, page); err != nil {
			errColor.Printf("read page %d: %v\n", pageID, err)
			return
		}
		fmt.Printf("-- page %d --\n%s", pageID, page.DebugString())
	}
	if numPages == 0 {
		fmt.Println("(empty heap)")
	}
}

func printHelp() {
	fmt.Println(`meta commands:
  \dt                    list tables (same as SHOW TABLES)
  \dump <table>          dump the table's heap pages
  \help                  show help
  exit | quit            quit

sql:
  CREATE TABLE t (col INT|TEXT, ...)
  DROP TABLE t
  SHOW TABLES
  INSERT INTO t [(col, ...)] VALUES (literal, ...)
  SELECT *|col[, ...] FROM t [WHERE col <op> literal]`)
}

// handleMeta runs backslash commands. It returns the SQL the command
// rewrites to ("" when fully handled here).
func handleMeta(line string, cat *catalog.Catalog, dataDir string) string {
	switch {
	case line == `\dt`:
		return "SHOW TABLES;"
	case line == `\help`:
		printHelp()
	case strings.HasPrefix(line, `\dump`):
		arg := strings.TrimSpace(strings.TrimPrefix(line, `\dump`))
		if arg == "" {
			errColor.Println(`usage: \dump <table>`)
			return ""
		}
		dumpTable(cat, dataDir, arg)
	default:
		errColor.Printf("unknown command: %s\n", line)
	}
	return ""
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	setupLogging(cfg.LogLevel)

	cat, err := catalog.Open(cfg.DataDir)
	if err != nil {
		slog.Error("catalog initialization failed", "err", err)
		errColor.Fprintf(os.Stderr, "FATAL: %v\n", err)
		os.Exit(1)
	}

	exec := executor.New(cat, cfg.DataDir)

	h := NewHistory(cfg.HistoryFile)
	if err := h.Load(); err != nil {
		slog.Warn("failed to load history", "path", cfg.HistoryFile, "err", err)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "readline: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = rl.Close() }()

	// preload history so the up arrow works immediately
	for _, line := range h.Lines() {
		_ = rl.SaveHistory(line)
	}

	fmt.Println("Welcome to simple-db!")
	fmt.Println("Enter exit or quit to exit.")

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			fmt.Println("^C")
			continue
		}
		if err != nil {
			// EOF
			if errors.Is(err, io.EOF) {
				fmt.Println("\nExiting.")
			}
			return
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			fmt.Println("Exiting.")
			return
		}

		if err := h.Append(line); err != nil {
			slog.Warn("failed to append history", "err", err)
		}
		_ = rl.SaveHistory(line)

		sql := line
		if strings.HasPrefix(line, `\`) {
			sql = handleMeta(line, cat, cfg.DataDir)
			if sql == "" {
				continue
			}
		}

		printResult(exec.ExecuteSQL(sql))
	}
}
