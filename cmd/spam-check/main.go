package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mikey/outreach-personalizer/internal/adapters/history"
	"github.com/mikey/outreach-personalizer/internal/core"
	"github.com/mikey/outreach-personalizer/internal/logging"
	"github.com/mikey/outreach-personalizer/internal/spamcheck"
	"go.uber.org/zap"
)

var (
	subject = flag.String("subject", "", "Subject line to check")
	content = flag.String("content", "", "Message content to check (use stdin if empty and no file given)")
	file    = flag.String("file", "", "JSON file with a batch of {subject, content, type} items")

	rulesPath = flag.String("rules", "./configs/spam_rules.json", "Path to the spam rules file")
	reduce    = flag.Bool("reduce", false, "Apply best-effort remediation and print the rewritten content")

	historyPath      = flag.String("history", "", "SQLite file to record results into (disabled if empty)")
	historyRetention = flag.Duration("history-retention", 0, "Prune history entries older than this before recording (0 disables)")

	verbose = flag.Bool("verbose", false, "Enable verbose logging")
	jsonLog = flag.Bool("json-log", false, "Output logs in JSON format")
)

func main() {
	flag.Parse()

	// Initialize logger
	logger, err := logging.InitConsoleLogger(*verbose, *jsonLog)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	engine := spamcheck.NewEngine(*rulesPath, logger)

	var store *history.SQLiteHistory
	if *historyPath != "" {
		store, err = history.NewSQLiteHistory(*historyPath, logger)
		if err != nil {
			logger.Fatal("Failed to open history database", zap.Error(err))
		}
		defer store.Close()

		if *historyRetention > 0 {
			if err := store.Prune(context.Background(), *historyRetention); err != nil {
				logger.Error("Failed to prune history", zap.Error(err))
			}
		}
	}

	if *file != "" {
		runBatch(engine, store, logger)
		return
	}

	body := *content
	if body == "" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			logger.Fatal("Failed to read content from stdin", zap.Error(err))
		}
		body = string(data)
	}

	startTime := time.Now()
	result := engine.Check(*subject, body)
	printResult(*subject, result)
	fmt.Printf("Processing time: %v\n", time.Since(startTime))

	record(store, *subject, result, logger)

	if *reduce {
		rewritten, fixes := engine.ReduceSpamScore(body, result.Suggestions)
		fmt.Printf("\n=== Remediation ===\n")
		if len(fixes) == 0 {
			fmt.Printf("No applicable fixes\n")
		} else {
			for _, fix := range fixes {
				fmt.Printf("- %s\n", fix)
			}
			fmt.Printf("\n--- Rewritten content ---\n%s\n", rewritten)
		}
	}
}

// runBatch scores every item of a JSON batch file independently
func runBatch(engine *spamcheck.Engine, store *history.SQLiteHistory, logger *zap.Logger) {
	data, err := os.ReadFile(*file)
	if err != nil {
		logger.Fatal("Failed to read batch file", zap.Error(err), zap.String("file", *file))
	}

	var items []spamcheck.BatchItem
	if err := json.Unmarshal(data, &items); err != nil {
		logger.Fatal("Failed to parse batch file", zap.Error(err))
	}

	logger.Info("Scoring batch", zap.Int("items", len(items)))

	results := engine.CheckBatch(items)
	for i, result := range results {
		fmt.Printf("\n=== Item %d (%s) ===\n", i+1, items[i].Type)
		printResult(items[i].Subject, result)
		record(store, items[i].Subject, result, logger)
	}
}

func printResult(subjectLine string, result *core.SpamCheckResult) {
	fmt.Printf("Subject: %s\n", subjectLine)
	fmt.Printf("Overall score: %.1f\n", result.OverallScore)
	fmt.Printf("Risk level: %s\n", result.RiskLevel)
	for _, rule := range result.TriggeredRules {
		fmt.Printf("  [%s] %s: %.1f (%d matches)\n", rule.Category, rule.RuleID, rule.Score, rule.Matches)
	}
	for _, suggestion := range result.Suggestions {
		fmt.Printf("  -> %s\n", suggestion)
	}
}

func record(store *history.SQLiteHistory, subjectLine string, result *core.SpamCheckResult, logger *zap.Logger) {
	if store == nil {
		return
	}
	if err := store.Record(context.Background(), subjectLine, result); err != nil {
		logger.Error("Failed to record result", zap.Error(err))
	}
}
