package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	json "github.com/goccy/go-json"

	"github.com/runsight/runsight/core/config"
	"github.com/runsight/runsight/internal/git"
	"github.com/runsight/runsight/internal/service"
	"github.com/runsight/runsight/internal/store"
)

// One-shot reader against the same event log and repo the server uses.
// Prints indented JSON to stdout so output can be piped into jq.
func main() {
	events := flag.Int("events", 0, "print the N most recent events (0 prints all)")
	status := flag.Bool("status", false, "print workflow status rollups")
	name := flag.String("name", "", "restrict -status to a single workflow")
	changes := flag.Bool("changes", false, "analyze changes against -base")
	base := flag.String("base", "", "base git ref for -changes")
	diff := flag.Bool("diff", false, "include diff text in -changes output")
	maxDiffLines := flag.Int("max-diff-lines", 0, "diff line cap for -changes (0 uses MAX_DIFF_LINES)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Diagnostics go to stderr so stdout stays parseable.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})))

	eventLog, err := store.NewFileEventLog(cfg.Store.EventsFile, cfg.Store.Capacity, slog.Default())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open event log: %v\n", err)
		os.Exit(1)
	}

	services := service.NewServices(eventLog, git.NewExecClient(nil), cfg, slog.Default())
	query := services.Query()

	ctx := context.Background()

	switch {
	case *status:
		statuses, err := query.WorkflowStatuses(ctx, *name)
		if err != nil {
			fmt.Fprintf(os.Stderr, "workflow status failed: %v\n", err)
			os.Exit(1)
		}
		printJSON(statuses)

	case *changes:
		if *base == "" {
			fmt.Fprintln(os.Stderr, "-changes requires -base")
			os.Exit(1)
		}
		summary, err := query.AnalyzeChanges(ctx, service.AnalyzeParams{
			BaseRef:      *base,
			IncludeDiff:  *diff,
			MaxDiffLines: *maxDiffLines,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "change analysis failed: %v\n", err)
			os.Exit(1)
		}
		printJSON(summary)

	default:
		recent, err := query.RecentEvents(ctx, *events)
		if err != nil {
			fmt.Fprintf(os.Stderr, "reading events failed: %v\n", err)
			os.Exit(1)
		}
		printJSON(recent)
	}
}

func printJSON(v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "encoding output: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}
