package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/stemsi/course-feed/internal/config"
	"github.com/stemsi/course-feed/internal/database"
	"github.com/stemsi/course-feed/internal/feed"
	"github.com/stemsi/course-feed/internal/logger"
	"github.com/stemsi/course-feed/internal/model"
	"github.com/stemsi/course-feed/internal/repository"
	"github.com/stemsi/course-feed/internal/schedule"
	"github.com/stemsi/course-feed/internal/service"
)

func main() {
	var (
		file    string
		url     string
		persist bool
		dump    bool
		verbose bool
	)
	flag.StringVar(&file, "file", "", "Read the feed from a local JSON file")
	flag.StringVar(&url, "url", "", "Fetch the feed from this URL (defaults to FEED_URL)")
	flag.BoolVar(&persist, "persist", false, "Record the run and store the snapshot in PostgreSQL")
	flag.BoolVar(&dump, "json", false, "Write the resulting schedule to stdout as JSON")
	flag.BoolVar(&verbose, "v", false, "Log skipped rows and progress")
	flag.Parse()

	cfg := config.Load()
	level := "warn"
	if verbose {
		level = "debug"
	}
	log := logger.New(os.Stderr, level, "pretty")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var source feed.Source
	switch {
	case file != "" && url != "":
		fmt.Fprintln(os.Stderr, "ingest: -file and -url are mutually exclusive")
		os.Exit(2)
	case file != "":
		source = feed.NewFileSource(file)
	default:
		if url == "" {
			url = cfg.FeedURL
		}
		source = feed.NewHTTPSource(url, cfg.FeedTimeout, log)
	}

	var (
		snapshots *repository.SnapshotRepository
		svc       *service.ScheduleService
	)
	if persist {
		pool, err := database.NewPostgresPool(ctx, cfg, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
		}
		defer pool.Close()

		snapshots = repository.NewSnapshotRepository(pool)
		svc = service.NewScheduleService(source, nil, repository.NewRunRepository(pool), nil, cfg, log)
	} else {
		svc = service.NewScheduleService(source, nil, nil, nil, cfg, log)
	}

	run, result, err := svc.Refresh(ctx, model.RunTriggerCLI)
	if err != nil {
		var pe *schedule.PayloadError
		if errors.As(err, &pe) {
			fmt.Fprintf(os.Stderr, "ingest: feed rejected: %v\n", pe)
		} else {
			fmt.Fprintf(os.Stderr, "ingest: %v\n", err)
		}
		os.Exit(1)
	}

	if snapshots != nil {
		if err := snapshots.Replace(ctx, run.ID, result.Schedule); err != nil {
			fmt.Fprintf(os.Stderr, "ingest: persist snapshot: %v\n", err)
			os.Exit(1)
		}
	}

	if dump {
		enc := json.NewEncoder(os.Stdout)
		if err := enc.Encode(result.Schedule); err != nil {
			fmt.Fprintf(os.Stderr, "ingest: encode schedule: %v\n", err)
			os.Exit(1)
		}
		return
	}

	printSummary(run, result)
}

func printSummary(run *model.IngestRun, result *schedule.Result) {
	fmt.Printf("Run:          %s\n", run.ID)
	fmt.Printf("Rows:         %d\n", run.Rows)
	fmt.Printf("Applied:      %d\n", run.Applied)
	fmt.Printf("Placeholders: %d\n", run.Placeholders)
	fmt.Printf("Skipped:      %d\n", run.Skipped)
	fmt.Printf("Subjects:     %d\n", run.Subjects)
	fmt.Printf("Courses:      %d\n", run.Courses)
	fmt.Printf("Sections:     %d\n", run.Sections)

	if len(result.Skipped) == 0 {
		return
	}
	fmt.Println()
	fmt.Println("Skipped rows:")
	for _, re := range result.Skipped {
		fmt.Printf("  #%d %q: %v\n", re.Row, re.Title, re.Err)
	}
}
