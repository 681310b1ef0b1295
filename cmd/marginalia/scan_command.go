package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"marginalia/internal/books"
	"marginalia/internal/config"
	"marginalia/internal/librarycache"
	"marginalia/internal/loader"
	"marginalia/internal/logging"
	"marginalia/internal/services"
	"marginalia/internal/watcher"
)

type scanReport struct {
	Books    []books.Book `json:"books"`
	Total    int          `json:"total"`
	Warnings []string     `json:"warnings,omitempty"`
}

func newScanCommand(cmdCtx *commandContext) *cobra.Command {
	var (
		refresh bool
		asJSON  bool
		watch   bool
	)

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan the library and list every book with its annotations",
		Long: `Scan streams books from the annotation library in catalog order.
Results come from the cache when it is fresh; otherwise the source
stores are read and the cache is rebuilt. Books whose stores cannot be
read are reported as warnings without stopping the scan.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := cmdCtx.ensureLogger()
			if err != nil {
				return err
			}

			cache := librarycache.NewStore(cfg, logger)
			ldr := loader.New(cfg, cache, logger)

			if watch {
				return runWatchLoop(cmd, cfg, ldr, logger, refresh, asJSON)
			}
			return runScan(cmd, ldr, refresh, asJSON)
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "Discard caches and rescan the source stores")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the library as JSON")
	cmd.Flags().BoolVar(&watch, "watch", false, "Keep running and rescan when the stores change")

	return cmd
}

func runScan(cmd *cobra.Command, ldr *loader.Loader, refresh, asJSON bool) error {
	ctx := cmd.Context()

	var events <-chan loader.Event
	if refresh {
		events = ldr.Refresh(ctx)
	} else {
		events = ldr.Load(ctx)
	}

	var (
		loaded    []books.Book
		warnings  []string
		total     int
		completed bool
	)
	for event := range events {
		switch event.Kind {
		case loader.EventBook:
			loaded = append(loaded, event.Book)
		case loader.EventError:
			if services.Fatal(event.Err) {
				return event.Err
			}
			warnings = append(warnings, event.Err.Error())
		case loader.EventCompleted:
			completed = true
			total = event.Total
		}
	}
	if !completed {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := ldr.LastError(); err != nil {
			return err
		}
		return errors.New("scan ended before completing")
	}

	if asJSON {
		report := scanReport{Books: loaded, Total: total, Warnings: warnings}
		if report.Books == nil {
			report.Books = []books.Book{}
		}
		return writeJSON(cmd, report)
	}

	for _, warning := range warnings {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", warning)
	}

	out := cmd.OutOrStdout()
	if len(loaded) == 0 {
		fmt.Fprintln(out, "No books found")
		return nil
	}

	rows := make([][]string, 0, len(loaded))
	annotationTotal := 0
	for i := range loaded {
		book := &loaded[i]
		annotationTotal += book.AnnotationCount()
		lastHighlight := "-"
		if ts := book.LatestAnnotation(); !ts.IsZero() {
			lastHighlight = humanize.Time(ts)
		}
		rows = append(rows, []string{
			book.Title,
			book.Author,
			strconv.Itoa(book.AnnotationCount()),
			lastHighlight,
		})
	}

	fmt.Fprintln(out, renderTable(out, []string{"Title", "Author", "Annotations", "Last Highlight"}, rows, 2))
	fmt.Fprintf(out, "Loaded %d books (%d annotations)\n", total, annotationTotal)
	return nil
}

func runWatchLoop(cmd *cobra.Command, cfg *config.Config, ldr *loader.Loader, logger *slog.Logger, refresh, asJSON bool) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	cmd.SetContext(ctx)

	storeWatcher, err := watcher.New(cfg, logger)
	if err != nil {
		return err
	}
	go func() {
		if err := storeWatcher.Run(ctx); err != nil {
			logger.Warn("store watcher stopped", logging.Error(err))
		}
	}()

	if err := runScan(cmd, ldr, refresh, asJSON); err != nil {
		return err
	}

	fmt.Fprintln(cmd.ErrOrStderr(), "Watching for store changes (ctrl-c to stop)")
	for {
		select {
		case <-ctx.Done():
			return nil
		case change := <-storeWatcher.Changes():
			logger.Info("store change detected", logging.Int("path_count", len(change.Paths)))
			// A change means the stores differ from the cache, so the
			// rescan always bypasses the replay path.
			if err := runScan(cmd, ldr, true, asJSON); err != nil {
				if errors.Is(err, context.Canceled) {
					return nil
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "rescan failed: %v\n", err)
			}
		}
	}
}
