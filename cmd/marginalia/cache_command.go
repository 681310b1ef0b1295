package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"marginalia/internal/librarycache"
)

func newCacheCommand(cmdCtx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the library cache",
	}
	cacheCmd.AddCommand(newCacheStatusCommand(cmdCtx))
	cacheCmd.AddCommand(newCacheClearCommand(cmdCtx))
	return cacheCmd
}

func newCacheStatusCommand(cmdCtx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show cache freshness and contents",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openCacheStore(cmdCtx)
			if err != nil {
				return err
			}
			stats := store.Stats()
			if asJSON {
				return writeJSON(cmd, stats)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Document: %s\n", stats.DocumentPath)
			if !stats.DocumentExists {
				fmt.Fprintln(out, "Status:   empty (next scan reads the source stores)")
			} else {
				state := "stale"
				if stats.Fresh {
					state = "fresh"
				}
				fmt.Fprintf(out, "Status:   %s (updated %s)\n", state, humanize.Time(stats.UpdatedAt))
				fmt.Fprintf(out, "Contents: %d books, %d annotations (%s)\n",
					stats.BookCount, stats.AnnotationCount, humanize.IBytes(uint64(stats.DocumentBytes)))
			}
			if stats.CoverCount > 0 {
				fmt.Fprintf(out, "Covers:   %d cached (%s)\n", stats.CoverCount, humanize.IBytes(uint64(stats.CoverBytes)))
			} else {
				fmt.Fprintln(out, "Covers:   none cached")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit cache status as JSON")

	return cmd
}

func newCacheClearCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove the cached library document and cover images",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openCacheStore(cmdCtx)
			if err != nil {
				return err
			}
			before := store.Stats()
			if err := store.Invalidate(); err != nil {
				return err
			}
			if err := store.ClearCovers(); err != nil {
				return err
			}

			freed := before.DocumentBytes + before.CoverBytes
			if freed <= 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Cache already empty")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %s (%d books, %d covers)\n",
				humanize.IBytes(uint64(freed)), before.BookCount, before.CoverCount)
			return nil
		},
	}
}

func openCacheStore(cmdCtx *commandContext) (*librarycache.Store, error) {
	cfg, err := cmdCtx.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := cmdCtx.ensureLogger()
	if err != nil {
		return nil, err
	}
	return librarycache.NewStore(cfg, logger), nil
}
