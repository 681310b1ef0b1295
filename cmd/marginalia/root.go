package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	cmdCtx := newCommandContext(&configFlag)

	rootCmd := &cobra.Command{
		Use:   "marginalia",
		Short: "Read your book highlights and notes from the command line",
		Long: `Marginalia scans the Apple Books catalog and annotation stores on this
machine, merges highlights and notes from the local and sync databases,
and keeps the merged library in a cache so repeat lookups are instant.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := cmdCtx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")

	rootCmd.AddCommand(newScanCommand(cmdCtx))
	rootCmd.AddCommand(newCacheCommand(cmdCtx))
	rootCmd.AddCommand(newConfigCommand(cmdCtx))

	return rootCmd
}
