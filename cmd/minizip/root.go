package main

import "github.com/spf13/cobra"

var version = "dev"

var verbose bool

func buildRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "minizip",
		Version: version,
		Short:   "Inspect and build ZIP archives",
		Long: `minizip lists, extracts, and appends to ZIP archives, including
ZIP64 and encrypted (zipcrypto or WinZip AES) entries.

Commands:
  list     Print the archive's catalog
  extract  Extract one or all entries to disk
  append   Add files to an existing archive without touching prior entries`,
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose diagnostic logging")

	return cmd
}
