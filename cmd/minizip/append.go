package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vincent-le-normand/minizip"
)

var (
	appendPassword string
	appendLevel    int
)

func buildAppendCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "append <archive.zip> <file>...",
		Short: "Add files to an existing archive without touching prior entries",
		Args:  cobra.MinimumNArgs(2),
		RunE:  runAppend,
	}
	cmd.Flags().StringVarP(&appendPassword, "password", "p", "", "Encrypt added entries with this password (zipcrypto)")
	cmd.Flags().IntVarP(&appendLevel, "level", "l", 6, "Deflate compression level (0 stores)")
	return cmd
}

func runAppend(_ *cobra.Command, args []string) error {
	archivePath, files := args[0], args[1:]

	f, err := os.OpenFile(archivePath, os.O_RDWR, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	a, err := minizip.Open(f, minizip.ModeAppend, &minizip.OpenOptions{Logger: minizip.StdLogger{Verbose: verbose}})
	if err != nil {
		return err
	}

	for _, path := range files {
		if err := appendFile(a, path); err != nil {
			a.Close()
			return err
		}
	}

	return a.Close()
}

func appendFile(a *minizip.Archive, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	fi := &minizip.FileInfo{
		Name:         filepath.ToSlash(path),
		ModifiedTime: info.ModTime(),
		Method:       minizip.MethodDeflate,
	}
	fi.SetMode(info.Mode())

	in, err := os.Open(path)
	if err != nil {
		return err
	}
	defer in.Close()

	w, err := a.CreateEntry(fi, appendPassword, appendLevel)
	if err != nil {
		return err
	}
	if _, err := io.Copy(w, in); err != nil {
		w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	if verbose {
		fmt.Printf("added %s\n", fi.Name)
	}
	return nil
}
