package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vincent-le-normand/minizip"
)

var (
	extractOut      string
	extractPassword string
	extractOne      string
)

func buildExtractCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract <archive.zip>",
		Short: "Extract one or all entries to disk",
		Args:  cobra.ExactArgs(1),
		RunE:  runExtract,
	}
	cmd.Flags().StringVarP(&extractOut, "out", "o", ".", "Destination directory")
	cmd.Flags().StringVarP(&extractPassword, "password", "p", "", "Password for encrypted entries")
	cmd.Flags().StringVar(&extractOne, "entry", "", "Extract only this entry (matched case-insensitively)")
	return cmd
}

func runExtract(_ *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	a, err := minizip.Open(f, minizip.ModeRead, &minizip.OpenOptions{Logger: minizip.StdLogger{Verbose: verbose}})
	if err != nil {
		return err
	}
	defer a.Close()

	if extractOne != "" {
		if err := a.LocateEntry(extractOne, true); err != nil {
			return err
		}
		return extractCurrent(a)
	}

	if err := a.GotoFirst(); err != nil {
		if minizip.IsEndOfList(err) {
			return nil
		}
		return err
	}
	for {
		if err := extractCurrent(a); err != nil {
			return err
		}
		if err := a.GotoNext(); err != nil {
			if minizip.IsEndOfList(err) {
				break
			}
			return err
		}
	}
	return nil
}

func extractCurrent(a *minizip.Archive) error {
	fi, err := a.CurrentEntry()
	if err != nil {
		return err
	}

	dest := filepath.Join(extractOut, filepath.FromSlash(fi.Name))
	if !strings.HasPrefix(dest, filepath.Clean(extractOut)+string(filepath.Separator)) && dest != filepath.Clean(extractOut) {
		return fmt.Errorf("entry %q escapes destination directory", fi.Name)
	}

	if fi.IsDir() {
		return os.MkdirAll(dest, 0o755)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}

	r, err := a.OpenEntry(extractPassword)
	if err != nil {
		return err
	}
	defer r.Close()

	out, err := os.OpenFile(dest, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, fi.Mode().Perm())
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, r); err != nil {
		return err
	}
	if verbose {
		fmt.Printf("extracted %s\n", fi.Name)
	}
	return nil
}
