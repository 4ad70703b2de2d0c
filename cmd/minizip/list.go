package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vincent-le-normand/minizip"
)

func buildListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list <archive.zip>",
		Short: "Print the archive's catalog",
		Args:  cobra.ExactArgs(1),
		RunE:  runList,
	}
}

func runList(_ *cobra.Command, args []string) error {
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

	fmt.Printf("%-10s %-10s %-8s %s\n", "SIZE", "PACKED", "METHOD", "NAME")
	if err := a.GotoFirst(); err != nil {
		if minizip.IsEndOfList(err) {
			return nil
		}
		return err
	}
	for {
		fi, err := a.CurrentEntry()
		if err != nil {
			return err
		}
		fmt.Printf("%-10d %-10d %-8s %s\n", fi.UncompressedSize, fi.CompressedSize, methodName(fi.Method), fi.Name)
		if err := a.GotoNext(); err != nil {
			if minizip.IsEndOfList(err) {
				break
			}
			return err
		}
	}
	return nil
}

func methodName(m uint16) string {
	switch m {
	case minizip.MethodStore:
		return "store"
	case minizip.MethodDeflate:
		return "deflate"
	case minizip.MethodBzip2:
		return "bzip2"
	case minizip.MethodLZMA:
		return "lzma"
	default:
		return fmt.Sprintf("%d", m)
	}
}
