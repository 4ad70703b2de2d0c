// Command minizip lists, extracts, and appends to ZIP archives built or
// read by the github.com/vincent-le-normand/minizip library.
package main

import "os"

func main() {
	root := buildRootCommand()
	root.AddCommand(buildListCommand())
	root.AddCommand(buildExtractCommand())
	root.AddCommand(buildAppendCommand())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
