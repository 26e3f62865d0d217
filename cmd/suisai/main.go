// Command suisai runs the photo-library server and its ingestion pipeline.
package main

import (
	"fmt"
	"os"

	"github.com/fubuki4649/suisai-server/cmd/suisai/cmd"
)

func main() {
	if err := cmd.Root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
