// Package cmd wires the suisai CLI's subcommands. Each subcommand lives in
// its own file and registers itself with Root from an init func, the way
// the teacher's cmd/ tree organises itself one package per subcommand.
package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Root is the top-level suisai command.
var Root = &cobra.Command{
	Use:   "suisai",
	Short: "suisai is a content-addressed photo library with a read-only FUSE view",
}

func init() {
	Root.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	cobra.OnInitialize(func() {
		level, _ := Root.PersistentFlags().GetString("log-level")
		parsed, err := logrus.ParseLevel(level)
		if err != nil {
			parsed = logrus.InfoLevel
		}
		logrus.SetLevel(parsed)
	})
}
