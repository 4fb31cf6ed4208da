// Command kramjobs drives synthetic texture-encode batches through the
// work-stealing job pool and reports scheduler statistics.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

// version is set with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "kramjobs",
		Usage:   "Run texture encode workloads on the work-stealing job pool",
		Version: version,
		Commands: []*cli.Command{
			runCommand(),
			versionCommand(),
		},
	}
}

func versionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Print the version",
		Action: func(c *cli.Context) error {
			fmt.Fprintf(c.App.Writer, "kramjobs %s\n", version)
			return nil
		},
	}
}
