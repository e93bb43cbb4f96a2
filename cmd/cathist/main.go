// cathist: local clipboard history daemon and CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cathist/cathist/internal/logging"
)

// Version is set at build time via -ldflags "-X main.Version=x.y.z".
var Version = "dev"

func main() {
	root := &cobra.Command{
		Use:   "cathist",
		Short: "Clipboard history with search, favorites and tags",
		Long: `cathist watches the system clipboard and keeps every copied text or
file list in a local SQLite history, bounded in size, searchable, with
favorites and tags.

Run "cathist serve" to start the daemon. All other sub-commands talk to the
running daemon over a local socket.

Config file search order (first found wins):
  /etc/cathist/cathist.toml
  $HOME/.config/cathist/cathist.toml
  path supplied via --config

All flags can be set via CATHIST_<FLAG> env vars or config-file keys.`,
		SilenceUsage: true,
	}

	root.AddCommand(
		newServeCmd(),
		newCopyCmd(),
		newHistoryCmd(),
		newSearchCmd(),
		newFavoriteCmd(),
		newRmCmd(),
		newClearCmd(),
		newResetCmd(),
		newTagCmd(),
		newConfigCmd(),
		newStatusCmd(),
		newVersionCmd(),
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("cathist %s\n", Version)
		},
	}
}

// resolveLogging sets up the global slog logger after flags are parsed.
func resolveLogging(interactive bool, formatStr, levelStr string) {
	format := logging.ParseFormat(formatStr)
	level := logging.ParseLevel(levelStr)
	if levelStr == "" {
		if interactive {
			level = logging.ParseLevel("debug")
		} else {
			level = logging.ParseLevel("info")
		}
	}
	logging.Setup(format, level)
}
