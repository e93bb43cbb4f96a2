package main

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cathist/cathist/internal/clipboard"
	"github.com/cathist/cathist/internal/ipc"
)

func newCopyCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "copy [id]",
		Short: "Copy stdin or a history item to the clipboard (like pbcopy)",
		Long: `With no argument, reads stdin and puts it on the system clipboard.
With an item id, puts that history item's text back on the clipboard.

If a cathist daemon is running, the write goes through it so the daemon's
monitor sees a consistent clipboard. Stdin copies fall back to writing the
clipboard directly when no daemon is up; id lookups require the daemon.`,
		Args:    cobra.MaximumNArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(_ *cobra.Command, args []string) error { return runCopy(args) },
	}

	addConfigFlag(cmd)
	return cmd
}

func runCopy(args []string) error {
	if len(args) == 1 {
		var id int64
		if _, err := fmt.Sscanf(args[0], "%d", &id); err != nil {
			return fmt.Errorf("invalid item id %q", args[0])
		}
		return apiCall(http.MethodPost, "/v1/clipboard", map[string]any{"id": id}, nil)
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return fmt.Errorf("read stdin: %w", err)
	}
	text := string(data)
	if strings.TrimSpace(text) == "" {
		return nil
	}

	// Try the local daemon first.
	if ipc.IsRunning() {
		err := apiCall(http.MethodPost, "/v1/clipboard", map[string]any{"text": text}, nil)
		if err == nil {
			return nil
		}
		slog.Warn("daemon copy failed, writing clipboard directly", "err", err)
	}

	// Fall back to a direct clipboard write.
	device := clipboard.New()
	defer device.Close()
	return device.WriteText(text)
}
