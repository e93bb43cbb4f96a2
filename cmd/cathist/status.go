package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/cathist/cathist/internal/config"
	"github.com/cathist/cathist/internal/ipc"
)

func newStatusCmd() *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon status",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runStatus(jsonOut)
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "output raw JSON")
	return cmd
}

type statusResponse struct {
	Version       string `json:"version"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	TotalItems    int64  `json:"total_items"`
	FavoriteItems int64  `json:"favorite_items"`
	Subscribers   int    `json:"subscribers"`
}

func runStatus(jsonOut bool) error {
	var resp statusResponse
	if err := apiGet("/v1/status", &resp); err != nil {
		return err
	}

	if jsonOut {
		enc, err := json.MarshalIndent(resp, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(enc))
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 1, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Daemon:\t%s\n", resp.Version)
	fmt.Fprintf(w, "Socket:\t%s\n", ipc.SocketPath())
	fmt.Fprintf(w, "Uptime:\t%s\n", (time.Duration(resp.UptimeSeconds) * time.Second).String())
	fmt.Fprintf(w, "Items:\t%d (%d favorites)\n", resp.TotalItems, resp.FavoriteItems)
	fmt.Fprintf(w, "Watchers:\t%d\n", resp.Subscribers)
	return w.Flush()
}

func newConfigCmd() *cobra.Command {
	var maxItems int64

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change daemon settings",
		Long: `Without flags, prints the daemon's active settings. With --max-items,
updates the history capacity; the daemon applies and persists the change
immediately, evicting overflow if the new limit is lower.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("max-items") {
				var applied config.Settings
				err := apiCall(http.MethodPut, "/v1/config", config.Settings{MaxHistoryItems: maxItems}, &applied)
				if err != nil {
					return err
				}
				fmt.Printf("max_history_items = %d\n", applied.MaxHistoryItems)
				return nil
			}

			var current config.Settings
			if err := apiGet("/v1/config", &current); err != nil {
				return err
			}
			fmt.Printf("max_history_items = %d\n", current.MaxHistoryItems)
			return nil
		},
	}

	cmd.Flags().Int64Var(&maxItems, "max-items", config.DefaultMaxHistoryItems, "history capacity (1-5000)")
	return cmd
}
