package main

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cathist/cathist/internal/history"
)

func newHistoryCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent clipboard items",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return bindViper(cmd, v)
		},
		RunE: func(_ *cobra.Command, _ []string) error {
			return runHistory(v)
		},
	}

	f := cmd.Flags()
	f.Int64("limit", 20, "maximum number of items to list")
	f.Int64("offset", 0, "number of items to skip")
	f.Bool("json", false, "output raw JSON")
	addConfigFlag(cmd)

	return cmd
}

func runHistory(v *viper.Viper) error {
	path := fmt.Sprintf("/v1/items?limit=%d&offset=%d", v.GetInt64("limit"), v.GetInt64("offset"))

	var items []history.Item
	if err := apiGet(path, &items); err != nil {
		return err
	}
	return printItems(items, v.GetBool("json"))
}

func newSearchCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search history by content, preview or tag",
		Long: `Case-insensitive substring search across item content, previews and tag
names. Favorited matches are listed first. An empty query lists recent items.`,
		Args: cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return bindViper(cmd, v)
		},
		RunE: func(_ *cobra.Command, args []string) error {
			return runSearch(v, args[0])
		},
	}

	f := cmd.Flags()
	f.Int64("limit", 20, "maximum number of results")
	f.Bool("json", false, "output raw JSON")
	addConfigFlag(cmd)

	return cmd
}

func runSearch(v *viper.Viper, query string) error {
	path := fmt.Sprintf("/v1/search?q=%s&limit=%d", url.QueryEscape(query), v.GetInt64("limit"))

	var items []history.Item
	if err := apiGet(path, &items); err != nil {
		return err
	}
	return printItems(items, v.GetBool("json"))
}

func newFavoriteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "favorite <id>",
		Short: "Toggle an item's favorite flag",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			var resp struct {
				IsFavorite bool `json:"is_favorite"`
			}
			if err := apiCall(http.MethodPost, fmt.Sprintf("/v1/items/%d/favorite", id), nil, &resp); err != nil {
				return err
			}
			if resp.IsFavorite {
				fmt.Printf("Item %d is now a favorite.\n", id)
			} else {
				fmt.Printf("Item %d is no longer a favorite.\n", id)
			}
			return nil
		},
	}
}

func newRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a history item",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return apiCall(http.MethodDelete, fmt.Sprintf("/v1/items/%d", id), nil, nil)
		},
	}
}

func newClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all non-favorite items",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return apiCall(http.MethodPost, "/v1/clear", nil, nil)
		},
	}
}

func newResetCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete everything: items, favorites and tags",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if !yes {
				return fmt.Errorf("refusing to wipe the history without --yes")
			}
			return apiCall(http.MethodPost, "/v1/reset", nil, nil)
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "confirm wiping the entire history")
	return cmd
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid item id %q", s)
	}
	return id, nil
}
