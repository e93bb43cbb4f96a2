package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cathist/cathist/internal/history"
)

func newTagCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tag",
		Short: "Manage item tags",
	}

	cmd.AddCommand(
		newTagAddCmd(),
		newTagRmCmd(),
		newTagLsCmd(),
		newTagItemsCmd(),
	)
	return cmd
}

func newTagAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <id> <name>",
		Short: "Attach a tag to an item (creates the tag if needed)",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			path := fmt.Sprintf("/v1/items/%d/tags/%s", id, url.PathEscape(args[1]))
			return apiCall(http.MethodPost, path, nil, nil)
		},
	}
}

func newTagRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id> <name>",
		Short: "Detach a tag from an item",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			path := fmt.Sprintf("/v1/items/%d/tags/%s", id, url.PathEscape(args[1]))
			return apiCall(http.MethodDelete, path, nil, nil)
		},
	}
}

func newTagLsCmd() *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List all tags",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			var tags []history.Tag
			if err := apiGet("/v1/tags", &tags); err != nil {
				return err
			}
			if jsonOut {
				enc, err := json.MarshalIndent(tags, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(enc))
				return nil
			}
			if len(tags) == 0 {
				fmt.Println("No tags.")
				return nil
			}
			for _, tag := range tags {
				fmt.Println(tag.Name)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "output raw JSON")
	return cmd
}

func newTagItemsCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "items <name>",
		Short: "List items carrying a tag",
		Args:  cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return bindViper(cmd, v)
		},
		RunE: func(_ *cobra.Command, args []string) error {
			path := fmt.Sprintf("/v1/tags/%s/items?limit=%d", url.PathEscape(args[0]), v.GetInt64("limit"))
			var items []history.Item
			if err := apiGet(path, &items); err != nil {
				return err
			}
			return printItems(items, v.GetBool("json"))
		},
	}

	cmd.Flags().Int64("limit", 20, "maximum number of items to list")
	cmd.Flags().Bool("json", false, "output raw JSON")
	addConfigFlag(cmd)
	return cmd
}
