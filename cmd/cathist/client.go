package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/cathist/cathist/internal/history"
	"github.com/cathist/cathist/internal/ipc"
)

// newIPCClient returns an HTTP client whose every connection goes to the
// daemon's IPC socket. The URL host is a placeholder; only the path matters.
func newIPCClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			DialContext: func(context.Context, string, string) (net.Conn, error) {
				return ipc.Dial()
			},
		},
		Timeout: 10 * time.Second,
	}
}

const ipcBaseURL = "http://cathist"

// errNoDaemon is the hint shown when a sub-command finds no daemon socket.
var errNoDaemon = fmt.Errorf("no cathist daemon running (start one with \"cathist serve\")")

// apiCall sends one request to the daemon and decodes the JSON response into
// out (which may be nil for 204 responses).
func apiCall(method, path string, body, out any) error {
	if !ipc.IsRunning() {
		return errNoDaemon
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, ipcBaseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := newIPCClient().Do(req)
	if err != nil {
		return fmt.Errorf("daemon request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("daemon: %s", apiErr.Error)
		}
		return fmt.Errorf("daemon: %s", resp.Status)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func apiGet(path string, out any) error {
	return apiCall(http.MethodGet, path, nil, out)
}

// printItems renders items as a table, or raw JSON when jsonOut is set.
func printItems(items []history.Item, jsonOut bool) error {
	if jsonOut {
		enc, err := json.MarshalIndent(items, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(enc))
		return nil
	}

	if len(items) == 0 {
		fmt.Println("History is empty.")
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 1, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(tw, "ID\t\tTYPE\tAGE\tTAGS\tPREVIEW\n")
	for _, item := range items {
		marker := ""
		if item.IsFavorite {
			marker = "*"
		}
		tags := "-"
		if len(item.Tags) > 0 {
			tags = strings.Join(item.Tags, ",")
		}
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			item.ID, marker, item.ContentType, createdAge(item.CreatedAt), tags, firstLine(item.Preview),
		)
	}
	return tw.Flush()
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " …"
	}
	return s
}

func createdAge(createdAt string) string {
	t, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return createdAt
	}
	return fmtAge(t)
}

func fmtAge(t time.Time) string {
	age := time.Since(t).Round(time.Second)
	if age < time.Minute {
		return fmt.Sprintf("%ds ago", int(age.Seconds()))
	}
	if age < time.Hour {
		return fmt.Sprintf("%dm ago", int(age.Minutes()))
	}
	if age < 24*time.Hour {
		return fmt.Sprintf("%dh ago", int(age.Hours()))
	}
	return t.Local().Format("2006-01-02 15:04")
}
