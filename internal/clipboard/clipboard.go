// Package clipboard reads and writes the system clipboard and watches it for
// changes. Build constraints select the platform device:
//
//	device_windows.go — win32 API via golang.org/x/sys (text + file lists,
//	                    native sequence counter)
//	device_other.go   — golang.design/x/clipboard, text only, emulated
//	                    sequence counter
//	device_headless.go — no-op device for displayless environments
package clipboard

import (
	"encoding/json"
	"errors"
	"strings"
)

// ErrUnavailable is returned when the clipboard could not be acquired after
// the bounded retry sequence. Callers treat it as transient.
var ErrUnavailable = errors.New("clipboard unavailable")

// ErrWriteFailed is returned when installing new clipboard content failed.
var ErrWriteFailed = errors.New("clipboard write failed")

// Device is the platform clipboard capability consumed by the Monitor and
// the writer path. Implementations must bound how long they hold the
// underlying OS resource to a single call.
type Device interface {
	// Name returns a human-readable name for the device.
	Name() string

	// Sequence returns the OS clipboard sequence counter. It increases
	// whenever the clipboard content changes. A value of 0 means the
	// counter is unsupported and the current tick should be skipped.
	Sequence() uint64

	// Capture acquires the clipboard and extracts its current content.
	// Returns nil, nil when nothing recognised and non-empty is present.
	// Text takes priority over file lists when both are available.
	Capture() (*Snapshot, error)

	// WriteText replaces the clipboard contents with text.
	WriteText(text string) error

	// Close releases any resources held by the device.
	Close()
}

// textSnapshot normalizes raw clipboard text into a Snapshot, or nil when
// the text is effectively empty.
func textSnapshot(raw string) *Snapshot {
	normalized := normalizeNewlines(raw)
	if strings.TrimSpace(normalized) == "" {
		return nil
	}
	return &Snapshot{
		Type:    TypeText,
		Content: normalized,
		Preview: buildTextPreview(normalized),
	}
}

// fileSnapshot serializes a copied file list into a Snapshot, or nil when
// the list is empty.
func fileSnapshot(paths []string) *Snapshot {
	if len(paths) == 0 {
		return nil
	}
	content, err := json.Marshal(paths)
	if err != nil {
		return nil
	}
	return &Snapshot{
		Type:    TypeFile,
		Content: string(content),
		Preview: buildFilePreview(paths),
	}
}
