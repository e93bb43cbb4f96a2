package clipboard

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// ContentType identifies what kind of content a snapshot holds.
type ContentType string

const (
	// TypeText is plain text content.
	TypeText ContentType = "text"
	// TypeFile is a copied file list; Content holds the JSON-encoded paths.
	TypeFile ContentType = "file"
)

// Snapshot is a single captured clipboard state, not yet persisted.
type Snapshot struct {
	Type    ContentType `json:"content_type"`
	Content string      `json:"content"`
	Preview string      `json:"preview"`
}

// Signature returns the dedup key for the snapshot. It is only used for
// short-lived duplicate suppression in the monitor and is never stored.
func (s *Snapshot) Signature() string {
	return string(s.Type) + ":" + s.Content
}

const (
	maxPreviewBytes = 120
	maxPreviewLines = 6
	maxPreviewFiles = 3
)

// normalizeNewlines rewrites Windows line endings to plain \n.
func normalizeNewlines(text string) string {
	return strings.ReplaceAll(text, "\r\n", "\n")
}

// buildTextPreview condenses text into a bounded display string: the first
// six lines of the trimmed text, truncated to 120 bytes at a rune boundary
// with a trailing ellipsis when it doesn't fit.
func buildTextPreview(text string) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	if len(lines) > maxPreviewLines {
		lines = lines[:maxPreviewLines]
	}
	joined := strings.Join(lines, "\n")
	if len(joined) <= maxPreviewBytes {
		return joined
	}

	end := maxPreviewBytes
	for end > 0 && !utf8.RuneStart(joined[end]) {
		end--
	}
	return joined[:end] + "…"
}

// buildFilePreview lists the base names of the first three paths, one per
// line, with a trailing count line when more files were copied.
func buildFilePreview(paths []string) string {
	segments := make([]string, 0, maxPreviewFiles+1)
	for i, path := range paths {
		if i == maxPreviewFiles {
			break
		}
		name := filepath.Base(path)
		if name == "." || name == string(filepath.Separator) {
			name = path
		}
		segments = append(segments, name)
	}
	if len(paths) > maxPreviewFiles {
		segments = append(segments, fmt.Sprintf("… 等 %d 个文件", len(paths)))
	}
	return strings.Join(segments, "\n")
}
