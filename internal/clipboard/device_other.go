//go:build !windows

package clipboard

import (
	"hash/fnv"
	"log/slog"
	"sync"

	xclip "golang.design/x/clipboard"
)

// otherDevice backs the clipboard with golang.design/x/clipboard on
// platforms without a native sequence counter. The counter is emulated: it
// bumps whenever the content hash changes between Sequence calls. File-drop
// formats are not exposed by the underlying library, so captures are text
// only.
type otherDevice struct {
	mu       sync.Mutex
	sequence uint64
	lastHash uint64
}

// New returns the platform clipboard device, or a no-op device when no
// display environment is available (headless servers, containers).
func New() Device {
	if err := xclip.Init(); err != nil {
		slog.Warn("clipboard unavailable, running headless", "err", err)
		return &headlessDevice{}
	}
	return &otherDevice{}
}

func (d *otherDevice) Name() string { return "x/clipboard (poll)" }

func (d *otherDevice) Sequence() uint64 {
	h := fnv.New64a()
	_, _ = h.Write(xclip.Read(xclip.FmtText))
	sum := h.Sum64()

	d.mu.Lock()
	defer d.mu.Unlock()
	if sum != d.lastHash {
		d.lastHash = sum
		d.sequence++
	}
	return d.sequence
}

func (d *otherDevice) Capture() (*Snapshot, error) {
	return textSnapshot(string(xclip.Read(xclip.FmtText))), nil
}

func (d *otherDevice) WriteText(text string) error {
	xclip.Write(xclip.FmtText, []byte(text))
	return nil
}

func (d *otherDevice) Close() {}
