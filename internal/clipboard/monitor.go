package clipboard

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultPollInterval is how often the monitor checks the clipboard
// sequence counter.
const DefaultPollInterval = 320 * time.Millisecond

// Monitor polls a Device for clipboard changes and delivers accepted
// snapshots to the channel registered at construction. A change is accepted
// when the OS sequence counter moved since the last tick and the extracted
// content differs from the previously accepted content.
type Monitor struct {
	device   Device
	interval time.Duration
	out      chan<- Snapshot
	done     chan struct{}
	stopOnce sync.Once

	lastSequence atomic.Uint64

	sigMu         sync.Mutex
	lastSignature string
}

// NewMonitor returns a monitor that delivers snapshots to out. The channel
// is owned by the caller and is never closed by the monitor. interval <= 0
// selects DefaultPollInterval.
func NewMonitor(device Device, interval time.Duration, out chan<- Snapshot) *Monitor {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Monitor{
		device:   device,
		interval: interval,
		out:      out,
		done:     make(chan struct{}),
	}
}

// Run polls until Close is called. A failing tick is logged and skipped;
// the loop itself never terminates on error.
func (m *Monitor) Run() {
	t := time.NewTicker(m.interval)
	defer t.Stop()
	for {
		select {
		case <-m.done:
			return
		case <-t.C:
			m.tick()
		}
	}
}

// Close stops the poll loop. Safe to call more than once.
func (m *Monitor) Close() {
	m.stopOnce.Do(func() { close(m.done) })
}

func (m *Monitor) tick() {
	sequence := m.device.Sequence()
	// 0 means the counter is unsupported or momentarily unavailable.
	if sequence == 0 {
		return
	}
	if sequence == m.lastSequence.Load() {
		return
	}
	// Record the sequence before extracting so an overlapping tick cannot
	// re-process the same change.
	m.lastSequence.Store(sequence)

	snapshot, err := m.device.Capture()
	if err != nil {
		slog.Warn("clipboard capture failed", "err", err)
		return
	}
	if snapshot == nil {
		return
	}

	if !m.accept(snapshot.Signature()) {
		slog.Debug("duplicate clipboard content, skipping", "type", snapshot.Type)
		return
	}

	select {
	case m.out <- *snapshot:
	case <-m.done:
	}
}

// accept records sig as the latest accepted signature and reports whether it
// differed from the previous one.
func (m *Monitor) accept(sig string) bool {
	m.sigMu.Lock()
	defer m.sigMu.Unlock()
	if sig == m.lastSignature {
		return false
	}
	m.lastSignature = sig
	return true
}
