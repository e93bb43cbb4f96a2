package clipboard

// headlessDevice is a no-op device for environments without a clipboard.
// Its sequence counter is always 0, so the monitor never extracts anything,
// and writes are silently discarded.
type headlessDevice struct{}

func (d *headlessDevice) Name() string                { return "headless (no-op)" }
func (d *headlessDevice) Sequence() uint64            { return 0 }
func (d *headlessDevice) Capture() (*Snapshot, error) { return nil, nil }
func (d *headlessDevice) WriteText(string) error      { return nil }
func (d *headlessDevice) Close()                      {}
