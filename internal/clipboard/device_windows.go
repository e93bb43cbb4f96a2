//go:build windows

package clipboard

import (
	"fmt"
	"time"
	"unicode/utf16"
	"unsafe"

	"golang.org/x/sys/windows"
)

const (
	cfUnicodeText = 13
	cfHDrop       = 15

	gmemMoveable = 0x0002
)

var (
	user32   = windows.NewLazySystemDLL("user32.dll")
	kernel32 = windows.NewLazySystemDLL("kernel32.dll")
	shell32  = windows.NewLazySystemDLL("shell32.dll")

	procOpenClipboard              = user32.NewProc("OpenClipboard")
	procCloseClipboard             = user32.NewProc("CloseClipboard")
	procEmptyClipboard             = user32.NewProc("EmptyClipboard")
	procGetClipboardData           = user32.NewProc("GetClipboardData")
	procSetClipboardData           = user32.NewProc("SetClipboardData")
	procIsClipboardFormatAvailable = user32.NewProc("IsClipboardFormatAvailable")
	procGetClipboardSequenceNumber = user32.NewProc("GetClipboardSequenceNumber")

	procGlobalAlloc  = kernel32.NewProc("GlobalAlloc")
	procGlobalFree   = kernel32.NewProc("GlobalFree")
	procGlobalLock   = kernel32.NewProc("GlobalLock")
	procGlobalUnlock = kernel32.NewProc("GlobalUnlock")

	procDragQueryFileW = shell32.NewProc("DragQueryFileW")
)

const (
	acquireAttempts = 5
	acquireBackoff  = 30 * time.Millisecond
)

// guard is a scoped hold on the system clipboard. The clipboard is a
// system-wide resource contended by every process; acquisition retries a
// bounded number of times and release must run on every exit path.
type guard struct{}

func acquire() (*guard, error) {
	for i := 0; i < acquireAttempts; i++ {
		r, _, _ := procOpenClipboard.Call(0)
		if r != 0 {
			return &guard{}, nil
		}
		time.Sleep(acquireBackoff)
	}
	return nil, ErrUnavailable
}

func (g *guard) release() {
	_, _, _ = procCloseClipboard.Call()
}

type windowsDevice struct{}

// New returns the native win32 clipboard device.
func New() Device {
	return &windowsDevice{}
}

func (d *windowsDevice) Name() string { return "win32 clipboard" }

func (d *windowsDevice) Sequence() uint64 {
	r, _, _ := procGetClipboardSequenceNumber.Call()
	return uint64(uint32(r))
}

func (d *windowsDevice) Capture() (*Snapshot, error) {
	g, err := acquire()
	if err != nil {
		return nil, err
	}
	defer g.release()

	if formatAvailable(cfUnicodeText) {
		text, err := readUnicodeText()
		if err != nil {
			return nil, fmt.Errorf("read text: %w", err)
		}
		if text != "" {
			return textSnapshot(text), nil
		}
	}

	if formatAvailable(cfHDrop) {
		paths, err := readFileList()
		if err != nil {
			return nil, fmt.Errorf("read file list: %w", err)
		}
		return fileSnapshot(paths), nil
	}

	return nil, nil
}

func (d *windowsDevice) WriteText(text string) error {
	g, err := acquire()
	if err != nil {
		return err
	}
	defer g.release()

	if r, _, _ := procEmptyClipboard.Call(); r == 0 {
		return fmt.Errorf("%w: empty clipboard", ErrWriteFailed)
	}

	wide := utf16.Encode([]rune(text))
	wide = append(wide, 0)
	size := len(wide) * 2

	handle, _, _ := procGlobalAlloc.Call(gmemMoveable, uintptr(size))
	if handle == 0 {
		return fmt.Errorf("%w: allocate %d bytes", ErrWriteFailed, size)
	}

	data, _, _ := procGlobalLock.Call(handle)
	if data == 0 {
		_, _, _ = procGlobalFree.Call(handle)
		return fmt.Errorf("%w: lock global memory", ErrWriteFailed)
	}
	copy(unsafe.Slice((*uint16)(unsafe.Pointer(data)), len(wide)), wide)
	_, _, _ = procGlobalUnlock.Call(handle)

	if r, _, _ := procSetClipboardData.Call(cfUnicodeText, handle); r == 0 {
		// Ownership was not transferred, so the allocation is still ours.
		_, _, _ = procGlobalFree.Call(handle)
		return fmt.Errorf("%w: set clipboard data", ErrWriteFailed)
	}
	return nil
}

func (d *windowsDevice) Close() {}

func formatAvailable(format uintptr) bool {
	r, _, _ := procIsClipboardFormatAvailable.Call(format)
	return r != 0
}

// readUnicodeText reads CF_UNICODETEXT under an open clipboard. Returns ""
// when the format handle is absent or cannot be locked.
func readUnicodeText() (string, error) {
	handle, _, _ := procGetClipboardData.Call(cfUnicodeText)
	if handle == 0 {
		return "", nil
	}
	data, _, _ := procGlobalLock.Call(handle)
	if data == 0 {
		return "", nil
	}
	defer procGlobalUnlock.Call(handle)

	return windows.UTF16PtrToString((*uint16)(unsafe.Pointer(data))), nil
}

// readFileList reads the CF_HDROP path list under an open clipboard.
func readFileList() ([]string, error) {
	handle, _, _ := procGetClipboardData.Call(cfHDrop)
	if handle == 0 {
		return nil, nil
	}
	data, _, _ := procGlobalLock.Call(handle)
	if data == 0 {
		return nil, nil
	}
	defer procGlobalUnlock.Call(handle)

	const allFiles = ^uintptr(0) & 0xFFFFFFFF
	count, _, _ := procDragQueryFileW.Call(data, allFiles, 0, 0)

	paths := make([]string, 0, count)
	for i := uintptr(0); i < count; i++ {
		length, _, _ := procDragQueryFileW.Call(data, i, 0, 0)
		if length == 0 {
			continue
		}
		buf := make([]uint16, length+1)
		copied, _, _ := procDragQueryFileW.Call(data, i, uintptr(unsafe.Pointer(&buf[0])), length+1)
		if copied > 0 {
			paths = append(paths, windows.UTF16ToString(buf[:copied]))
		}
	}
	return paths, nil
}
