package paste

import "time"

// Item is one (type, payload) pair captured from or written to the
// system clipboard.
type Item struct {
	Type    string
	Payload []byte
}

// Clipboard abstracts the process-wide OS clipboard.
type Clipboard interface {
	// ReadAll captures every item currently on the clipboard.
	ReadAll() ([]Item, error)
	// Clear empties the clipboard.
	Clear() error
	// Write places one item on the clipboard. Transient marks the entry
	// as short-lived for clipboard-history purposes.
	Write(payload []byte, itemType string, transient bool) error
}

// TrustOracle reports whether the OS allows this process to post
// synthetic input events. promptUser asks the OS to show its grant
// dialog; callers prompt only on the very first check of a sequence.
type TrustOracle interface {
	IsTrusted(promptUser bool) bool
}

// KeyInjector posts synthetic key events to the system input stream.
// Both calls are fire-and-forget.
type KeyInjector interface {
	PostPaste()
	PostReturn()
}

// Notifier surfaces a one-time user-visible notice that delivery is
// waiting on a permission grant.
type Notifier interface {
	PermissionWait()
}

// Scheduler submits a continuation to run after a delay. The retry loop
// and restoration delay are scheduled continuations rather than
// blocking sleeps; tests substitute a virtual clock.
type Scheduler interface {
	AfterFunc(d time.Duration, f func())
}

type systemScheduler struct{}

func (systemScheduler) AfterFunc(d time.Duration, f func()) { time.AfterFunc(d, f) }

// SystemScheduler schedules on the process timer heap.
var SystemScheduler Scheduler = systemScheduler{}
