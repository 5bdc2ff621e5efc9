package paste

import (
	"github.com/atotto/clipboard"
)

// SystemClipboard adapts the OS clipboard through the atotto binding.
// The binding is plain-text only, so the snapshot carries at most one
// item; richer flavors require a platform pasteboard layer.
type SystemClipboard struct{}

var _ Clipboard = SystemClipboard{}

// ReadAll captures the current clipboard text.
func (SystemClipboard) ReadAll() ([]Item, error) {
	text, err := clipboard.ReadAll()
	if err != nil {
		return nil, err
	}
	if text == "" {
		return []Item{}, nil
	}
	return []Item{{Type: textType, Payload: []byte(text)}}, nil
}

// Clear empties the clipboard.
func (SystemClipboard) Clear() error {
	return clipboard.WriteAll("")
}

// Write places text on the clipboard. The binding has no transient
// flavor, so the flag is accepted and dropped here.
func (SystemClipboard) Write(payload []byte, _ string, _ bool) error {
	return clipboard.WriteAll(string(payload))
}
