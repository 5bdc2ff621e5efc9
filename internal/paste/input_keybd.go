package paste

import (
	"log/slog"
	"runtime"

	"github.com/micmonay/keybd_event"
)

// SystemKeyInjector posts synthetic keystrokes through the keybd_event
// binding. Both calls are fire-and-forget: injection failures are
// logged, never returned.
type SystemKeyInjector struct{}

var _ KeyInjector = SystemKeyInjector{}

// PostPaste posts the platform paste chord (command+V on darwin,
// ctrl+V elsewhere).
func (SystemKeyInjector) PostPaste() {
	kb, err := keybd_event.NewKeyBonding()
	if err != nil {
		slog.Error("key injector unavailable", slog.String("error", err.Error()))
		return
	}
	kb.SetKeys(keybd_event.VK_V)
	if runtime.GOOS == "darwin" {
		kb.HasSuper(true)
	} else {
		kb.HasCTRL(true)
	}
	if err := kb.Launching(); err != nil {
		slog.Error("post paste keystroke failed", slog.String("error", err.Error()))
	}
}

// PostReturn posts a bare return-key event.
func (SystemKeyInjector) PostReturn() {
	kb, err := keybd_event.NewKeyBonding()
	if err != nil {
		slog.Error("key injector unavailable", slog.String("error", err.Error()))
		return
	}
	kb.SetKeys(keybd_event.VK_ENTER)
	if err := kb.Launching(); err != nil {
		slog.Error("post return keystroke failed", slog.String("error", err.Error()))
	}
}
