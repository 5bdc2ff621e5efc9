package paste

import (
	"log/slog"

	"github.com/gen2brain/beeep"
)

// DesktopNotifier shows the permission-wait notice as a desktop
// notification.
type DesktopNotifier struct{}

var _ Notifier = DesktopNotifier{}

// PermissionWait surfaces the one-time notice that delivery is waiting
// on an accessibility grant.
func (DesktopNotifier) PermissionWait() {
	err := beeep.Notify("dictaflow",
		"Waiting for the accessibility permission before pasting. Grant it in system settings to continue.", "")
	if err != nil {
		slog.Warn("permission notice failed", slog.String("error", err.Error()))
	}
}
