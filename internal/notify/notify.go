// Package notify sends optional desktop notifications for moves and
// failures.
package notify

import (
	"github.com/gen2brain/beeep"
	log "github.com/sirupsen/logrus"
)

// icon is reserved for a bundled app icon; empty means the platform
// default.
var icon []byte

// Send shows a desktop notification when enabled. Failures are logged
// and otherwise ignored; a broken notification daemon must not affect
// file processing.
func Send(enabled bool, title string, message string) {
	if !enabled {
		return
	}
	if err := beeep.Notify(title, message, icon); err != nil {
		log.Warnf("Notification failed: %v", err)
	}
}
