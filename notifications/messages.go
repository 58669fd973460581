package notifications

import (
	"fmt"

	"github.com/b0bbywan/go-usbwatch/history"
)

const (
	InfoSummary    = "USB event"
	ProblemSummary = "USB reset"
	Icon           = "dialog-information"
)

func InfoMessage(identity string, status history.Status) string {
	if status == history.StatusAdded {
		return fmt.Sprintf("Added %s", identity)
	}
	return fmt.Sprintf("Removed %s", identity)
}

func ProblemMessage(identity string) string {
	return fmt.Sprintf("Problem with %s", identity)
}
