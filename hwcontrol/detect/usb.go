package detect

import (
	"github.com/b0bbywan/go-usbwatch/history"
)

func usbPreChecker(device udevDevice) bool {
	if device == nil ||
		device.Subsystem() != SubsystemUSB ||
		device.Devtype() != DevtypeUSB ||
		device.Syspath() == "" {
		return false
	}
	return true
}

func detectStatus(device udevDevice) (history.Status, bool) {
	status, err := history.ParseStatus(device.Action())
	if err != nil {
		return 0, false
	}
	return status, true
}
