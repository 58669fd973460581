package detect

import (
	"github.com/b0bbywan/go-usbwatch/history"
)

const (
	SubsystemUSB = "usb"
	DevtypeUSB   = "usb_device"
)

// udevDevice is the part of *udev.Device the detector relies on.
type udevDevice interface {
	Action() string
	Syspath() string
	Subsystem() string
	Devtype() string
}

// DeviceEvent is a hotplug transition for one USB device, identified by its
// sysfs path.
type DeviceEvent struct {
	Identity string
	Status   history.Status
}
