// Package blinkstick drives BlinkStick USB LED devices over HID feature
// reports carried in control transfers. More info: https://www.blinkstick.com
package blinkstick

import "time"

// USB identifiers of the BlinkStick device family.
const (
	IDVendor  = uint16(0x20A0)
	IDProduct = uint16(0x41E5)
)

// Feature report ids understood by the firmware.
const (
	reportIDColor   = 1 // first LED
	reportIDIndexed = 2 // one of 8 LEDs (BlinkStick Pro)
	reportIDColors  = 3 // a whole channel of LEDs (BlinkStick Pro, 64+)
)

// Requests carried over control transfers.
const (
	requestSetReport     = 0x09 // HID SET_REPORT
	requestGetReport     = 0x01 // HID GET_REPORT
	requestGetDescriptor = 0x06 // standard GET_DESCRIPTOR

	reportTypeFeature = 0x0300 // wValue high byte for HID feature reports
	descriptorString  = 0x03
	serialStringIndex = 3 // serial-number string descriptor on this family
)

// bmRequestType bitmaps used by this device family.
const (
	requestTypeSetFeature = 0x21 // host-to-device | class | interface
	requestTypeGetFeature = 0xA1 // device-to-host | class | interface
	requestTypeStandardIn = 0x80 // device-to-host | standard | device
)

// Maximum time one control transfer may take before it is failed.
const transferTimeout = time.Second

const (
	deviceInterface     = 0
	deviceConfiguration = 1
)
