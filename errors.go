package blinkstick

import "errors"

// Every fallible USB operation fails with one of these kinds, wrapped with
// detail, so callers can tell "no device" from "busy" from "transfer failed".
var (
	ErrNoDeviceFound    = errors.New("no blinkstick devices found")
	ErrDescriptor       = errors.New("failed to read device descriptor")
	ErrOpenDevice       = errors.New("failed to open device")
	ErrDriverDetach     = errors.New("failed to detach kernel driver")
	ErrSetConfiguration = errors.New("failed to set configuration")
	ErrClaim            = errors.New("failed to claim interface")
	ErrTransfer         = errors.New("control transfer failed")
	ErrSerial           = errors.New("could not obtain serial number")
	ErrSerialDecode     = errors.New("serial number is not valid UTF-16")
	ErrInvalidColor     = errors.New("invalid color")
	ErrInvalidEffect    = errors.New("invalid effect parameters")
	ErrInvalidReport    = errors.New("invalid feature report")
)
