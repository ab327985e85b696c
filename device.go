package blinkstick

import (
	"fmt"

	"github.com/gotmc/libusb"
)

// Device is an unopened enumeration handle for one attached BlinkStick.
// It carries no behavior beyond Open.
type Device struct {
	dev *libusb.Device
	// ctx is the enumeration context the device came from; devices are only
	// valid while it stays open.
	ctx *libusb.Context
}

// FindAll opens a fresh USB enumeration context and returns every attached
// device matching the BlinkStick vendor/product pair, unopened, in bus
// enumeration order, plus a release function that closes the context keeping
// the devices valid. Call it once, after every session opened from the list
// is closed. No match is an empty list, not an error; a descriptor read
// failure is a hard error because it signals a broken USB layer.
func FindAll() ([]Device, func(), error) {
	ctx, err := libusb.NewContext()
	if err != nil {
		return nil, nil, fmt.Errorf("usb context: %w", err)
	}
	list, err := ctx.GetDeviceList()
	if err != nil {
		ctx.Close()
		return nil, nil, fmt.Errorf("usb device list: %w", err)
	}

	var found []Device
	for _, dev := range list {
		desc, err := dev.GetDeviceDescriptor()
		if err != nil {
			ctx.Close()
			return nil, nil, fmt.Errorf("%w: %v", ErrDescriptor, err)
		}
		if desc.VendorID == IDVendor && desc.ProductID == IDProduct {
			found = append(found, Device{dev: dev, ctx: ctx})
		}
	}
	return found, func() { ctx.Close() }, nil
}

// FindFirst opens a session on the first BlinkStick attached to the system.
// The session owns the enumeration context and closes it on Close.
func FindFirst() (*Session, error) {
	devices, done, err := FindAll()
	if err != nil {
		return nil, err
	}
	if len(devices) == 0 {
		done()
		return nil, ErrNoDeviceFound
	}
	sess, err := devices[0].Open()
	if err != nil {
		done()
		return nil, err
	}
	sess.done = done
	return sess, nil
}
