package blinkstick

import (
	"encoding/binary"
	"fmt"
	"sync"
	"unicode"
	"unicode/utf16"

	"github.com/benbjohnson/clock"
	"github.com/gotmc/libusb"
)

// usbHandle is the slice of the device handle the session drives. Tests
// substitute a fake; hardware goes through libusbHandle.
type usbHandle interface {
	ControlTransfer(requestType byte, request byte, value uint16, index uint16, data []byte, length int, timeout int) (int, error)
	ReleaseInterface(iface int) error
}

// libusbHandle adapts *libusb.DeviceHandle to usbHandle. The binding wants
// its own unexported request-type kind, so the known bitmaps are switched on
// and passed through as untyped constants.
type libusbHandle struct {
	dh *libusb.DeviceHandle
}

func (h libusbHandle) ControlTransfer(requestType byte, request byte, value uint16, index uint16, data []byte, length int, timeout int) (int, error) {
	switch requestType {
	case requestTypeSetFeature:
		return h.dh.ControlTransfer(requestTypeSetFeature, request, value, index, data, length, timeout)
	case requestTypeGetFeature:
		return h.dh.ControlTransfer(requestTypeGetFeature, request, value, index, data, length, timeout)
	case requestTypeStandardIn:
		return h.dh.ControlTransfer(requestTypeStandardIn, request, value, index, data, length, timeout)
	}
	return 0, fmt.Errorf("%w: unknown request type 0x%02X", ErrTransfer, requestType)
}

func (h libusbHandle) ReleaseInterface(iface int) error {
	return h.dh.ReleaseInterface(iface)
}

// Session is an exclusively claimed BlinkStick. While a Session exists this
// process owns interface 0 with the kernel driver detached; Close always
// gives the interface back.
type Session struct {
	handle usbHandle
	dh     *libusb.DeviceHandle
	done   func() // closes the owning enumeration context, may be nil
	clk    clock.Clock
	mu     sync.Mutex // serializes control transfers on the one handle
}

// claimHandle covers the handle calls of the open sequence, so the sequence
// is testable without hardware.
type claimHandle interface {
	KernelDriverActive(iface int) (bool, error)
	DetachKernelDriver(iface int) error
	SetConfiguration(config int) error
	ClaimInterface(iface int) error
}

// Open opens the device and takes exclusive ownership of interface 0.
func (d Device) Open() (*Session, error) {
	dh, err := d.dev.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOpenDevice, err)
	}
	if err := claimDevice(dh, deviceInterface, deviceConfiguration); err != nil {
		dh.Close()
		return nil, err
	}
	return &Session{handle: libusbHandle{dh: dh}, dh: dh, clk: clock.New()}, nil
}

// claimDevice runs the exclusive-ownership sequence: detach the kernel
// driver if one is bound, select the configuration, claim the interface.
// Each step fails with its own error kind, and the order is fixed; detaching
// after claiming is not guaranteed to work everywhere.
func claimDevice(dh claimHandle, iface, config int) error {
	active, err := dh.KernelDriverActive(iface)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDriverDetach, err)
	}
	if active {
		if err := dh.DetachKernelDriver(iface); err != nil {
			return fmt.Errorf("%w: %v", ErrDriverDetach, err)
		}
	}
	if err := dh.SetConfiguration(config); err != nil {
		return fmt.Errorf("%w: %v", ErrSetConfiguration, err)
	}
	if err := dh.ClaimInterface(iface); err != nil {
		return fmt.Errorf("%w: %v", ErrClaim, err)
	}
	return nil
}

// Close releases interface 0 and discards the handle, then closes the
// enumeration context when this session owns it. Release failures are
// swallowed: the handle is going away either way. Safe to call twice.
func (s *Session) Close() {
	if s == nil || s.handle == nil {
		return
	}
	_ = s.handle.ReleaseInterface(deviceInterface)
	if s.dh != nil {
		s.dh.Close()
		s.dh = nil
	}
	if s.done != nil {
		s.done()
		s.done = nil
	}
	s.handle = nil
}

// SendFeatureReport pushes one encoded report to the device as a class
// SET_REPORT control transfer on interface 0.
func (s *Session) SendFeatureReport(r Report) error {
	data, err := r.MarshalBinary()
	if err != nil {
		return err
	}

	value := reportTypeFeature | uint16(data[0])
	s.mu.Lock()
	n, err := s.handle.ControlTransfer(requestTypeSetFeature, requestSetReport,
		value, 0, data, len(data), int(transferTimeout.Milliseconds()))
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransfer, err)
	}
	if n != len(data) {
		return fmt.Errorf("%w: short write (%d of %d bytes)", ErrTransfer, n, len(data))
	}
	return nil
}

// GetFeatureReport fills buf from the device with a class GET_REPORT
// transfer. buf[0] selects the report id on entry and the buffer length is
// the expected report length.
func (s *Session) GetFeatureReport(buf []byte) error {
	if len(buf) == 0 {
		return fmt.Errorf("%w: empty report buffer", ErrInvalidReport)
	}

	value := reportTypeFeature | uint16(buf[0])
	s.mu.Lock()
	_, err := s.handle.ControlTransfer(requestTypeGetFeature, requestGetReport,
		value, 0, buf, len(buf), int(transferTimeout.Milliseconds()))
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransfer, err)
	}
	return nil
}

// SetColor sets the first LED.
func (s *Session) SetColor(c RgbColor) error {
	return s.SendFeatureReport(ColorReport{Color: c})
}

// SetColorIndexed sets one LED of a BlinkStick Pro. Index 0 is routed
// through the single-LED report.
func (s *Session) SetColorIndexed(index byte, c RgbColor) error {
	if index == 0 {
		return s.SetColor(c)
	}
	r, err := NewIndexedColorReport(index, c)
	if err != nil {
		return err
	}
	return s.SendFeatureReport(r)
}

// SetColors sets a whole channel in one transfer. An empty list is a no-op
// that issues no transfer, and a single color degenerates to the single-LED
// report.
func (s *Session) SetColors(channel byte, colors []RgbColor) error {
	if len(colors) == 0 {
		return nil
	}
	if len(colors) == 1 {
		return s.SetColor(colors[0])
	}
	r, err := NewColorsReport(channel, colors)
	if err != nil {
		return err
	}
	return s.SendFeatureReport(r)
}

// GetColor reads back the first LED through the report-1 read path.
func (s *Session) GetColor() (RgbColor, error) {
	buf := []byte{reportIDColor, 0, 0, 0}
	if err := s.GetFeatureReport(buf); err != nil {
		return RgbColor{}, err
	}
	return DecodeColorReport(buf)
}

// Serial reads the device serial number, string descriptor 3 on this device
// family, with a standard GET_DESCRIPTOR transfer and decodes it from
// UTF-16LE. A descriptor of two bytes or fewer has no string content.
func (s *Session) Serial() (string, error) {
	buf := make([]byte, 256)
	value := uint16(descriptorString)<<8 | serialStringIndex

	s.mu.Lock()
	n, err := s.handle.ControlTransfer(requestTypeStandardIn, requestGetDescriptor,
		value, 0, buf, len(buf), int(transferTimeout.Milliseconds()))
	s.mu.Unlock()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTransfer, err)
	}
	if n <= 2 {
		return "", ErrSerial
	}
	// skip the two length/type header bytes
	return decodeUTF16LE(buf[2:n])
}

// decodeUTF16LE turns string-descriptor payload bytes into text. A trailing
// odd byte is dropped; malformed code units fail the decode.
func decodeUTF16LE(b []byte) (string, error) {
	units := make([]uint16, 0, len(b)/2)
	for i := 0; i+1 < len(b); i += 2 {
		units = append(units, binary.LittleEndian.Uint16(b[i:]))
	}
	runes := utf16.Decode(units)
	for _, r := range runes {
		if r == unicode.ReplacementChar {
			return "", ErrSerialDecode
		}
	}
	return string(runes), nil
}
