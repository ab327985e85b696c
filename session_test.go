package blinkstick

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTransfer struct {
	requestType byte
	request     byte
	value       uint16
	index       uint16
	data        []byte
}

// fakeHandle records every control transfer and can fail or answer IN
// transfers from a canned reply.
type fakeHandle struct {
	transfers []fakeTransfer
	err       error
	failAfter int // fail once this many transfers have been recorded, 0 = use err unconditionally
	reply     []byte
	replyN    int // bytes "transferred" on IN, defaults to len(reply)
	released  int
}

func (f *fakeHandle) ControlTransfer(requestType byte, request byte, value uint16, index uint16, data []byte, length int, timeout int) (int, error) {
	if f.err != nil && (f.failAfter == 0 || len(f.transfers) >= f.failAfter) {
		return 0, f.err
	}
	f.transfers = append(f.transfers, fakeTransfer{
		requestType: requestType,
		request:     request,
		value:       value,
		index:       index,
		data:        append([]byte(nil), data[:length]...),
	})
	if requestType&0x80 != 0 {
		n := copy(data, f.reply)
		if f.replyN != 0 {
			n = f.replyN
		}
		return n, nil
	}
	return length, nil
}

func (f *fakeHandle) ReleaseInterface(iface int) error {
	f.released++
	return nil
}

func newTestSession(f *fakeHandle) *Session {
	return &Session{handle: f, clk: clock.New()}
}

func TestSetColorWireFormat(t *testing.T) {
	f := &fakeHandle{}
	s := newTestSession(f)

	require.NoError(t, s.SetColor(RgbColor{R: 255, G: 128, B: 0}))
	require.Len(t, f.transfers, 1)

	tr := f.transfers[0]
	assert.Equal(t, byte(0x21), tr.requestType)
	assert.Equal(t, byte(0x09), tr.request)
	assert.Equal(t, uint16(0x0301), tr.value)
	assert.Equal(t, uint16(0), tr.index)
	assert.Equal(t, []byte{1, 255, 128, 0}, tr.data)
}

func TestSetColorIndexedRoutesZeroToSingle(t *testing.T) {
	f := &fakeHandle{}
	s := newTestSession(f)

	require.NoError(t, s.SetColorIndexed(0, RgbColor{R: 9}))
	require.Len(t, f.transfers, 1)
	assert.Equal(t, []byte{1, 9, 0, 0}, f.transfers[0].data)

	require.NoError(t, s.SetColorIndexed(2, RgbColor{R: 9}))
	require.Len(t, f.transfers, 2)
	assert.Equal(t, []byte{2, 2, 9, 0, 0}, f.transfers[1].data)
	assert.Equal(t, uint16(0x0302), f.transfers[1].value)
}

func TestSetColorsEmptyIssuesNoTransfer(t *testing.T) {
	f := &fakeHandle{}
	s := newTestSession(f)

	require.NoError(t, s.SetColors(0, nil))
	assert.Empty(t, f.transfers)
}

func TestSetColorsSingleDegeneratesToSingleReport(t *testing.T) {
	f := &fakeHandle{}
	s := newTestSession(f)
	c := RgbColor{R: 1, G: 2, B: 3}

	require.NoError(t, s.SetColors(0, []RgbColor{c}))
	require.NoError(t, s.SetColor(c))
	require.Len(t, f.transfers, 2)
	assert.Equal(t, f.transfers[1], f.transfers[0])

	// both decode back to the same triple
	got, err := DecodeColorReport(f.transfers[0].data)
	require.NoError(t, err)
	assert.Equal(t, c, got)
}

func TestSetColorsMulti(t *testing.T) {
	f := &fakeHandle{}
	s := newTestSession(f)

	leds := []RgbColor{{R: 255}, {G: 255}, {B: 255}}
	require.NoError(t, s.SetColors(1, leds))
	require.Len(t, f.transfers, 1)

	tr := f.transfers[0]
	assert.Equal(t, uint16(0x0303), tr.value)
	assert.Equal(t, []byte{3, 1, 0, 3, 255, 0, 0, 0, 255, 0, 0, 0, 255}, tr.data)
}

func TestGetColor(t *testing.T) {
	f := &fakeHandle{reply: []byte{1, 10, 20, 30}}
	s := newTestSession(f)

	c, err := s.GetColor()
	require.NoError(t, err)
	assert.Equal(t, RgbColor{R: 10, G: 20, B: 30}, c)

	tr := f.transfers[0]
	assert.Equal(t, byte(0xA1), tr.requestType)
	assert.Equal(t, byte(0x01), tr.request)
	assert.Equal(t, uint16(0x0301), tr.value)
	assert.Len(t, tr.data, 4)
}

func TestTransferFailureKind(t *testing.T) {
	f := &fakeHandle{err: errors.New("pipe stalled")}
	s := newTestSession(f)

	err := s.SetColor(RgbColor{})
	assert.ErrorIs(t, err, ErrTransfer)

	_, err = s.GetColor()
	assert.ErrorIs(t, err, ErrTransfer)

	_, err = s.Serial()
	assert.ErrorIs(t, err, ErrTransfer)
}

func serialDescriptor(serial string) []byte {
	units := []uint16(nil)
	for _, r := range serial {
		units = append(units, uint16(r)) // test serials are BMP-only
	}
	b := make([]byte, 2+2*len(units))
	b[0] = byte(len(b))
	b[1] = 0x03
	for i, u := range units {
		binary.LittleEndian.PutUint16(b[2+2*i:], u)
	}
	return b
}

func TestSerial(t *testing.T) {
	desc := serialDescriptor("BS012345-1.0")
	f := &fakeHandle{reply: desc, replyN: len(desc)}
	s := newTestSession(f)

	serial, err := s.Serial()
	require.NoError(t, err)
	assert.Equal(t, "BS012345-1.0", serial)

	tr := f.transfers[0]
	assert.Equal(t, byte(0x80), tr.requestType)
	assert.Equal(t, byte(0x06), tr.request)
	assert.Equal(t, uint16(0x0303), tr.value) // string descriptor, index 3
	assert.Len(t, tr.data, 256)
}

func TestSerialEmptyDescriptor(t *testing.T) {
	f := &fakeHandle{reply: []byte{2, 0x03}, replyN: 2}
	s := newTestSession(f)

	_, err := s.Serial()
	assert.ErrorIs(t, err, ErrSerial)
}

func TestSerialInvalidUTF16(t *testing.T) {
	// a lone high surrogate is not decodable
	desc := []byte{4, 0x03, 0x00, 0xD8}
	f := &fakeHandle{reply: desc, replyN: len(desc)}
	s := newTestSession(f)

	_, err := s.Serial()
	assert.ErrorIs(t, err, ErrSerialDecode)
}

func TestCloseReleasesOnce(t *testing.T) {
	f := &fakeHandle{}
	s := newTestSession(f)

	s.Close()
	s.Close()
	assert.Equal(t, 1, f.released)
}

func TestCloseClosesOwnedContextOnce(t *testing.T) {
	f := &fakeHandle{}
	s := newTestSession(f)
	closed := 0
	s.done = func() { closed++ }

	s.Close()
	s.Close()
	assert.Equal(t, 1, f.released)
	assert.Equal(t, 1, closed)
}

func TestLibusbHandleRejectsUnknownRequestType(t *testing.T) {
	// 0x40 is vendor|out, which this device family never issues
	_, err := libusbHandle{}.ControlTransfer(0x40, 0, 0, 0, nil, 0, 0)
	assert.ErrorIs(t, err, ErrTransfer)
}

// fakeClaimHandle records the open sequence and fails chosen steps.
type fakeClaimHandle struct {
	calls        []string
	driverActive bool
	activeErr    error
	detachErr    error
	configErr    error
	claimErr     error
}

func (f *fakeClaimHandle) KernelDriverActive(iface int) (bool, error) {
	f.calls = append(f.calls, "active")
	return f.driverActive, f.activeErr
}

func (f *fakeClaimHandle) DetachKernelDriver(iface int) error {
	f.calls = append(f.calls, "detach")
	return f.detachErr
}

func (f *fakeClaimHandle) SetConfiguration(config int) error {
	f.calls = append(f.calls, "configure")
	return f.configErr
}

func (f *fakeClaimHandle) ClaimInterface(iface int) error {
	f.calls = append(f.calls, "claim")
	return f.claimErr
}

func TestClaimDeviceStepOrder(t *testing.T) {
	f := &fakeClaimHandle{driverActive: true}
	require.NoError(t, claimDevice(f, 0, 1))
	assert.Equal(t, []string{"active", "detach", "configure", "claim"}, f.calls)

	f = &fakeClaimHandle{} // no driver bound, nothing to detach
	require.NoError(t, claimDevice(f, 0, 1))
	assert.Equal(t, []string{"active", "configure", "claim"}, f.calls)
}

func TestClaimDeviceDistinctErrorKinds(t *testing.T) {
	boom := errors.New("boom")

	f := &fakeClaimHandle{activeErr: boom}
	assert.ErrorIs(t, claimDevice(f, 0, 1), ErrDriverDetach)
	assert.Equal(t, []string{"active"}, f.calls)

	f = &fakeClaimHandle{driverActive: true, detachErr: boom}
	assert.ErrorIs(t, claimDevice(f, 0, 1), ErrDriverDetach)
	assert.Equal(t, []string{"active", "detach"}, f.calls) // aborts before configure

	f = &fakeClaimHandle{configErr: boom}
	err := claimDevice(f, 0, 1)
	assert.ErrorIs(t, err, ErrSetConfiguration)
	assert.NotErrorIs(t, err, ErrDriverDetach)
	assert.Equal(t, []string{"active", "configure"}, f.calls)

	f = &fakeClaimHandle{claimErr: boom}
	err = claimDevice(f, 0, 1)
	assert.ErrorIs(t, err, ErrClaim)
	assert.NotErrorIs(t, err, ErrSetConfiguration)
	assert.Equal(t, []string{"active", "configure", "claim"}, f.calls)
}
