package blinkstick

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPulseZeroStepsIsGuarded(t *testing.T) {
	f := &fakeHandle{}
	s := newTestSession(f)

	err := s.Pulse(RgbColor{R: 255}, 1000, 0)
	assert.ErrorIs(t, err, ErrInvalidEffect)
	assert.Empty(t, f.transfers)
}

func TestPulseEnvelope(t *testing.T) {
	f := &fakeHandle{}
	s := newTestSession(f)
	c := RgbColor{R: 255, G: 128, B: 64}

	// zero duration keeps the per-step delay at zero
	require.NoError(t, s.Pulse(c, 0, 4))
	require.Len(t, f.transfers, 8)

	// fade-in starts dark and climbs; fade-out starts at full brightness
	assert.Equal(t, []byte{1, 0, 0, 0}, f.transfers[0].data)
	assert.Equal(t, []byte{1, 127, 64, 32}, f.transfers[2].data) // factor 0.5, truncated
	assert.Equal(t, []byte{1, 255, 128, 64}, f.transfers[4].data)
	assert.Equal(t, []byte{1, 127, 64, 32}, f.transfers[6].data)
	assert.Equal(t, []byte{1, 63, 32, 16}, f.transfers[7].data) // factor 0.25
}

func TestPulseAbortsOnFirstTransferError(t *testing.T) {
	f := &fakeHandle{err: errors.New("stall"), failAfter: 3}
	s := newTestSession(f)

	err := s.Pulse(RgbColor{R: 255}, 0, 4)
	assert.ErrorIs(t, err, ErrTransfer)
	assert.Len(t, f.transfers, 3)
}

func TestScaleColorTruncates(t *testing.T) {
	c := scaleColor(RgbColor{R: 255, G: 255, B: 255}, 0.999)
	assert.Equal(t, RgbColor{R: 254, G: 254, B: 254}, c)

	assert.Equal(t, RgbColor{}, scaleColor(RgbColor{R: 255}, 0))
}
