package blinkstick

import (
	"fmt"
	"time"
)

// Pulse fades the first LED up to c and back down to black. Each phase runs
// steps transfers spaced duration/steps apart (whole milliseconds). The call
// blocks until both phases finish and cannot be cancelled; the first failed
// transfer aborts the remaining steps.
func (s *Session) Pulse(c RgbColor, duration time.Duration, steps uint) error {
	if steps == 0 {
		return fmt.Errorf("%w: steps must be positive", ErrInvalidEffect)
	}
	delay := time.Duration(duration.Milliseconds()/int64(steps)) * time.Millisecond

	for i := uint(0); i < steps; i++ {
		factor := float64(i) / float64(steps)
		if err := s.SetColor(scaleColor(c, factor)); err != nil {
			return err
		}
		s.clk.Sleep(delay)
	}
	for i := uint(0); i < steps; i++ {
		factor := 1 - float64(i)/float64(steps)
		if err := s.SetColor(scaleColor(c, factor)); err != nil {
			return err
		}
		s.clk.Sleep(delay)
	}
	return nil
}

// scaleColor multiplies every channel by factor, truncating toward zero.
func scaleColor(c RgbColor, factor float64) RgbColor {
	return RgbColor{
		R: uint8(float64(c.R) * factor),
		G: uint8(float64(c.G) * factor),
		B: uint8(float64(c.B) * factor),
	}
}
