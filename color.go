package blinkstick

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
)

// RgbColor is the color of one LED, one byte per channel. Plain value,
// compared structurally.
type RgbColor struct {
	R, G, B uint8
}

// NewColor builds a color from raw channel bytes.
func NewColor(r, g, b uint8) RgbColor {
	return RgbColor{R: r, G: g, B: b}
}

// RandomColor samples each channel independently and uniformly.
func RandomColor() RgbColor {
	return RgbColor{
		R: uint8(rand.Intn(256)),
		G: uint8(rand.Intn(256)),
		B: uint8(rand.Intn(256)),
	}
}

// ColorFromName looks up a CSS color name, case-insensitively. The synonyms
// "aqua"/"cyan", "off"/"black" and the literal token "random" (a fresh random
// color) are accepted too. An unknown name is a miss, not an error, so
// callers can fall through to other parse strategies.
func ColorFromName(name string) (RgbColor, bool) {
	name = strings.ToLower(name)
	if name == "random" {
		return RandomColor(), true
	}
	c, ok := colorNames[name]
	return c, ok
}

// ColorFromHex parses "RRGGBB" with an optional leading '#'. Anything other
// than exactly six hex digits is a miss.
func ColorFromHex(hex string) (RgbColor, bool) {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return RgbColor{}, false
	}
	val, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return RgbColor{}, false
	}
	return RgbColor{
		R: uint8(val >> 16),
		G: uint8(val >> 8),
		B: uint8(val),
	}, true
}

// ParseColor resolves a user-supplied color token: named color first, then
// hex, then the literal "random". The order is a contract with callers.
func ParseColor(token string) (RgbColor, error) {
	if c, ok := ColorFromName(token); ok {
		return c, nil
	}
	if c, ok := ColorFromHex(token); ok {
		return c, nil
	}
	if strings.EqualFold(token, "random") {
		return RandomColor(), nil
	}
	return RgbColor{}, fmt.Errorf("%w: %q", ErrInvalidColor, token)
}

// Hex formats the color as six uppercase hex digits, no '#'.
func (c RgbColor) Hex() string {
	return fmt.Sprintf("%02X%02X%02X", c.R, c.G, c.B)
}

func (c RgbColor) String() string {
	return fmt.Sprintf("RGB(%d, %d, %d)", c.R, c.G, c.B)
}
