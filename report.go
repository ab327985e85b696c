package blinkstick

import "fmt"

// Report is one of the three feature-report layouts the firmware accepts.
// The first marshaled byte is always the report id. Channel bytes are laid
// out R, G, B in every layout; report id 1 encode and decode are mutually
// inverse.
type Report interface {
	ReportID() byte
	MarshalBinary() ([]byte, error)
}

// ColorReport sets the first LED. Wire layout: [1, R, G, B].
type ColorReport struct {
	Color RgbColor
}

func (ColorReport) ReportID() byte { return reportIDColor }

func (r ColorReport) MarshalBinary() ([]byte, error) {
	return []byte{reportIDColor, r.Color.R, r.Color.G, r.Color.B}, nil
}

// IndexedColorReport sets one of the LEDs 1..7 on a BlinkStick Pro.
// Wire layout: [2, index, R, G, B]. The firmware has no indexed form for
// LED 0; that one goes through ColorReport.
type IndexedColorReport struct {
	Index byte
	Color RgbColor
}

// NewIndexedColorReport rejects indices outside 1..7.
func NewIndexedColorReport(index byte, c RgbColor) (IndexedColorReport, error) {
	if index == 0 || index > 7 {
		return IndexedColorReport{}, fmt.Errorf("%w: led index %d out of range 1..7", ErrInvalidReport, index)
	}
	return IndexedColorReport{Index: index, Color: c}, nil
}

func (IndexedColorReport) ReportID() byte { return reportIDIndexed }

func (r IndexedColorReport) MarshalBinary() ([]byte, error) {
	if r.Index == 0 || r.Index > 7 {
		return nil, fmt.Errorf("%w: led index %d out of range 1..7", ErrInvalidReport, r.Index)
	}
	return []byte{reportIDIndexed, r.Index, r.Color.R, r.Color.G, r.Color.B}, nil
}

// ColorsReport sets a whole channel of LEDs in one transfer.
// Wire layout: [3, channel, 0, count, R,G,B, R,G,B, ...].
type ColorsReport struct {
	Channel byte
	Colors  []RgbColor
}

// NewColorsReport rejects empty lists and lists whose count does not fit the
// single count byte.
func NewColorsReport(channel byte, colors []RgbColor) (ColorsReport, error) {
	if len(colors) == 0 || len(colors) > 255 {
		return ColorsReport{}, fmt.Errorf("%w: %d leds, want 1..255", ErrInvalidReport, len(colors))
	}
	return ColorsReport{Channel: channel, Colors: colors}, nil
}

func (ColorsReport) ReportID() byte { return reportIDColors }

func (r ColorsReport) MarshalBinary() ([]byte, error) {
	if len(r.Colors) == 0 || len(r.Colors) > 255 {
		return nil, fmt.Errorf("%w: %d leds, want 1..255", ErrInvalidReport, len(r.Colors))
	}
	data := make([]byte, 0, 4+3*len(r.Colors))
	data = append(data, reportIDColors, r.Channel, 0, byte(len(r.Colors)))
	for _, c := range r.Colors {
		data = append(data, c.R, c.G, c.B)
	}
	return data, nil
}

// DecodeColorReport is the inverse of ColorReport.MarshalBinary.
func DecodeColorReport(data []byte) (RgbColor, error) {
	if len(data) != 4 || data[0] != reportIDColor {
		return RgbColor{}, fmt.Errorf("%w: not a single-led report", ErrInvalidReport)
	}
	return RgbColor{R: data[1], G: data[2], B: data[3]}, nil
}
