package domain

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

const unknownDescription = "Unknown"

// TextFace selects the glyph face used to vectorise text layers.
type TextFace string

// Available text faces.
const (
	// TextFaceBasic is the 7x13 fixed bitmap face.
	TextFaceBasic TextFace = "basic"

	// TextFaceInconsolata is the regular 8x16 Inconsolata face.
	TextFaceInconsolata TextFace = "inconsolata"

	// TextFaceInconsolataBold is the bold 8x16 Inconsolata face.
	TextFaceInconsolataBold TextFace = "inconsolata-bold"
)

// IsValid returns true if the face is recognised.
func (f TextFace) IsValid() bool {
	switch f {
	case TextFaceBasic, TextFaceInconsolata, TextFaceInconsolataBold:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (f TextFace) String() string {
	return string(f)
}

// Description returns a human-readable description of the face.
func (f TextFace) Description() string {
	switch f {
	case TextFaceBasic:
		return "Basic (7x13 bitmap)"
	case TextFaceInconsolata:
		return "Inconsolata (8x16)"
	case TextFaceInconsolataBold:
		return "Inconsolata Bold (8x16)"
	default:
		return unknownDescription
	}
}

// AllTextFaces returns all available text faces.
func AllTextFaces() []TextFace {
	return []TextFace{TextFaceBasic, TextFaceInconsolata, TextFaceInconsolataBold}
}

// Brush is the paint style used to stroke outlines.
type Brush struct {
	// Name is a display label for the brush.
	Name string

	// Size is the stroke diameter in pixels.
	Size int

	// Color is a hex colour, "#RRGGBB" or "#RRGGBBAA".
	Color string
}

// RGBA parses the brush colour.
func (b Brush) RGBA() (color.NRGBA, error) {
	hex := strings.TrimPrefix(b.Color, "#")
	if len(hex) != 6 && len(hex) != 8 {
		return color.NRGBA{}, fmt.Errorf("%w: colour %q", ErrInvalidInput, b.Color)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("%w: colour %q", ErrInvalidInput, b.Color)
	}
	if len(hex) == 6 {
		v = v<<8 | 0xff
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

// Validate checks the brush is usable.
func (b Brush) Validate() error {
	if b.Size < 1 || b.Size > 64 {
		return fmt.Errorf("%w: brush size %d must be between 1 and 64", ErrInvalidInput, b.Size)
	}
	_, err := b.RGBA()
	return err
}

// TextSettings holds text vectorisation configuration.
type TextSettings struct {
	// Face is the glyph face.
	Face TextFace
}

// AppSettings holds all application settings.
type AppSettings struct {
	// Brush is the active paint style.
	Brush Brush

	// Text holds text vectorisation settings.
	Text TextSettings
}

// DefaultAppSettings returns settings with sensible defaults.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Brush: Brush{
			Name:  "round",
			Size:  3,
			Color: "#000000",
		},
		Text: TextSettings{
			Face: TextFaceBasic,
		},
	}
}

// Validate checks all settings.
func (s AppSettings) Validate() error {
	if err := s.Brush.Validate(); err != nil {
		return err
	}
	if !s.Text.Face.IsValid() {
		return fmt.Errorf("%w: text face %q", ErrInvalidInput, s.Text.Face)
	}
	return nil
}
