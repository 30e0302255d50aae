// Package render implements driven.Renderer by rasterising text glyphs with
// golang.org/x/image bitmap faces and stroking their contour.
package render

import (
	"context"
	"fmt"
	"image"
	"image/draw"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/inconsolata"
	"golang.org/x/image/math/fixed"

	"github.com/custodia-labs/managed-outline/internal/core/domain"
	"github.com/custodia-labs/managed-outline/internal/core/ports/driven"
)

// Ensure Rasteriser implements the interface.
var _ driven.Renderer = (*Rasteriser)(nil)

// Surface is the host state a Rasteriser draws on.
type Surface interface {
	// Node returns a snapshot of the node.
	Node(id domain.NodeID) (domain.Node, error)

	// RegisterPath stores a path and returns its handle.
	RegisterPath(p domain.Path) domain.PathID

	// Path returns a registered path.
	Path(id domain.PathID) (domain.Path, error)

	// UnregisterPath discards a registered path.
	UnregisterPath(id domain.PathID) error

	// SetRaster replaces a raster layer's pixels and bounds.
	SetRaster(id domain.NodeID, img *image.NRGBA) error

	// Focus moves the selection focus.
	Focus(id domain.NodeID) error
}

// Rasteriser traces glyph contours pixel by pixel.
type Rasteriser struct {
	surface Surface
	face    font.Face
}

// NewRasteriser creates a renderer drawing on surface with the given face.
// Unknown faces fall back to the basic face.
func NewRasteriser(surface Surface, face domain.TextFace) *Rasteriser {
	return &Rasteriser{surface: surface, face: FontFace(face)}
}

// FontFace maps a configured face to its bitmap font.
func FontFace(face domain.TextFace) font.Face {
	switch face {
	case domain.TextFaceInconsolata:
		return inconsolata.Regular8x16
	case domain.TextFaceInconsolataBold:
		return inconsolata.Bold8x16
	default:
		return basicfont.Face7x13
	}
}

// TextToPath rasterises the text layer's glyphs at its origin and registers
// the boundary pixels of the glyph mask as a path.
func (r *Rasteriser) TextToPath(ctx context.Context, textID domain.NodeID) (domain.PathID, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	node, err := r.surface.Node(textID)
	if err != nil {
		return 0, err
	}
	if !node.HasText() {
		return 0, domain.ErrExpectedTextLayer
	}

	mask := r.glyphMask(node.Text, node.Bounds.Min)
	path := domain.Path{Points: contour(mask)}
	return r.surface.RegisterPath(path), nil
}

// glyphMask draws text, one line per row of glyphs, with its top-left
// corner at origin.
func (r *Rasteriser) glyphMask(text string, origin image.Point) *image.Alpha {
	lines := strings.Split(text, "\n")
	metrics := r.face.Metrics()
	lineHeight := metrics.Height.Ceil()

	width := 0
	for _, line := range lines {
		if w := font.MeasureString(r.face, line).Ceil(); w > width {
			width = w
		}
	}

	mask := image.NewAlpha(image.Rect(0, 0, width, lineHeight*len(lines)).Add(origin))
	d := &font.Drawer{
		Dst:  mask,
		Src:  image.Opaque,
		Face: r.face,
	}
	for i, line := range lines {
		d.Dot = fixed.P(origin.X, origin.Y+i*lineHeight+metrics.Ascent.Ceil())
		d.DrawString(line)
	}
	return mask
}

// contour returns the set pixels of mask that touch an unset pixel or the
// mask edge, in row-major order.
func contour(mask *image.Alpha) []image.Point {
	b := mask.Bounds()
	set := func(x, y int) bool {
		if !(image.Point{x, y}).In(b) {
			return false
		}
		return mask.AlphaAt(x, y).A > 0
	}

	var points []image.Point
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if !set(x, y) {
				continue
			}
			if !set(x-1, y) || !set(x+1, y) || !set(x, y-1) || !set(x, y+1) {
				points = append(points, image.Pt(x, y))
			}
		}
	}
	return points
}

// StrokePath paints a disc of the brush diameter at every path point.
func (r *Rasteriser) StrokePath(ctx context.Context, layerID domain.NodeID, pathID domain.PathID, brush domain.Brush) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := brush.Validate(); err != nil {
		return err
	}
	c, err := brush.RGBA()
	if err != nil {
		return err
	}

	layer, err := r.surface.Node(layerID)
	if err != nil {
		return err
	}
	if layer.Kind != domain.KindLayer || layer.Raster == nil {
		return fmt.Errorf("%w: node %d is not a raster layer", domain.ErrInvalidInput, layerID)
	}
	path, err := r.surface.Path(pathID)
	if err != nil {
		return err
	}

	img := layer.Raster
	bounds := img.Bounds()
	offsets := disc(brush.Size)
	for _, p := range path.Points {
		for _, o := range offsets {
			q := p.Add(o)
			if q.In(bounds) {
				img.SetNRGBA(q.X, q.Y, c)
			}
		}
	}
	return r.surface.SetRaster(layerID, img)
}

// disc returns the pixel offsets covered by a round brush of the diameter.
func disc(diameter int) []image.Point {
	radius := diameter / 2
	limit := diameter * diameter
	var offsets []image.Point
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			// Compare doubled distances to keep even diameters symmetric.
			if 4*(dx*dx+dy*dy) <= limit {
				offsets = append(offsets, image.Pt(dx, dy))
			}
		}
	}
	return offsets
}

// RemovePath discards a registered path.
func (r *Rasteriser) RemovePath(_ context.Context, pathID domain.PathID) error {
	return r.surface.UnregisterPath(pathID)
}

// Autocrop shrinks the layer to its non-transparent pixels.
// Fully transparent layers are left unchanged.
func (r *Rasteriser) Autocrop(ctx context.Context, layerID domain.NodeID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	layer, err := r.surface.Node(layerID)
	if err != nil {
		return err
	}
	if layer.Raster == nil {
		return fmt.Errorf("%w: node %d is not a raster layer", domain.ErrInvalidInput, layerID)
	}

	crop := opaqueBounds(layer.Raster)
	if crop.Empty() || crop == layer.Raster.Bounds() {
		return nil
	}

	cropped := image.NewNRGBA(crop)
	draw.Draw(cropped, crop, layer.Raster, crop.Min, draw.Src)
	return r.surface.SetRaster(layerID, cropped)
}

// opaqueBounds returns the smallest rectangle holding every pixel with
// non-zero alpha.
func opaqueBounds(img *image.NRGBA) image.Rectangle {
	b := img.Bounds()
	var out image.Rectangle
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.NRGBAAt(x, y).A == 0 {
				continue
			}
			out = out.Union(image.Rect(x, y, x+1, y+1))
		}
	}
	return out
}

// SetActive moves the selection focus to the node.
func (r *Rasteriser) SetActive(_ context.Context, id domain.NodeID) error {
	return r.surface.Focus(id)
}
