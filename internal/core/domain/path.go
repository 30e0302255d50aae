package domain

import "image"

// PathID identifies a temporary vector outline registered with a document.
type PathID int

// Path is a vector outline traced from a text layer's glyphs.
type Path struct {
	// Points are contour points in canvas coordinates.
	Points []image.Point
}

// Bounds returns the smallest rectangle containing every point.
func (p Path) Bounds() image.Rectangle {
	if len(p.Points) == 0 {
		return image.Rectangle{}
	}
	r := image.Rectangle{Min: p.Points[0], Max: p.Points[0].Add(image.Pt(1, 1))}
	for _, pt := range p.Points[1:] {
		r = r.Union(image.Rectangle{Min: pt, Max: pt.Add(image.Pt(1, 1))})
	}
	return r
}
