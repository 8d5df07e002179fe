// Package weather downloads weather-overlay map tiles and remaps them from the
// Web Mercator tile projection to the equirectangular projection used as a
// sphere texture.
package weather

import (
	"image"
	"math"

	"github.com/paulmach/orb"
)

// Tile sizes at zoom level 0.
const (
	SourceWidth  = 256 // Mercator tile
	SourceHeight = 256
	DestWidth    = 256 // equirectangular texture
	DestHeight   = 128
)

// World is the longitude/latitude extent of the equirectangular texture.
var World = orb.Bound{Min: orb.Point{-180, -90}, Max: orb.Point{180, 90}}

// Geometry fixes the nominal source and destination sizes the remap formulas
// are evaluated against. A zero Extent means World.
type Geometry struct {
	Src    image.Point
	Dst    image.Point
	Extent orb.Bound
}

// DefaultGeometry returns the zoom-0 tile geometry.
func DefaultGeometry() Geometry {
	return Geometry{
		Src:    image.Pt(SourceWidth, SourceHeight),
		Dst:    image.Pt(DestWidth, DestHeight),
		Extent: World,
	}
}

func (g Geometry) extent() orb.Bound {
	if g.Extent.IsZero() {
		return World
	}
	return g.Extent
}

// NewBlank returns a fully transparent destination image.
func (g Geometry) NewBlank() *image.RGBA {
	return image.NewRGBA(image.Rect(0, 0, g.Dst.X, g.Dst.Y))
}

// Geographic returns the longitude/latitude of destination pixel (dx, dy).
// Rows run from the extent's top edge down.
func (g Geometry) Geographic(dx, dy int) orb.Point {
	e := g.extent()
	lat := e.Top() - (e.Top()-e.Bottom())*float64(dy)/float64(g.Dst.Y)
	lon := (e.Right()-e.Left())*float64(dx)/float64(g.Dst.X) + e.Left()
	return orb.Point{lon, lat}
}

// Fraction returns where p falls on the texture as fractions of its width
// and height, measured from the top-left corner. ok is false outside the
// extent.
func (g Geometry) Fraction(p orb.Point) (u, v float64, ok bool) {
	e := g.extent()
	if !e.Contains(p) {
		return 0, 0, false
	}
	u = (p.Lon() - e.Left()) / (e.Right() - e.Left())
	v = (e.Top() - p.Lat()) / (e.Top() - e.Bottom())
	return u, v, true
}

// MercatorXY returns the unclamped, untruncated Mercator pixel position of p.
func (g Geometry) MercatorXY(p orb.Point) (x, y float64) {
	w := float64(g.Src.X)
	h := float64(g.Src.Y)
	x = (p.Lon() + 180) * (w / 360)
	mercN := math.Log(math.Tan(math.Pi/4 + p.Lat()*math.Pi/360))
	y = h/2 - h*mercN/(2*math.Pi)
	return x, y
}

// SourcePixel maps destination pixel (dx, dy) to the source pixel it copies.
// Coordinates are truncated and then clamped to the nominal source size.
func (g Geometry) SourcePixel(dx, dy int) (sx, sy int) {
	x, y := g.MercatorXY(g.Geographic(dx, dy))
	return truncClamp(x, g.Src.X), truncClamp(y, g.Src.Y)
}

// Remap produces the equirectangular image for a Mercator source tile.
// Pixels are copied verbatim; reads outside a short source fall back to the
// nearest edge pixel. A nil or empty source yields a blank image.
func (g Geometry) Remap(src *image.RGBA) *image.RGBA {
	dst := g.NewBlank()
	if src == nil {
		return dst
	}
	b := src.Bounds()
	if b.Empty() {
		return dst
	}

	for dy := 0; dy < g.Dst.Y; dy++ {
		for dx := 0; dx < g.Dst.X; dx++ {
			sx, sy := g.SourcePixel(dx, dy)
			sx = clampInt(sx, b.Dx())
			sy = clampInt(sy, b.Dy())

			so := src.PixOffset(b.Min.X+sx, b.Min.Y+sy)
			do := dst.PixOffset(dx, dy)
			copy(dst.Pix[do:do+4], src.Pix[so:so+4])
		}
	}
	return dst
}

// Remap runs the default zoom-0 geometry.
func Remap(src *image.RGBA) *image.RGBA {
	return DefaultGeometry().Remap(src)
}

func truncClamp(v float64, n int) int {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v >= float64(n) {
		return n - 1
	}
	return int(v)
}

func clampInt(v, n int) int {
	if v < 0 {
		return 0
	}
	if v >= n {
		return n - 1
	}
	return v
}
