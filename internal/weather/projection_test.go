package weather

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/paulmach/orb"
)

func solidTile(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestSourcePixelInBounds(t *testing.T) {
	g := DefaultGeometry()
	for dy := 0; dy < DestHeight; dy++ {
		for dx := 0; dx < DestWidth; dx++ {
			sx, sy := g.SourcePixel(dx, dy)
			if sx < 0 || sx >= SourceWidth || sy < 0 || sy >= SourceHeight {
				t.Fatalf("SourcePixel(%d, %d) = (%d, %d), out of source bounds", dx, dy, sx, sy)
			}
		}
	}
}

func TestGeographic(t *testing.T) {
	g := DefaultGeometry()

	tests := []struct {
		name     string
		dx, dy   int
		lon, lat float64
	}{
		{"top left", 0, 0, -180, 90},
		{"center", 128, 64, 0, 0},
		{"last row", 0, 127, -180, 90 - 180*127.0/128},
		{"last column", 255, 0, 360*255.0/256 - 180, 90},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := g.Geographic(tt.dx, tt.dy)
			if math.Abs(p.Lon()-tt.lon) > 1e-12 || math.Abs(p.Lat()-tt.lat) > 1e-12 {
				t.Errorf("Geographic(%d, %d) = %v, want lon=%v lat=%v", tt.dx, tt.dy, p, tt.lon, tt.lat)
			}
		})
	}
}

func TestFraction(t *testing.T) {
	g := DefaultGeometry()

	tests := []struct {
		name   string
		p      orb.Point
		u, v   float64
		wantOK bool
	}{
		{"top left", orb.Point{-180, 90}, 0, 0, true},
		{"center", orb.Point{0, 0}, 0.5, 0.5, true},
		{"bottom right", orb.Point{180, -90}, 1, 1, true},
		{"above the pole", orb.Point{0, 91}, 0, 0, false},
		{"past the antimeridian", orb.Point{181, 0}, 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, v, ok := g.Fraction(tt.p)
			if ok != tt.wantOK {
				t.Fatalf("Fraction(%v) ok = %v, want %v", tt.p, ok, tt.wantOK)
			}
			if ok && (math.Abs(u-tt.u) > 1e-12 || math.Abs(v-tt.v) > 1e-12) {
				t.Errorf("Fraction(%v) = (%v, %v), want (%v, %v)", tt.p, u, v, tt.u, tt.v)
			}
		})
	}
}

func TestZeroExtentIsWorld(t *testing.T) {
	g := Geometry{Src: image.Pt(SourceWidth, SourceHeight), Dst: image.Pt(DestWidth, DestHeight)}
	want := DefaultGeometry().Geographic(37, 51)
	if got := g.Geographic(37, 51); got != want {
		t.Errorf("Geographic with zero extent = %v, want %v", got, want)
	}
}

func TestFractionInvertsGeographic(t *testing.T) {
	g := DefaultGeometry()
	u, v, ok := g.Fraction(g.Geographic(64, 32))
	if !ok {
		t.Fatal("Fraction of a texture pixel reported outside the extent")
	}
	if math.Abs(u-64.0/DestWidth) > 1e-12 || math.Abs(v-32.0/DestHeight) > 1e-12 {
		t.Errorf("Fraction(Geographic(64, 32)) = (%v, %v)", u, v)
	}
}

func TestMercatorXYTopRowIsFinite(t *testing.T) {
	g := DefaultGeometry()
	x, y := g.MercatorXY(g.Geographic(0, 0))
	if math.IsNaN(x) || math.IsNaN(y) || math.IsInf(y, 0) {
		t.Fatalf("MercatorXY at latitude 90 = (%v, %v), want finite", x, y)
	}
	if sx, sy := g.SourcePixel(0, 0); sx != 0 || sy != 0 {
		t.Errorf("SourcePixel(0, 0) = (%d, %d), want clamped (0, 0)", sx, sy)
	}
}

func TestSourcePixelKnownValues(t *testing.T) {
	g := DefaultGeometry()

	tests := []struct {
		name           string
		dx, dy         int
		wantSX, wantSY int
	}{
		// Equator, prime meridian: Mercator centre.
		{"equator", 128, 64, 128, 128},
		// dy=127: latitude -88.59375 lies past the Mercator cutoff and clamps.
		{"south row", 0, 127, 0, 255},
		// dy=32: latitude 45 -> mercN = ln(tan(67.5deg)) = 0.8814
		{"latitude 45", 64, 32, 64, 92},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sx, sy := g.SourcePixel(tt.dx, tt.dy)
			if sx != tt.wantSX || sy != tt.wantSY {
				t.Errorf("SourcePixel(%d, %d) = (%d, %d), want (%d, %d)",
					tt.dx, tt.dy, sx, sy, tt.wantSX, tt.wantSY)
			}
		})
	}
}

func TestRemapSolidColor(t *testing.T) {
	c := color.RGBA{R: 10, G: 200, B: 30, A: 128}
	dst := Remap(solidTile(SourceWidth, SourceHeight, c))

	if got := dst.Bounds(); got != image.Rect(0, 0, DestWidth, DestHeight) {
		t.Fatalf("bounds = %v, want 256x128", got)
	}
	for y := 0; y < DestHeight; y++ {
		for x := 0; x < DestWidth; x++ {
			if got := dst.RGBAAt(x, y); got != c {
				t.Fatalf("pixel (%d, %d) = %v, want %v", x, y, got, c)
			}
		}
	}
}

func TestRemapCopiesVerbatim(t *testing.T) {
	// Encode the source coordinate in each pixel so the copy can be traced.
	src := image.NewRGBA(image.Rect(0, 0, SourceWidth, SourceHeight))
	for y := 0; y < SourceHeight; y++ {
		for x := 0; x < SourceWidth; x++ {
			src.SetRGBA(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 7, A: 255})
		}
	}

	g := DefaultGeometry()
	dst := g.Remap(src)
	for _, p := range []image.Point{{0, 0}, {128, 64}, {64, 32}, {255, 127}} {
		sx, sy := g.SourcePixel(p.X, p.Y)
		want := color.RGBA{R: uint8(sx), G: uint8(sy), B: 7, A: 255}
		if got := dst.RGBAAt(p.X, p.Y); got != want {
			t.Errorf("dst %v = %v, want %v", p, got, want)
		}
	}
}

func TestRemapSmallSourceClamps(t *testing.T) {
	src := solidTile(16, 8, color.RGBA{R: 1, G: 2, B: 3, A: 4})
	src.SetRGBA(15, 7, color.RGBA{R: 99, A: 255})

	dst := Remap(src)
	// The bottom-right destination pixel reads past the small source and
	// falls back to its bottom-right corner.
	if got := dst.RGBAAt(DestWidth-1, DestHeight-1); got != (color.RGBA{R: 99, A: 255}) {
		t.Errorf("clamped pixel = %v, want edge pixel", got)
	}
}

func TestRemapNilAndEmpty(t *testing.T) {
	for name, src := range map[string]*image.RGBA{
		"nil":   nil,
		"empty": image.NewRGBA(image.Rect(0, 0, 0, 0)),
	} {
		t.Run(name, func(t *testing.T) {
			dst := Remap(src)
			for i, b := range dst.Pix {
				if b != 0 {
					t.Fatalf("byte %d = %d, want blank image", i, b)
				}
			}
		})
	}
}

func TestRemapOffsetBounds(t *testing.T) {
	src := solidTile(SourceWidth, SourceHeight, color.RGBA{})
	sub := image.NewRGBA(image.Rect(10, 10, 10+SourceWidth, 10+SourceHeight))
	copy(sub.Pix, src.Pix)
	sub.SetRGBA(10, 10, color.RGBA{G: 255, A: 255})

	dst := Remap(sub)
	if got := dst.RGBAAt(0, 0); got != (color.RGBA{G: 255, A: 255}) {
		t.Errorf("dst(0,0) = %v, want source origin pixel", got)
	}
}
