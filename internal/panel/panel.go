// Package panel lays out the per-body info panels: a rounded, dashed frame
// on a square canvas with a wrapped title and body text.
package panel

import (
	"math"
	"strings"

	"github.com/mattn/go-runewidth"
)

// CanvasSize is the side of the square panel texture.
const CanvasSize = 1024

// LineSpacing is the line height as a multiple of the font size.
const LineSpacing = 1.5

// Dash is the frame stroke pattern: 30 on, 10 off.
var Dash = []float64{30, 10}

// Config describes one body's panel, as stored in the dataset.
type Config struct {
	StartX          float64 `json:"startX"`
	StartY          float64 `json:"startY"`
	Width           float64 `json:"width"`
	Height          float64 `json:"height"`
	CornerRadius    float64 `json:"cornerRadius"`
	BackgroundStyle string  `json:"backgroundStyle"`
	FrameStyle      string  `json:"frameStyle"`
	FrameWidth      float64 `json:"frameWidth"`

	Title      string  `json:"title"`
	TitleFont  string  `json:"titleFont"`
	TitleStyle string  `json:"titleStyle"`
	TitleX     float64 `json:"titleX"`
	TitleY     float64 `json:"titleY"`
	TitleSize  float64 `json:"titleSize"`

	Text      string  `json:"text"`
	TextFont  string  `json:"textFont"`
	TextStyle string  `json:"textStyle"`
	TextX     float64 `json:"textX"`
	TextY     float64 `json:"textY"`
	TextSize  float64 `json:"textSize"`
}

// Measure returns the rendered width of s for one font.
type Measure func(s string) float64

// Monospace measures display cells (East Asian wide runes count twice)
// times a fixed advance.
func Monospace(advance float64) Measure {
	return func(s string) float64 {
		return float64(runewidth.StringWidth(s)) * advance
	}
}

// Approx estimates proportional text set at sizePt points, assuming an
// average glyph advance of 0.55em.
func Approx(sizePt float64) Measure {
	return Monospace(sizePt * 4 / 3 * 0.55)
}

// Cells measures in terminal cells.
func Cells() Measure {
	return Monospace(1)
}

// Wrap splits text on newlines and then greedily on spaces so that no line
// is wider than maxWidth. Words are never split: a line overflows only when
// its first word alone is too wide.
func Wrap(text string, maxWidth float64, measure Measure) []string {
	var out []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Split(para, " ")
		line := ""
		for j, w := range words {
			test := line + w + " "
			if measure(test) > maxWidth && j > 0 {
				out = append(out, strings.TrimRight(line, " "))
				line = w + " "
				continue
			}
			line = test
		}
		out = append(out, strings.TrimRight(line, " "))
	}
	return out
}

// Line is one positioned line of panel text.
type Line struct {
	Text string
	X, Y float64
	Size float64
}

// Layout is the positioned content of a panel.
type Layout struct {
	Title []Line
	Text  []Line
}

// Lines returns title then body lines.
func (l Layout) Lines() []Line {
	out := make([]Line, 0, len(l.Title)+len(l.Text))
	out = append(out, l.Title...)
	return append(out, l.Text...)
}

// Compose wraps and positions the title and text. Each paragraph advances
// the baseline so blank lines still occupy a line.
func Compose(cfg Config, title, text Measure) Layout {
	return Layout{
		Title: place(Wrap(cfg.Title, cfg.Width-cfg.StartX-cfg.FrameWidth, title), cfg.TitleX, cfg.TitleY, cfg.TitleSize),
		Text:  place(Wrap(cfg.Text, cfg.Width-cfg.TextX, text), cfg.TextX, cfg.TextY, cfg.TextSize),
	}
}

func place(lines []string, x, y, size float64) []Line {
	out := make([]Line, len(lines))
	for i, s := range lines {
		out[i] = Line{Text: s, X: x, Y: y + float64(i)*LineSpacing*size, Size: size}
	}
	return out
}

// Point is a canvas coordinate.
type Point struct{ X, Y float64 }

// Arc is a quarter circle swept from Start to End radians. With the canvas
// y axis pointing down, increasing angles run clockwise on screen.
type Arc struct {
	Center     Point
	Radius     float64
	Start, End float64
}

// Edge is a straight frame side.
type Edge struct{ From, To Point }

// Outline is the rounded rectangle traced by the frame, clockwise from the
// top-left corner.
type Outline struct {
	Corners [4]Arc
	Edges   [4]Edge
	Width   float64
	Dash    []float64
}

// Frame computes the panel outline. The corner radius is clamped to half the
// shorter side.
func Frame(cfg Config) Outline {
	r := math.Max(0, math.Min(cfg.CornerRadius, math.Min(cfg.Width, cfg.Height)/2))
	x0, y0 := cfg.StartX, cfg.StartY
	x1, y1 := cfg.StartX+cfg.Width, cfg.StartY+cfg.Height

	return Outline{
		Corners: [4]Arc{
			{Center: Point{x0 + r, y0 + r}, Radius: r, Start: math.Pi, End: 1.5 * math.Pi},
			{Center: Point{x1 - r, y0 + r}, Radius: r, Start: 1.5 * math.Pi, End: 2 * math.Pi},
			{Center: Point{x1 - r, y1 - r}, Radius: r, Start: 0, End: 0.5 * math.Pi},
			{Center: Point{x0 + r, y1 - r}, Radius: r, Start: 0.5 * math.Pi, End: math.Pi},
		},
		Edges: [4]Edge{
			{Point{x0 + r, y0}, Point{x1 - r, y0}},
			{Point{x1, y0 + r}, Point{x1, y1 - r}},
			{Point{x1 - r, y1}, Point{x0 + r, y1}},
			{Point{x0, y1 - r}, Point{x0, y0 + r}},
		},
		Width: cfg.FrameWidth,
		Dash:  append([]float64(nil), Dash...),
	}
}

// Polyline flattens the outline into a closed point list, with steps
// segments per corner. The first point is repeated at the end.
func (o Outline) Polyline(steps int) []Point {
	if steps < 1 {
		steps = 1
	}
	var pts []Point
	for i, c := range o.Corners {
		for s := 0; s <= steps; s++ {
			a := c.Start + (c.End-c.Start)*float64(s)/float64(steps)
			pts = append(pts, Point{c.Center.X + c.Radius*math.Cos(a), c.Center.Y + c.Radius*math.Sin(a)})
		}
		pts = append(pts, o.Edges[i].To)
	}
	return append(pts, pts[0])
}
