package ui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

// Pixel size of one terminal cell, used to turn mouse cells into the
// client coordinates the gesture machine and picking expect.
const (
	cellWidthPx  = 8
	cellHeightPx = 16
)

// cell is one character on a canvas. Empty colors leave the terminal
// default.
type cell struct {
	ch rune
	fg string
	bg string
}

// canvas is a fixed-size character grid.
type canvas struct {
	w, h  int
	cells [][]cell
}

func newCanvas(w, h int) *canvas {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	c := &canvas{w: w, h: h, cells: make([][]cell, h)}
	for y := range c.cells {
		c.cells[y] = make([]cell, w)
		for x := range c.cells[y] {
			c.cells[y][x] = cell{ch: ' '}
		}
	}
	return c
}

func (c *canvas) in(x, y int) bool {
	return x >= 0 && x < c.w && y >= 0 && y < c.h
}

func (c *canvas) set(x, y int, ch rune, fg string) {
	if !c.in(x, y) {
		return
	}
	c.cells[y][x].ch = ch
	c.cells[y][x].fg = fg
}

// setIfEmpty draws only over blank cells.
func (c *canvas) setIfEmpty(x, y int, ch rune, fg string) {
	if c.in(x, y) && c.cells[y][x].ch == ' ' {
		c.set(x, y, ch, fg)
	}
}

// text writes s starting at (x, y), clipped to the canvas.
func (c *canvas) text(x, y int, s, fg string) {
	for _, r := range s {
		c.set(x, y, r, fg)
		x++
	}
}

// halfBlock paints two vertically stacked pixels into one cell.
func (c *canvas) halfBlock(x, y int, top, bottom colorful.Color) {
	if !c.in(x, y) {
		return
	}
	c.cells[y][x] = cell{ch: '▀', fg: top.Clamped().Hex(), bg: bottom.Clamped().Hex()}
}

// circle draws an outline of radius r cells; rows are half as tall.
func (c *canvas) circle(cx, cy int, r float64, ch rune, fg string) {
	if r < 1 {
		return
	}
	steps := int(2 * math.Pi * r)
	if steps < 8 {
		steps = 8
	}
	if steps > 360 {
		steps = 360
	}
	for i := 0; i < steps; i++ {
		theta := 2 * math.Pi * float64(i) / float64(steps)
		x := cx + int(math.Round(r*math.Cos(theta)))
		y := cy - int(math.Round(r*math.Sin(theta)*0.5))
		c.setIfEmpty(x, y, ch, fg)
	}
}

// disc fills a circle of radius r cells. Radii under one cell still mark
// the centre.
func (c *canvas) disc(cx, cy int, r float64, ch rune, fg string) {
	if r < 1 {
		c.set(cx, cy, ch, fg)
		return
	}
	ry := r * 0.5
	for y := int(-math.Ceil(ry)); y <= int(math.Ceil(ry)); y++ {
		for x := int(-math.Ceil(r)); x <= int(math.Ceil(r)); x++ {
			fx, fy := float64(x)/r, float64(y)/ry
			if fx*fx+fy*fy <= 1 {
				c.set(cx+x, cy+y, ch, fg)
			}
		}
	}
}

// count returns how many cells hold ch.
func (c *canvas) count(ch rune) int {
	n := 0
	for _, row := range c.cells {
		for _, cl := range row {
			if cl.ch == ch {
				n++
			}
		}
	}
	return n
}

// plain returns the grid without styling.
func (c *canvas) plain() string {
	var b strings.Builder
	for y, row := range c.cells {
		for _, cl := range row {
			b.WriteRune(cl.ch)
		}
		if y < len(c.cells)-1 {
			b.WriteRune('\n')
		}
	}
	return b.String()
}

// render returns the styled grid.
func (c *canvas) render() string {
	var b strings.Builder
	for y, row := range c.cells {
		for _, cl := range row {
			if cl.fg == "" && cl.bg == "" {
				b.WriteRune(cl.ch)
				continue
			}
			style := lipgloss.NewStyle()
			if cl.fg != "" {
				style = style.Foreground(lipgloss.Color(cl.fg))
			}
			if cl.bg != "" {
				style = style.Background(lipgloss.Color(cl.bg))
			}
			b.WriteString(style.Render(string(cl.ch)))
		}
		if y < len(c.cells)-1 {
			b.WriteRune('\n')
		}
	}
	return b.String()
}

// cellToClient maps a cell to the client pixel at its centre.
func cellToClient(x, y int) (float64, float64) {
	return float64(x*cellWidthPx + cellWidthPx/2), float64(y*cellHeightPx + cellHeightPx/2)
}

// clientToCell is the inverse of cellToClient.
func clientToCell(px, py float64) (int, int) {
	return int(math.Floor(px / cellWidthPx)), int(math.Floor(py / cellHeightPx))
}
