package core

import (
	"strings"
)

// Cell is one character position on the canvas.
type Cell struct {
	Rune  rune
	Color Color
}

var blank = Cell{Rune: ' '}

// Canvas is a 2D character buffer. Drawing outside its bounds is clipped.
type Canvas struct {
	width  int
	height int
	cells  [][]Cell
}

// NewCanvas creates a blank canvas. Negative sizes are treated as zero.
func NewCanvas(width, height int) *Canvas {
	c := &Canvas{
		width:  Max(width, 0),
		height: Max(height, 0),
	}
	c.allocate()
	c.Clear()
	return c
}

func (c *Canvas) allocate() {
	c.cells = make([][]Cell, c.height)
	for y := range c.cells {
		c.cells[y] = make([]Cell, c.width)
	}
}

// Width returns the canvas width in cells.
func (c *Canvas) Width() int {
	return c.width
}

// Height returns the canvas height in cells.
func (c *Canvas) Height() int {
	return c.height
}

// Bounds returns the canvas area as a rectangle at the origin.
func (c *Canvas) Bounds() Rect {
	return NewRect(0, 0, c.width, c.height)
}

// Resize changes the canvas dimensions, preserving content where possible.
func (c *Canvas) Resize(width, height int) {
	width, height = Max(width, 0), Max(height, 0)
	if width == c.width && height == c.height {
		return
	}

	old := c.cells
	copyW, copyH := Min(c.width, width), Min(c.height, height)

	c.width = width
	c.height = height
	c.allocate()
	c.Clear()

	for y := 0; y < copyH; y++ {
		copy(c.cells[y][:copyW], old[y][:copyW])
	}
}

// Clear resets every cell to a blank.
func (c *Canvas) Clear() {
	for y := range c.cells {
		for x := range c.cells[y] {
			c.cells[y][x] = blank
		}
	}
}

// Set places a rune at (x, y). Out-of-bounds coordinates are ignored.
func (c *Canvas) Set(x, y int, r rune, color Color) {
	if x < 0 || x >= c.width || y < 0 || y >= c.height {
		return
	}
	c.cells[y][x] = Cell{Rune: r, Color: color}
}

// Get returns the cell at (x, y), or a blank cell out of bounds.
func (c *Canvas) Get(x, y int) Cell {
	if x < 0 || x >= c.width || y < 0 || y >= c.height {
		return blank
	}
	return c.cells[y][x]
}

// DrawText writes text horizontally starting at (x, y), clipped to the canvas.
// It returns the column after the last rune written.
func (c *Canvas) DrawText(x, y int, text string, color Color) int {
	for _, r := range text {
		c.Set(x, y, r, color)
		x++
	}
	return x
}

// DrawRect fills the part of r that lies on the canvas.
func (c *Canvas) DrawRect(r Rect, fill rune, color Color) {
	clip := r.Intersect(c.Bounds())
	if clip.Empty() {
		return
	}
	for y := clip.Y; y < clip.Bottom(); y++ {
		for x := clip.X; x < clip.Right(); x++ {
			c.cells[y][x] = Cell{Rune: fill, Color: color}
		}
	}
}

// DrawBox draws an outline of r using box-drawing characters.
func (c *Canvas) DrawBox(r Rect, color Color) {
	if r.Empty() {
		return
	}
	if r.W < 2 || r.H < 2 {
		c.DrawRect(r, '█', color)
		return
	}

	c.Set(r.X, r.Y, '┌', color)
	c.Set(r.Right()-1, r.Y, '┐', color)
	c.Set(r.X, r.Bottom()-1, '└', color)
	c.Set(r.Right()-1, r.Bottom()-1, '┘', color)

	for x := r.X + 1; x < r.Right()-1; x++ {
		c.Set(x, r.Y, '─', color)
		c.Set(x, r.Bottom()-1, '─', color)
	}
	for y := r.Y + 1; y < r.Bottom()-1; y++ {
		c.Set(r.X, y, '│', color)
		c.Set(r.Right()-1, y, '│', color)
	}
}

// String returns the canvas runes without colors, rows joined by newlines.
func (c *Canvas) String() string {
	var sb strings.Builder
	sb.Grow(c.width*c.height + c.height)

	for y := 0; y < c.height; y++ {
		if y > 0 {
			sb.WriteRune('\n')
		}
		for x := 0; x < c.width; x++ {
			sb.WriteRune(c.cells[y][x].Rune)
		}
	}
	return sb.String()
}
