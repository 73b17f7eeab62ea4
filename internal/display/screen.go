// Package display renders terminal views onto a 240x240 RGB565 panel.
package display

import (
	"fmt"
	"io"
	"sync"
)

// Color is an RGB565 value.
type Color uint16

const (
	Black  Color = 0x0000
	White  Color = 0xFFFF
	Red    Color = 0xF800
	Green  Color = 0x07E0
	Yellow Color = 0xFFE0
	Gray   Color = 0x8410
	Accent Color = 0x5DFF
	Panel  Color = 0x2104
)

const (
	Width  = 240
	Height = 240
)

// Glyph cell size of the built-in font at size 1.
const (
	glyphW = 6
	glyphH = 8
)

type Rect struct {
	X, Y, W, H int
}

// Screen is the drawing surface. Pixel work belongs to the implementation.
type Screen interface {
	Fill(c Color)
	FillRect(r Rect, c Color)
	Text(s string, x, y, size int, fg, bg Color)
}

// Console is a Screen that logs draw calls as text lines, for headless
// terminals.
type Console struct {
	mu sync.Mutex
	w  io.Writer
}

func NewConsole(w io.Writer) *Console { return &Console{w: w} }

func (c *Console) Fill(col Color) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.w, "fill %#04x\n", uint16(col))
}

func (c *Console) FillRect(r Rect, col Color) {}

func (c *Console) Text(s string, x, y, size int, fg, bg Color) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.w, "[%3d,%3d] %s\n", x, y, s)
}

// Op is one recorded draw call.
type Op struct {
	Kind  string // fill, rect or text
	Rect  Rect
	Text  string
	Color Color
}

// Recorder is a Screen that keeps every call.
type Recorder struct {
	Ops []Op
}

func (r *Recorder) Fill(c Color) {
	r.Ops = append(r.Ops, Op{Kind: "fill", Rect: Rect{0, 0, Width, Height}, Color: c})
}

func (r *Recorder) FillRect(rect Rect, c Color) {
	r.Ops = append(r.Ops, Op{Kind: "rect", Rect: rect, Color: c})
}

func (r *Recorder) Text(s string, x, y, size int, fg, bg Color) {
	r.Ops = append(r.Ops, Op{Kind: "text", Rect: Rect{x, y, len(s) * glyphW * size, glyphH * size}, Text: s, Color: fg})
}

// Texts returns the recorded strings in order.
func (r *Recorder) Texts() []string {
	var out []string
	for _, op := range r.Ops {
		if op.Kind == "text" {
			out = append(out, op.Text)
		}
	}
	return out
}

// Reset drops recorded calls.
func (r *Recorder) Reset() { r.Ops = r.Ops[:0] }
