package display

import (
	"fmt"
	"strings"
	"time"
)

// Screen regions of the standby layout.
var (
	headerRect = Rect{0, 0, Width, 50}
	clockRect  = Rect{5, 55, 200, 90}
	secondRect = Rect{5, 120, 200, 25}
	statusRect = Rect{5, 150, 230, 50}
	sensorRect = Rect{0, 202, Width, 12}
	netRect    = Rect{0, 215, Width, 25}
	bodyRect   = Rect{0, 50, Width, 190}
)

// StandbyView is everything the resting screen shows.
type StandbyView struct {
	Hour, Minute, Second int
	Status               string
	SensorOK             bool
	Online               bool
	Address              string
}

// Presenter draws views and repaints a region only when its content changed
// since the last frame. Enter forces one full repaint.
type Presenter struct {
	screen Screen
	title  string
	dwell  time.Duration
	sleep  func(time.Duration)
	full   bool
	drawn  map[string]string
}

// NewPresenter creates a presenter that holds flash screens for dwell.
func NewPresenter(s Screen, title string, dwell time.Duration) *Presenter {
	return &Presenter{
		screen: s,
		title:  title,
		dwell:  dwell,
		sleep:  time.Sleep,
		full:   true,
		drawn:  make(map[string]string),
	}
}

// Enter marks a mode change; the next view is painted from scratch.
func (p *Presenter) Enter() { p.full = true }

func (p *Presenter) begin(header string) {
	if !p.full {
		return
	}
	p.full = false
	clear(p.drawn)
	p.screen.Fill(Black)
	p.screen.FillRect(headerRect, Accent)
	p.center(header, headerRect, 2, Black, Accent)
}

// region repaints r through draw only if value differs from what is on screen.
func (p *Presenter) region(key, value string, r Rect, bg Color, draw func()) {
	if prev, ok := p.drawn[key]; ok && prev == value {
		return
	}
	p.drawn[key] = value
	p.screen.FillRect(r, bg)
	draw()
}

func (p *Presenter) center(s string, r Rect, size int, fg, bg Color) {
	w := len(s) * glyphW * size
	x := r.X + (r.W-w)/2
	if x < r.X {
		x = r.X
	}
	y := r.Y + (r.H-glyphH*size)/2
	p.screen.Text(s, x, y, size, fg, bg)
}

// Standby draws the clock screen.
func (p *Presenter) Standby(v StandbyView) {
	p.begin(p.title)

	hm := fmt.Sprintf("%02d:%02d", v.Hour, v.Minute)
	p.region("clock", hm, clockRect, Black, func() {
		p.screen.Text(hm, clockRect.X, clockRect.Y, 7, White, Black)
	})
	sec := fmt.Sprintf("%02d", v.Second)
	p.region("second", sec, secondRect, Black, func() {
		p.screen.Text(sec, secondRect.X+170, secondRect.Y, 2, Gray, Black)
	})

	status := fmt.Sprintf("%s|%t", v.Status, v.SensorOK)
	p.region("status", status, statusRect, Panel, func() {
		p.center(strings.ToUpper(v.Status), statusRect, 3, Accent, Panel)
		p.screen.FillRect(sensorRect, Black)
		if !v.SensorOK {
			p.center("SENSOR ERROR", sensorRect, 1, Red, Black)
		}
	})

	link, color := "OFFLINE", Red
	if v.Online {
		link, color = "ONLINE", Green
	}
	net := v.Address + "|" + link
	p.region("net", net, netRect, Panel, func() {
		p.screen.Text(v.Address, netRect.X+5, netRect.Y+8, 1, White, Panel)
		p.screen.Text(link, netRect.X+netRect.W-len(link)*glyphW-5, netRect.Y+8, 1, color, Panel)
	})
}

// Scanning replaces the status box while a captured finger is processed.
func (p *Presenter) Scanning() {
	p.begin(p.title)
	p.drawn["status"] = "scanning"
	p.screen.FillRect(statusRect, Yellow)
	p.center("SCANNING", statusRect, 3, Black, Yellow)
}

// PinEntry shows the masked digits entered so far and the current wheel digit.
func (p *Presenter) PinEntry(entered, digit, length int) {
	p.begin("ADMIN PIN")
	mask := strings.Repeat("*", entered) + strings.Repeat("-", max(length-entered, 0))
	p.region("mask", mask, Rect{0, 70, Width, 50}, Black, func() {
		p.center(mask, Rect{0, 70, Width, 50}, 4, White, Black)
	})
	d := fmt.Sprintf("%d", digit)
	p.region("digit", d, Rect{70, 130, 100, 70}, Panel, func() {
		p.center(d, Rect{70, 130, 100, 70}, 6, Accent, Panel)
	})
}

// Menu lists items with the selected one highlighted.
func (p *Presenter) Menu(items []string, selected int) {
	p.begin("MENU")
	for i, item := range items {
		r := Rect{10, 65 + i*45, Width - 20, 38}
		fg, bg := White, Panel
		if i == selected {
			fg, bg = Black, Accent
		}
		key := fmt.Sprintf("item%d", i)
		p.region(key, fmt.Sprintf("%s|%t", item, i == selected), r, bg, func() {
			p.center(item, r, 2, fg, bg)
		})
	}
}

// Picker shows an identity id being chosen for enroll or delete.
func (p *Presenter) Picker(title string, id int) {
	p.begin(title)
	s := fmt.Sprintf("ID %d", id)
	r := Rect{20, 90, Width - 40, 70}
	p.region("id", s, r, Panel, func() {
		p.center(s, r, 4, Accent, Panel)
	})
	p.region("hint", "hint", Rect{0, 190, Width, 20}, Black, func() {
		p.center("OK to confirm", Rect{0, 190, Width, 20}, 1, Gray, Black)
	})
}

// Message shows a prompt in the body of the current screen.
func (p *Presenter) Message(msg string) {
	p.begin(p.title)
	clear(p.drawn)
	p.screen.FillRect(bodyRect, Black)
	p.center(msg, Rect{0, 100, Width, 40}, 2, White, Black)
}

// Flash fills the screen with a colored result, holds it for the dwell time
// and forces the next view to repaint fully. It blocks for the dwell.
func (p *Presenter) Flash(c Color, msg, detail string) {
	p.screen.Fill(c)
	p.center(msg, Rect{0, 80, Width, 40}, 2, Black, c)
	if detail != "" {
		p.center(detail, Rect{0, 130, Width, 40}, 3, Black, c)
	}
	p.full = true
	p.sleep(p.dwell)
}
