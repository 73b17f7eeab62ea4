// Package hw drives the terminal's GPIO peripherals through periph.io:
// three active-low buttons, the buzzer and the display backlight.
package hw

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"

	"attendterm/internal/input"
)

// Init loads the host drivers. Call once before opening any pin.
func Init() error {
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("periph host init: %w", err)
	}
	return nil
}

func pin(name string) (gpio.PinIO, error) {
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("gpio %q not found", name)
	}
	return p, nil
}

// Buttons reads the up/down/confirm inputs with internal pull-ups; a pressed
// button pulls its line low.
type Buttons struct {
	pins [3]gpio.PinIO
}

// OpenButtons configures the three named pins as pulled-up inputs.
func OpenButtons(up, down, confirm string) (*Buttons, error) {
	var b Buttons
	for i, name := range []string{up, down, confirm} {
		p, err := pin(name)
		if err != nil {
			return nil, err
		}
		if err := p.In(gpio.PullUp, gpio.NoEdge); err != nil {
			return nil, fmt.Errorf("configure %s: %w", name, err)
		}
		b.pins[i] = p
	}
	return &b, nil
}

// Pressed implements input.Pins.
func (b *Buttons) Pressed(btn input.Button) bool {
	if int(btn) < 0 || int(btn) >= len(b.pins) {
		return false
	}
	return b.pins[btn].Read() == gpio.Low
}

// Backlight switches the display backlight line.
type Backlight struct {
	pin gpio.PinIO
}

// OpenBacklight drives the named pin high (lit).
func OpenBacklight(name string) (*Backlight, error) {
	p, err := pin(name)
	if err != nil {
		return nil, err
	}
	if err := p.Out(gpio.High); err != nil {
		return nil, fmt.Errorf("configure %s: %w", name, err)
	}
	return &Backlight{pin: p}, nil
}

func (b *Backlight) SetBacklight(on bool) error {
	return b.pin.Out(gpio.Level(on))
}

// Buzzer beeps a piezo on one output line.
type Buzzer struct {
	pin   gpio.PinIO
	sleep func(time.Duration)
}

const (
	shortBeep = 150 * time.Millisecond
	longBeep  = 300 * time.Millisecond
)

func OpenBuzzer(name string) (*Buzzer, error) {
	p, err := pin(name)
	if err != nil {
		return nil, err
	}
	if err := p.Out(gpio.Low); err != nil {
		return nil, fmt.Errorf("configure %s: %w", name, err)
	}
	return &Buzzer{pin: p, sleep: time.Sleep}, nil
}

// Beep sounds for 150ms, or 300ms when long is set. It blocks for the
// duration of the tone.
func (b *Buzzer) Beep(long bool) {
	d := shortBeep
	if long {
		d = longBeep
	}
	_ = b.pin.Out(gpio.High)
	b.sleep(d)
	_ = b.pin.Out(gpio.Low)
}

// Silent is a buzzer and backlight for boards without those lines.
type Silent struct{}

func (Silent) Beep(bool)               {}
func (Silent) SetBacklight(bool) error { return nil }
