// Package input converts SDL2 events into viewer events.
package input

import (
	"github.com/veandco/go-sdl2/sdl"
)

// EventType identifies a processed input event.
type EventType int

const (
	EventNone EventType = iota
	EventQuit
	EventWindowResize
	EventMouseDown
	EventMouseUp
	EventMouseMove
	EventWheel
	EventKeyDown
)

// Event is one processed input event.
type Event struct {
	Type   EventType
	Key    sdl.Scancode
	Width  int
	Height int
	MouseX int
	MouseY int
	Button uint8
	WheelY float32
}

// Input polls SDL events each frame.
type Input struct {
	events []Event
}

// New creates an input handler.
func New() *Input {
	return &Input{
		events: make([]Event, 0, 16),
	}
}

// Update polls SDL events and converts them to viewer events.
// Returns true if the application should quit.
//
// Mouse-up is reported regardless of pointer position: SDL delivers button
// release to the window that saw the press even when the pointer has left
// it, which is what ends a drag released outside the canvas.
func (in *Input) Update() bool {
	in.events = in.events[:0]

	quit := false
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			in.events = append(in.events, Event{Type: EventQuit})
			quit = true

		case *sdl.WindowEvent:
			if e.Event == sdl.WINDOWEVENT_RESIZED {
				in.events = append(in.events, Event{
					Type:   EventWindowResize,
					Width:  int(e.Data1),
					Height: int(e.Data2),
				})
			}

		case *sdl.MouseButtonEvent:
			typ := EventMouseDown
			if e.Type == sdl.MOUSEBUTTONUP {
				typ = EventMouseUp
			}
			in.events = append(in.events, Event{
				Type:   typ,
				MouseX: int(e.X),
				MouseY: int(e.Y),
				Button: e.Button,
			})

		case *sdl.MouseMotionEvent:
			in.events = append(in.events, Event{
				Type:   EventMouseMove,
				MouseX: int(e.X),
				MouseY: int(e.Y),
			})

		case *sdl.MouseWheelEvent:
			// SDL wheel Y is positive scrolling up; the viewer treats
			// positive deltaY as scrolling down, browser style.
			in.events = append(in.events, Event{
				Type:   EventWheel,
				WheelY: -float32(e.Y),
			})

		case *sdl.KeyboardEvent:
			if e.Type == sdl.KEYDOWN {
				in.events = append(in.events, Event{
					Type: EventKeyDown,
					Key:  e.Keysym.Scancode,
				})
			}
		}
	}

	return quit
}

// Events returns the events from the last Update.
func (in *Input) Events() []Event {
	return in.events
}
