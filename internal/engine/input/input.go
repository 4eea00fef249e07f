// Package input handles SDL2 input events and keeps a pointer snapshot for
// behaviors to read.
package input

import (
	"github.com/veandco/go-sdl2/sdl"
)

// Event types for game use
type EventType int

const (
	EventNone EventType = iota
	EventQuit
	EventWindowResize
	EventKeyDown
	EventKeyUp
	EventMouseMove
	EventMouseDown
	EventMouseUp
)

// Event represents a processed input event.
type Event struct {
	Type   EventType
	Key    sdl.Scancode
	Width  int
	Height int
	MouseX int
	MouseY int
	Button uint8
}

// Input collects the events of one tick and the latest pointer position.
// It implements world.Input.
type Input struct {
	events []Event

	pointerX, pointerY float32
	hasPointer         bool
	width, height      int
	quit               bool
	resized            bool
}

// New creates a new input handler for a canvas of the given size.
func New(width, height int) *Input {
	return &Input{
		events: make([]Event, 0, 16),
		width:  width,
		height: height,
	}
}

// Update polls SDL events and converts them to game events.
// Returns true if the game should quit.
func (i *Input) Update() bool {
	i.Begin()
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		if ev, ok := convert(event); ok {
			i.Apply(ev)
		}
	}
	return i.quit
}

// Begin clears the per-tick event list. The pointer snapshot is kept.
func (i *Input) Begin() {
	i.events = i.events[:0]
	i.resized = false
}

// Apply folds one event into the snapshot.
func (i *Input) Apply(ev Event) {
	i.events = append(i.events, ev)
	switch ev.Type {
	case EventQuit:
		i.quit = true
	case EventWindowResize:
		i.width, i.height = ev.Width, ev.Height
		i.resized = true
	case EventKeyDown:
		if ev.Key == sdl.SCANCODE_ESCAPE {
			i.quit = true
		}
	case EventMouseMove, EventMouseDown, EventMouseUp:
		i.pointerX, i.pointerY = float32(ev.MouseX), float32(ev.MouseY)
		i.hasPointer = true
	}
}

func convert(event sdl.Event) (Event, bool) {
	switch e := event.(type) {
	case *sdl.QuitEvent:
		return Event{Type: EventQuit}, true

	case *sdl.WindowEvent:
		if e.Event == sdl.WINDOWEVENT_RESIZED {
			return Event{
				Type:   EventWindowResize,
				Width:  int(e.Data1),
				Height: int(e.Data2),
			}, true
		}

	case *sdl.KeyboardEvent:
		if e.Type == sdl.KEYDOWN {
			return Event{Type: EventKeyDown, Key: e.Keysym.Scancode}, true
		} else if e.Type == sdl.KEYUP {
			return Event{Type: EventKeyUp, Key: e.Keysym.Scancode}, true
		}

	case *sdl.MouseMotionEvent:
		return Event{
			Type:   EventMouseMove,
			MouseX: int(e.X),
			MouseY: int(e.Y),
		}, true

	case *sdl.MouseButtonEvent:
		typ := EventMouseUp
		if e.Type == sdl.MOUSEBUTTONDOWN {
			typ = EventMouseDown
		}
		return Event{
			Type:   typ,
			MouseX: int(e.X),
			MouseY: int(e.Y),
			Button: e.Button,
		}, true
	}
	return Event{}, false
}

// Events returns the events from the last Update.
func (i *Input) Events() []Event {
	return i.events
}

// IsKeyPressed checks if a specific key was pressed this frame.
func (i *Input) IsKeyPressed(scancode sdl.Scancode) bool {
	for _, e := range i.events {
		if e.Type == EventKeyDown && e.Key == scancode {
			return true
		}
	}
	return false
}

// QuitRequested reports whether a quit event or Escape has been seen.
func (i *Input) QuitRequested() bool { return i.quit }

// Resized reports whether the canvas size changed this tick, and the size.
func (i *Input) Resized() (width, height int, ok bool) {
	return i.width, i.height, i.resized
}

// Pointer returns the last pointer position in canvas pixels.
func (i *Input) Pointer() (x, y float32, ok bool) {
	return i.pointerX, i.pointerY, i.hasPointer
}

// PointerView maps the pointer into [-1, 1] with 0 at the canvas center.
// Positions outside the canvas map outside that range.
func (i *Input) PointerView() (x, y float32, ok bool) {
	if !i.hasPointer || i.width <= 0 || i.height <= 0 {
		return 0, 0, false
	}
	x = 2*(i.pointerX/float32(i.width)) - 1
	y = 2*(i.pointerY/float32(i.height)) - 1
	return x, y, true
}
