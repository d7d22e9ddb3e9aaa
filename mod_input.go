package gizmo

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

type MouseButton int

const (
	MouseButtonLeft MouseButton = iota
	MouseButtonRight
	MouseButtonMiddle

	mouseButtonCount
)

var mouseButtonNames = [mouseButtonCount]string{"left", "right", "middle"}

func (b MouseButton) String() string {
	if b < 0 || b >= mouseButtonCount {
		return fmt.Sprintf("MouseButton(%d)", int(b))
	}
	return mouseButtonNames[b]
}

// ParseMouseButton accepts "left", "right", "middle" and "primary"/"secondary" aliases.
func ParseMouseButton(name string) (MouseButton, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "left", "primary":
		return MouseButtonLeft, nil
	case "right", "secondary":
		return MouseButtonRight, nil
	case "middle":
		return MouseButtonMiddle, nil
	}
	return 0, fmt.Errorf("%q: %w", name, ErrUnknownButton)
}

func (b *MouseButton) UnmarshalText(text []byte) error {
	parsed, err := ParseMouseButton(string(text))
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

func (b MouseButton) MarshalText() ([]byte, error) {
	if b < 0 || b >= mouseButtonCount {
		return nil, fmt.Errorf("%d: %w", int(b), ErrUnknownButton)
	}
	return []byte(b.String()), nil
}

// DragEvent is one incremental pointer drag over an entity. Position is the cursor after the
// move and Delta the pixels moved since the previous event, so Position-Delta is where it came from.
type DragEvent struct {
	Target   EntityId
	Button   MouseButton
	Delta    mgl32.Vec2
	Position mgl32.Vec2
}

type InputModule struct{}

// Input is the pointer state for the current frame. A platform poller (or a test) writes it
// before the PreUpdate stage; InputModule clears the per-frame edges at the end of every frame.
type Input struct {
	Pressed [mouseButtonCount]bool

	JustPressed  [mouseButtonCount]bool
	JustReleased [mouseButtonCount]bool

	MouseX, MouseY float64
	CursorInWindow bool

	WindowWidth, WindowHeight int

	Drags []DragEvent
}

func (mod InputModule) Install(app *App, cmd *Commands) {
	if !app.hasResource(typeOf[Input]()) {
		cmd.AddResources(&Input{})
	}
	app.UseSystem(
		System(inputFrameSystem).
			InStage(Finale).
			RunAlways(),
	)
}

func inputFrameSystem(input *Input) {
	input.BeginFrame()
}

// BeginFrame drops the press/release edges and drag events of the previous frame.
func (in *Input) BeginFrame() {
	in.JustPressed = [mouseButtonCount]bool{}
	in.JustReleased = [mouseButtonCount]bool{}
	in.Drags = in.Drags[:0]
}

func (in *Input) SetCursor(x, y float64) {
	in.MouseX, in.MouseY = x, y
	in.CursorInWindow = true
}

func (in *Input) ClearCursor() {
	in.CursorInWindow = false
}

// Cursor returns the cursor position in viewport pixels, or false when it left the window.
func (in *Input) Cursor() (mgl32.Vec2, bool) {
	if !in.CursorInWindow {
		return mgl32.Vec2{}, false
	}
	return mgl32.Vec2{float32(in.MouseX), float32(in.MouseY)}, true
}

func (in *Input) Press(b MouseButton) {
	if !in.Pressed[b] {
		in.JustPressed[b] = true
	}
	in.Pressed[b] = true
}

func (in *Input) Release(b MouseButton) {
	if in.Pressed[b] {
		in.JustReleased[b] = true
	}
	in.Pressed[b] = false
}

// SetButton applies a polled up/down state, deriving the edges.
func (in *Input) SetButton(b MouseButton, down bool) {
	if down {
		in.Press(b)
	} else {
		in.Release(b)
	}
}

func (in *Input) SetWindowSize(w, h int) {
	in.WindowWidth, in.WindowHeight = w, h
}
