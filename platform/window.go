package platform

import (
	"fmt"
	"runtime"

	"github.com/gekko3d/gizmo"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// WindowState is the single shared GLFW window.
type WindowState struct {
	window *glfw.Window
	Width  int
	Height int
	Title  string
}

// WindowModule ensures a window exists and feeds gizmo.Input from it every frame.
// Install is idempotent: an existing WindowState is reused.
type WindowModule struct {
	Width  int
	Height int
	Title  string
}

// NewWindowModule fills in defaults for zero sizes and an empty title.
func NewWindowModule(width, height int, title string) WindowModule {
	if width <= 0 {
		width = 1280
	}
	if height <= 0 {
		height = 720
	}
	if title == "" {
		title = "Gizmo"
	}
	return WindowModule{Width: width, Height: height, Title: title}
}

func (m WindowModule) Install(app *gizmo.App, cmd *gizmo.Commands) {
	if gizmo.GetResource[gizmo.Input](cmd) == nil {
		gizmo.InputModule{}.Install(app, cmd)
	}
	if gizmo.GetResource[WindowState](cmd) != nil {
		return
	}

	ws, err := createWindowState(m.Width, m.Height, m.Title)
	if err != nil {
		panic(err)
	}
	cmd.AddResources(ws)

	app.UseSystem(
		gizmo.System(InputPollSystem).
			InStage(gizmo.Prelude).
			RunAlways(),
	)
}

func createWindowState(width, height int, title string) (*WindowState, error) {
	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("glfw init: %w", err)
	}

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.True)

	win, err := glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("create window: %w", err)
	}

	return &WindowState{
		window: win,
		Width:  width,
		Height: height,
		Title:  title,
	}, nil
}

// FramebufferSize is the drawable size in pixels, which is what cameras use as their viewport.
func (ws *WindowState) FramebufferSize() (int, int) {
	return ws.window.GetFramebufferSize()
}

// Destroy closes the window and shuts GLFW down.
func (ws *WindowState) Destroy() {
	if ws.window != nil {
		ws.window.Destroy()
		ws.window = nil
	}
	glfw.Terminate()
}

var glfwButtons = [...]struct {
	button gizmo.MouseButton
	glfw   glfw.MouseButton
}{
	{gizmo.MouseButtonLeft, glfw.MouseButtonLeft},
	{gizmo.MouseButtonRight, glfw.MouseButtonRight},
	{gizmo.MouseButtonMiddle, glfw.MouseButtonMiddle},
}

// InputPollSystem pumps GLFW events and copies window size, cursor and button state into Input.
// Cursor coordinates are scaled from window to framebuffer pixels.
func InputPollSystem(cmd *gizmo.Commands, ws *WindowState, input *gizmo.Input) {
	glfw.PollEvents()
	if ws.window.ShouldClose() {
		cmd.Exit()
		return
	}

	fbW, fbH := ws.window.GetFramebufferSize()
	winW, winH := ws.window.GetSize()
	ws.Width, ws.Height = fbW, fbH
	input.SetWindowSize(fbW, fbH)

	x, y := ws.window.GetCursorPos()
	if winW > 0 && winH > 0 {
		x *= float64(fbW) / float64(winW)
		y *= float64(fbH) / float64(winH)
	}
	if x >= 0 && y >= 0 && x < float64(fbW) && y < float64(fbH) {
		input.SetCursor(x, y)
	} else {
		input.ClearCursor()
	}

	for _, b := range glfwButtons {
		input.SetButton(b.button, ws.window.GetMouseButton(b.glfw) == glfw.Press)
	}
}
