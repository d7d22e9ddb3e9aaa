package platform

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/gekko3d/gizmo"
)

type GpuState struct {
	Surface       *wgpu.Surface
	Adapter       *wgpu.Adapter
	Device        *wgpu.Device
	Queue         *wgpu.Queue
	SurfaceConfig *wgpu.SurfaceConfiguration
}

// GpuModule creates the WebGPU device and swapchain for the shared window.
// WindowModule must be installed first.
type GpuModule struct{}

func (GpuModule) Install(app *gizmo.App, cmd *gizmo.Commands) {
	if gizmo.GetResource[GpuState](cmd) != nil {
		return
	}
	ws := gizmo.GetResource[WindowState](cmd)
	if ws == nil {
		panic("platform: GpuModule needs WindowModule installed first")
	}

	gpu, err := createGpuState(ws)
	if err != nil {
		panic(err)
	}
	cmd.AddResources(gpu)

	app.UseSystem(
		gizmo.System(SurfaceResizeSystem).
			InStage(gizmo.PreRender).
			RunAlways(),
	)
}

func createGpuState(ws *WindowState) (*GpuState, error) {
	instance := wgpu.CreateInstance(nil)
	defer instance.Release()

	surface := instance.CreateSurface(wgpuglfw.GetSurfaceDescriptor(ws.window))
	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: surface,
		PowerPreference:   wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		return nil, fmt.Errorf("request adapter: %w", err)
	}
	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
	})
	if err != nil {
		return nil, fmt.Errorf("request device: %w", err)
	}

	width, height := ws.FramebufferSize()
	caps := surface.GetCapabilities(adapter)
	config := wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      caps.Formats[0],
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: wgpu.PresentModeFifo, // vsync
		AlphaMode:   caps.AlphaModes[0],
	}
	surface.Configure(adapter, device, &config)

	return &GpuState{
		Surface:       surface,
		Adapter:       adapter,
		Device:        device,
		Queue:         device.GetQueue(),
		SurfaceConfig: &config,
	}, nil
}

// SurfaceResizeSystem reconfigures the swapchain when the framebuffer size changes.
// A minimized window (zero size) keeps the old configuration.
func SurfaceResizeSystem(ws *WindowState, gpu *GpuState) {
	if ws.Width <= 0 || ws.Height <= 0 {
		return
	}
	w, h := uint32(ws.Width), uint32(ws.Height)
	if gpu.SurfaceConfig.Width == w && gpu.SurfaceConfig.Height == h {
		return
	}
	gpu.SurfaceConfig.Width, gpu.SurfaceConfig.Height = w, h
	gpu.Surface.Configure(gpu.Adapter, gpu.Device, gpu.SurfaceConfig)
}

func (gpu *GpuState) Release() {
	gpu.Queue.Release()
	gpu.Device.Release()
	gpu.Adapter.Release()
	gpu.Surface.Release()
}
