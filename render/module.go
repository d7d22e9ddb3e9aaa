package render

import (
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/gizmo"
	"github.com/gekko3d/gizmo/platform"
)

// GizmoRenderModule draws the scene shapes and the gizmo through the gizmo camera.
// platform.GpuModule must be installed first.
type GizmoRenderModule struct {
	ClearColor wgpu.Color
}

func (m GizmoRenderModule) Install(app *gizmo.App, cmd *gizmo.Commands) {
	gpu := gizmo.GetResource[platform.GpuState](cmd)
	if gpu == nil {
		panic("render: GizmoRenderModule needs platform.GpuModule installed first")
	}
	pass, err := NewGizmoRenderPass(gpu.Device, gpu.SurfaceConfig.Format)
	if err != nil {
		panic(err)
	}
	cmd.AddResources(pass, &frameSettings{clear: m.ClearColor})

	app.UseSystem(
		gizmo.System(GizmoRenderSystem).
			InStage(gizmo.Render).
			RunAlways(),
	)
}

type frameSettings struct {
	clear wgpu.Color
}

// GizmoRenderSystem renders one frame to the window surface. Failures skip the frame.
func GizmoRenderSystem(cmd *gizmo.Commands, gpu *platform.GpuState, pass *GizmoRenderPass, server *gizmo.AssetServer, settings *frameSettings) {
	cam, camTr, ok := gizmo.ActiveGizmoCamera(cmd)
	if !ok {
		return
	}
	if err := pass.Update(gpu.Queue, cam, camTr, gizmo.DrawList(cmd, server)); err != nil {
		cmd.Logger().Warnf("render: update: %v", err)
		return
	}

	texture, err := gpu.Surface.GetCurrentTexture()
	if err != nil {
		cmd.Logger().Warnf("render: GetCurrentTexture: %v", err)
		return
	}
	defer texture.Release()

	view, err := texture.CreateView(nil)
	if err != nil {
		cmd.Logger().Warnf("render: CreateView: %v", err)
		return
	}
	defer view.Release()

	encoder, err := gpu.Device.CreateCommandEncoder(nil)
	if err != nil {
		cmd.Logger().Warnf("render: CreateCommandEncoder: %v", err)
		return
	}
	defer encoder.Release()

	rPass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: settings.clear,
		}},
	})
	pass.Draw(rPass)
	if err := rPass.End(); err != nil {
		cmd.Logger().Warnf("render: pass end: %v", err)
		return
	}

	commands, err := encoder.Finish(nil)
	if err != nil {
		cmd.Logger().Warnf("render: encoder finish: %v", err)
		return
	}
	defer commands.Release()

	gpu.Queue.Submit(commands)
	gpu.Surface.Present()
}
