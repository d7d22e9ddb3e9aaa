package render

import (
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/gizmo"
	"github.com/gekko3d/gizmo/render/shaders"
)

// GizmoRenderPass draws the scene and gizmo wireframes as instanced line lists on top of
// whatever the target already holds.
type GizmoRenderPass struct {
	Pipeline       *wgpu.RenderPipeline
	CameraBuffer   *wgpu.Buffer
	CameraGroup    *wgpu.BindGroup
	VertexBuffer   *wgpu.Buffer
	VertexCount    uint32
	InstanceBuffer *wgpu.Buffer
	InstanceCap    uint32
	Device         *wgpu.Device

	shapes  map[gizmo.ShapeType]shapeRange
	batches []batch
}

func NewGizmoRenderPass(device *wgpu.Device, format wgpu.TextureFormat) (*GizmoRenderPass, error) {
	shaderModule, err := device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "GizmoShader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaders.GizmoWGSL},
	})
	if err != nil {
		return nil, err
	}
	defer shaderModule.Release()

	bgl, err := device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "GizmoCameraBGL",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageVertex,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeUniform,
					MinBindingSize: cameraDataSize,
				},
			},
		},
	})
	if err != nil {
		return nil, err
	}

	pipelineLayout, err := device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		BindGroupLayouts: []*wgpu.BindGroupLayout{bgl},
	})
	if err != nil {
		return nil, err
	}

	pipeline, err := device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "GizmoPipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     shaderModule,
			EntryPoint: "vs_main",
			Buffers: []wgpu.VertexBufferLayout{
				{
					ArrayStride: uint64(unsafe.Sizeof(Vertex{})),
					StepMode:    wgpu.VertexStepModeVertex,
					Attributes: []wgpu.VertexAttribute{
						{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
					},
				},
				{
					ArrayStride: uint64(unsafe.Sizeof(Instance{})),
					StepMode:    wgpu.VertexStepModeInstance,
					Attributes: []wgpu.VertexAttribute{
						{Format: wgpu.VertexFormatFloat32x4, Offset: 0, ShaderLocation: 2},
						{Format: wgpu.VertexFormatFloat32x4, Offset: 16, ShaderLocation: 3},
						{Format: wgpu.VertexFormatFloat32x4, Offset: 32, ShaderLocation: 4},
						{Format: wgpu.VertexFormatFloat32x4, Offset: 48, ShaderLocation: 5},
						{Format: wgpu.VertexFormatFloat32x4, Offset: 64, ShaderLocation: 6},
					},
				},
			},
		},
		Fragment: &wgpu.FragmentState{
			Module:     shaderModule,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{
				{
					Format:    format,
					WriteMask: wgpu.ColorWriteMaskAll,
					Blend: &wgpu.BlendState{
						Color: wgpu.BlendComponent{
							Operation: wgpu.BlendOperationAdd,
							SrcFactor: wgpu.BlendFactorSrcAlpha,
							DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
						},
						Alpha: wgpu.BlendComponent{
							Operation: wgpu.BlendOperationAdd,
							SrcFactor: wgpu.BlendFactorOne,
							DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
						},
					},
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyLineList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		// The gizmo always draws over the scene, so no depth attachment.
		DepthStencil: nil,
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, err
	}

	vertices, shapes := unitShapes()
	p := &GizmoRenderPass{
		Pipeline:    pipeline,
		Device:      device,
		VertexCount: uint32(len(vertices)),
		shapes:      shapes,
	}

	p.VertexBuffer, err = device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    "GizmoUnitVertexBuffer",
		Contents: wgpu.ToBytes(vertices),
		Usage:    wgpu.BufferUsageVertex,
	})
	if err != nil {
		return nil, err
	}

	p.CameraBuffer, err = device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "GizmoCameraBuffer",
		Size:  cameraDataSize,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, err
	}

	p.CameraGroup, err = device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "GizmoCameraBG",
		Layout: bgl,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: p.CameraBuffer, Size: cameraDataSize},
		},
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Update uploads the camera and this frame's instances.
func (p *GizmoRenderPass) Update(queue *wgpu.Queue, cam gizmo.CameraComponent, camTr gizmo.TransformComponent, draws []gizmo.Draw) error {
	if err := queue.WriteBuffer(p.CameraBuffer, 0, cameraData(cam, camTr)); err != nil {
		return err
	}

	instances, batches := batchDraws(draws)
	p.batches = batches
	if len(instances) == 0 {
		return nil
	}

	count := uint32(len(instances))
	if p.InstanceBuffer == nil || p.InstanceCap < count {
		if p.InstanceBuffer != nil {
			p.InstanceBuffer.Release()
		}
		p.InstanceCap = count + 32
		buf, err := p.Device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: "GizmoInstanceBuffer",
			Size:  uint64(p.InstanceCap) * uint64(unsafe.Sizeof(Instance{})),
			Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			p.InstanceBuffer, p.InstanceCap = nil, 0
			return err
		}
		p.InstanceBuffer = buf
	}
	return queue.WriteBuffer(p.InstanceBuffer, 0, wgpu.ToBytes(instances))
}

func (p *GizmoRenderPass) Draw(pass *wgpu.RenderPassEncoder) {
	if p.InstanceBuffer == nil || len(p.batches) == 0 {
		return
	}

	pass.SetPipeline(p.Pipeline)
	pass.SetBindGroup(0, p.CameraGroup, nil)
	pass.SetVertexBuffer(0, p.VertexBuffer, 0, p.VertexBuffer.GetSize())
	pass.SetVertexBuffer(1, p.InstanceBuffer, 0, p.InstanceBuffer.GetSize())

	for _, b := range p.batches {
		shape, ok := p.shapes[b.shape]
		if !ok {
			continue
		}
		pass.Draw(shape.count, b.count, shape.offset, b.first)
	}
}

func (p *GizmoRenderPass) Release() {
	for _, buf := range []*wgpu.Buffer{p.InstanceBuffer, p.CameraBuffer, p.VertexBuffer} {
		if buf != nil {
			buf.Release()
		}
	}
	if p.CameraGroup != nil {
		p.CameraGroup.Release()
	}
	if p.Pipeline != nil {
		p.Pipeline.Release()
	}
}
