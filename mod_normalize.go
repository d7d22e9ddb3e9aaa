package gizmo

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Normalize3d keeps an entity a constant size on screen: a segment of SizeInWorld world units
// at the entity's depth is rescaled to cover DesiredPixelSize pixels of the pick camera.
type Normalize3d struct {
	SizeInWorld      float32
	DesiredPixelSize float32
}

func NewNormalize3d(sizeInWorld, desiredPixelSize float32) Normalize3d {
	return Normalize3d{SizeInWorld: sizeInWorld, DesiredPixelSize: desiredPixelSize}
}

// NormalizeSystem must run after transform propagation and before rendering.
// Entities behind the camera or with a degenerate projection keep their last scale.
func NormalizeSystem(cmd *Commands) {
	_, cam, camTr, err := pickCamera(cmd)
	if err != nil {
		return
	}
	view := View(*camTr)

	MakeQuery2[Normalize3d, TransformComponent](cmd).Map(func(eid EntityId, norm *Normalize3d, world *TransformComponent) bool {
		s, ok := normalizeFactor(cam, view, world, norm)
		if !ok {
			cmd.Logger().Debugf("normalize: skipping entity %d", eid)
			return true
		}
		if local := GetComponent[LocalTransformComponent](cmd, eid); local != nil {
			local.Scale = local.Scale.Mul(s)
		} else {
			world.Scale = world.Scale.Mul(s)
		}
		return true
	})
}

// normalizeFactor is the multiplier that brings the entity's current world scale to the desired on-screen size.
func normalizeFactor(cam *CameraComponent, view mgl32.Mat4, world *TransformComponent, norm *Normalize3d) (float32, bool) {
	depth := view.Mul4x1(world.Position.Vec4(1)).Z()

	origin, err := cam.ViewToViewport(mgl32.Vec3{0, 0, depth})
	if err != nil {
		return 0, false
	}
	edge, err := cam.ViewToViewport(mgl32.Vec3{norm.SizeInWorld * world.Scale.X(), 0, depth})
	if err != nil {
		return 0, false
	}

	pixels := edge.Sub(origin).Len()
	if pixels <= 1e-6 {
		return 0, false
	}
	return norm.DesiredPixelSize / pixels, true
}
