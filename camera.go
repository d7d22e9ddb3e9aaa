package gizmo

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// CameraComponent is a perspective camera. Its pose is the entity's TransformComponent:
// it looks down its local -Z with +Y up. Viewport is the render target size in pixels.
type CameraComponent struct {
	Fov      float32 // vertical, degrees
	Near     float32
	Far      float32
	Viewport mgl32.Vec2
}

type Ray struct {
	Origin mgl32.Vec3
	Dir    mgl32.Vec3
}

const planeEpsilon = 1e-6

func NewPerspectiveCamera(fov, near, far float32) CameraComponent {
	return CameraComponent{Fov: fov, Near: near, Far: far, Viewport: mgl32.Vec2{1, 1}}
}

func (c CameraComponent) Aspect() float32 {
	if c.Viewport.Y() == 0 {
		return 1
	}
	return c.Viewport.X() / c.Viewport.Y()
}

func (c CameraComponent) Projection() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.Fov), c.Aspect(), c.Near, c.Far)
}

// View is the world-to-camera matrix for a camera posed at camTr (scale ignored).
func View(camTr TransformComponent) mgl32.Mat4 {
	pose := TransformComponent{Position: camTr.Position, Rotation: camTr.Rotation, Scale: mgl32.Vec3{1, 1, 1}}
	return pose.InverseMatrix()
}

func (c CameraComponent) ViewProjection(camTr TransformComponent) mgl32.Mat4 {
	return c.Projection().Mul4(View(camTr))
}

// ViewportToWorld returns the world ray through a viewport pixel (origin top-left, y down),
// starting on the near plane.
func (c CameraComponent) ViewportToWorld(camTr TransformComponent, px mgl32.Vec2) (Ray, error) {
	if c.Viewport.X() <= 0 || c.Viewport.Y() <= 0 {
		return Ray{}, fmt.Errorf("viewport %v: %w", c.Viewport, ErrDegenerateCamera)
	}
	if c.Near <= 0 || c.Far <= c.Near {
		return Ray{}, fmt.Errorf("clip range [%v, %v]: %w", c.Near, c.Far, ErrDegenerateCamera)
	}
	vp := c.ViewProjection(camTr)
	if det := vp.Det(); det == 0 || math32.IsNaN(det) || math32.IsInf(det, 0) {
		return Ray{}, ErrDegenerateCamera
	}
	inv := vp.Inv()

	ndcX := px.X()/c.Viewport.X()*2 - 1
	ndcY := 1 - px.Y()/c.Viewport.Y()*2

	near := inv.Mul4x1(mgl32.Vec4{ndcX, ndcY, -1, 1})
	far := inv.Mul4x1(mgl32.Vec4{ndcX, ndcY, 1, 1})
	if near.W() == 0 || far.W() == 0 {
		return Ray{}, ErrDegenerateCamera
	}
	nearW := near.Vec3().Mul(1 / near.W())
	farW := far.Vec3().Mul(1 / far.W())

	dir := farW.Sub(nearW)
	if dir.Len() == 0 {
		return Ray{}, ErrDegenerateCamera
	}
	return Ray{Origin: nearW, Dir: dir.Normalize()}, nil
}

// WorldToViewport projects a world point into viewport pixels.
func (c CameraComponent) WorldToViewport(camTr TransformComponent, p mgl32.Vec3) (mgl32.Vec2, error) {
	return c.clipToViewport(c.ViewProjection(camTr).Mul4x1(p.Vec4(1)))
}

// ViewToViewport projects a point already in view space into viewport pixels.
func (c CameraComponent) ViewToViewport(p mgl32.Vec3) (mgl32.Vec2, error) {
	return c.clipToViewport(c.Projection().Mul4x1(p.Vec4(1)))
}

func (c CameraComponent) clipToViewport(clip mgl32.Vec4) (mgl32.Vec2, error) {
	if clip.W() <= 0 {
		return mgl32.Vec2{}, ErrBehindCamera
	}
	ndc := clip.Vec3().Mul(1 / clip.W())
	return mgl32.Vec2{
		(ndc.X()*0.5 + 0.5) * c.Viewport.X(),
		(1 - (ndc.Y()*0.5 + 0.5)) * c.Viewport.Y(),
	}, nil
}

// LookAt returns a camera pose at eye facing target.
func LookAt(eye, target, up mgl32.Vec3) TransformComponent {
	back := eye.Sub(target)
	if back.Len() == 0 {
		return NewTransform(eye)
	}
	back = back.Normalize()
	right := up.Cross(back)
	if right.Len() < 1e-6 {
		// up is parallel to the view direction; pick any perpendicular.
		right = mgl32.Vec3{1, 0, 0}.Cross(back)
		if right.Len() < 1e-6 {
			right = mgl32.Vec3{0, 0, 1}.Cross(back)
		}
	}
	right = right.Normalize()
	trueUp := back.Cross(right)

	rot := mgl32.Mat4ToQuat(mgl32.Mat3FromCols(right, trueUp, back).Mat4()).Normalize()
	return TransformComponent{Position: eye, Rotation: rot, Scale: mgl32.Vec3{1, 1, 1}}
}

func (r Ray) At(t float32) mgl32.Vec3 {
	return r.Origin.Add(r.Dir.Mul(t))
}

// IntersectPlane returns the distance along the ray to the plane through origin with the
// given normal. Parallel rays and hits behind the ray origin report false.
func (r Ray) IntersectPlane(origin, normal mgl32.Vec3) (float32, bool) {
	denom := normal.Dot(r.Dir)
	if math32.Abs(denom) <= planeEpsilon {
		return 0, false
	}
	t := origin.Sub(r.Origin).Dot(normal) / denom
	if t <= planeEpsilon {
		return 0, false
	}
	return t, true
}

// CameraViewportSystem keeps every camera's viewport equal to the window size.
func CameraViewportSystem(cmd *Commands, input *Input) {
	if input.WindowWidth <= 0 || input.WindowHeight <= 0 {
		return
	}
	size := mgl32.Vec2{float32(input.WindowWidth), float32(input.WindowHeight)}
	MakeQuery1[CameraComponent](cmd).Map(func(eid EntityId, cam *CameraComponent) bool {
		cam.Viewport = size
		return true
	})
}
