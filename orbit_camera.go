package gizmo

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// OrbitCameraModule lets the user swing a camera around a point by dragging with a mouse button.
type OrbitCameraModule struct{}

func (m OrbitCameraModule) Install(app *App, cmd *Commands) {
	if !app.hasResource(typeOf[Input]()) {
		InputModule{}.Install(app, cmd)
	}
	app.UseSystem(
		System(OrbitCameraSystem).
			InStage(PreUpdate).
			RunAlways(),
	)
}

// OrbitCameraComponent places its entity on a sphere around Target. Yaw and Pitch are in degrees,
// Sensitivity in degrees per pixel.
type OrbitCameraComponent struct {
	Target      mgl32.Vec3
	Distance    float32
	Yaw         float32
	Pitch       float32
	Sensitivity float32
	Button      MouseButton

	dragging bool
	last     mgl32.Vec2
}

const maxOrbitPitch = 89

// NewOrbitCamera returns an orbit that reproduces the pose of a camera at eye looking at target.
func NewOrbitCamera(eye, target mgl32.Vec3, button MouseButton) OrbitCameraComponent {
	offset := eye.Sub(target)
	dist := offset.Len()
	orbit := OrbitCameraComponent{Target: target, Distance: dist, Sensitivity: 0.3, Button: button}
	if dist > 0 {
		orbit.Pitch = mgl32.RadToDeg(math32.Asin(mgl32.Clamp(offset.Y()/dist, -1, 1)))
		orbit.Yaw = mgl32.RadToDeg(math32.Atan2(offset.X(), offset.Z()))
	}
	return orbit
}

// Eye is the camera position for the current yaw, pitch and distance.
func (o *OrbitCameraComponent) Eye() mgl32.Vec3 {
	yaw, pitch := mgl32.DegToRad(o.Yaw), mgl32.DegToRad(o.Pitch)
	sy, cy := math32.Sincos(yaw)
	sp, cp := math32.Sincos(pitch)
	return o.Target.Add(mgl32.Vec3{cp * sy, sp, cp * cy}.Mul(o.Distance))
}

// OrbitCameraSystem rotates orbit cameras while their button is held. A press that started a gizmo
// drag is left to the gizmo.
func OrbitCameraSystem(cmd *Commands, input *Input) {
	drags := GetResource[PointerDrags](cmd)
	cursor, inWindow := input.Cursor()

	MakeQuery2[OrbitCameraComponent, TransformComponent](cmd).Map(func(eid EntityId, orbit *OrbitCameraComponent, tr *TransformComponent) bool {
		held := input.Pressed[orbit.Button] && inWindow
		if held && drags != nil && drags.Target(orbit.Button) != NoEntity {
			held = false
		}

		switch {
		case !held:
			orbit.dragging = false
		case !orbit.dragging:
			orbit.dragging = true
			orbit.last = cursor
		default:
			delta := cursor.Sub(orbit.last)
			orbit.last = cursor
			orbit.Yaw -= delta.X() * orbit.Sensitivity
			orbit.Pitch = mgl32.Clamp(orbit.Pitch+delta.Y()*orbit.Sensitivity, -maxOrbitPitch, maxOrbitPitch)
		}

		pose := LookAt(orbit.Eye(), orbit.Target, mgl32.Vec3{0, 1, 0})
		tr.Position, tr.Rotation = pose.Position, pose.Rotation
		return true
	})
}
