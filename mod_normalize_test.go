package gizmo

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func spawnPickCamera(cmd *Commands, eye mgl32.Vec3) EntityId {
	cam := CameraComponent{Fov: 45, Near: 0.1, Far: 1000, Viewport: mgl32.Vec2{800, 600}}
	tr := LookAt(eye, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
	return cmd.AddEntity(&PickSource{}, &cam, &tr)
}

// onScreenSize measures the pixels covered by SizeInWorld at the entity's current world scale.
func onScreenSize(t *testing.T, cmd *Commands, eid EntityId) float32 {
	t.Helper()
	_, cam, camTr, err := pickCamera(cmd)
	require.NoError(t, err)
	world := GetComponent[TransformComponent](cmd, eid)
	norm := GetComponent[Normalize3d](cmd, eid)

	p := View(*camTr).Mul4x1(world.Position.Vec4(1)).Vec3()
	a, err := cam.ViewToViewport(p)
	require.NoError(t, err)
	b, err := cam.ViewToViewport(p.Add(mgl32.Vec3{norm.SizeInWorld * world.Scale.X(), 0, 0}))
	require.NoError(t, err)
	return b.Sub(a).Len()
}

func TestNormalizeSystem_ConstantPixelSize(t *testing.T) {
	for _, distance := range []float32{1, 3, 8, 20, 75} {
		app := NewApp()
		cmd := app.Commands()
		spawnPickCamera(cmd, mgl32.Vec3{0, 0, 10})

		local := NewLocalTransform(mgl32.Vec3{0.5, 0.25, 10 - distance}, mgl32.QuatIdent())
		world := local.asTransform()
		eid := cmd.AddEntity(&Normalize3d{SizeInWorld: 1.5, DesiredPixelSize: 100}, &local, &world)
		app.FlushCommands()

		NormalizeSystem(cmd)
		TransformHierarchySystem(cmd)
		assert.InDelta(t, 100, onScreenSize(t, cmd, eid), 0.05, "distance %v", distance)

		// Running again does not drift.
		NormalizeSystem(cmd)
		TransformHierarchySystem(cmd)
		assert.InDelta(t, 100, onScreenSize(t, cmd, eid), 0.05, "distance %v, second pass", distance)
	}
}

func TestNormalizeSystem_StaticRoot(t *testing.T) {
	app := NewApp()
	cmd := app.Commands()
	spawnPickCamera(cmd, mgl32.Vec3{2, 2.5, 5})

	world := NewTransform(mgl32.Vec3{})
	eid := cmd.AddEntity(&Normalize3d{SizeInWorld: 1.5, DesiredPixelSize: 100}, &world)
	app.FlushCommands()

	NormalizeSystem(cmd)
	assert.InDelta(t, 100, onScreenSize(t, cmd, eid), 0.05)
}

func TestNormalizeSystem_BehindCameraKeepsScale(t *testing.T) {
	app := NewApp()
	cmd := app.Commands()
	spawnPickCamera(cmd, mgl32.Vec3{0, 0, 10})

	local := NewLocalTransform(mgl32.Vec3{0, 0, 20}, mgl32.QuatIdent())
	local.Scale = mgl32.Vec3{3, 3, 3}
	world := local.asTransform()
	eid := cmd.AddEntity(&Normalize3d{SizeInWorld: 1.5, DesiredPixelSize: 100}, &local, &world)
	app.FlushCommands()

	NormalizeSystem(cmd)
	assert.Equal(t, mgl32.Vec3{3, 3, 3}, GetComponent[LocalTransformComponent](cmd, eid).Scale)
}

func TestNormalizeSystem_NoPickSource(t *testing.T) {
	app := NewApp()
	cmd := app.Commands()
	local := NewLocalTransform(mgl32.Vec3{0, 0, -5}, mgl32.QuatIdent())
	world := local.asTransform()
	eid := cmd.AddEntity(&Normalize3d{SizeInWorld: 1.5, DesiredPixelSize: 100}, &local, &world)
	app.FlushCommands()

	require.NotPanics(t, func() { NormalizeSystem(cmd) })
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, GetComponent[LocalTransformComponent](cmd, eid).Scale)
}
