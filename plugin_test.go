package gizmo

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type gizmoScene struct {
	app   *App
	cmd   *Commands
	input *Input
	sel   *Selection
	cube  EntityId
}

// newGizmoScene builds an app with the gizmo module, a pick camera at (2, 2.5, 5) looking at the
// origin, and a selectable unit cube at cubePos. One frame has run so the gizmo exists.
func newGizmoScene(t *testing.T, cubePos mgl32.Vec3) *gizmoScene {
	t.Helper()
	app := NewApp().UseModules(DefaultTransformGizmoModule())
	cmd := app.Commands()
	input := GetResource[Input](cmd)
	require.NotNil(t, input)
	input.SetWindowSize(800, 600)

	server := GetResource[AssetServer](cmd)
	require.NotNil(t, server)

	spawnPickCamera(cmd, mgl32.Vec3{2, 2.5, 5})
	local := NewLocalTransform(cubePos, mgl32.QuatIdent())
	world := local.asTransform()
	cube := cmd.AddEntity(
		&Transformable{},
		&local,
		&world,
		&BoxCollider{HalfExtents: mgl32.Vec3{0.5, 0.5, 0.5}},
		&ShapeComponent{Type: ShapeCube, Scale: mgl32.Vec3{1, 1, 1}},
		&MaterialComponent{Asset: server.AddMaterial(Color{0.5, 0.5, 0.5, 1})},
	)
	app.FlushCommands()
	app.Step()

	return &gizmoScene{
		app:   app,
		cmd:   cmd,
		input: input,
		sel:   GetResource[Selection](cmd),
		cube:  cube,
	}
}

func (s *gizmoScene) click(t *testing.T, b MouseButton, at mgl32.Vec2) {
	t.Helper()
	s.input.SetCursor(float64(at.X()), float64(at.Y()))
	s.input.Press(b)
	s.app.Step()
	s.input.Release(b)
	s.app.Step()
}

func (s *gizmoScene) pixelOf(t *testing.T, p mgl32.Vec3) mgl32.Vec2 {
	t.Helper()
	_, cam, camTr, err := pickCamera(s.cmd)
	require.NoError(t, err)
	px, err := cam.WorldToViewport(*camTr, p)
	require.NoError(t, err)
	return px
}

func TestTransformGizmoModule_InstallsResources(t *testing.T) {
	app := NewApp().UseModules(DefaultTransformGizmoModule())
	cmd := app.Commands()
	assert.NotNil(t, GetResource[Input](cmd))
	assert.NotNil(t, GetResource[AssetServer](cmd))
	assert.NotNil(t, GetResource[Diagnostics](cmd))
	assert.NotNil(t, GetResource[PickState](cmd))
	assert.NotNil(t, GetResource[PointerDrags](cmd))

	sel := GetResource[Selection](cmd)
	require.NotNil(t, sel)
	assert.True(t, sel.UseTagFilter)
	assert.Equal(t, MouseButtonRight, sel.SelectionButton)
	assert.Equal(t, MouseButtonLeft, sel.DragButton)

	app.Step()
	assert.NotEqual(t, NoEntity, FindGizmoRoot(cmd))
	_, _, ok := ActiveGizmoCamera(cmd)
	assert.True(t, ok)

	app.Step()
	roots := 0
	MakeQuery1[GizmoRoot](cmd).Map(func(EntityId, *GizmoRoot) bool { roots++; return true })
	assert.Equal(t, 1, roots, "the gizmo is built once")
}

func TestTransformGizmoModule_KeepsExistingInput(t *testing.T) {
	app := NewApp()
	input := &Input{WindowWidth: 640, WindowHeight: 480}
	app.Commands().AddResources(input)
	app.UseModules(DefaultTransformGizmoModule())
	assert.Same(t, input, GetResource[Input](app.Commands()))
}

func TestScenario_SelectAndDragAlongX(t *testing.T) {
	s := newGizmoScene(t, mgl32.Vec3{})
	root := FindGizmoRoot(s.cmd)
	require.NotEqual(t, NoEntity, root)

	pick := GetResource[PickState](s.cmd)
	s.input.SetCursor(400, 300)
	s.app.Step()
	require.True(t, pick.Valid)
	assert.Equal(t, s.cube, pick.Hovered)

	s.click(t, MouseButtonRight, mgl32.Vec2{400, 300})
	selected, ok := s.sel.Entity()
	require.True(t, ok)
	assert.Equal(t, s.cube, selected)
	vecNear(t, mgl32.Vec3{}, GetComponent[TransformComponent](s.cmd, root).Position, 1e-6)

	xShaft := findPart(s.cmd, PartTranslateAxis, mgl32.Vec3{1, 0, 0})
	require.NotEqual(t, NoEntity, xShaft)

	prevX := GetComponent[TransformComponent](s.cmd, s.cube).Position.X()
	for x := float32(410); x <= 450; x += 10 {
		s.input.Drags = append(s.input.Drags, DragEvent{
			Target:   xShaft,
			Button:   MouseButtonLeft,
			Delta:    mgl32.Vec2{10, 0},
			Position: mgl32.Vec2{x, 300},
		})
		s.app.Step()

		pos := GetComponent[TransformComponent](s.cmd, s.cube).Position
		assert.Greater(t, pos.X(), prevX, "drag to x=%v", x)
		assert.InDelta(t, 0, pos.Y(), 1e-5)
		assert.InDelta(t, 0, pos.Z(), 1e-5)
		prevX = pos.X()

		vecNear(t, pos, GetComponent[TransformComponent](s.cmd, root).Position, 1e-5, "the gizmo follows the cube")
	}
	assert.Greater(t, prevX, float32(0.3))
}

func TestScenario_PointerDragOnShaft(t *testing.T) {
	s := newGizmoScene(t, mgl32.Vec3{})
	s.click(t, MouseButtonRight, mgl32.Vec2{400, 300})
	_, ok := s.sel.Entity()
	require.True(t, ok)

	xShaft := findPart(s.cmd, PartTranslateAxis, mgl32.Vec3{1, 0, 0})
	start := s.pixelOf(t, GetComponent[TransformComponent](s.cmd, xShaft).Position)

	s.input.SetCursor(float64(start.X()), float64(start.Y()))
	s.input.Press(MouseButtonLeft)
	s.app.Step()
	drags := GetResource[PointerDrags](s.cmd)
	require.Equal(t, xShaft, drags.Target(MouseButtonLeft))
	assert.Equal(t, mgl32.Vec3{}, GetComponent[TransformComponent](s.cmd, s.cube).Position, "pressing alone moves nothing")

	prevX := float32(0)
	for i := 1; i <= 3; i++ {
		s.input.SetCursor(float64(start.X())+float64(10*i), float64(start.Y()))
		s.app.Step()
		x := GetComponent[TransformComponent](s.cmd, s.cube).Position.X()
		assert.Greater(t, x, prevX)
		prevX = x
	}

	s.input.Release(MouseButtonLeft)
	s.app.Step()
	assert.Equal(t, NoEntity, drags.Target(MouseButtonLeft))

	s.input.SetCursor(float64(start.X())+100, float64(start.Y()))
	s.app.Step()
	assert.Equal(t, prevX, GetComponent[TransformComponent](s.cmd, s.cube).Position.X(), "released drags stop")
}

func TestScenario_GizmoMovesToSelection(t *testing.T) {
	target := mgl32.Vec3{1, 0, -1}
	s := newGizmoScene(t, target)
	root := FindGizmoRoot(s.cmd)

	s.click(t, MouseButtonRight, s.pixelOf(t, target))
	selected, ok := s.sel.Entity()
	require.True(t, ok)
	assert.Equal(t, s.cube, selected)
	vecNear(t, target, GetComponent[TransformComponent](s.cmd, root).Position, 1e-5)

	// Clicking empty space keeps the selection.
	s.click(t, MouseButtonRight, mgl32.Vec2{5, 5})
	selected, ok = s.sel.Entity()
	assert.True(t, ok)
	assert.Equal(t, s.cube, selected)
}

func TestScenario_GizmoTakesRotatedSelectionPose(t *testing.T) {
	target := mgl32.Vec3{1, 0, -1}
	s := newGizmoScene(t, target)
	root := FindGizmoRoot(s.cmd)

	rot := mgl32.QuatRotate(mgl32.DegToRad(30), mgl32.Vec3{0, 1, 0})
	local := GetComponent[LocalTransformComponent](s.cmd, s.cube)
	local.Rotation = rot
	local.Scale = mgl32.Vec3{2, 1, 1.5}
	s.app.Step()

	s.click(t, MouseButtonRight, s.pixelOf(t, target))
	selected, ok := s.sel.Entity()
	require.True(t, ok)
	assert.Equal(t, s.cube, selected)

	world := GetComponent[TransformComponent](s.cmd, root)
	vecNear(t, target, world.Position, 1e-5)
	assert.InDelta(t, rot.W, world.Rotation.W, 1e-5)
	vecNear(t, rot.V, world.Rotation.V, 1e-5)

	// The root keeps the normalizer's uniform scale rather than the cube's.
	assert.InDelta(t, world.Scale.X(), world.Scale.Y(), 1e-6)
	assert.InDelta(t, world.Scale.X(), world.Scale.Z(), 1e-6)
	assert.InDelta(t, 100, onScreenSize(t, s.cmd, root), 0.5)
}

func TestScenario_NoPickSourceWarnsOnce(t *testing.T) {
	app := NewApp()
	logger := &recordingLogger{}
	app.Commands().AddResources(logger)
	app.UseModules(DefaultTransformGizmoModule())
	input := GetResource[Input](app.Commands())
	input.SetWindowSize(800, 600)
	input.SetCursor(100, 100)

	for i := 0; i < 10; i++ {
		require.NotPanics(t, app.Step)
	}
	assert.Len(t, logger.warnings, 1)
}
