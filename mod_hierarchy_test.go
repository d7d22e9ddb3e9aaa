package gizmo

import (
	"fmt"
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// vecNear compares component-wise with an absolute tolerance.
func vecNear(t *testing.T, expected, actual mgl32.Vec3, eps float32, msgAndArgs ...any) {
	t.Helper()
	for i := range expected {
		if math32.Abs(expected[i]-actual[i]) > eps {
			assert.Fail(t, fmt.Sprintf("expected %v, got %v (tolerance %v)", expected, actual, eps), msgAndArgs...)
			return
		}
	}
}

func TestTransformHierarchy(t *testing.T) {
	app := NewApp()
	app.UseModules(HierarchyModule{})

	cmd := app.Commands()

	parent := cmd.AddEntity(
		&LocalTransformComponent{
			Position: mgl32.Vec3{10, 0, 0},
			Rotation: mgl32.QuatIdent(),
			Scale:    mgl32.Vec3{1, 1, 1},
		},
		&TransformComponent{},
	)

	child := cmd.AddEntity(
		&Parent{Entity: parent},
		&LocalTransformComponent{
			Position: mgl32.Vec3{0, 5, 0},
			Rotation: mgl32.QuatIdent(),
			Scale:    mgl32.Vec3{1, 1, 1},
		},
		&TransformComponent{},
	)

	grandchild := cmd.AddEntity(
		&Parent{Entity: child},
		&LocalTransformComponent{
			Position: mgl32.Vec3{0, 0, 2},
			Rotation: mgl32.QuatIdent(),
			Scale:    mgl32.Vec3{1, 1, 1},
		},
		&TransformComponent{},
	)

	app.FlushCommands()
	TransformHierarchySystem(cmd)

	vecNear(t, mgl32.Vec3{10, 5, 0}, GetComponent[TransformComponent](cmd, child).Position, 1e-5)
	vecNear(t, mgl32.Vec3{10, 5, 2}, GetComponent[TransformComponent](cmd, grandchild).Position, 1e-5)

	// Rotate parent 90 deg around Y: child local +Y stays +Y, grandchild local +Z becomes +X.
	GetComponent[LocalTransformComponent](cmd, parent).Rotation = mgl32.QuatRotate(mgl32.DegToRad(90), mgl32.Vec3{0, 1, 0})
	TransformHierarchySystem(cmd)

	vecNear(t, mgl32.Vec3{10, 5, 0}, GetComponent[TransformComponent](cmd, child).Position, 1e-5)
	vecNear(t, mgl32.Vec3{12, 5, 0}, GetComponent[TransformComponent](cmd, grandchild).Position, 1e-5)
}

func TestTransformHierarchy_ParentScale(t *testing.T) {
	app := NewApp()
	cmd := app.Commands()

	parent := cmd.AddEntity(
		&LocalTransformComponent{Position: mgl32.Vec3{0, 0, 0}, Rotation: mgl32.QuatIdent(), Scale: mgl32.Vec3{2, 2, 2}},
		&TransformComponent{},
	)
	child := cmd.AddEntity(
		&Parent{Entity: parent},
		&LocalTransformComponent{Position: mgl32.Vec3{1, 0, 0}, Rotation: mgl32.QuatIdent(), Scale: mgl32.Vec3{1, 1, 1}},
		&TransformComponent{},
	)
	app.FlushCommands()
	TransformHierarchySystem(cmd)

	world := GetComponent[TransformComponent](cmd, child)
	vecNear(t, mgl32.Vec3{2, 0, 0}, world.Position, 1e-5)
	vecNear(t, mgl32.Vec3{2, 2, 2}, world.Scale, 1e-5)
}

func TestTransformHierarchy_ChildDeclaredBeforeParent(t *testing.T) {
	app := NewApp()
	cmd := app.Commands()

	// Ids are assigned in order, so the child gets the lower id and is visited first.
	child := cmd.AddEntity(
		&LocalTransformComponent{Position: mgl32.Vec3{1, 0, 0}, Rotation: mgl32.QuatIdent(), Scale: mgl32.Vec3{1, 1, 1}},
		&TransformComponent{},
	)
	parent := cmd.AddEntity(
		&LocalTransformComponent{Position: mgl32.Vec3{0, 3, 0}, Rotation: mgl32.QuatIdent(), Scale: mgl32.Vec3{1, 1, 1}},
		&TransformComponent{},
	)
	cmd.AddComponents(child, &Parent{Entity: parent})
	app.FlushCommands()

	TransformHierarchySystem(cmd)
	vecNear(t, mgl32.Vec3{1, 3, 0}, GetComponent[TransformComponent](cmd, child).Position, 1e-5)
}

func TestSetParent_KeepsWorldPose(t *testing.T) {
	app := NewApp()
	cmd := app.Commands()

	parentWorld := TransformComponent{
		Position: mgl32.Vec3{4, 0, 0},
		Rotation: mgl32.QuatRotate(mgl32.DegToRad(90), mgl32.Vec3{0, 0, 1}),
		Scale:    mgl32.Vec3{1, 1, 1},
	}
	parent := cmd.AddEntity(&parentWorld)
	childWorld := NewTransform(mgl32.Vec3{4, 2, 0})
	child := cmd.AddEntity(&childWorld)
	app.FlushCommands()

	require.True(t, SetParent(cmd, child, parent))
	app.FlushCommands()

	local := GetComponent[LocalTransformComponent](cmd, child)
	require.NotNil(t, local)
	vecNear(t, mgl32.Vec3{2, 0, 0}, local.Position, 1e-4)

	TransformHierarchySystem(cmd)
	vecNear(t, mgl32.Vec3{4, 2, 0}, GetComponent[TransformComponent](cmd, child).Position, 1e-4)

	assert.False(t, SetParent(cmd, child, child), "an entity cannot parent itself")
	assert.False(t, SetParent(cmd, child, EntityId(999)), "missing parent")
}

func TestTransformComponent_Directions(t *testing.T) {
	tr := NewTransform(mgl32.Vec3{})
	vecNear(t, mgl32.Vec3{0, 0, -1}, tr.Forward(), 1e-6)
	vecNear(t, mgl32.Vec3{0, 0, 1}, tr.Back(), 1e-6)
	vecNear(t, mgl32.Vec3{0, 1, 0}, tr.Up(), 1e-6)
	vecNear(t, mgl32.Vec3{1, 0, 0}, tr.Right(), 1e-6)

	tr.Rotation = mgl32.QuatRotate(mgl32.DegToRad(90), mgl32.Vec3{0, 1, 0})
	vecNear(t, mgl32.Vec3{-1, 0, 0}, tr.Forward(), 1e-5)
}

func TestTransformComponent_InverseMatrix(t *testing.T) {
	tr := TransformComponent{
		Position: mgl32.Vec3{1, 2, 3},
		Rotation: mgl32.QuatRotate(0.7, mgl32.Vec3{1, 1, 0}.Normalize()),
		Scale:    mgl32.Vec3{2, 0.5, 3},
	}
	identity := tr.Matrix().Mul4(tr.InverseMatrix())
	want := mgl32.Ident4()
	for i := range want {
		assert.InDelta(t, want[i], identity[i], 1e-4, "M * inv(M) = I, entry %d of %v", i, identity)
	}
}
