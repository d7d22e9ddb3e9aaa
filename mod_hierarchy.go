package gizmo

import (
	"github.com/go-gl/mathgl/mgl32"
)

// TransformComponent is the world-space pose of an entity. For entities that also carry a
// LocalTransformComponent it is derived every frame by TransformHierarchySystem; entities with
// only a TransformComponent are static roots and own it directly.
type TransformComponent struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
}

// LocalTransformComponent is the pose relative to the Parent (or to the world for roots).
// It is the authoritative value that drag handlers and the normalizer write.
type LocalTransformComponent struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
}

type Parent struct {
	Entity EntityId
}

func NewTransform(position mgl32.Vec3) TransformComponent {
	return TransformComponent{
		Position: position,
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
	}
}

func NewLocalTransform(position mgl32.Vec3, rotation mgl32.Quat) LocalTransformComponent {
	return LocalTransformComponent{
		Position: position,
		Rotation: rotation,
		Scale:    mgl32.Vec3{1, 1, 1},
	}
}

func (t TransformComponent) Matrix() mgl32.Mat4 {
	// M = T * R * S
	translate := mgl32.Translate3D(t.Position.X(), t.Position.Y(), t.Position.Z())
	scale := mgl32.Scale3D(t.Scale.X(), t.Scale.Y(), t.Scale.Z())
	return translate.Mul4(t.Rotation.Mat4()).Mul4(scale)
}

// InverseMatrix skips the general 4x4 inverse: inv(M) = inv(S) * inv(R) * inv(T).
func (t TransformComponent) InverseMatrix() mgl32.Mat4 {
	invScale := mgl32.Scale3D(1.0/t.Scale.X(), 1.0/t.Scale.Y(), 1.0/t.Scale.Z())
	invRotate := t.Rotation.Conjugate().Mat4()
	invTranslate := mgl32.Translate3D(-t.Position.X(), -t.Position.Y(), -t.Position.Z())
	return invScale.Mul4(invRotate).Mul4(invTranslate)
}

// Local axes in world space. Forward is -Z, matching the camera convention.
func (t TransformComponent) Up() mgl32.Vec3      { return t.Rotation.Rotate(mgl32.Vec3{0, 1, 0}).Normalize() }
func (t TransformComponent) Right() mgl32.Vec3   { return t.Rotation.Rotate(mgl32.Vec3{1, 0, 0}).Normalize() }
func (t TransformComponent) Forward() mgl32.Vec3 { return t.Rotation.Rotate(mgl32.Vec3{0, 0, -1}).Normalize() }
func (t TransformComponent) Back() mgl32.Vec3    { return t.Rotation.Rotate(mgl32.Vec3{0, 0, 1}).Normalize() }

func (l LocalTransformComponent) asTransform() TransformComponent {
	return TransformComponent{Position: l.Position, Rotation: l.Rotation, Scale: l.Scale}
}

// compose returns the world pose of a child with local pose l under parent world pose p.
func (p TransformComponent) compose(l LocalTransformComponent) TransformComponent {
	// WorldPos = ParentPos + ParentRot * (ParentScale * LocalPos)
	scaledLocalPos := mgl32.Vec3{
		l.Position.X() * p.Scale.X(),
		l.Position.Y() * p.Scale.Y(),
		l.Position.Z() * p.Scale.Z(),
	}
	return TransformComponent{
		Position: p.Position.Add(p.Rotation.Rotate(scaledLocalPos)),
		Rotation: p.Rotation.Mul(l.Rotation).Normalize(),
		Scale: mgl32.Vec3{
			p.Scale.X() * l.Scale.X(),
			p.Scale.Y() * l.Scale.Y(),
			p.Scale.Z() * l.Scale.Z(),
		},
	}
}

// relativeTo is the inverse of compose: the local pose that yields world pose w under parent p.
func (w TransformComponent) relativeTo(p TransformComponent) LocalTransformComponent {
	diff := w.Position.Sub(p.Position)
	localPos := p.Rotation.Conjugate().Rotate(diff)
	return LocalTransformComponent{
		Position: mgl32.Vec3{
			localPos.X() / (p.Scale.X() + 1e-6),
			localPos.Y() / (p.Scale.Y() + 1e-6),
			localPos.Z() / (p.Scale.Z() + 1e-6),
		},
		Rotation: p.Rotation.Conjugate().Mul(w.Rotation).Normalize(),
		Scale: mgl32.Vec3{
			w.Scale.X() / (p.Scale.X() + 1e-6),
			w.Scale.Y() / (p.Scale.Y() + 1e-6),
			w.Scale.Z() / (p.Scale.Z() + 1e-6),
		},
	}
}

type HierarchyModule struct{}

func (HierarchyModule) Install(app *App, cmd *Commands) {
	app.UseSystem(
		System(TransformHierarchySystem).
			InStage(PostUpdate).
			RunAlways(),
	)
}

// TransformHierarchySystem recomputes world transforms from local ones, parents before children.
func TransformHierarchySystem(cmd *Commands) {
	// Roots: local is the world pose.
	MakeQuery2[LocalTransformComponent, TransformComponent](cmd).WithoutTypes(Parent{}).Map(func(eid EntityId, local *LocalTransformComponent, world *TransformComponent) bool {
		*world = local.asTransform()
		return true
	})

	// Children: repeat passes until nothing changes, so depth is handled without sorting.
	// A cycle would never settle; the pass limit bounds it.
	for pass := 0; pass < 16; pass++ {
		changed := false
		MakeQuery3[LocalTransformComponent, Parent, TransformComponent](cmd).Map(func(eid EntityId, local *LocalTransformComponent, parent *Parent, world *TransformComponent) bool {
			parentWorld := GetComponent[TransformComponent](cmd, parent.Entity)
			if parentWorld == nil {
				return true
			}
			next := parentWorld.compose(*local)
			if next != *world {
				*world = next
				changed = true
			}
			return true
		})
		if !changed {
			break
		}
	}
}

// SetParent re-parents child under parent while keeping its current world pose.
// Both entities need a TransformComponent; the child gets Parent and LocalTransformComponent.
func SetParent(cmd *Commands, child, parent EntityId) bool {
	childWorld := GetComponent[TransformComponent](cmd, child)
	parentWorld := GetComponent[TransformComponent](cmd, parent)
	if childWorld == nil || parentWorld == nil || child == parent {
		return false
	}

	local := childWorld.relativeTo(*parentWorld)
	if l := GetComponent[LocalTransformComponent](cmd, child); l != nil {
		*l = local
		cmd.AddComponents(child, &Parent{Entity: parent})
	} else {
		cmd.AddComponents(child, &Parent{Entity: parent}, &local)
	}
	return true
}
