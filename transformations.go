package gizmo

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// DragView is what the drag math needs from the pick camera.
type DragView struct {
	Camera    CameraComponent
	Transform TransformComponent
}

// planarDelta intersects the rays through the cursor's previous and current positions with the
// plane through anchor and returns both hit points.
func (v DragView) planarDelta(current, delta mgl32.Vec2, anchor, normal mgl32.Vec3) (prev, now mgl32.Vec3, err error) {
	rayNow, err := v.Camera.ViewportToWorld(v.Transform, current)
	if err != nil {
		return prev, now, err
	}
	rayPrev, err := v.Camera.ViewportToWorld(v.Transform, current.Sub(delta))
	if err != nil {
		return prev, now, err
	}

	tNow, ok := rayNow.IntersectPlane(anchor, normal)
	if !ok {
		return prev, now, ErrNoIntersection
	}
	tPrev, ok := rayPrev.IntersectPlane(anchor, normal)
	if !ok {
		return prev, now, ErrNoIntersection
	}
	return rayPrev.At(tPrev), rayNow.At(tNow), nil
}

// projectOnto is the vector projection of v onto axis.
func projectOnto(v, axis mgl32.Vec3) mgl32.Vec3 {
	d := axis.Dot(axis)
	if d == 0 {
		return mgl32.Vec3{}
	}
	return axis.Mul(v.Dot(axis) / d)
}

// angleBetween is the unsigned angle in radians.
func angleBetween(a, b mgl32.Vec3) float32 {
	l := a.Len() * b.Len()
	if l == 0 {
		return 0
	}
	return math32.Acos(mgl32.Clamp(a.Dot(b)/l, -1, 1))
}

// AxisTranslation moves along the part's up axis. The drag plane contains that axis (its
// normal is the part's forward).
func AxisTranslation(view DragView, part TransformComponent, current, delta mgl32.Vec2) (mgl32.Vec3, error) {
	prev, now, err := view.planarDelta(current, delta, part.Position, part.Forward())
	if err != nil {
		return mgl32.Vec3{}, err
	}
	return projectOnto(now.Sub(prev), part.Up()), nil
}

// PlaneTranslation moves within the part's plane: the drag plane has the part's up as normal
// and the motion keeps only its forward and right components.
func PlaneTranslation(view DragView, part TransformComponent, current, delta mgl32.Vec2) (mgl32.Vec3, error) {
	prev, now, err := view.planarDelta(current, delta, part.Position, part.Up())
	if err != nil {
		return mgl32.Vec3{}, err
	}
	d := now.Sub(prev)
	return projectOnto(d, part.Forward()).Add(projectOnto(d, part.Right())), nil
}

// CameraPlaneTranslation moves in the plane facing the camera through the part.
func CameraPlaneTranslation(view DragView, part TransformComponent, current, delta mgl32.Vec2) (mgl32.Vec3, error) {
	prev, now, err := view.planarDelta(current, delta, part.Position, view.Transform.Back())
	if err != nil {
		return mgl32.Vec3{}, err
	}
	d := now.Sub(prev)
	return projectOnto(d, view.Transform.Up()).Add(projectOnto(d, view.Transform.Right())), nil
}

// Rotation turns about the part's up axis by the change of the angle between the part's back
// direction and the dragged point. The angle is unsigned, so the sense of rotation flips when the
// cursor crosses the back direction's antipode.
func Rotation(view DragView, part TransformComponent, current, delta mgl32.Vec2) (mgl32.Quat, error) {
	axis := part.Up()
	prev, now, err := view.planarDelta(current, delta, part.Position, axis)
	if err != nil {
		return mgl32.QuatIdent(), err
	}

	reference := part.Back()
	toNow := now.Sub(part.Position)
	toPrev := prev.Sub(part.Position)
	if toNow.Len() == 0 || toPrev.Len() == 0 {
		return mgl32.QuatIdent(), ErrNoIntersection
	}
	angle := angleBetween(reference, toNow.Normalize()) - angleBetween(reference, toPrev.Normalize())
	return mgl32.QuatRotate(angle, axis), nil
}

// dragTargets are the transforms one drag event writes: the gizmo root and, when something is
// selected, the selected entity. Local transforms are preferred; an entity without one is a
// static root and its world transform is written instead.
type dragTargets struct {
	gizmo    *LocalTransformComponent
	selected *LocalTransformComponent
	static   *TransformComponent
}

func resolveDragTargets(cmd *Commands, part EntityId, sel *Selection) (dragTargets, error) {
	var t dragTargets

	parent := GetComponent[Parent](cmd, part)
	if parent == nil {
		return t, fmt.Errorf("part %d: Parent: %w", part, ErrMissingComponent)
	}
	t.gizmo = GetComponent[LocalTransformComponent](cmd, parent.Entity)
	if t.gizmo == nil {
		return t, fmt.Errorf("gizmo %d: LocalTransformComponent: %w", parent.Entity, ErrMissingComponent)
	}

	if eid, ok := sel.Entity(); ok {
		t.selected = GetComponent[LocalTransformComponent](cmd, eid)
		if t.selected == nil {
			t.static = GetComponent[TransformComponent](cmd, eid)
			if t.static == nil {
				return t, fmt.Errorf("selected %d: TransformComponent: %w", eid, ErrMissingComponent)
			}
		}
	}
	return t, nil
}

func (t dragTargets) translate(d mgl32.Vec3) {
	t.gizmo.Position = t.gizmo.Position.Add(d)
	if t.selected != nil {
		t.selected.Position = t.selected.Position.Add(d)
	}
	if t.static != nil {
		t.static.Position = t.static.Position.Add(d)
	}
}

func (t dragTargets) rotate(q mgl32.Quat) {
	t.gizmo.Rotation = q.Mul(t.gizmo.Rotation).Normalize()
	if t.selected != nil {
		t.selected.Rotation = q.Mul(t.selected.Rotation).Normalize()
	}
	if t.static != nil {
		t.static.Rotation = q.Mul(t.static.Rotation).Normalize()
	}
}

// ApplyDrag runs the handler for one drag event. Every lookup and every intersection happens
// before anything is written, so either both the gizmo and the selection move or neither does.
func ApplyDrag(cmd *Commands, sel *Selection, view DragView, ev DragEvent) error {
	if ev.Button != sel.DragButton {
		return nil
	}
	kind := GetComponent[GizmoPart](cmd, ev.Target)
	if kind == nil {
		return nil
	}
	part := GetComponent[TransformComponent](cmd, ev.Target)
	if part == nil {
		return fmt.Errorf("part %d: TransformComponent: %w", ev.Target, ErrMissingComponent)
	}

	targets, err := resolveDragTargets(cmd, ev.Target, sel)
	if err != nil {
		return err
	}

	switch kind.Kind {
	case PartTranslateAxis, PartTranslateHandle:
		d, err := AxisTranslation(view, *part, ev.Position, ev.Delta)
		if err != nil {
			return err
		}
		targets.translate(d)
	case PartTranslatePlane:
		d, err := PlaneTranslation(view, *part, ev.Position, ev.Delta)
		if err != nil {
			return err
		}
		targets.translate(d)
	case PartFreeHandle:
		d, err := CameraPlaneTranslation(view, *part, ev.Position, ev.Delta)
		if err != nil {
			return err
		}
		targets.translate(d)
	case PartRotateArc:
		q, err := Rotation(view, *part, ev.Position, ev.Delta)
		if err != nil {
			return err
		}
		targets.rotate(q)
	}
	return nil
}

// DragSystem applies this frame's drag events in order. A failed event is skipped on its own.
func DragSystem(cmd *Commands, input *Input, sel *Selection) {
	if len(input.Drags) == 0 {
		return
	}
	_, cam, camTr, err := pickCamera(cmd)
	if err != nil {
		return
	}
	view := DragView{Camera: *cam, Transform: *camTr}

	if id, ok := sel.Entity(); ok && !cmd.EntityExists(id) {
		sel.clear()
	}

	for _, ev := range input.Drags {
		if err := ApplyDrag(cmd, sel, view, ev); err != nil {
			cmd.Logger().Debugf("drag: skipping event on %d: %v", ev.Target, err)
		}
	}
}
