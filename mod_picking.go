package gizmo

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// PickSource marks the camera whose view is used for picking and dragging.
type PickSource struct{}

// Transformable makes an entity selectable when tag filtering is on.
type Transformable struct{}

// PickState is the result of the most recent pick, refreshed every frame the cursor is in the window.
type PickState struct {
	Hovered EntityId
	Point   mgl32.Vec3
	Valid   bool
}

func (p *PickState) clear() {
	*p = PickState{}
}

// Diagnostics keys for pick source misconfiguration.
const (
	noPickSourceKey         = "no-pick-source"
	incompletePickSourceKey = "incomplete-pick-source"
)

// reportPickSource warns once about a missing or incomplete pick source and reports whether err
// was one of those. Any other outcome means the pick source is usable, so both warnings re-arm.
func reportPickSource(cmd *Commands, diag *Diagnostics, system string, err error) bool {
	switch {
	case errors.Is(err, ErrNoPickSource):
		diag.Resolve(incompletePickSourceKey)
		diag.WarnOnce(cmd.Logger(), noPickSourceKey, "%s: %v; gizmo stays idle", system, err)
		return true
	case errors.Is(err, ErrMissingComponent):
		diag.Resolve(noPickSourceKey)
		diag.WarnOnce(cmd.Logger(), incompletePickSourceKey, "%s: %v; gizmo stays idle", system, err)
		return true
	}
	diag.Resolve(noPickSourceKey)
	diag.Resolve(incompletePickSourceKey)
	return false
}

// pickCamera finds the pick source. More than one is a scene error; the lowest id wins.
func pickCamera(cmd *Commands) (EntityId, *CameraComponent, *TransformComponent, error) {
	source := NoEntity
	MakeQuery1[PickSource](cmd).Map(func(eid EntityId, _ *PickSource) bool {
		source = eid
		return false
	})
	if source == NoEntity {
		return NoEntity, nil, nil, ErrNoPickSource
	}

	cam := GetComponent[CameraComponent](cmd, source)
	if cam == nil {
		return source, nil, nil, fmt.Errorf("pick source %d: CameraComponent: %w", source, ErrMissingComponent)
	}
	tr := GetComponent[TransformComponent](cmd, source)
	if tr == nil {
		return source, nil, nil, fmt.Errorf("pick source %d: TransformComponent: %w", source, ErrMissingComponent)
	}
	return source, cam, tr, nil
}

// PickRay builds the world ray under a viewport pixel of the pick source.
func PickRay(cmd *Commands, px mgl32.Vec2) (Ray, error) {
	_, cam, camTr, err := pickCamera(cmd)
	if err != nil {
		return Ray{}, err
	}
	return cam.ViewportToWorld(*camTr, px)
}

// PickAtCursor picks under the input's cursor. It fails with ErrNoCursor when the cursor left the window.
func PickAtCursor(cmd *Commands, input *Input, useTagFilter bool) (RayHit, error) {
	cursor, ok := input.Cursor()
	if !ok {
		return RayHit{}, ErrNoCursor
	}
	return Pick(cmd, cursor, useTagFilter)
}

// Pick returns the nearest scene entity under the cursor. Gizmo parts are never returned;
// with useTagFilter only Transformable entities are candidates. Hidden entities still count.
func Pick(cmd *Commands, cursor mgl32.Vec2, useTagFilter bool) (RayHit, error) {
	ray, err := PickRay(cmd, cursor)
	if err != nil {
		return RayHit{}, err
	}

	settings := RayCastSettings{
		Exclude:    func(eid EntityId) bool { return HasComponent[GizmoPart](cmd, eid) },
		EarlyExit:  false,
		Visibility: RayCastIgnoreVisibility,
	}
	if useTagFilter {
		settings.Filter = func(eid EntityId) bool { return HasComponent[Transformable](cmd, eid) }
	}

	hits := CastRay(cmd, ray, settings)
	if len(hits) == 0 {
		return RayHit{}, ErrNoIntersection
	}
	return hits[0], nil
}

// PointerDrags tracks, per mouse button, the gizmo part a press started on.
type PointerDrags struct {
	targets [mouseButtonCount]EntityId
	last    [mouseButtonCount]mgl32.Vec2
}

// Target returns the part being dragged with button b, or NoEntity.
func (d *PointerDrags) Target(b MouseButton) EntityId {
	return d.targets[b]
}

// PointerDragSystem turns presses on gizmo parts and subsequent cursor motion into DragEvents.
// A press only starts a drag when the nearest gizmo part under the cursor is hit; scene objects
// are ignored here.
func PointerDragSystem(cmd *Commands, input *Input, drags *PointerDrags) {
	cursor, inWindow := input.Cursor()

	for b := MouseButton(0); b < mouseButtonCount; b++ {
		if input.JustPressed[b] && inWindow {
			drags.targets[b] = NoEntity
			if ray, err := PickRay(cmd, cursor); err == nil {
				hits := CastRay(cmd, ray, RayCastSettings{
					Filter: func(eid EntityId) bool { return HasComponent[GizmoPart](cmd, eid) },
				})
				if len(hits) > 0 {
					drags.targets[b] = hits[0].Entity
					drags.last[b] = cursor
					cmd.Logger().Debugf("drag: %s pressed on part %d", b, hits[0].Entity)
				}
			}
		}

		if !input.Pressed[b] {
			drags.targets[b] = NoEntity
			continue
		}
		if drags.targets[b] == NoEntity || !inWindow {
			continue
		}
		if cursor == drags.last[b] {
			continue
		}
		input.Drags = append(input.Drags, DragEvent{
			Target:   drags.targets[b],
			Button:   b,
			Delta:    cursor.Sub(drags.last[b]),
			Position: cursor,
		})
		drags.last[b] = cursor
	}
}
