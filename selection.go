package gizmo

import (
	"errors"
	"fmt"
)

// Selection is the single selection record. The saved material and origin exist exactly
// when an entity is selected; the setters below are the only way to change them.
type Selection struct {
	entity        EntityId
	originalColor AssetId
	highlight     AssetId
	origin        TransformComponent

	UseTagFilter    bool
	SelectionColor  Color
	SelectionButton MouseButton
	DragButton      MouseButton
}

func NewSelection(useTagFilter bool, selectionColor Color, selectionButton, dragButton MouseButton) *Selection {
	return &Selection{
		UseTagFilter:    useTagFilter,
		SelectionColor:  selectionColor,
		SelectionButton: selectionButton,
		DragButton:      dragButton,
	}
}

// Entity returns the selected entity and whether there is one.
func (s *Selection) Entity() (EntityId, bool) {
	return s.entity, s.entity != NoEntity
}

// OriginalColor is the material the selected entity had before it was highlighted.
func (s *Selection) OriginalColor() (AssetId, bool) {
	return s.originalColor, s.entity != NoEntity
}

// Origin is the selected entity's world transform at selection time.
func (s *Selection) Origin() (TransformComponent, bool) {
	return s.origin, s.entity != NoEntity
}

func (s *Selection) clear() {
	s.entity = NoEntity
	s.originalColor = ""
	s.highlight = ""
	s.origin = TransformComponent{}
}

// Restore puts the original material back on the selected entity and clears the selection.
// A selected entity that was removed from the scene is simply forgotten.
func (s *Selection) Restore(cmd *Commands, server *AssetServer) {
	if s.entity == NoEntity {
		return
	}
	if mat := GetComponent[MaterialComponent](cmd, s.entity); mat != nil {
		mat.Asset = s.originalColor
	}
	if s.highlight != "" {
		server.RemoveMaterial(s.highlight)
	}
	s.clear()
}

// Select makes target the selection: the previous selection gets its material back, target gets
// a fresh highlight material, and the gizmo moves onto target's world translation and rotation.
// Nothing changes when target lacks a material or transform.
func (s *Selection) Select(cmd *Commands, server *AssetServer, target EntityId) error {
	mat := GetComponent[MaterialComponent](cmd, target)
	if mat == nil {
		return fmt.Errorf("select %d: MaterialComponent: %w", target, ErrMissingComponent)
	}
	world := GetComponent[TransformComponent](cmd, target)
	if world == nil {
		return fmt.Errorf("select %d: TransformComponent: %w", target, ErrMissingComponent)
	}

	original := mat.Asset
	if s.entity == target {
		// Already highlighted: the saved material stays the pre-highlight one.
		original = s.originalColor
		if s.highlight != "" {
			server.RemoveMaterial(s.highlight)
		}
	} else {
		s.Restore(cmd, server)
	}

	s.highlight = server.AddMaterial(s.SelectionColor)
	mat.Asset = s.highlight

	s.entity = target
	s.originalColor = original
	s.origin = *world

	moveGizmo(cmd, *world)
	return nil
}

// moveGizmo places the gizmo root on a world pose, keeping its (normalized) scale.
func moveGizmo(cmd *Commands, to TransformComponent) {
	root := FindGizmoRoot(cmd)
	if root == NoEntity {
		return
	}
	if local := GetComponent[LocalTransformComponent](cmd, root); local != nil {
		local.Position = to.Position
		local.Rotation = to.Rotation
	}
	if world := GetComponent[TransformComponent](cmd, root); world != nil {
		world.Position = to.Position
		world.Rotation = to.Rotation
	}
}

// PickingSystem refreshes PickState from the cursor and commits a selection when the selection
// button is released over a pickable entity. Releasing over nothing keeps the current selection.
func PickingSystem(cmd *Commands, input *Input, sel *Selection, pick *PickState, server *AssetServer, diag *Diagnostics) {
	if id, ok := sel.Entity(); ok && !cmd.EntityExists(id) {
		sel.clear()
	}

	hit, err := PickAtCursor(cmd, input, sel.UseTagFilter)
	if errors.Is(err, ErrNoCursor) {
		pick.clear()
		return
	}
	if reportPickSource(cmd, diag, "picking", err) || err != nil {
		pick.clear()
		return
	}

	pick.Hovered = hit.Entity
	pick.Point = hit.Point
	pick.Valid = true

	if !input.JustReleased[sel.SelectionButton] {
		return
	}
	if err := sel.Select(cmd, server, hit.Entity); err != nil {
		cmd.Logger().Warnf("picking: %v", err)
		return
	}
	cmd.Logger().Debugf("picking: selected %d at %v", hit.Entity, hit.Point)
}
