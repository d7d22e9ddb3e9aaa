package gizmo

// Queries visit entities in ascending id order, merging the matching archetypes. Components
// passed as optionals may be missing on a visited entity, in which case the callback receives
// nil for them. Map stops as soon as the callback returns false.
//
// Callbacks must not change the world structure directly; Commands buffer those changes.
type Query1[A any] struct{ q query }
type Query2[A, B any] struct{ q query }
type Query3[A, B, C any] struct{ q query }

type query struct {
	ecs     *Ecs
	without []componentId
}

func MakeQuery1[A any](cmd *Commands) Query1[A] { return Query1[A]{q: query{ecs: cmd.app.ecs}} }
func MakeQuery2[A, B any](cmd *Commands) Query2[A, B] {
	return Query2[A, B]{q: query{ecs: cmd.app.ecs}}
}
func MakeQuery3[A, B, C any](cmd *Commands) Query3[A, B, C] {
	return Query3[A, B, C]{q: query{ecs: cmd.app.ecs}}
}

// WithoutTypes skips entities that carry any of the given components.
func (q Query1[A]) WithoutTypes(components ...any) Query1[A] {
	return Query1[A]{q: q.q.withoutTypes(components...)}
}

func (q Query2[A, B]) WithoutTypes(components ...any) Query2[A, B] {
	return Query2[A, B]{q: q.q.withoutTypes(components...)}
}

func (q Query3[A, B, C]) WithoutTypes(components ...any) Query3[A, B, C] {
	return Query3[A, B, C]{q: q.q.withoutTypes(components...)}
}

func (q Query1[A]) Map(m func(EntityId, *A) bool, optionals ...any) {
	id1 := identifyComponents1[A](q.q.ecs)
	opt := identifyOptionals(q.q.ecs, optionals...)

	q.q.each(q.q.match(opt, id1), func(arch *archetype, eid EntityId, r row) bool {
		return m(eid, column[A](arch, id1, r))
	})
}

func (q Query2[A, B]) Map(m func(EntityId, *A, *B) bool, optionals ...any) {
	id1, id2 := identifyComponents2[A, B](q.q.ecs)
	opt := identifyOptionals(q.q.ecs, optionals...)

	q.q.each(q.q.match(opt, id1, id2), func(arch *archetype, eid EntityId, r row) bool {
		return m(eid, column[A](arch, id1, r), column[B](arch, id2, r))
	})
}

func (q Query3[A, B, C]) Map(m func(EntityId, *A, *B, *C) bool, optionals ...any) {
	id1, id2, id3 := identifyComponents3[A, B, C](q.q.ecs)
	opt := identifyOptionals(q.q.ecs, optionals...)

	q.q.each(q.q.match(opt, id1, id2, id3), func(arch *archetype, eid EntityId, r row) bool {
		return m(eid, column[A](arch, id1, r), column[B](arch, id2, r), column[C](arch, id3, r))
	})
}

func (q query) withoutTypes(components ...any) query {
	without := make([]componentId, len(q.without), len(q.without)+len(components))
	copy(without, q.without)
	for _, c := range components {
		without = append(without, q.ecs.getComponentId(componentType(c)))
	}
	return query{ecs: q.ecs, without: without}
}

// match returns the archetypes that hold every non-optional component and none of the excluded ones.
func (q query) match(optionals set[componentId], ids ...componentId) []*archetype {
	var res []*archetype
	for _, arch := range q.ecs.archetypes {
		if len(arch.ids) > 0 && q.accepts(arch, optionals, ids) {
			res = append(res, arch)
		}
	}
	return res
}

func (q query) accepts(arch *archetype, optionals set[componentId], ids []componentId) bool {
	for _, id := range ids {
		if _, ok := arch.componentData[id]; ok {
			continue
		}
		if _, ok := optionals[id]; !ok {
			return false
		}
	}
	for _, id := range q.without {
		if _, ok := arch.componentData[id]; ok {
			return false
		}
	}
	return true
}

// each walks the archetypes' sorted id lists as one merged, ascending sequence.
func (q query) each(archs []*archetype, visit func(*archetype, EntityId, row) bool) {
	cursors := make([]int, len(archs))
	for {
		next := -1
		for i, arch := range archs {
			if cursors[i] >= len(arch.ids) {
				continue
			}
			if next < 0 || arch.ids[cursors[i]] < archs[next].ids[cursors[next]] {
				next = i
			}
		}
		if next < 0 {
			return
		}

		arch := archs[next]
		eid := arch.ids[cursors[next]]
		cursors[next]++
		if !visit(arch, eid, arch.entities[eid]) {
			return
		}
	}
}

func identifyOptionals(ecs *Ecs, components ...any) set[componentId] {
	res := make(set[componentId], len(components))
	for _, c := range components {
		res[ecs.getComponentId(componentType(c))] = struct{}{}
	}
	return res
}

func identifyComponents1[A any](ecs *Ecs) componentId {
	return ecs.getComponentId(typeOf[A]())
}

func identifyComponents2[A, B any](ecs *Ecs) (componentId, componentId) {
	return ecs.getComponentId(typeOf[A]()), ecs.getComponentId(typeOf[B]())
}

func identifyComponents3[A, B, C any](ecs *Ecs) (componentId, componentId, componentId) {
	return ecs.getComponentId(typeOf[A]()), ecs.getComponentId(typeOf[B]()), ecs.getComponentId(typeOf[C]())
}
