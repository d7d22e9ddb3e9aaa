package gizmo

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"reflect"
	"slices"
	"sync"
)

type EntityId uint64

// NoEntity is never handed out by the ECS and stands for "no entity".
const NoEntity EntityId = 0

type archetypeId uint64
type archetypeKey []componentId
type componentId uint32
type row int
type set[T comparable] = map[T]struct{}

// Ecs groups entities by archetype: the set of component types they carry. Each archetype
// keeps one typed slice per component type, indexed by row. Entity ids are never reused, so
// ids held in resources (the selection, drag targets) cannot alias a newer entity.
type Ecs struct {
	archetypes  map[archetypeId]*archetype
	entityIndex map[EntityId]archetypeId

	idGeneratorLock sync.Mutex
	entityIdCounter EntityId

	componentIdCounterLock sync.Mutex
	componentIdCounter     componentId
	componentTypeIdMap     map[reflect.Type]componentId
	componentIdTypeMap     map[componentId]reflect.Type
}

func MakeEcs() Ecs {
	return Ecs{
		archetypes:         make(map[archetypeId]*archetype),
		entityIndex:        make(map[EntityId]archetypeId),
		entityIdCounter:    NoEntity,
		componentIdCounter: componentId(0),
		componentTypeIdMap: make(map[reflect.Type]componentId),
		componentIdTypeMap: make(map[componentId]reflect.Type),
	}
}

type archetype struct {
	id            archetypeId
	key           archetypeKey
	entities      map[EntityId]row
	ids           []EntityId          // ascending, so queries can merge archetypes in id order
	componentData map[componentId]any // []T for each component id of key
	rows          int
	recycled      []row
}

func (ecs *Ecs) addEntity(components ...any) EntityId {
	entityId := ecs.nextEntityId()
	return ecs.insertEntity(entityId, components...)
}

func (ecs *Ecs) insertEntity(entityId EntityId, components ...any) EntityId {
	arch := ecs.getOrMakeArchetype(ecs.getArchetypeKey(components...))

	row := ecs.archetypeReserveRow(arch)
	for _, component := range components {
		ecs.writeComponent(arch, row, component)
	}
	arch.place(entityId, row)
	ecs.entityIndex[entityId] = arch.id

	return entityId
}

func (ecs *Ecs) removeEntity(entityId EntityId) {
	if !ecs.hasEntity(entityId) {
		return
	}
	ecs.recycleEntity(entityId)
}

func (ecs *Ecs) hasEntity(entityId EntityId) bool {
	_, ok := ecs.entityIndex[entityId]
	return ok
}

// addComponents moves the entity to the archetype that also holds the new component types.
// Components the entity already has are overwritten in place.
func (ecs *Ecs) addComponents(entityId EntityId, components ...any) {
	srcArch, srcRow, ok := ecs.locate(entityId)
	if !ok {
		return
	}

	dstKey := dedupAndSortArchetypeKey(slices.Concat(srcArch.key, ecs.getArchetypeKey(components...)))
	dstArch := ecs.getOrMakeArchetype(dstKey)
	if dstArch == srcArch {
		for _, component := range components {
			ecs.writeComponent(srcArch, srcRow, component)
		}
		return
	}

	dstRow := ecs.archetypeReserveRow(dstArch)
	ecs.moveComponents(srcArch, srcRow, dstArch, dstRow)
	for _, component := range components {
		ecs.writeComponent(dstArch, dstRow, component)
	}

	ecs.recycleEntity(entityId)
	dstArch.place(entityId, dstRow)
	ecs.entityIndex[entityId] = dstArch.id
}

func (ecs *Ecs) removeComponents(entityId EntityId, components ...any) {
	srcArch, srcRow, ok := ecs.locate(entityId)
	if !ok {
		return
	}

	removeSet := make(set[componentId])
	for _, c := range components {
		removeSet[ecs.getComponentId(componentType(c))] = struct{}{}
	}

	dstKey := archetypeKey{}
	for _, compId := range srcArch.key {
		if _, shouldRemove := removeSet[compId]; !shouldRemove {
			dstKey = append(dstKey, compId)
		}
	}
	if len(dstKey) == len(srcArch.key) {
		return
	}

	dstArch := ecs.getOrMakeArchetype(dstKey)
	dstRow := ecs.archetypeReserveRow(dstArch)
	ecs.moveComponents(srcArch, srcRow, dstArch, dstRow)

	ecs.recycleEntity(entityId)
	dstArch.place(entityId, dstRow)
	ecs.entityIndex[entityId] = dstArch.id
}

// moveComponents copies the components both archetypes share. One key is always a subset
// of the other, so the shorter key is the shared set.
func (ecs *Ecs) moveComponents(srcArch *archetype, srcRow row, dstArch *archetype, dstRow row) {
	key := srcArch.key
	if len(dstArch.key) < len(key) {
		key = dstArch.key
	}

	for _, componentId := range key {
		srcValue := reflectSliceGet(srcArch.componentData[componentId], int(srcRow))
		reflectSliceSet(dstArch.componentData[componentId], int(dstRow), srcValue)
	}
}

// writeComponent copies the component value into the archetype row, so callers that pass
// a pointer do not keep an alias into the ECS.
func (ecs *Ecs) writeComponent(dstArch *archetype, dstRow row, component any) {
	t := componentType(component)

	value := reflect.ValueOf(component)
	if value.Kind() == reflect.Pointer {
		value = value.Elem()
	}
	reflectSliceSet(dstArch.componentData[ecs.getComponentId(t)], int(dstRow), value)
}

// recycleEntity frees the entity's row for reuse and drops it from the index.
func (ecs *Ecs) recycleEntity(entityId EntityId) {
	arch, r, ok := ecs.locate(entityId)
	if !ok {
		return
	}

	for _, componentId := range arch.key {
		reflectSliceSet(arch.componentData[componentId], int(r), reflect.Zero(ecs.componentIdTypeMap[componentId]))
	}
	arch.recycled = append(arch.recycled, r)
	arch.evict(entityId)
	delete(ecs.entityIndex, entityId)
}

func (ecs *Ecs) locate(entityId EntityId) (*archetype, row, bool) {
	archId, ok := ecs.entityIndex[entityId]
	if !ok {
		return nil, 0, false
	}
	arch := ecs.archetypes[archId]
	return arch, arch.entities[entityId], true
}

// component returns a pointer to the live component of type t, for callers without a type parameter.
func (ecs *Ecs) component(entityId EntityId, t reflect.Type) (any, bool) {
	arch, r, ok := ecs.locate(entityId)
	if !ok {
		return nil, false
	}
	compId, ok := ecs.lookupComponentId(t)
	if !ok {
		return nil, false
	}
	data, ok := arch.componentData[compId]
	if !ok {
		return nil, false
	}
	return reflectSliceGet(data, int(r)).Addr().Interface(), true
}

func (ecs *Ecs) getOrMakeArchetype(key archetypeKey) *archetype {
	id := getArchetypeId(key)

	if arch, ok := ecs.archetypes[id]; ok {
		return arch
	}

	arch := &archetype{
		id:            id,
		key:           key,
		entities:      make(map[EntityId]row),
		componentData: make(map[componentId]any),
	}
	for _, componentId := range arch.key {
		arch.componentData[componentId] = reflectSliceMake(ecs.componentIdTypeMap[componentId])
	}

	ecs.archetypes[id] = arch
	return arch
}

func (ecs *Ecs) archetypeReserveRow(arch *archetype) row {
	if n := len(arch.recycled); n > 0 {
		r := arch.recycled[n-1]
		arch.recycled = arch.recycled[:n-1]
		return r
	}

	r := row(arch.rows)
	arch.rows++
	for _, componentId := range arch.key {
		arch.componentData[componentId] = reflectSliceAppend(
			arch.componentData[componentId],
			reflect.Zero(ecs.componentIdTypeMap[componentId]),
		)
	}
	return r
}

func (arch *archetype) place(entityId EntityId, r row) {
	arch.entities[entityId] = r
	i, _ := slices.BinarySearch(arch.ids, entityId)
	arch.ids = slices.Insert(arch.ids, i, entityId)
}

func (arch *archetype) evict(entityId EntityId) {
	delete(arch.entities, entityId)
	if i, found := slices.BinarySearch(arch.ids, entityId); found {
		arch.ids = slices.Delete(arch.ids, i, i+1)
	}
}

// getArchetypeKey returns the sorted, deduplicated component ids of the given components.
// The archetype id is a hash of that key.
func (ecs *Ecs) getArchetypeKey(components ...any) archetypeKey {
	res := make(archetypeKey, 0, len(components))
	for _, component := range components {
		res = append(res, ecs.getComponentId(componentType(component)))
	}
	return dedupAndSortArchetypeKey(res)
}

func dedupAndSortArchetypeKey(key archetypeKey) archetypeKey {
	res := slices.Clone(key)
	slices.Sort(res)
	return slices.Compact(res)
}

func getArchetypeId(key archetypeKey) archetypeId {
	hash := fnv.New64a()
	b := make([]byte, 4)
	for _, componentId := range key {
		binary.LittleEndian.PutUint32(b, uint32(componentId))
		hash.Write(b)
	}
	return archetypeId(hash.Sum64())
}

func (ecs *Ecs) nextEntityId() EntityId {
	ecs.idGeneratorLock.Lock()
	defer ecs.idGeneratorLock.Unlock()

	ecs.entityIdCounter += 1
	return ecs.entityIdCounter
}

func (ecs *Ecs) getComponentId(componentType reflect.Type) componentId {
	ecs.componentIdCounterLock.Lock()
	defer ecs.componentIdCounterLock.Unlock()

	if id, ok := ecs.componentTypeIdMap[componentType]; ok {
		return id
	}
	id := ecs.componentIdCounter
	ecs.componentIdCounter += 1

	ecs.componentTypeIdMap[componentType] = id
	ecs.componentIdTypeMap[id] = componentType
	return id
}

// lookupComponentId does not register unknown types: a type never stored cannot be on any entity.
func (ecs *Ecs) lookupComponentId(componentType reflect.Type) (componentId, bool) {
	ecs.componentIdCounterLock.Lock()
	defer ecs.componentIdCounterLock.Unlock()

	id, ok := ecs.componentTypeIdMap[componentType]
	return id, ok
}

func componentType(component any) reflect.Type {
	t := reflect.TypeOf(component)
	if t == nil {
		panic("component should not be nil")
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		panic(fmt.Errorf("expected Component to be a struct or a pointer to a struct, got %s", t.Kind()))
	}
	return t
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

func reflectSliceMake(elem reflect.Type) any {
	return reflect.MakeSlice(reflect.SliceOf(elem), 0, 1).Interface()
}

func reflectSliceGet(slice any, idx int) reflect.Value {
	return reflect.ValueOf(slice).Index(idx)
}

func reflectSliceSet(slice any, idx int, val reflect.Value) {
	reflect.ValueOf(slice).Index(idx).Set(val)
}

func reflectSliceAppend(slice any, val reflect.Value) any {
	return reflect.Append(reflect.ValueOf(slice), val).Interface()
}

// GetComponent returns the live component of type T on the entity, or nil. The pointer stays
// valid until the next structural change (commands are flushed at the end of each stage).
func GetComponent[T any](cmd *Commands, entityId EntityId) *T {
	ecs := cmd.app.ecs
	arch, r, ok := ecs.locate(entityId)
	if !ok {
		return nil
	}
	compId, ok := ecs.lookupComponentId(typeOf[T]())
	if !ok {
		return nil
	}
	return column[T](arch, compId, r)
}

func HasComponent[T any](cmd *Commands, entityId EntityId) bool {
	return GetComponent[T](cmd, entityId) != nil
}

// column returns the row's component from the archetype's []T, or nil if the archetype lacks it.
func column[T any](arch *archetype, compId componentId, r row) *T {
	data, ok := arch.componentData[compId]
	if !ok {
		return nil
	}
	return &data.([]T)[r]
}
