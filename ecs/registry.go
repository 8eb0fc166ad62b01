package ecs

import (
	"reflect"
	"slices"
)

// TypeID is the per-World identifier assigned to every component type the
// World has seen. IDs are dense and never reused.
type TypeID uint32

type typeInfo struct {
	id  TypeID
	typ reflect.Type

	// ancestors lists the type itself followed by its supertypes, nearest
	// first. It is rebuilt lazily whenever the hierarchy generation changes.
	ancestors  []TypeID
	generation uint64
}

// typeTable maps Go types to TypeIDs and keeps the explicit subtype edges and
// the registered interface types of one World. Membership tests during query
// evaluation only look at TypeIDs; reflection is used once per type to build
// the ancestor list.
type typeTable struct {
	byType     map[reflect.Type]*typeInfo
	byID       []*typeInfo
	parents    map[TypeID]TypeID
	interfaces []TypeID
	generation uint64
}

func newTypeTable() *typeTable {
	return &typeTable{
		byType:     make(map[reflect.Type]*typeInfo),
		parents:    make(map[TypeID]TypeID),
		generation: 1,
	}
}

// info returns the entry for t, creating it on first sight.
func (tt *typeTable) info(t reflect.Type) *typeInfo {
	if info, ok := tt.byType[t]; ok {
		return info
	}
	info := &typeInfo{
		id:  TypeID(len(tt.byID)),
		typ: t,
	}
	tt.byType[t] = info
	tt.byID = append(tt.byID, info)
	return info
}

// lookup returns the entry for t without creating one.
func (tt *typeTable) lookup(t reflect.Type) (*typeInfo, bool) {
	info, ok := tt.byType[t]
	return info, ok
}

func (tt *typeTable) setParent(child, parent *typeInfo) {
	if child == parent {
		return
	}
	tt.parents[child.id] = parent.id
	tt.generation++
}

func (tt *typeTable) addInterface(info *typeInfo) {
	if slices.Contains(tt.interfaces, info.id) {
		return
	}
	tt.interfaces = append(tt.interfaces, info.id)
	tt.generation++
}

// ancestorsOf returns info's own id followed by every supertype id.
func (tt *typeTable) ancestorsOf(info *typeInfo) []TypeID {
	if info.generation == tt.generation {
		return info.ancestors
	}

	ancestors := make([]TypeID, 1, len(info.ancestors)+1)
	ancestors[0] = info.id

	// Explicit chain; a cycle ends the walk at the first repeat.
	current := info.id
	for {
		parent, ok := tt.parents[current]
		if !ok || slices.Contains(ancestors, parent) {
			break
		}
		ancestors = append(ancestors, parent)
		current = parent
	}

	if info.typ.Kind() != reflect.Interface {
		ptr := reflect.PointerTo(info.typ)
		for _, ifaceID := range tt.interfaces {
			iface := tt.byID[ifaceID].typ
			if slices.Contains(ancestors, ifaceID) {
				continue
			}
			if ptr.Implements(iface) || info.typ.Implements(iface) {
				ancestors = append(ancestors, ifaceID)
			}
		}
	}

	info.ancestors = ancestors
	info.generation = tt.generation
	return ancestors
}

// is reports whether info is the type id or one of its subtypes.
func (tt *typeTable) is(info *typeInfo, id TypeID) bool {
	return slices.Contains(tt.ancestorsOf(info), id)
}
