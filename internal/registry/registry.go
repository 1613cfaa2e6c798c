// Package registry is a reference in-memory implementation of the domain
// object registry: the simulation's objects, parts, mechs and reactors
// that object-reference parameters resolve against. Only the shape of the
// queries is fixed by the surrounding packages; this is one concrete
// collaborator satisfying paramkind.ObjectLister.
package registry

import (
	"sort"
	"sync"

	"github.com/google/uuid"
)

// RootID is the well-known container id meaning "not installed anywhere".
const RootID = "root"

// Object is one entry: a textual id, a type name, and the id of the object
// it is currently installed in (RootID if none).
type Object struct {
	ID        string
	Kind      string
	Container string
	UUID      uuid.UUID
}

// Registry is a concurrency-safe object table keyed by textual id.
type Registry struct {
	mu      sync.RWMutex
	objects map[string]Object
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{objects: make(map[string]Object)}
}

// Put inserts or replaces an object, minting a fresh UUID if it has none
// yet.
func (r *Registry) Put(id, kind, container string) Object {
	r.mu.Lock()
	defer r.mu.Unlock()
	obj, exists := r.objects[id]
	if !exists {
		obj = Object{UUID: uuid.New()}
	}
	obj.ID = id
	obj.Kind = kind
	obj.Container = container
	r.objects[id] = obj
	return obj
}

// Lookup resolves a textual id to its kind. Satisfies paramkind.ObjectLister.
func (r *Registry) Lookup(id string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	obj, ok := r.objects[id]
	return obj.Kind, ok
}

// Enumerate lists every known object id, optionally narrowed to a kind
// (empty string means no filter). Satisfies paramkind.ObjectLister.
func (r *Registry) Enumerate(kindFilter string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var ids []string
	for id, obj := range r.objects {
		if kindFilter != "" && obj.Kind != kindFilter {
			continue
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// EnumerateIn lists object ids whose Container matches root, optionally
// narrowed by kind — the "enumerate objects of a type, scoped to a root
// object" query.
func (r *Registry) EnumerateIn(root, kindFilter string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var ids []string
	for id, obj := range r.objects {
		if obj.Container != root {
			continue
		}
		if kindFilter != "" && obj.Kind != kindFilter {
			continue
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// IsInstalled reports whether id's container is something other than the
// well-known root, satisfying the "is-installed"/"not-installed" parameter
// filters.
func (r *Registry) IsInstalled(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	obj, ok := r.objects[id]
	if !ok {
		return false
	}
	return obj.Container != RootID && obj.Container != ""
}

// IsTopLevel reports whether id is installed directly at the well-known
// root, satisfying the "is a top-level aggregate" parameter filter.
func (r *Registry) IsTopLevel(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	obj, ok := r.objects[id]
	if !ok {
		return false
	}
	return obj.Container == RootID
}

// PartClass describes slot/line/port metadata for an installed part kind:
// how many indexed attachment points it exposes.
type PartClass struct {
	Name     string
	MaxIndex int
}

// classes holds static part-class metadata, resolved by name.
type classes struct {
	mu   sync.RWMutex
	data map[string]PartClass
}

// ClassTable is a reference resolver for "part-class metadata by name",
// used by index parameters to learn an entity's valid slot range.
type ClassTable struct {
	classes
}

// NewClassTable returns an empty class table.
func NewClassTable() *ClassTable {
	return &ClassTable{classes: classes{data: make(map[string]PartClass)}}
}

// Register records a part class's indexed-attachment-point count.
func (c *ClassTable) Register(name string, maxIndex int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[name] = PartClass{Name: name, MaxIndex: maxIndex}
}

// Resolve looks up a part class by name.
func (c *ClassTable) Resolve(name string) (PartClass, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	pc, ok := c.data[name]
	return pc, ok
}
