// Package registry keeps named long-lived objects (loggers, schedulers,
// allocator wrappers) findable by any subsystem without threading
// references through constructors. Lookups are sharded, so hot read paths
// do not contend on one lock.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/cespare/xxhash/v2"
)

var (
	ErrNotFound  = errors.New("object not found")
	ErrWrongType = errors.New("object has wrong type")
)

// shardCount is a power of two so the shard pick is a mask.
const shardCount = 16

// Object is anything a registry can hold. Type names the concrete kind
// for diagnostics and typed lookups.
type Object interface {
	Type() string
}

type shard struct {
	mu   sync.RWMutex
	objs map[string]Object
}

// Registry is a sharded name-to-object map. The zero value is not usable;
// construct with New.
type Registry struct {
	shards [shardCount]shard
}

func New() *Registry {
	r := &Registry{}
	for i := range r.shards {
		r.shards[i].objs = make(map[string]Object)
	}
	return r
}

// Default is the process-wide registry.
var Default = New()

func (r *Registry) shardFor(name string) *shard {
	return &r.shards[xxhash.Sum64String(name)&(shardCount-1)]
}

// Register stores obj under name, overwriting any previous holder of the
// name. Nil objects are ignored.
func (r *Registry) Register(name string, obj Object) {
	if obj == nil {
		return
	}
	s := r.shardFor(name)
	s.mu.Lock()
	s.objs[name] = obj
	s.mu.Unlock()
}

// Get returns the object registered under name.
func (r *Registry) Get(name string) (Object, bool) {
	s := r.shardFor(name)
	s.mu.RLock()
	obj, ok := s.objs[name]
	s.mu.RUnlock()
	return obj, ok
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.Get(name)
	return ok
}

// Remove forgets name and reports whether it was registered.
func (r *Registry) Remove(name string) bool {
	s := r.shardFor(name)
	s.mu.Lock()
	_, ok := s.objs[name]
	delete(s.objs, name)
	s.mu.Unlock()
	return ok
}

// Names returns all registered names, sorted.
func (r *Registry) Names() []string {
	var names []string
	for i := range r.shards {
		s := &r.shards[i]
		s.mu.RLock()
		for name := range s.objs {
			names = append(names, name)
		}
		s.mu.RUnlock()
	}
	sort.Strings(names)
	return names
}

// Size returns the number of registered objects.
func (r *Registry) Size() int {
	n := 0
	for i := range r.shards {
		s := &r.shards[i]
		s.mu.RLock()
		n += len(s.objs)
		s.mu.RUnlock()
	}
	return n
}

// Clear forgets everything.
func (r *Registry) Clear() {
	for i := range r.shards {
		s := &r.shards[i]
		s.mu.Lock()
		s.objs = make(map[string]Object)
		s.mu.Unlock()
	}
}

// Lookup fetches name from r and asserts it to T. ErrNotFound and
// ErrWrongType distinguish the two failure modes for errors.Is.
func Lookup[T Object](r *Registry, name string) (T, error) {
	obj, ok := r.Get(name)
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	typed, ok := obj.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: %q holds %s", ErrWrongType, name, obj.Type())
	}
	return typed, nil
}

// Register stores obj in the Default registry.
func Register(name string, obj Object) {
	Default.Register(name, obj)
}

// Get reads from the Default registry.
func Get(name string) (Object, bool) {
	return Default.Get(name)
}

// Remove forgets name in the Default registry.
func Remove(name string) bool {
	return Default.Remove(name)
}
