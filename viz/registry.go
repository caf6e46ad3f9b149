package viz

import (
	"fmt"

	"qviz/quarkgl"
)

// Registry maps stable string keys to subtrees it exclusively owns.
type Registry struct {
	scene  *quarkgl.Scene
	prefix string
	nodes  map[string]quarkgl.NodeID
	order  []string
}

// NewRegistry returns an empty registry over s. Keys are "<prefix>_<i>".
func NewRegistry(s *quarkgl.Scene, prefix string) *Registry {
	return &Registry{scene: s, prefix: prefix, nodes: make(map[string]quarkgl.NodeID)}
}

// Key returns the key for slot i.
func (r *Registry) Key(i int) string {
	return fmt.Sprintf("%s_%d", r.prefix, i)
}

// Put takes ownership of id under key. A subtree already held under key is
// removed from the scene first.
func (r *Registry) Put(key string, id quarkgl.NodeID) {
	if old, ok := r.nodes[key]; ok {
		r.scene.Remove(old)
	} else {
		r.order = append(r.order, key)
	}
	r.nodes[key] = id
}

// Get returns the subtree root held under key.
func (r *Registry) Get(key string) (quarkgl.NodeID, bool) {
	id, ok := r.nodes[key]
	return id, ok
}

// Len returns the number of held subtrees.
func (r *Registry) Len() int { return len(r.nodes) }

// Keys returns keys in insertion order.
func (r *Registry) Keys() []string {
	return append([]string(nil), r.order...)
}

// Clear removes every held subtree from the scene and returns the number of
// scene nodes released.
func (r *Registry) Clear() int {
	n := 0
	for _, k := range r.order {
		n += r.scene.Remove(r.nodes[k])
	}
	r.nodes = make(map[string]quarkgl.NodeID)
	r.order = r.order[:0]
	return n
}
